package service

import (
	"context"

	"greenmarket/internal/domain"
	"greenmarket/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddressInput carries the raw postal fields of a create or update
// request.
type AddressInput struct {
	Street  string
	City    string
	State   string
	ZipCode string
	Country string
}

// AddressService defines the interface for saved-address business
// logic. All operations are scoped to the requesting user: an address
// belonging to someone else behaves as if it did not exist.
type AddressService interface {
	Create(ctx context.Context, userID uuid.UUID, in AddressInput, isDefault bool) (domain.UserAddress, error)
	Update(ctx context.Context, id, userID uuid.UUID, in AddressInput, isDefault bool) (domain.UserAddress, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	Get(ctx context.Context, id, userID uuid.UUID) (domain.UserAddress, error)
	List(ctx context.Context, userID uuid.UUID) ([]domain.UserAddress, error)
	GetDefault(ctx context.Context, userID uuid.UUID) (domain.UserAddress, error)
	SetDefault(ctx context.Context, id, userID uuid.UUID) (domain.UserAddress, error)
}

type addressService struct {
	addressRepo repository.AddressRepository
	coordinator *DefaultCoordinator[domain.UserAddress]
	clock       Clock
	logger      *zap.Logger
}

// NewAddressService creates a new instance of AddressService
func NewAddressService(
	addressRepo repository.AddressRepository,
	clock Clock,
	logger *zap.Logger,
) AddressService {
	return &addressService{
		addressRepo: addressRepo,
		coordinator: NewDefaultCoordinator[domain.UserAddress]("address", addressRepo, logger),
		clock:       clock,
		logger:      logger,
	}
}

// Create saves a new address for the user. When the address is flagged
// default, any previously flagged address of the same user is cleared
// first, under the user's lock so concurrent flag changes serialize.
func (s *addressService) Create(ctx context.Context, userID uuid.UUID, in AddressInput, isDefault bool) (domain.UserAddress, error) {
	postal, err := domain.NewAddress(in.Street, in.City, in.State, in.ZipCode, in.Country)
	if err != nil {
		return domain.UserAddress{}, err
	}

	address, err := domain.NewUserAddress(userID, postal, isDefault, s.clock())
	if err != nil {
		return domain.UserAddress{}, err
	}

	if !isDefault {
		if err := s.addressRepo.Create(ctx, address); err != nil {
			return domain.UserAddress{}, err
		}
		return address, nil
	}

	err = s.coordinator.WithOwnerLock(userID, func() error {
		if err := s.coordinator.ClearOthers(ctx, userID, address.ID(), s.clock()); err != nil {
			return err
		}
		return s.addressRepo.Create(ctx, address)
	})
	if err != nil {
		return domain.UserAddress{}, err
	}

	s.logger.Info("address created",
		zap.String("address_id", address.ID().String()),
		zap.String("user_id", userID.String()),
		zap.Bool("is_default", isDefault),
	)

	return address, nil
}

// Update replaces the postal fields and the default flag of an existing
// address. Flipping the flag to true clears the user's previous default
// first, under the user's lock; flipping it to false simply unflags,
// leaving the user with no default rather than promoting another one.
func (s *addressService) Update(ctx context.Context, id, userID uuid.UUID, in AddressInput, isDefault bool) (domain.UserAddress, error) {
	address, err := s.ownedAddress(ctx, id, userID)
	if err != nil {
		return domain.UserAddress{}, err
	}

	postal, err := domain.NewAddress(in.Street, in.City, in.State, in.ZipCode, in.Country)
	if err != nil {
		return domain.UserAddress{}, err
	}

	updated := address.WithAddress(postal, s.clock()).WithDefault(isDefault, s.clock())

	persist := func() error {
		if err := s.addressRepo.Update(ctx, updated); err != nil {
			return mapNotFound(err, "address", id)
		}
		return nil
	}

	if isDefault {
		err = s.coordinator.WithOwnerLock(userID, func() error {
			if err := s.coordinator.ClearOthers(ctx, userID, id, s.clock()); err != nil {
				return err
			}
			return persist()
		})
	} else {
		err = persist()
	}
	if err != nil {
		return domain.UserAddress{}, err
	}

	return updated, nil
}

// Delete removes an address. Deleting the default address leaves the
// user with no default; no other address is promoted automatically.
func (s *addressService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if _, err := s.ownedAddress(ctx, id, userID); err != nil {
		return err
	}

	if err := s.addressRepo.Delete(ctx, id); err != nil {
		return mapNotFound(err, "address", id)
	}

	s.logger.Info("address deleted",
		zap.String("address_id", id.String()),
		zap.String("user_id", userID.String()),
	)

	return nil
}

// Get retrieves one of the user's addresses by ID
func (s *addressService) Get(ctx context.Context, id, userID uuid.UUID) (domain.UserAddress, error) {
	return s.ownedAddress(ctx, id, userID)
}

// List retrieves all addresses saved by the user
func (s *addressService) List(ctx context.Context, userID uuid.UUID) ([]domain.UserAddress, error) {
	return s.addressRepo.FindByOwner(ctx, userID)
}

// GetDefault retrieves the user's default address
func (s *addressService) GetDefault(ctx context.Context, userID uuid.UUID) (domain.UserAddress, error) {
	address, err := s.addressRepo.FindDefaultByOwner(ctx, userID)
	if err != nil {
		return domain.UserAddress{}, mapNotFound(err, "address", uuid.Nil)
	}
	return address, nil
}

// SetDefault flags the address as the user's default, clearing any
// previous default atomically with respect to other flag changes for
// the same user.
func (s *addressService) SetDefault(ctx context.Context, id, userID uuid.UUID) (domain.UserAddress, error) {
	if _, err := s.ownedAddress(ctx, id, userID); err != nil {
		return domain.UserAddress{}, err
	}
	return s.coordinator.SetDefault(ctx, id, s.clock())
}

// ownedAddress loads the address and checks it belongs to the
// requesting user. A mismatch reports not-found rather than forbidden
// so the response does not leak that the address exists.
func (s *addressService) ownedAddress(ctx context.Context, id, userID uuid.UUID) (domain.UserAddress, error) {
	address, err := s.addressRepo.FindByID(ctx, id)
	if err != nil {
		return domain.UserAddress{}, mapNotFound(err, "address", id)
	}
	if address.UserID() != userID {
		return domain.UserAddress{}, domain.NewNotFoundError("address", id)
	}
	return address, nil
}
