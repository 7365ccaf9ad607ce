package service

import (
	"context"
	"testing"

	"greenmarket/internal/domain"
	"greenmarket/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// The remaining AddressRepository methods, filling out mockAddressStore
// so it backs the full service and not just the coordinator.

func (m *mockAddressStore) Create(_ context.Context, a domain.UserAddress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.IsDefault() {
		for _, existing := range m.addresses {
			if existing.UserID() == a.UserID() && existing.IsDefault() {
				return repository.ErrUniqueViolation
			}
		}
	}
	m.addresses[a.ID()] = a
	return nil
}

func (m *mockAddressStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.addresses[id]; !ok {
		return repository.ErrAddressNotFound
	}
	delete(m.addresses, id)
	return nil
}

func (m *mockAddressStore) FindDefaultByOwner(_ context.Context, userID uuid.UUID) (domain.UserAddress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.addresses {
		if a.UserID() == userID && a.IsDefault() {
			return a, nil
		}
	}
	return domain.UserAddress{}, repository.ErrAddressNotFound
}

func limaAddress() AddressInput {
	return AddressInput{
		Street:  "Av. Larco 123",
		City:    "Lima",
		State:   "Lima",
		ZipCode: "15074",
		Country: "Peru",
	}
}

func newAddressFixture(t *testing.T) (AddressService, *mockAddressStore) {
	t.Helper()
	store := newMockAddressStore()
	return NewAddressService(store, fixedClock(), zap.NewNop()), store
}

func TestAddressServiceCreate(t *testing.T) {
	svc, store := newAddressFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	created, err := svc.Create(ctx, userID, limaAddress(), false)
	require.NoError(t, err)
	assert.False(t, created.IsDefault())
	assert.Equal(t, "Av. Larco 123", created.Address().Street())

	// invalid postal fields never reach the store
	bad := limaAddress()
	bad.City = ""
	_, err = svc.Create(ctx, userID, bad, false)
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, 0, store.defaultsOf(userID))
}

func TestAddressServiceCreateDefaultReplacesPrevious(t *testing.T) {
	svc, store := newAddressFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.Create(ctx, userID, limaAddress(), true)
	require.NoError(t, err)
	assert.True(t, first.IsDefault())

	second := limaAddress()
	second.Street = "Jr. Union 500"
	replacement, err := svc.Create(ctx, userID, second, true)
	require.NoError(t, err)
	assert.True(t, replacement.IsDefault())

	assert.Equal(t, 1, store.defaultsOf(userID))
	got, err := svc.GetDefault(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, replacement.ID(), got.ID())
}

func TestAddressServiceSetDefault(t *testing.T) {
	svc, store := newAddressFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.Create(ctx, userID, limaAddress(), true)
	require.NoError(t, err)
	other := limaAddress()
	other.Street = "Jr. Union 500"
	second, err := svc.Create(ctx, userID, other, false)
	require.NoError(t, err)

	flagged, err := svc.SetDefault(ctx, second.ID(), userID)
	require.NoError(t, err)
	assert.True(t, flagged.IsDefault())
	assert.Equal(t, 1, store.defaultsOf(userID))

	reloaded, err := svc.Get(ctx, first.ID(), userID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsDefault())

	// a foreign user cannot flag someone else's address
	_, err = svc.SetDefault(ctx, second.ID(), uuid.New())
	assert.True(t, domain.IsNotFound(err))
}

func TestAddressServiceUpdate(t *testing.T) {
	svc, _ := newAddressFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	created, err := svc.Create(ctx, userID, limaAddress(), true)
	require.NoError(t, err)

	in := limaAddress()
	in.Street = "Av. Arequipa 2000"
	updated, err := svc.Update(ctx, created.ID(), userID, in, true)
	require.NoError(t, err)
	assert.Equal(t, "Av. Arequipa 2000", updated.Address().Street())
	assert.True(t, updated.IsDefault())

	_, err = svc.Update(ctx, created.ID(), uuid.New(), in, true)
	assert.True(t, domain.IsNotFound(err))
}

func TestAddressServiceUpdateUnflagsDefault(t *testing.T) {
	svc, store := newAddressFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	created, err := svc.Create(ctx, userID, limaAddress(), true)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID(), userID, limaAddress(), false)
	require.NoError(t, err)
	assert.False(t, updated.IsDefault())

	// unflagging the only default leaves the user with none
	assert.Equal(t, 0, store.defaultsOf(userID))
	_, err = svc.GetDefault(ctx, userID)
	assert.True(t, domain.IsNotFound(err))
}

func TestAddressServiceUpdateFlagsNewDefault(t *testing.T) {
	svc, store := newAddressFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.Create(ctx, userID, limaAddress(), true)
	require.NoError(t, err)
	other := limaAddress()
	other.Street = "Jr. Union 500"
	second, err := svc.Create(ctx, userID, other, false)
	require.NoError(t, err)

	// flipping the flag through update clears the previous default
	updated, err := svc.Update(ctx, second.ID(), userID, other, true)
	require.NoError(t, err)
	assert.True(t, updated.IsDefault())
	assert.Equal(t, 1, store.defaultsOf(userID))

	reloaded, err := svc.Get(ctx, first.ID(), userID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsDefault())
}

func TestAddressServiceDeleteDefaultLeavesNoDefault(t *testing.T) {
	svc, store := newAddressFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	def, err := svc.Create(ctx, userID, limaAddress(), true)
	require.NoError(t, err)
	other := limaAddress()
	other.Street = "Jr. Union 500"
	_, err = svc.Create(ctx, userID, other, false)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, def.ID(), userID))

	// no automatic promotion of a new default
	assert.Equal(t, 0, store.defaultsOf(userID))
	_, err = svc.GetDefault(ctx, userID)
	assert.True(t, domain.IsNotFound(err))
}

func TestAddressServiceOwnershipDoesNotLeak(t *testing.T) {
	svc, _ := newAddressFixture(t)
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.Create(ctx, owner, limaAddress(), false)
	require.NoError(t, err)

	stranger := uuid.New()
	_, err = svc.Get(ctx, created.ID(), stranger)
	assert.True(t, domain.IsNotFound(err))

	err = svc.Delete(ctx, created.ID(), stranger)
	assert.True(t, domain.IsNotFound(err))

	// the owner still sees it
	list, err := svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
