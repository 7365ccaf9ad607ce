package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"greenmarket/internal/domain"
	"greenmarket/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10

	// Token expiration times
	AccessTokenExpiration  = 15 * time.Minute
	RefreshTokenExpiration = 7 * 24 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")
	ErrAccountDisabled    = errors.New("account is disabled")
)

// UserService defines the interface for account business logic
type UserService interface {
	Register(ctx context.Context, email, password, firstName, lastName string) (domain.UserProfile, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user domain.UserProfile, err error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken string, err error)
	ValidateToken(tokenString string) (*Claims, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (domain.UserProfile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, firstName, lastName, avatarURL string) (domain.UserProfile, error)
	AddImpact(ctx context.Context, userID uuid.UUID, earned domain.ImpactScore) (domain.UserProfile, error)
	Deactivate(ctx context.Context, userID uuid.UUID) error
}

// Claims represents the JWT claims
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

type userService struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	jwtSecret        string
	clock            Clock
	logger           *zap.Logger
}

// NewUserService creates a new instance of UserService
func NewUserService(
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	jwtSecret string,
	clock Clock,
	logger *zap.Logger,
) UserService {
	return &userService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		jwtSecret:        jwtSecret,
		clock:            clock,
		logger:           logger,
	}
}

// Register creates a new account with a hashed password. The email
// unique constraint closes the check-then-create race.
func (s *userService) Register(ctx context.Context, email, password, firstName, lastName string) (domain.UserProfile, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return domain.UserProfile{}, domain.NewConflictError(domain.ReasonDuplicateEmail,
			fmt.Sprintf("email %q is already registered", email))
	}

	if len(password) < 8 {
		return domain.UserProfile{}, domain.NewValidationError("password",
			"password must be at least 8 characters")
	}

	hashedPassword, err := s.hashPassword(password)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := domain.NewUserProfile(email, hashedPassword, firstName, lastName, s.clock())
	if err != nil {
		return domain.UserProfile{}, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return domain.UserProfile{}, mapConflict(err, domain.ReasonDuplicateEmail,
			fmt.Sprintf("email %q is already registered", user.Email()))
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID().String()))

	return user, nil
}

// Login authenticates a user and returns JWT tokens
func (s *userService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user domain.UserProfile, err error) {
	user, err = s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", "", domain.UserProfile{}, ErrInvalidCredentials
		}
		return "", "", domain.UserProfile{}, fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.verifyPassword(user.PasswordHash(), password); err != nil {
		return "", "", domain.UserProfile{}, ErrInvalidCredentials
	}

	if !user.IsActive() {
		return "", "", domain.UserProfile{}, ErrAccountDisabled
	}

	accessToken, err = s.generateAccessToken(user)
	if err != nil {
		return "", "", domain.UserProfile{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err = s.generateRefreshToken(ctx, user)
	if err != nil {
		return "", "", domain.UserProfile{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return accessToken, refreshToken, user, nil
}

// Logout invalidates the refresh token
func (s *userService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.refreshTokenRepo.Revoke(ctx, refreshToken); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			// already logged out
			return nil
		}
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// RefreshToken generates a new access token using a valid refresh token
func (s *userService) RefreshToken(ctx context.Context, refreshTokenString string) (newAccessToken string, err error) {
	refreshToken, err := s.refreshTokenRepo.FindByToken(ctx, refreshTokenString)
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) || errors.Is(err, repository.ErrRefreshTokenRevoked) {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("failed to find refresh token: %w", err)
	}

	if s.clock().After(refreshToken.ExpiresAt) {
		return "", ErrTokenExpired
	}

	user, err := s.userRepo.FindByID(ctx, refreshToken.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	if !user.IsActive() {
		return "", ErrAccountDisabled
	}

	newAccessToken, err = s.generateAccessToken(user)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}

	return newAccessToken, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *userService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GetProfile retrieves a user profile by ID
func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (domain.UserProfile, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return domain.UserProfile{}, mapNotFound(err, "user", userID)
	}
	return user, nil
}

// UpdateProfile replaces the editable profile fields
func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, firstName, lastName, avatarURL string) (domain.UserProfile, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return domain.UserProfile{}, mapNotFound(err, "user", userID)
	}

	updated, err := user.UpdateProfile(firstName, lastName, avatarURL, s.clock())
	if err != nil {
		return domain.UserProfile{}, err
	}

	if err := s.userRepo.Update(ctx, updated); err != nil {
		return domain.UserProfile{}, mapNotFound(err, "user", userID)
	}

	return updated, nil
}

// AddImpact accumulates earned impact points onto the user's running
// total
func (s *userService) AddImpact(ctx context.Context, userID uuid.UUID, earned domain.ImpactScore) (domain.UserProfile, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return domain.UserProfile{}, mapNotFound(err, "user", userID)
	}

	updated, err := user.AddImpact(earned, s.clock())
	if err != nil {
		return domain.UserProfile{}, err
	}

	if err := s.userRepo.Update(ctx, updated); err != nil {
		return domain.UserProfile{}, mapNotFound(err, "user", userID)
	}

	s.logger.Info("impact score updated",
		zap.String("user_id", userID.String()),
		zap.Float64("total", updated.ImpactTotal().Float()),
	)

	return updated, nil
}

// Deactivate disables the account without deleting it
func (s *userService) Deactivate(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return mapNotFound(err, "user", userID)
	}

	if err := s.userRepo.Update(ctx, user.Deactivate(s.clock())); err != nil {
		return mapNotFound(err, "user", userID)
	}

	s.logger.Info("user deactivated", zap.String("user_id", userID.String()))
	return nil
}

// hashPassword hashes a password using bcrypt
func (s *userService) hashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// verifyPassword verifies a password against a bcrypt hash
func (s *userService) verifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// generateAccessToken generates a JWT access token with user ID and
// role claims
func (s *userService) generateAccessToken(user domain.UserProfile) (string, error) {
	now := s.clock()
	claims := &Claims{
		UserID: user.ID(),
		Role:   user.Role(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// generateRefreshToken generates a refresh token and stores it in the
// database
func (s *userService) generateRefreshToken(ctx context.Context, user domain.UserProfile) (string, error) {
	tokenString := uuid.New().String()
	now := s.clock()

	refreshToken := &repository.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID(),
		Token:     tokenString,
		ExpiresAt: now.Add(RefreshTokenExpiration),
		CreatedAt: now,
		Revoked:   false,
	}

	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return "", err
	}

	return tokenString, nil
}
