package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"greenmarket/internal/domain"
	"greenmarket/internal/repository"
	"greenmarket/internal/service"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Mock repositories for testing

type mockUserRepository struct {
	users map[uuid.UUID]domain.UserProfile
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[uuid.UUID]domain.UserProfile)}
}

func (m *mockUserRepository) Create(_ context.Context, user domain.UserProfile) error {
	for _, u := range m.users {
		if u.Email() == user.Email() {
			return repository.ErrUniqueViolation
		}
	}
	m.users[user.ID()] = user
	return nil
}

func (m *mockUserRepository) Update(_ context.Context, user domain.UserProfile) error {
	if _, ok := m.users[user.ID()]; !ok {
		return repository.ErrUserNotFound
	}
	m.users[user.ID()] = user
	return nil
}

func (m *mockUserRepository) FindByID(_ context.Context, id uuid.UUID) (domain.UserProfile, error) {
	u, ok := m.users[id]
	if !ok {
		return domain.UserProfile{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserRepository) FindByEmail(_ context.Context, email string) (domain.UserProfile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.users {
		if u.Email() == email {
			return u, nil
		}
	}
	return domain.UserProfile{}, repository.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	return err == nil, nil
}

type mockRefreshTokenRepository struct {
	tokens map[string]*repository.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{tokens: make(map[string]*repository.RefreshToken)}
}

func (m *mockRefreshTokenRepository) Create(_ context.Context, token *repository.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(_ context.Context, token string) (*repository.RefreshToken, error) {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(_ context.Context, token string) error {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

func newUserHandler() *UserHandler {
	userService := service.NewUserService(newMockUserRepository(), newMockRefreshTokenRepository(),
		"test-secret", service.SystemClock, zap.NewNop())
	return NewUserHandler(userService, zap.NewNop())
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestUserHandlerRegister(t *testing.T) {
	handler := newUserHandler()

	w := postJSON(t, handler.Register, "/api/users/register", RegisterRequest{
		Email:     "maria@example.com",
		Password:  "secret-password",
		FirstName: "Maria",
		LastName:  "Quispe",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var profile ProfileResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&profile))
	assert.Equal(t, "maria@example.com", profile.Email)
	assert.Equal(t, domain.RoleUser, profile.Role)
	assert.True(t, profile.IsActive)
	_, err := uuid.Parse(profile.ID)
	assert.NoError(t, err)

	// the same email again is a conflict
	w = postJSON(t, handler.Register, "/api/users/register", RegisterRequest{
		Email:    "maria@example.com",
		Password: "secret-password",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUserHandlerLogin(t *testing.T) {
	handler := newUserHandler()

	w := postJSON(t, handler.Register, "/api/users/register", RegisterRequest{
		Email:    "maria@example.com",
		Password: "secret-password",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, handler.Login, "/api/users/login", LoginRequest{
		Email:    "maria@example.com",
		Password: "secret-password",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var login LoginResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&login))
	assert.NotEmpty(t, login.AccessToken)
	assert.NotEmpty(t, login.RefreshToken)
	assert.Equal(t, "maria@example.com", login.User.Email)

	w = postJSON(t, handler.Login, "/api/users/login", LoginRequest{
		Email:    "maria@example.com",
		Password: "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserHandlerRefreshAfterLogout(t *testing.T) {
	handler := newUserHandler()

	w := postJSON(t, handler.Register, "/api/users/register", RegisterRequest{
		Email:    "maria@example.com",
		Password: "secret-password",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, handler.Login, "/api/users/login", LoginRequest{
		Email:    "maria@example.com",
		Password: "secret-password",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var login LoginResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&login))

	w = postJSON(t, handler.RefreshToken, "/api/users/refresh", RefreshRequest{
		RefreshToken: login.RefreshToken,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, handler.Logout, "/api/users/logout", RefreshRequest{
		RefreshToken: login.RefreshToken,
	})
	require.Equal(t, http.StatusOK, w.Code)

	// a revoked refresh token no longer mints access tokens
	w = postJSON(t, handler.RefreshToken, "/api/users/refresh", RefreshRequest{
		RefreshToken: login.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// Malformed registration payloads never reach the service: the handler
// answers 400 with a structured error body.
func TestProperty_InvalidRegistrationDataIsRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("registration with invalid data returns validation errors", prop.ForAll(
		func(invalidCase int) bool {
			handler := newUserHandler()

			var reqBody RegisterRequest
			switch invalidCase % 3 {
			case 0:
				reqBody = RegisterRequest{Email: "", Password: "ValidPass123"}
			case 1:
				reqBody = RegisterRequest{Email: "not-an-email", Password: "ValidPass123"}
			case 2:
				reqBody = RegisterRequest{Email: "test@example.com", Password: "short"}
			}

			body, _ := json.Marshal(reqBody)
			req := httptest.NewRequest(http.MethodPost, "/api/users/register", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.Register(w, req)

			if w.Code != http.StatusBadRequest {
				t.Logf("FAIL: Expected 400 status code, got %d", w.Code)
				return false
			}

			var response map[string]interface{}
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Logf("FAIL: Could not decode error response: %v", err)
				return false
			}
			if _, exists := response["error"]; !exists {
				t.Logf("FAIL: Response missing 'error' field")
				return false
			}

			return true
		},
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Registering a well-formed account always yields a complete profile
// with a parseable id and the user role.
func TestProperty_SuccessfulRegistrationReturnsProfileData(t *testing.T) {
	// bcrypt runs once per iteration, so keep the sample small
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 25
	properties := gopter.NewProperties(parameters)

	properties.Property("successful registration returns the stored profile", prop.ForAll(
		func(local, password, firstName string) bool {
			handler := newUserHandler()

			reqBody := RegisterRequest{
				Email:     local + "@example.com",
				Password:  password,
				FirstName: firstName,
			}
			body, _ := json.Marshal(reqBody)
			req := httptest.NewRequest(http.MethodPost, "/api/users/register", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.Register(w, req)

			if w.Code != http.StatusCreated {
				t.Logf("FAIL: Expected 201 status code, got %d", w.Code)
				return false
			}

			var profile ProfileResponse
			if err := json.NewDecoder(w.Body).Decode(&profile); err != nil {
				t.Logf("FAIL: Could not decode response: %v", err)
				return false
			}

			if _, err := uuid.Parse(profile.ID); err != nil {
				t.Logf("FAIL: Profile ID is not a valid UUID: %v", err)
				return false
			}
			if profile.Email != strings.ToLower(reqBody.Email) {
				t.Logf("FAIL: Email mismatch. Expected %s, got %s", reqBody.Email, profile.Email)
				return false
			}
			if profile.FirstName != firstName {
				t.Logf("FAIL: FirstName mismatch. Expected %q, got %q", firstName, profile.FirstName)
				return false
			}
			return profile.Role == domain.RoleUser
		},
		gen.RegexMatch("[a-z][a-z0-9]{2,12}"),
		gen.RegexMatch("[A-Za-z0-9]{8,20}"),
		gen.RegexMatch("[A-Z][a-z]{1,10}"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
