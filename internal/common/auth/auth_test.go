package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "planmytrip/internal/common/errors"
	"planmytrip/internal/common/logger"
	"planmytrip/internal/models"
)

func init() {
	hashCost = bcrypt.MinCost
}

// ==========================
// Fakes
// ==========================

type notFoundErr struct{}

func (notFoundErr) Error() string { return "user not found" }
func (notFoundErr) StandardError() *apperrors.StandardError {
	return apperrors.NewUserNotFoundError("")
}

type duplicateErr struct{}

func (duplicateErr) Error() string { return "duplicate" }
func (duplicateErr) StandardError() *apperrors.StandardError {
	return apperrors.NewDuplicateUserError("")
}

type memUsers struct {
	mu    sync.Mutex
	byID  map[string]*models.User
	count int
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]*models.User{}} }

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == u.Email || existing.Username == u.Username {
			return duplicateErr{}
		}
	}
	m.count++
	u.ID = "user-" + string(rune('0'+m.count))
	u.CreatedAt = time.Now().UTC()
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, notFoundErr{}
}

func (m *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, notFoundErr{}
}

func createTestService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	tokens := NewTokenManager("test-secret", time.Hour, "planmytrip")
	return NewService(newMemUsers(), tokens, NewDenylist(rdb), logger.NewTestLogger(t)), mr
}

func validSignup() SignupInput {
	return SignupInput{Email: "Ana@Example.com ", Name: "Ana", Username: "ana", Password: "secret1"}
}

// ==========================
// Passwords and tokens
// ==========================

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, CheckPassword(hash, "secret1"))
	assert.False(t, CheckPassword(hash, "secret2"))
}

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("s3cret", time.Hour, "planmytrip")
	u := &models.User{ID: "u-1", Email: "ana@example.com", Username: "ana"}

	token, issued, err := m.Generate(u)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "ana", claims.Username)
	assert.Equal(t, issued.ID, claims.ID)
}

func TestTokenManager_Rejects(t *testing.T) {
	m := NewTokenManager("s3cret", time.Hour, "planmytrip")
	u := &models.User{ID: "u-1"}
	good, _, err := m.Generate(u)
	require.NoError(t, err)

	expired := NewTokenManager("s3cret", time.Hour, "planmytrip")
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Generate(u)
	require.NoError(t, err)

	otherIssuer, _, err := NewTokenManager("s3cret", time.Hour, "someone-else").Generate(u)
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u-1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"wrong secret": func() string { s, _, _ := NewTokenManager("other", time.Hour, "planmytrip").Generate(u); return s }(),
		"expired":      old,
		"issuer":       otherIssuer,
		"alg none":     noneAlg,
		"garbage":      "not.a.token",
		"tampered":     good + "x",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := m.Validate(token)
			require.ErrorIs(t, err, ErrInvalidToken)
			assert.Equal(t, apperrors.ErrCodeAuthenticationError, apperrors.FromError(err).Code)
		})
	}
}

// ==========================
// Service
// ==========================

func TestService_SignupLoginAuthenticate(t *testing.T) {
	s, _ := createTestService(t)
	ctx := context.Background()

	session, err := s.Signup(ctx, validSignup())
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", session.User.Email)
	assert.NotEqual(t, "secret1", session.User.PasswordHash)

	login, err := s.Login(ctx, "ANA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, login.User.ID)

	claims, err := s.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)

	me, err := s.CurrentUser(ctx, claims)
	require.NoError(t, err)
	assert.Equal(t, "ana", me.Username)
}

func TestService_Signup_Validation(t *testing.T) {
	s, _ := createTestService(t)

	_, err := s.Signup(context.Background(), SignupInput{Email: "nope", Password: "123"})
	require.ErrorIs(t, err, ErrInvalidSignup)

	stdErr := apperrors.FromError(err)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, stdErr.Code)
	fields := []string{}
	for _, v := range stdErr.Violations {
		fields = append(fields, v.Field)
	}
	assert.Equal(t, []string{"email", "name", "username", "password"}, fields)
}

func TestService_Signup_Duplicate(t *testing.T) {
	s, _ := createTestService(t)
	_, err := s.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	_, err = s.Signup(context.Background(), validSignup())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeDuplicateUser, apperrors.FromError(err).Code)
}

func TestService_Login_InvalidCredentials(t *testing.T) {
	s, _ := createTestService(t)
	_, err := s.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	for name, creds := range map[string][2]string{
		"wrong password": {"ana@example.com", "wrong!!"},
		"unknown email":  {"bob@example.com", "secret1"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := s.Login(context.Background(), creds[0], creds[1])
			require.ErrorIs(t, err, ErrInvalidCredentials)
			assert.Equal(t, 401, apperrors.HTTPStatus(apperrors.FromError(err).Code))
		})
	}
}

func TestService_LogoutRevokesToken(t *testing.T) {
	s, mr := createTestService(t)
	ctx := context.Background()

	session, err := s.Signup(ctx, validSignup())
	require.NoError(t, err)
	claims, err := s.Authenticate(ctx, session.Token)
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx, claims))
	assert.True(t, mr.Exists(revokedKeyPrefix+claims.ID))
	assert.InDelta(t, time.Hour.Seconds(), mr.TTL(revokedKeyPrefix+claims.ID).Seconds(), 5)

	_, err = s.Authenticate(ctx, session.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// a fresh login still works
	again, err := s.Login(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)
	_, err = s.Authenticate(ctx, again.Token)
	assert.NoError(t, err)
}
