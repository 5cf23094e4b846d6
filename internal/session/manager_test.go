package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/domain"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/pkg/logger"
)

// ============================================================================
// Mocks
// ============================================================================

type mockAuthenticator struct {
	mock.Mock
}

func (m *mockAuthenticator) Login(ctx context.Context, email, password string) (*domain.LoginResponse, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoginResponse), args.Error(1)
}

// failingStorage wraps MemoryStorage and fails Set for one key.
type failingStorage struct {
	*MemoryStorage
	failSetKey string
	failDelete bool
	failGet    bool
}

func (s *failingStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if s.failGet {
		return "", false, errors.New("disk unavailable")
	}
	return s.MemoryStorage.Get(ctx, key)
}

func (s *failingStorage) Set(ctx context.Context, key, value string) error {
	if key == s.failSetKey {
		return errors.New("disk full")
	}
	return s.MemoryStorage.Set(ctx, key, value)
}

func (s *failingStorage) Delete(ctx context.Context, keys ...string) error {
	if s.failDelete {
		return errors.New("permission denied")
	}
	return s.MemoryStorage.Delete(ctx, keys...)
}

// ============================================================================
// Helpers
// ============================================================================

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func seed(t *testing.T, s Storage, token string, user any) {
	t.Helper()
	ctx := context.Background()
	if token != "" {
		require.NoError(t, s.Set(ctx, KeyToken, token))
	}
	if user != nil {
		raw, ok := user.(string)
		if !ok {
			b, err := json.Marshal(user)
			require.NoError(t, err)
			raw = string(b)
		}
		require.NoError(t, s.Set(ctx, KeyUser, raw))
	}
}

func assertCleared(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()
	_, ok, err := s.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.False(t, ok, "token should be cleared")
	_, ok, err = s.Get(ctx, KeyUser)
	require.NoError(t, err)
	assert.False(t, ok, "user should be cleared")
}

var adminUser = domain.Session{UserID: "1", Name: "System Administrator Account", Email: "admin@x.com", Role: domain.RoleAdmin}

// ============================================================================
// Init
// ============================================================================

func TestInit_NoStoredSession(t *testing.T) {
	m := NewManager(NewMemoryStorage(), nil, logger.Discard())

	s, err := m.Init(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)

	_, ok := m.Current()
	assert.False(t, ok)
	assert.Empty(t, m.Token())
}

func TestInit_RestoresSession(t *testing.T) {
	store := NewMemoryStorage()
	token := signedToken(t, time.Now().Add(time.Hour))
	seed(t, store, token, adminUser)

	m := NewManager(store, nil, logger.Discard())
	s, err := m.Init(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s)

	assert.Equal(t, domain.ID("1"), s.UserID)
	assert.Equal(t, domain.RoleAdmin, s.Role)
	assert.Equal(t, token, s.Token)
	assert.Equal(t, token, m.Token())
}

func TestInit_OpaqueTokenAccepted(t *testing.T) {
	store := NewMemoryStorage()
	seed(t, store, "not-a-jwt", adminUser)

	m := NewManager(store, nil, logger.Discard())
	s, err := m.Init(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "not-a-jwt", s.Token)
}

func TestInit_ExpiredTokenClears(t *testing.T) {
	store := NewMemoryStorage()
	seed(t, store, signedToken(t, time.Now().Add(-time.Minute)), adminUser)

	m := NewManager(store, nil, logger.Discard())
	s, err := m.Init(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)
	assertCleared(t, store)
}

func TestInit_ExpiryUsesClock(t *testing.T) {
	store := NewMemoryStorage()
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	seed(t, store, signedToken(t, exp), adminUser)

	m := NewManager(store, nil, logger.Discard())
	m.now = func() time.Time { return exp.Add(time.Second) }

	s, err := m.Init(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestInit_InvalidRecordsClear(t *testing.T) {
	tests := []struct {
		name  string
		token string
		user  any
	}{
		{name: "token without user", token: "tok"},
		{name: "user without token", user: adminUser},
		{name: "corrupt user json", token: "tok", user: "{not json"},
		{name: "unknown role", token: "tok", user: domain.Session{UserID: "2", Name: "x", Role: "SUPERUSER"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStorage()
			seed(t, store, tt.token, tt.user)

			m := NewManager(store, nil, logger.Discard())
			s, err := m.Init(context.Background())
			require.NoError(t, err)
			assert.Nil(t, s)
			assertCleared(t, store)
		})
	}
}

func TestInit_StorageReadError(t *testing.T) {
	store := &failingStorage{MemoryStorage: NewMemoryStorage(), failGet: true}
	m := NewManager(store, nil, logger.Discard())

	s, err := m.Init(context.Background())
	require.Error(t, err)
	assert.Nil(t, s)
	assert.Contains(t, err.Error(), "read session token")
}

func TestInit_CorruptFileClears(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))
	m := NewManager(NewFileStorage(path), nil, logger.Discard())

	s, err := m.Init(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "corrupt session file should be removed")
}

func TestLogout_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))
	m := NewManager(NewFileStorage(path), nil, logger.Discard())

	require.NoError(t, m.Logout(context.Background()))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

// ============================================================================
// Login
// ============================================================================

func TestLogin_PersistsSession(t *testing.T) {
	store := NewMemoryStorage()
	auth := new(mockAuthenticator)
	auth.On("Login", mock.Anything, "admin@x.com", "Admin@123").
		Return(&domain.LoginResponse{Token: "tok-abc", User: adminUser}, nil)

	m := NewManager(store, auth, logger.Discard())
	s, err := m.Login(context.Background(), "admin@x.com", "Admin@123")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "tok-abc", s.Token)
	assert.Equal(t, domain.RoleAdmin, s.Role)

	token, ok, err := store.Get(context.Background(), KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-abc", token)

	raw, ok, err := store.Get(context.Background(), KeyUser)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, raw, "tok-abc", "token must not be duplicated in the user record")

	// A fresh manager restores the same session.
	restored, err := NewManager(store, nil, logger.Discard()).Init(context.Background())
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, *s, *restored)

	auth.AssertExpectations(t)
}

func TestLogin_ReplacesPreviousSession(t *testing.T) {
	store := NewMemoryStorage()
	seed(t, store, "old-token", adminUser)

	owner := domain.Session{UserID: "9", Name: "Store Owner Person Name", Role: domain.RoleOwner}
	auth := new(mockAuthenticator)
	auth.On("Login", mock.Anything, "owner@x.com", "Owner@123").
		Return(&domain.LoginResponse{Token: "new-token", User: owner}, nil)

	m := NewManager(store, auth, logger.Discard())
	_, err := m.Init(context.Background())
	require.NoError(t, err)

	s, err := m.Login(context.Background(), "owner@x.com", "Owner@123")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOwner, s.Role)
	assert.Equal(t, "new-token", m.Token())
}

func TestLogin_AuthFailureKeepsState(t *testing.T) {
	store := NewMemoryStorage()
	authErr := errors.New("Invalid credentials")
	auth := new(mockAuthenticator)
	auth.On("Login", mock.Anything, "a@x.com", "wrong").Return(nil, authErr)

	m := NewManager(store, auth, logger.Discard())
	s, err := m.Login(context.Background(), "a@x.com", "wrong")
	assert.ErrorIs(t, err, authErr)
	assert.Nil(t, s)

	_, ok := m.Current()
	assert.False(t, ok)
	assertCleared(t, store)
}

func TestLogin_IncompleteResponse(t *testing.T) {
	tests := []struct {
		name string
		resp *domain.LoginResponse
	}{
		{name: "missing token", resp: &domain.LoginResponse{User: adminUser}},
		{name: "unknown role", resp: &domain.LoginResponse{Token: "t", User: domain.Session{UserID: "1", Role: "ROOT"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := new(mockAuthenticator)
			auth.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(tt.resp, nil)

			store := NewMemoryStorage()
			m := NewManager(store, auth, logger.Discard())
			_, err := m.Login(context.Background(), "a@x.com", "pw")
			assert.ErrorIs(t, err, ErrIncompleteLogin)
			assertCleared(t, store)
		})
	}
}

func TestLogin_UserWriteFailureRollsBackToken(t *testing.T) {
	store := &failingStorage{MemoryStorage: NewMemoryStorage(), failSetKey: KeyUser}
	auth := new(mockAuthenticator)
	auth.On("Login", mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.LoginResponse{Token: "tok", User: adminUser}, nil)

	m := NewManager(store, auth, logger.Discard())
	_, err := m.Login(context.Background(), "admin@x.com", "Admin@123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persist session user")

	_, ok := m.Current()
	assert.False(t, ok)
	assertCleared(t, store.MemoryStorage)
}

func TestLogin_NoAuthenticator(t *testing.T) {
	m := NewManager(NewMemoryStorage(), nil, logger.Discard())
	_, err := m.Login(context.Background(), "a@x.com", "pw")
	require.Error(t, err)
}

func TestSetAuthenticator(t *testing.T) {
	auth := new(mockAuthenticator)
	auth.On("Login", mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.LoginResponse{Token: "tok", User: adminUser}, nil)

	m := NewManager(NewMemoryStorage(), nil, logger.Discard())
	m.SetAuthenticator(auth)

	_, err := m.Login(context.Background(), "admin@x.com", "Admin@123")
	require.NoError(t, err)
}

// ============================================================================
// Logout / Current
// ============================================================================

func TestLogout_ClearsStorageAndMemory(t *testing.T) {
	store := NewMemoryStorage()
	seed(t, store, "tok", adminUser)

	m := NewManager(store, nil, logger.Discard())
	_, err := m.Init(context.Background())
	require.NoError(t, err)

	require.NoError(t, m.Logout(context.Background()))

	_, ok := m.Current()
	assert.False(t, ok)
	assertCleared(t, store)
}

func TestLogout_StorageFailureStillClearsMemory(t *testing.T) {
	store := &failingStorage{MemoryStorage: NewMemoryStorage()}
	seed(t, store.MemoryStorage, "tok", adminUser)

	m := NewManager(store, nil, logger.Discard())
	_, err := m.Init(context.Background())
	require.NoError(t, err)

	store.failDelete = true
	err = m.Logout(context.Background())
	require.Error(t, err)

	_, ok := m.Current()
	assert.False(t, ok)
	assert.Empty(t, m.Token())
}

func TestCurrent_ReturnsCopy(t *testing.T) {
	store := NewMemoryStorage()
	seed(t, store, "tok", adminUser)

	m := NewManager(store, nil, logger.Discard())
	_, err := m.Init(context.Background())
	require.NoError(t, err)

	s, ok := m.Current()
	require.True(t, ok)
	s.Role = domain.RoleUser

	again, _ := m.Current()
	assert.Equal(t, domain.RoleAdmin, again.Role)
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	got, ok := tokenExpiry(signedToken(t, exp))
	require.True(t, ok)
	assert.True(t, got.Equal(exp))

	_, ok = tokenExpiry("opaque")
	assert.False(t, ok)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "1"}).
		SignedString([]byte("k"))
	require.NoError(t, err)
	_, ok = tokenExpiry(noExp)
	assert.False(t, ok)
}
