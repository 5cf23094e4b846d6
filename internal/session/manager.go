package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/domain"
)

// ErrIncompleteLogin is returned when the server accepts credentials but the
// reply lacks a token or a usable role.
var ErrIncompleteLogin = errors.New("login response missing token or role")

// Authenticator exchanges credentials for a token and user projection.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*domain.LoginResponse, error)
}

// Manager owns the session for the life of the program: it restores it from
// storage, replaces it on login and clears it on logout. The in-memory value
// is only changed after the storage write it mirrors has succeeded.
type Manager struct {
	mu      sync.RWMutex
	current *domain.Session

	storage Storage
	auth    Authenticator
	logger  *slog.Logger
	now     func() time.Time
}

// NewManager creates a session manager. Call Init before use.
func NewManager(storage Storage, auth Authenticator, logger *slog.Logger) *Manager {
	return &Manager{
		storage: storage,
		auth:    auth,
		logger:  logger,
		now:     time.Now,
	}
}

// SetAuthenticator replaces the authenticator. It exists because the API
// client needs the manager as its token source and the manager needs the
// API client to log in.
func (m *Manager) SetAuthenticator(auth Authenticator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auth = auth
}

// Init restores the persisted session. A missing, partial, corrupt or
// expired record is cleared and yields no session.
func (m *Manager) Init(ctx context.Context) (*domain.Session, error) {
	token, hasToken, err := m.storage.Get(ctx, KeyToken)
	if errors.Is(err, ErrCorrupt) {
		m.logger.Warn("discarding corrupt session storage", slog.String("error", err.Error()))
		return nil, m.clear(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("read session token: %w", err)
	}
	raw, hasUser, err := m.storage.Get(ctx, KeyUser)
	if errors.Is(err, ErrCorrupt) {
		m.logger.Warn("discarding corrupt session storage", slog.String("error", err.Error()))
		return nil, m.clear(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("read session user: %w", err)
	}

	if !hasToken && !hasUser {
		m.set(nil)
		return nil, nil
	}
	if !hasToken || !hasUser || token == "" {
		m.logger.Warn("discarding partial session record")
		return nil, m.clear(ctx)
	}

	var s domain.Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		m.logger.Warn("discarding unreadable session record", slog.String("error", err.Error()))
		return nil, m.clear(ctx)
	}
	if !domain.IsValidRole(string(s.Role)) {
		m.logger.Warn("discarding session with unknown role", slog.String("role", string(s.Role)))
		return nil, m.clear(ctx)
	}
	if exp, ok := tokenExpiry(token); ok && !exp.After(m.now()) {
		m.logger.Info("stored session token expired", slog.Time("expired_at", exp))
		return nil, m.clear(ctx)
	}

	s.Token = token
	m.set(&s)
	restored, _ := m.Current()
	return restored, nil
}

// Login authenticates and persists the new session, replacing any previous one.
func (m *Manager) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	m.mu.RLock()
	auth := m.auth
	m.mu.RUnlock()
	if auth == nil {
		return nil, errors.New("session manager has no authenticator")
	}

	resp, err := auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	s := resp.Session()
	if s.Token == "" || !domain.IsValidRole(string(s.Role)) {
		return nil, ErrIncompleteLogin
	}

	userJSON, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode session user: %w", err)
	}

	if err := m.storage.Set(ctx, KeyToken, s.Token); err != nil {
		return nil, fmt.Errorf("persist session token: %w", err)
	}
	if err := m.storage.Set(ctx, KeyUser, string(userJSON)); err != nil {
		if derr := m.storage.Delete(ctx, KeyToken); derr != nil {
			m.logger.Error("failed to roll back session token", slog.String("error", derr.Error()))
		}
		return nil, fmt.Errorf("persist session user: %w", err)
	}

	m.set(s)
	m.logger.Info("logged in",
		slog.String("user_id", s.UserID.String()),
		slog.String("role", string(s.Role)),
	)
	current, _ := m.Current()
	return current, nil
}

// Logout removes the persisted session. The in-memory session is cleared
// even when storage fails.
func (m *Manager) Logout(ctx context.Context) error {
	return m.clear(ctx)
}

// Current returns a copy of the active session, or false when logged out.
func (m *Manager) Current() (*domain.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return nil, false
	}
	s := *m.current
	return &s, true
}

// Token returns the bearer token of the active session, or "".
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return ""
	}
	return m.current.Token
}

func (m *Manager) set(s *domain.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = s
}

func (m *Manager) clear(ctx context.Context) error {
	m.set(nil)
	if err := m.storage.Delete(ctx, KeyToken, KeyUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// tokenExpiry reads the exp claim without verifying the signature; the
// client holds no key and the server re-validates every request. Tokens
// that are not JWTs report no expiry.
func tokenExpiry(token string) (time.Time, bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
