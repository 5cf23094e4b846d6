// Package view holds the role-specific screens of the client: the state each
// screen displays, the actions it offers and how it is rendered as text.
package view

import (
	"context"
	"io"
	"log/slog"

	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/domain"
)

// Kind names a top-level screen.
type Kind int

const (
	KindLogin Kind = iota
	KindAdmin
	KindUser
	KindOwner
)

func (k Kind) String() string {
	switch k {
	case KindAdmin:
		return "admin"
	case KindUser:
		return "user"
	case KindOwner:
		return "owner"
	default:
		return "login"
	}
}

// View is a screen that can fetch its data and draw itself.
type View interface {
	Kind() Kind
	Load(ctx context.Context) error
	Render(w io.Writer)
}

// AdminAPI is the part of the API the admin screen uses.
type AdminAPI interface {
	Dashboard(ctx context.Context) (*domain.DashboardStats, error)
	ListUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, error)
	ListAdminStores(ctx context.Context) ([]domain.Store, error)
	Signup(ctx context.Context, in domain.UserInput) error
	UpdateUser(ctx context.Context, id domain.ID, in domain.UserInput) error
	DeleteUser(ctx context.Context, id domain.ID) error
	CreateStore(ctx context.Context, in domain.StoreInput) error
	UpdateStore(ctx context.Context, id domain.ID, in domain.StoreInput) error
	DeleteStore(ctx context.Context, id domain.ID) error
}

// StoreAPI is the part of the API the end-user screen uses.
type StoreAPI interface {
	SearchStores(ctx context.Context, term string) ([]domain.Store, error)
	RateStore(ctx context.Context, storeID domain.ID, value int) error
}

// OwnerAPI is the part of the API the owner screen uses.
type OwnerAPI interface {
	OwnerStores(ctx context.Context) ([]domain.Store, error)
}

// API is everything the router needs to build any screen.
type API interface {
	AdminAPI
	StoreAPI
	OwnerAPI
}

// Confirmer asks the person to approve a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Router picks the screen for a session. Each role sees exactly its own
// screen; no session or an unknown role shows the login screen.
type Router struct {
	api     API
	notify  Notifier
	confirm Confirmer
	logger  *slog.Logger
}

// NewRouter creates a router whose screens share api, notify and confirm.
func NewRouter(api API, notify Notifier, confirm Confirmer, logger *slog.Logger) *Router {
	return &Router{api: api, notify: notify, confirm: confirm, logger: logger}
}

// Resolve returns the screen kind for s.
func (r *Router) Resolve(s *domain.Session) Kind {
	if s == nil {
		return KindLogin
	}
	switch s.Role {
	case domain.RoleAdmin:
		return KindAdmin
	case domain.RoleUser:
		return KindUser
	case domain.RoleOwner:
		return KindOwner
	default:
		return KindLogin
	}
}

// View builds a fresh screen for s.
func (r *Router) View(s *domain.Session) View {
	switch r.Resolve(s) {
	case KindAdmin:
		return NewAdminView(r.api, r.notify, r.confirm, r.logger)
	case KindUser:
		return NewUserView(r.api, r.notify, r.logger)
	case KindOwner:
		return NewOwnerView(r.api, r.logger)
	default:
		return NewLoginView()
	}
}
