package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/api"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/domain"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/form"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/pkg/logger"
)

// Confirmation prompts for destructive admin actions.
const (
	ConfirmDeleteUser  = "Are you sure you want to delete this user?"
	ConfirmDeleteStore = "Are you sure you want to delete this store? All ratings will be deleted too."
)

// Admin notification texts.
const (
	MsgUserCreated    = "User created successfully!"
	MsgUserUpdated    = "User updated successfully!"
	MsgUserDeleted    = "User deleted successfully!"
	MsgStoreCreated   = "Store created successfully!"
	MsgStoreUpdated   = "Store updated successfully!"
	MsgStoreDeleted   = "Store deleted successfully!"
	MsgCreateUserErr  = "Error creating user"
	MsgUpdateUserErr  = "Error updating user"
	MsgDeleteUserErr  = "Error deleting user"
	MsgCreateStoreErr = "Error creating store"
	MsgUpdateStoreErr = "Error updating store"
	MsgDeleteStoreErr = "Error deleting store"
	MsgUserInUse      = "Cannot delete a user who owns stores or has submitted ratings"
)

var (
	// ErrNotDeletable is returned when deleting a user the snapshot shows
	// still owns stores or ratings. No request is made.
	ErrNotDeletable = errors.New("user has stores or ratings")

	// ErrDeclined is returned when a confirmation is refused.
	ErrDeclined = errors.New("action not confirmed")
)

// AdminView manages users and stores. Its four snapshots are replaced
// together, and only when all four loads succeed.
type AdminView struct {
	api     AdminAPI
	notify  Notifier
	confirm Confirmer
	logger  *slog.Logger

	mu     sync.RWMutex
	stats  *domain.DashboardStats
	users  []domain.User
	stores []domain.Store
	owners []domain.User
}

// NewAdminView creates an empty admin screen. Call Load to populate it.
func NewAdminView(a AdminAPI, notify Notifier, confirm Confirmer, logger *slog.Logger) *AdminView {
	return &AdminView{api: a, notify: notify, confirm: confirm, logger: logger}
}

// Kind implements View.
func (v *AdminView) Kind() Kind { return KindAdmin }

// Load fetches the dashboard, users, stores and owners in parallel. On any
// failure the previous snapshots are kept.
func (v *AdminView) Load(ctx context.Context) error {
	var (
		stats  *domain.DashboardStats
		users  []domain.User
		stores []domain.Store
		owners []domain.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = v.api.Dashboard(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = v.api.ListUsers(gctx, domain.UserFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		stores, err = v.api.ListAdminStores(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		owners, err = v.api.ListUsers(gctx, domain.UserFilter{Role: domain.RoleOwner})
		return err
	})

	if err := g.Wait(); err != nil {
		logger.FromContext(ctx, v.logger).Error("error loading admin data", slog.String("error", err.Error()))
		return fmt.Errorf("load admin data: %w", err)
	}

	v.mu.Lock()
	v.stats, v.users, v.stores, v.owners = stats, users, stores, owners
	v.mu.Unlock()
	return nil
}

// Stats returns a copy of the dashboard snapshot, or nil before the first
// load.
func (v *AdminView) Stats() *domain.DashboardStats {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.stats == nil {
		return nil
	}
	return v.stats.Clone()
}

// Users returns the user list snapshot.
func (v *AdminView) Users() []domain.User {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]domain.User(nil), v.users...)
}

// Stores returns the store list snapshot.
func (v *AdminView) Stores() []domain.Store {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]domain.Store(nil), v.stores...)
}

// Owners returns the users with role OWNER, used to pick a store's owner.
func (v *AdminView) Owners() []domain.User {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]domain.User(nil), v.owners...)
}

// FindUser looks a user up in the snapshot.
func (v *AdminView) FindUser(id domain.ID) (domain.User, bool) {
	for _, u := range v.Users() {
		if u.ID == id {
			return u, true
		}
	}
	return domain.User{}, false
}

// FindStore looks a store up in the snapshot.
func (v *AdminView) FindStore(id domain.ID) (domain.Store, bool) {
	for _, s := range v.Stores() {
		if s.ID == id {
			return s, true
		}
	}
	return domain.Store{}, false
}

// CreateUser submits a create-user dialog.
func (v *AdminView) CreateUser(ctx context.Context, f *form.UserForm) error {
	return v.mutate(ctx, f.Check, func() error {
		return v.api.Signup(ctx, f.Input())
	}, MsgUserCreated, MsgCreateUserErr)
}

// UpdateUser submits an edit-user dialog.
func (v *AdminView) UpdateUser(ctx context.Context, f *form.UserForm) error {
	return v.mutate(ctx, f.Check, func() error {
		return v.api.UpdateUser(ctx, f.ID, f.Input())
	}, MsgUserUpdated, MsgUpdateUserErr)
}

// DeleteUser deletes a user after confirmation. Users the snapshot shows as
// owning stores or ratings are refused without a request.
func (v *AdminView) DeleteUser(ctx context.Context, id domain.ID) error {
	if u, ok := v.FindUser(id); ok && !u.Deletable() {
		v.notify.Notify(Notification{Severity: SeverityError, Message: MsgUserInUse})
		return ErrNotDeletable
	}
	if !v.confirm.Confirm(ConfirmDeleteUser) {
		return ErrDeclined
	}
	return v.mutate(ctx, nil, func() error {
		return v.api.DeleteUser(ctx, id)
	}, MsgUserDeleted, MsgDeleteUserErr)
}

// CreateStore submits a create-store dialog.
func (v *AdminView) CreateStore(ctx context.Context, f *form.StoreForm) error {
	return v.mutate(ctx, f.Check, func() error {
		return v.api.CreateStore(ctx, f.Input())
	}, MsgStoreCreated, MsgCreateStoreErr)
}

// UpdateStore submits an edit-store dialog.
func (v *AdminView) UpdateStore(ctx context.Context, f *form.StoreForm) error {
	return v.mutate(ctx, f.Check, func() error {
		return v.api.UpdateStore(ctx, f.ID, f.Input())
	}, MsgStoreUpdated, MsgUpdateStoreErr)
}

// DeleteStore deletes a store and its ratings after confirmation.
func (v *AdminView) DeleteStore(ctx context.Context, id domain.ID) error {
	if !v.confirm.Confirm(ConfirmDeleteStore) {
		return ErrDeclined
	}
	return v.mutate(ctx, nil, func() error {
		return v.api.DeleteStore(ctx, id)
	}, MsgStoreDeleted, MsgDeleteStoreErr)
}

// mutate runs check, then call, notifies the outcome and reloads every
// snapshot after a success.
func (v *AdminView) mutate(ctx context.Context, check func() error, call func() error, okMsg, errMsg string) error {
	if check != nil {
		if err := check(); err != nil {
			v.notify.Notify(Notification{Severity: SeverityError, Message: err.Error()})
			return err
		}
	}

	if err := call(); err != nil {
		v.notify.Notify(Notification{Severity: SeverityError, Message: api.Message(err, errMsg)})
		return err
	}
	v.notify.Notify(Notification{Severity: SeveritySuccess, Message: okMsg})

	// The change is on the server already; a failed refresh leaves stale
	// snapshots and is only logged.
	_ = v.Load(ctx)
	return nil
}

// Render draws the dashboard, users and stores sections.
func (v *AdminView) Render(w io.Writer) {
	v.RenderDashboard(w)
	fmt.Fprintln(w)
	v.RenderUsers(w)
	fmt.Fprintln(w)
	v.RenderStores(w)
}

// RenderDashboard draws the summary section.
func (v *AdminView) RenderDashboard(w io.Writer) {
	RenderDashboardStats(w, v.Stats())
}

// RenderDashboardStats draws totals, the role breakdown and the top stores.
func RenderDashboardStats(w io.Writer, stats *domain.DashboardStats) {
	heading(w, "Dashboard")
	if stats == nil {
		fmt.Fprintln(w, "  (not loaded)")
		return
	}

	tw := table(w)
	fmt.Fprintf(tw, "  Total Users\t%d\n", stats.TotalUsers)
	fmt.Fprintf(tw, "  Total Stores\t%d\n", stats.TotalStores)
	fmt.Fprintf(tw, "  Total Ratings\t%d\n", stats.TotalRatings)
	_ = tw.Flush()

	fmt.Fprintln(w)
	heading(w, "Users by Role")
	tw = table(w)
	for _, rc := range stats.RoleBreakdown() {
		fmt.Fprintf(tw, "  %s\t%d\n", roleBadge(rc.Role), rc.Count)
	}
	_ = tw.Flush()

	fmt.Fprintln(w)
	heading(w, "Top Rated Stores")
	if len(stats.TopStores) == 0 {
		fmt.Fprintln(w, "  No ratings yet")
		return
	}
	tw = table(w)
	fmt.Fprintln(tw, "  NAME\tOWNER\tRATING\tRATINGS")
	for _, s := range stats.TopStores {
		fmt.Fprintf(tw, "  %s\t%s\t%s %.1f\t%d\n", s.Name, s.Owner, stars(s.AverageRating), s.AverageRating, s.TotalRatings)
	}
	_ = tw.Flush()
}

// RenderUsers draws the users table.
func (v *AdminView) RenderUsers(w io.Writer) {
	RenderUserList(w, v.Users())
}

// RenderUserList draws users as a table.
func RenderUserList(w io.Writer, users []domain.User) {
	heading(w, fmt.Sprintf("Users (%d)", len(users)))
	if len(users) == 0 {
		fmt.Fprintln(w, "  No users")
		return
	}

	tw := table(w)
	fmt.Fprintln(tw, "  ID\tNAME\tEMAIL\tROLE\tRATINGS\tSTORES\tDELETABLE")
	for _, u := range users {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			u.ID, u.Name, u.Email, roleBadge(u.Role), u.Count.Ratings, u.Count.Stores, yesNo(u.Deletable()))
	}
	_ = tw.Flush()
}

// RenderStores draws the stores table.
func (v *AdminView) RenderStores(w io.Writer) {
	RenderStoreList(w, v.Stores())
}

// RenderStoreList draws stores as a table.
func RenderStoreList(w io.Writer, stores []domain.Store) {
	heading(w, fmt.Sprintf("Stores (%d)", len(stores)))
	if len(stores) == 0 {
		fmt.Fprintln(w, "  No stores")
		return
	}

	tw := table(w)
	fmt.Fprintln(tw, "  ID\tNAME\tADDRESS\tOWNER\tRATING\tRATINGS")
	for _, s := range stores {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%.1f\t%d\n",
			s.ID, s.Name, truncate(s.Address, 40), s.OwnerName(), s.RoundedAverage(), s.TotalRatings)
	}
	_ = tw.Flush()
}
