package view

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/api"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/domain"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/pkg/logger"
)

// End-user notification texts.
const (
	MsgRated      = "Rating submitted!"
	MsgRateErr    = "Error rating store"
	MsgNoStores   = "No stores found"
	searchHeading = "Store Ratings"
)

// UserView lets an end-user search stores and rate them.
type UserView struct {
	api    StoreAPI
	notify Notifier
	logger *slog.Logger

	mu     sync.RWMutex
	term   string
	stores []domain.Store
}

// NewUserView creates an empty end-user screen.
func NewUserView(a StoreAPI, notify Notifier, logger *slog.Logger) *UserView {
	return &UserView{api: a, notify: notify, logger: logger}
}

// Kind implements View.
func (v *UserView) Kind() Kind { return KindUser }

// Load repeats the last search.
func (v *UserView) Load(ctx context.Context) error {
	return v.Search(ctx, v.Term())
}

// Search replaces the list with the stores matching term. On failure the
// list and the remembered term are left as they were.
func (v *UserView) Search(ctx context.Context, term string) error {
	stores, err := v.api.SearchStores(ctx, term)
	if err != nil {
		logger.FromContext(ctx, v.logger).Error("error loading stores", slog.String("term", term), slog.String("error", err.Error()))
		return fmt.Errorf("search stores: %w", err)
	}

	v.mu.Lock()
	v.term, v.stores = term, stores
	v.mu.Unlock()
	return nil
}

// Rate submits a rating and reloads the list so averages reflect it.
// Values outside 1..5 are refused before any request.
func (v *UserView) Rate(ctx context.Context, storeID domain.ID, value int) error {
	if err := v.api.RateStore(ctx, storeID, value); err != nil {
		v.notify.Notify(Notification{Severity: SeverityError, Message: api.Message(err, MsgRateErr)})
		return err
	}
	v.notify.Notify(Notification{Severity: SeveritySuccess, Message: MsgRated})
	_ = v.Load(ctx)
	return nil
}

// Term returns the last successful search term.
func (v *UserView) Term() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.term
}

// Stores returns the current list.
func (v *UserView) Stores() []domain.Store {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]domain.Store(nil), v.stores...)
}

// Render draws the store cards.
func (v *UserView) Render(w io.Writer) {
	stores := v.Stores()
	title := searchHeading
	if term := v.Term(); term != "" {
		title = fmt.Sprintf("%s matching %q", searchHeading, term)
	}
	heading(w, title)
	if len(stores) == 0 {
		fmt.Fprintf(w, "  %s\n", MsgNoStores)
		return
	}

	for _, s := range stores {
		fmt.Fprintf(w, "  [%s] %s\n", s.ID, s.Name)
		fmt.Fprintf(w, "      %s\n", s.Address)
		fmt.Fprintf(w, "      %s (%d ratings)\n", stars(s.AverageRating), s.TotalRatings)
		fmt.Fprintf(w, "      Owner: %s\n", s.OwnerName())
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Rate a store with: rate <store id> <%d-%d>\n", domain.MinRating, domain.MaxRating)
}
