package view

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/domain"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/pkg/logger"
)

// OwnerView shows an owner's stores with their recent ratings. It is
// read-only.
type OwnerView struct {
	api    OwnerAPI
	logger *slog.Logger

	mu     sync.RWMutex
	stores []domain.Store
}

// NewOwnerView creates an empty owner screen.
func NewOwnerView(a OwnerAPI, logger *slog.Logger) *OwnerView {
	return &OwnerView{api: a, logger: logger}
}

// Kind implements View.
func (v *OwnerView) Kind() Kind { return KindOwner }

// Load fetches the caller's stores.
func (v *OwnerView) Load(ctx context.Context) error {
	stores, err := v.api.OwnerStores(ctx)
	if err != nil {
		logger.FromContext(ctx, v.logger).Error("error loading owner stores", slog.String("error", err.Error()))
		return fmt.Errorf("load owner stores: %w", err)
	}

	v.mu.Lock()
	v.stores = stores
	v.mu.Unlock()
	return nil
}

// Stores returns the current list.
func (v *OwnerView) Stores() []domain.Store {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]domain.Store(nil), v.stores...)
}

// Render draws each store with up to RecentRatingsLimit ratings.
func (v *OwnerView) Render(w io.Writer) {
	stores := v.Stores()
	heading(w, "My Stores")
	if len(stores) == 0 {
		fmt.Fprintln(w, "  You do not own any stores yet")
		return
	}

	for _, s := range stores {
		fmt.Fprintf(w, "  %s\n", s.Name)
		fmt.Fprintf(w, "      %s\n", s.Address)
		fmt.Fprintf(w, "      %s %.1f (%d ratings)\n", stars(s.AverageRating), s.RoundedAverage(), s.TotalRatings)

		recent := s.RecentRatings()
		if len(recent) == 0 {
			continue
		}
		fmt.Fprintln(w, "      Recent Ratings:")
		tw := table(w)
		for _, r := range recent {
			fmt.Fprintf(tw, "        %s\t%s\n", r.RaterName(), stars(float64(r.Value)))
		}
		_ = tw.Flush()
	}
}
