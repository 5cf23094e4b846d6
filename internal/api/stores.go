package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/domain"
)

// CreateStore creates a store owned by in.OwnerID.
func (c *Client) CreateStore(ctx context.Context, in domain.StoreInput) error {
	return c.do(ctx, http.MethodPost, "/stores", "/stores", in, nil)
}

// SearchStores lists stores matching term. An empty term lists all stores
// and no match yields an empty slice.
func (c *Client) SearchStores(ctx context.Context, term string) ([]domain.Store, error) {
	path := "/stores?" + url.Values{"search": {term}}.Encode()

	stores := []domain.Store{}
	if err := c.do(ctx, http.MethodGet, "/stores", path, nil, &stores); err != nil {
		return nil, err
	}
	return stores, nil
}

// Ping checks that the API answers by fetching the public store list.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/stores", "/stores", nil, nil)
}

// RateStore submits the caller's rating for a store. Values outside
// [MinRating, MaxRating] fail with KindValidation without contacting the
// server.
func (c *Client) RateStore(ctx context.Context, storeID domain.ID, value int) error {
	const route = "/stores/:id/rate"
	if !domain.ValidRatingValue(value) {
		return validationError(http.MethodPost, route,
			fmt.Sprintf("Rating must be between %d and %d", domain.MinRating, domain.MaxRating))
	}
	return c.do(ctx, http.MethodPost, route, "/stores/"+escapeID(storeID)+"/rate",
		domain.RateInput{Rating: value}, nil)
}

// OwnerStores lists the stores owned by the caller with their ratings.
func (c *Client) OwnerStores(ctx context.Context) ([]domain.Store, error) {
	stores := []domain.Store{}
	if err := c.do(ctx, http.MethodGet, "/owner/stores", "/owner/stores", nil, &stores); err != nil {
		return nil, err
	}
	return stores, nil
}
