package domain

import "math"

// RecentRatingsLimit is how many ratings the owner view lists per store.
const RecentRatingsLimit = 5

// Store is a rated entity with an owner and aggregate rating statistics.
type Store struct {
	ID            ID       `json:"id"`
	Name          string   `json:"name"`
	Email         string   `json:"email,omitempty"`
	Address       string   `json:"address"`
	OwnerID       ID       `json:"ownerId"`
	Owner         *Owner   `json:"owner,omitempty"`
	AverageRating float64  `json:"averageRating"`
	TotalRatings  int      `json:"totalRatings"`
	Ratings       []Rating `json:"ratings,omitempty"`
}

// Owner is the owner summary embedded in a store.
type Owner struct {
	ID    ID     `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// OwnerName returns the embedded owner's name or an empty string.
func (s Store) OwnerName() string {
	if s.Owner == nil {
		return ""
	}
	return s.Owner.Name
}

// RecentRatings returns at most RecentRatingsLimit ratings in server order,
// which is most recent first.
func (s Store) RecentRatings() []Rating {
	if len(s.Ratings) <= RecentRatingsLimit {
		return s.Ratings
	}
	return s.Ratings[:RecentRatingsLimit]
}

// RoundedAverage rounds the average to one decimal place for display.
func (s Store) RoundedAverage() float64 {
	return math.Round(s.AverageRating*10) / 10
}

// StoreInput is the payload for creating (POST /stores) or updating
// (PUT /admin/stores/:id) a store.
type StoreInput struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address"`
	OwnerID ID     `json:"ownerId"`
}
