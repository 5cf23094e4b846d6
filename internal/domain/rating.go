package domain

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Rating is a single user's score for a store.
type Rating struct {
	ID      ID        `json:"id"`
	UserID  ID        `json:"userId,omitempty"`
	StoreID ID        `json:"storeId,omitempty"`
	Value   int       `json:"rating"`
	User    *RaterRef `json:"user,omitempty"`
}

// RaterRef names the user who submitted a rating.
type RaterRef struct {
	Name string `json:"name"`
}

// RaterName returns the rater's name or an empty string.
func (r Rating) RaterName() string {
	if r.User == nil {
		return ""
	}
	return r.User.Name
}

// ValidRatingValue reports whether v is an allowed rating.
func ValidRatingValue(v int) bool {
	return v >= MinRating && v <= MaxRating
}

// RateInput is the body of POST /stores/:id/rate.
type RateInput struct {
	Rating int `json:"rating"`
}
