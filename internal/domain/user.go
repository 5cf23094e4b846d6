package domain

// User is the admin-facing projection of a registered account.
type User struct {
	ID      ID         `json:"id"`
	Name    string     `json:"name"`
	Email   string     `json:"email"`
	Address string     `json:"address,omitempty"`
	Role    Role       `json:"role"`
	Count   UserCounts `json:"_count"`
}

// UserCounts holds the number of records a user owns on the server.
type UserCounts struct {
	Ratings int `json:"ratings"`
	Stores  int `json:"stores"`
}

// Deletable reports whether the server would accept deleting this user:
// users that own stores or have rated stores cannot be removed.
func (u User) Deletable() bool {
	return u.Count.Stores == 0 && u.Count.Ratings == 0
}

// UserInput is the payload for creating (POST /signup) or updating
// (PUT /admin/users/:id) a user. Password is omitted on update.
type UserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Address  string `json:"address,omitempty"`
	Role     Role   `json:"role"`
}

// UserFilter narrows GET /admin/users.
type UserFilter struct {
	Role Role
}
