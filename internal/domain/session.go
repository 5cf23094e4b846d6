package domain

// Session is the client-held record of the authenticated identity.
type Session struct {
	UserID ID     `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Role   Role   `json:"role"`
	Token  string `json:"-"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the body returned by POST /login.
type LoginResponse struct {
	Token string  `json:"token"`
	User  Session `json:"user"`
}

// Session builds the client session from a login response.
func (r LoginResponse) Session() *Session {
	s := r.User
	s.Token = r.Token
	return &s
}
