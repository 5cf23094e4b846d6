package view

import (
	"context"
	"fmt"
	"io"
)

// LoginView is shown when there is no session.
type LoginView struct {
	alert string
}

// NewLoginView creates the login screen.
func NewLoginView() *LoginView {
	return &LoginView{}
}

// Kind implements View.
func (v *LoginView) Kind() Kind { return KindLogin }

// Load implements View. The login screen has nothing to fetch.
func (v *LoginView) Load(context.Context) error { return nil }

// SetAlert sets the inline error shown above the form. Empty clears it.
func (v *LoginView) SetAlert(msg string) { v.alert = msg }

// Alert returns the inline error.
func (v *LoginView) Alert() string { return v.alert }

// Render draws the sign-in heading and any alert.
func (v *LoginView) Render(w io.Writer) {
	heading(w, "Store Rating System")
	fmt.Fprintln(w, "  Sign in with your email and password")
	if v.alert != "" {
		fmt.Fprintf(w, "  %s %s\n", severityColor[SeverityError].Sprint("!"), v.alert)
	}
}
