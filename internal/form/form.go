// Package form holds the state of the user and store dialogs. Checks made
// here are hints for the person typing; the server decides what is valid.
package form

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/domain"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/pkg/validator"
)

// Mode says whether a dialog creates a new record or edits an existing one.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Display limits shown next to the inputs.
const (
	NameMax    = 60
	AddressMax = 400
)

// Field labels.
const (
	LabelName          = "Name (20-60 characters)"
	LabelEmail         = "Email"
	LabelPassword      = "Password (8-16 chars, uppercase + special char)"
	LabelLoginPassword = "Password"
	LabelAddress       = "Address (up to 400 characters)"
	LabelRole          = "Role"
	LabelOwner         = "Owner"
)

// Counter is a live character count for a bounded field.
type Counter struct {
	Field string
	Len   int
	Max   int
}

func (c Counter) String() string {
	return fmt.Sprintf("%d/%d characters", c.Len, c.Max)
}

// Over reports whether the field is longer than its display limit.
func (c Counter) Over() bool {
	return c.Len > c.Max
}

func count(field, value string, max int) Counter {
	return Counter{Field: field, Len: utf8.RuneCountInString(value), Max: max}
}

// UserForm is the create/edit user dialog.
type UserForm struct {
	Mode     Mode        `json:"-"`
	ID       domain.ID   `json:"-"`
	Name     string      `json:"name" validate:"required"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required_if=Mode 0"`
	Address  string      `json:"address"`
	Role     domain.Role `json:"role" validate:"required,oneof=ADMIN OWNER USER"`
}

// NewUserForm returns an empty create dialog with role USER preselected.
func NewUserForm() *UserForm {
	return &UserForm{Mode: ModeCreate, Role: domain.RoleUser}
}

// EditUserForm returns an edit dialog prefilled from u. The password is
// left empty and is never sent on update.
func EditUserForm(u domain.User) *UserForm {
	return &UserForm{
		Mode:    ModeEdit,
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Address: u.Address,
		Role:    u.Role,
	}
}

// Title is the dialog heading.
func (f *UserForm) Title() string {
	if f.Mode == ModeEdit {
		return "Edit User"
	}
	return "Create User"
}

// Check reports missing or malformed fields. Length and password strength
// are left to the server.
func (f *UserForm) Check() error {
	f.Role = domain.Role(strings.ToUpper(strings.TrimSpace(string(f.Role))))
	return validator.Validate(f)
}

// Counters returns the character counters shown under the inputs.
func (f *UserForm) Counters() []Counter {
	return []Counter{
		count("name", f.Name, NameMax),
		count("address", f.Address, AddressMax),
	}
}

// Input builds the request payload.
func (f *UserForm) Input() domain.UserInput {
	in := domain.UserInput{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Address: f.Address,
		Role:    f.Role,
	}
	if f.Mode == ModeCreate {
		in.Password = f.Password
	}
	return in
}

// StoreForm is the create/edit store dialog.
type StoreForm struct {
	Mode    Mode      `json:"-"`
	ID      domain.ID `json:"-"`
	Name    string    `json:"name" validate:"required"`
	Email   string    `json:"email" validate:"omitempty,email"`
	Address string    `json:"address" validate:"required"`
	OwnerID domain.ID `json:"ownerId" validate:"required"`
}

// NewStoreForm returns an empty create dialog.
func NewStoreForm() *StoreForm {
	return &StoreForm{Mode: ModeCreate}
}

// EditStoreForm returns an edit dialog prefilled from s.
func EditStoreForm(s domain.Store) *StoreForm {
	return &StoreForm{
		Mode:    ModeEdit,
		ID:      s.ID,
		Name:    s.Name,
		Email:   s.Email,
		Address: s.Address,
		OwnerID: s.OwnerID,
	}
}

// Title is the dialog heading.
func (f *StoreForm) Title() string {
	if f.Mode == ModeEdit {
		return "Edit Store"
	}
	return "Create Store"
}

// Check reports missing or malformed fields.
func (f *StoreForm) Check() error {
	return validator.Validate(f)
}

// Counters returns the character counters shown under the inputs.
func (f *StoreForm) Counters() []Counter {
	return []Counter{
		count("name", f.Name, NameMax),
		count("address", f.Address, AddressMax),
	}
}

// Input builds the request payload.
func (f *StoreForm) Input() domain.StoreInput {
	return domain.StoreInput{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Address: f.Address,
		OwnerID: f.OwnerID,
	}
}
