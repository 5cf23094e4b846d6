package apitest

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/domain"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/pkg/validator"
)

// Field rules enforced by the server. The client only hints at them.
const (
	MinNameLen     = 20
	MaxNameLen     = 60
	MaxAddressLen  = 400
	MinPasswordLen = 8
	MaxPasswordLen = 16
)

// Messages returned for rejected input.
const (
	MsgNameLength     = "Name must be between 20 and 60 characters"
	MsgAddressLength  = "Address must not exceed 400 characters"
	MsgAddressMissing = "Address is required"
	MsgEmailInvalid   = "Invalid email format"
	MsgPasswordRule   = "Password must be 8-16 characters and include at least one uppercase letter and one special character"
	MsgRoleInvalid    = "Invalid role"
	MsgEmailTaken     = "User already exists with this email"
	MsgOwnerInvalid   = "Owner must be an existing user with role OWNER"
	MsgRatingRange    = "Rating must be between 1 and 5"
	MsgUserInUse      = "Cannot delete user with existing stores or ratings"
	MsgUserNotFound   = "User not found"
	MsgStoreNotFound  = "Store not found"
	MsgBadCredentials = "Invalid credentials"
	MsgBadBody        = "Invalid request body"
)

func checkName(name string) string {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < MinNameLen || n > MaxNameLen {
		return MsgNameLength
	}
	return ""
}

func checkEmail(email string) string {
	if validator.Var("email", email, "required,email") != nil {
		return MsgEmailInvalid
	}
	return ""
}

func checkAddress(address string, required bool) string {
	if required && strings.TrimSpace(address) == "" {
		return MsgAddressMissing
	}
	if utf8.RuneCountInString(address) > MaxAddressLen {
		return MsgAddressLength
	}
	return ""
}

func checkPassword(password string) string {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLen || n > MaxPasswordLen {
		return MsgPasswordRule
	}
	var upper, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r):
			special = true
		}
	}
	if !upper || !special {
		return MsgPasswordRule
	}
	return ""
}

func checkRole(role domain.Role) string {
	if !domain.IsValidRole(string(role)) {
		return MsgRoleInvalid
	}
	return ""
}

// firstProblem returns the first non-empty message.
func firstProblem(msgs ...string) string {
	for _, m := range msgs {
		if m != "" {
			return m
		}
	}
	return ""
}
