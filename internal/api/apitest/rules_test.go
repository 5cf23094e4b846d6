package apitest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/domain"
)

func TestCheckPassword(t *testing.T) {
	tests := map[string]bool{
		"Abc123!@":          true,
		"Password#1":        true,
		"abc123!@":          false, // no uppercase
		"Abc12345":          false, // no special character
		"Ab!1":              false, // too short
		"Abcdefghijklmno!x": false, // 17 characters
	}
	for pw, ok := range tests {
		assert.Equal(t, ok, checkPassword(pw) == "", "password %q", pw)
	}
}

func TestCheckName(t *testing.T) {
	assert.Equal(t, MsgNameLength, checkName(strings.Repeat("a", 19)))
	assert.Empty(t, checkName(strings.Repeat("a", 20)))
	assert.Empty(t, checkName(strings.Repeat("a", 60)))
	assert.Equal(t, MsgNameLength, checkName(strings.Repeat("a", 61)))
}

func TestCheckAddress(t *testing.T) {
	assert.Empty(t, checkAddress("", false))
	assert.Equal(t, MsgAddressMissing, checkAddress(" ", true))
	assert.Empty(t, checkAddress(strings.Repeat("x", 400), true))
	assert.Equal(t, MsgAddressLength, checkAddress(strings.Repeat("x", 401), true))
}

func TestCheckEmailAndRole(t *testing.T) {
	assert.Empty(t, checkEmail("a@x.com"))
	assert.Equal(t, MsgEmailInvalid, checkEmail("not-an-email"))
	assert.Empty(t, checkRole(domain.RoleOwner))
	assert.Equal(t, MsgRoleInvalid, checkRole("ROOT"))
}

func TestTokenRoundTrip(t *testing.T) {
	s := New(t)
	id := s.AddUser(UserSeed{Name: "Token Holder Account Name", Email: "t@x.com", Role: domain.RoleOwner})

	claims, err := s.parseToken(s.TokenFor(id))
	assert.NoError(t, err)
	assert.Equal(t, domain.RoleOwner, domain.Role(claims.Role))
	assert.Equal(t, id.String(), claims.Subject)

	_, err = s.parseToken(s.ExpiredTokenFor(id))
	assert.Error(t, err)
}
