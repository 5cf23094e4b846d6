package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testStruct struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"oneof=ADMIN OWNER USER"`
	Score int    `validate:"gte=1,lte=5"`
}

func validStruct() testStruct {
	return testStruct{Name: "Alice", Email: "alice@example.com", Role: "USER", Score: 3}
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(validStruct()))
}

func TestValidate_MissingRequired(t *testing.T) {
	s := validStruct()
	s.Name = ""
	err := Validate(s)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "is required", valErr.Fields()["name"])
}

func TestValidate_InvalidEmail(t *testing.T) {
	s := validStruct()
	s.Email = "not-an-email"
	err := Validate(s)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must be a valid email address", valErr.Fields()["email"])
}

func TestValidate_OneOf(t *testing.T) {
	s := validStruct()
	s.Role = "GUEST"
	err := Validate(s)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must be one of: ADMIN, OWNER, USER", valErr.Fields()["role"])
}

func TestValidate_FieldWithoutJSONTagUsesGoName(t *testing.T) {
	s := validStruct()
	s.Score = 9
	err := Validate(s)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields(), "Score")
}

func TestValidationError_MessageIsSorted(t *testing.T) {
	err := Validate(testStruct{Role: "USER", Score: 1})
	require.Error(t, err)
	assert.Equal(t, "email is required; name is required", err.Error())
}

func TestVar(t *testing.T) {
	assert.NoError(t, Var("rating", 4, "gte=1,lte=5"))

	err := Var("rating", 6, "gte=1,lte=5")
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must be less than or equal to 5", valErr.Fields()["rating"])
}
