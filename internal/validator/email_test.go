package validator_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Nazarious-ucu/vibe-trading-launch/internal/models"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/validator"
)

func TestValidateEmail(t *testing.T) {
	cases := []struct {
		name      string
		email     string
		wantValid bool
		wantMsg   string
	}{
		{"empty", "", false, "Email cannot be empty"},
		{"no at sign", "not-an-email", false, "Invalid email format"},
		{"no domain", "user@", false, "Invalid email format"},
		{"no tld", "user@example", false, "Invalid email format"},
		{"one letter tld", "user@example.c", false, "Invalid email format"},
		{"numeric tld", "user@example.12", false, "Invalid email format"},
		{"spaces", "us er@example.com", false, "Invalid email format"},
		{"double at", "a@b@example.com", false, "Invalid email format"},
		{"simple", "user@example.com", true, ""},
		{"two letter tld", "x@y.io", true, ""},
		{"plus and dots", "first.last+tag@mail.example.co.uk", true, ""},
		{"percent and dash", "a%b-c@sub-domain.example.org", true, ""},
		{"upper case", "User@Example.COM", true, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			valid, msg := validator.ValidateEmail(tc.email)
			assert.Equal(t, tc.wantValid, valid)
			assert.Equal(t, tc.wantMsg, msg)
			if !valid {
				assert.NotEmpty(t, msg)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	assert.NoError(t, validator.Check("user@example.com"))

	err := validator.Check("not-an-email")
	assert.True(t, errors.Is(err, models.ErrInvalidEmail))

	var vErr *validator.ValidationError
	assert.True(t, errors.As(err, &vErr))
	assert.Equal(t, "Invalid email format", vErr.Reason)
}
