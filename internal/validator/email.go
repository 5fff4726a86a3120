package validator

import (
	"regexp"

	"github.com/Nazarious-ucu/vibe-trading-launch/internal/models"
)

const (
	msgEmpty   = "Email cannot be empty"
	msgInvalid = "Invalid email format"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidationError carries the human-readable reason an address was rejected.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Is(target error) bool { return target == models.ErrInvalidEmail }

// ValidateEmail reports whether email is syntactically acceptable and, if not, why.
func ValidateEmail(email string) (bool, string) {
	if email == "" {
		return false, msgEmpty
	}
	if !emailPattern.MatchString(email) {
		return false, msgInvalid
	}
	return true, ""
}

// Check is ValidateEmail in error form.
func Check(email string) error {
	if ok, reason := ValidateEmail(email); !ok {
		return &ValidationError{Reason: reason}
	}
	return nil
}
