package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Nazarious-ucu/vibe-trading-launch/internal/models"
)

// LocationError is a failure of one candidate location during one step.
type LocationError struct {
	Location string
	Op       string
	Err      error
}

func (e *LocationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Location, e.Op, e.Err)
}

func (e *LocationError) Unwrap() error { return e.Err }

func (e *LocationError) Is(target error) bool { return target == models.ErrStorageUnavailable }

// ExhaustedError is returned by Add when no candidate location accepted the write.
type ExhaustedError struct {
	Attempts []*LocationError
}

func (e *ExhaustedError) Error() string {
	if len(e.Attempts) == 0 {
		return models.ErrStorageExhausted.Error() + ": no locations configured"
	}
	causes := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		causes = append(causes, a.Error())
	}
	return models.ErrStorageExhausted.Error() + ": " + strings.Join(causes, "; ")
}

func (e *ExhaustedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		errs = append(errs, a)
	}
	return errs
}

func (e *ExhaustedError) Is(target error) bool { return target == models.ErrStorageExhausted }

func locationErr(loc Location, op string, err error) *LocationError {
	var le *LocationError
	if errors.As(err, &le) && le.Location == loc.Name() {
		return le
	}
	return &LocationError{Location: loc.Name(), Op: op, Err: err}
}
