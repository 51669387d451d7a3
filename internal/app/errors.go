package service

import (
	"errors"

	"github.com/okian/segview/internal/domain/form"
)

// Sentinel kinds for controller errors.
var (
	ErrValidation     = errors.New("validation failed")
	ErrSubmitInFlight = errors.New("submit already in flight")
)

// InFlightMessage is shown when a submit is rejected by the in-flight guard.
const InFlightMessage = "A prediction is already in progress"

// ValidationError is raised when the form cannot be turned into a request.
// No network call is made.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string { return form.InvalidValuesMessage }

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
