package core

import "errors"

// ErrInvalidData is matched by every InvalidDataError via errors.Is.
var ErrInvalidData = errors.New("invalid data")

// InvalidDataError reports an input file that cannot produce a spectrum.
type InvalidDataError struct {
	Reason string
}

func (e *InvalidDataError) Error() string {
	return "invalid data: " + e.Reason
}

// Is reports whether target is ErrInvalidData.
func (e *InvalidDataError) Is(target error) bool {
	return target == ErrInvalidData
}

// NewInvalidData returns an InvalidDataError carrying reason.
func NewInvalidData(reason string) error {
	return &InvalidDataError{Reason: reason}
}
