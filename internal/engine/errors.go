package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInvalidInput marks malformed requests. It is never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDataUnavailable is returned by factor analysis when the stay itself is unusable.
	ErrDataUnavailable = fmt.Errorf("data unavailable: %w", ErrInvalidInput)

	// ErrServiceUnavailable marks a collaborator that failed or timed out.
	ErrServiceUnavailable = errors.New("service unavailable")

	errNotConfigured = errors.New("collaborator not configured")
	errNotFinite     = errors.New("collaborator returned a non-finite value")
)

// InputError collects per-field validation messages.
type InputError struct {
	fields map[string][]string
}

func newInputError() *InputError {
	return &InputError{fields: make(map[string][]string)}
}

func (e *InputError) add(field, msg string) {
	e.fields[field] = append(e.fields[field], msg)
}

func (e *InputError) empty() bool {
	return len(e.fields) == 0
}

// orNil returns nil when no field failed so callers can return it directly.
func (e *InputError) orNil() error {
	if e.empty() {
		return nil
	}
	return e
}

// Fields returns the failing fields and their messages.
func (e *InputError) Fields() map[string][]string {
	return e.fields
}

func (e *InputError) Error() string {
	names := make([]string, 0, len(e.fields))
	for name := range e.fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+strings.Join(e.fields[name], ", "))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrInvalidInput) match any InputError.
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// AsInputError returns the InputError inside err, if any.
func AsInputError(err error) *InputError {
	var inputErr *InputError
	if errors.As(err, &inputErr) {
		return inputErr
	}
	return nil
}

func unavailable(collaborator string, err error) error {
	return fmt.Errorf("%s: %w: %v", collaborator, ErrServiceUnavailable, err)
}
