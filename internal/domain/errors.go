package domain

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// ValidationError rejects a payload, key or filter before any store call.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e ValidationError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "invalid value"
	}
	if len(e.Fields) == 0 {
		return reason
	}
	return fmt.Sprintf("%s: %s", strings.Join(e.Fields, ", "), reason)
}

func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	if ok {
		return true
	}
	_, ok = target.(*ValidationError)
	return ok
}

var ErrValidation = ValidationError{}

// ErrEmptyUpdate is returned when an update carries no field to change.
var ErrEmptyUpdate = errors.New("no fields to update")

// CreateFailedError means the store accepted an insert but returned no row.
type CreateFailedError struct {
	Resource string
}

func (e CreateFailedError) Error() string {
	return fmt.Sprintf("failed to create %s", e.Resource)
}

func (e CreateFailedError) Is(target error) bool {
	_, ok := target.(CreateFailedError)
	if ok {
		return true
	}
	_, ok = target.(*CreateFailedError)
	return ok
}

var ErrCreateFailed = CreateFailedError{}

// DecodingError means a store response did not match the resource's full shape.
type DecodingError struct {
	Resource string
	Err      error
}

func (e DecodingError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.Resource, e.Err)
}

func (e DecodingError) Unwrap() error { return e.Err }

func (e DecodingError) Is(target error) bool {
	_, ok := target.(DecodingError)
	if ok {
		return true
	}
	_, ok = target.(*DecodingError)
	return ok
}

var ErrDecoding = DecodingError{}

// ConfigurationError is fatal: the store client cannot be constructed.
type ConfigurationError struct {
	Missing []string
	Err     error
}

func (e ConfigurationError) Error() string {
	if len(e.Missing) > 0 {
		return "missing required store configuration: " + strings.Join(e.Missing, ", ")
	}
	return fmt.Sprintf("invalid store configuration: %v", e.Err)
}

func (e ConfigurationError) Unwrap() error { return e.Err }

func (e ConfigurationError) Is(target error) bool {
	_, ok := target.(ConfigurationError)
	if ok {
		return true
	}
	_, ok = target.(*ConfigurationError)
	return ok
}

var ErrConfiguration = ConfigurationError{}
