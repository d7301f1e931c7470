package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both missing and restricted resources; callers must not tell them apart.
	ErrNotFound = errors.New("not found")
	// ErrUpstreamUnauthorized means a provider rejected our credentials.
	ErrUpstreamUnauthorized = errors.New("upstream: unauthorized")
)

type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// ConfigurationError names the missing secret so operators know what to set.
type ConfigurationError struct {
	Secret string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s is not set", e.Secret)
}

type UpstreamError struct {
	Service string
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "upstream request failed"
	}
	return fmt.Sprintf("%s: %d: %s", e.Service, e.Status, msg)
}
