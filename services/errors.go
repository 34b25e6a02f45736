package services

import (
	"errors"
	"fmt"
)

// Service errors form a closed taxonomy. Controllers map each kind to an
// HTTP status; nothing here is swallowed or downgraded on the way out.

// ValidationError reports malformed or incomplete input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError reports an unknown entity id.
type NotFoundError struct {
	Entity string
	ID     int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// AuthorizationError reports a wrong role or out-of-scope actor.
type AuthorizationError struct {
	Msg string
}

func (e *AuthorizationError) Error() string { return e.Msg }

// PreconditionError reports an entity not in the status the requested
// transition needs.
type PreconditionError struct {
	Msg string
}

func (e *PreconditionError) Error() string { return e.Msg }

// ConfigurationError reports broken process configuration, e.g. a spend
// amount no approval band covers. Evaluation fails closed on it: a matrix
// hole never produces a zero-step approval chain.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return e.Msg }

// ContentionError reports a bounded lock wait that expired.
type ContentionError struct {
	Resource string
}

func (e *ContentionError) Error() string {
	return fmt.Sprintf("could not acquire lock on %s, try again", e.Resource)
}

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func authorizationf(format string, args ...interface{}) error {
	return &AuthorizationError{Msg: fmt.Sprintf(format, args...)}
}

func preconditionf(format string, args ...interface{}) error {
	return &PreconditionError{Msg: fmt.Sprintf(format, args...)}
}

func configurationf(format string, args ...interface{}) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is (or wraps) the given taxonomy error type.
func IsKind[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}
