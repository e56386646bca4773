package domain

import (
	"errors"
	"fmt"
)

var (
	ErrBondNotFound       = errors.New("bond not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("a user with that username already exists")
	ErrInvalidCredentials = errors.New("unable to log in with provided credentials")
	ErrSessionNotFound    = errors.New("session not found")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")
)

// ValidationKind tags why a submission was rejected.
type ValidationKind string

const (
	// KindInvalidFormat: the identifier is malformed. User-fixable.
	KindInvalidFormat ValidationKind = "InvalidFormat"
	// KindRegistryUnavailable: the registry could not be reached or answered badly. Not retried.
	KindRegistryUnavailable ValidationKind = "RegistryUnavailable"
	// KindNotFoundInRegistry: the registry does not know the identifier.
	KindNotFoundInRegistry ValidationKind = "NotFoundInRegistry"
	// KindIncompleteRegistryData: the registry record lacks required fields.
	KindIncompleteRegistryData ValidationKind = "IncompleteRegistryData"
	// KindInvalidValue: a submitted field could not be coerced or breaks a field rule.
	KindInvalidValue ValidationKind = "InvalidValue"
)

// ValidationError is returned whenever a bond submission is rejected.
// Message is safe to show to the client; Err keeps the underlying cause.
type ValidationError struct {
	Kind    ValidationKind
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func NewValidationError(kind ValidationKind, message string) *ValidationError {
	return &ValidationError{Kind: kind, Message: message}
}

func WrapValidationError(kind ValidationKind, message string, err error) *ValidationError {
	return &ValidationError{Kind: kind, Message: message, Err: err}
}

// IsValidationKind reports whether err carries a ValidationError of the given kind.
func IsValidationKind(err error, kind ValidationKind) bool {
	var ve *ValidationError
	return errors.As(err, &ve) && ve.Kind == kind
}
