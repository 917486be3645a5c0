package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInternal           = errors.New("internal error")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Reset-token failure reasons. All three wrap ErrInvalidToken so callers
// outside the service see a single indistinguishable failure, while logs
// keep the concrete reason.
var (
	ErrNoTokenIssued = fmt.Errorf("%w: no reset token issued", ErrInvalidToken)
	ErrTokenExpired  = fmt.Errorf("%w: reset token expired", ErrInvalidToken)
	ErrTokenMismatch = fmt.Errorf("%w: reset token mismatch", ErrInvalidToken)
)

func NewInvalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

func WrapInternal(err error, context string) error {
	return fmt.Errorf("%w: %s: %v", ErrInternal, context, err)
}

func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

func IsInvalidToken(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}

func IsTokenExpired(err error) bool {
	return errors.Is(err, ErrTokenExpired)
}

func IsTokenMismatch(err error) bool {
	return errors.Is(err, ErrTokenMismatch)
}

func IsNoTokenIssued(err error) bool {
	return errors.Is(err, ErrNoTokenIssued)
}
