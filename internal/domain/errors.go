package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownProduct = errors.New("product not in catalog")
	ErrEmptyCart      = errors.New("cart is empty, nothing to checkout")
	ErrSessionExpired = errors.New("session expired")
	ErrNoActiveForm   = errors.New("no checkout in progress")
	ErrNotReady       = errors.New("checkout is not ready to confirm")
)

// ValidationError reports a rejected field value. The cursor must not move
// and answers must not change when one is returned.
type ValidationError struct {
	Field Field
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for %s", e.Field)
}
