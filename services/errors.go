package services

import (
	"errors"
	"fmt"

	"checkout-service/models"
)

var (
	// ErrEmptyCart is returned when checkout is attempted with nothing
	// in the cart. User-correctable.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrConcurrencyConflict is returned when bounded retries on a
	// contended write (order number assignment) are exhausted.
	ErrConcurrencyConflict = errors.New("concurrent update conflict, retry the request")

	// ErrDeliveryAddressRequired is returned when a delivery checkout
	// omits the address.
	ErrDeliveryAddressRequired = errors.New("delivery address is required for delivery orders")
)

// InvalidTransitionError reports the exact disallowed pair so callers
// see which transition was rejected.
type InvalidTransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}
