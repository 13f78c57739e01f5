package service

import "fmt"

// The error taxonomy surfaced to callers. All of these are expected business
// outcomes, never system failures; anything else bubbling out of a service is
// treated as fatal for the request.

// ValidationError is a malformed or semantically invalid request. The order
// is not created and nothing is mutated (a consumed coupon being the one
// documented exception, see CouponService.ApplyAndConsume).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError is a tenant-scoped lookup miss. Cross-tenant hits surface
// identically, so existence never leaks.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// InsufficientInventoryError means a payment confirmation lost the inventory
// race. The order stays Pending; retrying is the caller's decision.
type InsufficientInventoryError struct {
	Kind string // "product" or "event"
	ID   int64
}

func (e *InsufficientInventoryError) Error() string {
	if e.Kind == "event" {
		return fmt.Sprintf("insufficient tickets for event %d", e.ID)
	}
	return fmt.Sprintf("insufficient stock for product %d", e.ID)
}

// InvalidStateError means the operation is not legal for the entity's current
// lifecycle state, e.g. confirming a non-Pending order. State is unchanged.
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string { return e.Message }
