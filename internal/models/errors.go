package models

import "errors"

// Sentinel errors returned by the store layer. The service layer wraps these
// into the caller-facing taxonomy.
var (
	// ErrNotFound is any tenant-scoped lookup miss. A row that exists under
	// another tenant still resolves to ErrNotFound.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientStock means a conditional stock decrement matched no row.
	ErrInsufficientStock = errors.New("insufficient stock for product")

	// ErrInsufficientTickets means a conditional capacity decrement matched no row.
	ErrInsufficientTickets = errors.New("insufficient tickets for event")

	// ErrOrderNotPending means a Pending-guarded order update matched no row.
	ErrOrderNotPending = errors.New("order is not pending")

	// ErrCouponNotUsable means the conditional coupon consumption matched no
	// row; the caller re-reads the coupon to derive the precise reason.
	ErrCouponNotUsable = errors.New("coupon not usable")

	// ErrTicketNotActive means a redemption raced a prior one.
	ErrTicketNotActive = errors.New("ticket is not active")

	// ErrTicketExpired means the ticket's event date has passed.
	ErrTicketExpired = errors.New("ticket event has passed")
)
