package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BusinessType describes what a tenant sells.
type BusinessType string

const (
	BusinessTypeCommerce BusinessType = "COMMERCE"
	BusinessTypeEvents   BusinessType = "EVENTS"
	BusinessTypeHybrid   BusinessType = "HYBRID"
)

// Tenant is an isolated business account. Every other entity is scoped to one.
type Tenant struct {
	ID           int64        `db:"id" json:"id"`
	Name         string       `db:"name" json:"name"`
	Slug         string       `db:"slug" json:"slug"`
	APIKey       string       `db:"api_key" json:"-"`
	BusinessType BusinessType `db:"business_type" json:"business_type"`
	IsActive     bool         `db:"is_active" json:"is_active"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
}

// User is an end customer of a tenant.
type User struct {
	ID        int64     `db:"id" json:"id"`
	TenantID  int64     `db:"tenant_id" json:"tenant_id"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Product is a physical good with a finite stock counter.
type Product struct {
	ID          int64           `db:"id" json:"id"`
	TenantID    int64           `db:"tenant_id" json:"tenant_id"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description,omitempty"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Stock       int             `db:"stock" json:"stock"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// Event is a dated happening with finite ticket capacity.
// AvailableTickets is the live inventory counter and never exceeds MaxCapacity.
type Event struct {
	ID               int64           `db:"id" json:"id"`
	TenantID         int64           `db:"tenant_id" json:"tenant_id"`
	Name             string          `db:"name" json:"name"`
	Location         string          `db:"location" json:"location,omitempty"`
	EventDate        time.Time       `db:"event_date" json:"event_date"`
	MaxCapacity      int             `db:"max_capacity" json:"max_capacity"`
	AvailableTickets int             `db:"available_tickets" json:"available_tickets"`
	Price            decimal.Decimal `db:"price" json:"price"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
}

// Coupon is a per-tenant percentage discount with a usage cap and expiry.
type Coupon struct {
	ID                 int64           `db:"id" json:"id"`
	TenantID           int64           `db:"tenant_id" json:"tenant_id"`
	Code               string          `db:"code" json:"code"`
	DiscountPercentage decimal.Decimal `db:"discount_percentage" json:"discount_percentage"`
	MaxUses            int             `db:"max_uses" json:"max_uses"`
	CurrentUses        int             `db:"current_uses" json:"current_uses"`
	ExpiresAt          time.Time       `db:"expires_at" json:"expires_at"`
}

// Order statuses
const (
	OrderStatusPending   = "PENDING"
	OrderStatusPaid      = "PAID"
	OrderStatusCancelled = "CANCELLED"
)

// Order is the transactional record of a single purchase attempt.
// Immutable once Paid or Cancelled.
type Order struct {
	ID               int64           `db:"id" json:"id"`
	TenantID         int64           `db:"tenant_id" json:"tenant_id"`
	UserID           int64           `db:"user_id" json:"user_id"`
	Subtotal         decimal.Decimal `db:"subtotal" json:"subtotal"`
	Discount         decimal.Decimal `db:"discount" json:"discount"`
	Total            decimal.Decimal `db:"total" json:"total"`
	Status           string          `db:"status" json:"status"`
	PaymentReference string          `db:"payment_reference" json:"payment_reference"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	PaidAt           *time.Time      `db:"paid_at" json:"paid_at,omitempty"`
}

// OrderItem is a line of an order. Exactly one of ProductID/EventID is set;
// UnitPrice is snapshotted at order-creation time and never recomputed.
type OrderItem struct {
	ID        int64           `db:"id" json:"id"`
	OrderID   int64           `db:"order_id" json:"order_id"`
	ProductID *int64          `db:"product_id" json:"product_id,omitempty"`
	EventID   *int64          `db:"event_id" json:"event_id,omitempty"`
	Quantity  int             `db:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`
	Subtotal  decimal.Decimal `db:"subtotal" json:"subtotal"`
}

// Ref returns the item's reference as a tagged union.
func (i OrderItem) Ref() (ItemRef, error) {
	return ItemRefFrom(i.ProductID, i.EventID)
}

// Ticket statuses
const (
	TicketStatusActive   = "ACTIVE"
	TicketStatusRedeemed = "REDEEMED"
)

// Ticket is a redeemable admission minted by a paid order.
// The Active -> Redeemed transition is one-way.
type Ticket struct {
	ID         int64      `db:"id" json:"id"`
	OrderID    int64      `db:"order_id" json:"order_id"`
	EventID    int64      `db:"event_id" json:"event_id"`
	UserID     int64      `db:"user_id" json:"user_id"`
	Code       string     `db:"code" json:"code"`
	QRCodeURL  string     `db:"qr_code_url" json:"qr_code_url"`
	Status     string     `db:"status" json:"status"`
	RedeemedAt *time.Time `db:"redeemed_at" json:"redeemed_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// TicketWithEvent is a ticket joined with its event, for customer listings.
type TicketWithEvent struct {
	Ticket
	EventName string    `db:"event_name" json:"event_name"`
	EventDate time.Time `db:"event_date" json:"event_date"`
	Location  string    `db:"location" json:"location,omitempty"`
}

// TicketRedemption is the result of a successful door validation.
type TicketRedemption struct {
	TicketID   int64     `json:"ticket_id"`
	EventName  string    `json:"event_name"`
	UserEmail  string    `json:"user_email"`
	RedeemedAt time.Time `json:"redeemed_at"`
}

// AuditLog is a persisted record of an engine operation.
type AuditLog struct {
	ID        int64     `db:"id" json:"id"`
	TenantID  int64     `db:"tenant_id" json:"tenant_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Action    string    `db:"action" json:"action"`
	Metadata  string    `db:"metadata" json:"metadata"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
