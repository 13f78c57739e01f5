package models

import "time"

// Audit actions
const (
	AuditActionOrderCreated   = "order.created"
	AuditActionOrderPaid      = "order.paid"
	AuditActionCouponConsumed = "coupon.consumed"
	AuditActionTicketRedeemed = "ticket.redeemed"
	AuditActionCapacityEdited = "event.capacity_edited"
)

// AuditEvent is the wire shape of an audit record published to the broker.
// Metadata holds operation-specific fields (order id, quantities, codes).
type AuditEvent struct {
	EventID   string                 `json:"event_id"`
	Action    string                 `json:"action"`
	TenantID  int64                  `json:"tenant_id"`
	UserID    int64                  `json:"user_id"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}
