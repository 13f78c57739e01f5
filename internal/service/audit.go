package service

import (
	"context"
	"time"

	"ticketing-service/internal/models"

	"github.com/google/uuid"
)

// AuditLogger appends engine operations to the audit trail. Implementations
// are fire-and-forget: a failed append must never fail or roll back the
// business operation that produced it.
type AuditLogger interface {
	Record(ctx context.Context, event models.AuditEvent)
}

// NopAuditLogger discards audit events.
type NopAuditLogger struct{}

func (NopAuditLogger) Record(context.Context, models.AuditEvent) {}

func newAuditEvent(action string, tenantID, userID int64, metadata map[string]interface{}) models.AuditEvent {
	return models.AuditEvent{
		EventID:   uuid.New().String(),
		Action:    action,
		TenantID:  tenantID,
		UserID:    userID,
		Metadata:  metadata,
		Timestamp: time.Now(),
	}
}
