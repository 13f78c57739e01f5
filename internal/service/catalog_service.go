package service

import (
	"context"
	"errors"

	"ticketing-service/internal/models"
	"ticketing-service/internal/util"

	"go.uber.org/zap"
)

// CatalogStore is the slice of the store capacity administration needs.
type CatalogStore interface {
	UpdateEventCapacity(ctx context.Context, tenantID, eventID int64, maxCapacity int) (*models.Event, error)
}

// CatalogService covers the one catalog mutation the engine's data model
// constrains: editing event capacity without inflating live availability.
type CatalogService struct {
	store  CatalogStore
	audit  AuditLogger
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store CatalogStore, audit AuditLogger) *CatalogService {
	if audit == nil {
		audit = NopAuditLogger{}
	}
	return &CatalogService{
		store:  store,
		audit:  audit,
		logger: util.GetLogger(),
	}
}

// UpdateEventCapacity sets a new max capacity for an event. Available tickets
// are clamped so the counter never rises above the edited capacity.
func (s *CatalogService) UpdateEventCapacity(ctx context.Context, tenantID, adminID, eventID int64, maxCapacity int) (*models.Event, error) {
	if maxCapacity < 0 {
		return nil, validationErrorf("max capacity must not be negative")
	}

	event, err := s.store.UpdateEventCapacity(ctx, tenantID, eventID, maxCapacity)
	if errors.Is(err, models.ErrNotFound) {
		return nil, &NotFoundError{Resource: "event"}
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Event capacity updated",
		zap.Int64("tenant_id", tenantID),
		zap.Int64("event_id", eventID),
		zap.Int("max_capacity", maxCapacity),
		zap.Int("available_tickets", event.AvailableTickets))

	s.audit.Record(ctx, newAuditEvent(models.AuditActionCapacityEdited, tenantID, adminID, map[string]interface{}{
		"event_id":     eventID,
		"max_capacity": maxCapacity,
	}))

	return event, nil
}
