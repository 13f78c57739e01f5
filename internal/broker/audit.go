package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ticketing-service/internal/models"
	"ticketing-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// AuditPublisher appends audit events to the broker. Publishing is
// fire-and-forget: failures are logged and counted but never propagated, so
// an audit outage cannot roll back a business operation.
type AuditPublisher struct {
	producer *Producer
	logger   *zap.Logger
}

// NewAuditPublisher creates a new audit publisher
func NewAuditPublisher(producer *Producer) *AuditPublisher {
	return &AuditPublisher{
		producer: producer,
		logger:   util.GetLogger(),
	}
}

// Record publishes one audit event, keyed by tenant so a tenant's trail stays
// ordered within a partition.
func (p *AuditPublisher) Record(ctx context.Context, event models.AuditEvent) {
	// Detach from the request context: the business operation has already
	// committed and its cancellation must not lose the audit record.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	key := fmt.Sprintf("tenant-%d", event.TenantID)
	if err := p.producer.PublishEvent(ctx, key, event); err != nil {
		util.AuditPublishFailed.Inc()
		p.logger.Error("Failed to publish audit event",
			zap.String("action", event.Action),
			zap.Int64("tenant_id", event.TenantID),
			zap.Error(err))
	}
}

// DecodeAuditEvent unmarshals a broker message back into an audit event.
func DecodeAuditEvent(msg kafka.Message) (*models.AuditEvent, error) {
	var event models.AuditEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal audit event: %w", err)
	}
	return &event, nil
}
