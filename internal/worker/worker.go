package worker

import (
	"context"
	"encoding/json"
	"log"

	"ticketing-service/internal/broker"
	"ticketing-service/internal/models"
	"ticketing-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// AuditStore persists audit records.
type AuditStore interface {
	InsertAuditLog(ctx context.Context, entry *models.AuditLog) error
}

// AuditWorker drains the audit topic into the audit_logs table.
type AuditWorker struct {
	consumer *broker.Consumer
	store    AuditStore
	logger   *zap.Logger
}

// NewAuditWorker creates a new audit worker
func NewAuditWorker(consumer *broker.Consumer, store AuditStore) *AuditWorker {
	return &AuditWorker{
		consumer: consumer,
		store:    store,
		logger:   util.GetLogger(),
	}
}

// Start starts the worker
func (w *AuditWorker) Start(ctx context.Context) error {
	log.Println("Starting audit worker...")
	return w.consumer.StartConsuming(ctx, w.handleMessage)
}

// Stop stops the worker
func (w *AuditWorker) Stop() error {
	log.Println("Stopping audit worker...")
	return w.consumer.Close()
}

func (w *AuditWorker) handleMessage(ctx context.Context, msg kafka.Message) error {
	event, err := broker.DecodeAuditEvent(msg)
	if err != nil {
		// Poison message; drop it rather than wedge the partition.
		w.logger.Error("Dropping undecodable audit message", zap.Error(err))
		return nil
	}

	metadata := "{}"
	if event.Metadata != nil {
		raw, err := json.Marshal(event.Metadata)
		if err == nil {
			metadata = string(raw)
		}
	}

	entry := &models.AuditLog{
		TenantID:  event.TenantID,
		UserID:    event.UserID,
		Action:    event.Action,
		Metadata:  metadata,
		CreatedAt: event.Timestamp,
	}

	if err := w.store.InsertAuditLog(ctx, entry); err != nil {
		return err
	}

	w.logger.Debug("Audit event persisted",
		zap.String("action", event.Action),
		zap.Int64("tenant_id", event.TenantID))
	return nil
}
