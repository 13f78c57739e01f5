package store

import (
	"context"

	"ticketing-service/internal/models"
)

// InsertAuditLog appends an audit record. Callers treat failures as
// non-fatal; audit writes never participate in business transactions.
func (s *Store) InsertAuditLog(ctx context.Context, entry *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (tenant_id, user_id, action, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	return s.db.QueryRowxContext(ctx, query,
		entry.TenantID, entry.UserID, entry.Action, entry.Metadata, entry.CreatedAt).
		Scan(&entry.ID)
}
