package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ticketing-service/internal/models"
)

// ListTicketsByUser retrieves a user's tickets joined with event details,
// newest first, optionally filtered by status.
func (s *Store) ListTicketsByUser(ctx context.Context, userID int64, status string) ([]models.TicketWithEvent, error) {
	query := `
		SELECT t.*, e.name AS event_name, e.event_date, e.location
		FROM tickets t
		JOIN events e ON e.id = t.event_id
		WHERE t.user_id = $1`
	args := []interface{}{userID}

	if status != "" {
		query += " AND t.status = $2"
		args = append(args, status)
	}
	query += " ORDER BY t.created_at DESC"

	var tickets []models.TicketWithEvent
	err := s.db.SelectContext(ctx, &tickets, query, args...)
	return tickets, err
}

// GetTicketByUser retrieves one of a user's tickets with event details.
func (s *Store) GetTicketByUser(ctx context.Context, userID, ticketID int64) (*models.TicketWithEvent, error) {
	var ticket models.TicketWithEvent
	err := s.db.GetContext(ctx, &ticket, `
		SELECT t.*, e.name AS event_name, e.event_date, e.location
		FROM tickets t
		JOIN events e ON e.id = t.event_id
		WHERE t.user_id = $1 AND t.id = $2`,
		userID, ticketID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// redeemRow is the locked snapshot a redemption decides on.
type redeemRow struct {
	ID        int64     `db:"id"`
	Status    string    `db:"status"`
	EventName string    `db:"event_name"`
	EventDate time.Time `db:"event_date"`
	UserEmail string    `db:"user_email"`
}

// RedeemTicket atomically transitions a ticket Active -> Redeemed. The row is
// locked for the duration of the transaction so concurrent validations of the
// same code cannot both succeed. Tenant scoping goes through the ticket's
// event; a code under another tenant resolves as not found.
func (s *Store) RedeemTicket(ctx context.Context, tenantID int64, code string) (*models.TicketRedemption, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var row redeemRow
	err = tx.GetContext(ctx, &row, `
		SELECT t.id, t.status, e.name AS event_name, e.event_date, u.email AS user_email
		FROM tickets t
		JOIN events e ON e.id = t.event_id
		JOIN users u ON u.id = t.user_id
		WHERE t.code = $1 AND e.tenant_id = $2
		FOR UPDATE OF t`,
		code, tenantID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock ticket: %w", err)
	}

	if row.Status != models.TicketStatusActive {
		return nil, models.ErrTicketNotActive
	}

	if !row.EventDate.After(time.Now()) {
		return nil, models.ErrTicketExpired
	}

	var redeemedAt time.Time
	err = tx.QueryRowxContext(ctx, `
		UPDATE tickets SET status = $1, redeemed_at = NOW()
		WHERE id = $2
		RETURNING redeemed_at`,
		models.TicketStatusRedeemed, row.ID).
		Scan(&redeemedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to redeem ticket: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &models.TicketRedemption{
		TicketID:   row.ID,
		EventName:  row.EventName,
		UserEmail:  row.UserEmail,
		RedeemedAt: redeemedAt,
	}, nil
}
