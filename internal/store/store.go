package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ticketing-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetTenantByID retrieves a tenant by ID
func (s *Store) GetTenantByID(ctx context.Context, id int64) (*models.Tenant, error) {
	var tenant models.Tenant
	err := s.db.GetContext(ctx, &tenant, "SELECT * FROM tenants WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// GetProduct retrieves a product within a tenant. A product belonging to
// another tenant resolves as not found.
func (s *Store) GetProduct(ctx context.Context, tenantID, productID int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product,
		"SELECT * FROM products WHERE tenant_id = $1 AND id = $2", tenantID, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetEvent retrieves an event within a tenant.
func (s *Store) GetEvent(ctx context.Context, tenantID, eventID int64) (*models.Event, error) {
	var event models.Event
	err := s.db.GetContext(ctx, &event,
		"SELECT * FROM events WHERE tenant_id = $1 AND id = $2", tenantID, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// UpdateEventCapacity sets a new max capacity and clamps available tickets so
// the counter never exceeds the edited capacity.
func (s *Store) UpdateEventCapacity(ctx context.Context, tenantID, eventID int64, maxCapacity int) (*models.Event, error) {
	var event models.Event
	err := s.db.GetContext(ctx, &event, `
		UPDATE events
		SET max_capacity = $1, available_tickets = LEAST(available_tickets, $1)
		WHERE tenant_id = $2 AND id = $3
		RETURNING *`,
		maxCapacity, tenantID, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// decrementProductStock conditionally decrements stock inside a transaction.
// Rows-affected is the race guard: two concurrent decrements cannot both read
// the pre-decrement value.
func decrementProductStock(ctx context.Context, tx *sqlx.Tx, tenantID, productID int64, quantity int) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE products SET stock = stock - $1 WHERE tenant_id = $2 AND id = $3 AND stock >= $1",
		quantity, tenantID, productID)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("product %d: %w", productID, models.ErrInsufficientStock)
	}
	return nil
}

// decrementEventTickets conditionally decrements available tickets inside a
// transaction.
func decrementEventTickets(ctx context.Context, tx *sqlx.Tx, tenantID, eventID int64, quantity int) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE events SET available_tickets = available_tickets - $1 WHERE tenant_id = $2 AND id = $3 AND available_tickets >= $1",
		quantity, tenantID, eventID)
	if err != nil {
		return fmt.Errorf("failed to decrement tickets: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("event %d: %w", eventID, models.ErrInsufficientTickets)
	}
	return nil
}
