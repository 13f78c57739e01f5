package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ticketing-service/internal/models"
)

// CreateOrder persists a pending order and its items in one transaction.
// Item IDs and order timestamps are filled in on return.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (tenant_id, user_id, subtotal, discount, total, status, payment_reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err = tx.QueryRowxContext(ctx, query,
		order.TenantID, order.UserID, order.Subtotal, order.Discount,
		order.Total, order.Status, order.PaymentReference).
		Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, event_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	for i := range items {
		items[i].OrderID = order.ID
		err = tx.QueryRowxContext(ctx, itemQuery,
			order.ID, items[i].ProductID, items[i].EventID,
			items[i].Quantity, items[i].UnitPrice, items[i].Subtotal).
			Scan(&items[i].ID)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return tx.Commit()
}

// GetOrder retrieves an order scoped to its tenant and owning user.
func (s *Store) GetOrder(ctx context.Context, tenantID, userID, orderID int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order,
		"SELECT * FROM orders WHERE tenant_id = $1 AND user_id = $2 AND id = $3",
		tenantID, userID, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderByPaymentReference resolves an order from its payment reference.
func (s *Store) GetOrderByPaymentReference(ctx context.Context, tenantID, userID int64, reference string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order,
		"SELECT * FROM orders WHERE tenant_id = $1 AND user_id = $2 AND payment_reference = $3",
		tenantID, userID, reference)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders retrieves a user's orders, newest first.
func (s *Store) ListOrders(ctx context.Context, tenantID, userID int64) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE tenant_id = $1 AND user_id = $2 ORDER BY created_at DESC",
		tenantID, userID)
	return orders, err
}

// GetOrderItems retrieves all items for an order.
func (s *Store) GetOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", orderID)
	return items, err
}

// ConfirmOrderPaid commits a payment in a single transaction: every item's
// inventory counter is conditionally decremented, the pre-minted tickets are
// inserted, and the order flips Pending -> Paid. Any failure rolls the whole
// transaction back, leaving counters, tickets and the order untouched.
//
// Ticket IDs and timestamps are filled in on success, as is order.PaidAt.
func (s *Store) ConfirmOrderPaid(ctx context.Context, order *models.Order, items []models.OrderItem, tickets []models.Ticket) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, item := range items {
		switch {
		case item.ProductID != nil:
			if err := decrementProductStock(ctx, tx, order.TenantID, *item.ProductID, item.Quantity); err != nil {
				return err
			}
		case item.EventID != nil:
			if err := decrementEventTickets(ctx, tx, order.TenantID, *item.EventID, item.Quantity); err != nil {
				return err
			}
		}
	}

	// Status guard in the WHERE clause makes a lost confirm race surface as
	// ErrOrderNotPending instead of a double payment.
	res, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = $1, paid_at = NOW()
		WHERE tenant_id = $2 AND id = $3 AND status = $4`,
		models.OrderStatusPaid, order.TenantID, order.ID, models.OrderStatusPending)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrOrderNotPending
	}

	ticketQuery := `
		INSERT INTO tickets (order_id, event_id, user_id, code, qr_code_url, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	for i := range tickets {
		err = tx.QueryRowxContext(ctx, ticketQuery,
			tickets[i].OrderID, tickets[i].EventID, tickets[i].UserID,
			tickets[i].Code, tickets[i].QRCodeURL, tickets[i].Status).
			Scan(&tickets[i].ID, &tickets[i].CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert ticket: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	err = s.db.GetContext(ctx, order,
		"SELECT * FROM orders WHERE id = $1", order.ID)
	return err
}
