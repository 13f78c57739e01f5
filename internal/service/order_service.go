package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ticketing-service/internal/models"
	"ticketing-service/internal/pricing"
	"ticketing-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderStore is the slice of the store the fulfillment engine needs.
type OrderStore interface {
	GetProduct(ctx context.Context, tenantID, productID int64) (*models.Product, error)
	GetEvent(ctx context.Context, tenantID, eventID int64) (*models.Event, error)
	CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error
	GetOrder(ctx context.Context, tenantID, userID, orderID int64) (*models.Order, error)
	GetOrderByPaymentReference(ctx context.Context, tenantID, userID int64, reference string) (*models.Order, error)
	ListOrders(ctx context.Context, tenantID, userID int64) ([]models.Order, error)
	GetOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error)
	ConfirmOrderPaid(ctx context.Context, order *models.Order, items []models.OrderItem, tickets []models.Ticket) error
}

// PaymentSessions caches payment-reference lookups with an advisory TTL
// matching the order's payment window. The database remains authoritative.
type PaymentSessions interface {
	SaveReference(ctx context.Context, reference string, orderID int64, ttl time.Duration) error
	LookupReference(ctx context.Context, reference string) (int64, error)
}

// OrderService is the order fulfillment engine: it prices carts into Pending
// orders and commits inventory on payment confirmation.
type OrderService struct {
	store         OrderStore
	coupons       *CouponService
	sessions      PaymentSessions
	audit         AuditLogger
	logger        *zap.Logger
	paymentExpiry time.Duration
}

// NewOrderService creates a new order service. sessions may be nil, in which
// case payment-reference lookups go straight to the database.
func NewOrderService(store OrderStore, coupons *CouponService, sessions PaymentSessions, audit AuditLogger, paymentExpiry time.Duration) *OrderService {
	if audit == nil {
		audit = NopAuditLogger{}
	}
	return &OrderService{
		store:         store,
		coupons:       coupons,
		sessions:      sessions,
		audit:         audit,
		logger:        util.GetLogger(),
		paymentExpiry: paymentExpiry,
	}
}

// OrderItemRequest is one line of a cart. Exactly one of ProductID/EventID
// must be set.
type OrderItemRequest struct {
	ProductID *int64 `json:"product_id,omitempty"`
	EventID   *int64 `json:"event_id,omitempty"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	Items      []OrderItemRequest `json:"items"`
	CouponCode string             `json:"coupon_code,omitempty"`
}

// CreateOrderResponse represents the response after creating an order
type CreateOrderResponse struct {
	OrderID          int64           `json:"order_id"`
	Total            decimal.Decimal `json:"total"`
	PaymentReference string          `json:"payment_reference"`
	ExpiresIn        int             `json:"expires_in"`
}

// CreateOrder validates a cart, prices it, optionally applies a coupon, and
// persists a Pending order. Availability is checked against a fresh snapshot
// but not reserved: two concurrent creates may both pass here, and the
// authoritative check runs again inside ConfirmPayment.
func (s *OrderService) CreateOrder(ctx context.Context, tenantID, userID int64, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	if len(req.Items) == 0 {
		util.OrdersFailedTotal.WithLabelValues("invalid_items").Inc()
		return nil, validationErrorf("at least one item required")
	}

	orderItems := make([]models.OrderItem, 0, len(req.Items))
	lines := make([]pricing.LineItem, 0, len(req.Items))

	for _, item := range req.Items {
		if item.Quantity <= 0 {
			util.OrdersFailedTotal.WithLabelValues("invalid_items").Inc()
			return nil, validationErrorf("item quantity must be greater than zero")
		}

		ref, err := models.ItemRefFrom(item.ProductID, item.EventID)
		if err != nil {
			util.OrdersFailedTotal.WithLabelValues("invalid_items").Inc()
			return nil, &ValidationError{Message: err.Error()}
		}

		orderItem, err := s.resolveItem(ctx, tenantID, ref, item.Quantity)
		if err != nil {
			return nil, err
		}

		orderItems = append(orderItems, *orderItem)
		lines = append(lines, pricing.LineItem{UnitPrice: orderItem.UnitPrice, Quantity: orderItem.Quantity})
	}

	quote := pricing.Calculate(lines, decimal.Zero)

	// Coupon consumption happens here, at creation time, not at payment.
	// An order abandoned while Pending does not release the use.
	if code := strings.TrimSpace(req.CouponCode); code != "" {
		discount, err := s.coupons.ApplyAndConsume(ctx, tenantID, code, quote.Subtotal)
		if err != nil {
			util.OrdersFailedTotal.WithLabelValues("coupon_rejected").Inc()
			return nil, err
		}
		quote.Discount = discount
		quote.Total = quote.Subtotal.Sub(discount)

		s.audit.Record(ctx, newAuditEvent(models.AuditActionCouponConsumed, tenantID, userID, map[string]interface{}{
			"code":     code,
			"discount": discount.StringFixed(2),
		}))
	}

	order := &models.Order{
		TenantID:         tenantID,
		UserID:           userID,
		Subtotal:         quote.Subtotal,
		Discount:         quote.Discount,
		Total:            quote.Total,
		Status:           models.OrderStatusPending,
		PaymentReference: uuid.New().String(),
	}

	if err := s.store.CreateOrder(ctx, order, orderItems); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.Int64("tenant_id", tenantID),
		zap.Int64("order_id", order.ID),
		zap.String("total", order.Total.StringFixed(2)))

	if s.sessions != nil {
		if err := s.sessions.SaveReference(ctx, order.PaymentReference, order.ID, s.paymentExpiry); err != nil {
			s.logger.Warn("Failed to cache payment reference",
				zap.Int64("order_id", order.ID),
				zap.Error(err))
		}
	}

	s.audit.Record(ctx, newAuditEvent(models.AuditActionOrderCreated, tenantID, userID, map[string]interface{}{
		"order_id": order.ID,
		"total":    order.Total.StringFixed(2),
		"items":    len(orderItems),
	}))

	return &CreateOrderResponse{
		OrderID:          order.ID,
		Total:            order.Total,
		PaymentReference: order.PaymentReference,
		ExpiresIn:        int(s.paymentExpiry.Seconds()),
	}, nil
}

// resolveItem looks up the referenced product or event within the tenant,
// snapshots its current unit price, and runs the soft availability check.
func (s *OrderService) resolveItem(ctx context.Context, tenantID int64, ref models.ItemRef, quantity int) (*models.OrderItem, error) {
	if productID, ok := ref.Product(); ok {
		product, err := s.store.GetProduct(ctx, tenantID, productID)
		if errors.Is(err, models.ErrNotFound) {
			util.OrdersFailedTotal.WithLabelValues("not_found").Inc()
			return nil, validationErrorf("product not found")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load product %d: %w", productID, err)
		}
		if product.Stock < quantity {
			util.OrdersFailedTotal.WithLabelValues("insufficient_stock").Inc()
			return nil, validationErrorf("insufficient stock for product")
		}

		return &models.OrderItem{
			ProductID: &product.ID,
			Quantity:  quantity,
			UnitPrice: product.Price,
			Subtotal:  product.Price.Mul(decimal.NewFromInt(int64(quantity))),
		}, nil
	}

	eventID, _ := ref.Event()
	event, err := s.store.GetEvent(ctx, tenantID, eventID)
	if errors.Is(err, models.ErrNotFound) {
		util.OrdersFailedTotal.WithLabelValues("not_found").Inc()
		return nil, validationErrorf("event not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load event %d: %w", eventID, err)
	}
	if event.AvailableTickets < quantity {
		util.OrdersFailedTotal.WithLabelValues("insufficient_tickets").Inc()
		return nil, validationErrorf("insufficient tickets for event")
	}

	return &models.OrderItem{
		EventID:   &event.ID,
		Quantity:  quantity,
		UnitPrice: event.Price,
		Subtotal:  event.Price.Mul(decimal.NewFromInt(int64(quantity))),
	}, nil
}

// MintedTicket is the caller-facing shape of a freshly minted ticket.
type MintedTicket struct {
	ID        int64  `json:"id"`
	Code      string `json:"code"`
	QRCodeURL string `json:"qr_code_url"`
}

// ConfirmPaymentResponse represents the result of a payment confirmation.
type ConfirmPaymentResponse struct {
	Success bool           `json:"success"`
	Tickets []MintedTicket `json:"tickets"`
}

// ConfirmPayment commits a Pending order: inventory counters are re-checked
// and decremented, event tickets are minted, and the order flips to Paid, all
// inside one storage transaction. On any inventory shortfall nothing changes
// and the order stays Pending so the caller can retry or cancel.
func (s *OrderService) ConfirmPayment(ctx context.Context, tenantID, userID, orderID int64) (*ConfirmPaymentResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ConfirmPayment")
	defer span.End()

	start := time.Now()
	defer func() {
		util.PaymentConfirmLatency.Observe(time.Since(start).Seconds())
	}()

	order, err := s.store.GetOrder(ctx, tenantID, userID, orderID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, &NotFoundError{Resource: "order"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	if order.Status != models.OrderStatusPending {
		util.OrdersFailedTotal.WithLabelValues("not_pending").Inc()
		return nil, &InvalidStateError{Message: "order is not pending"}
	}

	items, err := s.store.GetOrderItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}

	tickets := make([]models.Ticket, 0)
	for _, item := range items {
		if item.EventID == nil {
			continue
		}
		minted, err := mintTickets(order.ID, *item.EventID, order.UserID, item.Quantity)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, minted...)
	}

	if err := s.store.ConfirmOrderPaid(ctx, order, items, tickets); err != nil {
		return nil, s.mapConfirmError(err, items)
	}

	util.OrdersPaidTotal.Inc()
	util.TicketsMintedTotal.Add(float64(len(tickets)))
	s.logger.Info("Order paid",
		zap.Int64("tenant_id", tenantID),
		zap.Int64("order_id", order.ID),
		zap.Int("tickets", len(tickets)))

	s.audit.Record(ctx, newAuditEvent(models.AuditActionOrderPaid, tenantID, userID, map[string]interface{}{
		"order_id": order.ID,
		"total":    order.Total.StringFixed(2),
		"tickets":  len(tickets),
	}))

	resp := &ConfirmPaymentResponse{Success: true, Tickets: make([]MintedTicket, 0, len(tickets))}
	for _, t := range tickets {
		resp.Tickets = append(resp.Tickets, MintedTicket{ID: t.ID, Code: t.Code, QRCodeURL: t.QRCodeURL})
	}
	return resp, nil
}

// mapConfirmError translates store sentinels from the confirming transaction
// into the caller-facing taxonomy.
func (s *OrderService) mapConfirmError(err error, items []models.OrderItem) error {
	switch {
	case errors.Is(err, models.ErrInsufficientStock):
		util.InventoryCommitsFailed.WithLabelValues("product").Inc()
		return &InsufficientInventoryError{Kind: "product", ID: firstProductID(items)}
	case errors.Is(err, models.ErrInsufficientTickets):
		util.InventoryCommitsFailed.WithLabelValues("event").Inc()
		return &InsufficientInventoryError{Kind: "event", ID: firstEventID(items)}
	case errors.Is(err, models.ErrOrderNotPending):
		util.OrdersFailedTotal.WithLabelValues("not_pending").Inc()
		return &InvalidStateError{Message: "order is not pending"}
	default:
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return fmt.Errorf("failed to confirm payment: %w", err)
	}
}

func firstProductID(items []models.OrderItem) int64 {
	for _, item := range items {
		if item.ProductID != nil {
			return *item.ProductID
		}
	}
	return 0
}

func firstEventID(items []models.OrderItem) int64 {
	for _, item := range items {
		if item.EventID != nil {
			return *item.EventID
		}
	}
	return 0
}

// GetOrder retrieves one of the caller's orders with its items.
func (s *OrderService) GetOrder(ctx context.Context, tenantID, userID, orderID int64) (*models.Order, []models.OrderItem, error) {
	order, err := s.store.GetOrder(ctx, tenantID, userID, orderID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil, &NotFoundError{Resource: "order"}
	}
	if err != nil {
		return nil, nil, err
	}

	items, err := s.store.GetOrderItems(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	return order, items, nil
}

// ListOrders retrieves the caller's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, tenantID, userID int64) ([]models.Order, error) {
	return s.store.ListOrders(ctx, tenantID, userID)
}

// GetOrderByPaymentReference resolves an order from its payment reference,
// trying the session cache first and falling back to the database.
func (s *OrderService) GetOrderByPaymentReference(ctx context.Context, tenantID, userID int64, reference string) (*models.Order, error) {
	if s.sessions != nil {
		orderID, err := s.sessions.LookupReference(ctx, reference)
		if err == nil {
			order, err := s.store.GetOrder(ctx, tenantID, userID, orderID)
			if err == nil {
				return order, nil
			}
		} else if !errors.Is(err, models.ErrNotFound) {
			s.logger.Warn("Payment reference cache lookup failed", zap.Error(err))
		}
	}

	order, err := s.store.GetOrderByPaymentReference(ctx, tenantID, userID, reference)
	if errors.Is(err, models.ErrNotFound) {
		return nil, &NotFoundError{Resource: "order"}
	}
	return order, err
}
