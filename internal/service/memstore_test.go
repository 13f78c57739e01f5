package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ticketing-service/internal/models"
)

// memStore is an in-memory stand-in for the SQL store. Every conditional
// update takes the same all-or-nothing shape as the real queries so the
// race-sensitive paths behave the same under concurrent tests.
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	products map[int64]*models.Product
	events   map[int64]*models.Event
	coupons  map[int64]*models.Coupon
	users    map[int64]*models.User
	orders   map[int64]*models.Order
	items    map[int64][]models.OrderItem
	tickets  map[int64]*models.Ticket
	byCode   map[string]int64
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[int64]*models.Product),
		events:   make(map[int64]*models.Event),
		coupons:  make(map[int64]*models.Coupon),
		users:    make(map[int64]*models.User),
		orders:   make(map[int64]*models.Order),
		items:    make(map[int64][]models.OrderItem),
		tickets:  make(map[int64]*models.Ticket),
		byCode:   make(map[string]int64),
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) addProduct(p models.Product) *models.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.id()
	m.products[p.ID] = &p
	return &p
}

func (m *memStore) addEvent(e models.Event) *models.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = m.id()
	m.events[e.ID] = &e
	return &e
}

func (m *memStore) addCoupon(c models.Coupon) *models.Coupon {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.id()
	m.coupons[c.ID] = &c
	return &c
}

func (m *memStore) addUser(u models.User) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = m.id()
	m.users[u.ID] = &u
	return &u
}

func (m *memStore) addTicket(t models.Ticket) *models.Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.id()
	if t.Status == "" {
		t.Status = models.TicketStatusActive
	}
	cp := t
	m.tickets[cp.ID] = &cp
	m.byCode[cp.Code] = cp.ID
	return &cp
}

func (m *memStore) productStock(id int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].Stock
}

func (m *memStore) eventAvailable(id int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events[id].AvailableTickets
}

func (m *memStore) ticketsForOrder(orderID int64) []models.Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Ticket
	for _, t := range m.tickets {
		if t.OrderID == orderID {
			out = append(out, *t)
		}
	}
	return out
}

// OrderStore

func (m *memStore) GetProduct(_ context.Context, tenantID, productID int64) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[productID]
	if !ok || p.TenantID != tenantID {
		return nil, models.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) GetEvent(_ context.Context, tenantID, eventID int64) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[eventID]
	if !ok || e.TenantID != tenantID {
		return nil, models.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memStore) CreateOrder(_ context.Context, order *models.Order, items []models.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order.ID = m.id()
	order.CreatedAt = time.Now()
	cp := *order
	m.orders[order.ID] = &cp
	for i := range items {
		items[i].ID = m.id()
		items[i].OrderID = order.ID
	}
	m.items[order.ID] = append([]models.OrderItem(nil), items...)
	return nil
}

func (m *memStore) GetOrder(_ context.Context, tenantID, userID, orderID int64) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok || o.TenantID != tenantID || o.UserID != userID {
		return nil, models.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memStore) GetOrderByPaymentReference(_ context.Context, tenantID, userID int64, reference string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.PaymentReference == reference && o.TenantID == tenantID && o.UserID == userID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memStore) ListOrders(_ context.Context, tenantID, userID int64) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, o := range m.orders {
		if o.TenantID == tenantID && o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memStore) GetOrderItems(_ context.Context, orderID int64) ([]models.OrderItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.OrderItem(nil), m.items[orderID]...), nil
}

func (m *memStore) ConfirmOrderPaid(_ context.Context, order *models.Order, items []models.OrderItem, tickets []models.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Validate every step first so a failure leaves no partial state, the
	// same guarantee the SQL transaction gives via rollback.
	for _, item := range items {
		switch {
		case item.ProductID != nil:
			p, ok := m.products[*item.ProductID]
			if !ok || p.TenantID != order.TenantID || p.Stock < item.Quantity {
				return fmt.Errorf("product %d: %w", *item.ProductID, models.ErrInsufficientStock)
			}
		case item.EventID != nil:
			e, ok := m.events[*item.EventID]
			if !ok || e.TenantID != order.TenantID || e.AvailableTickets < item.Quantity {
				return fmt.Errorf("event %d: %w", *item.EventID, models.ErrInsufficientTickets)
			}
		}
	}

	stored, ok := m.orders[order.ID]
	if !ok || stored.TenantID != order.TenantID || stored.Status != models.OrderStatusPending {
		return models.ErrOrderNotPending
	}

	for _, item := range items {
		switch {
		case item.ProductID != nil:
			m.products[*item.ProductID].Stock -= item.Quantity
		case item.EventID != nil:
			m.events[*item.EventID].AvailableTickets -= item.Quantity
		}
	}

	now := time.Now()
	stored.Status = models.OrderStatusPaid
	stored.PaidAt = &now

	for i := range tickets {
		tickets[i].ID = m.id()
		tickets[i].CreatedAt = now
		cp := tickets[i]
		m.tickets[cp.ID] = &cp
		m.byCode[cp.Code] = cp.ID
	}

	*order = *stored
	return nil
}

// CouponStore

func (m *memStore) CreateCoupon(_ context.Context, coupon *models.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	coupon.ID = m.id()
	cp := *coupon
	m.coupons[coupon.ID] = &cp
	return nil
}

func (m *memStore) GetCoupon(_ context.Context, tenantID int64, code string) (*models.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.coupons {
		if c.TenantID == tenantID && c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memStore) ConsumeCoupon(_ context.Context, tenantID int64, code string) (*models.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.coupons {
		if c.TenantID != tenantID || c.Code != code {
			continue
		}
		if c.CurrentUses >= c.MaxUses || !c.ExpiresAt.After(time.Now()) {
			return nil, models.ErrCouponNotUsable
		}
		c.CurrentUses++
		cp := *c
		return &cp, nil
	}
	return nil, models.ErrCouponNotUsable
}

// TicketStore

func (m *memStore) RedeemTicket(_ context.Context, tenantID int64, code string) (*models.TicketRedemption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byCode[code]
	if !ok {
		return nil, models.ErrNotFound
	}
	t := m.tickets[id]
	e, ok := m.events[t.EventID]
	if !ok || e.TenantID != tenantID {
		return nil, models.ErrNotFound
	}
	if t.Status != models.TicketStatusActive {
		return nil, models.ErrTicketNotActive
	}
	if !e.EventDate.After(time.Now()) {
		return nil, models.ErrTicketExpired
	}

	now := time.Now()
	t.Status = models.TicketStatusRedeemed
	t.RedeemedAt = &now

	email := ""
	if u, ok := m.users[t.UserID]; ok {
		email = u.Email
	}

	return &models.TicketRedemption{
		TicketID:   t.ID,
		EventName:  e.Name,
		UserEmail:  email,
		RedeemedAt: now,
	}, nil
}

func (m *memStore) ListTicketsByUser(_ context.Context, userID int64, status string) ([]models.TicketWithEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TicketWithEvent
	for _, t := range m.tickets {
		if t.UserID != userID {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		e := m.events[t.EventID]
		out = append(out, models.TicketWithEvent{
			Ticket:    *t,
			EventName: e.Name,
			EventDate: e.EventDate,
			Location:  e.Location,
		})
	}
	return out, nil
}

func (m *memStore) GetTicketByUser(_ context.Context, userID, ticketID int64) (*models.TicketWithEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[ticketID]
	if !ok || t.UserID != userID {
		return nil, models.ErrNotFound
	}
	e := m.events[t.EventID]
	return &models.TicketWithEvent{
		Ticket:    *t,
		EventName: e.Name,
		EventDate: e.EventDate,
		Location:  e.Location,
	}, nil
}

// CatalogStore

func (m *memStore) UpdateEventCapacity(_ context.Context, tenantID, eventID int64, maxCapacity int) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[eventID]
	if !ok || e.TenantID != tenantID {
		return nil, models.ErrNotFound
	}
	e.MaxCapacity = maxCapacity
	if e.AvailableTickets > maxCapacity {
		e.AvailableTickets = maxCapacity
	}
	cp := *e
	return &cp, nil
}

// recordingAudit captures audit events for assertions.
type recordingAudit struct {
	mu     sync.Mutex
	events []models.AuditEvent
}

func (r *recordingAudit) Record(_ context.Context, event models.AuditEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingAudit) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Action)
	}
	return out
}

// memSessions is an in-memory payment-reference cache.
type memSessions struct {
	mu   sync.Mutex
	refs map[string]int64
}

func newMemSessions() *memSessions {
	return &memSessions{refs: make(map[string]int64)}
}

func (s *memSessions) SaveReference(_ context.Context, reference string, orderID int64, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs[reference] = orderID
	return nil
}

func (s *memSessions) LookupReference(_ context.Context, reference string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.refs[reference]
	if !ok {
		return 0, models.ErrNotFound
	}
	return id, nil
}
