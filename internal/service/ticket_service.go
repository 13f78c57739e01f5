package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ticketing-service/internal/models"
	"ticketing-service/internal/util"

	"go.uber.org/zap"
)

// Ticket rejection reasons
const (
	TicketReasonNotFound    = "NOT_FOUND"
	TicketReasonAlreadyUsed = "ALREADY_USED"
	TicketReasonExpired     = "EXPIRED"
)

// TicketStore is the slice of the store ticket redemption needs.
type TicketStore interface {
	RedeemTicket(ctx context.Context, tenantID int64, code string) (*models.TicketRedemption, error)
	ListTicketsByUser(ctx context.Context, userID int64, status string) ([]models.TicketWithEvent, error)
	GetTicketByUser(ctx context.Context, userID, ticketID int64) (*models.TicketWithEvent, error)
}

// TicketService handles customer ticket listings and validator-facing
// redemption.
type TicketService struct {
	store  TicketStore
	audit  AuditLogger
	logger *zap.Logger
}

// NewTicketService creates a new ticket service
func NewTicketService(store TicketStore, audit AuditLogger) *TicketService {
	if audit == nil {
		audit = NopAuditLogger{}
	}
	return &TicketService{
		store:  store,
		audit:  audit,
		logger: util.GetLogger(),
	}
}

// TicketValidation is the validator-facing result of a redemption attempt.
type TicketValidation struct {
	Valid      bool       `json:"valid"`
	Reason     string     `json:"reason,omitempty"`
	EventName  string     `json:"event_name,omitempty"`
	UserEmail  string     `json:"user_email,omitempty"`
	RedeemedAt *time.Time `json:"redeemed_at,omitempty"`
}

// Validate redeems a ticket by code. The Active -> Redeemed transition is
// applied atomically with the read, so two concurrent validations of one code
// yield exactly one success. A code under another tenant reports NOT_FOUND,
// indistinguishable from a code that does not exist.
func (s *TicketService) Validate(ctx context.Context, tenantID, validatorID int64, code string) (*TicketValidation, error) {
	ctx, span := util.StartSpan(ctx, "TicketService.Validate")
	defer span.End()

	redemption, err := s.store.RedeemTicket(ctx, tenantID, code)
	switch {
	case errors.Is(err, models.ErrNotFound):
		util.TicketValidationsFailed.WithLabelValues("not_found").Inc()
		return &TicketValidation{Valid: false, Reason: TicketReasonNotFound}, nil
	case errors.Is(err, models.ErrTicketNotActive):
		util.TicketValidationsFailed.WithLabelValues("already_used").Inc()
		return &TicketValidation{Valid: false, Reason: TicketReasonAlreadyUsed}, nil
	case errors.Is(err, models.ErrTicketExpired):
		util.TicketValidationsFailed.WithLabelValues("expired").Inc()
		return &TicketValidation{Valid: false, Reason: TicketReasonExpired}, nil
	case err != nil:
		return nil, fmt.Errorf("failed to redeem ticket: %w", err)
	}

	util.TicketsRedeemedTotal.Inc()
	s.logger.Info("Ticket redeemed",
		zap.Int64("tenant_id", tenantID),
		zap.Int64("ticket_id", redemption.TicketID))

	s.audit.Record(ctx, newAuditEvent(models.AuditActionTicketRedeemed, tenantID, validatorID, map[string]interface{}{
		"ticket_id": redemption.TicketID,
	}))

	return &TicketValidation{
		Valid:      true,
		EventName:  redemption.EventName,
		UserEmail:  redemption.UserEmail,
		RedeemedAt: &redemption.RedeemedAt,
	}, nil
}

// ListMyTickets retrieves the caller's tickets, optionally filtered by status.
func (s *TicketService) ListMyTickets(ctx context.Context, userID int64, status string) ([]models.TicketWithEvent, error) {
	if status != "" && status != models.TicketStatusActive && status != models.TicketStatusRedeemed {
		return nil, validationErrorf("unknown ticket status %q", status)
	}
	return s.store.ListTicketsByUser(ctx, userID, status)
}

// GetMyTicket retrieves one of the caller's tickets.
func (s *TicketService) GetMyTicket(ctx context.Context, userID, ticketID int64) (*models.TicketWithEvent, error) {
	ticket, err := s.store.GetTicketByUser(ctx, userID, ticketID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, &NotFoundError{Resource: "ticket"}
	}
	return ticket, err
}
