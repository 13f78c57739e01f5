package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ticketing-service/internal/models"
	"ticketing-service/internal/pricing"
	"ticketing-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Coupon rejection reasons
const (
	CouponReasonNotFound = "NOT_FOUND"
	CouponReasonExpired  = "EXPIRED"
	CouponReasonMaxUses  = "MAX_USES_REACHED"
)

// CouponStore is the slice of the store the coupon ledger needs.
type CouponStore interface {
	CreateCoupon(ctx context.Context, coupon *models.Coupon) error
	GetCoupon(ctx context.Context, tenantID int64, code string) (*models.Coupon, error)
	ConsumeCoupon(ctx context.Context, tenantID int64, code string) (*models.Coupon, error)
}

// CouponService handles discount code validation and consumption.
type CouponService struct {
	store  CouponStore
	logger *zap.Logger
}

// NewCouponService creates a new coupon service
func NewCouponService(store CouponStore) *CouponService {
	return &CouponService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// CreateCouponRequest carries the admin-facing coupon fields.
type CreateCouponRequest struct {
	Code               string          `json:"code" binding:"required"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage" binding:"required"`
	MaxUses            int             `json:"max_uses" binding:"required"`
	ExpiresAt          time.Time       `json:"expires_at" binding:"required"`
}

// Create persists a new coupon for a tenant.
func (s *CouponService) Create(ctx context.Context, tenantID int64, req *CreateCouponRequest) (*models.Coupon, error) {
	if req.Code == "" {
		return nil, validationErrorf("coupon code is required")
	}
	if req.DiscountPercentage.IsNegative() || req.DiscountPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return nil, validationErrorf("discount percentage must be between 0 and 100")
	}
	if req.MaxUses <= 0 {
		return nil, validationErrorf("max uses must be greater than zero")
	}
	if !req.ExpiresAt.After(time.Now()) {
		return nil, validationErrorf("expiry must be in the future")
	}

	coupon := &models.Coupon{
		TenantID:           tenantID,
		Code:               req.Code,
		DiscountPercentage: req.DiscountPercentage.Round(2),
		MaxUses:            req.MaxUses,
		CurrentUses:        0,
		ExpiresAt:          req.ExpiresAt,
	}

	if err := s.store.CreateCoupon(ctx, coupon); err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}

	s.logger.Info("Coupon created",
		zap.Int64("tenant_id", tenantID),
		zap.String("code", coupon.Code))
	return coupon, nil
}

// CouponValidation is the result of a read-only coupon check.
type CouponValidation struct {
	Valid              bool            `json:"valid"`
	Reason             string          `json:"reason,omitempty"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage,omitempty"`
	ExpiresAt          *time.Time      `json:"expires_at,omitempty"`
}

// Validate checks a coupon without consuming a use.
func (s *CouponService) Validate(ctx context.Context, tenantID int64, code string) (*CouponValidation, error) {
	coupon, err := s.store.GetCoupon(ctx, tenantID, code)
	if errors.Is(err, models.ErrNotFound) {
		return &CouponValidation{Valid: false, Reason: CouponReasonNotFound}, nil
	}
	if err != nil {
		return nil, err
	}

	if reason := usabilityReason(coupon, time.Now()); reason != "" {
		return &CouponValidation{Valid: false, Reason: reason}, nil
	}

	return &CouponValidation{
		Valid:              true,
		DiscountPercentage: coupon.DiscountPercentage,
		ExpiresAt:          &coupon.ExpiresAt,
	}, nil
}

// ApplyAndConsume re-validates a coupon, consumes one use, and returns the
// discount for the given subtotal. Consumption happens at order-creation
// time; an order that is later abandoned does not release the use. The
// increment is a single conditional update, so a coupon on its last use can
// be consumed by at most one of two racing orders.
func (s *CouponService) ApplyAndConsume(ctx context.Context, tenantID int64, code string, subtotal decimal.Decimal) (decimal.Decimal, error) {
	ctx, span := util.StartSpan(ctx, "CouponService.ApplyAndConsume")
	defer span.End()

	coupon, err := s.store.ConsumeCoupon(ctx, tenantID, code)
	if errors.Is(err, models.ErrCouponNotUsable) {
		reason := s.rejectionReason(ctx, tenantID, code)
		util.CouponApplicationsTotal.WithLabelValues("rejected").Inc()
		return decimal.Zero, validationErrorf("coupon rejected: %s", reason)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to consume coupon: %w", err)
	}

	util.CouponApplicationsTotal.WithLabelValues("applied").Inc()
	s.logger.Info("Coupon consumed",
		zap.Int64("tenant_id", tenantID),
		zap.String("code", code),
		zap.Int("current_uses", coupon.CurrentUses))

	return pricing.Discount(subtotal, coupon.DiscountPercentage), nil
}

// rejectionReason re-reads a coupon that failed the conditional consume and
// classifies why.
func (s *CouponService) rejectionReason(ctx context.Context, tenantID int64, code string) string {
	coupon, err := s.store.GetCoupon(ctx, tenantID, code)
	if err != nil {
		return CouponReasonNotFound
	}
	if reason := usabilityReason(coupon, time.Now()); reason != "" {
		return reason
	}
	// The consume lost a race that has since resolved; treat as exhausted.
	return CouponReasonMaxUses
}

func usabilityReason(coupon *models.Coupon, now time.Time) string {
	if !coupon.ExpiresAt.After(now) {
		return CouponReasonExpired
	}
	if coupon.CurrentUses >= coupon.MaxUses {
		return CouponReasonMaxUses
	}
	return ""
}
