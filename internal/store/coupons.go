package store

import (
	"context"
	"database/sql"
	"errors"

	"ticketing-service/internal/models"
)

// CreateCoupon persists a new coupon for a tenant.
func (s *Store) CreateCoupon(ctx context.Context, coupon *models.Coupon) error {
	query := `
		INSERT INTO coupons (tenant_id, code, discount_percentage, max_uses, current_uses, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	return s.db.QueryRowxContext(ctx, query,
		coupon.TenantID, coupon.Code, coupon.DiscountPercentage,
		coupon.MaxUses, coupon.CurrentUses, coupon.ExpiresAt).
		Scan(&coupon.ID)
}

// GetCoupon retrieves a coupon by code within a tenant.
func (s *Store) GetCoupon(ctx context.Context, tenantID int64, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := s.db.GetContext(ctx, &coupon,
		"SELECT * FROM coupons WHERE tenant_id = $1 AND code = $2", tenantID, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// ConsumeCoupon increments a coupon's usage count by one, guarded by the
// usage cap and expiry in the same statement so two concurrent consumers
// cannot both take the last use. Returns the coupon as of consumption, or
// ErrCouponNotUsable when the guard rejected the update.
func (s *Store) ConsumeCoupon(ctx context.Context, tenantID int64, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := s.db.GetContext(ctx, &coupon, `
		UPDATE coupons SET current_uses = current_uses + 1
		WHERE tenant_id = $1 AND code = $2
		  AND current_uses < max_uses
		  AND expires_at > NOW()
		RETURNING *`,
		tenantID, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrCouponNotUsable
	}
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}
