// internal/domain/coupon/service.go
package coupon

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Service handles administrative coupon management. The applier only ever
// reads coupons; creation, edits and deletion go through here.
type Service struct {
	repo   *Repository
	logger *logrus.Logger
}

// NewService creates a new coupon admin service
func NewService(repo *Repository, logger *logrus.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// CreateCouponRequest represents a coupon creation request
type CreateCouponRequest struct {
	Code           string       `json:"code" binding:"required"`
	DiscountKind   DiscountKind `json:"discount_kind" binding:"required,oneof=percent fixed"`
	DiscountValue  float64      `json:"discount_value" binding:"required,gt=0"`
	ExpirationDate *time.Time   `json:"expiration_date,omitempty"`
	UsageLimit     *int         `json:"usage_limit,omitempty"`
	MinimumAmount  int64        `json:"minimum_amount" binding:"gte=0"`
	IsActive       *bool        `json:"is_active,omitempty"`
}

// UpdateCouponRequest represents a coupon update request
type UpdateCouponRequest struct {
	DiscountKind   *DiscountKind `json:"discount_kind,omitempty" binding:"omitempty,oneof=percent fixed"`
	DiscountValue  *float64      `json:"discount_value,omitempty" binding:"omitempty,gt=0"`
	ExpirationDate *time.Time    `json:"expiration_date,omitempty"`
	UsageLimit     *int          `json:"usage_limit,omitempty"`
	MinimumAmount  *int64        `json:"minimum_amount,omitempty" binding:"omitempty,gte=0"`
	IsActive       *bool         `json:"is_active,omitempty"`
}

// Create validates and stores a new coupon
func (s *Service) Create(ctx context.Context, req *CreateCouponRequest) (*Coupon, error) {
	code := CanonicalizeCode(req.Code)
	if err := ValidateCode(code); err != nil {
		return nil, err
	}

	if err := validateDiscount(req.DiscountKind, req.DiscountValue); err != nil {
		return nil, err
	}

	if existing, err := s.repo.FindByCode(ctx, code); err == nil && existing != nil {
		return nil, fmt.Errorf("coupon code %s already exists", code)
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	c := &Coupon{
		Code:           code,
		DiscountKind:   req.DiscountKind,
		DiscountValue:  req.DiscountValue,
		ExpirationDate: req.ExpirationDate,
		UsageLimit:     req.UsageLimit,
		MinimumAmount:  req.MinimumAmount,
		IsActive:       active,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"coupon_id": c.ID,
		"code":      c.Code,
	}).Info("Coupon created")

	return c, nil
}

// Update applies partial changes to a coupon
func (s *Service) Update(ctx context.Context, id uint, req *UpdateCouponRequest) (*Coupon, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DiscountKind != nil {
		c.DiscountKind = *req.DiscountKind
	}
	if req.DiscountValue != nil {
		c.DiscountValue = *req.DiscountValue
	}
	if err := validateDiscount(c.DiscountKind, c.DiscountValue); err != nil {
		return nil, err
	}

	if req.ExpirationDate != nil {
		c.ExpirationDate = req.ExpirationDate
	}
	if req.UsageLimit != nil {
		c.UsageLimit = req.UsageLimit
	}
	if req.MinimumAmount != nil {
		c.MinimumAmount = *req.MinimumAmount
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// Delete soft-deletes a coupon
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// Get retrieves a coupon by id
func (s *Service) Get(ctx context.Context, id uint) (*Coupon, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns coupons with pagination
func (s *Service) List(ctx context.Context, page, limit int) ([]Coupon, int64, error) {
	return s.repo.List(ctx, page, limit)
}

// Redeem counts a redemption at order finalization time
func (s *Service) Redeem(ctx context.Context, id uint) error {
	if err := s.repo.Redeem(ctx, id); err != nil {
		return err
	}

	s.logger.WithField("coupon_id", id).Info("Coupon redeemed")
	return nil
}

// validateDiscount checks the value against the kind's allowed range:
// percent in [1,100], fixed non-negative.
func validateDiscount(kind DiscountKind, value float64) error {
	switch kind {
	case DiscountPercent:
		if value < 1 || value > 100 {
			return fmt.Errorf("percent discount must be between 1 and 100")
		}
	case DiscountFixed:
		if value < 0 {
			return fmt.Errorf("fixed discount must not be negative")
		}
	default:
		return fmt.Errorf("unknown discount kind %q", kind)
	}
	return nil
}
