// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
)

const appliedCouponKeyPrefix = "applied_coupon:"

// ErrEmptyCart is returned when an empty cart is handed to order creation
var ErrEmptyCart = errors.New("cart is empty")

// Service handles the checkout flow: it holds the ephemeral applied coupon
// for each session and assembles the pricing summary handed to the
// order-creation collaborator.
type Service struct {
	cartStore *cart.Store
	applier   *coupon.Applier
	stash     cart.KV
	config    *config.Config
	logger    *logrus.Logger
}

// NewService creates a new checkout service. The KV store holds the applied
// coupon blobs, keyed per session.
func NewService(cartStore *cart.Store, applier *coupon.Applier, stash cart.KV, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		cartStore: cartStore,
		applier:   applier,
		stash:     stash,
		config:    cfg,
		logger:    logger,
	}
}

// Pricing represents the checkout pricing breakdown
type Pricing struct {
	Subtotal       int64 `json:"subtotal"`
	DiscountAmount int64 `json:"discount_amount"`
	ShippingCost   int64 `json:"shipping_cost"`
	TotalAmount    int64 `json:"total_amount"`
}

// Summary represents the complete checkout state shown before ordering
type Summary struct {
	Cart          *cart.Collection `json:"cart"`
	Totals        cart.Totals      `json:"totals"`
	AppliedCoupon *coupon.Applied  `json:"applied_coupon,omitempty"`
	Pricing       Pricing          `json:"pricing"`
}

// OrderHandoff is the payload handed to the order-creation collaborator
type OrderHandoff struct {
	SessionID  string      `json:"session_id"`
	Lines      []cart.Line `json:"lines"`
	Pricing    Pricing     `json:"pricing"`
	CouponID   uint        `json:"coupon_id,omitempty"`
	CouponCode string      `json:"coupon_code,omitempty"`
}

// ApplyCoupon validates a coupon code against the session's current subtotal
// and, on success, stores it as the session's single applied coupon. Applying
// replaces any previously applied coupon, it never stacks.
func (s *Service) ApplyCoupon(ctx context.Context, sessionID, code string) (*coupon.ApplyResult, error) {
	collection, err := s.cartStore.GetCollection(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if len(collection.Lines) == 0 {
		return &coupon.ApplyResult{OK: false, Message: "Your cart is empty"}, nil
	}

	result, err := s.applier.Apply(ctx, code, collection.Subtotal())
	if err != nil {
		return nil, err
	}
	if !result.OK {
		return result, nil
	}

	data, err := json.Marshal(result.Coupon)
	if err != nil {
		return nil, fmt.Errorf("failed to encode applied coupon: %w", err)
	}
	if err := s.stash.Write(ctx, appliedCouponKey(sessionID), data); err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).Error("Failed to store applied coupon")
		return nil, fmt.Errorf("failed to store applied coupon: %w", err)
	}

	return result, nil
}

// RemoveCoupon clears the session's applied coupon. Purely local state
// clearing: it never contacts the coupon collaborator and never touches
// usage counters.
func (s *Service) RemoveCoupon(ctx context.Context, sessionID string) error {
	if err := s.stash.Delete(ctx, appliedCouponKey(sessionID)); err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).Error("Failed to remove applied coupon")
		return fmt.Errorf("failed to remove applied coupon: %w", err)
	}
	return nil
}

// GetAppliedCoupon returns the session's applied coupon, or nil when none
func (s *Service) GetAppliedCoupon(ctx context.Context, sessionID string) (*coupon.Applied, error) {
	data, err := s.stash.Read(ctx, appliedCouponKey(sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to read applied coupon: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var applied coupon.Applied
	if err := json.Unmarshal(data, &applied); err != nil {
		return nil, fmt.Errorf("failed to decode applied coupon: %w", err)
	}
	return &applied, nil
}

// GetCheckoutSummary assembles the current cart, the resolved coupon and the
// pricing breakdown. The stored coupon is revalidated against the current
// subtotal so the summary never carries a discount the rules no longer
// permit; the stored state itself is left untouched.
func (s *Service) GetCheckoutSummary(ctx context.Context, sessionID string) (*Summary, error) {
	collection, err := s.cartStore.GetCollection(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	applied, err := s.resolveCoupon(ctx, sessionID, collection.Subtotal())
	if err != nil {
		return nil, err
	}

	return &Summary{
		Cart:          collection,
		Totals:        collection.CalculateTotals(),
		AppliedCoupon: applied,
		Pricing:       s.price(collection, applied),
	}, nil
}

// BuildOrderHandoff produces the payload for the order-creation
// collaborator. An empty cart cannot be handed off.
func (s *Service) BuildOrderHandoff(ctx context.Context, sessionID string) (*OrderHandoff, error) {
	summary, err := s.GetCheckoutSummary(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if len(summary.Cart.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	handoff := &OrderHandoff{
		SessionID: sessionID,
		Lines:     summary.Cart.Lines,
		Pricing:   summary.Pricing,
	}
	if summary.AppliedCoupon != nil {
		handoff.CouponID = summary.AppliedCoupon.CouponID
		handoff.CouponCode = summary.AppliedCoupon.Code
	}

	return handoff, nil
}

// resolveCoupon re-runs the applier for the stored coupon code against the
// current subtotal. A coupon that no longer validates is dropped from the
// result rather than carried stale.
func (s *Service) resolveCoupon(ctx context.Context, sessionID string, subtotal int64) (*coupon.Applied, error) {
	stored, err := s.GetAppliedCoupon(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, nil
	}

	result, err := s.applier.Apply(ctx, stored.Code, subtotal)
	if err != nil {
		return nil, err
	}
	if !result.OK {
		s.logger.WithFields(logrus.Fields{
			"session_id": sessionID,
			"code":       stored.Code,
			"reason":     result.Message,
		}).Info("Applied coupon no longer valid for current cart")
		return nil, nil
	}

	return result.Coupon, nil
}

// price computes the pricing breakdown. The discount never exceeds the
// subtotal, and shipping is added after discounting, so the total cannot go
// negative.
func (s *Service) price(collection *cart.Collection, applied *coupon.Applied) Pricing {
	pricing := Pricing{
		Subtotal: collection.Subtotal(),
	}

	if applied != nil {
		pricing.DiscountAmount = applied.DiscountAmount
	}

	if len(collection.Lines) > 0 {
		pricing.ShippingCost = s.config.Checkout.ShippingFee
		if threshold := s.config.Checkout.FreeShippingThreshold; threshold > 0 && pricing.Subtotal >= threshold {
			pricing.ShippingCost = 0
		}
	}

	pricing.TotalAmount = pricing.Subtotal - pricing.DiscountAmount + pricing.ShippingCost
	if pricing.TotalAmount < 0 {
		pricing.TotalAmount = 0
	}

	return pricing
}

func appliedCouponKey(sessionID string) string {
	return appliedCouponKeyPrefix + sessionID
}
