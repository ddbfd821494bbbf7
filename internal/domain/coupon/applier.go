// internal/domain/coupon/applier.go
package coupon

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Lookup is the remote coupon collaborator. Read-only from the applier's
// perspective; implementations return ErrNotFound for unknown codes.
type Lookup interface {
	FindByCode(ctx context.Context, code string) (*Coupon, error)
}

// Applied is the ephemeral result of a successful validation, held by the
// checkout flow until removal or order completion.
type Applied struct {
	CouponID       uint         `json:"coupon_id"`
	Code           string       `json:"code"`
	DiscountKind   DiscountKind `json:"discount_kind"`
	DiscountValue  float64      `json:"discount_value"`
	DiscountAmount int64        `json:"discount_amount"` // Absolute discount in cents
	AppliedAt      time.Time    `json:"applied_at"`
}

// ApplyResult carries either the applied coupon or a user-facing rejection
// reason. Rejections are expected outcomes, never system faults.
type ApplyResult struct {
	OK      bool     `json:"ok"`
	Coupon  *Applied `json:"coupon,omitempty"`
	Message string   `json:"message,omitempty"`
}

// Applier validates a user-submitted coupon code against business rules and
// computes the discount to subtract from the subtotal. It never mutates
// coupon state; usage counting happens at order finalization.
type Applier struct {
	lookup Lookup
	now    func() time.Time
}

// NewApplier creates a new coupon applier
func NewApplier(lookup Lookup) *Applier {
	return &Applier{
		lookup: lookup,
		now:    time.Now,
	}
}

// Apply runs the ordered validation checks and resolves the discount.
// A returned error means the lookup collaborator failed; every business
// rejection comes back as a result with OK=false and a message.
func (a *Applier) Apply(ctx context.Context, code string, subtotal int64) (*ApplyResult, error) {
	canonical := CanonicalizeCode(code)
	if canonical == "" {
		return rejected("Coupon code is required"), nil
	}
	if err := ValidateCode(canonical); err != nil {
		return rejected("Invalid coupon code"), nil
	}

	c, err := a.lookup.FindByCode(ctx, canonical)
	if errors.Is(err, ErrNotFound) {
		return rejected("Invalid coupon code"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("coupon lookup failed: %w", err)
	}

	if !c.IsActive {
		return rejected("This coupon is no longer active"), nil
	}

	if c.IsExpired(a.now()) {
		return rejected("This coupon has expired"), nil
	}

	if c.UsageExhausted() {
		return rejected("This coupon has reached its usage limit"), nil
	}

	if subtotal < c.MinimumAmount {
		return rejected(fmt.Sprintf("Minimum order amount of $%.2f required", float64(c.MinimumAmount)/100)), nil
	}

	discount := resolveDiscount(c, subtotal)

	return &ApplyResult{
		OK: true,
		Coupon: &Applied{
			CouponID:       c.ID,
			Code:           c.Code,
			DiscountKind:   c.DiscountKind,
			DiscountValue:  c.DiscountValue,
			DiscountAmount: discount,
			AppliedAt:      a.now().UTC(),
		},
		Message: fmt.Sprintf("Coupon applied! You saved $%.2f", float64(discount)/100),
	}, nil
}

// resolveDiscount computes the absolute discount. The discount never exceeds
// the subtotal, so a discounted order cannot go negative.
func resolveDiscount(c *Coupon, subtotal int64) int64 {
	var discount int64
	switch c.DiscountKind {
	case DiscountPercent:
		discount = int64(float64(subtotal) * c.DiscountValue / 100)
	case DiscountFixed:
		discount = int64(c.DiscountValue)
	}

	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

func rejected(message string) *ApplyResult {
	return &ApplyResult{OK: false, Message: message}
}
