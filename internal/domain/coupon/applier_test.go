package coupon

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// stubLookup serves coupons by canonical code
type stubLookup struct {
	coupons map[string]*Coupon
	err     error
}

func (s *stubLookup) FindByCode(_ context.Context, code string) (*Coupon, error) {
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.coupons[code]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func newTestApplier(coupons ...*Coupon) *Applier {
	lookup := &stubLookup{coupons: map[string]*Coupon{}}
	for _, c := range coupons {
		lookup.coupons[c.Code] = c
	}
	applier := NewApplier(lookup)
	applier.now = func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	return applier
}

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func TestApplyEmptyCodeRejected(t *testing.T) {
	t.Parallel()

	applier := newTestApplier()
	for _, code := range []string{"", "   "} {
		result, err := applier.Apply(context.Background(), code, 10000)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.OK {
			t.Fatalf("expected rejection for code %q", code)
		}
		if !strings.Contains(result.Message, "required") {
			t.Fatalf("expected required message, got %q", result.Message)
		}
	}
}

func TestApplyUnknownCodeRejected(t *testing.T) {
	t.Parallel()

	applier := newTestApplier()
	result, err := applier.Apply(context.Background(), "NOPE42", 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.OK {
		t.Fatal("expected rejection for unknown code")
	}
}

func TestApplyCanonicalizesCode(t *testing.T) {
	t.Parallel()

	applier := newTestApplier(&Coupon{
		ID:            1,
		Code:          "SAVE10",
		DiscountKind:  DiscountPercent,
		DiscountValue: 10,
		IsActive:      true,
	})

	result, err := applier.Apply(context.Background(), "  save10  ", 30000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.OK {
		t.Fatalf("expected success, got %q", result.Message)
	}
	if result.Coupon.Code != "SAVE10" {
		t.Fatalf("expected canonical code, got %q", result.Coupon.Code)
	}
	if result.Coupon.DiscountAmount != 3000 {
		t.Fatalf("expected discount 3000, got %d", result.Coupon.DiscountAmount)
	}
}

func TestApplyMalformedCodeRejectedWithoutLookup(t *testing.T) {
	t.Parallel()

	lookup := &stubLookup{err: errors.New("lookup must not be called")}
	applier := NewApplier(lookup)

	result, err := applier.Apply(context.Background(), "a!", 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.OK {
		t.Fatal("expected rejection for malformed code")
	}
}

func TestApplyInactiveCouponRejected(t *testing.T) {
	t.Parallel()

	applier := newTestApplier(&Coupon{
		ID:            1,
		Code:          "PAUSED",
		DiscountKind:  DiscountPercent,
		DiscountValue: 10,
		IsActive:      false,
	})

	result, err := applier.Apply(context.Background(), "PAUSED", 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.OK {
		t.Fatal("expected rejection for inactive coupon")
	}
}

func TestApplyExpiredCouponAlwaysRejected(t *testing.T) {
	t.Parallel()

	applier := newTestApplier(&Coupon{
		ID:             1,
		Code:           "OLD2020",
		DiscountKind:   DiscountFixed,
		DiscountValue:  1000,
		ExpirationDate: timePtr(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)),
		IsActive:       true,
	})

	result, err := applier.Apply(context.Background(), "OLD2020", 100000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.OK {
		t.Fatal("expected rejection for expired coupon")
	}
	if !strings.Contains(result.Message, "expired") {
		t.Fatalf("expected expired message, got %q", result.Message)
	}
}

func TestApplyUsageLimitReached(t *testing.T) {
	t.Parallel()

	applier := newTestApplier(&Coupon{
		ID:            1,
		Code:          "LIMITED",
		DiscountKind:  DiscountPercent,
		DiscountValue: 10,
		UsageLimit:    intPtr(100),
		UsedCount:     100,
		IsActive:      true,
	})

	result, err := applier.Apply(context.Background(), "LIMITED", 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.OK {
		t.Fatal("expected rejection when usage limit reached")
	}
}

func TestApplyMinimumAmountGate(t *testing.T) {
	t.Parallel()

	applier := newTestApplier(&Coupon{
		ID:            1,
		Code:          "MIN100",
		DiscountKind:  DiscountPercent,
		DiscountValue: 10,
		MinimumAmount: 10000,
		IsActive:      true,
	})

	// One cent below the minimum is rejected, with the minimum in the message
	result, err := applier.Apply(context.Background(), "MIN100", 9999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.OK {
		t.Fatal("expected rejection below minimum amount")
	}
	if !strings.Contains(result.Message, "100.00") {
		t.Fatalf("expected minimum amount in message, got %q", result.Message)
	}

	// Exactly the minimum passes
	result, err = applier.Apply(context.Background(), "MIN100", 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.OK {
		t.Fatalf("expected success at minimum amount, got %q", result.Message)
	}
}

func TestApplyFullPercentDiscountZeroesSubtotal(t *testing.T) {
	t.Parallel()

	applier := newTestApplier(&Coupon{
		ID:            1,
		Code:          "FREE100",
		DiscountKind:  DiscountPercent,
		DiscountValue: 100,
		IsActive:      true,
	})

	result, err := applier.Apply(context.Background(), "FREE100", 54321)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.OK {
		t.Fatalf("expected success, got %q", result.Message)
	}
	if result.Coupon.DiscountAmount != 54321 {
		t.Fatalf("expected discount to equal subtotal, got %d", result.Coupon.DiscountAmount)
	}
}

func TestApplyFixedDiscountCappedAtSubtotal(t *testing.T) {
	t.Parallel()

	applier := newTestApplier(&Coupon{
		ID:            1,
		Code:          "BIGFLAT",
		DiscountKind:  DiscountFixed,
		DiscountValue: 100000,
		IsActive:      true,
	})

	result, err := applier.Apply(context.Background(), "BIGFLAT", 5000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.OK {
		t.Fatalf("expected success, got %q", result.Message)
	}
	if result.Coupon.DiscountAmount != 5000 {
		t.Fatalf("expected discount capped at 5000, got %d", result.Coupon.DiscountAmount)
	}
}

func TestApplyIsIdempotentForSameSubtotal(t *testing.T) {
	t.Parallel()

	applier := newTestApplier(&Coupon{
		ID:            1,
		Code:          "SAVE10",
		DiscountKind:  DiscountPercent,
		DiscountValue: 10,
		IsActive:      true,
	})

	first, err := applier.Apply(context.Background(), "SAVE10", 30000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := applier.Apply(context.Background(), "SAVE10", 30000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !first.OK || !second.OK {
		t.Fatal("expected both applications to succeed")
	}
	if first.Coupon.DiscountAmount != second.Coupon.DiscountAmount {
		t.Fatalf("expected identical discounts, got %d and %d",
			first.Coupon.DiscountAmount, second.Coupon.DiscountAmount)
	}
}

func TestApplyLookupFailureIsAnError(t *testing.T) {
	t.Parallel()

	applier := NewApplier(&stubLookup{err: errors.New("connection refused")})

	if _, err := applier.Apply(context.Background(), "SAVE10", 10000); err == nil {
		t.Fatal("expected error when lookup collaborator fails")
	}
}
