package coupon

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	// One shared in-memory database per test, isolated by name
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Coupon{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewService(NewRepository(db), logger)
}

func TestCreateCanonicalizesAndStores(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &CreateCouponRequest{
		Code:          "  save10 ",
		DiscountKind:  DiscountPercent,
		DiscountValue: 10,
		MinimumAmount: 5000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Code != "SAVE10" {
		t.Fatalf("expected canonical code SAVE10, got %q", created.Code)
	}
	if !created.IsActive {
		t.Fatal("expected coupon active by default")
	}

	found, err := svc.repo.FindByCode(ctx, "SAVE10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found.MinimumAmount != 5000 {
		t.Fatalf("expected minimum amount 5000, got %d", found.MinimumAmount)
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  CreateCouponRequest
	}{
		{"code too short", CreateCouponRequest{Code: "AB", DiscountKind: DiscountPercent, DiscountValue: 10}},
		{"code bad charset", CreateCouponRequest{Code: "SAVE 10!", DiscountKind: DiscountPercent, DiscountValue: 10}},
		{"percent above 100", CreateCouponRequest{Code: "TOOMUCH", DiscountKind: DiscountPercent, DiscountValue: 150}},
		{"percent below 1", CreateCouponRequest{Code: "TOOSMALL", DiscountKind: DiscountPercent, DiscountValue: 0.5}},
		{"unknown kind", CreateCouponRequest{Code: "ODDKIND", DiscountKind: "bogus", DiscountValue: 10}},
	}

	for _, tc := range cases {
		if _, err := svc.Create(ctx, &tc.req); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestCreateRejectsDuplicateCode(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	req := CreateCouponRequest{Code: "SAVE10", DiscountKind: DiscountPercent, DiscountValue: 10}
	if _, err := svc.Create(ctx, &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Create(ctx, &req); err == nil {
		t.Fatal("expected error for duplicate code")
	}
}

func TestUpdateAppliesPartialChanges(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &CreateCouponRequest{
		Code:          "SAVE10",
		DiscountKind:  DiscountPercent,
		DiscountValue: 10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inactive := false
	minimum := int64(9900)
	updated, err := svc.Update(ctx, created.ID, &UpdateCouponRequest{
		IsActive:      &inactive,
		MinimumAmount: &minimum,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.IsActive {
		t.Fatal("expected coupon deactivated")
	}
	if updated.MinimumAmount != 9900 {
		t.Fatalf("expected minimum 9900, got %d", updated.MinimumAmount)
	}
	if updated.DiscountValue != 10 {
		t.Fatalf("expected discount value untouched, got %v", updated.DiscountValue)
	}
}

func TestDeleteThenLookupFails(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &CreateCouponRequest{
		Code:          "GONE42",
		DiscountKind:  DiscountFixed,
		DiscountValue: 500,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.repo.FindByCode(ctx, "GONE42"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := svc.Delete(ctx, created.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestRedeemGuardedByUsageLimit(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	limit := 2
	created, err := svc.Create(ctx, &CreateCouponRequest{
		Code:          "TWICE1",
		DiscountKind:  DiscountFixed,
		DiscountValue: 500,
		UsageLimit:    &limit,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := svc.Redeem(ctx, created.ID); err != nil {
			t.Fatalf("redeem %d failed: %v", i+1, err)
		}
	}
	if err := svc.Redeem(ctx, created.ID); err == nil {
		t.Fatal("expected error redeeming past the usage limit")
	}

	current, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current.UsedCount != 2 {
		t.Fatalf("expected used count 2, got %d", current.UsedCount)
	}
}

func TestApplierAgainstRepository(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	expiry := time.Now().Add(24 * time.Hour)
	if _, err := svc.Create(ctx, &CreateCouponRequest{
		Code:           "SAVE10",
		DiscountKind:   DiscountPercent,
		DiscountValue:  10,
		ExpirationDate: &expiry,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	applier := NewApplier(svc.repo)
	result, err := applier.Apply(ctx, "save10", 30000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.OK {
		t.Fatalf("expected success, got %q", result.Message)
	}
	if result.Coupon.DiscountAmount != 3000 {
		t.Fatalf("expected discount 3000, got %d", result.Coupon.DiscountAmount)
	}
}
