// internal/interfaces/http/handlers/checkout_test.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/product"
)

type fixedLookup struct {
	coupons map[string]*coupon.Coupon
}

func (l *fixedLookup) FindByCode(_ context.Context, code string) (*coupon.Coupon, error) {
	c, ok := l.coupons[code]
	if !ok {
		return nil, coupon.ErrNotFound
	}
	return c, nil
}

func newCheckoutRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	log := quietLogger()
	store := cart.NewStore(newMemKV(), cfg, log)
	products := product.NewService(newCatalogDB(t), cfg)

	lookup := &fixedLookup{coupons: map[string]*coupon.Coupon{
		"SAVE10": {
			ID:            1,
			Code:          "SAVE10",
			DiscountKind:  coupon.DiscountPercent,
			DiscountValue: 10,
			IsActive:      true,
		},
	}}
	svc := checkout.NewService(store, coupon.NewApplier(lookup), newMemKV(), cfg, log)

	cartHandler := NewCartHandler(store, products)
	checkoutHandler := NewCheckoutHandler(svc)

	r := gin.New()
	r.POST("/cart/items", cartHandler.AddLine)
	r.GET("/checkout/summary", checkoutHandler.GetSummary)
	r.POST("/checkout/coupon", checkoutHandler.ApplyCoupon)
	r.DELETE("/checkout/coupon", checkoutHandler.RemoveCoupon)
	r.POST("/checkout/order", checkoutHandler.CreateOrderHandoff)
	return r
}

// summaryEnvelope mirrors the checkout summary response body
type summaryEnvelope struct {
	Data checkout.Summary `json:"data"`
}

func decodeSummary(t *testing.T, body []byte) summaryEnvelope {
	t.Helper()
	var env summaryEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	return env
}

func TestCheckoutHandler_ApplyCouponOnEmptyCart(t *testing.T) {
	t.Parallel()
	r := newCheckoutRouter(t)

	w := doJSON(t, r, http.MethodPost, "/checkout/coupon", `{"code":"SAVE10"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
}

func TestCheckoutHandler_ApplyAndSummary(t *testing.T) {
	t.Parallel()
	r := newCheckoutRouter(t)

	// 10 shirts at 1999 = 19990 subtotal, above free shipping threshold
	w := doJSON(t, r, http.MethodPost, "/cart/items", `{"product_id":1,"size":"M","quantity":10}`)
	if w.Code != http.StatusOK {
		t.Fatalf("add status = %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/checkout/coupon", `{"code":"SAVE10"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("apply status = %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/checkout/summary", "")
	env := decodeSummary(t, w.Body.Bytes())

	if env.Data.AppliedCoupon == nil || env.Data.AppliedCoupon.Code != "SAVE10" {
		t.Fatalf("applied coupon = %+v, want SAVE10", env.Data.AppliedCoupon)
	}
	if got := env.Data.Pricing.Subtotal; got != 19990 {
		t.Fatalf("subtotal = %d, want 19990", got)
	}
	if got := env.Data.Pricing.DiscountAmount; got != 1999 {
		t.Fatalf("discount = %d, want 1999", got)
	}
	if got := env.Data.Pricing.ShippingCost; got != 0 {
		t.Fatalf("shipping = %d, want 0 above threshold", got)
	}
	if got := env.Data.Pricing.TotalAmount; got != 17991 {
		t.Fatalf("total = %d, want 17991", got)
	}
}

func TestCheckoutHandler_RejectionMessageSurfaces(t *testing.T) {
	t.Parallel()
	r := newCheckoutRouter(t)

	doJSON(t, r, http.MethodPost, "/cart/items", `{"product_id":1,"size":"M","quantity":1}`)

	w := doJSON(t, r, http.MethodPost, "/checkout/coupon", `{"code":"NOPE99"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}

	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.Error != "Invalid coupon code" {
		t.Fatalf("error = %q, want %q", resp.Error, "Invalid coupon code")
	}
}

func TestCheckoutHandler_RemoveCoupon(t *testing.T) {
	t.Parallel()
	r := newCheckoutRouter(t)

	doJSON(t, r, http.MethodPost, "/cart/items", `{"product_id":1,"size":"M","quantity":10}`)
	doJSON(t, r, http.MethodPost, "/checkout/coupon", `{"code":"SAVE10"}`)

	w := doJSON(t, r, http.MethodDelete, "/checkout/coupon", "")
	if w.Code != http.StatusOK {
		t.Fatalf("remove status = %d", w.Code)
	}

	env := decodeSummary(t, doJSON(t, r, http.MethodGet, "/checkout/summary", "").Body.Bytes())
	if env.Data.AppliedCoupon != nil {
		t.Fatalf("applied coupon = %+v, want nil after removal", env.Data.AppliedCoupon)
	}
	if env.Data.Pricing.DiscountAmount != 0 {
		t.Fatalf("discount = %d, want 0", env.Data.Pricing.DiscountAmount)
	}
}

func TestCheckoutHandler_OrderHandoffRequiresItems(t *testing.T) {
	t.Parallel()
	r := newCheckoutRouter(t)

	w := doJSON(t, r, http.MethodPost, "/checkout/order", "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
}
