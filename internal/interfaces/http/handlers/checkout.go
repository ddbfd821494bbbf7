// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
)

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	service *checkout.Service
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(service *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
	}
}

// ApplyCouponRequest represents a coupon application request.
// Code is validated by the coupon rules so an empty value still
// produces the proper rejection message.
type ApplyCouponRequest struct {
	Code string `json:"code"`
}

// GetSummary handles GET /checkout/summary
func (h *CheckoutHandler) GetSummary(c *gin.Context) {
	sessionID := getOrCreateSessionID(c)

	summary, err := h.service.GetCheckoutSummary(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to build checkout summary",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout summary retrieved successfully",
		"data":    summary,
	})
}

// ApplyCoupon handles POST /checkout/coupon
func (h *CheckoutHandler) ApplyCoupon(c *gin.Context) {
	sessionID := getOrCreateSessionID(c)

	var req ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	result, err := h.service.ApplyCoupon(c.Request.Context(), sessionID, req.Code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to apply coupon",
		})
		return
	}

	if !result.OK {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": result.Message,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": result.Message,
		"data": gin.H{
			"coupon": result.Coupon,
		},
	})
}

// RemoveCoupon handles DELETE /checkout/coupon
func (h *CheckoutHandler) RemoveCoupon(c *gin.Context) {
	sessionID := getOrCreateSessionID(c)

	if err := h.service.RemoveCoupon(c.Request.Context(), sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to remove coupon",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coupon removed successfully",
	})
}

// CreateOrderHandoff handles POST /checkout/order
func (h *CheckoutHandler) CreateOrderHandoff(c *gin.Context) {
	sessionID := getOrCreateSessionID(c)

	handoff, err := h.service.BuildOrderHandoff(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Your cart is empty",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to prepare order",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order prepared successfully",
		"data":    handoff,
	})
}
