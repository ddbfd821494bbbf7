// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/product"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	store    *cart.Store
	products *product.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(store *cart.Store, products *product.Service) *CartHandler {
	return &CartHandler{
		store:    store,
		products: products,
	}
}

// AddLineRequest represents an add-to-cart request
type AddLineRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Price     *int64 `json:"price" binding:"omitempty,gte=0"`
}

// UpdateQuantityRequest represents a quantity update request
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required,gte=0"`
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	sessionID := getOrCreateSessionID(c)

	collection, err := h.store.GetCollection(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data": gin.H{
			"cart":   collection,
			"totals": collection.CalculateTotals(),
		},
	})
}

// AddLine handles POST /cart/items
func (h *CartHandler) AddLine(c *gin.Context) {
	sessionID := getOrCreateSessionID(c)

	var req AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	snap, err := h.products.GetSnapshot(req.ProductID)
	if errors.Is(err, product.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Product not found",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load product",
		})
		return
	}

	collection, err := h.store.AddLine(c.Request.Context(), sessionID, snap, req.Size, req.Color, req.Quantity, req.Price)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Couldn't update cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data": gin.H{
			"cart":   collection,
			"totals": collection.CalculateTotals(),
		},
	})
}

// UpdateLine handles PUT /cart/items/:id
func (h *CartHandler) UpdateLine(c *gin.Context) {
	sessionID := getOrCreateSessionID(c)
	lineID := c.Param("id")

	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	collection, err := h.store.UpdateQuantity(c.Request.Context(), sessionID, lineID, *req.Quantity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Couldn't update cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data": gin.H{
			"cart":   collection,
			"totals": collection.CalculateTotals(),
		},
	})
}

// RemoveLine handles DELETE /cart/items/:id
func (h *CartHandler) RemoveLine(c *gin.Context) {
	sessionID := getOrCreateSessionID(c)
	lineID := c.Param("id")

	collection, err := h.store.RemoveLine(c.Request.Context(), sessionID, lineID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Couldn't update cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data": gin.H{
			"cart":   collection,
			"totals": collection.CalculateTotals(),
		},
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	sessionID := getOrCreateSessionID(c)

	collection, err := h.store.Clear(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Couldn't update cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
		"data": gin.H{
			"cart":   collection,
			"totals": collection.CalculateTotals(),
		},
	})
}

// GetItemCount handles GET /cart/count
func (h *CartHandler) GetItemCount(c *gin.Context) {
	sessionID := getOrCreateSessionID(c)

	count, err := h.store.ItemCount(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve cart count",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"count": count,
		},
	})
}
