// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
)

// Services bundles the constructed domain services the routes depend on
type Services struct {
	Products *product.Service
	Cart     *cart.Store
	Coupons  *coupon.Service
	Checkout *checkout.Service
}

// SetupRoutes configures all API routes
func SetupRoutes(rg *gin.RouterGroup, svc *Services) {
	productHandler := handlers.NewProductHandler(svc.Products)
	cartHandler := handlers.NewCartHandler(svc.Cart, svc.Products)
	checkoutHandler := handlers.NewCheckoutHandler(svc.Checkout)
	couponHandler := handlers.NewCouponHandler(svc.Coupons)

	// Product catalog routes
	products := rg.Group("/products")
	{
		products.GET("", productHandler.ListProducts)
		products.GET("/:id", productHandler.GetProduct)
	}

	// Cart routes (session-scoped via cookie)
	cartGroup := rg.Group("/cart")
	{
		cartGroup.GET("", cartHandler.GetCart)
		cartGroup.DELETE("", cartHandler.ClearCart)
		cartGroup.GET("/count", cartHandler.GetItemCount)
		cartGroup.POST("/items", cartHandler.AddLine)
		cartGroup.PUT("/items/:id", cartHandler.UpdateLine)
		cartGroup.DELETE("/items/:id", cartHandler.RemoveLine)
	}

	// Checkout routes
	checkoutGroup := rg.Group("/checkout")
	{
		checkoutGroup.GET("/summary", checkoutHandler.GetSummary)
		checkoutGroup.POST("/coupon", checkoutHandler.ApplyCoupon)
		checkoutGroup.DELETE("/coupon", checkoutHandler.RemoveCoupon)
		checkoutGroup.POST("/order", checkoutHandler.CreateOrderHandoff)
	}

	// Admin coupon management routes
	adminCoupons := rg.Group("/admin/coupons")
	{
		adminCoupons.POST("", couponHandler.CreateCoupon)
		adminCoupons.GET("", couponHandler.ListCoupons)
		adminCoupons.GET("/:id", couponHandler.GetCoupon)
		adminCoupons.PUT("/:id", couponHandler.UpdateCoupon)
		adminCoupons.DELETE("/:id", couponHandler.DeleteCoupon)
		adminCoupons.POST("/:id/redeem", couponHandler.RedeemCoupon)
	}
}
