package routes

import (
	"net/http"

	"checkout-service/controllers"
	"checkout-service/middleware"

	"github.com/gin-gonic/gin"
)

// Controllers groups the handlers the router wires up.
type Controllers struct {
	Checkout  *controllers.CheckoutController
	Orders    *controllers.OrderController
	Inventory *controllers.InventoryController
	Carts     *controllers.CartController
}

// Register wires all routes onto the engine.
func Register(r *gin.Engine, c Controllers) {
	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authed := r.Group("/")
	authed.Use(middleware.AuthMiddleware())

	authed.POST("/checkout", c.Checkout.Checkout)

	authed.GET("/orders", c.Orders.GetOrders)
	authed.GET("/orders/:id", c.Orders.GetOrderByID)
	authed.GET("/orders/purchased/:productId", c.Orders.HasPurchased)

	authed.GET("/cart", c.Carts.GetCart)
	authed.POST("/cart/items", c.Carts.AddItem)
	authed.DELETE("/cart", c.Carts.ClearCart)

	staff := authed.Group("/")
	staff.Use(middleware.RequireRole("staff", "admin"))
	staff.POST("/orders/:id/status", c.Orders.UpdateStatus)
	staff.GET("/admin/orders", c.Orders.GetDispensaryOrders)
	staff.GET("/inventory/low-stock", c.Inventory.LowStock)
	staff.POST("/inventory/:variantId/adjust", c.Inventory.Adjust)
}
