package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	checkoutControllers "github.com/DanielAlexandrow/next-ecommerce-sub000/controllers/checkout"
	orderControllers "github.com/DanielAlexandrow/next-ecommerce-sub000/controllers/order"
	"github.com/DanielAlexandrow/next-ecommerce-sub000/middleware"
)

func SetupOrderRoutes(r *gin.Engine, db *gorm.DB, hub *checkoutControllers.Hub) {
	orders := r.Group("/orders")
	{
		// Fetch orders for a specific user
		orders.GET("/user/:userID", middleware.ValidateToken, orderControllers.GetUserOrdersHandler(db))

		// Fetch a single order by id or order_ref
		orders.GET("/:orderID", middleware.ValidateToken, orderControllers.GetOrderByIDHandler(db))

		// websocket endpoint for real-time order updates
		orders.GET("/ws", hub.Handler)

		// Admin endpoints (API-key protected)
		admin := orders.Group("")
		admin.Use(middleware.ValidateAPIKey)
		{
			admin.GET("", orderControllers.GetAllOrdersHandler(db))
			admin.PUT("/:orderID/status", orderControllers.UpdateOrderStatusHandler(db))
			admin.PUT("/:orderID/payment-status", orderControllers.UpdatePaymentStatusHandler(db))
			admin.PUT("/:orderID/shipping-status", orderControllers.UpdateShippingStatusHandler(db))
			admin.GET("/export/excel", orderControllers.ExportOrdersToExcel(db))
		}
	}
}
