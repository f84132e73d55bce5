package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/DanielAlexandrow/next-ecommerce-sub000/checkout"
	checkoutControllers "github.com/DanielAlexandrow/next-ecommerce-sub000/controllers/checkout"
	"github.com/DanielAlexandrow/next-ecommerce-sub000/middleware"
)

func SetupCheckoutRoutes(r *gin.Engine, svc *checkout.Service, hub *checkoutControllers.Hub) {
	r.POST("/checkout/:cartID", middleware.ValidateToken, checkoutControllers.Checkout(svc, hub))
}
