package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/DanielAlexandrow/next-ecommerce-sub000/cache"
	"github.com/DanielAlexandrow/next-ecommerce-sub000/cart"
	cartControllers "github.com/DanielAlexandrow/next-ecommerce-sub000/controllers/cart"
	dealControllers "github.com/DanielAlexandrow/next-ecommerce-sub000/controllers/deals"
	"github.com/DanielAlexandrow/next-ecommerce-sub000/middleware"
	"github.com/DanielAlexandrow/next-ecommerce-sub000/store"
)

// SetupCartRoutes registers the cart endpoints. All of them require a
// token (guest or user); the identity in the token owns the cart.
func SetupCartRoutes(r *gin.Engine, svc *cart.Service, st store.Store, dealCache cache.DealCache) {
	r.GET("/getcartitems", middleware.ValidateToken, cartControllers.GetCartItems(svc))

	cartGroup := r.Group("/cart")
	cartGroup.Use(middleware.ValidateToken)
	{
		cartGroup.POST("/add", cartControllers.AddCartItem(svc))
		cartGroup.POST("/remove", cartControllers.RemoveCartItem(svc))
		cartGroup.GET("/withdeals", cartControllers.GetCartWithDeals(svc, st, dealCache))
	}

	r.GET("/products/:id/withdeal", dealControllers.GetSubproductWithDeal(st, dealCache))
}
