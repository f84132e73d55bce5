package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/DanielAlexandrow/next-ecommerce-sub000/cache"
	"github.com/DanielAlexandrow/next-ecommerce-sub000/cart"
	"github.com/DanielAlexandrow/next-ecommerce-sub000/checkout"
	checkoutControllers "github.com/DanielAlexandrow/next-ecommerce-sub000/controllers/checkout"
	"github.com/DanielAlexandrow/next-ecommerce-sub000/store"
)

// SetupRoutes is the single entry-point that wires up the auth, cart,
// checkout, and order route groups.
func SetupRoutes(r *gin.Engine, db *gorm.DB, dealCache cache.DealCache) {
	st := store.NewGorm(db)
	cartSvc := cart.NewService(st)
	checkoutSvc := checkout.NewService(st)
	hub := checkoutControllers.NewHub()

	SetupAuthRoutes(r, db)
	SetupCartRoutes(r, cartSvc, st, dealCache)
	SetupCheckoutRoutes(r, checkoutSvc, hub)
	SetupOrderRoutes(r, db, hub)
}
