package cartControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DanielAlexandrow/next-ecommerce-sub000/cache"
	"github.com/DanielAlexandrow/next-ecommerce-sub000/cart"
	dealControllers "github.com/DanielAlexandrow/next-ecommerce-sub000/controllers/deals"
	"github.com/DanielAlexandrow/next-ecommerce-sub000/deals"
	"github.com/DanielAlexandrow/next-ecommerce-sub000/middleware"
	"github.com/DanielAlexandrow/next-ecommerce-sub000/store"
)

// Quantity deliberately has no "required" binding: zero and negative
// values must reach the service so they map to 422 InvalidQuantity
// instead of a generic 400.
type AddItemInput struct {
	SubproductID uint `json:"subproduct_id" binding:"required"`
	Quantity     int  `json:"quantity"`
}

type RemoveItemInput struct {
	SubproductID uint `json:"subproduct_id" binding:"required"`
}

// GET /getcartitems
func GetCartItems(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := middleware.CallerIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		lines, err := svc.Snapshot(c.Request.Context(), identity)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		c.JSON(http.StatusOK, lines)
	}
}

// POST /cart/add
func AddCartItem(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := middleware.CallerIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var input AddItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		lines, err := svc.AddOrIncrement(c.Request.Context(), identity, input.SubproductID, input.Quantity)
		if err != nil {
			status, payload := mutationError(err)
			c.JSON(status, payload)
			return
		}
		c.JSON(http.StatusCreated, lines)
	}
}

// POST /cart/remove
func RemoveCartItem(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := middleware.CallerIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var input RemoveItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		lines, err := svc.DecrementOrRemove(c.Request.Context(), identity, input.SubproductID)
		if err != nil {
			status, payload := mutationError(err)
			c.JSON(status, payload)
			return
		}
		c.JSON(http.StatusCreated, lines)
	}
}

// GET /cart/withdeals
//
// The cart snapshot priced with the best applicable cart-level deal.
func GetCartWithDeals(svc *cart.Service, s store.Store, dc cache.DealCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := middleware.CallerIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		lines, err := svc.Snapshot(c.Request.Context(), identity)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}

		var total float64
		for _, l := range lines {
			total += l.LineTotal
		}

		active, err := dealControllers.ActiveDeals(c.Request.Context(), s, dc)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch deals"})
			return
		}

		result := deals.BestDiscountForCart(total, active, time.Now())
		c.JSON(http.StatusOK, gin.H{
			"items":           lines,
			"original_total":  result.OriginalPrice,
			"discount_amount": result.DiscountAmount,
			"final_total":     result.FinalPrice,
			"applied_deal":    result.AppliedDeal,
		})
	}
}

func mutationError(err error) (int, gin.H) {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		return http.StatusUnprocessableEntity, gin.H{"error": "InvalidQuantity", "detail": err.Error()}
	case errors.Is(err, cart.ErrOutOfStock):
		return http.StatusUnprocessableEntity, gin.H{"error": "OutOfStock", "detail": err.Error()}
	case errors.Is(err, cart.ErrSubproductGone):
		return http.StatusUnprocessableEntity, gin.H{"error": "UnknownSubproduct", "detail": err.Error()}
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, gin.H{"error": "ConcurrencyConflict", "detail": err.Error()}
	default:
		return http.StatusInternalServerError, gin.H{"error": "Failed to update cart"}
	}
}
