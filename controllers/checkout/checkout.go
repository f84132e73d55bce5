package checkoutControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/DanielAlexandrow/next-ecommerce-sub000/checkout"
	"github.com/DanielAlexandrow/next-ecommerce-sub000/middleware"
	"github.com/DanielAlexandrow/next-ecommerce-sub000/store"
)

type CheckoutInput struct {
	AdressData *checkout.AddressData `json:"adressData"`
}

// POST /checkout/:cartID
func Checkout(svc *checkout.Service, hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := middleware.CallerIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		cartID, err := strconv.ParseUint(c.Param("cartID"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart id"})
			return
		}

		var input CheckoutInput
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&input); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
				return
			}
		}

		order, err := svc.Checkout(c.Request.Context(), uint(cartID), identity, input.AdressData)
		if err != nil {
			status, payload := checkoutError(err)
			c.JSON(status, payload)
			return
		}

		if hub != nil {
			hub.BroadcastOrder(order)
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

func checkoutError(err error) (int, gin.H) {
	switch {
	case errors.Is(err, checkout.ErrNotFound):
		return http.StatusNotFound, gin.H{"error": "NotFound", "detail": err.Error()}
	case errors.Is(err, checkout.ErrForbidden):
		return http.StatusForbidden, gin.H{"error": "Forbidden", "detail": err.Error()}
	case errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusUnprocessableEntity, gin.H{"error": "EmptyCart", "detail": err.Error()}
	case errors.Is(err, checkout.ErrInvalidAddress):
		return http.StatusUnprocessableEntity, gin.H{"error": "ValidationError", "detail": err.Error()}
	case errors.Is(err, checkout.ErrInsufficientStock):
		return http.StatusUnprocessableEntity, gin.H{"error": "InsufficientStock", "detail": err.Error()}
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, gin.H{"error": "ConcurrencyConflict", "detail": err.Error()}
	default:
		return http.StatusInternalServerError, gin.H{"error": "Checkout failed"}
	}
}
