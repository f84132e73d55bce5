package dealControllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DanielAlexandrow/next-ecommerce-sub000/cache"
	"github.com/DanielAlexandrow/next-ecommerce-sub000/deals"
	"github.com/DanielAlexandrow/next-ecommerce-sub000/models"
	"github.com/DanielAlexandrow/next-ecommerce-sub000/store"
)

// ActiveDeals returns the currently-in-effect deal set, going through the
// cache when one is configured. A cache failure falls back to the store.
func ActiveDeals(ctx context.Context, s store.Store, dc cache.DealCache) ([]models.Deal, error) {
	if dc != nil {
		if cached, err := dc.Get(ctx); err == nil {
			return cached, nil
		}
	}
	active, err := s.ActiveDeals(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	if dc != nil {
		_ = dc.Set(ctx, active)
	}
	return active, nil
}

// GET /products/:id/withdeal
//
// Price of a single SKU with the best applicable deal applied.
func GetSubproductWithDeal(s store.Store, dc cache.DealCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subproduct id"})
			return
		}

		sp, err := s.Subproduct(c.Request.Context(), uint(id))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Subproduct not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subproduct"})
			return
		}

		active, err := ActiveDeals(c.Request.Context(), s, dc)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch deals"})
			return
		}

		result := deals.BestDiscountForProduct(deals.ViewOf(sp), active, time.Now())
		c.JSON(http.StatusOK, gin.H{
			"subproduct_id":   sp.ID,
			"original_price":  result.OriginalPrice,
			"discount_amount": result.DiscountAmount,
			"final_price":     result.FinalPrice,
			"applied_deal":    result.AppliedDeal,
		})
	}
}
