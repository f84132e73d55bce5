// Package deals computes the single best discount for a product or a cart
// total from a set of already-fetched deals. It is pure: no I/O, no hidden
// state, same inputs always produce the same result.
package deals

import (
	"time"

	"github.com/DanielAlexandrow/next-ecommerce-sub000/models"
)

// ProductView is the slice of catalog data deal matching needs: the parent
// product, its price (taken from the SKU), its categories, and its brand.
type ProductView struct {
	ProductID   uint
	Price       float64
	CategoryIDs []uint
	BrandID     *uint
}

// ViewOf builds a ProductView from a SKU whose Product (with Categories
// and Brand) has been preloaded.
func ViewOf(sp *models.Subproduct) ProductView {
	v := ProductView{ProductID: sp.ProductID, Price: sp.Price}
	if sp.Product != nil {
		for _, c := range sp.Product.Categories {
			v.CategoryIDs = append(v.CategoryIDs, c.ID)
		}
		v.BrandID = sp.Product.BrandID
	}
	return v
}

// DiscountResult reports the outcome of deal selection. Exactly one of
// {no discount, one deal} holds: deals never stack, and an empty or
// inapplicable deal set yields a zero discount with a nil AppliedDeal.
type DiscountResult struct {
	OriginalPrice  float64      `json:"original_price"`
	DiscountAmount float64      `json:"discount_amount"`
	FinalPrice     float64      `json:"final_price"`
	AppliedDeal    *models.Deal `json:"applied_deal"`
}

// BestDiscountForProduct selects, among the in-effect deals matching the
// product directly, via any of its categories, or via its brand, the one
// with the strictly greatest discount. Ties break by earliest start date,
// then lowest deal id, so selection is deterministic.
func BestDiscountForProduct(p ProductView, activeDeals []models.Deal, now time.Time) DiscountResult {
	best := DiscountResult{OriginalPrice: p.Price, FinalPrice: p.Price}
	for i := range activeDeals {
		d := &activeDeals[i]
		if !d.InEffect(now) || !matchesProduct(d, p) {
			continue
		}
		consider(&best, d, discountOn(p.Price, d))
	}
	return best
}

// BestDiscountForCart considers only cart-level deals, skipping those whose
// minimum cart amount the total does not reach. Same selection rule as
// BestDiscountForProduct.
func BestDiscountForCart(cartTotal float64, activeDeals []models.Deal, now time.Time) DiscountResult {
	best := DiscountResult{OriginalPrice: cartTotal, FinalPrice: cartTotal}
	for i := range activeDeals {
		d := &activeDeals[i]
		if !d.InEffect(now) || d.DealType != models.DealTypeCart {
			continue
		}
		if d.MinimumAmount != nil && cartTotal < *d.MinimumAmount {
			continue
		}
		consider(&best, d, discountOn(cartTotal, d))
	}
	return best
}

func matchesProduct(d *models.Deal, p ProductView) bool {
	switch d.DealType {
	case models.DealTypeProduct:
		for _, prod := range d.Products {
			if prod.ID == p.ProductID {
				return true
			}
		}
	case models.DealTypeCategory:
		for _, cat := range d.Categories {
			for _, id := range p.CategoryIDs {
				if cat.ID == id {
					return true
				}
			}
		}
	case models.DealTypeBrand:
		if p.BrandID == nil {
			return false
		}
		for _, b := range d.Brands {
			if b.ID == *p.BrandID {
				return true
			}
		}
	case models.DealTypeCart:
		// cart deals never apply to individual products
	}
	return false
}

func discountOn(amount float64, d *models.Deal) float64 {
	var discount float64
	switch d.DiscountType {
	case models.DiscountPercentage:
		discount = amount * d.DiscountAmount / 100
	case models.DiscountFixed:
		discount = d.DiscountAmount
	}
	if discount < 0 {
		return 0
	}
	if discount > amount {
		return amount
	}
	return discount
}

// consider replaces the current best when the candidate discount is
// strictly greater, or equal but from a deal with an earlier start date,
// or equal on both counts but with a lower id.
func consider(best *DiscountResult, d *models.Deal, discount float64) {
	if discount <= 0 {
		return
	}
	if best.AppliedDeal != nil {
		cur := best.AppliedDeal
		if discount < best.DiscountAmount {
			return
		}
		if discount == best.DiscountAmount {
			if d.StartDate.After(cur.StartDate) {
				return
			}
			if d.StartDate.Equal(cur.StartDate) && d.ID >= cur.ID {
				return
			}
		}
	}
	best.AppliedDeal = d
	best.DiscountAmount = discount
	best.FinalPrice = best.OriginalPrice - discount
}
