// Package checkout converts a cart into an immutable order. The whole
// conversion - stock decrements, order insert, cart deletion - is one
// database transaction: either all of it becomes durable or none of it.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/DanielAlexandrow/next-ecommerce-sub000/cart"
	"github.com/DanielAlexandrow/next-ecommerce-sub000/deals"
	"github.com/DanielAlexandrow/next-ecommerce-sub000/models"
	"github.com/DanielAlexandrow/next-ecommerce-sub000/store"
)

var (
	ErrEmptyCart         = errors.New("cart is empty, nothing to checkout")
	ErrInsufficientStock = errors.New("not enough stock")
	ErrForbidden         = errors.New("cart belongs to a different shopper")
	ErrNotFound          = errors.New("cart not found")
	ErrInvalidAddress    = errors.New("incomplete shipping address")
)

// AddressData is the shipping address a guest must supply at checkout.
type AddressData struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Country    string `json:"country"`
}

// Validate reports the first missing field, if any.
func (a *AddressData) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"name", a.Name},
		{"email", a.Email},
		{"phone", a.Phone},
		{"address", a.Address},
		{"postal_code", a.PostalCode},
		{"city", a.City},
		{"country", a.Country},
	}
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("%w: missing %s", ErrInvalidAddress, f.name)
		}
	}
	return nil
}

type Service struct {
	store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// Checkout performs the atomic Cart -> Order transition for the cart the
// caller owns. Stock is re-validated per line under a row lock (SKUs are
// locked in ascending id order, before any order or cart write), the best
// cart-level deal is recorded on the order, and the cart is hard-deleted.
// Any failure rolls back every write, including stock decrements already
// applied earlier in the loop. A transient lock conflict is retried once.
func (s *Service) Checkout(ctx context.Context, cartID uint, caller cart.Identity, addr *AddressData) (*models.Order, error) {
	var order *models.Order
	err := store.TransactWithRetry(ctx, s.store, func(tx store.Store) error {
		c, err := tx.CartByID(ctx, cartID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !caller.Owns(c) {
			return ErrForbidden
		}

		items, err := tx.ItemsByCart(ctx, c.CartID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		var userID, guestID *string
		if caller.IsUser() {
			uid := caller.UserID
			userID = &uid
		} else {
			if addr == nil {
				return fmt.Errorf("%w: address payload required for guest checkout", ErrInvalidAddress)
			}
			if err := addr.Validate(); err != nil {
				return err
			}
			guest := &models.Guest{
				ID:        "guest_" + uuid.NewString(),
				ExpiresAt: time.Now().Add(models.GuestTTL),
				CreatedAt: time.Now(),
			}
			if err := tx.CreateGuest(ctx, guest); err != nil {
				return err
			}
			if err := tx.CreateAddressInfo(ctx, &models.AddressInfo{
				GuestID:    guest.ID,
				Name:       addr.Name,
				Email:      addr.Email,
				Phone:      addr.Phone,
				Address:    addr.Address,
				PostalCode: addr.PostalCode,
				City:       addr.City,
				Country:    addr.Country,
			}); err != nil {
				return err
			}
			guestID = &guest.ID
		}

		// Lock SKUs in ascending id order so concurrent checkouts over
		// overlapping SKUs cannot deadlock.
		sort.Slice(items, func(i, j int) bool { return items[i].SubproductID < items[j].SubproductID })

		var total float64
		orderItems := make([]models.OrderItem, 0, len(items))
		for _, it := range items {
			sp, err := tx.SubproductForUpdate(ctx, it.SubproductID)
			if err != nil {
				return err
			}
			if sp.Stock < it.Quantity {
				return fmt.Errorf("%w: subproduct %d has %d in stock, %d in cart",
					ErrInsufficientStock, sp.ID, sp.Stock, it.Quantity)
			}

			sp.Stock -= it.Quantity
			if err := tx.SaveSubproduct(ctx, sp); err != nil {
				return err
			}

			full, err := tx.Subproduct(ctx, it.SubproductID)
			if err != nil {
				return err
			}
			productName := ""
			if full.Product != nil {
				productName = full.Product.Name
			}

			total += sp.Price * float64(it.Quantity)
			orderItems = append(orderItems, models.OrderItem{
				ProductID:    sp.ProductID,
				SubproductID: sp.ID,
				ProductName:  productName,
				VariantName:  sp.Name,
				UnitPrice:    sp.Price,
				Quantity:     it.Quantity,
			})
		}

		now := time.Now()
		activeDeals, err := tx.ActiveDeals(ctx, now)
		if err != nil {
			return err
		}
		result := deals.BestDiscountForCart(total, activeDeals, now)

		order = &models.Order{
			OrderRef:       generateOrderRef(),
			UserID:         userID,
			GuestID:        guestID,
			Items:          orderItems,
			TotalAmount:    result.FinalPrice,
			DiscountAmount: result.DiscountAmount,
			Status:         models.OrderStatusPending,
			PaymentStatus:  models.PaymentStatusPending,
			ShippingStatus: models.ShippingStatusPending,
		}
		if result.AppliedDeal != nil {
			dealID := result.AppliedDeal.ID
			order.DealID = &dealID
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}

		return tx.DeleteCart(ctx, c.CartID)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func generateOrderRef() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}
