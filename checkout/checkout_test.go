package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DanielAlexandrow/next-ecommerce-sub000/cart"
	"github.com/DanielAlexandrow/next-ecommerce-sub000/models"
	"github.com/DanielAlexandrow/next-ecommerce-sub000/store"
)

func validAddress() *AddressData {
	return &AddressData{
		Name:       "Ada Lovelace",
		Email:      "ada@example.com",
		Phone:      "+44 123456",
		Address:    "12 Analytical Row",
		PostalCode: "AB1 2CD",
		City:       "London",
		Country:    "UK",
	}
}

func seededStore(t *testing.T) (*store.Memory, *cart.Service) {
	t.Helper()
	mem := store.NewMemory()
	mem.SeedProduct(models.Product{ID: 1, Name: "Hoodie"})
	mem.SeedProduct(models.Product{ID: 2, Name: "Mug"})
	mem.SeedSubproduct(models.Subproduct{ID: 10, ProductID: 1, Name: "M", Price: 40, Stock: 10, Available: true})
	mem.SeedSubproduct(models.Subproduct{ID: 20, ProductID: 2, Name: "0.3L", Price: 10, Stock: 10, Available: true})
	return mem, cart.NewService(mem)
}

func stockOf(t *testing.T, mem *store.Memory, id uint) int {
	t.Helper()
	sp, err := mem.Subproduct(context.Background(), id)
	require.NoError(t, err)
	return sp.Stock
}

func TestCheckout_Success(t *testing.T) {
	mem, cartSvc := seededStore(t)
	svc := NewService(mem)
	ctx := context.Background()
	id := cart.UserIdentity("user-1")

	_, err := cartSvc.AddOrIncrement(ctx, id, 10, 2)
	require.NoError(t, err)
	_, err = cartSvc.AddOrIncrement(ctx, id, 20, 3)
	require.NoError(t, err)

	c, err := cart.Lookup(ctx, mem, id)
	require.NoError(t, err)

	order, err := svc.Checkout(ctx, c.CartID, id, nil)
	require.NoError(t, err)

	// stock conservation: decrement equals ordered quantity per SKU
	assert.Equal(t, 8, stockOf(t, mem, 10))
	assert.Equal(t, 7, stockOf(t, mem, 20))

	// frozen snapshot with price and display names at time of purchase
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Hoodie", order.Items[0].ProductName)
	assert.Equal(t, "Mug", order.Items[1].ProductName)
	assert.Equal(t, 110.0, order.TotalAmount) // 2*40 + 3*10
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, models.ShippingStatusPending, order.ShippingStatus)
	require.NotNil(t, order.UserID)
	assert.Equal(t, "user-1", *order.UserID)
	assert.Nil(t, order.GuestID)
	assert.NotEmpty(t, order.OrderRef)

	// the cart is gone
	_, err = mem.CartByID(ctx, c.CartID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCheckout_AppliesBestCartDeal(t *testing.T) {
	mem, cartSvc := seededStore(t)
	mem.SeedDeal(models.Deal{
		ID:             1,
		Name:           "20 percent off everything",
		DiscountAmount: 20,
		DiscountType:   models.DiscountPercentage,
		DealType:       models.DealTypeCart,
		StartDate:      time.Now().Add(-time.Hour),
		EndDate:        time.Now().Add(time.Hour),
		Active:         true,
	})
	svc := NewService(mem)
	ctx := context.Background()
	id := cart.UserIdentity("user-1")

	_, err := cartSvc.AddOrIncrement(ctx, id, 10, 2) // 80
	require.NoError(t, err)
	c, err := cart.Lookup(ctx, mem, id)
	require.NoError(t, err)

	order, err := svc.Checkout(ctx, c.CartID, id, nil)
	require.NoError(t, err)

	assert.Equal(t, 16.0, order.DiscountAmount)
	assert.Equal(t, 64.0, order.TotalAmount)
	require.NotNil(t, order.DealID)
	assert.Equal(t, uint(1), *order.DealID)
}

func TestCheckout_EmptyCart(t *testing.T) {
	mem, _ := seededStore(t)
	svc := NewService(mem)
	ctx := context.Background()
	id := cart.UserIdentity("user-1")

	c, err := cart.Resolve(ctx, mem, id)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, c.CartID, id, nil)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, mem.Orders(), "no order row may exist after a failed checkout")
}

func TestCheckout_NotFound(t *testing.T) {
	mem, _ := seededStore(t)
	svc := NewService(mem)

	_, err := svc.Checkout(context.Background(), 999, cart.UserIdentity("user-1"), nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCheckout_ForbiddenForForeignCart(t *testing.T) {
	mem, cartSvc := seededStore(t)
	svc := NewService(mem)
	ctx := context.Background()
	owner := cart.UserIdentity("user-1")

	_, err := cartSvc.AddOrIncrement(ctx, owner, 10, 1)
	require.NoError(t, err)
	c, err := cart.Lookup(ctx, mem, owner)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, c.CartID, cart.UserIdentity("user-2"), nil)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Checkout(ctx, c.CartID, cart.GuestIdentity("sess-1"), nil)
	assert.ErrorIs(t, err, ErrForbidden)

	// the cart survives untouched
	_, err = mem.CartByID(ctx, c.CartID)
	assert.NoError(t, err)
	assert.Equal(t, 10, stockOf(t, mem, 10))
}

func TestCheckout_GuestRequiresCompleteAddress(t *testing.T) {
	mem, cartSvc := seededStore(t)
	svc := NewService(mem)
	ctx := context.Background()
	id := cart.GuestIdentity("sess-1")

	_, err := cartSvc.AddOrIncrement(ctx, id, 10, 1)
	require.NoError(t, err)
	c, err := cart.Lookup(ctx, mem, id)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, c.CartID, id, nil)
	assert.ErrorIs(t, err, ErrInvalidAddress)

	incomplete := validAddress()
	incomplete.PostalCode = ""
	_, err = svc.Checkout(ctx, c.CartID, id, incomplete)
	assert.ErrorIs(t, err, ErrInvalidAddress)
	assert.Contains(t, err.Error(), "postal_code")

	// nothing was written on the failed attempts
	assert.Equal(t, 10, stockOf(t, mem, 10))
	assert.Empty(t, mem.Orders())
	assert.Empty(t, mem.Guests())
}

func TestCheckout_GuestCreatesGuestAndAddressRows(t *testing.T) {
	mem, cartSvc := seededStore(t)
	svc := NewService(mem)
	ctx := context.Background()
	id := cart.GuestIdentity("sess-1")

	_, err := cartSvc.AddOrIncrement(ctx, id, 10, 1)
	require.NoError(t, err)
	c, err := cart.Lookup(ctx, mem, id)
	require.NoError(t, err)

	order, err := svc.Checkout(ctx, c.CartID, id, validAddress())
	require.NoError(t, err)

	require.NotNil(t, order.GuestID)
	assert.Nil(t, order.UserID)
	require.Len(t, mem.Guests(), 1)
	g := mem.Guests()[0]
	assert.Equal(t, g.ID, *order.GuestID)
	assert.WithinDuration(t, time.Now().Add(models.GuestTTL), g.ExpiresAt, time.Minute)
}

func TestCheckout_UserWithPreLoginSessionCart(t *testing.T) {
	mem, cartSvc := seededStore(t)
	svc := NewService(mem)
	ctx := context.Background()

	// The cart was filled as a guest; the shopper logs in and checks out
	// immediately, before any mutation merges the cart under the user.
	_, err := cartSvc.AddOrIncrement(ctx, cart.GuestIdentity("sess-1"), 10, 1)
	require.NoError(t, err)
	c, err := cart.Lookup(ctx, mem, cart.GuestIdentity("sess-1"))
	require.NoError(t, err)

	order, err := svc.Checkout(ctx, c.CartID, cart.UserIdentity("user-1").WithSession("sess-1"), nil)
	require.NoError(t, err)

	require.NotNil(t, order.UserID)
	assert.Equal(t, "user-1", *order.UserID)
	assert.Nil(t, order.GuestID)
	assert.Equal(t, 9, stockOf(t, mem, 10))
}

func TestCheckout_InsufficientStockRollsBackEverything(t *testing.T) {
	mem, cartSvc := seededStore(t)
	svc := NewService(mem)
	ctx := context.Background()
	id := cart.UserIdentity("user-1")

	_, err := cartSvc.AddOrIncrement(ctx, id, 10, 2)
	require.NoError(t, err)
	_, err = cartSvc.AddOrIncrement(ctx, id, 20, 3)
	require.NoError(t, err)
	c, err := cart.Lookup(ctx, mem, id)
	require.NoError(t, err)

	// Drain SKU 20 behind the cart's back; SKU 10 still has plenty. The
	// loop decrements 10 first (ascending id), then fails on 20: both
	// must be restored.
	sp, err := mem.Subproduct(ctx, 20)
	require.NoError(t, err)
	sp.Stock = 1
	require.NoError(t, mem.SaveSubproduct(ctx, sp))

	_, err = svc.Checkout(ctx, c.CartID, id, nil)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "subproduct 20")

	assert.Equal(t, 10, stockOf(t, mem, 10), "earlier decrement in the loop must be rolled back")
	assert.Equal(t, 1, stockOf(t, mem, 20))
	assert.Empty(t, mem.Orders())

	items, err := mem.ItemsByCart(ctx, c.CartID)
	require.NoError(t, err)
	assert.Len(t, items, 2, "cart must be untouched after a failed checkout")
}

func TestCheckout_InjectedFailureMidLoopIsAtomic(t *testing.T) {
	mem, cartSvc := seededStore(t)
	svc := NewService(mem)
	ctx := context.Background()
	id := cart.UserIdentity("user-1")

	_, err := cartSvc.AddOrIncrement(ctx, id, 10, 2)
	require.NoError(t, err)
	_, err = cartSvc.AddOrIncrement(ctx, id, 20, 3)
	require.NoError(t, err)
	c, err := cart.Lookup(ctx, mem, id)
	require.NoError(t, err)

	// Fail the second stock write: line 1 already decremented inside the
	// transaction when the error fires.
	boom := errors.New("storage exploded")
	calls := 0
	mem.SetSaveSubproductHook(func(*models.Subproduct) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})

	_, err = svc.Checkout(ctx, c.CartID, id, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	mem.SetSaveSubproductHook(nil)
	assert.Equal(t, 10, stockOf(t, mem, 10))
	assert.Equal(t, 10, stockOf(t, mem, 20))
	assert.Empty(t, mem.Orders())
	items, err := mem.ItemsByCart(ctx, c.CartID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestCheckout_SecondCheckoutOfSameCartFails(t *testing.T) {
	mem, cartSvc := seededStore(t)
	svc := NewService(mem)
	ctx := context.Background()
	id := cart.UserIdentity("user-1")

	_, err := cartSvc.AddOrIncrement(ctx, id, 10, 1)
	require.NoError(t, err)
	c, err := cart.Lookup(ctx, mem, id)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, c.CartID, id, nil)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, c.CartID, id, nil)
	assert.ErrorIs(t, err, ErrNotFound, "the consumed cart no longer exists")
	assert.Len(t, mem.Orders(), 1)
	assert.Equal(t, 9, stockOf(t, mem, 10), "stock decremented exactly once")
}

func TestAddressData_Validate(t *testing.T) {
	require.NoError(t, validAddress().Validate())

	a := validAddress()
	a.Email = ""
	err := a.Validate()
	require.ErrorIs(t, err, ErrInvalidAddress)
	assert.Contains(t, err.Error(), "email")
}
