package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DanielAlexandrow/next-ecommerce-sub000/models"
)

var (
	// ErrNotFound is returned when a looked-up row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a transaction still fails with a
	// transient lock/serialization error after the automatic retry.
	ErrConflict = errors.New("concurrency conflict")
)

// Store is the engine's view of the database. Every read and write the
// cart and checkout engines perform goes through these methods, so the
// atomicity boundary is always visible at the call site: mutations happen
// inside Transact, and the *ForUpdate reads take row-level locks that are
// held until the surrounding transaction resolves.
type Store interface {
	// Transact runs fn inside one database transaction. Any error from fn
	// rolls back every write made through the Store it receives.
	Transact(ctx context.Context, fn func(Store) error) error

	// Carts
	ActiveCartByUser(ctx context.Context, userID string) (*models.Cart, error)
	ActiveCartBySession(ctx context.Context, sessionID string) (*models.Cart, error)
	CartByID(ctx context.Context, cartID uint) (*models.Cart, error)
	CreateCart(ctx context.Context, cart *models.Cart) error
	ReparentCart(ctx context.Context, cartID uint, userID string) error
	DeleteCart(ctx context.Context, cartID uint) error

	// Cart items
	CartItemForUpdate(ctx context.Context, cartID, subproductID uint) (*models.CartItem, error)
	ItemsByCart(ctx context.Context, cartID uint) ([]models.CartItem, error)
	CreateCartItem(ctx context.Context, item *models.CartItem) error
	SaveCartItem(ctx context.Context, item *models.CartItem) error
	DeleteCartItem(ctx context.Context, cartID, subproductID uint) error
	ClearCartItems(ctx context.Context, cartID uint) error
	CartLines(ctx context.Context, cartID uint) ([]models.CartLine, error)

	// SKUs
	Subproduct(ctx context.Context, id uint) (*models.Subproduct, error)
	SubproductForUpdate(ctx context.Context, id uint) (*models.Subproduct, error)
	SaveSubproduct(ctx context.Context, sp *models.Subproduct) error

	// Deals (read-only for the engine, relations preloaded)
	ActiveDeals(ctx context.Context, now time.Time) ([]models.Deal, error)

	// Orders and guest checkout rows
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateGuest(ctx context.Context, guest *models.Guest) error
	CreateAddressInfo(ctx context.Context, addr *models.AddressInfo) error
}

// TransactWithRetry runs fn in a transaction and retries it exactly once
// when the database reports a deadlock or serialization failure. A second
// transient failure surfaces as ErrConflict.
func TransactWithRetry(ctx context.Context, s Store, fn func(Store) error) error {
	err := s.Transact(ctx, fn)
	if err == nil || !IsRetryable(err) {
		return err
	}
	if err = s.Transact(ctx, fn); err != nil && IsRetryable(err) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}
