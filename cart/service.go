package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DanielAlexandrow/next-ecommerce-sub000/models"
	"github.com/DanielAlexandrow/next-ecommerce-sub000/store"
)

// Service mutates cart line items. Every public method runs in its own
// transaction, locks the specific cart item row before the read-then-write,
// and returns the resulting cart snapshot.
type Service struct {
	store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// AddOrIncrement upserts the (cart, SKU) line, adding quantity to whatever
// is already there. Availability and stock are checked against the summed
// quantity at the instant of mutation.
func (s *Service) AddOrIncrement(ctx context.Context, id Identity, subproductID uint, quantity int) ([]models.CartLine, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	var lines []models.CartLine
	err := store.TransactWithRetry(ctx, s.store, func(tx store.Store) error {
		c, err := Resolve(ctx, tx, id)
		if err != nil {
			return err
		}

		// Lock the line (or its absence) before reading quantities.
		item, err := tx.CartItemForUpdate(ctx, c.CartID, subproductID)
		existing := 0
		switch {
		case err == nil:
			existing = item.Quantity
		case errors.Is(err, store.ErrNotFound):
			item = nil
		default:
			return err
		}

		sp, err := tx.Subproduct(ctx, subproductID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrSubproductGone
			}
			return err
		}
		if !sp.Available || sp.Stock < existing+quantity {
			return fmt.Errorf("%w: subproduct %d has %d in stock, %d requested",
				ErrOutOfStock, sp.ID, sp.Stock, existing+quantity)
		}

		if item == nil {
			if err := tx.CreateCartItem(ctx, &models.CartItem{
				CartID:       c.CartID,
				SubproductID: subproductID,
				Quantity:     quantity,
				AddedAt:      time.Now(),
			}); err != nil {
				return err
			}
		} else {
			item.Quantity += quantity
			item.AddedAt = time.Now()
			if err := tx.SaveCartItem(ctx, item); err != nil {
				return err
			}
		}

		lines, err = tx.CartLines(ctx, c.CartID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// DecrementOrRemove lowers the line's quantity by one, deleting the row at
// quantity 1. A line that does not exist is a no-op.
func (s *Service) DecrementOrRemove(ctx context.Context, id Identity, subproductID uint) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := store.TransactWithRetry(ctx, s.store, func(tx store.Store) error {
		c, err := Resolve(ctx, tx, id)
		if err != nil {
			return err
		}

		item, err := tx.CartItemForUpdate(ctx, c.CartID, subproductID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			// nothing to do
		case err != nil:
			return err
		case item.Quantity > 1:
			item.Quantity--
			if err := tx.SaveCartItem(ctx, item); err != nil {
				return err
			}
		default:
			if err := tx.DeleteCartItem(ctx, c.CartID, subproductID); err != nil {
				return err
			}
		}

		lines, err = tx.CartLines(ctx, c.CartID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// Snapshot returns the cart page read model. An identity with no cart yet
// gets an empty snapshot; nothing is created.
func (s *Service) Snapshot(ctx context.Context, id Identity) ([]models.CartLine, error) {
	c, err := Lookup(ctx, s.store, id)
	if errors.Is(err, store.ErrNotFound) {
		return []models.CartLine{}, nil
	}
	if err != nil {
		return nil, err
	}
	lines, err := s.store.CartLines(ctx, c.CartID)
	if err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []models.CartLine{}
	}
	return lines, nil
}
