package cart

import (
	"context"
	"errors"

	"github.com/DanielAlexandrow/next-ecommerce-sub000/models"
	"github.com/DanielAlexandrow/next-ecommerce-sub000/store"
)

// Identity names the shopper a cart operation acts on behalf of. A guest
// carries only a session id; an authenticated user carries a user id and
// may additionally carry the session id they shopped under before logging
// in, which lets Resolve fold the old guest cart into the user cart.
type Identity struct {
	UserID    string
	SessionID string
}

func UserIdentity(userID string) Identity { return Identity{UserID: userID} }

func GuestIdentity(sessionID string) Identity { return Identity{SessionID: sessionID} }

// WithSession attaches a pre-login session id to a user identity.
func (id Identity) WithSession(sessionID string) Identity {
	id.SessionID = sessionID
	return id
}

func (id Identity) IsUser() bool { return id.UserID != "" }

// Owns reports whether the identity may act on the given cart. A user
// identity that still carries its pre-login session id also owns the
// session cart no mutation has merged yet.
func (id Identity) Owns(c *models.Cart) bool {
	if c.UserID != nil {
		return id.UserID != "" && *c.UserID == id.UserID
	}
	return c.SessionID != nil && id.SessionID != "" && *c.SessionID == id.SessionID
}

// Resolve returns the single live cart for the identity, creating one when
// none exists. Must run inside a transaction (callers pass the Store bound
// to it). Resolution rules:
//
//   - user id present, user cart exists: that cart wins; if a session cart
//     from before login also exists, its line items are folded in
//     (quantities summed per SKU) and the session cart is deleted.
//   - user id present, no user cart, session cart exists: the session cart
//     is re-parented to the user.
//   - otherwise a fresh cart is created for the user or session.
func Resolve(ctx context.Context, s store.Store, id Identity) (*models.Cart, error) {
	if id.UserID == "" && id.SessionID == "" {
		return nil, ErrNoIdentity
	}

	if id.IsUser() {
		userCart, err := s.ActiveCartByUser(ctx, id.UserID)
		switch {
		case err == nil:
			if id.SessionID != "" {
				if sessionCart, serr := s.ActiveCartBySession(ctx, id.SessionID); serr == nil {
					if merr := mergeCarts(ctx, s, userCart, sessionCart); merr != nil {
						return nil, merr
					}
				} else if !errors.Is(serr, store.ErrNotFound) {
					return nil, serr
				}
			}
			return userCart, nil
		case errors.Is(err, store.ErrNotFound):
			// fall through
		default:
			return nil, err
		}

		if id.SessionID != "" {
			sessionCart, err := s.ActiveCartBySession(ctx, id.SessionID)
			switch {
			case err == nil:
				if err := s.ReparentCart(ctx, sessionCart.CartID, id.UserID); err != nil {
					return nil, err
				}
				return s.CartByID(ctx, sessionCart.CartID)
			case errors.Is(err, store.ErrNotFound):
				// fall through
			default:
				return nil, err
			}
		}

		cart := &models.Cart{UserID: &id.UserID}
		if err := s.CreateCart(ctx, cart); err != nil {
			return nil, err
		}
		return cart, nil
	}

	sessionCart, err := s.ActiveCartBySession(ctx, id.SessionID)
	switch {
	case err == nil:
		return sessionCart, nil
	case errors.Is(err, store.ErrNotFound):
		cart := &models.Cart{SessionID: &id.SessionID}
		if err := s.CreateCart(ctx, cart); err != nil {
			return nil, err
		}
		return cart, nil
	default:
		return nil, err
	}
}

// Lookup finds the identity's live cart without creating one.
func Lookup(ctx context.Context, s store.Store, id Identity) (*models.Cart, error) {
	if id.IsUser() {
		return s.ActiveCartByUser(ctx, id.UserID)
	}
	if id.SessionID == "" {
		return nil, ErrNoIdentity
	}
	return s.ActiveCartBySession(ctx, id.SessionID)
}

// mergeCarts folds every line of src into dst, summing quantities for SKUs
// present in both, then deletes src. Stock is not re-validated here; the
// next mutation or checkout does that.
func mergeCarts(ctx context.Context, s store.Store, dst, src *models.Cart) error {
	srcItems, err := s.ItemsByCart(ctx, src.CartID)
	if err != nil {
		return err
	}
	for _, it := range srcItems {
		existing, err := s.CartItemForUpdate(ctx, dst.CartID, it.SubproductID)
		switch {
		case err == nil:
			existing.Quantity += it.Quantity
			if err := s.SaveCartItem(ctx, existing); err != nil {
				return err
			}
		case errors.Is(err, store.ErrNotFound):
			moved := models.CartItem{
				CartID:       dst.CartID,
				SubproductID: it.SubproductID,
				Quantity:     it.Quantity,
				AddedAt:      it.AddedAt,
			}
			if err := s.CreateCartItem(ctx, &moved); err != nil {
				return err
			}
		default:
			return err
		}
	}
	return s.DeleteCart(ctx, src.CartID)
}
