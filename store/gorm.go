package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DanielAlexandrow/next-ecommerce-sub000/models"
)

// Gorm is the production Store backed by Postgres through GORM.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (g *Gorm) Transact(ctx context.Context, fn func(Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Gorm{db: tx})
	})
}

// IsRetryable reports whether err is a transient transaction failure worth
// one automatic retry: a deadlock, a serialization conflict, or a unique
// violation. The last covers first-insert races — SELECT ... FOR UPDATE on
// a row that does not exist yet locks nothing, so two concurrent first
// inserts of the same cart or cart item both pass the lookup and the loser
// hits the unique index; on retry it sees the committed row and updates it.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "deadlock detected") ||
		strings.Contains(msg, "could not serialize access") ||
		strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "40001") ||
		strings.Contains(msg, "40P01") ||
		strings.Contains(msg, "23505")
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// -------- Carts --------

func (g *Gorm) ActiveCartByUser(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	if err := g.db.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, translate(err)
	}
	return &cart, nil
}

func (g *Gorm) ActiveCartBySession(ctx context.Context, sessionID string) (*models.Cart, error) {
	var cart models.Cart
	if err := g.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&cart).Error; err != nil {
		return nil, translate(err)
	}
	return &cart, nil
}

func (g *Gorm) CartByID(ctx context.Context, cartID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := g.db.WithContext(ctx).First(&cart, "cart_id = ?", cartID).Error; err != nil {
		return nil, translate(err)
	}
	return &cart, nil
}

func (g *Gorm) CreateCart(ctx context.Context, cart *models.Cart) error {
	return g.db.WithContext(ctx).Create(cart).Error
}

func (g *Gorm) ReparentCart(ctx context.Context, cartID uint, userID string) error {
	res := g.db.WithContext(ctx).Model(&models.Cart{}).Where("cart_id = ?", cartID).
		Updates(map[string]interface{}{"user_id": userID, "session_id": nil})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *Gorm) DeleteCart(ctx context.Context, cartID uint) error {
	if err := g.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	return g.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.Cart{}).Error
}

// -------- Cart items --------

func (g *Gorm) CartItemForUpdate(ctx context.Context, cartID, subproductID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := g.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("cart_id = ? AND subproduct_id = ?", cartID, subproductID).
		First(&item).Error
	if err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (g *Gorm) ItemsByCart(ctx context.Context, cartID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := g.db.WithContext(ctx).Where("cart_id = ?", cartID).Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (g *Gorm) CreateCartItem(ctx context.Context, item *models.CartItem) error {
	return g.db.WithContext(ctx).Create(item).Error
}

func (g *Gorm) SaveCartItem(ctx context.Context, item *models.CartItem) error {
	return g.db.WithContext(ctx).Save(item).Error
}

func (g *Gorm) DeleteCartItem(ctx context.Context, cartID, subproductID uint) error {
	return g.db.WithContext(ctx).
		Where("cart_id = ? AND subproduct_id = ?", cartID, subproductID).
		Delete(&models.CartItem{}).Error
}

func (g *Gorm) ClearCartItems(ctx context.Context, cartID uint) error {
	return g.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

func (g *Gorm) CartLines(ctx context.Context, cartID uint) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := g.db.WithContext(ctx).
		Table("cart_items").
		Select(`cart_items.subproduct_id,
			products.id AS product_id,
			products.name AS product_name,
			products.image AS image,
			subproducts.name AS variant_name,
			subproducts.price AS unit_price,
			cart_items.quantity,
			subproducts.price * cart_items.quantity AS line_total,
			subproducts.stock,
			subproducts.available`).
		Joins("JOIN subproducts ON subproducts.id = cart_items.subproduct_id").
		Joins("JOIN products ON products.id = subproducts.product_id").
		Where("cart_items.cart_id = ?", cartID).
		Order("cart_items.id").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// -------- SKUs --------

func (g *Gorm) Subproduct(ctx context.Context, id uint) (*models.Subproduct, error) {
	var sp models.Subproduct
	err := g.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Categories").
		Preload("Product.Brand").
		First(&sp, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &sp, nil
}

func (g *Gorm) SubproductForUpdate(ctx context.Context, id uint) (*models.Subproduct, error) {
	var sp models.Subproduct
	err := g.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&sp, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &sp, nil
}

func (g *Gorm) SaveSubproduct(ctx context.Context, sp *models.Subproduct) error {
	return g.db.WithContext(ctx).Save(sp).Error
}

// -------- Deals --------

func (g *Gorm) ActiveDeals(ctx context.Context, now time.Time) ([]models.Deal, error) {
	var deals []models.Deal
	err := g.db.WithContext(ctx).
		Preload("Products").
		Preload("Categories").
		Preload("Brands").
		Where("active = ? AND start_date <= ? AND end_date >= ?", true, now, now).
		Order("id").
		Find(&deals).Error
	if err != nil {
		return nil, err
	}
	return deals, nil
}

// -------- Orders and guest rows --------

func (g *Gorm) CreateOrder(ctx context.Context, order *models.Order) error {
	return g.db.WithContext(ctx).Create(order).Error
}

func (g *Gorm) CreateGuest(ctx context.Context, guest *models.Guest) error {
	return g.db.WithContext(ctx).Create(guest).Error
}

func (g *Gorm) CreateAddressInfo(ctx context.Context, addr *models.AddressInfo) error {
	return g.db.WithContext(ctx).Create(addr).Error
}
