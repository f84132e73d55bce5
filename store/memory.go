package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/DanielAlexandrow/next-ecommerce-sub000/models"
)

// Memory is an in-memory Store used by tests and local experiments. A
// single mutex is held for the whole of Transact, so transactions are
// fully serialized; rollback is a restore of the pre-transaction snapshot.
type Memory struct {
	mu sync.Mutex
	d  memData

	// saveSubproductHook, when set, runs before every SaveSubproduct and
	// can inject a failure mid-transaction.
	saveSubproductHook func(*models.Subproduct) error
}

type memData struct {
	carts       map[uint]models.Cart
	items       map[uint]models.CartItem
	subproducts map[uint]models.Subproduct
	products    map[uint]models.Product
	deals       []models.Deal
	orders      map[uint]models.Order
	guests      map[string]models.Guest
	addresses   map[uint]models.AddressInfo

	nextCartID  uint
	nextItemID  uint
	nextOrderID uint
	nextAddrID  uint
}

func NewMemory() *Memory {
	return &Memory{d: memData{
		carts:       map[uint]models.Cart{},
		items:       map[uint]models.CartItem{},
		subproducts: map[uint]models.Subproduct{},
		products:    map[uint]models.Product{},
		orders:      map[uint]models.Order{},
		guests:      map[string]models.Guest{},
		addresses:   map[uint]models.AddressInfo{},
		nextCartID:  1,
		nextItemID:  1,
		nextOrderID: 1,
		nextAddrID:  1,
	}}
}

func (d memData) clone() memData {
	c := d
	c.carts = make(map[uint]models.Cart, len(d.carts))
	for k, v := range d.carts {
		c.carts[k] = v
	}
	c.items = make(map[uint]models.CartItem, len(d.items))
	for k, v := range d.items {
		c.items[k] = v
	}
	c.subproducts = make(map[uint]models.Subproduct, len(d.subproducts))
	for k, v := range d.subproducts {
		c.subproducts[k] = v
	}
	c.products = make(map[uint]models.Product, len(d.products))
	for k, v := range d.products {
		c.products[k] = v
	}
	c.deals = append([]models.Deal(nil), d.deals...)
	c.orders = make(map[uint]models.Order, len(d.orders))
	for k, v := range d.orders {
		c.orders[k] = v
	}
	c.guests = make(map[string]models.Guest, len(d.guests))
	for k, v := range d.guests {
		c.guests[k] = v
	}
	c.addresses = make(map[uint]models.AddressInfo, len(d.addresses))
	for k, v := range d.addresses {
		c.addresses[k] = v
	}
	return c
}

// -------- Seeding helpers (tests only) --------

func (m *Memory) SeedProduct(p models.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.d.products[p.ID] = p
}

func (m *Memory) SeedSubproduct(sp models.Subproduct) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.d.subproducts[sp.ID] = sp
}

func (m *Memory) SeedDeal(d models.Deal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.d.deals = append(m.d.deals, d)
}

func (m *Memory) SeedGuest(g models.Guest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.d.guests[g.ID] = g
}

// SetSaveSubproductHook installs a failure-injection hook for tests.
func (m *Memory) SetSaveSubproductHook(fn func(*models.Subproduct) error) {
	m.saveSubproductHook = fn
}

// Orders returns a copy of every stored order, id-ascending (tests only).
func (m *Memory) Orders() []models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Order, 0, len(m.d.orders))
	for _, o := range m.d.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Guests returns a copy of every stored guest row (tests only).
func (m *Memory) Guests() []models.Guest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Guest, 0, len(m.d.guests))
	for _, g := range m.d.guests {
		out = append(out, g)
	}
	return out
}

// -------- Store implementation --------

func (m *Memory) Transact(ctx context.Context, fn func(Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	backup := m.d.clone()
	if err := fn(memTx{m}); err != nil {
		m.d = backup
		return err
	}
	return nil
}

func (m *Memory) ActiveCartByUser(ctx context.Context, userID string) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeCartByUser(userID)
}

func (m *Memory) ActiveCartBySession(ctx context.Context, sessionID string) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeCartBySession(sessionID)
}

func (m *Memory) CartByID(ctx context.Context, cartID uint) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cartByID(cartID)
}

func (m *Memory) CreateCart(ctx context.Context, cart *models.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCart(cart)
}

func (m *Memory) ReparentCart(ctx context.Context, cartID uint, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reparentCart(cartID, userID)
}

func (m *Memory) DeleteCart(ctx context.Context, cartID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteCart(cartID)
}

func (m *Memory) CartItemForUpdate(ctx context.Context, cartID, subproductID uint) (*models.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cartItem(cartID, subproductID)
}

func (m *Memory) ItemsByCart(ctx context.Context, cartID uint) ([]models.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.itemsByCart(cartID)
}

func (m *Memory) CreateCartItem(ctx context.Context, item *models.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCartItem(item)
}

func (m *Memory) SaveCartItem(ctx context.Context, item *models.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveCartItem(item)
}

func (m *Memory) DeleteCartItem(ctx context.Context, cartID, subproductID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteCartItem(cartID, subproductID)
}

func (m *Memory) ClearCartItems(ctx context.Context, cartID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clearCartItems(cartID)
}

func (m *Memory) CartLines(ctx context.Context, cartID uint) ([]models.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cartLines(cartID)
}

func (m *Memory) Subproduct(ctx context.Context, id uint) (*models.Subproduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subproduct(id)
}

func (m *Memory) SubproductForUpdate(ctx context.Context, id uint) (*models.Subproduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subproduct(id)
}

func (m *Memory) SaveSubproduct(ctx context.Context, sp *models.Subproduct) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveSubproduct(sp)
}

func (m *Memory) ActiveDeals(ctx context.Context, now time.Time) ([]models.Deal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeDeals(now)
}

func (m *Memory) CreateOrder(ctx context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createOrder(order)
}

func (m *Memory) CreateGuest(ctx context.Context, guest *models.Guest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createGuest(guest)
}

func (m *Memory) CreateAddressInfo(ctx context.Context, addr *models.AddressInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createAddressInfo(addr)
}

// memTx is the view handed to Transact callbacks. The mutex is already
// held, so it delegates to the unlocked internals.
type memTx struct{ m *Memory }

func (t memTx) Transact(ctx context.Context, fn func(Store) error) error { return fn(t) }

func (t memTx) ActiveCartByUser(_ context.Context, userID string) (*models.Cart, error) {
	return t.m.activeCartByUser(userID)
}
func (t memTx) ActiveCartBySession(_ context.Context, sessionID string) (*models.Cart, error) {
	return t.m.activeCartBySession(sessionID)
}
func (t memTx) CartByID(_ context.Context, cartID uint) (*models.Cart, error) {
	return t.m.cartByID(cartID)
}
func (t memTx) CreateCart(_ context.Context, cart *models.Cart) error { return t.m.createCart(cart) }
func (t memTx) ReparentCart(_ context.Context, cartID uint, userID string) error {
	return t.m.reparentCart(cartID, userID)
}
func (t memTx) DeleteCart(_ context.Context, cartID uint) error { return t.m.deleteCart(cartID) }
func (t memTx) CartItemForUpdate(_ context.Context, cartID, subproductID uint) (*models.CartItem, error) {
	return t.m.cartItem(cartID, subproductID)
}
func (t memTx) ItemsByCart(_ context.Context, cartID uint) ([]models.CartItem, error) {
	return t.m.itemsByCart(cartID)
}
func (t memTx) CreateCartItem(_ context.Context, item *models.CartItem) error {
	return t.m.createCartItem(item)
}
func (t memTx) SaveCartItem(_ context.Context, item *models.CartItem) error {
	return t.m.saveCartItem(item)
}
func (t memTx) DeleteCartItem(_ context.Context, cartID, subproductID uint) error {
	return t.m.deleteCartItem(cartID, subproductID)
}
func (t memTx) ClearCartItems(_ context.Context, cartID uint) error {
	return t.m.clearCartItems(cartID)
}
func (t memTx) CartLines(_ context.Context, cartID uint) ([]models.CartLine, error) {
	return t.m.cartLines(cartID)
}
func (t memTx) Subproduct(_ context.Context, id uint) (*models.Subproduct, error) {
	return t.m.subproduct(id)
}
func (t memTx) SubproductForUpdate(_ context.Context, id uint) (*models.Subproduct, error) {
	return t.m.subproduct(id)
}
func (t memTx) SaveSubproduct(_ context.Context, sp *models.Subproduct) error {
	return t.m.saveSubproduct(sp)
}
func (t memTx) ActiveDeals(_ context.Context, now time.Time) ([]models.Deal, error) {
	return t.m.activeDeals(now)
}
func (t memTx) CreateOrder(_ context.Context, order *models.Order) error {
	return t.m.createOrder(order)
}
func (t memTx) CreateGuest(_ context.Context, guest *models.Guest) error {
	return t.m.createGuest(guest)
}
func (t memTx) CreateAddressInfo(_ context.Context, addr *models.AddressInfo) error {
	return t.m.createAddressInfo(addr)
}

// -------- Unlocked internals --------

func (m *Memory) activeCartByUser(userID string) (*models.Cart, error) {
	for _, c := range m.d.carts {
		if c.UserID != nil && *c.UserID == userID {
			cart := c
			return &cart, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) activeCartBySession(sessionID string) (*models.Cart, error) {
	for _, c := range m.d.carts {
		if c.SessionID != nil && *c.SessionID == sessionID {
			cart := c
			return &cart, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) cartByID(cartID uint) (*models.Cart, error) {
	c, ok := m.d.carts[cartID]
	if !ok {
		return nil, ErrNotFound
	}
	cart := c
	return &cart, nil
}

func (m *Memory) createCart(cart *models.Cart) error {
	cart.CartID = m.d.nextCartID
	m.d.nextCartID++
	cart.CreatedAt = time.Now()
	cart.UpdatedAt = cart.CreatedAt
	m.d.carts[cart.CartID] = *cart
	return nil
}

func (m *Memory) reparentCart(cartID uint, userID string) error {
	c, ok := m.d.carts[cartID]
	if !ok {
		return ErrNotFound
	}
	c.UserID = &userID
	c.SessionID = nil
	c.UpdatedAt = time.Now()
	m.d.carts[cartID] = c
	return nil
}

func (m *Memory) deleteCart(cartID uint) error {
	for id, it := range m.d.items {
		if it.CartID == cartID {
			delete(m.d.items, id)
		}
	}
	delete(m.d.carts, cartID)
	return nil
}

func (m *Memory) cartItem(cartID, subproductID uint) (*models.CartItem, error) {
	for _, it := range m.d.items {
		if it.CartID == cartID && it.SubproductID == subproductID {
			item := it
			return &item, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) itemsByCart(cartID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	for _, it := range m.d.items {
		if it.CartID == cartID {
			items = append(items, it)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (m *Memory) createCartItem(item *models.CartItem) error {
	item.ID = m.d.nextItemID
	m.d.nextItemID++
	m.d.items[item.ID] = *item
	return nil
}

func (m *Memory) saveCartItem(item *models.CartItem) error {
	if item.ID == 0 {
		return m.createCartItem(item)
	}
	m.d.items[item.ID] = *item
	return nil
}

func (m *Memory) deleteCartItem(cartID, subproductID uint) error {
	for id, it := range m.d.items {
		if it.CartID == cartID && it.SubproductID == subproductID {
			delete(m.d.items, id)
		}
	}
	return nil
}

func (m *Memory) clearCartItems(cartID uint) error {
	for id, it := range m.d.items {
		if it.CartID == cartID {
			delete(m.d.items, id)
		}
	}
	return nil
}

func (m *Memory) cartLines(cartID uint) ([]models.CartLine, error) {
	items, _ := m.itemsByCart(cartID)
	lines := make([]models.CartLine, 0, len(items))
	for _, it := range items {
		sp, ok := m.d.subproducts[it.SubproductID]
		if !ok {
			continue
		}
		p := m.d.products[sp.ProductID]
		lines = append(lines, models.CartLine{
			SubproductID: sp.ID,
			ProductID:    sp.ProductID,
			ProductName:  p.Name,
			VariantName:  sp.Name,
			Image:        p.Image,
			UnitPrice:    sp.Price,
			Quantity:     it.Quantity,
			LineTotal:    sp.Price * float64(it.Quantity),
			Stock:        sp.Stock,
			Available:    sp.Available,
		})
	}
	return lines, nil
}

func (m *Memory) subproduct(id uint) (*models.Subproduct, error) {
	sp, ok := m.d.subproducts[id]
	if !ok {
		return nil, ErrNotFound
	}
	if p, ok := m.d.products[sp.ProductID]; ok {
		product := p
		sp.Product = &product
	}
	out := sp
	return &out, nil
}

func (m *Memory) saveSubproduct(sp *models.Subproduct) error {
	if m.saveSubproductHook != nil {
		if err := m.saveSubproductHook(sp); err != nil {
			return err
		}
	}
	saved := *sp
	saved.Product = nil
	m.d.subproducts[sp.ID] = saved
	return nil
}

func (m *Memory) activeDeals(now time.Time) ([]models.Deal, error) {
	var deals []models.Deal
	for _, d := range m.d.deals {
		if d.InEffect(now) {
			deals = append(deals, d)
		}
	}
	sort.Slice(deals, func(i, j int) bool { return deals[i].ID < deals[j].ID })
	return deals, nil
}

func (m *Memory) createOrder(order *models.Order) error {
	order.ID = m.d.nextOrderID
	m.d.nextOrderID++
	order.CreatedAt = time.Now()
	for i := range order.Items {
		order.Items[i].ID = uint(i + 1)
		order.Items[i].OrderID = order.ID
	}
	m.d.orders[order.ID] = *order
	return nil
}

func (m *Memory) createGuest(guest *models.Guest) error {
	m.d.guests[guest.ID] = *guest
	return nil
}

func (m *Memory) createAddressInfo(addr *models.AddressInfo) error {
	addr.ID = m.d.nextAddrID
	m.d.nextAddrID++
	m.d.addresses[addr.ID] = *addr
	return nil
}
