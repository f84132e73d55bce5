package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DanielAlexandrow/next-ecommerce-sub000/models"
	"github.com/DanielAlexandrow/next-ecommerce-sub000/store"
)

func seededStore() *store.Memory {
	mem := store.NewMemory()
	mem.SeedProduct(models.Product{ID: 1, Name: "Hoodie", Image: "hoodie.png"})
	mem.SeedSubproduct(models.Subproduct{ID: 10, ProductID: 1, Name: "M / black", Price: 40, Stock: 5, Available: true})
	mem.SeedSubproduct(models.Subproduct{ID: 11, ProductID: 1, Name: "L / black", Price: 40, Stock: 1, Available: true})
	mem.SeedSubproduct(models.Subproduct{ID: 12, ProductID: 1, Name: "XL / black", Price: 40, Stock: 5, Available: false})
	return mem
}

func TestAddOrIncrement_InsertsThenIncrements(t *testing.T) {
	svc := NewService(seededStore())
	ctx := context.Background()
	id := GuestIdentity("sess-1")

	lines, err := svc.AddOrIncrement(ctx, id, 10, 2)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, 80.0, lines[0].LineTotal)
	assert.Equal(t, "Hoodie", lines[0].ProductName)
	assert.Equal(t, "M / black", lines[0].VariantName)

	// Same SKU again updates the row instead of inserting a duplicate.
	lines, err = svc.AddOrIncrement(ctx, id, 10, 1)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestAddOrIncrement_RejectsNonPositiveQuantity(t *testing.T) {
	svc := NewService(seededStore())

	_, err := svc.AddOrIncrement(context.Background(), GuestIdentity("sess-1"), 10, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.AddOrIncrement(context.Background(), GuestIdentity("sess-1"), 10, -3)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestAddOrIncrement_OutOfStockOnSecondAdd(t *testing.T) {
	svc := NewService(seededStore())
	ctx := context.Background()
	id := GuestIdentity("sess-1")

	// stock=1: first add succeeds, second must fail against existing+requested.
	_, err := svc.AddOrIncrement(ctx, id, 11, 1)
	require.NoError(t, err)

	_, err = svc.AddOrIncrement(ctx, id, 11, 1)
	assert.ErrorIs(t, err, ErrOutOfStock)
}

func TestAddOrIncrement_UnavailableSKU(t *testing.T) {
	svc := NewService(seededStore())

	_, err := svc.AddOrIncrement(context.Background(), GuestIdentity("sess-1"), 12, 1)
	assert.ErrorIs(t, err, ErrOutOfStock)
}

func TestAddOrIncrement_UnknownSKU(t *testing.T) {
	svc := NewService(seededStore())

	_, err := svc.AddOrIncrement(context.Background(), GuestIdentity("sess-1"), 999, 1)
	assert.ErrorIs(t, err, ErrSubproductGone)
}

func TestDecrementOrRemove_FloorBehavior(t *testing.T) {
	svc := NewService(seededStore())
	ctx := context.Background()
	id := GuestIdentity("sess-1")

	_, err := svc.AddOrIncrement(ctx, id, 10, 2)
	require.NoError(t, err)

	lines, err := svc.DecrementOrRemove(ctx, id, 10)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)

	// quantity 1 -> the row goes away
	lines, err = svc.DecrementOrRemove(ctx, id, 10)
	require.NoError(t, err)
	assert.Empty(t, lines)

	// decrementing an absent line is a no-op, repeatedly
	lines, err = svc.DecrementOrRemove(ctx, id, 10)
	require.NoError(t, err)
	assert.Empty(t, lines)

	lines, err = svc.DecrementOrRemove(ctx, id, 10)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestAddOrIncrement_NoLostUpdates(t *testing.T) {
	mem := store.NewMemory()
	mem.SeedProduct(models.Product{ID: 1, Name: "Hoodie"})
	mem.SeedSubproduct(models.Subproduct{ID: 10, ProductID: 1, Name: "M", Price: 40, Stock: 1000, Available: true})
	svc := NewService(mem)
	id := GuestIdentity("sess-1")

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.AddOrIncrement(context.Background(), id, 10, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	lines, err := svc.Snapshot(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, n, lines[0].Quantity, "every concurrent increment must land")
}

func TestSnapshot_EmptyForUnknownIdentity(t *testing.T) {
	svc := NewService(seededStore())

	lines, err := svc.Snapshot(context.Background(), GuestIdentity("never-seen"))
	require.NoError(t, err)
	assert.NotNil(t, lines)
	assert.Empty(t, lines)
}
