package stores

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elvis-ci/Riviera/cache"
	"github.com/elvis-ci/Riviera/models"
)

func velvetOud() models.Fragrance {
	return models.Fragrance{
		ID:           1,
		Slug:         "velvet-oud",
		Name:         "Velvet Oud",
		Category:     "Oriental",
		Price:        100,
		Discount:     10,
		CurrentPrice: 90,
		Stock:        12,
	}
}

func TestAddToCartMergesSameProduct(t *testing.T) {
	s := NewCartStore(newMemStore())

	s.AddToCart(velvetOud(), 1)
	s.AddToCart(velvetOud(), 2)

	items := s.Items()
	require.Len(t, items, 1, "re-adding the same product must merge, not append")
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 3, s.ItemCount())
}

func TestCartLineSnapshotsFragranceFields(t *testing.T) {
	s := NewCartStore(newMemStore())
	s.AddToCart(velvetOud(), 1)

	item := s.Items()[0]
	assert.Equal(t, "Velvet Oud", item.Name)
	assert.Equal(t, "velvet-oud", item.Slug)
	assert.Equal(t, 100.0, item.Price)
	assert.Equal(t, 90.0, item.CurrentPrice)
	assert.False(t, item.AddedAt.IsZero())
}

func TestCartTotals(t *testing.T) {
	s := NewCartStore(newMemStore())
	s.AddToCart(velvetOud(), 2)

	assert.Equal(t, 180.0, s.Subtotal())
	assert.Equal(t, 180.0, s.Total())

	s.SetGeneralDiscount(10)
	assert.Equal(t, 180.0, s.Subtotal(), "general discount leaves subtotal alone")
	assert.InDelta(t, 162.0, s.Total(), 1e-9)

	snap := s.Snapshot()
	assert.Equal(t, 2, snap.ItemCount)
	assert.Equal(t, 10.0, snap.GeneralDiscount)
	assert.InDelta(t, 162.0, snap.Total, 1e-9)
}

func TestSetGeneralDiscountClamps(t *testing.T) {
	s := NewCartStore(newMemStore())
	s.AddToCart(velvetOud(), 1)

	s.SetGeneralDiscount(150)
	assert.Equal(t, 0.0, s.Total())

	s.SetGeneralDiscount(-20)
	assert.Equal(t, 90.0, s.Total())
}

func TestUpdateQuantityIsAbsolute(t *testing.T) {
	s := NewCartStore(newMemStore())
	s.AddToCart(velvetOud(), 5)

	s.UpdateQuantity(1, 2)
	assert.Equal(t, 2, s.Items()[0].Quantity)

	s.UpdateQuantity(1, 0)
	assert.Equal(t, 2, s.Items()[0].Quantity, "quantity below one is refused")

	s.UpdateQuantity(42, 3)
	require.Len(t, s.Items(), 1, "unknown product id must not create a line")
}

func TestRemoveFromCart(t *testing.T) {
	s := NewCartStore(newMemStore())
	s.AddToCart(velvetOud(), 1)
	s.AddToCart(models.Fragrance{ID: 2, Name: "Azure Mist", Price: 40, CurrentPrice: 40}, 1)

	s.RemoveFromCart(1)
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, uint(2), items[0].ProductID)
}

func TestCartPersistsAcrossInstances(t *testing.T) {
	store := newMemStore()
	first := NewCartStore(store)
	first.AddToCart(velvetOud(), 2)

	second := NewCartStore(store)
	items := second.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 180.0, second.Subtotal())
}

func TestClearCartRemovesCachedEntry(t *testing.T) {
	store := newMemStore()
	s := NewCartStore(store)
	s.AddToCart(velvetOud(), 1)
	require.True(t, store.has(cache.KeyCart))

	s.ClearCart()
	assert.Empty(t, s.Items())
	assert.False(t, store.has(cache.KeyCart), "an empty cart leaves no cache entry behind")
	assert.Equal(t, 0.0, s.Subtotal())
}

func TestRemovingLastLineClearsCachedEntry(t *testing.T) {
	store := newMemStore()
	s := NewCartStore(store)
	s.AddToCart(velvetOud(), 1)
	s.RemoveFromCart(1)

	assert.False(t, store.has(cache.KeyCart))
}
