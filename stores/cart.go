package stores

import (
	"log"
	"math"
	"sync"

	"github.com/elvis-ci/Riviera/cache"
	"github.com/elvis-ci/Riviera/models"
)

// CartSnapshot is the view-layer read of the cart store.
type CartSnapshot struct {
	Items           []models.CartItem `json:"items"`
	Subtotal        float64           `json:"subtotal"`
	Total           float64           `json:"total"`
	ItemCount       int               `json:"itemCount"`
	GeneralDiscount float64           `json:"generalDiscount"`
}

// CartStore is a purely local reducer over cart lines: no remote dependency,
// at most one line per product id, every mutation persisted synchronously
// before the action returns.
type CartStore struct {
	store  cache.Store
	signal signal

	mu              sync.Mutex
	items           []models.CartItem
	generalDiscount float64 // percent, 0 disables
}

// NewCartStore builds the store and hydrates any cached lines.
func NewCartStore(store cache.Store) *CartStore {
	s := &CartStore{store: store}
	var items []models.CartItem
	if ok, err := store.Get(cache.KeyCart, &items); err == nil && ok {
		s.items = items
	}
	return s
}

// AddToCart merges quantity into an existing line for the same fragrance, or
// appends a new line snapshotting the fragrance's display fields at add-time.
func (s *CartStore) AddToCart(f models.Fragrance, quantity int) {
	if quantity < 1 {
		return
	}
	s.mu.Lock()
	merged := false
	for i := range s.items {
		if s.items[i].ProductID == f.ID {
			s.items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, models.NewCartItem(f, quantity))
	}
	s.persistLocked()
	s.mu.Unlock()
	s.signal.notify()
}

// RemoveFromCart drops the line for the given product id.
func (s *CartStore) RemoveFromCart(productID uint) {
	s.mu.Lock()
	kept := s.items[:0]
	for _, item := range s.items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	s.items = kept
	s.persistLocked()
	s.mu.Unlock()
	s.signal.notify()
}

// UpdateQuantity sets a line's quantity absolutely. A missing id or a
// quantity below one is a no-op.
func (s *CartStore) UpdateQuantity(productID uint, quantity int) {
	if quantity < 1 {
		return
	}
	s.mu.Lock()
	changed := false
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity = quantity
			changed = true
			break
		}
	}
	if changed {
		s.persistLocked()
	}
	s.mu.Unlock()
	if changed {
		s.signal.notify()
	}
}

// ClearCart empties the cart and removes its cache entry.
func (s *CartStore) ClearCart() {
	s.mu.Lock()
	s.items = nil
	if err := s.store.Clear(cache.KeyCart); err != nil {
		log.Printf("⚠️ Failed to clear cached cart: %v", err)
	}
	s.mu.Unlock()
	s.signal.notify()
}

// SetGeneralDiscount applies a storewide percent discount (promo code),
// clamped to [0, 100].
func (s *CartStore) SetGeneralDiscount(percent float64) {
	s.mu.Lock()
	s.generalDiscount = math.Min(math.Max(percent, 0), 100)
	s.mu.Unlock()
	s.signal.notify()
}

// Items returns a copy of the current lines.
func (s *CartStore) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CartItem(nil), s.items...)
}

// Subtotal is Σ currentPrice × quantity over all lines.
func (s *CartStore) Subtotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subtotalLocked()
}

// Total is the subtotal with the general discount applied, when active.
func (s *CartStore) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	subtotal := s.subtotalLocked()
	if s.generalDiscount > 0 {
		return subtotal * (1 - s.generalDiscount/100)
	}
	return subtotal
}

// ItemCount is Σ quantity over all lines.
func (s *CartStore) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// Snapshot returns the full view-layer read.
func (s *CartStore) Snapshot() CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	subtotal := s.subtotalLocked()
	total := subtotal
	if s.generalDiscount > 0 {
		total = subtotal * (1 - s.generalDiscount/100)
	}
	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return CartSnapshot{
		Items:           append([]models.CartItem(nil), s.items...),
		Subtotal:        subtotal,
		Total:           total,
		ItemCount:       count,
		GeneralDiscount: s.generalDiscount,
	}
}

// Subscribe returns a change-tick channel and its cancel func.
func (s *CartStore) Subscribe() (<-chan struct{}, func()) {
	return s.signal.Subscribe()
}

func (s *CartStore) subtotalLocked() float64 {
	sum := 0.0
	for _, item := range s.items {
		sum += item.CurrentPrice * float64(item.Quantity)
	}
	return sum
}

// persistLocked writes the full line list; callers hold s.mu.
func (s *CartStore) persistLocked() {
	if len(s.items) == 0 {
		if err := s.store.Clear(cache.KeyCart); err != nil {
			log.Printf("⚠️ Failed to clear cached cart: %v", err)
		}
		return
	}
	if err := s.store.Set(cache.KeyCart, s.items); err != nil {
		log.Printf("⚠️ Failed to persist cart: %v", err)
	}
}
