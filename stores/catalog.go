package stores

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/elvis-ci/Riviera/cache"
	"github.com/elvis-ci/Riviera/gateway"
	"github.com/elvis-ci/Riviera/models"
)

const (
	// catalogTTL is how long a fetched list (and its category aggregates)
	// stays fresh before the next Refresh goes back to the source.
	catalogTTL = 24 * time.Hour

	// featuredSize is how many fragrances the weekly rotation samples.
	featuredSize = 3

	// lowStockThreshold: 0 < stock <= threshold counts as low stock.
	lowStockThreshold = 5

	// Uncategorized is the sentinel family for records missing a category.
	Uncategorized = "Uncategorized"
)

// featuredSelection is the cached featured sample together with the rotation
// window it was computed for, so a later read can detect staleness without
// re-sampling.
type featuredSelection struct {
	Week  string             `json:"week"`
	Items []models.Fragrance `json:"items"`
}

// CatalogSnapshot is the view-layer read of the catalog store.
type CatalogSnapshot struct {
	Fragrances []models.Fragrance `json:"fragrances"`
	Categories []models.Category  `json:"categories"`
	Featured   []models.Fragrance `json:"featured"`
	FetchedAt  time.Time          `json:"fetchedAt"`
	Loading    bool               `json:"loading"`
	LastError  string             `json:"lastError"`
}

// CatalogStore owns the fragrance list, its TTL-based refresh policy, the
// derived category aggregates, and the weekly featured rotation. Two
// staleness clocks run independently: the list clock is a 24h TTL from the
// last successful fetch, the featured clock is the rotation-window key (ISO
// week) the cached sample was rolled for. Refreshes are serialized by opMu;
// a second concurrent Refresh waits for the first.
type CatalogStore struct {
	source gateway.FragranceSource
	store  cache.Store

	opMu   sync.Mutex
	signal signal

	// now and rng are swappable for tests.
	now func() time.Time
	rng *rand.Rand

	mu           sync.Mutex
	items        []models.Fragrance
	categories   []models.Category
	featured     []models.Fragrance
	fetchedAt    time.Time
	featuredWeek string
	loading      bool
	lastErr      string
}

// NewCatalogStore builds the store and hydrates it from the cache. Malformed
// or missing cache entries simply leave the corresponding state empty.
func NewCatalogStore(source gateway.FragranceSource, store cache.Store) *CatalogStore {
	s := &CatalogStore{
		source: source,
		store:  store,
		now:    time.Now,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	s.hydrate()
	return s
}

func (s *CatalogStore) hydrate() {
	var items []models.Fragrance
	if ok, err := s.store.Get(cache.KeyFragrances, &items); err == nil && ok {
		s.items = items
	}
	var categories []models.Category
	if ok, err := s.store.Get(cache.KeyCategories, &categories); err == nil && ok {
		s.categories = categories
	}
	var featured featuredSelection
	if ok, err := s.store.Get(cache.KeyFeatured, &featured); err == nil && ok {
		s.featured = featured.Items
		s.featuredWeek = featured.Week
	}
	var fetchedAt time.Time
	if ok, err := s.store.Get(cache.KeyFetchedAt, &fetchedAt); err == nil && ok {
		s.fetchedAt = fetchedAt
	}
}

// Refresh is the TTL-gated fetch. With force unset, a fresh non-empty list
// and a current featured window make this a pure no-op with no network
// access. Otherwise the full list is refetched, every record normalized, the
// category aggregates recomputed, and the featured sample re-rolled only
// when its window went stale or force is set. All derived values are
// computed before any resident state or cache write commits, so a failure
// partway cannot leave categories referencing a rolled-back list.
//
// A fetch failure clears the resident list and records the error; cached
// categories and featured stay visible, stale, until a future success.
func (s *CatalogStore) Refresh(ctx context.Context, force bool) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	now := s.now()
	week := weekKey(now)

	s.mu.Lock()
	listFresh := len(s.items) > 0 && now.Sub(s.fetchedAt) < catalogTTL
	featuredFresh := s.featuredWeek == week && len(s.featured) > 0
	if !force && listFresh && featuredFresh {
		s.mu.Unlock()
		return
	}
	s.loading = true
	s.mu.Unlock()
	s.signal.notify()
	defer s.stopLoading()

	rows, err := s.source.GetFragrances(ctx)
	if err != nil {
		s.mu.Lock()
		s.items = nil
		s.lastErr = err.Error()
		s.mu.Unlock()
		s.signal.notify()
		return
	}

	items := make([]models.Fragrance, len(rows))
	for i, row := range rows {
		items[i] = Normalize(row)
	}
	categories := DeriveCategories(items)

	s.mu.Lock()
	rollFeatured := force || s.featuredWeek != week || len(s.featured) == 0
	featured := s.featured
	s.mu.Unlock()
	if rollFeatured {
		featured = s.sample(items, featuredSize)
	}

	s.mu.Lock()
	s.items = items
	s.categories = categories
	s.featured = featured
	s.fetchedAt = now
	s.featuredWeek = week
	s.lastErr = ""
	s.mu.Unlock()

	s.persist(cache.KeyFragrances, items)
	s.persist(cache.KeyCategories, categories)
	s.persist(cache.KeyFeatured, featuredSelection{Week: week, Items: featured})
	s.persist(cache.KeyFetchedAt, now)
	s.signal.notify()
}

// ---------------------------------------------
// Derived read accessors (pure projections)
// ---------------------------------------------

// List returns a copy of the resident fragrance list.
func (s *CatalogStore) List() []models.Fragrance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Fragrance(nil), s.items...)
}

// BySlug finds a fragrance by its URL slug.
func (s *CatalogStore) BySlug(slug string) (models.Fragrance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.items {
		if f.Slug == slug {
			return f, true
		}
	}
	return models.Fragrance{}, false
}

// ByID finds a fragrance by id.
func (s *CatalogStore) ByID(id uint) (models.Fragrance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.items {
		if f.ID == id {
			return f, true
		}
	}
	return models.Fragrance{}, false
}

// ByCategory returns the fragrances in the named family.
func (s *CatalogStore) ByCategory(name string) []models.Fragrance {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Fragrance
	for _, f := range s.items {
		if f.Category == name {
			out = append(out, f)
		}
	}
	return out
}

// Categories returns the derived category aggregates.
func (s *CatalogStore) Categories() []models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Category(nil), s.categories...)
}

// Featured returns the current rotation-window sample.
func (s *CatalogStore) Featured() []models.Fragrance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Fragrance(nil), s.featured...)
}

// OutOfStock returns fragrances with zero stock.
func (s *CatalogStore) OutOfStock() []models.Fragrance {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Fragrance
	for _, f := range s.items {
		if f.Stock == 0 {
			out = append(out, f)
		}
	}
	return out
}

// LowStock returns fragrances with 0 < stock <= the low-stock threshold.
func (s *CatalogStore) LowStock() []models.Fragrance {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Fragrance
	for _, f := range s.items {
		if f.Stock > 0 && f.Stock <= lowStockThreshold {
			out = append(out, f)
		}
	}
	return out
}

// Snapshot returns the full view-layer read.
func (s *CatalogStore) Snapshot() CatalogSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CatalogSnapshot{
		Fragrances: append([]models.Fragrance(nil), s.items...),
		Categories: append([]models.Category(nil), s.categories...),
		Featured:   append([]models.Fragrance(nil), s.featured...),
		FetchedAt:  s.fetchedAt,
		Loading:    s.loading,
		LastError:  s.lastErr,
	}
}

// Subscribe returns a change-tick channel and its cancel func.
func (s *CatalogStore) Subscribe() (<-chan struct{}, func()) {
	return s.signal.Subscribe()
}

// ---------------------------------------------
// Stock mutation (local, optimistic)
// ---------------------------------------------

// ReduceStock decrements a fragrance's stock. The decrement is guarded: a
// quantity exceeding current stock leaves it unchanged and returns false.
func (s *CatalogStore) ReduceStock(id uint, quantity int) bool {
	if quantity < 1 {
		return false
	}
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			if s.items[i].Stock < quantity {
				s.mu.Unlock()
				return false
			}
			s.items[i].Stock -= quantity
			items := append([]models.Fragrance(nil), s.items...)
			s.mu.Unlock()
			s.persist(cache.KeyFragrances, items)
			s.signal.notify()
			return true
		}
	}
	s.mu.Unlock()
	return false
}

// Restock increments a fragrance's stock.
func (s *CatalogStore) Restock(id uint, amount int) bool {
	if amount < 1 {
		return false
	}
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Stock += amount
			items := append([]models.Fragrance(nil), s.items...)
			s.mu.Unlock()
			s.persist(cache.KeyFragrances, items)
			s.signal.notify()
			return true
		}
	}
	s.mu.Unlock()
	return false
}

// ---------------------------------------------
// internals
// ---------------------------------------------

// Normalize coerces one remote record into catalog invariants: non-negative
// price and stock, discount within [0, price], recomputed current price and
// discount percent, a slug derived from the name when missing, and the
// sentinel family for a missing category.
func Normalize(f models.Fragrance) models.Fragrance {
	f.Name = strings.TrimSpace(f.Name)
	if f.Price < 0 {
		f.Price = 0
	}
	if f.Discount < 0 {
		f.Discount = 0
	}
	if f.Discount > f.Price {
		f.Discount = f.Price
	}
	f.CurrentPrice = f.Price - f.Discount
	if f.Price > 0 {
		f.DiscountPercent = int(math.Round(f.Discount / f.Price * 100))
	} else {
		f.DiscountPercent = 0
	}
	if f.Stock < 0 {
		f.Stock = 0
	}
	if f.Slug == "" {
		f.Slug = Slugify(f.Name)
	}
	if strings.TrimSpace(f.Category) == "" {
		f.Category = Uncategorized
	}
	return f
}

// Slugify lowercases a name and turns every run of non-alphanumerics into a
// single hyphen.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// DeriveCategories recomputes the category aggregates from a fragrance list:
// the base families in their fixed order, then any extra families found in
// the list in name order. A family with no members gets a {0,0} price range.
func DeriveCategories(items []models.Fragrance) []models.Category {
	groups := make(map[string][]models.Fragrance)
	for _, f := range items {
		groups[f.Category] = append(groups[f.Category], f)
	}

	known := make(map[string]bool, len(models.BaseCategories))
	out := make([]models.Category, 0, len(models.BaseCategories))
	for _, base := range models.BaseCategories {
		known[base.Name] = true
		out = append(out, aggregate(base, groups[base.Name]))
	}

	var extras []string
	for name := range groups {
		if !known[name] {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	for i, name := range extras {
		out = append(out, aggregate(models.Category{
			ID:   uint(len(models.BaseCategories) + i + 1),
			Name: name,
		}, groups[name]))
	}
	return out
}

func aggregate(base models.Category, members []models.Fragrance) models.Category {
	if len(members) == 0 {
		base.PriceRange = models.PriceRange{}
		base.AvailableQuantity = 0
		return base
	}
	pr := models.PriceRange{Min: members[0].Price, Max: members[0].Price}
	total := 0
	for _, f := range members {
		pr.Min = math.Min(pr.Min, f.Price)
		pr.Max = math.Max(pr.Max, f.Price)
		total += f.Stock
	}
	base.PriceRange = pr
	base.AvailableQuantity = total
	return base
}

// weekKey is the featured rotation window id, e.g. "2026-W36".
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// sample picks k distinct fragrances uniformly at random.
func (s *CatalogStore) sample(items []models.Fragrance, k int) []models.Fragrance {
	if k > len(items) {
		k = len(items)
	}
	out := make([]models.Fragrance, 0, k)
	for _, i := range s.rng.Perm(len(items))[:k] {
		out = append(out, items[i])
	}
	return out
}

func (s *CatalogStore) persist(key string, value any) {
	if err := s.store.Set(key, value); err != nil {
		log.Printf("⚠️ Failed to persist %s: %v", key, err)
	}
}

func (s *CatalogStore) stopLoading() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
	s.signal.notify()
}
