package models

import "time"

// CartItem is one cart line. Display fields are a snapshot of the fragrance
// at add-time: a later price change in the catalog does not propagate here.
// At most one line exists per ProductID; re-adding merges quantities.
type CartItem struct {
	ProductID    uint      `json:"product_id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Image        string    `json:"image"`
	Category     string    `json:"category"`
	Price        float64   `json:"price"`
	CurrentPrice float64   `json:"currentPrice"`
	Quantity     int       `json:"quantity"` // always ≥ 1
	AddedAt      time.Time `json:"added_at"`
}

// NewCartItem snapshots a fragrance into a cart line.
func NewCartItem(f Fragrance, quantity int) CartItem {
	return CartItem{
		ProductID:    f.ID,
		Name:         f.Name,
		Slug:         f.Slug,
		Image:        f.Image,
		Category:     f.Category,
		Price:        f.Price,
		CurrentPrice: f.CurrentPrice,
		Quantity:     quantity,
		AddedAt:      time.Now(),
	}
}
