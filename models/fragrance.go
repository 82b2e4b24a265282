package models

// Fragrance is a catalog product. The list is replaced wholesale on each
// successful remote refresh; stock is the only field mutated locally.
type Fragrance struct {
	ID              uint    `json:"id" gorm:"primaryKey"`
	Slug            string  `json:"slug" gorm:"uniqueIndex;not null"` // URL-safe, derived from Name
	Name            string  `json:"name" gorm:"not null"`
	Category        string  `json:"category"`
	Price           float64 `json:"price" gorm:"not null"`
	Discount        float64 `json:"discount"`
	DiscountPercent int     `json:"discountPercent"`
	CurrentPrice    float64 `json:"currentPrice"` // Price - Discount, never above Price
	Stock           int     `json:"stock"`        // never negative
	Image           string  `json:"image"`
	Short           string  `json:"short"` // one-line marketing blurb
}

// InStock reports whether at least one unit is available.
func (f Fragrance) InStock() bool {
	return f.Stock > 0
}
