package models

// PriceRange is the min/max sale price over a category's current members.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Category is a pure view over the fragrance list. It is recomputed from the
// current list on every refresh and never independently mutated.
type Category struct {
	ID                uint       `json:"id"`
	Name              string     `json:"name"`
	Image             string     `json:"image"`
	Description       string     `json:"description"`
	PriceRange        PriceRange `json:"priceRange"`
	AvailableQuantity int        `json:"availableQuantity"`
}

// BaseCategories is the fixed fragrance-family metadata the storefront ships
// with. Aggregates are layered on top of these entries; families found in the
// catalog but missing here are appended after them.
var BaseCategories = []Category{
	{
		ID:          1,
		Name:        "Amber Floral",
		Image:       "https://images.unsplash.com/photo-1505576399279-565b52d4ac71?auto=format&fit=crop&w=800&q=80",
		Description: "A radiant blend of amber warmth and delicate floral notes for timeless elegance.",
	},
	{
		ID:          2,
		Name:        "Woody Amber",
		Image:       "https://images.unsplash.com/photo-1541644159112-7d1f6c3c34d7?auto=format&fit=crop&w=800&q=80",
		Description: "Earthy woods wrapped in smooth amber undertones, bold, grounded, and luxurious.",
	},
	{
		ID:          3,
		Name:        "Aquatic Citrus",
		Image:       "https://images.unsplash.com/photo-1602333860594-08efb7d208f6?auto=format&fit=crop&w=800&q=80",
		Description: "Fresh oceanic notes infused with zesty citrus for an invigorating modern touch.",
	},
	{
		ID:          4,
		Name:        "Floral Musk",
		Image:       "https://images.unsplash.com/photo-1583394838336-acd977736f90?auto=format&fit=crop&w=800&q=80",
		Description: "Soft blossoms meet sensual musk in this harmonious, versatile fragrance family.",
	},
	{
		ID:          5,
		Name:        "Oriental",
		Image:       "https://images.unsplash.com/photo-1616627984410-6d5b0f2d64e1?auto=format&fit=crop&w=800&q=80",
		Description: "Spicy, exotic notes that transport you through rich and mysterious aromas.",
	},
}
