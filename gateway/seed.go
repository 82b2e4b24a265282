package gateway

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/elvis-ci/Riviera/models"
)

var sampleNames = []string{
	"Noir Lumière", "Velvet Oud", "Azure Mist", "Golden Bloom", "Crimson Dawn", "Luna Rosa",
	"Amber Veil", "Sapphire Drift", "Wild Iris", "Midnight Whisper", "Citrus Ember", "Opal Mirage",
	"Silver Fern", "Rose Mirage", "Orchid Haze", "Mystic Dew", "Pure Grace", "Obsidian Sky",
	"Twilight Amber", "Cedar Bloom", "Emerald Soul", "Royal Musk", "Ivory Bloom", "Shadow Petal",
	"Ocean Veil", "Violet Ash", "Amber Frost", "Pearl Essence", "Velour Mist", "Cherry Noir",
	"Floral Veil", "Golden Sand", "Oud Reverie", "Velvet Bloom", "Eclipse Noir", "Lush Horizon",
	"Amber Drift", "Desert Rose", "Silk Ember", "Iris Noir", "Orchid Drift", "Citrus Noir",
	"Honey Veil", "Rosewood Glow", "Velvet Dusk", "Emerald Mist", "Ocean Drift", "Golden Veil",
	"Amber Lace", "Velvet Echo",
}

// SampleCatalog generates n demo fragrances spread over the base categories,
// with prices in the $80–160 band and a $5–30 discount each.
func SampleCatalog(n int) []models.Fragrance {
	out := make([]models.Fragrance, 0, n)
	for i := 1; i <= n; i++ {
		category := models.BaseCategories[i%len(models.BaseCategories)].Name
		name := sampleNames[i%len(sampleNames)]
		slug := strings.ToLower(strings.ReplaceAll(name, " ", "-"))

		price := float64(rand.Intn(80) + 80)
		discount := float64(rand.Intn(30) + 5)

		out = append(out, models.Fragrance{
			ID:              uint(i),
			Name:            name,
			Slug:            slug,
			Image:           fmt.Sprintf("https://source.unsplash.com/600x600/?perfume,bottle,%s", slug),
			Short:           fmt.Sprintf("A captivating fragrance blending modern elegance with timeless notes of %s.", strings.ToLower(category)),
			Category:        category,
			Stock:           rand.Intn(40) + 10,
			Price:           price,
			Discount:        discount,
			DiscountPercent: int((discount/price)*100 + 0.5),
			CurrentPrice:    price - discount,
		})
	}
	return out
}
