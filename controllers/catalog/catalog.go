package catalogControllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/elvis-ci/Riviera/stores"
)

type RestockInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Amount    int  `json:"amount" binding:"required,min=1"`
}

// GET /products
func GetFragrances(catalog *stores.CatalogStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if category := c.Query("category"); category != "" {
			c.JSON(http.StatusOK, catalog.ByCategory(category))
			return
		}
		c.JSON(http.StatusOK, catalog.List())
	}
}

// GET /products/:slug
func GetFragranceBySlug(catalog *stores.CatalogStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, ok := catalog.BySlug(c.Param("slug"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Fragrance not found"})
			return
		}
		c.JSON(http.StatusOK, f)
	}
}

// GET /categories
func GetCategories(catalog *stores.CatalogStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, catalog.Categories())
	}
}

// GET /featured
func GetFeatured(catalog *stores.CatalogStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, catalog.Featured())
	}
}

// POST /admin/catalog/refresh?force=true
func RefreshCatalog(catalog *stores.CatalogStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))
		catalog.Refresh(c.Request.Context(), force)

		snap := catalog.Snapshot()
		if snap.LastError != "" {
			c.JSON(http.StatusBadGateway, gin.H{"error": snap.LastError})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"count":     len(snap.Fragrances),
			"fetchedAt": snap.FetchedAt,
		})
	}
}

// GET /admin/catalog/low-stock
func GetLowStock(catalog *stores.CatalogStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"lowStock":   catalog.LowStock(),
			"outOfStock": catalog.OutOfStock(),
		})
	}
}

// POST /admin/catalog/restock
func RestockFragrance(catalog *stores.CatalogStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RestockInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if !catalog.Restock(input.ProductID, input.Amount) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Fragrance not found"})
			return
		}
		f, _ := catalog.ByID(input.ProductID)
		c.JSON(http.StatusOK, f)
	}
}
