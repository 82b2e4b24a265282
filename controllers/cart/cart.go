package cartControllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/elvis-ci/Riviera/stores"
)

type CartItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type DiscountInput struct {
	Percent float64 `json:"percent" binding:"min=0,max=100"`
}

// GET /user/cart
func GetCart(cart *stores.CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, cart.Snapshot())
	}
}

// POST /user/cart merges on add: an existing line for the product gets its
// quantity incremented, otherwise a new snapshot line is appended.
func AddCartItem(cart *stores.CartStore, catalog *stores.CatalogStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		f, ok := catalog.ByID(input.ProductID)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Fragrance does not exist"})
			return
		}

		cart.AddToCart(f, input.Quantity)
		c.JSON(http.StatusCreated, cart.Snapshot())
	}
}

// PUT /user/cart sets an absolute quantity, no-op for an absent line.
func UpdateCartItem(cart *stores.CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		cart.UpdateQuantity(input.ProductID, input.Quantity)
		c.JSON(http.StatusOK, cart.Snapshot())
	}
}

// DELETE /user/cart/:product_id
func DeleteCartItem(cart *stores.CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
			return
		}
		cart.RemoveFromCart(uint(id))
		c.JSON(http.StatusOK, cart.Snapshot())
	}
}

// DELETE /user/cart
func ClearCart(cart *stores.CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart.ClearCart()
		c.JSON(http.StatusOK, cart.Snapshot())
	}
}

// POST /user/cart/discount
func ApplyDiscount(cart *stores.CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input DiscountInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		cart.SetGeneralDiscount(input.Percent)
		c.JSON(http.StatusOK, cart.Snapshot())
	}
}

// POST /user/cart/checkout re-validates every line against live catalog
// stock before committing. Cart lines hold add-time snapshots, so this is
// the one place quantities meet current stock again.
func Checkout(cart *stores.CartStore, catalog *stores.CatalogStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := cart.Snapshot()
		if len(snap.Items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
			return
		}

		var rejected []gin.H
		for _, item := range snap.Items {
			f, ok := catalog.ByID(item.ProductID)
			if !ok {
				rejected = append(rejected, gin.H{"product_id": item.ProductID, "reason": "no longer available"})
				continue
			}
			if f.Stock < item.Quantity {
				rejected = append(rejected, gin.H{"product_id": item.ProductID, "reason": "insufficient stock", "available": f.Stock})
			}
		}
		if len(rejected) > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Stock validation failed", "rejected": rejected})
			return
		}

		for _, item := range snap.Items {
			catalog.ReduceStock(item.ProductID, item.Quantity)
		}
		cart.ClearCart()

		c.JSON(http.StatusOK, gin.H{
			"items":    snap.Items,
			"subtotal": snap.Subtotal,
			"total":    snap.Total,
		})
	}
}
