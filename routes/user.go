package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/elvis-ci/Riviera/app"
	cartControllers "github.com/elvis-ci/Riviera/controllers/cart"
	sessionControllers "github.com/elvis-ci/Riviera/controllers/session"
	"github.com/elvis-ci/Riviera/middleware"
)

// SetupUserRoutes registers all "/user/*" endpoints. Requires a signed-in
// identity; the profile may still be resolving.
func SetupUserRoutes(r *gin.Engine, a *app.App) {
	userGroup := r.Group("/user")
	userGroup.Use(middleware.RequireAuth(a.Session))
	{
		// ──────────────── User Profile ────────────────
		userGroup.GET("/", sessionControllers.GetProfile(a.Session))    // GET /user/
		userGroup.PUT("/", sessionControllers.UpdateProfile(a.Session)) // PUT /user/

		// ──────────────── Shopping Cart ────────────────
		cartGroup := userGroup.Group("/cart")
		{
			cartGroup.GET("/", cartControllers.GetCart(a.Cart))                        // GET /user/cart
			cartGroup.POST("/", cartControllers.AddCartItem(a.Cart, a.Catalog))        // POST /user/cart
			cartGroup.PUT("/", cartControllers.UpdateCartItem(a.Cart))                 // PUT /user/cart
			cartGroup.DELETE("/:product_id", cartControllers.DeleteCartItem(a.Cart))   // DELETE /user/cart/:product_id
			cartGroup.DELETE("/", cartControllers.ClearCart(a.Cart))                   // DELETE /user/cart
			cartGroup.POST("/discount", cartControllers.ApplyDiscount(a.Cart))         // POST /user/cart/discount
			cartGroup.POST("/checkout", cartControllers.Checkout(a.Cart, a.Catalog))   // POST /user/cart/checkout
		}
	}
}
