package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/elvis-ci/Riviera/app"
	catalogControllers "github.com/elvis-ci/Riviera/controllers/catalog"
	stateControllers "github.com/elvis-ci/Riviera/controllers/state"
)

// SetupRoutes is the single entry-point that wires up the public catalog,
// auth, user, and admin route groups plus the state stream.
func SetupRoutes(r *gin.Engine, a *app.App) {
	// 1️⃣ Public catalog reads (no middleware)
	r.GET("/products", catalogControllers.GetFragrances(a.Catalog))
	r.GET("/products/:slug", catalogControllers.GetFragranceBySlug(a.Catalog))
	r.GET("/categories", catalogControllers.GetCategories(a.Catalog))
	r.GET("/featured", catalogControllers.GetFeatured(a.Catalog))

	// 2️⃣ Auth routes (public)
	SetupAuthRoutes(r, a)

	// 3️⃣ User routes (identity-protected)
	SetupUserRoutes(r, a)

	// 4️⃣ Admin routes (role- or API-key-protected)
	SetupAdminRoutes(r, a)

	// 5️⃣ Reactive state stream for the view layer
	r.GET("/ws/state", stateControllers.StreamState(a.Session, a.Catalog, a.Cart))
}
