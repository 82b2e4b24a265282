package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/elvis-ci/Riviera/app"
	catalogControllers "github.com/elvis-ci/Riviera/controllers/catalog"
	"github.com/elvis-ci/Riviera/middleware"
)

// SetupAdminRoutes registers all "/admin/*" endpoints, gated by the admin
// role (or the operator API key).
func SetupAdminRoutes(r *gin.Engine, a *app.App) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.RequireAdmin(a.Session, a.Config.AdminAPIKey))
	{
		adminGroup.POST("/catalog/refresh", catalogControllers.RefreshCatalog(a.Catalog))
		adminGroup.GET("/catalog/low-stock", catalogControllers.GetLowStock(a.Catalog))
		adminGroup.POST("/catalog/restock", catalogControllers.RestockFragrance(a.Catalog))
		adminGroup.GET("/catalog/export", catalogControllers.ExportCatalogToExcel(a.Catalog))
	}
}
