package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/elvis-ci/Riviera/app"
	sessionControllers "github.com/elvis-ci/Riviera/controllers/session"
)

// SetupAuthRoutes registers all "/auth/*" endpoints. All public.
func SetupAuthRoutes(r *gin.Engine, a *app.App) {
	authGroup := r.Group("/auth")
	{
		authGroup.GET("/state", sessionControllers.GetState(a.Session))
		authGroup.POST("/signin", sessionControllers.SignIn(a.Session))
		authGroup.POST("/signup", sessionControllers.SignUp(a.Session))
		authGroup.GET("/google", sessionControllers.SignInWithGoogle(a.Session))
		authGroup.GET("/callback", sessionControllers.OAuthCallback(a.Auth))
		authGroup.POST("/signout", sessionControllers.SignOut(a.Session))
	}
}
