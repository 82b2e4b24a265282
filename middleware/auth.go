package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/elvis-ci/Riviera/stores"
)

// profileWait bounds how long an admin check waits for profile resolution
// before giving up on an identity whose role is still unknown.
const profileWait = 3 * time.Second

// RequireAuth gates a route on a present identity. Profile may still be nil
// at this point; handlers that need it read the session snapshot themselves.
func RequireAuth(session *stores.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := session.Snapshot()
		if snap.Identity == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not signed in"})
			c.Abort()
			return
		}
		c.Set("user_id", snap.Identity.ID)
		c.Next()
	}
}

// RequireAdmin gates a route on the admin role. The role lives on the
// profile, not the identity, so this waits for profile resolution instead of
// judging a half-restored session. An operator API key passes regardless.
func RequireAdmin(session *stores.SessionStore, apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey != "" && c.GetHeader("X-API-KEY") == apiKey {
			c.Next()
			return
		}

		snap := session.Snapshot()
		if snap.Identity == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not signed in"})
			c.Abort()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), profileWait)
		defer cancel()
		profile, ok := session.AwaitProfile(ctx)
		if !ok || profile == nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Profile not resolved"})
			c.Abort()
			return
		}
		if !profile.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Set("user_id", snap.Identity.ID)
		c.Next()
	}
}
