package sessionControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elvis-ci/Riviera/gateway"
	"github.com/elvis-ci/Riviera/stores"
)

type CredentialsInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type SignUpInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name"`
}

type UpdateProfileInput struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
}

// GET /auth/state
func GetState(session *stores.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, session.Snapshot())
	}
}

// POST /auth/signin
func SignIn(session *stores.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CredentialsInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		session.SignInWithEmail(c.Request.Context(), input.Email, input.Password)

		snap := session.Snapshot()
		if snap.Identity == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": snap.LastError})
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

// POST /auth/signup
func SignUp(session *stores.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input SignUpInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		session.SignUpWithEmail(c.Request.Context(), input.Email, input.Password, input.FullName)

		snap := session.Snapshot()
		if snap.LastError != "" {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": snap.LastError})
			return
		}
		c.JSON(http.StatusCreated, snap)
	}
}

// GET /auth/google redirects the browser to the provider. Completion is
// only ever observed through the auth event stream after the callback.
func SignInWithGoogle(session *stores.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		redirectTo := c.DefaultQuery("redirect_to", "/")
		authorizeURL := session.SignInWithGoogle(redirectTo)
		if authorizeURL == "" {
			c.JSON(http.StatusBadGateway, gin.H{"error": session.Snapshot().LastError})
			return
		}
		c.Redirect(http.StatusFound, authorizeURL)
	}
}

// GET /auth/callback is the OAuth landing: adopts the returned tokens, which
// makes the gateway emit SIGNED_IN and the session store pick it up.
func OAuthCallback(auth *gateway.SupabaseClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken := c.Query("access_token")
		refreshToken := c.Query("refresh_token")
		if accessToken == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing access_token"})
			return
		}
		if _, err := auth.SetSessionFromTokens(c.Request.Context(), accessToken, refreshToken); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "OAuth sign-in failed"})
			return
		}
		c.Redirect(http.StatusFound, "/")
	}
}

// POST /auth/signout
func SignOut(session *stores.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		session.Logout(c.Request.Context())
		c.JSON(http.StatusOK, session.Snapshot())
	}
}

// GET /user
func GetProfile(session *stores.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := session.Snapshot()
		if snap.Profile == nil {
			// Valid transient state right after sign-in.
			c.JSON(http.StatusAccepted, gin.H{"profile": nil, "status": snap.Status})
			return
		}
		c.JSON(http.StatusOK, snap.Profile)
	}
}

// PUT /user
func UpdateProfile(session *stores.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input UpdateProfileInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		partial := map[string]any{}
		if input.FullName != nil {
			partial["full_name"] = *input.FullName
		}
		if input.Phone != nil {
			partial["phone"] = *input.Phone
		}
		if input.Address != nil {
			partial["address"] = *input.Address
		}
		if len(partial) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
			return
		}

		session.UpdateUserProfile(c.Request.Context(), partial)

		snap := session.Snapshot()
		if snap.LastError != "" {
			c.JSON(http.StatusBadGateway, gin.H{"error": snap.LastError})
			return
		}
		c.JSON(http.StatusOK, snap.Profile)
	}
}
