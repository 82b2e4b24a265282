package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elvis-ci/Riviera/gateway"
	"github.com/elvis-ci/Riviera/models"
	"github.com/elvis-ci/Riviera/stores"
)

type nopStore struct{}

func (nopStore) Get(key string, dest any) (bool, error) { return false, nil }
func (nopStore) Set(key string, value any) error        { return nil }
func (nopStore) Clear(key string) error                 { return nil }
func (nopStore) Close() error                           { return nil }

// stubAuth serves one fixed session; the other auth operations are unused by
// the guards under test.
type stubAuth struct {
	session *gateway.Session
}

func (a *stubAuth) GetSession(ctx context.Context) (*gateway.Session, error) {
	if a.session == nil {
		return nil, gateway.ErrNoSession
	}
	return a.session, nil
}

func (a *stubAuth) GetUser(ctx context.Context) (*models.Identity, error) {
	return nil, gateway.ErrNoSession
}

func (a *stubAuth) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*gateway.Session, error) {
	return nil, gateway.ErrValidationRejected
}

func (a *stubAuth) SignInWithPassword(ctx context.Context, email, password string) (*gateway.Session, error) {
	return nil, gateway.ErrValidationRejected
}

func (a *stubAuth) SignInWithOAuth(provider, redirectTo string) (string, error) {
	return "", gateway.ErrValidationRejected
}

func (a *stubAuth) SignOut(ctx context.Context) error { return nil }

func (a *stubAuth) Events() <-chan gateway.AuthEvent {
	return make(chan gateway.AuthEvent)
}

type stubData struct {
	profile *models.Profile
}

func (d *stubData) SelectProfile(ctx context.Context, id string) (*models.Profile, error) {
	if d.profile == nil {
		return nil, gateway.ErrRowNotFound
	}
	return d.profile, nil
}

func (d *stubData) InsertProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	created := *profile
	return &created, nil
}

func (d *stubData) UpdateProfile(ctx context.Context, id string, partial map[string]any) (*models.Profile, error) {
	return d.profile, nil
}

func restoredSession(t *testing.T, role string) *stores.SessionStore {
	t.Helper()
	auth := &stubAuth{session: &gateway.Session{
		AccessToken:  "token",
		RefreshToken: "refresh",
		User:         models.Identity{ID: "user-1", Email: "mia@example.com"},
	}}
	data := &stubData{profile: &models.Profile{ID: "user-1", Email: "mia@example.com", Role: role}}
	session := stores.NewSessionStore(auth, data, nopStore{})
	session.RestoreSession(context.Background())
	return session
}

func anonymousSession(t *testing.T) *stores.SessionStore {
	t.Helper()
	session := stores.NewSessionStore(&stubAuth{}, &stubData{}, nopStore{})
	session.RestoreSession(context.Background())
	return session
}

func serve(handler gin.HandlerFunc, guard gin.HandlerFunc, headers map[string]string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/guarded", guard, handler)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	rec := serve(okHandler, RequireAuth(anonymousSession(t)), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthPassesIdentity(t *testing.T) {
	rec := serve(okHandler, RequireAuth(restoredSession(t, models.RoleUser)), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "user-1")
}

func TestRequireAdminRejectsNonAdmin(t *testing.T) {
	rec := serve(okHandler, RequireAdmin(restoredSession(t, models.RoleUser), ""), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	rec := serve(okHandler, RequireAdmin(restoredSession(t, models.RoleAdmin), ""), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdminRejectsAnonymous(t *testing.T) {
	rec := serve(okHandler, RequireAdmin(anonymousSession(t), ""), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdminAPIKeyBypass(t *testing.T) {
	guard := RequireAdmin(anonymousSession(t), "ops-key")

	rec := serve(okHandler, guard, map[string]string{"X-API-KEY": "ops-key"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(okHandler, guard, map[string]string{"X-API-KEY": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdminWaitsForAsyncProfile(t *testing.T) {
	auth := &stubAuth{session: &gateway.Session{
		AccessToken: "token",
		User:        models.Identity{ID: "user-1", Email: "mia@example.com"},
	}}
	data := &stubData{}
	session := stores.NewSessionStore(auth, data, nopStore{})

	// Provisioning resolves the profile shortly after the request arrives.
	data.profile = &models.Profile{ID: "user-1", Role: models.RoleAdmin}
	go session.RestoreSession(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for {
		rec := serve(okHandler, RequireAdmin(session, ""), nil)
		if rec.Code == http.StatusOK {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("admin guard never admitted the resolved profile, last status %d", rec.Code)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
