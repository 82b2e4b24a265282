// Package gateway abstracts the managed backend: authentication, profile
// rows, and the fragrance catalog. Stores depend only on the interfaces here;
// concrete backends are the hosted REST API and a direct-Postgres variant.
package gateway

import (
	"context"

	"github.com/elvis-ci/Riviera/models"
)

// AuthEventType is the auth-stream event kind.
type AuthEventType string

const (
	SignedIn  AuthEventType = "SIGNED_IN"
	SignedOut AuthEventType = "SIGNED_OUT"
)

// AuthEvent is delivered on the out-of-band auth stream. Session is set for
// SIGNED_IN and nil for SIGNED_OUT.
type AuthEvent struct {
	Type    AuthEventType
	Session *Session
}

// Session is the backend's session object: tokens plus the raw identity.
type Session struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	User         models.Identity `json:"user"`
}

// Auth is the authentication surface of the backend.
type Auth interface {
	// GetSession returns the active session, refreshing it if the stored
	// access token is stale. ErrNoSession means nobody is signed in.
	GetSession(ctx context.Context) (*Session, error)
	GetUser(ctx context.Context) (*models.Identity, error)
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	// SignInWithOAuth returns the provider authorize URL to redirect the
	// browser to. There is no synchronous success path; completion arrives
	// on the event stream after the callback.
	SignInWithOAuth(provider, redirectTo string) (string, error)
	SignOut(ctx context.Context) error
	// Events returns a new subscription to the auth event stream. The
	// channel is closed when the gateway shuts down.
	Events() <-chan AuthEvent
}

// Data is the row-level profile surface. Lookup misses are reported as
// ErrRowNotFound, distinguishable from every other failure.
type Data interface {
	SelectProfile(ctx context.Context, id string) (*models.Profile, error)
	InsertProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	// UpdateProfile applies a partial column update and returns the row as
	// the server now holds it; the server is authoritative post-write.
	UpdateProfile(ctx context.Context, id string, partial map[string]any) (*models.Profile, error)
}

// FragranceSource serves the full catalog.
type FragranceSource interface {
	GetFragrances(ctx context.Context) ([]models.Fragrance, error)
}
