// Package stores holds the client-side state layer: the identity session,
// catalog, and cart stores. Each store owns its cache keys, exposes snapshot
// reads plus a change signal, and funnels remote failures into a single
// last-error message instead of letting them escape to the view layer.
package stores

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/elvis-ci/Riviera/cache"
	"github.com/elvis-ci/Riviera/gateway"
	"github.com/elvis-ci/Riviera/models"
)

// Status is the session state machine position.
type Status int

const (
	StatusUnknown Status = iota
	StatusRestoring
	StatusAuthenticated
	StatusAnonymous
)

func (s Status) String() string {
	switch s {
	case StatusRestoring:
		return "restoring"
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// SessionSnapshot is the view-layer read of the session store. Identity set
// with a nil Profile is a valid transient state while provisioning runs.
type SessionSnapshot struct {
	Status    string           `json:"status"`
	Identity  *models.Identity `json:"identity"`
	Profile   *models.Profile  `json:"profile"`
	Loading   bool             `json:"loading"`
	LastError string           `json:"lastError"`
}

// SessionStore owns the authenticated identity, session restoration, lazy
// profile provisioning, and the auth-event subscription.
//
// Long operations (restore, sign-in/out, event handling) are serialized by
// opMu: a second caller queues behind the first rather than interleaving
// with it. Profile provisioning additionally collapses through singleflight
// keyed by identity id, so the event listener racing an explicit restore can
// never insert two rows for one identity.
type SessionStore struct {
	auth  gateway.Auth
	data  gateway.Data
	store cache.Store

	opMu      sync.Mutex
	provision singleflight.Group
	signal    signal

	mu        sync.Mutex
	status    Status
	identity  *models.Identity
	profile   *models.Profile
	loading   bool
	lastErr   string
	listening bool
}

// NewSessionStore wires the store; no remote calls happen until
// RestoreSession or a sign-in action runs.
func NewSessionStore(auth gateway.Auth, data gateway.Data, store cache.Store) *SessionStore {
	return &SessionStore{auth: auth, data: data, store: store}
}

// Snapshot returns a consistent copy of the current session state.
func (s *SessionStore) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := SessionSnapshot{
		Status:    s.status.String(),
		Loading:   s.loading,
		LastError: s.lastErr,
	}
	if s.identity != nil {
		identity := *s.identity
		snap.Identity = &identity
	}
	if s.profile != nil {
		profile := *s.profile
		snap.Profile = &profile
	}
	return snap
}

// Subscribe returns a change-tick channel and its cancel func.
func (s *SessionStore) Subscribe() (<-chan struct{}, func()) {
	return s.signal.Subscribe()
}

// RestoreSession re-establishes the signed-in user on startup: the cached
// profile is painted immediately for responsiveness, then the backend is
// asked for an active session. Any failure to confirm one falls back to
// anonymous with the cache cleared; a confirmed session loads or creates
// the profile row.
func (s *SessionStore) RestoreSession(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	s.status = StatusRestoring
	s.loading = true
	s.lastErr = ""
	var cached models.Profile
	if ok, err := s.store.Get(cache.KeyProfile, &cached); err == nil && ok {
		s.profile = &cached
	}
	s.mu.Unlock()
	s.signal.notify()
	defer s.stopLoading()

	sess, err := s.auth.GetSession(ctx)
	switch {
	case errors.Is(err, gateway.ErrNoSession), err == nil && sess == nil:
		s.becomeAnonymous("")
	case err != nil:
		s.becomeAnonymous(err.Error())
	default:
		identity := sess.User
		s.adoptIdentity(&identity)
		if err := s.loadOrCreateProfile(ctx, identity); err != nil {
			// A session we cannot attach a profile to is not restorable.
			s.becomeAnonymous(err.Error())
		}
	}
}

// InitAuthListener registers the backend event subscription. Safe to call
// more than once; only the first call starts the listener. The goroutine
// exits when the gateway closes its event stream.
func (s *SessionStore) InitAuthListener() {
	s.mu.Lock()
	if s.listening {
		s.mu.Unlock()
		return
	}
	s.listening = true
	s.mu.Unlock()

	events := s.auth.Events()
	go func() {
		for ev := range events {
			s.handleAuthEvent(ev)
		}
	}()
}

func (s *SessionStore) handleAuthEvent(ev gateway.AuthEvent) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	switch ev.Type {
	case gateway.SignedOut:
		s.becomeAnonymous("")
	case gateway.SignedIn:
		if ev.Session == nil {
			return
		}
		identity := ev.Session.User
		s.adoptIdentity(&identity)
		if err := s.loadOrCreateProfile(context.Background(), identity); err != nil {
			// Identity stays set with a nil profile; the subscription
			// must survive a provisioning failure.
			log.Printf("❌ Profile provisioning after SIGNED_IN failed: %v", err)
		}
	}
}

// SignInWithEmail verifies credentials with the backend. Failures land in
// LastError verbatim; nothing is raised to the caller.
func (s *SessionStore) SignInWithEmail(ctx context.Context, email, password string) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.beginAction()
	defer s.stopLoading()

	sess, err := s.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		s.setError(err.Error())
		return
	}
	identity := sess.User
	s.adoptIdentity(&identity)
	if err := s.loadOrCreateProfile(ctx, identity); err != nil {
		s.setError(err.Error())
	}
}

// SignUpWithEmail registers a new account. When the backend requires email
// confirmation no session comes back and the store stays anonymous; the
// eventual first sign-in provisions the profile.
func (s *SessionStore) SignUpWithEmail(ctx context.Context, email, password, fullName string) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.beginAction()
	defer s.stopLoading()

	metadata := map[string]any{"full_name": fullName}
	sess, err := s.auth.SignUp(ctx, email, password, metadata)
	if err != nil {
		s.setError(err.Error())
		return
	}
	if sess == nil {
		return
	}
	identity := sess.User
	s.adoptIdentity(&identity)
	if err := s.loadOrCreateProfile(ctx, identity); err != nil {
		s.setError(err.Error())
	}
}

// SignInWithGoogle returns the provider authorize URL for the browser to
// follow. There is no synchronous success path; completion is observed via
// the auth event stream once the OAuth callback lands.
func (s *SessionStore) SignInWithGoogle(redirectTo string) string {
	authorizeURL, err := s.auth.SignInWithOAuth("google", redirectTo)
	if err != nil {
		s.opMu.Lock()
		s.setError(err.Error())
		s.opMu.Unlock()
		return ""
	}
	return authorizeURL
}

// Logout requests remote sign-out. Local identity, profile, and cache are
// cleared unconditionally, so a network failure never leaves the client
// believing it is still authenticated.
func (s *SessionStore) Logout(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	defer s.becomeAnonymous("")

	if err := s.auth.SignOut(ctx); err != nil {
		log.Printf("⚠️ Remote sign-out failed, clearing local state anyway: %v", err)
	}
}

// UpdateUserProfile writes a partial update remotely and replaces the
// resident and cached profile with the row the server returned.
func (s *SessionStore) UpdateUserProfile(ctx context.Context, partial map[string]any) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	identity := s.identity
	s.mu.Unlock()
	if identity == nil {
		s.setError("not signed in")
		return
	}

	updated, err := s.data.UpdateProfile(ctx, identity.ID, partial)
	if err != nil {
		s.setError(err.Error())
		return
	}
	s.setProfile(updated)
}

// AwaitProfile blocks until the profile row is resolved for the current
// identity, the session turns anonymous, or ctx expires. Route guards use
// it: the role lives on the profile, not the identity.
func (s *SessionStore) AwaitProfile(ctx context.Context) (*models.Profile, bool) {
	ch, cancel := s.signal.Subscribe()
	defer cancel()
	for {
		snap := s.Snapshot()
		if snap.Identity == nil && snap.Status != StatusRestoring.String() {
			return nil, false
		}
		if snap.Profile != nil {
			return snap.Profile, true
		}
		select {
		case <-ctx.Done():
			return nil, false
		case <-ch:
		}
	}
}

// ---------------------------------------------
// internals
// ---------------------------------------------

// loadOrCreateProfile fetches the profile row, inserting a default one only
// when the lookup failed with the specific "no row" signal. Concurrent calls
// for one identity collapse into a single flight; a duplicate-insert
// rejection from another writer resolves by re-reading the row.
func (s *SessionStore) loadOrCreateProfile(ctx context.Context, identity models.Identity) error {
	v, err, _ := s.provision.Do(identity.ID, func() (any, error) {
		profile, err := s.data.SelectProfile(ctx, identity.ID)
		if err == nil {
			return profile, nil
		}
		if !errors.Is(err, gateway.ErrRowNotFound) {
			return nil, err
		}

		fresh := defaultProfile(identity)
		created, err := s.data.InsertProfile(ctx, &fresh)
		if errors.Is(err, gateway.ErrValidationRejected) {
			// Someone else inserted it first; their row wins.
			return s.data.SelectProfile(ctx, identity.ID)
		}
		return created, err
	})
	if err != nil {
		return err
	}
	s.setProfile(v.(*models.Profile))
	return nil
}

func defaultProfile(identity models.Identity) models.Profile {
	fullName, _ := identity.Metadata["full_name"].(string)
	return models.Profile{
		ID:        identity.ID,
		FullName:  fullName,
		Email:     identity.Email,
		Role:      models.RoleUser,
		CreatedAt: time.Now(),
	}
}

func (s *SessionStore) adoptIdentity(identity *models.Identity) {
	s.mu.Lock()
	s.identity = identity
	s.status = StatusAuthenticated
	s.mu.Unlock()
	s.signal.notify()
}

func (s *SessionStore) setProfile(profile *models.Profile) {
	s.mu.Lock()
	s.profile = profile
	s.mu.Unlock()
	if err := s.store.Set(cache.KeyProfile, profile); err != nil {
		log.Printf("⚠️ Failed to cache profile: %v", err)
	}
	s.signal.notify()
}

func (s *SessionStore) becomeAnonymous(message string) {
	s.mu.Lock()
	s.identity = nil
	s.profile = nil
	s.status = StatusAnonymous
	s.lastErr = message
	s.mu.Unlock()
	if err := s.store.Clear(cache.KeyProfile); err != nil {
		log.Printf("⚠️ Failed to clear cached profile: %v", err)
	}
	if err := s.store.Clear(cache.KeySession); err != nil {
		log.Printf("⚠️ Failed to clear cached session: %v", err)
	}
	s.signal.notify()
}

func (s *SessionStore) beginAction() {
	s.mu.Lock()
	s.loading = true
	s.lastErr = ""
	s.mu.Unlock()
	s.signal.notify()
}

func (s *SessionStore) stopLoading() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
	s.signal.notify()
}

func (s *SessionStore) setError(message string) {
	s.mu.Lock()
	s.lastErr = message
	s.mu.Unlock()
	s.signal.notify()
}
