package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/elvis-ci/Riviera/cache"
	"github.com/elvis-ci/Riviera/models"
)

// pgrstNoRows is the PostgREST code for "zero rows with a single-object
// Accept header". It is the only lookup failure treated as RowNotFound.
const pgrstNoRows = "PGRST116"

// tokenSlack is how close to expiry an access token may be before
// GetSession refreshes it instead of trusting it.
const tokenSlack = 30 * time.Second

// SupabaseClient talks to a hosted Supabase project: GoTrue for auth,
// PostgREST for rows. It persists the session blob in the cache so a
// restart can restore the signed-in user, and it emits SIGNED_IN /
// SIGNED_OUT on its event stream the way the browser SDK does.
type SupabaseClient struct {
	baseURL string
	anonKey string
	http    *http.Client
	store   cache.Store
	broker  *eventBroker

	mu      sync.Mutex
	session *Session
}

// NewSupabaseClient builds a client and hydrates any cached session.
func NewSupabaseClient(baseURL, anonKey string, store cache.Store) *SupabaseClient {
	c := &SupabaseClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		http:    &http.Client{Timeout: 15 * time.Second},
		store:   store,
		broker:  newEventBroker(),
	}
	var cached Session
	if ok, err := store.Get(cache.KeySession, &cached); err == nil && ok {
		c.session = &cached
	}
	return c
}

// Events returns a new subscription to the auth event stream.
func (c *SupabaseClient) Events() <-chan AuthEvent {
	return c.broker.subscribe()
}

// Close shuts the event stream down; subscriber channels are closed.
func (c *SupabaseClient) Close() {
	c.broker.close()
}

// ---------------------------------------------
// AUTH
// ---------------------------------------------

func (c *SupabaseClient) GetSession(ctx context.Context) (*Session, error) {
	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()

	if sess == nil {
		return nil, ErrNoSession
	}
	if tokenFresh(sess.AccessToken, time.Now()) {
		copied := *sess
		return &copied, nil
	}

	refreshed, err := c.refreshSession(ctx, sess.RefreshToken)
	if err != nil {
		if isValidationErr(err) {
			// Refresh token revoked or expired: the session is gone.
			c.dropSession()
			return nil, ErrNoSession
		}
		return nil, err
	}
	return refreshed, nil
}

func (c *SupabaseClient) GetUser(ctx context.Context) (*models.Identity, error) {
	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()
	if sess == nil {
		return nil, ErrNoSession
	}

	var identity models.Identity
	if err := c.authCall(ctx, http.MethodGet, "/auth/v1/user", "", nil, sess.AccessToken, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

func (c *SupabaseClient) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*Session, error) {
	body := map[string]any{"email": email, "password": password}
	if len(metadata) > 0 {
		body["data"] = metadata
	}

	var sess Session
	if err := c.authCall(ctx, http.MethodPost, "/auth/v1/signup", "", body, "", &sess); err != nil {
		return nil, err
	}
	if sess.AccessToken == "" {
		// Email confirmation pending: signed up but not signed in.
		return nil, nil
	}
	c.adoptSession(&sess)
	return &sess, nil
}

func (c *SupabaseClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]any{"email": email, "password": password}

	var sess Session
	if err := c.authCall(ctx, http.MethodPost, "/auth/v1/token", "grant_type=password", body, "", &sess); err != nil {
		return nil, err
	}
	c.adoptSession(&sess)
	return &sess, nil
}

func (c *SupabaseClient) SignInWithOAuth(provider, redirectTo string) (string, error) {
	if provider == "" {
		return "", fmt.Errorf("%w: missing oauth provider", ErrValidationRejected)
	}
	q := url.Values{"provider": {provider}}
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	return c.baseURL + "/auth/v1/authorize?" + q.Encode(), nil
}

// SetSessionFromTokens completes an OAuth redirect: the browser lands on the
// callback with tokens in hand, and this verifies them against the backend
// and adopts the session. Emits SIGNED_IN on success.
func (c *SupabaseClient) SetSessionFromTokens(ctx context.Context, accessToken, refreshToken string) (*Session, error) {
	var identity models.Identity
	if err := c.authCall(ctx, http.MethodGet, "/auth/v1/user", "", nil, accessToken, &identity); err != nil {
		return nil, err
	}
	sess := &Session{AccessToken: accessToken, RefreshToken: refreshToken, User: identity}
	c.adoptSession(sess)
	return sess, nil
}

// SignOut revokes the session remotely. The local session is dropped and
// SIGNED_OUT emitted no matter how the remote call went.
func (c *SupabaseClient) SignOut(ctx context.Context) error {
	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()

	defer func() {
		c.dropSession()
		c.broker.publish(AuthEvent{Type: SignedOut})
	}()

	if sess == nil {
		return nil
	}
	return c.authCall(ctx, http.MethodPost, "/auth/v1/logout", "", nil, sess.AccessToken, nil)
}

func (c *SupabaseClient) refreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	body := map[string]any{"refresh_token": refreshToken}

	var sess Session
	if err := c.authCall(ctx, http.MethodPost, "/auth/v1/token", "grant_type=refresh_token", body, "", &sess); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.session = &sess
	c.mu.Unlock()
	if err := c.store.Set(cache.KeySession, &sess); err != nil {
		log.Printf("⚠️ failed to persist refreshed session: %v", err)
	}
	copied := sess
	return &copied, nil
}

func (c *SupabaseClient) adoptSession(sess *Session) {
	c.mu.Lock()
	c.session = sess
	c.mu.Unlock()
	if err := c.store.Set(cache.KeySession, sess); err != nil {
		log.Printf("⚠️ failed to persist session: %v", err)
	}
	c.broker.publish(AuthEvent{Type: SignedIn, Session: sess})
}

func (c *SupabaseClient) dropSession() {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	if err := c.store.Clear(cache.KeySession); err != nil {
		log.Printf("⚠️ failed to clear cached session: %v", err)
	}
}

// tokenFresh reports whether the access token's exp claim is comfortably in
// the future. The token is not verified here; the backend is the verifier,
// this only decides whether a refresh round-trip is needed.
func tokenFresh(accessToken string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.After(now.Add(tokenSlack))
}

// ---------------------------------------------
// DATA (PostgREST)
// ---------------------------------------------

func (c *SupabaseClient) SelectProfile(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	q := url.Values{"id": {"eq." + id}, "select": {"*"}}.Encode()
	if err := c.restCall(ctx, http.MethodGet, "/rest/v1/profiles", q, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *SupabaseClient) InsertProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	var created models.Profile
	if err := c.restCall(ctx, http.MethodPost, "/rest/v1/profiles", "", profile, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *SupabaseClient) UpdateProfile(ctx context.Context, id string, partial map[string]any) (*models.Profile, error) {
	var updated models.Profile
	q := url.Values{"id": {"eq." + id}}.Encode()
	if err := c.restCall(ctx, http.MethodPatch, "/rest/v1/profiles", q, partial, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *SupabaseClient) GetFragrances(ctx context.Context) ([]models.Fragrance, error) {
	var rows []models.Fragrance
	q := url.Values{"select": {"*"}, "order": {"id.asc"}}.Encode()
	if err := c.listCall(ctx, "/rest/v1/fragrances", q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ---------------------------------------------
// HTTP plumbing
// ---------------------------------------------

func (c *SupabaseClient) authCall(ctx context.Context, method, path, query string, body any, bearer string, out any) error {
	return c.do(ctx, method, path, query, body, bearer, false, out)
}

// restCall issues a PostgREST request expecting exactly one row back.
func (c *SupabaseClient) restCall(ctx context.Context, method, path, query string, body any, out any) error {
	return c.do(ctx, method, path, query, body, c.bearer(), true, out)
}

func (c *SupabaseClient) listCall(ctx context.Context, path, query string, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, c.bearer(), false, out)
}

func (c *SupabaseClient) bearer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil && c.session.AccessToken != "" {
		return c.session.AccessToken
	}
	return c.anonKey
}

func (c *SupabaseClient) do(ctx context.Context, method, path, query string, body any, bearer string, singleObject bool, out any) error {
	endpoint := c.baseURL + path
	if query != "" {
		endpoint += "?" + query
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.anonKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if singleObject {
		req.Header.Set("Accept", "application/vnd.pgrst.object+json")
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}

	if resp.StatusCode >= 400 {
		return classifyFailure(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: malformed response: %v", ErrRemoteUnavailable, err)
	}
	return nil
}

// remoteError is the union of GoTrue and PostgREST error bodies.
type remoteError struct {
	Code             any    `json:"code"`
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	ErrorField       string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e remoteError) text() string {
	for _, s := range []string{e.ErrorDescription, e.Message, e.Msg, e.ErrorField} {
		if s != "" {
			return s
		}
	}
	return ""
}

func classifyFailure(status int, raw []byte) error {
	var body remoteError
	_ = json.Unmarshal(raw, &body)

	if code, ok := body.Code.(string); ok && code == pgrstNoRows {
		return ErrRowNotFound
	}
	if status >= 500 {
		return fmt.Errorf("%w: status %d", ErrRemoteUnavailable, status)
	}
	msg := body.text()
	if msg == "" {
		msg = fmt.Sprintf("request rejected with status %d", status)
	}
	return fmt.Errorf("%w: %s", ErrValidationRejected, msg)
}

func isValidationErr(err error) bool {
	return errors.Is(err, ErrValidationRejected)
}
