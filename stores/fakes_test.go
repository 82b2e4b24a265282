package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/elvis-ci/Riviera/gateway"
	"github.com/elvis-ci/Riviera/models"
)

// memStore is an in-memory cache.Store for tests.
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(key string, dest any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, ok := m.data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, nil
	}
	return true, nil
}

func (m *memStore) Set(key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = payload
	return nil
}

func (m *memStore) Clear(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

// fakeAuth implements gateway.Auth with pluggable behavior.
type fakeAuth struct {
	mu          sync.Mutex
	session     *gateway.Session
	sessionErr  error
	signInErr   error
	signUpErr   error
	signOutErr  error
	events      chan gateway.AuthEvent
	eventsCalls int
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{events: make(chan gateway.AuthEvent, 8)}
}

func (f *fakeAuth) GetSession(ctx context.Context) (*gateway.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	if f.session == nil {
		return nil, gateway.ErrNoSession
	}
	copied := *f.session
	return &copied, nil
}

func (f *fakeAuth) GetUser(ctx context.Context) (*models.Identity, error) {
	sess, err := f.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	identity := sess.User
	return &identity, nil
}

func (f *fakeAuth) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*gateway.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	f.session = &gateway.Session{
		AccessToken: "token",
		User:        models.Identity{ID: "signup-" + email, Email: email, Metadata: metadata},
	}
	copied := *f.session
	return &copied, nil
}

func (f *fakeAuth) SignInWithPassword(ctx context.Context, email, password string) (*gateway.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	if f.session == nil {
		return nil, fmt.Errorf("%w: invalid login credentials", gateway.ErrValidationRejected)
	}
	copied := *f.session
	return &copied, nil
}

func (f *fakeAuth) SignInWithOAuth(provider, redirectTo string) (string, error) {
	return "https://auth.example.com/authorize?provider=" + provider, nil
}

func (f *fakeAuth) SignOut(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signOutErr
}

func (f *fakeAuth) Events() <-chan gateway.AuthEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.eventsCalls++
	return f.events
}

// fakeData implements gateway.Data over an in-memory profile table.
type fakeData struct {
	mu          sync.Mutex
	rows        map[string]models.Profile
	selectDelay time.Duration
	selectErr   error
	missSelects int // report RowNotFound for this many lookups even when the row exists
	insertCalls int
}

func newFakeData() *fakeData {
	return &fakeData{rows: make(map[string]models.Profile)}
}

func (f *fakeData) SelectProfile(ctx context.Context, id string) (*models.Profile, error) {
	f.mu.Lock()
	delay := f.selectDelay
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	if f.missSelects > 0 {
		f.missSelects--
		return nil, gateway.ErrRowNotFound
	}
	row, ok := f.rows[id]
	if !ok {
		return nil, gateway.ErrRowNotFound
	}
	copied := row
	return &copied, nil
}

func (f *fakeData) InsertProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCalls++
	if _, ok := f.rows[profile.ID]; ok {
		return nil, fmt.Errorf("%w: profile already exists", gateway.ErrValidationRejected)
	}
	f.rows[profile.ID] = *profile
	copied := *profile
	return &copied, nil
}

func (f *fakeData) UpdateProfile(ctx context.Context, id string, partial map[string]any) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, gateway.ErrRowNotFound
	}
	if v, ok := partial["full_name"].(string); ok {
		row.FullName = v
	}
	if v, ok := partial["phone"].(string); ok {
		row.Phone = v
	}
	if v, ok := partial["address"].(string); ok {
		row.Address = v
	}
	if v, ok := partial["role"].(string); ok {
		row.Role = v
	}
	f.rows[id] = row
	copied := row
	return &copied, nil
}

// fakeSource implements gateway.FragranceSource with a call counter.
type fakeSource struct {
	mu    sync.Mutex
	rows  []models.Fragrance
	err   error
	calls int
}

func (f *fakeSource) GetFragrances(ctx context.Context) ([]models.Fragrance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Fragrance(nil), f.rows...), nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
