// Package app assembles the process-scoped state layer: one cache, one
// gateway, one of each store, built once at startup and handed to the HTTP
// facade. Nothing here lives in package-level variables.
package app

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/elvis-ci/Riviera/cache"
	"github.com/elvis-ci/Riviera/gateway"
	"github.com/elvis-ci/Riviera/stores"
)

// Config is everything read from the environment.
type Config struct {
	SupabaseURL     string
	SupabaseAnonKey string

	// DataBackend selects where profile rows and the catalog come from:
	// "supabase" (default) or "postgres" for self-hosted deployments.
	DataBackend string
	DatabaseDSN string

	// CacheBackend selects the persistent blob store: "sqlite" (default)
	// or "redis".
	CacheBackend string
	CachePath    string
	RedisAddr    string

	AdminAPIKey string
}

// ConfigFromEnv reads the configuration the way the rest of the app expects
// it: plain env vars, with .env already loaded by main.
func ConfigFromEnv() Config {
	cfg := Config{
		SupabaseURL:     os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey: os.Getenv("SUPABASE_ANON_KEY"),
		DataBackend:     os.Getenv("DATA_BACKEND"),
		DatabaseDSN:     os.Getenv("DATABASE_URL"),
		CacheBackend:    os.Getenv("CACHE_BACKEND"),
		CachePath:       os.Getenv("CACHE_PATH"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		AdminAPIKey:     os.Getenv("ADMIN_API_KEY"),
	}
	if cfg.DatabaseDSN == "" && os.Getenv("DB_HOST") != "" {
		cfg.DatabaseDSN = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			os.Getenv("DB_HOST"), os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_NAME"), os.Getenv("DB_PORT"),
		)
	}
	if cfg.CachePath == "" {
		cfg.CachePath = "riviera-cache.db"
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}
	return cfg
}

// App is the process-scoped container the view layer reads from.
type App struct {
	Config  Config
	Cache   cache.Store
	Auth    *gateway.SupabaseClient
	Session *stores.SessionStore
	Catalog *stores.CatalogStore
	Cart    *stores.CartStore

	pg *gateway.PostgresGateway
}

// New wires the whole state layer. No remote calls happen yet; Init does
// session restore and the first catalog refresh.
func New(cfg Config) (*App, error) {
	var blobStore cache.Store
	var err error
	switch cfg.CacheBackend {
	case "redis":
		blobStore, err = cache.OpenRedis(cfg.RedisAddr, "riviera:")
	default:
		blobStore, err = cache.OpenSQLite(cfg.CachePath)
	}
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	auth := gateway.NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, blobStore)

	var data gateway.Data = auth
	var source gateway.FragranceSource = auth
	var pg *gateway.PostgresGateway
	if cfg.DataBackend == "postgres" {
		pg, err = gateway.OpenPostgres(cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := pg.SeedFragrances(); err != nil {
			return nil, fmt.Errorf("seed fragrances: %w", err)
		}
		data = pg
		source = pg
	}

	return &App{
		Config:  cfg,
		Cache:   blobStore,
		Auth:    auth,
		Session: stores.NewSessionStore(auth, data, blobStore),
		Catalog: stores.NewCatalogStore(source, blobStore),
		Cart:    stores.NewCartStore(blobStore),
		pg:      pg,
	}, nil
}

// Init runs the startup sequence: restore the session, register the auth
// listener exactly once, then hydrate the catalog under its TTL policy.
func (a *App) Init(ctx context.Context) {
	a.Session.RestoreSession(ctx)
	a.Session.InitAuthListener()
	a.Catalog.Refresh(ctx, false)
}

// Teardown closes the auth event stream, the data backend, and the cache.
func (a *App) Teardown() {
	a.Auth.Close()
	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			log.Printf("⚠️ Failed to close postgres gateway: %v", err)
		}
	}
	if err := a.Cache.Close(); err != nil {
		log.Printf("⚠️ Failed to close cache: %v", err)
	}
}
