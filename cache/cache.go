// Package cache provides the persistent string-keyed blob store the state
// layer hydrates from. Values are JSON, wrapped in a versioned envelope so a
// malformed or outdated entry reads as a miss instead of being misinterpreted.
package cache

import "encoding/json"

// SchemaVersion tags every persisted envelope. Bump it when a stored shape
// changes incompatibly; old entries then read as misses and are rewritten on
// the next successful Set.
const SchemaVersion = 1

// Keys owned by the state layer. Each key has exactly one writing store.
const (
	KeySession    = "auth.session"
	KeyProfile    = "auth.profile"
	KeyFragrances = "catalog.fragrances"
	KeyCategories = "catalog.categories"
	KeyFeatured   = "catalog.featured"
	KeyFetchedAt  = "catalog.fetchedAt"
	KeyCart       = "cart.items"
)

// Store is the persistence contract. Get returns (false, nil) for a missing,
// malformed, or version-mismatched entry; corruption is never an error, it is
// self-healed by the next Set on the same key.
type Store interface {
	Get(key string, dest any) (bool, error)
	Set(key string, value any) error
	Clear(key string) error
	Close() error
}

type envelope struct {
	Version int             `json:"v"`
	Data    json.RawMessage `json:"data"`
}

func encode(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Version: SchemaVersion, Data: data})
}

// decode unwraps an envelope into dest. Corrupt payloads and version
// mismatches report a miss, not an error.
func decode(payload []byte, dest any) bool {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return false
	}
	if env.Version != SchemaVersion || env.Data == nil {
		return false
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return false
	}
	return true
}
