package models

import "time"

// Roles carried on Profile. Identity itself has no role; route guards must
// wait for the profile row before judging admin access.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Identity is the raw authenticated principal as returned by the backend's
// auth subsystem. It is never persisted; only the derived Profile is cached.
type Identity struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"user_metadata"`
}

// Profile is the application-owned record extending Identity, keyed 1:1 to
// the identity id. Created lazily on first sign-in when no row exists.
type Profile struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email" gorm:"not null"`
	Role      string    `json:"role"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin reports whether the profile carries the admin role.
func (p Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}
