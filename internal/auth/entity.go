// AngelaMos | 2026
// entity.go

package auth

import (
	"context"
	"time"
)

// Admin is the single operator account. It is written only by the seed
// command; the API never mutates it.
type Admin struct {
	ID           string    `db:"id"            bson:"_id"`
	Username     string    `db:"username"      bson:"username"`
	PasswordHash string    `db:"password_hash" bson:"password_hash"`
	CreatedAt    time.Time `db:"created_at"    bson:"created_at"`
}

// AdminRepository is implemented by each store backend under
// internal/store. Username lookups are exact.
type AdminRepository interface {
	GetByUsername(ctx context.Context, username string) (*Admin, error)
	GetByID(ctx context.Context, id string) (*Admin, error)
	// Create returns core.ErrDuplicateKey when the username is taken.
	Create(ctx context.Context, admin *Admin) error
}
