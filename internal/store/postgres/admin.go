// AngelaMos | 2026
// admin.go

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tharavad/dues-api/internal/auth"
	"github.com/tharavad/dues-api/internal/core"
)

const adminColumns = `id, username, password_hash, created_at`

type AdminRepository struct {
	db *sqlx.DB
}

func (r *AdminRepository) GetByUsername(
	ctx context.Context,
	username string,
) (*auth.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE username = $1`

	var a auth.Admin
	err := r.db.GetContext(ctx, &a, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get admin by username: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get admin by username: %w", err)
	}

	return &a, nil
}

func (r *AdminRepository) GetByID(
	ctx context.Context,
	id string,
) (*auth.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE id = $1`

	var a auth.Admin
	err := r.db.GetContext(ctx, &a, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get admin: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get admin: %w", err)
	}

	return &a, nil
}

func (r *AdminRepository) Create(ctx context.Context, admin *auth.Admin) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admins (`+adminColumns+`)
		VALUES ($1, $2, $3, $4)`,
		admin.ID,
		admin.Username,
		admin.PasswordHash,
		admin.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create admin: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create admin: %w", err)
	}

	return nil
}

var _ auth.AdminRepository = (*AdminRepository)(nil)
