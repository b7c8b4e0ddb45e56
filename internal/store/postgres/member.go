// AngelaMos | 2026
// member.go

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/tharavad/dues-api/internal/core"
	"github.com/tharavad/dues-api/internal/member"
	"github.com/tharavad/dues-api/internal/payment"
)

const memberColumns = `id, member_id, name, phone, email, join_year, created_at, updated_at`

var searchColumns = map[member.SearchField]string{
	member.FieldName:     "name",
	member.FieldMemberID: "member_id",
	member.FieldPhone:    "phone",
	member.FieldEmail:    "email",
}

type MemberRepository struct {
	db *sqlx.DB
}

// Create inserts the member and its dues rows in one transaction.
func (r *MemberRepository) Create(
	ctx context.Context,
	m *member.Member,
	dues []payment.Payment,
) error {
	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO members (`+memberColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			m.ID,
			m.MemberID,
			m.Name,
			m.Phone,
			m.Email,
			m.JoinYear,
			m.CreatedAt,
			m.UpdatedAt,
		)
		if err != nil {
			return err
		}

		for _, p := range dues {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO payments (`+paymentColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				p.ID,
				p.MemberRef,
				p.Year,
				p.Amount,
				p.Status,
				p.CreatedAt,
				p.UpdatedAt,
			); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create member: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create member: %w", err)
	}

	return nil
}

func (r *MemberRepository) GetByID(
	ctx context.Context,
	id string,
) (*member.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`

	var m member.Member
	err := r.db.GetContext(ctx, &m, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get member: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}

	return &m, nil
}

func (r *MemberRepository) GetByIDs(
	ctx context.Context,
	ids []string,
) ([]member.Member, error) {
	if len(ids) == 0 {
		return []member.Member{}, nil
	}

	query, args, err := sqlx.In(
		`SELECT `+memberColumns+` FROM members WHERE id IN (?)`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("get members: %w", err)
	}

	var members []member.Member
	if err := r.db.SelectContext(ctx, &members, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("get members: %w", err)
	}

	return members, nil
}

func (r *MemberRepository) ExistsByMemberID(
	ctx context.Context,
	memberID string,
) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM members WHERE member_id = $1)`,
		memberID,
	)
	if err != nil {
		return false, fmt.Errorf("check member id: %w", err)
	}

	return exists, nil
}

func (r *MemberRepository) Update(ctx context.Context, m *member.Member) error {
	query := `
		UPDATE members
		SET name = $2, phone = $3, email = $4, join_year = $5, updated_at = $6
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		m.ID,
		m.Name,
		m.Phone,
		m.Email,
		m.JoinYear,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update member: %w", core.ErrNotFound)
	}

	return nil
}

// Delete removes the member and then its dues rows inside one
// transaction. The foreign key cascades as well, so the second statement
// only matters for rows written before the constraint existed.
func (r *MemberRepository) Delete(ctx context.Context, id string) error {
	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM members WHERE id = $1`, id)
		if err != nil {
			return err
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return core.ErrNotFound
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM payments WHERE member_ref = $1`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}

	return nil
}

func (r *MemberRepository) List(
	ctx context.Context,
	filter member.Filter,
) ([]member.Member, error) {
	query, args := buildMemberQuery(filter)

	members := []member.Member{}
	if err := r.db.SelectContext(ctx, &members, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	return members, nil
}

func (r *MemberRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM members`); err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return count, nil
}

func buildMemberQuery(filter member.Filter) (string, []any) {
	var (
		conditions []string
		args       []any
	)

	if filter.JoinYear != 0 {
		conditions = append(conditions, "join_year = ?")
		args = append(args, filter.JoinYear)
	}

	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		var ors []string
		for _, field := range filter.SearchFields() {
			column, ok := searchColumns[field]
			if !ok {
				continue
			}
			ors = append(ors, column+" ILIKE ?")
			args = append(args, pattern)
		}
		if len(ors) > 0 {
			conditions = append(conditions, "("+strings.Join(ors, " OR ")+")")
		}
	}

	query := `SELECT ` + memberColumns + ` FROM members`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY member_id ASC"

	return query, args
}

var _ member.Repository = (*MemberRepository)(nil)
