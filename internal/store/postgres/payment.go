// AngelaMos | 2026
// payment.go

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/tharavad/dues-api/internal/core"
	"github.com/tharavad/dues-api/internal/payment"
)

const paymentColumns = `id, member_ref, year, amount, status, created_at, updated_at`

type PaymentRepository struct {
	db *sqlx.DB
}

func (r *PaymentRepository) GetByID(
	ctx context.Context,
	id string,
) (*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	var p payment.Payment
	err := r.db.GetContext(ctx, &p, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get payment: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}

	return &p, nil
}

func (r *PaymentRepository) UpdateStatus(
	ctx context.Context,
	id, status string,
) (*payment.Payment, error) {
	query := `
		UPDATE payments
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + paymentColumns

	var p payment.Payment
	err := r.db.GetContext(ctx, &p, query, id, status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update payment: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update payment: %w", err)
	}

	return &p, nil
}

func (r *PaymentRepository) List(
	ctx context.Context,
	filter payment.Filter,
) ([]payment.Payment, error) {
	if filter.MatchesNothing() {
		return []payment.Payment{}, nil
	}

	query, args, err := buildPaymentQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	payments := []payment.Payment{}
	if err := r.db.SelectContext(ctx, &payments, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	return payments, nil
}

func (r *PaymentRepository) ListByMembers(
	ctx context.Context,
	memberRefs []string,
) ([]payment.Payment, error) {
	if memberRefs == nil {
		memberRefs = []string{}
	}
	return r.List(ctx, payment.Filter{MemberRefs: memberRefs})
}

func buildPaymentQuery(filter payment.Filter) (string, []any, error) {
	var (
		conditions []string
		args       []any
	)

	if filter.Year != 0 {
		conditions = append(conditions, "year = ?")
		args = append(args, filter.Year)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.MemberRefs != nil {
		conditions = append(conditions, "member_ref IN (?)")
		args = append(args, filter.MemberRefs)
	}

	query := `SELECT ` + paymentColumns + ` FROM payments`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY year ASC, created_at ASC, id ASC"

	if filter.MemberRefs == nil {
		return query, args, nil
	}

	return sqlx.In(query, args...)
}

var _ payment.Repository = (*PaymentRepository)(nil)
