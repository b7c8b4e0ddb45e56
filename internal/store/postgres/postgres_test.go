// AngelaMos | 2026
// postgres_test.go

package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tharavad/dues-api/internal/auth"
	"github.com/tharavad/dues-api/internal/core"
	"github.com/tharavad/dues-api/internal/member"
	"github.com/tharavad/dues-api/internal/payment"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	return New(sqlx.NewDb(db, "pgx")), mock
}

func sampleMember() (*member.Member, []payment.Payment) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	m := &member.Member{
		ID:        "m1",
		MemberID:  "T001",
		Name:      "Ravi Kumar",
		Phone:     "9876543210",
		Email:     "ravi@example.com",
		JoinYear:  2020,
		CreatedAt: now,
		UpdatedAt: now,
	}
	dues := []payment.Payment{
		payment.NewDue(m.ID, 2023, 1000, now),
		payment.NewDue(m.ID, 2024, 1000, now),
	}
	return m, dues
}

func TestMemberCreateCommitsMemberAndDues(t *testing.T) {
	s, mock := newMockStore(t)
	m, dues := sampleMember()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO members").
		WithArgs(m.ID, m.MemberID, m.Name, m.Phone, m.Email, m.JoinYear, m.CreatedAt, m.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	for _, p := range dues {
		mock.ExpectExec("INSERT INTO payments").
			WithArgs(p.ID, p.MemberRef, p.Year, p.Amount, p.Status, p.CreatedAt, p.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, s.Members().Create(context.Background(), m, dues))
}

func TestMemberCreateDuplicateRollsBack(t *testing.T) {
	s, mock := newMockStore(t)
	m, dues := sampleMember()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO members").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	err := s.Members().Create(context.Background(), m, dues)
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestMemberCreateDueFailureRollsBack(t *testing.T) {
	s, mock := newMockStore(t)
	m, dues := sampleMember()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO members").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO payments").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := s.Members().Create(context.Background(), m, dues)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestMemberGetByIDNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT (.+) FROM members WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.Members().GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestMemberExistsByMemberID(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("T001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := s.Members().ExistsByMemberID(context.Background(), "T001")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemberDeleteCascades(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM members").WithArgs("m1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM payments").WithArgs("m1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	require.NoError(t, s.Members().Delete(context.Background(), "m1"))
}

func TestMemberDeleteNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM members").WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := s.Members().Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestMemberUpdateNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	m, _ := sampleMember()

	mock.ExpectExec("UPDATE members").WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Members().Update(context.Background(), m)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestMemberListScansRows(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "member_id", "name", "phone", "email", "join_year", "created_at", "updated_at",
	}).
		AddRow("m1", "T001", "Ravi Kumar", "1", "r@x.com", 2020, now, now).
		AddRow("m2", "T002", "Ravi Das", "2", "d@x.com", 2020, now, now)

	mock.ExpectQuery(`FROM members WHERE join_year = \$1 AND \(name ILIKE \$2`).
		WithArgs(2020, "%ravi%", "%ravi%", "%ravi%", "%ravi%").
		WillReturnRows(rows)

	members, err := s.Members().List(context.Background(), member.Filter{
		Search:   "ravi",
		JoinYear: 2020,
	})
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "T002", members[1].MemberID)
}

func TestBuildMemberQuery(t *testing.T) {
	query, args := buildMemberQuery(member.Filter{})
	assert.NotContains(t, query, "WHERE")
	assert.Contains(t, query, "ORDER BY member_id ASC")
	assert.Empty(t, args)

	query, args = buildMemberQuery(member.Filter{
		Search: "50%_off",
		Fields: member.OwnerFields,
	})
	assert.Contains(t, query, "WHERE (name ILIKE ? OR member_id ILIKE ?)")
	assert.Equal(t, []any{`%50\%\_off%`, `%50\%\_off%`}, args)
}

func TestBuildPaymentQuery(t *testing.T) {
	query, args, err := buildPaymentQuery(payment.Filter{
		Year:       2024,
		Status:     payment.StatusDone,
		MemberRefs: []string{"m1", "m2"},
	})
	require.NoError(t, err)
	assert.Contains(t, query, "WHERE year = ? AND status = ? AND member_ref IN (?, ?)")
	assert.Contains(t, query, "ORDER BY year ASC, created_at ASC, id ASC")
	assert.Equal(t, []any{2024, payment.StatusDone, "m1", "m2"}, args)

	query, args, err = buildPaymentQuery(payment.Filter{})
	require.NoError(t, err)
	assert.NotContains(t, query, "WHERE")
	assert.Empty(t, args)
}

func TestPaymentListMatchingNothingSkipsQuery(t *testing.T) {
	s, _ := newMockStore(t)

	rows, err := s.Payments().ListByMembers(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestPaymentUpdateStatusNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("UPDATE payments").
		WithArgs("missing", payment.StatusDone).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.Payments().UpdateStatus(context.Background(), "missing", payment.StatusDone)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestAdminCreateDuplicate(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO admins").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := s.Admins().Create(context.Background(), &auth.Admin{
		ID:           "a1",
		Username:     "admin",
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC(),
	})
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestSchemaKeepsOneDueRowPerMemberYear(t *testing.T) {
	assert.Contains(t, schema,
		"CREATE UNIQUE INDEX IF NOT EXISTS payments_member_year_key ON payments (member_ref, year);")
	assert.Equal(t, 1, strings.Count(schema, "UNIQUE INDEX"))
}

func TestMigrateAppliesSchema(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`payments_member_year_key ON payments \(member_ref, year\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Migrate(context.Background()))
}

func TestMigrateWrapsFailure(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("permission denied"))

	err := s.Migrate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply schema")
}
