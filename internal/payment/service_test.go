// AngelaMos | 2026
// service_test.go

package payment_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tharavad/dues-api/internal/core"
	"github.com/tharavad/dues-api/internal/member"
	"github.com/tharavad/dues-api/internal/payment"
	"github.com/tharavad/dues-api/internal/store/memory"
)

type fixture struct {
	members  *member.Service
	payments *payment.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s := memory.New()
	members := member.NewService(s.Members(), s.Payments(), member.DuesPolicy{
		Years:  []int{2023, 2024, 2025},
		Amount: 1000,
	})

	return &fixture{
		members:  members,
		payments: payment.NewService(s.Payments(), members),
	}
}

func (f *fixture) addMember(t *testing.T, memberID, name string) *member.Profile {
	t.Helper()

	p, err := f.members.Create(context.Background(), member.CreateMemberRequest{
		MemberID: memberID,
		Name:     name,
		Phone:    "000",
		Email:    memberID + "@example.com",
		JoinYear: 2020,
	})
	require.NoError(t, err)
	return p
}

func TestUpdateStatusRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ravi := f.addMember(t, "T001", "Ravi Kumar")
	due := ravi.Payments[0]

	entry, err := f.payments.UpdateStatus(ctx, due.ID, payment.StatusDone)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusDone, entry.Status)
	assert.Equal(t, "T001", entry.MemberCode)
	assert.Equal(t, "Ravi Kumar", entry.MemberName)
	assert.Equal(t, int64(1000), entry.Amount)

	entry, err = f.payments.UpdateStatus(ctx, due.ID, payment.StatusNotDone)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusNotDone, entry.Status)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	due := f.addMember(t, "T001", "Ravi Kumar").Payments[1]

	_, err := f.payments.UpdateStatus(ctx, due.ID, "paid")
	require.Error(t, err)
	appErr := core.FromError(err, "payment")
	assert.Equal(t, 400, appErr.StatusCode)
	assert.Equal(t, "INVALID_ARGUMENT", appErr.Code)

	rows, err := f.payments.List(ctx, payment.ListParams{Year: due.Year})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, payment.StatusNotDone, rows[0].Status)
}

func TestUpdateStatusUnknownPayment(t *testing.T) {
	f := newFixture(t)

	_, err := f.payments.UpdateStatus(context.Background(), "missing", payment.StatusDone)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ravi := f.addMember(t, "T001", "Ravi Kumar")
	f.addMember(t, "T002", "Priya Nair")

	_, err := f.payments.UpdateStatus(ctx, ravi.Payments[0].ID, payment.StatusDone)
	require.NoError(t, err)

	all, err := f.payments.List(ctx, payment.ListParams{})
	require.NoError(t, err)
	assert.Len(t, all, 6)
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].Year, all[i].Year)
	}

	byYear, err := f.payments.List(ctx, payment.ListParams{Year: 2024})
	require.NoError(t, err)
	assert.Len(t, byYear, 2)

	done, err := f.payments.List(ctx, payment.ListParams{Status: payment.StatusDone})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "T001", done[0].MemberCode)

	byName, err := f.payments.List(ctx, payment.ListParams{Search: "priya"})
	require.NoError(t, err)
	assert.Len(t, byName, 3)

	byCode, err := f.payments.List(ctx, payment.ListParams{Search: "t001", Year: 2023})
	require.NoError(t, err)
	require.Len(t, byCode, 1)
	assert.Equal(t, ravi.ID, byCode[0].MemberRef)

	none, err := f.payments.List(ctx, payment.ListParams{Search: "nobody"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
