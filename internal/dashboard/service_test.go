// AngelaMos | 2026
// service_test.go

package dashboard_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tharavad/dues-api/internal/dashboard"
	"github.com/tharavad/dues-api/internal/member"
	"github.com/tharavad/dues-api/internal/payment"
	"github.com/tharavad/dues-api/internal/store/memory"
)

func TestStatsSingleMember(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	members := member.NewService(s.Members(), s.Payments(), member.DuesPolicy{
		Years:  []int{2023, 2024, 2025},
		Amount: 1000,
	})
	ledger := payment.NewService(s.Payments(), members)
	svc := dashboard.NewService(members, ledger, []int{2023, 2024})

	profile, err := members.Create(ctx, member.CreateMemberRequest{
		MemberID: "T001",
		Name:     "Ravi Kumar",
		Phone:    "9876543210",
		Email:    "ravi@example.com",
		JoinYear: 2020,
	})
	require.NoError(t, err)

	_, err = ledger.UpdateStatus(ctx, profile.Payments[0].ID, payment.StatusDone)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.TotalMembers)
	assert.Equal(t, 1, stats.TotalPaymentsDone)
	assert.Equal(t, 2, stats.TotalPaymentsPending)
	assert.Equal(t, int64(1000), stats.TotalCollected)

	require.Len(t, stats.PaymentsByYear, 2)
	require.Len(t, stats.PaymentsByYear[2023], 1)
	assert.Equal(t, payment.StatusDone, stats.PaymentsByYear[2023][0].Status)
	assert.Equal(t, "T001", stats.PaymentsByYear[2023][0].MemberCode)
	assert.Len(t, stats.PaymentsByYear[2024], 1)
	assert.NotContains(t, stats.PaymentsByYear, 2025)

	resp := dashboard.ToStatsResponse(stats)
	assert.Contains(t, resp.PaymentsByYear, "2023")
	assert.Contains(t, resp.PaymentsByYear, "2024")
	assert.NotContains(t, resp.PaymentsByYear, "2025")
}

func TestStatsEmptyStore(t *testing.T) {
	s := memory.New()
	members := member.NewService(s.Members(), s.Payments(), member.DuesPolicy{})
	svc := dashboard.NewService(members, payment.NewService(s.Payments(), members), []int{2023, 2024})

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Zero(t, stats.TotalMembers)
	assert.Zero(t, stats.TotalCollected)
	assert.NotNil(t, stats.PaymentsByYear[2023])
	assert.Empty(t, stats.PaymentsByYear[2023])
}

type failingCounter struct{}

func (failingCounter) Count(ctx context.Context) (int, error) {
	return 0, errors.New("store down")
}

type emptyLedger struct{}

func (emptyLedger) List(ctx context.Context, params payment.ListParams) ([]payment.Entry, error) {
	return nil, nil
}

func TestStatsPropagatesStoreErrors(t *testing.T) {
	svc := dashboard.NewService(failingCounter{}, emptyLedger{}, nil)

	_, err := svc.Stats(context.Background())
	assert.ErrorContains(t, err, "store down")
}
