// AngelaMos | 2026
// service.go

package dashboard

import (
	"context"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"github.com/tharavad/dues-api/internal/core"
	"github.com/tharavad/dues-api/internal/payment"
)

type MemberCounter interface {
	Count(ctx context.Context) (int, error)
}

type Ledger interface {
	List(ctx context.Context, params payment.ListParams) ([]payment.Entry, error)
}

// Stats is recomputed from the store on every call.
type Stats struct {
	TotalMembers         int
	TotalPaymentsDone    int
	TotalPaymentsPending int
	TotalCollected       int64
	PaymentsByYear       map[int][]payment.Entry
}

type Service struct {
	members MemberCounter
	ledger  Ledger
	years   []int
}

// NewService reports per-year breakdowns only for years; totals always
// cover every ledger row.
func NewService(members MemberCounter, ledger Ledger, years []int) *Service {
	return &Service{
		members: members,
		ledger:  ledger,
		years:   years,
	}
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	ctx, span := core.StartSpan(ctx, "dashboard.Stats")
	defer span.End()

	totalMembers, err := s.members.Count(ctx)
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, fmt.Errorf("count members: %w", err)
	}

	entries, err := s.ledger.List(ctx, payment.ListParams{})
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, fmt.Errorf("list payments: %w", err)
	}

	stats := &Stats{
		TotalMembers:   totalMembers,
		PaymentsByYear: make(map[int][]payment.Entry, len(s.years)),
	}
	for _, year := range s.years {
		stats.PaymentsByYear[year] = []payment.Entry{}
	}

	for _, e := range entries {
		if e.IsDone() {
			stats.TotalPaymentsDone++
			stats.TotalCollected += e.Amount
		} else {
			stats.TotalPaymentsPending++
		}

		if rows, ok := stats.PaymentsByYear[e.Year]; ok {
			stats.PaymentsByYear[e.Year] = append(rows, e)
		}
	}

	span.SetAttributes(
		attribute.Int("dashboard.members", stats.TotalMembers),
		attribute.Int("dashboard.payments", len(entries)),
	)

	return stats, nil
}

type StatsResponse struct {
	TotalMembers         int                                  `json:"totalMembers"`
	TotalPaymentsDone    int                                  `json:"totalPaymentsDone"`
	TotalPaymentsPending int                                  `json:"totalPaymentsPending"`
	TotalCollected       int64                                `json:"totalCollected"`
	PaymentsByYear       map[string][]payment.PaymentResponse `json:"paymentsByYear"`
}

func ToStatsResponse(s *Stats) StatsResponse {
	byYear := make(map[string][]payment.PaymentResponse, len(s.PaymentsByYear))
	for year, entries := range s.PaymentsByYear {
		byYear[strconv.Itoa(year)] = payment.ToEntryResponseList(entries)
	}

	return StatsResponse{
		TotalMembers:         s.TotalMembers,
		TotalPaymentsDone:    s.TotalPaymentsDone,
		TotalPaymentsPending: s.TotalPaymentsPending,
		TotalCollected:       s.TotalCollected,
		PaymentsByYear:       byYear,
	}
}
