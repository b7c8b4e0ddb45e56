// AngelaMos | 2026
// demo.go

package main

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/tharavad/dues-api/internal/config"
	"github.com/tharavad/dues-api/internal/core"
	"github.com/tharavad/dues-api/internal/member"
	"github.com/tharavad/dues-api/internal/payment"
	"github.com/tharavad/dues-api/internal/store"
)

type demoMember struct {
	request member.CreateMemberRequest
	paid    []int
}

var demoRoster = []demoMember{
	{
		request: member.CreateMemberRequest{
			MemberID: "T001", Name: "Ravi Kumar", Phone: "9876543210",
			Email: "ravi@example.com", JoinYear: 2020,
		},
		paid: []int{2023, 2024},
	},
	{
		request: member.CreateMemberRequest{
			MemberID: "T002", Name: "Suma Reddy", Phone: "9765432109",
			Email: "suma@example.com", JoinYear: 2021,
		},
	},
	{
		request: member.CreateMemberRequest{
			MemberID: "T003", Name: "Arun Menon", Phone: "8765432109",
			Email: "arun@example.com", JoinYear: 2020,
		},
		paid: []int{2023, 2024},
	},
	{
		request: member.CreateMemberRequest{
			MemberID: "T004", Name: "Divya Sharma", Phone: "8654321098",
			Email: "divya@example.com", JoinYear: 2022,
		},
		paid: []int{2023, 2024},
	},
	{
		request: member.CreateMemberRequest{
			MemberID: "T005", Name: "Nitin Gupta", Phone: "7654321098",
			Email: "nitin@example.com", JoinYear: 2021,
		},
		paid: []int{2024},
	},
	{
		request: member.CreateMemberRequest{
			MemberID: "T006", Name: "Priya Nair", Phone: "7543210987",
			Email: "priya@example.com", JoinYear: 2023,
		},
		paid: []int{2023},
	},
}

type demoResult struct {
	Created int
	Skipped int
	Marked  int
}

// seedDemo goes through the services so demo members get the same dues
// rows as members created over HTTP. Members already present are skipped.
func seedDemo(
	ctx context.Context,
	backend *store.Backend,
	dues config.DuesConfig,
) (*demoResult, error) {
	members := member.NewService(backend.Members, backend.Payments, member.DuesPolicy{
		Years:  dues.ProvisionYears,
		Amount: dues.DefaultAmount,
	})
	ledger := payment.NewService(backend.Payments, members)

	result := &demoResult{}
	for _, d := range demoRoster {
		profile, err := members.Create(ctx, d.request)
		if err != nil {
			if errors.Is(err, core.ErrDuplicateKey) {
				result.Skipped++
				continue
			}
			return nil, fmt.Errorf("create %s: %w", d.request.MemberID, err)
		}
		result.Created++

		for _, p := range profile.Payments {
			if !slices.Contains(d.paid, p.Year) {
				continue
			}
			if _, err := ledger.UpdateStatus(ctx, p.ID, payment.StatusDone); err != nil {
				return nil, fmt.Errorf("mark %s %d: %w", d.request.MemberID, p.Year, err)
			}
			result.Marked++
		}
	}

	return result, nil
}
