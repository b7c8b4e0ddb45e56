// AngelaMos | 2026
// service.go

package payment

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/tharavad/dues-api/internal/core"
)

// MemberDirectory resolves ledger owners without this package depending on
// the member package.
type MemberDirectory interface {
	MatchOwners(ctx context.Context, search string) ([]Owner, error)
	LookupOwners(ctx context.Context, ids []string) (map[string]Owner, error)
}

type Service struct {
	repo    Repository
	members MemberDirectory
}

func NewService(repo Repository, members MemberDirectory) *Service {
	return &Service{repo: repo, members: members}
}

func (s *Service) List(ctx context.Context, params ListParams) ([]Entry, error) {
	ctx, span := core.StartSpan(ctx, "payment.List",
		attribute.Int("payment.year", params.Year),
		attribute.String("payment.status", params.Status),
	)
	defer span.End()

	filter := Filter{Year: params.Year, Status: params.Status}

	if search := strings.TrimSpace(params.Search); search != "" {
		owners, err := s.members.MatchOwners(ctx, search)
		if err != nil {
			core.SetSpanError(ctx, err)
			return nil, fmt.Errorf("match owners: %w", err)
		}

		filter.MemberRefs = make([]string, 0, len(owners))
		for _, o := range owners {
			filter.MemberRefs = append(filter.MemberRefs, o.ID)
		}
	}

	if filter.MatchesNothing() {
		return []Entry{}, nil
	}

	payments, err := s.repo.List(ctx, filter)
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	return s.Join(ctx, payments)
}

func (s *Service) UpdateStatus(
	ctx context.Context,
	id, status string,
) (*Entry, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	if !ValidStatus(status) {
		return nil, core.InvalidArgumentError(fmt.Sprintf(
			"status must be %q or %q", StatusDone, StatusNotDone,
		))
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	entries, err := s.Join(ctx, []Payment{*updated})
	if err != nil {
		return nil, err
	}

	return &entries[0], nil
}

// Join attaches member code and name to each row. Owners are looked up
// separately from the rows, so a concurrently deleted member leaves the
// owner fields empty.
func (s *Service) Join(ctx context.Context, payments []Payment) ([]Entry, error) {
	refs := make([]string, 0, len(payments))
	seen := make(map[string]struct{}, len(payments))
	for _, p := range payments {
		if _, ok := seen[p.MemberRef]; ok {
			continue
		}
		seen[p.MemberRef] = struct{}{}
		refs = append(refs, p.MemberRef)
	}

	owners := map[string]Owner{}
	if len(refs) > 0 {
		var err error
		owners, err = s.members.LookupOwners(ctx, refs)
		if err != nil {
			return nil, fmt.Errorf("lookup owners: %w", err)
		}
	}

	entries := make([]Entry, 0, len(payments))
	for _, p := range payments {
		owner := owners[p.MemberRef]
		entries = append(entries, Entry{
			Payment:    p,
			MemberCode: owner.MemberID,
			MemberName: owner.Name,
		})
	}

	return entries, nil
}
