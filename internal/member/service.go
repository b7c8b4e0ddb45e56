// AngelaMos | 2026
// service.go

package member

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tharavad/dues-api/internal/core"
	"github.com/tharavad/dues-api/internal/payment"
)

// DuesPolicy decides which rows a new member is provisioned with.
type DuesPolicy struct {
	Years  []int
	Amount int64
}

type Service struct {
	repo     Repository
	payments payment.Repository
	dues     DuesPolicy
	now      func() time.Time
}

func NewService(
	repo Repository,
	payments payment.Repository,
	dues DuesPolicy,
) *Service {
	return &Service{
		repo:     repo,
		payments: payments,
		dues:     dues,
		now:      time.Now,
	}
}

func (s *Service) List(ctx context.Context, params ListParams) ([]Profile, error) {
	ctx, span := core.StartSpan(ctx, "member.List",
		attribute.Int("member.join_year", params.JoinYear),
	)
	defer span.End()

	members, err := s.repo.List(ctx, Filter{
		Search:   strings.TrimSpace(params.Search),
		JoinYear: params.JoinYear,
	})
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	return s.withPayments(ctx, members)
}

func (s *Service) Get(ctx context.Context, id string) (*Profile, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	profiles, err := s.withPayments(ctx, []Member{*m})
	if err != nil {
		return nil, err
	}

	return &profiles[0], nil
}

func (s *Service) Create(
	ctx context.Context,
	req CreateMemberRequest,
) (*Profile, error) {
	ctx, span := core.StartSpan(ctx, "member.Create")
	defer span.End()

	m := &Member{
		ID:       uuid.New().String(),
		MemberID: NormalizeMemberID(req.MemberID),
		Name:     strings.TrimSpace(req.Name),
		Phone:    strings.TrimSpace(req.Phone),
		Email:    strings.TrimSpace(req.Email),
		JoinYear: int(req.JoinYear),
	}

	if err := validateNew(m); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByMemberID(ctx, m.MemberID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, core.DuplicateError("member id")
	}

	now := s.now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	dues := make([]payment.Payment, 0, len(s.dues.Years))
	for _, year := range s.dues.Years {
		dues = append(dues, payment.NewDue(m.ID, year, s.dues.Amount, now))
	}

	if err := s.repo.Create(ctx, m, dues); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.DuplicateError("member id")
		}
		core.SetSpanError(ctx, err)
		return nil, err
	}

	core.AddSpanEvent(ctx, "dues.provisioned",
		attribute.String("member.id", m.MemberID),
		attribute.Int("dues.rows", len(dues)),
	)

	return &Profile{Member: *m, Payments: dues}, nil
}

func (s *Service) Update(
	ctx context.Context,
	id string,
	req UpdateMemberRequest,
) (*Profile, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := applyUpdate(m, req); err != nil {
		return nil, err
	}
	m.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}

	profiles, err := s.withPayments(ctx, []Member{*m})
	if err != nil {
		return nil, err
	}

	return &profiles[0], nil
}

// Delete removes the member and its dues rows. On stores without
// multi-document transactions the two steps are not atomic, and a crash
// between them leaves orphaned rows that still appear in the payment
// ledger and the dashboard totals.
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := core.StartSpan(ctx, "member.Delete")
	defer span.End()

	if err := s.repo.Delete(ctx, id); err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			core.SetSpanError(ctx, err)
		}
		return err
	}

	return nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *Service) MatchOwners(
	ctx context.Context,
	search string,
) ([]payment.Owner, error) {
	members, err := s.repo.List(ctx, Filter{
		Search: search,
		Fields: OwnerFields,
	})
	if err != nil {
		return nil, err
	}

	owners := make([]payment.Owner, 0, len(members))
	for i := range members {
		owners = append(owners, toOwner(&members[i]))
	}

	return owners, nil
}

func (s *Service) LookupOwners(
	ctx context.Context,
	ids []string,
) (map[string]payment.Owner, error) {
	members, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	owners := make(map[string]payment.Owner, len(members))
	for i := range members {
		owners[members[i].ID] = toOwner(&members[i])
	}

	return owners, nil
}

func (s *Service) withPayments(
	ctx context.Context,
	members []Member,
) ([]Profile, error) {
	profiles := make([]Profile, 0, len(members))
	if len(members) == 0 {
		return profiles, nil
	}

	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}

	rows, err := s.payments.ListByMembers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list member payments: %w", err)
	}

	byMember := make(map[string][]payment.Payment, len(members))
	for _, p := range rows {
		byMember[p.MemberRef] = append(byMember[p.MemberRef], p)
	}

	for _, m := range members {
		dues := byMember[m.ID]
		if dues == nil {
			dues = []payment.Payment{}
		}
		profiles = append(profiles, Profile{Member: m, Payments: dues})
	}

	return profiles, nil
}

func validateNew(m *Member) error {
	switch {
	case m.MemberID == "":
		return core.ValidationError("memberId is required")
	case m.Name == "":
		return core.ValidationError("name is required")
	case m.Phone == "":
		return core.ValidationError("phone is required")
	case m.Email == "":
		return core.ValidationError("email is required")
	case m.JoinYear <= 0:
		return core.ValidationError("joinYear is required")
	}
	return nil
}

func applyUpdate(m *Member, req UpdateMemberRequest) error {
	req.normalize()

	if req.JoinYear != nil && *req.JoinYear < 0 {
		return core.ValidationError("joinYear must be a positive year")
	}

	if req.Name != nil {
		m.Name = *req.Name
	}
	if req.Phone != nil {
		m.Phone = *req.Phone
	}
	if req.Email != nil {
		m.Email = *req.Email
	}
	if req.JoinYear != nil {
		m.JoinYear = int(*req.JoinYear)
	}

	return nil
}

func toOwner(m *Member) payment.Owner {
	return payment.Owner{
		ID:       m.ID,
		MemberID: m.MemberID,
		Name:     m.Name,
	}
}

var _ payment.MemberDirectory = (*Service)(nil)
