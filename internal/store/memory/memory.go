// AngelaMos | 2026
// memory.go

// Package memory is the process-local store used by default in
// development and by service tests.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/tharavad/dues-api/internal/auth"
	"github.com/tharavad/dues-api/internal/core"
	"github.com/tharavad/dues-api/internal/member"
	"github.com/tharavad/dues-api/internal/payment"
)

// Store guards all three collections with one lock, so a member and its
// dues rows are created and deleted atomically.
type Store struct {
	mu       sync.RWMutex
	members  map[string]member.Member
	payments map[string]payment.Payment
	admins   map[string]auth.Admin
	now      func() time.Time
}

func New() *Store {
	return &Store{
		members:  make(map[string]member.Member),
		payments: make(map[string]payment.Payment),
		admins:   make(map[string]auth.Admin),
		now:      time.Now,
	}
}

func (s *Store) Members() *MemberRepository {
	return &MemberRepository{s: s}
}

func (s *Store) Payments() *PaymentRepository {
	return &PaymentRepository{s: s}
}

func (s *Store) Admins() *AdminRepository {
	return &AdminRepository{s: s}
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close() error {
	return nil
}

type MemberRepository struct {
	s *Store
}

func (r *MemberRepository) Create(
	ctx context.Context,
	m *member.Member,
	dues []payment.Payment,
) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.members {
		if existing.MemberID == m.MemberID {
			return core.ErrDuplicateKey
		}
	}

	r.s.members[m.ID] = *m
	for _, p := range dues {
		r.s.payments[p.ID] = p
	}

	return nil
}

func (r *MemberRepository) GetByID(
	ctx context.Context,
	id string,
) (*member.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.members[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &m, nil
}

func (r *MemberRepository) GetByIDs(
	ctx context.Context,
	ids []string,
) ([]member.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]member.Member, 0, len(ids))
	for _, id := range ids {
		if m, ok := r.s.members[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *MemberRepository) ExistsByMemberID(
	ctx context.Context,
	memberID string,
) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, m := range r.s.members {
		if m.MemberID == memberID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemberRepository) Update(ctx context.Context, m *member.Member) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.members[m.ID]; !ok {
		return core.ErrNotFound
	}
	r.s.members[m.ID] = *m
	return nil
}

func (r *MemberRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.members[id]; !ok {
		return core.ErrNotFound
	}
	delete(r.s.members, id)

	for pid, p := range r.s.payments {
		if p.MemberRef == id {
			delete(r.s.payments, pid)
		}
	}
	return nil
}

func (r *MemberRepository) List(
	ctx context.Context,
	filter member.Filter,
) ([]member.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]member.Member, 0, len(r.s.members))
	for _, m := range r.s.members {
		if filter.Matches(&m) {
			out = append(out, m)
		}
	}

	slices.SortFunc(out, func(a, b member.Member) int {
		return strings.Compare(a.MemberID, b.MemberID)
	})
	return out, nil
}

func (r *MemberRepository) Count(ctx context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return len(r.s.members), nil
}

type PaymentRepository struct {
	s *Store
}

func (r *PaymentRepository) GetByID(
	ctx context.Context,
	id string,
) (*payment.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.payments[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &p, nil
}

func (r *PaymentRepository) UpdateStatus(
	ctx context.Context,
	id, status string,
) (*payment.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.payments[id]
	if !ok {
		return nil, core.ErrNotFound
	}

	p.Status = status
	p.UpdatedAt = r.s.now().UTC()
	r.s.payments[id] = p
	return &p, nil
}

func (r *PaymentRepository) List(
	ctx context.Context,
	filter payment.Filter,
) ([]payment.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]payment.Payment, 0, len(r.s.payments))
	for _, p := range r.s.payments {
		if filter.Matches(&p) {
			out = append(out, p)
		}
	}

	sortPayments(out)
	return out, nil
}

func (r *PaymentRepository) ListByMembers(
	ctx context.Context,
	memberRefs []string,
) ([]payment.Payment, error) {
	return r.List(ctx, payment.Filter{MemberRefs: memberRefs})
}

func sortPayments(rows []payment.Payment) {
	slices.SortFunc(rows, func(a, b payment.Payment) int {
		switch {
		case payment.Less(&a, &b):
			return -1
		case payment.Less(&b, &a):
			return 1
		default:
			return 0
		}
	})
}

type AdminRepository struct {
	s *Store
}

func (r *AdminRepository) GetByUsername(
	ctx context.Context,
	username string,
) (*auth.Admin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, a := range r.s.admins {
		if a.Username == username {
			return &a, nil
		}
	}
	return nil, core.ErrNotFound
}

func (r *AdminRepository) GetByID(
	ctx context.Context,
	id string,
) (*auth.Admin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.admins[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &a, nil
}

func (r *AdminRepository) Create(ctx context.Context, admin *auth.Admin) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, a := range r.s.admins {
		if a.Username == admin.Username {
			return core.ErrDuplicateKey
		}
	}
	r.s.admins[admin.ID] = *admin
	return nil
}

var (
	_ member.Repository    = (*MemberRepository)(nil)
	_ payment.Repository   = (*PaymentRepository)(nil)
	_ auth.AdminRepository = (*AdminRepository)(nil)
)
