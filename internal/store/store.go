// AngelaMos | 2026
// store.go

// Package store selects and opens the configured persistence backend.
package store

import (
	"context"
	"fmt"

	"github.com/tharavad/dues-api/internal/auth"
	"github.com/tharavad/dues-api/internal/config"
	"github.com/tharavad/dues-api/internal/core"
	"github.com/tharavad/dues-api/internal/member"
	"github.com/tharavad/dues-api/internal/payment"
	"github.com/tharavad/dues-api/internal/store/memory"
	mongostore "github.com/tharavad/dues-api/internal/store/mongo"
	"github.com/tharavad/dues-api/internal/store/postgres"
)

// Backend bundles the repositories of one store with its lifecycle hooks.
type Backend struct {
	Driver   string
	Members  member.Repository
	Payments payment.Repository
	Admins   auth.AdminRepository

	ping    func(ctx context.Context) error
	close   func() error
	migrate func(ctx context.Context) error
}

func (b *Backend) Ping(ctx context.Context) error {
	return b.ping(ctx)
}

func (b *Backend) Close() error {
	return b.close()
}

// Migrate creates tables or indexes. It is a no-op for the memory driver.
func (b *Backend) Migrate(ctx context.Context) error {
	if b.migrate == nil {
		return nil
	}
	return b.migrate(ctx)
}

func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		return NewMemory(memory.New()), nil

	case config.DriverPostgres:
		db, err := core.NewDatabase(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		s := postgres.New(db.DB)
		return &Backend{
			Driver:   config.DriverPostgres,
			Members:  s.Members(),
			Payments: s.Payments(),
			Admins:   s.Admins(),
			ping:     db.Ping,
			close:    db.Close,
			migrate:  s.Migrate,
		}, nil

	case config.DriverMongo:
		m, err := core.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		s := mongostore.New(m.DB)
		return &Backend{
			Driver:   config.DriverMongo,
			Members:  s.Members(),
			Payments: s.Payments(),
			Admins:   s.Admins(),
			ping:     m.Ping,
			close:    m.Close,
			migrate:  s.EnsureIndexes,
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// NewMemory wraps an in-process store; tests use it directly.
func NewMemory(s *memory.Store) *Backend {
	return &Backend{
		Driver:   config.DriverMemory,
		Members:  s.Members(),
		Payments: s.Payments(),
		Admins:   s.Admins(),
		ping:     s.Ping,
		close:    s.Close,
	}
}
