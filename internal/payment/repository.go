// AngelaMos | 2026
// repository.go

package payment

import (
	"context"
)

// Repository is implemented by each store backend under internal/store.
// Rows are only ever inserted by the member directory, so there is no
// Create here.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Payment, error)
	UpdateStatus(ctx context.Context, id, status string) (*Payment, error)
	List(ctx context.Context, filter Filter) ([]Payment, error)
	ListByMembers(ctx context.Context, memberRefs []string) ([]Payment, error)
}
