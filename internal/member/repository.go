// AngelaMos | 2026
// repository.go

package member

import (
	"context"

	"github.com/tharavad/dues-api/internal/payment"
)

// Repository is implemented by each store backend under internal/store.
type Repository interface {
	// Create persists the member together with its provisioned dues rows.
	// A taken member code yields core.ErrDuplicateKey.
	Create(ctx context.Context, m *Member, dues []payment.Payment) error
	GetByID(ctx context.Context, id string) (*Member, error)
	GetByIDs(ctx context.Context, ids []string) ([]Member, error)
	ExistsByMemberID(ctx context.Context, memberID string) (bool, error)
	Update(ctx context.Context, m *Member) error
	// Delete removes the member and then its dues rows.
	Delete(ctx context.Context, id string) error
	// List returns matching members ordered by member code ascending.
	List(ctx context.Context, filter Filter) ([]Member, error)
	Count(ctx context.Context) (int, error)
}
