// AngelaMos | 2026
// admin.go

package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tharavad/dues-api/internal/auth"
	"github.com/tharavad/dues-api/internal/core"
)

type AdminRepository struct {
	admins *mongo.Collection
}

func (r *AdminRepository) GetByUsername(
	ctx context.Context,
	username string,
) (*auth.Admin, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *AdminRepository) GetByID(
	ctx context.Context,
	id string,
) (*auth.Admin, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *AdminRepository) Create(ctx context.Context, admin *auth.Admin) error {
	if _, err := r.admins.InsertOne(ctx, admin); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("create admin: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

func (r *AdminRepository) findOne(
	ctx context.Context,
	filter bson.M,
) (*auth.Admin, error) {
	var a auth.Admin
	err := r.admins.FindOne(ctx, filter).Decode(&a)
	if isNoDocuments(err) {
		return nil, fmt.Errorf("get admin: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get admin: %w", err)
	}
	return &a, nil
}

var _ auth.AdminRepository = (*AdminRepository)(nil)
