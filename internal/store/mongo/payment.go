// AngelaMos | 2026
// payment.go

package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tharavad/dues-api/internal/core"
	"github.com/tharavad/dues-api/internal/payment"
)

type PaymentRepository struct {
	payments *mongo.Collection
}

func (r *PaymentRepository) GetByID(
	ctx context.Context,
	id string,
) (*payment.Payment, error) {
	var p payment.Payment
	err := r.payments.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if isNoDocuments(err) {
		return nil, fmt.Errorf("get payment: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}

	return &p, nil
}

func (r *PaymentRepository) UpdateStatus(
	ctx context.Context,
	id, status string,
) (*payment.Payment, error) {
	var p payment.Payment
	err := r.payments.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if isNoDocuments(err) {
		return nil, fmt.Errorf("update payment: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update payment: %w", err)
	}

	return &p, nil
}

func (r *PaymentRepository) List(
	ctx context.Context,
	filter payment.Filter,
) ([]payment.Payment, error) {
	if filter.MatchesNothing() {
		return []payment.Payment{}, nil
	}

	cursor, err := r.payments.Find(ctx, paymentFilter(filter),
		options.Find().SetSort(bson.D{
			{Key: "year", Value: 1},
			{Key: "created_at", Value: 1},
			{Key: "_id", Value: 1},
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("find payments: %w", err)
	}

	payments := []payment.Payment{}
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("decode payments: %w", err)
	}

	return payments, nil
}

func (r *PaymentRepository) ListByMembers(
	ctx context.Context,
	memberRefs []string,
) ([]payment.Payment, error) {
	if memberRefs == nil {
		memberRefs = []string{}
	}
	return r.List(ctx, payment.Filter{MemberRefs: memberRefs})
}

func paymentFilter(filter payment.Filter) bson.M {
	query := bson.M{}

	if filter.Year != 0 {
		query["year"] = filter.Year
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.MemberRefs != nil {
		query["member_ref"] = bson.M{"$in": filter.MemberRefs}
	}

	return query
}

var _ payment.Repository = (*PaymentRepository)(nil)
