// AngelaMos | 2026
// member.go

package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tharavad/dues-api/internal/core"
	"github.com/tharavad/dues-api/internal/member"
	"github.com/tharavad/dues-api/internal/payment"
)

var searchKeys = map[member.SearchField]string{
	member.FieldName:     "name",
	member.FieldMemberID: "member_id",
	member.FieldPhone:    "phone",
	member.FieldEmail:    "email",
}

type MemberRepository struct {
	members  *mongo.Collection
	payments *mongo.Collection
}

// Create inserts the member, then its dues rows. If the second step fails
// the member is removed again so it is never visible without dues.
func (r *MemberRepository) Create(
	ctx context.Context,
	m *member.Member,
	dues []payment.Payment,
) error {
	if _, err := r.members.InsertOne(ctx, m); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("create member: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create member: %w", err)
	}

	if len(dues) == 0 {
		return nil
	}

	docs := make([]any, 0, len(dues))
	for _, p := range dues {
		docs = append(docs, p)
	}

	if _, err := r.payments.InsertMany(ctx, docs); err != nil {
		if _, delErr := r.members.DeleteOne(ctx, bson.M{"_id": m.ID}); delErr != nil {
			slog.Error("rollback member after dues failure",
				"member_id", m.MemberID,
				"error", delErr,
			)
		}
		return fmt.Errorf("provision dues: %w", err)
	}

	return nil
}

func (r *MemberRepository) GetByID(
	ctx context.Context,
	id string,
) (*member.Member, error) {
	var m member.Member
	err := r.members.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if isNoDocuments(err) {
		return nil, fmt.Errorf("get member: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}

	return &m, nil
}

func (r *MemberRepository) GetByIDs(
	ctx context.Context,
	ids []string,
) ([]member.Member, error) {
	if len(ids) == 0 {
		return []member.Member{}, nil
	}

	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *MemberRepository) ExistsByMemberID(
	ctx context.Context,
	memberID string,
) (bool, error) {
	n, err := r.members.CountDocuments(ctx,
		bson.M{"member_id": memberID},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, fmt.Errorf("check member id: %w", err)
	}
	return n > 0, nil
}

func (r *MemberRepository) Update(ctx context.Context, m *member.Member) error {
	res, err := r.members.UpdateOne(ctx,
		bson.M{"_id": m.ID},
		bson.M{"$set": bson.M{
			"name":       m.Name,
			"phone":      m.Phone,
			"email":      m.Email,
			"join_year":  m.JoinYear,
			"updated_at": m.UpdatedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update member: %w", core.ErrNotFound)
	}

	return nil
}

// Delete removes the member, then its dues rows. A failure between the two
// steps leaves orphaned rows that still appear in the payment ledger and
// the dashboard totals.
func (r *MemberRepository) Delete(ctx context.Context, id string) error {
	res, err := r.members.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete member: %w", core.ErrNotFound)
	}

	if _, err := r.payments.DeleteMany(ctx, bson.M{"member_ref": id}); err != nil {
		return fmt.Errorf("delete member payments: %w", err)
	}

	return nil
}

func (r *MemberRepository) List(
	ctx context.Context,
	filter member.Filter,
) ([]member.Member, error) {
	return r.find(ctx, memberFilter(filter))
}

func (r *MemberRepository) Count(ctx context.Context) (int, error) {
	n, err := r.members.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return int(n), nil
}

func (r *MemberRepository) find(
	ctx context.Context,
	filter bson.M,
) ([]member.Member, error) {
	cursor, err := r.members.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "member_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find members: %w", err)
	}

	members := []member.Member{}
	if err := cursor.All(ctx, &members); err != nil {
		return nil, fmt.Errorf("decode members: %w", err)
	}

	return members, nil
}

func memberFilter(filter member.Filter) bson.M {
	query := bson.M{}

	if filter.JoinYear != 0 {
		query["join_year"] = filter.JoinYear
	}

	if filter.Search != "" {
		ors := bson.A{}
		for _, field := range filter.SearchFields() {
			key, ok := searchKeys[field]
			if !ok {
				continue
			}
			ors = append(ors, bson.M{key: containsRegex(filter.Search)})
		}
		if len(ors) > 0 {
			query["$or"] = ors
		}
	}

	return query
}

var _ member.Repository = (*MemberRepository)(nil)
