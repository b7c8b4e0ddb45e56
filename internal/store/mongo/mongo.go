// AngelaMos | 2026
// mongo.go

// Package mongo implements the repositories on MongoDB collections. Writes
// that touch two collections run as sequential operations, not
// transactions, since standalone servers do not support them.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	membersCollection  = "members"
	paymentsCollection = "payments"
	adminsCollection   = "admins"
)

type Store struct {
	db *mongo.Database
}

func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// EnsureIndexes creates the unique and lookup indexes. It is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		membersCollection: {
			{
				Keys:    bson.D{{Key: "member_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "join_year", Value: 1}}},
		},
		paymentsCollection: {
			{
				Keys:    bson.D{{Key: "member_ref", Value: 1}, {Key: "year", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "year", Value: 1}, {Key: "status", Value: 1}}},
		},
		adminsCollection: {
			{
				Keys:    bson.D{{Key: "username", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
	}

	for name, models := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}

	return nil
}

func (s *Store) Members() *MemberRepository {
	return &MemberRepository{
		members:  s.db.Collection(membersCollection),
		payments: s.db.Collection(paymentsCollection),
	}
}

func (s *Store) Payments() *PaymentRepository {
	return &PaymentRepository{payments: s.db.Collection(paymentsCollection)}
}

func (s *Store) Admins() *AdminRepository {
	return &AdminRepository{admins: s.db.Collection(adminsCollection)}
}

// containsRegex matches s anywhere, case-insensitively, with regex
// metacharacters taken literally.
func containsRegex(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
