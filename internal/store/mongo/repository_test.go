// AngelaMos | 2026
// repository_test.go

package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/tharavad/dues-api/internal/auth"
	"github.com/tharavad/dues-api/internal/core"
	"github.com/tharavad/dues-api/internal/member"
	"github.com/tharavad/dues-api/internal/payment"
)

func newMockT(t *testing.T) *mtest.T {
	t.Helper()
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func sampleMember() (*member.Member, []payment.Payment) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	m := &member.Member{
		ID:        "m1",
		MemberID:  "T001",
		Name:      "Ravi Kumar",
		Phone:     "9876543210",
		Email:     "ravi@example.com",
		JoinYear:  2020,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return m, []payment.Payment{
		payment.NewDue(m.ID, 2023, 1000, now),
		payment.NewDue(m.ID, 2024, 1000, now),
	}
}

func memberDoc(id, memberID, name string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "member_id", Value: memberID},
		{Key: "name", Value: name},
		{Key: "phone", Value: "98765"},
		{Key: "email", Value: "x@example.com"},
		{Key: "join_year", Value: 2020},
	}
}

func startedCommands(mt *mtest.T) []string {
	var names []string
	for _, evt := range mt.GetAllStartedEvents() {
		names = append(names, evt.CommandName)
	}
	return names
}

func TestMongoMemberCreate(t *testing.T) {
	mt := newMockT(t)
	ctx := context.Background()

	mt.Run("member and dues", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
		)

		m, dues := sampleMember()
		require.NoError(mt, New(mt.DB).Members().Create(ctx, m, dues))
		assert.Equal(mt, []string{"insert", "insert"}, startedCommands(mt))
	})

	mt.Run("duplicate member id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		m, dues := sampleMember()
		err := New(mt.DB).Members().Create(ctx, m, dues)
		assert.ErrorIs(mt, err, core.ErrDuplicateKey)
		assert.Equal(mt, []string{"insert"}, startedCommands(mt))
	})

	mt.Run("dues failure removes member", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateCommandErrorResponse(mtest.CommandError{
				Code:    2,
				Message: "bad value",
				Name:    "BadValue",
			}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)

		m, dues := sampleMember()
		err := New(mt.DB).Members().Create(ctx, m, dues)
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "provision dues")
		assert.Equal(mt, []string{"insert", "insert", "delete"}, startedCommands(mt))
	})
}

func TestMongoMemberLookups(t *testing.T) {
	mt := newMockT(t)
	ctx := context.Background()

	mt.Run("get by id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "dues.members", mtest.FirstBatch,
			memberDoc("m1", "T001", "Ravi Kumar"),
		))

		got, err := New(mt.DB).Members().GetByID(ctx, "m1")
		require.NoError(mt, err)
		assert.Equal(mt, "T001", got.MemberID)
		assert.Equal(mt, 2020, got.JoinYear)
	})

	mt.Run("get by id not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "dues.members", mtest.FirstBatch))

		_, err := New(mt.DB).Members().GetByID(ctx, "missing")
		assert.ErrorIs(mt, err, core.ErrNotFound)
	})

	mt.Run("list decodes in order", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "dues.members", mtest.FirstBatch,
			memberDoc("m1", "T001", "Ravi Kumar"),
			memberDoc("m2", "T002", "Anu Nair"),
		))

		got, err := New(mt.DB).Members().List(ctx, member.Filter{})
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, "T002", got[1].MemberID)
	})

	mt.Run("list empty is not nil", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "dues.members", mtest.FirstBatch))

		got, err := New(mt.DB).Members().List(ctx, member.Filter{Search: "zz"})
		require.NoError(mt, err)
		assert.NotNil(mt, got)
		assert.Empty(mt, got)
	})

	mt.Run("get by no ids skips the round trip", func(mt *mtest.T) {
		got, err := New(mt.DB).Members().GetByIDs(ctx, nil)
		require.NoError(mt, err)
		assert.Empty(mt, got)
		assert.Empty(mt, startedCommands(mt))
	})

	mt.Run("count", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "dues.members", mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(3)}},
		))

		n, err := New(mt.DB).Members().Count(ctx)
		require.NoError(mt, err)
		assert.Equal(mt, 3, n)
	})
}

func TestMongoMemberWrites(t *testing.T) {
	mt := newMockT(t)
	ctx := context.Background()

	mt.Run("update unknown member", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		m, _ := sampleMember()
		err := New(mt.DB).Members().Update(ctx, m)
		assert.ErrorIs(mt, err, core.ErrNotFound)
	})

	mt.Run("delete cascades to dues", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}),
		)

		require.NoError(mt, New(mt.DB).Members().Delete(ctx, "m1"))
		assert.Equal(mt, []string{"delete", "delete"}, startedCommands(mt))
	})

	mt.Run("delete unknown member leaves dues alone", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := New(mt.DB).Members().Delete(ctx, "missing")
		assert.ErrorIs(mt, err, core.ErrNotFound)
		assert.Equal(mt, []string{"delete"}, startedCommands(mt))
	})
}

func TestMongoPaymentRepository(t *testing.T) {
	mt := newMockT(t)
	ctx := context.Background()

	mt.Run("update status returns the new row", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: bson.D{
				{Key: "_id", Value: "p1"},
				{Key: "member_ref", Value: "m1"},
				{Key: "year", Value: 2024},
				{Key: "amount", Value: int64(1000)},
				{Key: "status", Value: payment.StatusDone},
			}},
		})

		got, err := New(mt.DB).Payments().UpdateStatus(ctx, "p1", payment.StatusDone)
		require.NoError(mt, err)
		assert.Equal(mt, payment.StatusDone, got.Status)
		assert.Equal(mt, 2024, got.Year)
	})

	mt.Run("update status unknown payment", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: nil},
		})

		_, err := New(mt.DB).Payments().UpdateStatus(ctx, "missing", payment.StatusDone)
		assert.ErrorIs(mt, err, core.ErrNotFound)
	})

	mt.Run("list by no members skips the round trip", func(mt *mtest.T) {
		got, err := New(mt.DB).Payments().ListByMembers(ctx, nil)
		require.NoError(mt, err)
		assert.Empty(mt, got)
		assert.Empty(mt, startedCommands(mt))
	})
}

func TestMongoAdminRepository(t *testing.T) {
	mt := newMockT(t)
	ctx := context.Background()

	mt.Run("duplicate username", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		err := New(mt.DB).Admins().Create(ctx, &auth.Admin{
			ID:           "a1",
			Username:     "admin",
			PasswordHash: "hash",
			CreatedAt:    time.Now().UTC(),
		})
		assert.ErrorIs(mt, err, core.ErrDuplicateKey)
	})

	mt.Run("unknown username", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "dues.admins", mtest.FirstBatch))

		_, err := New(mt.DB).Admins().GetByUsername(ctx, "nobody")
		assert.ErrorIs(mt, err, core.ErrNotFound)
	})
}

func TestEnsureIndexesKeepsOneDueRowPerMemberYear(t *testing.T) {
	mt := newMockT(t)

	mt.Run("creates every collection's indexes", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
		)

		require.NoError(mt, New(mt.DB).EnsureIndexes(context.Background()))

		var paymentIndexes bson.Raw
		for _, evt := range mt.GetAllStartedEvents() {
			if name, ok := evt.Command.Lookup("createIndexes").StringValueOK(); ok && name == paymentsCollection {
				paymentIndexes = evt.Command
			}
		}
		require.NotNil(mt, paymentIndexes)

		indexes, err := paymentIndexes.Lookup("indexes").Array().Values()
		require.NoError(mt, err)

		var unique []bson.Raw
		for _, v := range indexes {
			doc := v.Document()
			if b, ok := doc.Lookup("unique").BooleanOK(); ok && b {
				unique = append(unique, doc)
			}
		}
		require.Len(mt, unique, 1)

		keys := unique[0].Lookup("key").Document()
		_, err = keys.LookupErr("member_ref")
		assert.NoError(mt, err)
		_, err = keys.LookupErr("year")
		assert.NoError(mt, err)
	})
}
