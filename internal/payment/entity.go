// AngelaMos | 2026
// entity.go

package payment

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

const (
	StatusDone    = "done"
	StatusNotDone = "not-done"
)

type Payment struct {
	ID        string    `db:"id"         bson:"_id"`
	MemberRef string    `db:"member_ref" bson:"member_ref"`
	Year      int       `db:"year"       bson:"year"`
	Amount    int64     `db:"amount"     bson:"amount"`
	Status    string    `db:"status"     bson:"status"`
	CreatedAt time.Time `db:"created_at" bson:"created_at"`
	UpdatedAt time.Time `db:"updated_at" bson:"updated_at"`
}

func (p *Payment) IsDone() bool {
	return p.Status == StatusDone
}

func ValidStatus(status string) bool {
	return status == StatusDone || status == StatusNotDone
}

// NewDue builds the row provisioned for a member when it is created.
// Amount is fixed here and never recomputed.
func NewDue(memberRef string, year int, amount int64, now time.Time) Payment {
	return Payment{
		ID:        uuid.New().String(),
		MemberRef: memberRef,
		Year:      year,
		Amount:    amount,
		Status:    StatusNotDone,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Filter is the ledger query predicate. Every store must return exactly
// the rows Matches accepts.
type Filter struct {
	Year   int
	Status string
	// MemberRefs restricts results to the listed owners when non-nil.
	// An empty non-nil slice matches nothing.
	MemberRefs []string
}

func (f Filter) MatchesNothing() bool {
	return f.MemberRefs != nil && len(f.MemberRefs) == 0
}

func (f Filter) Matches(p *Payment) bool {
	if f.Year != 0 && p.Year != f.Year {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.MemberRefs != nil && !slices.Contains(f.MemberRefs, p.MemberRef) {
		return false
	}
	return true
}

// Less orders ledger rows by year, then creation time, then id.
func Less(a, b *Payment) bool {
	if a.Year != b.Year {
		return a.Year < b.Year
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// Owner is the display slice of a member that ledger rows are joined to.
type Owner struct {
	ID       string
	MemberID string
	Name     string
}

// Entry is a ledger row joined to its owner. Owner fields are empty when
// the member was removed between the two lookups.
type Entry struct {
	Payment
	MemberCode string
	MemberName string
}
