// AngelaMos | 2026
// entity.go

package member

import (
	"strings"
	"time"
)

type Member struct {
	ID        string    `db:"id"         bson:"_id"`
	MemberID  string    `db:"member_id"  bson:"member_id"`
	Name      string    `db:"name"       bson:"name"`
	Phone     string    `db:"phone"      bson:"phone"`
	Email     string    `db:"email"      bson:"email"`
	JoinYear  int       `db:"join_year"  bson:"join_year"`
	CreatedAt time.Time `db:"created_at" bson:"created_at"`
	UpdatedAt time.Time `db:"updated_at" bson:"updated_at"`
}

// NormalizeMemberID returns the stored form of an external member code.
func NormalizeMemberID(memberID string) string {
	return strings.ToUpper(strings.TrimSpace(memberID))
}

type SearchField string

const (
	FieldName     SearchField = "name"
	FieldMemberID SearchField = "member_id"
	FieldPhone    SearchField = "phone"
	FieldEmail    SearchField = "email"
)

var (
	// DirectoryFields are searched by the member list.
	DirectoryFields = []SearchField{FieldName, FieldMemberID, FieldPhone, FieldEmail}
	// OwnerFields are searched when the ledger filters by member.
	OwnerFields = []SearchField{FieldName, FieldMemberID}
)

func (m *Member) Field(f SearchField) string {
	switch f {
	case FieldName:
		return m.Name
	case FieldMemberID:
		return m.MemberID
	case FieldPhone:
		return m.Phone
	case FieldEmail:
		return m.Email
	default:
		return ""
	}
}

// Filter is the directory query predicate: a case-insensitive substring
// match of Search over Fields (OR), combined with an exact JoinYear (AND).
type Filter struct {
	Search   string
	Fields   []SearchField
	JoinYear int
}

func (f Filter) SearchFields() []SearchField {
	if len(f.Fields) == 0 {
		return DirectoryFields
	}
	return f.Fields
}

func (f Filter) Matches(m *Member) bool {
	if f.JoinYear != 0 && m.JoinYear != f.JoinYear {
		return false
	}

	if f.Search == "" {
		return true
	}

	needle := strings.ToLower(f.Search)
	for _, field := range f.SearchFields() {
		if strings.Contains(strings.ToLower(m.Field(field)), needle) {
			return true
		}
	}

	return false
}
