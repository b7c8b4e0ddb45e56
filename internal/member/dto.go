// AngelaMos | 2026
// dto.go

package member

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tharavad/dues-api/internal/payment"
)

// Year accepts both 2024 and "2024" since form clients post strings.
type Year int

func (y *Year) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*y = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("year %q is not an integer", s)
		}
		*y = Year(n)
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("year must be an integer: %w", err)
	}
	*y = Year(n)
	return nil
}

type CreateMemberRequest struct {
	MemberID string `json:"memberId" validate:"required,max=32"`
	Name     string `json:"name"     validate:"required,max=100"`
	Phone    string `json:"phone"    validate:"required,max=32"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	JoinYear Year   `json:"joinYear" validate:"required"`
}

// UpdateMemberRequest applies only the keys present in the body. Blank strings
// and a zero joinYear count as absent, so a form that posts every field
// never clears one.
type UpdateMemberRequest struct {
	Name     *string `json:"name,omitempty"     validate:"omitempty,max=100"`
	Phone    *string `json:"phone,omitempty"    validate:"omitempty,max=32"`
	Email    *string `json:"email,omitempty"    validate:"omitempty,email,max=255"`
	JoinYear *Year   `json:"joinYear,omitempty"`
}

// normalize trims the present values and drops the blank ones.
func (r *UpdateMemberRequest) normalize() {
	r.Name = trimmedOrNil(r.Name)
	r.Phone = trimmedOrNil(r.Phone)
	r.Email = trimmedOrNil(r.Email)
	if r.JoinYear != nil && *r.JoinYear == 0 {
		r.JoinYear = nil
	}
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

type ListParams struct {
	Search   string
	JoinYear int
}

// Profile is a member with its full dues history.
type Profile struct {
	Member
	Payments []payment.Payment
}

type MemberResponse struct {
	ID        string                    `json:"id"`
	MemberID  string                    `json:"memberId"`
	Name      string                    `json:"name"`
	Phone     string                    `json:"phone"`
	Email     string                    `json:"email"`
	JoinYear  int                       `json:"joinYear"`
	CreatedAt time.Time                 `json:"createdAt"`
	UpdatedAt time.Time                 `json:"updatedAt"`
	Payments  []payment.PaymentResponse `json:"payments"`
}

func ToMemberResponse(p *Profile) MemberResponse {
	return MemberResponse{
		ID:        p.ID,
		MemberID:  p.MemberID,
		Name:      p.Name,
		Phone:     p.Phone,
		Email:     p.Email,
		JoinYear:  p.JoinYear,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		Payments:  payment.ToPaymentResponseList(p.Payments),
	}
}

func ToMemberResponseList(profiles []Profile) []MemberResponse {
	responses := make([]MemberResponse, 0, len(profiles))
	for i := range profiles {
		responses = append(responses, ToMemberResponse(&profiles[i]))
	}
	return responses
}
