// AngelaMos | 2026
// dto.go

package payment

import (
	"time"
)

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=done not-done"`
}

type ListParams struct {
	Year   int
	Status string
	Search string
}

type PaymentResponse struct {
	ID         string    `json:"id"`
	MemberRef  string    `json:"memberRef"`
	MemberID   string    `json:"memberId,omitempty"`
	MemberName string    `json:"memberName,omitempty"`
	Year       int       `json:"year"`
	Amount     int64     `json:"amount"`
	Status     string    `json:"status"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func ToPaymentResponse(p *Payment) PaymentResponse {
	return PaymentResponse{
		ID:        p.ID,
		MemberRef: p.MemberRef,
		Year:      p.Year,
		Amount:    p.Amount,
		Status:    p.Status,
		UpdatedAt: p.UpdatedAt,
	}
}

func ToPaymentResponseList(payments []Payment) []PaymentResponse {
	responses := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, ToPaymentResponse(&payments[i]))
	}
	return responses
}

func ToEntryResponse(e *Entry) PaymentResponse {
	resp := ToPaymentResponse(&e.Payment)
	resp.MemberID = e.MemberCode
	resp.MemberName = e.MemberName
	return resp
}

func ToEntryResponseList(entries []Entry) []PaymentResponse {
	responses := make([]PaymentResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, ToEntryResponse(&entries[i]))
	}
	return responses
}
