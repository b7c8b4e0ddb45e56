// AngelaMos | 2026
// handler_test.go

package payment_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/tharavad/dues-api/internal/payment"
)

func TestPaymentHandler(t *testing.T) {
	f := newFixture(t)
	due := f.addMember(t, "T001", "Ravi Kumar").Payments[0]

	r := chi.NewRouter()
	payment.NewHandler(f.payments).RegisterRoutes(r, func(next http.Handler) http.Handler {
		return next
	})

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{"list", http.MethodGet, "/payments?year=2023", "", http.StatusOK, `"memberId":"T001"`},
		{"bad year", http.MethodGet, "/payments?year=x", "", http.StatusBadRequest, "year must be an integer"},
		{"mark done", http.MethodPut, "/payments/" + due.ID, `{"status":"done"}`, http.StatusOK, `"status":"done"`},
		{"bad status", http.MethodPut, "/payments/" + due.ID, `{"status":"paid"}`, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"unknown id", http.MethodPut, "/payments/missing", `{"status":"done"}`, http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}
