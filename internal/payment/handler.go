// AngelaMos | 2026
// handler.go

package payment

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tharavad/dues-api/internal/core"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/payments", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.ListPayments)
		r.Put("/{paymentID}", h.UpdateStatus)
	})
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := ListParams{
		Status: q.Get("status"),
		Search: q.Get("search"),
	}

	if raw := q.Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			core.BadRequest(w, "year must be an integer")
			return
		}
		params.Year = year
	}

	entries, err := h.service.List(r.Context(), params)
	if err != nil {
		core.JSONError(w, core.FromError(err, "payment"))
		return
	}

	core.OK(w, ToEntryResponseList(entries))
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "paymentID")

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.JSONError(w, core.InvalidArgumentError(core.FormatValidationError(err)))
		return
	}

	entry, err := h.service.UpdateStatus(r.Context(), paymentID, req.Status)
	if err != nil {
		core.JSONError(w, core.FromError(err, "payment"))
		return
	}

	core.OK(w, ToEntryResponse(entry))
}
