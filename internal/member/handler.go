// AngelaMos | 2026
// handler.go

package member

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
	r.Route("/members", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.ListMembers)
		r.Post("/", h.CreateMember)
		r.Get("/{memberID}", h.GetMember)
		r.Put("/{memberID}", h.UpdateMember)
		r.Delete("/{memberID}", h.DeleteMember)
	})
}

// ListMembers supports ?search= across name, member code, phone and email
// and ?year= on the join year.
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := ListParams{Search: q.Get("search")}
	if raw := q.Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			core.BadRequest(w, "year must be an integer")
			return
		}
		params.JoinYear = year
	}

	profiles, err := h.service.List(r.Context(), params)
	if err != nil {
		core.JSONError(w, core.FromError(err, "member"))
		return
	}

	core.OK(w, ToMemberResponseList(profiles))
}

func (h *Handler) GetMember(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Get(r.Context(), chi.URLParam(r, "memberID"))
	if err != nil {
		core.JSONError(w, core.FromError(err, "member"))
		return
	}

	core.OK(w, ToMemberResponse(profile))
}

func (h *Handler) CreateMember(w http.ResponseWriter, r *http.Request) {
	var req CreateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	profile, err := h.service.Create(r.Context(), req)
	if err != nil {
		core.JSONError(w, core.FromError(err, "member"))
		return
	}

	core.Created(w, ToMemberResponse(profile))
}

func (h *Handler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	var req UpdateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	req.normalize()
	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	profile, err := h.service.Update(r.Context(), chi.URLParam(r, "memberID"), req)
	if err != nil {
		core.JSONError(w, core.FromError(err, "member"))
		return
	}

	core.OK(w, ToMemberResponse(profile))
}

func (h *Handler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "memberID")); err != nil {
		core.JSONError(w, core.FromError(err, "member"))
		return
	}

	core.OK(w, map[string]string{"message": "member deleted"})
}
