package catalog

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pressops/kiosk/internal/domain"
	"github.com/pressops/kiosk/internal/pkg/httputil"
)

// Handler handles HTTP requests for the catalog module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new catalog handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterPublicRoutes registers read-only catalog routes.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/magazines", h.ListMagazines)
	r.Get("/magazines/{id}", h.GetMagazine)
}

// RegisterAdminRoutes registers catalog management routes.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/magazines", h.CreateMagazine)
	r.Patch("/magazines/{id}", h.UpdateMagazine)
	r.Delete("/magazines/{id}", h.DeleteMagazine)
	r.Post("/magazines/{id}/restore", h.RestoreMagazine)
}

// CreateMagazineRequest represents the request body for creating a magazine.
type CreateMagazineRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=255"`
	Image string `json:"image" validate:"omitempty,max=2048"`
	Price int    `json:"price" validate:"gte=0"`
}

// ToDomain converts the request to a domain model.
func (r *CreateMagazineRequest) ToDomain() *domain.Magazine {
	return &domain.Magazine{
		Name:  r.Name,
		Image: r.Image,
		Price: r.Price,
	}
}

// UpdateMagazineRequest represents the request body for updating a magazine.
type UpdateMagazineRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=255"`
	Image string `json:"image" validate:"omitempty,max=2048"`
	Price int    `json:"price" validate:"gte=0"`
}

// CreateMagazine handles POST /magazines.
func (h *Handler) CreateMagazine(w http.ResponseWriter, r *http.Request) {
	var req CreateMagazineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	magazine := req.ToDomain()
	if err := h.service.CreateMagazine(r.Context(), magazine); err != nil {
		h.handleServiceError(w, err)
		return
	}

	httputil.Success(w, http.StatusCreated, magazine)
}

// GetMagazine handles GET /magazines/{id}.
func (h *Handler) GetMagazine(w http.ResponseWriter, r *http.Request) {
	id, ok := h.magazineID(w, r)
	if !ok {
		return
	}

	magazine, err := h.service.GetMagazineByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	httputil.Success(w, http.StatusOK, magazine)
}

// ListMagazines handles GET /magazines.
func (h *Handler) ListMagazines(w http.ResponseWriter, r *http.Request) {
	filter := MagazineFilter{}

	if r.URL.Query().Get("include_deleted") == "true" {
		filter.IncludeDeleted = true
	}

	magazines, err := h.service.ListMagazines(r.Context(), filter)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	httputil.Success(w, http.StatusOK, magazines)
}

// UpdateMagazine handles PATCH /magazines/{id}.
func (h *Handler) UpdateMagazine(w http.ResponseWriter, r *http.Request) {
	id, ok := h.magazineID(w, r)
	if !ok {
		return
	}

	existing, err := h.service.GetMagazineByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	var req UpdateMagazineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	existing.Name = req.Name
	existing.Image = req.Image
	existing.Price = req.Price

	if err := h.service.UpdateMagazine(r.Context(), existing); err != nil {
		h.handleServiceError(w, err)
		return
	}

	httputil.Success(w, http.StatusOK, existing)
}

// DeleteMagazine handles DELETE /magazines/{id}.
func (h *Handler) DeleteMagazine(w http.ResponseWriter, r *http.Request) {
	id, ok := h.magazineID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteMagazine(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RestoreMagazine handles POST /magazines/{id}/restore.
func (h *Handler) RestoreMagazine(w http.ResponseWriter, r *http.Request) {
	id, ok := h.magazineID(w, r)
	if !ok {
		return
	}

	if err := h.service.RestoreMagazine(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	magazine, err := h.service.GetMagazineByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	httputil.Success(w, http.StatusOK, magazine)
}

// magazineID extracts and validates the id path parameter.
func (h *Handler) magazineID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid magazine id")
		return "", false
	}
	return id, true
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMagazineNotFound):
		httputil.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAlreadyDeleted), errors.Is(err, ErrNotDeleted):
		httputil.Error(w, http.StatusConflict, err.Error())
	default:
		slog.Error("internal error", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal error")
	}
}
