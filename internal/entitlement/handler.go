package entitlement

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pressops/kiosk/internal/domain"
	"github.com/pressops/kiosk/internal/pkg/httputil"
)

// Handler handles HTTP requests for subscriptions and the newsstand view.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

var errorMappings = []httputil.ErrorMapping{
	{Error: ErrSubscriptionNotFound, Status: http.StatusNotFound},
	{Error: ErrUserNotFound, Status: http.StatusNotFound},
	{Error: ErrMagazineNotFound, Status: http.StatusNotFound},
	{Error: ErrAlreadyCancelled, Status: http.StatusConflict},
}

// NewHandler creates a new entitlement handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers authenticated subscription routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/newsstand", h.Newsstand)
	r.Route("/subscriptions", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/activate", h.Activate)
		r.Post("/cancel", h.Cancel)
		r.Delete("/{id}", h.CancelOne)
	})
}

// ActivateRequest represents the activation request body. UserID is optional
// and admin-only; it defaults to the authenticated user.
type ActivateRequest struct {
	MagazineID string `json:"magazine_id" validate:"required,uuid4"`
	UserID     string `json:"user_id" validate:"omitempty,uuid4"`
}

// Activate handles POST /subscriptions/activate.
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	var req ActivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	userID, ok := h.targetUser(w, r, req.UserID)
	if !ok {
		return
	}

	sub, err := h.service.Activate(r.Context(), userID, req.MagazineID)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusCreated, sub)
}

// CancelRequest represents the pair-wide cancellation request body.
type CancelRequest struct {
	MagazineID string `json:"magazine_id" validate:"required,uuid4"`
	UserID     string `json:"user_id" validate:"omitempty,uuid4"`
}

// CancelResponse reports how many subscription rows were cancelled.
type CancelResponse struct {
	Cancelled int64 `json:"cancelled"`
}

// Cancel handles POST /subscriptions/cancel. It cancels every active
// subscription the user holds for the magazine.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	userID, ok := h.targetUser(w, r, req.UserID)
	if !ok {
		return
	}

	count, err := h.service.CancelAll(r.Context(), userID, req.MagazineID)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, CancelResponse{Cancelled: count})
}

// CancelOne handles DELETE /subscriptions/{id}. Only the owner or an admin
// may cancel a subscription.
func (h *Handler) CancelOne(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid subscription id")
		return
	}

	sub, err := h.service.GetSubscriptionByID(r.Context(), id)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	if sub.UserID != httputil.GetUserID(r.Context()) &&
		httputil.GetRole(r.Context()) != domain.RoleAdmin {
		httputil.Error(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := h.service.CancelSubscription(r.Context(), id); err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /subscriptions. Without a user_id filter it lists every
// row and is admin-only; with user_id it lists that user's history, which
// non-admins may request only for themselves.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")

	if userID == "" {
		if httputil.GetRole(r.Context()) != domain.RoleAdmin {
			httputil.Error(w, http.StatusForbidden, "forbidden")
			return
		}

		subs, err := h.service.ListAll(r.Context())
		if err != nil {
			httputil.HandleError(r.Context(), w, err, errorMappings)
			return
		}
		httputil.Success(w, http.StatusOK, subs)
		return
	}

	if _, err := uuid.Parse(userID); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if userID != httputil.GetUserID(r.Context()) &&
		httputil.GetRole(r.Context()) != domain.RoleAdmin {
		httputil.Error(w, http.StatusForbidden, "forbidden")
		return
	}

	subs, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, subs)
}

// Newsstand handles GET /newsstand for the authenticated user.
func (h *Handler) Newsstand(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Newsstand(r.Context(), httputil.GetUserID(r.Context()))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, entries)
}

// targetUser resolves which user a mutation applies to. Overriding the
// authenticated user requires the admin role.
func (h *Handler) targetUser(w http.ResponseWriter, r *http.Request, requested string) (string, bool) {
	callerID := httputil.GetUserID(r.Context())
	if requested == "" || requested == callerID {
		return callerID, true
	}
	if httputil.GetRole(r.Context()) != domain.RoleAdmin {
		httputil.Error(w, http.StatusForbidden, "forbidden")
		return "", false
	}
	return requested, true
}
