package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"civicfund/internal/registration/models"
	"civicfund/internal/registration/service"
	id "civicfund/pkg/domain"
	dErrors "civicfund/pkg/domain-errors"
	"civicfund/pkg/platform/httputil"
	"civicfund/pkg/requestcontext"
)

// Service defines the registration operations the HTTP layer needs.
type Service interface {
	Submit(ctx context.Context, app service.Application) (*models.Registration, error)
	Get(ctx context.Context, registrationID id.RegistrationID) (*models.Registration, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.Registration, error)
	Review(ctx context.Context, registrationID id.RegistrationID, action models.Action, note string) (*models.Registration, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public application form.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/registrations/options", h.HandleOptions)
	r.Post("/api/registrations", h.HandleSubmit)
}

// RegisterAdmin mounts the review queue.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/registrations", h.HandleList)
	r.Get("/admin/registrations/{id}", h.HandleGet)
	r.Post("/admin/registrations/{id}/{action}", h.HandleReview)
}

// HandleOptions handles GET /api/registrations/options.
func (h *Handler) HandleOptions(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, defaultOptions())
}

// HandleSubmit handles POST /api/registrations.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	reg, err := h.service.Submit(ctx, req.ToApplication())
	if err != nil {
		h.logger.WarnContext(ctx, "registration submit failed",
			"request_id", requestID,
			"role", req.Role,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "registration submitted",
		"request_id", requestID,
		"registration_id", reg.ID,
		"role", reg.Role,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromSubmitted(reg))
}

// HandleList handles GET /admin/registrations?status=&limit=
// status may repeat or be comma separated.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter models.ListFilter
	for _, raw := range q["status"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" || part == "all" {
				continue
			}
			status, err := models.ParseStatus(part)
			if err != nil {
				httputil.WriteError(w, err)
				return
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a non-negative integer"))
			return
		}
		filter.Limit = limit
	}

	registrations, err := h.service.List(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRegistrations(registrations))
}

// HandleGet handles GET /admin/registrations/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	registrationID, err := id.ParseRegistrationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	reg, err := h.service.Get(r.Context(), registrationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRegistration(reg))
}

// HandleReview handles POST /admin/registrations/{id}/{approve|reject}.
func (h *Handler) HandleReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	registrationID, err := id.ParseRegistrationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	action := models.Action(chi.URLParam(r, "action"))
	if _, ok := action.Target(); !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "unknown registration action: "+string(action)))
		return
	}

	var req ReviewRequest
	if r.ContentLength != 0 {
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}

	reg, err := h.service.Review(ctx, registrationID, action, req.Note())
	if err != nil {
		h.logger.WarnContext(ctx, "registration review failed",
			"request_id", requestID,
			"registration_id", registrationID,
			"action", action,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "registration reviewed",
		"request_id", requestID,
		"registration_id", registrationID,
		"action", action,
		"status", reg.Status,
	)
	httputil.WriteJSON(w, http.StatusOK, FromRegistration(reg))
}
