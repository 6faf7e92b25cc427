package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"civicfund/internal/campaign/models"
	id "civicfund/pkg/domain"
	dErrors "civicfund/pkg/domain-errors"
	"civicfund/pkg/platform/httputil"
	"civicfund/pkg/requestcontext"
)

// Service defines the campaign operations the HTTP layer needs.
type Service interface {
	ListPublic(ctx context.Context, filter models.ListFilter) ([]*models.Campaign, error)
	GetPublic(ctx context.Context, ref string) (*models.Campaign, error)
	Submit(ctx context.Context, draft models.Draft) (*models.Campaign, error)
	ListByOrganizer(ctx context.Context, organizerID id.UserID) ([]*models.Campaign, error)
	AdminList(ctx context.Context, filter models.ListFilter) ([]*models.Campaign, error)
	Review(ctx context.Context, campaignID id.CampaignID, action models.Action, note string) (*models.Campaign, error)
}

// Handler serves the public catalog, organizer submission and admin review endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public campaign endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/campaigns", h.HandleList)
	r.Get("/api/campaigns/{ref}", h.HandleGet)
}

// RegisterOrganizer mounts endpoints that require an organizer session.
func (h *Handler) RegisterOrganizer(r chi.Router) {
	r.Post("/api/campaigns", h.HandleSubmit)
	r.Get("/api/dashboard/campaigns", h.HandleListMine)
}

// RegisterAdmin mounts the review endpoints. The caller applies admin gating.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/campaigns", h.HandleAdminList)
	r.Post("/admin/campaigns/{id}/{action}", h.HandleReview)
}

// HandleList handles GET /api/campaigns?category=&q=&featured=&limit=
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := parseListFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	campaigns, err := h.service.ListPublic(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list campaigns",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromCampaigns(campaigns))
}

// HandleGet handles GET /api/campaigns/{ref}; ref is an ID or a slug.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.GetPublic(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromCampaign(c))
}

// HandleSubmit handles POST /api/campaigns.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[SubmitCampaignRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	c, err := h.service.Submit(ctx, req.ToDraft(userID))
	if err != nil {
		h.logger.WarnContext(ctx, "campaign submission failed",
			"request_id", requestID,
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "campaign submitted",
		"request_id", requestID,
		"user_id", userID,
		"campaign_id", c.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromCampaign(c))
}

// HandleListMine handles GET /api/dashboard/campaigns for the signed-in organizer.
func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	campaigns, err := h.service.ListByOrganizer(ctx, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromCampaigns(campaigns))
}

// HandleAdminList handles GET /admin/campaigns?status=pending_review,active&q=
func (h *Handler) HandleAdminList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" && raw != "all" {
		for _, part := range strings.Split(raw, ",") {
			status, err := models.ParseStatus(strings.TrimSpace(part))
			if err != nil {
				httputil.WriteError(w, err)
				return
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}

	campaigns, err := h.service.AdminList(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromCampaigns(campaigns))
}

// HandleReview handles POST /admin/campaigns/{id}/{action}.
func (h *Handler) HandleReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	campaignID, err := id.ParseCampaignID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	action, err := models.ParseAction(chi.URLParam(r, "action"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if action == models.ActionSubmit {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "submit is not a review action"))
		return
	}

	var req ReviewRequest
	if r.ContentLength != 0 {
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}

	c, err := h.service.Review(ctx, campaignID, action, req.Note)
	if err != nil {
		h.logger.WarnContext(ctx, "campaign review failed",
			"request_id", requestID,
			"campaign_id", campaignID,
			"action", action,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "campaign reviewed",
		"request_id", requestID,
		"campaign_id", campaignID,
		"action", action,
		"status", c.Status,
	)
	httputil.WriteJSON(w, http.StatusOK, FromCampaign(c))
}

func parseListFilter(r *http.Request) (models.ListFilter, error) {
	q := r.URL.Query()
	filter := models.ListFilter{
		Category: strings.ToLower(strings.TrimSpace(q.Get("category"))),
		Query:    strings.TrimSpace(q.Get("q")),
	}
	if raw := q.Get("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, dErrors.New(dErrors.CodeBadRequest, "featured must be true or false")
		}
		filter.Featured = &featured
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return filter, dErrors.New(dErrors.CodeBadRequest, "limit must be a non-negative integer")
		}
		filter.Limit = limit
	}
	return filter, nil
}
