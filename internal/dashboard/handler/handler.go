package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"civicfund/internal/dashboard/models"
	id "civicfund/pkg/domain"
	"civicfund/pkg/platform/httputil"
	"civicfund/pkg/requestcontext"
)

// Service defines the dashboard views the HTTP layer serves.
type Service interface {
	DonorSummary(ctx context.Context, donorID id.UserID) (*models.DonorSummary, error)
	Overview(ctx context.Context) (*models.Overview, error)
	Analytics(ctx context.Context) (*models.Analytics, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterDonor mounts the signed-in donor's dashboard.
func (h *Handler) RegisterDonor(r chi.Router) {
	r.Get("/api/dashboard", h.HandleSummary)
	r.Get("/api/dashboard/supported", h.HandleSupported)
}

// RegisterAdmin mounts the back-office aggregates.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/overview", h.HandleOverview)
	r.Get("/admin/analytics", h.HandleAnalytics)
}

// HandleSummary handles GET /api/dashboard.
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.summary(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

// HandleSupported handles GET /api/dashboard/supported.
func (h *Handler) HandleSupported(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.summary(w, r)
	if !ok {
		return
	}
	campaigns := summary.Campaigns
	if campaigns == nil {
		campaigns = []models.CampaignTotal{}
	}
	httputil.WriteJSON(w, http.StatusOK, &SupportedResponse{
		Campaigns: campaigns,
		Total:     len(campaigns),
	})
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) (*models.DonorSummary, bool) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)

	summary, err := h.service.DonorSummary(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to build donor dashboard",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return nil, false
	}
	return summary, true
}

// HandleOverview handles GET /admin/overview.
func (h *Handler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	overview, err := h.service.Overview(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to build admin overview",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, overview)
}

// HandleAnalytics handles GET /admin/analytics.
func (h *Handler) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	analytics, err := h.service.Analytics(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to build analytics",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, analytics)
}

type SupportedResponse struct {
	Campaigns []models.CampaignTotal `json:"campaigns"`
	Total     int                    `json:"total"`
}
