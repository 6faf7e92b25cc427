package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"civicfund/internal/donation/models"
	"civicfund/internal/donation/service"
	id "civicfund/pkg/domain"
	dErrors "civicfund/pkg/domain-errors"
	"civicfund/pkg/platform/httputil"
	"civicfund/pkg/requestcontext"
)

const defaultDonorListLimit = 50

// Service defines the donation operations the HTTP layer needs.
type Service interface {
	Donate(ctx context.Context, campaignRef string, pledge models.Pledge) (*service.Receipt, error)
	ListSupporters(ctx context.Context, campaignRef string) ([]*models.Donation, error)
	ListForDonor(ctx context.Context, donorID id.UserID, limit int) ([]*models.Donation, error)
	Get(ctx context.Context, donationID id.DonationID) (*models.Donation, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the donation form endpoints. Donating works with or without
// a session; the router applies optional auth.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/donations/options", h.HandleOptions)
	r.Post("/api/campaigns/{ref}/donations", h.HandleDonate)
	r.Get("/api/campaigns/{ref}/donations", h.HandleSupporters)
}

// RegisterDonor mounts endpoints that require a signed-in donor.
func (h *Handler) RegisterDonor(r chi.Router) {
	r.Get("/api/dashboard/donations", h.HandleListMine)
	r.Get("/api/donations/{id}", h.HandleGet)
}

// HandleOptions handles GET /api/donations/options.
func (h *Handler) HandleOptions(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, &OptionsResponse{
		PresetAmountsCents: models.PresetAmountsCents,
		MinAmountCents:     models.MinAmountCents,
		MaxAmountCents:     models.MaxAmountCents,
		Currency:           models.CurrencyUSD,
		Frequencies:        []string{string(models.FrequencyOneTime), string(models.FrequencyMonthly)},
	})
}

// HandleDonate handles POST /api/campaigns/{ref}/donations.
func (h *Handler) HandleDonate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	ref := chi.URLParam(r, "ref")

	req, ok := httputil.DecodeAndPrepare[DonationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	donorID := requestcontext.UserID(ctx)
	receipt, err := h.service.Donate(ctx, ref, req.ToPledge(donorID))
	if err != nil {
		h.logger.WarnContext(ctx, "donation failed",
			"request_id", requestID,
			"campaign_ref", ref,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "donation recorded",
		"request_id", requestID,
		"donation_id", receipt.Donation.ID,
		"campaign_id", receipt.Donation.CampaignID,
		"guest", receipt.Donation.IsGuest(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromReceipt(receipt))
}

// HandleSupporters handles GET /api/campaigns/{ref}/donations.
func (h *Handler) HandleSupporters(w http.ResponseWriter, r *http.Request) {
	donations, err := h.service.ListSupporters(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]*SupporterResponse, 0, len(donations))
	for _, d := range donations {
		out = append(out, FromSupporter(d))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"supporters": out})
}

// HandleListMine handles GET /api/dashboard/donations?limit=
func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := defaultDonorListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer"))
			return
		}
		limit = n
	}
	donations, err := h.service.ListForDonor(ctx, requestcontext.UserID(ctx), limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDonations(donations))
}

// HandleGet handles GET /api/donations/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	donationID, err := id.ParseDonationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	d, err := h.service.Get(r.Context(), donationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDonation(d))
}
