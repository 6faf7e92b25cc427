// Package admin serves the back-office audit trail.
package admin

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	dErrors "civicfund/pkg/domain-errors"
	"civicfund/pkg/platform/audit"
	"civicfund/pkg/platform/httputil"
	"civicfund/pkg/requestcontext"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// AuditReader lists the most recent audit events, newest first.
type AuditReader interface {
	ListRecent(ctx context.Context, limit int) ([]audit.Event, error)
}

type Handler struct {
	reader AuditReader
	logger *slog.Logger
}

func New(reader AuditReader, logger *slog.Logger) *Handler {
	return &Handler{reader: reader, logger: logger}
}

// RegisterAdmin mounts the audit view. The caller applies admin gating.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/audit", h.HandleAudit)
}

// HandleAudit handles GET /admin/audit?limit=&category=
func (h *Handler) HandleAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := defaultAuditLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxAuditLimit {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be between 1 and 500"))
			return
		}
		limit = n
	}
	category := audit.EventCategory(r.URL.Query().Get("category"))

	events, err := h.reader.ListRecent(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit events",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events"))
		return
	}

	resp := &AuditListResponse{Events: make([]*AuditEventResponse, 0, len(events))}
	for _, e := range events {
		if category != "" && e.Category != category {
			continue
		}
		resp.Events = append(resp.Events, fromEvent(e))
	}
	resp.Total = len(resp.Events)
	httputil.WriteJSON(w, http.StatusOK, resp)
}

type AuditEventResponse struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	Subject   string    `json:"subject,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	ActorID   string    `json:"actor_id,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	IP        string    `json:"ip,omitempty"`
}

type AuditListResponse struct {
	Events []*AuditEventResponse `json:"events"`
	Total  int                   `json:"total"`
}

func fromEvent(e audit.Event) *AuditEventResponse {
	resp := &AuditEventResponse{
		ID:        e.ID,
		Category:  string(e.Category),
		Action:    e.Action,
		Timestamp: e.Timestamp,
		Subject:   e.Subject,
		ActorID:   e.ActorID,
		Reason:    e.Reason,
		RequestID: e.RequestID,
		IP:        e.IP,
	}
	if !e.UserID.IsNil() {
		resp.UserID = e.UserID.String()
	}
	return resp
}
