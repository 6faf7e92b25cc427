package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"civicfund/internal/auth/models"
	"civicfund/internal/auth/service"
	otpmodels "civicfund/internal/otp/models"
	id "civicfund/pkg/domain"
	dErrors "civicfund/pkg/domain-errors"
	"civicfund/pkg/platform/httputil"
	authmw "civicfund/pkg/platform/middleware/auth"
	"civicfund/pkg/requestcontext"
)

// Service defines the login and account operations the HTTP layer needs.
type Service interface {
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	VerifyOTP(ctx context.Context, challengeID id.ChallengeID, code string) (*service.TokenResult, error)
	ResendOTP(ctx context.Context, challengeID id.ChallengeID) (*otpmodels.Challenge, error)
	ChallengeStatus(ctx context.Context, challengeID id.ChallengeID) (*otpmodels.Challenge, error)
	Me(ctx context.Context) (*models.User, error)
	Logout(ctx context.Context) error
	ListUsers(ctx context.Context, filter models.ListFilter) ([]*models.User, error)
	ReviewUser(ctx context.Context, userID id.UserID, action models.Action, reason string) (*models.User, error)
}

type Handler struct {
	service      Service
	logger       *slog.Logger
	secureCookie bool
}

type Option func(*Handler)

// WithSecureCookie marks the session cookie Secure; enable behind TLS.
func WithSecureCookie(secure bool) Option {
	return func(h *Handler) {
		h.secureCookie = secure
	}
}

func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{service: service, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the unauthenticated login steps.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
	r.Post("/auth/otp/verify", h.HandleVerify)
	r.Post("/auth/otp/resend", h.HandleResend)
	r.Get("/auth/otp/{id}", h.HandleChallengeStatus)
}

// RegisterAuthenticated mounts endpoints behind RequireAuth.
func (h *Handler) RegisterAuthenticated(r chi.Router) {
	r.Get("/auth/me", h.HandleMe)
	r.Post("/auth/logout", h.HandleLogout)
}

// RegisterAdmin mounts user review. The caller applies admin gating.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/users", h.HandleListUsers)
	r.Post("/admin/users/{id}/{action}", h.HandleReviewUser)
}

// HandleLogin handles POST /auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	result, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromLoginResult(result, requestcontext.Now(ctx)))
}

// HandleVerify handles POST /auth/otp/verify and sets the session cookie.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	challengeID, code, err := req.Parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.VerifyOTP(ctx, challengeID, code)
	if err != nil {
		h.logger.WarnContext(ctx, "otp verification failed",
			"request_id", requestID,
			"challenge_id", challengeID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authmw.SessionCookieName,
		Value:    result.AccessToken,
		Path:     "/",
		Expires:  result.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	h.logger.InfoContext(ctx, "user logged in",
		"request_id", requestID,
		"user_id", result.User.ID,
	)
	httputil.WriteJSON(w, http.StatusOK, FromTokenResult(result, requestcontext.Now(ctx)))
}

// HandleResend handles POST /auth/otp/resend.
func (h *Handler) HandleResend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ResendRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	challengeID, err := id.ParseChallengeID(req.ChallengeID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.service.ResendOTP(ctx, challengeID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromChallenge(c, requestcontext.Now(ctx)))
}

// HandleChallengeStatus handles GET /auth/otp/{id} for the countdown display.
func (h *Handler) HandleChallengeStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	challengeID, err := id.ParseChallengeID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.service.ChallengeStatus(ctx, challengeID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromChallenge(c, requestcontext.Now(ctx)))
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Me(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromUser(u))
}

// HandleLogout handles POST /auth/logout and clears the session cookie.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.Logout(ctx); err != nil {
		h.logger.ErrorContext(ctx, "logout failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     authmw.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// HandleListUsers handles GET /admin/users?role=&status=&q=&limit=
func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.ListFilter{Query: strings.TrimSpace(q.Get("q"))}
	if raw := q.Get("role"); raw != "" {
		role, err := id.ParseRole(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "unknown role: "+raw))
			return
		}
		filter.Role = role
	}
	if raw := q.Get("status"); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.Status = status
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a non-negative integer"))
			return
		}
		filter.Limit = limit
	}

	users, err := h.service.ListUsers(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromUsers(users))
}

// HandleReviewUser handles POST /admin/users/{id}/{action}.
func (h *Handler) HandleReviewUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	action := models.Action(chi.URLParam(r, "action"))
	if _, ok := action.Target(); !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "unknown user action: "+string(action)))
		return
	}

	var req ReviewUserRequest
	if r.ContentLength != 0 {
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}

	u, err := h.service.ReviewUser(ctx, userID, action, strings.TrimSpace(req.Reason))
	if err != nil {
		h.logger.WarnContext(ctx, "user review failed",
			"request_id", requestID,
			"user_id", userID,
			"action", action,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "user reviewed",
		"request_id", requestID,
		"user_id", userID,
		"action", action,
		"status", u.Status,
	)
	httputil.WriteJSON(w, http.StatusOK, FromUser(u))
}
