// Package httpapi assembles the HTTP surface: the middleware chain, the
// auth and role groups, form rate limits and the ops endpoints.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"civicfund/internal/platform/metrics"
	ratelimitmw "civicfund/internal/ratelimit/middleware"
	ratelimitmodels "civicfund/internal/ratelimit/models"
	id "civicfund/pkg/domain"
	"civicfund/pkg/platform/httputil"
	adminmw "civicfund/pkg/platform/middleware/admin"
	authmw "civicfund/pkg/platform/middleware/auth"
	"civicfund/pkg/platform/middleware/metadata"
	request "civicfund/pkg/platform/middleware/request"
	"civicfund/pkg/platform/middleware/requesttime"
)

// PublicRoutes mount endpoints open to guests; a valid token, when sent,
// still identifies the caller.
type PublicRoutes interface {
	Register(r chi.Router)
}

// AuthenticatedRoutes mount endpoints for any signed-in user.
type AuthenticatedRoutes interface {
	RegisterAuthenticated(r chi.Router)
}

// DonorRoutes mount the signed-in donor's own data.
type DonorRoutes interface {
	RegisterDonor(r chi.Router)
}

// OrganizerRoutes mount campaign management for organizers.
type OrganizerRoutes interface {
	RegisterOrganizer(r chi.Router)
}

// AdminRoutes mount the back office.
type AdminRoutes interface {
	RegisterAdmin(r chi.Router)
}

// HealthCheck reports whether one dependency is usable.
type HealthCheck func(ctx context.Context) error

// Config carries everything NewRouter wires.
type Config struct {
	Logger         *slog.Logger
	Validator      authmw.JWTValidator
	RateLimit      *ratelimitmw.Middleware
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	RequestTimeout time.Duration
	Health         map[string]HealthCheck
	// TrustedProxies may set the client address through forwarding headers.
	TrustedProxies *metadata.TrustedProxies

	// Pages answers browser navigations ahead of routing.
	Pages func(http.Handler) http.Handler

	Public        []PublicRoutes
	Authenticated []AuthenticatedRoutes
	Donor         []DonorRoutes
	Organizer     []OrganizerRoutes
	Admin         []AdminRoutes
}

// NewRouter builds the application router.
func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(request.Recovery(cfg.Logger))
	r.Use(request.RequestID)
	r.Use(metadata.WithTrustedProxies(cfg.TrustedProxies))
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(request.Latency(cfg.Metrics))
	}
	if cfg.RequestTimeout > 0 {
		r.Use(request.Timeout(cfg.RequestTimeout))
	}
	if cfg.RateLimit != nil {
		r.Use(limitForms(cfg.RateLimit))
	}
	if cfg.Pages != nil {
		r.Use(cfg.Pages)
	}

	r.Get("/health", healthHandler(cfg.Health))
	if cfg.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(cfg.Gatherer))
	}

	r.Group(func(r chi.Router) {
		r.Use(authmw.OptionalAuth(cfg.Validator, cfg.Logger))
		for _, h := range cfg.Public {
			h.Register(r)
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(cfg.Validator, cfg.Logger))
		for _, h := range cfg.Authenticated {
			h.RegisterAuthenticated(r)
		}

		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireRole(id.RoleDonor, cfg.Logger))
			for _, h := range cfg.Donor {
				h.RegisterDonor(r)
			}
		})

		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireRole(id.RoleOrganizer, cfg.Logger))
			for _, h := range cfg.Organizer {
				h.RegisterOrganizer(r)
			}
		})

		r.Group(func(r chi.Router) {
			r.Use(adminmw.RequireAdmin(cfg.Logger))
			for _, h := range cfg.Admin {
				h.RegisterAdmin(r)
			}
		})
	})

	return r
}

// formClass picks the rate-limit class of the form submissions that are
// limited per client. Other requests are not limited.
func formClass(r *http.Request) (ratelimitmodels.Class, bool) {
	if r.Method != http.MethodPost {
		return "", false
	}
	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == "/auth/login":
		return ratelimitmodels.ClassLogin, true
	case strings.HasPrefix(path, "/auth/otp/"):
		return ratelimitmodels.ClassOTP, true
	case path == "/api/registrations":
		return ratelimitmodels.ClassRegister, true
	case strings.HasPrefix(path, "/api/campaigns/") && strings.HasSuffix(path, "/donations"):
		return ratelimitmodels.ClassDonation, true
	}
	return "", false
}

func limitForms(rl *ratelimitmw.Middleware) func(http.Handler) http.Handler {
	classes := []ratelimitmodels.Class{
		ratelimitmodels.ClassLogin,
		ratelimitmodels.ClassOTP,
		ratelimitmodels.ClassRegister,
		ratelimitmodels.ClassDonation,
	}
	return func(next http.Handler) http.Handler {
		limited := make(map[ratelimitmodels.Class]http.Handler, len(classes))
		for _, c := range classes {
			limited[c] = rl.RateLimit(c)(next)
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if class, ok := formClass(r); ok {
				limited[class].ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
