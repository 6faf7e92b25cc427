package middleware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicfund/internal/ratelimit/models"
	"civicfund/internal/ratelimit/service"
	"civicfund/internal/ratelimit/store/bucket"
	"civicfund/pkg/platform/middleware/metadata"
	"civicfund/pkg/requestcontext"
	"civicfund/pkg/testutil"
)

type failingLimiter struct{}

func (failingLimiter) Check(context.Context, models.Class, string) (*models.Result, error) {
	return nil, errors.New("redis down")
}

func router(t *testing.T, limiter Limiter, opts ...Option) http.Handler {
	t.Helper()
	m := New(limiter, slog.New(slog.NewTextHandler(io.Discard, nil)), opts...)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithClientMetadata(r.Context(), "198.51.100.7", "test")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	r.With(m.RateLimit(models.ClassLogin)).Post("/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestRateLimitDeniesOverLimit(t *testing.T) {
	limiter, err := service.New(bucket.NewInMemoryStore(), map[models.Class]models.Limit{
		models.ClassLogin: {Requests: 2, Window: time.Minute},
	})
	require.NoError(t, err)
	h := router(t, limiter)

	for i := range 2 {
		rr := testutil.DoRequest(h, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "2", rr.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, []string{"1", "0"}[i], rr.Header().Get("X-RateLimit-Remaining"))
	}

	rr := testutil.DoRequest(h, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	testutil.AssertStatusAndError(t, rr, http.StatusTooManyRequests, "too_many_requests")
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
}

func TestRateLimitFailsOpen(t *testing.T) {
	rr := testutil.DoRequest(router(t, failingLimiter{}), httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRateLimitDisabled(t *testing.T) {
	h := router(t, failingLimiter{}, WithDisabled(true))
	rr := testutil.DoRequest(h, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	limiter, err := service.New(bucket.NewInMemoryStore(), map[models.Class]models.Limit{
		models.ClassLogin: {Requests: 2, Window: time.Minute},
	})
	require.NoError(t, err)
	trusted, err := metadata.ParseTrustedProxies([]string{"10.0.0.1"})
	require.NoError(t, err)

	m := New(limiter, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	r.Use(metadata.WithTrustedProxies(trusted))
	r.With(m.RateLimit(models.ClassLogin)).Post("/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	accepted := 0
	for i := range 50 {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "198.51.100.7:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		if testutil.DoRequest(r, req).Code == http.StatusOK {
			accepted++
		}
	}
	assert.Equal(t, 2, accepted)

	t.Run("a trusted proxy forwards distinct clients", func(t *testing.T) {
		for i := range 3 {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
			req.RemoteAddr = "10.0.0.1:4000"
			req.Header.Set("X-Forwarded-For", fmt.Sprintf("192.0.2.%d", i+1))
			assert.Equal(t, http.StatusOK, testutil.DoRequest(r, req).Code)
		}
	})
}
