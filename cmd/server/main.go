// Command server runs the civicfund web application.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"civicfund/internal/admin"
	authhandler "civicfund/internal/auth/handler"
	authmetrics "civicfund/internal/auth/metrics"
	authservice "civicfund/internal/auth/service"
	bloghandler "civicfund/internal/blog/handler"
	blogmetrics "civicfund/internal/blog/metrics"
	blogservice "civicfund/internal/blog/service"
	campaignhandler "civicfund/internal/campaign/handler"
	campaignmetrics "civicfund/internal/campaign/metrics"
	campaignservice "civicfund/internal/campaign/service"
	dashboardhandler "civicfund/internal/dashboard/handler"
	dashboardmetrics "civicfund/internal/dashboard/metrics"
	dashboardservice "civicfund/internal/dashboard/service"
	donationhandler "civicfund/internal/donation/handler"
	donationmetrics "civicfund/internal/donation/metrics"
	donationservice "civicfund/internal/donation/service"
	"civicfund/internal/fixtures"
	httpapi "civicfund/internal/http"
	jwttoken "civicfund/internal/jwt_token"
	otpmetrics "civicfund/internal/otp/metrics"
	otpmodels "civicfund/internal/otp/models"
	otpservice "civicfund/internal/otp/service"
	"civicfund/internal/platform/config"
	"civicfund/internal/platform/httpserver"
	"civicfund/internal/platform/logger"
	"civicfund/internal/platform/metrics"
	"civicfund/internal/platform/otel"
	ratelimitmetrics "civicfund/internal/ratelimit/metrics"
	ratelimitmw "civicfund/internal/ratelimit/middleware"
	ratelimitservice "civicfund/internal/ratelimit/service"
	registrationhandler "civicfund/internal/registration/handler"
	registrationmetrics "civicfund/internal/registration/metrics"
	registrationservice "civicfund/internal/registration/service"
	sitehandler "civicfund/internal/site/handler"
	"civicfund/pkg/platform/audit/publisher"
	"civicfund/pkg/platform/circuit"
	"civicfund/pkg/platform/middleware/metadata"
	"civicfund/pkg/requestcontext"
)

const (
	serviceName     = "civicfund"
	auditBufferSize = 256
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	shutdownTracing, err := otel.Setup(ctx, serviceName, cfg.Otel)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.WithoutCancel(ctx)); err != nil {
			log.Warn("tracing shutdown failed", "error", err)
		}
	}()

	infra, err := openInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := infra.Close(); err != nil {
			log.Warn("closing backends failed", "error", err)
		}
	}()

	registry := metrics.NewRegistry()

	auditLog := publisher.NewPublisher(infra.auditStore,
		publisher.WithLogger(log),
		publisher.WithAsyncBuffer(auditBufferSize),
	)
	defer auditLog.Close()
	auditSink := infra.auditSink(auditLog, cfg.Kafka.AuditTopic, log)

	otp := otpservice.New(infra.challenges, otpservice.NewLogSender(log),
		otpservice.WithLogger(log),
		otpservice.WithAuditPublisher(auditSink),
		otpservice.WithMetrics(otpmetrics.New(registry)),
		otpservice.WithPolicy(otpmodels.Policy{
			TTL:            cfg.OTP.TTL,
			ResendCooldown: cfg.OTP.ResendCooldown,
			MaxAttempts:    cfg.OTP.MaxAttempts,
		}),
		otpservice.WithDemoMode(cfg.OTP.DemoMode),
		otpservice.WithBcryptCost(cfg.Auth.BcryptCost),
	)
	if cfg.OTP.DemoMode {
		log.Warn("otp demo mode enabled, every challenge accepts the demo code")
	}

	jwtService := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer)
	auth := authservice.New(infra.users, otp, jwtService,
		authservice.WithLogger(log),
		authservice.WithAuditPublisher(auditSink),
		authservice.WithMetrics(authmetrics.New(registry)),
		authservice.WithRevocationList(infra.revocations),
		authservice.WithTokenTTL(cfg.Auth.TokenTTL),
		authservice.WithBcryptCost(cfg.Auth.BcryptCost),
	)

	campaigns := campaignservice.New(infra.campaigns,
		campaignservice.WithLogger(log),
		campaignservice.WithAuditPublisher(auditSink),
		campaignservice.WithMetrics(campaignmetrics.New(registry)),
	)
	donations := donationservice.New(infra.donations, campaigns,
		donationservice.WithLogger(log),
		donationservice.WithAuditPublisher(auditSink),
		donationservice.WithMetrics(donationmetrics.New(registry)),
		donationservice.WithTxRunner(infra.tx),
	)
	registrations := registrationservice.New(infra.registrations, auth,
		registrationservice.WithLogger(log),
		registrationservice.WithAuditPublisher(auditSink),
		registrationservice.WithMetrics(registrationmetrics.New(registry)),
		registrationservice.WithTxRunner(infra.tx),
	)
	blog := blogservice.New(infra.posts,
		blogservice.WithLogger(log),
		blogservice.WithMetrics(blogmetrics.New(registry)),
	)
	dashboard := dashboardservice.New(donations, campaigns, auth, registrations,
		dashboardservice.WithLogger(log),
		dashboardservice.WithMetrics(dashboardmetrics.New(registry)),
	)

	rateOpts := []ratelimitservice.Option{
		ratelimitservice.WithLogger(log),
		ratelimitservice.WithAuditPublisher(auditSink),
		ratelimitservice.WithMetrics(ratelimitmetrics.New(registry)),
		ratelimitservice.WithAllowlist(cfg.RateLimit.Allowlist),
	}
	if infra.fallback != nil {
		rateOpts = append(rateOpts, ratelimitservice.WithFallback(infra.fallback,
			circuit.New("ratelimit-redis", circuit.WithFailureThreshold(3))))
	}
	limiter, err := ratelimitservice.New(infra.buckets, rateLimits(cfg.RateLimit), rateOpts...)
	if err != nil {
		return fmt.Errorf("configure rate limits: %w", err)
	}

	if cfg.SeedFixtures {
		if err := seed(ctx, infra, auth, log); err != nil {
			return err
		}
	}

	trustedProxies, err := metadata.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return fmt.Errorf("configure trusted proxies: %w", err)
	}

	site := sitehandler.New(campaigns, blog, cfg.BaseURL, log)
	authHTTP := authhandler.New(auth, log, authhandler.WithSecureCookie(cfg.IsProduction()))
	campaignHTTP := campaignhandler.New(campaigns, log)
	donationHTTP := donationhandler.New(donations, log)
	registrationHTTP := registrationhandler.New(registrations, log)
	dashboardHTTP := dashboardhandler.New(dashboard, log)
	auditHTTP := admin.New(auditLog, log)

	router := httpapi.NewRouter(httpapi.Config{
		Logger:         log,
		Validator:      jwttoken.NewJWTServiceAdapter(jwtService, infra.revocations),
		RateLimit:      ratelimitmw.New(limiter, log),
		Metrics:        metrics.New(registry),
		Gatherer:       registry,
		RequestTimeout: cfg.RequestTimeout,
		Health:         infra.health(),
		TrustedProxies: trustedProxies,
		Pages:          site.AdminPages,
		Public: []httpapi.PublicRoutes{
			site, bloghandler.New(blog, log), campaignHTTP, donationHTTP, registrationHTTP, authHTTP,
		},
		Authenticated: []httpapi.AuthenticatedRoutes{authHTTP},
		Donor:         []httpapi.DonorRoutes{donationHTTP, dashboardHTTP},
		Organizer:     []httpapi.OrganizerRoutes{campaignHTTP},
		Admin: []httpapi.AdminRoutes{
			authHTTP, campaignHTTP, registrationHTTP, dashboardHTTP, auditHTTP,
		},
	})

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting civicfund", "addr", cfg.Addr, "env", cfg.Environment)
	return httpserver.Run(ctx, srv, cfg.ShutdownTimeout, log)
}

func seed(ctx context.Context, infra *infra, hasher fixtures.Hasher, log *slog.Logger) error {
	ds, err := fixtures.Load()
	if err != nil {
		return fmt.Errorf("load fixtures: %w", err)
	}
	_, err = fixtures.Seed(ctx, ds, fixtures.Stores{
		Users:         infra.users,
		Campaigns:     infra.campaigns,
		Registrations: infra.registrations,
		Donations:     infra.donations,
		Posts:         infra.posts,
	}, hasher, requestcontext.Now(ctx), log)
	if err != nil {
		return fmt.Errorf("seed fixtures: %w", err)
	}
	return nil
}
