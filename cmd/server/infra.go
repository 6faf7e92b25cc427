package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	authservice "civicfund/internal/auth/service"
	"civicfund/internal/auth/store/revocation"
	userstore "civicfund/internal/auth/store/user"
	blogservice "civicfund/internal/blog/service"
	blogstore "civicfund/internal/blog/store"
	campaignservice "civicfund/internal/campaign/service"
	campaignstore "civicfund/internal/campaign/store"
	donationservice "civicfund/internal/donation/service"
	donationstore "civicfund/internal/donation/store"
	httpapi "civicfund/internal/http"
	jwttoken "civicfund/internal/jwt_token"
	otpservice "civicfund/internal/otp/service"
	otpstore "civicfund/internal/otp/store"
	"civicfund/internal/platform/config"
	"civicfund/internal/platform/postgres"
	platformredis "civicfund/internal/platform/redis"
	ratelimitmodels "civicfund/internal/ratelimit/models"
	ratelimitservice "civicfund/internal/ratelimit/service"
	"civicfund/internal/ratelimit/store/bucket"
	registrationservice "civicfund/internal/registration/service"
	registrationstore "civicfund/internal/registration/store"
	"civicfund/pkg/platform/audit"
	auditkafka "civicfund/pkg/platform/audit/publishers/kafka"
	auditmemory "civicfund/pkg/platform/audit/store/memory"
	auditpostgres "civicfund/pkg/platform/audit/store/postgres"
	"civicfund/pkg/platform/circuit"
	txcontext "civicfund/pkg/platform/tx"
)

const auditMemoryCapacity = 1000

type revocationList interface {
	authservice.RevocationList
	jwttoken.RevocationChecker
}

// infra holds the connections and stores the services are built on. Every
// backend is optional; without one the in-memory implementation is used.
type infra struct {
	db     *sql.DB
	redis  *platformredis.Client
	kafka  *kgo.Client
	blogDB *blogstore.SQLiteStore

	users         authservice.UserStore
	campaigns     campaignservice.Store
	donations     donationservice.Store
	registrations registrationservice.Store
	challenges    otpservice.Store
	revocations   revocationList
	buckets       ratelimitservice.Buckets
	fallback      ratelimitservice.Buckets
	posts         blogservice.Store
	auditStore    audit.Store
	tx            txcontext.Runner
}

func openInfra(ctx context.Context, cfg config.Config, logger *slog.Logger) (*infra, error) {
	in := &infra{}
	if err := in.openSQL(ctx, cfg, logger); err != nil {
		in.Close()
		return nil, err
	}
	if err := in.openRedis(ctx, cfg, logger); err != nil {
		in.Close()
		return nil, err
	}
	if err := in.openBlog(ctx, cfg, logger); err != nil {
		in.Close()
		return nil, err
	}
	if err := in.openKafka(ctx, cfg, logger); err != nil {
		in.Close()
		return nil, err
	}
	return in, nil
}

func (in *infra) openSQL(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if cfg.Database.URL == "" {
		logger.Info("using in-memory stores")
		in.users = userstore.NewInMemoryUserStore()
		in.campaigns = campaignstore.NewInMemoryStore()
		in.donations = donationstore.NewInMemoryStore()
		in.registrations = registrationstore.NewInMemoryStore()
		in.auditStore = auditmemory.NewInMemoryStore(auditMemoryCapacity)
		in.tx = txcontext.NewLocalRunner()
		return nil
	}

	db, err := postgres.Open(ctx, postgres.Config{
		DSN:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	in.db = db
	if err := postgres.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}
	logger.Info("using postgres stores")

	in.users = userstore.NewPostgres(db)
	in.campaigns = campaignstore.NewPostgres(db)
	in.donations = donationstore.NewPostgres(db)
	in.registrations = registrationstore.NewPostgres(db)
	in.auditStore = auditpostgres.New(db)
	in.tx = txcontext.NewSQLRunner(db)
	return nil
}

func (in *infra) openRedis(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	in.fallback = bucket.NewInMemoryStore()

	client, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if client == nil {
		logger.Info("redis not configured, using in-memory challenges and rate limits")
		in.challenges = otpstore.NewInMemoryStore()
		in.revocations = revocation.NewInMemoryList()
		in.buckets = in.fallback
		in.fallback = nil
		return nil
	}
	in.redis = client
	in.challenges = otpstore.NewRedisStore(client.Client)
	in.revocations = revocation.NewRedisList(client.Client)
	in.buckets = bucket.NewRedisStore(client.Client)
	return nil
}

func (in *infra) openBlog(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if cfg.Blog.DBPath == "" {
		in.posts = blogstore.NewInMemoryStore()
		return nil
	}
	store, err := blogstore.OpenSQLite(ctx, cfg.Blog.DBPath)
	if err != nil {
		return fmt.Errorf("open blog database: %w", err)
	}
	logger.Info("using sqlite blog store", "path", cfg.Blog.DBPath)
	in.blogDB = store
	in.posts = store
	return nil
}

func (in *infra) openKafka(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil
	}
	client, err := auditkafka.NewClient(ctx, cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
	if err != nil {
		return fmt.Errorf("connect kafka: %w", err)
	}
	logger.Info("streaming audit events to kafka", "topic", cfg.Kafka.AuditTopic)
	in.kafka = client
	return nil
}

// auditSink returns the emitter services publish to. Events always land in
// the local store behind the admin audit view and are also streamed to Kafka
// when it is configured.
func (in *infra) auditSink(local audit.Emitter, topic string, logger *slog.Logger) audit.Emitter {
	if in.kafka == nil {
		return local
	}
	stream := auditkafka.New(in.kafka, topic,
		auditkafka.WithLogger(logger),
		auditkafka.WithBreaker(circuit.New("audit-kafka")),
	)
	return audit.Fanout{local, stream}
}

// health lists the checks behind GET /health.
func (in *infra) health() map[string]httpapi.HealthCheck {
	checks := map[string]httpapi.HealthCheck{}
	if in.db != nil {
		checks["postgres"] = in.db.PingContext
	}
	if in.redis != nil {
		checks["redis"] = in.redis.Health
	}
	if in.kafka != nil {
		checks["kafka"] = in.kafka.Ping
	}
	return checks
}

func (in *infra) Close() error {
	var errs []error
	if in.kafka != nil {
		in.kafka.Close()
	}
	if in.blogDB != nil {
		errs = append(errs, in.blogDB.Close())
	}
	if in.redis != nil {
		errs = append(errs, in.redis.Close())
	}
	if in.db != nil {
		errs = append(errs, in.db.Close())
	}
	return errors.Join(errs...)
}

// rateLimits maps configuration onto the limiter's per-class limits.
func rateLimits(cfg config.RateLimitConfig) map[ratelimitmodels.Class]ratelimitmodels.Limit {
	limit := func(n int) ratelimitmodels.Limit {
		return ratelimitmodels.Limit{Requests: n, Window: cfg.Window}
	}
	return map[ratelimitmodels.Class]ratelimitmodels.Limit{
		ratelimitmodels.ClassLogin:    limit(cfg.Login),
		ratelimitmodels.ClassOTP:      limit(cfg.OTP),
		ratelimitmodels.ClassDonation: limit(cfg.Donation),
		ratelimitmodels.ClassRegister: limit(cfg.Register),
	}
}
