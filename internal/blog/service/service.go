package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"civicfund/internal/blog/metrics"
	"civicfund/internal/blog/models"
	"civicfund/internal/blog/store"
	dErrors "civicfund/pkg/domain-errors"
)

type Store interface {
	Upsert(ctx context.Context, p *models.Post) error
	List(ctx context.Context) ([]*models.Post, error)
	FindBySlug(ctx context.Context, slug string) (*models.Post, error)
	IncrementViews(ctx context.Context, slug string) (*models.Post, error)
}

// SearchResult is one page of matching posts. Total counts every match
// before the limit is applied.
type SearchResult struct {
	Posts []*models.Post
	Total int
	Query models.Query
}

// Service answers blog searches over the full post list.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		tracer: otel.Tracer("civicfund/blog"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search filters by text, category and tags in one pass, then sorts.
func (s *Service) Search(ctx context.Context, q models.Query) (*SearchResult, error) {
	q = q.Normalize()
	ctx, span := s.tracer.Start(ctx, "blog.Search", trace.WithAttributes(
		attribute.String("blog.sort", string(q.Sort)),
		attribute.String("blog.category", q.Category),
		attribute.Int("blog.tags", len(q.Tags)),
	))
	defer span.End()

	posts, err := s.list(ctx, span)
	if err != nil {
		return nil, err
	}
	limit := q.Limit
	q.Limit = 0
	matches := models.Apply(posts, q)
	total := len(matches)
	if limit > 0 && total > limit {
		matches = matches[:limit]
	}
	q.Limit = limit

	if s.metrics != nil {
		s.metrics.ObserveSearch(string(q.Sort), len(matches))
	}
	return &SearchResult{Posts: matches, Total: total, Query: q}, nil
}

// Get returns the post with the given slug and counts the view.
func (s *Service) Get(ctx context.Context, slug string) (*models.Post, error) {
	ctx, span := s.tracer.Start(ctx, "blog.Get", trace.WithAttributes(
		attribute.String("blog.slug", slug),
	))
	defer span.End()

	p, err := s.store.IncrementViews(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "post not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load post")
	}
	if s.metrics != nil {
		s.metrics.IncrementViews()
	}
	return p, nil
}

// Categories lists every category with its post count.
func (s *Service) Categories(ctx context.Context) ([]models.CategoryCount, error) {
	ctx, span := s.tracer.Start(ctx, "blog.Categories")
	defer span.End()
	posts, err := s.list(ctx, span)
	if err != nil {
		return nil, err
	}
	return models.Categories(posts), nil
}

// Tags lists the distinct tags across all posts.
func (s *Service) Tags(ctx context.Context) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "blog.Tags")
	defer span.End()
	posts, err := s.list(ctx, span)
	if err != nil {
		return nil, err
	}
	return models.Tags(posts), nil
}

// Featured returns featured posts, newest first.
func (s *Service) Featured(ctx context.Context, limit int) ([]*models.Post, error) {
	ctx, span := s.tracer.Start(ctx, "blog.Featured")
	defer span.End()
	posts, err := s.list(ctx, span)
	if err != nil {
		return nil, err
	}
	featured := make([]*models.Post, 0, len(posts))
	for _, p := range posts {
		if p.Featured {
			featured = append(featured, p)
		}
	}
	models.SortPosts(featured, models.SortNewest)
	if limit > 0 && len(featured) > limit {
		featured = featured[:limit]
	}
	return featured, nil
}

// Publish validates and stores a post; used by the seed loader.
func (s *Service) Publish(ctx context.Context, p models.Post) (*models.Post, error) {
	post, err := models.NewPost(p)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	if err := s.store.Upsert(ctx, post); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save post")
	}
	if s.logger != nil {
		s.logger.DebugContext(ctx, "post published", "slug", post.Slug)
	}
	return post, nil
}

func (s *Service) list(ctx context.Context, span trace.Span) ([]*models.Post, error) {
	posts, err := s.store.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "failed to list posts", "error", err)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list posts")
	}
	return posts, nil
}
