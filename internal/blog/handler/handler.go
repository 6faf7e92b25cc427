package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"civicfund/internal/blog/models"
	"civicfund/internal/blog/service"
	dErrors "civicfund/pkg/domain-errors"
	"civicfund/pkg/platform/httputil"
	pstrings "civicfund/pkg/platform/strings"
)

// maxSearchLimit bounds ?limit= on the search endpoint.
const maxSearchLimit = 100

// Service defines the blog operations the HTTP layer needs.
type Service interface {
	Search(ctx context.Context, q models.Query) (*service.SearchResult, error)
	Get(ctx context.Context, slug string) (*models.Post, error)
	Categories(ctx context.Context) ([]models.CategoryCount, error)
	Tags(ctx context.Context) ([]string, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/api/blog/posts", h.HandleSearch)
	r.Get("/api/blog/posts/{slug}", h.HandleGet)
	r.Get("/api/blog/categories", h.HandleCategories)
	r.Get("/api/blog/tags", h.HandleTags)
}

// ParseQuery reads q, category, tag/tags (repeatable, comma separated), sort
// and limit from a query string.
func ParseQuery(values url.Values) (models.Query, error) {
	sort, err := models.ParseSort(values.Get("sort"))
	if err != nil {
		return models.Query{}, err
	}
	q := models.Query{
		Text:     values.Get("q"),
		Category: values.Get("category"),
		Tags:     pstrings.SplitList(append(values["tag"], values["tags"]...)...),
		Sort:     sort,
	}
	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 || limit > maxSearchLimit {
			return models.Query{}, dErrors.New(dErrors.CodeBadRequest, "limit must be between 0 and 100")
		}
		q.Limit = limit
	}
	return q.Normalize(), nil
}

// HandleSearch handles GET /api/blog/posts?q=&category=&tags=&sort=&limit=
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q, err := ParseQuery(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.service.Search(r.Context(), q)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "blog search failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSearchResult(result))
}

// HandleGet handles GET /api/blog/posts/{slug}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromPost(p, true))
}

// HandleCategories handles GET /api/blog/categories.
func (h *Handler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.service.Categories(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if cats == nil {
		cats = []models.CategoryCount{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

// HandleTags handles GET /api/blog/tags.
func (h *Handler) HandleTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.service.Tags(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if tags == nil {
		tags = []string{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"tags": tags})
}
