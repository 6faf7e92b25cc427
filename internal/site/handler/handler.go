package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	bloghandler "civicfund/internal/blog/handler"
	blogmodels "civicfund/internal/blog/models"
	blogservice "civicfund/internal/blog/service"
	campaignmodels "civicfund/internal/campaign/models"
	"civicfund/internal/site/pages"
	"civicfund/internal/site/routes"
	dErrors "civicfund/pkg/domain-errors"
	"civicfund/pkg/platform/httputil"
	"civicfund/pkg/requestcontext"
)

const (
	featuredCampaigns = 3
	latestPosts       = 3
	htmxHeader        = "HX-Request"
)

// Campaigns is the part of the campaign service the pages read.
type Campaigns interface {
	ListPublic(ctx context.Context, filter campaignmodels.ListFilter) ([]*campaignmodels.Campaign, error)
	GetPublic(ctx context.Context, ref string) (*campaignmodels.Campaign, error)
}

// Blog is the part of the blog service the pages read.
type Blog interface {
	Search(ctx context.Context, q blogmodels.Query) (*blogservice.SearchResult, error)
	Get(ctx context.Context, slug string) (*blogmodels.Post, error)
	Categories(ctx context.Context) ([]blogmodels.CategoryCount, error)
	Featured(ctx context.Context, limit int) ([]*blogmodels.Post, error)
}

type Handler struct {
	campaigns Campaigns
	blog      Blog
	baseURL   string
	logger    *slog.Logger
}

func New(campaigns Campaigns, blog Blog, baseURL string, logger *slog.Logger) *Handler {
	return &Handler{campaigns: campaigns, blog: blog, baseURL: baseURL, logger: logger}
}

// Register mounts every page of the route map plus the sitemap and the
// route index. Pages without a server-rendered view get the app shell.
// Admin pages share their paths with the admin JSON API and are served by
// AdminPages instead.
func (h *Handler) Register(r chi.Router) {
	r.Get("/sitemap.xml", h.HandleSitemap)
	r.Get("/api/routes", h.HandleRoutes)

	views := map[string]http.HandlerFunc{
		"home":      h.HandleHome,
		"campaigns": h.HandleCampaigns,
		"campaign":  h.HandleCampaign,
		"blog":      h.HandleBlog,
		"blog-post": h.HandleBlogPost,
	}
	for _, route := range routes.All() {
		if route.Section == routes.SectionAdmin {
			continue
		}
		if view, ok := views[route.Name]; ok {
			r.Get(route.Path, view)
			continue
		}
		if page, ok := pages.Static[route.Name]; ok {
			r.Get(route.Path, h.static(page))
			continue
		}
		r.Get(route.Path, h.shell(route))
	}
}

// AdminPages answers browser navigations to admin pages with the app
// shell and passes API requests on the same paths through.
func (h *Handler) AdminPages(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && wantsHTML(r) {
			if route, ok := routes.Match(r.URL.Path); ok && route.Section == routes.SectionAdmin {
				h.render(w, r, route.Title, pages.AppShell(route))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// HandleHome handles GET /.
func (h *Handler) HandleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	featured := true
	campaigns, err := h.campaigns.ListPublic(ctx, campaignmodels.ListFilter{Featured: &featured, Limit: featuredCampaigns})
	if err != nil {
		h.fail(w, r, "failed to load featured campaigns", err)
		return
	}
	posts, err := h.blog.Featured(ctx, latestPosts)
	if err != nil {
		h.fail(w, r, "failed to load featured posts", err)
		return
	}
	h.render(w, r, "", pages.Home(campaigns, posts))
}

// HandleCampaigns handles GET /campaigns.
func (h *Handler) HandleCampaigns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter := campaignmodels.ListFilter{
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
		Query:    strings.TrimSpace(r.URL.Query().Get("q")),
	}
	campaigns, err := h.campaigns.ListPublic(ctx, filter)
	if err != nil {
		h.fail(w, r, "failed to list campaigns", err)
		return
	}
	h.render(w, r, "Campaigns", pages.CampaignIndex(campaigns, filter.Category))
}

// HandleCampaign handles GET /campaigns/{slug}.
func (h *Handler) HandleCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := h.campaigns.GetPublic(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.fail(w, r, "failed to load campaign", err)
		return
	}
	h.render(w, r, c.Title, pages.CampaignDetail(c))
}

// HandleBlog handles GET /blog. HTMX requests get only the result list.
func (h *Handler) HandleBlog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q, err := bloghandler.ParseQuery(r.URL.Query())
	if err != nil {
		h.fail(w, r, "invalid blog query", err)
		return
	}
	result, err := h.blog.Search(ctx, q)
	if err != nil {
		h.fail(w, r, "blog search failed", err)
		return
	}
	if isHTMX(r) {
		templ.Handler(pages.BlogResults(result.Posts, result.Total)).ServeHTTP(w, r)
		return
	}
	categories, err := h.blog.Categories(ctx)
	if err != nil {
		h.fail(w, r, "failed to load blog categories", err)
		return
	}
	h.render(w, r, "Blog", pages.BlogIndex(result.Posts, result.Total, result.Query, categories))
}

// HandleBlogPost handles GET /blog/{slug}.
func (h *Handler) HandleBlogPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.blog.Get(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.fail(w, r, "failed to load blog post", err)
		return
	}
	h.render(w, r, post.Title, pages.BlogPost(post))
}

func (h *Handler) static(page pages.StaticPage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, r, page.Title, pages.StaticContent(page))
	}
}

func (h *Handler) shell(route routes.Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, r, route.Title, pages.AppShell(route))
	}
}

// HandleSitemap handles GET /sitemap.xml: the indexed routes plus every
// public campaign page.
func (h *Handler) HandleSitemap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	campaigns, err := h.campaigns.ListPublic(ctx, campaignmodels.ListFilter{})
	if err != nil {
		h.logger.ErrorContext(ctx, "sitemap campaign listing failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	entries := make([]routes.Entry, 0, len(campaigns))
	for _, c := range campaigns {
		entries = append(entries, routes.Entry{Path: routes.Path("campaign", c.Slug), Modified: c.UpdatedAt})
	}
	result, err := h.blog.Search(ctx, blogmodels.Query{Sort: blogmodels.SortNewest})
	if err == nil {
		for _, p := range result.Posts {
			entries = append(entries, routes.Entry{Path: routes.Path("blog-post", p.Slug), Modified: p.PublishedAt})
		}
	}
	body, err := routes.Sitemap(h.baseURL, entries...)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render sitemap"))
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// HandleRoutes handles GET /api/routes.
func (h *Handler) HandleRoutes(w http.ResponseWriter, _ *http.Request) {
	grouped := routes.Grouped()
	resp := &RoutesResponse{Sections: make([]SectionResponse, 0, len(routes.Sections))}
	for _, s := range routes.Sections {
		resp.Sections = append(resp.Sections, SectionResponse{Name: s, Routes: grouped[s]})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// render writes a full document, or only the page body for HTMX
// navigation.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, title string, content templ.Component) {
	if isHTMX(r) {
		templ.Handler(content).ServeHTTP(w, r)
		return
	}
	templ.Handler(pages.Layout(title, content)).ServeHTTP(w, r)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	status := http.StatusInternalServerError
	if de, ok := dErrors.As(err); ok {
		status = httputil.StatusFor(de.Code)
	}
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"path", r.URL.Path,
			"error", err,
		)
	}
	var content templ.Component
	switch status {
	case http.StatusNotFound:
		content = pages.NotFound(r.URL.Path)
	default:
		content = pages.StaticContent(pages.StaticPage{
			Title: http.StatusText(status),
			Lead:  "Something went wrong loading this page.",
		})
	}
	templ.Handler(pages.Layout(http.StatusText(status), content), templ.WithStatus(status)).ServeHTTP(w, r)
}

func wantsHTML(r *http.Request) bool {
	return isHTMX(r) || strings.Contains(r.Header.Get("Accept"), "text/html")
}

func isHTMX(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get(htmxHeader), "true")
}

type SectionResponse struct {
	Name   routes.Section `json:"name"`
	Routes []routes.Route `json:"routes"`
}

type RoutesResponse struct {
	Sections []SectionResponse `json:"sections"`
}
