package pages

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	blogmodels "civicfund/internal/blog/models"
	campaignmodels "civicfund/internal/campaign/models"
	"civicfund/internal/site/routes"
	id "civicfund/pkg/domain"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestLayoutWrapsContentInMain(t *testing.T) {
	out := render(t, Layout("FAQ", StaticContent(Static["faq"])))
	assert.Contains(t, out, "<title>FAQ | CivicFund</title>")
	assert.Contains(t, out, `<main id="content"><h1>Frequently asked questions</h1>`)
	assert.Contains(t, out, `href="/how-it-works"`)
}

func TestEveryStaticRouteHasContent(t *testing.T) {
	for _, name := range []string{"about", "how-it-works", "contact", "faq", "privacy", "terms"} {
		_, ok := routes.ByName(name)
		require.True(t, ok, name)
		assert.NotEmpty(t, Static[name].Title, name)
	}
}

func TestCampaignDetailEscapesAndLinksDonate(t *testing.T) {
	c := &campaignmodels.Campaign{
		ID:          id.CampaignID(uuid.New()),
		Slug:        "parks",
		Title:       "Parks <for> all",
		Organizer:   "Friends of Parks",
		GoalCents:   1_000_000,
		RaisedCents: 250_000,
		DonorCount:  1_204,
		Status:      campaignmodels.StatusActive,
	}
	out := render(t, CampaignDetail(c))
	assert.Contains(t, out, "Parks &lt;for&gt; all")
	assert.Contains(t, out, `href="/donate/`+c.ID.String()+`"`)
	assert.Contains(t, out, "$2,500.00 raised of $10,000")
	assert.Contains(t, out, "1,204 donors")

	c.Status = campaignmodels.StatusCompleted
	assert.Contains(t, render(t, CampaignDetail(c)), "no longer accepting donations")
}

func TestBlogResultsFragment(t *testing.T) {
	posts := []*blogmodels.Post{{Slug: "town-hall", Title: "Town hall recap", Category: "Events"}}
	out := render(t, BlogResults(posts, 1))
	assert.Contains(t, out, `<div id="blog-results">`)
	assert.Contains(t, out, "1 post")
	assert.Contains(t, out, `href="/blog/town-hall"`)
	assert.NotContains(t, out, "<form")
}

func TestBlogIndexMarksSelectedFilters(t *testing.T) {
	q := blogmodels.Query{Text: "vote", Category: "events", Sort: blogmodels.SortPopular}
	out := render(t, BlogIndex(nil, 0, q, []blogmodels.CategoryCount{{Name: "Events", Count: 2}}))
	assert.Contains(t, out, `value="vote"`)
	assert.Contains(t, out, `<option value="Events" selected>`)
	assert.Contains(t, out, `<option value="popular" selected>`)
	assert.Contains(t, out, "0 posts")
}

func TestBlogPostParagraphs(t *testing.T) {
	p := &blogmodels.Post{
		Title:       "Ballot guide",
		Author:      "Sam",
		Content:     "First.\n\nSecond.",
		Tags:        []string{"voting rights"},
		PublishedAt: time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC),
		ReadMinutes: 1,
	}
	out := render(t, BlogPost(p))
	assert.Contains(t, out, "<p>First.</p><p>Second.</p>")
	assert.Contains(t, out, "February 3, 2026")
	assert.Contains(t, out, `href="/blog?tag=voting+rights"`)
}

func TestLayoutServesThroughTemplHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	templ.Handler(Layout("", NotFound("/<missing>"))).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<title>CivicFund</title>")
	assert.Contains(t, body, "<code>/&lt;missing&gt;</code>")
	assert.Contains(t, body, `<a href="/register">Register</a>`)
	assert.NotContains(t, body, `href="/privacy">Privacy</a></nav>`)
}

func TestAppShellEscapesRouteAttributes(t *testing.T) {
	route, ok := routes.ByName("dashboard")
	require.True(t, ok)
	out := render(t, AppShell(route))
	assert.Contains(t, out, `data-page="dashboard"`)
	assert.Contains(t, out, `data-section="`+string(route.Section)+`"`)
}

func TestCampaignIndexEmpty(t *testing.T) {
	out := render(t, CampaignIndex(nil, "Parks & Rec"))
	assert.Contains(t, out, `<p class="filter">Category: Parks &amp; Rec</p>`)
	assert.Contains(t, out, "No campaigns match right now.")
	assert.NotContains(t, out, "campaign-grid")
}

func TestRenderStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	require.ErrorIs(t, StaticContent(Static["faq"]).Render(ctx, &buf), context.Canceled)
	assert.Zero(t, buf.Len())
}
