package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"civicfund/internal/blog/handler/mocks"
	"civicfund/internal/blog/models"
	"civicfund/internal/blog/service"
	id "civicfund/pkg/domain"
	dErrors "civicfund/pkg/domain-errors"
	"civicfund/pkg/testutil"
)

type BlogHandlerSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	mockService *mocks.MockService
	router      http.Handler
}

func TestBlogHandlerSuite(t *testing.T) {
	suite.Run(t, new(BlogHandlerSuite))
}

func (s *BlogHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockService = mocks.NewMockService(s.ctrl)
	h := New(s.mockService, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.Register(r)
	s.router = r
}

func (s *BlogHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func samplePost() *models.Post {
	return &models.Post{
		ID:          id.PostID(uuid.New()),
		Slug:        "voter-guide",
		Title:       "Voter Guide",
		Content:     "Full text",
		Tags:        []string{"voting"},
		PublishedAt: time.Date(2026, 4, 4, 0, 0, 0, 0, time.UTC),
	}
}

func (s *BlogHandlerSuite) TestHandleSearch() {
	s.Run("parses every filter", func() {
		s.mockService.EXPECT().Search(gomock.Any(), models.Query{
			Text:     "guide",
			Category: "Policy",
			Tags:     []string{"voting", "maps"},
			Sort:     models.SortTitle,
			Limit:    10,
		}).Return(&service.SearchResult{
			Posts: []*models.Post{samplePost()},
			Total: 1,
			Query: models.Query{Sort: models.SortTitle},
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/blog/posts?q=+guide+&category=Policy&tags=Voting,maps&tag=voting&sort=title&limit=10", nil)
		rr := testutil.DoRequest(s.router, req)
		s.Equal(http.StatusOK, rr.Code)
		resp := testutil.UnmarshalResponse[SearchResponse](s.T(), rr)
		s.Equal(1, resp.Total)
		s.Equal("title", resp.Sort)
		s.Empty(resp.Posts[0].Content)
	})

	s.Run("unknown sort", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/blog/posts?sort=random", nil)
		testutil.AssertStatusAndError(s.T(), testutil.DoRequest(s.router, req), http.StatusBadRequest, "bad_request")
	})

	s.Run("limit out of range", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/blog/posts?limit=500", nil)
		testutil.AssertStatusAndError(s.T(), testutil.DoRequest(s.router, req), http.StatusBadRequest, "bad_request")
	})
}

func (s *BlogHandlerSuite) TestHandleGet() {
	s.mockService.EXPECT().Get(gomock.Any(), "voter-guide").Return(samplePost(), nil)
	rr := testutil.DoRequest(s.router, httptest.NewRequest(http.MethodGet, "/api/blog/posts/voter-guide", nil))
	s.Equal(http.StatusOK, rr.Code)
	resp := testutil.UnmarshalResponse[PostResponse](s.T(), rr)
	s.Equal("Full text", resp.Content)

	s.mockService.EXPECT().Get(gomock.Any(), "missing").Return(nil, dErrors.New(dErrors.CodeNotFound, "post not found"))
	rr = testutil.DoRequest(s.router, httptest.NewRequest(http.MethodGet, "/api/blog/posts/missing", nil))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
}

func (s *BlogHandlerSuite) TestHandleCategoriesAndTags() {
	s.mockService.EXPECT().Categories(gomock.Any()).Return(nil, nil)
	rr := testutil.DoRequest(s.router, httptest.NewRequest(http.MethodGet, "/api/blog/categories", nil))
	s.Equal(http.StatusOK, rr.Code)
	s.JSONEq(`{"categories":[]}`, rr.Body.String())

	s.mockService.EXPECT().Tags(gomock.Any()).Return([]string{"maps"}, nil)
	rr = testutil.DoRequest(s.router, httptest.NewRequest(http.MethodGet, "/api/blog/tags", nil))
	s.JSONEq(`{"tags":["maps"]}`, rr.Body.String())
}
