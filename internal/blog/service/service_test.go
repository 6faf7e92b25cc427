package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"civicfund/internal/blog/metrics"
	"civicfund/internal/blog/models"
	"civicfund/internal/blog/service/mocks"
	"civicfund/internal/blog/store"
	id "civicfund/pkg/domain"
	dErrors "civicfund/pkg/domain-errors"
)

type BlogServiceSuite struct {
	suite.Suite
	store   *store.InMemoryStore
	metrics *metrics.Metrics
	service *Service
	ctx     context.Context
}

func TestBlogServiceSuite(t *testing.T) {
	suite.Run(t, new(BlogServiceSuite))
}

func (s *BlogServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = store.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = New(s.store, WithMetrics(s.metrics))

	published := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range []models.Post{
		{Title: "Redistricting 101", Category: "Policy", Tags: []string{"maps", "voting"}, Featured: true},
		{Title: "Meet Our Volunteers", Category: "Community", Tags: []string{"volunteers"}},
		{Title: "Early Voting Dates", Category: "Policy", Tags: []string{"voting"}, Featured: true},
	} {
		p.ID = id.PostID(uuid.New())
		p.PublishedAt = published.AddDate(0, 0, i)
		_, err := s.service.Publish(s.ctx, p)
		s.Require().NoError(err)
	}
}

func (s *BlogServiceSuite) TestSearchCountsBeforeLimit() {
	result, err := s.service.Search(s.ctx, models.Query{Tags: []string{"voting"}, Limit: 1})
	s.Require().NoError(err)
	s.Equal(2, result.Total)
	s.Require().Len(result.Posts, 1)
	s.Equal("Early Voting Dates", result.Posts[0].Title)
	s.Equal(1, result.Query.Limit)
	s.InDelta(1, testutil.ToFloat64(s.metrics.Searches.WithLabelValues("newest")), 0)
}

func (s *BlogServiceSuite) TestGetIncrementsViews() {
	_, err := s.service.Get(s.ctx, "meet-our-volunteers")
	s.Require().NoError(err)
	p, err := s.service.Get(s.ctx, "meet-our-volunteers")
	s.Require().NoError(err)
	s.Equal(int64(2), p.Views)

	result, err := s.service.Search(s.ctx, models.Query{Sort: models.SortPopular})
	s.Require().NoError(err)
	s.Equal("Meet Our Volunteers", result.Posts[0].Title)

	_, err = s.service.Get(s.ctx, "unknown")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *BlogServiceSuite) TestCategoriesTagsFeatured() {
	cats, err := s.service.Categories(s.ctx)
	s.Require().NoError(err)
	s.Equal([]models.CategoryCount{{Name: "Community", Count: 1}, {Name: "Policy", Count: 2}}, cats)

	tags, err := s.service.Tags(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"maps", "volunteers", "voting"}, tags)

	featured, err := s.service.Featured(s.ctx, 5)
	s.Require().NoError(err)
	s.Require().Len(featured, 2)
	s.Equal("Early Voting Dates", featured[0].Title)
}

func (s *BlogServiceSuite) TestPublishRejectsUntitled() {
	_, err := s.service.Publish(s.ctx, models.Post{ID: id.PostID(uuid.New()), PublishedAt: time.Now()})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *BlogServiceSuite) TestStoreFailureIsInternal() {
	ctrl := gomock.NewController(s.T())
	mockStore := mocks.NewMockStore(ctrl)
	mockStore.EXPECT().List(gomock.Any()).Return(nil, errors.New("database is locked"))

	_, err := New(mockStore).Search(s.ctx, models.Query{})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
