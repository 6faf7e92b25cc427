package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"civicfund/internal/blog/models"
	id "civicfund/pkg/domain"
)

type postStore interface {
	Upsert(ctx context.Context, p *models.Post) error
	List(ctx context.Context) ([]*models.Post, error)
	FindBySlug(ctx context.Context, slug string) (*models.Post, error)
	IncrementViews(ctx context.Context, slug string) (*models.Post, error)
}

type storeContractSuite struct {
	suite.Suite
	store postStore
	ctx   context.Context
}

func newPost(title string, tags ...string) *models.Post {
	p, err := models.NewPost(models.Post{
		ID:          id.PostID(uuid.New()),
		Title:       title,
		Excerpt:     "excerpt",
		Content:     "body text",
		Category:    "Policy",
		Tags:        tags,
		Author:      "Sam",
		PublishedAt: time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
	})
	if err != nil {
		panic(err)
	}
	return p
}

func (s *storeContractSuite) TestUpsertAndFind() {
	p := newPost("Open Data Day", "data", "civic")
	s.Require().NoError(s.store.Upsert(s.ctx, p))

	found, err := s.store.FindBySlug(s.ctx, "open-data-day")
	s.Require().NoError(err)
	s.Equal(p.ID, found.ID)
	s.Equal([]string{"data", "civic"}, found.Tags)
	s.True(p.PublishedAt.Equal(found.PublishedAt))

	_, err = s.store.FindBySlug(s.ctx, "missing")
	s.ErrorIs(err, ErrNotFound)
}

func (s *storeContractSuite) TestUpsertReplacesBySlug() {
	p := newPost("Open Data Day")
	s.Require().NoError(s.store.Upsert(s.ctx, p))
	p.Excerpt = "updated"
	s.Require().NoError(s.store.Upsert(s.ctx, p))

	all, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
	s.Equal("updated", all[0].Excerpt)
}

func (s *storeContractSuite) TestIncrementViews() {
	s.Require().NoError(s.store.Upsert(s.ctx, newPost("Counting Votes")))
	_, err := s.store.IncrementViews(s.ctx, "counting-votes")
	s.Require().NoError(err)
	p, err := s.store.IncrementViews(s.ctx, "counting-votes")
	s.Require().NoError(err)
	s.Equal(int64(2), p.Views)

	_, err = s.store.IncrementViews(s.ctx, "nope")
	s.ErrorIs(err, ErrNotFound)
}
