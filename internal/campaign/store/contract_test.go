package store

import (
	"context"
	"errors"
	"time"

	"civicfund/internal/campaign/models"
	id "civicfund/pkg/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

// campaignStore is the surface both implementations share.
type campaignStore interface {
	Create(ctx context.Context, c *models.Campaign) error
	FindByID(ctx context.Context, campaignID id.CampaignID) (*models.Campaign, error)
	FindBySlug(ctx context.Context, slug string) (*models.Campaign, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.Campaign, error)
	Execute(ctx context.Context, campaignID id.CampaignID, validate func(*models.Campaign) error, mutate func(*models.Campaign)) (*models.Campaign, error)
}

// storeContractSuite holds behaviour every campaign store must satisfy.
type storeContractSuite struct {
	suite.Suite
	store campaignStore
	ctx   context.Context
}

var baseTime = time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

func (s *storeContractSuite) newCampaign(title string, status models.Status, offset time.Duration) *models.Campaign {
	c, err := models.NewCampaign(id.CampaignID(uuid.New()), models.Draft{
		Title:     title,
		Category:  "environment",
		Organizer: "Riverside Coalition",
		GoalCents: 100_000,
	}, baseTime.Add(offset))
	s.Require().NoError(err)
	c.Status = status
	s.Require().NoError(s.store.Create(s.ctx, c))
	return c
}

func (s *storeContractSuite) TestCreateAndFind() {
	c := s.newCampaign("Clean Water Now", models.StatusActive, 0)

	byID, err := s.store.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.Title, byID.Title)
	s.Equal(c.CreatedAt.Unix(), byID.CreatedAt.Unix())

	bySlug, err := s.store.FindBySlug(s.ctx, "clean-water-now")
	s.Require().NoError(err)
	s.Equal(c.ID, bySlug.ID)

	_, err = s.store.FindByID(s.ctx, id.CampaignID(uuid.New()))
	s.ErrorIs(err, ErrNotFound)
	_, err = s.store.FindBySlug(s.ctx, "missing")
	s.ErrorIs(err, ErrNotFound)
}

func (s *storeContractSuite) TestCreateRejectsDuplicateSlug() {
	s.newCampaign("Library Hours", models.StatusActive, 0)
	dup, err := models.NewCampaign(id.CampaignID(uuid.New()), models.Draft{
		Title: "Library Hours", Organizer: "Someone", GoalCents: 10,
	}, baseTime)
	s.Require().NoError(err)
	s.ErrorIs(s.store.Create(s.ctx, dup), ErrConflict)
}

func (s *storeContractSuite) TestListFiltersAndOrders() {
	older := s.newCampaign("Older Active", models.StatusActive, 0)
	newer := s.newCampaign("Newer Active", models.StatusActive, time.Hour)
	featured := s.newCampaign("Featured Active", models.StatusActive, -time.Hour)
	s.newCampaign("Pending One", models.StatusPendingReview, 2*time.Hour)

	_, err := s.store.Execute(s.ctx, featured.ID, func(*models.Campaign) error { return nil }, func(c *models.Campaign) {
		c.Featured = true
	})
	s.Require().NoError(err)

	active, err := s.store.List(s.ctx, models.ListFilter{Statuses: []models.Status{models.StatusActive}})
	s.Require().NoError(err)
	s.Require().Len(active, 3)
	s.Equal(featured.ID, active[0].ID, "featured campaigns lead")
	s.Equal(newer.ID, active[1].ID)
	s.Equal(older.ID, active[2].ID)

	limited, err := s.store.List(s.ctx, models.ListFilter{Query: "NEWER"})
	s.Require().NoError(err)
	s.Require().Len(limited, 1)
	s.Equal(newer.ID, limited[0].ID)

	all, err := s.store.List(s.ctx, models.ListFilter{Limit: 2})
	s.Require().NoError(err)
	s.Len(all, 2)
}

func (s *storeContractSuite) TestExecute() {
	c := s.newCampaign("Transit Fund", models.StatusActive, 0)

	s.Run("mutates when validation passes", func() {
		updated, err := s.store.Execute(s.ctx, c.ID,
			func(*models.Campaign) error { return nil },
			func(c *models.Campaign) { c.ApplyDonation(2_500, baseTime) },
		)
		s.Require().NoError(err)
		s.Equal(int64(2_500), updated.RaisedCents)

		stored, err := s.store.FindByID(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Equal(1, stored.DonorCount)
	})

	s.Run("leaves the record untouched when validation fails", func() {
		boom := errors.New("nope")
		_, err := s.store.Execute(s.ctx, c.ID,
			func(*models.Campaign) error { return boom },
			func(c *models.Campaign) { c.Title = "changed" },
		)
		s.ErrorIs(err, boom)

		stored, err := s.store.FindByID(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Equal("Transit Fund", stored.Title)
	})

	s.Run("missing campaign", func() {
		_, err := s.store.Execute(s.ctx, id.CampaignID(uuid.New()),
			func(*models.Campaign) error { return nil }, func(*models.Campaign) {})
		s.ErrorIs(err, ErrNotFound)
	})
}
