package store

import (
	"context"
	"sync"
	"testing"

	"civicfund/internal/campaign/models"

	"github.com/stretchr/testify/suite"
)

type InMemoryStoreSuite struct {
	storeContractSuite
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) TestReturnedCampaignsAreCopies() {
	c := s.newCampaign("Copy Check", models.StatusActive, 0)
	found, err := s.store.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	found.Title = "mutated"

	again, err := s.store.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal("Copy Check", again.Title)
}

func (s *InMemoryStoreSuite) TestConcurrentDonationsAreSerialized() {
	c := s.newCampaign("Concurrency", models.StatusActive, 0)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.store.Execute(s.ctx, c.ID,
				func(c *models.Campaign) error { return c.CanAcceptDonation(baseTime) },
				func(c *models.Campaign) { c.ApplyDonation(100, baseTime) },
			)
		}()
	}
	wg.Wait()

	stored, err := s.store.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(int64(5_000), stored.RaisedCents)
	s.Equal(50, stored.DonorCount)
}
