package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicfund/internal/donation/models"
	id "civicfund/pkg/domain"
)

func newDonation(campaignID id.CampaignID, donorID id.UserID, at time.Time, amount int64) *models.Donation {
	return &models.Donation{
		ID:          id.DonationID(uuid.New()),
		CampaignID:  campaignID,
		DonorID:     donorID,
		DonorName:   "Sam Rivera",
		Email:       "sam@example.com",
		AmountCents: amount,
		Currency:    models.CurrencyUSD,
		Frequency:   models.FrequencyOneTime,
		CreatedAt:   at,
	}
}

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	campaignA := id.CampaignID(uuid.New())
	campaignB := id.CampaignID(uuid.New())
	donor := id.UserID(uuid.New())

	first := newDonation(campaignA, donor, base, 1_000)
	second := newDonation(campaignB, donor, base.Add(time.Hour), 2_000)
	guest := newDonation(campaignA, id.UserID{}, base.Add(2*time.Hour), 3_000)
	for _, d := range []*models.Donation{first, second, guest} {
		require.NoError(t, s.Create(ctx, d))
	}

	t.Run("duplicate id conflicts", func(t *testing.T) {
		assert.ErrorIs(t, s.Create(ctx, first), ErrConflict)
	})

	t.Run("find by id", func(t *testing.T) {
		got, err := s.FindByID(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2_000), got.AmountCents)

		_, err = s.FindByID(ctx, id.DonationID(uuid.New()))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list newest first", func(t *testing.T) {
		all, err := s.List(ctx, models.ListFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, guest.ID, all[0].ID)
		assert.Equal(t, first.ID, all[2].ID)
	})

	t.Run("list by donor and campaign", func(t *testing.T) {
		mine, err := s.List(ctx, models.ListFilter{DonorID: donor})
		require.NoError(t, err)
		assert.Len(t, mine, 2)

		forA, err := s.List(ctx, models.ListFilter{CampaignID: campaignA, Limit: 1})
		require.NoError(t, err)
		require.Len(t, forA, 1)
		assert.Equal(t, guest.ID, forA[0].ID)
	})
}
