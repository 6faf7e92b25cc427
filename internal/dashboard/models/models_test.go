package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	campaignmodels "civicfund/internal/campaign/models"
	donationmodels "civicfund/internal/donation/models"
	id "civicfund/pkg/domain"
)

var now = time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC)

func campaign(title string, goal, raised int64) *campaignmodels.Campaign {
	return &campaignmodels.Campaign{
		ID:          id.CampaignID(uuid.New()),
		Slug:        title,
		Title:       title,
		GoalCents:   goal,
		RaisedCents: raised,
		Status:      campaignmodels.StatusActive,
	}
}

func donation(c *campaignmodels.Campaign, amount int64, at time.Time, freq donationmodels.Frequency) *donationmodels.Donation {
	return &donationmodels.Donation{
		ID:          id.DonationID(uuid.New()),
		CampaignID:  c.ID,
		AmountCents: amount,
		Frequency:   freq,
		CreatedAt:   at,
	}
}

func TestMonthlySeries(t *testing.T) {
	c := campaign("parks", 1000, 0)
	series := MonthlySeries([]*donationmodels.Donation{
		donation(c, 500, now, donationmodels.FrequencyOneTime),
		donation(c, 250, now.AddDate(0, 0, -19), donationmodels.FrequencyOneTime),
		donation(c, 100, now.AddDate(0, -2, 0), donationmodels.FrequencyOneTime),
		donation(c, 999, now.AddDate(-1, 0, 0), donationmodels.FrequencyOneTime),
	}, now, 3)

	assert.Equal(t, []MonthTotal{
		{Month: "2026-03", AmountCents: 100, Count: 1},
		{Month: "2026-04", AmountCents: 0, Count: 0},
		{Month: "2026-05", AmountCents: 750, Count: 2},
	}, series)
	assert.Empty(t, MonthlySeries(nil, now, 0))
}

func TestMonthlySeriesUsesUTCMonths(t *testing.T) {
	c := campaign("parks", 1000, 0)
	// 05:00 on June 1st in UTC+10 is still May 31st in UTC.
	local := time.Date(2026, 6, 1, 5, 0, 0, 0, time.FixedZone("UTC+10", 10*60*60))
	series := MonthlySeries([]*donationmodels.Donation{
		donation(c, 400, time.Date(2026, 5, 31, 18, 0, 0, 0, time.UTC), donationmodels.FrequencyOneTime),
	}, local, 2)

	assert.Equal(t, []MonthTotal{
		{Month: "2026-04", AmountCents: 0, Count: 0},
		{Month: "2026-05", AmountCents: 400, Count: 1},
	}, series)
}

func TestSummarize(t *testing.T) {
	parks := campaign("parks", 10_000, 5_000)
	library := campaign("library", 20_000, 1_000)
	orphan := campaign("gone", 1, 0)
	donations := []*donationmodels.Donation{
		donation(parks, 1_000, now.AddDate(0, -1, 0), donationmodels.FrequencyMonthly),
		donation(library, 3_000, now, donationmodels.FrequencyOneTime),
		donation(parks, 1_500, now.AddDate(0, 0, -1), donationmodels.FrequencyOneTime),
		donation(orphan, 700, now.AddDate(0, 0, -2), donationmodels.FrequencyOneTime),
	}
	lookup := IndexCampaigns([]*campaignmodels.Campaign{parks, library})

	s := Summarize(donations, lookup, now, 12, 2)
	assert.Equal(t, int64(6_200), s.TotalGivenCents)
	assert.Equal(t, 4, s.DonationCount)
	assert.Equal(t, int64(1_000), s.MonthlyPledgeCents)
	assert.Equal(t, 2, s.CampaignsSupported)
	require.Len(t, s.Campaigns, 2)
	assert.Equal(t, "library", s.Campaigns[0].Title)
	assert.Equal(t, int64(2_500), s.Campaigns[1].AmountCents)
	assert.InDelta(t, 50.0, s.Campaigns[1].Progress, 0.001)
	require.Len(t, s.Recent, 2)
	assert.Equal(t, int64(3_000), s.Recent[0].AmountCents)
	assert.Len(t, s.Monthly, 12)
	assert.Equal(t, "2026-05", s.Monthly[11].Month)
	assert.Equal(t, int64(5_200), s.Monthly[11].AmountCents)
}

func TestAnalyze(t *testing.T) {
	a1, a2, a3 := campaign("a", 100, 0), campaign("b", 100, 0), campaign("c", 100, 0)
	donations := []*donationmodels.Donation{
		donation(a1, 100, now, donationmodels.FrequencyOneTime),
		donation(a2, 300, now, donationmodels.FrequencyOneTime),
		donation(a3, 200, now, donationmodels.FrequencyOneTime),
		donation(a3, 200, now, donationmodels.FrequencyOneTime),
	}
	a := Analyze(donations, IndexCampaigns([]*campaignmodels.Campaign{a1, a2, a3}), now, 6, 2)
	assert.Equal(t, int64(800), a.RaisedCents)
	assert.Equal(t, 4, a.DonationCount)
	assert.Equal(t, int64(200), a.AverageCents)
	assert.Len(t, a.RaisedPerCampaign, 3)
	require.Len(t, a.TopCampaigns, 2)
	assert.Equal(t, "c", a.TopCampaigns[0].Title)
	assert.Equal(t, "b", a.TopCampaigns[1].Title)

	empty := Analyze(nil, nil, now, 6, 5)
	assert.Zero(t, empty.AverageCents)
	assert.Empty(t, empty.TopCampaigns)
}
