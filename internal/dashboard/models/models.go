package models

import (
	"sort"
	"time"

	campaignmodels "civicfund/internal/campaign/models"
	donationmodels "civicfund/internal/donation/models"
	id "civicfund/pkg/domain"
)

// MonthKeyLayout formats the month buckets of a series.
const MonthKeyLayout = "2006-01"

// MonthTotal is one bucket of a monthly series.
type MonthTotal struct {
	Month       string `json:"month"`
	AmountCents int64  `json:"amount_cents"`
	Count       int    `json:"count"`
}

// CampaignTotal is what a set of donations contributed to one campaign.
type CampaignTotal struct {
	CampaignID  id.CampaignID `json:"campaign_id"`
	Slug        string        `json:"slug"`
	Title       string        `json:"title"`
	Status      string        `json:"status"`
	AmountCents int64         `json:"amount_cents"`
	Count       int           `json:"count"`
	// Progress is the campaign's overall progress toward its goal.
	Progress float64 `json:"progress"`
}

// DonorSummary backs the donor dashboard.
type DonorSummary struct {
	TotalGivenCents    int64                      `json:"total_given_cents"`
	DonationCount      int                        `json:"donation_count"`
	CampaignsSupported int                        `json:"campaigns_supported"`
	MonthlyPledgeCents int64                      `json:"monthly_pledge_cents"`
	Recent             []*donationmodels.Donation `json:"recent"`
	Campaigns          []CampaignTotal            `json:"campaigns"`
	Monthly            []MonthTotal               `json:"monthly"`
}

// Overview backs the admin landing page counters.
type Overview struct {
	UsersByRole           map[string]int `json:"users_by_role"`
	RegistrationsByStatus map[string]int `json:"registrations_by_status"`
	CampaignsByStatus     map[string]int `json:"campaigns_by_status"`
	PendingReviews        int            `json:"pending_reviews"`
}

// Analytics backs the admin analytics page.
type Analytics struct {
	RaisedCents       int64           `json:"raised_cents"`
	DonationCount     int             `json:"donation_count"`
	AverageCents      int64           `json:"average_cents"`
	RaisedPerCampaign []CampaignTotal `json:"raised_per_campaign"`
	DonationsPerMonth []MonthTotal    `json:"donations_per_month"`
	TopCampaigns      []CampaignTotal `json:"top_campaigns"`
}

// MonthlySeries buckets donations into the UTC months ending with now's
// month, oldest first. Months without donations are present with zero totals.
func MonthlySeries(donations []*donationmodels.Donation, now time.Time, months int) []MonthTotal {
	if months <= 0 {
		return []MonthTotal{}
	}
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	series := make([]MonthTotal, months)
	index := make(map[string]int, months)
	for i := range series {
		key := start.AddDate(0, i, 0).Format(MonthKeyLayout)
		series[i].Month = key
		index[key] = i
	}
	for _, d := range donations {
		i, ok := index[d.CreatedAt.UTC().Format(MonthKeyLayout)]
		if !ok {
			continue
		}
		series[i].AmountCents += d.AmountCents
		series[i].Count++
	}
	return series
}

// TotalsByCampaign sums donations per campaign, largest amount first, ties by
// title. Donations to campaigns missing from the lookup are skipped.
func TotalsByCampaign(donations []*donationmodels.Donation, campaigns map[id.CampaignID]*campaignmodels.Campaign) []CampaignTotal {
	totals := make(map[id.CampaignID]*CampaignTotal)
	for _, d := range donations {
		c, ok := campaigns[d.CampaignID]
		if !ok {
			continue
		}
		t, ok := totals[d.CampaignID]
		if !ok {
			t = &CampaignTotal{
				CampaignID: c.ID,
				Slug:       c.Slug,
				Title:      c.Title,
				Status:     string(c.Status),
				Progress:   c.ProgressPercent(),
			}
			totals[d.CampaignID] = t
		}
		t.AmountCents += d.AmountCents
		t.Count++
	}
	out := make([]CampaignTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AmountCents != out[j].AmountCents {
			return out[i].AmountCents > out[j].AmountCents
		}
		return out[i].Title < out[j].Title
	})
	return out
}

// Summarize builds a donor's dashboard from their donations.
func Summarize(donations []*donationmodels.Donation, campaigns map[id.CampaignID]*campaignmodels.Campaign, now time.Time, months, recent int) *DonorSummary {
	s := &DonorSummary{
		Campaigns: TotalsByCampaign(donations, campaigns),
		Monthly:   MonthlySeries(donations, now, months),
	}
	for _, d := range donations {
		s.TotalGivenCents += d.AmountCents
		s.DonationCount++
		if d.Frequency == donationmodels.FrequencyMonthly {
			s.MonthlyPledgeCents += d.AmountCents
		}
	}
	s.CampaignsSupported = len(s.Campaigns)

	ordered := append([]*donationmodels.Donation(nil), donations...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].CreatedAt.After(ordered[j].CreatedAt) })
	if recent > 0 && len(ordered) > recent {
		ordered = ordered[:recent]
	}
	s.Recent = ordered
	return s
}

// Analyze builds platform analytics over every donation.
func Analyze(donations []*donationmodels.Donation, campaigns map[id.CampaignID]*campaignmodels.Campaign, now time.Time, months, top int) *Analytics {
	a := &Analytics{
		RaisedPerCampaign: TotalsByCampaign(donations, campaigns),
		DonationsPerMonth: MonthlySeries(donations, now, months),
	}
	for _, d := range donations {
		a.RaisedCents += d.AmountCents
		a.DonationCount++
	}
	if a.DonationCount > 0 {
		a.AverageCents = a.RaisedCents / int64(a.DonationCount)
	}
	a.TopCampaigns = a.RaisedPerCampaign
	if top > 0 && len(a.TopCampaigns) > top {
		a.TopCampaigns = a.TopCampaigns[:top]
	}
	return a
}

// IndexCampaigns keys campaigns by ID.
func IndexCampaigns(campaigns []*campaignmodels.Campaign) map[id.CampaignID]*campaignmodels.Campaign {
	out := make(map[id.CampaignID]*campaignmodels.Campaign, len(campaigns))
	for _, c := range campaigns {
		out[c.ID] = c
	}
	return out
}
