package handler

import (
	"time"

	"civicfund/internal/campaign/models"
)

// CampaignResponse is the one projection of a campaign every surface renders.
type CampaignResponse struct {
	ID              string     `json:"id"`
	Slug            string     `json:"slug"`
	Title           string     `json:"title"`
	Summary         string     `json:"summary"`
	Description     string     `json:"description,omitempty"`
	Category        string     `json:"category"`
	Organizer       string     `json:"organizer"`
	GoalCents       int64      `json:"goal_cents"`
	RaisedCents     int64      `json:"raised_cents"`
	RemainingCents  int64      `json:"remaining_cents"`
	ProgressPercent float64    `json:"progress_percent"`
	DonorCount      int        `json:"donor_count"`
	ImageURL        string     `json:"image_url,omitempty"`
	Featured        bool       `json:"featured"`
	Status          string     `json:"status"`
	ReviewNote      string     `json:"review_note,omitempty"`
	EndsAt          *time.Time `json:"ends_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type CampaignListResponse struct {
	Campaigns []*CampaignResponse `json:"campaigns"`
	Total     int                 `json:"total"`
}

func FromCampaign(c *models.Campaign) *CampaignResponse {
	return &CampaignResponse{
		ID:              c.ID.String(),
		Slug:            c.Slug,
		Title:           c.Title,
		Summary:         c.Summary,
		Description:     c.Description,
		Category:        c.Category,
		Organizer:       c.Organizer,
		GoalCents:       c.GoalCents,
		RaisedCents:     c.RaisedCents,
		RemainingCents:  c.RemainingCents(),
		ProgressPercent: c.ProgressPercent(),
		DonorCount:      c.DonorCount,
		ImageURL:        c.ImageURL,
		Featured:        c.Featured,
		Status:          string(c.Status),
		ReviewNote:      c.ReviewNote,
		EndsAt:          c.EndsAt,
		CreatedAt:       c.CreatedAt,
	}
}

func FromCampaigns(campaigns []*models.Campaign) *CampaignListResponse {
	out := &CampaignListResponse{Campaigns: make([]*CampaignResponse, 0, len(campaigns)), Total: len(campaigns)}
	for _, c := range campaigns {
		out.Campaigns = append(out.Campaigns, FromCampaign(c))
	}
	return out
}
