package handler

import (
	"strings"
	"time"

	"civicfund/internal/campaign/models"
	id "civicfund/pkg/domain"
	"civicfund/pkg/platform/validation"
)

const maxSummaryLength = 280

// SubmitCampaignRequest is the body of POST /api/campaigns.
type SubmitCampaignRequest struct {
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Organizer   string     `json:"organizer"`
	GoalCents   int64      `json:"goal_cents"`
	ImageURL    string     `json:"image_url"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
}

func (r *SubmitCampaignRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Summary = strings.TrimSpace(r.Summary)
	r.Category = strings.ToLower(strings.TrimSpace(r.Category))
	r.Organizer = strings.TrimSpace(r.Organizer)
	r.ImageURL = strings.TrimSpace(r.ImageURL)
}

func (r *SubmitCampaignRequest) Validate() error {
	v := validation.New()
	v.Length("title", r.Title, models.MinTitleLength, models.MaxTitleLength)
	v.MaxLength("summary", r.Summary, maxSummaryLength)
	v.Length("organizer", r.Organizer, validation.MinNameLength, validation.MaxNameLength)
	v.Check(r.GoalCents > 0, "goal_cents", "must be greater than zero")
	v.Check(r.GoalCents <= models.MaxGoalCents, "goal_cents", "exceeds the maximum goal")
	return v.Err("invalid campaign")
}

// ToDraft binds the request to the submitting organizer.
func (r *SubmitCampaignRequest) ToDraft(organizerID id.UserID) models.Draft {
	return models.Draft{
		Title:       r.Title,
		Summary:     r.Summary,
		Description: r.Description,
		Category:    r.Category,
		Organizer:   r.Organizer,
		OrganizerID: organizerID,
		GoalCents:   r.GoalCents,
		ImageURL:    r.ImageURL,
		EndsAt:      r.EndsAt,
	}
}

// ReviewRequest is the optional body of POST /admin/campaigns/{id}/{action}.
type ReviewRequest struct {
	Note string `json:"note"`
}
