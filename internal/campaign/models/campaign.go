package models

import (
	"strings"
	"time"
	"unicode/utf8"

	id "civicfund/pkg/domain"
	dErrors "civicfund/pkg/domain-errors"
	pstrings "civicfund/pkg/platform/strings"
)

const (
	MinTitleLength = 3
	MaxTitleLength = 120
	// MaxGoalCents caps a single campaign goal at $10,000,000.
	MaxGoalCents int64 = 1_000_000_000
)

// Campaign is the single shape every surface (public list, detail page, admin
// table, dashboard) projects from.
//
// Invariants:
//   - Title is 3..120 characters
//   - GoalCents > 0; RaisedCents >= 0; DonorCount >= 0
//   - Only active campaigns accept donations and appear in public listings
//   - Status changes follow the review state machine (see Status.CanTransitionTo)
type Campaign struct {
	ID          id.CampaignID `json:"id"`
	Slug        string        `json:"slug"`
	Title       string        `json:"title"`
	Summary     string        `json:"summary"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Organizer   string        `json:"organizer"`
	OrganizerID id.UserID     `json:"organizer_id"`
	GoalCents   int64         `json:"goal_cents"`
	RaisedCents int64         `json:"raised_cents"`
	DonorCount  int           `json:"donor_count"`
	ImageURL    string        `json:"image_url"`
	Featured    bool          `json:"featured"`
	Status      Status        `json:"status"`
	EndsAt      *time.Time    `json:"ends_at,omitempty"`
	ReviewNote  string        `json:"review_note,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Draft carries the organizer-supplied fields of a new campaign.
type Draft struct {
	Title       string
	Summary     string
	Description string
	Category    string
	Organizer   string
	OrganizerID id.UserID
	GoalCents   int64
	ImageURL    string
	EndsAt      *time.Time
}

// NewCampaign validates a draft and returns a campaign in draft status.
func NewCampaign(campaignID id.CampaignID, d Draft, now time.Time) (*Campaign, error) {
	title := strings.TrimSpace(d.Title)
	if n := utf8.RuneCountInString(title); n < MinTitleLength || n > MaxTitleLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "campaign title must be between 3 and 120 characters")
	}
	if d.GoalCents <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "campaign goal must be greater than zero")
	}
	if d.GoalCents > MaxGoalCents {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "campaign goal exceeds the maximum")
	}
	if strings.TrimSpace(d.Organizer) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "campaign organizer is required")
	}
	if d.EndsAt != nil && !d.EndsAt.After(now) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "campaign end date must be in the future")
	}

	slug := pstrings.Slugify(title)
	if slug == "" {
		slug = "campaign"
	}

	return &Campaign{
		ID:          campaignID,
		Slug:        slug,
		Title:       title,
		Summary:     strings.TrimSpace(d.Summary),
		Description: strings.TrimSpace(d.Description),
		Category:    strings.ToLower(strings.TrimSpace(d.Category)),
		Organizer:   strings.TrimSpace(d.Organizer),
		OrganizerID: d.OrganizerID,
		GoalCents:   d.GoalCents,
		ImageURL:    strings.TrimSpace(d.ImageURL),
		Status:      StatusDraft,
		EndsAt:      d.EndsAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (c *Campaign) IsActive() bool {
	return c.Status == StatusActive
}

// ProgressPercent returns raised/goal as a percentage capped at 100 for display.
func (c *Campaign) ProgressPercent() float64 {
	if c.GoalCents <= 0 {
		return 0
	}
	pct := float64(c.RaisedCents) / float64(c.GoalCents) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// RemainingCents is the amount still needed to reach the goal, never negative.
func (c *Campaign) RemainingCents() int64 {
	if c.RaisedCents >= c.GoalCents {
		return 0
	}
	return c.GoalCents - c.RaisedCents
}

// CanReview checks whether action is a legal transition from the current status.
// Rejections require a reason.
// Use with ApplyReview in Execute callbacks.
func (c *Campaign) CanReview(action Action, note string) error {
	target, ok := action.Target()
	if !ok {
		return dErrors.New(dErrors.CodeInvariantViolation, "unknown campaign action")
	}
	if !c.Status.CanTransitionTo(target) {
		return dErrors.New(dErrors.CodeInvariantViolation,
			"cannot "+string(action)+" a campaign that is "+string(c.Status))
	}
	if action == ActionReject && strings.TrimSpace(note) == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "a rejection reason is required")
	}
	return nil
}

// ApplyReview moves the campaign to the action's target status.
// Call CanReview first to validate the transition.
func (c *Campaign) ApplyReview(action Action, note string, now time.Time) {
	target, _ := action.Target()
	c.Status = target
	if note = strings.TrimSpace(note); note != "" {
		c.ReviewNote = note
	}
	c.UpdatedAt = now
}

// CanAcceptDonation checks that the campaign is active and not past its end date.
func (c *Campaign) CanAcceptDonation(now time.Time) error {
	if c.Status != StatusActive {
		return dErrors.New(dErrors.CodeInvariantViolation, "campaign is not accepting donations")
	}
	if c.EndsAt != nil && now.After(*c.EndsAt) {
		return dErrors.New(dErrors.CodeInvariantViolation, "campaign has ended")
	}
	return nil
}

// ApplyDonation adds a pledge to the running totals.
// Call CanAcceptDonation first.
func (c *Campaign) ApplyDonation(amountCents int64, now time.Time) {
	c.RaisedCents += amountCents
	c.DonorCount++
	c.UpdatedAt = now
}
