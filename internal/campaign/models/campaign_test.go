package models

import (
	"strings"
	"testing"
	"time"

	id "civicfund/pkg/domain"
	dErrors "civicfund/pkg/domain-errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var now = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func validDraft() Draft {
	return Draft{
		Title:     "Clean Water for Riverside",
		Summary:   "Replace lead pipes",
		Category:  "Environment",
		Organizer: "Riverside Coalition",
		GoalCents: 5_000_000,
	}
}

type CampaignModelSuite struct {
	suite.Suite
}

func TestCampaignModelSuite(t *testing.T) {
	suite.Run(t, new(CampaignModelSuite))
}

func (s *CampaignModelSuite) TestNewCampaign() {
	s.Run("valid draft", func() {
		c, err := NewCampaign(id.CampaignID(uuid.New()), validDraft(), now)
		s.Require().NoError(err)
		s.Equal("clean-water-for-riverside", c.Slug)
		s.Equal("environment", c.Category)
		s.Equal(StatusDraft, c.Status)
		s.Equal(now, c.CreatedAt)
	})

	invalid := map[string]func(d *Draft){
		"short title":        func(d *Draft) { d.Title = "ab" },
		"long title":         func(d *Draft) { d.Title = strings.Repeat("x", 121) },
		"zero goal":          func(d *Draft) { d.GoalCents = 0 },
		"negative goal":      func(d *Draft) { d.GoalCents = -5 },
		"goal over maximum":  func(d *Draft) { d.GoalCents = MaxGoalCents + 1 },
		"missing organizer":  func(d *Draft) { d.Organizer = "  " },
		"end date in past":   func(d *Draft) { past := now.Add(-time.Hour); d.EndsAt = &past },
		"end date right now": func(d *Draft) { d.EndsAt = &now },
	}
	for name, mutate := range invalid {
		s.Run(name, func() {
			d := validDraft()
			mutate(&d)
			_, err := NewCampaign(id.CampaignID(uuid.New()), d, now)
			s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation), "got %v", err)
		})
	}

	s.Run("title of only symbols falls back to a generic slug", func() {
		d := validDraft()
		d.Title = "!!!???"
		c, err := NewCampaign(id.CampaignID(uuid.New()), d, now)
		s.Require().NoError(err)
		s.Equal("campaign", c.Slug)
	})
}

func (s *CampaignModelSuite) TestReviewTransitions() {
	cases := []struct {
		from    Status
		action  Action
		allowed bool
	}{
		{StatusDraft, ActionSubmit, true},
		{StatusDraft, ActionApprove, false},
		{StatusPendingReview, ActionApprove, true},
		{StatusPendingReview, ActionReject, true},
		{StatusPendingReview, ActionSuspend, false},
		{StatusActive, ActionSuspend, true},
		{StatusActive, ActionComplete, true},
		{StatusActive, ActionApprove, false},
		{StatusSuspended, ActionReinstate, true},
		{StatusSuspended, ActionComplete, false},
		{StatusRejected, ActionApprove, false},
		{StatusCompleted, ActionReinstate, false},
	}
	for _, tc := range cases {
		s.Run(string(tc.from)+"/"+string(tc.action), func() {
			c := &Campaign{Status: tc.from}
			err := c.CanReview(tc.action, "reason")
			if !tc.allowed {
				s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
				return
			}
			s.Require().NoError(err)
			c.ApplyReview(tc.action, "reason", now)
			target, _ := tc.action.Target()
			s.Equal(target, c.Status)
			s.Equal(now, c.UpdatedAt)
		})
	}
}

func (s *CampaignModelSuite) TestRejectRequiresReason() {
	c := &Campaign{Status: StatusPendingReview}
	err := c.CanReview(ActionReject, "   ")
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func (s *CampaignModelSuite) TestDonations() {
	ends := now.Add(24 * time.Hour)
	c := &Campaign{Status: StatusActive, GoalCents: 10_000, EndsAt: &ends}

	s.Require().NoError(c.CanAcceptDonation(now))
	c.ApplyDonation(2_500, now)
	c.ApplyDonation(2_500, now)
	s.Equal(int64(5_000), c.RaisedCents)
	s.Equal(2, c.DonorCount)
	s.InDelta(50.0, c.ProgressPercent(), 0.001)
	s.Equal(int64(5_000), c.RemainingCents())

	s.Error(c.CanAcceptDonation(ends.Add(time.Second)), "ended campaigns reject donations")

	c.Status = StatusSuspended
	s.Error(c.CanAcceptDonation(now))
}

func TestProgressCapsAtHundred(t *testing.T) {
	c := &Campaign{GoalCents: 100, RaisedCents: 250}
	assert.Equal(t, 100.0, c.ProgressPercent())
	assert.Equal(t, int64(0), c.RemainingCents())
	assert.Equal(t, 0.0, (&Campaign{}).ProgressPercent())
}

func TestParseHelpers(t *testing.T) {
	a, err := ParseAction("approve")
	require.NoError(t, err)
	assert.Equal(t, ActionApprove, a)

	_, err = ParseAction("delete")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

	st, err := ParseStatus("pending_review")
	require.NoError(t, err)
	assert.Equal(t, StatusPendingReview, st)

	_, err = ParseStatus("archived")
	assert.Error(t, err)
}

func TestListFilterMatches(t *testing.T) {
	featured := true
	organizer := id.UserID(uuid.New())
	c := &Campaign{
		Title: "School Board Votes", Summary: "Turnout drive", Organizer: "Civic League",
		Category: "education", Status: StatusActive, Featured: true, OrganizerID: organizer,
	}

	assert.True(t, ListFilter{}.Matches(c))
	assert.True(t, ListFilter{Statuses: []Status{StatusActive}, Category: "education", Query: "turnout", Featured: &featured}.Matches(c))
	assert.True(t, ListFilter{Category: "all"}.Matches(c))
	assert.True(t, ListFilter{OrganizerID: organizer}.Matches(c))
	assert.False(t, ListFilter{Statuses: []Status{StatusPendingReview}}.Matches(c))
	assert.False(t, ListFilter{Category: "health"}.Matches(c))
	assert.False(t, ListFilter{Query: "housing"}.Matches(c))
	assert.False(t, ListFilter{OrganizerID: id.UserID(uuid.New())}.Matches(c))
}
