package models

import (
	"strings"
	"time"

	id "civicfund/pkg/domain"
	dErrors "civicfund/pkg/domain-errors"
)

// Form bounds. The limits are form-shape checks, not contribution law.
const (
	MinAmountCents int64 = 100
	MaxAmountCents int64 = 10_000_000
	CurrencyUSD          = "USD"
	AnonymousName        = "Anonymous"
)

// PresetAmountsCents are the quick-pick amounts offered on the donation form.
var PresetAmountsCents = []int64{2_500, 5_000, 10_000, 25_000, 50_000, 100_000}

type Frequency string

const (
	FrequencyOneTime Frequency = "one_time"
	FrequencyMonthly Frequency = "monthly"
)

func (f Frequency) IsValid() bool {
	return f == FrequencyOneTime || f == FrequencyMonthly
}

// Donation is a recorded pledge. Nothing is charged.
type Donation struct {
	ID          id.DonationID `json:"id"`
	CampaignID  id.CampaignID `json:"campaign_id"`
	DonorID     id.UserID     `json:"donor_id"`
	DonorName   string        `json:"donor_name"`
	Email       string        `json:"email"`
	AmountCents int64         `json:"amount_cents"`
	Currency    string        `json:"currency"`
	Frequency   Frequency     `json:"frequency"`
	Anonymous   bool          `json:"anonymous"`
	Employer    string        `json:"employer,omitempty"`
	Occupation  string        `json:"occupation,omitempty"`
	Message     string        `json:"message,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Pledge is the validated donation form.
type Pledge struct {
	DonorID     id.UserID
	DonorName   string
	Email       string
	AmountCents int64
	Frequency   Frequency
	Anonymous   bool
	Employer    string
	Occupation  string
	Message     string
}

func NewDonation(donationID id.DonationID, campaignID id.CampaignID, p Pledge, now time.Time) (*Donation, error) {
	if campaignID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "donation requires a campaign")
	}
	if p.AmountCents < MinAmountCents || p.AmountCents > MaxAmountCents {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "donation amount must be between $1.00 and $100,000.00")
	}
	if !p.Frequency.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown donation frequency")
	}
	if strings.TrimSpace(p.DonorName) == "" || strings.TrimSpace(p.Email) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "donor name and email are required")
	}
	return &Donation{
		ID:          donationID,
		CampaignID:  campaignID,
		DonorID:     p.DonorID,
		DonorName:   strings.TrimSpace(p.DonorName),
		Email:       strings.TrimSpace(p.Email),
		AmountCents: p.AmountCents,
		Currency:    CurrencyUSD,
		Frequency:   p.Frequency,
		Anonymous:   p.Anonymous,
		Employer:    strings.TrimSpace(p.Employer),
		Occupation:  strings.TrimSpace(p.Occupation),
		Message:     strings.TrimSpace(p.Message),
		CreatedAt:   now,
	}, nil
}

// PublicName is the name shown on campaign supporter lists.
func (d *Donation) PublicName() string {
	if d.Anonymous {
		return AnonymousName
	}
	return d.DonorName
}

// IsGuest reports whether the donor was not signed in.
func (d *Donation) IsGuest() bool {
	return d.DonorID.IsNil()
}

// ListFilter narrows donation listings. Zero values match everything.
type ListFilter struct {
	DonorID    id.UserID
	CampaignID id.CampaignID
	Since      time.Time
	Limit      int
}

func (f ListFilter) Matches(d *Donation) bool {
	if !f.DonorID.IsNil() && d.DonorID != f.DonorID {
		return false
	}
	if !f.CampaignID.IsNil() && d.CampaignID != f.CampaignID {
		return false
	}
	if !f.Since.IsZero() && d.CreatedAt.Before(f.Since) {
		return false
	}
	return true
}
