package handler

import (
	"strings"

	"civicfund/internal/donation/models"
	id "civicfund/pkg/domain"
	"civicfund/pkg/email"
	"civicfund/pkg/platform/validation"
)

// DonationRequest is the donation form.
type DonationRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Frequency   string `json:"frequency"`
	DonorName   string `json:"donor_name"`
	Email       string `json:"email"`
	Anonymous   bool   `json:"anonymous"`
	Employer    string `json:"employer"`
	Occupation  string `json:"occupation"`
	Message     string `json:"message"`
}

func (r *DonationRequest) Normalize() {
	r.Frequency = strings.ToLower(strings.TrimSpace(r.Frequency))
	if r.Frequency == "" {
		r.Frequency = string(models.FrequencyOneTime)
	}
	r.DonorName = strings.TrimSpace(r.DonorName)
	r.Email = email.Normalize(r.Email)
	r.Employer = strings.TrimSpace(r.Employer)
	r.Occupation = strings.TrimSpace(r.Occupation)
	r.Message = strings.TrimSpace(r.Message)
	if r.DonorName == "" && r.Anonymous {
		r.DonorName = models.AnonymousName
	}
}

func (r *DonationRequest) Validate() error {
	v := validation.New()
	v.Check(r.AmountCents >= models.MinAmountCents, "amount_cents", "must be at least $1.00")
	v.Check(r.AmountCents <= models.MaxAmountCents, "amount_cents", "must be at most $100,000.00")
	v.OneOf("frequency", r.Frequency, string(models.FrequencyOneTime), string(models.FrequencyMonthly))
	v.Length("donor_name", r.DonorName, validation.MinNameLength, validation.MaxNameLength)
	v.Email("email", r.Email)
	v.MaxLength("employer", r.Employer, validation.MaxNameLength)
	v.MaxLength("occupation", r.Occupation, validation.MaxNameLength)
	v.MaxLength("message", r.Message, validation.MaxMessageLength)
	return v.Err("invalid donation")
}

func (r *DonationRequest) ToPledge(donorID id.UserID) models.Pledge {
	return models.Pledge{
		DonorID:     donorID,
		DonorName:   r.DonorName,
		Email:       r.Email,
		AmountCents: r.AmountCents,
		Frequency:   models.Frequency(r.Frequency),
		Anonymous:   r.Anonymous,
		Employer:    r.Employer,
		Occupation:  r.Occupation,
		Message:     r.Message,
	}
}
