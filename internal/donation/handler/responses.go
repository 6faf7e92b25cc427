package handler

import (
	"time"

	"civicfund/internal/donation/models"
	"civicfund/internal/donation/service"
)

type OptionsResponse struct {
	PresetAmountsCents []int64  `json:"preset_amounts_cents"`
	MinAmountCents     int64    `json:"min_amount_cents"`
	MaxAmountCents     int64    `json:"max_amount_cents"`
	Currency           string   `json:"currency"`
	Frequencies        []string `json:"frequencies"`
}

type DonationResponse struct {
	ID          string    `json:"id"`
	CampaignID  string    `json:"campaign_id"`
	DonorName   string    `json:"donor_name"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	Frequency   string    `json:"frequency"`
	Anonymous   bool      `json:"anonymous"`
	Message     string    `json:"message,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type ReceiptResponse struct {
	Donation *DonationResponse `json:"donation"`
	Campaign struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		RaisedCents int64  `json:"raised_cents"`
		DonorCount  int    `json:"donor_count"`
	} `json:"campaign"`
}

// SupporterResponse is the public view of a pledge; anonymous donors stay anonymous.
type SupporterResponse struct {
	Name        string    `json:"name"`
	AmountCents int64     `json:"amount_cents"`
	Message     string    `json:"message,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func FromDonation(d *models.Donation) *DonationResponse {
	return &DonationResponse{
		ID:          d.ID.String(),
		CampaignID:  d.CampaignID.String(),
		DonorName:   d.DonorName,
		AmountCents: d.AmountCents,
		Currency:    d.Currency,
		Frequency:   string(d.Frequency),
		Anonymous:   d.Anonymous,
		Message:     d.Message,
		CreatedAt:   d.CreatedAt,
	}
}

func FromDonations(donations []*models.Donation) map[string]any {
	out := make([]*DonationResponse, 0, len(donations))
	for _, d := range donations {
		out = append(out, FromDonation(d))
	}
	return map[string]any{"donations": out, "total": len(out)}
}

func FromReceipt(r *service.Receipt) *ReceiptResponse {
	resp := &ReceiptResponse{Donation: FromDonation(r.Donation)}
	if r.Campaign != nil {
		resp.Campaign.ID = r.Campaign.ID.String()
		resp.Campaign.Title = r.Campaign.Title
		resp.Campaign.RaisedCents = r.Campaign.RaisedCents
		resp.Campaign.DonorCount = r.Campaign.DonorCount
	}
	return resp
}

func FromSupporter(d *models.Donation) *SupporterResponse {
	return &SupporterResponse{
		Name:        d.PublicName(),
		AmountCents: d.AmountCents,
		Message:     d.Message,
		CreatedAt:   d.CreatedAt,
	}
}
