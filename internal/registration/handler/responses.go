package handler

import (
	"time"

	"civicfund/internal/registration/models"
	"civicfund/pkg/platform/validation"
)

type DocumentResponse struct {
	Kind        string `json:"kind"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

type RegistrationResponse struct {
	ID           string             `json:"id"`
	FullName     string             `json:"full_name"`
	Email        string             `json:"email"`
	Phone        string             `json:"phone,omitempty"`
	Role         string             `json:"role"`
	Organization string             `json:"organization,omitempty"`
	Address      string             `json:"address,omitempty"`
	Documents    []DocumentResponse `json:"documents"`
	Status       string             `json:"status"`
	ReviewNote   string             `json:"review_note,omitempty"`
	ReviewedBy   string             `json:"reviewed_by,omitempty"`
	SubmittedAt  time.Time          `json:"submitted_at"`
	ReviewedAt   *time.Time         `json:"reviewed_at,omitempty"`
	UserID       string             `json:"user_id,omitempty"`
}

type RegistrationListResponse struct {
	Registrations []RegistrationResponse `json:"registrations"`
	Total         int                    `json:"total"`
}

// SubmittedResponse is what the applicant sees; no review details.
type SubmittedResponse struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// OptionsResponse describes the form's limits so the page can validate early.
type OptionsResponse struct {
	Roles             []string `json:"roles"`
	DocumentKinds     []string `json:"document_kinds"`
	ContentTypes      []string `json:"content_types"`
	MaxDocuments      int      `json:"max_documents"`
	MaxDocumentBytes  int64    `json:"max_document_bytes"`
	MinPasswordLength int      `json:"min_password_length"`
}

func defaultOptions() *OptionsResponse {
	return &OptionsResponse{
		Roles:             []string{"donor", "organizer"},
		DocumentKinds:     models.DocumentKinds,
		ContentTypes:      models.AllowedContentTypes,
		MaxDocuments:      validation.MaxDocuments,
		MaxDocumentBytes:  validation.MaxDocumentBytes,
		MinPasswordLength: validation.MinPasswordLength,
	}
}

func FromSubmitted(r *models.Registration) *SubmittedResponse {
	return &SubmittedResponse{ID: r.ID.String(), Status: string(r.Status), SubmittedAt: r.SubmittedAt}
}

func FromRegistration(r *models.Registration) *RegistrationResponse {
	docs := make([]DocumentResponse, 0, len(r.Documents))
	for _, d := range r.Documents {
		docs = append(docs, DocumentResponse{
			Kind:        string(d.Kind),
			FileName:    d.FileName,
			ContentType: d.ContentType,
			SizeBytes:   d.SizeBytes,
		})
	}
	resp := &RegistrationResponse{
		ID:           r.ID.String(),
		FullName:     r.FullName,
		Email:        r.Email,
		Phone:        r.Phone,
		Role:         r.Role.String(),
		Organization: r.Organization,
		Address:      r.Address,
		Documents:    docs,
		Status:       string(r.Status),
		ReviewNote:   r.ReviewNote,
		SubmittedAt:  r.SubmittedAt,
		ReviewedAt:   r.ReviewedAt,
	}
	if !r.ReviewedBy.IsNil() {
		resp.ReviewedBy = r.ReviewedBy.String()
	}
	if !r.UserID.IsNil() {
		resp.UserID = r.UserID.String()
	}
	return resp
}

func FromRegistrations(registrations []*models.Registration) *RegistrationListResponse {
	out := make([]RegistrationResponse, 0, len(registrations))
	for _, r := range registrations {
		out = append(out, *FromRegistration(r))
	}
	return &RegistrationListResponse{Registrations: out, Total: len(out)}
}
