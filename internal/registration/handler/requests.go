package handler

import (
	"strconv"
	"strings"

	"civicfund/internal/registration/models"
	"civicfund/internal/registration/service"
	id "civicfund/pkg/domain"
	"civicfund/pkg/email"
	"civicfund/pkg/platform/validation"
)

type DocumentRequest struct {
	Kind        string `json:"kind"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

// SubmitRequest is the registration form. Documents carry metadata only.
type SubmitRequest struct {
	FullName     string            `json:"full_name"`
	Email        string            `json:"email"`
	Phone        string            `json:"phone"`
	Role         string            `json:"role"`
	Organization string            `json:"organization"`
	Address      string            `json:"address"`
	Password     string            `json:"password"`
	Documents    []DocumentRequest `json:"documents"`
}

func (r *SubmitRequest) Normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = email.Normalize(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	if r.Role == "" {
		r.Role = id.RoleDonor.String()
	}
	r.Organization = strings.TrimSpace(r.Organization)
	r.Address = strings.TrimSpace(r.Address)
	for i := range r.Documents {
		d := &r.Documents[i]
		d.Kind = strings.ToLower(strings.TrimSpace(d.Kind))
		d.FileName = strings.TrimSpace(d.FileName)
		d.ContentType = strings.ToLower(strings.TrimSpace(d.ContentType))
	}
}

func (r *SubmitRequest) Validate() error {
	v := validation.New()
	v.Length("full_name", r.FullName, validation.MinNameLength, validation.MaxNameLength)
	v.Email("email", r.Email)
	v.Password("password", r.Password)
	v.MaxLength("phone", r.Phone, validation.MaxPhoneLength)
	v.OneOf("role", r.Role, id.RoleDonor.String(), id.RoleOrganizer.String())
	v.MaxLength("organization", r.Organization, validation.MaxNameLength)
	v.MaxLength("address", r.Address, validation.MaxMessageLength)
	if r.Role == id.RoleOrganizer.String() {
		v.Required("organization", r.Organization)
		v.Check(len(r.Documents) > 0, "documents", "organizers must attach at least one document")
	}
	v.Check(len(r.Documents) <= validation.MaxDocuments, "documents", "at most "+strconv.Itoa(validation.MaxDocuments)+" documents")
	for i, d := range r.Documents {
		field := "documents[" + strconv.Itoa(i) + "]"
		v.OneOf(field+".kind", d.Kind, models.DocumentKinds...)
		v.Required(field+".file_name", d.FileName)
		v.OneOf(field+".content_type", d.ContentType, models.AllowedContentTypes...)
		v.Check(d.SizeBytes > 0 && d.SizeBytes <= validation.MaxDocumentBytes, field+".size_bytes", "must be between 1 byte and 10 MB")
	}
	return v.Err("invalid registration")
}

func (r *SubmitRequest) ToApplication() service.Application {
	docs := make([]models.DocumentMeta, 0, len(r.Documents))
	for _, d := range r.Documents {
		docs = append(docs, models.DocumentMeta{
			Kind:        models.DocumentKind(d.Kind),
			FileName:    d.FileName,
			ContentType: d.ContentType,
			SizeBytes:   d.SizeBytes,
		})
	}
	return service.Application{
		FullName:     r.FullName,
		Email:        r.Email,
		Phone:        r.Phone,
		Role:         id.Role(r.Role),
		Organization: r.Organization,
		Address:      r.Address,
		Documents:    docs,
		Password:     r.Password,
	}
}

// ReviewRequest is the optional body of a review action. Reason is accepted
// as an alias of note on rejections.
type ReviewRequest struct {
	NoteText string `json:"note"`
	Reason   string `json:"reason"`
}

func (r ReviewRequest) Note() string {
	if n := strings.TrimSpace(r.NoteText); n != "" {
		return n
	}
	return strings.TrimSpace(r.Reason)
}
