package audit

import (
	"context"
	"time"

	"civicfund/pkg/attrs"
	id "civicfund/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose so sinks can
// apply different retention and routing.
type EventCategory string

const (
	// CategoryCompliance covers money movement and account lifecycle changes.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers authentication failures, lockouts and access changes.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity that can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string
	Category  EventCategory
	Timestamp time.Time
	Action    string
	// Subject identifies the record acted on (campaign, registration, challenge).
	Subject string
	UserID  id.UserID
	// ActorID is set when an admin acts on another user's record.
	ActorID   string
	Reason    string
	RequestID string
	IP        string
}

type AuditEvent string

const (
	// Account events
	EventUserCreated      AuditEvent = "user_created"
	EventUserSuspended    AuditEvent = "user_suspended"
	EventUserReactivated  AuditEvent = "user_reactivated"
	EventUserDeactivated  AuditEvent = "user_deactivated"
	EventLoginChallenge   AuditEvent = "login_challenge_issued"
	EventLoginFailed      AuditEvent = "login_failed"
	EventOTPVerified      AuditEvent = "otp_verified"
	EventOTPFailed        AuditEvent = "otp_failed"
	EventOTPLocked        AuditEvent = "otp_locked"
	EventOTPResent        AuditEvent = "otp_resent"
	EventLoginSucceeded   AuditEvent = "login_succeeded"
	EventSessionRevoked   AuditEvent = "session_revoked"
	EventRateLimitReached AuditEvent = "rate_limit_exceeded"

	// Registration events
	EventRegistrationSubmitted AuditEvent = "registration_submitted"
	EventRegistrationApproved  AuditEvent = "registration_approved"
	EventRegistrationRejected  AuditEvent = "registration_rejected"

	// Campaign events
	EventCampaignSubmitted  AuditEvent = "campaign_submitted"
	EventCampaignApproved   AuditEvent = "campaign_approved"
	EventCampaignRejected   AuditEvent = "campaign_rejected"
	EventCampaignSuspended  AuditEvent = "campaign_suspended"
	EventCampaignReinstated AuditEvent = "campaign_reinstated"
	EventCampaignCompleted  AuditEvent = "campaign_completed"

	// Donation events
	EventDonationRecorded AuditEvent = "donation_recorded"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventUserCreated:           CategoryCompliance,
	EventUserDeactivated:       CategoryCompliance,
	EventRegistrationApproved:  CategoryCompliance,
	EventRegistrationRejected:  CategoryCompliance,
	EventDonationRecorded:      CategoryCompliance,
	EventCampaignApproved:      CategoryCompliance,
	EventCampaignCompleted:     CategoryCompliance,
	EventLoginFailed:           CategorySecurity,
	EventOTPFailed:             CategorySecurity,
	EventOTPLocked:             CategorySecurity,
	EventRateLimitReached:      CategorySecurity,
	EventUserSuspended:         CategorySecurity,
	EventUserReactivated:       CategorySecurity,
	EventCampaignSuspended:     CategorySecurity,
	EventLoginChallenge:        CategoryOperations,
	EventOTPVerified:           CategoryOperations,
	EventOTPResent:             CategoryOperations,
	EventLoginSucceeded:        CategorySecurity,
	EventSessionRevoked:        CategorySecurity,
	EventRegistrationSubmitted: CategoryOperations,
	EventCampaignSubmitted:     CategoryOperations,
	EventCampaignRejected:      CategoryOperations,
	EventCampaignReinstated:    CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// NewEvent builds an Event from a slog-style key/value list, picking up
// user_id, subject, actor_id, reason, request_id and ip when present.
func NewEvent(action AuditEvent, attributes ...any) Event {
	event := Event{
		Category:  action.Category(),
		Action:    string(action),
		Subject:   attrs.ExtractString(attributes, "subject"),
		ActorID:   attrs.ExtractString(attributes, "actor_id"),
		Reason:    attrs.ExtractString(attributes, "reason"),
		RequestID: attrs.ExtractString(attributes, "request_id"),
		IP:        attrs.ExtractString(attributes, "ip"),
	}
	if userID, err := id.ParseUserID(attrs.ExtractString(attributes, "user_id")); err == nil {
		event.UserID = userID
	}
	return event
}

// Emitter is the port services depend on.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Store persists audit events for the admin audit view.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
