package models

import (
	dErrors "civicfund/pkg/domain-errors"
)

// Status is the review lifecycle position of a campaign.
type Status string

const (
	StatusDraft         Status = "draft"
	StatusPendingReview Status = "pending_review"
	StatusActive        Status = "active"
	StatusRejected      Status = "rejected"
	StatusSuspended     Status = "suspended"
	StatusCompleted     Status = "completed"
)

// draft -> pending_review -> active | rejected; active <-> suspended; active -> completed.
var transitions = map[Status][]Status{
	StatusDraft:         {StatusPendingReview},
	StatusPendingReview: {StatusActive, StatusRejected},
	StatusActive:        {StatusSuspended, StatusCompleted},
	StatusSuspended:     {StatusActive},
}

// CanTransitionTo reports whether next is reachable in one step.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPendingReview, StatusActive, StatusRejected, StatusSuspended, StatusCompleted:
		return true
	}
	return false
}

// ParseStatus validates a status filter value.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", dErrors.New(dErrors.CodeBadRequest, "unknown campaign status: "+s)
	}
	return status, nil
}

// Action is an operation on the review lifecycle.
type Action string

const (
	ActionSubmit    Action = "submit"
	ActionApprove   Action = "approve"
	ActionReject    Action = "reject"
	ActionSuspend   Action = "suspend"
	ActionReinstate Action = "reinstate"
	ActionComplete  Action = "complete"
)

var actionTargets = map[Action]Status{
	ActionSubmit:    StatusPendingReview,
	ActionApprove:   StatusActive,
	ActionReject:    StatusRejected,
	ActionSuspend:   StatusSuspended,
	ActionReinstate: StatusActive,
	ActionComplete:  StatusCompleted,
}

// Target returns the status the action moves a campaign to.
func (a Action) Target() (Status, bool) {
	s, ok := actionTargets[a]
	return s, ok
}

// ParseAction validates an action taken from a URL segment.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if _, ok := actionTargets[a]; !ok {
		return "", dErrors.New(dErrors.CodeBadRequest, "unknown campaign action: "+s)
	}
	return a, nil
}
