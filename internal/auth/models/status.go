package models

import dErrors "civicfund/pkg/domain-errors"

type Status string

const (
	StatusActive      Status = "active"
	StatusSuspended   Status = "suspended"
	StatusDeactivated Status = "deactivated"
)

// deactivated is terminal.
var transitions = map[Status][]Status{
	StatusActive:    {StatusSuspended, StatusDeactivated},
	StatusSuspended: {StatusActive, StatusDeactivated},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusActive, StatusSuspended, StatusDeactivated:
		return st, nil
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "unknown user status: "+s)
}

// Action is an admin operation on an account.
type Action string

const (
	ActionSuspend    Action = "suspend"
	ActionReactivate Action = "reactivate"
	ActionDeactivate Action = "deactivate"
)

var actionTargets = map[Action]Status{
	ActionSuspend:    StatusSuspended,
	ActionReactivate: StatusActive,
	ActionDeactivate: StatusDeactivated,
}

func (a Action) Target() (Status, bool) {
	s, ok := actionTargets[a]
	return s, ok
}
