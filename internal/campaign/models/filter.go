package models

import (
	id "civicfund/pkg/domain"
	pstrings "civicfund/pkg/platform/strings"
)

// ListFilter narrows campaign listings. Zero values match everything.
type ListFilter struct {
	Statuses    []Status
	Category    string
	Query       string
	Featured    *bool
	OrganizerID id.UserID
	Limit       int
}

// Matches applies the filter to a single campaign. Stores without a query
// language (memory) use it directly.
func (f ListFilter) Matches(c *Campaign) bool {
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if c.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Category != "" && f.Category != "all" && c.Category != f.Category {
		return false
	}
	if f.Featured != nil && c.Featured != *f.Featured {
		return false
	}
	if !f.OrganizerID.IsNil() && c.OrganizerID != f.OrganizerID {
		return false
	}
	if f.Query != "" && !pstrings.ContainsFold(c.Title, f.Query) && !pstrings.ContainsFold(c.Summary, f.Query) && !pstrings.ContainsFold(c.Organizer, f.Query) {
		return false
	}
	return true
}
