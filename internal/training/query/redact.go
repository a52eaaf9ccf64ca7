package query

import "github.com/gartstein/ehs/internal/training/models"

// Vendors never see which client posted a training or which employees attend it.

// RedactOpportunity hides client details from vendor actors.
func RedactOpportunity(o models.Opportunity, actor models.Actor) models.Opportunity {
	if actor.IsVendor() {
		o.ClientOrganizationID = ""
	}
	return o
}

// RedactSession hides client and attendee details from vendor actors.
func RedactSession(s models.Session, actor models.Actor) models.Session {
	if actor.IsVendor() {
		s.ClientOrganizationID = ""
		s.EmployeeIDs = nil
	}
	return s
}

// RedactCalendarEvent hides client and attendee details from vendor actors.
func RedactCalendarEvent(ev CalendarEvent, actor models.Actor) CalendarEvent {
	if actor.IsVendor() {
		ev.ClientOrganizationID = ""
		ev.EmployeeIDs = nil
	}
	return ev
}

// VisibleProposals returns the proposals actor may see: vendors only see their own.
func VisibleProposals(proposals []models.Proposal, actor models.Actor) []models.Proposal {
	if !actor.IsVendor() {
		return proposals
	}
	out := make([]models.Proposal, 0, len(proposals))
	for _, p := range proposals {
		if p.VendorID == actor.ID {
			out = append(out, p)
		}
	}
	return out
}

// VisibleSessions returns the sessions actor may see, redacted. Vendors see the
// sessions they deliver, employees the sessions they are assigned to.
func VisibleSessions(sessions []models.Session, actor models.Actor) []models.Session {
	out := make([]models.Session, 0, len(sessions))
	for _, s := range sessions {
		switch actor.Role {
		case models.RoleVendor:
			if s.VendorID == nil || *s.VendorID != actor.ID {
				continue
			}
		case models.RoleEmployee:
			if !containsString(s.EmployeeIDs, actor.ID.String()) {
				continue
			}
		}
		out = append(out, RedactSession(s, actor))
	}
	return out
}
