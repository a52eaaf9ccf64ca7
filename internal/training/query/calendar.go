package query

import (
	"sort"
	"strings"
	"time"

	"github.com/gartstein/ehs/internal/training/models"
	"github.com/google/uuid"
)

// Calendar statuses that do not come from a session.
const (
	// StatusPendingVendor marks an open opportunity that still needs a vendor.
	StatusPendingVendor = "PendingVendor"
	// StatusAwaitingSchedule marks an awarded opportunity without a session yet.
	StatusAwaitingSchedule = "AwaitingSchedule"
)

// Vendor calendar views.
const (
	ViewAssigned   = "assigned"
	ViewUnassigned = "unassigned"
)

// CalendarEvent is one entry of the training calendar.
type CalendarEvent struct {
	ID                   uuid.UUID       `json:"id"`
	OpportunityID        uuid.UUID       `json:"opportunityId"`
	SessionID            *uuid.UUID      `json:"sessionId,omitempty"`
	Title                string          `json:"title"`
	Start                time.Time       `json:"start"`
	End                  time.Time       `json:"end"`
	Location             string          `json:"location"`
	Format               models.Format   `json:"format"`
	Status               string          `json:"status"`
	VendorID             *uuid.UUID      `json:"vendorId,omitempty"`
	TrainerName          string          `json:"trainerName,omitempty"`
	ClientOrganizationID string          `json:"clientOrganizationId,omitempty"`
	Attendees            int             `json:"attendees,omitempty"`
	EmployeeIDs          []string        `json:"employeeIds,omitempty"`
	DateLabel            string          `json:"dateLabel"`
	Category             models.Category `json:"category,omitempty"`
}

// CalendarEvents merges sessions and not-yet-scheduled opportunities into
// calendar entries sorted by start date. Closed opportunities and
// opportunities that already have a session are left out.
func CalendarEvents(opportunities []models.Opportunity, sessions []models.Session) []CalendarEvent {
	scheduled := make(map[uuid.UUID]bool, len(sessions))
	events := make([]CalendarEvent, 0, len(opportunities)+len(sessions))
	for _, s := range sessions {
		scheduled[s.OpportunityID] = true
		id := s.ID
		events = append(events, CalendarEvent{
			ID:                   s.ID,
			OpportunityID:        s.OpportunityID,
			SessionID:            &id,
			Title:                s.Title,
			Start:                s.StartsAt,
			End:                  s.EndsAt,
			Location:             s.Location,
			Format:               s.Format,
			Status:               string(s.Status),
			VendorID:             s.VendorID,
			TrainerName:          s.TrainerName,
			ClientOrganizationID: s.ClientOrganizationID,
			Attendees:            len(s.EmployeeIDs),
			EmployeeIDs:          s.EmployeeIDs,
			DateLabel:            DateRangeLabel(s.StartsAt, s.EndsAt),
		})
	}
	for _, o := range opportunities {
		if scheduled[o.ID] {
			continue
		}
		var status string
		switch o.Status {
		case models.OpportunityOpen:
			status = StatusPendingVendor
		case models.OpportunityAwarded:
			status = StatusAwaitingSchedule
		default:
			continue
		}
		events = append(events, CalendarEvent{
			ID:                   o.ID,
			OpportunityID:        o.ID,
			Title:                o.Title,
			Start:                o.StartDate,
			End:                  o.EndDate,
			Location:             o.Location,
			Format:               o.Format,
			Status:               status,
			ClientOrganizationID: o.ClientOrganizationID,
			Attendees:            o.Attendees,
			DateLabel:            DateRangeLabel(o.StartDate, o.EndDate),
			Category:             o.Category,
		})
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	return events
}

// FilterCalendar applies the calendar filter for actor. Vendors only ever see
// entries that still need a vendor or that are assigned to them; view narrows
// that to "assigned" or "unassigned". Other roles filter by status, with
// "all" or "" matching everything.
func FilterCalendar(events []CalendarEvent, actor models.Actor, view string) []CalendarEvent {
	out := make([]CalendarEvent, 0, len(events))
	for _, ev := range events {
		if actor.IsVendor() {
			assigned := ev.VendorID != nil && *ev.VendorID == actor.ID
			unassigned := ev.Status == StatusPendingVendor
			switch strings.ToLower(strings.TrimSpace(view)) {
			case ViewAssigned:
				if !assigned {
					continue
				}
			case ViewUnassigned:
				if !unassigned {
					continue
				}
			default:
				if !assigned && !unassigned {
					continue
				}
			}
			out = append(out, RedactCalendarEvent(ev, actor))
			continue
		}
		if !matchesAll(view) && !statusMatches(view, ev.Status) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func statusMatches(filter, status string) bool {
	if s, ok := models.ParseSessionStatus(filter); ok {
		return string(s) == status
	}
	normalized := strings.NewReplacer("-", "", "_", "", " ", "").Replace(filter)
	return strings.EqualFold(normalized, status)
}

// CalendarDay is one cell of a month grid.
type CalendarDay struct {
	Date   time.Time       `json:"date"`
	Events []CalendarEvent `json:"events"`
}

// MonthGrid returns one entry per calendar day of month's month, each listing
// the events whose [Start, End] date interval contains that day, inclusive on
// both ends. Days are computed in month's location.
func MonthGrid(events []CalendarEvent, month time.Time) []CalendarDay {
	loc := month.Location()
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, loc)
	next := first.AddDate(0, 1, 0)

	var days []CalendarDay
	for day := first; day.Before(next); day = day.AddDate(0, 0, 1) {
		dayEvents := make([]CalendarEvent, 0)
		for _, ev := range events {
			if !day.Before(dateOf(ev.Start, loc)) && !day.After(dateOf(ev.End, loc)) {
				dayEvents = append(dayEvents, ev)
			}
		}
		days = append(days, CalendarDay{Date: day, Events: dayEvents})
	}
	return days
}

func dateOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DateRangeLabel renders an opportunity or session date range: a single date
// when start equals end, otherwise "May 15 - May 16, 2025". The year is taken
// from start.
func DateRangeLabel(start, end time.Time) string {
	label := start.Format("Jan 2")
	if !start.Equal(end) {
		label += " - " + end.Format("Jan 2")
	}
	return label + ", " + start.Format("2006")
}

// SortSessionsByStart returns a copy of sessions ordered by start time.
// Sessions starting at the same time keep their input order.
func SortSessionsByStart(sessions []models.Session) []models.Session {
	out := make([]models.Session, len(sessions))
	copy(out, sessions)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartsAt.Before(out[j].StartsAt)
	})
	return out
}
