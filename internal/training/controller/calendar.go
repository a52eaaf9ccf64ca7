package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/gartstein/ehs/internal/training/db"
	"github.com/gartstein/ehs/internal/training/models"
	"github.com/gartstein/ehs/internal/training/query"
)

// Calendar is the month view of the training calendar.
type Calendar struct {
	Month  string                `json:"month"`
	Events []query.CalendarEvent `json:"events"`
	Days   []query.CalendarDay   `json:"days"`
}

// Calendar builds the caller's calendar for the month containing month.
// Vendors choose between all, assigned and unassigned entries; other roles
// filter by status. Events outside the month are listed but fall on no day.
func (s *LifecycleService) Calendar(ctx context.Context, month time.Time, filter string) (*Calendar, error) {
	actor, err := s.authorize(ctx, models.CapViewSessions)
	if err != nil {
		return nil, s.fail("calendar", err)
	}
	var opportunities []models.Opportunity
	if actor.Role.Allows(models.CapViewOpportunities) {
		if opportunities, err = s.repo.ListOpportunities(ctx); err != nil {
			return nil, s.fail("calendar", fmt.Errorf("failed to list opportunities: %w", err))
		}
	}
	sessions, err := s.repo.ListSessions(ctx, db.SessionFilter{})
	if err != nil {
		return nil, s.fail("calendar", fmt.Errorf("failed to list sessions: %w", err))
	}
	if actor.Role == models.RoleEmployee {
		sessions = query.VisibleSessions(sessions, actor)
	}

	evs := query.FilterCalendar(query.CalendarEvents(opportunities, sessions), actor, filter)
	return &Calendar{
		Month:  month.Format("2006-01"),
		Events: evs,
		Days:   query.MonthGrid(evs, month),
	}, nil
}
