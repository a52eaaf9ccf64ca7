package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/gartstein/ehs/internal/pkg/utils"
	"github.com/gartstein/ehs/internal/training/db"
	e "github.com/gartstein/ehs/internal/training/errors"
	"github.com/gartstein/ehs/internal/training/events"
	"github.com/gartstein/ehs/internal/training/models"
	"github.com/gartstein/ehs/internal/training/query"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Ratings are given on a five star scale.
const (
	minRating = 0.0
	maxRating = 5.0
)

// normalizeSchedule validates the schedule input. An empty format is left for
// the caller to default from the opportunity.
func normalizeSchedule(in models.SessionSchedule) (models.SessionSchedule, error) {
	if len(in.EmployeeIDs) == 0 {
		return in, invalid("at least one employee must be assigned")
	}
	for _, id := range in.EmployeeIDs {
		if strings.TrimSpace(id) == "" {
			return in, invalid("employee id must not be blank")
		}
	}
	if in.StartsAt.IsZero() {
		return in, invalid("start time is required")
	}
	if in.EndsAt.IsZero() {
		in.EndsAt = in.StartsAt
	}
	if in.EndsAt.Before(in.StartsAt) {
		return in, invalid("session ends before it starts")
	}
	if in.Format != "" {
		f, ok := models.ParseFormat(string(in.Format))
		if !ok {
			return in, invalid("unknown format %q", in.Format)
		}
		in.Format = f
	}
	if strings.TrimSpace(in.Location) == "" {
		return in, invalid("location is required")
	}
	return in, nil
}

// ScheduleSession turns an awarded opportunity into a dated session for the
// given employees. The session is staffed with the first trainer of the
// accepted proposal. Input is validated before any state is consulted.
func (s *LifecycleService) ScheduleSession(ctx context.Context, opportunityID uuid.UUID, schedule models.SessionSchedule) (*models.Session, error) {
	const op = "schedule_session"
	if _, err := s.authorize(ctx, models.CapScheduleSession); err != nil {
		return nil, s.fail(op, err)
	}
	in, err := normalizeSchedule(schedule)
	if err != nil {
		return nil, s.fail(op, err)
	}

	var session *models.Session
	err = s.transact(ctx, func(tx *db.Repository) error {
		o, err := tx.GetOpportunity(ctx, opportunityID)
		if err != nil {
			return wrapGet("opportunity", err)
		}
		if in.Format == "" {
			in.Format = o.Format
		}

		proposals, err := tx.ListProposals(ctx, opportunityID)
		if err != nil {
			return err
		}
		var accepted *models.Proposal
		for i := range proposals {
			if proposals[i].Status == models.ProposalAccepted {
				accepted = &proposals[i]
				break
			}
		}
		if accepted == nil {
			return fmt.Errorf("%w: opportunity has no accepted proposal", e.ErrPrecondition)
		}
		existing, err := tx.ListSessions(ctx, db.SessionFilter{OpportunityID: opportunityID})
		if err != nil {
			return err
		}
		for i := range existing {
			if existing[i].Status.IsActive() {
				return fmt.Errorf("%w: opportunity already has an active session", e.ErrPrecondition)
			}
		}

		session = &models.Session{
			ID:                   uuid.New(),
			TrainingID:           o.TrainingID,
			OpportunityID:        o.ID,
			ProposalID:           utils.Ptr(accepted.ID),
			VendorID:             utils.Ptr(accepted.VendorID),
			Title:                o.Title,
			StartsAt:             in.StartsAt,
			EndsAt:               in.EndsAt,
			Location:             in.Location,
			Format:               in.Format,
			ClientOrganizationID: o.ClientOrganizationID,
			EmployeeIDs:          in.EmployeeIDs,
			Materials:            []models.Material{},
			Status:               models.SessionScheduled,
		}
		if len(accepted.Trainers) > 0 {
			session.TrainerName = accepted.Trainers[0].Name
		}
		if err := tx.CreateSession(ctx, session); err != nil {
			return err
		}

		t, err := tx.GetTraining(ctx, o.TrainingID)
		if err != nil {
			return wrapGet("training", err)
		}
		if t.Status != models.TrainingScheduled {
			t.Status = models.TrainingScheduled
			if err := tx.UpdateTraining(ctx, t); err != nil {
				return err
			}
		}

		v, err := tx.GetVendor(ctx, accepted.VendorID)
		if err != nil {
			return wrapGet("vendor", err)
		}
		v.UpcomingSessions++
		return tx.UpdateVendor(ctx, v)
	})
	if err != nil {
		return nil, s.fail(op, err)
	}

	s.metrics.Transition("session", string(session.Status))
	s.logger.Info("Session scheduled",
		zap.String("session_id", session.ID.String()),
		zap.String("opportunity_id", opportunityID.String()),
		zap.Time("starts_at", session.StartsAt),
		zap.Int("employees", len(session.EmployeeIDs)),
	)
	s.emit(events.Event{
		Type:          events.SessionScheduled,
		EntityID:      session.ID,
		OpportunityID: utils.Ptr(opportunityID),
		VendorID:      session.VendorID,
		Status:        string(session.Status),
	})
	return session, nil
}

// AdvanceSession moves a session along Scheduled -> InProgress -> Completed,
// or cancels it before it starts. A rating may only accompany completion and
// is folded into the vendor's running average.
func (s *LifecycleService) AdvanceSession(ctx context.Context, sessionID uuid.UUID, next models.SessionStatus, rating *float64) (*models.Session, error) {
	const op = "advance_session"
	actor, err := s.authorize(ctx, models.CapAdvanceSession)
	if err != nil {
		return nil, s.fail(op, err)
	}
	status, ok := models.ParseSessionStatus(string(next))
	if !ok {
		return nil, s.fail(op, invalid("unknown session status %q", next))
	}
	if rating != nil {
		if status != models.SessionCompleted {
			return nil, s.fail(op, invalid("a rating can only be given on completion"))
		}
		if *rating < minRating || *rating > maxRating {
			return nil, s.fail(op, invalid("rating must be between %.0f and %.0f", minRating, maxRating))
		}
		if actor.IsVendor() {
			return nil, s.fail(op, fmt.Errorf("%w: vendors may not rate their own sessions", e.ErrForbidden))
		}
	}

	var session *models.Session
	err = s.transact(ctx, func(tx *db.Repository) error {
		sess, err := tx.GetSession(ctx, sessionID)
		if err != nil {
			return wrapGet("session", err)
		}
		if err := checkSessionOwner(actor, sess); err != nil {
			return err
		}
		if !sess.Status.CanTransitionTo(status) {
			return fmt.Errorf("%w: session cannot move from %s to %s", e.ErrInvalidTransition, sess.Status, status)
		}
		sess.Status = status
		if status == models.SessionCompleted {
			sess.Rating = rating
		}
		if err := tx.UpdateSession(ctx, sess); err != nil {
			return err
		}
		session = sess

		if status.IsActive() {
			return nil
		}
		if sess.VendorID != nil {
			v, err := tx.GetVendor(ctx, *sess.VendorID)
			if err != nil {
				return wrapGet("vendor", err)
			}
			if status == models.SessionCompleted {
				v.RecordCompletion(rating)
			} else if v.UpcomingSessions > 0 {
				v.UpcomingSessions--
			}
			if err := tx.UpdateVendor(ctx, v); err != nil {
				return err
			}
		}
		return releaseTraining(ctx, tx, sess.TrainingID)
	})
	if err != nil {
		return nil, s.fail(op, err)
	}

	s.metrics.Transition("session", string(session.Status))
	fields := []zap.Field{
		zap.String("session_id", session.ID.String()),
		zap.String("status", string(session.Status)),
	}
	if rating != nil {
		fields = append(fields, zap.Float64("rating", *rating))
	}
	s.logger.Info("Session advanced", fields...)
	s.emit(events.Event{
		Type:          events.SessionStatusChanged,
		EntityID:      session.ID,
		OpportunityID: utils.Ptr(session.OpportunityID),
		VendorID:      session.VendorID,
		Status:        string(session.Status),
	})
	return session, nil
}

// releaseTraining returns a training to the catalog once no active session holds it.
func releaseTraining(ctx context.Context, tx *db.Repository, trainingID uuid.UUID) error {
	sessions, err := tx.ListSessions(ctx, db.SessionFilter{TrainingID: trainingID})
	if err != nil {
		return err
	}
	for i := range sessions {
		if sessions[i].Status.IsActive() {
			return nil
		}
	}
	t, err := tx.GetTraining(ctx, trainingID)
	if err != nil {
		return wrapGet("training", err)
	}
	if t.Status == models.TrainingAvailable {
		return nil
	}
	t.Status = models.TrainingAvailable
	return tx.UpdateTraining(ctx, t)
}

func checkSessionOwner(actor models.Actor, sess *models.Session) error {
	if actor.IsVendor() && (sess.VendorID == nil || *sess.VendorID != actor.ID) {
		return fmt.Errorf("%w: session belongs to another vendor", e.ErrForbidden)
	}
	return nil
}

// AddSessionMaterial attaches a document reference to a session that has not ended.
func (s *LifecycleService) AddSessionMaterial(ctx context.Context, sessionID uuid.UUID, name, ref string) (*models.Session, error) {
	const op = "add_session_material"
	actor, err := s.authorize(ctx, models.CapAttachMaterial)
	if err != nil {
		return nil, s.fail(op, err)
	}
	if strings.TrimSpace(name) == "" || strings.TrimSpace(ref) == "" {
		return nil, s.fail(op, invalid("material name and reference are required"))
	}

	var session *models.Session
	err = s.transact(ctx, func(tx *db.Repository) error {
		sess, err := tx.GetSession(ctx, sessionID)
		if err != nil {
			return wrapGet("session", err)
		}
		if err := checkSessionOwner(actor, sess); err != nil {
			return err
		}
		if !sess.Status.IsActive() {
			return fmt.Errorf("%w: session is %s", e.ErrPrecondition, sess.Status)
		}
		sess.Materials = append(sess.Materials, models.Material{
			ID:      uuid.New(),
			Name:    strings.TrimSpace(name),
			Ref:     strings.TrimSpace(ref),
			AddedAt: s.now(),
		})
		if err := tx.UpdateSession(ctx, sess); err != nil {
			return err
		}
		session = sess
		return nil
	})
	if err != nil {
		return nil, s.fail(op, err)
	}
	s.logger.Info("Session material added",
		zap.String("session_id", sessionID.String()),
		zap.String("name", name),
	)
	redacted := query.RedactSession(*session, actor)
	return &redacted, nil
}

// GetSession retrieves a session. Vendors and employees only see sessions
// they take part in, and vendors get a redacted view.
func (s *LifecycleService) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	actor, err := s.authorize(ctx, models.CapViewSessions)
	if err != nil {
		return nil, s.fail("get_session", err)
	}
	sess, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, s.fail("get_session", wrapGet("session", err))
	}
	visible := query.VisibleSessions([]models.Session{*sess}, actor)
	if len(visible) == 0 {
		return nil, s.fail("get_session", fmt.Errorf("%w: session is not visible to %s", e.ErrForbidden, actor.Role))
	}
	return &visible[0], nil
}

// ListSessions returns the sessions visible to the caller, narrowed by f and
// ordered by start time.
func (s *LifecycleService) ListSessions(ctx context.Context, f query.SessionFilter) ([]models.Session, error) {
	actor, err := s.authorize(ctx, models.CapViewSessions)
	if err != nil {
		return nil, s.fail("list_sessions", err)
	}
	all, err := s.repo.ListSessions(ctx, db.SessionFilter{})
	if err != nil {
		return nil, s.fail("list_sessions", fmt.Errorf("failed to list sessions: %w", err))
	}
	visible := query.VisibleSessions(all, actor)
	return query.SortSessionsByStart(query.FilterSessions(visible, f)), nil
}
