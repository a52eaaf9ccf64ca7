package controller

import (
	"context"
	"errors"
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

func validateTraining(t *models.Training) error {
	if strings.TrimSpace(t.Title) == "" {
		return invalid("title is required")
	}
	if _, ok := models.ParseCategory(string(t.Category)); !ok {
		return invalid("unknown category %q", t.Category)
	}
	if _, ok := models.ParseFormat(string(t.Format)); !ok {
		return invalid("unknown format %q", t.Format)
	}
	return nil
}

// normalizeTraining maps accepted spellings onto canonical enum values.
func normalizeTraining(t *models.Training) {
	if c, ok := models.ParseCategory(string(t.Category)); ok {
		t.Category = c
	}
	if f, ok := models.ParseFormat(string(t.Format)); ok {
		t.Format = f
	}
}

// CreateTraining adds a catalog entry. New trainings are Available.
func (s *LifecycleService) CreateTraining(ctx context.Context, t *models.Training) (*models.Training, error) {
	const op = "create_training"
	if _, err := s.authorize(ctx, models.CapManageCatalog); err != nil {
		return nil, s.fail(op, err)
	}
	normalizeTraining(t)
	if err := validateTraining(t); err != nil {
		return nil, s.fail(op, err)
	}
	t.ID = uuid.New()
	t.Status = models.TrainingAvailable
	err := s.transact(ctx, func(tx *db.Repository) error {
		return tx.CreateTraining(ctx, t)
	})
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("failed to create training: %w", err))
	}
	return t, nil
}

// GetTraining retrieves a catalog entry by ID.
func (s *LifecycleService) GetTraining(ctx context.Context, id uuid.UUID) (*models.Training, error) {
	if _, err := s.authorize(ctx, models.CapViewCatalog); err != nil {
		return nil, s.fail("get_training", err)
	}
	t, err := s.repo.GetTraining(ctx, id)
	if err != nil {
		return nil, s.fail("get_training", wrapGet("training", err))
	}
	return t, nil
}

// ListTrainings returns the catalog narrowed by f.
func (s *LifecycleService) ListTrainings(ctx context.Context, f query.TrainingFilter) ([]models.Training, error) {
	if _, err := s.authorize(ctx, models.CapViewCatalog); err != nil {
		return nil, s.fail("list_trainings", err)
	}
	all, err := s.repo.ListTrainings(ctx)
	if err != nil {
		return nil, s.fail("list_trainings", fmt.Errorf("failed to list trainings: %w", err))
	}
	return query.FilterTrainings(all, f), nil
}

// UpdateTraining modifies the set fields of a catalog entry. Trainings held
// by an active session cannot change.
func (s *LifecycleService) UpdateTraining(ctx context.Context, update *models.TrainingUpdate) (*models.Training, error) {
	const op = "update_training"
	if _, err := s.authorize(ctx, models.CapManageCatalog); err != nil {
		return nil, s.fail(op, err)
	}
	if update.ID == uuid.Nil {
		return nil, s.fail(op, invalid("invalid training ID"))
	}
	var updated *models.Training
	err := s.transact(ctx, func(tx *db.Repository) error {
		t, err := tx.GetTraining(ctx, update.ID)
		if err != nil {
			return wrapGet("training", err)
		}
		if t.Status == models.TrainingScheduled {
			return fmt.Errorf("%w: training %s is scheduled", e.ErrPrecondition, t.ID)
		}
		update.Apply(t)
		normalizeTraining(t)
		if err := validateTraining(t); err != nil {
			return err
		}
		if err := tx.UpdateTraining(ctx, t); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, s.fail(op, err)
	}
	return updated, nil
}

// DeleteTraining removes a catalog entry that no opportunity refers to.
func (s *LifecycleService) DeleteTraining(ctx context.Context, id uuid.UUID) error {
	const op = "delete_training"
	if _, err := s.authorize(ctx, models.CapManageCatalog); err != nil {
		return s.fail(op, err)
	}
	err := s.transact(ctx, func(tx *db.Repository) error {
		t, err := tx.GetTraining(ctx, id)
		if err != nil {
			return wrapGet("training", err)
		}
		if t.Status == models.TrainingScheduled {
			return fmt.Errorf("%w: training %s is scheduled", e.ErrPrecondition, id)
		}
		opps, err := tx.ListOpportunities(ctx)
		if err != nil {
			return err
		}
		for _, o := range opps {
			if o.TrainingID == id {
				return fmt.Errorf("%w: training %s has opportunities", e.ErrPrecondition, id)
			}
		}
		return tx.DeleteTraining(ctx, id)
	})
	if err != nil {
		return s.fail(op, err)
	}
	return nil
}

func validateOpportunity(o *models.Opportunity) error {
	switch {
	case o.TrainingID == uuid.Nil:
		return invalid("training is required")
	case o.StartDate.IsZero() || o.EndDate.IsZero():
		return invalid("start and end dates are required")
	case o.StartDate.After(o.EndDate):
		return invalid("start date is after end date")
	case o.Attendees < 1:
		return invalid("attendees must be at least 1")
	case o.BudgetMin < 0:
		return invalid("budget must not be negative")
	case o.BudgetMin > o.BudgetMax:
		return invalid("minimum budget exceeds maximum budget")
	case strings.TrimSpace(o.Location) == "":
		return invalid("location is required")
	}
	return nil
}

// CreateOpportunity posts a request for bids on a catalog training. Title,
// category and description are copied from the training.
func (s *LifecycleService) CreateOpportunity(ctx context.Context, o *models.Opportunity) (*models.Opportunity, error) {
	const op = "create_opportunity"
	actor, err := s.authorize(ctx, models.CapPostOpportunity)
	if err != nil {
		return nil, s.fail(op, err)
	}
	if err := validateOpportunity(o); err != nil {
		return nil, s.fail(op, err)
	}
	if o.Format != "" {
		f, ok := models.ParseFormat(string(o.Format))
		if !ok {
			return nil, s.fail(op, invalid("unknown format %q", o.Format))
		}
		o.Format = f
	}
	if o.ClientOrganizationID == "" && actor.Role == models.RoleEnterprise {
		o.ClientOrganizationID = actor.ID.String()
	}

	err = s.transact(ctx, func(tx *db.Repository) error {
		t, err := tx.GetTraining(ctx, o.TrainingID)
		if err != nil {
			if errors.Is(err, e.ErrNotFound) {
				return invalid("unknown training %s", o.TrainingID)
			}
			return err
		}
		o.ID = uuid.New()
		o.Title = t.Title
		o.Category = t.Category
		o.Description = t.Description
		if o.Format == "" {
			o.Format = t.Format
		}
		o.Status = models.OpportunityOpen
		o.AwardedProposalID = nil
		return tx.CreateOpportunity(ctx, o)
	})
	if err != nil {
		return nil, s.fail(op, err)
	}

	s.metrics.Transition("opportunity", string(o.Status))
	s.logger.Info("Opportunity posted",
		zap.String("opportunity_id", o.ID.String()),
		zap.String("training_id", o.TrainingID.String()),
	)
	s.emit(events.Event{
		Type:          events.OpportunityCreated,
		EntityID:      o.ID,
		OpportunityID: utils.Ptr(o.ID),
		Status:        string(o.Status),
	})
	return o, nil
}

// GetOpportunity retrieves an opportunity, redacted for vendors.
func (s *LifecycleService) GetOpportunity(ctx context.Context, id uuid.UUID) (*models.Opportunity, error) {
	actor, err := s.authorize(ctx, models.CapViewOpportunities)
	if err != nil {
		return nil, s.fail("get_opportunity", err)
	}
	o, err := s.repo.GetOpportunity(ctx, id)
	if err != nil {
		return nil, s.fail("get_opportunity", wrapGet("opportunity", err))
	}
	redacted := query.RedactOpportunity(*o, actor)
	return &redacted, nil
}

// ListOpportunities returns the bidding board narrowed by f, redacted for vendors.
func (s *LifecycleService) ListOpportunities(ctx context.Context, f query.OpportunityFilter) ([]models.Opportunity, error) {
	actor, err := s.authorize(ctx, models.CapViewOpportunities)
	if err != nil {
		return nil, s.fail("list_opportunities", err)
	}
	all, err := s.repo.ListOpportunities(ctx)
	if err != nil {
		return nil, s.fail("list_opportunities", fmt.Errorf("failed to list opportunities: %w", err))
	}
	out := query.FilterOpportunities(all, f)
	for i := range out {
		out[i] = query.RedactOpportunity(out[i], actor)
	}
	return out, nil
}

// CloseOpportunity withdraws an open opportunity. Its pending proposals are rejected.
func (s *LifecycleService) CloseOpportunity(ctx context.Context, id uuid.UUID) (*models.Opportunity, error) {
	const op = "close_opportunity"
	if _, err := s.authorize(ctx, models.CapPostOpportunity); err != nil {
		return nil, s.fail(op, err)
	}
	var (
		closed   *models.Opportunity
		rejected []models.Proposal
	)
	err := s.transact(ctx, func(tx *db.Repository) error {
		o, err := tx.GetOpportunity(ctx, id)
		if err != nil {
			return wrapGet("opportunity", err)
		}
		if o.Status != models.OpportunityOpen {
			return fmt.Errorf("%w: opportunity is %s", e.ErrInvalidTransition, o.Status)
		}
		o.Status = models.OpportunityClosed
		if err := tx.UpdateOpportunity(ctx, o); err != nil {
			return err
		}
		closed = o
		rejected, err = s.rejectPending(ctx, tx, id, uuid.Nil)
		return err
	})
	if err != nil {
		return nil, s.fail(op, err)
	}

	s.metrics.Transition("opportunity", string(closed.Status))
	s.logger.Info("Opportunity closed", zap.String("opportunity_id", id.String()))
	s.emit(events.Event{
		Type:          events.OpportunityClosed,
		EntityID:      id,
		OpportunityID: utils.Ptr(id),
		Status:        string(closed.Status),
	})
	s.emitRejected(rejected)
	return closed, nil
}

// wrapGet adds the entity name to a store lookup error.
func wrapGet(entity string, err error) error {
	if errors.Is(err, e.ErrNotFound) {
		return fmt.Errorf("%w: %s", e.ErrNotFound, entity)
	}
	return fmt.Errorf("failed to get %s: %w", entity, err)
}
