// Package controller implements the training lifecycle engine: the state
// machines of proposals, sessions and vendors, the catalog and opportunity
// board around them, and the role checks guarding every operation.
package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gartstein/ehs/internal/training/db"
	e "github.com/gartstein/ehs/internal/training/errors"
	"github.com/gartstein/ehs/internal/training/events"
	"github.com/gartstein/ehs/internal/training/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventProducer publishes lifecycle events. Produce must not block.
type EventProducer interface {
	Produce(event events.Event)
}

// Metrics counts lifecycle transitions and failed operations.
type Metrics interface {
	Transition(entity, status string)
	Failure(operation, kind string)
}

// Repository defines the entity store used by the engine. Mutations run
// inside WithTransaction so that multi-entity transitions commit atomically.
type Repository interface {
	GetTraining(ctx context.Context, id uuid.UUID) (*models.Training, error)
	ListTrainings(ctx context.Context) ([]models.Training, error)
	GetOpportunity(ctx context.Context, id uuid.UUID) (*models.Opportunity, error)
	ListOpportunities(ctx context.Context) ([]models.Opportunity, error)
	GetProposal(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	ListProposals(ctx context.Context, opportunityID uuid.UUID) ([]models.Proposal, error)
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	ListSessions(ctx context.Context, f db.SessionFilter) ([]models.Session, error)
	GetVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	ListVendors(ctx context.Context) ([]models.Vendor, error)
	WithTransaction(ctx context.Context, fn func(repo *db.Repository) error) error
	Close() error
}

// SiblingPolicy decides what happens to the other pending proposals of an
// opportunity once one of them is accepted.
type SiblingPolicy int

const (
	// KeepSiblingsPending leaves competing proposals untouched. They can no
	// longer be accepted because the opportunity is no longer open.
	KeepSiblingsPending SiblingPolicy = iota
	// RejectSiblings rejects every other pending proposal in the same transaction.
	RejectSiblings
)

// Option configures a LifecycleService.
type Option func(*LifecycleService)

// WithSiblingPolicy sets the policy applied when a proposal is accepted.
func WithSiblingPolicy(p SiblingPolicy) Option {
	return func(s *LifecycleService) { s.siblings = p }
}

// WithMetrics installs a metrics sink.
func WithMetrics(m Metrics) Option {
	return func(s *LifecycleService) { s.metrics = m }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *LifecycleService) { s.now = now }
}

// LifecycleService drives trainings from a posted opportunity through
// proposals and scheduling to a completed session.
type LifecycleService struct {
	repo     Repository
	producer EventProducer
	metrics  Metrics
	logger   *zap.Logger
	siblings SiblingPolicy
	now      func() time.Time
}

// NewLifecycleService constructs a LifecycleService with a repository,
// an event producer, and a logger.
func NewLifecycleService(repo Repository, producer EventProducer, logger *zap.Logger, opts ...Option) *LifecycleService {
	s := &LifecycleService{
		repo:     repo,
		producer: producer,
		metrics:  nopMetrics{},
		logger:   logger.Named("lifecycle_service"),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type nopMetrics struct{}

func (nopMetrics) Transition(string, string) {}
func (nopMetrics) Failure(string, string)    {}

// authorize returns the caller if its role grants capability c.
func (s *LifecycleService) authorize(ctx context.Context, c models.Capability) (models.Actor, error) {
	actor, ok := models.ActorFromContext(ctx)
	if !ok {
		return models.Actor{}, fmt.Errorf("%w: no authenticated actor", e.ErrForbidden)
	}
	if !actor.Role.Allows(c) {
		return actor, fmt.Errorf("%w: role %s may not %s", e.ErrForbidden, actor.Role, c)
	}
	return actor, nil
}

// emit publishes events produced by a committed transaction.
func (s *LifecycleService) emit(evs ...events.Event) {
	for _, ev := range evs {
		if ev.At.IsZero() {
			ev.At = s.now()
		}
		s.producer.Produce(ev)
	}
}

// fail records a failed operation and returns err unchanged.
func (s *LifecycleService) fail(op string, err error) error {
	kind := errorKind(err)
	s.metrics.Failure(op, kind)
	if kind == "internal" {
		s.logger.Error("Lifecycle operation failed", zap.String("operation", op), zap.Error(err))
	} else {
		s.logger.Debug("Lifecycle operation rejected",
			zap.String("operation", op),
			zap.String("kind", kind),
			zap.Error(err),
		)
	}
	return err
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, e.ErrValidation):
		return "validation"
	case errors.Is(err, e.ErrNotFound):
		return "not_found"
	case errors.Is(err, e.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, e.ErrPrecondition):
		return "precondition"
	case errors.Is(err, e.ErrConflict):
		return "conflict"
	case errors.Is(err, e.ErrAlreadyDecided):
		return "already_decided"
	case errors.Is(err, e.ErrForbidden):
		return "forbidden"
	default:
		return "internal"
	}
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", e.ErrValidation, fmt.Sprintf(format, args...))
}
