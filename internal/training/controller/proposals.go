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

// Decision is the outcome of DecideProposal.
type Decision struct {
	Proposal    *models.Proposal    `json:"proposal"`
	Opportunity *models.Opportunity `json:"opportunity"`
	// Rejected lists sibling proposals rejected along with an acceptance.
	Rejected []models.Proposal `json:"rejected,omitempty"`
}

func validateBid(fees models.Fees, trainers []models.Trainer) error {
	if fees.ContentFee < 0 || fees.TrainingFee < 0 || fees.TravelFee < 0 {
		return invalid("fees must not be negative")
	}
	if len(trainers) == 0 {
		return invalid("at least one trainer is required")
	}
	for i, t := range trainers {
		if strings.TrimSpace(t.Name) == "" {
			return invalid("trainer %d has no name", i+1)
		}
	}
	return nil
}

// SubmitProposal records a vendor's bid on an open opportunity. The total
// fee is the sum of the fee components. Vendors may only bid for themselves.
func (s *LifecycleService) SubmitProposal(ctx context.Context, opportunityID, vendorID uuid.UUID, fees models.Fees, trainers []models.Trainer, notes string) (*models.Proposal, error) {
	const op = "submit_proposal"
	actor, err := s.authorize(ctx, models.CapSubmitProposal)
	if err != nil {
		return nil, s.fail(op, err)
	}
	if vendorID == uuid.Nil && actor.IsVendor() {
		vendorID = actor.ID
	}
	if actor.IsVendor() && vendorID != actor.ID {
		return nil, s.fail(op, fmt.Errorf("%w: vendors may only bid for themselves", e.ErrForbidden))
	}
	if err := validateBid(fees, trainers); err != nil {
		return nil, s.fail(op, err)
	}

	p := &models.Proposal{
		ID:            uuid.New(),
		OpportunityID: opportunityID,
		VendorID:      vendorID,
		Fees:          fees,
		TotalFee:      fees.Total(),
		Trainers:      trainers,
		Notes:         notes,
		SubmittedAt:   s.now(),
		Status:        models.ProposalPending,
	}
	err = s.transact(ctx, func(tx *db.Repository) error {
		o, err := tx.GetOpportunity(ctx, opportunityID)
		if err != nil {
			return wrapGet("opportunity", err)
		}
		if o.Status != models.OpportunityOpen {
			return invalid("opportunity is %s", o.Status)
		}
		v, err := tx.GetVendor(ctx, vendorID)
		if err != nil {
			return wrapGet("vendor", err)
		}
		if v.Status != models.VendorApproved {
			return fmt.Errorf("%w: vendor is %s", e.ErrPrecondition, v.Status)
		}
		existing, err := tx.ListProposals(ctx, opportunityID)
		if err != nil {
			return err
		}
		for i := range existing {
			if existing[i].VendorID == vendorID && existing[i].IsActive() {
				return invalid("vendor already has a %s proposal on this opportunity", existing[i].Status)
			}
		}
		// a decision or closure committed since the read above fails this
		// write with ErrConflict, so no pending bid lands on a settled opportunity
		if err := tx.UpdateOpportunity(ctx, o); err != nil {
			return err
		}
		return tx.CreateProposal(ctx, p)
	})
	if err != nil {
		return nil, s.fail(op, err)
	}

	s.metrics.Transition("proposal", string(p.Status))
	s.logger.Info("Proposal submitted",
		zap.String("proposal_id", p.ID.String()),
		zap.String("opportunity_id", opportunityID.String()),
		zap.String("vendor_id", vendorID.String()),
		zap.Float64("total_fee", p.TotalFee),
	)
	s.emit(events.Event{
		Type:          events.ProposalSubmitted,
		EntityID:      p.ID,
		OpportunityID: utils.Ptr(opportunityID),
		VendorID:      utils.Ptr(vendorID),
		Status:        string(p.Status),
	})
	return p, nil
}

// DecideProposal accepts or rejects a pending proposal. Accepting requires an
// open opportunity and awards it to the proposal.
func (s *LifecycleService) DecideProposal(ctx context.Context, proposalID uuid.UUID, decision models.ProposalStatus) (*Decision, error) {
	const op = "decide_proposal"
	if _, err := s.authorize(ctx, models.CapDecideProposal); err != nil {
		return nil, s.fail(op, err)
	}
	if !decision.IsDecision() {
		return nil, s.fail(op, invalid("decision must be %s or %s", models.ProposalAccepted, models.ProposalRejected))
	}

	result := &Decision{}
	err := s.transact(ctx, func(tx *db.Repository) error {
		p, err := tx.GetProposal(ctx, proposalID)
		if err != nil {
			return wrapGet("proposal", err)
		}
		if !p.Status.CanTransitionTo(decision) {
			return fmt.Errorf("%w: proposal is already %s", e.ErrInvalidTransition, p.Status)
		}
		o, err := tx.GetOpportunity(ctx, p.OpportunityID)
		if err != nil {
			return wrapGet("opportunity", err)
		}
		if decision == models.ProposalAccepted && o.Status != models.OpportunityOpen {
			return fmt.Errorf("%w: opportunity is %s", e.ErrPrecondition, o.Status)
		}

		// claim the opportunity first so a competing accept waits on its row
		// and fails the version check rather than the accepted-proposal index
		if decision == models.ProposalAccepted {
			o.Status = models.OpportunityAwarded
			o.AwardedProposalID = utils.Ptr(p.ID)
			if err := tx.UpdateOpportunity(ctx, o); err != nil {
				return err
			}
		}

		p.Status = decision
		p.DecidedAt = utils.Ptr(s.now())
		if err := tx.UpdateProposal(ctx, p); err != nil {
			return err
		}
		result.Proposal, result.Opportunity = p, o
		if decision != models.ProposalAccepted {
			return nil
		}
		if s.siblings == RejectSiblings {
			result.Rejected, err = s.rejectPending(ctx, tx, o.ID, p.ID)
		}
		return err
	})
	if err != nil {
		return nil, s.fail(op, err)
	}

	p := result.Proposal
	s.metrics.Transition("proposal", string(p.Status))
	s.logger.Info("Proposal decided",
		zap.String("proposal_id", p.ID.String()),
		zap.String("status", string(p.Status)),
		zap.Int("siblings_rejected", len(result.Rejected)),
	)
	evType := events.ProposalRejected
	if p.Status == models.ProposalAccepted {
		evType = events.ProposalAccepted
		s.metrics.Transition("opportunity", string(result.Opportunity.Status))
	}
	s.emit(events.Event{
		Type:          evType,
		EntityID:      p.ID,
		OpportunityID: utils.Ptr(p.OpportunityID),
		VendorID:      utils.Ptr(p.VendorID),
		Status:        string(p.Status),
	})
	s.emitRejected(result.Rejected)
	return result, nil
}

// rejectPending rejects every pending proposal of an opportunity except keep.
func (s *LifecycleService) rejectPending(ctx context.Context, tx *db.Repository, opportunityID, keep uuid.UUID) ([]models.Proposal, error) {
	proposals, err := tx.ListProposals(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	var rejected []models.Proposal
	for i := range proposals {
		p := &proposals[i]
		if p.ID == keep || p.Status != models.ProposalPending {
			continue
		}
		p.Status = models.ProposalRejected
		p.DecidedAt = utils.Ptr(s.now())
		if err := tx.UpdateProposal(ctx, p); err != nil {
			return nil, err
		}
		rejected = append(rejected, *p)
	}
	return rejected, nil
}

func (s *LifecycleService) emitRejected(rejected []models.Proposal) {
	for _, p := range rejected {
		s.metrics.Transition("proposal", string(p.Status))
		s.emit(events.Event{
			Type:          events.ProposalRejected,
			EntityID:      p.ID,
			OpportunityID: utils.Ptr(p.OpportunityID),
			VendorID:      utils.Ptr(p.VendorID),
			Status:        string(p.Status),
		})
	}
}

// GetProposal retrieves a proposal. Vendors may only read their own.
func (s *LifecycleService) GetProposal(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	actor, err := s.authorize(ctx, models.CapViewProposals)
	if err != nil {
		return nil, s.fail("get_proposal", err)
	}
	p, err := s.repo.GetProposal(ctx, id)
	if err != nil {
		return nil, s.fail("get_proposal", wrapGet("proposal", err))
	}
	if actor.IsVendor() && p.VendorID != actor.ID {
		return nil, s.fail("get_proposal", fmt.Errorf("%w: proposal belongs to another vendor", e.ErrForbidden))
	}
	return p, nil
}

// ListProposals returns the proposals of an opportunity in submission order,
// or of all opportunities when opportunityID is uuid.Nil.
func (s *LifecycleService) ListProposals(ctx context.Context, opportunityID uuid.UUID) ([]models.Proposal, error) {
	actor, err := s.authorize(ctx, models.CapViewProposals)
	if err != nil {
		return nil, s.fail("list_proposals", err)
	}
	if opportunityID != uuid.Nil {
		if _, err := s.repo.GetOpportunity(ctx, opportunityID); err != nil {
			return nil, s.fail("list_proposals", wrapGet("opportunity", err))
		}
	}
	all, err := s.repo.ListProposals(ctx, opportunityID)
	if err != nil {
		return nil, s.fail("list_proposals", fmt.Errorf("failed to list proposals: %w", err))
	}
	return query.VisibleProposals(all, actor), nil
}
