package controller

import (
	"testing"

	e "github.com/gartstein/ehs/internal/training/errors"
	"github.com/gartstein/ehs/internal/training/events"
	"github.com/gartstein/ehs/internal/training/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleService_SubmitProposal(t *testing.T) {
	f := setup(t)
	tr := f.training(t)
	o := f.opportunity(t, tr.ID)
	v := f.vendor(t, true)

	p, err := f.svc.SubmitProposal(asRole(models.RoleVendor, v.ID), o.ID, uuid.Nil, defaultFees,
		[]models.Trainer{{Name: "Dana Reyes", ResumeRef: "resumes/dana.pdf"}}, "two trainers available")
	require.NoError(t, err)

	assert.Equal(t, 3250.0, p.TotalFee)
	assert.Equal(t, models.ProposalPending, p.Status)
	assert.Equal(t, v.ID, p.VendorID)
	assert.Nil(t, p.DecidedAt)

	stored, err := f.repo.GetProposal(f.admin, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3250.0, stored.TotalFee)
	assert.Equal(t, p.Trainers, stored.Trainers)

	ev := f.producer.last()
	assert.Equal(t, events.ProposalSubmitted, ev.Type)
	assert.Equal(t, p.ID, ev.EntityID)
	require.NotNil(t, ev.OpportunityID)
	assert.Equal(t, o.ID, *ev.OpportunityID)
	assert.Equal(t, 1, f.metrics.transitions["proposal/Pending"])
}

func TestLifecycleService_SubmitProposal_ClaimsOpportunityVersion(t *testing.T) {
	f := setup(t)
	tr := f.training(t)
	o := f.opportunity(t, tr.ID)
	v := f.vendor(t, true)

	// a decision that read the opportunity before the bid landed
	stale, err := f.repo.GetOpportunity(f.admin, o.ID)
	require.NoError(t, err)

	f.proposal(t, o.ID, v.ID)

	current, err := f.repo.GetOpportunity(f.admin, o.ID)
	require.NoError(t, err)
	assert.Equal(t, stale.Version+1, current.Version)

	stale.Status = models.OpportunityAwarded
	err = f.repo.UpdateOpportunity(f.admin, stale)
	assert.ErrorIs(t, err, e.ErrConflict, "the bid and the stale award cannot both commit")
}

func TestLifecycleService_SubmitProposal_Errors(t *testing.T) {
	f := setup(t)
	tr := f.training(t)
	open := f.opportunity(t, tr.ID)
	closed := f.opportunity(t, tr.ID)
	_, err := f.svc.CloseOpportunity(f.admin, closed.ID)
	require.NoError(t, err)

	approved := f.vendor(t, true)
	pending := f.vendor(t, false)
	bidder := f.vendor(t, true)
	f.proposal(t, open.ID, bidder.ID)

	trainers := []models.Trainer{{Name: "Dana Reyes"}}
	tests := []struct {
		name     string
		opp      uuid.UUID
		vendor   uuid.UUID
		actor    uuid.UUID
		fees     models.Fees
		trainers []models.Trainer
		wantErr  error
	}{
		{"negative fee", open.ID, approved.ID, approved.ID, models.Fees{TravelFee: -1}, trainers, e.ErrValidation},
		{"no trainers", open.ID, approved.ID, approved.ID, defaultFees, nil, e.ErrValidation},
		{"blank trainer", open.ID, approved.ID, approved.ID, defaultFees, []models.Trainer{{Name: " "}}, e.ErrValidation},
		{"closed opportunity", closed.ID, approved.ID, approved.ID, defaultFees, trainers, e.ErrValidation},
		{"duplicate active proposal", open.ID, bidder.ID, bidder.ID, defaultFees, trainers, e.ErrValidation},
		{"vendor not approved", open.ID, pending.ID, pending.ID, defaultFees, trainers, e.ErrPrecondition},
		{"unknown opportunity", uuid.New(), approved.ID, approved.ID, defaultFees, trainers, e.ErrNotFound},
		{"bid for another vendor", open.ID, approved.ID, bidder.ID, defaultFees, trainers, e.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.SubmitProposal(asRole(models.RoleVendor, tt.actor), tt.opp, tt.vendor, tt.fees, tt.trainers, "")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLifecycleService_DecideProposal_Accept(t *testing.T) {
	f := setup(t)
	tr := f.training(t)
	o := f.opportunity(t, tr.ID)
	winner := f.proposal(t, o.ID, f.vendor(t, true).ID)
	sibling := f.proposal(t, o.ID, f.vendor(t, true).ID)

	d, err := f.svc.DecideProposal(f.admin, winner.ID, models.ProposalAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalAccepted, d.Proposal.Status)
	assert.NotNil(t, d.Proposal.DecidedAt)
	assert.Equal(t, models.OpportunityAwarded, d.Opportunity.Status)
	require.NotNil(t, d.Opportunity.AwardedProposalID)
	assert.Equal(t, winner.ID, *d.Opportunity.AwardedProposalID)
	assert.Empty(t, d.Rejected)
	assert.Equal(t, events.ProposalAccepted, f.producer.last().Type)

	stillPending, err := f.repo.GetProposal(f.admin, sibling.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalPending, stillPending.Status)

	_, err = f.svc.DecideProposal(f.admin, sibling.ID, models.ProposalAccepted)
	assert.ErrorIs(t, err, e.ErrPrecondition)

	d, err = f.svc.DecideProposal(f.admin, sibling.ID, models.ProposalRejected)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalRejected, d.Proposal.Status)
}

func TestLifecycleService_DecideProposal_RejectSiblings(t *testing.T) {
	f := setup(t, WithSiblingPolicy(RejectSiblings))
	tr := f.training(t)
	o := f.opportunity(t, tr.ID)
	winner := f.proposal(t, o.ID, f.vendor(t, true).ID)
	sibling := f.proposal(t, o.ID, f.vendor(t, true).ID)

	d, err := f.svc.DecideProposal(f.admin, winner.ID, models.ProposalAccepted)
	require.NoError(t, err)
	require.Len(t, d.Rejected, 1)
	assert.Equal(t, sibling.ID, d.Rejected[0].ID)

	stored, err := f.repo.GetProposal(f.admin, sibling.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalRejected, stored.Status)
	assert.Equal(t, []events.EventType{events.ProposalAccepted, events.ProposalRejected}, f.producer.types()[len(f.producer.types())-2:])
}

func TestLifecycleService_DecideProposal_DecisionsAreFinal(t *testing.T) {
	f := setup(t)
	tr := f.training(t)
	o := f.opportunity(t, tr.ID)
	rejected := f.proposal(t, o.ID, f.vendor(t, true).ID)
	accepted := f.proposal(t, o.ID, f.vendor(t, true).ID)

	_, err := f.svc.DecideProposal(f.admin, rejected.ID, models.ProposalRejected)
	require.NoError(t, err)
	_, err = f.svc.DecideProposal(f.admin, accepted.ID, models.ProposalAccepted)
	require.NoError(t, err)

	tests := []struct {
		name     string
		id       uuid.UUID
		decision models.ProposalStatus
		wantErr  error
	}{
		{"rejected to accepted", rejected.ID, models.ProposalAccepted, e.ErrInvalidTransition},
		{"rejected to rejected", rejected.ID, models.ProposalRejected, e.ErrInvalidTransition},
		{"accepted to rejected", accepted.ID, models.ProposalRejected, e.ErrInvalidTransition},
		{"back to pending", accepted.ID, models.ProposalPending, e.ErrValidation},
		{"unknown proposal", uuid.New(), models.ProposalAccepted, e.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.DecideProposal(f.admin, tt.id, tt.decision)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	stored, err := f.repo.GetProposal(f.admin, rejected.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalRejected, stored.Status)
}

func TestLifecycleService_ListProposals_VendorSeesOwn(t *testing.T) {
	f := setup(t)
	tr := f.training(t)
	o := f.opportunity(t, tr.ID)
	mine := f.vendor(t, true)
	f.proposal(t, o.ID, mine.ID)
	f.proposal(t, o.ID, f.vendor(t, true).ID)

	all, err := f.svc.ListProposals(f.admin, o.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := f.svc.ListProposals(asRole(models.RoleVendor, mine.ID), o.ID)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, mine.ID, own[0].VendorID)

	_, err = f.svc.GetProposal(asRole(models.RoleVendor, mine.ID), all[1].ID)
	assert.ErrorIs(t, err, e.ErrForbidden)

	_, err = f.svc.ListProposals(f.admin, uuid.New())
	assert.ErrorIs(t, err, e.ErrNotFound)
}
