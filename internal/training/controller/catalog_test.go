package controller

import (
	"testing"

	"github.com/gartstein/ehs/internal/pkg/utils"
	e "github.com/gartstein/ehs/internal/training/errors"
	"github.com/gartstein/ehs/internal/training/events"
	"github.com/gartstein/ehs/internal/training/models"
	"github.com/gartstein/ehs/internal/training/query"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleService_CreateTraining(t *testing.T) {
	f := setup(t)

	tr, err := f.svc.CreateTraining(f.admin, &models.Training{Title: "Spill Response", Category: "environment", Format: "In-Person"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, tr.ID)
	assert.Equal(t, models.CategoryEnvironment, tr.Category)
	assert.Equal(t, models.FormatInPerson, tr.Format)
	assert.Equal(t, models.TrainingAvailable, tr.Status)

	tests := []struct {
		name  string
		input *models.Training
	}{
		{"no title", &models.Training{Category: models.CategorySafety, Format: models.FormatOnline}},
		{"bad category", &models.Training{Title: "x", Category: "Cooking", Format: models.FormatOnline}},
		{"bad format", &models.Training{Title: "x", Category: models.CategorySafety, Format: "Telepathy"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateTraining(f.admin, tt.input)
			assert.ErrorIs(t, err, e.ErrValidation)
		})
	}
}

func TestLifecycleService_UpdateAndDeleteTraining(t *testing.T) {
	f := setup(t)
	tr := f.training(t)

	updated, err := f.svc.UpdateTraining(f.admin, &models.TrainingUpdate{ID: tr.ID, Title: utils.Ptr("Forklift Refresher")})
	require.NoError(t, err)
	assert.Equal(t, "Forklift Refresher", updated.Title)
	assert.Equal(t, tr.Description, updated.Description)
	assert.Equal(t, 2, updated.Version)

	_, err = f.svc.UpdateTraining(f.admin, &models.TrainingUpdate{ID: tr.ID, Format: utils.Ptr(models.Format("Carrier Pigeon"))})
	assert.ErrorIs(t, err, e.ErrValidation)

	_, err = f.svc.UpdateTraining(f.admin, &models.TrainingUpdate{ID: uuid.New(), Title: utils.Ptr("x")})
	assert.ErrorIs(t, err, e.ErrNotFound)

	list, err := f.svc.ListTrainings(asRole(models.RoleEmployee, uuid.New()), query.TrainingFilter{SearchText: "refresher"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	referenced := f.training(t)
	f.opportunity(t, referenced.ID)
	assert.ErrorIs(t, f.svc.DeleteTraining(f.admin, referenced.ID), e.ErrPrecondition)

	require.NoError(t, f.svc.DeleteTraining(f.admin, tr.ID))
	_, err = f.svc.GetTraining(f.admin, tr.ID)
	assert.ErrorIs(t, err, e.ErrNotFound)
}

func TestLifecycleService_CreateOpportunity(t *testing.T) {
	f := setup(t)
	tr := f.training(t)

	o := f.opportunity(t, tr.ID)
	assert.Equal(t, models.OpportunityOpen, o.Status)
	assert.Equal(t, tr.Title, o.Title)
	assert.Equal(t, tr.Category, o.Category)
	assert.Equal(t, tr.Format, o.Format)
	assert.Equal(t, events.OpportunityCreated, f.producer.last().Type)

	enterprise := uuid.New()
	own, err := f.svc.CreateOpportunity(asRole(models.RoleEnterprise, enterprise), &models.Opportunity{
		TrainingID: tr.ID, StartDate: may15, EndDate: may15, Location: "Remote",
		Format: "online", Attendees: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, enterprise.String(), own.ClientOrganizationID)
	assert.Equal(t, models.FormatOnline, own.Format)

	valid := models.Opportunity{
		TrainingID: tr.ID, StartDate: may15, EndDate: may15.AddDate(0, 0, 2),
		Location: "Houston, TX", Attendees: 5, BudgetMin: 100, BudgetMax: 200,
	}
	tests := []struct {
		name string
		mod  func(*models.Opportunity)
	}{
		{"start after end", func(o *models.Opportunity) { o.EndDate = may15.AddDate(0, 0, -1) }},
		{"min above max", func(o *models.Opportunity) { o.BudgetMin = 300 }},
		{"no attendees", func(o *models.Opportunity) { o.Attendees = 0 }},
		{"no location", func(o *models.Opportunity) { o.Location = " " }},
		{"unknown training", func(o *models.Opportunity) { o.TrainingID = uuid.New() }},
		{"unknown format", func(o *models.Opportunity) { o.Format = "Radio" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := valid
			tt.mod(&o)
			_, err := f.svc.CreateOpportunity(f.admin, &o)
			assert.ErrorIs(t, err, e.ErrValidation)
		})
	}
}

func TestLifecycleService_CloseOpportunity(t *testing.T) {
	f := setup(t)
	tr := f.training(t)
	o := f.opportunity(t, tr.ID)
	p := f.proposal(t, o.ID, f.vendor(t, true).ID)

	closed, err := f.svc.CloseOpportunity(f.admin, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OpportunityClosed, closed.Status)
	assert.Equal(t, events.ProposalRejected, f.producer.last().Type)

	stored, err := f.repo.GetProposal(f.admin, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalRejected, stored.Status)

	_, err = f.svc.CloseOpportunity(f.admin, o.ID)
	assert.ErrorIs(t, err, e.ErrInvalidTransition)
}

func TestLifecycleService_OpportunityRedaction(t *testing.T) {
	f := setup(t)
	tr := f.training(t)
	o := f.opportunity(t, tr.ID)
	vendor := asRole(models.RoleVendor, uuid.New())

	got, err := f.svc.GetOpportunity(vendor, o.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ClientOrganizationID)

	list, err := f.svc.ListOpportunities(vendor, query.OpportunityFilter{Status: "open"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].ClientOrganizationID)

	got, err = f.svc.GetOpportunity(f.admin, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme", got.ClientOrganizationID)
}
