package controller

import (
	"testing"
	"time"

	"github.com/gartstein/ehs/internal/pkg/utils"
	e "github.com/gartstein/ehs/internal/training/errors"
	"github.com/gartstein/ehs/internal/training/events"
	"github.com/gartstein/ehs/internal/training/models"
	"github.com/gartstein/ehs/internal/training/query"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleService_ScheduleSession(t *testing.T) {
	f := setup(t)
	tr := f.training(t)
	o, p, v := f.awarded(t, tr.ID)

	s := f.schedule(t, o.ID)
	assert.Equal(t, models.SessionScheduled, s.Status)
	assert.Equal(t, "Dana Reyes", s.TrainerName)
	assert.Equal(t, s.StartsAt, s.EndsAt)
	assert.Equal(t, models.FormatInPerson, s.Format)
	assert.Equal(t, "acme", s.ClientOrganizationID)
	require.NotNil(t, s.ProposalID)
	assert.Equal(t, p.ID, *s.ProposalID)
	require.NotNil(t, s.VendorID)
	assert.Equal(t, v.ID, *s.VendorID)
	assert.Equal(t, events.SessionScheduled, f.producer.last().Type)

	training, err := f.repo.GetTraining(f.admin, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TrainingScheduled, training.Status)

	vendor, err := f.repo.GetVendor(f.admin, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, vendor.UpcomingSessions)

	_, err = f.svc.ScheduleSession(f.admin, o.ID, models.SessionSchedule{
		StartsAt: may15, Location: "Houston, TX", EmployeeIDs: []string{"emp-3"},
	})
	assert.ErrorIs(t, err, e.ErrPrecondition)

	_, err = f.svc.UpdateTraining(f.admin, &models.TrainingUpdate{ID: tr.ID, Title: utils.Ptr("Renamed")})
	assert.ErrorIs(t, err, e.ErrPrecondition)
	assert.ErrorIs(t, f.svc.DeleteTraining(f.admin, tr.ID), e.ErrPrecondition)
}

func TestLifecycleService_ScheduleSession_Errors(t *testing.T) {
	f := setup(t)
	tr := f.training(t)
	unawarded := f.opportunity(t, tr.ID)
	f.proposal(t, unawarded.ID, f.vendor(t, true).ID)
	awarded, _, _ := f.awarded(t, tr.ID)

	valid := models.SessionSchedule{StartsAt: may15, Location: "Houston, TX", EmployeeIDs: []string{"emp-1"}}
	with := func(mod func(*models.SessionSchedule)) models.SessionSchedule {
		s := valid
		mod(&s)
		return s
	}

	tests := []struct {
		name     string
		opp      uuid.UUID
		schedule models.SessionSchedule
		wantErr  error
	}{
		{"no employees", awarded.ID, with(func(s *models.SessionSchedule) { s.EmployeeIDs = []string{} }), e.ErrValidation},
		{"no employees on unknown opportunity", uuid.New(), with(func(s *models.SessionSchedule) { s.EmployeeIDs = nil }), e.ErrValidation},
		{"no employees without accepted proposal", unawarded.ID, with(func(s *models.SessionSchedule) { s.EmployeeIDs = nil }), e.ErrValidation},
		{"missing start", awarded.ID, with(func(s *models.SessionSchedule) { s.StartsAt = time.Time{} }), e.ErrValidation},
		{"ends before start", awarded.ID, with(func(s *models.SessionSchedule) { s.EndsAt = may15.AddDate(0, 0, -1) }), e.ErrValidation},
		{"no location", awarded.ID, with(func(s *models.SessionSchedule) { s.Location = "" }), e.ErrValidation},
		{"unknown format", awarded.ID, with(func(s *models.SessionSchedule) { s.Format = "hologram" }), e.ErrValidation},
		{"no accepted proposal", unawarded.ID, valid, e.ErrPrecondition},
		{"unknown opportunity", uuid.New(), valid, e.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.ScheduleSession(f.admin, tt.opp, tt.schedule)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLifecycleService_AdvanceSession_RatingAverage(t *testing.T) {
	f := setup(t)
	tr := f.training(t)
	o, _, v := f.awarded(t, tr.ID)
	first := f.schedule(t, o.ID)

	_, err := f.svc.AdvanceSession(f.admin, first.ID, models.SessionInProgress, nil)
	require.NoError(t, err)
	done, err := f.svc.AdvanceSession(f.admin, first.ID, models.SessionCompleted, utils.Ptr(4.9))
	require.NoError(t, err)
	require.NotNil(t, done.Rating)
	assert.Equal(t, 4.9, *done.Rating)

	vendor, err := f.repo.GetVendor(f.admin, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.9, vendor.Rating)
	assert.Equal(t, 1, vendor.CompletedSessions)
	assert.Equal(t, 0, vendor.UpcomingSessions)

	training, err := f.repo.GetTraining(f.admin, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TrainingAvailable, training.Status)

	// second session delivered by the same vendor
	o2 := f.opportunity(t, tr.ID)
	p2 := f.proposal(t, o2.ID, v.ID)
	_, err = f.svc.DecideProposal(f.admin, p2.ID, models.ProposalAccepted)
	require.NoError(t, err)
	second := f.schedule(t, o2.ID)
	_, err = f.svc.AdvanceSession(f.admin, second.ID, models.SessionInProgress, nil)
	require.NoError(t, err)
	_, err = f.svc.AdvanceSession(f.admin, second.ID, models.SessionCompleted, utils.Ptr(4.7))
	require.NoError(t, err)

	vendor, err = f.repo.GetVendor(f.admin, v.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.8, vendor.Rating, 1e-9)
	assert.Equal(t, 2, vendor.RatedSessions)
	assert.Equal(t, 2, vendor.CompletedSessions)
}

func TestLifecycleService_AdvanceSession_Transitions(t *testing.T) {
	f := setup(t)
	tr := f.training(t)
	o, _, v := f.awarded(t, tr.ID)
	s := f.schedule(t, o.ID)

	tests := []struct {
		name    string
		next    models.SessionStatus
		rating  *float64
		wantErr error
	}{
		{"skip in progress", models.SessionCompleted, nil, e.ErrInvalidTransition},
		{"back to scheduled", models.SessionScheduled, nil, e.ErrInvalidTransition},
		{"unknown status", "Paused", nil, e.ErrValidation},
		{"rating before completion", models.SessionInProgress, utils.Ptr(4.0), e.ErrValidation},
		{"rating too high", models.SessionCompleted, utils.Ptr(5.5), e.ErrValidation},
		{"rating negative", models.SessionCompleted, utils.Ptr(-1.0), e.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AdvanceSession(f.admin, s.ID, tt.next, tt.rating)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	other := asRole(models.RoleVendor, uuid.New())
	_, err := f.svc.AdvanceSession(other, s.ID, models.SessionInProgress, nil)
	assert.ErrorIs(t, err, e.ErrForbidden)

	started, err := f.svc.AdvanceSession(asRole(models.RoleVendor, v.ID), s.ID, "in-progress", nil)
	require.NoError(t, err)
	assert.Equal(t, models.SessionInProgress, started.Status)

	_, err = f.svc.AdvanceSession(f.admin, s.ID, models.SessionCancelled, nil)
	assert.ErrorIs(t, err, e.ErrInvalidTransition)
}

func TestLifecycleService_AdvanceSession_Cancel(t *testing.T) {
	f := setup(t)
	tr := f.training(t)
	o, _, v := f.awarded(t, tr.ID)
	s := f.schedule(t, o.ID)

	cancelled, err := f.svc.AdvanceSession(f.admin, s.ID, models.SessionCancelled, nil)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCancelled, cancelled.Status)
	assert.Equal(t, events.SessionStatusChanged, f.producer.last().Type)

	vendor, err := f.repo.GetVendor(f.admin, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, vendor.UpcomingSessions)
	assert.Equal(t, 0, vendor.CompletedSessions)

	training, err := f.repo.GetTraining(f.admin, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TrainingAvailable, training.Status)

	_, err = f.svc.AdvanceSession(f.admin, s.ID, models.SessionInProgress, nil)
	assert.ErrorIs(t, err, e.ErrInvalidTransition)

	rescheduled := f.schedule(t, o.ID)
	assert.NotEqual(t, s.ID, rescheduled.ID)
}

func TestLifecycleService_AddSessionMaterial(t *testing.T) {
	f := setup(t)
	tr := f.training(t)
	o, _, v := f.awarded(t, tr.ID)
	s := f.schedule(t, o.ID)
	vendorCtx := asRole(models.RoleVendor, v.ID)

	updated, err := f.svc.AddSessionMaterial(vendorCtx, s.ID, "Slides", "docs/forklift.pdf")
	require.NoError(t, err)
	require.Len(t, updated.Materials, 1)
	assert.Equal(t, "Slides", updated.Materials[0].Name)
	assert.Empty(t, updated.EmployeeIDs)

	_, err = f.svc.AddSessionMaterial(vendorCtx, s.ID, "", "docs/x.pdf")
	assert.ErrorIs(t, err, e.ErrValidation)

	_, err = f.svc.AdvanceSession(f.admin, s.ID, models.SessionCancelled, nil)
	require.NoError(t, err)
	_, err = f.svc.AddSessionMaterial(f.admin, s.ID, "Handout", "docs/handout.pdf")
	assert.ErrorIs(t, err, e.ErrPrecondition)
}

func TestLifecycleService_SessionVisibility(t *testing.T) {
	f := setup(t)
	tr := f.training(t)
	o, _, v := f.awarded(t, tr.ID)
	s := f.schedule(t, o.ID)

	got, err := f.svc.GetSession(asRole(models.RoleVendor, v.ID), s.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ClientOrganizationID)
	assert.Nil(t, got.EmployeeIDs)

	_, err = f.svc.GetSession(asRole(models.RoleVendor, uuid.New()), s.ID)
	assert.ErrorIs(t, err, e.ErrForbidden)

	got, err = f.svc.GetSession(f.admin, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme", got.ClientOrganizationID)
	assert.Equal(t, []string{"emp-1", "emp-2"}, got.EmployeeIDs)

	list, err := f.svc.ListSessions(asRole(models.RoleEmployee, uuid.New()), query.SessionFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = f.svc.ListSessions(f.admin, query.SessionFilter{Status: "scheduled"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
