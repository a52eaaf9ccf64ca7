package query

import (
	"testing"

	"github.com/gartstein/ehs/internal/training/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSummarizeVendors(t *testing.T) {
	vendors := []models.Vendor{
		{Status: models.VendorApproved, Rating: 4.8, CompletedSessions: 10, Specializations: []models.Category{models.CategorySafety}},
		{Status: models.VendorApproved, Rating: 4.2, CompletedSessions: 3, Specializations: []models.Category{models.CategorySafety, models.CategoryHealth}},
		{Status: models.VendorPending},
		{Status: models.VendorRejected},
	}

	s := SummarizeVendors(vendors)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Active)
	assert.Equal(t, 1, s.Pending)
	assert.InDelta(t, 50.0, s.ActivePercent, 1e-9)
	assert.InDelta(t, 4.5, s.AverageRating, 1e-9)
	assert.Equal(t, 2, s.RatedVendors)
	assert.Equal(t, 13, s.CompletedSessions)
	assert.Equal(t, 2, s.BySpecialization[models.CategorySafety])
	assert.Equal(t, 1, s.BySpecialization[models.CategoryHealth])
}

func TestSummarizeVendors_Empty(t *testing.T) {
	s := SummarizeVendors(nil)
	assert.Zero(t, s.Total)
	assert.Zero(t, s.ActivePercent)
	assert.Zero(t, s.AverageRating)
}

func TestVisibility(t *testing.T) {
	me := uuid.New()
	other := uuid.New()
	vendor := models.Actor{ID: me, Role: models.RoleVendor}
	admin := models.Actor{ID: uuid.New(), Role: models.RoleAdmin}

	proposals := []models.Proposal{{VendorID: me}, {VendorID: other}}
	assert.Len(t, VisibleProposals(proposals, vendor), 1)
	assert.Len(t, VisibleProposals(proposals, admin), 2)

	employee := models.Actor{ID: uuid.New(), Role: models.RoleEmployee}
	sessions := []models.Session{
		{Title: "mine", VendorID: &me, ClientOrganizationID: "acme", EmployeeIDs: []string{employee.ID.String()}},
		{Title: "theirs", VendorID: &other, EmployeeIDs: []string{"someone"}},
	}
	got := VisibleSessions(sessions, vendor)
	if assert.Len(t, got, 1) {
		assert.Equal(t, "mine", got[0].Title)
		assert.Empty(t, got[0].ClientOrganizationID)
		assert.Nil(t, got[0].EmployeeIDs)
	}
	assert.Len(t, VisibleSessions(sessions, employee), 1)
	assert.Len(t, VisibleSessions(sessions, admin), 2)

	opp := RedactOpportunity(models.Opportunity{ClientOrganizationID: "acme"}, vendor)
	assert.Empty(t, opp.ClientOrganizationID)
	opp = RedactOpportunity(models.Opportunity{ClientOrganizationID: "acme"}, admin)
	assert.Equal(t, "acme", opp.ClientOrganizationID)
}
