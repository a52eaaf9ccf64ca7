package handlers

import (
	"fmt"
	"time"

	"github.com/gartstein/ehs/internal/training/models"
	"github.com/google/uuid"
)

// SubmitProposalRequest is the body of a proposal submission.
type SubmitProposalRequest struct {
	OpportunityID string           `json:"opportunityId,omitempty"`
	VendorID      string           `json:"vendorId,omitempty"`
	Fees          models.Fees      `json:"fees"`
	Trainers      []models.Trainer `json:"trainers"`
	Notes         string           `json:"notes,omitempty"`
}

// DecideProposalRequest accepts or rejects a proposal.
type DecideProposalRequest struct {
	ProposalID string `json:"proposalId,omitempty"`
	Decision   string `json:"decision"`
}

// ScheduleSessionRequest is the "Schedule Training" form.
type ScheduleSessionRequest struct {
	OpportunityID string     `json:"opportunityId,omitempty"`
	StartsAt      time.Time  `json:"startsAt"`
	EndsAt        *time.Time `json:"endsAt,omitempty"`
	Format        string     `json:"format,omitempty"`
	Location      string     `json:"location"`
	EmployeeIDs   []string   `json:"employeeIds"`
}

// AdvanceSessionRequest moves a session to its next status.
type AdvanceSessionRequest struct {
	SessionID string   `json:"sessionId,omitempty"`
	Status    string   `json:"status"`
	Rating    *float64 `json:"rating,omitempty"`
}

// VendorReviewRequest names the vendor to approve or reject.
type VendorReviewRequest struct {
	VendorID string `json:"vendorId"`
}

// MaterialRequest attaches a document reference to a session.
type MaterialRequest struct {
	Name string `json:"name"`
	Ref  string `json:"ref"`
}

// TrainingRequest creates or patches a catalog entry. Nil fields are left
// unchanged on update.
type TrainingRequest struct {
	Title       *string  `json:"title,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Duration    *string  `json:"duration,omitempty"`
	Format      *string  `json:"format,omitempty"`
	Description *string  `json:"description,omitempty"`
	Locations   []string `json:"locations,omitempty"`
}

// ProposalResponse wraps a single proposal.
type ProposalResponse struct {
	Proposal *models.Proposal `json:"proposal"`
}

// SessionResponse wraps a single session.
type SessionResponse struct {
	Session *models.Session `json:"session"`
}

// VendorResponse wraps a single vendor.
type VendorResponse struct {
	Vendor *models.Vendor `json:"vendor"`
}

// ErrorResponse is the body of every failed REST call.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func parseID(field, s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s", field)
	}
	return id, nil
}

// optionalID parses s, treating the empty string as uuid.Nil.
func optionalID(field, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, nil
	}
	return parseID(field, s)
}

func (r *ScheduleSessionRequest) toModel() models.SessionSchedule {
	s := models.SessionSchedule{
		StartsAt:    r.StartsAt,
		Format:      models.Format(r.Format),
		Location:    r.Location,
		EmployeeIDs: r.EmployeeIDs,
	}
	if r.EndsAt != nil {
		s.EndsAt = *r.EndsAt
	}
	return s
}

func (r *TrainingRequest) toModel() *models.Training {
	t := &models.Training{Locations: r.Locations}
	if r.Title != nil {
		t.Title = *r.Title
	}
	if r.Category != nil {
		t.Category = models.Category(*r.Category)
	}
	if r.Duration != nil {
		t.Duration = *r.Duration
	}
	if r.Format != nil {
		t.Format = models.Format(*r.Format)
	}
	if r.Description != nil {
		t.Description = *r.Description
	}
	return t
}

func (r *TrainingRequest) toUpdate(id uuid.UUID) *models.TrainingUpdate {
	u := &models.TrainingUpdate{
		ID:          id,
		Title:       r.Title,
		Duration:    r.Duration,
		Description: r.Description,
		Locations:   r.Locations,
	}
	if r.Category != nil {
		c := models.Category(*r.Category)
		u.Category = &c
	}
	if r.Format != nil {
		f := models.Format(*r.Format)
		u.Format = &f
	}
	return u
}

// OpportunityRequest posts a new opportunity.
type OpportunityRequest struct {
	TrainingID           string    `json:"trainingId"`
	ClientOrganizationID string    `json:"clientOrganizationId,omitempty"`
	StartDate            time.Time `json:"startDate"`
	EndDate              time.Time `json:"endDate"`
	Location             string    `json:"location"`
	Format               string    `json:"format,omitempty"`
	Attendees            int       `json:"attendees"`
	BudgetMin            float64   `json:"budgetMin"`
	BudgetMax            float64   `json:"budgetMax"`
}

func (r *OpportunityRequest) toModel() (*models.Opportunity, error) {
	trainingID, err := parseID("training ID", r.TrainingID)
	if err != nil {
		return nil, err
	}
	return &models.Opportunity{
		TrainingID:           trainingID,
		ClientOrganizationID: r.ClientOrganizationID,
		StartDate:            r.StartDate,
		EndDate:              r.EndDate,
		Location:             r.Location,
		Format:               models.Format(r.Format),
		Attendees:            r.Attendees,
		BudgetMin:            r.BudgetMin,
		BudgetMax:            r.BudgetMax,
	}, nil
}

// VendorRequest registers a vendor account.
type VendorRequest struct {
	Name            string   `json:"name"`
	ContactName     string   `json:"contactName"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	Location        string   `json:"location"`
	Website         string   `json:"website,omitempty"`
	Specializations []string `json:"specializations"`
}

func (r *VendorRequest) toModel() *models.Vendor {
	v := &models.Vendor{
		Name:        r.Name,
		ContactName: r.ContactName,
		Email:       r.Email,
		Phone:       r.Phone,
		Location:    r.Location,
		Website:     r.Website,
	}
	for _, s := range r.Specializations {
		v.Specializations = append(v.Specializations, models.Category(s))
	}
	return v
}
