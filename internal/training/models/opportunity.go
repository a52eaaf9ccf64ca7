package models

import (
	"time"

	"github.com/google/uuid"
)

// OpportunityStatus is the bidding state of an Opportunity.
type OpportunityStatus string

const (
	OpportunityOpen    OpportunityStatus = "Open"
	OpportunityClosed  OpportunityStatus = "Closed"
	OpportunityAwarded OpportunityStatus = "Awarded"
)

// ParseOpportunityStatus resolves an opportunity status name.
func ParseOpportunityStatus(s string) (OpportunityStatus, bool) {
	return parseFolded(s, OpportunityOpen, OpportunityClosed, OpportunityAwarded)
}

// Opportunity is a posted request for vendor bids on a specific training need.
// Title, Category and Description are copied from the training when the
// opportunity is posted so that listings stay stable if the catalog changes.
type Opportunity struct {
	ID                   uuid.UUID         `json:"id"`
	TrainingID           uuid.UUID         `json:"trainingId"`
	Title                string            `json:"title"`
	Category             Category          `json:"category"`
	Description          string            `json:"description"`
	ClientOrganizationID string            `json:"clientOrganizationId,omitempty"`
	StartDate            time.Time         `json:"startDate"`
	EndDate              time.Time         `json:"endDate"`
	Location             string            `json:"location"`
	Format               Format            `json:"format"`
	Attendees            int               `json:"attendees"`
	BudgetMin            float64           `json:"budgetMin"`
	BudgetMax            float64           `json:"budgetMax"`
	Status               OpportunityStatus `json:"status"`
	AwardedProposalID    *uuid.UUID        `json:"awardedProposalId,omitempty"`
	Version              int               `json:"version"`
	CreatedAt            time.Time         `json:"createdAt"`
	UpdatedAt            time.Time         `json:"updatedAt"`
}
