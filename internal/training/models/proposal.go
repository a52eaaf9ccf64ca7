package models

import (
	"time"

	"github.com/google/uuid"
)

// ProposalStatus is the decision state of a Proposal.
type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "Pending"
	ProposalAccepted ProposalStatus = "Accepted"
	ProposalRejected ProposalStatus = "Rejected"
)

// ParseProposalStatus resolves a proposal status name.
func ParseProposalStatus(s string) (ProposalStatus, bool) {
	return parseFolded(s, ProposalPending, ProposalAccepted, ProposalRejected)
}

// IsDecision reports whether s is a valid outcome for a pending proposal.
func (s ProposalStatus) IsDecision() bool {
	return s == ProposalAccepted || s == ProposalRejected
}

// CanTransitionTo reports whether a proposal in status s may move to next.
// Decisions are final.
func (s ProposalStatus) CanTransitionTo(next ProposalStatus) bool {
	return s == ProposalPending && next.IsDecision()
}

// Fees is the price breakdown of a proposal.
type Fees struct {
	ContentFee  float64 `json:"contentFee"`
	TrainingFee float64 `json:"trainingFee"`
	TravelFee   float64 `json:"travelFee"`
}

// Total returns the sum of all fee components.
func (f Fees) Total() float64 {
	return f.ContentFee + f.TrainingFee + f.TravelFee
}

// Trainer is a person the vendor intends to staff the training with.
type Trainer struct {
	Name      string `json:"name"`
	ResumeRef string `json:"resumeRef,omitempty"`
}

// Proposal is a vendor's priced response to an Opportunity.
type Proposal struct {
	ID            uuid.UUID      `json:"id"`
	OpportunityID uuid.UUID      `json:"opportunityId"`
	VendorID      uuid.UUID      `json:"vendorId"`
	Fees          Fees           `json:"fees"`
	TotalFee      float64        `json:"totalFee"`
	Trainers      []Trainer      `json:"trainers"`
	Notes         string         `json:"notes,omitempty"`
	SubmittedAt   time.Time      `json:"submittedAt"`
	Status        ProposalStatus `json:"status"`
	DecidedAt     *time.Time     `json:"decidedAt,omitempty"`
	Version       int            `json:"version"`
}

// IsActive reports whether the proposal still competes for, or holds, the award.
func (p *Proposal) IsActive() bool {
	return p.Status == ProposalPending || p.Status == ProposalAccepted
}
