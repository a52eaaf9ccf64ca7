package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the delivery state of a scheduled session.
type SessionStatus string

const (
	SessionScheduled  SessionStatus = "Scheduled"
	SessionInProgress SessionStatus = "InProgress"
	SessionCompleted  SessionStatus = "Completed"
	SessionCancelled  SessionStatus = "Cancelled"
)

var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionScheduled:  {SessionInProgress, SessionCancelled},
	SessionInProgress: {SessionCompleted},
}

// ParseSessionStatus resolves a status name. "in-progress" is accepted for InProgress.
func ParseSessionStatus(s string) (SessionStatus, bool) {
	return parseFolded(s, SessionScheduled, SessionInProgress, SessionCompleted, SessionCancelled)
}

// CanTransitionTo reports whether a session in status s may move to next.
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	for _, allowed := range sessionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsActive reports whether a session in status s still holds its training.
func (s SessionStatus) IsActive() bool {
	return s == SessionScheduled || s == SessionInProgress
}

// Material is a reference to a training document attached to a session.
type Material struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Ref     string    `json:"ref"`
	AddedAt time.Time `json:"addedAt"`
}

// Session is a confirmed, dated instance of a training.
type Session struct {
	ID                   uuid.UUID     `json:"id"`
	TrainingID           uuid.UUID     `json:"trainingId"`
	OpportunityID        uuid.UUID     `json:"opportunityId"`
	ProposalID           *uuid.UUID    `json:"proposalId,omitempty"`
	VendorID             *uuid.UUID    `json:"vendorId,omitempty"`
	Title                string        `json:"title"`
	TrainerName          string        `json:"trainerName"`
	StartsAt             time.Time     `json:"startsAt"`
	EndsAt               time.Time     `json:"endsAt"`
	Location             string        `json:"location"`
	Format               Format        `json:"format"`
	ClientOrganizationID string        `json:"clientOrganizationId,omitempty"`
	EmployeeIDs          []string      `json:"employeeIds,omitempty"`
	Materials            []Material    `json:"materials"`
	Status               SessionStatus `json:"status"`
	Rating               *float64      `json:"rating,omitempty"`
	Version              int           `json:"version"`
	CreatedAt            time.Time     `json:"createdAt"`
	UpdatedAt            time.Time     `json:"updatedAt"`
}

// SessionSchedule carries the inputs of the "Schedule Training" step.
// A zero EndsAt means the session ends on the day it starts.
type SessionSchedule struct {
	StartsAt    time.Time
	EndsAt      time.Time
	Format      Format
	Location    string
	EmployeeIDs []string
}
