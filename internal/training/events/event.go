// Package events publishes training lifecycle events to Kafka and consumes
// them back for the audit trail.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	OpportunityCreated   EventType = "opportunity_created"
	OpportunityClosed    EventType = "opportunity_closed"
	ProposalSubmitted    EventType = "proposal_submitted"
	ProposalAccepted     EventType = "proposal_accepted"
	ProposalRejected     EventType = "proposal_rejected"
	SessionScheduled     EventType = "session_scheduled"
	SessionStatusChanged EventType = "session_status_changed"
	VendorRegistered     EventType = "vendor_registered"
	VendorApproved       EventType = "vendor_approved"
	VendorRejected       EventType = "vendor_rejected"
)

// Event is the wire form of a lifecycle transition. EntityID names the entity
// whose state changed; OpportunityID and VendorID are set when known.
type Event struct {
	Type          EventType  `json:"type"`
	EntityID      uuid.UUID  `json:"entity_id"`
	OpportunityID *uuid.UUID `json:"opportunity_id,omitempty"`
	VendorID      *uuid.UUID `json:"vendor_id,omitempty"`
	Status        string     `json:"status"`
	At            time.Time  `json:"at"`
}
