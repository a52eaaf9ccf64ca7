// Package models contains the persistence rows of the training store,
// configured to work using GORM as the ORM. Collections are stored as JSON
// text columns so the same rows work on PostgreSQL and SQLite.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Training is the row of the trainings table.
type Training struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title       string    `gorm:"size:200;not null"`
	Category    string    `gorm:"size:32;not null"`
	Duration    string    `gorm:"size:64"`
	Format      string    `gorm:"size:16;not null"`
	Description string    `gorm:"size:3000"`
	Locations   []string  `gorm:"type:text;serializer:json"`
	Status      string    `gorm:"size:16;not null"`
	Version     int       `gorm:"not null;default:1"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Training) TableName() string { return "trainings" }

// Opportunity is the row of the opportunities table.
type Opportunity struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TrainingID           uuid.UUID  `gorm:"type:uuid;index;not null"`
	Title                string     `gorm:"size:200;not null"`
	Category             string     `gorm:"size:32;not null"`
	Description          string     `gorm:"size:3000"`
	ClientOrganizationID string     `gorm:"size:64"`
	StartDate            time.Time  `gorm:"not null"`
	EndDate              time.Time  `gorm:"not null"`
	Location             string     `gorm:"size:200;not null"`
	Format               string     `gorm:"size:16;not null"`
	Attendees            int        `gorm:"check:attendees > 0"`
	BudgetMin            float64    `gorm:"check:budget_min >= 0"`
	BudgetMax            float64    `gorm:"check:budget_max >= 0"`
	Status               string     `gorm:"size:16;not null"`
	AwardedProposalID    *uuid.UUID `gorm:"type:uuid"`
	Version              int        `gorm:"not null;default:1"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (Opportunity) TableName() string { return "opportunities" }

// Trainer is the JSON shape of a proposal trainer.
type Trainer struct {
	Name      string `json:"name"`
	ResumeRef string `json:"resumeRef,omitempty"`
}

// Proposal is the row of the proposals table.
type Proposal struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	OpportunityID uuid.UUID `gorm:"type:uuid;index;not null"`
	VendorID      uuid.UUID `gorm:"type:uuid;index;not null"`
	ContentFee    float64   `gorm:"check:content_fee >= 0"`
	TrainingFee   float64   `gorm:"check:training_fee >= 0"`
	TravelFee     float64   `gorm:"check:travel_fee >= 0"`
	TotalFee      float64
	Trainers      []Trainer `gorm:"type:text;serializer:json"`
	Notes         string    `gorm:"size:3000"`
	SubmittedAt   time.Time `gorm:"not null"`
	Status        string    `gorm:"size:16;not null"`
	DecidedAt     *time.Time
	Version       int `gorm:"not null;default:1"`
}

func (Proposal) TableName() string { return "proposals" }

// Material is the JSON shape of a session material reference.
type Material struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Ref     string    `json:"ref"`
	AddedAt time.Time `json:"addedAt"`
}

// Session is the row of the sessions table.
type Session struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TrainingID           uuid.UUID  `gorm:"type:uuid;index;not null"`
	OpportunityID        uuid.UUID  `gorm:"type:uuid;index;not null"`
	ProposalID           *uuid.UUID `gorm:"type:uuid"`
	VendorID             *uuid.UUID `gorm:"type:uuid;index"`
	Title                string     `gorm:"size:200;not null"`
	TrainerName          string     `gorm:"size:200"`
	StartsAt             time.Time  `gorm:"not null"`
	EndsAt               time.Time  `gorm:"not null"`
	Location             string     `gorm:"size:200;not null"`
	Format               string     `gorm:"size:16;not null"`
	ClientOrganizationID string     `gorm:"size:64"`
	EmployeeIDs          []string   `gorm:"type:text;serializer:json"`
	Materials            []Material `gorm:"type:text;serializer:json"`
	Status               string     `gorm:"size:16;not null"`
	Rating               *float64
	Version              int `gorm:"not null;default:1"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (Session) TableName() string { return "sessions" }

// Vendor is the row of the vendors table.
type Vendor struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name              string    `gorm:"size:200;not null"`
	ContactName       string    `gorm:"size:200"`
	Email             string    `gorm:"size:200"`
	Phone             string    `gorm:"size:64"`
	Location          string    `gorm:"size:200"`
	Website           string    `gorm:"size:200"`
	Specializations   []string  `gorm:"type:text;serializer:json"`
	Status            string    `gorm:"size:16;not null"`
	Rating            float64
	RatedSessions     int
	CompletedSessions int
	UpcomingSessions  int
	RegistrationDate  time.Time `gorm:"not null"`
	Version           int       `gorm:"not null;default:1"`
}

func (Vendor) TableName() string { return "vendors" }

// All lists every row type, in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{&Training{}, &Vendor{}, &Opportunity{}, &Proposal{}, &Session{}}
}
