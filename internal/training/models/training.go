// Package models defines the core domain models of the EHS training lifecycle:
// catalog trainings, opportunities posted for vendor bids, proposals, scheduled
// sessions and vendors, together with the status enumerations and the transition
// tables that govern them.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category classifies a training course.
type Category string

const (
	CategorySafety      Category = "Safety"
	CategoryHealth      Category = "Health"
	CategoryEnvironment Category = "Environment"
	CategoryCompliance  Category = "Compliance"
	CategoryOther       Category = "Other"
)

// Categories lists every known category in display order.
var Categories = []Category{CategorySafety, CategoryHealth, CategoryEnvironment, CategoryCompliance, CategoryOther}

// ParseCategory resolves a category name case-insensitively.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, true
		}
	}
	return "", false
}

// Format is the delivery format of a training.
type Format string

const (
	FormatInPerson Format = "InPerson"
	FormatOnline   Format = "Online"
	FormatHybrid   Format = "Hybrid"
)

// ParseFormat resolves a format name. "In-Person" and "in person" are accepted
// as spellings of InPerson.
func ParseFormat(s string) (Format, bool) {
	return parseFolded(s, FormatInPerson, FormatOnline, FormatHybrid)
}

// TrainingStatus reports whether a catalog training is referenced by an active session.
type TrainingStatus string

const (
	// TrainingAvailable trainings may be edited and deleted.
	TrainingAvailable TrainingStatus = "Available"
	// TrainingScheduled trainings are referenced by a scheduled or running session
	// and are immutable until that session ends.
	TrainingScheduled TrainingStatus = "Scheduled"
)

// ParseTrainingStatus resolves a catalog status name.
func ParseTrainingStatus(s string) (TrainingStatus, bool) {
	return parseFolded(s, TrainingAvailable, TrainingScheduled)
}

// parseFolded matches s against values ignoring case, blanks, dashes and underscores.
func parseFolded[T ~string](s string, values ...T) (T, bool) {
	normalized := strings.NewReplacer("-", "", " ", "", "_", "").Replace(strings.TrimSpace(s))
	for _, v := range values {
		if strings.EqualFold(string(v), normalized) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Training is a catalog definition of a trainable course.
type Training struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	Category    Category       `json:"category"`
	Duration    string         `json:"duration"`
	Format      Format         `json:"format"`
	Description string         `json:"description"`
	Locations   []string       `json:"locations"`
	Status      TrainingStatus `json:"status"`
	Version     int            `json:"version"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// TrainingUpdate represents the editable fields of a Training.
// Pointer types are used to allow partial updates.
type TrainingUpdate struct {
	ID          uuid.UUID
	Title       *string
	Category    *Category
	Duration    *string
	Format      *Format
	Description *string
	Locations   []string
}

// Apply copies the set fields of the update onto t.
func (u *TrainingUpdate) Apply(t *Training) {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Category != nil {
		t.Category = *u.Category
	}
	if u.Duration != nil {
		t.Duration = *u.Duration
	}
	if u.Format != nil {
		t.Format = *u.Format
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Locations != nil {
		t.Locations = u.Locations
	}
}
