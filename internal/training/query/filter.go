// Package query derives filtered and sorted views of training entities for
// list and calendar presentations. Every function is a pure projection: input
// slices are never modified and results keep input order unless a function
// explicitly sorts by date.
package query

import (
	"strings"

	"github.com/gartstein/ehs/internal/training/models"
)

// All is the filter value that matches everything, as is the empty string.
const All = "all"

func matchesAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, All)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func equalFilter(filter, value string) bool {
	return matchesAll(filter) || strings.EqualFold(strings.TrimSpace(filter), value)
}

// TrainingFilter selects catalog trainings.
type TrainingFilter struct {
	SearchText string
	Category   string
	Format     string
	Status     string
}

// FilterTrainings matches SearchText against title and description
// case-insensitively and compares category, format and status for equality.
func FilterTrainings(trainings []models.Training, f TrainingFilter) []models.Training {
	format := normalizeFormat(f.Format)
	out := make([]models.Training, 0, len(trainings))
	for _, t := range trainings {
		if f.SearchText != "" && !containsFold(t.Title, f.SearchText) && !containsFold(t.Description, f.SearchText) {
			continue
		}
		if !equalFilter(f.Category, string(t.Category)) ||
			!equalFilter(format, string(t.Format)) ||
			!equalFilter(f.Status, string(t.Status)) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// OpportunityFilter selects opportunities on the vendor bidding board.
type OpportunityFilter struct {
	SearchText string
	Category   string
	Format     string
	Status     string
}

// FilterOpportunities matches SearchText against title, description and location.
func FilterOpportunities(opportunities []models.Opportunity, f OpportunityFilter) []models.Opportunity {
	format := normalizeFormat(f.Format)
	out := make([]models.Opportunity, 0, len(opportunities))
	for _, o := range opportunities {
		if f.SearchText != "" &&
			!containsFold(o.Title, f.SearchText) &&
			!containsFold(o.Description, f.SearchText) &&
			!containsFold(o.Location, f.SearchText) {
			continue
		}
		if !equalFilter(f.Category, string(o.Category)) ||
			!equalFilter(format, string(o.Format)) ||
			!equalFilter(f.Status, string(o.Status)) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// VendorFilter selects vendors in the vendor directory.
type VendorFilter struct {
	SearchText     string
	Status         string
	Specialization string
}

// FilterVendors matches SearchText against name and location; Specialization
// matches when the vendor lists that category.
func FilterVendors(vendors []models.Vendor, f VendorFilter) []models.Vendor {
	out := make([]models.Vendor, 0, len(vendors))
	for _, v := range vendors {
		if f.SearchText != "" && !containsFold(v.Name, f.SearchText) && !containsFold(v.Location, f.SearchText) {
			continue
		}
		if !equalFilter(f.Status, string(v.Status)) {
			continue
		}
		if !matchesAll(f.Specialization) {
			c, ok := models.ParseCategory(f.Specialization)
			if !ok || !v.Specializes(c) {
				continue
			}
		}
		out = append(out, v)
	}
	return out
}

// SessionFilter selects sessions, e.g. on an employee's assigned trainings page.
type SessionFilter struct {
	SearchText string
	Status     string
	Format     string
	// EmployeeID limits the result to sessions the employee is assigned to.
	EmployeeID string
}

func FilterSessions(sessions []models.Session, f SessionFilter) []models.Session {
	format := normalizeFormat(f.Format)
	status := f.Status
	if s, ok := models.ParseSessionStatus(status); ok {
		status = string(s)
	}
	out := make([]models.Session, 0, len(sessions))
	for _, s := range sessions {
		if f.SearchText != "" && !containsFold(s.Title, f.SearchText) && !containsFold(s.Location, f.SearchText) {
			continue
		}
		if !equalFilter(status, string(s.Status)) || !equalFilter(format, string(s.Format)) {
			continue
		}
		if f.EmployeeID != "" && !containsString(s.EmployeeIDs, f.EmployeeID) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// normalizeFormat maps spellings such as "In-Person" onto the canonical value.
func normalizeFormat(f string) string {
	if parsed, ok := models.ParseFormat(f); ok {
		return string(parsed)
	}
	return f
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
