package models

import (
	"time"

	"github.com/google/uuid"
)

// VendorStatus is the review state of a vendor account.
type VendorStatus string

const (
	VendorPending  VendorStatus = "Pending"
	VendorApproved VendorStatus = "Approved"
	VendorRejected VendorStatus = "Rejected"
)

// ParseVendorStatus resolves a vendor status name.
func ParseVendorStatus(s string) (VendorStatus, bool) {
	return parseFolded(s, VendorPending, VendorApproved, VendorRejected)
}

// Vendor is a training service-provider account.
type Vendor struct {
	ID                uuid.UUID    `json:"id"`
	Name              string       `json:"name"`
	ContactName       string       `json:"contactName"`
	Email             string       `json:"email"`
	Phone             string       `json:"phone"`
	Location          string       `json:"location"`
	Website           string       `json:"website,omitempty"`
	Specializations   []Category   `json:"specializations"`
	Status            VendorStatus `json:"status"`
	Rating            float64      `json:"rating"`
	RatedSessions     int          `json:"ratedSessions"`
	CompletedSessions int          `json:"completedSessions"`
	UpcomingSessions  int          `json:"upcomingSessions"`
	RegistrationDate  time.Time    `json:"registrationDate"`
	Version           int          `json:"version"`
}

// Specializes reports whether the vendor lists category c.
func (v *Vendor) Specializes(c Category) bool {
	for _, s := range v.Specializations {
		if s == c {
			return true
		}
	}
	return false
}

// RecordCompletion counts a completed session and, when a rating is given,
// folds it into the running average.
func (v *Vendor) RecordCompletion(rating *float64) {
	v.CompletedSessions++
	if v.UpcomingSessions > 0 {
		v.UpcomingSessions--
	}
	if rating == nil {
		return
	}
	v.Rating = (v.Rating*float64(v.RatedSessions) + *rating) / float64(v.RatedSessions+1)
	v.RatedSessions++
}
