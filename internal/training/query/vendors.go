package query

import "github.com/gartstein/ehs/internal/training/models"

// VendorSummary aggregates the vendor directory for the admin dashboard.
type VendorSummary struct {
	Total             int                     `json:"total"`
	Active            int                     `json:"active"`
	Pending           int                     `json:"pending"`
	ActivePercent     float64                 `json:"activePercent"`
	AverageRating     float64                 `json:"averageRating"`
	RatedVendors      int                     `json:"ratedVendors"`
	CompletedSessions int                     `json:"completedSessions"`
	BySpecialization  map[models.Category]int `json:"bySpecialization"`
}

// SummarizeVendors counts approved vendors and averages the rating over the
// vendors that have one.
func SummarizeVendors(vendors []models.Vendor) VendorSummary {
	summary := VendorSummary{
		Total:            len(vendors),
		BySpecialization: make(map[models.Category]int),
	}
	var ratingSum float64
	for _, v := range vendors {
		switch v.Status {
		case models.VendorApproved:
			summary.Active++
		case models.VendorPending:
			summary.Pending++
		}
		if v.Rating > 0 {
			ratingSum += v.Rating
			summary.RatedVendors++
		}
		summary.CompletedSessions += v.CompletedSessions
		for _, c := range v.Specializations {
			summary.BySpecialization[c]++
		}
	}
	if summary.Total > 0 {
		summary.ActivePercent = float64(summary.Active) / float64(summary.Total) * 100
	}
	if summary.RatedVendors > 0 {
		summary.AverageRating = ratingSum / float64(summary.RatedVendors)
	}
	return summary
}
