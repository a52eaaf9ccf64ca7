package db

import (
	dbmodels "github.com/gartstein/ehs/internal/training/db/models"
	"github.com/gartstein/ehs/internal/training/models"
)

func trainingToRow(t *models.Training) *dbmodels.Training {
	return &dbmodels.Training{
		ID:          t.ID,
		Title:       t.Title,
		Category:    string(t.Category),
		Duration:    t.Duration,
		Format:      string(t.Format),
		Description: t.Description,
		Locations:   t.Locations,
		Status:      string(t.Status),
		Version:     t.Version,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func trainingFromRow(r *dbmodels.Training) *models.Training {
	return &models.Training{
		ID:          r.ID,
		Title:       r.Title,
		Category:    models.Category(r.Category),
		Duration:    r.Duration,
		Format:      models.Format(r.Format),
		Description: r.Description,
		Locations:   r.Locations,
		Status:      models.TrainingStatus(r.Status),
		Version:     r.Version,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func opportunityToRow(o *models.Opportunity) *dbmodels.Opportunity {
	return &dbmodels.Opportunity{
		ID:                   o.ID,
		TrainingID:           o.TrainingID,
		Title:                o.Title,
		Category:             string(o.Category),
		Description:          o.Description,
		ClientOrganizationID: o.ClientOrganizationID,
		StartDate:            o.StartDate,
		EndDate:              o.EndDate,
		Location:             o.Location,
		Format:               string(o.Format),
		Attendees:            o.Attendees,
		BudgetMin:            o.BudgetMin,
		BudgetMax:            o.BudgetMax,
		Status:               string(o.Status),
		AwardedProposalID:    o.AwardedProposalID,
		Version:              o.Version,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}
}

func opportunityFromRow(r *dbmodels.Opportunity) *models.Opportunity {
	return &models.Opportunity{
		ID:                   r.ID,
		TrainingID:           r.TrainingID,
		Title:                r.Title,
		Category:             models.Category(r.Category),
		Description:          r.Description,
		ClientOrganizationID: r.ClientOrganizationID,
		StartDate:            r.StartDate,
		EndDate:              r.EndDate,
		Location:             r.Location,
		Format:               models.Format(r.Format),
		Attendees:            r.Attendees,
		BudgetMin:            r.BudgetMin,
		BudgetMax:            r.BudgetMax,
		Status:               models.OpportunityStatus(r.Status),
		AwardedProposalID:    r.AwardedProposalID,
		Version:              r.Version,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}

func proposalToRow(p *models.Proposal) *dbmodels.Proposal {
	trainers := make([]dbmodels.Trainer, len(p.Trainers))
	for i, t := range p.Trainers {
		trainers[i] = dbmodels.Trainer{Name: t.Name, ResumeRef: t.ResumeRef}
	}
	return &dbmodels.Proposal{
		ID:            p.ID,
		OpportunityID: p.OpportunityID,
		VendorID:      p.VendorID,
		ContentFee:    p.Fees.ContentFee,
		TrainingFee:   p.Fees.TrainingFee,
		TravelFee:     p.Fees.TravelFee,
		TotalFee:      p.TotalFee,
		Trainers:      trainers,
		Notes:         p.Notes,
		SubmittedAt:   p.SubmittedAt,
		Status:        string(p.Status),
		DecidedAt:     p.DecidedAt,
		Version:       p.Version,
	}
}

func proposalFromRow(r *dbmodels.Proposal) *models.Proposal {
	trainers := make([]models.Trainer, len(r.Trainers))
	for i, t := range r.Trainers {
		trainers[i] = models.Trainer{Name: t.Name, ResumeRef: t.ResumeRef}
	}
	return &models.Proposal{
		ID:            r.ID,
		OpportunityID: r.OpportunityID,
		VendorID:      r.VendorID,
		Fees: models.Fees{
			ContentFee:  r.ContentFee,
			TrainingFee: r.TrainingFee,
			TravelFee:   r.TravelFee,
		},
		TotalFee:    r.TotalFee,
		Trainers:    trainers,
		Notes:       r.Notes,
		SubmittedAt: r.SubmittedAt,
		Status:      models.ProposalStatus(r.Status),
		DecidedAt:   r.DecidedAt,
		Version:     r.Version,
	}
}

func sessionToRow(s *models.Session) *dbmodels.Session {
	materials := make([]dbmodels.Material, len(s.Materials))
	for i, m := range s.Materials {
		materials[i] = dbmodels.Material{ID: m.ID, Name: m.Name, Ref: m.Ref, AddedAt: m.AddedAt}
	}
	return &dbmodels.Session{
		ID:                   s.ID,
		TrainingID:           s.TrainingID,
		OpportunityID:        s.OpportunityID,
		ProposalID:           s.ProposalID,
		VendorID:             s.VendorID,
		Title:                s.Title,
		TrainerName:          s.TrainerName,
		StartsAt:             s.StartsAt,
		EndsAt:               s.EndsAt,
		Location:             s.Location,
		Format:               string(s.Format),
		ClientOrganizationID: s.ClientOrganizationID,
		EmployeeIDs:          s.EmployeeIDs,
		Materials:            materials,
		Status:               string(s.Status),
		Rating:               s.Rating,
		Version:              s.Version,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
}

func sessionFromRow(r *dbmodels.Session) *models.Session {
	materials := make([]models.Material, len(r.Materials))
	for i, m := range r.Materials {
		materials[i] = models.Material{ID: m.ID, Name: m.Name, Ref: m.Ref, AddedAt: m.AddedAt}
	}
	return &models.Session{
		ID:                   r.ID,
		TrainingID:           r.TrainingID,
		OpportunityID:        r.OpportunityID,
		ProposalID:           r.ProposalID,
		VendorID:             r.VendorID,
		Title:                r.Title,
		TrainerName:          r.TrainerName,
		StartsAt:             r.StartsAt,
		EndsAt:               r.EndsAt,
		Location:             r.Location,
		Format:               models.Format(r.Format),
		ClientOrganizationID: r.ClientOrganizationID,
		EmployeeIDs:          r.EmployeeIDs,
		Materials:            materials,
		Status:               models.SessionStatus(r.Status),
		Rating:               r.Rating,
		Version:              r.Version,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}

func vendorToRow(v *models.Vendor) *dbmodels.Vendor {
	specs := make([]string, len(v.Specializations))
	for i, c := range v.Specializations {
		specs[i] = string(c)
	}
	return &dbmodels.Vendor{
		ID:                v.ID,
		Name:              v.Name,
		ContactName:       v.ContactName,
		Email:             v.Email,
		Phone:             v.Phone,
		Location:          v.Location,
		Website:           v.Website,
		Specializations:   specs,
		Status:            string(v.Status),
		Rating:            v.Rating,
		RatedSessions:     v.RatedSessions,
		CompletedSessions: v.CompletedSessions,
		UpcomingSessions:  v.UpcomingSessions,
		RegistrationDate:  v.RegistrationDate,
		Version:           v.Version,
	}
}

func vendorFromRow(r *dbmodels.Vendor) *models.Vendor {
	specs := make([]models.Category, len(r.Specializations))
	for i, c := range r.Specializations {
		specs[i] = models.Category(c)
	}
	return &models.Vendor{
		ID:                r.ID,
		Name:              r.Name,
		ContactName:       r.ContactName,
		Email:             r.Email,
		Phone:             r.Phone,
		Location:          r.Location,
		Website:           r.Website,
		Specializations:   specs,
		Status:            models.VendorStatus(r.Status),
		Rating:            r.Rating,
		RatedSessions:     r.RatedSessions,
		CompletedSessions: r.CompletedSessions,
		UpcomingSessions:  r.UpcomingSessions,
		RegistrationDate:  r.RegistrationDate,
		Version:           r.Version,
	}
}
