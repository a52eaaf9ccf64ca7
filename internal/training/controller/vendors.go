package controller

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/gartstein/ehs/internal/pkg/utils"
	"github.com/gartstein/ehs/internal/training/db"
	e "github.com/gartstein/ehs/internal/training/errors"
	"github.com/gartstein/ehs/internal/training/events"
	"github.com/gartstein/ehs/internal/training/models"
	"github.com/gartstein/ehs/internal/training/query"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func validateVendor(v *models.Vendor) error {
	if strings.TrimSpace(v.Name) == "" {
		return invalid("vendor name is required")
	}
	if _, err := mail.ParseAddress(v.Email); err != nil {
		return invalid("invalid email %q", v.Email)
	}
	if len(v.Specializations) == 0 {
		return invalid("at least one specialization is required")
	}
	for i, c := range v.Specializations {
		parsed, ok := models.ParseCategory(string(c))
		if !ok {
			return invalid("unknown specialization %q", c)
		}
		v.Specializations[i] = parsed
	}
	return nil
}

// RegisterVendor creates a vendor account awaiting review. A vendor actor
// registers its own account, so the account id is the actor id.
func (s *LifecycleService) RegisterVendor(ctx context.Context, v *models.Vendor) (*models.Vendor, error) {
	const op = "register_vendor"
	actor, err := s.authorize(ctx, models.CapRegisterVendor)
	if err != nil {
		return nil, s.fail(op, err)
	}
	if err := validateVendor(v); err != nil {
		return nil, s.fail(op, err)
	}
	v.ID = uuid.New()
	if actor.IsVendor() {
		v.ID = actor.ID
	}
	v.Status = models.VendorPending
	v.Rating, v.RatedSessions = 0, 0
	v.CompletedSessions, v.UpcomingSessions = 0, 0
	v.RegistrationDate = s.now()

	err = s.transact(ctx, func(tx *db.Repository) error {
		existing, err := tx.GetVendor(ctx, v.ID)
		switch {
		case err == nil:
			return invalid("vendor already registered (%s)", existing.Status)
		case !errors.Is(err, e.ErrNotFound):
			return err
		}
		return tx.CreateVendor(ctx, v)
	})
	if err != nil {
		return nil, s.fail(op, err)
	}
	s.metrics.Transition("vendor", string(v.Status))
	s.logger.Info("Vendor registered", zap.String("vendor_id", v.ID.String()), zap.String("name", v.Name))
	s.emit(events.Event{
		Type:     events.VendorRegistered,
		EntityID: v.ID,
		VendorID: utils.Ptr(v.ID),
		Status:   string(v.Status),
	})
	return v, nil
}

// ApproveVendor admits a pending vendor to bidding.
func (s *LifecycleService) ApproveVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	return s.reviewVendor(ctx, "approve_vendor", id, models.VendorApproved)
}

// RejectVendor declines a pending vendor.
func (s *LifecycleService) RejectVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	return s.reviewVendor(ctx, "reject_vendor", id, models.VendorRejected)
}

// reviewVendor decides a pending vendor. A vendor that was already decided is
// returned unchanged together with ErrAlreadyDecided.
func (s *LifecycleService) reviewVendor(ctx context.Context, op string, id uuid.UUID, status models.VendorStatus) (*models.Vendor, error) {
	if _, err := s.authorize(ctx, models.CapReviewVendor); err != nil {
		return nil, s.fail(op, err)
	}
	var vendor *models.Vendor
	err := s.transact(ctx, func(tx *db.Repository) error {
		v, err := tx.GetVendor(ctx, id)
		if err != nil {
			return wrapGet("vendor", err)
		}
		vendor = v
		if v.Status != models.VendorPending {
			return fmt.Errorf("%w: vendor is %s", e.ErrAlreadyDecided, v.Status)
		}
		v.Status = status
		return tx.UpdateVendor(ctx, v)
	})
	if err != nil {
		return vendor, s.fail(op, err)
	}

	s.metrics.Transition("vendor", string(vendor.Status))
	s.logger.Info("Vendor reviewed", zap.String("vendor_id", id.String()), zap.String("status", string(vendor.Status)))
	evType := events.VendorApproved
	if status == models.VendorRejected {
		evType = events.VendorRejected
	}
	s.emit(events.Event{
		Type:     evType,
		EntityID: vendor.ID,
		VendorID: utils.Ptr(vendor.ID),
		Status:   string(vendor.Status),
	})
	return vendor, nil
}

// GetVendor retrieves a vendor account. Vendors may read their own account.
func (s *LifecycleService) GetVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	actor, ok := models.ActorFromContext(ctx)
	if !ok || !(actor.IsVendor() && actor.ID == id) {
		if _, err := s.authorize(ctx, models.CapViewVendors); err != nil {
			return nil, s.fail("get_vendor", err)
		}
	}
	v, err := s.repo.GetVendor(ctx, id)
	if err != nil {
		return nil, s.fail("get_vendor", wrapGet("vendor", err))
	}
	return v, nil
}

// ListVendors returns the vendor directory narrowed by f.
func (s *LifecycleService) ListVendors(ctx context.Context, f query.VendorFilter) ([]models.Vendor, error) {
	if _, err := s.authorize(ctx, models.CapViewVendors); err != nil {
		return nil, s.fail("list_vendors", err)
	}
	all, err := s.repo.ListVendors(ctx)
	if err != nil {
		return nil, s.fail("list_vendors", fmt.Errorf("failed to list vendors: %w", err))
	}
	return query.FilterVendors(all, f), nil
}

// VendorSummary aggregates the vendor directory.
func (s *LifecycleService) VendorSummary(ctx context.Context) (*query.VendorSummary, error) {
	if _, err := s.authorize(ctx, models.CapViewVendors); err != nil {
		return nil, s.fail("vendor_summary", err)
	}
	all, err := s.repo.ListVendors(ctx)
	if err != nil {
		return nil, s.fail("vendor_summary", fmt.Errorf("failed to list vendors: %w", err))
	}
	summary := query.SummarizeVendors(all)
	return &summary, nil
}
