package events

import (
	"context"

	"go.uber.org/zap"
)

// AuditHandler returns a consumer handler that writes every lifecycle event to
// the audit log and reports it to observe, which may be nil.
func AuditHandler(logger *zap.Logger, observe func(EventType)) func(context.Context, Event) error {
	logger = logger.Named("audit")
	return func(_ context.Context, event Event) error {
		fields := []zap.Field{
			zap.String("event_type", string(event.Type)),
			zap.String("entity_id", event.EntityID.String()),
			zap.String("status", event.Status),
			zap.Time("at", event.At),
		}
		if event.OpportunityID != nil {
			fields = append(fields, zap.String("opportunity_id", event.OpportunityID.String()))
		}
		if event.VendorID != nil {
			fields = append(fields, zap.String("vendor_id", event.VendorID.String()))
		}
		logger.Info("lifecycle transition", fields...)
		if observe != nil {
			observe(event.Type)
		}
		return nil
	}
}
