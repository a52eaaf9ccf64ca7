package models

import (
	"context"

	"github.com/google/uuid"
)

// Role is the closed set of dashboard user types.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleEnterprise Role = "enterprise"
	RoleVendor     Role = "vendor"
	RoleEmployee   Role = "employee"
	RolePartner    Role = "partner"
	RoleInvestor   Role = "investor"
	RoleSupplier   Role = "supplier"
)

// ParseRole resolves a role name case-insensitively.
func ParseRole(s string) (Role, bool) {
	return parseFolded(s, RoleAdmin, RoleEnterprise, RoleVendor, RoleEmployee, RolePartner, RoleInvestor, RoleSupplier)
}

// Capability names an operation group of the lifecycle engine.
type Capability string

const (
	CapManageCatalog     Capability = "catalog:manage"
	CapViewCatalog       Capability = "catalog:view"
	CapPostOpportunity   Capability = "opportunity:post"
	CapViewOpportunities Capability = "opportunity:view"
	CapSubmitProposal    Capability = "proposal:submit"
	CapDecideProposal    Capability = "proposal:decide"
	CapViewProposals     Capability = "proposal:view"
	CapScheduleSession   Capability = "session:schedule"
	CapAdvanceSession    Capability = "session:advance"
	CapAttachMaterial    Capability = "session:materials"
	CapViewSessions      Capability = "session:view"
	CapReviewVendor      Capability = "vendor:review"
	CapViewVendors       Capability = "vendor:view"
	CapRegisterVendor    Capability = "vendor:register"
)

var roleCapabilities = map[Role][]Capability{
	RoleAdmin: {
		CapManageCatalog, CapViewCatalog, CapPostOpportunity, CapViewOpportunities,
		CapDecideProposal, CapViewProposals, CapScheduleSession, CapAdvanceSession,
		CapAttachMaterial, CapViewSessions, CapReviewVendor, CapViewVendors, CapRegisterVendor,
	},
	RoleEnterprise: {
		CapManageCatalog, CapViewCatalog, CapPostOpportunity, CapViewOpportunities,
		CapDecideProposal, CapViewProposals, CapScheduleSession, CapAdvanceSession,
		CapAttachMaterial, CapViewSessions, CapViewVendors,
	},
	RoleVendor: {
		CapViewOpportunities, CapSubmitProposal, CapViewProposals, CapAdvanceSession,
		CapAttachMaterial, CapViewSessions, CapRegisterVendor,
	},
	RoleEmployee: {CapViewCatalog, CapViewSessions},
	RolePartner:  {CapViewCatalog},
	RoleInvestor: {},
	RoleSupplier: {},
}

// Allows reports whether role r holds capability c.
func (r Role) Allows(c Capability) bool {
	for _, granted := range roleCapabilities[r] {
		if granted == c {
			return true
		}
	}
	return false
}

// Actor is the authenticated caller of an engine operation. For vendors ID is
// the vendor account id, for employees the employee id.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// IsVendor reports whether the actor acts on behalf of a vendor account.
func (a Actor) IsVendor() bool {
	return a.Role == RoleVendor
}

type actorContextKey struct{}

// WithActor returns a context carrying the actor.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor set by WithActor.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}
