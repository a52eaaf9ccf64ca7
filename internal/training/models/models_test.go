package models

import (
	"context"
	"testing"

	"github.com/gartstein/ehs/internal/pkg/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"In-Person", FormatInPerson, true},
		{"inperson", FormatInPerson, true},
		{"Online", FormatOnline, true},
		{" hybrid ", FormatHybrid, true},
		{"carrier pigeon", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseFormat(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseSessionStatus(t *testing.T) {
	s, ok := ParseSessionStatus("in-progress")
	assert.True(t, ok)
	assert.Equal(t, SessionInProgress, s)

	_, ok = ParseSessionStatus("pending-vendor")
	assert.False(t, ok)
}

func TestProposalStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, ProposalPending.CanTransitionTo(ProposalAccepted))
	assert.True(t, ProposalPending.CanTransitionTo(ProposalRejected))
	assert.False(t, ProposalPending.CanTransitionTo(ProposalPending))
	for _, from := range []ProposalStatus{ProposalAccepted, ProposalRejected} {
		for _, to := range []ProposalStatus{ProposalPending, ProposalAccepted, ProposalRejected} {
			assert.False(t, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestSessionStatus_CanTransitionTo(t *testing.T) {
	allowed := map[[2]SessionStatus]bool{
		{SessionScheduled, SessionInProgress}: true,
		{SessionScheduled, SessionCancelled}:  true,
		{SessionInProgress, SessionCompleted}: true,
	}
	all := []SessionStatus{SessionScheduled, SessionInProgress, SessionCompleted, SessionCancelled}
	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]SessionStatus{from, to}], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestFees_Total(t *testing.T) {
	fees := Fees{ContentFee: 750, TrainingFee: 2000, TravelFee: 500}
	assert.Equal(t, 3250.0, fees.Total())
}

func TestVendor_RecordCompletion(t *testing.T) {
	v := &Vendor{UpcomingSessions: 2}

	v.RecordCompletion(utils.Ptr(4.9))
	assert.Equal(t, 4.9, v.Rating)
	assert.Equal(t, 1, v.CompletedSessions)
	assert.Equal(t, 1, v.UpcomingSessions)

	v.RecordCompletion(utils.Ptr(4.7))
	assert.InDelta(t, 4.8, v.Rating, 1e-9)
	assert.Equal(t, 2, v.RatedSessions)

	// unrated completions count but leave the average alone
	v.RecordCompletion(nil)
	assert.InDelta(t, 4.8, v.Rating, 1e-9)
	assert.Equal(t, 3, v.CompletedSessions)
	assert.Equal(t, 2, v.RatedSessions)
	assert.Equal(t, 0, v.UpcomingSessions)
}

func TestRole_Allows(t *testing.T) {
	assert.True(t, RoleAdmin.Allows(CapReviewVendor))
	assert.False(t, RoleEnterprise.Allows(CapReviewVendor))
	assert.True(t, RoleVendor.Allows(CapSubmitProposal))
	assert.False(t, RoleVendor.Allows(CapDecideProposal))
	assert.False(t, RoleInvestor.Allows(CapViewSessions))
	assert.False(t, Role("root").Allows(CapViewCatalog))
}

func TestActorContext(t *testing.T) {
	_, ok := ActorFromContext(context.Background())
	assert.False(t, ok)

	actor := Actor{ID: uuid.New(), Role: RoleVendor}
	got, ok := ActorFromContext(WithActor(context.Background(), actor))
	assert.True(t, ok)
	assert.Equal(t, actor, got)
	assert.True(t, got.IsVendor())
}
