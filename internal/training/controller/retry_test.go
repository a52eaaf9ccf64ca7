package controller

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gartstein/ehs/internal/training/db"
	e "github.com/gartstein/ehs/internal/training/errors"
	"github.com/gartstein/ehs/internal/training/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRetryOnConflict(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		failWith  error
		wantErr   error
		wantCalls int
	}{
		{"succeeds first time", 0, nil, nil, 1},
		{"retries conflicts", 2, fmt.Errorf("%w: stale version", e.ErrConflict), nil, 3},
		{"gives up after max retries", 100, e.ErrConflict, e.ErrConflict, MaxConflictRetries + 1},
		{"does not retry invalid transition", 100, e.ErrInvalidTransition, e.ErrInvalidTransition, 1},
		{"does not retry validation", 100, e.ErrValidation, e.ErrValidation, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryOnConflict(context.Background(), func() error {
				calls++
				if calls <= tt.failures {
					return tt.failWith
				}
				return nil
			})
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, tt.wantErr))
			}
			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}

func TestRetryOnConflict_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := RetryOnConflict(ctx, func() error {
		calls++
		return e.ErrConflict
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestTransactionRetriedOnConflict(t *testing.T) {
	f := setup(t)
	v := f.vendor(t, false)

	attempts := 0
	repo := &MockRepository{
		Repository: f.repo,
		withTransaction: func(ctx context.Context, fn func(*db.Repository) error) error {
			attempts++
			if attempts == 1 {
				return fmt.Errorf("%w: vendor %s changed", e.ErrConflict, v.ID)
			}
			return f.repo.WithTransaction(ctx, fn)
		},
	}
	svc := NewLifecycleService(repo, f.producer, zaptest.NewLogger(t))

	approved, err := svc.ApproveVendor(asRole(models.RoleAdmin, uuid.New()), v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VendorApproved, approved.Status)
	assert.Equal(t, 2, attempts)
}
