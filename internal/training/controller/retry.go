package controller

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/ehs/internal/training/db"
	e "github.com/gartstein/ehs/internal/training/errors"
)

// MaxConflictRetries bounds RetryOnConflict.
const MaxConflictRetries = 5

// RetryOnConflict runs op until it succeeds, fails with an error other than
// ErrConflict, or the retries are exhausted. Each attempt must re-read the
// entities it modifies.
func RetryOnConflict(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond
	policy := backoff.WithContext(backoff.WithMaxRetries(b, MaxConflictRetries), ctx)

	return backoff.Retry(func() error {
		err := op()
		if err != nil && !e.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}

// transact runs fn in a transaction, starting over when a concurrent writer
// bumped the version of a row fn read.
func (s *LifecycleService) transact(ctx context.Context, fn func(tx *db.Repository) error) error {
	return RetryOnConflict(ctx, func() error {
		return s.repo.WithTransaction(ctx, fn)
	})
}
