package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pixperk/markerlock/pkg/types"
	"go.uber.org/zap"
)

// the part of *lock.Handle the run loop needs
type locker interface {
	Name() string
	TryAcquire() bool
}

// tries once, then keeps retrying every retry until wait runs out
func acquire(ctx context.Context, l locker, wait, retry time.Duration) error {
	if l.TryAcquire() {
		return nil
	}
	if wait <= 0 {
		return fmt.Errorf("%w: %s", types.ErrLockBusy, l.Name())
	}

	deadline := time.NewTimer(wait)
	defer deadline.Stop()
	ticker := time.NewTicker(retry)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if l.TryAcquire() {
				return nil
			}
		case <-deadline.C:
			return fmt.Errorf("%w: %s (waited %s)", types.ErrLockBusy, l.Name(), wait)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// renews the lock every interval until ctx is done
// a renewal that fails means another process now considers the lock stale or
// holds it, which is reported but does not stop the loop
func heartbeat(ctx context.Context, l locker, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var failureCount int

	for {
		select {
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			if !l.TryAcquire() {
				failureCount++
				logger.Warn("lock renewal failed",
					zap.String("lock", l.Name()),
					zap.Int("attempt", failureCount))
				if failureCount >= 2 {
					logger.Error("lock may be lost, renewals keep failing",
						zap.String("lock", l.Name()),
						zap.Error(types.ErrLockLost))
				}
				continue
			}

			if failureCount > 0 {
				logger.Info("lock renewal recovered",
					zap.String("lock", l.Name()),
					zap.Int("failures", failureCount))
				failureCount = 0
			}

		case <-ctx.Done():
			return
		}
	}
}
