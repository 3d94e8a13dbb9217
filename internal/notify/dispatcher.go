package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds a single notification attempt.
const DefaultTimeout = 10 * time.Second

// Dispatcher runs notification jobs in the background. Failures are logged
// and never reach the caller.
type Dispatcher struct {
	log     *zap.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher returns a Dispatcher; a non-positive timeout means DefaultTimeout.
func NewDispatcher(log *zap.Logger, timeout time.Duration) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{log: log, timeout: timeout}
}

// Go runs fn detached from ctx cancellation but bounded by the dispatcher timeout.
func (d *Dispatcher) Go(ctx context.Context, name string, fn func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.log.Error("notification panic", zap.String("kind", name), zap.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()

		start := time.Now()
		err := fn(ctx)
		switch {
		case err == nil:
			d.log.Info("notification sent", zap.String("kind", name), zap.Duration("dur", time.Since(start)))
		case errors.Is(err, ErrSkipped):
			d.log.Info("notification skipped", zap.String("kind", name), zap.String("reason", err.Error()))
		default:
			d.log.Warn("notification failed", zap.String("kind", name), zap.Error(err))
		}
	}()
}

// Wait blocks until in-flight jobs finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
