package raster

import (
	"context"
	"time"

	"iconpng/internal/model"
	"iconpng/internal/resolve"
)

// PollBudget bounds the wait for a pending resolution before an export.
type PollBudget struct {
	Timeout  time.Duration
	Interval time.Duration
}

// DefaultPollBudget polls every 100ms for up to 3s.
func DefaultPollBudget() PollBudget {
	return PollBudget{Timeout: 3 * time.Second, Interval: 100 * time.Millisecond}
}

func (b PollBudget) normalized() PollBudget {
	if b.Interval <= 0 {
		b.Interval = DefaultPollBudget().Interval
	}
	if b.Timeout < b.Interval {
		b.Timeout = b.Interval
	}
	return b
}

// Steps is the number of polls after the initial check.
func (b PollBudget) Steps() int {
	b = b.normalized()
	return int(b.Timeout / b.Interval)
}

// Tick returns the polling interval.
func (b PollBudget) Tick() time.Duration {
	return b.normalized().Interval
}

// ErrNotReady is the failure reported when the budget runs out.
func ErrNotReady() error {
	return model.Errorf(model.KindExport, "icon failed to load")
}

// AwaitHandle polls ready until it returns a handle or the budget is spent.
func AwaitHandle(ctx context.Context, ready func() *resolve.Handle, b PollBudget) (*resolve.Handle, error) {
	if h := ready(); h != nil {
		return h, nil
	}
	b = b.normalized()
	ticker := time.NewTicker(b.Interval)
	defer ticker.Stop()

	for i := 0; i < b.Steps(); i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			if h := ready(); h != nil {
				return h, nil
			}
		}
	}
	return nil, ErrNotReady()
}
