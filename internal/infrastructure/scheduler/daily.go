package scheduler

import (
	"context"
	"time"

	"onconews/internal/ports"
)

// DailyScheduler re-runs the collection job once per day using a plain
// ticker. The first run fires immediately on Start.
type DailyScheduler struct {
	interval time.Duration
	stop     chan struct{}
}

var _ ports.Scheduler = (*DailyScheduler)(nil)

// NewDailyScheduler builds a scheduler ticking every 24 hours.
func NewDailyScheduler() *DailyScheduler {
	return &DailyScheduler{interval: 24 * time.Hour}
}

// Start begins ticking; calling Start twice is a no-op.
func (d *DailyScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	if d.stop != nil {
		return nil
	}

	d.stop = make(chan struct{})
	go func() {
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		job(time.Now())
		for {
			select {
			case t := <-ticker.C:
				job(t)
			case <-ctx.Done():
				return
			case <-d.stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticker goroutine.
func (d *DailyScheduler) Stop(ctx context.Context) error {
	if d.stop == nil {
		return nil
	}
	close(d.stop)
	d.stop = nil
	return nil
}
