package service

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-konvo/internal/config"
)

// RefreshJob calls Refresh on a ticker while a conversation is open.
type RefreshJob struct {
	target Refresher

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRefreshJob creates a job for target. The job is idle until Start is
// called.
func NewRefreshJob(target Refresher) *RefreshJob {
	return &RefreshJob{target: target}
}

// Start stops any previously running loop, then launches a goroutine that
// calls Refresh every interval. A zero or negative interval falls back to
// config.DefaultRefreshInterval. The goroutine exits when ctx is cancelled
// or Stop is called. Refresh errors are reported by the target itself.
func (j *RefreshJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = config.DefaultRefreshInterval
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				_ = j.target.Refresh(jobCtx)
			}
		}
	}()
}

// Stop cancels the loop and blocks until it has exited. Safe to call when
// the job is not running.
func (j *RefreshJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
