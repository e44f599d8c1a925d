package scanclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mvcarvalho/docsentinel/internal/core/domain"
)

const (
	DefaultMaxAttempts  = 15
	DefaultPollInterval = 2 * time.Second
)

// ErrPollTimeout is returned when every polling attempt saw a still-pending
// scan or a fetch failure. The scan may finish later; the caller decides
// whether to retry.
var ErrPollTimeout = errors.New("scan processing is taking too long")

// Poller drives the wait loop for an asynchronous scan. The interval is
// fixed, not backed off: attempts are cheap and the processing time is
// dominated by the worker, not the polling.
type Poller struct {
	client      *Client
	MaxAttempts int
	Interval    time.Duration
}

func NewPoller(client *Client) *Poller {
	return &Poller{
		client:      client,
		MaxAttempts: DefaultMaxAttempts,
		Interval:    DefaultPollInterval,
	}
}

// WaitForResult polls until the result is available, the attempts run out,
// or ctx is cancelled. Fetch errors are not fatal to the loop: a transient
// API or network failure is logged and the next attempt proceeds; only
// exhausting the attempt budget fails the wait. The first attempt fires
// immediately; cancellation between attempts returns ctx.Err() and is safe
// to trigger more than once.
func (p *Poller) WaitForResult(ctx context.Context, scanID string) (*domain.ScanResult, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := p.client.FetchResult(ctx, scanID)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}

		lastErr = err
		if !domain.IsKind(err, domain.ErrScanNotReady) {
			slog.Warn("poll attempt failed",
				"scan_id", scanID,
				"attempt", attempt,
				"max_attempts", maxAttempts,
				"error", err,
			)
		}
		if attempt == maxAttempts {
			break
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("%w: scan %s after %d attempts: %w", ErrPollTimeout, scanID, maxAttempts, lastErr)
}
