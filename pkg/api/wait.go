package api

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/zbx-labs/zbxkit/pkg/log"
)

const (
	// DefaultReadyAttempts is how many times WaitReady polls before
	// giving up.
	DefaultReadyAttempts = 20

	// DefaultReadyInterval is the pause between readiness polls.
	DefaultReadyInterval = 5 * time.Second
)

// backoff implements backoff with jitter between readiness polls.
type backoff struct {
	initial time.Duration
	max     time.Duration
	current time.Duration
}

func newBackoff(initial, max time.Duration) *backoff {
	return &backoff{
		initial: initial,
		max:     max,
		current: initial,
	}
}

// Sleep pauses for the current backoff duration, increases it for next
// time, and returns early when the context is canceled.
func (b *backoff) Sleep(ctx context.Context) error {
	// Add jitter: ±20%
	jitter := float64(b.current) * 0.2 * (rand.Float64()*2 - 1)
	sleep := time.Duration(float64(b.current) + jitter)

	t := time.NewTimer(sleep)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
	}

	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}
	return nil
}

// WaitReady polls the server until apiinfo.version answers, pausing
// interval between attempts with jitter. Zero attempts or interval
// select the defaults (20 polls, 5s apart). It returns the reported
// version, or the last poll error once the attempts are exhausted.
func (c *Client) WaitReady(ctx context.Context, attempts int, interval time.Duration) (Version, error) {
	if attempts <= 0 {
		attempts = DefaultReadyAttempts
	}
	if interval <= 0 {
		interval = DefaultReadyInterval
	}

	b := newBackoff(interval, interval)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		ver, err := c.APIVersion(ctx)
		if err == nil {
			c.logger.Info("API is ready",
				log.String("url", c.url),
				log.String("version", ver.String()),
				log.Int("attempt", attempt))
			return ver, nil
		}
		lastErr = err
		c.logger.Debug("API not ready yet",
			log.String("url", c.url),
			log.Int("attempt", attempt),
			log.Int("attempts", attempts),
			log.Err(err))
		if attempt == attempts {
			break
		}
		if err := b.Sleep(ctx); err != nil {
			return Version{}, err
		}
	}
	return Version{}, fmt.Errorf("api: not ready after %d attempts: %w", attempts, lastErr)
}
