package practice

import (
	"context"
	"time"
)

// Remaining returns the time left in a timed session, or 0.
func (c *Controller) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Remaining(c.now())
}

// Countdown calls onTick every interval with the time left and expires the
// session at its deadline. It returns when ctx is done, when the session
// it was started for ends or is restarted, or after expiring it. Untimed
// sessions return immediately.
func (c *Controller) Countdown(ctx context.Context, interval time.Duration, onTick func(left time.Duration)) error {
	c.mu.Lock()
	epoch, deadline := c.epoch, c.state.Deadline
	c.mu.Unlock()
	if deadline.IsZero() {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		c.mu.Lock()
		done := c.epoch != epoch || c.state.Phase == PhaseCompleted || c.state.Expired
		c.mu.Unlock()
		if done {
			return nil
		}

		left := max(deadline.Sub(c.now()), 0)
		if onTick != nil {
			onTick(left)
		}
		if left == 0 {
			return c.Expire(ctx)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
