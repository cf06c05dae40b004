package app

import (
	"context"
	"sync"
	"time"

	"quiz-engine/internal/domain"
)

// Countdown counts a time limit down in whole seconds. Tick is the manual
// driver; Start drives it from a ticker in a background goroutine.
type Countdown struct {
	mu        sync.Mutex
	limit     int
	remaining int
	expired   bool

	cancel context.CancelFunc
	done   chan struct{}
}

func NewCountdown(limit int) *Countdown {
	return &Countdown{limit: limit, remaining: limit}
}

func (c *Countdown) Limit() int {
	return c.limit
}

// Remaining returns the seconds left, never negative.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *Countdown) Expired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expired
}

// Level is warning at 20% of the limit left and critical at 10%.
func (c *Countdown) Level() domain.TimerLevel {
	return timerLevel(c.Remaining(), c.limit)
}

func timerLevel(remaining, limit int) domain.TimerLevel {
	switch {
	case float64(remaining) <= float64(limit)*0.1:
		return domain.TimerCritical
	case float64(remaining) <= float64(limit)*0.2:
		return domain.TimerWarning
	default:
		return domain.TimerNormal
	}
}

// Tick advances the countdown by one second. expired is true exactly once, on
// the tick that reaches zero; later ticks are no-ops.
func (c *Countdown) Tick() (remaining int, expired bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.expired {
		return 0, false
	}
	if c.remaining <= 1 {
		c.remaining = 0
		c.expired = true
		return 0, true
	}
	c.remaining--
	return c.remaining, false
}

// Start ticks every interval until the countdown expires or Stop is called.
// onTick sees the remaining seconds after every tick (including the final 0);
// onExpire runs once at zero, after which the goroutine exits.
func (c *Countdown) Start(interval time.Duration, onTick func(int), onExpire func()) {
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if ctx.Err() != nil {
					return
				}
				remaining, expired := c.Tick()
				if onTick != nil {
					onTick(remaining)
				}
				if expired {
					if onExpire != nil {
						onExpire()
					}
					return
				}
			}
		}
	}()
}

// Stop cancels the background driver without waiting; it is safe to call from
// inside the tick or expire callbacks and more than once.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

// Wait blocks until the background driver has exited. It must not be called
// from inside the callbacks.
func (c *Countdown) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}
