package app

import (
	"sync/atomic"
	"testing"
	"time"

	"quiz-engine/internal/domain"
)

func TestCountdownFiresOnceAtZero(t *testing.T) {
	c := NewCountdown(3)

	if remaining, expired := c.Tick(); remaining != 2 || expired {
		t.Fatalf("expected 2 left, got %d expired=%v", remaining, expired)
	}
	if remaining, expired := c.Tick(); remaining != 1 || expired {
		t.Fatalf("expected 1 left, got %d expired=%v", remaining, expired)
	}
	if remaining, expired := c.Tick(); remaining != 0 || !expired {
		t.Fatalf("expected expiry at 0, got %d expired=%v", remaining, expired)
	}
	for i := 0; i < 3; i++ {
		if remaining, expired := c.Tick(); remaining != 0 || expired {
			t.Fatalf("tick after expiry must be a no-op, got %d expired=%v", remaining, expired)
		}
	}
	if !c.Expired() || c.Remaining() != 0 {
		t.Fatalf("expected expired countdown at 0")
	}
}

func TestCountdownLevels(t *testing.T) {
	c := NewCountdown(10)
	if c.Level() != domain.TimerNormal {
		t.Fatalf("expected normal level, got %s", c.Level())
	}
	for i := 0; i < 8; i++ {
		c.Tick()
	}
	if c.Level() != domain.TimerWarning {
		t.Fatalf("expected warning at 2/10, got %s", c.Level())
	}
	c.Tick()
	if c.Level() != domain.TimerCritical {
		t.Fatalf("expected critical at 1/10, got %s", c.Level())
	}
}

func TestCountdownStartExpires(t *testing.T) {
	c := NewCountdown(3)
	var ticks, fired int32
	expired := make(chan struct{})

	c.Start(time.Millisecond, func(int) { atomic.AddInt32(&ticks, 1) }, func() {
		atomic.AddInt32(&fired, 1)
		close(expired)
	})

	select {
	case <-expired:
	case <-time.After(2 * time.Second):
		t.Fatalf("countdown did not expire")
	}
	c.Wait()

	if atomic.LoadInt32(&fired) != 1 {
		t.Fatalf("expected exactly one expiry, got %d", fired)
	}
	if atomic.LoadInt32(&ticks) != 3 {
		t.Fatalf("expected 3 ticks, got %d", ticks)
	}
}

func TestCountdownStopHaltsTicks(t *testing.T) {
	c := NewCountdown(1000)
	var ticks int32
	c.Start(time.Millisecond, func(int) { atomic.AddInt32(&ticks, 1) }, func() {
		t.Errorf("stopped countdown must not expire")
	})

	time.Sleep(10 * time.Millisecond)
	c.Stop()
	c.Wait()

	after := atomic.LoadInt32(&ticks)
	time.Sleep(10 * time.Millisecond)
	if atomic.LoadInt32(&ticks) != after {
		t.Fatalf("ticks continued after stop")
	}
}
