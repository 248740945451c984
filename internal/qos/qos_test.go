package qos

import (
	"context"
	"testing"
	"time"
)

func TestRttEstimator(t *testing.T) {
	e := NewRttEstimator()

	if e.Timeout() != defaultInitialRTO {
		t.Errorf("expected initial RTO %v, got %v", defaultInitialRTO, e.Timeout())
	}

	// SRTT=100, RTTVAR=50, RTO=100+4*50=300ms
	e.Update(100 * time.Millisecond)
	if rto := e.Timeout(); rto != 300*time.Millisecond {
		t.Errorf("first update: expected 300ms, got %v", rto)
	}

	// Delta=100, RTTVAR=0.75*50+0.25*100=62.5, SRTT=0.875*100+0.125*200=112.5
	// RTO=112.5+4*62.5=362.5ms
	e.Update(200 * time.Millisecond)
	if rto := e.Timeout(); rto != 362500*time.Microsecond {
		t.Errorf("second update: expected 362.5ms, got %v", rto)
	}
}

func TestAdaptiveLimiterIncrease(t *testing.T) {
	l := NewAdaptiveLimiter(10, 1, 20)

	for i := 0; i < 10; i++ {
		l.OnSuccess()
	}
	if l.CurrentLimit() != 11 {
		t.Errorf("expected limit 11, got %d", l.CurrentLimit())
	}

	for i := 0; i < 11; i++ {
		l.OnSuccess()
	}
	if l.CurrentLimit() != 12 {
		t.Errorf("expected limit 12, got %d", l.CurrentLimit())
	}
}

func TestAdaptiveLimiterDecrease(t *testing.T) {
	l := NewAdaptiveLimiter(100, 1, 200)
	l.OnFailure()
	if l.CurrentLimit() != 70 {
		t.Errorf("expected limit 70, got %d", l.CurrentLimit())
	}
}

func TestAdaptiveLimiterAcquireRelease(t *testing.T) {
	l := NewAdaptiveLimiter(2, 1, 10)
	ctx := context.Background()

	if err := l.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
	if err := l.Acquire(ctx); err != nil {
		t.Fatal(err)
	}

	select {
	case <-l.sem:
		t.Fatal("should have been empty")
	default:
	}

	l.Release()
	if err := l.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
}

func baseThrottleConfig() ThrottleConfig {
	return ThrottleConfig{
		Enabled:              true,
		InitialPPS:           1000,
		MinPPS:               10,
		MaxPPS:               1_000_000,
		SuccessThreshold:     0.95,
		FailureThreshold:     0.80,
		RateIncreaseFactor:   1.2,
		RateDecreaseFactor:   0.5,
		WindowSize:           10,
		AdjustmentIntervalMs: 100,
	}
}

// S4 — throttle decrease.
func TestThrottleDecrease(t *testing.T) {
	th := NewThrottle(baseThrottleConfig())

	for i := 0; i < 15; i++ {
		th.Record(Failure)
	}
	time.Sleep(150 * time.Millisecond)
	th.Record(Failure)

	pps := th.CurrentPPS()
	if pps >= 1000 || pps < minPPS {
		t.Fatalf("expected 10 <= current_pps < 1000, got %d", pps)
	}
}

// S5 — throttle increase.
func TestThrottleIncrease(t *testing.T) {
	th := NewThrottle(baseThrottleConfig())

	for i := 0; i < 15; i++ {
		th.Record(Success)
	}
	time.Sleep(150 * time.Millisecond)
	th.Record(Success)

	pps := th.CurrentPPS()
	if pps <= 1000 || pps > maxPPS {
		t.Fatalf("expected 1000 < current_pps <= max, got %d", pps)
	}
}

func TestThrottleClampsInitialPPS(t *testing.T) {
	cfg := baseThrottleConfig()
	cfg.InitialPPS = 2_000_000
	th := NewThrottle(cfg)
	if th.CurrentPPS() != maxPPS {
		t.Fatalf("expected clamp to %d, got %d", maxPPS, th.CurrentPPS())
	}
}

func TestThrottleWaitDisabledIsNoop(t *testing.T) {
	cfg := baseThrottleConfig()
	cfg.Enabled = false
	th := NewThrottle(cfg)
	start := time.Now()
	if err := th.Wait(); err != nil {
		t.Fatal(err)
	}
	if time.Since(start) > 50*time.Millisecond {
		t.Fatal("disabled throttle should not sleep")
	}
}
