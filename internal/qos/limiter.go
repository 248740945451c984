package qos

import (
	"context"
	"sync"
	"sync/atomic"
)

// AdaptiveLimiter is an AIMD (additive-increase/multiplicative-decrease)
// concurrency limiter: successes grow the allowed concurrency linearly,
// failures cut it by 30% immediately.
type AdaptiveLimiter struct {
	sem             chan struct{}
	reductionNeeded int32

	currentLimit int
	minLimit     int
	maxLimit     int

	successCount int
	mu           sync.Mutex
}

// NewAdaptiveLimiter builds a limiter clamped to [min, max], starting at
// initial concurrent slots.
func NewAdaptiveLimiter(initial, min, max int) *AdaptiveLimiter {
	if initial < min {
		initial = min
	}
	if initial > max {
		initial = max
	}

	l := &AdaptiveLimiter{
		sem:          make(chan struct{}, max),
		currentLimit: initial,
		minLimit:     min,
		maxLimit:     max,
	}

	for i := 0; i < initial; i++ {
		l.sem <- struct{}{}
	}

	return l
}

// Acquire blocks for a slot until one is free or ctx is done.
func (l *AdaptiveLimiter) Acquire(ctx context.Context) error {
	select {
	case <-l.sem:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot, unless a pending decrease still owes a debt, in
// which case the slot is destroyed instead of returned.
func (l *AdaptiveLimiter) Release() {
	if atomic.LoadInt32(&l.reductionNeeded) > 0 {
		for {
			val := atomic.LoadInt32(&l.reductionNeeded)
			if val <= 0 {
				break
			}
			if atomic.CompareAndSwapInt32(&l.reductionNeeded, val, val-1) {
				return
			}
		}
	}

	select {
	case l.sem <- struct{}{}:
	default:
	}
}

// OnSuccess records a successful operation. The limit grows by 1 once
// successCount reaches currentLimit — gentler than per-success growth.
func (l *AdaptiveLimiter) OnSuccess() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.successCount++
	if l.successCount >= l.currentLimit {
		l.successCount = 0
		l.increaseLimit(1)
	}
}

// OnFailure records a failed operation (typically a timeout) and cuts the
// limit by 30%, at least 1.
func (l *AdaptiveLimiter) OnFailure() {
	l.mu.Lock()
	defer l.mu.Unlock()

	newLimit := int(float64(l.currentLimit) * 0.7)
	decrease := l.currentLimit - newLimit
	if decrease < 1 {
		decrease = 1
	}

	l.decreaseLimit(decrease)
	l.successCount = 0
}

func (l *AdaptiveLimiter) increaseLimit(n int) {
	target := l.currentLimit + n
	if target > l.maxLimit {
		target = l.maxLimit
	}

	diff := target - l.currentLimit
	if diff <= 0 {
		return
	}

	l.currentLimit = target
	for i := 0; i < diff; i++ {
		select {
		case l.sem <- struct{}{}:
		default:
		}
	}
}

func (l *AdaptiveLimiter) decreaseLimit(n int) {
	target := l.currentLimit - n
	if target < l.minLimit {
		target = l.minLimit
	}

	diff := l.currentLimit - target
	if diff <= 0 {
		return
	}

	l.currentLimit = target

	removed := 0
	for i := 0; i < diff; i++ {
		select {
		case <-l.sem:
			removed++
		default:
		}
	}

	remaining := diff - removed
	if remaining > 0 {
		atomic.AddInt32(&l.reductionNeeded, int32(remaining))
	}
}

// CurrentLimit returns the current concurrency ceiling.
func (l *AdaptiveLimiter) CurrentLimit() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentLimit
}
