// Package ratelimit provides a token bucket used to keep diagnostic output
// from hot paths bounded.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

type Limiter struct {
	rate     float64
	capacity float64
	tokens   float64
	lastFill time.Time
	now      func() time.Time
	mu       sync.Mutex
}

// Status describes the current utilisation state of a Limiter.
type Status struct {
	Rate        float64
	Capacity    float64
	Remaining   float64
	Utilization float64
	RefillIn    time.Duration
}

// New returns a limiter refilling rate tokens per second with room for burst
// tokens. A non-positive rate yields a nil limiter, which allows everything.
func New(rate float64, burst int) *Limiter {
	if rate <= 0 {
		return nil
	}
	capacity := math.Max(float64(burst), math.Max(rate, 1))
	return &Limiter{
		rate:     rate,
		capacity: capacity,
		tokens:   capacity,
		lastFill: time.Now(),
		now:      time.Now,
	}
}

func (l *Limiter) Allow() bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refillLocked(l.now())
	if l.tokens < 1 {
		return false
	}
	l.tokens -= 1
	return true
}

func (l *Limiter) refillLocked(now time.Time) {
	if now.Before(l.lastFill) {
		l.lastFill = now
		return
	}
	elapsed := now.Sub(l.lastFill)
	if elapsed <= 0 {
		return
	}
	l.tokens += elapsed.Seconds() * l.rate
	if l.tokens > l.capacity {
		l.tokens = l.capacity
	}
	l.lastFill = now
}

// Status returns information about the limiter's current token bucket state.
func (l *Limiter) Status() Status {
	if l == nil {
		return Status{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.refillLocked(l.now())

	remaining := l.tokens
	used := math.Max(l.capacity-remaining, 0)

	utilization := 0.0
	if l.capacity > 0 {
		utilization = math.Min(math.Max(used/l.capacity, 0), 1)
	}

	refillIn := time.Duration(0)
	if deficit := l.capacity - remaining; deficit > 0 {
		refillIn = time.Duration(deficit / l.rate * float64(time.Second))
	}

	return Status{
		Rate:        l.rate,
		Capacity:    l.capacity,
		Remaining:   remaining,
		Utilization: utilization,
		RefillIn:    refillIn,
	}
}
