// Package retry defines retry policies and backoff strategies for calls to
// external collaborators (analysis engine, webhooks).
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Policy defines a retry strategy.
type Policy struct {
	MaxRetries      int           `json:"max_retries"`
	InitialDelay    time.Duration `json:"initial_delay"`
	MaxDelay        time.Duration `json:"max_delay"`
	BackoffStrategy BackoffType   `json:"backoff_strategy"`
	JitterFactor    float64       `json:"jitter_factor"` // 0.0-1.0
}

// BackoffType identifies the backoff strategy.
type BackoffType string

const (
	BackoffFixed       BackoffType = "fixed"       // Same delay each time
	BackoffLinear      BackoffType = "linear"      // Delay increases linearly
	BackoffExponential BackoffType = "exponential" // Delay doubles each time
)

// DefaultPolicy returns a sensible default retry policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:      3,
		InitialDelay:    1 * time.Second,
		MaxDelay:        30 * time.Second,
		BackoffStrategy: BackoffExponential,
		JitterFactor:    0.25,
	}
}

// ConservativePolicy returns a conservative retry policy.
func ConservativePolicy() Policy {
	return Policy{
		MaxRetries:      2,
		InitialDelay:    2 * time.Second,
		MaxDelay:        10 * time.Second,
		BackoffStrategy: BackoffLinear,
		JitterFactor:    0.1,
	}
}

// NoRetryPolicy returns a policy that never retries.
func NoRetryPolicy() Policy {
	return Policy{
		MaxRetries:   0,
		InitialDelay: 0,
		MaxDelay:     0,
	}
}

// CalculateDelay calculates the delay for a given attempt (1-based).
func (p *Policy) CalculateDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	var delay time.Duration
	switch p.BackoffStrategy {
	case BackoffLinear:
		delay = time.Duration(attempt) * p.InitialDelay
	case BackoffExponential:
		delay = time.Duration(float64(p.InitialDelay) * math.Pow(2, float64(attempt-1)))
	default: // BackoffFixed
		delay = p.InitialDelay
	}

	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}

	if p.JitterFactor > 0 {
		jitter := time.Duration(rand.Float64() * p.JitterFactor * float64(delay))
		delay += jitter
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}

	return delay
}

// Wait blocks for the attempt's backoff delay or until the context ends.
func (p *Policy) Wait(ctx context.Context, attempt int) error {
	delay := p.CalculateDelay(attempt)
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
