// Package resilience provides the shared retry policy for calls to external
// collaborators: transient failures are retried with bounded exponential
// backoff, everything else propagates immediately.
package resilience

import (
	"context"
	"errors"
	"regexp"
	"time"
)

// Policy holds retry configuration
type Policy struct {
	MaxRetries   int           // Maximum number of attempts
	InitialDelay time.Duration // Delay before the first retry
	MaxDelay     time.Duration // Cap on the backoff delay
	Multiplier   float64       // Exponential backoff multiplier
}

// DefaultPolicy returns the retry defaults used for collaborator calls
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:   3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// RetryableError marks an error as explicitly transient or fatal, overriding
// pattern-based classification
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewTransient wraps an error that should be retried
func NewTransient(err error) *RetryableError {
	return &RetryableError{Err: err, Retryable: true}
}

// NewFatal wraps an error that must never be retried
func NewFatal(err error) *RetryableError {
	return &RetryableError{Err: err, Retryable: false}
}

var transientPattern = regexp.MustCompile(`(?i)timeout|timed out|deadline exceeded|econnreset|econnrefused|socket hang up|connection reset|network error|temporarily unavailable|service unavailable|too many requests|rate limit|\b(429|500|502|503|504)\b`)

// IsTransient classifies an error as retryable. A RetryableError in the chain
// decides outright; otherwise the message is matched against known transient
// infrastructure patterns (timeouts, connection resets, 5xx, 429).
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var retryable *RetryableError
	if errors.As(err, &retryable) {
		return retryable.Retryable
	}

	return transientPattern.MatchString(err.Error())
}

// Do runs op with exponential backoff, retrying only transient errors. The
// delay before attempt n is min(InitialDelay * Multiplier^(n-1), MaxDelay).
// Non-retryable errors and exhausted retries both propagate the original
// error; there is no silent suppression. Cancellation is caller-driven
// through ctx.
func (p Policy) Do(ctx context.Context, op func(context.Context) error) error {
	delay := p.InitialDelay
	var lastErr error

	for attempt := 0; attempt < p.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * p.Multiplier)
			if delay > p.MaxDelay {
				delay = p.MaxDelay
			}
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsTransient(err) {
			return err
		}
	}

	return lastErr
}
