package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy() Policy {
	return Policy{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"timeout message", errors.New("request timeout"), true},
		{"rate limit message", errors.New("rate limit exceeded"), true},
		{"503 status", errors.New("API error: 503 - service unavailable"), true},
		{"429 status", errors.New("API error: 429 - too many requests"), true},
		{"connection reset", errors.New("read: connection reset by peer"), true},
		{"plain validation error", errors.New("invalid request body"), false},
		{"400 status", errors.New("API error: 400 - bad request"), false},
		{"explicit transient wins over message", NewTransient(errors.New("bad input")), true},
		{"explicit fatal wins over message", NewFatal(errors.New("request timeout")), false},
		{"wrapped transient is found in the chain", fmt.Errorf("call failed: %w", NewTransient(errors.New("x"))), true},
		{"wrapped fatal is found in the chain", fmt.Errorf("call failed: %w", NewFatal(errors.New("503"))), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestRetryableErrorUnwrap(t *testing.T) {
	inner := errors.New("upstream broke")
	wrapped := NewTransient(inner)

	assert.Equal(t, "upstream broke", wrapped.Error())
	assert.ErrorIs(t, wrapped, inner)
}

func TestDoRetriesTransientFailures(t *testing.T) {
	attempts := 0
	err := fastPolicy().Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("API error: 503 - temporarily down")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoStopsOnFatalError(t *testing.T) {
	fatal := errors.New("invalid credentials")
	attempts := 0

	err := fastPolicy().Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return fatal
	})

	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, attempts)
}

func TestDoExhaustsRetries(t *testing.T) {
	transient := NewTransient(errors.New("still flaky"))
	attempts := 0

	err := fastPolicy().Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return transient
	})

	assert.ErrorIs(t, err, transient)
	assert.Equal(t, 3, attempts)
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	err := fastPolicy().Do(ctx, func(ctx context.Context) error {
		attempts++
		cancel()
		return NewTransient(errors.New("flaky"))
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestDoSucceedsImmediately(t *testing.T) {
	attempts := 0
	err := fastPolicy().Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}
