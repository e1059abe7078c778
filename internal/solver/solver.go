// Package solver answers natural-language math questions through an external
// generative-AI service.
//
// The calculator only depends on the Solver interface: a prompt goes in, a
// display value and a one-sentence explanation come out. Implementations:
//   - OpenAI: chat completion against any OpenAI-compatible endpoint
//   - Func: adapter for tests and local wiring
//
// WithTimeout and WithRateLimit wrap any Solver.
package solver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

var (
	// ErrNotConfigured is returned when no AI backend is available.
	ErrNotConfigured = errors.New("solver: not configured")
	// ErrInvalidResponse is returned when the backend reply carries no usable result.
	ErrInvalidResponse = errors.New("solver: invalid response")
	// ErrRateLimited is returned when a request cannot be admitted in time.
	ErrRateLimited = errors.New("solver: rate limited")
)

// Solution is an answer to a prompt.
type Solution struct {
	Result      string `json:"result"`
	Explanation string `json:"explanation"`
}

// Solver answers a natural-language math prompt.
type Solver interface {
	Solve(ctx context.Context, prompt string) (Solution, error)
}

// Func adapts an ordinary function to the Solver interface.
type Func func(ctx context.Context, prompt string) (Solution, error)

func (f Func) Solve(ctx context.Context, prompt string) (Solution, error) {
	return f(ctx, prompt)
}

// WithTimeout bounds every call to s by d. A non-positive d returns s unchanged.
func WithTimeout(s Solver, d time.Duration) Solver {
	if d <= 0 {
		return s
	}
	return Func(func(ctx context.Context, prompt string) (Solution, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()

		sol, err := s.Solve(ctx, prompt)
		if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Solution{}, fmt.Errorf("solve timed out after %s: %w", d, err)
		}
		return sol, err
	})
}

// WithRateLimit admits calls to s through limiter, waiting for a token while
// ctx allows it.
func WithRateLimit(s Solver, limiter *rate.Limiter) Solver {
	if limiter == nil {
		return s
	}
	return Func(func(ctx context.Context, prompt string) (Solution, error) {
		if err := limiter.Wait(ctx); err != nil {
			return Solution{}, fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return s.Solve(ctx, prompt)
	})
}

// PerMinute builds a limiter admitting n calls per minute with a burst of n.
// n <= 0 returns nil, meaning unlimited.
func PerMinute(n int) *rate.Limiter {
	if n <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), n)
}
