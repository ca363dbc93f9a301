package user

import (
	"context"
	"fmt"
	"log"
)

// FetchStrategy is one named way of producing a result. Strategies are
// tried in order; the first success wins.
type FetchStrategy[T any] struct {
	Name  string
	Fetch func(ctx context.Context) (T, error)
}

// FallbackChain is an explicit ordered list of strategies with typed
// results. It replaces nested try/catch-style fallbacks: the order is
// visible, each attempt is logged, and exhaustion is a distinct error
// carrying the last cause.
type FallbackChain[T any] struct {
	strategies []FetchStrategy[T]
}

// NewFallbackChain builds a chain from its strategies, in priority order.
func NewFallbackChain[T any](strategies ...FetchStrategy[T]) *FallbackChain[T] {
	return &FallbackChain[T]{strategies: strategies}
}

// Execute runs the strategies in order and returns the first success
// together with the name of the strategy that produced it. When every
// strategy fails, the error wraps the last failure.
func (c *FallbackChain[T]) Execute(ctx context.Context) (T, string, error) {
	var zero T
	var lastErr error

	for _, s := range c.strategies {
		result, err := s.Fetch(ctx)
		if err == nil {
			return result, s.Name, nil
		}
		log.Printf("fallback strategy %q failed: %v", s.Name, err)
		lastErr = err
	}

	if lastErr == nil {
		return zero, "", fmt.Errorf("fallback chain has no strategies")
	}
	return zero, "", fmt.Errorf("all %d fallback strategies failed, last: %w", len(c.strategies), lastErr)
}
