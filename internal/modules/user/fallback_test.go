package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackChainFirstSuccessWins(t *testing.T) {
	chain := NewFallbackChain(
		FetchStrategy[int]{Name: "primary", Fetch: func(ctx context.Context) (int, error) { return 1, nil }},
		FetchStrategy[int]{Name: "secondary", Fetch: func(ctx context.Context) (int, error) {
			t.Fatal("secondary should not run when primary succeeds")
			return 0, nil
		}},
	)

	result, name, err := chain.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result)
	assert.Equal(t, "primary", name)
}

func TestFallbackChainFallsThroughInOrder(t *testing.T) {
	var attempts []string
	chain := NewFallbackChain(
		FetchStrategy[string]{Name: "first", Fetch: func(ctx context.Context) (string, error) {
			attempts = append(attempts, "first")
			return "", errors.New("first down")
		}},
		FetchStrategy[string]{Name: "second", Fetch: func(ctx context.Context) (string, error) {
			attempts = append(attempts, "second")
			return "", errors.New("second down")
		}},
		FetchStrategy[string]{Name: "third", Fetch: func(ctx context.Context) (string, error) {
			attempts = append(attempts, "third")
			return "from third", nil
		}},
	)

	result, name, err := chain.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "from third", result)
	assert.Equal(t, "third", name)
	assert.Equal(t, []string{"first", "second", "third"}, attempts)
}

func TestFallbackChainExhaustionWrapsLastError(t *testing.T) {
	lastErr := errors.New("second down")
	chain := NewFallbackChain(
		FetchStrategy[int]{Name: "first", Fetch: func(ctx context.Context) (int, error) { return 0, errors.New("first down") }},
		FetchStrategy[int]{Name: "second", Fetch: func(ctx context.Context) (int, error) { return 0, lastErr }},
	)

	_, _, err := chain.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, lastErr)
}

func TestFallbackChainEmpty(t *testing.T) {
	chain := NewFallbackChain[int]()

	_, _, err := chain.Execute(context.Background())
	assert.Error(t, err)
}
