package preload

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/campsight/campsight/internal/lazyload"
	"github.com/campsight/campsight/internal/routes"
)

var errLoad = errors.New("load failed")

func okLoader(calls *atomic.Int64) lazyload.Loader[string] {
	return func(context.Context) (string, error) {
		if calls != nil {
			calls.Inc()
		}
		return "ok", nil
	}
}

func failLoader(context.Context) (string, error) {
	return "", errLoad
}

func buildRegistry(t *testing.T, defs ...routes.Route[string]) *routes.Registry[string] {
	t.Helper()
	registry, err := routes.New(defs)
	require.NoError(t, err)
	return registry
}

func TestCritical(t *testing.T) {
	registry := buildRegistry(t,
		routes.Route[string]{Path: "/", Preload: true, Loader: okLoader(nil)},
		routes.Route[string]{Path: "/campaigns", Preload: true, Loader: okLoader(nil)},
		routes.Route[string]{Path: "/settings", Loader: okLoader(nil)},
	)
	scheduler := NewScheduler(registry)

	result := scheduler.Critical(context.Background())

	assert.NotEmpty(t, result.BatchID)
	assert.Equal(t, 2, result.Attempted())
	assert.Equal(t, 2, result.Succeeded())
	assert.Zero(t, result.Failed())
	assert.Empty(t, result.Skipped)

	// Flagged routes are warm, the rest untouched.
	for _, path := range []string{"/", "/campaigns"} {
		route, ok := registry.Find(path)
		require.True(t, ok)
		assert.Equal(t, lazyload.StateLoaded, route.Unit.State(), path)
	}
	route, ok := registry.Find("/settings")
	require.True(t, ok)
	assert.Equal(t, lazyload.StateUnloaded, route.Unit.State())
}

func TestCriticalNothingFlagged(t *testing.T) {
	registry := buildRegistry(t,
		routes.Route[string]{Path: "/settings", Loader: okLoader(nil)},
	)

	result := NewScheduler(registry).Critical(context.Background())

	assert.NotEmpty(t, result.BatchID)
	assert.Zero(t, result.Attempted())
}

func TestPath(t *testing.T) {
	t.Run("known path warms its unit", func(t *testing.T) {
		var calls atomic.Int64
		registry := buildRegistry(t, routes.Route[string]{Path: "/campaigns", Loader: okLoader(&calls)})
		scheduler := NewScheduler(registry)

		outcome := scheduler.Path(context.Background(), "/campaigns")

		require.True(t, outcome.Succeeded())
		assert.Equal(t, "/campaigns", outcome.Path)
		assert.Equal(t, int64(1), calls.Load())

		route, _ := registry.Find("/campaigns")
		assert.Equal(t, lazyload.StateLoaded, route.Unit.State())
	})

	t.Run("unknown path yields ErrUnknownPath", func(t *testing.T) {
		registry := buildRegistry(t, routes.Route[string]{Path: "/campaigns", Loader: okLoader(nil)})

		outcome := NewScheduler(registry).Path(context.Background(), "/billing")

		assert.False(t, outcome.Succeeded())
		require.ErrorIs(t, outcome.Err, ErrUnknownPath)
		assert.Equal(t, "/billing", outcome.Path)
	})

	t.Run("failing loader surfaces its error", func(t *testing.T) {
		registry := buildRegistry(t, routes.Route[string]{Path: "/flaky", Loader: failLoader})

		outcome := NewScheduler(registry).Path(context.Background(), "/flaky")

		require.ErrorIs(t, outcome.Err, errLoad)
	})
}

func TestPathsSkipsUnknown(t *testing.T) {
	registry := buildRegistry(t,
		routes.Route[string]{Path: "/campaigns", Loader: okLoader(nil)},
		routes.Route[string]{Path: "/analytics", Loader: okLoader(nil)},
	)
	scheduler := NewScheduler(registry)

	result := scheduler.Paths(context.Background(), []string{"/campaigns", "/billing", "/analytics"})

	assert.Equal(t, 2, result.Attempted())
	assert.Equal(t, 2, result.Succeeded())
	assert.Equal(t, []string{"/billing"}, result.Skipped)
}

func TestPathsPartialFailure(t *testing.T) {
	registry := buildRegistry(t,
		routes.Route[string]{Path: "/good", Loader: okLoader(nil)},
		routes.Route[string]{Path: "/bad", Loader: failLoader},
		routes.Route[string]{Path: "/also-good", Loader: okLoader(nil)},
	)
	scheduler := NewScheduler(registry)

	result := scheduler.Paths(context.Background(), []string{"/good", "/bad", "/also-good"})

	// Every path is attempted even though one fails.
	require.Equal(t, 3, result.Attempted())
	assert.Equal(t, 2, result.Succeeded())
	assert.Equal(t, 1, result.Failed())

	byPath := make(map[string]Outcome, len(result.Outcomes))
	for _, o := range result.Outcomes {
		byPath[o.Path] = o
	}
	assert.True(t, byPath["/good"].Succeeded())
	assert.True(t, byPath["/also-good"].Succeeded())
	require.ErrorIs(t, byPath["/bad"].Err, errLoad)
}

func TestPathsOutcomeOrderFollowsInput(t *testing.T) {
	registry := buildRegistry(t,
		routes.Route[string]{Path: "/a", Loader: okLoader(nil)},
		routes.Route[string]{Path: "/b", Loader: okLoader(nil)},
	)

	result := NewScheduler(registry).Paths(context.Background(), []string{"/b", "/a"})

	require.Len(t, result.Outcomes, 2)
	assert.Equal(t, "/b", result.Outcomes[0].Path)
	assert.Equal(t, "/a", result.Outcomes[1].Path)
}

func TestPathsCollapsesDuplicates(t *testing.T) {
	var calls atomic.Int64
	registry := buildRegistry(t, routes.Route[string]{Path: "/campaigns", Loader: okLoader(&calls)})

	result := NewScheduler(registry).Paths(context.Background(),
		[]string{"/campaigns", "/campaigns", "/campaigns"})

	assert.Equal(t, 1, result.Attempted())
	assert.Equal(t, int64(1), calls.Load())
}

func TestPathsEmpty(t *testing.T) {
	registry := buildRegistry(t, routes.Route[string]{Path: "/a", Loader: okLoader(nil)})

	result := NewScheduler(registry).Paths(context.Background(), nil)

	assert.Zero(t, result.Attempted())
	assert.Empty(t, result.Skipped)
	assert.NotEmpty(t, result.BatchID)
}

func TestPreloadIsMemoized(t *testing.T) {
	var calls atomic.Int64
	registry := buildRegistry(t, routes.Route[string]{Path: "/", Preload: true, Loader: okLoader(&calls)})
	scheduler := NewScheduler(registry)

	first := scheduler.Critical(context.Background())
	second := scheduler.Critical(context.Background())

	assert.Equal(t, 1, first.Succeeded())
	assert.Equal(t, 1, second.Succeeded())
	assert.Equal(t, int64(1), calls.Load(), "loaded content is reused, not reloaded")
}

func TestConcurrencyLimit(t *testing.T) {
	var (
		mu      sync.Mutex
		current int
		peak    int
	)
	blockingLoader := func(context.Context) (string, error) {
		mu.Lock()
		current++
		if current > peak {
			peak = current
		}
		mu.Unlock()

		time.Sleep(20 * time.Millisecond)

		mu.Lock()
		current--
		mu.Unlock()
		return "ok", nil
	}

	registry := buildRegistry(t,
		routes.Route[string]{Path: "/a", Loader: blockingLoader},
		routes.Route[string]{Path: "/b", Loader: blockingLoader},
		routes.Route[string]{Path: "/c", Loader: blockingLoader},
	)
	scheduler := NewScheduler(registry, WithConcurrency[string](1))

	result := scheduler.Paths(context.Background(), []string{"/a", "/b", "/c"})

	assert.Equal(t, 3, result.Succeeded())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, peak, "loads must not overlap with concurrency 1")
}

func TestByUsage(t *testing.T) {
	registry := buildRegistry(t,
		routes.Route[string]{Path: "/a", Loader: okLoader(nil)},
		routes.Route[string]{Path: "/b", Loader: okLoader(nil)},
		routes.Route[string]{Path: "/c", Loader: okLoader(nil)},
		routes.Route[string]{Path: "/d", Loader: okLoader(nil)},
	)
	scheduler := NewScheduler(registry)

	observed := []string{"/a", "/b", "/a", "/c", "/b", "/a", "/d"}
	result := scheduler.ByUsage(context.Background(), observed)

	require.Equal(t, 3, result.Attempted())
	assert.Equal(t, "/a", result.Outcomes[0].Path)
	assert.Equal(t, "/b", result.Outcomes[1].Path)
	assert.Equal(t, "/c", result.Outcomes[2].Path, "tie between /c and /d goes to first seen")
}

func TestByUsageRespectsLimitOption(t *testing.T) {
	registry := buildRegistry(t,
		routes.Route[string]{Path: "/a", Loader: okLoader(nil)},
		routes.Route[string]{Path: "/b", Loader: okLoader(nil)},
	)
	scheduler := NewScheduler(registry, WithUsageLimit[string](1))

	result := scheduler.ByUsage(context.Background(), []string{"/b", "/a", "/b"})

	require.Equal(t, 1, result.Attempted())
	assert.Equal(t, "/b", result.Outcomes[0].Path)
}

func TestByUsageSkipsUnknownHistory(t *testing.T) {
	registry := buildRegistry(t, routes.Route[string]{Path: "/a", Loader: okLoader(nil)})
	scheduler := NewScheduler(registry)

	result := scheduler.ByUsage(context.Background(), []string{"/gone", "/gone", "/a"})

	assert.Equal(t, 1, result.Attempted())
	assert.Equal(t, []string{"/gone"}, result.Skipped)
}

func TestByUsageEmptyHistory(t *testing.T) {
	registry := buildRegistry(t, routes.Route[string]{Path: "/a", Loader: okLoader(nil)})

	result := NewScheduler(registry).ByUsage(context.Background(), nil)

	assert.Zero(t, result.Attempted())
}

func TestTopPaths(t *testing.T) {
	tests := []struct {
		name     string
		observed []string
		n        int
		want     []string
	}{
		{
			name:     "orders by frequency",
			observed: []string{"/a", "/b", "/a", "/c", "/b", "/a"},
			n:        3,
			want:     []string{"/a", "/b", "/c"},
		},
		{
			name:     "ties keep first seen order",
			observed: []string{"/x", "/y", "/z"},
			n:        2,
			want:     []string{"/x", "/y"},
		},
		{
			name:     "limit larger than unique paths",
			observed: []string{"/a", "/a", "/b"},
			n:        10,
			want:     []string{"/a", "/b"},
		},
		{
			name:     "zero limit",
			observed: []string{"/a"},
			n:        0,
			want:     nil,
		},
		{
			name:     "empty history",
			observed: nil,
			n:        3,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TopPaths(tt.observed, tt.n))
		})
	}
}

func TestOutcomeElapsed(t *testing.T) {
	registry := buildRegistry(t, routes.Route[string]{
		Path: "/slow",
		Loader: func(context.Context) (string, error) {
			time.Sleep(10 * time.Millisecond)
			return "ok", nil
		},
	})

	outcome := NewScheduler(registry).Path(context.Background(), "/slow")

	require.True(t, outcome.Succeeded())
	assert.Positive(t, outcome.Elapsed)
}
