// Package preload warms lazily loaded route content ahead of navigation.
// A Scheduler fans preload requests out across the route registry's content
// units and reports per-path outcomes without letting one failure abort the
// rest of the batch.
package preload

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/campsight/campsight/internal/logging"
	"github.com/campsight/campsight/internal/routes"
)

// ErrUnknownPath is returned in an Outcome when a preload targets a path the
// registry does not know.
var ErrUnknownPath = errors.New("preload: unknown path")

// defaultUsageLimit caps how many paths a usage-history preload warms when
// WithUsageLimit is not given.
const defaultUsageLimit = 3

// Outcome is the result of preloading a single path.
type Outcome struct {
	Path    string
	Err     error
	Elapsed time.Duration
}

// Succeeded reports whether the path's content loaded.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// Result summarizes a preload batch. Outcomes follow the order in which the
// paths were scheduled; Skipped lists requested paths the registry does not
// know, in request order.
type Result struct {
	BatchID  string
	Outcomes []Outcome
	Skipped  []string
}

// Attempted returns how many paths were actually preloaded.
func (r Result) Attempted() int {
	return len(r.Outcomes)
}

// Succeeded returns how many attempted paths loaded.
func (r Result) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Succeeded() {
			n++
		}
	}
	return n
}

// Failed returns how many attempted paths did not load.
func (r Result) Failed() int {
	return r.Attempted() - r.Succeeded()
}

// Scheduler coordinates preload batches against one route registry.
type Scheduler[T any] struct {
	registry    *routes.Registry[T]
	concurrency int
	usageLimit  int
}

// Option customizes a Scheduler.
type Option[T any] func(*Scheduler[T])

// WithConcurrency bounds how many loads run at once during a batch.
// n <= 0 means unbounded, which is the default.
func WithConcurrency[T any](n int) Option[T] {
	return func(s *Scheduler[T]) {
		s.concurrency = n
	}
}

// WithUsageLimit sets how many of the most-visited paths ByUsage warms.
// n <= 0 keeps the default of 3.
func WithUsageLimit[T any](n int) Option[T] {
	return func(s *Scheduler[T]) {
		if n > 0 {
			s.usageLimit = n
		}
	}
}

// NewScheduler builds a Scheduler over registry.
func NewScheduler[T any](registry *routes.Registry[T], opts ...Option[T]) *Scheduler[T] {
	s := &Scheduler[T]{
		registry:   registry,
		usageLimit: defaultUsageLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Critical preloads every route the registry flags for preloading.
func (s *Scheduler[T]) Critical(ctx context.Context) Result {
	entries := s.registry.PreloadEntries()
	return s.run(ctx, "critical", entries, nil)
}

// Path preloads a single path. Unknown paths produce an Outcome carrying
// ErrUnknownPath rather than a panic, so speculative callers (navigation
// intent, hover) can fire and forget.
func (s *Scheduler[T]) Path(ctx context.Context, path string) Outcome {
	route, ok := s.registry.Find(path)
	if !ok {
		logging.FromContext(ctx).Warn().Ctx(ctx).
			Str("component", "preload").
			Str("path", path).
			Msg("preload requested for unknown path")
		return Outcome{Path: path, Err: fmt.Errorf("%w: %s", ErrUnknownPath, path)}
	}

	start := time.Now()
	err := route.Unit.Preload(ctx)
	outcome := Outcome{Path: route.Path, Err: err, Elapsed: time.Since(start)}

	logger := logging.FromContext(ctx)
	if err != nil {
		logger.Warn().Ctx(ctx).
			Str("component", "preload").
			Str("path", route.Path).
			Dur("elapsed", outcome.Elapsed).
			Err(err).
			Msg("preload failed")
	} else {
		logger.Debug().Ctx(ctx).
			Str("component", "preload").
			Str("path", route.Path).
			Dur("elapsed", outcome.Elapsed).
			Msg("preload complete")
	}
	return outcome
}

// Paths preloads the given paths concurrently. Paths the registry does not
// know are skipped (and listed in Result.Skipped); duplicates are collapsed
// onto their first occurrence. Every known path is attempted even when
// others fail.
func (s *Scheduler[T]) Paths(ctx context.Context, paths []string) Result {
	var (
		entries []routes.Entry[T]
		skipped []string
		seen    = make(map[string]bool, len(paths))
	)
	for _, path := range paths {
		route, ok := s.registry.Find(path)
		if !ok {
			logging.FromContext(ctx).Warn().Ctx(ctx).
				Str("component", "preload").
				Str("path", path).
				Msg("skipping unknown path")
			skipped = append(skipped, path)
			continue
		}
		if seen[route.Path] {
			continue
		}
		seen[route.Path] = true
		entries = append(entries, route)
	}

	return s.run(ctx, "paths", entries, skipped)
}

// ByUsage preloads the most frequently visited paths from the observed
// navigation history, up to the scheduler's usage limit.
func (s *Scheduler[T]) ByUsage(ctx context.Context, observed []string) Result {
	top := TopPaths(observed, s.usageLimit)
	logging.FromContext(ctx).Debug().Ctx(ctx).
		Str("component", "preload").
		Strs("paths", top).
		Int("observed", len(observed)).
		Msg("warming most visited paths")
	return s.Paths(ctx, top)
}

// run fans the batch out with errgroup. Each goroutine writes its own
// outcome slot, so no extra locking is needed.
func (s *Scheduler[T]) run(ctx context.Context, kind string, entries []routes.Entry[T], skipped []string) Result {
	batchID := ulid.Make().String()
	logger := logging.FromContext(ctx)
	start := time.Now()

	logger.Debug().Ctx(ctx).
		Str("component", "preload").
		Str("batch_id", batchID).
		Str("kind", kind).
		Int("paths", len(entries)).
		Int("skipped", len(skipped)).
		Msg("starting preload batch")

	outcomes := make([]Outcome, len(entries))

	g, gCtx := errgroup.WithContext(ctx)
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}

	for i, route := range entries {
		i, route := i, route // per-iteration copies for the goroutine (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			attemptStart := time.Now()
			err := route.Unit.Preload(gCtx)
			outcomes[i] = Outcome{Path: route.Path, Err: err, Elapsed: time.Since(attemptStart)}
			if err != nil {
				logger.Warn().Ctx(gCtx).
					Str("component", "preload").
					Str("batch_id", batchID).
					Str("path", route.Path).
					Err(err).
					Msg("preload failed")
			}
			// Always return nil - one failed view must not cancel the others.
			return nil
		})
	}

	// Wait for all goroutines to complete (errors are carried in outcomes).
	_ = g.Wait()

	result := Result{BatchID: batchID, Outcomes: outcomes, Skipped: skipped}
	logger.Info().Ctx(ctx).
		Str("component", "preload").
		Str("batch_id", batchID).
		Str("kind", kind).
		Int("attempted", result.Attempted()).
		Int("succeeded", result.Succeeded()).
		Int("failed", result.Failed()).
		Int("skipped", len(skipped)).
		Dur("elapsed", time.Since(start)).
		Msg("preload batch settled")

	return result
}

// TopPaths returns the n most frequent paths in observed, most visited
// first. Ties keep first-seen order, so a stable history yields a stable
// warm set.
func TopPaths(observed []string, n int) []string {
	if n <= 0 || len(observed) == 0 {
		return nil
	}

	counts := make(map[string]int, len(observed))
	var order []string
	for _, path := range observed {
		if counts[path] == 0 {
			order = append(order, path)
		}
		counts[path]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > n {
		order = order[:n]
	}
	return order
}
