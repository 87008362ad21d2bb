// Package lazyload provides a memoizing, single-flight loader for view
// content. A Unit wraps a loader function and guarantees it runs at most once
// per attempt no matter how many callers request the content concurrently,
// with a bounded retry budget once attempts start failing.
package lazyload

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/campsight/campsight/internal/logging"
)

// ErrRetriesExhausted is returned by Request and Preload once every attempt
// in the retry budget has failed. The last loader error is wrapped alongside
// it. Reset restores the budget.
var ErrRetriesExhausted = errors.New("lazyload: retry budget exhausted")

// Loader produces the content for a Unit. It is invoked lazily, at most once
// per attempt, and must be safe to call again after returning an error.
type Loader[T any] func(ctx context.Context) (T, error)

// State describes where a Unit is in its load lifecycle.
type State int

// Unit lifecycle states. A Unit starts Unloaded, moves to Loading when the
// first Request or Preload arrives, then settles Loaded or Failed. Failed
// units re-enter Loading on the next Request while retries remain.
const (
	StateUnloaded State = iota
	StateLoading
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Options configures a Unit.
type Options[T any] struct {
	// Fallback is returned by Content until a load succeeds, and alongside
	// errors from Request.
	Fallback T

	// Retries is the number of additional attempts allowed after the first
	// failure. The loader runs at most 1+Retries times between Resets.
	// Negative values are treated as 0.
	Retries int

	// Delay is a rendering hint: how long a caller should wait before
	// showing Fallback in place of in-flight content. The Unit stores it
	// verbatim for FallbackDelay; it never delays loading.
	Delay time.Duration
}

// attempt carries the outcome of a single loader invocation. Waiters read
// content and err only after done is closed.
type attempt[T any] struct {
	done    chan struct{}
	content T
	err     error
}

// Unit is a lazily loaded, memoized value of type T. The zero value is not
// usable; construct with New. All methods are safe for concurrent use.
type Unit[T any] struct {
	loader   Loader[T]
	fallback T
	retries  int
	delay    time.Duration

	attempts atomic.Int64

	mu          sync.Mutex
	state       State
	content     T
	err         error
	retriesLeft int
	current     *attempt[T]
}

// New builds a Unit around loader. It panics on a nil loader, which is a
// programming error rather than a runtime condition.
func New[T any](loader Loader[T], opts Options[T]) *Unit[T] {
	if loader == nil {
		panic("lazyload: New called with nil loader")
	}

	retries := opts.Retries
	if retries < 0 {
		retries = 0
	}

	return &Unit[T]{
		loader:      loader,
		fallback:    opts.Fallback,
		retries:     retries,
		delay:       opts.Delay,
		state:       StateUnloaded,
		retriesLeft: retries,
	}
}

// Request returns the unit's content, loading it on first use. Concurrent
// callers during an in-flight load join that attempt and share its outcome.
// After a failure, the next Request consumes one retry and starts a fresh
// attempt; once the budget is spent, Request fails immediately without
// invoking the loader.
//
// Cancelling ctx abandons the wait, not the load: an initiated attempt runs
// to completion and settles the unit for future callers.
func (u *Unit[T]) Request(ctx context.Context) (T, error) {
	u.mu.Lock()

	switch u.state {
	case StateLoaded:
		content := u.content
		u.mu.Unlock()
		return content, nil

	case StateLoading:
		att := u.current
		u.mu.Unlock()
		return u.await(ctx, att)

	case StateFailed:
		if u.retriesLeft <= 0 {
			err := fmt.Errorf("%w: %w", ErrRetriesExhausted, u.err)
			u.mu.Unlock()
			return u.fallback, err
		}
		u.retriesLeft--
		att := u.begin(ctx)
		u.mu.Unlock()
		return u.await(ctx, att)

	default: // StateUnloaded
		att := u.begin(ctx)
		u.mu.Unlock()
		return u.await(ctx, att)
	}
}

// Preload runs the same load path as Request, discarding the content. It
// exists so schedulers can warm units and treat the error as advisory.
func (u *Unit[T]) Preload(ctx context.Context) error {
	_, err := u.Request(ctx)
	return err
}

// begin transitions the unit to Loading and starts the loader in its own
// goroutine. Must be called with u.mu held.
func (u *Unit[T]) begin(ctx context.Context) *attempt[T] {
	att := &attempt[T]{done: make(chan struct{})}
	u.state = StateLoading
	u.current = att

	attemptNo := u.attempts.Inc()

	// WithoutCancel keeps the caller's context values (logger, trace ID)
	// while detaching the load from the caller's lifetime.
	go u.run(context.WithoutCancel(ctx), att, attemptNo)

	return att
}

// run executes one loader invocation, applies its outcome to the unit, and
// only then wakes the waiters. The ordering guarantees that once Request
// returns, State and Err already reflect the settled attempt.
func (u *Unit[T]) run(ctx context.Context, att *attempt[T], attemptNo int64) {
	logger := logging.FromContext(ctx)
	logger.Debug().Ctx(ctx).
		Str("component", "lazyload").
		Int64("attempt", attemptNo).
		Msg("loading content")

	att.content, att.err = u.loader(ctx)

	u.applyOutcome(ctx, att, attemptNo)
	close(att.done)
}

// applyOutcome moves the unit to Loaded or Failed based on att, unless a
// Reset replaced the in-flight attempt in the meantime.
func (u *Unit[T]) applyOutcome(ctx context.Context, att *attempt[T], attemptNo int64) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.current != att {
		// Reset raced the load. Waiters on this attempt still observe its
		// outcome, but the unit itself no longer reflects it.
		return
	}
	u.current = nil

	logger := logging.FromContext(ctx)
	if att.err != nil {
		u.state = StateFailed
		u.err = att.err
		logger.Warn().Ctx(ctx).
			Str("component", "lazyload").
			Int64("attempt", attemptNo).
			Int("retries_left", u.retriesLeft).
			Err(att.err).
			Msg("content load failed")
		return
	}

	u.state = StateLoaded
	u.content = att.content
	u.err = nil
	logger.Debug().Ctx(ctx).
		Str("component", "lazyload").
		Int64("attempt", attemptNo).
		Msg("content loaded")
}

// await blocks until att settles or ctx is done, whichever comes first.
func (u *Unit[T]) await(ctx context.Context, att *attempt[T]) (T, error) {
	select {
	case <-ctx.Done():
		return u.fallback, ctx.Err()
	case <-att.done:
		if att.err != nil {
			return u.fallback, att.err
		}
		return att.content, nil
	}
}

// Content returns the loaded content, or the configured fallback while the
// unit is unloaded, loading, or failed. It never blocks and never triggers
// a load.
func (u *Unit[T]) Content() T {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.state == StateLoaded {
		return u.content
	}
	return u.fallback
}

// Fallback returns the configured fallback content.
func (u *Unit[T]) Fallback() T {
	return u.fallback
}

// FallbackDelay returns the configured delay hint for renderers. See
// Options.Delay.
func (u *Unit[T]) FallbackDelay() time.Duration {
	return u.delay
}

// State returns the unit's current lifecycle state.
func (u *Unit[T]) State() State {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// Err returns the error from the most recent failed attempt, or nil when the
// unit has never failed or has since loaded.
func (u *Unit[T]) Err() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.err
}

// RetriesLeft returns how many retries remain in the budget.
func (u *Unit[T]) RetriesLeft() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.retriesLeft
}

// Attempts returns the total number of loader invocations over the unit's
// lifetime. Reset does not clear it.
func (u *Unit[T]) Attempts() int64 {
	return u.attempts.Load()
}

// Reset returns the unit to Unloaded, clears memoized content and error, and
// restores the full retry budget. An in-flight attempt is orphaned: its
// waiters still receive its outcome, but the unit ignores it.
func (u *Unit[T]) Reset() {
	u.mu.Lock()
	defer u.mu.Unlock()

	var zero T
	u.state = StateUnloaded
	u.content = zero
	u.err = nil
	u.retriesLeft = u.retries
	u.current = nil
}
