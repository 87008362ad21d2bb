// Package routes holds the immutable route table for the CampSight
// dashboard. Every route declares a path, display metadata, and a deferred
// content loader; building the registry wraps each loader in a lazy unit so
// the navigation and preload layers share one memoized load per route.
package routes

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campsight/campsight/internal/lazyload"
)

// Construction errors. New wraps them with the offending path.
var (
	ErrDuplicatePath = errors.New("routes: duplicate path")
	ErrInvalidPath   = errors.New("routes: invalid path")
	ErrMissingLoader = errors.New("routes: route has no loader")
)

// Route declares one dashboard destination for registration.
type Route[T any] struct {
	// Path is the route's unique path, starting with "/". Segments starting
	// with ":" are parameters (e.g. "/campaigns/:id").
	Path string

	// Title is the human-readable name. When empty, it is derived from the
	// last static path segment.
	Title string

	// Description is optional explanatory text shown in navigation aids.
	Description string

	// Preload marks the route as critical: preload schedulers warm it ahead
	// of navigation.
	Preload bool

	// Loader produces the route's content. Required; New wraps it in a lazy
	// unit together with the options below.
	Loader lazyload.Loader[T]

	// Fallback is rendered while the route's content has not loaded.
	Fallback T

	// Retries is the unit's retry budget after a failed load.
	Retries int

	// Delay is the unit's fallback display hint. See lazyload.Options.Delay.
	Delay time.Duration
}

// Entry is a registered route: the declaration's resolved metadata plus the
// lazy content unit built from its loader.
type Entry[T any] struct {
	Path        string
	Title       string
	Description string
	Preload     bool

	// Unit is the route's lazily loaded content.
	Unit *lazyload.Unit[T]
}

// Registry is an immutable, ordered collection of routes. Iteration order is
// always registration order. All methods are safe for concurrent use since
// nothing mutates after New.
type Registry[T any] struct {
	entries      []Entry[T]
	byPath       map[string]int
	defaultTitle string
}

// Option customizes a Registry at construction.
type Option[T any] func(*Registry[T])

// WithDefaultTitle sets the title reported for unknown paths and for routes
// whose title cannot be derived (such as "/").
func WithDefaultTitle[T any](title string) Option[T] {
	return func(r *Registry[T]) {
		r.defaultTitle = title
	}
}

// New builds a Registry from defs, wrapping every loader in a lazy unit.
// Paths are normalized (trailing slashes stripped) and must be unique; every
// route must carry a loader.
func New[T any](defs []Route[T], opts ...Option[T]) (*Registry[T], error) {
	r := &Registry[T]{
		entries: make([]Entry[T], 0, len(defs)),
		byPath:  make(map[string]int, len(defs)),
	}
	for _, opt := range opts {
		opt(r)
	}

	for i, def := range defs {
		path, err := normalize(def.Path)
		if err != nil {
			return nil, fmt.Errorf("route at index %d: %w", i, err)
		}
		if _, exists := r.byPath[path]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePath, path)
		}
		if def.Loader == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingLoader, path)
		}

		title := def.Title
		if title == "" {
			title = deriveTitle(path, r.defaultTitle)
		}

		r.byPath[path] = len(r.entries)
		r.entries = append(r.entries, Entry[T]{
			Path:        path,
			Title:       title,
			Description: def.Description,
			Preload:     def.Preload,
			Unit: lazyload.New(def.Loader, lazyload.Options[T]{
				Fallback: def.Fallback,
				Retries:  def.Retries,
				Delay:    def.Delay,
			}),
		})
	}

	return r, nil
}

// Find returns the route registered under path. The boolean reports whether
// the path is known.
func (r *Registry[T]) Find(path string) (Entry[T], bool) {
	normalized, err := normalize(path)
	if err != nil {
		var zero Entry[T]
		return zero, false
	}
	idx, ok := r.byPath[normalized]
	if !ok {
		var zero Entry[T]
		return zero, false
	}
	return r.entries[idx], true
}

// Len returns the number of registered routes.
func (r *Registry[T]) Len() int {
	return len(r.entries)
}

// All returns a copy of every route in registration order.
func (r *Registry[T]) All() []Entry[T] {
	out := make([]Entry[T], len(r.entries))
	copy(out, r.entries)
	return out
}

// Paths returns every registered path in registration order.
func (r *Registry[T]) Paths() []string {
	out := make([]string, len(r.entries))
	for i, entry := range r.entries {
		out[i] = entry.Path
	}
	return out
}

// PreloadEntries returns the routes flagged for preloading, in registration
// order.
func (r *Registry[T]) PreloadEntries() []Entry[T] {
	var out []Entry[T]
	for _, entry := range r.entries {
		if entry.Preload {
			out = append(out, entry)
		}
	}
	return out
}

// normalize validates path and strips trailing slashes (the root path "/"
// is left alone).
func normalize(path string) (string, error) {
	if path == "" || !strings.HasPrefix(path, "/") {
		return "", fmt.Errorf("%w: %q must start with /", ErrInvalidPath, path)
	}
	for len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}
	return path, nil
}
