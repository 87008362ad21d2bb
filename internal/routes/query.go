package routes

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NavEntry is a navigation menu item.
type NavEntry struct {
	Path        string
	Title       string
	Description string
}

// Title returns the resolved title for path, or the registry's default title
// when the path is not registered.
func (r *Registry[T]) Title(path string) string {
	if route, ok := r.Find(path); ok {
		return route.Title
	}
	return r.defaultTitle
}

// Description returns the description for path, or "" when the path is not
// registered or carries none.
func (r *Registry[T]) Description(path string) string {
	if route, ok := r.Find(path); ok {
		return route.Description
	}
	return ""
}

// IsPreloadRoute reports whether path is registered and flagged for
// preloading.
func (r *Registry[T]) IsPreloadRoute(path string) bool {
	route, ok := r.Find(path)
	return ok && route.Preload
}

// NavigationEntries returns a menu entry for every non-parameterized route,
// in registration order. Parameterized paths cannot be navigated to without
// concrete values, so they are excluded.
func (r *Registry[T]) NavigationEntries() []NavEntry {
	var out []NavEntry
	for _, entry := range r.entries {
		if IsParameterized(entry.Path) {
			continue
		}
		out = append(out, NavEntry{
			Path:        entry.Path,
			Title:       entry.Title,
			Description: entry.Description,
		})
	}
	return out
}

// IsParameterized reports whether path contains a parameter segment such as
// ":id" or a wildcard "*".
func IsParameterized(path string) bool {
	for _, segment := range strings.Split(path, "/") {
		if strings.HasPrefix(segment, ":") || segment == "*" {
			return true
		}
	}
	return false
}

// deriveTitle builds a title from the last static segment of path, title
// cased with hyphens read as spaces. Paths with no static segment (the root,
// or all-parameter paths) get the fallback.
func deriveTitle(path, fallback string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		segment := segments[i]
		if segment == "" || strings.HasPrefix(segment, ":") || segment == "*" {
			continue
		}
		return cases.Title(language.English).String(strings.ReplaceAll(segment, "-", " "))
	}
	return fallback
}
