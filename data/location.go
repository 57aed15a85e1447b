// Package data holds the small immutable value types that name targets in
// the generated command bundle: namespaced resource paths and the
// scoreboard registers within them.
package data

import "fmt"

// ResourceLocation is a namespaced path of the form "<namespace>:<path>".
// It is immutable; every method returns a new value or a plain string.
type ResourceLocation struct {
	namespace string
	path      string
}

// NewResourceLocation builds a location from its namespace and path parts.
func NewResourceLocation(namespace, path string) ResourceLocation {
	return ResourceLocation{namespace: namespace, path: path}
}

// Namespace returns the location's namespace component.
func (r ResourceLocation) Namespace() string { return r.namespace }

// Path returns the location's path component.
func (r ResourceLocation) Path() string { return r.path }

// String renders the canonical "<namespace>:<path>" form, used for
// function call targets and objective names.
func (r ResourceLocation) String() string {
	return fmt.Sprintf("%s:%s", r.namespace, r.path)
}

// Dotted renders the location with "." in place of ":", the form used
// when a resource location is embedded as the scoreboard half of a
// ScoreboardEntry (e.g. a function's own local-variable namespace, or a
// call target's parameter slots).
func (r ResourceLocation) Dotted() string {
	return fmt.Sprintf("%s.%s", r.namespace, r.path)
}

// WithPath returns a copy of r with a different path, same namespace.
func (r ResourceLocation) WithPath(path string) ResourceLocation {
	return ResourceLocation{namespace: r.namespace, path: path}
}

// Equal reports whether two locations name the same namespace and path.
func (r ResourceLocation) Equal(other ResourceLocation) bool {
	return r.namespace == other.namespace && r.path == other.path
}
