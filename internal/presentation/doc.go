// Package presentation renders stored timestamps for display: an absolute
// calendar date plus a relative, human-readable distance to now, in the
// caller's locale. Nothing produced here is persisted.
package presentation
