// Package store defines the document-store contract the task service depends
// on. Implementations assign identifiers, answer equality and ordering queries,
// and apply conditional field updates and deletes.
package store
