// Package service contains the task use cases. TaskService validates input,
// stamps creation times, delegates persistence to a store.TaskStore, rewrites
// timestamps for display through the presentation package, and publishes a
// change event after every successful mutation.
//
// Errors follow one rule: expected conditions surface as domain errors
// (ValidationError, NotFoundError) and every store failure is wrapped in a
// TaskServiceError that unwraps to domain.ErrStore, so callers can map
// outcomes with errors.Is without seeing store internals.
package service
