package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/phrazzld/taskflow-api/internal/domain"
)

// Wire names of the task events.
const (
	NameTaskCreated = "taskCreate"
	NameTaskUpdated = "taskUpdated"
	NameTaskDeleted = "taskDeleted"
)

// Kind classifies an event.
type Kind string

// Event kinds.
const (
	KindCreated Kind = "created"
	KindUpdated Kind = "updated"
	KindDeleted Kind = "deleted"
)

// Event is a task mutation notification. The set is closed: only the types in
// this package implement it.
type Event interface {
	// Name is the wire name subscribers see.
	Name() string
	Kind() Kind
	// Payload is the value serialized as the envelope data.
	Payload() any
	isEvent()
}

// TaskCreated carries the full created task.
type TaskCreated struct {
	Task domain.Task
}

func (TaskCreated) Name() string   { return NameTaskCreated }
func (TaskCreated) Kind() Kind     { return KindCreated }
func (e TaskCreated) Payload() any { return e.Task }
func (TaskCreated) isEvent()       {}

// TaskUpdated carries the id plus exactly the fields that were supplied.
type TaskUpdated struct {
	Update domain.TaskUpdate
}

func (TaskUpdated) Name() string   { return NameTaskUpdated }
func (TaskUpdated) Kind() Kind     { return KindUpdated }
func (e TaskUpdated) Payload() any { return e.Update }
func (TaskUpdated) isEvent()       {}

// TaskDeleted carries the id of the removed task.
type TaskDeleted struct {
	ID string
}

func (TaskDeleted) Name() string   { return NameTaskDeleted }
func (TaskDeleted) Kind() Kind     { return KindDeleted }
func (e TaskDeleted) Payload() any { return e.ID }
func (TaskDeleted) isEvent()       {}

// Envelope is the wire form of an event: {"event": name, "data": payload}.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// NewEnvelope serializes e into its wire form.
func NewEnvelope(e Event) (Envelope, error) {
	data, err := json.Marshal(e.Payload())
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s payload: %w", e.Name(), err)
	}
	return Envelope{Event: e.Name(), Data: data}, nil
}

// Publisher accepts events for asynchronous delivery. Publish must not block
// on delivery and has no failure mode visible to the caller.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Subscriber receives every published event as an Envelope.
type Subscriber interface {
	Deliver(ctx context.Context, env Envelope) error
}

// SubscriberFunc adapts a function to the Subscriber interface.
type SubscriberFunc func(ctx context.Context, env Envelope) error

// Deliver calls f(ctx, env).
func (f SubscriberFunc) Deliver(ctx context.Context, env Envelope) error {
	return f(ctx, env)
}
