package events_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope(t *testing.T) {
	t.Parallel()

	done := "DONE"
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		event    events.Event
		wantName string
		wantKind events.Kind
		wantWire string
	}{
		{
			name:     "created",
			event:    events.TaskCreated{Task: domain.Task{ID: "1", Title: "Buy milk", Status: "TODO", CreatedAt: created}},
			wantName: "taskCreate",
			wantKind: events.KindCreated,
			wantWire: `{"event":"taskCreate","data":{"id":"1","title":"Buy milk","status":"TODO","createdAt":"2025-03-01T12:00:00Z"}}`,
		},
		{
			name:     "updated carries only supplied fields",
			event:    events.TaskUpdated{Update: domain.TaskUpdate{ID: "1", TaskPatch: domain.TaskPatch{Status: &done}}},
			wantName: "taskUpdated",
			wantKind: events.KindUpdated,
			wantWire: `{"event":"taskUpdated","data":{"id":"1","status":"DONE"}}`,
		},
		{
			name:     "deleted carries the id",
			event:    events.TaskDeleted{ID: "1"},
			wantName: "taskDeleted",
			wantKind: events.KindDeleted,
			wantWire: `{"event":"taskDeleted","data":"1"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantName, tt.event.Name())
			assert.Equal(t, tt.wantKind, tt.event.Kind())

			env, err := events.NewEnvelope(tt.event)
			require.NoError(t, err)

			wire, err := json.Marshal(env)
			require.NoError(t, err)
			assert.JSONEq(t, tt.wantWire, string(wire))
		})
	}
}
