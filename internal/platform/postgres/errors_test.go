package postgres_test

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/taskflow-api/internal/platform/postgres"
	"github.com/phrazzld/taskflow-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func newPgError(code string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		TableName:      "tasks",
		ColumnName:     "title",
		ConstraintName: "tasks_status_check",
	}
}

type mockResult struct {
	rowsAffected int64
	err          error
}

func (m mockResult) LastInsertId() (int64, error) { return 0, m.err }
func (m mockResult) RowsAffected() (int64, error) { return m.rowsAffected, m.err }

func TestMapError(t *testing.T) {
	t.Parallel()

	generic := errors.New("connection reset")

	tests := []struct {
		name    string
		err     error
		wantNil bool
		wantIs  error
		wantRaw bool
	}{
		{name: "nil error", err: nil, wantNil: true},
		{name: "no rows", err: sql.ErrNoRows, wantIs: store.ErrNotFound},
		{name: "check violation", err: newPgError("23514"), wantIs: store.ErrInvalidEntity},
		{name: "not null violation", err: newPgError("23502"), wantIs: store.ErrInvalidEntity},
		{name: "invalid text representation", err: newPgError("22P02"), wantIs: store.ErrNotFound},
		{name: "unmapped pg error", err: newPgError("40001"), wantRaw: true},
		{name: "generic error", err: generic, wantRaw: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := postgres.MapError(tt.err)
			switch {
			case tt.wantNil:
				assert.NoError(t, got)
			case tt.wantRaw:
				assert.Equal(t, tt.err, got)
			default:
				assert.ErrorIs(t, got, tt.wantIs)
			}
		})
	}
}

func TestMapErrorKeepsPgError(t *testing.T) {
	t.Parallel()

	mapped := postgres.MapError(newPgError("23514"))

	var pgErr *pgconn.PgError
	assert.ErrorAs(t, mapped, &pgErr)
	assert.Equal(t, "tasks_status_check", pgErr.ConstraintName)
	assert.True(t, postgres.IsCheckConstraintViolation(mapped))
	assert.False(t, postgres.IsCheckConstraintViolation(newPgError("23502")))
}

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	assert.True(t, postgres.IsNotFoundError(sql.ErrNoRows))
	assert.True(t, postgres.IsNotFoundError(store.ErrTaskNotFound))
	assert.False(t, postgres.IsNotFoundError(errors.New("other")))
	assert.False(t, postgres.IsNotFoundError(nil))
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		result   sql.Result
		notFound error
		wantIs   error
		wantErr  bool
	}{
		{name: "one row", result: mockResult{rowsAffected: 1}},
		{name: "zero rows with sentinel", result: mockResult{}, notFound: store.ErrTaskNotFound, wantIs: store.ErrTaskNotFound, wantErr: true},
		{name: "zero rows without sentinel", result: mockResult{}, wantIs: store.ErrNotFound, wantErr: true},
		{name: "nil result", result: nil, wantErr: true},
		{name: "rows affected error", result: mockResult{err: errors.New("boom")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := postgres.CheckRowsAffected(tt.result, tt.notFound)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}
