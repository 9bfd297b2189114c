package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayload() json.RawMessage {
	return json.RawMessage(`{"job_id": 42}`)
}

func TestNewTaskRecord(t *testing.T) {
	t.Parallel()

	t.Run("creates pending record with fresh ID", func(t *testing.T) {
		record, err := NewTaskRecord(TaskKindAnalysis, validPayload())

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, record.ID)
		assert.Equal(t, TaskKindAnalysis, record.Kind)
		assert.Equal(t, TaskStatusPending, record.Status)
		assert.Equal(t, 0, record.Progress)
		assert.Empty(t, record.Result)
		assert.Empty(t, record.ErrorMessage)
		assert.False(t, record.CreatedAt.IsZero())
		assert.Equal(t, record.CreatedAt, record.UpdatedAt)
	})

	t.Run("generates distinct IDs", func(t *testing.T) {
		first, err := NewTaskRecord(TaskKindChat, validPayload())
		require.NoError(t, err)
		second, err := NewTaskRecord(TaskKindChat, validPayload())
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		_, err := NewTaskRecord(TaskKind("TRANSLATION"), validPayload())
		assert.ErrorIs(t, err, ErrInvalidTaskKind)
	})

	t.Run("rejects empty payload", func(t *testing.T) {
		_, err := NewTaskRecord(TaskKindAnalysis, nil)
		assert.ErrorIs(t, err, ErrEmptyTaskPayload)
	})
}

func TestTaskRecordValidate(t *testing.T) {
	t.Parallel()

	valid := TaskRecord{
		ID:      uuid.New(),
		Kind:    TaskKindGeneration,
		Status:  TaskStatusRunning,
		Payload: validPayload(),
	}

	require.NoError(t, valid.Validate())

	t.Run("empty ID", func(t *testing.T) {
		record := valid
		record.ID = uuid.Nil
		assert.ErrorIs(t, record.Validate(), ErrEmptyTaskID)
	})

	t.Run("invalid status", func(t *testing.T) {
		record := valid
		record.Status = TaskStatus("PAUSED")
		assert.ErrorIs(t, record.Validate(), ErrInvalidTaskState)
	})

	t.Run("progress out of range", func(t *testing.T) {
		record := valid
		record.Progress = 101
		assert.ErrorIs(t, record.Validate(), ErrInvalidProgress)

		record.Progress = -1
		assert.ErrorIs(t, record.Validate(), ErrInvalidProgress)
	})
}

func TestTaskStatusIsTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, TaskStatusPending.IsTerminal())
	assert.False(t, TaskStatusRunning.IsTerminal())
	assert.True(t, TaskStatusCompleted.IsTerminal())
	assert.True(t, TaskStatusFailed.IsTerminal())
	assert.True(t, TaskStatusCancelled.IsTerminal())
}

func TestTaskStatusCanTransitionTo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		from    TaskStatus
		to      TaskStatus
		allowed bool
	}{
		{"pending to running", TaskStatusPending, TaskStatusRunning, true},
		{"pending to completed skips running", TaskStatusPending, TaskStatusCompleted, true},
		{"pending to failed skips running", TaskStatusPending, TaskStatusFailed, true},
		{"pending to cancelled", TaskStatusPending, TaskStatusCancelled, true},
		{"running stays running on progress", TaskStatusRunning, TaskStatusRunning, true},
		{"running to completed", TaskStatusRunning, TaskStatusCompleted, true},
		{"running to failed", TaskStatusRunning, TaskStatusFailed, true},
		{"running to cancelled", TaskStatusRunning, TaskStatusCancelled, true},
		{"completed is terminal", TaskStatusCompleted, TaskStatusRunning, false},
		{"completed never becomes failed", TaskStatusCompleted, TaskStatusFailed, false},
		{"failed never becomes completed", TaskStatusFailed, TaskStatusCompleted, false},
		{"cancelled never resumes", TaskStatusCancelled, TaskStatusRunning, false},
		{"running cannot return to pending", TaskStatusRunning, TaskStatusPending, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestIsValidTaskKind(t *testing.T) {
	t.Parallel()

	for _, kind := range []TaskKind{TaskKindAnalysis, TaskKindGeneration, TaskKindEvaluation, TaskKindChat} {
		assert.True(t, IsValidTaskKind(kind))
	}

	assert.False(t, IsValidTaskKind(TaskKind("")))
	assert.False(t, IsValidTaskKind(TaskKind("analysis")), "kind values are uppercase")
}
