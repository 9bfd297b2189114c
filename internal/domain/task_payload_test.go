package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTaskPayload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		kind    TaskKind
		payload string
		wantErr error
	}{
		{
			name:    "valid analysis payload",
			kind:    TaskKindAnalysis,
			payload: `{"job_id": 7, "analysis_type": "keywords"}`,
		},
		{
			name:    "analysis without job ID",
			kind:    TaskKindAnalysis,
			payload: `{"analysis_type": "keywords"}`,
			wantErr: ErrMissingJobID,
		},
		{
			name:    "valid generation payload",
			kind:    TaskKindGeneration,
			payload: `{"company_id": 3, "job_description": "backend engineer"}`,
		},
		{
			name:    "generation without company ID",
			kind:    TaskKindGeneration,
			payload: `{"job_description": "backend engineer"}`,
			wantErr: ErrMissingCompanyID,
		},
		{
			name:    "valid evaluation payload",
			kind:    TaskKindEvaluation,
			payload: `{"job_id": 9, "criteria": "seniority"}`,
		},
		{
			name:    "evaluation with negative job ID",
			kind:    TaskKindEvaluation,
			payload: `{"job_id": -1}`,
			wantErr: ErrMissingJobID,
		},
		{
			name:    "valid chat payload",
			kind:    TaskKindChat,
			payload: `{"session_id": "abc", "message": "hello"}`,
		},
		{
			name:    "chat without session",
			kind:    TaskKindChat,
			payload: `{"message": "hello"}`,
			wantErr: ErrMissingSessionID,
		},
		{
			name:    "chat without message",
			kind:    TaskKindChat,
			payload: `{"session_id": "abc"}`,
			wantErr: ErrMissingMessage,
		},
		{
			name:    "unknown kind",
			kind:    TaskKind("SUMMARY"),
			payload: `{}`,
			wantErr: ErrInvalidTaskKind,
		},
		{
			name:    "empty payload",
			kind:    TaskKindAnalysis,
			payload: ``,
			wantErr: ErrEmptyTaskPayload,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTaskPayload(tc.kind, json.RawMessage(tc.payload))
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}

	t.Run("malformed JSON", func(t *testing.T) {
		err := ValidateTaskPayload(TaskKindAnalysis, json.RawMessage(`{"job_id":`))
		assert.Error(t, err)
	})

	t.Run("wrong shape decodes but fails validation", func(t *testing.T) {
		// A chat body submitted as an analysis task has no job_id.
		err := ValidateTaskPayload(TaskKindAnalysis, json.RawMessage(`{"session_id": "abc", "message": "hi"}`))
		assert.ErrorIs(t, err, ErrMissingJobID)
	})
}
