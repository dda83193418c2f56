package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskUpdateUnmarshal(t *testing.T) {
	t.Parallel()

	project := uuid.New()

	t.Run("absent keys stay unset", func(t *testing.T) {
		var u TaskUpdate
		require.NoError(t, json.Unmarshal([]byte(`{"title":"x"}`), &u))
		require.NotNil(t, u.Title)
		assert.False(t, u.Description.Set)
		assert.False(t, u.ProjectID.Set)
		assert.False(t, u.DueDate.Set)
	})

	t.Run("null marks the field for clearing", func(t *testing.T) {
		var u TaskUpdate
		require.NoError(t, json.Unmarshal([]byte(`{"project":null,"due_date":null}`), &u))
		assert.True(t, u.ProjectID.Set)
		assert.Nil(t, u.ProjectID.Value)
		assert.True(t, u.DueDate.Set)
		assert.Nil(t, u.DueDate.Value)
	})

	t.Run("values are parsed", func(t *testing.T) {
		var u TaskUpdate
		payload := `{"project":"` + project.String() + `","due_date":"2025-03-14T09:00:00Z","is_starred":true}`
		require.NoError(t, json.Unmarshal([]byte(payload), &u))
		require.NotNil(t, u.ProjectID.Value)
		assert.Equal(t, project, *u.ProjectID.Value)
		require.NotNil(t, u.DueDate.Value)
		assert.True(t, u.DueDate.Value.Equal(time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)))
		require.NotNil(t, u.IsStarred)
		assert.True(t, *u.IsStarred)
	})

	t.Run("malformed uuid fails", func(t *testing.T) {
		var u TaskUpdate
		assert.Error(t, json.Unmarshal([]byte(`{"project":"not-a-uuid"}`), &u))
	})
}

func TestDecodeBatchUpdate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		payload string
		wantErr error
		check   func(t *testing.T, u BatchUpdate)
	}{
		{
			name:    "status and starred",
			payload: `{"status":"completed","is_starred":true}`,
			check: func(t *testing.T, u BatchUpdate) {
				require.NotNil(t, u.Status)
				assert.Equal(t, TaskStatusCompleted, *u.Status)
				assert.True(t, u.CompletesTasks())
				require.NotNil(t, u.IsStarred)
				assert.True(t, *u.IsStarred)
			},
		},
		{
			name:    "project cleared",
			payload: `{"project":null}`,
			check: func(t *testing.T, u BatchUpdate) {
				assert.True(t, u.ProjectID.Set)
				assert.Nil(t, u.ProjectID.Value)
				assert.False(t, u.CompletesTasks())
			},
		},
		{name: "empty object", payload: `{}`, wantErr: ErrBatchNoFields},
		{name: "title not allowed", payload: `{"title":"hijack"}`, wantErr: ErrBatchFieldInvalid},
		{name: "due date not allowed", payload: `{"status":"todo","due_date":null}`, wantErr: ErrBatchFieldInvalid},
		{name: "bad status", payload: `{"status":"archived"}`, wantErr: ErrInvalidTaskStatus},
		{name: "bad priority", payload: `{"priority":"urgent"}`, wantErr: ErrInvalidTaskPriority},
		{name: "not an object", payload: `[1,2]`, wantErr: ErrInvalidFormat},
		{name: "wrong value type", payload: `{"is_deleted":"yes"}`, wantErr: ErrInvalidFormat},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u, err := DecodeBatchUpdate([]byte(tc.payload))
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.wantErr)
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			tc.check(t, u)
		})
	}
}

func TestDecodeBatchUpdateNamesRejectedField(t *testing.T) {
	t.Parallel()

	_, err := DecodeBatchUpdate([]byte(`{"order":3}`))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "order", verr.Field)
}

func TestBatchUpdateIsEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, BatchUpdate{}.IsEmpty())
	assert.False(t, BatchUpdate{ProjectID: Null[uuid.UUID]()}.IsEmpty())
	deleted := false
	assert.False(t, BatchUpdate{IsDeleted: &deleted}.IsEmpty())
}

func TestBatchUpdateFields(t *testing.T) {
	t.Parallel()

	assert.Empty(t, BatchUpdate{}.Fields())

	starred := true
	status := TaskStatusCompleted
	u := BatchUpdate{IsStarred: &starred, Status: &status, ProjectID: Null[uuid.UUID]()}
	assert.Equal(t, []string{"status", "project", "is_starred"}, u.Fields())
	assert.True(t, u.CompletesTasks())
}
