package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptional_AbsentNullValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		wantSet  bool
		wantNil  bool
		wantText string
	}{
		{"absent", `{}`, false, true, ""},
		{"null", `{"description":null}`, true, true, ""},
		{"empty string", `{"description":""}`, true, false, ""},
		{"value", `{"description":"details"}`, true, false, "details"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var req UpdateTodoRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))

			assert.Equal(t, tt.wantSet, req.Description.Set)
			if tt.wantNil {
				assert.Nil(t, req.Description.Value)
			} else {
				require.NotNil(t, req.Description.Value)
				assert.Equal(t, tt.wantText, *req.Description.Value)
			}
		})
	}
}

func TestOptional_WrongType(t *testing.T) {
	t.Parallel()

	var req UpdateTodoRequest
	err := json.Unmarshal([]byte(`{"completed":"yes"}`), &req)
	assert.Error(t, err)
}

func TestUpdateTodoRequest_Patch(t *testing.T) {
	t.Parallel()

	var req UpdateTodoRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title":"new","completed":true}`), &req))

	patch := req.Patch()
	require.True(t, patch.Title.Set)
	assert.Equal(t, "new", *patch.Title.Value)
	require.True(t, patch.Completed.Set)
	assert.True(t, *patch.Completed.Value)
	assert.False(t, patch.Description.Set)
	assert.False(t, patch.Empty())

	var empty UpdateTodoRequest
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	assert.True(t, empty.Patch().Empty())
}
