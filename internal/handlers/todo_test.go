package handlers_test

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centroidsol/todo-api/internal/app"
	"github.com/centroidsol/todo-api/internal/dto"
	"github.com/centroidsol/todo-api/internal/handlers"
	"github.com/centroidsol/todo-api/internal/repo"
	"github.com/centroidsol/todo-api/internal/service"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewTodoService(repo.NewMemoryTodoRepo(), nil, logger)

	r := gin.New()
	api := r.Group("/api/v1")
	app.RegisterTodoRoutes(api, handlers.NewTodoHandler(svc))
	return r
}

func do(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

// Create -> complete -> filter -> delete -> gone.
func TestTodoLifecycle(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/todos", `{"title":"Buy milk"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[dto.TodoResponse](t, w)
	assert.Equal(t, "Buy milk", created.Title)
	assert.False(t, created.Completed)
	assert.Nil(t, created.Description)

	// Description must serialize as an explicit null, not be omitted.
	raw := decode[map[string]any](t, w)
	val, ok := raw["description"]
	assert.True(t, ok)
	assert.Nil(t, val)

	path := fmt.Sprintf("/api/v1/todos/%d", created.ID)

	w = do(t, r, http.MethodPut, path, `{"completed":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[dto.TodoResponse](t, w)
	assert.True(t, updated.Completed)
	assert.Equal(t, "Buy milk", updated.Title)

	w = do(t, r, http.MethodGet, "/api/v1/todos?completed=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[dto.ListTodosResponse](t, w)
	require.Len(t, list.Data, 1)
	assert.Equal(t, created.ID, list.Data[0].ID)

	w = do(t, r, http.MethodDelete, path, "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateValidation(t *testing.T) {
	r := newRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{}`},
		{"empty title", `{"title":""}`},
		{"whitespace title", `{"title":"   "}`},
		{"title 256 chars", fmt.Sprintf(`{"title":%q}`, strings.Repeat("a", 256))},
		{"malformed json", `{"title":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/api/v1/todos", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	// Nothing was persisted.
	w := do(t, r, http.MethodGet, "/api/v1/todos", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[dto.ListTodosResponse](t, w)
	assert.Zero(t, list.Total)
}

func TestListEnvelope(t *testing.T) {
	r := newRouter(t)

	for i := 0; i < 5; i++ {
		w := do(t, r, http.MethodPost, "/api/v1/todos", fmt.Sprintf(`{"title":"task %d"}`, i))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := do(t, r, http.MethodGet, "/api/v1/todos?page=2&per_page=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[dto.ListTodosResponse](t, w)
	assert.Equal(t, 5, list.Total)
	assert.Equal(t, 2, list.Page)
	assert.Equal(t, 2, list.PerPage)
	assert.Equal(t, 3, list.TotalPages)
	assert.Len(t, list.Data, 2)

	// Envelope keys use snake_case.
	raw := decode[map[string]any](t, w)
	for _, key := range []string{"data", "total", "page", "per_page", "total_pages"} {
		assert.Contains(t, raw, key)
	}
}

func TestListBadQueryParams(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/todos?sort=bogus", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/todos?order=sideways", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/todos?completed=maybe", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Out-of-range pagination clamps instead of failing.
	w = do(t, r, http.MethodGet, "/api/v1/todos?page=-1&per_page=9999", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[dto.ListTodosResponse](t, w)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 20, list.PerPage)
}

func TestBadID(t *testing.T) {
	r := newRouter(t)

	for _, path := range []string{"/api/v1/todos/abc", "/api/v1/todos/0", "/api/v1/todos/-7"} {
		w := do(t, r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestUpdateDescriptionNullClears(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/todos", `{"title":"task","description":"details"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[dto.TodoResponse](t, w)
	require.NotNil(t, created.Description)

	path := fmt.Sprintf("/api/v1/todos/%d", created.ID)
	w = do(t, r, http.MethodPatch, path, `{"description":null}`)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[dto.TodoResponse](t, w)
	assert.Nil(t, updated.Description)
	assert.Equal(t, "task", updated.Title)
}

func TestUpdateNullTitleRejected(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/todos", `{"title":"task"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[dto.TodoResponse](t, w)

	path := fmt.Sprintf("/api/v1/todos/%d", created.ID)
	w = do(t, r, http.MethodPut, path, `{"title":null}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateMissingTodo(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodPut, "/api/v1/todos/12345", `{"completed":true}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteAllAndStats(t *testing.T) {
	r := newRouter(t)

	for i := 0; i < 4; i++ {
		body := fmt.Sprintf(`{"title":"task %d","completed":%t}`, i, i%2 == 0)
		w := do(t, r, http.MethodPost, "/api/v1/todos", body)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := do(t, r, http.MethodGet, "/api/v1/todos/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[dto.StatsResponse](t, w)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Completed)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, stats.Total, stats.Completed+stats.Pending)

	w = do(t, r, http.MethodDelete, "/api/v1/todos/delete-all", "")
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[dto.DeleteAllResponse](t, w)
	assert.Equal(t, 4, res.Deleted)

	// A second reset on the empty store still succeeds.
	w = do(t, r, http.MethodDelete, "/api/v1/todos/delete-all", "")
	require.Equal(t, http.StatusOK, w.Code)
	res = decode[dto.DeleteAllResponse](t, w)
	assert.Zero(t, res.Deleted)

	w = do(t, r, http.MethodGet, "/api/v1/todos/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	stats = decode[dto.StatsResponse](t, w)
	assert.Zero(t, stats.Total)
}

func TestSearchQuery(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/todos", `{"title":"Buy milk"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, r, http.MethodPost, "/api/v1/todos", `{"title":"Call mom","description":"ask about milk"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, r, http.MethodPost, "/api/v1/todos", `{"title":"Walk the dog"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/todos?search=milk", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[dto.ListTodosResponse](t, w)
	assert.Equal(t, 2, list.Total)
	assert.Len(t, list.Data, 2)
}
