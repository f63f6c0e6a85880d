package dto

import (
	"bytes"
	"encoding/json"
	"time"

	dom "github.com/centroidsol/todo-api/internal/domain"
)

// Optional is a JSON field that distinguishes absent, null and value.
// UnmarshalJSON only runs for keys present in the body, so Set is true
// exactly when the field was supplied; Value stays nil for JSON null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// Field converts to the domain patch representation.
func (o Optional[T]) Field() dom.Field[T] {
	return dom.Field[T]{Set: o.Set, Value: o.Value}
}

type CreateTodoRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Completed   bool    `json:"completed"`
}

// UpdateTodoRequest is a partial update: absent fields are untouched.
// "description": null (or "") clears the description.
type UpdateTodoRequest struct {
	Title       Optional[string] `json:"title"`
	Description Optional[string] `json:"description"`
	Completed   Optional[bool]   `json:"completed"`
}

// Patch maps the request onto the domain patch.
func (r UpdateTodoRequest) Patch() dom.TodoPatch {
	return dom.TodoPatch{
		Title:       r.Title.Field(),
		Description: r.Description.Field(),
		Completed:   r.Completed.Field(),
	}
}

type TodoResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListTodosResponse is the page envelope returned by GET /todos.
type ListTodosResponse struct {
	Data       []TodoResponse `json:"data"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PerPage    int            `json:"per_page"`
	TotalPages int            `json:"total_pages"`
}

type StatsResponse struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

type DeleteAllResponse struct {
	Deleted int `json:"deleted"`
}

func FromTodo(t dom.Todo) TodoResponse {
	return TodoResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func FromTodos(list []dom.Todo) []TodoResponse {
	out := make([]TodoResponse, len(list))
	for i := range list {
		out[i] = FromTodo(list[i])
	}
	return out
}

func FromListResult(res dom.ListResult) ListTodosResponse {
	return ListTodosResponse{
		Data:       FromTodos(res.Items),
		Total:      res.Total,
		Page:       res.Page,
		PerPage:    res.PerPage,
		TotalPages: res.TotalPages,
	}
}
