package repo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	dom "github.com/centroidsol/todo-api/internal/domain"
)

// MemoryTodoRepo is an in-memory TodoRepo with the same contract as
// PGTodoRepo: monotonic never-reused ids, pgx.ErrNoRows for missing
// rows, updated_at refresh on every applied patch. Used by tests and
// local development; not safe to share across processes.
type MemoryTodoRepo struct {
	mu     sync.Mutex
	todos  map[int64]dom.Todo
	nextID int64
	// clock advances on every write so updated_at strictly increases
	// even when the wall clock does not.
	clock time.Time
}

func NewMemoryTodoRepo() *MemoryTodoRepo {
	return &MemoryTodoRepo{
		todos:  make(map[int64]dom.Todo),
		nextID: 1,
		clock:  time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (r *MemoryTodoRepo) now() time.Time {
	r.clock = r.clock.Add(time.Microsecond)
	return r.clock
}

func (r *MemoryTodoRepo) Create(_ context.Context, t dom.Todo) (dom.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	t.ID = r.nextID
	r.nextID++
	t.CreatedAt = now
	t.UpdatedAt = now
	r.todos[t.ID] = t
	return t, nil
}

func (r *MemoryTodoRepo) GetByID(_ context.Context, id int64) (dom.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.todos[id]
	if !ok {
		return dom.Todo{}, pgx.ErrNoRows
	}
	return t, nil
}

func (r *MemoryTodoRepo) List(_ context.Context, p dom.ListParams) ([]dom.Todo, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]dom.Todo, 0, len(r.todos))
	for _, t := range r.todos {
		if matches(t, p) {
			matched = append(matched, t)
		}
	}
	total := len(matched)

	sortTodos(matched, p.Sort, p.Order)

	start := (p.Page - 1) * p.PerPage
	if start > total {
		start = total
	}
	end := start + p.PerPage
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *MemoryTodoRepo) Update(_ context.Context, id int64, patch dom.TodoPatch) (dom.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.todos[id]
	if !ok {
		return dom.Todo{}, pgx.ErrNoRows
	}
	if patch.Title.Set {
		t.Title = *patch.Title.Value
	}
	if patch.Description.Set {
		t.Description = patch.Description.Value
	}
	if patch.Completed.Set {
		t.Completed = *patch.Completed.Value
	}
	t.UpdatedAt = r.now()
	r.todos[id] = t
	return t, nil
}

func (r *MemoryTodoRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.todos[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.todos, id)
	return nil
}

func (r *MemoryTodoRepo) DeleteAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := int64(len(r.todos))
	r.todos = make(map[int64]dom.Todo)
	return n, nil
}

func (r *MemoryTodoRepo) Stats(_ context.Context) (dom.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var s dom.Stats
	for _, t := range r.todos {
		s.Total++
		if t.Completed {
			s.Completed++
		}
	}
	s.Pending = s.Total - s.Completed
	return s, nil
}

func matches(t dom.Todo, p dom.ListParams) bool {
	if p.Completed != nil && t.Completed != *p.Completed {
		return false
	}
	if p.Search != "" {
		needle := strings.ToLower(p.Search)
		if strings.Contains(strings.ToLower(t.Title), needle) {
			return true
		}
		return t.Description != nil && strings.Contains(strings.ToLower(*t.Description), needle)
	}
	return true
}

func sortTodos(list []dom.Todo, field, order string) {
	desc := order == dom.SortOrderDesc
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		var less, equal bool
		switch field {
		case dom.SortByTitle:
			less, equal = a.Title < b.Title, a.Title == b.Title
		case dom.SortByCompleted:
			less, equal = !a.Completed && b.Completed, a.Completed == b.Completed
		case dom.SortByUpdatedAt:
			less, equal = a.UpdatedAt.Before(b.UpdatedAt), a.UpdatedAt.Equal(b.UpdatedAt)
		case dom.SortByID:
			less, equal = a.ID < b.ID, false
		default:
			less, equal = a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
		}
		if equal {
			// Ties break by id ascending regardless of order.
			return a.ID < b.ID
		}
		if desc {
			return !less
		}
		return less
	})
}
