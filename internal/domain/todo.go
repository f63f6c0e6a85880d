package domain

import "time"

// Todo is the domain entity. Does not depend on Gin, Postgres or Redis.
type Todo struct {
	ID          int64
	Title       string
	Description *string
	Completed   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Field is an optional patch field with presence tracking. An unset
// field leaves the stored value untouched; a set field with a nil
// Value carries an explicit JSON null.
type Field[T any] struct {
	Set   bool
	Value *T
}

// SetField returns a set Field holding v.
func SetField[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: &v}
}

// NullField returns a set Field holding an explicit null.
func NullField[T any]() Field[T] {
	return Field[T]{Set: true}
}

// TodoPatch is a partial update. Only set fields are validated and
// applied; an empty patch is a no-op that does not touch updated_at.
type TodoPatch struct {
	Title       Field[string]
	Description Field[string]
	Completed   Field[bool]
}

// Empty reports whether no field was supplied.
func (p TodoPatch) Empty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Completed.Set
}

// Sort fields accepted by List. Anything else is rejected with
// ErrInvalidArgument rather than silently defaulted.
const (
	SortByID        = "id"
	SortByTitle     = "title"
	SortByCompleted = "completed"
	SortByCreatedAt = "created_at"
	SortByUpdatedAt = "updated_at"

	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// ValidSortField reports whether s names a sortable column.
func ValidSortField(s string) bool {
	switch s {
	case SortByID, SortByTitle, SortByCompleted, SortByCreatedAt, SortByUpdatedAt:
		return true
	}
	return false
}

// ValidSortOrder reports whether s is "asc" or "desc".
func ValidSortOrder(s string) bool {
	return s == SortOrderAsc || s == SortOrderDesc
}

// ListParams selects, orders and paginates todos.
type ListParams struct {
	Page    int
	PerPage int
	Sort    string
	Order   string

	// Search matches title OR description, case-insensitive substring.
	Search string
	// Completed filters by completion status when non-nil.
	Completed *bool
}

// ListResult is one page of todos plus pagination metadata. Total is
// counted over the same filter predicate as Items, ignoring pagination.
type ListResult struct {
	Items      []Todo
	Total      int
	Page       int
	PerPage    int
	TotalPages int
}

// Stats are aggregate counters over the unfiltered collection.
// Completed + Pending == Total.
type Stats struct {
	Total     int
	Completed int
	Pending   int
}
