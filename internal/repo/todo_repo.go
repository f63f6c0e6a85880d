package repo

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	dom "github.com/centroidsol/todo-api/internal/domain"
)

// TodoRepo is the persistence contract for todos. Implementations
// return pgx.ErrNoRows for missing rows; the service layer maps that
// to the domain error taxonomy.
type TodoRepo interface {
	Create(ctx context.Context, t dom.Todo) (dom.Todo, error)
	GetByID(ctx context.Context, id int64) (dom.Todo, error)
	// List returns one page of rows plus the total count over the same
	// filter predicate, ignoring pagination. Params must be normalized.
	List(ctx context.Context, p dom.ListParams) ([]dom.Todo, int, error)
	// Update applies only the set fields of patch and refreshes
	// updated_at. An empty patch must not reach this method.
	Update(ctx context.Context, id int64, patch dom.TodoPatch) (dom.Todo, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (dom.Stats, error)
}

type PGTodoRepo struct {
	db *pgxpool.Pool
}

func NewPGTodoRepo(db *pgxpool.Pool) *PGTodoRepo {
	return &PGTodoRepo{db: db}
}

const returningColumns = "id, title, description, completed, created_at, updated_at"

func (r *PGTodoRepo) Create(ctx context.Context, t dom.Todo) (dom.Todo, error) {
	query := `
		INSERT INTO todos (title, description, completed)
		VALUES ($1, $2, $3)
		RETURNING ` + returningColumns
	var out dom.Todo
	err := r.db.QueryRow(ctx, query, t.Title, t.Description, t.Completed).Scan(
		&out.ID, &out.Title, &out.Description, &out.Completed,
		&out.CreatedAt, &out.UpdatedAt,
	)
	return out, err
}

func (r *PGTodoRepo) GetByID(ctx context.Context, id int64) (dom.Todo, error) {
	query := `
		SELECT id, title, description, completed, created_at, updated_at
		FROM todos WHERE id = $1`
	var t dom.Todo
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.Title, &t.Description, &t.Completed,
		&t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r *PGTodoRepo) List(ctx context.Context, p dom.ListParams) ([]dom.Todo, int, error) {
	countSQL, countArgs, err := buildCountQuery(p)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listSQL, listArgs, err := buildListQuery(p)
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list := make([]dom.Todo, 0)
	for rows.Next() {
		var t dom.Todo
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Completed,
			&t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, err
		}
		list = append(list, t)
	}
	return list, total, rows.Err()
}

func (r *PGTodoRepo) Update(ctx context.Context, id int64, patch dom.TodoPatch) (dom.Todo, error) {
	b := psql.Update("todos").Set("updated_at", sq.Expr("NOW()"))
	if patch.Title.Set {
		b = b.Set("title", patch.Title.Value)
	}
	if patch.Description.Set {
		b = b.Set("description", patch.Description.Value)
	}
	if patch.Completed.Set {
		b = b.Set("completed", patch.Completed.Value)
	}
	query, args, err := b.Where(sq.Eq{"id": id}).Suffix("RETURNING " + returningColumns).ToSql()
	if err != nil {
		return dom.Todo{}, err
	}

	var t dom.Todo
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&t.ID, &t.Title, &t.Description, &t.Completed,
		&t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r *PGTodoRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeleteAll removes every row in one statement, so the reported count
// matches exactly what was removed.
func (r *PGTodoRepo) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM todos`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PGTodoRepo) Stats(ctx context.Context) (dom.Stats, error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE completed)
		FROM todos`
	var s dom.Stats
	if err := r.db.QueryRow(ctx, query).Scan(&s.Total, &s.Completed); err != nil {
		return dom.Stats{}, err
	}
	s.Pending = s.Total - s.Completed
	return s, nil
}
