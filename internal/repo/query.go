package repo

import (
	"strings"

	sq "github.com/Masterminds/squirrel"

	dom "github.com/centroidsol/todo-api/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var todoColumns = []string{"id", "title", "description", "completed", "created_at", "updated_at"}

// sortColumns maps the accepted sort-field names to trusted column
// identifiers. User input never reaches the ORDER BY clause directly;
// unknown names are rejected upstream with ErrInvalidArgument.
var sortColumns = map[string]string{
	dom.SortByID:        "id",
	dom.SortByTitle:     "title",
	dom.SortByCompleted: "completed",
	dom.SortByCreatedAt: "created_at",
	dom.SortByUpdatedAt: "updated_at",
}

// withFilters applies the list filter predicate to b. The count query
// and the page query both go through here so the reported total is
// always computed over the same predicate as the returned rows.
func withFilters(b sq.SelectBuilder, p dom.ListParams) sq.SelectBuilder {
	if p.Search != "" {
		pattern := "%" + p.Search + "%"
		b = b.Where(sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"description": pattern},
		})
	}
	if p.Completed != nil {
		b = b.Where(sq.Eq{"completed": *p.Completed})
	}
	return b
}

// buildCountQuery counts rows matching the filters, ignoring pagination.
func buildCountQuery(p dom.ListParams) (string, []any, error) {
	return withFilters(psql.Select("COUNT(*)").From("todos"), p).ToSql()
}

// buildListQuery selects one page of rows. Ties on the sort key are
// broken by id ASC so pagination is deterministic.
func buildListQuery(p dom.ListParams) (string, []any, error) {
	col := sortColumns[p.Sort]
	order := col + " " + strings.ToUpper(p.Order)
	if col != "id" {
		order += ", id ASC"
	}
	offset := uint64(p.Page-1) * uint64(p.PerPage)

	b := withFilters(psql.Select(todoColumns...).From("todos"), p).
		OrderBy(order).
		Limit(uint64(p.PerPage)).
		Offset(offset)
	return b.ToSql()
}
