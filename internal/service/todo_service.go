package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/singleflight"

	"github.com/centroidsol/todo-api/internal/cache"
	dom "github.com/centroidsol/todo-api/internal/domain"
	"github.com/centroidsol/todo-api/internal/repo"
)

const (
	titleMaxLen       = 255
	descriptionMaxLen = 1000

	defaultPage    = 1
	defaultPerPage = 20
	maxPerPage     = 100
)

// TodoService owns validation, default/clamp policy and the error
// taxonomy on top of TodoRepo.
type TodoService struct {
	repo   repo.TodoRepo
	cache  *cache.TodoCache
	logger *slog.Logger
	sf     singleflight.Group
}

// NewTodoService creates a TodoService. If c is nil, caching is disabled.
func NewTodoService(r repo.TodoRepo, c *cache.TodoCache, logger *slog.Logger) *TodoService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TodoService{repo: r, cache: c, logger: logger}
}

// List returns one page of todos. Out-of-range page/per_page clamp
// silently to defaults; unknown sort/order values are rejected.
func (s *TodoService) List(ctx context.Context, p dom.ListParams) (dom.ListResult, error) {
	p = normalizeListParams(p)
	if !dom.ValidSortField(p.Sort) {
		return dom.ListResult{}, fmt.Errorf("%w: invalid sort field %q", dom.ErrInvalidArgument, p.Sort)
	}
	if !dom.ValidSortOrder(p.Order) {
		return dom.ListResult{}, fmt.Errorf("%w: invalid sort order %q", dom.ErrInvalidArgument, p.Order)
	}

	if s.cache != nil {
		key := cache.ListKey(p)
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			if res, err := s.cache.GetList(ctx, key); err == nil && res != nil {
				return *res, nil
			}
			res, err := s.list(ctx, p)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetList(ctx, key, res)
			return res, nil
		})
		if err != nil {
			return dom.ListResult{}, err
		}
		return v.(dom.ListResult), nil
	}
	return s.list(ctx, p)
}

func (s *TodoService) list(ctx context.Context, p dom.ListParams) (dom.ListResult, error) {
	items, total, err := s.repo.List(ctx, p)
	if err != nil {
		s.logger.Error("list todos", "error", err)
		return dom.ListResult{}, err
	}
	return dom.ListResult{
		Items:      items,
		Total:      total,
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalPages: (total + p.PerPage - 1) / p.PerPage,
	}, nil
}

func (s *TodoService) GetByID(ctx context.Context, id int64) (dom.Todo, error) {
	if id <= 0 {
		return dom.Todo{}, fmt.Errorf("%w: id must be positive", dom.ErrInvalidArgument)
	}
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Todo{}, dom.ErrNotFound
		}
		s.logger.Error("get todo", "id", id, "error", err)
		return dom.Todo{}, err
	}
	return t, nil
}

func (s *TodoService) Create(ctx context.Context, title string, description *string, completed bool) (dom.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return dom.Todo{}, dom.Validation("title", "is required")
	}
	if utf8.RuneCountInString(title) > titleMaxLen {
		return dom.Todo{}, dom.Validation("title", "must be at most 255 characters")
	}
	description, err := normalizeDescription(description)
	if err != nil {
		return dom.Todo{}, err
	}

	t, err := s.repo.Create(ctx, dom.Todo{
		Title:       title,
		Description: description,
		Completed:   completed,
	})
	if err != nil {
		s.logger.Error("create todo", "error", err)
		return dom.Todo{}, err
	}
	s.logger.Info("created todo", "id", t.ID, "title", t.Title)
	s.invalidateCache(ctx)
	return t, nil
}

// Update applies the set fields of patch. An empty patch is accepted
// and returns the stored entity without touching updated_at.
func (s *TodoService) Update(ctx context.Context, id int64, patch dom.TodoPatch) (dom.Todo, error) {
	if id <= 0 {
		return dom.Todo{}, fmt.Errorf("%w: id must be positive", dom.ErrInvalidArgument)
	}
	patch, err := normalizePatch(patch)
	if err != nil {
		return dom.Todo{}, err
	}

	if patch.Empty() {
		return s.GetByID(ctx, id)
	}

	t, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Todo{}, dom.ErrNotFound
		}
		s.logger.Error("update todo", "id", id, "error", err)
		return dom.Todo{}, err
	}
	s.logger.Info("updated todo", "id", id)
	s.invalidateCache(ctx)
	return t, nil
}

func (s *TodoService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: id must be positive", dom.ErrInvalidArgument)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.ErrNotFound
		}
		s.logger.Error("delete todo", "id", id, "error", err)
		return err
	}
	s.logger.Info("deleted todo", "id", id)
	s.invalidateCache(ctx)
	return nil
}

// DeleteAll removes every todo and returns the count. An empty store
// is not an error.
func (s *TodoService) DeleteAll(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		s.logger.Error("delete all todos", "error", err)
		return 0, err
	}
	s.logger.Info("deleted all todos", "count", n)
	s.invalidateCache(ctx)
	return n, nil
}

func (s *TodoService) Stats(ctx context.Context) (dom.Stats, error) {
	if s.cache != nil {
		v, err, _ := s.sf.Do(cache.StatsKey, func() (interface{}, error) {
			if st, err := s.cache.GetStats(ctx); err == nil && st != nil {
				return *st, nil
			}
			st, err := s.repo.Stats(ctx)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetStats(ctx, st)
			return st, nil
		})
		if err != nil {
			s.logger.Error("todo stats", "error", err)
			return dom.Stats{}, err
		}
		return v.(dom.Stats), nil
	}
	st, err := s.repo.Stats(ctx)
	if err != nil {
		s.logger.Error("todo stats", "error", err)
	}
	return st, err
}

func (s *TodoService) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.InvalidateAll(ctx)
	}
}

func normalizeListParams(p dom.ListParams) dom.ListParams {
	if p.Page < 1 {
		p.Page = defaultPage
	}
	if p.PerPage < 1 || p.PerPage > maxPerPage {
		p.PerPage = defaultPerPage
	}
	if p.Sort == "" {
		p.Sort = dom.SortByCreatedAt
	}
	if p.Order == "" {
		p.Order = dom.SortOrderDesc
	}
	p.Search = strings.TrimSpace(p.Search)
	return p
}

// normalizePatch trims set fields and checks them with the same rules
// as Create. Validation order: title presence, title length,
// description length.
func normalizePatch(patch dom.TodoPatch) (dom.TodoPatch, error) {
	if patch.Title.Set {
		if patch.Title.Value == nil {
			return dom.TodoPatch{}, dom.Validation("title", "must not be null")
		}
		trimmed := strings.TrimSpace(*patch.Title.Value)
		if trimmed == "" {
			return dom.TodoPatch{}, dom.Validation("title", "is required")
		}
		if utf8.RuneCountInString(trimmed) > titleMaxLen {
			return dom.TodoPatch{}, dom.Validation("title", "must be at most 255 characters")
		}
		patch.Title = dom.SetField(trimmed)
	}
	if patch.Description.Set {
		desc, err := normalizeDescription(patch.Description.Value)
		if err != nil {
			return dom.TodoPatch{}, err
		}
		patch.Description = dom.Field[string]{Set: true, Value: desc}
	}
	if patch.Completed.Set && patch.Completed.Value == nil {
		return dom.TodoPatch{}, dom.Validation("completed", "must be a boolean")
	}
	return patch, nil
}

// normalizeDescription trims and collapses empty strings to absent.
func normalizeDescription(d *string) (*string, error) {
	if d == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*d)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > descriptionMaxLen {
		return nil, dom.Validation("description", "must be at most 1000 characters")
	}
	return &trimmed, nil
}
