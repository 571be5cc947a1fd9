package tariffs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/quaydesk/quay/pkg/pagination"
	"github.com/quaydesk/quay/pkg/query"
	"github.com/quaydesk/quay/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a tariff reference repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "tariffs"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Code], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Code", "Description")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count tariff codes: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanCode)
	if err != nil {
		return nil, fmt.Errorf("query tariff codes: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Lookup(ctx context.Context, code string) (*Code, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}

	q, args := query.NewBuilder(projection).BuildSingle("Code", normalized)

	c, err := repository.QueryOne(ctx, r.db, q, args, scanCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repo) SearchPrefix(ctx context.Context, prefix string, limit int) ([]Code, error) {
	normalized := NormalizeCode(prefix)
	if normalized == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCode, prefix)
	}
	if limit < 1 {
		limit = r.pagination.DefaultPageSize
	}

	qb := query.
		NewBuilder(projection, defaultSort).
		WherePrefix("Code", &normalized)

	q, args := qb.BuildPage(1, limit)
	return repository.QueryMany(ctx, r.db, q, args, scanCode)
}

func (r *repo) Measures(ctx context.Context, code string) ([]Measure, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}

	// A measure applies when its prefix matches the start of the code.
	q := `
		SELECT id, code_prefix, measure_type, description
		FROM trade_measures
		WHERE $1 LIKE code_prefix || '%'
		ORDER BY code_prefix, measure_type`

	return repository.QueryMany(ctx, r.db, q, []any{normalized}, scanMeasure)
}
