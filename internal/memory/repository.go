package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/quaydesk/quay/pkg/pagination"
	"github.com/quaydesk/quay/pkg/query"
	"github.com/quaydesk/quay/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a classification memory repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "memory"),
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
) (*pagination.PageResult[Hit], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Description", "Code")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count memory hits: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanHit)
	if err != nil {
		return nil, fmt.Errorf("query memory hits: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Lookup(ctx context.Context, description string) (*Hit, error) {
	normalized := NormalizeDescription(description)
	if normalized == "" {
		return nil, ErrNotFound
	}

	q := `
		UPDATE memory_hits
		SET hits = hits + 1, last_used = NOW()
		WHERE description = $1
		RETURNING id, description, code, confidence, hits, last_used, created_at`

	h, err := repository.QueryOne(ctx, r.db, q, []any{normalized}, scanHit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lookup memory hit: %w", err)
	}
	return &h, nil
}

func (r *repo) Learn(ctx context.Context, description, code, confidence string) (*Hit, error) {
	normalized := NormalizeDescription(description)
	if normalized == "" || code == "" {
		return nil, ErrEmptyInput
	}

	q := `
		INSERT INTO memory_hits(description, code, confidence)
		VALUES ($1, $2, $3)
		ON CONFLICT (description) DO UPDATE SET
			code = EXCLUDED.code,
			confidence = EXCLUDED.confidence,
			hits = memory_hits.hits + 1,
			last_used = NOW()
		RETURNING id, description, code, confidence, hits, last_used, created_at`

	h, err := repository.QueryOne(ctx, r.db, q, []any{normalized, code, confidence}, scanHit)
	if err != nil {
		return nil, fmt.Errorf("learn memory hit: %w", err)
	}

	r.logger.Info("memory hit learned",
		"id", h.ID,
		"code", h.Code,
		"hits", h.Hits,
	)
	return &h, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := repository.ExecExpectOne(
		ctx, r.db,
		"DELETE FROM memory_hits WHERE id = $1",
		id,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	r.logger.Info("memory hit deleted", "id", id)
	return nil
}
