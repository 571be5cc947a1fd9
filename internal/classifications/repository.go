package classifications

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/quaydesk/quay/internal/attempts"
	"github.com/quaydesk/quay/pkg/pagination"
	"github.com/quaydesk/quay/pkg/query"
	"github.com/quaydesk/quay/pkg/repository"
)

type repo struct {
	db         *sql.DB
	rt         *Runtime
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a classification repository implementing the System
// interface around the supplied runtime.
func New(
	db *sql.DB,
	rt *Runtime,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	rt.Logger = logger.With("system", "classifications", "runtime", "classify")
	return &repo{
		db:         db,
		rt:         rt,
		logger:     logger.With("system", "classifications"),
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
) (*pagination.PageResult[Classification], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Subject", "Summary")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count classifications: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanClassification)
	if err != nil {
		return nil, fmt.Errorf("query classifications: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Classification, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	c, err := repository.QueryOne(ctx, r.db, q, args, scanClassification)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repo) FindByThread(ctx context.Context, threadKey string) ([]Classification, error) {
	qb := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("ThreadKey", &threadKey)

	q, args := qb.BuildPage(1, 100)

	items, err := repository.QueryMany(ctx, r.db, q, args, scanClassification)
	if err != nil {
		return nil, fmt.Errorf("query thread classifications: %w", err)
	}
	return items, nil
}

func (r *repo) Classify(ctx context.Context, cmd ClassifyCommand) (*Classification, error) {
	if err := validateCommand(&cmd); err != nil {
		return nil, err
	}

	threadKey := attempts.ThreadKey(cmd.Subject)

	res, err := execute(ctx, r.rt, threadKey, cmd)
	if err != nil {
		return nil, fmt.Errorf("classify %q: %w", cmd.Subject, err)
	}

	c, err := r.persist(ctx, threadKey, cmd, res)
	if err != nil {
		return nil, err
	}

	r.logger.Info("request classified",
		"id", c.ID,
		"thread_key", threadKey,
		"status", c.Status,
		"candidates", len(c.Candidates),
		"attempt", c.Attempt,
		"degraded", c.Degraded,
	)
	return c, nil
}

func (r *repo) persist(ctx context.Context, threadKey string, cmd ClassifyCommand, res *result) (*Classification, error) {
	candidatesJSON, err := json.Marshal(res.Report.Candidates)
	if err != nil {
		return nil, fmt.Errorf("marshal candidates: %w", err)
	}
	issuesJSON, err := json.Marshal(res.Report.BlockingIssues)
	if err != nil {
		return nil, fmt.Errorf("marshal blocking_issues: %w", err)
	}
	gatesJSON, err := json.Marshal(res.Report.Gates)
	if err != nil {
		return nil, fmt.Errorf("marshal gate_results: %w", err)
	}

	provider, model, rounds := "", "", 0
	degraded := res.Degraded
	if res.Outcome != nil {
		provider = res.Outcome.Provider
		model = res.Outcome.Model
		rounds = len(res.Outcome.Rounds)
	}

	insertQ := `
		INSERT INTO classifications(
			thread_key, subject, status, summary, candidates,
			blocking_issues, gate_results, attempt, provider_name,
			model_name, rounds, degraded
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + returningColumns

	insertArgs := []any{
		threadKey,
		cmd.Subject,
		res.Status,
		res.Summary,
		candidatesJSON,
		issuesJSON,
		gatesJSON,
		res.Report.Attempt.Number,
		provider,
		model,
		rounds,
		degraded,
	}

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Classification, error) {
		return repository.QueryOne(ctx, tx, insertQ, insertArgs, scanClassification)
	})

	if err != nil {
		return nil, fmt.Errorf("insert classification: %w", err)
	}
	return &c, nil
}

func (r *repo) Validate(ctx context.Context, id uuid.UUID, cmd ValidateCommand) (*Classification, error) {
	validateQ := `
		UPDATE classifications
		SET status = 'complete', validated_by = $1, validated_at = NOW()
		WHERE id = $2 AND status IN ('review', 'escalated')
		RETURNING ` + returningColumns

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Classification, error) {
		return repository.QueryOne(ctx, tx, validateQ, []any{cmd.ValidatedBy, id}, scanClassification)
	})

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.reviewConflict(ctx, id)
		}
		return nil, err
	}

	r.logger.Info("classification validated",
		"id", c.ID,
		"validated_by", c.ValidatedBy,
	)
	return &c, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Classification, error) {
	candidatesJSON, err := json.Marshal(cmd.Candidates)
	if err != nil {
		return nil, fmt.Errorf("marshal candidates: %w", err)
	}

	updateQ := `
		UPDATE classifications
		SET candidates = $1, summary = $2, status = 'complete',
			validated_by = $3, validated_at = NOW()
		WHERE id = $4 AND status IN ('review', 'escalated')
		RETURNING ` + returningColumns

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Classification, error) {
		return repository.QueryOne(ctx, tx, updateQ,
			[]any{candidatesJSON, cmd.Summary, cmd.UpdatedBy, id},
			scanClassification,
		)
	})

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.reviewConflict(ctx, id)
		}
		return nil, err
	}

	r.logger.Info("classification updated",
		"id", c.ID,
		"updated_by", cmd.UpdatedBy,
	)
	return &c, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM classifications WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	r.logger.Info("classification deleted", "id", id)
	return nil
}

// reviewConflict distinguishes a missing row from one that is not
// awaiting review.
func (r *repo) reviewConflict(ctx context.Context, id uuid.UUID) error {
	if _, err := r.Find(ctx, id); err != nil {
		return err
	}
	return ErrInvalidStatus
}

func validateCommand(cmd *ClassifyCommand) error {
	if len(cmd.Lines) == 0 {
		return ErrEmptyRequest
	}

	for i := range cmd.Lines {
		cmd.Lines[i].Description = strings.TrimSpace(cmd.Lines[i].Description)
		if cmd.Lines[i].Description == "" {
			return ErrEmptyRequest
		}
	}

	if strings.TrimSpace(cmd.Subject) == "" {
		cmd.Subject = cmd.Lines[0].Description
	}

	return nil
}
