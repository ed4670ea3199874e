package outcomes

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/vetter/pkg/pagination"
	"github.com/JaimeStill/vetter/pkg/query"
	"github.com/JaimeStill/vetter/pkg/repository"
)

type repo struct {
	db         *sql.DB
	dialect    query.Dialect
	projection *query.ProjectionMap
	logger     *slog.Logger
	pagination pagination.Config
	now        func() time.Time
}

// New creates a PostgreSQL-backed outcome store implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return newRepo(db, query.Postgres, projection, logger, pagination)
}

func newRepo(
	db *sql.DB,
	dialect query.Dialect,
	proj *query.ProjectionMap,
	logger *slog.Logger,
	pagination pagination.Config,
) *repo {
	return &repo{
		db:         db,
		dialect:    dialect,
		projection: proj,
		logger:     logger.With("system", "outcomes"),
		pagination: pagination,
		now:        time.Now,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) builder() *query.Builder {
	return query.NewBuilder(r.projection, defaultSort).Dialect(r.dialect)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Outcome], error) {
	page.Normalize(r.pagination)

	qb := r.builder().
		WhereSearch(page.Search, "ProductName", "CompanyName", "Reason")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.Count(ctx, r.db, countSQL, countArgs)
	if err != nil {
		return nil, fmt.Errorf("count outcomes: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanOutcome)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Outcome, error) {
	q, args := r.builder().BuildSingle("ID", id)

	o, err := repository.QueryOne(ctx, r.db, q, args, scanOutcome)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &o, nil
}

// Record appends an outcome. It is not idempotent: recording the same
// command twice yields two rows with distinct ids.
func (r *repo) Record(ctx context.Context, cmd RecordCommand) (*Outcome, error) {
	if cmd.Decision != DecisionAccepted {
		return nil, fmt.Errorf("%w: only accepted decisions are recorded, got %q", ErrInvalid, cmd.Decision)
	}
	if cmd.Category == "" || strings.TrimSpace(cmd.Reason) == "" {
		return nil, fmt.Errorf("%w: category and reason are required", ErrInvalid)
	}

	sub, certs, suggested, transcript, err := encodeArrays(cmd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	id := uuid.New()
	createdAt := r.now().UTC().Truncate(time.Microsecond)

	cols := r.projection.InsertColumns()
	marks := make([]string, len(cols))
	for i := range marks {
		marks[i] = r.dialect.Placeholder(i + 1)
	}

	insertQ := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		r.projection.Table(), strings.Join(cols, ", "), strings.Join(marks, ", "),
	)

	args := []any{
		id.String(),
		cmd.Category,
		string(sub),
		cmd.ProductName,
		cmd.CompanyName,
		cmd.Location,
		string(certs),
		cmd.Decision,
		cmd.Reason,
		string(suggested),
		string(transcript),
		cmd.CatalogVersion,
		cmd.ProviderName,
		cmd.ModelName,
		createdAt,
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, insertQ, args...)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	o := &Outcome{
		ID:                      id,
		Category:                cmd.Category,
		SubCategories:           nonNil(cmd.SubCategories),
		ProductName:             cmd.ProductName,
		CompanyName:             cmd.CompanyName,
		Location:                cmd.Location,
		Certifications:          nonNil(cmd.Certifications),
		Decision:                cmd.Decision,
		Reason:                  cmd.Reason,
		SuggestedCertifications: nonNil(cmd.SuggestedCertifications),
		Transcript:              cmd.Transcript,
		CatalogVersion:          cmd.CatalogVersion,
		ProviderName:            cmd.ProviderName,
		ModelName:               cmd.ModelName,
		CreatedAt:               createdAt,
	}
	if o.Transcript == nil {
		o.Transcript = []Exchange{}
	}

	r.logger.Info("outcome recorded",
		"id", o.ID,
		"category", o.Category,
		"decision", o.Decision,
	)
	return o, nil
}
