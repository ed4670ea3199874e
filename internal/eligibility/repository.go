package eligibility

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/vetter/internal/clarifications"
)

// Config bounds request handling.
type Config struct {
	MaxBatch     int
	BatchWorkers int
	MaxBodyBytes int64
}

type repo struct {
	engine *Engine
	ledger clarifications.Ledger
	logger *slog.Logger
	cfg    Config
}

// New creates the eligibility system. A nil ledger disables clarification
// sessions, leaving only stateless follow-ups.
func New(engine *Engine, ledger clarifications.Ledger, logger *slog.Logger, cfg Config) System {
	if cfg.MaxBatch < 1 {
		cfg.MaxBatch = 1
	}
	if cfg.BatchWorkers < 1 {
		cfg.BatchWorkers = 1
	}
	return &repo{
		engine: engine,
		ledger: ledger,
		logger: logger.With("system", "eligibility"),
		cfg:    cfg,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.cfg.MaxBodyBytes)
}

func (r *repo) Classify(ctx context.Context, sub Submission) (*Result, error) {
	eval, err := r.engine.Evaluate(ctx, sub, nil)
	if err != nil {
		return nil, err
	}

	res := &Result{Evaluation: eval}

	if p, ok := eval.Decision.(Pending); ok && r.ledger != nil {
		session, err := r.ledger.Open(ctx, sub.Fingerprint(), p.Questions, r.engine.Catalog().Version)
		if err != nil {
			r.logger.ErrorContext(ctx, "clarification session not opened", "error", err)
		} else {
			res.ClarificationID = &session.ID
		}
	}

	return res, nil
}

func (r *repo) Respond(ctx context.Context, req RespondRequest) (*Result, error) {
	sub := req.InitialData.Normalize()
	if _, err := sub.Validate(); err != nil {
		return nil, err
	}

	round := &ClarificationRound{
		Index:     1,
		Questions: req.Questions,
		Answers:   req.Answers,
	}

	if req.ClarificationID != nil {
		if r.ledger == nil {
			return nil, fmt.Errorf("%w: %s", ErrClarificationNotFound, req.ClarificationID)
		}

		session, err := r.ledger.Find(ctx, *req.ClarificationID)
		if err != nil {
			return nil, err
		}
		if err := session.Verify(sub.Fingerprint(), r.engine.Catalog().Version); err != nil {
			return nil, err
		}
		if len(req.Answers) != len(session.Questions) {
			return nil, fmt.Errorf("%w: %d answers for %d questions", ErrInvalidAnswers, len(req.Answers), len(session.Questions))
		}

		// The session is consumed only once the follow-up is known to be
		// well formed.
		round.Questions = session.Questions
		if err := r.engine.Check(sub, round); err != nil {
			return nil, err
		}
		if _, err := r.ledger.Take(ctx, session.ID); err != nil {
			return nil, err
		}
	}

	eval, err := r.engine.Evaluate(ctx, sub, round)
	if err != nil {
		return nil, err
	}
	return &Result{Evaluation: eval}, nil
}

// ClassifyBatch evaluates subs concurrently. Caller errors are reported per
// item; only an empty or oversized batch fails the whole call.
func (r *repo) ClassifyBatch(ctx context.Context, subs []Submission) ([]BatchItem, error) {
	if len(subs) == 0 {
		return nil, fmt.Errorf("%w: batch is empty", ErrInvalidSubmission)
	}
	if len(subs) > r.cfg.MaxBatch {
		return nil, fmt.Errorf("%w: %d submissions, limit %d", ErrBatchTooLarge, len(subs), r.cfg.MaxBatch)
	}

	items := make([]BatchItem, len(subs))

	var g errgroup.Group
	g.SetLimit(r.cfg.BatchWorkers)

	for i := range subs {
		g.Go(func() error {
			items[i].Index = i
			res, err := r.Classify(ctx, subs[i])
			if err != nil {
				items[i].Error = err.Error()
				return nil
			}
			items[i].Result = res
			return nil
		})
	}

	g.Wait()

	r.logger.InfoContext(ctx, "batch classified", "count", len(subs))
	return items, nil
}

func (r *repo) Catalog() CatalogInfo {
	c := r.engine.Catalog()
	return CatalogInfo{
		Version: c.Version,
		Hash:    c.Hash(),
		Rules:   c,
	}
}
