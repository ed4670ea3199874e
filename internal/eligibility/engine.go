package eligibility

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/vetter/internal/catalog"
	"github.com/JaimeStill/vetter/internal/outcomes"
)

const tracerName = "github.com/JaimeStill/vetter/internal/eligibility"

const (
	keyRequest   = "request"
	keyDecision  = "decision"
	keyScreened  = "screened"
	keyOutcome   = "outcome"
	keyPersisted = "persist_error"
)

// Recorder appends accepted outcomes. outcomes.System satisfies it.
type Recorder interface {
	Record(ctx context.Context, cmd outcomes.RecordCommand) (*outcomes.Outcome, error)
}

// Evaluation is the result of one engine pass. Decision is what the caller
// sees; persistence is reported separately and never alters it.
type Evaluation struct {
	Stage      Stage
	Category   catalog.Category
	Decision   Decision
	Screened   bool
	Outcome    *outcomes.Outcome
	PersistErr error
}

// Engine runs a submission through screen, classify, and record.
// It holds no per-submission state and is safe for concurrent use.
type Engine struct {
	builder    *Builder
	parser     *Parser
	classifier Classifier
	recorder   Recorder
	logger     *slog.Logger
	metrics    *Metrics
	tracer     trace.Tracer
	provider   string
	model      string
}

type Option func(*Engine)

func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithProvenance sets the classifier provider and model stored on outcomes.
func WithProvenance(provider, model string) Option {
	return func(e *Engine) {
		e.provider = provider
		e.model = model
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// NewEngine creates an engine bound to one catalog. A nil recorder disables
// persistence.
func NewEngine(
	c *catalog.Catalog,
	classifier Classifier,
	recorder Recorder,
	logger *slog.Logger,
	opts ...Option,
) *Engine {
	e := &Engine{
		builder:    NewBuilder(c),
		parser:     NewParser(c.MaxQuestions()),
		classifier: classifier,
		recorder:   recorder,
		logger:     logger.With("system", "engine"),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Catalog() *catalog.Catalog {
	return e.builder.Catalog()
}

// Check returns the caller error Evaluate would return for sub and round,
// without calling the classifier.
func (e *Engine) Check(sub Submission, round *ClarificationRound) error {
	_, err := e.builder.Build(sub, round)
	return err
}

// Evaluate classifies sub. A nil round runs the initial stage; otherwise the
// follow-up stage runs with the round's answers. Caller errors
// (ErrInvalidSubmission, ErrInvalidCategory, ErrInvalidAnswers) are returned
// before any external call. Every other failure is a Failed decision.
func (e *Engine) Evaluate(ctx context.Context, sub Submission, round *ClarificationRound) (Evaluation, error) {
	req, err := e.builder.Build(sub, round)
	if err != nil {
		return Evaluation{}, err
	}

	ctx, span := e.tracer.Start(ctx, "eligibility.evaluate", trace.WithAttributes(
		attribute.String("eligibility.stage", string(req.Stage)),
		attribute.String("eligibility.category", string(req.Category)),
		attribute.String("catalog.version", req.CatalogVersion),
	))
	defer span.End()

	start := time.Now()
	eval := e.run(ctx, req)

	span.SetAttributes(attribute.String("eligibility.decision", string(eval.Decision.Kind())))
	if f, ok := eval.Decision.(Failed); ok {
		span.RecordError(f.Cause)
		span.SetStatus(codes.Error, Cause(f.Cause).Error())
	}

	e.metrics.observeDecision(req.Stage, string(req.Category), eval.Decision)
	e.logDecision(ctx, req, eval, time.Since(start))

	return eval, nil
}

func (e *Engine) run(ctx context.Context, req Request) Evaluation {
	eval := Evaluation{Stage: req.Stage, Category: req.Category}

	graph, err := e.buildGraph()
	if err != nil {
		eval.Decision = Failed{Cause: fmt.Errorf("%w: build graph: %v", ErrUpstream, err)}
		return eval
	}

	final, err := graph.Execute(ctx, state.New(nil).Set(keyRequest, req))
	if err != nil {
		eval.Decision = Failed{Cause: classifyError(ctx, err)}
		return eval
	}

	d, ok := decisionOf(final)
	if !ok {
		eval.Decision = Failed{Cause: fmt.Errorf("%w: no decision reached", ErrUpstream)}
		return eval
	}
	eval.Decision = d

	if v, ok := final.Get(keyScreened); ok {
		eval.Screened, _ = v.(bool)
	}
	if v, ok := final.Get(keyOutcome); ok {
		eval.Outcome, _ = v.(*outcomes.Outcome)
	}
	if v, ok := final.Get(keyPersisted); ok {
		eval.PersistErr, _ = v.(error)
	}

	return eval
}

func (e *Engine) buildGraph() (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("vetter-evaluate")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	nodes := []struct {
		name string
		node state.StateNode
	}{
		{"screen", e.screenNode()},
		{"classify", e.classifyNode()},
		{"record", e.recordNode()},
		{"finalize", state.NewFunctionNode(func(_ context.Context, s state.State) (state.State, error) {
			return s, nil
		})},
	}
	for _, n := range nodes {
		if err := graph.AddNode(n.name, n.node); err != nil {
			return nil, err
		}
	}

	// screen → finalize when a declared field already decides the outcome
	if err := graph.AddEdge("screen", "finalize", decided); err != nil {
		return nil, err
	}
	if err := graph.AddEdge("screen", "classify", state.Not(decided)); err != nil {
		return nil, err
	}

	// classify → record only for accepted decisions
	if err := graph.AddEdge("classify", "record", accepted); err != nil {
		return nil, err
	}
	if err := graph.AddEdge("classify", "finalize", state.Not(accepted)); err != nil {
		return nil, err
	}

	if err := graph.AddEdge("record", "finalize", nil); err != nil {
		return nil, err
	}

	if err := graph.SetEntryPoint("screen"); err != nil {
		return nil, err
	}
	if err := graph.SetExitPoint("finalize"); err != nil {
		return nil, err
	}

	return graph, nil
}

func (e *Engine) screenNode() state.StateNode {
	return state.NewFunctionNode(func(_ context.Context, s state.State) (state.State, error) {
		req, err := requestOf(s)
		if err != nil {
			return s, err
		}

		if d, rejected := Screen(e.Catalog(), req.Category, req.Submission); rejected {
			e.metrics.incScreened(string(req.Category))
			s = s.Set(keyScreened, true)
			s = s.Set(keyDecision, d)
		}
		return s, nil
	})
}

func (e *Engine) classifyNode() state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		req, err := requestOf(s)
		if err != nil {
			return s, err
		}

		ctx, span := e.tracer.Start(ctx, "eligibility.classify")
		defer span.End()

		start := time.Now()
		raw, err := e.classifier.Classify(ctx, req)
		e.metrics.observeClassifier(req.Stage, start)

		var d Decision
		if err != nil {
			if !errors.Is(err, ErrTransport) && !errors.Is(err, ErrUpstream) {
				err = classifyError(ctx, err)
			}
			d = Failed{Cause: err}
		} else {
			d = e.parser.Parse(req.Stage, raw)
		}

		if !CanTransition(origin(req.Stage), PhaseOf(d)) {
			d = Failed{Cause: fmt.Errorf("%w: %s is not allowed at stage %s", ErrInvalidResponseShape, d.Kind(), req.Stage)}
		}

		return s.Set(keyDecision, d), nil
	})
}

func (e *Engine) recordNode() state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		if e.recorder == nil {
			return s, nil
		}

		req, err := requestOf(s)
		if err != nil {
			return s, err
		}
		d, _ := decisionOf(s)
		acc, ok := d.(Accepted)
		if !ok {
			return s, nil
		}

		o, err := e.recorder.Record(ctx, e.recordCommand(req, acc))
		if err != nil {
			perr := fmt.Errorf("%w: %w", ErrPersistence, err)
			e.metrics.incPersistenceFailure()
			e.logger.ErrorContext(ctx, "outcome not recorded",
				"fingerprint", req.Submission.Fingerprint(),
				"category", req.Category,
				"error", err,
			)
			return s.Set(keyPersisted, perr), nil
		}

		return s.Set(keyOutcome, o), nil
	})
}

func (e *Engine) recordCommand(req Request, d Accepted) outcomes.RecordCommand {
	sub := req.Submission
	cmd := outcomes.RecordCommand{
		Category:                string(req.Category),
		SubCategories:           sub.SubCategories,
		ProductName:             sub.ProductName,
		CompanyName:             sub.CompanyName,
		Location:                sub.Location,
		Certifications:          sub.Certifications,
		Decision:                string(KindAccepted),
		Reason:                  d.Reason,
		SuggestedCertifications: d.SuggestedCertifications,
		CatalogVersion:          req.CatalogVersion,
		ProviderName:            e.provider,
		ModelName:               e.model,
	}

	if req.Round != nil {
		for i, a := range req.Round.Answers {
			ex := outcomes.Exchange{Answer: a}
			if i < len(req.Round.Questions) {
				ex.Question = req.Round.Questions[i]
			}
			cmd.Transcript = append(cmd.Transcript, ex)
		}
	}

	return cmd
}

func (e *Engine) logDecision(ctx context.Context, req Request, eval Evaluation, elapsed time.Duration) {
	attrs := []any{
		"stage", req.Stage,
		"category", req.Category,
		"decision", eval.Decision.Kind(),
		"screened", eval.Screened,
		"duration", elapsed,
	}

	if f, ok := eval.Decision.(Failed); ok {
		e.logger.WarnContext(ctx, "classification failed", append(attrs, "error", f.Cause)...)
		return
	}
	e.logger.InfoContext(ctx, "decision reached", attrs...)
}

func requestOf(s state.State) (Request, error) {
	v, ok := s.Get(keyRequest)
	if !ok {
		return Request{}, fmt.Errorf("missing %s in state", keyRequest)
	}
	req, ok := v.(Request)
	if !ok {
		return Request{}, fmt.Errorf("%s is not Request", keyRequest)
	}
	return req, nil
}

func decisionOf(s state.State) (Decision, bool) {
	v, ok := s.Get(keyDecision)
	if !ok {
		return nil, false
	}
	d, ok := v.(Decision)
	return d, ok
}

func decided(s state.State) bool {
	_, ok := decisionOf(s)
	return ok
}

func accepted(s state.State) bool {
	d, ok := decisionOf(s)
	return ok && d.Kind() == KindAccepted
}
