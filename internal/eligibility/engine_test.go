package eligibility_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/vetter/internal/catalog"
	"github.com/JaimeStill/vetter/internal/eligibility"
	"github.com/JaimeStill/vetter/internal/outcomes"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// scripted answers each stage with a fixed response and counts calls.
type scripted struct {
	initial  string
	followUp string
	err      error
	calls    atomic.Int32
	mu       sync.Mutex
	prompts  []string
}

func (s *scripted) Classify(_ context.Context, req eligibility.Request) (string, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.prompts = append(s.prompts, req.Prompt)
	s.mu.Unlock()

	if s.err != nil {
		return "", s.err
	}
	if req.Stage == eligibility.StageFollowUp {
		return s.followUp, nil
	}
	return s.initial, nil
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []outcomes.RecordCommand
	err     error
}

func (f *fakeRecorder) Record(_ context.Context, cmd outcomes.RecordCommand) (*outcomes.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.records = append(f.records, cmd)
	return &outcomes.Outcome{ID: uuid.New(), Category: cmd.Category, Decision: cmd.Decision, Reason: cmd.Reason}, nil
}

func (f *fakeRecorder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

const (
	acceptJSON  = `{"decision":"accepted","reason":"No restricted ingredients.","suggested_certifications":["MSC"]}`
	rejectJSON  = `{"decision":"rejected","reason":"NOVA level 4, ultra-processed."}`
	pendingJSON = `{"decision":"pending","questions":["How many ingredients does it contain?","Does it contain additives?","How is it processed?"]}`
)

func newEngine(c eligibility.Classifier, r eligibility.Recorder, opts ...eligibility.Option) *eligibility.Engine {
	return eligibility.NewEngine(catalog.Default(), c, r, discardLogger(), opts...)
}

func TestScenarioSeafoodAccepted(t *testing.T) {
	cls := &scripted{initial: acceptJSON}
	rec := &fakeRecorder{}
	e := newEngine(cls, rec, eligibility.WithProvenance("ollama", "llama3"))

	eval, err := e.Evaluate(context.Background(), salmon(), nil)
	require.NoError(t, err)

	acc, ok := eval.Decision.(eligibility.Accepted)
	require.True(t, ok, "got %#v", eval.Decision)
	assert.Equal(t, []string{"MSC"}, acc.SuggestedCertifications)
	require.NotNil(t, eval.Outcome)
	assert.NoError(t, eval.PersistErr)

	require.Equal(t, 1, rec.count())
	cmd := rec.records[0]
	assert.Equal(t, "seafood", cmd.Category)
	assert.Equal(t, "accepted", cmd.Decision)
	assert.Equal(t, "2026-10-01", cmd.CatalogVersion)
	assert.Equal(t, "llama3", cmd.ModelName)
	assert.Empty(t, cmd.Transcript)
}

func TestScenarioAgricultureLevelFourRejected(t *testing.T) {
	cls := &scripted{initial: rejectJSON}
	rec := &fakeRecorder{}
	e := newEngine(cls, rec)

	sub := eligibility.Submission{
		Category:      "agriculture",
		SubCategories: []string{"snacks"},
		ProductName:   "Flavored Corn Puffs",
	}

	eval, err := e.Evaluate(context.Background(), sub, nil)
	require.NoError(t, err)

	_, ok := eval.Decision.(eligibility.Rejected)
	assert.True(t, ok, "got %#v", eval.Decision)
	assert.Equal(t, int32(1), cls.calls.Load(), "no follow-up is issued")
	assert.Zero(t, rec.count())
}

func TestScenarioProcessedFoodsClarification(t *testing.T) {
	sub := eligibility.Submission{
		Category:      "processed_foods",
		SubCategories: []string{"bakery"},
		ProductName:   "Whole Grain Bread",
	}

	for _, final := range []string{acceptJSON, rejectJSON} {
		cls := &scripted{initial: pendingJSON, followUp: final}
		rec := &fakeRecorder{}
		e := newEngine(cls, rec)

		first, err := e.Evaluate(context.Background(), sub, nil)
		require.NoError(t, err)

		pending, ok := first.Decision.(eligibility.Pending)
		require.True(t, ok, "got %#v", first.Decision)
		require.Len(t, pending.Questions, 3)

		round := &eligibility.ClarificationRound{
			Index:     1,
			Questions: pending.Questions,
			Answers:   []string{"Five", "No", "Baked"},
		}
		second, err := e.Evaluate(context.Background(), sub, round)
		require.NoError(t, err)

		assert.NotEqual(t, eligibility.KindPending, second.Decision.Kind())
		assert.NotEqual(t, eligibility.KindFailed, second.Decision.Kind())

		if second.Decision.Kind() == eligibility.KindAccepted {
			require.Equal(t, 1, rec.count())
			assert.Equal(t, []outcomes.Exchange{
				{Question: pending.Questions[0], Answer: "Five"},
				{Question: pending.Questions[1], Answer: "No"},
				{Question: pending.Questions[2], Answer: "Baked"},
			}, rec.records[0].Transcript)
		}
	}
}

func TestFollowUpPendingFails(t *testing.T) {
	cls := &scripted{followUp: pendingJSON}
	e := newEngine(cls, nil)

	round := &eligibility.ClarificationRound{Answers: []string{"yes"}}
	eval, err := e.Evaluate(context.Background(), salmon(), round)
	require.NoError(t, err)

	f, ok := eval.Decision.(eligibility.Failed)
	require.True(t, ok)
	assert.ErrorIs(t, f.Cause, eligibility.ErrInvalidResponseShape)
}

func TestMeatPoultryProperties(t *testing.T) {
	tests := []struct {
		name     string
		product  string
		certs    []string
		response string
		want     eligibility.Kind
		calls    int32
	}{
		{"pork with halal", "Pork Belly", []string{"Halal"}, acceptJSON, eligibility.KindRejected, 0},
		{"pork with kosher", "Smoked Ham", []string{"Kosher"}, acceptJSON, eligibility.KindRejected, 0},
		{"pork uncertified", "Pork Sausage", nil, acceptJSON, eligibility.KindRejected, 0},
		{"chicken uncertified", "Chicken Thighs", nil, acceptJSON, eligibility.KindRejected, 0},
		{"chicken other certification", "Chicken Thighs", []string{"USDA Organic"}, acceptJSON, eligibility.KindRejected, 0},
		{"chicken halal", "Chicken Thighs", []string{"Halal"}, acceptJSON, eligibility.KindAccepted, 1},
		{"beef kosher lowercase", "Beef Brisket", []string{"kosher"}, acceptJSON, eligibility.KindAccepted, 1},
		{"hamburger is not ham", "Beef Hamburger Patties", []string{"Halal"}, acceptJSON, eligibility.KindAccepted, 1},
		{"chicken halal certified", "Chicken Breast", []string{"Halal Certified"}, acceptJSON, eligibility.KindAccepted, 1},
		{"beef certified kosher", "Beef Brisket", []string{"Certified Kosher"}, acceptJSON, eligibility.KindAccepted, 1},
		{"chicken certifier prefix", "Chicken Breast", []string{"HMC Halal"}, acceptJSON, eligibility.KindAccepted, 1},
		{"chicken non-halal", "Chicken Breast", []string{"Non-Halal"}, acceptJSON, eligibility.KindRejected, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls := &scripted{initial: tt.response}
			e := newEngine(cls, &fakeRecorder{})

			sub := eligibility.Submission{
				Category:       "meat_poultry",
				SubCategories:  []string{"fresh meat"},
				ProductName:    tt.product,
				Certifications: tt.certs,
			}

			eval, err := e.Evaluate(context.Background(), sub, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, eval.Decision.Kind())
			assert.Equal(t, tt.calls, cls.calls.Load())
			assert.Equal(t, tt.calls == 0, eval.Screened)
		})
	}
}

func TestOverrideSubstancesRejectEveryCategory(t *testing.T) {
	products := []struct {
		name string
		sub  string
	}{
		{"Beer Battered Cod", "fish"},
		{"Red Wine Reduction", "sauces"},
		{"Herbal Blend", "tobacco products"},
		{"Nicotine Gum", "confectionery"},
	}

	for _, cat := range catalog.Categories() {
		for _, p := range products {
			t.Run(string(cat)+"/"+p.name, func(t *testing.T) {
				cls := &scripted{initial: acceptJSON}
				e := newEngine(cls, &fakeRecorder{})

				sub := eligibility.Submission{
					Category:       string(cat),
					SubCategories:  []string{p.sub},
					ProductName:    p.name,
					Certifications: []string{"Halal"},
				}

				eval, err := e.Evaluate(context.Background(), sub, nil)
				require.NoError(t, err)
				assert.Equal(t, eligibility.KindRejected, eval.Decision.Kind())
				assert.Zero(t, cls.calls.Load())
			})
		}
	}
}

func TestOverrideExemptions(t *testing.T) {
	cls := &scripted{initial: acceptJSON}
	e := newEngine(cls, nil)

	sub := eligibility.Submission{
		Category:      "other",
		SubCategories: []string{"beverages"},
		ProductName:   "Non-Alcoholic Ginger Beer",
	}

	eval, err := e.Evaluate(context.Background(), sub, nil)
	require.NoError(t, err)
	assert.Equal(t, eligibility.KindAccepted, eval.Decision.Kind())
}

func TestMalformedResponseFails(t *testing.T) {
	rec := &fakeRecorder{}
	e := newEngine(&scripted{initial: `{"decision": "maybe"}`}, rec)

	eval, err := e.Evaluate(context.Background(), salmon(), nil)
	require.NoError(t, err)

	f, ok := eval.Decision.(eligibility.Failed)
	require.True(t, ok)
	assert.ErrorIs(t, f.Cause, eligibility.ErrInvalidResponseShape)
	assert.Zero(t, rec.count())
}

func TestPersistenceFailureKeepsDecision(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := eligibility.NewMetrics(reg)
	rec := &fakeRecorder{err: errors.New("connection refused")}
	e := newEngine(&scripted{initial: acceptJSON}, rec, eligibility.WithMetrics(metrics))

	eval, err := e.Evaluate(context.Background(), salmon(), nil)
	require.NoError(t, err)

	assert.Equal(t, eligibility.KindAccepted, eval.Decision.Kind())
	assert.Nil(t, eval.Outcome)
	assert.ErrorIs(t, eval.PersistErr, eligibility.ErrPersistence)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PersistenceFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Decisions.WithLabelValues("initial", "seafood", "accepted")))
}

func TestClassifierErrorsBecomeFailed(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"transport", eligibility.ErrTransport, eligibility.ErrTransport},
		{"upstream", eligibility.ErrUpstream, eligibility.ErrUpstream},
		{"unclassified", errors.New("status 500"), eligibility.ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := prometheus.NewRegistry()
			metrics := eligibility.NewMetrics(reg)
			e := newEngine(&scripted{err: tt.err}, nil, eligibility.WithMetrics(metrics))

			eval, err := e.Evaluate(context.Background(), salmon(), nil)
			require.NoError(t, err)

			f, ok := eval.Decision.(eligibility.Failed)
			require.True(t, ok)
			assert.Equal(t, tt.want, eligibility.Cause(f.Cause))
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Failures.WithLabelValues(tt.want.Error())))
		})
	}
}

func TestClassifierDeadlineIsTransport(t *testing.T) {
	hung := eligibility.ClassifierFunc(func(ctx context.Context, _ eligibility.Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	e := newEngine(hung, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	eval, err := e.Evaluate(ctx, salmon(), nil)
	require.NoError(t, err)

	f, ok := eval.Decision.(eligibility.Failed)
	require.True(t, ok, "got %#v", eval.Decision)
	assert.ErrorIs(t, f.Cause, eligibility.ErrTransport)
}

func TestCallerErrorsSkipClassifier(t *testing.T) {
	cls := &scripted{initial: acceptJSON}
	e := newEngine(cls, nil)

	_, err := e.Evaluate(context.Background(), eligibility.Submission{Category: "toys", SubCategories: []string{"x"}, ProductName: "y"}, nil)
	assert.ErrorIs(t, err, eligibility.ErrInvalidCategory)

	_, err = e.Evaluate(context.Background(), eligibility.Submission{Category: "seafood", ProductName: "y"}, nil)
	assert.ErrorIs(t, err, eligibility.ErrInvalidSubmission)

	assert.Zero(t, cls.calls.Load())
}

func TestEngineConcurrentEvaluations(t *testing.T) {
	rec := &fakeRecorder{}
	e := newEngine(&scripted{initial: acceptJSON}, rec)

	var wg sync.WaitGroup
	for range 16 {
		wg.Go(func() {
			eval, err := e.Evaluate(context.Background(), salmon(), nil)
			assert.NoError(t, err)
			assert.Equal(t, eligibility.KindAccepted, eval.Decision.Kind())
		})
	}
	wg.Wait()

	assert.Equal(t, 16, rec.count())
}
