package eligibility

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JaimeStill/vetter/internal/catalog"
)

// Stage distinguishes the initial classification from the follow-up that
// carries clarification answers.
type Stage string

const (
	StageInitial  Stage = "initial"
	StageFollowUp Stage = "follow_up"
)

// ClarificationRound holds the answers to the single clarification round.
// Questions may be empty when the caller supplies answers without the
// questions they respond to.
type ClarificationRound struct {
	Index     int      `json:"index"`
	Questions []string `json:"questions,omitempty"`
	Answers   []string `json:"answers"`
}

// Request is a fully rendered classifier input.
type Request struct {
	Stage          Stage
	Category       catalog.Category
	CatalogVersion string
	Submission     Submission
	Round          *ClarificationRound
	Prompt         string
}

// Builder renders submissions into classifier requests against one catalog.
type Builder struct {
	catalog *catalog.Catalog
}

func NewBuilder(c *catalog.Catalog) *Builder {
	return &Builder{catalog: c}
}

func (b *Builder) Catalog() *catalog.Catalog {
	return b.catalog
}

// Build validates sub and renders the initial request, or the follow-up
// request when round is non-nil. Output is a pure function of the catalog,
// the normalized submission, and the round.
func (b *Builder) Build(sub Submission, round *ClarificationRound) (Request, error) {
	sub = sub.Normalize()
	cat, err := sub.Validate()
	if err != nil {
		return Request{}, err
	}

	req := Request{
		Stage:          StageInitial,
		Category:       cat,
		CatalogVersion: b.catalog.Version,
		Submission:     sub,
	}

	if round != nil {
		r, err := b.checkRound(*round)
		if err != nil {
			return Request{}, err
		}
		req.Stage = StageFollowUp
		req.Round = &r
	}

	req.Prompt = b.render(req)
	return req, nil
}

func (b *Builder) checkRound(round ClarificationRound) (ClarificationRound, error) {
	limit := b.catalog.MaxQuestions()
	if len(round.Answers) == 0 || len(round.Answers) > limit {
		return round, fmt.Errorf("%w: expected 1 to %d answers, got %d", ErrInvalidAnswers, limit, len(round.Answers))
	}
	if len(round.Questions) > 0 && len(round.Questions) != len(round.Answers) {
		return round, fmt.Errorf("%w: %d answers for %d questions", ErrInvalidAnswers, len(round.Answers), len(round.Questions))
	}

	out := ClarificationRound{
		Index:     max(round.Index, 1),
		Questions: make([]string, 0, len(round.Questions)),
		Answers:   make([]string, len(round.Answers)),
	}
	for i, a := range round.Answers {
		a = strings.TrimSpace(a)
		if a == "" {
			return round, fmt.Errorf("%w: answer %d is blank", ErrInvalidAnswers, i+1)
		}
		out.Answers[i] = a
	}
	for _, q := range round.Questions {
		out.Questions = append(out.Questions, strings.TrimSpace(q))
	}
	return out, nil
}

const initialInstructions = `You are reviewing a product submission for marketplace eligibility.
Apply the rule catalog below exactly. For agriculture and processed_foods, classify the processing level first, then apply the banned substance and certification rules.
Substances banned in every category override all other rules.`

const followUpInstructions = `You are completing an eligibility review for a product submission.
A single clarification round has been answered. Using the rule catalog, the submission, and the answers, give a final decision.
Substances banned in every category override all other rules. Do not ask further questions.`

const initialFormat = `Respond with exactly one JSON object and nothing else, in one of these shapes:
{"decision": "accepted", "reason": "<why>", "suggested_certifications": ["<certification>"]}
{"decision": "rejected", "reason": "<why>"}
{"decision": "pending", "questions": ["<question>"]}
Use "pending" only when the processing level is ambiguous between 3 and 4, with at most %d questions.`

const followUpFormat = `Respond with exactly one JSON object and nothing else, in one of these shapes:
{"decision": "accepted", "reason": "<why>", "suggested_certifications": ["<certification>"]}
{"decision": "rejected", "reason": "<why>"}`

func (b *Builder) render(req Request) string {
	var sb strings.Builder

	if req.Stage == StageFollowUp {
		sb.WriteString(followUpInstructions)
	} else {
		sb.WriteString(initialInstructions)
	}

	sb.WriteString("\n\n")
	sb.WriteString(b.catalog.Render())
	sb.WriteString("\n\nSubmission:\n")

	data, _ := json.MarshalIndent(req.Submission, "", "  ")
	sb.Write(data)

	if req.Round != nil {
		fmt.Fprintf(&sb, "\n\nClarification round %d:\n", req.Round.Index)
		for i, a := range req.Round.Answers {
			if i < len(req.Round.Questions) {
				fmt.Fprintf(&sb, "Q%d: %s\n", i+1, req.Round.Questions[i])
			}
			fmt.Fprintf(&sb, "A%d: %s\n", i+1, a)
		}
		sb.WriteString("\n")
		sb.WriteString(followUpFormat)
	} else {
		sb.WriteString("\n\n")
		fmt.Fprintf(&sb, initialFormat, b.catalog.MaxQuestions())
	}

	return sb.String()
}
