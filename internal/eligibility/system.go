package eligibility

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/JaimeStill/vetter/internal/catalog"
)

// System defines the public contract for eligibility operations.
type System interface {
	Handler() *Handler

	Classify(ctx context.Context, sub Submission) (*Result, error)
	Respond(ctx context.Context, req RespondRequest) (*Result, error)
	ClassifyBatch(ctx context.Context, subs []Submission) ([]BatchItem, error)
	Catalog() CatalogInfo
}

// RespondRequest carries the answers to a clarification round. When
// ClarificationID is set the questions come from the open session and
// Questions is ignored.
type RespondRequest struct {
	InitialData     Submission `json:"initialData"`
	Answers         []string   `json:"answers"`
	Questions       []string   `json:"questions,omitempty"`
	ClarificationID *uuid.UUID `json:"clarificationId,omitempty"`
}

// Result is an evaluation as returned to callers.
type Result struct {
	Evaluation
	ClarificationID *uuid.UUID
}

// MarshalJSON writes the decision shape, adding clarification_id for a
// pending decision that opened a session and outcome_id for a recorded one.
func (r Result) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(r.Decision)
	if err != nil {
		return nil, err
	}

	if r.ClarificationID == nil && r.Outcome == nil {
		return data, nil
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	if r.ClarificationID != nil {
		fields["clarification_id"] = r.ClarificationID.String()
	}
	if r.Outcome != nil {
		fields["outcome_id"] = r.Outcome.ID.String()
	}
	return json.Marshal(fields)
}

// BatchItem is the result for one submission of a batch. Exactly one of
// Result and Error is set.
type BatchItem struct {
	Index  int     `json:"index"`
	Result *Result `json:"result,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// CatalogInfo describes the active rule catalog.
type CatalogInfo struct {
	Version string           `json:"version"`
	Hash    string           `json:"hash"`
	Rules   *catalog.Catalog `json:"rules"`
}
