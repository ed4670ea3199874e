package eligibility

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/JaimeStill/vetter/pkg/formatting"
)

// allowedKeys lists the only fields each decision shape may carry.
var allowedKeys = map[Kind][]string{
	KindAccepted: {"decision", "reason", "suggested_certifications"},
	KindRejected: {"decision", "reason"},
	KindPending:  {"decision", "questions"},
}

// Parser validates untrusted classifier output against the three decision
// shapes. Anything it cannot validate becomes Failed.
type Parser struct {
	maxQuestions int
}

func NewParser(maxQuestions int) *Parser {
	return &Parser{maxQuestions: maxQuestions}
}

// Parse reads raw classifier text for the given stage. Follow-up responses
// may not be pending.
func (p *Parser) Parse(stage Stage, raw string) Decision {
	data, err := formatting.Extract(raw)
	if err != nil {
		return Failed{Cause: fmt.Errorf("%w: %w", ErrInvalidResponseFormat, err)}
	}

	d, err := p.decode(stage, data)
	if err != nil {
		return Failed{Cause: err}
	}
	return d
}

func (p *Parser) decode(stage Stage, data []byte) (Decision, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, fmt.Errorf("%w: top level is not an object", ErrInvalidResponseShape)
	}

	var kind Kind
	if err := strict(fields["decision"], &kind); err != nil {
		return nil, fmt.Errorf("%w: decision must be a string", ErrInvalidResponseShape)
	}

	allowed, ok := allowedKeys[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown decision %q", ErrInvalidResponseShape, truncate(string(kind)))
	}
	if err := onlyKeys(fields, allowed); err != nil {
		return nil, err
	}

	switch kind {
	case KindAccepted:
		reason, err := requireReason(fields)
		if err != nil {
			return nil, err
		}
		var certs []string
		if err := strict(fields["suggested_certifications"], &certs); err != nil || certs == nil {
			return nil, fmt.Errorf("%w: suggested_certifications must be an array of strings", ErrInvalidResponseShape)
		}
		for i, c := range certs {
			if strings.TrimSpace(c) == "" {
				return nil, fmt.Errorf("%w: suggested certification %d is blank", ErrInvalidResponseShape, i+1)
			}
		}
		return Accepted{Reason: reason, SuggestedCertifications: certs}, nil

	case KindRejected:
		reason, err := requireReason(fields)
		if err != nil {
			return nil, err
		}
		return Rejected{Reason: reason}, nil

	default:
		if stage == StageFollowUp {
			return nil, fmt.Errorf("%w: pending is not allowed after clarification", ErrInvalidResponseShape)
		}
		var questions []string
		if err := strict(fields["questions"], &questions); err != nil {
			return nil, fmt.Errorf("%w: questions must be an array of strings", ErrInvalidResponseShape)
		}
		if len(questions) < 1 || len(questions) > p.maxQuestions {
			return nil, fmt.Errorf("%w: expected 1 to %d questions, got %d", ErrInvalidResponseShape, p.maxQuestions, len(questions))
		}
		for i, q := range questions {
			if strings.TrimSpace(q) == "" {
				return nil, fmt.Errorf("%w: question %d is blank", ErrInvalidResponseShape, i+1)
			}
		}
		return Pending{Questions: questions}, nil
	}
}

var errMissing = errors.New("missing")

// strict decodes raw into dst, rejecting a missing field or JSON null.
func strict(raw json.RawMessage, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return errMissing
	}
	return json.Unmarshal(raw, dst)
}

func requireReason(fields map[string]json.RawMessage) (string, error) {
	var reason string
	if err := strict(fields["reason"], &reason); err != nil || strings.TrimSpace(reason) == "" {
		return "", fmt.Errorf("%w: reason must be a non-empty string", ErrInvalidResponseShape)
	}
	return reason, nil
}

func onlyKeys(fields map[string]json.RawMessage, allowed []string) error {
	for k := range fields {
		if !slices.Contains(allowed, k) {
			return fmt.Errorf("%w: unexpected field %q", ErrInvalidResponseShape, truncate(k))
		}
	}
	return nil
}

// truncate shortens s to at most 32 runes for error messages.
func truncate(s string) string {
	const limit = 32
	n := 0
	for i := range s {
		if n == limit {
			return s[:i] + "..."
		}
		n++
	}
	return s
}
