package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrParseFailed is returned when no JSON value can be recovered from content,
// either directly, from a markdown code fence, or from an embedded object.
var ErrParseFailed = errors.New("failed to parse response")

var jsonBlockRegex = regexp.MustCompile(`(?s)` + "```" + `(?:json|JSON)?\s*\n?(.*?)\n?` + "```")

// Extract recovers a single JSON document from model output.
//
// Attempts, in order: the trimmed content as-is, the body of the first
// markdown code fence, and the span from the first '{' to the last '}'.
// The returned bytes are guaranteed to be valid JSON. The error never echoes
// the content, so callers may surface it without leaking upstream text.
func Extract(content string) ([]byte, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: empty content", ErrParseFailed)
	}

	if json.Valid([]byte(content)) {
		return []byte(content), nil
	}

	if matches := jsonBlockRegex.FindStringSubmatch(content); len(matches) >= 2 {
		cleaned := strings.TrimSpace(matches[1])
		if json.Valid([]byte(cleaned)) {
			return []byte(cleaned), nil
		}
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		candidate := content[start : end+1]
		if json.Valid([]byte(candidate)) {
			return []byte(candidate), nil
		}
	}

	return nil, fmt.Errorf("%w: no JSON document in %d bytes of content", ErrParseFailed, len(content))
}

// Parse extracts a JSON document from content and unmarshals it into T.
func Parse[T any](content string) (T, error) {
	var result T

	data, err := Extract(content)
	if err != nil {
		return result, err
	}

	if err := json.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}

	return result, nil
}
