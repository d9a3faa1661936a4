package prospect

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// NoJSONFoundError reports that model output contained no {...} span at all.
// Raw holds the cleaned output for diagnostics.
type NoJSONFoundError struct {
	Raw string
}

func (e *NoJSONFoundError) Error() string {
	return "no JSON object found in model output"
}

// MalformedJSONError reports that the located span failed to parse.
// Snippet holds the offending span for diagnostics.
type MalformedJSONError struct {
	Snippet string
	Err     error
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("malformed JSON in model output: %v", e.Err)
}

func (e *MalformedJSONError) Unwrap() error { return e.Err }

var fenceRegex = regexp.MustCompile("```(?:json)?") //nolint:gochecknoglobals
var objectRegex = regexp.MustCompile(`(?s)\{.*\}`)  //nolint:gochecknoglobals

// Extract salvages a JSON object out of raw model output. Models wrap their
// JSON in prose or markdown fences often enough that this is a normal path,
// not an edge case: fences are stripped, the greedy first-{ to last-} span is
// located, and only that span is strict-parsed. No schema validation is
// applied to the result.
//
// Failures come back as *NoJSONFoundError or *MalformedJSONError; Extract
// never panics on any input.
func Extract(raw string) (map[string]any, error) {
	clean := strings.TrimSpace(fenceRegex.ReplaceAllString(raw, ""))

	span := objectRegex.FindString(clean)
	if span == "" {
		return nil, &NoJSONFoundError{Raw: clean}
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(span), &parsed); err != nil {
		return nil, &MalformedJSONError{Snippet: span, Err: err}
	}
	return parsed, nil
}

// IsExtractionError reports whether err is (or wraps) an extraction failure,
// as opposed to a transport or generation error.
func IsExtractionError(err error) bool {
	var noJSON *NoJSONFoundError
	var malformed *MalformedJSONError
	return errors.As(err, &noJSON) || errors.As(err, &malformed)
}
