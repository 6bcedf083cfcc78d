package http

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// Compile once and reuse (thread-safe). Greedy so nested code fences inside
// the JSON body do not cut the match short.
var jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*([\\s\\S]*)```")

// ExtractJSON returns the JSON payload of a model response. Structured calls
// request strict schema output, but some models still wrap the body in a
// markdown code fence; this strips the fence when present and otherwise
// returns the trimmed text.
func ExtractJSON(text string) string {
	matches := jsonBlockRegex.FindStringSubmatch(text)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}
	return strings.TrimSpace(text)
}

// DecodeStrict deserializes a model response into v, rejecting unknown
// fields. A failure here means the service violated the requested schema and
// the caller must abort the unit, exactly as it would for a transport error.
func DecodeStrict(provider, text string, v interface{}) error {
	payload := ExtractJSON(text)
	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return NewSchemaViolationError(provider, err.Error())
	}
	return nil
}
