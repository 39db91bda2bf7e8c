// Package plan turns raw planner output into a validated execution plan.
package plan

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/tool-enhanced-reasoning/agent/contract"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/plan.schema.json
var planSchema []byte

var schemaLoader = gojsonschema.NewBytesLoader(planSchema)

// StripFences removes a surrounding markdown code fence, with or without a
// language tag.
func StripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 && isFenceTag(text[:nl]) {
		text = text[nl+1:]
	} else if tag := strings.TrimSpace(text); strings.HasPrefix(strings.ToLower(tag), "json") {
		text = tag[len("json"):]
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func isFenceTag(line string) bool {
	line = strings.TrimSpace(line)
	for _, r := range line {
		if r == '{' || r == '[' {
			return false
		}
	}
	return true
}

// Parse decodes and validates planner output.
func Parse(raw string) (*contractx.Plan, error) {
	text := StripFences(raw)
	if text == "" {
		return nil, fmt.Errorf("%w: planner returned empty text", contractx.ErrMalformedPlan)
	}

	var doc any
	dec := json.NewDecoder(strings.NewReader(text))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON response: %v", contractx.ErrMalformedPlan, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: unexpected content after the plan object", contractx.ErrMalformedPlan)
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a JSON object, got %s", contractx.ErrMalformedPlan, describeJSON(doc))
	}
	if _, ok := obj["operations"]; !ok {
		return nil, fmt.Errorf("%w: missing 'operations' field", contractx.ErrInvalidPlan)
	}

	if err := Validate([]byte(text)); err != nil {
		return nil, err
	}

	var p contractx.Plan
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return nil, fmt.Errorf("%w: decode plan: %v", contractx.ErrMalformedPlan, err)
	}
	for i := range p.Operations {
		if p.Operations[i].Arguments == nil {
			p.Operations[i].Arguments = []any{}
		}
	}
	return &p, nil
}

// Validate checks a plan document against the embedded JSON schema.
func Validate(doc []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(bytes.TrimSpace(doc)))
	if err != nil {
		return fmt.Errorf("%w: schema validation failed: %v", contractx.ErrMalformedPlan, err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", contractx.ErrInvalidPlan, strings.Join(msgs, "; "))
}

func describeJSON(v any) string {
	switch v.(type) {
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}
