package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// validate compiles doc and validates instance against it, returning
// the raw validator error the way the schema registry would.
func validate(t *testing.T, doc map[string]any, instance any) error {
	t.Helper()
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("failed to marshal doc: %v", err)
	}
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7
	c.AssertFormat = true
	if err := c.AddResource("test.json", bytes.NewReader(raw)); err != nil {
		t.Fatalf("failed to add resource: %v", err)
	}
	compiled, err := c.Compile("test.json")
	if err != nil {
		t.Fatalf("failed to compile: %v", err)
	}
	return compiled.Validate(instance)
}

func TestTranslateRequiredExpandsPerProperty(t *testing.T) {
	doc := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "string"},
			"b": map[string]any{"type": "string"},
		},
		"required": []any{"b", "a"},
	}
	instance := map[string]any{}

	errs := Translate(validate(t, doc, instance), doc, instance)
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %+v", len(errs), errs)
	}
	// one entry per missing property, in required-list order
	if errs[0].Params["missingProperty"] != "b" || errs[1].Params["missingProperty"] != "a" {
		t.Errorf("wrong expansion order: %+v", errs)
	}
	if errs[0].Message != "should have required property 'b'" {
		t.Errorf("message = %q", errs[0].Message)
	}
	if errs[0].Keyword != "required" || errs[0].DataPath != "" {
		t.Errorf("unexpected entry: %+v", errs[0])
	}
}

func TestTranslateAdditionalProperties(t *testing.T) {
	doc := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
		},
		"additionalProperties": false,
	}
	instance := map[string]any{"a": float64(1), "x": float64(2), "m": float64(3)}

	errs := Translate(validate(t, doc, instance), doc, instance)
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %+v", len(errs), errs)
	}
	if errs[0].Params["additionalProperty"] != "m" || errs[1].Params["additionalProperty"] != "x" {
		t.Errorf("wrong properties reported: %+v", errs)
	}
	if errs[0].Message != "should NOT have additional properties" {
		t.Errorf("message = %q", errs[0].Message)
	}
}

func TestTranslateTypeMismatch(t *testing.T) {
	doc := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"count": map[string]any{"type": "integer"},
		},
	}
	instance := map[string]any{"count": "five"}

	errs := Translate(validate(t, doc, instance), doc, instance)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %+v", len(errs), errs)
	}
	e := errs[0]
	if e.Keyword != "type" || e.DataPath != ".count" {
		t.Errorf("unexpected entry: %+v", e)
	}
	if e.Message != "should be integer" {
		t.Errorf("message = %q", e.Message)
	}
	if e.Params["type"] != "integer" {
		t.Errorf("params = %v", e.Params)
	}
	if e.Data != "five" {
		t.Errorf("data = %v", e.Data)
	}
}

func TestTranslatePatternAndFormat(t *testing.T) {
	doc := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"code":  map[string]any{"type": "string", "pattern": "^[A-Z]{3}$"},
			"email": map[string]any{"type": "string", "format": "email"},
		},
	}
	instance := map[string]any{"code": "nope", "email": "not-an-email"}

	errs := Translate(validate(t, doc, instance), doc, instance)
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %+v", len(errs), errs)
	}
	// sorted by dataPath: .code before .email
	if errs[0].Message != `should match pattern "^[A-Z]{3}$"` {
		t.Errorf("pattern message = %q", errs[0].Message)
	}
	if errs[1].Message != `should match format "email"` {
		t.Errorf("format message = %q", errs[1].Message)
	}
}

func TestTranslateNumericBounds(t *testing.T) {
	doc := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"confidence": map[string]any{"type": "number", "minimum": float64(0), "maximum": float64(1)},
		},
	}
	instance := map[string]any{"confidence": float64(1.5)}

	errs := Translate(validate(t, doc, instance), doc, instance)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %+v", len(errs), errs)
	}
	e := errs[0]
	if e.Message != "should be <= 1" {
		t.Errorf("message = %q", e.Message)
	}
	if e.Params["comparison"] != "<=" || e.Params["limit"] != float64(1) {
		t.Errorf("params = %v", e.Params)
	}
}

func TestTranslateArrayIndexPath(t *testing.T) {
	doc := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tags": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
	}
	instance := map[string]any{"tags": []any{"ok", float64(7)}}

	errs := Translate(validate(t, doc, instance), doc, instance)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %+v", len(errs), errs)
	}
	if errs[0].DataPath != ".tags[1]" {
		t.Errorf("dataPath = %q, want .tags[1]", errs[0].DataPath)
	}
	if errs[0].Message != "should be string" {
		t.Errorf("message = %q", errs[0].Message)
	}
}

func TestTranslateNonValidatorError(t *testing.T) {
	errs := Translate(errors.New("boom"), nil, map[string]any{"a": 1})
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	if errs[0].Keyword != "schema" || errs[0].Message != "boom" {
		t.Errorf("unexpected entry: %+v", errs[0])
	}
}

func TestTranslateNilError(t *testing.T) {
	if errs := Translate(nil, nil, nil); errs != nil {
		t.Errorf("expected nil, got %+v", errs)
	}
}
