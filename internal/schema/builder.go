package schema

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

// buildResult carries the generated schema document for a struct plus the
// names of fields tagged sensitive anywhere in the model tree.
type buildResult struct {
	Doc       map[string]any
	Sensitive map[string]struct{}
}

// build derives a JSON Schema document for a model prototype. Nested
// structs are inlined, so the resulting document is self-contained and
// keyword locations can be resolved against it directly.
func build(t reflect.Type) (buildResult, error) {
	res := buildResult{Sensitive: map[string]struct{}{}}

	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return res, fmt.Errorf("model prototype must be a struct, got %s", t.Kind())
	}

	doc, err := structSchema(t, res.Sensitive)
	if err != nil {
		return res, err
	}
	res.Doc = doc
	return res, nil
}

func structSchema(t reflect.Type, sensitive map[string]struct{}) (map[string]any, error) {
	properties := map[string]any{}
	var required []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name := jsonName(field)
		if name == "" {
			continue
		}

		tag, err := parseTag(field.Tag.Get("schema"))
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", t.Name(), field.Name, err)
		}

		fieldDoc, err := typeSchema(field.Type, sensitive)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", t.Name(), field.Name, err)
		}
		for k, v := range tag.Constraints {
			fieldDoc[k] = v
		}

		properties[name] = fieldDoc
		if tag.Required {
			required = append(required, name)
		}
		if tag.Sensitive {
			sensitive[name] = struct{}{}
		}
	}

	doc := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		req := make([]any, 0, len(required))
		for _, r := range required {
			req = append(req, r)
		}
		doc["required"] = req
	}
	return doc, nil
}

func typeSchema(t reflect.Type, sensitive map[string]struct{}) (map[string]any, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == timeType {
		return map[string]any{"type": "string", "format": "date-time"}, nil
	}

	switch t.Kind() {
	case reflect.String:
		return map[string]any{"type": "string"}, nil
	case reflect.Bool:
		return map[string]any{"type": "boolean"}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return map[string]any{"type": "integer"}, nil
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}, nil
	case reflect.Slice, reflect.Array:
		items, err := typeSchema(t.Elem(), sensitive)
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": "array", "items": items}, nil
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("map keys must be strings, got %s", t.Key().Kind())
		}
		values, err := typeSchema(t.Elem(), sensitive)
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": "object", "additionalProperties": values}, nil
	case reflect.Struct:
		return structSchema(t, sensitive)
	case reflect.Interface:
		// any: no constraints
		return map[string]any{}, nil
	default:
		return nil, fmt.Errorf("unsupported field type %s", t.Kind())
	}
}

func jsonName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		name = field.Name
	}
	return name
}
