package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// fieldTag holds the parsed `schema` struct tag for a single field.
type fieldTag struct {
	Required    bool
	Sensitive   bool
	Constraints map[string]any
}

// numericKeywords are constraints whose value is a JSON number.
var numericKeywords = map[string]bool{
	"minimum":          true,
	"maximum":          true,
	"exclusiveMinimum": true,
	"exclusiveMaximum": true,
	"multipleOf":       true,
	"minLength":        true,
	"maxLength":        true,
	"minItems":         true,
	"maxItems":         true,
	"minProperties":    true,
	"maxProperties":    true,
}

// parseTag parses a `schema` tag value such as
// "required,minLength=1,enum=agent|customer,sensitive".
func parseTag(tag string) (fieldTag, error) {
	ft := fieldTag{Constraints: map[string]any{}}
	if tag == "" {
		return ft, nil
	}

	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, value, hasValue := strings.Cut(part, "=")
		switch {
		case key == "required" && !hasValue:
			ft.Required = true
		case key == "sensitive" && !hasValue:
			ft.Sensitive = true
		case !hasValue:
			return ft, fmt.Errorf("schema tag option %q requires a value", key)
		case key == "enum":
			values := strings.Split(value, "|")
			enum := make([]any, 0, len(values))
			for _, v := range values {
				enum = append(enum, v)
			}
			ft.Constraints["enum"] = enum
		case numericKeywords[key]:
			n, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return ft, fmt.Errorf("schema tag %s: %w", key, err)
			}
			ft.Constraints[key] = n
		case key == "format" || key == "pattern":
			ft.Constraints[key] = value
		default:
			return ft, fmt.Errorf("unknown schema tag option %q", key)
		}
	}
	return ft, nil
}
