// Package validation translates raw schema-validator output into the
// error shape the ingress API reports: keyword, data path, params and a
// human-readable message, with sensitive values redacted.
package validation

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Redacted replaces the data value of errors on sensitive fields.
const Redacted = "[REDACTED]"

// SchemaError is a single validation failure in the wire shape exposed
// to clients and audit consumers.
type SchemaError struct {
	Keyword    string         `json:"keyword"`
	DataPath   string         `json:"dataPath"`
	SchemaPath string         `json:"schemaPath"`
	Params     map[string]any `json:"params"`
	Message    string         `json:"message"`
	Data       any            `json:"data"`
}

// pointerSegments splits a JSON Pointer into unescaped segments.
// The empty pointer refers to the document root.
func pointerSegments(pointer string) []string {
	if pointer == "" || pointer == "/" {
		return nil
	}
	parts := strings.Split(strings.TrimPrefix(pointer, "/"), "/")
	for i, p := range parts {
		p = strings.ReplaceAll(p, "~1", "/")
		p = strings.ReplaceAll(p, "~0", "~")
		parts[i] = p
	}
	return parts
}

// DataPath converts an instance-location JSON Pointer into the dotted
// path reported to clients: "/participant/id" -> ".participant.id",
// "/tags/0" -> ".tags[0]". The root pointer yields "".
func DataPath(pointer string) string {
	var b strings.Builder
	for _, seg := range pointerSegments(pointer) {
		if _, err := strconv.Atoi(seg); err == nil {
			b.WriteString("[" + seg + "]")
			continue
		}
		b.WriteString("." + seg)
	}
	return b.String()
}

// lastProperty returns the final property name of a dotted data path,
// or "" when the path is empty or ends on an array index.
func lastProperty(dataPath string) string {
	if dataPath == "" || strings.HasSuffix(dataPath, "]") {
		return ""
	}
	if i := strings.LastIndexByte(dataPath, '.'); i >= 0 {
		return dataPath[i+1:]
	}
	return dataPath
}

// valueAt resolves a JSON Pointer against decoded JSON (maps, slices).
func valueAt(root any, pointer string) (any, bool) {
	current := root
	for _, seg := range pointerSegments(pointer) {
		switch node := current.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			current = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			current = node[i]
		default:
			return nil, false
		}
	}
	return current, true
}

// FormatValue renders a value the way error messages quote it.
func FormatValue(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(raw)
}

// Redact returns a copy of the error list with data values masked: an
// error failing on a sensitive field has its data replaced with
// Redacted outright, and object or array data is masked recursively so
// nested sensitive values never surface either.
func Redact(errs []SchemaError, sensitive map[string]struct{}) []SchemaError {
	if len(errs) == 0 {
		return errs
	}
	out := make([]SchemaError, len(errs))
	for i, e := range errs {
		if _, hit := sensitive[lastProperty(e.DataPath)]; hit {
			e.Data = Redacted
		} else {
			e.Data = deepMask(e.Data, sensitive)
		}
		out[i] = e
	}
	return out
}

// Mask recursively replaces sensitive values inside decoded JSON,
// for callers that build error text from raw instances.
func Mask(v any, sensitive map[string]struct{}) any {
	return deepMask(v, sensitive)
}

func deepMask(v any, sensitive map[string]struct{}) any {
	switch node := v.(type) {
	case map[string]any:
		masked := make(map[string]any, len(node))
		for k, child := range node {
			if _, hit := sensitive[k]; hit {
				masked[k] = Redacted
				continue
			}
			masked[k] = deepMask(child, sensitive)
		}
		return masked
	case []any:
		masked := make([]any, len(node))
		for i, child := range node {
			masked[i] = deepMask(child, sensitive)
		}
		return masked
	default:
		return v
	}
}
