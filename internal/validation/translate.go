package validation

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Translate converts a validator error into the reported error list.
// doc is the raw schema document the instance was validated against and
// instance is the decoded JSON value; both are consulted to resolve
// keyword parameters, since the library reports locations rather than
// structured params.
func Translate(err error, doc map[string]any, instance any) []SchemaError {
	if err == nil {
		return nil
	}

	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []SchemaError{{
			Keyword: "schema",
			Params:  map[string]any{},
			Message: err.Error(),
			Data:    instance,
		}}
	}

	var out []SchemaError
	seen := map[string]struct{}{}
	for _, leaf := range leaves(ve) {
		for _, e := range translateLeaf(leaf, doc, instance) {
			key := fmt.Sprintf("%s|%s|%s|%v", e.Keyword, e.DataPath, e.Message, e.Params)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, e)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DataPath < out[j].DataPath
	})
	return out
}

func leaves(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var all []*jsonschema.ValidationError
	for _, cause := range ve.Causes {
		all = append(all, leaves(cause)...)
	}
	return all
}

func translateLeaf(leaf *jsonschema.ValidationError, doc map[string]any, instance any) []SchemaError {
	keyword := keywordOf(leaf.KeywordLocation)
	data, _ := valueAt(instance, leaf.InstanceLocation)
	schemaValue, _ := valueAt(any(doc), leaf.KeywordLocation)

	base := SchemaError{
		Keyword:    keyword,
		DataPath:   DataPath(leaf.InstanceLocation),
		SchemaPath: "#" + leaf.KeywordLocation,
		Params:     map[string]any{},
		Message:    leaf.Message,
		Data:       data,
	}

	switch keyword {
	case "required":
		return expandRequired(base, schemaValue, data)
	case "additionalProperties":
		if allowed, isBool := schemaValue.(bool); isBool && !allowed {
			return expandAdditional(base, leaf, doc, data)
		}
	case "type":
		base.Params["type"] = schemaValue
		base.Message = "should be " + typeName(schemaValue)
	case "minimum":
		base.Params["comparison"], base.Params["limit"] = ">=", schemaValue
		base.Message = "should be >= " + number(schemaValue)
	case "maximum":
		base.Params["comparison"], base.Params["limit"] = "<=", schemaValue
		base.Message = "should be <= " + number(schemaValue)
	case "exclusiveMinimum":
		base.Params["comparison"], base.Params["limit"] = ">", schemaValue
		base.Message = "should be > " + number(schemaValue)
	case "exclusiveMaximum":
		base.Params["comparison"], base.Params["limit"] = "<", schemaValue
		base.Message = "should be < " + number(schemaValue)
	case "multipleOf":
		base.Params["multipleOf"] = schemaValue
		base.Message = "should be multiple of " + number(schemaValue)
	case "minLength":
		base.Params["limit"] = schemaValue
		base.Message = "should NOT be shorter than " + number(schemaValue) + " characters"
	case "maxLength":
		base.Params["limit"] = schemaValue
		base.Message = "should NOT be longer than " + number(schemaValue) + " characters"
	case "minItems":
		base.Params["limit"] = schemaValue
		base.Message = "should NOT have fewer than " + number(schemaValue) + " items"
	case "maxItems":
		base.Params["limit"] = schemaValue
		base.Message = "should NOT have more than " + number(schemaValue) + " items"
	case "pattern":
		base.Params["pattern"] = schemaValue
		base.Message = fmt.Sprintf("should match pattern %q", schemaValue)
	case "format":
		base.Params["format"] = schemaValue
		base.Message = fmt.Sprintf("should match format %q", schemaValue)
	case "enum":
		base.Params["allowedValues"] = schemaValue
		base.Message = "should be equal to one of the allowed values"
	}
	return []SchemaError{base}
}

// expandRequired emits one error per missing property, in the order the
// schema's required list declares them.
func expandRequired(base SchemaError, schemaValue, data any) []SchemaError {
	required, _ := schemaValue.([]any)
	object, _ := data.(map[string]any)

	var out []SchemaError
	for _, entry := range required {
		name, _ := entry.(string)
		if name == "" {
			continue
		}
		if _, present := object[name]; present {
			continue
		}
		e := base
		e.Params = map[string]any{"missingProperty": name}
		e.Message = fmt.Sprintf("should have required property '%s'", name)
		out = append(out, e)
	}
	if len(out) == 0 {
		return []SchemaError{base}
	}
	return out
}

// expandAdditional emits one error per property not declared in the
// schema, mirroring how validators report additionalProperties: false.
func expandAdditional(base SchemaError, leaf *jsonschema.ValidationError, doc map[string]any, data any) []SchemaError {
	object, _ := data.(map[string]any)

	// declared properties live next to the additionalProperties keyword
	parent := leaf.KeywordLocation[:len(leaf.KeywordLocation)-len("/additionalProperties")]
	declared, _ := valueAt(any(doc), parent+"/properties")
	properties, _ := declared.(map[string]any)

	names := make([]string, 0, len(object))
	for name := range object {
		if _, known := properties[name]; !known {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var out []SchemaError
	for _, name := range names {
		e := base
		e.Params = map[string]any{"additionalProperty": name}
		e.Message = "should NOT have additional properties"
		out = append(out, e)
	}
	if len(out) == 0 {
		return []SchemaError{base}
	}
	return out
}

// keywordOf extracts the failing keyword from a keyword-location
// pointer, stepping over trailing array indices (e.g. enum entries).
func keywordOf(keywordLocation string) string {
	segments := pointerSegments(keywordLocation)
	for i := len(segments) - 1; i >= 0; i-- {
		if _, err := strconv.Atoi(segments[i]); err == nil {
			continue
		}
		return segments[i]
	}
	return ""
}

func typeName(schemaValue any) string {
	switch v := schemaValue.(type) {
	case string:
		return v
	case []any:
		names := make([]string, 0, len(v))
		for _, n := range v {
			if s, ok := n.(string); ok {
				names = append(names, s)
			}
		}
		if len(names) > 0 {
			return joinWithComma(names)
		}
	}
	return fmt.Sprintf("%v", schemaValue)
}

func joinWithComma(names []string) string {
	out := names[0]
	for _, n := range names[1:] {
		out += "," + n
	}
	return out
}

func number(schemaValue any) string {
	switch v := schemaValue.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
