package pipe

import (
	"fmt"
	"net/http"

	"event-ingress-service/internal/validation"
)

// ParamError reports a parameter that failed validation. Errors holds
// the validator's error list, already redacted.
type ParamError struct {
	Param   string                   `json:"param"`
	Errors  []validation.SchemaError `json:"errors"`
	message string
}

// Error returns the formatted bad-request message:
//
//	Bad request on parameter "<param>".
//	<qualifiedPath> <message>. Given value: <JSON>
func (e *ParamError) Error() string {
	return e.message
}

// Status returns the HTTP status the error maps to.
func (e *ParamError) Status() int {
	return http.StatusBadRequest
}

// newParamError builds the error for a failed schema validation.
// prefix is the qualified-path prefix for the failing instance (model
// name, possibly decorated with the container position); errs must be
// non-empty and already redacted. The first entry drives the message.
func newParamError(param, prefix string, errs []validation.SchemaError) *ParamError {
	first := errs[0]
	return &ParamError{
		Param:  param,
		Errors: errs,
		message: fmt.Sprintf("Bad request on parameter %q.\n%s %s. Given value: %s",
			param, prefix+first.DataPath, first.Message, validation.FormatValue(first.Data)),
	}
}

// newMissingError reports a required parameter that was not supplied.
func newMissingError(p Param) *ParamError {
	name := p.displayName()
	return &ParamError{
		Param: p.Path(),
		Errors: []validation.SchemaError{{
			Keyword: "required",
			Params:  map[string]any{"missingProperty": name},
			Message: fmt.Sprintf("should have required parameter '%s'", name),
		}},
		message: fmt.Sprintf("Bad request on parameter %q.\nIt should have required parameter %q. Given value: undefined",
			p.Path(), name),
	}
}

// newTypeError reports a scalar value that could not be coerced to the
// declared kind, or a container payload of the wrong JSON shape.
func newTypeError(p Param, qualified string, expected string, given any) *ParamError {
	return &ParamError{
		Param: p.Path(),
		Errors: []validation.SchemaError{{
			Keyword: "type",
			Params:  map[string]any{"type": expected},
			Message: "should be " + expected,
			Data:    given,
		}},
		message: fmt.Sprintf("Bad request on parameter %q.\n%s should be %s. Given value: %s",
			p.Path(), qualified, expected, validation.FormatValue(given)),
	}
}

// newParseError reports a body that is not valid JSON.
func newParseError(p Param, raw []byte) *ParamError {
	return &ParamError{
		Param: p.Path(),
		Errors: []validation.SchemaError{{
			Keyword: "parse",
			Params:  map[string]any{},
			Message: "should be valid JSON",
			Data:    string(raw),
		}},
		message: fmt.Sprintf("Bad request on parameter %q.\nUnable to parse JSON payload. Given value: %s",
			p.Path(), validation.FormatValue(string(raw))),
	}
}
