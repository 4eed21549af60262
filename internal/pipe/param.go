// Package pipe converts raw request input plus declared parameter
// metadata into a schema-validated value or a structured bad-request
// error with a path-qualified message.
package pipe

// Source identifies where in the request a parameter is read from.
type Source int

const (
	SourceBody Source = iota
	SourceQuery
	SourcePath
	SourceHeader
)

// String returns the request section name used in error messages.
func (s Source) String() string {
	switch s {
	case SourceBody:
		return "body"
	case SourceQuery:
		return "query"
	case SourcePath:
		return "path"
	case SourceHeader:
		return "headers"
	default:
		return "unknown"
	}
}

// Collection describes the container shape of a model-typed parameter.
type Collection int

const (
	// CollectionSingle - one instance of the model.
	CollectionSingle Collection = iota
	// CollectionArray - a JSON array of model instances.
	CollectionArray
	// CollectionMap - a JSON object whose values are model instances.
	CollectionMap
	// CollectionSet - a JSON array treated as a set of model instances.
	CollectionSet
)

// Kind is the scalar type expected for query/path/header parameters.
type Kind string

const (
	KindString  Kind = "string"
	KindBoolean Kind = "boolean"
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
)

// Param is the declared metadata for one request parameter.
type Param struct {
	// Name is the parameter name within its source; empty for the
	// whole request body.
	Name string
	// Source is where the raw value is read from.
	Source Source
	// Model names a registered schema model; empty for scalar params.
	Model string
	// Kind is the expected scalar type for non-body parameters.
	Kind Kind
	// Collection is the container shape for model-typed parameters.
	Collection Collection
	// Required rejects absent values.
	Required bool
}

// Path returns the parameter locator used in error messages, e.g.
// "request.body" or "request.query.limit".
func (p Param) Path() string {
	path := "request." + p.Source.String()
	if p.Name != "" {
		path += "." + p.Name
	}
	return path
}

// displayName is the bare parameter name quoted in messages.
func (p Param) displayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Source.String()
}

// undefinedValue marks a parameter that was not supplied at all, as
// opposed to an explicit null.
type undefinedValue struct{}

// String renders the sentinel in logs and error messages.
func (undefinedValue) String() string { return "undefined" }

// Undefined is passed to Transform when the request carries no value
// for the parameter. Transform returns it unchanged for optional
// parameters so callers can tell "absent" from "null".
var Undefined undefinedValue
