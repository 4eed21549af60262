// Package schema derives JSON Schema documents from Go model declarations
// and validates instances against them.
//
// Struct tags are the metadata carrier: the `json` tag names the wire
// property, the `schema` tag declares constraints. Documents are compiled
// with github.com/santhosh-tekuri/jsonschema, which performs the actual
// validation; this package only owns derivation and bookkeeping.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Model is a registered, compiled validation model.
type Model struct {
	Name      string
	Doc       map[string]any
	Sensitive map[string]struct{}

	compiled *jsonschema.Schema
}

// Validate checks an instance (decoded JSON: maps, slices, scalars)
// against the model schema. On failure the returned error is a
// *jsonschema.ValidationError carrying the full cause tree.
func (m *Model) Validate(instance any) error {
	return m.compiled.Validate(instance)
}

// Registry holds the set of registered models. Safe for concurrent use;
// registration normally happens once at startup.
type Registry struct {
	mu     sync.RWMutex
	models map[string]*Model
}

// NewRegistry creates an empty model registry.
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]*Model)}
}

// Register derives, compiles and stores the schema for a model prototype.
// The prototype must be a struct (or pointer to one).
func (r *Registry) Register(name string, prototype any) (*Model, error) {
	if name == "" {
		return nil, fmt.Errorf("model name is empty")
	}

	built, err := build(reflect.TypeOf(prototype))
	if err != nil {
		return nil, fmt.Errorf("model %q: %w", name, err)
	}

	compiled, err := compile(name, built.Doc)
	if err != nil {
		return nil, fmt.Errorf("model %q: %w", name, err)
	}

	m := &Model{
		Name:      name,
		Doc:       built.Doc,
		Sensitive: built.Sensitive,
		compiled:  compiled,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.models[name]; exists {
		return nil, fmt.Errorf("model %q already registered", name)
	}
	r.models[name] = m
	return m, nil
}

// MustRegister is Register for startup paths where a bad model
// declaration is a programming error.
func (r *Registry) MustRegister(name string, prototype any) *Model {
	m, err := r.Register(name, prototype)
	if err != nil {
		panic(err)
	}
	return m
}

// Lookup returns a registered model by name.
func (r *Registry) Lookup(name string) (*Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[name]
	return m, ok
}

// Names returns the registered model names, for diagnostics endpoints.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	return names
}

func compile(name string, doc map[string]any) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema document: %w", err)
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7
	c.AssertFormat = true

	resource := name + ".json"
	if err := c.AddResource(resource, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	compiled, err := c.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return compiled, nil
}
