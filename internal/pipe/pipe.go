package pipe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"event-ingress-service/internal/observability/logging"
	"event-ingress-service/internal/observability/metrics"
	"event-ingress-service/internal/schema"
	"event-ingress-service/internal/validation"
)

// Pipe validates raw request values against registered models.
type Pipe struct {
	registry  *schema.Registry
	sensitive map[string]struct{}
	metrics   *metrics.Metrics
}

// New creates a pipe backed by the given model registry. sensitive
// lists field names whose values must be redacted in reported errors,
// in addition to fields the models themselves tag as sensitive.
func New(registry *schema.Registry, sensitive []string) *Pipe {
	set := make(map[string]struct{}, len(sensitive))
	for _, name := range sensitive {
		set[name] = struct{}{}
	}
	return &Pipe{
		registry:  registry,
		sensitive: set,
		metrics:   metrics.DefaultMetrics,
	}
}

// Transform validates raw input against the parameter's declared
// metadata and returns it unchanged on success. Scalar query, path and
// header parameters are coerced to their declared kind first. Failures
// are reported as *ParamError.
//
// Pass Undefined when the request carried no value at all: optional
// parameters flow it through untouched, required ones are rejected.
func (p *Pipe) Transform(ctx context.Context, raw any, pm Param) (any, error) {
	start := time.Now()
	value, err := p.transform(ctx, raw, pm)
	if perr, ok := err.(*ParamError); ok {
		keyword := ""
		if len(perr.Errors) > 0 {
			keyword = perr.Errors[0].Keyword
		}
		p.metrics.RecordValidationFailure(pm.Path(), keyword, time.Since(start).Seconds())
		paramLogger := logging.WithParam(pm.Path(), pm.Model)
		paramLogger.Debug().
			Str("keyword", keyword).
			Msg("Parameter rejected")
		return value, err
	}
	if err == nil {
		p.metrics.RecordValidationSuccess(pm.Path(), time.Since(start).Seconds())
	}
	return value, err
}

func (p *Pipe) transform(_ context.Context, raw any, pm Param) (any, error) {
	if _, absent := raw.(undefinedValue); absent {
		if pm.Required {
			return nil, newMissingError(pm)
		}
		return Undefined, nil
	}

	if pm.Source != SourceBody && pm.Kind != "" {
		return p.coerceScalar(raw, pm)
	}

	if pm.Model == "" {
		return raw, nil
	}

	model, ok := p.registry.Lookup(pm.Model)
	if !ok {
		return nil, fmt.Errorf("model %q is not registered", pm.Model)
	}

	instance, perr := decode(raw, pm)
	if perr != nil {
		return nil, perr
	}
	if _, absent := instance.(undefinedValue); absent {
		if pm.Required {
			return nil, newMissingError(pm)
		}
		return Undefined, nil
	}

	if perr := p.validateCollection(pm, model, instance); perr != nil {
		return nil, perr
	}
	return raw, nil
}

// coerceScalar converts the string form of query/path/header values to
// the declared kind. The literal "null" becomes an explicit null for
// every kind; values that cannot be parsed become type errors.
func (p *Pipe) coerceScalar(raw any, pm Param) (any, error) {
	s, isString := raw.(string)
	if !isString {
		// already typed (e.g. coming from a decoded payload)
		return raw, nil
	}
	if s == "null" {
		return nil, nil
	}

	switch pm.Kind {
	case KindBoolean:
		switch s {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, newTypeError(pm, pm.displayName(), "boolean", s)
	case KindInteger:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, newTypeError(pm, pm.displayName(), "integer", s)
		}
		return n, nil
	case KindNumber:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, newTypeError(pm, pm.displayName(), "number", s)
		}
		return f, nil
	default:
		return s, nil
	}
}

// decode turns the raw parameter value into a JSON instance. Byte
// payloads are unmarshalled; already-decoded values pass through.
func decode(raw any, pm Param) (any, *ParamError) {
	var payload []byte
	switch v := raw.(type) {
	case []byte:
		payload = v
	case json.RawMessage:
		payload = v
	case string:
		payload = []byte(v)
	default:
		return raw, nil
	}

	if len(bytes.TrimSpace(payload)) == 0 {
		return Undefined, nil
	}

	var instance any
	if err := json.Unmarshal(payload, &instance); err != nil {
		return nil, newParseError(pm, payload)
	}
	return instance, nil
}

func (p *Pipe) validateCollection(pm Param, model *schema.Model, instance any) *ParamError {
	switch pm.Collection {
	case CollectionArray, CollectionSet:
		elements, ok := instance.([]any)
		if !ok {
			return p.redactTypeError(pm, model, instance)
		}
		for i, element := range elements {
			prefix := fmt.Sprintf("%s[%d]", model.Name, i)
			if pm.Collection == CollectionSet {
				prefix = fmt.Sprintf("Set<%d, %s>", i, model.Name)
			}
			if perr := p.validateOne(pm, model, prefix, element); perr != nil {
				return perr
			}
		}
		return nil
	case CollectionMap:
		entries, ok := instance.(map[string]any)
		if !ok {
			return p.redactObjectTypeError(pm, model, instance)
		}
		keys := make([]string, 0, len(entries))
		for key := range entries {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			prefix := fmt.Sprintf("Map<%s, %s>", key, model.Name)
			if perr := p.validateOne(pm, model, prefix, entries[key]); perr != nil {
				return perr
			}
		}
		return nil
	default:
		return p.validateOne(pm, model, model.Name, instance)
	}
}

func (p *Pipe) validateOne(pm Param, model *schema.Model, prefix string, instance any) *ParamError {
	err := model.Validate(instance)
	if err == nil {
		return nil
	}

	errs := validation.Translate(err, model.Doc, instance)
	errs = validation.Redact(errs, p.sensitiveFor(model))
	for _, e := range errs {
		if e.Data == validation.Redacted {
			p.metrics.RecordRedaction()
		}
	}
	return newParamError(pm.Path(), prefix, errs)
}

func (p *Pipe) redactTypeError(pm Param, model *schema.Model, instance any) *ParamError {
	masked := validation.Mask(instance, p.sensitiveFor(model))
	return newTypeError(pm, model.Name, "array", masked)
}

func (p *Pipe) redactObjectTypeError(pm Param, model *schema.Model, instance any) *ParamError {
	masked := validation.Mask(instance, p.sensitiveFor(model))
	return newTypeError(pm, model.Name, "object", masked)
}

// sensitiveFor merges the globally configured sensitive field names
// with the ones the model tags itself.
func (p *Pipe) sensitiveFor(model *schema.Model) map[string]struct{} {
	merged := make(map[string]struct{}, len(p.sensitive)+len(model.Sensitive))
	for name := range p.sensitive {
		merged[name] = struct{}{}
	}
	for name := range model.Sensitive {
		merged[name] = struct{}{}
	}
	return merged
}
