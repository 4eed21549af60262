// Package grpcapi applies the validation pipe to gRPC unary calls.
//
// There is no generated service surface here: the interceptor looks up
// the parameter metadata registered for the full method name, renders
// the request message to JSON (protojson for proto messages) and lets
// the pipe decide. Rejections surface as InvalidArgument with the same
// message the HTTP API produces.
package grpcapi

import (
	"context"
	"encoding/json"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"event-ingress-service/internal/pipe"
)

// MethodRegistry maps fully-qualified gRPC method names to the
// parameter metadata their request messages are validated against.
type MethodRegistry struct {
	mu      sync.RWMutex
	methods map[string]pipe.Param
}

// NewMethodRegistry creates an empty method registry.
func NewMethodRegistry() *MethodRegistry {
	return &MethodRegistry{methods: make(map[string]pipe.Param)}
}

// Register binds parameter metadata to a full method name, e.g.
// "/ingress.v1.EventService/SubmitEvent".
func (r *MethodRegistry) Register(fullMethod string, param pipe.Param) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods[fullMethod] = param
}

// Lookup returns the metadata registered for a method.
func (r *MethodRegistry) Lookup(fullMethod string) (pipe.Param, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	param, ok := r.methods[fullMethod]
	return param, ok
}

// UnaryValidationInterceptor returns an interceptor that validates
// unary request payloads with the pipe. Methods without registered
// metadata pass through untouched.
func UnaryValidationInterceptor(p *pipe.Pipe, methods *MethodRegistry) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		param, ok := methods.Lookup(info.FullMethod)
		if !ok {
			return handler(ctx, req)
		}

		payload, err := marshalRequest(req)
		if err != nil {
			return nil, status.Errorf(codes.Internal, "failed to encode request for validation: %v", err)
		}

		if _, err := p.Transform(ctx, payload, param); err != nil {
			if perr, ok := err.(*pipe.ParamError); ok {
				return nil, status.Error(codes.InvalidArgument, perr.Error())
			}
			return nil, status.Error(codes.Internal, err.Error())
		}

		return handler(ctx, req)
	}
}

func marshalRequest(req any) ([]byte, error) {
	if pm, ok := req.(proto.Message); ok {
		return protojson.Marshal(pm)
	}
	return json.Marshal(req)
}
