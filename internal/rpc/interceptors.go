package rpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/sharma-sourabh3435/imagegen/pkg/utils"
)

// APIKeyHeader is the metadata key carrying the client credential
const APIKeyHeader = "api-key"

// APIKeyAuth checks the api-key metadata against a static allow-list
type APIKeyAuth struct {
	keys map[string]struct{}
}

// NewAPIKeyAuth creates an authenticator for keys
func NewAPIKeyAuth(keys []string) *APIKeyAuth {
	a := &APIKeyAuth{keys: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		a.keys[k] = struct{}{}
	}
	return a
}

// Valid reports whether key is in the allow-list
func (a *APIKeyAuth) Valid(key string) bool {
	_, ok := a.keys[key]
	return ok
}

// UnaryInterceptor rejects calls without a valid key before the handler runs
func (a *APIKeyAuth) UnaryInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	values := md.Get(APIKeyHeader)
	if len(values) == 0 || !a.Valid(values[0]) {
		return nil, status.Error(codes.Unauthenticated, "Invalid API key")
	}
	return handler(ctx, req)
}

// ConcurrencyLimitInterceptor bounds the number of handlers running at once.
// Calls beyond the limit wait for a free handler or their own deadline.
func ConcurrencyLimitInterceptor(limit int) grpc.UnaryServerInterceptor {
	if limit <= 0 {
		return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
			return handler(ctx, req)
		}
	}

	sem := make(chan struct{}, limit)
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return nil, status.FromContextError(ctx.Err()).Err()
		}
		defer func() { <-sem }()
		return handler(ctx, req)
	}
}

// LoggingInterceptor logs each call with its status code and duration
func LoggingInterceptor(logger *utils.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		code := status.Code(err)
		if code == codes.OK || code == codes.ResourceExhausted {
			logger.Debug("%s %s %v", info.FullMethod, code, time.Since(start))
		} else {
			logger.Info("%s %s %v: %v", info.FullMethod, code, time.Since(start), err)
		}
		return resp, err
	}
}
