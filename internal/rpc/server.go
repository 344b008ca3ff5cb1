// Package rpc exposes the job server core over gRPC.
package rpc

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	imagegenv1 "github.com/sharma-sourabh3435/imagegen/api/imagegen/v1"
	"github.com/sharma-sourabh3435/imagegen/internal/models"
	"github.com/sharma-sourabh3435/imagegen/internal/observability"
	"github.com/sharma-sourabh3435/imagegen/internal/scheduler"
	"github.com/sharma-sourabh3435/imagegen/pkg/utils"
)

// BusyMessage is returned with ResourceExhausted while another job holds the slot
const BusyMessage = "Server busy: only one inference at a time. Please retry shortly."

// Core is the part of the scheduler the facade delegates to
type Core interface {
	Generate(ctx context.Context, req models.GenerateRequest) (*scheduler.Generation, error)
}

// Server implements imagegenv1.ImageGenServer
type Server struct {
	imagegenv1.UnimplementedImageGenServer
	core   Core
	logger *utils.Logger
}

// NewServer creates the facade over core
func NewServer(core Core) *Server {
	return &Server{
		core:   core,
		logger: utils.NewLogger("rpc"),
	}
}

// Options configure the gRPC server
type Options struct {
	APIKeys            []string
	MaxConcurrentCalls int
}

// NewGRPCServer builds a grpc.Server with the facade registered behind the
// logging, concurrency and API-key interceptors
func NewGRPCServer(core Core, opts Options) *grpc.Server {
	srv := NewServer(core)
	auth := NewAPIKeyAuth(opts.APIKeys)

	gs := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			LoggingInterceptor(srv.logger),
			ConcurrencyLimitInterceptor(opts.MaxConcurrentCalls),
			auth.UnaryInterceptor,
		),
	)
	imagegenv1.RegisterImageGenServer(gs, srv)
	return gs
}

// Ping is the liveness probe
func (s *Server) Ping(ctx context.Context, req *imagegenv1.PingRequest) (*imagegenv1.PingResponse, error) {
	return &imagegenv1.PingResponse{Message: "Pong"}, nil
}

// Generate runs one image generation. A compute failure is answered with an
// empty image rather than an error.
func (s *Server) Generate(ctx context.Context, req *imagegenv1.GenerateRequest) (*imagegenv1.GenerateResponse, error) {
	ctx, span := observability.StartSpan(ctx, "rpc.Generate",
		attribute.Int("prompt_length", len(req.GetPrompt())),
	)
	defer span.End()

	gen, err := s.core.Generate(ctx, models.GenerateRequest{
		Prompt:        req.GetPrompt(),
		Height:        int(req.GetHeight()),
		Width:         int(req.GetWidth()),
		Steps:         int(req.GetNumInferenceSteps()),
		GuidanceScale: float64(req.GetGuidanceScale()),
	})
	if err != nil {
		return nil, toStatus(err)
	}

	if gen.Failure != "" {
		s.logger.Warn("Job %d returned no image: %s", gen.CorrelationID, gen.Failure)
	}
	return &imagegenv1.GenerateResponse{
		ImagePng:      gen.Image,
		InferenceTime: float32(gen.Elapsed.Seconds()),
	}, nil
}

// toStatus maps core errors onto the gRPC failure classes
func toStatus(err error) error {
	switch {
	case errors.Is(err, models.ErrInvalidArgument):
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			return status.Error(codes.InvalidArgument, verr.Error())
		}
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, models.ErrBusy):
		return status.Error(codes.ResourceExhausted, BusyMessage)
	case errors.Is(err, models.ErrWorkerUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
