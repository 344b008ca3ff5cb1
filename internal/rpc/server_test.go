package rpc

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	imagegenv1 "github.com/sharma-sourabh3435/imagegen/api/imagegen/v1"
	"github.com/sharma-sourabh3435/imagegen/internal/models"
	"github.com/sharma-sourabh3435/imagegen/internal/scheduler"
	"github.com/sharma-sourabh3435/imagegen/internal/worker"
)

const testKey = "client1"

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// stubCore answers Generate with a canned outcome
type stubCore struct {
	gen   *scheduler.Generation
	err   error
	calls int
	mu    sync.Mutex
}

func (c *stubCore) Generate(ctx context.Context, req models.GenerateRequest) (*scheduler.Generation, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return c.gen, c.err
}

func (c *stubCore) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func setupClient(t *testing.T, core Core) imagegenv1.ImageGenClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	gs := NewGRPCServer(core, Options{APIKeys: []string{testKey}, MaxConcurrentCalls: 4})
	go gs.Serve(lis)
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return imagegenv1.NewImageGenClient(conn)
}

func withKey(key string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), APIKeyHeader, key)
}

func validRequest() *imagegenv1.GenerateRequest {
	return &imagegenv1.GenerateRequest{
		Prompt:            "A cat",
		Height:            32,
		Width:             32,
		NumInferenceSteps: 2,
		GuidanceScale:     1.0,
	}
}

func TestPing(t *testing.T) {
	client := setupClient(t, &stubCore{})

	resp, err := client.Ping(withKey(testKey), &imagegenv1.PingRequest{})
	if err != nil {
		t.Fatalf("Failed to ping: %v", err)
	}
	if resp.Message != "Pong" {
		t.Errorf("Expected Pong, got %q", resp.Message)
	}
}

func TestAuthentication(t *testing.T) {
	core := &stubCore{}
	client := setupClient(t, core)

	contexts := map[string]context.Context{
		"missing key": context.Background(),
		"wrong key":   withKey("intruder"),
	}
	for name, ctx := range contexts {
		t.Run(name, func(t *testing.T) {
			_, err := client.Ping(ctx, &imagegenv1.PingRequest{})
			if status.Code(err) != codes.Unauthenticated {
				t.Errorf("Expected Unauthenticated from Ping, got %v", err)
			}

			// auth runs before validation
			bad := validRequest()
			bad.Height = 0
			_, err = client.Generate(ctx, bad)
			if status.Code(err) != codes.Unauthenticated {
				t.Errorf("Expected Unauthenticated from Generate, got %v", err)
			}
			if st, _ := status.FromError(err); st.Message() != "Invalid API key" {
				t.Errorf("Expected message %q, got %q", "Invalid API key", st.Message())
			}
		})
	}

	if core.Calls() != 0 {
		t.Errorf("Expected core untouched by unauthenticated calls, got %d calls", core.Calls())
	}
}

func TestGenerateInvalidArgument(t *testing.T) {
	client := setupClient(t, &stubCore{})

	tests := []struct {
		name  string
		edit  func(*imagegenv1.GenerateRequest)
		field string
	}{
		{"height", func(r *imagegenv1.GenerateRequest) { r.Height = 2048 }, "height"},
		{"width", func(r *imagegenv1.GenerateRequest) { r.Width = -1 }, "width"},
		{"steps", func(r *imagegenv1.GenerateRequest) { r.NumInferenceSteps = 50 }, "num_inference_steps"},
		{"guidance", func(r *imagegenv1.GenerateRequest) { r.GuidanceScale = 0.05 }, "guidance_scale"},
		{"guidance NaN", func(r *imagegenv1.GenerateRequest) { r.GuidanceScale = float32(math.NaN()) }, "guidance_scale"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.edit(req)

			_, err := client.Generate(withKey(testKey), req)
			if status.Code(err) != codes.InvalidArgument {
				t.Fatalf("Expected InvalidArgument, got %v", err)
			}
			if st, _ := status.FromError(err); !strings.Contains(st.Message(), tt.field) {
				t.Errorf("Expected message naming %s, got %q", tt.field, st.Message())
			}
		})
	}
}

func TestGenerateErrorClasses(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
	}{
		{models.ErrBusy, codes.ResourceExhausted},
		{fmt.Errorf("%w: worker crashed", models.ErrWorkerUnavailable), codes.Unavailable},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			client := setupClient(t, &stubCore{err: tt.err})

			_, err := client.Generate(withKey(testKey), validRequest())
			if status.Code(err) != tt.code {
				t.Errorf("Expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestGenerateBusyMessage(t *testing.T) {
	client := setupClient(t, &stubCore{err: models.ErrBusy})

	_, err := client.Generate(withKey(testKey), validRequest())
	st, _ := status.FromError(err)
	if st.Message() != BusyMessage {
		t.Errorf("Expected busy message %q, got %q", BusyMessage, st.Message())
	}
}

func TestGenerateComputeFailureReturnsEmptyImage(t *testing.T) {
	core := &stubCore{gen: &scheduler.Generation{
		CorrelationID: 3,
		Failure:       "CUDA out of memory",
		Elapsed:       1500 * time.Millisecond,
	}}
	client := setupClient(t, core)

	resp, err := client.Generate(withKey(testKey), validRequest())
	if err != nil {
		t.Fatalf("Expected success status for compute failure, got %v", err)
	}
	if len(resp.ImagePng) != 0 {
		t.Errorf("Expected empty image, got %d bytes", len(resp.ImagePng))
	}
	if resp.InferenceTime < 1.4 || resp.InferenceTime > 1.6 {
		t.Errorf("Expected inference time 1.5, got %v", resp.InferenceTime)
	}
}

func TestGenerateEndToEnd(t *testing.T) {
	s := scheduler.NewScheduler(scheduler.Config{
		Spawner: &scheduler.InProcSpawner{
			IdleTimeout:  time.Minute,
			NewGenerator: func() worker.Generator { return worker.NewProceduralGenerator() },
		},
		ResultTimeout: 10 * time.Second,
	})
	if err := s.Start(); err != nil {
		t.Fatalf("Failed to start scheduler: %v", err)
	}
	t.Cleanup(s.Stop)

	client := setupClient(t, s)

	resp, err := client.Generate(withKey(testKey), validRequest())
	if err != nil {
		t.Fatalf("Failed to generate: %v", err)
	}
	if !bytes.HasPrefix(resp.ImagePng, pngSignature) {
		t.Errorf("Expected PNG bytes, got %d bytes without signature", len(resp.ImagePng))
	}
	if resp.InferenceTime <= 0 {
		t.Errorf("Expected positive inference time, got %v", resp.InferenceTime)
	}

	again, err := client.Generate(withKey(testKey), validRequest())
	if err != nil {
		t.Fatalf("Failed to generate second image: %v", err)
	}
	if !bytes.Equal(resp.ImagePng, again.ImagePng) {
		t.Error("Expected identical images for identical requests")
	}
}

func TestConcurrencyLimitInterceptor(t *testing.T) {
	limit := ConcurrencyLimitInterceptor(1)
	info := &grpc.UnaryServerInfo{FullMethod: imagegenv1.ImageGen_Generate_FullMethodName}

	release := make(chan struct{})
	started := make(chan struct{})
	go limit(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		close(started)
		<-release
		return nil, nil
	})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := limit(ctx, nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Error("Handler ran beyond the concurrency limit")
		return nil, nil
	})
	if status.Code(err) != codes.DeadlineExceeded {
		t.Errorf("Expected DeadlineExceeded while waiting, got %v", err)
	}
	close(release)
}
