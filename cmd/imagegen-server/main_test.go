package main

import (
	"context"
	"net"
	"sync/atomic"
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
	"github.com/sharma-sourabh3435/imagegen/internal/rpc"
	"github.com/sharma-sourabh3435/imagegen/internal/scheduler"
	"github.com/sharma-sourabh3435/imagegen/internal/worker"
)

// stuckGenerator never finishes a real job on its own
type stuckGenerator struct {
	started chan struct{}
}

func (g *stuckGenerator) Load(ctx context.Context) error { return nil }
func (g *stuckGenerator) Close() error                   { return nil }

func (g *stuckGenerator) Generate(ctx context.Context, p worker.Params) ([]byte, error) {
	if p.Prompt == models.WarmupPrompt {
		return nil, nil
	}
	close(g.started)
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestShutdownDoesNotWaitForResultTimeout(t *testing.T) {
	gen := &stuckGenerator{started: make(chan struct{})}
	sched := scheduler.NewScheduler(scheduler.Config{
		Spawner: &scheduler.InProcSpawner{
			IdleTimeout:  time.Minute,
			NewGenerator: func() worker.Generator { return gen },
		},
		ResultTimeout: time.Minute,
	})
	if err := sched.Start(); err != nil {
		t.Fatalf("Failed to start scheduler: %v", err)
	}

	lis := bufconn.Listen(1 << 20)
	grpcServer := rpc.NewGRPCServer(sched, rpc.Options{APIKeys: []string{"client1"}, MaxConcurrentCalls: 4})
	go grpcServer.Serve(lis)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	defer conn.Close()
	client := imagegenv1.NewImageGenClient(conn)

	callErr := make(chan error, 1)
	go func() {
		ctx := metadata.AppendToOutgoingContext(context.Background(), rpc.APIKeyHeader, "client1")
		_, err := client.Generate(ctx, &imagegenv1.GenerateRequest{
			Prompt:            "A cat",
			Height:            32,
			Width:             32,
			NumInferenceSteps: 2,
			GuidanceScale:     1.0,
		})
		callErr <- err
	}()

	select {
	case <-gen.started:
	case <-time.After(3 * time.Second):
		t.Fatal("Job never reached the generator")
	}

	var grpcAlive atomic.Bool
	grpcAlive.Store(true)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	start := time.Now()
	shutdown(ctx, grpcServer, &grpcAlive, sched, nil, func(context.Context) error { return nil })
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Expected prompt shutdown, took %v", elapsed)
	}

	if grpcAlive.Load() {
		t.Error("Expected gRPC to be marked down")
	}

	select {
	case err := <-callErr:
		if status.Code(err) != codes.Unavailable {
			t.Errorf("Expected Unavailable for the open call, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Open call did not return after shutdown")
	}
}
