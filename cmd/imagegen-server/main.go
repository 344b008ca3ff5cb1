package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/sharma-sourabh3435/imagegen/internal/api"
	"github.com/sharma-sourabh3435/imagegen/internal/artifacts"
	"github.com/sharma-sourabh3435/imagegen/internal/events"
	"github.com/sharma-sourabh3435/imagegen/internal/observability"
	"github.com/sharma-sourabh3435/imagegen/internal/rpc"
	"github.com/sharma-sourabh3435/imagegen/internal/scheduler"
	"github.com/sharma-sourabh3435/imagegen/internal/storage"
	"github.com/sharma-sourabh3435/imagegen/pkg/utils"
)

func main() {
	cfg, err := utils.LoadConfig()
	if err != nil {
		utils.Fatal("Failed to load config: %v", err)
	}

	// Parse command-line flags; defaults come from the environment
	flag.StringVar(&cfg.GRPCHost, "host", cfg.GRPCHost, "gRPC listen host")
	flag.IntVar(&cfg.GRPCPort, "port", cfg.GRPCPort, "gRPC listen port")
	flag.IntVar(&cfg.HTTPPort, "metrics-port", cfg.HTTPPort, "Metrics HTTP port (0 disables)")
	flag.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "Job ledger database path (empty disables)")
	flag.StringVar(&cfg.WorkerCommand, "worker", cfg.WorkerCommand, "Worker binary")
	flag.DurationVar(&cfg.WorkerIdleTimeout, "idle", cfg.WorkerIdleTimeout, "Worker idle timeout")
	flag.StringVar(&cfg.Generator, "generator", cfg.Generator, "Generator backend (procedural, command)")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (DEBUG, INFO, WARN, ERROR)")
	flag.Parse()

	utils.SetDefaultLogLevel(cfg.GetLogLevel())

	if err := cfg.Validate(); err != nil {
		utils.Fatal("Invalid configuration: %v", err)
	}

	utils.Info("Starting image generation server")
	utils.Info("gRPC: %s", cfg.GetGRPCAddress())
	utils.Info("Worker: %s (idle %v, generator %s)", cfg.WorkerCommand, cfg.WorkerIdleTimeout, cfg.Generator)

	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, "imagegen-server", cfg.OTelExporter, cfg.OTelEndpoint)
	if err != nil {
		utils.Fatal("Failed to initialize tracing: %v", err)
	}

	// Initialize storage
	var store storage.Storage
	if cfg.DatabasePath != "" {
		sqlite, err := storage.NewSQLiteStorage(cfg.DatabasePath)
		if err != nil {
			utils.Fatal("Failed to initialize storage: %v", err)
		}
		defer sqlite.Close()
		store = sqlite
		utils.Info("Database: %s", cfg.DatabasePath)
	}

	publisher, err := events.New(cfg)
	if err != nil {
		utils.Fatal("Failed to initialize events: %v", err)
	}
	defer publisher.Close()

	artifactStore, err := artifacts.New(ctx, cfg)
	if err != nil {
		utils.Fatal("Failed to initialize artifact store: %v", err)
	}

	// Create scheduler
	sched := scheduler.NewScheduler(scheduler.Config{
		Spawner: &scheduler.ExecSpawner{
			Command: cfg.WorkerCommand,
			Args:    workerArgs(cfg),
		},
		Storage:       store,
		Events:        publisher,
		Artifacts:     artifactStore,
		ResultTimeout: cfg.ResultTimeout,
	})

	if err := sched.Start(); err != nil {
		utils.Fatal("Failed to start scheduler: %v", err)
	}

	// gRPC server
	lis, err := net.Listen("tcp", cfg.GetGRPCAddress())
	if err != nil {
		utils.Fatal("Failed to listen on %s: %v", cfg.GetGRPCAddress(), err)
	}
	grpcServer := rpc.NewGRPCServer(sched, rpc.Options{
		APIKeys:            cfg.APIKeys,
		MaxConcurrentCalls: cfg.MaxConcurrentRPCs,
	})

	var grpcAlive atomic.Bool
	grpcAlive.Store(true)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			utils.Error("gRPC server error: %v", err)
		}
		grpcAlive.Store(false)
	}()

	// Metrics server
	var apiServer *api.Server
	if cfg.HTTPPort > 0 {
		apiServer = api.NewServer(sched, store, grpcAlive.Load, cfg.GetHTTPAddress())
		go func() {
			if err := apiServer.Start(); err != nil {
				utils.Error("Metrics server error: %v", err)
			}
		}()
	}

	utils.Info("Server started successfully")

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	utils.Info("Received shutdown signal")

	utils.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdown(shutdownCtx, grpcServer, &grpcAlive, sched, apiServer, shutdownTracing)

	utils.Info("Shutdown complete")
}

// shutdown stops the scheduler first so waiting Generate calls return
// Unavailable at once, then drains gRPC until ctx is done.
func shutdown(ctx context.Context, grpcServer *grpc.Server, grpcAlive *atomic.Bool, sched *scheduler.Scheduler, apiServer *api.Server, shutdownTracing func(context.Context) error) {
	grpcAlive.Store(false)

	// Stop scheduler, terminating the worker
	sched.Stop()

	drained := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(drained)
	}()
	select {
	case <-drained:
	case <-ctx.Done():
		utils.Warn("gRPC drain interrupted (%v), closing open calls", ctx.Err())
		grpcServer.Stop()
		<-drained
	}

	if apiServer != nil {
		if err := apiServer.Shutdown(ctx); err != nil {
			utils.Error("Metrics server shutdown error: %v", err)
		}
	}

	if err := shutdownTracing(ctx); err != nil {
		utils.Error("Tracing shutdown error: %v", err)
	}
}

// workerArgs forwards the worker-side settings to each spawned worker
func workerArgs(cfg *utils.Config) []string {
	args := []string{
		"--idle", cfg.WorkerIdleTimeout.String(),
		"--generator", cfg.Generator,
		"--generator-timeout", cfg.GeneratorTimeout.String(),
		"--log-level", cfg.LogLevel,
	}
	if cfg.GeneratorCommand != "" {
		args = append(args, "--generator-command", cfg.GeneratorCommand)
	}
	return args
}
