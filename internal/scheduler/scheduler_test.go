package scheduler

import (
	"bytes"
	"context"
	"errors"
	"math"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/sharma-sourabh3435/imagegen/internal/artifacts"
	"github.com/sharma-sourabh3435/imagegen/internal/models"
	"github.com/sharma-sourabh3435/imagegen/internal/storage"
	"github.com/sharma-sourabh3435/imagegen/internal/worker"
)

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

type failingGenerator struct{}

func (failingGenerator) Load(ctx context.Context) error { return nil }
func (failingGenerator) Generate(ctx context.Context, p worker.Params) ([]byte, error) {
	if p.Prompt == models.WarmupPrompt {
		return nil, nil
	}
	return nil, errors.New("CUDA out of memory")
}
func (failingGenerator) Close() error { return nil }

type hangingGenerator struct{}

func (hangingGenerator) Load(ctx context.Context) error { return nil }
func (hangingGenerator) Generate(ctx context.Context, p worker.Params) ([]byte, error) {
	if p.Prompt == models.WarmupPrompt {
		return nil, nil
	}
	<-ctx.Done()
	return nil, ctx.Err()
}
func (hangingGenerator) Close() error { return nil }

func setupScheduler(t *testing.T, config Config) *Scheduler {
	t.Helper()
	if config.ResultTimeout == 0 {
		config.ResultTimeout = 10 * time.Second
	}
	s := NewScheduler(config)
	if err := s.Start(); err != nil {
		t.Fatalf("Failed to start scheduler: %v", err)
	}
	t.Cleanup(s.Stop)
	return s
}

func request(prompt string) models.GenerateRequest {
	return models.GenerateRequest{Prompt: prompt, Height: 32, Width: 32, Steps: 2, GuidanceScale: 1.0}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("Timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestGenerateReturnsDeterministicPNG(t *testing.T) {
	s := setupScheduler(t, Config{Spawner: proceduralSpawner(time.Minute)})
	ctx := context.Background()

	first, err := s.Generate(ctx, request("A cat"))
	if err != nil {
		t.Fatalf("Failed to generate: %v", err)
	}
	if !bytes.HasPrefix(first.Image, pngSignature) {
		t.Fatalf("Expected PNG signature, got % x", first.Image[:8])
	}
	if first.CorrelationID != 0 {
		t.Errorf("Expected first correlation id 0, got %d", first.CorrelationID)
	}
	if first.Elapsed <= 0 {
		t.Errorf("Expected positive elapsed time, got %v", first.Elapsed)
	}

	second, err := s.Generate(ctx, request("A cat"))
	if err != nil {
		t.Fatalf("Failed to generate: %v", err)
	}
	if second.CorrelationID != 1 {
		t.Errorf("Expected correlation id 1, got %d", second.CorrelationID)
	}
	if !bytes.Equal(first.Image, second.Image) {
		t.Error("Expected identical parameters to produce identical images")
	}
	if spawns := s.WorkerStatus().Spawns; spawns != 1 {
		t.Errorf("Expected worker reuse across jobs, got %d spawns", spawns)
	}
}

func TestGenerateValidationDoesNotConsumeID(t *testing.T) {
	s := setupScheduler(t, Config{Spawner: proceduralSpawner(time.Minute)})
	ctx := context.Background()

	bad := []models.GenerateRequest{
		{Height: 0, Width: 32, Steps: 2, GuidanceScale: 1},
		{Height: 32, Width: 0, Steps: 2, GuidanceScale: 1},
		{Height: 32, Width: 32, Steps: 0, GuidanceScale: 1},
		{Height: 32, Width: 32, Steps: 21, GuidanceScale: 1},
		{Height: 32, Width: 32, Steps: 2, GuidanceScale: 0},
		{Height: 32, Width: 32, Steps: 2, GuidanceScale: 11},
		{Height: 32, Width: 32, Steps: 2, GuidanceScale: math.NaN()},
	}
	for _, req := range bad {
		if _, err := s.Generate(ctx, req); !errors.Is(err, models.ErrInvalidArgument) {
			t.Errorf("Expected ErrInvalidArgument for %+v, got %v", req, err)
		}
	}
	if s.WorkerStatus().Spawns != 0 {
		t.Error("Expected no worker spawned for invalid requests")
	}

	gen, err := s.Generate(ctx, request("ok"))
	if err != nil {
		t.Fatalf("Failed to generate: %v", err)
	}
	if gen.CorrelationID != 0 {
		t.Errorf("Expected correlation id 0 after rejected requests, got %d", gen.CorrelationID)
	}
	if stats := s.GetStats(); stats.RejectedInvalid != uint64(len(bad)) || stats.Admitted != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestGenerateRejectsWhileBusy(t *testing.T) {
	spawner := &InProcSpawner{
		IdleTimeout: time.Minute,
		NewGenerator: func() worker.Generator {
			return &worker.ProceduralGenerator{StepDelay: 150 * time.Millisecond}
		},
	}
	s := setupScheduler(t, Config{Spawner: spawner})
	ctx := context.Background()

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = s.Generate(ctx, models.GenerateRequest{Prompt: "slow", Height: 8, Width: 8, Steps: 4, GuidanceScale: 1})
	}()

	waitFor(t, "first job to be admitted", func() bool { return s.GetStats().InFlight })

	start := time.Now()
	_, err := s.Generate(ctx, request("second"))
	if !errors.Is(err, models.ErrBusy) {
		t.Errorf("Expected ErrBusy, got %v", err)
	}
	if waited := time.Since(start); waited > 100*time.Millisecond {
		t.Errorf("Expected immediate rejection, waited %v", waited)
	}

	wg.Wait()
	if firstErr != nil {
		t.Errorf("Expected admitted job to succeed, got %v", firstErr)
	}
	if stats := s.GetStats(); stats.RejectedBusy != 1 || stats.Admitted != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestGenerateRespawnsAfterIdleExit(t *testing.T) {
	s := setupScheduler(t, Config{Spawner: proceduralSpawner(100 * time.Millisecond)})
	ctx := context.Background()

	first, err := s.Generate(ctx, request("A cat"))
	if err != nil {
		t.Fatalf("Failed to generate: %v", err)
	}

	waitFor(t, "idle worker to exit", func() bool { return !s.WorkerAlive() })

	second, err := s.Generate(ctx, request("A cat"))
	if err != nil {
		t.Fatalf("Failed to generate after idle exit: %v", err)
	}
	if !bytes.Equal(first.Image, second.Image) {
		t.Error("Expected reloaded worker to reproduce the same image")
	}
	if spawns := s.WorkerStatus().Spawns; spawns != 2 {
		t.Errorf("Expected 2 spawns, got %d", spawns)
	}
}

func TestGenerateAcrossRapidIdleExits(t *testing.T) {
	s := setupScheduler(t, Config{Spawner: proceduralSpawner(2 * time.Millisecond)})
	ctx := context.Background()

	const jobs = 300
	for i := 0; i < jobs; i++ {
		gen, err := s.Generate(ctx, request("A cat"))
		if err != nil {
			t.Fatalf("Job %d failed at an idle-exit boundary: %v", i, err)
		}
		if len(gen.Image) == 0 {
			t.Fatalf("Job %d returned no image: %s", i, gen.Failure)
		}
		time.Sleep(time.Duration(i%5) * time.Millisecond)
	}

	if stats := s.GetStats(); stats.Succeeded != jobs || stats.Unavailable != 0 {
		t.Errorf("Expected %d successes and no unavailable, got %+v", jobs, stats)
	}
}

func TestGenerateComputeFailure(t *testing.T) {
	spawner := &InProcSpawner{
		IdleTimeout:  time.Minute,
		NewGenerator: func() worker.Generator { return failingGenerator{} },
	}
	s := setupScheduler(t, Config{Spawner: spawner})

	gen, err := s.Generate(context.Background(), request("A cat"))
	if err != nil {
		t.Fatalf("Expected compute failure to be data, got error %v", err)
	}
	if gen.Failure == "" || len(gen.Image) != 0 {
		t.Errorf("Expected failure with empty image, got %+v", gen)
	}
	if !s.WorkerAlive() {
		t.Error("Expected worker to survive a compute failure")
	}
	if s.GetStats().InFlight {
		t.Error("Expected slot to be released")
	}
}

func TestGenerateWorkerCrash(t *testing.T) {
	spawner := &scriptedSpawner{scripted: []Process{newDroppingProcess(errors.New("signal: killed"))}}
	s := setupScheduler(t, Config{Spawner: spawner})

	_, err := s.Generate(context.Background(), request("A cat"))
	if !errors.Is(err, models.ErrWorkerUnavailable) {
		t.Fatalf("Expected ErrWorkerUnavailable, got %v", err)
	}
	if s.GetStats().InFlight {
		t.Error("Expected slot to be released after crash")
	}
	if s.GetStats().Unavailable != 1 {
		t.Errorf("Expected 1 unavailable job, got %d", s.GetStats().Unavailable)
	}
}

func TestGenerateResultTimeout(t *testing.T) {
	spawner := &InProcSpawner{
		IdleTimeout:  time.Minute,
		NewGenerator: func() worker.Generator { return hangingGenerator{} },
	}
	s := setupScheduler(t, Config{Spawner: spawner, ResultTimeout: 100 * time.Millisecond})

	_, err := s.Generate(context.Background(), request("A cat"))
	if !errors.Is(err, models.ErrWorkerUnavailable) {
		t.Fatalf("Expected ErrWorkerUnavailable, got %v", err)
	}
	if s.GetStats().InFlight {
		t.Error("Expected slot to be released after timeout")
	}
}

func TestGenerateRecordsLedgerAndArtifact(t *testing.T) {
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	defer store.Close()

	fs := afero.NewMemMapFs()
	s := NewScheduler(Config{
		Spawner:       proceduralSpawner(time.Minute),
		Storage:       store,
		Artifacts:     artifacts.NewLocalStore(fs, "artifacts"),
		ResultTimeout: 10 * time.Second,
	})
	if err := s.Start(); err != nil {
		t.Fatalf("Failed to start scheduler: %v", err)
	}

	gen, err := s.Generate(context.Background(), request("A cat"))
	if err != nil {
		t.Fatalf("Failed to generate: %v", err)
	}
	s.Stop()

	ctx := context.Background()
	runs, err := store.ListJobRuns(ctx, 10, 0)
	if err != nil {
		t.Fatalf("Failed to list job runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("Expected 1 job run, got %d", len(runs))
	}
	if runs[0].Status != models.JobStatusSucceeded || runs[0].ImageBytes != len(gen.Image) {
		t.Errorf("Unexpected job run: %+v", runs[0])
	}
	if runs[0].ArtifactKey == "" {
		t.Fatal("Expected artifact location to be recorded")
	}
	stored, err := afero.ReadFile(fs, runs[0].ArtifactKey)
	if err != nil {
		t.Fatalf("Failed to read artifact: %v", err)
	}
	if !bytes.Equal(stored, gen.Image) {
		t.Error("Expected archived image to match the response")
	}

	workers, err := store.ListWorkerRuns(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to list worker runs: %v", err)
	}
	if len(workers) != 1 {
		t.Fatalf("Expected 1 worker run, got %d", len(workers))
	}
	if workers[0].ExitReason != models.ExitReasonShutdown || workers[0].JobsServed != 1 || workers[0].ReadyAt == nil {
		t.Errorf("Unexpected worker run: %+v", workers[0])
	}
}

func TestGenerateAfterStop(t *testing.T) {
	s := NewScheduler(Config{Spawner: proceduralSpawner(time.Minute), ResultTimeout: time.Second})
	s.Stop()

	if _, err := s.Generate(context.Background(), request("A cat")); !errors.Is(err, models.ErrWorkerUnavailable) {
		t.Errorf("Expected ErrWorkerUnavailable after stop, got %v", err)
	}
}
