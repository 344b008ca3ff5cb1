package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sharma-sourabh3435/imagegen/internal/models"
)

func setupTestDB(t *testing.T) (*SQLiteStorage, func()) {
	// Create temporary database file
	tmpFile := filepath.Join(t.TempDir(), "test_imagegen.db")

	storage, err := NewSQLiteStorage(tmpFile)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	cleanup := func() {
		storage.Close()
	}

	return storage, cleanup
}

func testJob(id uint64) models.Job {
	return models.Job{CorrelationID: id, Prompt: "A cat", Height: 512, Width: 512, Steps: 5, GuidanceScale: 1.0}
}

func TestCreateAndGetJobRun(t *testing.T) {
	storage, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	jobRun := models.NewJobRun(testJob(7), "worker-1")
	if err := storage.CreateJobRun(ctx, jobRun); err != nil {
		t.Fatalf("Failed to create job run: %v", err)
	}

	if jobRun.ID == 0 {
		t.Error("Expected job run ID to be set")
	}

	retrieved, err := storage.GetJobRun(ctx, jobRun.ID)
	if err != nil {
		t.Fatalf("Failed to get job run: %v", err)
	}

	if retrieved.CorrelationID != 7 || retrieved.Prompt != "A cat" || retrieved.Status != models.JobStatusRunning {
		t.Errorf("Retrieved job run doesn't match. Got %+v, want %+v", retrieved, jobRun)
	}
	if retrieved.FinishedAt != nil {
		t.Errorf("Expected no finish time, got %v", retrieved.FinishedAt)
	}
}

func TestGetJobRunNotFound(t *testing.T) {
	storage, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := storage.GetJobRun(context.Background(), 99)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestUpdateJobRun(t *testing.T) {
	storage, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	jobRun := models.NewJobRun(testJob(1), "worker-1")
	if err := storage.CreateJobRun(ctx, jobRun); err != nil {
		t.Fatalf("Failed to create job run: %v", err)
	}

	finished := time.Now()
	jobRun.Status = models.JobStatusSucceeded
	jobRun.ImageBytes = 1234
	jobRun.DurationMS = 850
	jobRun.ArtifactKey = "2026-10-17/1.png"
	jobRun.FinishedAt = &finished

	if err := storage.UpdateJobRun(ctx, jobRun); err != nil {
		t.Fatalf("Failed to update job run: %v", err)
	}

	retrieved, err := storage.GetJobRun(ctx, jobRun.ID)
	if err != nil {
		t.Fatalf("Failed to get job run: %v", err)
	}

	if retrieved.Status != models.JobStatusSucceeded {
		t.Errorf("Expected status %s, got %s", models.JobStatusSucceeded, retrieved.Status)
	}
	if retrieved.ImageBytes != 1234 || retrieved.DurationMS != 850 {
		t.Errorf("Expected image_bytes 1234 and duration 850, got %d and %d", retrieved.ImageBytes, retrieved.DurationMS)
	}
	if retrieved.ArtifactKey != "2026-10-17/1.png" {
		t.Errorf("Expected artifact key, got %q", retrieved.ArtifactKey)
	}
	if retrieved.FinishedAt == nil {
		t.Error("Expected finish time to be set")
	}
}

func TestListAndCountJobRuns(t *testing.T) {
	storage, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	for i := uint64(0); i < 5; i++ {
		jobRun := models.NewJobRun(testJob(i), "worker-1")
		if err := storage.CreateJobRun(ctx, jobRun); err != nil {
			t.Fatalf("Failed to create job run: %v", err)
		}
		if i%2 == 0 {
			jobRun.Status = models.JobStatusSucceeded
		} else {
			jobRun.Status = models.JobStatusFailed
		}
		if err := storage.UpdateJobRun(ctx, jobRun); err != nil {
			t.Fatalf("Failed to update job run: %v", err)
		}
	}

	jobRuns, err := storage.ListJobRuns(ctx, 3, 0)
	if err != nil {
		t.Fatalf("Failed to list job runs: %v", err)
	}
	if len(jobRuns) != 3 {
		t.Fatalf("Expected 3 job runs, got %d", len(jobRuns))
	}
	if jobRuns[0].CorrelationID != 4 {
		t.Errorf("Expected newest job first, got correlation id %d", jobRuns[0].CorrelationID)
	}

	counts, err := storage.CountJobRunsByStatus(ctx)
	if err != nil {
		t.Fatalf("Failed to count job runs: %v", err)
	}
	if counts[models.JobStatusSucceeded] != 3 || counts[models.JobStatusFailed] != 2 {
		t.Errorf("Unexpected counts: %v", counts)
	}
}

func TestMarkRunningJobRunsLost(t *testing.T) {
	storage, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	running := models.NewJobRun(testJob(0), "worker-1")
	done := models.NewJobRun(testJob(1), "worker-1")
	for _, jr := range []*models.JobRun{running, done} {
		if err := storage.CreateJobRun(ctx, jr); err != nil {
			t.Fatalf("Failed to create job run: %v", err)
		}
	}
	done.Status = models.JobStatusSucceeded
	if err := storage.UpdateJobRun(ctx, done); err != nil {
		t.Fatalf("Failed to update job run: %v", err)
	}

	n, err := storage.MarkRunningJobRunsLost(ctx)
	if err != nil {
		t.Fatalf("Failed to mark job runs lost: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 job run marked lost, got %d", n)
	}

	retrieved, err := storage.GetJobRun(ctx, running.ID)
	if err != nil {
		t.Fatalf("Failed to get job run: %v", err)
	}
	if retrieved.Status != models.JobStatusLost {
		t.Errorf("Expected status %s, got %s", models.JobStatusLost, retrieved.Status)
	}
}

func TestWorkerRuns(t *testing.T) {
	storage, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	run := &models.WorkerRun{WorkerID: "worker-1", PID: 4242, StartedAt: time.Now().Add(-time.Minute)}
	if err := storage.CreateWorkerRun(ctx, run); err != nil {
		t.Fatalf("Failed to create worker run: %v", err)
	}
	second := &models.WorkerRun{WorkerID: "worker-2", PID: 4343}
	if err := storage.CreateWorkerRun(ctx, second); err != nil {
		t.Fatalf("Failed to create worker run: %v", err)
	}

	ended := time.Now()
	run.EndedAt = &ended
	run.ExitReason = models.ExitReasonIdle
	run.JobsServed = 3
	if err := storage.UpdateWorkerRun(ctx, run); err != nil {
		t.Fatalf("Failed to update worker run: %v", err)
	}

	runs, err := storage.ListWorkerRuns(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to list worker runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 worker runs, got %d", len(runs))
	}
	if runs[0].WorkerID != "worker-2" {
		t.Errorf("Expected newest worker first, got %s", runs[0].WorkerID)
	}
	if runs[1].ExitReason != models.ExitReasonIdle || runs[1].JobsServed != 3 || runs[1].EndedAt == nil {
		t.Errorf("Worker run not updated: %+v", runs[1])
	}
	if runs[0].EndedAt != nil || runs[0].ExitReason != "" {
		t.Errorf("Expected live worker run, got %+v", runs[0])
	}
}
