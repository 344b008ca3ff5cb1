package storage

import (
	"context"
	"errors"

	"github.com/sharma-sourabh3435/imagegen/internal/models"
)

// ErrNotFound is returned when a ledger row does not exist
var ErrNotFound = errors.New("not found")

// Storage defines the interface for the job ledger
type Storage interface {
	// JobRun operations
	CreateJobRun(ctx context.Context, jobRun *models.JobRun) error
	UpdateJobRun(ctx context.Context, jobRun *models.JobRun) error
	GetJobRun(ctx context.Context, id int64) (*models.JobRun, error)
	ListJobRuns(ctx context.Context, limit, offset int) ([]*models.JobRun, error)
	CountJobRunsByStatus(ctx context.Context) (map[string]int, error)
	MarkRunningJobRunsLost(ctx context.Context) (int64, error)

	// WorkerRun operations
	CreateWorkerRun(ctx context.Context, run *models.WorkerRun) error
	UpdateWorkerRun(ctx context.Context, run *models.WorkerRun) error
	ListWorkerRuns(ctx context.Context, limit int) ([]*models.WorkerRun, error)

	// Database management
	Close() error
	Ping(ctx context.Context) error
}
