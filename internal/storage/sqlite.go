package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sharma-sourabh3435/imagegen/internal/models"
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	storage := &SQLiteStorage{db: db}

	// Initialize schema
	if err := storage.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// initSchema initializes the database schema
func (s *SQLiteStorage) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS job_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		correlation_id INTEGER NOT NULL,
		prompt TEXT NOT NULL,
		height INTEGER NOT NULL,
		width INTEGER NOT NULL,
		steps INTEGER NOT NULL,
		guidance_scale REAL NOT NULL,
		worker_id TEXT,
		status TEXT NOT NULL DEFAULT 'running',
		image_bytes INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		artifact_key TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		finished_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS worker_runs (
		worker_id TEXT PRIMARY KEY,
		pid INTEGER NOT NULL DEFAULT 0,
		started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		ready_at TIMESTAMP,
		ended_at TIMESTAMP,
		exit_reason TEXT,
		jobs_served INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_job_runs_status ON job_runs(status);
	CREATE INDEX IF NOT EXISTS idx_job_runs_worker_id ON job_runs(worker_id);
	CREATE INDEX IF NOT EXISTS idx_worker_runs_started_at ON worker_runs(started_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

const jobRunColumns = `id, correlation_id, prompt, height, width, steps, guidance_scale, worker_id, status,
	image_bytes, duration_ms, error, artifact_key, created_at, finished_at`

// CreateJobRun records a freshly admitted job
func (s *SQLiteStorage) CreateJobRun(ctx context.Context, jobRun *models.JobRun) error {
	query := `INSERT INTO job_runs (correlation_id, prompt, height, width, steps, guidance_scale, worker_id, status, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	if jobRun.CreatedAt.IsZero() {
		jobRun.CreatedAt = time.Now()
	}
	result, err := s.db.ExecContext(ctx, query,
		jobRun.CorrelationID, jobRun.Prompt, jobRun.Height, jobRun.Width, jobRun.Steps,
		jobRun.GuidanceScale, jobRun.WorkerID, jobRun.Status, jobRun.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	jobRun.ID = id
	return nil
}

// UpdateJobRun stores the outcome fields of a job run
func (s *SQLiteStorage) UpdateJobRun(ctx context.Context, jobRun *models.JobRun) error {
	query := `UPDATE job_runs SET worker_id = ?, status = ?, image_bytes = ?, duration_ms = ?, error = ?,
	          artifact_key = ?, finished_at = ? WHERE id = ?`

	_, err := s.db.ExecContext(ctx, query,
		jobRun.WorkerID, jobRun.Status, jobRun.ImageBytes, jobRun.DurationMS, jobRun.Error,
		jobRun.ArtifactKey, jobRun.FinishedAt, jobRun.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update job run: %w", err)
	}

	return nil
}

// GetJobRun retrieves a job run by ledger id
func (s *SQLiteStorage) GetJobRun(ctx context.Context, id int64) (*models.JobRun, error) {
	query := `SELECT ` + jobRunColumns + ` FROM job_runs WHERE id = ?`

	jobRun, err := scanJobRun(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("job run %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job run: %w", err)
	}

	return jobRun, nil
}

// ListJobRuns retrieves job runs, newest first
func (s *SQLiteStorage) ListJobRuns(ctx context.Context, limit, offset int) ([]*models.JobRun, error) {
	query := `SELECT ` + jobRunColumns + ` FROM job_runs ORDER BY id DESC LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list job runs: %w", err)
	}
	defer rows.Close()

	var jobRuns []*models.JobRun
	for rows.Next() {
		jobRun, err := scanJobRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job run: %w", err)
		}
		jobRuns = append(jobRuns, jobRun)
	}

	return jobRuns, rows.Err()
}

// CountJobRunsByStatus returns the number of job runs per status
func (s *SQLiteStorage) CountJobRunsByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM job_runs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count job runs: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[status] = n
	}

	return counts, rows.Err()
}

// MarkRunningJobRunsLost closes out jobs left running by a previous server process
func (s *SQLiteStorage) MarkRunningJobRunsLost(ctx context.Context) (int64, error) {
	query := `UPDATE job_runs SET status = ?, error = ?, finished_at = ? WHERE status = ?`

	result, err := s.db.ExecContext(ctx, query,
		models.JobStatusLost, "server restarted", time.Now(), models.JobStatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark running job runs lost: %w", err)
	}
	return result.RowsAffected()
}

// CreateWorkerRun records a freshly spawned compute process
func (s *SQLiteStorage) CreateWorkerRun(ctx context.Context, run *models.WorkerRun) error {
	query := `INSERT INTO worker_runs (worker_id, pid, started_at) VALUES (?, ?, ?)`

	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if _, err := s.db.ExecContext(ctx, query, run.WorkerID, run.PID, run.StartedAt); err != nil {
		return fmt.Errorf("failed to create worker run: %w", err)
	}
	return nil
}

// UpdateWorkerRun stores the lifecycle fields of a worker run
func (s *SQLiteStorage) UpdateWorkerRun(ctx context.Context, run *models.WorkerRun) error {
	query := `UPDATE worker_runs SET pid = ?, ready_at = ?, ended_at = ?, exit_reason = ?, jobs_served = ?
	          WHERE worker_id = ?`

	_, err := s.db.ExecContext(ctx, query,
		run.PID, run.ReadyAt, run.EndedAt, run.ExitReason, run.JobsServed, run.WorkerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update worker run: %w", err)
	}
	return nil
}

// ListWorkerRuns retrieves the most recent worker runs
func (s *SQLiteStorage) ListWorkerRuns(ctx context.Context, limit int) ([]*models.WorkerRun, error) {
	query := `SELECT worker_id, pid, started_at, ready_at, ended_at, exit_reason, jobs_served
	          FROM worker_runs ORDER BY started_at DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list worker runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.WorkerRun
	for rows.Next() {
		run := &models.WorkerRun{}
		var exitReason sql.NullString
		if err := rows.Scan(&run.WorkerID, &run.PID, &run.StartedAt, &run.ReadyAt, &run.EndedAt,
			&exitReason, &run.JobsServed); err != nil {
			return nil, fmt.Errorf("failed to scan worker run: %w", err)
		}
		run.ExitReason = exitReason.String
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Ping checks the database connection
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJobRun(row rowScanner) (*models.JobRun, error) {
	jobRun := &models.JobRun{}
	var workerID, errMsg, artifactKey sql.NullString
	err := row.Scan(
		&jobRun.ID, &jobRun.CorrelationID, &jobRun.Prompt, &jobRun.Height, &jobRun.Width,
		&jobRun.Steps, &jobRun.GuidanceScale, &workerID, &jobRun.Status, &jobRun.ImageBytes,
		&jobRun.DurationMS, &errMsg, &artifactKey, &jobRun.CreatedAt, &jobRun.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	jobRun.WorkerID = workerID.String
	jobRun.Error = errMsg.String
	jobRun.ArtifactKey = artifactKey.String
	return jobRun, nil
}
