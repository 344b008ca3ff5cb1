package models

import "time"

// JobRun is the ledger record of one admitted job
type JobRun struct {
	ID            int64      `json:"id" db:"id"`
	CorrelationID uint64     `json:"correlation_id" db:"correlation_id"`
	Prompt        string     `json:"prompt" db:"prompt"`
	Height        int        `json:"height" db:"height"`
	Width         int        `json:"width" db:"width"`
	Steps         int        `json:"num_inference_steps" db:"steps"`
	GuidanceScale float64    `json:"guidance_scale" db:"guidance_scale"`
	WorkerID      string     `json:"worker_id,omitempty" db:"worker_id"`
	Status        string     `json:"status" db:"status"`
	ImageBytes    int        `json:"image_bytes" db:"image_bytes"`
	DurationMS    int64      `json:"duration_ms" db:"duration_ms"`
	Error         string     `json:"error,omitempty" db:"error"`
	ArtifactKey   string     `json:"artifact_key,omitempty" db:"artifact_key"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty" db:"finished_at"`
}

// NewJobRun builds the running ledger entry for a freshly admitted job
func NewJobRun(job Job, workerID string) *JobRun {
	return &JobRun{
		CorrelationID: job.CorrelationID,
		Prompt:        job.Prompt,
		Height:        job.Height,
		Width:         job.Width,
		Steps:         job.Steps,
		GuidanceScale: job.GuidanceScale,
		WorkerID:      workerID,
		Status:        JobStatusRunning,
		CreatedAt:     time.Now(),
	}
}
