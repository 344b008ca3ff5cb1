package models

import "time"

// WorkerState is the lifecycle state of the compute process
type WorkerState string

const (
	WorkerUnspawned  WorkerState = "unspawned"
	WorkerStarting   WorkerState = "starting"
	WorkerLoading    WorkerState = "loading"
	WorkerReady      WorkerState = "ready"
	WorkerIdle       WorkerState = "idle"
	WorkerTerminated WorkerState = "terminated"
)

// WorkerStatus is a read-only snapshot of the supervised compute process
type WorkerStatus struct {
	WorkerID  string      `json:"worker_id,omitempty"`
	PID       int         `json:"pid,omitempty"`
	State     WorkerState `json:"state"`
	Alive     bool        `json:"alive"`
	StartedAt *time.Time  `json:"started_at,omitempty"`
	Spawns    uint64      `json:"spawns"`
	InFlight  int         `json:"in_flight"`
}

// WorkerRun is the ledger record of one compute process lifetime
type WorkerRun struct {
	WorkerID   string     `json:"worker_id" db:"worker_id"`
	PID        int        `json:"pid" db:"pid"`
	StartedAt  time.Time  `json:"started_at" db:"started_at"`
	ReadyAt    *time.Time `json:"ready_at,omitempty" db:"ready_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty" db:"ended_at"`
	ExitReason string     `json:"exit_reason,omitempty" db:"exit_reason"`
	JobsServed int        `json:"jobs_served" db:"jobs_served"`
}
