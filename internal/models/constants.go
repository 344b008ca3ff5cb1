package models

// Parameter bounds shared by server-side enforcement and client-side pre-validation
const (
	MinDimension = 1
	MaxHeight    = 1024
	MaxWidth     = 1024
	MinSteps     = 1
	MaxSteps     = 20
	MinGuidance  = 0.1
	MaxGuidance  = 10.0
)

// FixedSeed is used for every generation so identical parameters reproduce identical images.
const FixedSeed int64 = 0

// Warm-up invocation run once after the compute capability is loaded
const (
	WarmupPrompt   = "warmup"
	WarmupHeight   = 64
	WarmupWidth    = 64
	WarmupSteps    = 2
	WarmupGuidance = 1.0
)

// Job run status constants
const (
	JobStatusRunning   = "running"
	JobStatusSucceeded = "succeeded"
	JobStatusFailed    = "failed"
	JobStatusLost      = "lost"
)

// Worker exit reasons recorded in the ledger
const (
	ExitReasonIdle     = "idle"
	ExitReasonCrash    = "crash"
	ExitReasonShutdown = "shutdown"
)
