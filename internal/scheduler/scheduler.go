package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/sharma-sourabh3435/imagegen/internal/artifacts"
	"github.com/sharma-sourabh3435/imagegen/internal/events"
	"github.com/sharma-sourabh3435/imagegen/internal/models"
	"github.com/sharma-sourabh3435/imagegen/internal/observability"
	"github.com/sharma-sourabh3435/imagegen/internal/storage"
	"github.com/sharma-sourabh3435/imagegen/pkg/utils"
)

// Scheduler is the job server core. It admits at most one job at a time,
// assigns correlation ids, keeps the compute process running and waits for
// each admitted job's own result.
type Scheduler struct {
	gate          *AdmissionGate
	router        *Router
	supervisor    *Supervisor
	storage       storage.Storage
	events        events.Publisher
	artifacts     artifacts.Store
	resultTimeout time.Duration
	logger        *utils.Logger

	idMu   sync.Mutex
	nextID uint64

	stats stats

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Config holds scheduler configuration. Storage, Events and Artifacts are optional.
type Config struct {
	Spawner       Spawner
	Storage       storage.Storage
	Events        events.Publisher
	Artifacts     artifacts.Store
	ResultTimeout time.Duration
}

// Generation is the outcome of an admitted job. Failure is set when the
// compute capability reported an error; Image is then empty.
type Generation struct {
	CorrelationID uint64
	Image         []byte
	Failure       string
	Elapsed       time.Duration
}

type stats struct {
	admitted    atomic.Uint64
	busy        atomic.Uint64
	invalid     atomic.Uint64
	succeeded   atomic.Uint64
	failed      atomic.Uint64
	unavailable atomic.Uint64
}

// Stats are process-lifetime job counters
type Stats struct {
	Admitted        uint64 `json:"admitted"`
	RejectedBusy    uint64 `json:"rejected_busy"`
	RejectedInvalid uint64 `json:"rejected_invalid"`
	Succeeded       uint64 `json:"succeeded"`
	Failed          uint64 `json:"failed"`
	Unavailable     uint64 `json:"unavailable"`
	DroppedResults  uint64 `json:"dropped_results"`
	InFlight        bool   `json:"in_flight"`
}

// NewScheduler creates a new scheduler instance
func NewScheduler(config Config) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	publisher := config.Events
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	router := NewRouter()

	return &Scheduler{
		gate:          NewAdmissionGate(),
		router:        router,
		supervisor:    NewSupervisor(config.Spawner, router, config.Storage, publisher),
		storage:       config.Storage,
		events:        publisher,
		artifacts:     config.Artifacts,
		resultTimeout: config.ResultTimeout,
		logger:        utils.NewLogger("scheduler"),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start closes out ledger entries left running by a previous server process
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler (result timeout %v)", s.resultTimeout)

	if s.storage != nil {
		n, err := s.storage.MarkRunningJobRunsLost(s.ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			s.logger.Warn("Marked %d jobs from a previous run as lost", n)
		}
	}
	return nil
}

// Stop terminates the compute process and waits for background work
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cancel()
	s.supervisor.Stop(5 * time.Second)
	if n := s.router.FailAll(models.ErrWorkerUnavailable); n > 0 {
		s.logger.Warn("Failed %d waiting jobs on shutdown", n)
	}
	s.wg.Wait()
	s.logger.Info("Scheduler stopped")
}

// Generate validates, admits and runs one job. The caller's ctx is only used
// for tracing: once admitted, the job runs to completion or the result timeout.
func (s *Scheduler) Generate(ctx context.Context, req models.GenerateRequest) (*Generation, error) {
	_, span := observability.StartSpan(ctx, "scheduler.generate",
		attribute.Int("height", req.Height),
		attribute.Int("width", req.Width),
		attribute.Int("steps", req.Steps),
	)
	defer span.End()

	if err := req.Validate(); err != nil {
		s.stats.invalid.Add(1)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !s.gate.TryAdmit() {
		s.stats.busy.Add(1)
		s.logger.Debug("Rejecting request: slot busy")
		span.SetStatus(codes.Error, models.ErrBusy.Error())
		return nil, models.ErrBusy
	}
	defer s.gate.Release()

	job := req.ToJob(s.nextCorrelationID())
	s.stats.admitted.Add(1)
	span.SetAttributes(attribute.Int64("correlation_id", int64(job.CorrelationID)))
	s.logger.Info("Admitted job %d (%dx%d, %d steps, guidance %.2f)",
		job.CorrelationID, job.Width, job.Height, job.Steps, job.GuidanceScale)

	if err := s.supervisor.EnsureRunning(); err != nil {
		s.stats.unavailable.Add(1)
		jobRun := s.recordAdmitted(job, "")
		s.recordFinished(jobRun, models.JobStatusLost, nil, 0, err.Error())
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	workerID := s.supervisor.Status().WorkerID
	jobRun := s.recordAdmitted(job, workerID)
	s.publish(events.JobEvent(events.TypeAdmitted, job.CorrelationID, workerID))

	start := time.Now()
	result, err := s.router.Submit(s.ctx, s.supervisor, job, s.resultTimeout)
	elapsed := time.Since(start)

	if err != nil {
		s.stats.unavailable.Add(1)
		s.logger.Error("Job %d lost after %v: %v", job.CorrelationID, elapsed, err)
		s.recordFinished(jobRun, models.JobStatusLost, nil, elapsed, err.Error())
		s.publishFailure(job.CorrelationID, workerID, elapsed, err.Error())
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	gen := &Generation{CorrelationID: job.CorrelationID, Elapsed: elapsed}
	if result.Failed() {
		s.stats.failed.Add(1)
		gen.Failure = result.Error
		s.logger.Warn("Job %d failed in %v: %s", job.CorrelationID, elapsed, result.Error)
		s.recordFinished(jobRun, models.JobStatusFailed, nil, elapsed, result.Error)
		s.publishFailure(job.CorrelationID, workerID, elapsed, result.Error)
		span.SetStatus(codes.Error, result.Error)
		return gen, nil
	}

	s.stats.succeeded.Add(1)
	gen.Image = result.Image
	s.logger.Info("Job %d succeeded in %v (%d bytes)", job.CorrelationID, elapsed, len(result.Image))
	s.recordFinished(jobRun, models.JobStatusSucceeded, result.Image, elapsed, "")
	s.archive(jobRun, job.CorrelationID, result.Image)

	event := events.JobEvent(events.TypeCompleted, job.CorrelationID, workerID)
	event.DurationMS = elapsed.Milliseconds()
	event.ImageBytes = len(result.Image)
	s.publish(event)

	return gen, nil
}

// nextCorrelationID hands out ids starting at 0, once per admitted job
func (s *Scheduler) nextCorrelationID() uint64 {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	id := s.nextID
	s.nextID++
	return id
}

// WorkerAlive reports whether the compute process is running
func (s *Scheduler) WorkerAlive() bool {
	return s.supervisor.Alive()
}

// WorkerStatus returns a snapshot of the compute process
func (s *Scheduler) WorkerStatus() models.WorkerStatus {
	return s.supervisor.Status()
}

// GetStats returns current scheduler statistics
func (s *Scheduler) GetStats() Stats {
	return Stats{
		Admitted:        s.stats.admitted.Load(),
		RejectedBusy:    s.stats.busy.Load(),
		RejectedInvalid: s.stats.invalid.Load(),
		Succeeded:       s.stats.succeeded.Load(),
		Failed:          s.stats.failed.Load(),
		Unavailable:     s.stats.unavailable.Load(),
		DroppedResults:  s.router.Dropped(),
		InFlight:        s.gate.Busy(),
	}
}

func (s *Scheduler) recordAdmitted(job models.Job, workerID string) *models.JobRun {
	jobRun := models.NewJobRun(job, workerID)
	if s.storage == nil {
		return jobRun
	}
	if err := s.storage.CreateJobRun(s.ctx, jobRun); err != nil {
		s.logger.Error("Failed to record job %d: %v", job.CorrelationID, err)
		return nil
	}
	return jobRun
}

func (s *Scheduler) recordFinished(jobRun *models.JobRun, status string, image []byte, elapsed time.Duration, errMsg string) {
	if jobRun == nil {
		return
	}
	now := time.Now()
	jobRun.Status = status
	jobRun.ImageBytes = len(image)
	jobRun.DurationMS = elapsed.Milliseconds()
	jobRun.Error = errMsg
	jobRun.FinishedAt = &now

	if s.storage == nil {
		return
	}
	if err := s.storage.UpdateJobRun(context.Background(), jobRun); err != nil {
		s.logger.Error("Failed to update job %d: %v", jobRun.CorrelationID, err)
	}
}

// archive stores the image in the background; failures are only logged
func (s *Scheduler) archive(jobRun *models.JobRun, id uint64, image []byte) {
	if s.artifacts == nil {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		location, err := s.artifacts.Put(ctx, artifacts.Key(id, time.Now()), image)
		if err != nil {
			s.logger.Error("Failed to archive image for job %d: %v", id, err)
			return
		}
		s.logger.Debug("Archived image for job %d at %s", id, location)

		if jobRun == nil || s.storage == nil {
			return
		}
		updated := *jobRun
		updated.ArtifactKey = location
		if err := s.storage.UpdateJobRun(ctx, &updated); err != nil {
			s.logger.Error("Failed to record artifact for job %d: %v", id, err)
		}
	}()
}

func (s *Scheduler) publishFailure(id uint64, workerID string, elapsed time.Duration, msg string) {
	event := events.JobEvent(events.TypeFailed, id, workerID)
	event.DurationMS = elapsed.Milliseconds()
	event.Error = msg
	s.publish(event)
}

func (s *Scheduler) publish(event events.Event) {
	if err := s.events.Publish(s.ctx, event); err != nil {
		s.logger.Warn("Failed to publish %s event: %v", event.Type, err)
	}
}
