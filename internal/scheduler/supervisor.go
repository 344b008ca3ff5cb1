package scheduler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sharma-sourabh3435/imagegen/internal/events"
	"github.com/sharma-sourabh3435/imagegen/internal/ipc"
	"github.com/sharma-sourabh3435/imagegen/internal/models"
	"github.com/sharma-sourabh3435/imagegen/internal/storage"
	"github.com/sharma-sourabh3435/imagegen/pkg/utils"
)

// Supervisor owns the lifecycle of the single compute process. It spawns on
// demand, relays results to the Router, and notices when the process exits.
type Supervisor struct {
	spawner Spawner
	router  *Router
	storage storage.Storage
	events  events.Publisher
	logger  *utils.Logger

	mu      sync.Mutex
	current *handle
	spawns  uint64
	stopped bool
	wg      sync.WaitGroup
}

// handle is the supervisor's view of one compute process lifetime
type handle struct {
	id        string
	proc      Process
	enc       *ipc.Encoder
	state     models.WorkerState
	alive     bool
	startedAt time.Time
	inflight  map[uint64]models.Job
	run       *models.WorkerRun
	done      chan struct{}
}

// NewSupervisor creates a supervisor. store and publisher may be nil.
func NewSupervisor(spawner Spawner, router *Router, store storage.Storage, publisher events.Publisher) *Supervisor {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Supervisor{
		spawner: spawner,
		router:  router,
		storage: store,
		events:  publisher,
		logger:  utils.NewLogger("supervisor"),
	}
}

// EnsureRunning spawns a compute process unless a live one exists
func (s *Supervisor) EnsureRunning() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return fmt.Errorf("%w: supervisor stopped", models.ErrWorkerUnavailable)
	}
	if s.current != nil && s.current.alive {
		s.mu.Unlock()
		return nil
	}

	id := uuid.New().String()
	proc, err := s.spawner.Spawn(id)
	if err != nil {
		s.mu.Unlock()
		s.logger.Error("Failed to spawn worker: %v", err)
		return fmt.Errorf("%w: %v", models.ErrWorkerUnavailable, err)
	}

	h := &handle{
		id:        id,
		proc:      proc,
		enc:       ipc.NewEncoder(proc.Stdin()),
		state:     models.WorkerStarting,
		alive:     true,
		startedAt: time.Now(),
		inflight:  make(map[uint64]models.Job),
		done:      make(chan struct{}),
	}
	h.run = &models.WorkerRun{WorkerID: id, PID: proc.PID(), StartedAt: h.startedAt}
	run := *h.run
	s.current = h
	s.spawns++
	spawns := s.spawns

	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Info("Spawned worker %s (pid %d, spawn #%d)", id, run.PID, spawns)
	s.recordWorker(&run, true)
	s.publish(events.WorkerEvent(id, string(models.WorkerStarting)))

	// the ledger row exists before any exit can update it
	readerDone := make(chan struct{})
	stderrDone := make(chan struct{})
	go s.readResults(h, readerDone)
	go s.relayStderr(h, stderrDone)
	go s.waitProcess(h, readerDone, stderrDone)
	return nil
}

// Dispatch implements Dispatcher by writing the job to the current worker's stdin.
// A worker that exited since EnsureRunning is replaced once. A job the worker's
// closed stdin refused stays in flight: the worker is exiting, and waitProcess
// replays it after an idle exit or fails it otherwise.
func (s *Supervisor) Dispatch(job models.Job) error {
	var h *handle
	for respawned := false; ; respawned = true {
		s.mu.Lock()
		h = s.current
		if h != nil && h.alive {
			h.inflight[job.CorrelationID] = job
			s.mu.Unlock()
			break
		}
		s.mu.Unlock()

		if respawned {
			return fmt.Errorf("%w: no live worker", models.ErrWorkerUnavailable)
		}
		if err := s.EnsureRunning(); err != nil {
			return err
		}
	}

	err := h.enc.Encode(job)
	if err == nil {
		return nil
	}
	if errors.Is(err, ipc.ErrWrite) {
		s.logger.Debug("Worker %s stopped reading before job %d: %v", h.id, job.CorrelationID, err)
		return nil
	}

	s.mu.Lock()
	_, stillOurs := h.inflight[job.CorrelationID]
	delete(h.inflight, job.CorrelationID)
	s.mu.Unlock()
	if !stillOurs {
		// the exit handler already took the job over
		return nil
	}
	return fmt.Errorf("%w: failed to send job %d to worker %s: %v", models.ErrWorkerUnavailable, job.CorrelationID, h.id, err)
}

// readResults consumes envelopes from the worker until its stdout closes
func (s *Supervisor) readResults(h *handle, done chan struct{}) {
	defer s.wg.Done()
	defer close(done)

	dec := ipc.NewDecoder(h.proc.Stdout())
	for {
		var env ipc.Envelope
		if err := dec.Decode(&env); err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.Error("Failed to read from worker %s, killing it: %v", h.id, err)
				h.proc.Kill()
				io.Copy(io.Discard, h.proc.Stdout())
			}
			return
		}

		switch env.Kind {
		case ipc.KindState:
			s.setState(h, env.State)
		case ipc.KindResult:
			if env.Result == nil {
				s.logger.Warn("Worker %s sent an empty result envelope", h.id)
				continue
			}
			s.mu.Lock()
			delete(h.inflight, env.Result.CorrelationID)
			h.run.JobsServed++
			s.mu.Unlock()
			s.router.Deliver(*env.Result)
		default:
			s.logger.Warn("Worker %s sent unknown envelope kind %q", h.id, env.Kind)
		}
	}
}

func (s *Supervisor) setState(h *handle, state models.WorkerState) {
	s.mu.Lock()
	h.state = state
	var ready *models.WorkerRun
	if state == models.WorkerReady && h.run.ReadyAt == nil {
		now := time.Now()
		h.run.ReadyAt = &now
		snapshot := *h.run
		ready = &snapshot
	}
	s.mu.Unlock()

	s.logger.Debug("Worker %s is %s", h.id, state)
	if ready != nil {
		s.logger.Info("Worker %s ready after %v", h.id, ready.ReadyAt.Sub(ready.StartedAt))
		s.recordWorker(ready, false)
	}
	if state != models.WorkerIdle {
		s.publish(events.WorkerEvent(h.id, string(state)))
	}
}

// relayStderr forwards worker log lines into the server log
func (s *Supervisor) relayStderr(h *handle, done chan struct{}) {
	defer close(done)

	stderr := h.proc.Stderr()
	if stderr == nil {
		return
	}

	logger := s.logger.WithComponent("worker").With("worker_id", h.id)
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch stderrLevel(line) {
		case utils.DEBUG:
			logger.Debug("%s", line)
		case utils.WARN:
			logger.Warn("%s", line)
		case utils.ERROR:
			logger.Error("%s", line)
		default:
			logger.Info("%s", line)
		}
	}
}

// stderrLevel maps a worker log line to a level from its logrus
// "level=" field or a bracketed [LEVEL] tag
func stderrLevel(line string) utils.LogLevel {
	upper := strings.ToUpper(line)
	switch {
	case strings.Contains(upper, "LEVEL=ERROR"), strings.Contains(upper, "LEVEL=FATAL"),
		strings.Contains(upper, "[ERROR]"), strings.Contains(upper, "[FATAL]"):
		return utils.ERROR
	case strings.Contains(upper, "LEVEL=WARN"), strings.Contains(upper, "[WARN"):
		return utils.WARN
	case strings.Contains(upper, "LEVEL=DEBUG"), strings.Contains(upper, "[DEBUG]"):
		return utils.DEBUG
	default:
		return utils.INFO
	}
}

// waitProcess reaps the worker and settles the jobs it still owed.
// After a clean exit those jobs were never started and go to a fresh worker;
// after a crash or during shutdown they are lost.
func (s *Supervisor) waitProcess(h *handle, readerDone, stderrDone chan struct{}) {
	<-readerDone
	<-stderrDone
	waitErr := h.proc.Wait()

	s.mu.Lock()
	h.alive = false
	h.state = models.WorkerTerminated
	if s.current == h {
		s.current = nil
	}
	orphans := make([]models.Job, 0, len(h.inflight))
	for _, job := range h.inflight {
		orphans = append(orphans, job)
	}
	h.inflight = nil

	reason := models.ExitReasonIdle
	switch {
	case s.stopped:
		reason = models.ExitReasonShutdown
	case waitErr != nil:
		reason = models.ExitReasonCrash
	}
	now := time.Now()
	h.run.EndedAt = &now
	h.run.ExitReason = reason
	run := *h.run
	s.mu.Unlock()
	defer close(h.done)

	if reason == models.ExitReasonCrash {
		s.logger.Error("Worker %s crashed after serving %d jobs: %v", h.id, run.JobsServed, waitErr)
	} else {
		s.logger.Info("Worker %s exited (%s) after serving %d jobs", h.id, reason, run.JobsServed)
	}
	s.recordWorker(&run, false)
	s.publish(events.WorkerEvent(h.id, string(models.WorkerTerminated)))

	if len(orphans) == 0 {
		return
	}
	sort.Slice(orphans, func(i, j int) bool { return orphans[i].CorrelationID < orphans[j].CorrelationID })

	if reason != models.ExitReasonIdle {
		for _, job := range orphans {
			s.router.Fail(job.CorrelationID, fmt.Errorf("%w: worker %s exited (%s) before answering job %d",
				models.ErrWorkerUnavailable, h.id, reason, job.CorrelationID))
		}
		return
	}

	s.logger.Warn("Worker %s exited idle with %d unread jobs, resubmitting", h.id, len(orphans))
	if err := s.EnsureRunning(); err != nil {
		for _, job := range orphans {
			s.router.Fail(job.CorrelationID, err)
		}
		return
	}
	for _, job := range orphans {
		if err := s.Dispatch(job); err != nil {
			s.router.Fail(job.CorrelationID, err)
		}
	}
}

// Alive reports whether a compute process is currently running
func (s *Supervisor) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil && s.current.alive
}

// Status returns a snapshot of the compute process
func (s *Supervisor) Status() models.WorkerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := models.WorkerStatus{State: models.WorkerUnspawned, Spawns: s.spawns}
	if s.spawns > 0 {
		status.State = models.WorkerTerminated
	}
	if h := s.current; h != nil {
		started := h.startedAt
		status.WorkerID = h.id
		status.PID = h.run.PID
		status.State = h.state
		status.Alive = h.alive
		status.StartedAt = &started
		status.InFlight = len(h.inflight)
	}
	return status
}

// Stop forcibly terminates any live compute process and waits for it to be reaped
func (s *Supervisor) Stop(timeout time.Duration) {
	s.mu.Lock()
	s.stopped = true
	h := s.current
	s.mu.Unlock()

	if h != nil {
		s.logger.Info("Terminating worker %s", h.id)
		if err := h.proc.Kill(); err != nil {
			s.logger.Error("Failed to kill worker %s: %v", h.id, err)
		}
		select {
		case <-h.done:
		case <-time.After(timeout):
			s.logger.Warn("Worker %s not reaped within %v", h.id, timeout)
		}
	}

	waited := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(timeout):
	}
}

func (s *Supervisor) recordWorker(run *models.WorkerRun, create bool) {
	if s.storage == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var err error
	if create {
		err = s.storage.CreateWorkerRun(ctx, run)
	} else {
		err = s.storage.UpdateWorkerRun(ctx, run)
	}
	if err != nil {
		s.logger.Error("Failed to record worker %s: %v", run.WorkerID, err)
	}
}

func (s *Supervisor) publish(event events.Event) {
	if err := s.events.Publish(context.Background(), event); err != nil {
		s.logger.Warn("Failed to publish %s event: %v", event.Type, err)
	}
}
