package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sharma-sourabh3435/imagegen/internal/ipc"
	"github.com/sharma-sourabh3435/imagegen/internal/models"
	"github.com/sharma-sourabh3435/imagegen/internal/queue"
	"github.com/sharma-sourabh3435/imagegen/pkg/utils"
)

// ErrInputClosed is the error a host closes the task stream with when the loop exits
var ErrInputClosed = errors.New("worker input closed")

// Worker is the compute loop running inside the worker process.
// It owns the Generator, loads it lazily on the first job, and exits after
// IdleTimeout without work.
type Worker struct {
	id          string
	idleTimeout time.Duration
	generator   Generator
	logger      *utils.Logger

	loaded bool
	served int
}

// Config holds worker configuration
type Config struct {
	WorkerID    string
	IdleTimeout time.Duration
	Generator   Generator
}

// NewWorker creates a new worker instance
func NewWorker(config Config) *Worker {
	return &Worker{
		id:          config.WorkerID,
		idleTimeout: config.IdleTimeout,
		generator:   config.Generator,
		logger:      utils.NewLogger("worker").With("worker_id", config.WorkerID),
	}
}

// Served returns the number of jobs the loop has answered
func (w *Worker) Served() int {
	return w.served
}

// Run reads jobs from in and writes envelopes to out until the idle timeout
// elapses with nothing pending, in is closed, or ctx is cancelled.
// Idle exit and closed input return nil.
func (w *Worker) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	tasks := queue.New[models.Job]()
	enc := ipc.NewEncoder(out)

	go w.readTasks(in, tasks)

	defer func() {
		if err := w.generator.Close(); err != nil {
			w.logger.Warn("Failed to release generator: %v", err)
		}
	}()

	w.logger.Info("Worker loop started (idle timeout %v)", w.idleTimeout)

	for {
		job, err := tasks.Pop(ctx, w.idleTimeout)
		switch {
		case err == nil:
		case errors.Is(err, queue.ErrTimeout):
			if tasks.CloseIfEmpty() {
				w.logger.Info("No job for %v, exiting after serving %d jobs", w.idleTimeout, w.served)
				return nil
			}
			continue
		case errors.Is(err, queue.ErrClosed):
			w.logger.Info("Task channel closed, exiting after serving %d jobs", w.served)
			return nil
		default:
			w.logger.Info("Worker loop cancelled: %v", err)
			return nil
		}

		if err := w.handle(ctx, enc, job); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// readTasks drains the task stream into the local queue so senders never block
func (w *Worker) readTasks(in io.Reader, tasks *queue.Queue[models.Job]) {
	defer tasks.Close()

	dec := ipc.NewDecoder(in)
	for {
		var job models.Job
		if err := dec.Decode(&job); err != nil {
			if endOfStream(err) {
				w.logger.Debug("Task stream ended: %v", err)
			} else {
				w.logger.Error("Failed to read task: %v", err)
			}
			return
		}
		if err := tasks.Push(job); err != nil {
			// queue closed by idle exit; the supervisor resubmits to the next worker
			w.logger.Warn("Job %d arrived after idle exit", job.CorrelationID)
			return
		}
		w.logger.Debug("Queued job %d", job.CorrelationID)
	}
}

// endOfStream reports whether err is the task stream closing rather than a broken frame
func endOfStream(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, ErrInputClosed)
}

// handle answers exactly one job. Only a broken result stream is fatal.
func (w *Worker) handle(ctx context.Context, enc *ipc.Encoder, job models.Job) error {
	result := models.Result{CorrelationID: job.CorrelationID}

	if err := w.ensureLoaded(ctx, enc); err != nil {
		w.logger.Error("Failed to load generator for job %d: %v", job.CorrelationID, err)
		result.Error = err.Error()
	} else {
		start := time.Now()
		img, err := w.generate(ctx, ParamsForJob(job))
		if err != nil {
			w.logger.Error("Job %d failed: %v", job.CorrelationID, err)
			result.Error = err.Error()
		} else {
			result.Image = img
			w.logger.Info("Job %d completed in %v (%d bytes)", job.CorrelationID, time.Since(start), len(img))
		}
	}

	if ctx.Err() != nil {
		// the host fails jobs it tears a worker down under
		w.logger.Info("Job %d interrupted: %v", job.CorrelationID, ctx.Err())
		return ctx.Err()
	}

	if err := enc.Encode(ipc.ResultEnvelope(result)); err != nil {
		return fmt.Errorf("failed to write result for job %d: %w", job.CorrelationID, err)
	}
	w.served++

	if w.loaded {
		if err := enc.Encode(ipc.StateEnvelope(models.WorkerIdle)); err != nil {
			return fmt.Errorf("failed to write state: %w", err)
		}
	}
	return nil
}

// ensureLoaded loads the generator and runs the warm-up once per process
func (w *Worker) ensureLoaded(ctx context.Context, enc *ipc.Encoder) error {
	if w.loaded {
		return nil
	}

	if err := enc.Encode(ipc.StateEnvelope(models.WorkerLoading)); err != nil {
		return err
	}

	start := time.Now()
	w.logger.Info("Loading generator")
	if err := w.generator.Load(ctx); err != nil {
		return fmt.Errorf("load: %w", err)
	}
	if _, err := w.generate(ctx, WarmupParams()); err != nil {
		return fmt.Errorf("warm-up: %w", err)
	}
	w.loaded = true
	w.logger.Info("Generator ready in %v", time.Since(start))

	return enc.Encode(ipc.StateEnvelope(models.WorkerReady))
}

// generate calls the generator, turning a panic into an error
func (w *Worker) generate(ctx context.Context, p Params) (img []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generator panic: %v", r)
		}
	}()
	return w.generator.Generate(ctx, p)
}
