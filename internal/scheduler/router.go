package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sharma-sourabh3435/imagegen/internal/models"
	"github.com/sharma-sourabh3435/imagegen/pkg/utils"
)

// Dispatcher sends a job to the compute process
type Dispatcher interface {
	Dispatch(job models.Job) error
}

type delivery struct {
	result models.Result
	err    error
}

// Router matches results to waiters by correlation id. Each submitted job
// gets a single-use response slot, so a result is only ever seen by the
// caller that owns its id regardless of arrival order.
type Router struct {
	mu      sync.Mutex
	slots   map[uint64]chan delivery
	dropped atomic.Uint64
	logger  *utils.Logger
}

// NewRouter creates a router with no open slots
func NewRouter() *Router {
	return &Router{
		slots:  make(map[uint64]chan delivery),
		logger: utils.NewLogger("router"),
	}
}

// Submit dispatches job and blocks until its result arrives, ctx is done, or
// timeout elapses. A non-positive timeout waits without bound.
func (r *Router) Submit(ctx context.Context, d Dispatcher, job models.Job, timeout time.Duration) (models.Result, error) {
	slot, err := r.register(job.CorrelationID)
	if err != nil {
		return models.Result{}, err
	}

	if err := d.Dispatch(job); err != nil {
		r.abandon(job.CorrelationID)
		return models.Result{}, err
	}
	r.logger.Debug("Submitted job %d", job.CorrelationID)

	return r.wait(ctx, job.CorrelationID, slot, timeout)
}

func (r *Router) register(id uint64) (chan delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.slots[id]; exists {
		return nil, fmt.Errorf("correlation id %d already has a waiter", id)
	}
	slot := make(chan delivery, 1)
	r.slots[id] = slot
	return slot, nil
}

func (r *Router) wait(ctx context.Context, id uint64, slot chan delivery, timeout time.Duration) (models.Result, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case d := <-slot:
		return d.result, d.err
	case <-expired:
		if d, ok := r.settle(id, slot); ok {
			return d.result, d.err
		}
		r.logger.Warn("No result for job %d within %v", id, timeout)
		return models.Result{}, fmt.Errorf("%w: no result for job %d within %v", models.ErrWorkerUnavailable, id, timeout)
	case <-ctx.Done():
		if d, ok := r.settle(id, slot); ok {
			return d.result, d.err
		}
		return models.Result{}, fmt.Errorf("%w: %v", models.ErrWorkerUnavailable, ctx.Err())
	}
}

// settle closes the slot for id. If a sender already took it, the delivery
// is on its way and is returned instead.
func (r *Router) settle(id uint64, slot chan delivery) (delivery, bool) {
	if _, ok := r.take(id); ok {
		return delivery{}, false
	}
	return <-slot, true
}

// take removes and returns the slot for id
func (r *Router) take(id uint64) (chan delivery, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.slots[id]
	if ok {
		delete(r.slots, id)
	}
	return slot, ok
}

func (r *Router) abandon(id uint64) {
	r.take(id)
}

// Deliver hands a result to the waiter for its id. A result nobody waits for
// any more is dropped and logged.
func (r *Router) Deliver(result models.Result) bool {
	slot, ok := r.take(result.CorrelationID)
	if !ok {
		r.dropped.Add(1)
		r.logger.Warn("Dropping result for job %d: no waiter", result.CorrelationID)
		return false
	}
	slot <- delivery{result: result}
	return true
}

// Fail wakes the waiter for id with err instead of a result
func (r *Router) Fail(id uint64, err error) bool {
	slot, ok := r.take(id)
	if !ok {
		return false
	}
	slot <- delivery{result: models.Result{CorrelationID: id}, err: err}
	return true
}

// FailAll wakes every waiter with err and returns how many there were
func (r *Router) FailAll(err error) int {
	r.mu.Lock()
	slots := r.slots
	r.slots = make(map[uint64]chan delivery)
	r.mu.Unlock()

	for id, slot := range slots {
		slot <- delivery{result: models.Result{CorrelationID: id}, err: err}
	}
	return len(slots)
}

// Pending returns the number of open response slots
func (r *Router) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slots)
}

// Dropped returns the number of results that arrived without a waiter
func (r *Router) Dropped() uint64 {
	return r.dropped.Load()
}
