package scheduler

import (
	"context"
	"io"
	"time"

	"github.com/sharma-sourabh3435/imagegen/internal/worker"
)

// InProcSpawner runs the Worker Loop on a goroutine connected by pipes.
// It serves tests and single-binary deployments without a worker executable.
type InProcSpawner struct {
	IdleTimeout  time.Duration
	NewGenerator func() worker.Generator
}

// Spawn implements Spawner
func (s *InProcSpawner) Spawn(workerID string) (Process, error) {
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	ctx, cancel := context.WithCancel(context.Background())

	p := &inProcProcess{
		stdin:  inW,
		stdout: outR,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	w := worker.NewWorker(worker.Config{
		WorkerID:    workerID,
		IdleTimeout: s.IdleTimeout,
		Generator:   s.NewGenerator(),
	})
	go func() {
		p.err = w.Run(ctx, inR, outW)
		outW.Close()
		inR.CloseWithError(worker.ErrInputClosed)
		cancel()
		close(p.done)
	}()

	return p, nil
}

type inProcProcess struct {
	stdin  *io.PipeWriter
	stdout *io.PipeReader
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

func (p *inProcProcess) PID() int          { return 0 }
func (p *inProcProcess) Stdin() io.Writer  { return p.stdin }
func (p *inProcProcess) Stdout() io.Reader { return p.stdout }
func (p *inProcProcess) Stderr() io.Reader { return nil }

func (p *inProcProcess) Wait() error {
	<-p.done
	return p.err
}

func (p *inProcProcess) Kill() error {
	p.cancel()
	p.stdin.CloseWithError(worker.ErrInputClosed)
	return nil
}
