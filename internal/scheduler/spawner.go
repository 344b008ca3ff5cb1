package scheduler

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Process is a running compute process as the supervisor sees it.
// Stdout must be read to EOF before Wait is called.
type Process interface {
	PID() int
	Stdin() io.Writer
	Stdout() io.Reader
	// Stderr may be nil when the process has no separate log stream
	Stderr() io.Reader
	Wait() error
	Kill() error
}

// Spawner starts compute processes
type Spawner interface {
	Spawn(workerID string) (Process, error)
}

// ExecSpawner runs the worker binary as a child process
type ExecSpawner struct {
	Command string
	Args    []string
	Env     []string
}

// Spawn implements Spawner. The worker id is passed as --id.
func (s *ExecSpawner) Spawn(workerID string) (Process, error) {
	args := append([]string{"--id", workerID}, s.Args...)
	cmd := exec.Command(s.Command, args...)
	cmd.Env = append(os.Environ(), s.Env...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", s.Command, err)
	}

	return &execProcess{cmd: cmd, stdin: stdin, stdout: stdout, stderr: stderr}, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr io.ReadCloser
}

func (p *execProcess) PID() int          { return p.cmd.Process.Pid }
func (p *execProcess) Stdin() io.Writer  { return p.stdin }
func (p *execProcess) Stdout() io.Reader { return p.stdout }
func (p *execProcess) Stderr() io.Reader { return p.stderr }
func (p *execProcess) Wait() error       { return p.cmd.Wait() }

func (p *execProcess) Kill() error {
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}
