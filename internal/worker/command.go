package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/sharma-sourabh3435/imagegen/pkg/utils"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// CommandGenerator delegates each invocation to an external program.
// Parameters are passed as IMAGEGEN_* environment variables and the program
// must write a PNG to stdout.
type CommandGenerator struct {
	command string
	timeout time.Duration
	logger  *utils.Logger
}

// NewCommandGenerator creates a generator running command for every invocation
func NewCommandGenerator(command string, timeout time.Duration, logger *utils.Logger) *CommandGenerator {
	return &CommandGenerator{
		command: command,
		timeout: timeout,
		logger:  logger,
	}
}

// Load implements Generator
func (g *CommandGenerator) Load(ctx context.Context) error {
	if strings.TrimSpace(g.command) == "" {
		return fmt.Errorf("generator command is empty")
	}
	return ctx.Err()
}

// Generate implements Generator
func (g *CommandGenerator) Generate(ctx context.Context, p Params) ([]byte, error) {
	env := []string{
		"IMAGEGEN_PROMPT=" + p.Prompt,
		"IMAGEGEN_HEIGHT=" + strconv.Itoa(p.Height),
		"IMAGEGEN_WIDTH=" + strconv.Itoa(p.Width),
		"IMAGEGEN_STEPS=" + strconv.Itoa(p.Steps),
		"IMAGEGEN_GUIDANCE_SCALE=" + strconv.FormatFloat(p.GuidanceScale, 'f', -1, 64),
		"IMAGEGEN_SEED=" + strconv.FormatInt(p.Seed, 10),
	}

	out, err := g.run(ctx, env)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(out, pngSignature) {
		return nil, fmt.Errorf("generator output is not a PNG (%d bytes)", len(out))
	}
	return out, nil
}

// run executes the command through sh with env appended to the worker's own
// environment and returns its raw stdout
func (g *CommandGenerator) run(ctx context.Context, env []string) ([]byte, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	g.logger.Debug("Running generator command: %s", g.command)

	cmd := exec.CommandContext(ctx, "sh", "-c", g.command)
	cmd.Env = append(os.Environ(), env...)
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		g.logger.Error("Generator command failed after %v: %v", time.Since(start), err)
		return nil, fmt.Errorf("generator exited with code %d: %s", code, strings.TrimSpace(stderr.String()))
	}

	g.logger.Debug("Generator command finished in %v (%d bytes)", time.Since(start), stdout.Len())
	return stdout.Bytes(), nil
}

// Close implements Generator
func (g *CommandGenerator) Close() error {
	return nil
}
