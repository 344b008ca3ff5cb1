package worker

import (
	"context"

	"github.com/sharma-sourabh3435/imagegen/internal/models"
)

// Params is one invocation of the compute capability
type Params struct {
	Prompt        string
	Height        int
	Width         int
	Steps         int
	GuidanceScale float64
	Seed          int64
}

// ParamsForJob applies the fixed seed to a job's parameters
func ParamsForJob(job models.Job) Params {
	return Params{
		Prompt:        job.Prompt,
		Height:        job.Height,
		Width:         job.Width,
		Steps:         job.Steps,
		GuidanceScale: job.GuidanceScale,
		Seed:          models.FixedSeed,
	}
}

// WarmupParams is the throwaway invocation run right after loading
func WarmupParams() Params {
	return Params{
		Prompt:        models.WarmupPrompt,
		Height:        models.WarmupHeight,
		Width:         models.WarmupWidth,
		Steps:         models.WarmupSteps,
		GuidanceScale: models.WarmupGuidance,
		Seed:          models.FixedSeed,
	}
}

// Generator is the image-generation capability. It is loaded once per process
// lifetime and then invoked once per job; Generate returns PNG bytes.
type Generator interface {
	Load(ctx context.Context) error
	Generate(ctx context.Context, p Params) ([]byte, error)
	Close() error
}
