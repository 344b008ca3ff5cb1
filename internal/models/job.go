package models

import "fmt"

// Job is one validated generation request tagged with its correlation id.
// It is created at submission time and never mutated afterwards.
type Job struct {
	CorrelationID uint64  `msgpack:"correlation_id" json:"correlation_id"`
	Prompt        string  `msgpack:"prompt" json:"prompt"`
	Height        int     `msgpack:"height" json:"height"`
	Width         int     `msgpack:"width" json:"width"`
	Steps         int     `msgpack:"steps" json:"steps"`
	GuidanceScale float64 `msgpack:"guidance_scale" json:"guidance_scale"`
}

// GenerateRequest carries caller-supplied parameters before a correlation id is assigned
type GenerateRequest struct {
	Prompt        string  `json:"prompt"`
	Height        int     `json:"height"`
	Width         int     `json:"width"`
	Steps         int     `json:"num_inference_steps"`
	GuidanceScale float64 `json:"guidance_scale"`
}

// Validate checks every parameter against its bound, reporting the first violation
func (r GenerateRequest) Validate() error {
	if r.Height < MinDimension || r.Height > MaxHeight {
		return &ValidationError{Field: "height", Msg: fmt.Sprintf("must be %d-%d", MinDimension, MaxHeight)}
	}
	if r.Width < MinDimension || r.Width > MaxWidth {
		return &ValidationError{Field: "width", Msg: fmt.Sprintf("must be %d-%d", MinDimension, MaxWidth)}
	}
	if r.Steps < MinSteps || r.Steps > MaxSteps {
		return &ValidationError{Field: "num_inference_steps", Msg: fmt.Sprintf("must be %d-%d", MinSteps, MaxSteps)}
	}
	// inclusive form so NaN fails
	if !(r.GuidanceScale >= MinGuidance && r.GuidanceScale <= MaxGuidance) {
		return &ValidationError{Field: "guidance_scale", Msg: fmt.Sprintf("must be %.1f-%.1f", MinGuidance, MaxGuidance)}
	}
	return nil
}

// ToJob stamps the request with a correlation id
func (r GenerateRequest) ToJob(id uint64) Job {
	return Job{
		CorrelationID: id,
		Prompt:        r.Prompt,
		Height:        r.Height,
		Width:         r.Width,
		Steps:         r.Steps,
		GuidanceScale: r.GuidanceScale,
	}
}
