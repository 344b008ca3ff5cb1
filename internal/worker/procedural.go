package worker

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"math"
	"math/rand"
	"time"
)

// ProceduralGenerator renders a deterministic PNG from the parameters and seed.
// It stands in for a model when no GPU pipeline is configured.
type ProceduralGenerator struct {
	// StepDelay is slept once per inference step to mimic model latency
	StepDelay time.Duration
	// LoadDelay is slept by Load to mimic pipeline loading
	LoadDelay time.Duration
}

// NewProceduralGenerator creates a generator without artificial latency
func NewProceduralGenerator() *ProceduralGenerator {
	return &ProceduralGenerator{}
}

// Load implements Generator
func (g *ProceduralGenerator) Load(ctx context.Context) error {
	return sleepCtx(ctx, g.LoadDelay)
}

// Generate implements Generator
func (g *ProceduralGenerator) Generate(ctx context.Context, p Params) ([]byte, error) {
	if p.Height <= 0 || p.Width <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", p.Width, p.Height)
	}
	for i := 0; i < p.Steps; i++ {
		if err := sleepCtx(ctx, g.StepDelay); err != nil {
			return nil, err
		}
	}

	rng := rand.New(rand.NewSource(paramHash(p)))
	from := randomColor(rng)
	to := randomColor(rng)
	contrast := 0.5 + p.GuidanceScale/20
	noise := p.Steps * 2

	img := image.NewNRGBA(image.Rect(0, 0, p.Width, p.Height))
	span := float64(p.Width + p.Height)
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			t := math.Min(1, float64(x+y)/span*contrast*2)
			img.SetNRGBA(x, y, color.NRGBA{
				R: blend(from.R, to.R, t, rng, noise),
				G: blend(from.G, to.G, t, rng, noise),
				B: blend(from.B, to.B, t, rng, noise),
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Close implements Generator
func (g *ProceduralGenerator) Close() error {
	return nil
}

func paramHash(p Params) int64 {
	h := fnv.New64a()
	h.Write([]byte(p.Prompt))
	var b [8]byte
	for _, v := range []uint64{
		uint64(p.Height), uint64(p.Width), uint64(p.Steps),
		math.Float64bits(p.GuidanceScale), uint64(p.Seed),
	} {
		binary.BigEndian.PutUint64(b[:], v)
		h.Write(b[:])
	}
	return int64(h.Sum64())
}

func randomColor(rng *rand.Rand) color.NRGBA {
	return color.NRGBA{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256)), A: 255}
}

func blend(a, b uint8, t float64, rng *rand.Rand, noise int) uint8 {
	v := float64(a)*(1-t) + float64(b)*t
	if noise > 0 {
		v += float64(rng.Intn(2*noise+1) - noise)
	}
	return uint8(math.Max(0, math.Min(255, v)))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
