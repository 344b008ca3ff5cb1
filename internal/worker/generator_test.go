package worker

import (
	"bytes"
	"context"
	"image/png"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/sharma-sourabh3435/imagegen/pkg/utils"
)

func TestProceduralGeneratorDeterministic(t *testing.T) {
	gen := NewProceduralGenerator()
	ctx := context.Background()
	p := Params{Prompt: "A cat", Height: 48, Width: 64, Steps: 3, GuidanceScale: 2.5}

	first, err := gen.Generate(ctx, p)
	if err != nil {
		t.Fatalf("Failed to generate: %v", err)
	}
	second, err := gen.Generate(ctx, p)
	if err != nil {
		t.Fatalf("Failed to generate: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("Expected identical bytes for identical parameters")
	}

	p.Prompt = "A dog"
	other, err := gen.Generate(ctx, p)
	if err != nil {
		t.Fatalf("Failed to generate: %v", err)
	}
	if bytes.Equal(first, other) {
		t.Error("Expected different prompts to produce different images")
	}
}

func TestProceduralGeneratorProducesPNG(t *testing.T) {
	img, err := NewProceduralGenerator().Generate(context.Background(), Params{Prompt: "x", Height: 20, Width: 30, Steps: 1, GuidanceScale: 0.1})
	if err != nil {
		t.Fatalf("Failed to generate: %v", err)
	}
	if !bytes.HasPrefix(img, pngSignature) {
		t.Fatal("Expected PNG signature")
	}
	decoded, err := png.Decode(bytes.NewReader(img))
	if err != nil {
		t.Fatalf("Failed to decode png: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 30 || b.Dy() != 20 {
		t.Errorf("Expected 30x20, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestProceduralGeneratorHonoursContext(t *testing.T) {
	gen := &ProceduralGenerator{StepDelay: time.Second}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := gen.Generate(ctx, Params{Height: 8, Width: 8, Steps: 5}); err == nil {
		t.Error("Expected cancellation error")
	}
}

func TestCommandGenerator(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	logger := utils.NewLogger("test")
	ctx := context.Background()
	p := Params{Prompt: "cat", Height: 8, Width: 8, Steps: 1, GuidanceScale: 1}

	ok := NewCommandGenerator(`test "$IMAGEGEN_PROMPT" = cat && test "$IMAGEGEN_SEED" = 0 && printf '\211PNG\r\n\032\n'`, time.Second*5, logger)
	if err := ok.Load(ctx); err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	img, err := ok.Generate(ctx, p)
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if !bytes.Equal(img, pngSignature) {
		t.Errorf("Expected PNG signature bytes, got %q", img)
	}

	_, err = NewCommandGenerator("echo oops >&2; exit 3", time.Second*5, logger).Generate(ctx, p)
	if err == nil || !strings.Contains(err.Error(), "code 3") || !strings.Contains(err.Error(), "oops") {
		t.Errorf("Expected exit code and stderr in error, got %v", err)
	}

	start := time.Now()
	if _, err := NewCommandGenerator("exec sleep 5", 50*time.Millisecond, logger).Generate(ctx, p); err == nil {
		t.Error("Expected error for command exceeding its timeout")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("Expected timeout to stop the command, took %v", elapsed)
	}
	if _, err := NewCommandGenerator("echo not-an-image", time.Second*5, logger).Generate(ctx, p); err == nil {
		t.Error("Expected error for non-PNG output")
	}
	if err := NewCommandGenerator("  ", 0, logger).Load(ctx); err == nil {
		t.Error("Expected error for empty command")
	}
}
