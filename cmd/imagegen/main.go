package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	imagegenv1 "github.com/sharma-sourabh3435/imagegen/api/imagegen/v1"
	"github.com/sharma-sourabh3435/imagegen/internal/models"
	"github.com/sharma-sourabh3435/imagegen/internal/rpc"
)

func main() {
	// Parse command-line flags
	var (
		prompt   = flag.String("prompt", "", "Text prompt (required)")
		height   = flag.Int("height", 512, "Image height")
		width    = flag.Int("width", 512, "Image width")
		steps    = flag.Int("steps", 10, "Number of inference steps")
		guidance = flag.Float64("guidance", 3.5, "Guidance scale")
		server   = flag.String("server", "localhost:50051", "Server address")
		apiKey   = flag.String("api_key", "client1", "API key")
		out      = flag.String("out", "out.png", "Output file")
		timeout  = flag.Duration("timeout", 15*time.Minute, "Request timeout")
	)

	flag.Parse()

	if err := run(*server, *apiKey, *out, *timeout, models.GenerateRequest{
		Prompt:        *prompt,
		Height:        *height,
		Width:         *width,
		Steps:         *steps,
		GuidanceScale: *guidance,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(server, apiKey, out string, timeout time.Duration, req models.GenerateRequest) error {
	if req.Prompt == "" {
		return errors.New("--prompt is required")
	}
	// Reject locally what the server would reject anyway
	if err := req.Validate(); err != nil {
		return err
	}

	conn, err := grpc.NewClient(server, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", server, err)
	}
	defer conn.Close()

	client := imagegenv1.NewImageGenClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	ctx = metadata.AppendToOutgoingContext(ctx, rpc.APIKeyHeader, apiKey)

	pong, err := client.Ping(ctx, &imagegenv1.PingRequest{})
	if err != nil {
		return fmt.Errorf("ping failed: %s", status.Convert(err).Message())
	}
	fmt.Printf("Server says: %s\n", pong.Message)

	start := time.Now()
	resp, err := client.Generate(ctx, &imagegenv1.GenerateRequest{
		Prompt:            req.Prompt,
		Height:            int32(req.Height),
		Width:             int32(req.Width),
		NumInferenceSteps: int32(req.Steps),
		GuidanceScale:     float32(req.GuidanceScale),
	})
	if err != nil {
		st := status.Convert(err)
		return fmt.Errorf("generate failed (%s): %s", st.Code(), st.Message())
	}
	if len(resp.ImagePng) == 0 {
		return fmt.Errorf("server returned no image after %.2fs", resp.InferenceTime)
	}

	if err := os.WriteFile(out, resp.ImagePng, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	fmt.Printf("Saved %s (%d bytes, inference %.2fs, round trip %.2fs)\n",
		out, len(resp.ImagePng), resp.InferenceTime, time.Since(start).Seconds())
	return nil
}
