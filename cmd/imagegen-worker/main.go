package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sharma-sourabh3435/imagegen/internal/worker"
	"github.com/sharma-sourabh3435/imagegen/pkg/utils"
)

func main() {
	// Parse command-line flags
	var (
		workerID         = flag.String("id", "", "Worker ID (required)")
		idleTimeout      = flag.Duration("idle", 60*time.Second, "Exit after this long without a job")
		generator        = flag.String("generator", "procedural", "Generator backend (procedural, command)")
		generatorCommand = flag.String("generator-command", "", "Shell command producing a PNG on stdout")
		generatorTimeout = flag.Duration("generator-timeout", 5*time.Minute, "Per-image timeout for the command generator")
		logLevel         = flag.String("log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	)

	flag.Parse()

	// Validate required flags
	if *workerID == "" {
		fmt.Fprintln(os.Stderr, "Error: Worker ID is required")
		fmt.Fprintln(os.Stderr, "Usage: imagegen-worker -id <worker-id> [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// stdout carries result frames
	utils.SetOutput(os.Stderr)
	utils.SetDefaultLogLevel(utils.ParseLogLevel(*logLevel))

	var gen worker.Generator
	switch *generator {
	case "procedural":
		gen = worker.NewProceduralGenerator()
	case "command":
		if *generatorCommand == "" {
			utils.Fatal("--generator-command is required with --generator=command")
		}
		gen = worker.NewCommandGenerator(*generatorCommand, *generatorTimeout, utils.NewLogger("generator"))
	default:
		utils.Fatal("Unknown generator %q", *generator)
	}

	w := worker.NewWorker(worker.Config{
		WorkerID:    *workerID,
		IdleTimeout: *idleTimeout,
		Generator:   gen,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	utils.Info("Starting worker %s (pid %d, idle %v, generator %s)", *workerID, os.Getpid(), *idleTimeout, *generator)

	if err := w.Run(ctx, os.Stdin, os.Stdout); err != nil {
		utils.Fatal("Worker failed: %v", err)
	}

	utils.Info("Worker %s exiting after %d jobs", *workerID, w.Served())
}
