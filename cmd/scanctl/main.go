package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mvcarvalho/docsentinel/internal/scanclient"
)

// scanctl submits a PDF to a running API instance and waits for the verdict.
func main() {
	var (
		apiURL   = flag.String("api", "http://localhost:8080", "base URL of the scan API")
		file     = flag.String("file", "", "path to the PDF document to scan")
		attempts = flag.Int("attempts", scanclient.DefaultMaxAttempts, "maximum polling attempts")
		interval = flag.Duration("interval", scanclient.DefaultPollInterval, "delay between polling attempts")
	)
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("open file: %v", err)
	}
	defer f.Close()

	client := scanclient.New(*apiURL)

	job, err := client.SubmitFile(ctx, *file, f)
	if err != nil {
		log.Fatalf("submit: %v", err)
	}
	fmt.Fprintf(os.Stderr, "scan %s queued, polling up to %d times every %s\n", job.ID, *attempts, *interval)

	poller := scanclient.NewPoller(client)
	poller.MaxAttempts = *attempts
	poller.Interval = *interval

	start := time.Now()
	result, err := poller.WaitForResult(ctx, job.ID)
	if err != nil {
		log.Fatalf("wait for result: %v", err)
	}
	fmt.Fprintf(os.Stderr, "completed in %s\n", time.Since(start).Round(time.Millisecond))

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		log.Fatalf("encode result: %v", err)
	}
}
