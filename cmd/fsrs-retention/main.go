// Command fsrs-retention reads a JSON object with a parameter vector and a
// review log history, and writes the desired_retention value that
// minimizes simulated study cost.
//
// Input shape (stdin):
//
//	{"parameters": [float x21], "review_logs": [ReviewLog, ...]}
//
// Output (stdout): a bare JSON number, e.g. 0.9.
//
// Exit codes: 0 = success, 1 = error (including insufficient logs).
package main

import (
	"encoding/json"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/kristynaumlaufova/fsrs-go/internal/app"
	"github.com/kristynaumlaufova/fsrs-go/internal/config"
	"github.com/kristynaumlaufova/fsrs-go/internal/domain"
	"github.com/kristynaumlaufova/fsrs-go/internal/fsrs"
	"github.com/kristynaumlaufova/fsrs-go/internal/retention"
)

type request struct {
	Parameters [fsrs.NumParameters]float64 `json:"parameters"`
	ReviewLogs []domain.ReviewLog          `json:"review_logs"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := app.NewLogger(cfg.Log)
	logger.Info("fsrs-retention starting", "version", app.BuildVersion())

	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		logger.Error("read stdin", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var req request
	if err := json.Unmarshal(raw, &req); err != nil {
		logger.Error("parse request", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("loaded review logs", "count", len(req.ReviewLogs))

	desiredRetention, err := retention.ComputeOptimalRetention(req.ReviewLogs, req.Parameters)
	if err != nil {
		logger.Error("compute optimal retention", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := json.NewEncoder(os.Stdout).Encode(desiredRetention); err != nil {
		logger.Error("write result", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
