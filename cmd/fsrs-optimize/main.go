// Command fsrs-optimize reads a JSON array of review logs on stdin and
// writes the fitted 21-parameter weight vector as a JSON array on stdout.
//
// Usage:
//
//	fsrs-optimize < review_logs.json > parameters.json
//
// Histories with fewer than 10 logs pass through the default parameters
// unchanged.
//
// Exit codes: 0 = success, 1 = error.
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
	"github.com/kristynaumlaufova/fsrs-go/internal/optimizer"
)

const minLogsToAttemptFit = 10

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := app.NewLogger(cfg.Log)
	logger.Info("fsrs-optimize starting", "version", app.BuildVersion())

	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		logger.Error("read stdin", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var logs []domain.ReviewLog
	if err := json.Unmarshal(raw, &logs); err != nil {
		logger.Error("parse review logs", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("loaded review logs", "count", len(logs))

	var params [fsrs.NumParameters]float64
	if len(logs) < minLogsToAttemptFit {
		logger.Info("too few logs to attempt a fit, returning default parameters",
			"have", len(logs), "need", minLogsToAttemptFit)
		params = fsrs.DefaultParameters
	} else {
		params = optimizer.ComputeOptimalParameters(logs)
	}

	if err := json.NewEncoder(os.Stdout).Encode(params); err != nil {
		logger.Error("write parameters", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
