package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/pricetag-ocr/internal/config"
	"github.com/ironsheep/pricetag-ocr/internal/detection"
	"github.com/ironsheep/pricetag-ocr/internal/ocr"
	"github.com/ironsheep/pricetag-ocr/internal/pipeline"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Exit codes.
const (
	exitOK         = 0
	exitUsage      = 1
	exitImageError = 2
	exitTagErrors  = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func versionString() string {
	return fmt.Sprintf("%s %s (built %s, commit %s)", config.Program, Version, BuildTime, GitCommit)
}

// run executes one invocation and returns the process exit code.
func run(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	cfg, err := config.Parse(argv, versionString(), stdout, stderr)
	if errors.Is(err, config.ErrExit) {
		return exitOK
	}
	if err != nil {
		return exitUsage
	}

	// Logs go to stderr; stdout carries the tag report.
	logger := logrus.New()
	logger.SetOutput(stderr)
	logger.SetLevel(cfg.Level())
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.WithFields(logrus.Fields{
		"version": Version,
		"commit":  GitCommit,
	}).Debug("Starting")

	httpc := &http.Client{Timeout: cfg.HTTPTimeout}

	detector := detection.NewClient(detection.Options{
		Endpoint:      cfg.DetectionEndpoint,
		PredictionKey: cfg.DetectionKey,
		ProjectID:     cfg.ProjectID,
		Iteration:     cfg.Iteration,
		HTTPClient:    httpc,
		Logger:        logger,
	})
	reader := ocr.NewClient(ocr.Options{
		Endpoint:        cfg.OCREndpoint,
		SubscriptionKey: cfg.OCRKey,
		Mode:            cfg.OCRMode,
		PollInterval:    cfg.PollInterval,
		PollAttempts:    cfg.PollAttempts,
		HTTPClient:      httpc,
		Logger:          logger,
	})

	filter := cfg.Filter()
	proc := pipeline.New(detector, reader, pipeline.Options{
		Filter:  &filter,
		Workers: cfg.Workers,
		Enhance: cfg.Enhance,
		Timeout: cfg.Timeout,
		Out:     stdout,
		Logger:  logger,
	})

	if cfg.Watch {
		return watch(ctx, proc, cfg, logger)
	}

	imgCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	report, err := proc.ProcessImage(imgCtx, cfg.ImagePath, cfg.TargetFolder)
	if err != nil {
		logger.WithField("image", cfg.ImagePath).WithError(err).Error("Processing failed")
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitImageError
	}
	if report.Failed() > 0 {
		return exitTagErrors
	}
	return exitOK
}

// watch runs the pipeline on a directory until ctx is cancelled.
func watch(ctx context.Context, proc *pipeline.Processor, cfg *config.Config, logger logrus.FieldLogger) int {
	failed := false
	onReport := func(path string, report *pipeline.Report, err error) {
		if err != nil || report.Failed() > 0 {
			failed = true
		}
	}

	err := proc.Watch(ctx, cfg.ImagePath, cfg.TargetFolder, onReport)
	if err != nil {
		logger.WithError(err).Error("Watch failed")
		return exitImageError
	}
	if failed {
		return exitTagErrors
	}
	return exitOK
}
