// Package config resolves the tool's settings from the command line, the
// environment and built-in defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/pricetag-ocr/internal/detection"
	"github.com/ironsheep/pricetag-ocr/internal/ocr"
)

// Program is the name shown in usage output.
const Program = "pricetag-ocr"

// ErrExit is returned by Parse when help or version output was requested and
// written; the caller should exit successfully without doing any work.
var ErrExit = errors.New("exit requested")

// ArgumentError reports an invalid invocation.
type ArgumentError struct {
	Err error
}

func (e *ArgumentError) Error() string {
	return "invalid arguments: " + e.Err.Error()
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// Config holds every setting of a run.
type Config struct {
	ImagePath          string `arg:"positional,required" placeholder:"IMAGE" help:"photo to scan (a directory with --watch)"`
	TargetFolder       string `arg:"positional,required" placeholder:"TARGET" help:"folder that receives tag_<n>.jpg crops"`
	DetectionKey       string `arg:"positional,required" placeholder:"DETECTION_KEY" help:"Custom Vision prediction key"`
	DetectionProjectID string `arg:"positional,required" placeholder:"PROJECT_ID" help:"Custom Vision project ID (UUID)"`
	OCRKey             string `arg:"positional,required" placeholder:"OCR_KEY" help:"Computer Vision subscription key"`

	DetectionEndpoint string `arg:"--detection-endpoint,env:PRICETAG_DETECTION_ENDPOINT" help:"Custom Vision prediction endpoint"`
	Iteration         string `arg:"--iteration,env:PRICETAG_DETECTION_ITERATION" help:"Custom Vision iteration ID (default: project default)"`
	OCREndpoint       string `arg:"--ocr-endpoint,env:PRICETAG_OCR_ENDPOINT" help:"region-specific Recognize Text URL"`
	OCRMode           string `arg:"--ocr-mode,env:PRICETAG_OCR_MODE" help:"recognition mode"`

	Labels    []string `arg:"--labels,env:PRICETAG_LABELS" help:"detection labels to process"`
	Threshold float64  `arg:"--threshold,env:PRICETAG_THRESHOLD" help:"minimum detection probability (exclusive)"`

	Workers      int           `arg:"--workers,env:PRICETAG_WORKERS" help:"tags processed concurrently"`
	Enhance      bool          `arg:"--enhance,env:PRICETAG_ENHANCE" help:"grayscale and sharpen crops before OCR"`
	PollInterval time.Duration `arg:"--poll-interval,env:PRICETAG_POLL_INTERVAL" help:"pause before each OCR poll"`
	PollAttempts int           `arg:"--poll-attempts,env:PRICETAG_POLL_ATTEMPTS" help:"OCR polls before giving up"`
	HTTPTimeout  time.Duration `arg:"--http-timeout,env:PRICETAG_HTTP_TIMEOUT" help:"timeout of a single HTTP request"`
	Timeout      time.Duration `arg:"--timeout,env:PRICETAG_TIMEOUT" help:"time budget for one image, shared by all of its tags; each tag can take up to poll-attempts x poll-interval plus two HTTP round trips, divided across workers"`
	Watch        bool          `arg:"--watch,env:PRICETAG_WATCH" help:"watch IMAGE as a directory and process new photos"`
	LogLevel     string        `arg:"--log-level,env:PRICETAG_LOG_LEVEL" help:"debug, info, warn or error"`

	// ProjectID is DetectionProjectID parsed by Validate.
	ProjectID uuid.UUID `arg:"-"`

	version string
}

// Default returns a Config with every optional setting at its default.
func Default() *Config {
	return &Config{
		DetectionEndpoint: detection.DefaultEndpoint,
		OCREndpoint:       ocr.DefaultEndpoint,
		OCRMode:           ocr.DefaultMode,
		Labels:            []string{detection.DefaultLabel},
		Threshold:         detection.DefaultThreshold,
		Workers:           1,
		PollInterval:      ocr.DefaultPollInterval,
		PollAttempts:      ocr.DefaultPollAttempts,
		HTTPTimeout:       30 * time.Second,
		Timeout:           5 * time.Minute,
		LogLevel:          "info",
	}
}

// Version implements arg.Versioned.
func (c *Config) Version() string {
	return c.version
}

// Description implements arg.Described.
func (c *Config) Description() string {
	return "Detects price tags in a photo, saves each tag as a JPEG and prints its handwritten text."
}

// Parse resolves the configuration from argv (without the program name) and
// the environment. Help and version output go to stdout and yield ErrExit;
// usage errors are written to stderr and returned as *ArgumentError.
func Parse(argv []string, version string, stdout, stderr io.Writer) (*Config, error) {
	cfg := Default()
	cfg.version = version

	p, err := arg.NewParser(arg.Config{Program: Program}, cfg)
	if err != nil {
		return nil, fmt.Errorf("build argument parser: %w", err)
	}

	switch err := p.Parse(argv); {
	case errors.Is(err, arg.ErrHelp):
		p.WriteHelp(stdout)
		return nil, ErrExit
	case errors.Is(err, arg.ErrVersion):
		fmt.Fprintln(stdout, version)
		return nil, ErrExit
	case err != nil:
		p.WriteUsage(stderr)
		fmt.Fprintf(stderr, "error: %v\n", err)
		return nil, &ArgumentError{Err: err}
	}

	if err := cfg.Validate(); err != nil {
		p.WriteUsage(stderr)
		fmt.Fprintf(stderr, "error: %v\n", err)
		return nil, &ArgumentError{Err: err}
	}
	return cfg, nil
}

// Validate checks the settings and fills ProjectID.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ImagePath) == "" {
		return errors.New("image path is empty")
	}
	if strings.TrimSpace(c.TargetFolder) == "" {
		return errors.New("target folder is empty")
	}

	id, err := uuid.Parse(c.DetectionProjectID)
	if err != nil {
		return fmt.Errorf("project ID %q is not a UUID: %w", c.DetectionProjectID, err)
	}
	c.ProjectID = id

	for name, raw := range map[string]string{
		"detection endpoint": c.DetectionEndpoint,
		"ocr endpoint":       c.OCREndpoint,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s %q is not an absolute URL", name, raw)
		}
	}

	labels := c.Labels[:0]
	for _, l := range c.Labels {
		if l = strings.TrimSpace(l); l != "" {
			labels = append(labels, l)
		}
	}
	if len(labels) == 0 {
		return errors.New("at least one detection label is required")
	}
	c.Labels = labels

	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold %v is outside [0,1]", c.Threshold)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.PollAttempts < 1 {
		return fmt.Errorf("poll attempts must be at least 1, got %d", c.PollAttempts)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", c.PollInterval)
	}
	if c.HTTPTimeout <= 0 || c.Timeout <= 0 {
		return errors.New("timeouts must be positive")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

// Level returns the configured log level, defaulting to info.
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// Filter returns the detection filter described by Labels and Threshold.
func (c *Config) Filter() detection.Filter {
	return detection.Filter{Labels: c.Labels, Threshold: c.Threshold}
}
