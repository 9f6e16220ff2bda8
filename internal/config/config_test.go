package config

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

const testProjectID = "0f8fad5b-d9cb-469f-a165-70867728950e"

func positional() []string {
	return []string{"shelf.jpg", "out", "pred-key", testProjectID, "ocr-key"}
}

func TestParse_Positional(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cfg, err := Parse(positional(), "test", &stdout, &stderr)
	if err != nil {
		t.Fatalf("Parse failed: %v (stderr %s)", err, stderr.String())
	}

	if cfg.ImagePath != "shelf.jpg" || cfg.TargetFolder != "out" {
		t.Errorf("paths: got %q %q", cfg.ImagePath, cfg.TargetFolder)
	}
	if cfg.DetectionKey != "pred-key" || cfg.OCRKey != "ocr-key" {
		t.Errorf("keys: got %q %q", cfg.DetectionKey, cfg.OCRKey)
	}
	if cfg.ProjectID.String() != testProjectID {
		t.Errorf("ProjectID: got %s", cfg.ProjectID)
	}

	def := Default()
	if cfg.Threshold != def.Threshold || cfg.Workers != 1 || cfg.PollAttempts != 10 || cfg.PollInterval != time.Second {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Labels, []string{"PriceTag"}) {
		t.Errorf("Labels: got %q", cfg.Labels)
	}
}

func TestParse_WrongArgumentCount(t *testing.T) {
	tests := []struct {
		name string
		argv []string
	}{
		{"none", nil},
		{"four", positional()[:4]},
		{"six", append(positional(), "extra")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			_, err := Parse(tt.argv, "test", &stdout, &stderr)

			var ae *ArgumentError
			if !errors.As(err, &ae) {
				t.Fatalf("expected *ArgumentError, got %v", err)
			}
			if !strings.Contains(stderr.String(), "Usage:") {
				t.Errorf("usage not written to stderr: %q", stderr.String())
			}
		})
	}
}

func TestParse_HelpAndVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	_, err := Parse([]string{"--help"}, "1.2.3", &stdout, &stderr)
	if !errors.Is(err, ErrExit) {
		t.Fatalf("--help: expected ErrExit, got %v", err)
	}
	if !strings.Contains(stdout.String(), "--threshold") {
		t.Errorf("help output missing options: %q", stdout.String())
	}
	if !strings.Contains(stdout.String(), "shared by all of its tags") {
		t.Errorf("help output should explain the per-image timeout: %q", stdout.String())
	}

	stdout.Reset()
	_, err = Parse([]string{"--version"}, "1.2.3", &stdout, &stderr)
	if !errors.Is(err, ErrExit) {
		t.Fatalf("--version: expected ErrExit, got %v", err)
	}
	if strings.TrimSpace(stdout.String()) != "1.2.3" {
		t.Errorf("version output: got %q", stdout.String())
	}
}

func TestParse_Flags(t *testing.T) {
	argv := append(positional(),
		"--threshold", "0.75",
		"--labels", "PriceTag", "SaleTag",
		"--workers", "4",
		"--enhance",
		"--ocr-endpoint", "https://eastus.api.cognitive.microsoft.com/vision/v2.0/recognizeText",
		"--poll-interval", "500ms",
		"--log-level", "debug",
	)

	var stdout, stderr bytes.Buffer
	cfg, err := Parse(argv, "test", &stdout, &stderr)
	if err != nil {
		t.Fatalf("Parse failed: %v (stderr %s)", err, stderr.String())
	}

	if cfg.Threshold != 0.75 || cfg.Workers != 4 || !cfg.Enhance {
		t.Errorf("flags: got %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Labels, []string{"PriceTag", "SaleTag"}) {
		t.Errorf("Labels: got %q", cfg.Labels)
	}
	if !strings.HasPrefix(cfg.OCREndpoint, "https://eastus.") {
		t.Errorf("OCREndpoint: got %s", cfg.OCREndpoint)
	}
	if cfg.PollInterval != 500*time.Millisecond {
		t.Errorf("PollInterval: got %v", cfg.PollInterval)
	}
	if cfg.Level() != logrus.DebugLevel {
		t.Errorf("Level: got %v", cfg.Level())
	}

	f := cfg.Filter()
	if f.Threshold != 0.75 || len(f.Labels) != 2 {
		t.Errorf("Filter: got %+v", f)
	}
}

func TestParse_Environment(t *testing.T) {
	t.Setenv("PRICETAG_OCR_ENDPOINT", "https://northeurope.api.cognitive.microsoft.com/vision/v2.0/recognizeText")
	t.Setenv("PRICETAG_THRESHOLD", "0.9")

	var stdout, stderr bytes.Buffer
	cfg, err := Parse(positional(), "test", &stdout, &stderr)
	if err != nil {
		t.Fatalf("Parse failed: %v (stderr %s)", err, stderr.String())
	}
	if !strings.HasPrefix(cfg.OCREndpoint, "https://northeurope.") {
		t.Errorf("OCREndpoint: got %s", cfg.OCREndpoint)
	}
	if cfg.Threshold != 0.9 {
		t.Errorf("Threshold: got %v", cfg.Threshold)
	}

	// Flags win over the environment.
	cfg, err = Parse(append(positional(), "--threshold", "0.6"), "test", &stdout, &stderr)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Threshold != 0.6 {
		t.Errorf("Threshold: got %v, want flag value 0.6", cfg.Threshold)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := Default()
		c.ImagePath = "a.jpg"
		c.TargetFolder = "out"
		c.DetectionProjectID = testProjectID
		return c
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad project id", func(c *Config) { c.DetectionProjectID = "not-a-guid" }},
		{"empty image", func(c *Config) { c.ImagePath = " " }},
		{"empty target", func(c *Config) { c.TargetFolder = "" }},
		{"relative ocr endpoint", func(c *Config) { c.OCREndpoint = "/vision/v2.0/recognizeText" }},
		{"bad detection endpoint", func(c *Config) { c.DetectionEndpoint = "::" }},
		{"no labels", func(c *Config) { c.Labels = []string{" ", ""} }},
		{"threshold above 1", func(c *Config) { c.Threshold = 1.5 }},
		{"negative threshold", func(c *Config) { c.Threshold = -0.1 }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"zero poll attempts", func(c *Config) { c.PollAttempts = 0 }},
		{"zero poll interval", func(c *Config) { c.PollInterval = 0 }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidate_TrimsLabels(t *testing.T) {
	c := Default()
	c.ImagePath, c.TargetFolder, c.DetectionProjectID = "a.jpg", "out", testProjectID
	c.Labels = []string{" PriceTag ", "", "SaleTag"}

	if err := c.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !reflect.DeepEqual(c.Labels, []string{"PriceTag", "SaleTag"}) {
		t.Errorf("Labels: got %q", c.Labels)
	}
}
