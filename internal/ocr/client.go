package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultEndpoint is the Recognize Text endpoint of the West Europe region.
	// The endpoint must match the region the Computer Vision resource was created in.
	DefaultEndpoint = "https://westeurope.api.cognitive.microsoft.com/vision/v2.0/recognizeText"

	// DefaultMode selects the handwriting recognizer.
	DefaultMode = "Handwritten"

	// DefaultPollInterval is the pause before every poll request.
	DefaultPollInterval = time.Second

	// DefaultPollAttempts is the number of poll requests made before giving up.
	DefaultPollAttempts = 10
)

// Status is the state of a server-side recognition job.
type Status string

const (
	StatusNotStarted Status = "NotStarted"
	StatusRunning    Status = "Running"
	StatusSucceeded  Status = "Succeeded"
	StatusFailed     Status = "Failed"

	// StatusTimedOut is assigned locally when the poll budget runs out.
	StatusTimedOut Status = "TimedOut"
)

// Reader extracts text lines from an encoded image.
type Reader interface {
	ReadText(ctx context.Context, image []byte) ([]string, error)
}

// Job tracks one recognition request from submission to a terminal state.
type Job struct {
	// Location is the Operation-Location URL returned on submission.
	Location string

	// Status is the last status observed.
	Status Status

	// Attempts is the number of poll requests made.
	Attempts int

	// Lines holds the recognized text once Status is StatusSucceeded.
	Lines []string
}

// Options configures a Client.
type Options struct {
	// Endpoint is the full Recognize Text URL. Defaults to DefaultEndpoint.
	Endpoint string

	// SubscriptionKey is sent in the Ocp-Apim-Subscription-Key header.
	SubscriptionKey string

	// Mode is the recognition mode query parameter. Defaults to DefaultMode.
	Mode string

	// PollInterval defaults to DefaultPollInterval.
	PollInterval time.Duration

	// PollAttempts defaults to DefaultPollAttempts.
	PollAttempts int

	// HTTPClient is reused for every request. Defaults to a client with a 30s timeout.
	HTTPClient *http.Client

	// Logger receives request diagnostics. Defaults to the logrus standard logger.
	Logger logrus.FieldLogger
}

// Client talks to the Recognize Text API. It is safe for concurrent use.
type Client struct {
	endpoint string
	key      string
	mode     string
	interval time.Duration
	attempts int
	httpc    *http.Client
	log      logrus.FieldLogger
}

// NewClient creates an OCR client, filling unset options with defaults.
func NewClient(opts Options) *Client {
	c := &Client{
		endpoint: opts.Endpoint,
		key:      opts.SubscriptionKey,
		mode:     opts.Mode,
		interval: opts.PollInterval,
		attempts: opts.PollAttempts,
		httpc:    opts.HTTPClient,
	}
	if c.endpoint == "" {
		c.endpoint = DefaultEndpoint
	}
	if c.mode == "" {
		c.mode = DefaultMode
	}
	if c.interval <= 0 {
		c.interval = DefaultPollInterval
	}
	if c.attempts <= 0 {
		c.attempts = DefaultPollAttempts
	}
	if c.httpc == nil {
		c.httpc = &http.Client{Timeout: 30 * time.Second}
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	c.log = logger.WithField("component", "ocr")

	return c
}

// ReadText submits image and waits for the recognized lines.
// The result is empty, not nil, when the tag carries no text.
func (c *Client) ReadText(ctx context.Context, image []byte) ([]string, error) {
	job, err := c.Read(ctx, image)
	if err != nil {
		return nil, err
	}
	return job.Lines, nil
}

// Read submits image and polls the job until it reaches a terminal state.
//
// On error the returned Job, when non-nil, describes how far the job got.
func (c *Client) Read(ctx context.Context, image []byte) (*Job, error) {
	location, err := c.Submit(ctx, image)
	if err != nil {
		return nil, err
	}

	job := &Job{Location: location, Status: StatusNotStarted}
	log := c.log.WithField("operation", location)

	err = Poll(ctx, c.attempts, c.interval, func(ctx context.Context, attempt int) (bool, error) {
		job.Attempts = attempt
		log := log.WithField("attempt", attempt)

		status, body, err := c.fetch(ctx, location)
		if err != nil {
			if !transient(err) {
				return false, err
			}
			log.WithError(err).Warn("Poll attempt returned no status")
			return false, nil
		}
		job.Status = status

		log.WithField("status", status).Debug("Polled text recognition")

		switch status {
		case StatusSucceeded:
			lines, err := ExtractLines(body)
			if err != nil {
				log.WithError(err).Warn("Could not read recognition result")
				return false, nil
			}
			job.Lines = lines
			return true, nil
		case StatusFailed:
			return false, fmt.Errorf("%w: %s", ErrFailed, location)
		}
		return false, nil
	})
	if errors.Is(err, ErrTimeout) {
		job.Status = StatusTimedOut
	}
	return job, err
}

// Submit uploads image and returns the Operation-Location of the new job.
func (c *Client) Submit(ctx context.Context, image []byte) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("mode", c.mode)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(image))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %w", ErrServiceUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", newServiceError(resp.StatusCode, body)
	}

	location := resp.Header.Get("Operation-Location")
	if location == "" {
		return "", &ServiceError{StatusCode: resp.StatusCode, Message: "response has no Operation-Location header"}
	}

	c.log.WithFields(logrus.Fields{
		"status":    resp.StatusCode,
		"bytes":     len(image),
		"operation": location,
	}).Debug("Submitted image for text recognition")

	return location, nil
}

// fetch retrieves the job document and its status. Non-2xx responses are
// returned as *ServiceError.
func (c *Client) fetch(ctx context.Context, location string) (Status, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return "", nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("%w: read response: %w", ErrServiceUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", nil, newServiceError(resp.StatusCode, body)
	}

	var doc struct {
		Status Status `json:"status"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", nil, fmt.Errorf("%w: %w", errMalformedStatus, err)
	}
	return doc.Status, body, nil
}

// transient reports whether a poll error only costs the attempt it happened
// on. Rejected credentials and transport failures end the poll.
func transient(err error) bool {
	if errors.Is(err, errMalformedStatus) {
		return true
	}
	var se *ServiceError
	return errors.As(err, &se) && !errors.Is(err, ErrAuth)
}
