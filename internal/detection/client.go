package detection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/pricetag-ocr/internal/geometry"
)

// DefaultEndpoint is the Custom Vision prediction endpoint used when none is configured.
const DefaultEndpoint = "https://southcentralus.api.cognitive.microsoft.com"

// Options configures a Client.
type Options struct {
	// Endpoint is the prediction resource base URL. Defaults to DefaultEndpoint.
	Endpoint string

	// PredictionKey is sent in the Prediction-Key header.
	PredictionKey string

	// ProjectID identifies the Custom Vision project.
	ProjectID uuid.UUID

	// Iteration optionally pins the model iteration. Empty uses the default iteration.
	Iteration string

	// HTTPClient is reused for every request. Defaults to a client with a 30s timeout.
	HTTPClient *http.Client

	// Logger receives request diagnostics. Defaults to the logrus standard logger.
	Logger logrus.FieldLogger
}

// Client calls the Custom Vision object detection prediction API.
// It is safe for concurrent use.
type Client struct {
	url   string
	key   string
	httpc *http.Client
	log   logrus.FieldLogger
}

// NewClient creates a prediction client.
func NewClient(opts Options) *Client {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	u := fmt.Sprintf("%s/customvision/v2.0/Prediction/%s/image",
		strings.TrimRight(endpoint, "/"), opts.ProjectID.String())
	if opts.Iteration != "" {
		u += "?iterationId=" + url.QueryEscape(opts.Iteration)
	}

	httpc := opts.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Client{
		url:   u,
		key:   opts.PredictionKey,
		httpc: httpc,
		log:   logger.WithField("component", "detection"),
	}
}

type predictionResponse struct {
	ID          string       `json:"id"`
	Iteration   string       `json:"iteration"`
	Predictions []prediction `json:"predictions"`
}

type prediction struct {
	TagID       string  `json:"tagId"`
	TagName     string  `json:"tagName"`
	Probability float64 `json:"probability"`
	BoundingBox *struct {
		Left   float64 `json:"left"`
		Top    float64 `json:"top"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	} `json:"boundingBox"`
}

// Detect uploads image and returns every prediction in the service's order.
// Predictions without a bounding box are dropped.
func (c *Client) Detect(ctx context.Context, image []byte) ([]Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Prediction-Key", c.key)

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrServiceUnavailable, err)
	}

	c.log.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"bytes":    len(image),
		"duration": time.Since(start).String(),
	}).Debug("Prediction request finished")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newServiceError(resp.StatusCode, body)
	}

	var pr predictionResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	results := make([]Result, 0, len(pr.Predictions))
	for _, p := range pr.Predictions {
		if p.BoundingBox == nil {
			continue
		}
		results = append(results, Result{
			Label:       p.TagName,
			Probability: p.Probability,
			Box: geometry.NormalizedBox{
				Left:   p.BoundingBox.Left,
				Top:    p.BoundingBox.Top,
				Width:  p.BoundingBox.Width,
				Height: p.BoundingBox.Height,
			},
		})
	}
	return results, nil
}
