package detection

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var testProjectID = uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e")

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestClient(t *testing.T, handler http.HandlerFunc, iteration string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(Options{
		Endpoint:      srv.URL + "/",
		PredictionKey: "secret-key",
		ProjectID:     testProjectID,
		Iteration:     iteration,
		HTTPClient:    srv.Client(),
		Logger:        quietLogger(),
	})
}

func TestClient_Detect(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method: got %s, want POST", r.Method)
		}
		wantPath := "/customvision/v2.0/Prediction/" + testProjectID.String() + "/image"
		if r.URL.Path != wantPath {
			t.Errorf("path: got %s, want %s", r.URL.Path, wantPath)
		}
		if got := r.Header.Get("Prediction-Key"); got != "secret-key" {
			t.Errorf("Prediction-Key: got %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/octet-stream" {
			t.Errorf("Content-Type: got %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "jpeg-bytes" {
			t.Errorf("body: got %q", body)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "abc",
			"iteration": "it-1",
			"predictions": [
				{"tagId": "1", "tagName": "PriceTag", "probability": 0.91,
				 "boundingBox": {"left": 0.4, "top": 0.4, "width": 0.2, "height": 0.2}},
				{"tagId": "2", "tagName": "Shelf", "probability": 0.55,
				 "boundingBox": {"left": 0.0, "top": 0.7, "width": 1.0, "height": 0.1}},
				{"tagId": "3", "tagName": "PriceTag", "probability": 0.3}
			]
		}`)
	}, "")

	results, err := c.Detect(context.Background(), []byte("jpeg-bytes"))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	first := results[0]
	if first.Label != "PriceTag" || first.Probability != 0.91 {
		t.Errorf("first result: got %+v", first)
	}
	if first.Box.Left != 0.4 || first.Box.Top != 0.4 || first.Box.Width != 0.2 || first.Box.Height != 0.2 {
		t.Errorf("first box: got %+v", first.Box)
	}
	if results[1].Label != "Shelf" {
		t.Errorf("second result: got %+v", results[1])
	}
}

func TestClient_DetectIteration(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("iterationId"); got != "iter 7" {
			t.Errorf("iterationId: got %q, want %q", got, "iter 7")
		}
		_, _ = io.WriteString(w, `{"predictions": []}`)
	}, "iter 7")

	results, err := c.Detect(context.Background(), []byte("x"))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestClient_DetectErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantIs   error
		wantCode string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"code":"Unauthorized","message":"bad key"}`, ErrAuth, "Unauthorized"},
		{"forbidden", http.StatusForbidden, ``, ErrAuth, ""},
		{"throttled", http.StatusTooManyRequests, `{"code":"TooManyRequests","message":"slow down"}`, ErrServiceUnavailable, "TooManyRequests"},
		{"server error", http.StatusInternalServerError, `oops`, ErrServiceUnavailable, ""},
		{"bad request", http.StatusBadRequest, `{"code":"BadRequestImageFormat","message":"bad image"}`, nil, "BadRequestImageFormat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}, "")

			_, err := c.Detect(context.Background(), []byte("x"))
			if err == nil {
				t.Fatal("expected an error")
			}

			var se *ServiceError
			if !errors.As(err, &se) {
				t.Fatalf("expected *ServiceError, got %T: %v", err, err)
			}
			if se.StatusCode != tt.status || se.Code != tt.wantCode {
				t.Errorf("ServiceError: got %+v", se)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("expected errors.Is(%v), got %v", tt.wantIs, err)
			}
			if tt.wantIs == nil && (errors.Is(err, ErrAuth) || errors.Is(err, ErrServiceUnavailable)) {
				t.Errorf("bad request should not be classified, got %v", err)
			}
		})
	}
}

func TestClient_DetectUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	c := NewClient(Options{
		Endpoint:  endpoint,
		ProjectID: testProjectID,
		Logger:    quietLogger(),
	})

	_, err := c.Detect(context.Background(), []byte("x"))
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestClient_DetectMalformedJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"predictions": [`)
	}, "")

	_, err := c.Detect(context.Background(), []byte("x"))
	if err == nil {
		t.Fatal("expected a decode error")
	}
	if errors.Is(err, ErrServiceUnavailable) || errors.Is(err, ErrAuth) {
		t.Errorf("decode error should not be classified, got %v", err)
	}
}
