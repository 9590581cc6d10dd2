package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	maxUploadRetries = 2
	maxBackoff       = 16 * time.Second
)

// ErrUploadRejected is returned when the image host answers without a link.
var ErrUploadRejected = errors.New("upload rejected")

// Uploader publishes a screenshot and returns a shareable reference.
type Uploader interface {
	Upload(ctx context.Context, path string) (string, error)
}

// NoopUploader keeps the local path as the reference.
type NoopUploader struct{}

// Upload returns path unchanged.
func (NoopUploader) Upload(_ context.Context, path string) (string, error) {
	return path, nil
}

// UploaderConfig configures an HTTPUploader.
type UploaderConfig struct {
	Endpoint string
	ClientID string
	Interval time.Duration // minimum spacing between uploads
	Burst    int
	Timeout  time.Duration
}

// HTTPUploader posts images to an Imgur-compatible endpoint: a multipart
// "image" field and a Client-ID authorization header, answered by
// {"success":true,"data":{"link":"..."}}.
type HTTPUploader struct {
	endpoint    string
	clientID    string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	backoff     time.Duration
}

// NewHTTPUploader creates a rate-limited uploader.
func NewHTTPUploader(cfg UploaderConfig) *HTTPUploader {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	limit := rate.Inf
	if cfg.Interval > 0 {
		limit = rate.Every(cfg.Interval)
	}
	return &HTTPUploader{
		endpoint:    cfg.Endpoint,
		clientID:    cfg.ClientID,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		rateLimiter: rate.NewLimiter(limit, cfg.Burst),
		backoff:     time.Second,
	}
}

// NewUploader returns an HTTPUploader, or a NoopUploader when no endpoint
// is configured.
func NewUploader(cfg UploaderConfig) Uploader {
	if cfg.Endpoint == "" {
		return NoopUploader{}
	}
	return NewHTTPUploader(cfg)
}

type uploadResponse struct {
	Success bool `json:"success"`
	Status  int  `json:"status"`
	Data    struct {
		Link  string `json:"link"`
		Error string `json:"error"`
	} `json:"data"`
}

// Upload sends the file at path and returns the hosted link. Rate limits
// (HTTP 429) and server errors are retried with exponential backoff.
func (u *HTTPUploader) Upload(ctx context.Context, path string) (string, error) {
	image, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	name := uuid.NewString() + filepath.Ext(path)

	var lastErr error
	backoff := u.backoff
	for attempt := 0; attempt <= maxUploadRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)
		}

		if err := u.rateLimiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter error: %w", err)
		}

		link, retry, err := u.post(ctx, name, image)
		if err == nil {
			return link, nil
		}
		lastErr = err
		if !retry {
			break
		}
	}
	return "", lastErr
}

func (u *HTTPUploader) post(ctx context.Context, name string, image []byte) (link string, retry bool, err error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("image", name)
	if err != nil {
		return "", false, fmt.Errorf("failed to create form: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return "", false, fmt.Errorf("failed to write form: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", false, fmt.Errorf("failed to close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, &body)
	if err != nil {
		return "", false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	if u.clientID != "" {
		req.Header.Set("Authorization", "Client-ID "+u.clientID)
	}

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("upload request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", true, fmt.Errorf("upload failed: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, fmt.Errorf("failed to read response body: %w", err)
	}
	var parsed uploadResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", false, fmt.Errorf("failed to parse upload response (HTTP %d): %w", resp.StatusCode, err)
	}
	if !parsed.Success || parsed.Data.Link == "" {
		return "", false, fmt.Errorf("%w: HTTP %d %s", ErrUploadRejected, resp.StatusCode, parsed.Data.Error)
	}
	return parsed.Data.Link, false, nil
}
