// Package tracker imports third-party tracker signatures from the ETIP
// Exodus Privacy feed and folds the genuinely new ones into the kit
// pattern catalog.
package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/apk-metadata/apk-metadata-go/internal/retry"
	"github.com/sirupsen/logrus"
)

// DefaultFeedURL is the ETIP Exodus Privacy tracker list.
const DefaultFeedURL = "https://etip.exodus-privacy.eu.org/api/trackers/?format=json"

// Descriptor is one remote tracker definition. code_signature uses
// `.`-separated class paths with `|` as an OR separator.
type Descriptor struct {
	Name          string `json:"name"`
	CodeSignature string `json:"code_signature"`
}

// FeedError reports a non-success response from the remote feed.
type FeedError struct {
	StatusCode int
}

func (e *FeedError) Error() string {
	return fmt.Sprintf("tracker feed responded with status %d", e.StatusCode)
}

// FeedClient fetches the remote tracker list.
type FeedClient struct {
	url        string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewFeedClient builds a feed client. An empty url selects the default
// Exodus endpoint; timeout zero defaults to 30s.
func NewFeedClient(url string, timeout time.Duration, logger *logrus.Logger) *FeedClient {
	if url == "" {
		url = DefaultFeedURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &FeedClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Fetch downloads and decodes the tracker list. Transport errors are
// retried with backoff; a non-200 response aborts immediately, as does a
// payload that does not decode.
func (c *FeedClient) Fetch(ctx context.Context) ([]Descriptor, error) {
	cfg := &retry.Config{
		MaxAttempts:     3,
		InitialInterval: 1 * time.Second,
		MaxInterval:     10 * time.Second,
		Strategy:        retry.StrategyFixed,
		Logger:          c.logger,
	}

	return retry.DoWithResult(ctx, cfg, func(ctx context.Context) ([]Descriptor, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
		if err != nil {
			return nil, retry.NewNonRetryableError(fmt.Errorf("build feed request: %w", err))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, retry.NewRetryableError(fmt.Errorf("fetch tracker feed: %w", err))
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, retry.NewNonRetryableError(&FeedError{StatusCode: resp.StatusCode})
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, retry.NewRetryableError(fmt.Errorf("read feed body: %w", err))
		}

		var descriptors []Descriptor
		if err := json.Unmarshal(body, &descriptors); err != nil {
			return nil, retry.NewNonRetryableError(fmt.Errorf("malformed tracker feed payload: %w", err))
		}

		return descriptors, nil
	})
}
