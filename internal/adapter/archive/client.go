// Package archive provides the HTTP client for the gridded-weather archive
// serving day collections and per-family ancillary terrain grids.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/pacs27/refet-etl/internal/source"
)

// Client fetches family-day imagery over HTTP with exponential-backoff
// retry. Ancillary grids are cached per family; they are static.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	maxElapsed time.Duration
	cache      *ancillaryCache
}

// NewClient creates an archive client. maxElapsed bounds the total retry
// window per request.
func NewClient(baseURL string, timeout, maxElapsed time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:     logger,
		maxElapsed: maxElapsed,
		cache:      newAncillaryCache(maxCachedFamilies),
	}
}

// FetchDay retrieves the imagery covering one calendar day. A day absent
// from the archive is source.ErrNoSamples.
func (c *Client) FetchDay(ctx context.Context, family string, day time.Time) (source.Collection, error) {
	u := fmt.Sprintf("%s/v1/%s/days/%s", c.baseURL, family, day.UTC().Format(DateFormat))

	var payload DayPayload
	if err := c.getJSON(ctx, u, &payload); err != nil {
		return source.Collection{}, fmt.Errorf("fetch day %s/%s: %w", family, day.Format(DateFormat), err)
	}
	return payload.Collection()
}

// FetchAncillary retrieves the static terrain grids for a family, serving
// repeat requests from cache.
func (c *Client) FetchAncillary(ctx context.Context, family string) (source.Ancillary, error) {
	if anc, ok := c.cache.get(family); ok {
		return anc, nil
	}

	u := fmt.Sprintf("%s/v1/%s/ancillary", c.baseURL, family)
	var payload AncillaryPayload
	if err := c.getJSON(ctx, u, &payload); err != nil {
		return source.Ancillary{}, fmt.Errorf("fetch ancillary %s: %w", family, err)
	}
	anc, err := payload.Ancillary()
	if err != nil {
		return source.Ancillary{}, fmt.Errorf("fetch ancillary %s: %w", family, err)
	}
	c.cache.put(family, anc)
	return anc, nil
}

// getJSON performs a GET with retry and decodes the body into out. Server
// errors and rate limits retry; other non-200 statuses fail immediately,
// with 404 mapped to source.ErrNoSamples.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("archive request: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(source.ErrNoSamples)
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			c.logger.Warn("archive request retrying", "url", url, "status", resp.StatusCode)
			return fmt.Errorf("archive status %d", resp.StatusCode)
		default:
			b, _ := io.ReadAll(resp.Body)
			return backoff.Permanent(fmt.Errorf("archive status %d: %s", resp.StatusCode, b))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = c.maxElapsed
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
