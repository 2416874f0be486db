// Package client provides the upstream HTTP client for the EmailMCP API.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"emailmcp-gateway/internal/config"
	"emailmcp-gateway/internal/metrics"
	"emailmcp-gateway/internal/model"
)

// UpstreamError reports a non-2xx answer from the EmailMCP service.
// StatusCode is relayed to the caller verbatim; Detail is the message
// extracted from the upstream error body.
type UpstreamError struct {
	StatusCode int
	Detail     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Detail)
}

// EmailMCPClient sends authenticated requests to the upstream EmailMCP API.
type EmailMCPClient struct {
	httpClient *http.Client
	apiKey     string
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewEmailMCPClient creates an EmailMCPClient with connection pooling and
// the bearer credential from configuration. The metrics parameter is
// optional; pass nil to disable upstream metrics recording.
func NewEmailMCPClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *EmailMCPClient {
	transport := &http.Transport{
		MaxIdleConns:        cfg.Upstream.IdleConnections,
		MaxIdleConnsPerHost: cfg.Upstream.IdleConnections,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	return &EmailMCPClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second,
		},
		apiKey:  cfg.Upstream.APIKey,
		logger:  logger.With("component", "emailmcp_client"),
		metrics: m,
	}
}

// DoJSON executes one JSON request against the upstream and returns the
// buffered response, whatever its status. The bearer credential and JSON
// content type are injected here so no handler can forget them. The
// provided context controls the lifetime of the upstream request.
func (c *EmailMCPClient) DoJSON(ctx context.Context, method, url string, body []byte) (*model.UpstreamResponse, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("upstream request",
		"method", method,
		"path", req.URL.Path,
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start).Seconds()

	httpMethod := metrics.NormalizeMethod(method)

	if err != nil {
		if c.metrics != nil {
			c.metrics.UpstreamDuration.WithLabelValues(httpMethod).Observe(duration)
		}
		return nil, fmt.Errorf("upstream request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if c.metrics != nil {
		status := strconv.Itoa(resp.StatusCode)
		c.metrics.UpstreamDuration.WithLabelValues(httpMethod).Observe(duration)
		c.metrics.UpstreamResponses.WithLabelValues(httpMethod, status).Inc()
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream response: %w", err)
	}

	return &model.UpstreamResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}
