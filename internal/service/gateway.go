// Package service implements the per-endpoint forwarding logic.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"emailmcp-gateway/internal/client"
	"emailmcp-gateway/internal/config"
	"emailmcp-gateway/internal/model"
)

// GatewayService maps each gateway operation onto exactly one EmailMCP
// endpoint. It owns the upstream base URL; the client owns the credential.
type GatewayService struct {
	client *client.EmailMCPClient
	logger *slog.Logger
	base   string // upstream base URL without trailing slash
}

// NewGatewayService creates a GatewayService.
func NewGatewayService(c *client.EmailMCPClient, cfg *config.Config, logger *slog.Logger) (*GatewayService, error) {
	u, err := url.Parse(cfg.Upstream.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse upstream base_url: %w", err)
	}

	return &GatewayService{
		client: c,
		logger: logger.With("component", "gateway_service"),
		base:   strings.TrimRight(u.String(), "/"),
	}, nil
}

// Health calls GET {base}/health and returns the raw outcome so the
// handler can build the composite health body for any status.
func (s *GatewayService) Health(ctx context.Context) (*model.UpstreamResponse, error) {
	return s.client.DoJSON(ctx, http.MethodGet, s.base+"/health", nil)
}

// Authorize starts the OAuth flow for a user via POST /v1/oauth/authorize.
func (s *GatewayService) Authorize(ctx context.Context, req model.AuthorizeRequest) ([]byte, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal authorize request: %w", err)
	}
	return s.forward(ctx, http.MethodPost, s.base+"/v1/oauth/authorize", body)
}

// CompleteCallback relays the OAuth callback via POST /v1/oauth/callback.
// The code and state values are concatenated into the query string exactly
// as received, never re-encoded, and the body is always empty.
func (s *GatewayService) CompleteCallback(ctx context.Context, code, state string) ([]byte, error) {
	target := s.base + "/v1/oauth/callback?code=" + code + "&state=" + state
	return s.forward(ctx, http.MethodPost, target, nil)
}

// UserProfile fetches GET /v1/users/{id}/profile.
func (s *GatewayService) UserProfile(ctx context.Context, userID string) ([]byte, error) {
	return s.forward(ctx, http.MethodGet, s.userPath(userID, "/profile"), nil)
}

// DisconnectGmail calls DELETE /v1/users/{id}/gmail.
func (s *GatewayService) DisconnectGmail(ctx context.Context, userID string) ([]byte, error) {
	return s.forward(ctx, http.MethodDelete, s.userPath(userID, "/gmail"), nil)
}

// SendMessage posts the full inbound payload to /v1/users/{id}/messages.
// Fields beyond the required three pass through unmodified.
func (s *GatewayService) SendMessage(ctx context.Context, userID string, payload model.MessagePayload) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal message payload: %w", err)
	}
	return s.forward(ctx, http.MethodPost, s.userPath(userID, "/messages"), body)
}

// UserReport fetches GET /v1/reports/users/{id}. The date range parameters
// are appended only when present; with neither set the URL carries no "?".
func (s *GatewayService) UserReport(ctx context.Context, userID, startDate, endDate string) ([]byte, error) {
	target := s.base + "/v1/reports/users/" + url.PathEscape(userID)

	var params []string
	if startDate != "" {
		params = append(params, "start_date="+startDate)
	}
	if endDate != "" {
		params = append(params, "end_date="+endDate)
	}
	if len(params) > 0 {
		target += "?" + strings.Join(params, "&")
	}

	return s.forward(ctx, http.MethodGet, target, nil)
}

// SummaryReport fetches GET /v1/reports/summary.
func (s *GatewayService) SummaryReport(ctx context.Context) ([]byte, error) {
	return s.forward(ctx, http.MethodGet, s.base+"/v1/reports/summary", nil)
}

// forward executes one upstream call and classifies the outcome: a 2xx
// answer yields the raw body, a non-2xx answer becomes an *UpstreamError
// carrying the upstream status and detail, and a transport failure is
// returned wrapped.
func (s *GatewayService) forward(ctx context.Context, method, target string, body []byte) ([]byte, error) {
	s.logger.Debug("forwarding request",
		"method", method,
		"target", target,
	)

	resp, err := s.client.DoJSON(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("forward to upstream: %w", err)
	}

	if !resp.Success() {
		return nil, &client.UpstreamError{
			StatusCode: resp.StatusCode,
			Detail:     ExtractDetail(resp.Body, resp.StatusCode),
		}
	}

	return resp.Body, nil
}

func (s *GatewayService) userPath(userID, suffix string) string {
	return s.base + "/v1/users/" + url.PathEscape(userID) + suffix
}

// ExtractDetail pulls the error message out of an upstream error body.
// EmailMCP is a FastAPI service, so the message normally lives under
// "detail"; "error" is probed as a fallback before the generic message.
func ExtractDetail(body []byte, statusCode int) string {
	var m map[string]any
	if err := json.Unmarshal(body, &m); err == nil {
		for _, key := range []string{"detail", "error"} {
			v, ok := m[key]
			if !ok || v == nil {
				continue
			}
			if s, ok := v.(string); ok {
				return s
			}
			// Structured detail (e.g. FastAPI validation errors) is
			// relayed as its JSON text.
			if b, err := json.Marshal(v); err == nil {
				return string(b)
			}
		}
	}
	return fmt.Sprintf("upstream request failed with status %d", statusCode)
}
