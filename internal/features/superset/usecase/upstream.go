package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"superset-embed/internal/common"
	"superset-embed/internal/features/superset/domain"
)

// Superset API paths
const (
	loginPath         = "/api/v1/security/login"
	guestTokenPath    = "/api/v1/security/guest_token/"
	dashboardListPath = "/api/v1/dashboard/?q=(page:0,page_size:%d)"
	embeddedPathFmt   = "/api/v1/dashboard/%d/embedded"
	healthPath        = "/health"
)

// maxMessageLength truncates upstream bodies quoted in error messages
const maxMessageLength = 200

// upstream performs single Superset API round trips
type upstream struct {
	httpClient domain.HTTPClientInterface
	metrics    *MetricsCollector
}

// do sends one request bounded by cfg.Timeout and returns the status and body.
// Transport failures are returned as timeout or connection errors; any status is returned as is.
func (u upstream) do(
	ctx context.Context,
	cfg domain.Config,
	operation string,
	method string,
	path string,
	bearer string,
	payload interface{},
) (int, []byte, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal %s request: %w", operation, err)
		}
	}

	headers := map[string]string{}
	if body != nil {
		headers["Content-Type"] = "application/json"
	}
	if bearer != "" {
		headers["Authorization"] = "Bearer " + bearer
	}

	reqCtx, cancel := common.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	url := cfg.URL(path)
	start := time.Now()

	resp, err := u.httpClient.Request(reqCtx, method, url, body, headers)
	if err != nil {
		u.metrics.ObserveUpstream(operation, 0, time.Since(start))
		logUpstream(ctx, cfg, operation, method, url, 0, time.Since(start), err)
		return 0, nil, common.TransportError(operation, err)
	}

	respBody, err := u.httpClient.ReadResponseBody(resp)
	elapsed := time.Since(start)
	u.metrics.ObserveUpstream(operation, resp.StatusCode, elapsed)
	logUpstream(ctx, cfg, operation, method, url, resp.StatusCode, elapsed, err)
	if err != nil {
		return 0, nil, common.TransportError(operation, err)
	}

	return resp.StatusCode, respBody, nil
}

// logUpstream logs a round trip at debug level, or info level when the config asks for debug output
func logUpstream(
	ctx context.Context,
	cfg domain.Config,
	operation, method, url string,
	status int,
	elapsed time.Duration,
	err error,
) {
	level := slog.LevelDebug
	if cfg.Debug {
		level = slog.LevelInfo
	}

	attrs := []any{
		"operation", operation,
		"method", method,
		"url", url,
		"status", status,
		"duration_ms", elapsed.Milliseconds(),
	}
	if err != nil {
		attrs = append(attrs, "error", err.Error())
	}

	common.LoggerFromContext(ctx).Log(ctx, level, "superset request", attrs...)
}

// upstreamMessage extracts a human readable message from an error body
func upstreamMessage(body []byte) string {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"message", "msg", "error", "errors"} {
			if value, ok := payload[key]; ok && value != nil {
				if s, ok := value.(string); ok {
					return truncate(s)
				}
				if encoded, err := json.Marshal(value); err == nil {
					return truncate(string(encoded))
				}
			}
		}
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		return "empty response"
	}
	return truncate(text)
}

func truncate(s string) string {
	if len(s) <= maxMessageLength {
		return s
	}
	cut := maxMessageLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
