package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spacesedan/reviewflow/internal/models"
	"github.com/spacesedan/reviewflow/internal/monitoring"
	"github.com/spacesedan/reviewflow/internal/resilience"
)

// SentimentClient issues the batched analysis call to the upstream
// sentiment service with retries, backoff, and breaker integration. The
// breaker is injected so concurrent pipelines share one view of upstream
// health.
type SentimentClient struct {
	httpClient *http.Client
	cfg        AnalyzerConfig
	breaker    *resilience.Breaker
}

func NewSentimentClient(cfg AnalyzerConfig, breaker *resilience.Breaker) *SentimentClient {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   cfg.ConnectTimeout,
			KeepAlive: KEEP_ALIVE,
		}).DialContext,
		ResponseHeaderTimeout: cfg.ReadTimeout,
		MaxIdleConns:          MAX_IDLE_CONNS,
		MaxConnsPerHost:       MAX_CONNS_PER_HOST,
		IdleConnTimeout:       IDLE_CONN_TIMEOUT,
	}

	slog.Info("[SentimentClient] Initializing client",
		slog.String("endpoint", cfg.EndpointURL),
		slog.Duration("request_timeout", cfg.RequestTimeout),
		slog.Int("max_retries", cfg.MaxRetries))

	return &SentimentClient{
		httpClient: &http.Client{Transport: transport},
		cfg:        cfg,
		breaker:    breaker,
	}
}

type outcomeKind int

const (
	outcomeSuccess outcomeKind = iota
	outcomeClientFailure
	outcomeServerFailure
	outcomeTransientFailure
)

// attemptOutcome is the per-attempt result value the retry loop inspects;
// the continue/stop decision is never made through error control flow.
type attemptOutcome struct {
	kind       outcomeKind
	text       string
	statusCode int
	err        error
}

// Send posts the review batch and returns the raw free-text answer. An empty
// string with a nil error means the upstream answered without any text
// ("no data"). The whole batch call is all-or-nothing.
func (c *SentimentClient) Send(ctx context.Context, items []models.ReviewAnalysisItem) (string, error) {
	if !c.breaker.IsAvailable() {
		monitoring.UpstreamRequestsTotal.WithLabelValues("circuit_open").Inc()
		c.publishBreakerState()
		return "", ErrCircuitOpen
	}

	serialized, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to serialize review items: %w", err)
	}
	body, err := json.Marshal(models.AnalysisRequest{Inputs: string(serialized)})
	if err != nil {
		return "", fmt.Errorf("failed to build request payload: %w", err)
	}

	var last attemptOutcome
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 1 {
			delay := c.cfg.RetryBaseDelay << (attempt - 2)
			slog.Warn("[SentimentClient] Retrying upstream request",
				slog.Int("attempt", attempt),
				slog.Duration("backoff", delay))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		out := c.attempt(ctx, body, attempt)
		last = out
		c.publishBreakerState()

		switch out.kind {
		case outcomeSuccess:
			monitoring.UpstreamRequestsTotal.WithLabelValues("success").Inc()
			return out.text, nil
		case outcomeClientFailure:
			monitoring.UpstreamRequestsTotal.WithLabelValues("client_error").Inc()
			return "", out.err
		case outcomeServerFailure, outcomeTransientFailure:
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
		}
	}

	switch last.kind {
	case outcomeServerFailure:
		monitoring.UpstreamRequestsTotal.WithLabelValues("server_error").Inc()
		return "", &ServerError{StatusCode: last.statusCode, Attempts: c.cfg.MaxRetries}
	default:
		monitoring.UpstreamRequestsTotal.WithLabelValues("transient_error").Inc()
		return "", &TransientError{Attempts: c.cfg.MaxRetries, Err: last.err}
	}
}

// attempt performs one network attempt and records the result on the
// breaker. 4xx responses are orthogonal to breaker health and record
// neither success nor failure.
func (c *SentimentClient) attempt(ctx context.Context, body []byte, attempt int) attemptOutcome {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.cfg.EndpointURL, bytes.NewReader(body))
	if err != nil {
		return attemptOutcome{kind: outcomeTransientFailure, err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.BearerToken)
	req.Header.Set("User-Agent", USER_AGENT)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	monitoring.UpstreamRequestDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		c.breaker.RecordFailure()
		slog.Warn("[SentimentClient] Request attempt failed",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		return attemptOutcome{kind: outcomeTransientFailure, err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.breaker.RecordFailure()
		return attemptOutcome{kind: outcomeTransientFailure, err: err}
	}

	switch {
	case resp.StatusCode >= 500:
		c.breaker.RecordFailure()
		slog.Warn("[SentimentClient] Upstream server error",
			slog.Int("attempt", attempt),
			slog.Int("status", resp.StatusCode))
		return attemptOutcome{kind: outcomeServerFailure, statusCode: resp.StatusCode}
	case resp.StatusCode >= 400:
		return attemptOutcome{
			kind:       outcomeClientFailure,
			statusCode: resp.StatusCode,
			err:        &ClientError{StatusCode: resp.StatusCode, Body: preview(respBody)},
		}
	}

	c.breaker.RecordSuccess()

	var envelope models.AnalysisResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		// A 2xx whose body is not the documented envelope carries no usable
		// text; treated the same as an absent text field, not as a failure.
		slog.Warn("[SentimentClient] Unparseable response envelope",
			slog.String("error", err.Error()),
			slog.String("raw_response", preview(respBody)))
		return attemptOutcome{kind: outcomeSuccess, text: ""}
	}

	return attemptOutcome{kind: outcomeSuccess, text: envelope.GeneratedText}
}

// HealthCheck probes the upstream endpoint without sending a payload.
func (c *SentimentClient) HealthCheck(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, c.cfg.EndpointURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 500
}

func (c *SentimentClient) publishBreakerState() {
	monitoring.BreakerState.Set(float64(c.breaker.State()))
}

func preview(raw []byte) string {
	s := string(raw)
	if len(s) > 120 {
		s = s[:120] + "..."
	}
	return s
}
