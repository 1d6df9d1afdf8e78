// Package upstream performs the raw HTTP exchange shared by the third-party
// API clients: request construction, timing, metrics and transport faults.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/flight-delay-service/internal/domain"
	"github.com/couchcryptid/flight-delay-service/internal/observability"
)

// maxBodyBytes bounds how much of an upstream response is read.
const maxBodyBytes = 4 << 20

// Response is an upstream reply read fully into memory.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// OK reports whether the upstream answered with a 2xx status.
func (r Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Doer sends one GET and returns the upstream response.
type Doer struct {
	Service    string
	HTTPClient *http.Client
	Logger     *slog.Logger
	Metrics    *observability.Metrics
}

// NewDoer creates a Doer for service with the given request timeout.
func NewDoer(service string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Doer {
	return &Doer{
		Service:    service,
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     logger,
		Metrics:    metrics,
	}
}

// Get fetches fullURL. Any status is returned as a Response; only failures to
// complete the exchange produce an error, always a *domain.TransportError.
// logURL is what gets logged in place of fullURL, which may carry a key.
func (d *Doer) Get(ctx context.Context, fullURL, logURL string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return Response{}, &domain.TransportError{Service: d.Service, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		err = redactURL(err, logURL)
		d.Metrics.ObserveUpstream(d.Service, observability.OutcomeTransportError, time.Since(start))
		d.Logger.Warn("upstream request failed", "service", d.Service, "url", logURL, "error", err)
		return Response{}, &domain.TransportError{Service: d.Service, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	elapsed := time.Since(start)
	if err != nil {
		d.Metrics.ObserveUpstream(d.Service, observability.OutcomeTransportError, elapsed)
		return Response{}, &domain.TransportError{Service: d.Service, Err: fmt.Errorf("read body: %w", err)}
	}

	out := Response{Status: resp.StatusCode, ContentType: resp.Header.Get("Content-Type"), Body: body}
	outcome := observability.OutcomeSuccess
	if !out.OK() {
		outcome = observability.OutcomeUpstreamError
	}
	d.Metrics.ObserveUpstream(d.Service, outcome, elapsed)
	d.Logger.Debug("upstream response",
		"service", d.Service,
		"url", logURL,
		"status", resp.StatusCode,
		"duration", elapsed,
	)
	return out, nil
}

// redactURL replaces the request URL inside a *url.Error, which may carry an
// API key in its query string.
func redactURL(err error, logURL string) error {
	var uerr *url.Error
	if !errors.As(err, &uerr) {
		return err
	}
	return fmt.Errorf("%s %s: %w", uerr.Op, logURL, uerr.Err)
}
