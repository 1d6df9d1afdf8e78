package opensky

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/flight-delay-service/internal/adapter/upstream"
	"github.com/couchcryptid/flight-delay-service/internal/domain"
	"github.com/couchcryptid/flight-delay-service/internal/observability"
)

// Service labels OpenSky calls in logs, metrics and errors.
const Service = "opensky"

// DefaultBaseURL is the public OpenSky Network host.
const DefaultBaseURL = "https://opensky-network.org"

// Window is how far back arrivals and departures are requested.
const Window = 12 * time.Hour

// Client queries OpenSky's anonymous flights-by-airport endpoints.
type Client struct {
	baseURL string
	doer    *upstream.Doer
}

// NewClient creates an OpenSky client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    upstream.NewDoer(Service, timeout, logger, metrics),
	}
}

// Flights requests the last Window of arrivals or departures at airport and
// returns the upstream reply as-is. Known IATA codes are sent as ICAO.
func (c *Client) Flights(ctx context.Context, airport string, st domain.ScheduleType) (upstream.Response, error) {
	end := domain.Now().Unix()
	begin := end - int64(Window/time.Second)
	params := url.Values{
		"airport": {domain.OpenSkyCode(airport)},
		"begin":   {strconv.FormatInt(begin, 10)},
		"end":     {strconv.FormatInt(end, 10)},
	}
	u := c.baseURL + "/api/flights/" + string(st) + "?" + params.Encode()
	return c.doer.Get(ctx, u, u)
}

// Schedules fetches and decodes flights at airport into a normalizer batch.
func (c *Client) Schedules(ctx context.Context, airport domain.Airport, st domain.ScheduleType) (domain.OpenSkyBatch, error) {
	resp, err := c.Flights(ctx, airport.Code, st)
	if err != nil {
		return domain.OpenSkyBatch{}, err
	}
	if !resp.OK() {
		return domain.OpenSkyBatch{}, &domain.UpstreamError{
			Service: Service,
			Status:  resp.Status,
			Body:    strings.TrimSpace(string(resp.Body)),
		}
	}

	var flights []domain.OpenSkyFlight
	if err := json.Unmarshal(resp.Body, &flights); err != nil {
		return domain.OpenSkyBatch{}, &domain.UpstreamError{Service: Service, Status: resp.Status, Body: "decode flights: " + err.Error()}
	}
	return domain.OpenSkyBatch{Airport: airport.Code, Flights: flights}, nil
}
