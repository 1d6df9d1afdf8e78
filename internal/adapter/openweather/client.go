package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/flight-delay-service/internal/adapter/upstream"
	"github.com/couchcryptid/flight-delay-service/internal/domain"
	"github.com/couchcryptid/flight-delay-service/internal/observability"
)

// Service labels OpenWeather calls in logs, metrics and errors.
const Service = "openweather"

// DefaultBaseURL is the public OpenWeather API host.
const DefaultBaseURL = "https://api.openweathermap.org"

// Client fetches current conditions from the OpenWeather API. The API key is
// supplied per call so the same client serves server and caller keys.
type Client struct {
	baseURL string
	doer    *upstream.Doer
}

// NewClient creates an OpenWeather client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    upstream.NewDoer(Service, timeout, logger, metrics),
	}
}

// Current fetches imperial-unit current conditions for lat/lon and returns the
// upstream reply as-is. lat and lon are passed through unparsed.
func (c *Client) Current(ctx context.Context, key, lat, lon string) (upstream.Response, error) {
	params := url.Values{
		"lat":   {lat},
		"lon":   {lon},
		"appid": {key},
		"units": {"imperial"},
	}
	u := c.baseURL + "/data/2.5/weather"
	return c.doer.Get(ctx, u+"?"+params.Encode(), u)
}

// Observe fetches and decodes current conditions at an airport.
func (c *Client) Observe(ctx context.Context, key string, airport domain.Airport) (domain.WeatherObservation, error) {
	if key == "" {
		return domain.WeatherObservation{}, fmt.Errorf("%w: no OpenWeather API key provided", domain.ErrMissingCredential)
	}

	resp, err := c.Current(ctx, key, formatCoord(airport.Lat), formatCoord(airport.Lon))
	if err != nil {
		return domain.WeatherObservation{}, err
	}
	return Decode(resp)
}

// ValidateKey checks key with a current-conditions call at the validation airport.
func (c *Client) ValidateKey(ctx context.Context, key string) error {
	_, err := c.Observe(ctx, key, domain.ValidationAirport)
	return err
}

// Decode turns an OpenWeather-shaped reply into an observation. Non-2xx
// replies become *domain.UpstreamError carrying the upstream message.
func Decode(resp upstream.Response) (domain.WeatherObservation, error) {
	if !resp.OK() {
		return domain.WeatherObservation{}, &domain.UpstreamError{
			Service: Service,
			Status:  resp.Status,
			Body:    errorMessage(resp.Body),
		}
	}
	obs, err := domain.ObservationFromJSON(resp.Body)
	if err != nil {
		return domain.WeatherObservation{}, &domain.UpstreamError{Service: Service, Status: resp.Status, Body: err.Error()}
	}
	return obs, nil
}

// errorMessage extracts OpenWeather's {"message": "..."} or falls back to the raw body.
func errorMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return e.Message
	}
	return strings.TrimSpace(string(body))
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
