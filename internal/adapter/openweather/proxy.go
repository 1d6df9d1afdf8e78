package openweather

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/flight-delay-service/internal/adapter/upstream"
	"github.com/couchcryptid/flight-delay-service/internal/domain"
	"github.com/couchcryptid/flight-delay-service/internal/observability"
)

// ProxyService labels calls to the weather proxy endpoint.
const ProxyService = "weather-proxy"

// ProxyClient fetches current conditions through a deployed /api/weather
// endpoint, which holds the OpenWeather key server-side.
type ProxyClient struct {
	baseURL string
	doer    *upstream.Doer
}

// NewProxyClient creates a client for the proxy at baseURL.
func NewProxyClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *ProxyClient {
	return &ProxyClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    upstream.NewDoer(ProxyService, timeout, logger, metrics),
	}
}

// Observe fetches conditions at airport via the proxy.
func (p *ProxyClient) Observe(ctx context.Context, airport domain.Airport) (domain.WeatherObservation, error) {
	params := url.Values{
		"lat": {formatCoord(airport.Lat)},
		"lon": {formatCoord(airport.Lon)},
	}
	u := p.baseURL + "/api/weather?" + params.Encode()
	resp, err := p.doer.Get(ctx, u, u)
	if err != nil {
		return domain.WeatherObservation{}, err
	}
	if !resp.OK() {
		return domain.WeatherObservation{}, &domain.UpstreamError{
			Service: ProxyService,
			Status:  resp.Status,
			Body:    proxyErrorMessage(resp.Body),
		}
	}
	return Decode(resp)
}

func proxyErrorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return errorMessage(body)
}
