package aviationstack

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

// Service labels AviationStack calls in logs, metrics and errors.
const Service = "aviationstack"

// DefaultBaseURL is the public AviationStack API host.
const DefaultBaseURL = "https://api.aviationstack.com"

// Client queries the AviationStack flights endpoint. Every call needs an
// access key, supplied per call.
type Client struct {
	baseURL string
	doer    *upstream.Doer
}

// NewClient creates an AviationStack client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    upstream.NewDoer(Service, timeout, logger, metrics),
	}
}

// Flights requests up to domain.DisplayLimit flights arriving at (or departing
// from) airport and returns the upstream reply as-is.
func (c *Client) Flights(ctx context.Context, key, airport string, st domain.ScheduleType) (upstream.Response, error) {
	param := "arr_iata"
	if st == domain.Departure {
		param = "dep_iata"
	}
	return c.get(ctx, key, url.Values{
		param:   {airport},
		"limit": {strconv.Itoa(domain.DisplayLimit)},
	})
}

// Schedules fetches and decodes flights at airport into a normalizer batch.
func (c *Client) Schedules(ctx context.Context, key string, airport domain.Airport, st domain.ScheduleType) (domain.AviationStackBatch, error) {
	if key == "" {
		return domain.AviationStackBatch{}, fmt.Errorf("%w: AviationStack requires an API key", domain.ErrMissingCredential)
	}
	resp, err := c.Flights(ctx, key, airport.Code, st)
	if err != nil {
		return domain.AviationStackBatch{}, err
	}
	payload, err := decode(resp)
	if err != nil {
		return domain.AviationStackBatch{}, err
	}
	return domain.AviationStackBatch{Airport: airport.Code, Flights: payload.Data}, nil
}

// ValidateKey checks key with a single-row flights request.
func (c *Client) ValidateKey(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("%w: AviationStack requires an API key", domain.ErrMissingCredential)
	}
	resp, err := c.get(ctx, key, url.Values{"limit": {"1"}})
	if err != nil {
		return err
	}
	_, err = decode(resp)
	return err
}

func (c *Client) get(ctx context.Context, key string, params url.Values) (upstream.Response, error) {
	u := c.baseURL + "/v1/flights"
	logURL := u + "?" + params.Encode()
	params.Set("access_key", key)
	return c.doer.Get(ctx, u+"?"+params.Encode(), logURL)
}

// flightsResponse is the AviationStack envelope. Failed calls may still
// answer 2xx with an error object instead of data.
type flightsResponse struct {
	Data  []domain.AviationStackFlight `json:"data"`
	Error *apiError                    `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decode(resp upstream.Response) (flightsResponse, error) {
	var payload flightsResponse
	jsonErr := json.Unmarshal(resp.Body, &payload)

	if !resp.OK() || payload.Error != nil {
		body := strings.TrimSpace(string(resp.Body))
		if payload.Error != nil && payload.Error.Message != "" {
			body = payload.Error.Message
		}
		return flightsResponse{}, &domain.UpstreamError{Service: Service, Status: resp.Status, Body: body}
	}
	if jsonErr != nil {
		return flightsResponse{}, &domain.UpstreamError{Service: Service, Status: resp.Status, Body: "decode flights: " + jsonErr.Error()}
	}
	return payload, nil
}
