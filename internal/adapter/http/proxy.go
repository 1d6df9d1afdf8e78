package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/couchcryptid/flight-delay-service/internal/adapter/aviationstack"
	"github.com/couchcryptid/flight-delay-service/internal/adapter/opensky"
	"github.com/couchcryptid/flight-delay-service/internal/adapter/openweather"
	"github.com/couchcryptid/flight-delay-service/internal/credentials"
	"github.com/couchcryptid/flight-delay-service/internal/domain"
)

const upstreamFetchFailed = "Upstream fetch failed"

// ProxyHandler forwards /api/weather and /api/flights to the upstream APIs
// using the server's own keys, so callers never hold them.
type ProxyHandler struct {
	weather       *openweather.Client
	opensky       *opensky.Client
	aviationstack *aviationstack.Client
	keys          credentials.Provider
	logger        *slog.Logger
}

// NewProxyHandler creates the proxy endpoints.
func NewProxyHandler(weather *openweather.Client, os *opensky.Client, as *aviationstack.Client, keys credentials.Provider, logger *slog.Logger) *ProxyHandler {
	return &ProxyHandler{weather: weather, opensky: os, aviationstack: as, keys: keys, logger: logger}
}

// Weather handles GET /api/weather?lat=&lon=. The upstream status and body are
// returned verbatim.
func (p *ProxyHandler) Weather(w http.ResponseWriter, r *http.Request) {
	key, err := p.keys.Credential(r.Context(), credentials.SlotWeather)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Server misconfigured: missing OPENWEATHER_KEY"})
		return
	}

	q := r.URL.Query()
	lat, lon := q.Get("lat"), q.Get("lon")
	if lat == "" || lon == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Missing lat/lon"})
		return
	}

	resp, err := p.weather.Current(r.Context(), key, lat, lon)
	if err != nil {
		p.fetchFailed(w, err)
		return
	}
	if !json.Valid(resp.Body) {
		p.fetchFailed(w, fmt.Errorf("%s returned a non-JSON body (status %d)", openweather.Service, resp.Status))
		return
	}
	writeRaw(w, resp.Status, resp.Body)
}

// Flights handles GET /api/flights?airport=&provider=&type=. Any provider
// other than aviationstack is served by OpenSky.
func (p *ProxyHandler) Flights(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	airport := q.Get("airport")
	if airport == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Missing airport"})
		return
	}
	st := domain.ParseScheduleType(q.Get("type"))

	if strings.EqualFold(q.Get("provider"), string(domain.ProviderAviationStack)) {
		p.aviationStackFlights(w, r, airport, st)
		return
	}
	p.openSkyFlights(w, r, airport, st)
}

func (p *ProxyHandler) aviationStackFlights(w http.ResponseWriter, r *http.Request, airport string, st domain.ScheduleType) {
	key, err := p.keys.Credential(r.Context(), credentials.SlotFlight)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Server misconfigured: missing AVIATIONSTACK_KEY"})
		return
	}

	resp, err := p.aviationstack.Flights(r.Context(), key, airport, st)
	if err != nil {
		p.fetchFailed(w, err)
		return
	}
	if !json.Valid(resp.Body) {
		p.fetchFailed(w, fmt.Errorf("%s returned a non-JSON body (status %d)", aviationstack.Service, resp.Status))
		return
	}
	writeRaw(w, resp.Status, resp.Body)
}

func (p *ProxyHandler) openSkyFlights(w http.ResponseWriter, r *http.Request, airport string, st domain.ScheduleType) {
	resp, err := p.opensky.Flights(r.Context(), airport, st)
	if err != nil {
		p.fetchFailed(w, err)
		return
	}
	if !resp.OK() {
		writeJSON(w, resp.Status, errorBody{Error: fmt.Sprintf("OpenSky error: %d %s", resp.Status, resp.Body)})
		return
	}
	if !json.Valid(resp.Body) {
		p.fetchFailed(w, fmt.Errorf("%s returned a non-JSON body", opensky.Service))
		return
	}
	writeJSON(w, http.StatusOK, map[string]json.RawMessage{"data": resp.Body})
}

func (p *ProxyHandler) fetchFailed(w http.ResponseWriter, err error) {
	p.logger.Warn("proxy upstream fetch failed", "error", err)
	writeJSON(w, http.StatusBadGateway, errorBody{Error: upstreamFetchFailed, Detail: err.Error()})
}
