package predictor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/flight-delay-service/internal/adapter/aviationstack"
	"github.com/couchcryptid/flight-delay-service/internal/adapter/opensky"
	"github.com/couchcryptid/flight-delay-service/internal/adapter/openweather"
	"github.com/couchcryptid/flight-delay-service/internal/credentials"
	"github.com/couchcryptid/flight-delay-service/internal/domain"
)

// DirectWeather calls OpenWeather with the weather-slot key.
type DirectWeather struct {
	Client *openweather.Client
	Keys   credentials.Provider
}

// Observe implements WeatherSource.
func (w DirectWeather) Observe(ctx context.Context, airport domain.Airport) (domain.WeatherObservation, error) {
	key, err := w.Keys.Credential(ctx, credentials.SlotWeather)
	if err != nil {
		return domain.WeatherObservation{}, err
	}
	return w.Client.Observe(ctx, key, airport)
}

// ProxyFirstWeather asks the weather proxy first and falls back to Direct
// when the proxy is unset, unreachable or answers with an error.
type ProxyFirstWeather struct {
	Proxy  *openweather.ProxyClient
	Direct WeatherSource
	Logger *slog.Logger
}

// Observe implements WeatherSource.
func (w ProxyFirstWeather) Observe(ctx context.Context, airport domain.Airport) (domain.WeatherObservation, error) {
	if w.Proxy != nil {
		obs, err := w.Proxy.Observe(ctx, airport)
		if err == nil {
			return obs, nil
		}
		if ctx.Err() != nil {
			return domain.WeatherObservation{}, err
		}
		w.Logger.Debug("weather proxy unavailable, calling OpenWeather directly", "error", err)
	}

	obs, err := w.Direct.Observe(ctx, airport)
	if errors.Is(err, domain.ErrMissingCredential) {
		return domain.WeatherObservation{}, fmt.Errorf("%w: no OpenWeather API key provided; supply a key or use a proxy", domain.ErrMissingCredential)
	}
	return obs, err
}

// UpstreamSchedules fetches flights from OpenSky or AviationStack.
type UpstreamSchedules struct {
	OpenSky       *opensky.Client
	AviationStack *aviationstack.Client
	Keys          credentials.Provider
}

// Schedules implements ScheduleSource. The AviationStack key is resolved
// before any request is made.
func (s UpstreamSchedules) Schedules(ctx context.Context, airport domain.Airport, provider domain.Provider, st domain.ScheduleType) (domain.ScheduleBatch, error) {
	switch provider {
	case domain.ProviderOpenSky:
		return s.OpenSky.Schedules(ctx, airport, st)
	case domain.ProviderAviationStack:
		key, err := s.Keys.Credential(ctx, credentials.SlotFlight)
		if err != nil {
			return nil, fmt.Errorf("%w: AviationStack requires an API key", domain.ErrMissingCredential)
		}
		return s.AviationStack.Schedules(ctx, key, airport, st)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, provider)
	}
}

// UpstreamValidator validates keys against the issuing services.
type UpstreamValidator struct {
	Weather *openweather.Client
	Flights *aviationstack.Client
}

func (v UpstreamValidator) ValidateWeatherKey(ctx context.Context, key string) error {
	return v.Weather.ValidateKey(ctx, key)
}

func (v UpstreamValidator) ValidateFlightKey(ctx context.Context, key string) error {
	return v.Flights.ValidateKey(ctx, key)
}
