package predictor

import (
	"context"
	"time"

	"github.com/couchcryptid/flight-delay-service/internal/domain"
)

// DemoWeather serves fixed mild conditions without any upstream call.
type DemoWeather struct{}

// Observe implements WeatherSource.
func (DemoWeather) Observe(context.Context, domain.Airport) (domain.WeatherObservation, error) {
	temp, humidity, wind, vis := 55.0, 60.0, 6.0, 10000.0
	return domain.WeatherObservation{
		TemperatureF: &temp,
		Humidity:     &humidity,
		WindSpeedMPH: &wind,
		VisibilityM:  &vis,
		Condition:    "Clear",
		Description:  "clear sky",
	}, nil
}

// DemoSchedules serves two fixture flights without any upstream call.
type DemoSchedules struct{}

// Schedules implements ScheduleSource. The fixture is returned for every
// airport, provider and direction.
func (DemoSchedules) Schedules(_ context.Context, airport domain.Airport, _ domain.Provider, _ domain.ScheduleType) (domain.ScheduleBatch, error) {
	now := domain.Now().UTC()
	later := now.Add(time.Hour)
	return domain.AviationStackBatch{
		Airport: airport.Code,
		Flights: []domain.AviationStackFlight{
			demoFlight("Delta", "DL123", "BOS", "JFK", now),
			demoFlight("American", "AA456", "BOS", "LAX", later),
		},
	}, nil
}

func demoFlight(airline, flight, from, to string, at time.Time) domain.AviationStackFlight {
	ts := at.Format(time.RFC3339)
	return domain.AviationStackFlight{
		FlightStatus: "scheduled",
		Airline:      &domain.AviationStackAirline{Name: airline},
		Flight:       &domain.AviationStackFlightID{IATA: flight},
		Departure:    &domain.AviationStackEndpoint{IATA: from, Scheduled: ts},
		Arrival:      &domain.AviationStackEndpoint{IATA: to, Scheduled: ts},
	}
}

// DemoValidator accepts every key.
type DemoValidator struct{}

func (DemoValidator) ValidateWeatherKey(context.Context, string) error { return nil }
func (DemoValidator) ValidateFlightKey(context.Context, string) error  { return nil }
