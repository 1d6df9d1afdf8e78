package domain

import (
	"fmt"
	"strings"
)

// DisplayLimit is the number of schedule rows renderers show.
const DisplayLimit = 12

// Placeholders substituted for missing upstream fields.
const (
	UnknownCode    = "UNK"
	UnknownAirline = "Unknown"
	UnknownStatus  = "unknown"
)

// ScheduleType selects arrivals or departures at the queried airport.
type ScheduleType string

const (
	Arrival   ScheduleType = "arrival"
	Departure ScheduleType = "departure"
)

// ParseScheduleType maps user input to a schedule type; anything other than
// "departure" means arrivals.
func ParseScheduleType(s string) ScheduleType {
	if strings.EqualFold(strings.TrimSpace(s), string(Departure)) {
		return Departure
	}
	return Arrival
}

// Provider names a flight-schedule source.
type Provider string

const (
	ProviderOpenSky       Provider = "opensky"
	ProviderAviationStack Provider = "aviationstack"
)

// ParseProvider resolves a provider name. Empty input selects OpenSky.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return ProviderOpenSky, nil
	case ProviderOpenSky, ProviderAviationStack:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown provider %q", ErrInvalidInput, s)
	}
}

// RequiresKey reports whether the provider needs an API key.
func (p Provider) RequiresKey() bool {
	return p == ProviderAviationStack
}

// ScheduleRecord is one flight in provider-agnostic form.
type ScheduleRecord struct {
	Callsign    string    `json:"callsign"`
	Airline     string    `json:"airline"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Status      string    `json:"status,omitempty"`
	Time        Timestamp `json:"time"`
}

// OpenSkyFlight is one element of an OpenSky /flights/{arrival,departure} response.
type OpenSkyFlight struct {
	ICAO24              string  `json:"icao24"`
	Callsign            *string `json:"callsign"`
	FirstSeen           *int64  `json:"firstSeen"`
	LastSeen            *int64  `json:"lastSeen"`
	EstDepartureAirport *string `json:"estDepartureAirport"`
	EstArrivalAirport   *string `json:"estArrivalAirport"`
}

// AviationStackFlight is one element of an AviationStack /v1/flights "data" array.
type AviationStackFlight struct {
	FlightStatus string                 `json:"flight_status"`
	Airline      *AviationStackAirline  `json:"airline"`
	Flight       *AviationStackFlightID `json:"flight"`
	Departure    *AviationStackEndpoint `json:"departure"`
	Arrival      *AviationStackEndpoint `json:"arrival"`
}

type AviationStackAirline struct {
	Name string `json:"name"`
	IATA string `json:"iata"`
}

type AviationStackFlightID struct {
	Number string `json:"number"`
	IATA   string `json:"iata"`
}

type AviationStackEndpoint struct {
	Airport   string `json:"airport"`
	IATA      string `json:"iata"`
	Scheduled string `json:"scheduled"`
}

// ScheduleBatch is the raw response of one provider. It is implemented only by
// OpenSkyBatch and AviationStackBatch.
type ScheduleBatch interface {
	Provider() Provider
	normalize(st ScheduleType) []ScheduleRecord
}

// OpenSkyBatch holds OpenSky flights for the queried airport.
type OpenSkyBatch struct {
	Airport string
	Flights []OpenSkyFlight
}

func (OpenSkyBatch) Provider() Provider { return ProviderOpenSky }

// AviationStackBatch holds AviationStack flights for the queried airport.
type AviationStackBatch struct {
	Airport string
	Flights []AviationStackFlight
}

func (AviationStackBatch) Provider() Provider { return ProviderAviationStack }

// Normalize maps a provider batch into schedule records, one per upstream
// flight in upstream order. It never fails; missing fields become placeholders.
func Normalize(batch ScheduleBatch, st ScheduleType) []ScheduleRecord {
	if batch == nil {
		return []ScheduleRecord{}
	}
	return batch.normalize(st)
}

func (b OpenSkyBatch) normalize(st ScheduleType) []ScheduleRecord {
	queried := firstNonEmpty(b.Airport, UnknownCode)
	out := make([]ScheduleRecord, 0, len(b.Flights))
	for _, f := range b.Flights {
		rec := ScheduleRecord{
			Callsign:    firstNonEmpty(strings.TrimSpace(deref(f.Callsign)), UnknownCode),
			Origin:      firstNonEmpty(deref(f.EstDepartureAirport), UnknownCode),
			Destination: firstNonEmpty(deref(f.EstArrivalAirport), UnknownCode),
		}
		first, last := epochOrZero(f.FirstSeen), epochOrZero(f.LastSeen)
		if st == Departure {
			rec.Origin = firstNonEmpty(deref(f.EstDepartureAirport), queried)
			rec.Time = firstTimestamp(first, last)
		} else {
			rec.Destination = firstNonEmpty(deref(f.EstArrivalAirport), queried)
			rec.Time = firstTimestamp(last, first)
		}
		out = append(out, rec)
	}
	return out
}

func (b AviationStackBatch) normalize(st ScheduleType) []ScheduleRecord {
	queried := firstNonEmpty(b.Airport, UnknownCode)
	out := make([]ScheduleRecord, 0, len(b.Flights))
	for _, f := range b.Flights {
		rec := ScheduleRecord{
			Status:      firstNonEmpty(f.FlightStatus, UnknownStatus),
			Airline:     UnknownAirline,
			Callsign:    UnknownCode,
			Origin:      endpointCode(f.Departure, UnknownCode),
			Destination: endpointCode(f.Arrival, UnknownCode),
		}
		if f.Airline != nil {
			rec.Airline = firstNonEmpty(f.Airline.Name, f.Airline.IATA, UnknownAirline)
		}
		if f.Flight != nil {
			rec.Callsign = firstNonEmpty(f.Flight.IATA, f.Flight.Number, UnknownCode)
		}
		if st == Departure {
			rec.Origin = endpointCode(f.Departure, queried)
			rec.Time = firstTimestamp(endpointTime(f.Departure), endpointTime(f.Arrival))
		} else {
			rec.Destination = endpointCode(f.Arrival, queried)
			rec.Time = firstTimestamp(endpointTime(f.Arrival), endpointTime(f.Departure))
		}
		out = append(out, rec)
	}
	return out
}

// endpointCode prefers the IATA code over the airport name.
func endpointCode(e *AviationStackEndpoint, fallback string) string {
	if e == nil {
		return fallback
	}
	return firstNonEmpty(e.IATA, e.Airport, fallback)
}

func endpointTime(e *AviationStackEndpoint) Timestamp {
	if e == nil {
		return Timestamp{}
	}
	return ISOTimestamp(e.Scheduled)
}

// epochOrZero treats a missing or zero epoch as absent.
func epochOrZero(v *int64) Timestamp {
	if v == nil || *v == 0 {
		return Timestamp{}
	}
	return EpochTimestamp(*v)
}

func firstTimestamp(ts ...Timestamp) Timestamp {
	for _, t := range ts {
		if !t.IsZero() {
			return t
		}
	}
	return Timestamp{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
