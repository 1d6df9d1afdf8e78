package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// timestampCmp compares Timestamps through their JSON form since the fields are unexported.
var timestampCmp = cmp.Comparer(func(a, b Timestamp) bool {
	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	return string(ja) == string(jb)
})

func strPtr(s string) *string { return &s }
func i64Ptr(v int64) *int64   { return &v }

func TestNormalize_OpenSky(t *testing.T) {
	batch := OpenSkyBatch{
		Airport: "KJFK",
		Flights: []OpenSkyFlight{
			{
				ICAO24:              "a1b2c3",
				Callsign:            strPtr("DAL123  "),
				FirstSeen:           i64Ptr(1700000000),
				LastSeen:            i64Ptr(1700003600),
				EstDepartureAirport: strPtr("KBOS"),
				EstArrivalAirport:   strPtr("KJFK"),
			},
			{ICAO24: "ffffff"},
		},
	}

	t.Run("arrivals", func(t *testing.T) {
		got := Normalize(batch, Arrival)
		want := []ScheduleRecord{
			{Callsign: "DAL123", Origin: "KBOS", Destination: "KJFK", Time: EpochTimestamp(1700003600)},
			{Callsign: "UNK", Origin: "UNK", Destination: "KJFK"},
		}
		if diff := cmp.Diff(want, got, timestampCmp); diff != "" {
			t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("departures", func(t *testing.T) {
		got := Normalize(batch, Departure)
		want := []ScheduleRecord{
			{Callsign: "DAL123", Origin: "KBOS", Destination: "KJFK", Time: EpochTimestamp(1700000000)},
			{Callsign: "UNK", Origin: "KJFK", Destination: "UNK"},
		}
		if diff := cmp.Diff(want, got, timestampCmp); diff != "" {
			t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("time falls back to the other side", func(t *testing.T) {
		b := OpenSkyBatch{Flights: []OpenSkyFlight{{FirstSeen: i64Ptr(1700000000), LastSeen: i64Ptr(0)}}}
		got := Normalize(b, Arrival)
		require.Len(t, got, 1)
		sec, ok := got[0].Time.Epoch()
		assert.True(t, ok)
		assert.Equal(t, int64(1700000000), sec)
	})
}

func TestNormalize_AviationStack(t *testing.T) {
	full := AviationStackFlight{
		FlightStatus: "active",
		Airline:      &AviationStackAirline{Name: "Delta Air Lines", IATA: "DL"},
		Flight:       &AviationStackFlightID{Number: "123", IATA: "DL123"},
		Departure:    &AviationStackEndpoint{Airport: "Logan International", IATA: "BOS", Scheduled: "2023-11-14T20:00:00+00:00"},
		Arrival:      &AviationStackEndpoint{Airport: "John F Kennedy International", IATA: "JFK", Scheduled: "2023-11-14T21:15:00+00:00"},
	}
	namesOnly := AviationStackFlight{
		Airline:   &AviationStackAirline{IATA: "AA"},
		Flight:    &AviationStackFlightID{Number: "456"},
		Departure: &AviationStackEndpoint{Airport: "Logan International"},
		Arrival:   &AviationStackEndpoint{},
	}
	empty := AviationStackFlight{}

	batch := AviationStackBatch{Airport: "JFK", Flights: []AviationStackFlight{full, namesOnly, empty}}

	got := Normalize(batch, Arrival)
	want := []ScheduleRecord{
		{Callsign: "DL123", Airline: "Delta Air Lines", Origin: "BOS", Destination: "JFK", Status: "active", Time: ISOTimestamp("2023-11-14T21:15:00+00:00")},
		{Callsign: "456", Airline: "AA", Origin: "Logan International", Destination: "JFK", Status: "unknown"},
		{Callsign: "UNK", Airline: "Unknown", Origin: "UNK", Destination: "JFK", Status: "unknown"},
	}
	if diff := cmp.Diff(want, got, timestampCmp); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}

	dep := Normalize(AviationStackBatch{Airport: "BOS", Flights: []AviationStackFlight{full, empty}}, Departure)
	require.Len(t, dep, 2)
	iso, ok := dep[0].Time.ISO()
	assert.True(t, ok)
	assert.Equal(t, "2023-11-14T20:00:00+00:00", iso)
	assert.Equal(t, "BOS", dep[1].Origin)
	assert.Equal(t, "UNK", dep[1].Destination)
}

func TestNormalize_IATAPreferredOverName(t *testing.T) {
	f := AviationStackFlight{Departure: &AviationStackEndpoint{IATA: "SFO", Airport: "San Francisco International"}}
	got := Normalize(AviationStackBatch{Airport: "JFK", Flights: []AviationStackFlight{f}}, Arrival)
	require.Len(t, got, 1)
	assert.Equal(t, "SFO", got[0].Origin)
}

func TestNormalize_LengthPreserved(t *testing.T) {
	for _, n := range []int{0, 1, 12, 13, 40} {
		os := OpenSkyBatch{Flights: make([]OpenSkyFlight, n)}
		as := AviationStackBatch{Flights: make([]AviationStackFlight, n)}
		assert.Len(t, Normalize(os, Arrival), n)
		assert.Len(t, Normalize(as, Departure), n)
	}
	assert.NotNil(t, Normalize(OpenSkyBatch{}, Arrival))
	assert.Empty(t, Normalize(nil, Arrival))
}

func TestNormalize_MissingEverythingUsesPlaceholders(t *testing.T) {
	got := Normalize(OpenSkyBatch{Flights: []OpenSkyFlight{{}}}, Arrival)
	require.Len(t, got, 1)
	assert.Equal(t, UnknownCode, got[0].Callsign)
	assert.Equal(t, UnknownCode, got[0].Origin)
	assert.Equal(t, UnknownCode, got[0].Destination)
	assert.True(t, got[0].Time.IsZero())
}

func TestNormalize_DecodedPayloads(t *testing.T) {
	var os []OpenSkyFlight
	require.NoError(t, json.Unmarshal([]byte(`[{"icao24":"abc","callsign":null,"firstSeen":1700000000,"lastSeen":1700000500,"estDepartureAirport":null,"estArrivalAirport":"KSEA"}]`), &os))
	got := Normalize(OpenSkyBatch{Airport: "KSEA", Flights: os}, Arrival)
	require.Len(t, got, 1)
	assert.Equal(t, "UNK", got[0].Callsign)
	assert.Equal(t, "KSEA", got[0].Destination)

	var as []AviationStackFlight
	require.NoError(t, json.Unmarshal([]byte(`[{"flight_status":"scheduled","airline":null,"flight":{"iata":"UA1"},"departure":null,"arrival":{"iata":"SEA","scheduled":"2023-11-14T22:13:20+00:00"}}]`), &as))
	rec := Normalize(AviationStackBatch{Airport: "SEA", Flights: as}, Arrival)
	require.Len(t, rec, 1)
	assert.Equal(t, "UA1", rec[0].Callsign)
	assert.Equal(t, "Unknown", rec[0].Airline)
	assert.Equal(t, "UNK", rec[0].Origin)
	assert.Equal(t, "scheduled", rec[0].Status)
}

func TestParseScheduleType(t *testing.T) {
	assert.Equal(t, Departure, ParseScheduleType("departure"))
	assert.Equal(t, Departure, ParseScheduleType(" Departure "))
	assert.Equal(t, Arrival, ParseScheduleType("arrival"))
	assert.Equal(t, Arrival, ParseScheduleType(""))
	assert.Equal(t, Arrival, ParseScheduleType("sideways"))
}

func TestParseProvider(t *testing.T) {
	p, err := ParseProvider("")
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenSky, p)

	p, err = ParseProvider("AviationStack")
	require.NoError(t, err)
	assert.Equal(t, ProviderAviationStack, p)
	assert.True(t, p.RequiresKey())
	assert.False(t, ProviderOpenSky.RequiresKey())

	_, err = ParseProvider("flightaware")
	require.ErrorIs(t, err, ErrInvalidInput)
}
