package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Airport is a supported departure airport.
type Airport struct {
	Code string  `json:"code"` // IATA
	ICAO string  `json:"icao"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

var airports = map[string]Airport{
	"JFK": {Code: "JFK", ICAO: "KJFK", Name: "JFK - New York", Lat: 40.6413, Lon: -73.7781},
	"LAX": {Code: "LAX", ICAO: "KLAX", Name: "LAX - Los Angeles", Lat: 33.9425, Lon: -118.4081},
	"ORD": {Code: "ORD", ICAO: "KORD", Name: "ORD - Chicago", Lat: 41.9742, Lon: -87.9073},
	"ATL": {Code: "ATL", ICAO: "KATL", Name: "ATL - Atlanta", Lat: 33.6407, Lon: -84.4277},
	"DFW": {Code: "DFW", ICAO: "KDFW", Name: "DFW - Dallas", Lat: 32.8998, Lon: -97.0403},
	"DEN": {Code: "DEN", ICAO: "KDEN", Name: "DEN - Denver", Lat: 39.8561, Lon: -104.6737},
	"SFO": {Code: "SFO", ICAO: "KSFO", Name: "SFO - San Francisco", Lat: 37.6213, Lon: -122.3790},
	"SEA": {Code: "SEA", ICAO: "KSEA", Name: "SEA - Seattle", Lat: 47.4502, Lon: -122.3088},
	"MIA": {Code: "MIA", ICAO: "KMIA", Name: "MIA - Miami", Lat: 25.7959, Lon: -80.2870},
	"BOS": {Code: "BOS", ICAO: "KBOS", Name: "BOS - Boston", Lat: 42.3656, Lon: -71.0096},
}

// ValidationAirport is the fixed location used to test weather keys.
var ValidationAirport = airports["JFK"]

// LookupAirport resolves an IATA code (case-insensitive). An empty or unknown
// code is an input-validation fault.
func LookupAirport(code string) (Airport, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Airport{}, fmt.Errorf("%w: airport is required", ErrInvalidInput)
	}
	a, ok := airports[code]
	if !ok {
		return Airport{}, fmt.Errorf("%w: unknown airport %q", ErrInvalidInput, code)
	}
	return a, nil
}

// Airports returns the supported airports ordered by code.
func Airports() []Airport {
	out := make([]Airport, 0, len(airports))
	for _, a := range airports {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// OpenSkyCode returns the ICAO code for a known IATA code, or the input unchanged.
func OpenSkyCode(code string) string {
	if a, ok := airports[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return a.ICAO
	}
	return code
}
