// Package domain models the flight delay predictor: weather-driven delay risk
// and provider-agnostic flight schedules.
//
// # Delay Risk
//
// Risk is a heuristic score computed from a single current-conditions
// observation at the departure airport. Each rule below contributes
// independently; the contributions are summed and the total is clamped to 100:
//
//	temperature < 32°F              +30  "Freezing temperature"
//	wind speed > 15 mph             +25  "High wind speed"
//	condition contains "rain"       +20  "Rain"
//	condition contains "snow"       +40  "Snow"
//	condition contains "storm"/"thunder"  +50  "Thunderstorm"
//	condition contains "fog"/"mist" +35  "Poor visibility"
//	visibility < 5000 m             +30  "Low visibility"
//
// The condition label is OpenWeather's weather[0].main ("Rain", "Snow",
// "Thunderstorm", "Mist", ...). Matching is a lower-cased substring test, so a
// single label may trigger more than one condition rule.
//
// Level thresholds: <20 low, <50 medium, otherwise high.
//
// Missing data never fails an evaluation. An absent temperature or visibility
// skips that rule; an absent wind speed counts as 0 mph.
//
// # Flight Schedules
//
// Two upstream providers are supported:
//
//	OpenSky Network   free, ICAO airport codes, flat records with
//	                  firstSeen/lastSeen epoch seconds.
//	AviationStack     keyed, IATA airport codes, nested airline/flight/
//	                  departure/arrival objects with ISO-8601 schedule times.
//
// Both are mapped into [ScheduleRecord] by [Normalize]. Every missing field
// degrades to a placeholder ("UNK", "Unknown", "unknown") rather than an error.
// A record's [Timestamp] keeps the upstream representation (epoch seconds or
// ISO-8601 string) so renderers can tell them apart.
//
// # Faults
//
// Evaluation and normalization never fail. Faults belong to the fetch boundary
// around them and fall into four kinds: input validation, configuration
// (missing credential), upstream (non-success status) and transport.
// See [FaultKindOf].
package domain
