package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Level is the categorical delay risk derived from a score.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// MaxScore caps the reported risk score.
const MaxScore = 100

// WeatherObservation is the subset of a current-conditions report that drives
// delay risk. Nil pointers mean the upstream report did not carry the field.
type WeatherObservation struct {
	TemperatureF *float64 `json:"temperature_f,omitempty"`
	WindSpeedMPH *float64 `json:"wind_speed_mph,omitempty"`
	Condition    string   `json:"condition,omitempty"`
	Description  string   `json:"description,omitempty"`
	VisibilityM  *float64 `json:"visibility_m,omitempty"`
	Humidity     *float64 `json:"humidity,omitempty"`
}

// RiskAssessment is the outcome of evaluating one observation.
type RiskAssessment struct {
	Score   int      `json:"score"`
	Level   Level    `json:"level"`
	Reasons []string `json:"reasons"`
}

type riskRule struct {
	delta  int
	reason string
	match  func(obs WeatherObservation, condition string) bool
}

// riskRules are evaluated in order; the order only affects Reasons.
var riskRules = []riskRule{
	{30, "Freezing temperature", func(o WeatherObservation, _ string) bool {
		return o.TemperatureF != nil && *o.TemperatureF < 32
	}},
	{25, "High wind speed", func(o WeatherObservation, _ string) bool {
		return windSpeed(o) > 15
	}},
	{20, "Rain", func(_ WeatherObservation, c string) bool {
		return strings.Contains(c, "rain")
	}},
	{40, "Snow", func(_ WeatherObservation, c string) bool {
		return strings.Contains(c, "snow")
	}},
	{50, "Thunderstorm", func(_ WeatherObservation, c string) bool {
		return strings.Contains(c, "storm") || strings.Contains(c, "thunder")
	}},
	{35, "Poor visibility", func(_ WeatherObservation, c string) bool {
		return strings.Contains(c, "fog") || strings.Contains(c, "mist")
	}},
	{30, "Low visibility", func(o WeatherObservation, _ string) bool {
		return o.VisibilityM != nil && *o.VisibilityM < 5000
	}},
}

// Evaluate scores the delay risk of an observation. It never fails: fields the
// observation does not carry simply do not trigger their rule.
func Evaluate(obs WeatherObservation) RiskAssessment {
	condition := strings.ToLower(obs.Condition)

	total := 0
	reasons := []string{}
	for _, rule := range riskRules {
		if rule.match(obs, condition) {
			total += rule.delta
			reasons = append(reasons, rule.reason)
		}
	}

	return RiskAssessment{
		Score:   min(total, MaxScore),
		Level:   LevelForScore(total),
		Reasons: reasons,
	}
}

// LevelForScore maps a score to its level: <20 low, <50 medium, else high.
func LevelForScore(score int) Level {
	switch {
	case score < 20:
		return LevelLow
	case score < 50:
		return LevelMedium
	default:
		return LevelHigh
	}
}

// Headline returns the user-facing summary for a level.
func (l Level) Headline() string {
	switch l {
	case LevelLow:
		return "Weather conditions look good! Your flight should be on time."
	case LevelMedium:
		return "Some weather issues detected. Possible delays of 30-60 minutes."
	default:
		return "Poor weather conditions! Expect significant delays or cancellations."
	}
}

func windSpeed(o WeatherObservation) float64 {
	if o.WindSpeedMPH == nil {
		return 0
	}
	return *o.WindSpeedMPH
}

// ObservationFromJSON extracts an observation from an OpenWeather
// current-conditions body. Fields that are missing or carry the wrong JSON
// type are left unset; only a body that is not JSON is an error.
func ObservationFromJSON(data []byte) (WeatherObservation, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return WeatherObservation{}, fmt.Errorf("parse weather observation: %w", err)
	}

	obs := WeatherObservation{
		TemperatureF: lookupNumber(doc, "main", "temp"),
		WindSpeedMPH: lookupNumber(doc, "wind", "speed"),
		VisibilityM:  lookupNumber(doc, "visibility"),
		Humidity:     lookupNumber(doc, "main", "humidity"),
	}

	if conditions, ok := lookup(doc, "weather").([]any); ok && len(conditions) > 0 {
		obs.Condition, _ = lookup(conditions[0], "main").(string)
		obs.Description, _ = lookup(conditions[0], "description").(string)
	}
	return obs, nil
}

// lookup walks nested JSON objects, returning nil as soon as a key is missing
// or an intermediate value is not an object.
func lookup(v any, path ...string) any {
	for _, key := range path {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = obj[key]
	}
	return v
}

func lookupNumber(v any, path ...string) *float64 {
	n, ok := lookup(v, path...).(float64)
	if !ok {
		return nil
	}
	return &n
}
