package domain

import (
	"time"

	"github.com/google/uuid"
)

// DelayReport is the result of a delay check at one airport.
type DelayReport struct {
	ID          string             `json:"id"`
	Airport     Airport            `json:"airport"`
	Observation WeatherObservation `json:"observation"`
	Assessment  RiskAssessment     `json:"assessment"`
	CheckedAt   time.Time          `json:"checked_at"`
}

// NewDelayReport evaluates obs and stamps the result with a fresh ID and the
// package clock.
func NewDelayReport(airport Airport, obs WeatherObservation) DelayReport {
	return DelayReport{
		ID:          uuid.NewString(),
		Airport:     airport,
		Observation: obs,
		Assessment:  Evaluate(obs),
		CheckedAt:   clock.Now().UTC(),
	}
}
