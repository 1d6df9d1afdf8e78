package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestNewDelayReport(t *testing.T) {
	fixed := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { SetClock(nil) })

	airport := airports["ORD"]
	r := NewDelayReport(airport, WeatherObservation{Condition: "Rain"})

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "ORD", r.Airport.Code)
	assert.Equal(t, fixed, r.CheckedAt)
	assert.Equal(t, 20, r.Assessment.Score)
	assert.Equal(t, LevelMedium, r.Assessment.Level)

	other := NewDelayReport(airport, WeatherObservation{})
	assert.NotEqual(t, r.ID, other.ID)
}
