package predictor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/couchcryptid/flight-delay-service/internal/credentials"
	"github.com/couchcryptid/flight-delay-service/internal/domain"
	"github.com/couchcryptid/flight-delay-service/internal/observability"
)

// WeatherSource returns current conditions at an airport.
type WeatherSource interface {
	Observe(ctx context.Context, airport domain.Airport) (domain.WeatherObservation, error)
}

// ScheduleSource returns one provider's raw flights at an airport.
type ScheduleSource interface {
	Schedules(ctx context.Context, airport domain.Airport, provider domain.Provider, st domain.ScheduleType) (domain.ScheduleBatch, error)
}

// KeyValidator checks API keys against the upstream that issued them.
type KeyValidator interface {
	ValidateWeatherKey(ctx context.Context, key string) error
	ValidateFlightKey(ctx context.Context, key string) error
}

// HistoryReader lists previously recorded delay reports.
type HistoryReader interface {
	Recent(ctx context.Context, airport string, limit int) ([]domain.DelayReport, error)
}

// ErrHistoryDisabled is returned by History when no history store is configured.
var ErrHistoryDisabled = errors.New("delay report history is not enabled")

// DefaultHistoryLimit and MaxHistoryLimit bound History results.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 200
)

// ScheduleResult is a normalized schedule listing for one airport.
type ScheduleResult struct {
	Airport  domain.Airport          `json:"airport"`
	Provider domain.Provider         `json:"provider"`
	Type     domain.ScheduleType     `json:"type"`
	Records  []domain.ScheduleRecord `json:"records"`
}

// KeyCheck is the outcome of validating a key.
type KeyCheck struct {
	Slot    credentials.Slot `json:"slot"`
	Valid   bool             `json:"valid"`
	Message string           `json:"message"`
}

// Service runs the delay-check, schedule and key-validation actions. Each
// action makes at most one upstream call; recording happens afterwards and
// never fails the action.
type Service struct {
	weather   WeatherSource
	schedules ScheduleSource
	validator KeyValidator
	recorder  Recorder
	history   HistoryReader
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// Option configures optional Service dependencies.
type Option func(*Service)

// WithRecorder records every delay report to r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithHistory enables History through h.
func WithHistory(h HistoryReader) Option {
	return func(s *Service) { s.history = h }
}

// NewService wires the action dependencies.
func NewService(weather WeatherSource, schedules ScheduleSource, validator KeyValidator, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Service {
	s := &Service{
		weather:   weather,
		schedules: schedules,
		validator: validator,
		logger:    logger,
		metrics:   metrics,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckDelay fetches weather at the airport and evaluates its delay risk.
func (s *Service) CheckDelay(ctx context.Context, code string) (domain.DelayReport, error) {
	airport, err := domain.LookupAirport(code)
	if err != nil {
		return domain.DelayReport{}, err
	}

	obs, err := s.weather.Observe(ctx, airport)
	if err != nil {
		return domain.DelayReport{}, fmt.Errorf("could not retrieve weather data: %w", err)
	}

	report := domain.NewDelayReport(airport, obs)
	if s.metrics != nil {
		s.metrics.Assessments.WithLabelValues(string(report.Assessment.Level)).Inc()
	}
	s.logger.Info("delay checked",
		"airport", airport.Code,
		"score", report.Assessment.Score,
		"level", report.Assessment.Level,
	)

	if s.recorder != nil {
		s.recorder.Record(ctx, report)
	}
	return report, nil
}

// Schedules fetches and normalizes arrivals or departures at the airport.
func (s *Service) Schedules(ctx context.Context, code, provider, scheduleType string) (ScheduleResult, error) {
	airport, err := domain.LookupAirport(code)
	if err != nil {
		return ScheduleResult{}, err
	}
	p, err := domain.ParseProvider(provider)
	if err != nil {
		return ScheduleResult{}, err
	}
	st := domain.ParseScheduleType(scheduleType)

	batch, err := s.schedules.Schedules(ctx, airport, p, st)
	if err != nil {
		return ScheduleResult{}, fmt.Errorf("could not load %s schedules: %w", p, err)
	}

	records := domain.Normalize(batch, st)
	s.logger.Debug("schedules loaded", "airport", airport.Code, "provider", p, "type", st, "count", len(records))
	return ScheduleResult{Airport: airport, Provider: p, Type: st, Records: records}, nil
}

// ValidateKey checks key for slot. For the flight slot, provider selects
// which service is asked; OpenSky needs no key and always passes.
func (s *Service) ValidateKey(ctx context.Context, slot credentials.Slot, provider, key string) (KeyCheck, error) {
	check := KeyCheck{Slot: slot}

	if slot == credentials.SlotFlight {
		p, err := domain.ParseProvider(provider)
		if err != nil {
			return check, err
		}
		if !p.RequiresKey() {
			check.Valid = true
			check.Message = "OpenSky does not require a key"
			return check, nil
		}
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return check, fmt.Errorf("%w: enter a key to validate", domain.ErrInvalidInput)
	}

	var err error
	switch slot {
	case credentials.SlotWeather:
		err = s.validator.ValidateWeatherKey(ctx, key)
	case credentials.SlotFlight:
		err = s.validator.ValidateFlightKey(ctx, key)
	default:
		return check, fmt.Errorf("%w: unknown key slot %q", domain.ErrInvalidInput, slot)
	}

	switch domain.FaultKindOf(err) {
	case domain.FaultNone:
		check.Valid = true
		check.Message = "Key appears valid"
	case domain.FaultUpstream:
		// The upstream rejected the key; that is an answer, not a failure.
		check.Message = "Invalid key: " + upstreamMessage(err)
	default:
		return check, err
	}
	return check, nil
}

// History lists recent delay reports, newest first. An empty code lists all airports.
func (s *Service) History(ctx context.Context, code string, limit int) ([]domain.DelayReport, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	if code != "" {
		airport, err := domain.LookupAirport(code)
		if err != nil {
			return nil, err
		}
		code = airport.Code
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	limit = min(limit, MaxHistoryLimit)
	return s.history.Recent(ctx, code, limit)
}

func upstreamMessage(err error) string {
	var ue *domain.UpstreamError
	if errors.As(err, &ue) && ue.Body != "" {
		return ue.Body
	}
	return err.Error()
}
