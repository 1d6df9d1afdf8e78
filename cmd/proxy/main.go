// Command proxy serves the weather and flights proxy endpoints and the delay
// API, holding the upstream API keys server-side.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/flight-delay-service/internal/adapter/aviationstack"
	httpadapter "github.com/couchcryptid/flight-delay-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/flight-delay-service/internal/adapter/kafka"
	"github.com/couchcryptid/flight-delay-service/internal/adapter/opensky"
	"github.com/couchcryptid/flight-delay-service/internal/adapter/openweather"
	"github.com/couchcryptid/flight-delay-service/internal/adapter/sqlite"
	"github.com/couchcryptid/flight-delay-service/internal/config"
	"github.com/couchcryptid/flight-delay-service/internal/credentials"
	"github.com/couchcryptid/flight-delay-service/internal/observability"
	"github.com/couchcryptid/flight-delay-service/internal/predictor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	weatherClient := openweather.NewClient(cfg.OpenWeatherBaseURL, cfg.UpstreamTimeout, logger, metrics)
	openskyClient := opensky.NewClient(cfg.OpenSkyBaseURL, cfg.UpstreamTimeout, logger, metrics)
	aviationClient := aviationstack.NewClient(cfg.AviationStackBaseURL, cfg.UpstreamTimeout, logger, metrics)

	keys := credentials.StaticProvider{
		credentials.SlotWeather: cfg.OpenWeatherKey,
		credentials.SlotFlight:  cfg.AviationStackKey,
	}
	if cfg.OpenWeatherKey == "" {
		logger.Warn("OPENWEATHER_KEY not set; /api/weather will answer 500")
	}

	var (
		weather   predictor.WeatherSource  = predictor.DirectWeather{Client: weatherClient, Keys: keys}
		schedules predictor.ScheduleSource = predictor.UpstreamSchedules{OpenSky: openskyClient, AviationStack: aviationClient, Keys: keys}
		validator predictor.KeyValidator   = predictor.UpstreamValidator{Weather: weatherClient, Flights: aviationClient}
		ready     httpadapter.ReadinessChecker
	)
	if cfg.DemoMode {
		weather, schedules, validator = predictor.DemoWeather{}, predictor.DemoSchedules{}, predictor.DemoValidator{}
		metrics.DemoMode.Set(1)
		logger.Info("demo mode enabled; delay API serves fixture data")
	}

	recorder := predictor.NewFanoutRecorder(logger, metrics)
	opts := []predictor.Option{}

	var history *sqlite.HistoryStore
	if cfg.HistoryDBPath != "" {
		history, err = sqlite.Open(ctx, cfg.HistoryDBPath, logger)
		if err != nil {
			logger.Error("failed to open history store", "error", err)
			os.Exit(1)
		}
		recorder.Add("sqlite", history)
		opts = append(opts, predictor.WithHistory(history))
		ready = history
		logger.Info("delay report history enabled", "path", cfg.HistoryDBPath)
	}

	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled() {
		writer = kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		recorder.Add("kafka", writer)
		logger.Info("delay report publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	if recorder.Len() > 0 {
		opts = append(opts, predictor.WithRecorder(recorder))
	}

	svc := predictor.NewService(weather, schedules, validator, logger, metrics, opts...)
	proxy := httpadapter.NewProxyHandler(weatherClient, openskyClient, aviationClient, keys, logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Proxy:       proxy,
		Service:     svc,
		Ready:       ready,
		CORSOrigins: cfg.CORSOrigins,
	}, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if history != nil {
		if err := history.Close(); err != nil {
			logger.Error("history store close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
