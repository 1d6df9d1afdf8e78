// Command delaycheck checks weather-driven delay risk and flight schedules at
// major US airports from the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/flight-delay-service/internal/adapter/aviationstack"
	"github.com/couchcryptid/flight-delay-service/internal/adapter/opensky"
	"github.com/couchcryptid/flight-delay-service/internal/adapter/openweather"
	"github.com/couchcryptid/flight-delay-service/internal/adapter/sqlite"
	"github.com/couchcryptid/flight-delay-service/internal/credentials"
	"github.com/couchcryptid/flight-delay-service/internal/domain"
	"github.com/couchcryptid/flight-delay-service/internal/observability"
	"github.com/couchcryptid/flight-delay-service/internal/predictor"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{out: os.Stdout}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describe(err))
		os.Exit(1)
	}
}

// options are the global flags.
type options struct {
	proxyURL             string
	credentialsFile      string
	openWeatherBaseURL   string
	openSkyBaseURL       string
	aviationStackBaseURL string
	historyDB            string
	timeout              time.Duration
	demo                 bool
	verbose              bool
	weatherKey           string
	flightKey            string
}

// app holds what the subcommands share once flags are parsed.
type app struct {
	opts       options
	out        io.Writer
	logger     *slog.Logger
	keys       *credentials.Manager
	svc        *predictor.Service
	dispatcher *predictor.Dispatcher
	history    *sqlite.HistoryStore
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "delaycheck",
		Short:         "Estimate weather-driven flight delay risk at US airports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.opts.proxyURL, "proxy-url", os.Getenv("DELAYCHECK_PROXY_URL"), "weather proxy base URL, tried before OpenWeather")
	f.StringVar(&a.opts.credentialsFile, "credentials-file", os.Getenv("DELAYCHECK_CREDENTIALS_FILE"), "where remembered keys are stored")
	f.StringVar(&a.opts.openWeatherBaseURL, "openweather-url", envOr("OPENWEATHER_BASE_URL", openweather.DefaultBaseURL), "OpenWeather base URL")
	f.StringVar(&a.opts.openSkyBaseURL, "opensky-url", envOr("OPENSKY_BASE_URL", opensky.DefaultBaseURL), "OpenSky base URL")
	f.StringVar(&a.opts.aviationStackBaseURL, "aviationstack-url", envOr("AVIATIONSTACK_BASE_URL", aviationstack.DefaultBaseURL), "AviationStack base URL")
	f.StringVar(&a.opts.historyDB, "history-db", os.Getenv("HISTORY_DB_PATH"), "record delay checks to this SQLite file")
	f.DurationVar(&a.opts.timeout, "timeout", 10*time.Second, "upstream request timeout")
	f.BoolVar(&a.opts.demo, "demo", os.Getenv("DEMO_MODE") == "true", "serve fixture data instead of calling upstream APIs")
	f.BoolVarP(&a.opts.verbose, "verbose", "v", false, "log upstream requests to stderr")
	f.StringVar(&a.opts.weatherKey, "weather-key", "", "OpenWeather key for this run only")
	f.StringVar(&a.opts.flightKey, "flight-key", "", "AviationStack key for this run only")

	root.AddCommand(
		newAirportsCmd(a),
		newCheckCmd(a),
		newSchedulesCmd(a),
		newReportCmd(a),
		newHistoryCmd(a),
		newKeysCmd(a),
	)
	return root
}

func (a *app) setup(ctx context.Context) error {
	level := "warn"
	if a.opts.verbose {
		level = "debug"
	}
	a.logger = observability.NewTextLogger(os.Stderr, level)

	store, err := a.credentialStore()
	if err != nil {
		return err
	}
	a.keys = credentials.NewManager(store)
	a.keys.Use(credentials.SlotWeather, a.opts.weatherKey)
	a.keys.Use(credentials.SlotFlight, a.opts.flightKey)

	weatherClient := openweather.NewClient(a.opts.openWeatherBaseURL, a.opts.timeout, a.logger, nil)
	openskyClient := opensky.NewClient(a.opts.openSkyBaseURL, a.opts.timeout, a.logger, nil)
	aviationClient := aviationstack.NewClient(a.opts.aviationStackBaseURL, a.opts.timeout, a.logger, nil)

	weather := predictor.ProxyFirstWeather{
		Direct: predictor.DirectWeather{Client: weatherClient, Keys: a.keys},
		Logger: a.logger,
	}
	if a.opts.proxyURL != "" {
		weather.Proxy = openweather.NewProxyClient(a.opts.proxyURL, a.opts.timeout, a.logger, nil)
	}

	var (
		ws predictor.WeatherSource  = weather
		ss predictor.ScheduleSource = predictor.UpstreamSchedules{OpenSky: openskyClient, AviationStack: aviationClient, Keys: a.keys}
		kv predictor.KeyValidator   = predictor.UpstreamValidator{Weather: weatherClient, Flights: aviationClient}
	)
	if a.opts.demo {
		ws, ss, kv = predictor.DemoWeather{}, predictor.DemoSchedules{}, predictor.DemoValidator{}
	}

	var opts []predictor.Option
	if a.opts.historyDB != "" {
		a.history, err = sqlite.Open(ctx, a.opts.historyDB, a.logger)
		if err != nil {
			return err
		}
		recorder := predictor.NewFanoutRecorder(a.logger, nil)
		recorder.Add("sqlite", a.history)
		opts = append(opts, predictor.WithRecorder(recorder), predictor.WithHistory(a.history))
	}

	a.svc = predictor.NewService(ws, ss, kv, a.logger, nil, opts...)
	a.dispatcher = predictor.NewClientDispatcher(a.svc, a.keys)
	return nil
}

// credentialStore returns the key file store, or nil (session-only keys)
// when no config directory is available.
func (a *app) credentialStore() (credentials.Store, error) {
	path := a.opts.credentialsFile
	if path == "" {
		p, err := credentials.DefaultPath()
		if err != nil {
			a.logger.Debug("no config directory; keys will not be remembered", "error", err)
			return nil, nil
		}
		path = p
	}
	return credentials.NewFileStore(path), nil
}

func (a *app) close() error {
	if a.history == nil {
		return nil
	}
	err := a.history.Close()
	a.history = nil
	return err
}

func (a *app) dispatch(ctx context.Context, cmd predictor.Command) (predictor.Result, error) {
	return a.dispatcher.Dispatch(ctx, cmd)
}

// describe turns a fault into the message shown to the user.
func describe(err error) string {
	switch domain.FaultKindOf(err) {
	case domain.FaultConfiguration:
		return err.Error() + " (set one with `delaycheck keys save` or --weather-key/--flight-key)"
	case domain.FaultTransport:
		var te *domain.TransportError
		if errors.As(err, &te) {
			return fmt.Sprintf("could not reach %s: %v", te.Service, te.Err)
		}
	}
	return err.Error()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
