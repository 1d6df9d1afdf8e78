package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/couchcryptid/flight-delay-service/internal/credentials"
	"github.com/couchcryptid/flight-delay-service/internal/domain"
	"github.com/couchcryptid/flight-delay-service/internal/predictor"
	"github.com/couchcryptid/flight-delay-service/internal/render"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newAirportsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "airports",
		Short: "List supported airports",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "CODE\tNAME\tLAT\tLON")
			for _, ap := range domain.Airports() {
				fmt.Fprintf(tw, "%s\t%s\t%.4f\t%.4f\n", ap.Code, ap.Name, ap.Lat, ap.Lon)
			}
			return tw.Flush()
		},
	}
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check AIRPORT",
		Short: "Check weather delay risk at an airport",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.dispatch(cmd.Context(), predictor.Command{Action: predictor.ActionCheckDelay, Airport: args[0]})
			if err != nil {
				return err
			}
			return render.Report(a.out, *res.Report)
		},
	}
}

type scheduleFlags struct {
	provider string
	kind     string
}

func (f *scheduleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.provider, "provider", "p", string(domain.ProviderOpenSky), "schedule provider: opensky or aviationstack")
	cmd.Flags().StringVarP(&f.kind, "type", "t", string(domain.Arrival), "arrival or departure")
}

func newSchedulesCmd(a *app) *cobra.Command {
	var sf scheduleFlags
	cmd := &cobra.Command{
		Use:   "schedules AIRPORT",
		Short: "Show recent arrivals or departures at an airport",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.dispatch(cmd.Context(), predictor.Command{
				Action:   predictor.ActionShowSchedules,
				Airport:  args[0],
				Provider: sf.provider,
				Type:     sf.kind,
			})
			if err != nil {
				return err
			}
			return render.Schedules(a.out, *res.Schedules, time.Local)
		},
	}
	sf.register(cmd)
	return cmd
}

// newReportCmd runs the delay check and the schedule lookup side by side.
// Each half is printed if it succeeded; the first failure is returned.
func newReportCmd(a *app) *cobra.Command {
	var sf scheduleFlags
	cmd := &cobra.Command{
		Use:   "report AIRPORT",
		Short: "Check delay risk and show schedules in one go",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var risk, sched predictor.Result

			var g errgroup.Group
			g.Go(func() error {
				var err error
				risk, err = a.dispatch(ctx, predictor.Command{Action: predictor.ActionCheckDelay, Airport: args[0]})
				return err
			})
			g.Go(func() error {
				var err error
				sched, err = a.dispatch(ctx, predictor.Command{
					Action:   predictor.ActionShowSchedules,
					Airport:  args[0],
					Provider: sf.provider,
					Type:     sf.kind,
				})
				return err
			})
			err := g.Wait()

			if risk.Report != nil {
				if rerr := render.Report(a.out, *risk.Report); rerr != nil {
					return rerr
				}
				fmt.Fprintln(a.out)
			}
			if sched.Schedules != nil {
				if rerr := render.Schedules(a.out, *sched.Schedules, time.Local); rerr != nil {
					return rerr
				}
			}
			return err
		},
	}
	sf.register(cmd)
	return cmd
}

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [AIRPORT]",
		Short: "List recorded delay checks (needs --history-db)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var code string
			if len(args) == 1 {
				code = args[0]
			}
			reports, err := a.svc.History(cmd.Context(), code, limit)
			if err != nil {
				return err
			}
			return render.History(a.out, reports, time.Local)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", predictor.DefaultHistoryLimit, "maximum checks to list")
	return cmd
}

func newKeysCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage OpenWeather and AviationStack API keys",
	}
	cmd.AddCommand(
		newKeysValidateCmd(a),
		newKeysSaveCmd(a),
		newKeysClearCmd(a),
		newKeysStatusCmd(a),
	)
	return cmd
}

func slotArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.MinimumNArgs(1)(cmd, args); err != nil {
		return err
	}
	_, err := credentials.ParseSlot(args[0])
	return err
}

func newKeysValidateCmd(a *app) *cobra.Command {
	var provider, key string
	cmd := &cobra.Command{
		Use:   "validate weather|flight",
		Short: "Check a key against the service that issued it",
		Long:  "Check a key against the service that issued it. Without --key the session or remembered key is checked.",
		Args:  cobra.MatchAll(cobra.ExactArgs(1), slotArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, _ := credentials.ParseSlot(args[0])
			res, err := a.dispatch(cmd.Context(), predictor.Command{
				Action:   predictor.ActionValidateKey,
				Slot:     slot,
				Provider: provider,
				Key:      key,
			})
			if err != nil {
				return err
			}
			return render.KeyCheck(a.out, *res.KeyCheck)
		},
	}
	cmd.Flags().StringVar(&provider, "provider", string(domain.ProviderAviationStack), "flight provider the key belongs to")
	cmd.Flags().StringVar(&key, "key", "", "key to validate")
	return cmd
}

func newKeysSaveCmd(a *app) *cobra.Command {
	var remember bool
	cmd := &cobra.Command{
		Use:   "save weather|flight KEY",
		Short: "Use a key, and remember it with --remember",
		Args:  cobra.MatchAll(cobra.ExactArgs(2), slotArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, _ := credentials.ParseSlot(args[0])
			res, err := a.dispatch(cmd.Context(), predictor.Command{
				Action:  predictor.ActionSaveKey,
				Slot:    slot,
				Key:     args[1],
				Persist: remember,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, res.Message)
			return err
		},
	}
	cmd.Flags().BoolVar(&remember, "remember", false, "store the key on this machine")
	return cmd
}

func newKeysClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear weather|flight",
		Short: "Forget a remembered key",
		Args:  cobra.MatchAll(cobra.ExactArgs(1), slotArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, _ := credentials.ParseSlot(args[0])
			res, err := a.dispatch(cmd.Context(), predictor.Command{Action: predictor.ActionClearKey, Slot: slot})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, res.Message)
			return err
		},
	}
}

func newKeysStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which keys are remembered",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			var lines []string
			for _, slot := range credentials.Slots() {
				stored, err := a.keys.Stored(slot)
				if err != nil {
					return err
				}
				state := "not remembered"
				if stored {
					state = "remembered"
				}
				lines = append(lines, fmt.Sprintf("%s key: %s", slot, state))
			}
			_, err := fmt.Fprintln(a.out, strings.Join(lines, "\n"))
			return err
		},
	}
}
