// Package render formats delay reports and schedules as plain text for the
// command-line client.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/couchcryptid/flight-delay-service/internal/domain"
	"github.com/couchcryptid/flight-delay-service/internal/predictor"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	placeholder = "—"
	notAvail    = "N/A"
	timeLayout  = "Jan 2 15:04 MST"
)

// Report writes a delay report: headline, reasons and the weather behind them.
func Report(w io.Writer, r domain.DelayReport) error {
	a := r.Assessment
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s delay risk (score %d/%d)\n", r.Airport.Name, strings.ToUpper(string(a.Level)), a.Score, domain.MaxScore)
	fmt.Fprintln(&b, a.Level.Headline())
	if len(a.Reasons) > 0 {
		fmt.Fprintln(&b, "Reasons:")
		for _, reason := range a.Reasons {
			fmt.Fprintf(&b, "  - %s\n", reason)
		}
	}
	fmt.Fprintf(&b, "Weather: %s\n", weatherLine(r.Observation))
	_, err := io.WriteString(w, b.String())
	return err
}

func weatherLine(o domain.WeatherObservation) string {
	cond := o.Description
	if cond == "" {
		cond = o.Condition
	}
	if cond == "" {
		cond = notAvail
	} else {
		cond = cases.Title(language.English).String(cond)
	}
	return fmt.Sprintf("%s, %s, wind %s, visibility %s, humidity %s",
		cond,
		number(o.TemperatureF, "°F"),
		number(o.WindSpeedMPH, " mph"),
		number(o.VisibilityM, " m"),
		number(o.Humidity, "%"),
	)
}

func number(v *float64, unit string) string {
	if v == nil {
		return notAvail
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + unit
}

// Schedules writes up to domain.DisplayLimit schedule rows as a table.
func Schedules(w io.Writer, res predictor.ScheduleResult, loc *time.Location) error {
	if len(res.Records) == 0 {
		_, err := fmt.Fprintf(w, "No recent %ss found for provider %s.\n", res.Type, res.Provider)
		return err
	}

	if _, err := fmt.Fprintf(w, "Recent %ss at %s (provider: %s)\n", res.Type, res.Airport.Code, res.Provider); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FLIGHT\tAIRLINE\tFROM\tTO\tSTATUS\tTIME")
	rows := res.Records
	if len(rows) > domain.DisplayLimit {
		rows = rows[:domain.DisplayLimit]
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			orPlaceholder(r.Callsign),
			orPlaceholder(r.Airline),
			orPlaceholder(r.Origin),
			orPlaceholder(r.Destination),
			orPlaceholder(r.Status),
			FormatTime(r.Time, loc),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if extra := len(res.Records) - len(rows); extra > 0 {
		_, err := fmt.Fprintf(w, "(%d more not shown)\n", extra)
		return err
	}
	return nil
}

// FormatTime renders a schedule timestamp in loc. Epoch values are seconds;
// ISO strings that do not parse are shown as given.
func FormatTime(ts domain.Timestamp, loc *time.Location) string {
	if ts.IsZero() {
		return notAvail
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := ts.Time()
	if err != nil {
		iso, _ := ts.ISO()
		return iso
	}
	return t.In(loc).Format(timeLayout)
}

// KeyCheck writes the outcome of a key validation.
func KeyCheck(w io.Writer, c predictor.KeyCheck) error {
	status := "invalid"
	if c.Valid {
		status = "ok"
	}
	_, err := fmt.Fprintf(w, "%s key: %s (%s)\n", c.Slot, status, c.Message)
	return err
}

// History writes recorded reports as a table, newest first.
func History(w io.Writer, reports []domain.DelayReport, loc *time.Location) error {
	if len(reports) == 0 {
		_, err := fmt.Fprintln(w, "No delay checks recorded.")
		return err
	}
	if loc == nil {
		loc = time.UTC
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CHECKED\tAIRPORT\tLEVEL\tSCORE\tREASONS")
	for _, r := range reports {
		reasons := strings.Join(r.Assessment.Reasons, ", ")
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			r.CheckedAt.In(loc).Format(timeLayout),
			r.Airport.Code,
			r.Assessment.Level,
			r.Assessment.Score,
			orPlaceholder(reasons),
		)
	}
	return tw.Flush()
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}
