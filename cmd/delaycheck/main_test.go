package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/flight-delay-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a := &app{out: &out}
	root := newRootCmd(a)
	root.SetArgs(append([]string{"--credentials-file", filepath.Join(t.TempDir(), "keys.toml")}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCheck_Demo(t *testing.T) {
	out, err := run(t, "--demo", "check", "jfk")
	require.NoError(t, err)

	assert.Contains(t, out, "JFK - New York: LOW delay risk")
	assert.Contains(t, out, domain.LevelLow.Headline())
	assert.Contains(t, out, "Clear Sky")
}

func TestCheck_UnknownAirport(t *testing.T) {
	_, err := run(t, "--demo", "check", "XYZ")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCheck_MissingKeyIsConfigurationFault(t *testing.T) {
	_, err := run(t, "--openweather-url", "http://127.0.0.1:1", "check", "JFK")
	require.Error(t, err)
	assert.Equal(t, domain.FaultConfiguration, domain.FaultKindOf(err))
	assert.Contains(t, describe(err), "keys save")
}

func TestSchedules_Demo(t *testing.T) {
	out, err := run(t, "--demo", "schedules", "BOS", "--provider", "aviationstack", "--type", "departure")
	require.NoError(t, err)

	assert.Contains(t, out, "FLIGHT")
	assert.Contains(t, out, "DL123")
	assert.Contains(t, out, "AA456")
}

func TestReport_Demo(t *testing.T) {
	out, err := run(t, "--demo", "report", "BOS")
	require.NoError(t, err)

	assert.Contains(t, out, "BOS - Boston")
	assert.Contains(t, out, "DL123")
}

func TestHistory_RecordsChecks(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")

	_, err := run(t, "--demo", "--history-db", db, "check", "SFO")
	require.NoError(t, err)

	out, err := run(t, "--history-db", db, "history", "SFO")
	require.NoError(t, err)
	assert.Contains(t, out, "SFO")
	assert.Contains(t, out, "low")
}

func TestHistory_DisabledWithoutDB(t *testing.T) {
	_, err := run(t, "history")
	require.Error(t, err)
}

func TestKeys_SaveStatusClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.toml")
	keysRun := func(args ...string) string {
		var out bytes.Buffer
		root := newRootCmd(&app{out: &out})
		root.SetArgs(append([]string{"--credentials-file", path}, args...))
		require.NoError(t, root.ExecuteContext(context.Background()))
		return out.String()
	}

	assert.Contains(t, keysRun("keys", "save", "weather", "abc"), "set for this session")
	assert.Contains(t, keysRun("keys", "status"), "weather key: not remembered")

	assert.Contains(t, keysRun("keys", "save", "weather", "abc", "--remember"), "saved locally")
	assert.Contains(t, keysRun("keys", "status"), "weather key: remembered")

	assert.Contains(t, keysRun("keys", "clear", "weather"), "weather key cleared")
	assert.Contains(t, keysRun("keys", "status"), "weather key: not remembered")
}

func TestKeys_ValidateDemo(t *testing.T) {
	out, err := run(t, "--demo", "keys", "validate", "weather", "--key", "abc")
	require.NoError(t, err)
	assert.Contains(t, out, "weather key: ok")

	out, err = run(t, "keys", "validate", "flight", "--provider", "opensky")
	require.NoError(t, err)
	assert.Contains(t, out, "OpenSky does not require a key")
}

func TestKeys_UnknownSlot(t *testing.T) {
	_, err := run(t, "keys", "clear", "maps")
	require.Error(t, err)
}

func TestDescribe_Transport(t *testing.T) {
	err := &domain.TransportError{Service: "openweather", Err: errors.New("connection refused")}
	assert.Equal(t, "could not reach openweather: connection refused", describe(err))
}
