package predictor_test

import (
	"context"
	"testing"

	"github.com/couchcryptid/flight-delay-service/internal/credentials"
	"github.com/couchcryptid/flight-delay-service/internal/domain"
	"github.com/couchcryptid/flight-delay-service/internal/predictor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_UnknownAction(t *testing.T) {
	d := predictor.NewDispatcher()
	_, err := d.Dispatch(context.Background(), predictor.Command{Action: "launch"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDispatcher_RegisterReplaces(t *testing.T) {
	d := predictor.NewDispatcher()
	d.Register("ping", func(context.Context, predictor.Command) (predictor.Result, error) {
		return predictor.Result{Message: "first"}, nil
	})
	d.Register("ping", func(context.Context, predictor.Command) (predictor.Result, error) {
		return predictor.Result{Message: "second"}, nil
	})

	res, err := d.Dispatch(context.Background(), predictor.Command{Action: "ping"})
	require.NoError(t, err)
	assert.Equal(t, "second", res.Message)
	assert.Equal(t, predictor.Action("ping"), res.Action)
}

func TestClientDispatcher_Actions(t *testing.T) {
	svc := newService(predictor.DemoWeather{}, predictor.DemoSchedules{}, predictor.DemoValidator{})
	d := predictor.NewClientDispatcher(svc, credentials.NewManager(nil))

	assert.Equal(t, []predictor.Action{
		predictor.ActionCheckDelay,
		predictor.ActionClearKey,
		predictor.ActionSaveKey,
		predictor.ActionShowSchedules,
		predictor.ActionValidateKey,
	}, d.Actions())
}

func TestClientDispatcher_CheckAndSchedules(t *testing.T) {
	svc := newService(predictor.DemoWeather{}, predictor.DemoSchedules{}, predictor.DemoValidator{})
	d := predictor.NewClientDispatcher(svc, credentials.NewManager(nil))
	ctx := context.Background()

	res, err := d.Dispatch(ctx, predictor.Command{Action: predictor.ActionCheckDelay, Airport: "ORD"})
	require.NoError(t, err)
	require.NotNil(t, res.Report)
	assert.Equal(t, "ORD", res.Report.Airport.Code)
	assert.Equal(t, predictor.ActionCheckDelay, res.Action)

	res, err = d.Dispatch(ctx, predictor.Command{Action: predictor.ActionShowSchedules, Airport: "ORD", Type: "departure"})
	require.NoError(t, err)
	require.NotNil(t, res.Schedules)
	assert.Equal(t, domain.Departure, res.Schedules.Type)

	_, err = d.Dispatch(ctx, predictor.Command{Action: predictor.ActionCheckDelay})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClientDispatcher_KeyLifecycle(t *testing.T) {
	store := credentials.NewMemoryStore()
	keys := credentials.NewManager(store)
	svc := newService(predictor.DemoWeather{}, predictor.DemoSchedules{}, predictor.DemoValidator{})
	d := predictor.NewClientDispatcher(svc, keys)
	ctx := context.Background()

	res, err := d.Dispatch(ctx, predictor.Command{Action: predictor.ActionSaveKey, Slot: credentials.SlotWeather, Key: "ow"})
	require.NoError(t, err)
	assert.Contains(t, res.Message, "--remember")
	_, stored, _ := store.Get(credentials.SlotWeather)
	assert.False(t, stored)

	res, err = d.Dispatch(ctx, predictor.Command{Action: predictor.ActionSaveKey, Slot: credentials.SlotWeather, Key: "ow", Persist: true})
	require.NoError(t, err)
	assert.Equal(t, "weather key saved locally", res.Message)
	key, stored, _ := store.Get(credentials.SlotWeather)
	assert.True(t, stored)
	assert.Equal(t, "ow", key)

	// Validation falls back to the stored key when none is given.
	res, err = d.Dispatch(ctx, predictor.Command{Action: predictor.ActionValidateKey, Slot: credentials.SlotWeather})
	require.NoError(t, err)
	require.NotNil(t, res.KeyCheck)
	assert.True(t, res.KeyCheck.Valid)

	res, err = d.Dispatch(ctx, predictor.Command{Action: predictor.ActionClearKey, Slot: credentials.SlotWeather})
	require.NoError(t, err)
	assert.Equal(t, "weather key cleared", res.Message)
	_, stored, _ = store.Get(credentials.SlotWeather)
	assert.False(t, stored)

	_, err = d.Dispatch(ctx, predictor.Command{Action: predictor.ActionValidateKey, Slot: credentials.SlotWeather})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = d.Dispatch(ctx, predictor.Command{Action: predictor.ActionSaveKey, Slot: credentials.SlotFlight, Key: " "})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
