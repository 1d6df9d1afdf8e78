package aviationstack

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/flight-delay-service/internal/domain"
	"github.com/couchcryptid/flight-delay-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "as-key"

const invalidKeyBody = `{"error":{"code":"invalid_access_key","message":"You have not supplied a valid API Access Key."}}`

func testClient(baseURL string) *Client {
	return NewClient(baseURL, 5*time.Second, observability.DiscardLogger(), observability.NewMetricsForTesting())
}

func TestClient_Flights_Query(t *testing.T) {
	tests := []struct {
		st      domain.ScheduleType
		param   string
		missing string
	}{
		{domain.Arrival, "arr_iata", "dep_iata"},
		{domain.Departure, "dep_iata", "arr_iata"},
	}
	for _, tt := range tests {
		t.Run(string(tt.st), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/flights", r.URL.Path)
				q := r.URL.Query()
				assert.Equal(t, "ORD", q.Get(tt.param))
				assert.Empty(t, q.Get(tt.missing))
				assert.Equal(t, "12", q.Get("limit"))
				assert.Equal(t, testKey, q.Get("access_key"))
				_, _ = w.Write([]byte(`{"data":[]}`))
			}))
			defer srv.Close()

			resp, err := testClient(srv.URL).Flights(context.Background(), testKey, "ORD", tt.st)
			require.NoError(t, err)
			assert.True(t, resp.OK())
		})
	}
}

func TestClient_Schedules_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"pagination":{"limit":12},"data":[
			{"flight_status":"landed","airline":{"name":"United Airlines","iata":"UA"},"flight":{"number":"1","iata":"UA1"},
			 "departure":{"airport":"Newark","iata":"EWR","scheduled":"2023-11-14T18:00:00+00:00"},
			 "arrival":{"airport":"San Francisco International","iata":"SFO","scheduled":"2023-11-14T21:30:00+00:00"}}
		]}`))
	}))
	defer srv.Close()

	sfo, err := domain.LookupAirport("SFO")
	require.NoError(t, err)

	batch, err := testClient(srv.URL).Schedules(context.Background(), testKey, sfo, domain.Arrival)
	require.NoError(t, err)
	assert.Equal(t, "SFO", batch.Airport)

	records := domain.Normalize(batch, domain.Arrival)
	require.Len(t, records, 1)
	assert.Equal(t, "UA1", records[0].Callsign)
	assert.Equal(t, "United Airlines", records[0].Airline)
	assert.Equal(t, "EWR", records[0].Origin)
	assert.Equal(t, "landed", records[0].Status)
	iso, ok := records[0].Time.ISO()
	assert.True(t, ok)
	assert.Equal(t, "2023-11-14T21:30:00+00:00", iso)
}

func TestClient_Schedules_MissingKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer srv.Close()

	_, err := testClient(srv.URL).Schedules(context.Background(), "", domain.ValidationAirport, domain.Arrival)
	require.ErrorIs(t, err, domain.ErrMissingCredential)
	assert.False(t, called)
}

func TestClient_Schedules_ErrorObjectIn2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(invalidKeyBody))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Schedules(context.Background(), "bad", domain.ValidationAirport, domain.Arrival)
	var ue *domain.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusOK, ue.Status)
	assert.Equal(t, "You have not supplied a valid API Access Key.", ue.Body)
}

func TestClient_Schedules_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`rate limited`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Schedules(context.Background(), testKey, domain.ValidationAirport, domain.Departure)
	var ue *domain.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusTooManyRequests, ue.Status)
	assert.Equal(t, "rate limited", ue.Body)
}

func TestClient_ValidateKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Empty(t, r.URL.Query().Get("arr_iata"))
		if r.URL.Query().Get("access_key") != testKey {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(invalidKeyBody))
			return
		}
		_, _ = w.Write([]byte(`{"data":[{}]}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	require.NoError(t, c.ValidateKey(context.Background(), testKey))

	err := c.ValidateKey(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, domain.FaultUpstream, domain.FaultKindOf(err))
	assert.Contains(t, err.Error(), "valid API Access Key")

	require.ErrorIs(t, c.ValidateKey(context.Background(), ""), domain.ErrMissingCredential)
}
