package fpl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/transferwatch/internal/config"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.FPLConfig{
		BaseURL:     baseURL,
		UserAgent:   "transferwatch-test",
		TimeoutSecs: 5,
		MaxRetries:  3,
		RatePerSec:  1000,
		RateBurst:   1000,
	})
}

func TestBootstrap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bootstrap-static/", r.URL.Path)
		assert.Equal(t, "transferwatch-test", r.Header.Get("User-Agent"))
		w.Write([]byte(`{
			"total_players": 11000000,
			"events": [
				{"id": 9, "is_current": false},
				{"id": 10, "is_current": true},
				{"id": 11, "is_current": false}
			],
			"elements": [
				{
					"id": 1,
					"web_name": "Salah",
					"transfers_in_event": 100000,
					"transfers_out_event": 5000,
					"selected_by_percent": "45.2",
					"now_cost": 131,
					"cost_change_event": 1
				},
				{
					"id": 2,
					"web_name": "Broken",
					"selected_by_percent": "not-a-number",
					"now_cost": 50
				}
			]
		}`))
	}))
	defer srv.Close()

	b, err := newTestClient(srv.URL).Bootstrap(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10, b.CurrentEvent)
	assert.Equal(t, 11000000, b.TotalPlayers)
	require.Len(t, b.Players, 2)

	assert.Equal(t, "Salah", b.Players[0].Name)
	assert.Equal(t, 100000, b.Players[0].TransfersInEvent)
	assert.InDelta(t, 45.2, b.Players[0].Ownership, 0.001)
	assert.Equal(t, 131, b.Players[0].Price)
	assert.Equal(t, 1, b.Players[0].PriceChangesEvent)

	// Malformed ownership parses to zero instead of failing the download.
	assert.Zero(t, b.Players[1].Ownership)
}

func TestFixtures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fixtures/", r.URL.Path)
		w.Write([]byte(`[
			{"code": 101, "event": 10, "team_h": 1, "team_a": 2, "finished": true},
			{"code": 102, "event": null, "team_h": 3, "team_a": 4, "finished": false}
		]`))
	}))
	defer srv.Close()

	fixtures, err := newTestClient(srv.URL).Fixtures(context.Background())
	require.NoError(t, err)

	require.Len(t, fixtures, 2)
	require.NotNil(t, fixtures[0].Event)
	assert.Equal(t, 10, *fixtures[0].Event)
	assert.Equal(t, 1, fixtures[0].HomeTeam)
	assert.True(t, fixtures[0].Finished)
	// Unscheduled fixtures keep a nil gameweek.
	assert.Nil(t, fixtures[1].Event)
}

func TestBootstrap_RetriesOn500(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"elements": [], "events": [], "total_players": 0}`))
	}))
	defer srv.Close()

	b, err := newTestClient(srv.URL).Bootstrap(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, b)
	assert.Equal(t, int32(2), calls.Load())
}

func TestBootstrap_ExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(config.FPLConfig{
		BaseURL:     srv.URL,
		TimeoutSecs: 5,
		MaxRetries:  2,
		RatePerSec:  1000,
		RateBurst:   1000,
	})

	_, err := c.Bootstrap(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all retries exhausted")
}

func TestBootstrap_NotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Bootstrap(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
	assert.Equal(t, int32(1), calls.Load())
}
