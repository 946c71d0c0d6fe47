package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwardGeocodeShortInput(t *testing.T) {
	// No server at all: a short query must not even attempt the request.
	c := NewClient(WithBaseURL("http://127.0.0.1:0"))

	got := c.ForwardGeocode(context.Background(), "NY")
	assert.False(t, got.Found)
	assert.Zero(t, got.Latitude)
	assert.Zero(t, got.Longitude)
}

func TestForwardGeocodeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		require.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.Equal(t, "1600 Pennsylvania Ave", r.URL.Query().Get("q"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"38.8977","lon":"-77.0365","display_name":"The White House"}]`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	got := c.ForwardGeocode(context.Background(), "1600 Pennsylvania Ave")

	require.True(t, got.Found)
	assert.InDelta(t, 38.8977, got.Latitude, 1e-9)
	assert.InDelta(t, -77.0365, got.Longitude, 1e-9)
}

func TestForwardGeocodeEmptyResultSet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	got := c.ForwardGeocode(context.Background(), "nowhere in particular")
	assert.False(t, got.Found)
}

func TestForwardGeocodeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	got := c.ForwardGeocode(context.Background(), "some address somewhere")
	assert.False(t, got.Found)
}

func TestForwardGeocodeNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewClient(WithBaseURL(srv.URL))
	got := c.ForwardGeocode(context.Background(), "some address somewhere")
	assert.False(t, got.Found)
}

func TestReverseGeocodeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "40.7128", r.URL.Query().Get("lat"))

		_, _ = w.Write([]byte(`{"display_name":"New York, NY, USA"}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	got := c.ReverseGeocode(context.Background(), 40.7128, -74.006)

	require.True(t, got.Found)
	assert.Equal(t, "New York, NY, USA", got.Address)
}

func TestReverseGeocodeNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"Unable to geocode"}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	got := c.ReverseGeocode(context.Background(), 0, 0)
	assert.False(t, got.Found)
	assert.Empty(t, got.Address)
}

func TestFallbackAddress(t *testing.T) {
	assert.Equal(t, "Lat: 40.7128, Lng: -74.0060", FallbackAddress(40.7128, -74.006))
}
