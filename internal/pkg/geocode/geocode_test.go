package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixthesign/fixthesign/app/models"
)

func TestReverse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "52.52", r.URL.Query().Get("lat"))
		assert.Equal(t, "13.405", r.URL.Query().Get("lon"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"display_name":"Alexanderplatz, Mitte, Berlin, 10178, Deutschland"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	addr, err := client.Reverse(context.Background(), models.Location{Lat: 52.52, Lng: 13.405})
	require.NoError(t, err)
	assert.Equal(t, "Alexanderplatz, Mitte, Berlin, 10178, Deutschland", addr)
}

func TestReverseUnableToGeocode(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"Unable to geocode"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	addr, err := client.Reverse(context.Background(), models.Location{})
	require.NoError(t, err)
	assert.Empty(t, addr)
}

func TestReverseServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Reverse(context.Background(), models.Location{Lat: 1, Lng: 2})
	assert.Error(t, err)
}

func TestDistanceMeters(t *testing.T) {
	t.Parallel()

	berlin := models.Location{Lat: 52.52, Lng: 13.405}
	munich := models.Location{Lat: 48.1374, Lng: 11.5755}

	// Berlin to Munich is roughly 504 km.
	d := DistanceMeters(berlin, munich)
	assert.InDelta(t, 504000, d, 5000)

	assert.Zero(t, DistanceMeters(berlin, berlin))
}

func TestWithinMeters(t *testing.T) {
	t.Parallel()

	a := models.Location{Lat: 52.52, Lng: 13.405}
	b := models.Location{Lat: 52.521, Lng: 13.405} // ~111m north

	assert.True(t, WithinMeters(a, b, 1000))
	assert.False(t, WithinMeters(a, b, 50))
}
