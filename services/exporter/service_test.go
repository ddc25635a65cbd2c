package exporter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"huntstand/lib/huntstand"

	"github.com/stretchr/testify/require"
)

// exportServer serves two hunt areas with members only; invites, requests and
// asset endpoints all 404, exercising the degraded paths.
func exportServer(t *testing.T) *httptest.Server {
	t.Helper()
	membersByArea := map[string][]any{
		"1": {
			map[string]any{"first_name": "Ann", "last_name": "Ames", "email": "ann@example.com"},
			map[string]any{"first_name": "Bo", "last_name": "Beck", "email": "bo@example.com"},
		},
		"2": {
			map[string]any{"first_name": "Cy", "last_name": "Cole", "email": "cy@example.com"},
		},
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/myprofile/":
			json.NewEncoder(w).Encode(map[string]any{
				"hunt_areas": []any{
					map[string]any{"id": float64(1), "name": "Alpha"},
					map[string]any{"id": float64(2), "name": "Beta"},
				},
			})
		case "/api/v1/clubmember/":
			json.NewEncoder(w).Encode(membersByArea[r.URL.Query().Get("huntarea_id")])
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestRunSequential(t *testing.T) {
	srv := exportServer(t)
	defer srv.Close()

	c, err := huntstand.NewClient(huntstand.ClientOptions{BaseUrl: srv.URL})
	require.NoError(t, err)

	result := Run(context.Background(), Options{Client: c})

	require.Len(t, result.Rows, 3)
	// sequential mode preserves discovery order
	require.Equal(t, "Alpha", result.Rows[0].HuntAreaName)
	require.Equal(t, "Alpha", result.Rows[1].HuntAreaName)
	require.Equal(t, "Beta", result.Rows[2].HuntAreaName)

	require.Len(t, result.Summary.HuntAreas, 2)
	require.Equal(t, 2, result.Summary.HuntAreas[0].Counts["members"])
	require.Equal(t, 1, result.Summary.HuntAreas[1].Counts["members"])
	require.Empty(t, result.Assets)
}

func TestRunParallel(t *testing.T) {
	srv := exportServer(t)
	defer srv.Close()

	c, err := huntstand.NewClient(huntstand.ClientOptions{BaseUrl: srv.URL})
	require.NoError(t, err)

	result := Run(context.Background(), Options{Client: c, Parallel: true, Workers: 2})

	// same totals as sequential, no ordering guarantee
	require.Len(t, result.Rows, 3)
	require.Len(t, result.Summary.HuntAreas, 2)

	emails := map[string]bool{}
	for _, r := range result.Rows {
		emails[r.Email] = true
	}
	require.Len(t, emails, 3)
	require.True(t, emails["ann@example.com"])
	require.True(t, emails["cy@example.com"])
}

func TestRunNoAreas(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"hunt_areas": []any{}})
	}))
	defer srv.Close()

	c, err := huntstand.NewClient(huntstand.ClientOptions{BaseUrl: srv.URL})
	require.NoError(t, err)

	result := Run(context.Background(), Options{Client: c})
	require.Empty(t, result.Rows)
	require.Empty(t, result.Summary.HuntAreas)
	require.NotNil(t, result.Summary.HuntAreas)
}
