package huntstand

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAssetEndpointList(t *testing.T) {
	eps := ParseAssetEndpointList("water:/api/v1/water/?huntarea_id={}, nonsense ,gate:/api/v1/gate/?huntarea={}")
	require.Equal(t, []AssetEndpoint{
		{Type: "water", URL: "/api/v1/water/?huntarea_id={}"},
		{Type: "gate", URL: "/api/v1/gate/?huntarea={}"},
	}, eps)

	require.Empty(t, ParseAssetEndpointList(""))
}

func TestRefineAssetEndpoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/stand/":
			json.NewEncoder(w).Encode([]any{map[string]any{"id": 1}})
		case "/api/v1/camera/":
			json.NewEncoder(w).Encode(map[string]any{"objects": []any{}})
		case "/api/v1/blind/":
			// an object without an objects envelope is unusable
			json.NewEncoder(w).Encode(map[string]any{"detail": "not found"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c, err := NewClient(testClientOptions(srv.URL))
	require.NoError(t, err)

	candidates := []AssetEndpoint{
		{Type: "stand", URL: "/api/v1/stand/?huntarea_id={}"},
		{Type: "camera", URL: "/api/v1/camera/?huntarea_id={}"},
		{Type: "blind", URL: "/api/v1/blind/?huntarea_id={}"},
		{Type: "feeder", URL: "/api/v1/feeder/?huntarea_id={}"},
	}
	kept := c.RefineAssetEndpoints(context.Background(), "1", candidates)
	require.Len(t, kept, 2)
	require.Equal(t, "stand", kept[0].Type)
	require.Equal(t, "camera", kept[1].Type)
}

func TestRefineAssetEndpointsFailOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c, err := NewClient(testClientOptions(srv.URL))
	require.NoError(t, err)

	candidates := DefaultAssetEndpoints()
	kept := c.RefineAssetEndpoints(context.Background(), "1", candidates)
	require.Equal(t, candidates, kept)

	// an unsafe sample id skips probing entirely
	kept = c.RefineAssetEndpoints(context.Background(), "not/an/id", candidates)
	require.Equal(t, candidates, kept)
}

func TestFetchAssets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/stand/":
			require.Equal(t, "7", r.URL.Query().Get("huntarea_id"))
			json.NewEncoder(w).Encode([]any{
				map[string]any{
					"id":      float64(31),
					"name":    "Oak Stand",
					"lat":     float64(44.5),
					"lon":     float64(-93.2),
					"created": "2023-10-01",
					"owner":   map[string]any{"email": "owner@example.com"},
					"public":  true,
				},
			})
		case "/api/v1/camera/":
			w.WriteHeader(http.StatusNotFound)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c, err := NewClient(testClientOptions(srv.URL))
	require.NoError(t, err)

	endpoints := []AssetEndpoint{
		{Type: "stand", URL: "/api/v1/stand/?huntarea_id={}"},
		{Type: "camera", URL: "/api/v1/camera/?huntarea_id={}"},
	}
	assets := c.FetchAssets(context.Background(), "7", "North Ridge", endpoints)
	require.Len(t, assets, 1)

	a := assets[0]
	require.Equal(t, "7", a.HuntAreaID)
	require.Equal(t, "North Ridge", a.HuntAreaName)
	require.Equal(t, "stand", a.AssetType)
	require.Equal(t, "31", a.AssetID)
	require.Equal(t, "Oak Stand", a.Name)
	require.Equal(t, "44.5", a.Latitude)
	require.Equal(t, "-93.2", a.Longitude)
	require.Equal(t, "owner@example.com", a.OwnerEmail)
	require.Equal(t, "public", a.Visibility)

	require.Nil(t, c.FetchAssets(context.Background(), "..", "x", endpoints))
}

func TestNormalizeAssetFallbacks(t *testing.T) {
	a := normalizeAsset(map[string]any{
		"uuid":   "ab-12",
		"shared": false,
		"location": map[string]any{
			"latitude":  float64(41),
			"longitude": float64(-88),
		},
	}, "camera", "9", "Beta")
	require.Equal(t, "ab-12", a.AssetID)
	require.Equal(t, "Camera-ab-12", a.Name)
	require.Equal(t, "41", a.Latitude)
	require.Equal(t, "-88", a.Longitude)
	require.Equal(t, "private", a.Visibility)

	// no id at all still yields a typed placeholder name
	a = normalizeAsset(map[string]any{}, "blind", "9", "Beta")
	require.Equal(t, "Blind", a.Name)
	require.Empty(t, a.AssetID)
}

func TestNormalizeAssetTruncation(t *testing.T) {
	long := strings.Repeat("n", 300)
	a := normalizeAsset(map[string]any{
		"id":   float64(1),
		"name": long,
		"type": strings.Repeat("s", 150),
	}, "stand", "9", "Beta")
	require.Len(t, a.Name, 200)
	require.Len(t, a.Subtype, 100)
}
