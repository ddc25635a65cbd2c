package huntstand

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func membershipServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/clubmember/":
			json.NewEncoder(w).Encode([]any{
				map[string]any{"first_name": "Ann", "last_name": "Ames", "email": "Ann@Example.com "},
				map[string]any{"first_name": "Bo", "last_name": "Beck", "email": "bo@example.com"},
			})
		case "/api/v1/membershipemailinvite/":
			// one category failing must not block the others
			w.WriteHeader(http.StatusForbidden)
		case "/api/v1/membershiprequest/":
			json.NewEncoder(w).Encode(map[string]any{"objects": []any{
				map[string]any{
					"profile":        map[string]any{"user": map[string]any{"username": "cday"}},
					"rank":           map[string]any{"name": "view"},
					"date_requested": "2024-03-01",
				},
			}})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestProcessHuntAreaCategoryIsolation(t *testing.T) {
	srv := membershipServer(t)
	defer srv.Close()

	c, err := NewClient(testClientOptions(srv.URL))
	require.NoError(t, err)

	descriptor := map[string]any{
		"huntarea_id": float64(11),
		"huntarea":    map[string]any{"id": float64(11), "name": "North Ridge"},
	}
	res := c.ProcessHuntArea(context.Background(), descriptor, AreaOptions{})

	require.Len(t, res.Rows, 3)
	require.NotNil(t, res.Summary)
	require.Equal(t, "11", res.Summary.ID)
	require.Equal(t, "North Ridge", res.Summary.Name)
	require.Equal(t, 2, res.Summary.Counts["members"])
	require.Equal(t, 0, res.Summary.Counts["invites"])
	require.Equal(t, 1, res.Summary.Counts["requests"])

	require.Equal(t, "Ann Ames", res.Rows[0].Name)
	require.Equal(t, "ann@example.com", res.Rows[0].Email)
	require.Equal(t, StatusActive, res.Rows[0].Status)
	require.Equal(t, "member", res.Rows[0].Rank)

	rq := res.Rows[2]
	require.Equal(t, StatusRequested, rq.Status)
	require.Equal(t, "cday", rq.Name)
	require.Equal(t, "view", rq.Rank)
	require.Equal(t, "2024-03-01", rq.DateJoined)
}

func TestProcessHuntAreaUnresolvableID(t *testing.T) {
	c, err := NewClient(testClientOptions("http://127.0.0.1:0"))
	require.NoError(t, err)

	res := c.ProcessHuntArea(context.Background(), map[string]any{"name": "orphan"}, AreaOptions{})
	require.Empty(t, res.Rows)
	require.Nil(t, res.Summary)
}

func TestProcessHuntAreaUnsafeID(t *testing.T) {
	// the fetch guards refuse to interpolate a non hex-and-dash string, so
	// no request is ever issued and every category degrades to empty
	c, err := NewClient(testClientOptions("http://127.0.0.1:0"))
	require.NoError(t, err)

	res := c.ProcessHuntArea(context.Background(), map[string]any{"huntarea_id": "../../etc"}, AreaOptions{})
	require.Empty(t, res.Rows)
	require.NotNil(t, res.Summary)
	require.Equal(t, 0, res.Summary.Counts["members"])
	require.Equal(t, 0, res.Summary.Counts["invites"])
	require.Equal(t, 0, res.Summary.Counts["requests"])
}

func TestProcessHuntAreaNameFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]any{})
	}))
	defer srv.Close()

	c, err := NewClient(testClientOptions(srv.URL))
	require.NoError(t, err)

	res := c.ProcessHuntArea(context.Background(), map[string]any{"huntarea_id": float64(5)}, AreaOptions{})
	require.NotNil(t, res.Summary)
	require.Equal(t, "Area-5", res.Summary.Name)
}

func TestInviteRowRankFallbacks(t *testing.T) {
	row := inviteRow(map[string]any{
		"email": "X@Y.Z",
		"name":  "Eve Fox",
		"rank":  map[string]any{"name": "admin"},
	}, "1", "Alpha")
	require.Equal(t, "admin", row.Rank)
	require.Equal(t, "x@y.z", row.Email)
	require.Equal(t, StatusInvited, row.Status)

	row = inviteRow(map[string]any{"rank": "view"}, "1", "Alpha")
	require.Equal(t, "view", row.Rank)

	row = inviteRow(map[string]any{"role": "member", "date_sent": "2024-01-02"}, "1", "Alpha")
	require.Equal(t, "member", row.Rank)
	require.Equal(t, "2024-01-02", row.DateJoined)
}

func TestRequestRowPlaceholderIdentity(t *testing.T) {
	row := requestRow(map[string]any{
		"profile": map[string]any{"id": float64(314)},
	}, "1", "Alpha")
	require.Equal(t, "Profile_314", row.Name)
	require.Empty(t, row.Email)

	row = requestRow(map[string]any{
		"profile": map[string]any{"user": map[string]any{"id": float64(99)}},
	}, "1", "Alpha")
	require.Equal(t, "User_99", row.Name)
}

func TestRequestRowProfileOverridesUser(t *testing.T) {
	row := requestRow(map[string]any{
		"profile": map[string]any{
			"first_name": "Pat",
			"last_name":  "Quinn",
			"email":      "pat@example.com",
			"user": map[string]any{
				"first_name": "Other",
				"email":      "other@example.com",
			},
		},
	}, "1", "Alpha")
	require.Equal(t, "Pat Quinn", row.Name)
	require.Equal(t, "pat@example.com", row.Email)
}
