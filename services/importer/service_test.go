package importer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"huntstand/lib/huntstand"

	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, baseUrl string) *huntstand.Client {
	t.Helper()
	c, err := huntstand.NewClient(huntstand.ClientOptions{
		BaseUrl:   baseUrl,
		RetryWait: time.Millisecond,
	})
	require.NoError(t, err)
	return c
}

func TestPlanAdditions(t *testing.T) {
	emailsByRole := map[string][]string{
		"member": {"a@example.com", "b@example.com"},
		"admin":  {"c@example.com"},
	}
	huntareas := []string{"10", "20"}

	plans := PlanAdditions(emailsByRole, huntareas)
	require.Len(t, plans, 6)

	// role order is fixed member, admin, view; areas expand within a role
	require.Equal(t, Addition{Role: "member", HuntAreaID: "10", Email: "a@example.com"}, plans[0])
	require.Equal(t, Addition{Role: "member", HuntAreaID: "10", Email: "b@example.com"}, plans[1])
	require.Equal(t, Addition{Role: "member", HuntAreaID: "20", Email: "a@example.com"}, plans[2])
	require.Equal(t, Addition{Role: "admin", HuntAreaID: "10", Email: "c@example.com"}, plans[4])
}

func TestPlanAdditionsEmpty(t *testing.T) {
	require.Empty(t, PlanAdditions(map[string][]string{}, []string{"10"}))
	require.Empty(t, PlanAdditions(map[string][]string{"member": {"a@example.com"}}, nil))
}

func TestPostShareRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int64
	// 522 is outside the transport's retry set, so each attempt here is
	// exactly one request and the backoff loop is what drives the retries
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/huntarea/share/", r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "a@example.com", r.PostForm.Get("email"))
		require.Equal(t, "10", r.PostForm.Get("huntarea_id"))
		require.Equal(t, "member", r.PostForm.Get("rank"))
		if calls.Add(1) < 3 {
			w.WriteHeader(522)
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	add := Addition{Role: "member", HuntAreaID: "10", Email: "a@example.com"}
	res := PostShare(context.Background(), c, add, 3, time.Millisecond)

	require.Equal(t, "201", res.Status)
	require.Equal(t, `{"ok": true}`, res.Response)
	require.EqualValues(t, 3, calls.Load())
}

func TestPostShareExhaustsRetries(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(522)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	add := Addition{Role: "member", HuntAreaID: "10", Email: "a@example.com"}
	res := PostShare(context.Background(), c, add, 2, time.Millisecond)

	require.Equal(t, "error", res.Status)
	require.Equal(t, "max retries exhausted", res.Response)
	require.EqualValues(t, 3, calls.Load())
}

func TestPostShareNonRetriableFailure(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte("already a member"))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	add := Addition{Role: "member", HuntAreaID: "10", Email: "a@example.com"}
	res := PostShare(context.Background(), c, add, 3, time.Millisecond)

	// a 409 is a definitive answer, recorded as-is without retrying
	require.Equal(t, "409", res.Status)
	require.Equal(t, "already a member", res.Response)
	require.EqualValues(t, 1, calls.Load())
}

func TestRunRecordsEveryPlan(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	plans := []Addition{
		{Role: "member", HuntAreaID: "10", Email: "a@example.com"},
		{Role: "admin", HuntAreaID: "10", Email: "b@example.com"},
	}
	results := Run(context.Background(), Options{Client: c, Backoff: time.Millisecond, Delay: time.Millisecond}, plans)

	require.Len(t, results, 2)
	require.Equal(t, "a@example.com", results[0].Email)
	require.Equal(t, "200", results[0].Status)
	require.Equal(t, "admin", results[1].Role)
}
