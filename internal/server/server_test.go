package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gh "github.com/google/go-github/v68/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stahnma/gh-repostats/internal/analyzer"
	"github.com/stahnma/gh-repostats/internal/cache"
	"github.com/stahnma/gh-repostats/internal/github"
	"github.com/stahnma/gh-repostats/internal/github/githubtest"
	"github.com/stahnma/gh-repostats/internal/metrics"
)

var now = time.Date(2024, time.June, 30, 12, 0, 0, 0, time.UTC)

func newFake() *githubtest.Fake {
	return &githubtest.Fake{
		Repos: []*gh.Repository{
			githubtest.Repo("octo-org", "a", 10, now.AddDate(0, 0, -1)),
			githubtest.Repo("octo-org", "b", 50, now.AddDate(0, 0, -90)),
			githubtest.Repo("octo-org", "c", 5, now.AddDate(0, 0, -400)),
		},
		Views: map[string]*gh.TrafficViews{"b": githubtest.Views(3, 4)},
	}
}

func newTestServer(t *testing.T, fake *githubtest.Fake) *Server {
	t.Helper()
	a := analyzer.New(fake, cache.New(), analyzer.Options{Now: func() time.Time { return now }})
	return New(a, Options{Owner: "octo-org", Kind: github.KindOrg})
}

func do(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthz(t *testing.T) {
	rec := do(t, newTestServer(t, newFake()), http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRepos(t *testing.T) {
	rec := do(t, newTestServer(t, newFake()), http.MethodGet, "/api/repos")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[reposResponse](t, rec)
	assert.Equal(t, "octo-org", resp.Owner)
	assert.Equal(t, 3, resp.Count)
	assert.True(t, resp.Authenticated)
	assert.Equal(t, "a", resp.Repositories[0].Name)
	assert.Equal(t, 7, resp.Repositories[1].Views)
}

func TestRepos_FilterAndSort(t *testing.T) {
	rec := do(t, newTestServer(t, newFake()), http.MethodGet, "/api/repos?filter=stars>5&sort=stars")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[reposResponse](t, rec)
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, "b", resp.Repositories[0].Name)
	assert.Equal(t, "a", resp.Repositories[1].Name)
}

func TestRepos_RepeatedFilters(t *testing.T) {
	rec := do(t, newTestServer(t, newFake()), http.MethodGet, "/api/repos?filter=stars>=5&filter=inactivity_days=30..365")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[reposResponse](t, rec)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "b", resp.Repositories[0].Name)
}

func TestBadRequests(t *testing.T) {
	s := newTestServer(t, newFake())
	for _, target := range []string{
		"/api/repos?kind=team",
		"/api/repos?filter=stars>>1",
		"/api/repos?sort=watchers",
		"/api/chart?metric=watchers",
		"/api/chart?bins=0",
		"/api/summary?filter=bogus",
	} {
		t.Run(target, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode[map[string]string](t, rec), "error")
		})
	}
}

func TestUpstreamErrors(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New("500 Internal Server Error"), http.StatusBadGateway},
		{fmt.Errorf("listing: %w", github.ErrRateLimited), http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			fake := newFake()
			fake.ListErr = tt.err
			rec := do(t, newTestServer(t, fake), http.MethodGet, "/api/repos")
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestChart(t *testing.T) {
	rec := do(t, newTestServer(t, newFake()), http.MethodGet, "/api/chart?metric=stars&bins=3")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[chartResponse](t, rec)
	assert.Equal(t, metrics.Stars, resp.Metric)
	require.Len(t, resp.Bars, 3)
	assert.Equal(t, bar{Name: "b", Value: 50}, resp.Bars[1])

	require.Len(t, resp.Bins, 3)
	total := 0
	for _, b := range resp.Bins {
		total += b.Count
	}
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"b"}, resp.Bins[2].Repos)
}

func TestChart_EmptyAfterFilter(t *testing.T) {
	rec := do(t, newTestServer(t, newFake()), http.MethodGet, "/api/chart?filter=stars>1000")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[chartResponse](t, rec)
	assert.Empty(t, resp.Bars)
	assert.NotNil(t, resp.Bins)
}

func TestSummary(t *testing.T) {
	rec := do(t, newTestServer(t, newFake()), http.MethodGet, "/api/summary")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[[]metrics.Summary](t, rec)
	require.Len(t, resp, len(metrics.All))
	assert.Equal(t, metrics.Stars, resp[0].Metric)
	assert.Equal(t, 65.0, resp[0].Sum)
	assert.Equal(t, 10.0, resp[0].Median)
}

func TestRefreshAndCache(t *testing.T) {
	fake := newFake()
	s := newTestServer(t, fake)

	do(t, s, http.MethodGet, "/api/repos")
	do(t, s, http.MethodGet, "/api/repos")
	stats := decode[cache.Stats](t, do(t, s, http.MethodGet, "/api/cache"))
	assert.EqualValues(t, 1, stats.Hits)
	assert.EqualValues(t, 1, stats.Misses)

	rec := do(t, s, http.MethodPost, "/api/refresh")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decode[refreshResponse](t, rec).Count)
	assert.EqualValues(t, 2, fake.ListCalls.Load())

	rec = do(t, s, http.MethodPost, "/api/refresh?all=true")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[refreshResponse](t, rec).All)
	assert.Zero(t, decode[cache.Stats](t, do(t, s, http.MethodGet, "/api/cache")).Entries)
}

func TestRefresh_MethodNotAllowed(t *testing.T) {
	rec := do(t, newTestServer(t, newFake()), http.MethodGet, "/api/refresh")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestDashboard(t *testing.T) {
	rec := do(t, newTestServer(t, newFake()), http.MethodGet, "/?metric=inactivity_days")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	assert.Contains(t, body, "Distribution of Inactivity Days")
	assert.Contains(t, body, "3 repositories")
	assert.Contains(t, body, "<td>b</td>")
}

func TestDashboard_Error(t *testing.T) {
	rec := do(t, newTestServer(t, newFake()), http.MethodGet, "/?filter=nope")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "invalid filter predicate"))
}
