package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "challenge_server/docs"
	"challenge_server/internal/domain"
	"challenge_server/internal/usecase"
)

type stubDashboards struct {
	cachedCalls int
	loadCalls   int
	loadedIDs   []string
}

func (s *stubDashboards) Load(_ context.Context, id string) (domain.ChallengeDashboard, error) {
	s.loadCalls++
	s.loadedIDs = append(s.loadedIDs, id)
	if id == "missing" {
		return domain.ChallengeDashboard{}, fmt.Errorf("fetch challenge: %w", domain.ErrNotFound)
	}
	return domain.ChallengeDashboard{Challenge: domain.Challenge{DocumentID: id}, Generation: "live"}, nil
}

func (s *stubDashboards) Cached(_ context.Context, id string) (domain.ChallengeDashboard, error) {
	s.cachedCalls++
	return domain.ChallengeDashboard{Challenge: domain.Challenge{DocumentID: id}, Generation: "cached"}, nil
}

func (s *stubDashboards) Recent(context.Context, int) ([]domain.ChallengeDashboard, error) {
	return nil, nil
}

type stubRewards struct{}

func (stubRewards) List(context.Context) ([]domain.Reward, error) {
	return []domain.Reward{{DocumentID: "r1"}}, nil
}

func (stubRewards) Get(_ context.Context, id string) (domain.Reward, error) {
	return domain.Reward{}, domain.ErrNotFound
}

func (stubRewards) Create(_ context.Context, input domain.RewardInput) (domain.Reward, error) {
	if input.Name == "" {
		return domain.Reward{}, &usecase.ValidationError{Err: errors.New("name required")}
	}
	return domain.Reward{DocumentID: "r2", Name: input.Name}, nil
}

func (stubRewards) Update(_ context.Context, id string, input domain.RewardInput) (domain.Reward, error) {
	return domain.Reward{DocumentID: id, Name: input.Name}, nil
}

func (stubRewards) Delete(context.Context, string) error { return nil }

type stubPreferences struct {
	lastPatch domain.PreferencesPatch
}

func (s *stubPreferences) Load(_ context.Context, userID string) (domain.UserPreferences, error) {
	return domain.DefaultPreferences(userID), nil
}

func (s *stubPreferences) Save(_ context.Context, userID string, patch domain.PreferencesPatch) (domain.UserPreferences, error) {
	s.lastPatch = patch
	return domain.DefaultPreferences(userID).Apply(patch), nil
}

func doRequest(t *testing.T, r *Router, method, target, body string) (*nethttp.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := r.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func TestHealth(t *testing.T) {
	resp, body := doRequest(t, New(Services{}), nethttp.MethodGet, "/health", "")
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestSwaggerDocument(t *testing.T) {
	resp, body := doRequest(t, New(Services{}), nethttp.MethodGet, "/swagger/doc.json", "")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	var doc struct {
		BasePath    string `json:"basePath"`
		Definitions map[string]struct {
			Properties map[string]any `json:"properties"`
		} `json:"definitions"`
	}
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Equal(t, "/api/v1", doc.BasePath)
	for name, def := range doc.Definitions {
		assert.NotEmptyf(t, def.Properties, "%s has no properties", name)
	}
	assert.Contains(t, doc.Definitions["domain.SeriesRow"].Properties, "max_drawdown")
}

func TestDashboardRoutes(t *testing.T) {
	dashboards := &stubDashboards{}
	router := New(Services{Dashboard: dashboards})

	resp, body := doRequest(t, router, nethttp.MethodGet, "/api/v1/challenges/c1/dashboard", "")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var d domain.ChallengeDashboard
	require.NoError(t, json.Unmarshal(body, &d))
	assert.Equal(t, "live", d.Generation)

	resp, body = doRequest(t, router, nethttp.MethodGet, "/api/v1/challenges/c1/dashboard?cached=true", "")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &d))
	assert.Equal(t, "cached", d.Generation)
	assert.Equal(t, 1, dashboards.cachedCalls)

	resp, _ = doRequest(t, router, nethttp.MethodGet, "/api/v1/challenges/missing/dashboard", "")
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)

	resp, body = doRequest(t, router, nethttp.MethodGet, "/api/v1/dashboards", "")
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))
}

func TestDashboardIDsOutliveRequest(t *testing.T) {
	dashboards := &stubDashboards{}
	router := New(Services{Dashboard: dashboards})

	for _, id := range []string{"first-challenge", "second", "third-challenge-id"} {
		resp, _ := doRequest(t, router, nethttp.MethodGet, "/api/v1/challenges/"+id+"/dashboard", "")
		require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	}
	assert.Equal(t, []string{"first-challenge", "second", "third-challenge-id"}, dashboards.loadedIDs)
}

func TestMissingServiceIsUnavailable(t *testing.T) {
	router := New(Services{})
	for _, target := range []string{
		"/api/v1/challenges/c1/dashboard",
		"/api/v1/challenges/c1/chain",
		"/api/v1/rewards",
		"/api/v1/products",
		"/api/v1/users/u1/preferences",
	} {
		resp, _ := doRequest(t, router, nethttp.MethodGet, target, "")
		assert.Equalf(t, nethttp.StatusServiceUnavailable, resp.StatusCode, target)
	}
}

func TestResolveStageRoute(t *testing.T) {
	router := New(Services{})

	resp, body := doRequest(t, router, nethttp.MethodPost, "/api/v1/stages/resolve",
		`{"phase": "3", "stages": [{"name": "A", "profitTarget": 8}, {"name": "B", "profit_target": 5}]}`)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var out ResolveStageResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "A", out.Stage.Name)
	assert.Empty(t, out.Error)

	resp, body = doRequest(t, router, nethttp.MethodPost, "/api/v1/stages/resolve", `{"phase": "x", "stages": []}`)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	out = ResolveStageResponse{}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.True(t, out.Stage.IsDefault)
	assert.Equal(t, 10.0, out.Stage.MaximumTotalLoss)
	assert.NotEmpty(t, out.Error)
}

func TestNormalizeMetricsRoute(t *testing.T) {
	router := New(Services{})

	resp, body := doRequest(t, router, nethttp.MethodPost, "/api/v1/metrics/normalize",
		`{"metadata": "{\"metrics\": {\"trades\": 5, \"balance\": 10300}}", "initialBalance": 10000}`)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var out NormalizeMetricsResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, 5, out.Metrics.Trades)
	assert.InDelta(t, 300.0, out.Metrics.Profit, 1e-9)
	assert.Len(t, out.Metrics.EquityChart, 2)

	resp, _ = doRequest(t, router, nethttp.MethodPost, "/api/v1/metrics/normalize", `{"metadata": "{oops"}`)
	assert.Equal(t, nethttp.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = doRequest(t, router, nethttp.MethodPost, "/api/v1/metrics/normalize", `not json`)
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
}

func TestBuildSeriesRoute(t *testing.T) {
	router := New(Services{})

	resp, body := doRequest(t, router, nethttp.MethodPost, "/api/v1/series/build",
		`{"points": [{"brokerTime": "2024-05-02", "balance": 10100}, {"date": "2024-05-01", "balance": 10000}], "maxDrawdown": 9000, "profitTarget": 10800, "initialBalance": 10000}`)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(body, &rows))
	require.Len(t, rows, 6)
	assert.Equal(t, 10000.0, rows[0]["balance"])
	assert.Equal(t, 9000.0, rows[2]["max_drawdown"])
	assert.NotContains(t, rows[2], "balance")

	resp, body = doRequest(t, router, nethttp.MethodPost, "/api/v1/series/build", `{"points": []}`)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))
}

func TestRewardRoutes(t *testing.T) {
	router := New(Services{Rewards: stubRewards{}})

	resp, _ := doRequest(t, router, nethttp.MethodPost, "/api/v1/rewards", `{"name": "Bonus", "percentage": 10}`)
	assert.Equal(t, nethttp.StatusCreated, resp.StatusCode)

	resp, _ = doRequest(t, router, nethttp.MethodPost, "/api/v1/rewards", `{"name": ""}`)
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)

	resp, _ = doRequest(t, router, nethttp.MethodGet, "/api/v1/rewards/r9", "")
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)

	resp, _ = doRequest(t, router, nethttp.MethodDelete, "/api/v1/rewards/r1", "")
	assert.Equal(t, nethttp.StatusNoContent, resp.StatusCode)
}

func TestPreferencesRoutes(t *testing.T) {
	prefs := &stubPreferences{}
	router := New(Services{Preferences: prefs})

	resp, body := doRequest(t, router, nethttp.MethodPatch, "/api/v1/users/u1/preferences", `{"theme": "dark", "visibleWidgets": {"equity": true}}`)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	var out domain.UserPreferences
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, domain.ThemeDark, out.Theme)
	assert.True(t, out.VisibleWidgets["equity"])
	assert.Nil(t, prefs.lastPatch.HideBalances)
}

func TestListVariationsRejectsBadID(t *testing.T) {
	router := New(Services{Catalog: stubCatalog{}})
	resp, _ := doRequest(t, router, nethttp.MethodGet, "/api/v1/products/abc/variations", "")
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)

	resp, _ = doRequest(t, router, nethttp.MethodGet, "/api/v1/products?page=2&per_page=5", "")
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
}

type stubCatalog struct{}

func (stubCatalog) ListProducts(_ context.Context, page, perPage int) (domain.ProductPage, error) {
	return domain.ProductPage{Page: page, PerPage: perPage}, nil
}

func (stubCatalog) ListVariations(context.Context, int64) ([]domain.ProductVariation, error) {
	return nil, nil
}
