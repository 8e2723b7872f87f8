package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/demandplan/internal/config"
	"github.com/andresuchdata/demandplan/internal/domain"
	"github.com/andresuchdata/demandplan/internal/service"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewPlanningService(config.DefaultPlanningConfig(), nil)
	return NewRouter(&Services{PlanningService: svc}, []string{"*"})
}

func observationsJSON() string {
	rows := make([]string, 0, 24)
	for m := 1; m <= 12; m++ {
		rows = append(rows,
			fmt.Sprintf(`{"date":"2023-%02d-01T00:00:00Z","sku":"A","category":"Gear","quantity":80}`, m),
			fmt.Sprintf(`{"date":"2023-%02d-01T00:00:00Z","sku":"B","category":"Gear","quantity":20}`, m),
		)
	}
	return "[" + strings.Join(rows, ",") + "]"
}

func post(t *testing.T, router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router := newTestRouter()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAnalyzeEndpoint(t *testing.T) {
	router := newTestRouter()
	body := `{"observations":` + observationsJSON() + `,"horizon":3,"scenarios":[{"name":"promo","month":1,"multiplier":1.5}]}`

	rec := post(t, router, "/api/v1/planning/analyze", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result domain.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, domain.MethodHoltWinters, result.Method)
	require.Len(t, result.Points, 15)
	require.NotNil(t, result.Points[12].ScenarioForecast)
	require.InDelta(t, result.Points[12].Forecast*1.5, *result.Points[12].ScenarioForecast, 1e-9)
	require.Equal(t, []string{"A"}, result.Summary.TopASKUs)
}

func TestAnalyzeEndpointRejectsBadInput(t *testing.T) {
	router := newTestRouter()

	rec := post(t, router, "/api/v1/planning/analyze", `{"observations":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, router, "/api/v1/planning/analyze", `{"observations":[],"method":"neural"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "unknown forecast method")

	rec = post(t, router, "/api/v1/planning/analyze", `{"observations":[],"scenarios":[{"month":2,"multiplier":0}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid scenario")
}

func TestAnalyzeBySKUEndpoint(t *testing.T) {
	router := newTestRouter()

	rec := post(t, router, "/api/v1/planning/analyze/by-sku", `{"observations":`+observationsJSON()+`}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Items []domain.SKUAnalysis `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 2)
	require.Equal(t, "A", resp.Items[0].SKU)
	require.Equal(t, "B", resp.Items[1].SKU)
	require.Equal(t, 20, resp.Items[1].Result.Series[0].Quantity)
}

func TestForecastEndpoint(t *testing.T) {
	router := newTestRouter()
	body := `{"series":[
		{"date":"2023-01-01T00:00:00Z","quantity":200},
		{"date":"2023-02-01T00:00:00Z","quantity":210},
		{"date":"2023-03-01T00:00:00Z","quantity":220}
	],"horizon":2,"method":"linear_regression"}`

	rec := post(t, router, "/api/v1/planning/forecast", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Points []domain.ForecastPoint `json:"points"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Points, 5)
	require.InDelta(t, 230, resp.Points[3].Forecast, 1e-9)
	require.True(t, resp.Points[3].IsForecast)
}

func TestBacktestEndpoint(t *testing.T) {
	router := newTestRouter()
	body := `{"series":[
		{"date":"2023-01-01T00:00:00Z","quantity":200},
		{"date":"2023-02-01T00:00:00Z","quantity":210},
		{"date":"2023-03-01T00:00:00Z","quantity":220},
		{"date":"2023-04-01T00:00:00Z","quantity":230},
		{"date":"2023-05-01T00:00:00Z","quantity":240}
	],"holdout_periods":2}`

	rec := post(t, router, "/api/v1/planning/backtest", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Methods []domain.MethodAccuracy `json:"methods"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Methods, 4)
	require.Equal(t, domain.MethodLinearRegression, resp.Methods[0].Method)
}

func TestParetoEndpoint(t *testing.T) {
	router := newTestRouter()

	rec := post(t, router, "/api/v1/planning/pareto", `[
		{"sku":"small","total_volume":50},
		{"sku":"big","total_volume":700},
		{"sku":"mid","total_volume":250}
	]`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var results []domain.ParetoResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 3)
	require.Equal(t, "big", results[0].SKU)
	require.Equal(t, domain.GradeA, results[0].Grade)
	require.Equal(t, domain.GradeB, results[1].Grade)
	require.Equal(t, domain.GradeC, results[2].Grade)

	rec = post(t, router, "/api/v1/planning/pareto", `{"sku":"x"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportEndpoint(t *testing.T) {
	router := newTestRouter()

	rec := post(t, router, "/api/v1/planning/export", `{"observations":`+observationsJSON()+`,"horizon":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "decision_points.csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 15)
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, allowAll := normalizeAllowedOrigins([]string{"http://a.test, http://b.test", " "})
	require.False(t, allowAll)
	require.Equal(t, []string{"http://a.test", "http://b.test"}, origins)

	_, allowAll = normalizeAllowedOrigins([]string{"*"})
	require.True(t, allowAll)
}

type countingCache struct {
	invalidations int
}

func (c *countingCache) Get(ctx context.Context, key string) (*domain.AnalysisResult, bool, error) {
	return nil, false, nil
}

func (c *countingCache) Set(ctx context.Context, key string, result *domain.AnalysisResult) error {
	return nil
}

func (c *countingCache) InvalidateAll(ctx context.Context) error {
	c.invalidations++
	return nil
}

func TestClearCacheEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c := &countingCache{}
	router := NewRouter(&Services{PlanningService: service.NewPlanningService(config.DefaultPlanningConfig(), c)}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/planning/cache", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"cleared"}`, rec.Body.String())
	require.Equal(t, 1, c.invalidations)
}
