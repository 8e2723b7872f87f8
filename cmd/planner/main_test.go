package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/demandplan/internal/config"
	"github.com/andresuchdata/demandplan/internal/domain"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		App:      config.AppConfig{DataDir: t.TempDir()},
		Planning: config.DefaultPlanningConfig(),
	}
}

func writeSales(t *testing.T, dir string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("date,sku,category,qty\n")
	for m := 1; m <= 12; m++ {
		fmt.Fprintf(&b, "2023-%02d-01,A,Gear,80\n", m)
		fmt.Fprintf(&b, "2023-%02d-01,B,Gear,20\n", m)
	}
	path := filepath.Join(dir, "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, cfg *config.Config, args ...string) *bytes.Buffer {
	t.Helper()
	app := newApp(cfg)
	out := &bytes.Buffer{}
	app.Writer = out
	require.NoError(t, app.Run(append([]string{"planner"}, args...)))
	return out
}

func TestAnalyzeCommand(t *testing.T) {
	dir := t.TempDir()
	sales := writeSales(t, dir)
	attrs := writeFile(t, dir, "attributes.csv", "sku,lead_time_days,unit_cost,selling_price,service_level\nA,20,10,25,95\nB,10,20,35,90\n")
	inv := writeFile(t, dir, "inventory.csv", "sku,on_hand\nA,500\nB,300\n")
	exportPath := filepath.Join(dir, "decisions.csv")

	out := run(t, testConfig(t), "analyze",
		"--sales", sales,
		"--attributes", attrs,
		"--inventory", inv,
		"--horizon", "2",
		"--scenario", "1:2",
		"--export", exportPath,
	)

	var result domain.AnalysisResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	require.Len(t, result.Points, 14)
	require.Equal(t, domain.PortfolioParameters{
		LeadTimeDays: 15,
		ServiceLevel: 0.925,
		UnitCost:     15,
		SellingPrice: 30,
		OnHand:       800,
	}, result.Parameters)
	require.InDelta(t, result.Points[12].Forecast*2, *result.Points[12].ScenarioForecast, 1e-9)

	csv, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	require.Len(t, strings.Split(strings.TrimSpace(string(csv)), "\n"), 15)
}

func TestAnalyzeCommandWithObjectStorage(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "inputs"), 0o755))
	writeSales(t, filepath.Join(root, "inputs"))
	downloads := t.TempDir()

	run(t, testConfig(t),
		"--storage-local-dir", root,
		"--download-dir", downloads,
		"analyze",
		"--source-prefix", "inputs",
		"--sales", "sales.csv",
		"--horizon", "3",
		"--upload-key", "decisions.csv",
	)

	_, err := os.Stat(filepath.Join(downloads, "sales.csv"))
	require.NoError(t, err)

	uploaded, err := os.ReadFile(filepath.Join(root, "decisions.csv"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(uploaded), "date,historical,forecast"))
}

func TestParetoCommand(t *testing.T) {
	sales := writeSales(t, t.TempDir())

	out := run(t, testConfig(t), "pareto", "--sales", sales, "--sku", "B")

	var results []domain.ParetoResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	require.Len(t, results, 2)
	require.Equal(t, "A", results[0].SKU)
	require.Equal(t, domain.GradeA, results[0].Grade)
	require.Equal(t, domain.GradeC, results[1].Grade)
}

func TestBacktestCommand(t *testing.T) {
	sales := writeSales(t, t.TempDir())

	out := run(t, testConfig(t), "backtest", "--sales", sales, "--holdout", "3")

	var results []domain.MethodAccuracy
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	require.Len(t, results, 4)
	require.Len(t, results[0].Actual, 3)
}

func TestBySKUCommand(t *testing.T) {
	sales := writeSales(t, t.TempDir())

	out := run(t, testConfig(t), "by-sku", "--sales", sales, "--horizon", "1")

	var results []domain.SKUAnalysis
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	require.Len(t, results, 2)
	require.Equal(t, "A", results[0].SKU)
	require.Equal(t, 80, results[0].Result.Series[0].Quantity)
}

func TestParseScenarios(t *testing.T) {
	scenarios, err := parseScenarios([]string{"1:1.5", " 3 : 0.8 "})
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	require.Equal(t, 3, scenarios[1].Month)
	require.Equal(t, 0.8, scenarios[1].Multiplier)
	require.NotEmpty(t, scenarios[0].ID)

	for _, bad := range [][]string{{"1"}, {"x:2"}, {"1:y"}, {"2:0"}, {"1:2", "1:3"}} {
		_, err := parseScenarios(bad)
		require.ErrorIs(t, err, domain.ErrInvalidScenario, bad)
	}
}

func TestResolveObjectKey(t *testing.T) {
	require.Equal(t, "inputs/sales.csv", resolveObjectKey("inputs", "sales.csv"))
	require.Equal(t, "inputs/sales.csv", resolveObjectKey("inputs/", "/inputs/sales.csv"))
	require.Equal(t, "sales.csv", resolveObjectKey("", "/sales.csv"))
	require.Equal(t, "sales.csv", objectRelativePath("inputs", "inputs/sales.csv"))
	require.Equal(t, "inputs/sales.csv", objectRelativePath("", "inputs/sales.csv"))
}
