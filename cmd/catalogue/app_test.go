package main

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"transitcatalogue.org/internal/appconf"
)

const testDocument = `{
  "base_requests": [
    {"type": "Stop", "name": "A", "latitude": 55.60, "longitude": 37.60, "road_distances": {"B": 1000}},
    {"type": "Stop", "name": "B", "latitude": 55.61, "longitude": 37.61, "road_distances": {"C": 2000}},
    {"type": "Stop", "name": "C", "latitude": 55.62, "longitude": 37.62},
    {"type": "Stop", "name": "Depot", "latitude": 55.60, "longitude": 37.601},
    {"type": "Bus", "name": "1", "stops": ["A", "B", "A"], "is_roundtrip": true},
    {"type": "Bus", "name": "2", "stops": ["B", "C"], "is_roundtrip": false}
  ],
  "routing_settings": {"bus_wait_time": 6, "bus_velocity": 60},
  "stat_requests": [
    {"id": 10, "type": "Bus", "name": "1"},
    {"id": 11, "type": "Stop", "name": "Depot"},
    {"id": 12, "type": "Route", "from": "A", "to": "B"},
    {"id": 13, "type": "Route", "from": "A", "to": "Depot"},
    {"id": 14, "type": "Bus", "name": "404"}
  ]
}`

const testText = `3
Stop A: 55.60, 37.60, 1000m to B
Stop B: 55.61, 37.61
Bus 1: A - B
2
Bus 1
Stop B
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CATALOGUE_ENV", "test")

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBuildApplication(t *testing.T) {
	cfg := appconf.Default()
	cfg.Env = appconf.Test
	var logs bytes.Buffer

	coreApp := BuildApplication(cfg, &logs)

	require.NotNil(t, coreApp, "Application should not be nil")
	assert.NotNil(t, coreApp.Logger, "Logger should be initialized")
	assert.NotNil(t, coreApp.Metrics, "Metrics should be initialized")
	assert.Equal(t, cfg, coreApp.Config, "Config should match input")

	coreApp.Logger.Info("hello")
	assert.Contains(t, logs.String(), "run_id=")
}

func TestProcess_JSON(t *testing.T) {
	path := writeFile(t, "input.json", testDocument)

	out, err := run(t, "process", path)
	require.NoError(t, err)

	var responses []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &responses))
	require.Len(t, responses, 5)

	assert.Equal(t, 10.0, responses[0]["request_id"])
	assert.Equal(t, 3.0, responses[0]["stop_count"])
	assert.Equal(t, 2000.0, responses[0]["route_length"])

	assert.Equal(t, []any{}, responses[1]["buses"])

	assert.InDelta(t, 7.0, responses[2]["total_time"], 1e-9)
	items := responses[2]["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "Wait", items[0].(map[string]any)["type"])
	assert.Equal(t, "Bus", items[1].(map[string]any)["type"])

	assert.Equal(t, "not found", responses[3]["error_message"])
	assert.Equal(t, "not found", responses[4]["error_message"])
}

func TestProcess_GzipInputAndMetrics(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(testDocument))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	path := writeFile(t, "input.json.gz", buf.String())
	metricsPath := filepath.Join(t.TempDir(), "catalogue.prom")

	out, err := run(t, "process", "--workers", "2", "--metrics-file", metricsPath, path)
	require.NoError(t, err)
	assert.Contains(t, out, `"request_id": 12`)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `catalogue_stat_requests_total{outcome="found",type="Route"} 1`)
	assert.Contains(t, string(data), "catalogue_graph_vertices 8")
}

func TestProcess_Text(t *testing.T) {
	path := writeFile(t, "input.txt", testText)

	out, err := run(t, "process", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Bus 1: 3 stops on route, 2 unique stops, 2000 route length, "))
	assert.Equal(t, "Stop B: buses 1", lines[1])
}

func TestProcess_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"process", filepath.Join(t.TempDir(), "missing.json")}},
		{"bad format", []string{"process", "--format", "xml", writeFile(t, "a.json", testDocument)}},
		{"json flag on text", []string{"process", "--format", "json", writeFile(t, "a.txt", testText)}},
		{"gtfs feed", []string{"process", "feed.zip"}},
		{"broken document", []string{"process", writeFile(t, "broken.json", `{"base_requests": [`)}},
		{"unknown stop in bus", []string{"process", writeFile(t, "bad.json",
			`{"base_requests": [{"type": "Bus", "name": "1", "stops": ["Ghost"]}], "stat_requests": []}`)}},
		{"bad routing settings", []string{"process", writeFile(t, "slow.json",
			`{"base_requests": [], "routing_settings": {"bus_wait_time": 6, "bus_velocity": 0}, "stat_requests": []}`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestRoute(t *testing.T) {
	path := writeFile(t, "input.json", testDocument)

	out, err := run(t, "route", "--network", path, "--from", "A", "--to", "C")
	require.NoError(t, err)

	assert.Contains(t, out, "A → C")
	assert.Contains(t, out, "Wait at A")
	assert.Contains(t, out, "Bus 1")
	assert.Contains(t, out, "Wait at B")
	assert.Contains(t, out, "Bus 2")
	assert.Contains(t, out, "15.00 min")
}

func TestRoute_NoRouteAndUnknownStop(t *testing.T) {
	path := writeFile(t, "input.json", testDocument)

	out, err := run(t, "route", "--network", path, "--from", "A", "--to", "Depot")
	require.NoError(t, err)
	assert.Contains(t, out, "No route from A to Depot")

	out, err = run(t, "route", "--network", path, "--from", "A", "--to", "Nowhere")
	require.NoError(t, err)
	assert.Contains(t, out, `Unknown stop "Nowhere"`)
}

func TestRoute_RequiresFlags(t *testing.T) {
	_, err := run(t, "route", "--from", "A", "--to", "B")
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	path := writeFile(t, "input.json", testDocument)

	out, err := run(t, "stats", "--network", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Curvature")
	assert.Contains(t, out, "2000")
	// Bus 2 is linear: B->C and back, the return falling back to 2000 m.
	assert.Contains(t, out, "4000")

	out, err = run(t, "stats", "--network", path, "404")
	require.NoError(t, err)
	assert.Contains(t, out, "not found")
}

func TestNearby(t *testing.T) {
	path := writeFile(t, "input.json", testDocument)

	out, err := run(t, "nearby", "--network", path, "--lat", "55.60", "--lng", "37.60", "--radius", "200")
	require.NoError(t, err)
	assert.Contains(t, out, "Depot")
	assert.Contains(t, out, "A")

	out, err = run(t, "nearby", "--network", path, "--lat", "0", "--lng", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "No stops nearby")
}

func TestDump(t *testing.T) {
	path := writeFile(t, "input.txt", testText)

	out, err := run(t, "dump", "--network", path)
	require.NoError(t, err)
	assert.Contains(t, out, "catalogue.Stop")
	assert.Contains(t, out, `"A"`)
	assert.Contains(t, out, "IsCircular: (bool) false")
}

func TestConfigFile(t *testing.T) {
	configPath := writeFile(t, "config.yaml", "routing:\n  bus_wait_time: 1\n  bus_velocity: 60\nroute_cache_size: 0\n")
	doc := strings.Replace(testDocument, `"routing_settings": {"bus_wait_time": 6, "bus_velocity": 60},`, "", 1)
	path := writeFile(t, "input.json", doc)

	out, err := run(t, "--config", configPath, "route", "--network", path, "--from", "A", "--to", "B")
	require.NoError(t, err)
	// 1 minute wait plus 1000 m at 1000 m/min.
	assert.Contains(t, out, "2.00 min")
}

func TestConfigFile_Invalid(t *testing.T) {
	configPath := writeFile(t, "config.yaml", "workers: -1\n")

	_, err := run(t, "--config", configPath, "stats", "--network", writeFile(t, "a.json", testDocument))
	assert.Error(t, err)
}
