package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trafficledger/internal/catalog"
	"trafficledger/internal/logging"
	"trafficledger/internal/observability"
	"trafficledger/internal/session"
	"trafficledger/internal/storage"
)

const speedingSentence = "A 30-year-old male driver was stopped for Speeding at 12:01 AM. A search was conducted, and they received a warning. The stop lasted 0-15 Min and was not drug-related."

func testStops() []storage.Stop {
	base := time.Date(2020, 1, 1, 0, 1, 0, 0, time.UTC)
	return []storage.Stop{
		{
			Timestamp:        storage.Timestamp(base),
			CountryName:      storage.String("IN"),
			DriverGender:     storage.String("M"),
			DriverAge:        storage.Int(30),
			DriverRace:       storage.String("Asian"),
			ViolationRaw:     storage.String("Speeding"),
			Violation:        storage.String("Speeding"),
			SearchConducted:  storage.Bool(true),
			IsArrested:       storage.Bool(false),
			StopOutcome:      storage.String("Warning"),
			StopDuration:     storage.String("0-15 Min"),
			DrugsRelatedStop: storage.Bool(false),
			VehicleNumber:    storage.String("V1"),
		},
		{
			Timestamp:        storage.Timestamp(base.Add(14 * time.Hour)),
			CountryName:      storage.String("US"),
			DriverGender:     storage.String("F"),
			DriverAge:        storage.Int(41),
			DriverRace:       storage.String("White"),
			ViolationRaw:     storage.String("DUI"),
			Violation:        storage.String("DUI"),
			SearchConducted:  storage.Bool(true),
			IsArrested:       storage.Bool(true),
			StopOutcome:      storage.String("Arrest"),
			StopDuration:     storage.String("30+ Min"),
			DrugsRelatedStop: storage.Bool(true),
			VehicleNumber:    storage.String("V2"),
		},
	}
}

type testEnv struct {
	server   *httptest.Server
	client   *http.Client
	registry *prometheus.Registry
}

func newTestEnv(t *testing.T, stops []storage.Stop, withSchema bool) *testEnv {
	t.Helper()
	ctx := context.Background()

	store, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	if withSchema {
		require.NoError(t, store.InitSchema(ctx))
		_, err = store.InsertStops(ctx, stops)
		require.NoError(t, err)
	}

	registry := prometheus.NewRegistry()
	metrics := observability.New(registry)
	logger := logging.Discard()
	runner, err := catalog.NewRunner(store, catalog.WithLogger(logger), catalog.WithMetrics(metrics))
	require.NoError(t, err)

	srv, err := NewServer(storage.NewSnapshot(stops), runner, session.NewMemoryStore(time.Hour), logger, metrics)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Routes(registry))
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := ts.Client()
	client.Jar = jar

	return &testEnv{server: ts, client: client, registry: registry}
}

func (e *testEnv) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := e.client.Get(e.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func (e *testEnv) postForm(t *testing.T, path string, form url.Values) (int, string) {
	t.Helper()
	resp, err := e.client.PostForm(e.server.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func (e *testEnv) postJSON(t *testing.T, path string, payload any) (int, map[string]any) {
	t.Helper()
	var body io.Reader = http.NoBody
	if payload != nil {
		encoded, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(encoded)
	}
	resp, err := e.client.Post(e.server.URL+path, "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()
	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func TestHomeShowsMetrics(t *testing.T) {
	env := newTestEnv(t, testStops(), true)

	status, body := env.get(t, "/")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Key Metrics")
	assert.Contains(t, body, `id="total-stops">2<`)
	assert.Contains(t, body, `id="total-arrests">1<`)
	assert.Contains(t, body, `id="total-warnings">1<`)
}

func TestHomeHidesMetricsForEmptyStore(t *testing.T) {
	env := newTestEnv(t, nil, true)

	status, body := env.get(t, "/")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "About This Dashboard")
	assert.NotContains(t, body, "Key Metrics")
	assert.NotContains(t, body, "total-stops")
}

func TestSummaryForm(t *testing.T) {
	env := newTestEnv(t, testStops(), true)

	status, body := env.get(t, "/summary")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `<option value="IN" >IN</option>`)
	assert.Contains(t, body, `<option value="US" >US</option>`)
	assert.NotContains(t, body, `id="notice"`)

	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{
			name: "match",
			form: url.Values{"country": {"IN"}, "gender": {"M"}, "age": {"30"}, "date": {"2020-01-01"}, "time": {"00:01:00"}},
			want: speedingSentence,
		},
		{
			name: "no match",
			form: url.Values{"country": {"IN"}, "gender": {"F"}, "age": {"30"}, "date": {"2020-01-01"}, "time": {"00:01:00"}},
			want: "No matching record found for the given details.",
		},
		{
			name: "missing field",
			form: url.Values{"country": {"IN"}, "gender": {"M"}, "age": {"30"}, "date": {"2020-01-01"}},
			want: "Please fill in all fields before submitting.",
		},
		{
			name: "bad age",
			form: url.Values{"country": {"IN"}, "gender": {"M"}, "age": {"abc"}, "date": {"2020-01-01"}, "time": {"00:01:00"}},
			want: "Invalid input format: age:",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.postForm(t, "/summary", tt.form)
			require.Equal(t, http.StatusOK, status)
			assert.Contains(t, body, tt.want)
		})
	}
}

func TestQueriesSessionFlow(t *testing.T) {
	env := newTestEnv(t, testStops(), true)

	status, body := env.get(t, "/queries")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `<option value="0" selected>1. What are the top 10 vehicle_Number involved in drug-related stops?</option>`)
	assert.NotContains(t, body, `id="query-result"`)

	// Question 1 lists drug-related vehicles.
	status, body = env.postForm(t, "/queries/run", url.Values{"question": {"0"}})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `id="query-result"`)
	assert.Contains(t, body, "<td>V2</td>")

	// The result survives a reload of the same question.
	_, body = env.get(t, "/queries")
	assert.Contains(t, body, "<td>V2</td>")

	// Switching question clears the stale answer.
	status, body = env.postForm(t, "/queries/select", url.Values{"question": {"9"}})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `<option value="9" selected>`)
	assert.NotContains(t, body, `id="query-result"`)

	// Question 10 has no drivers under 25 in this data.
	_, body = env.postForm(t, "/queries/run", url.Values{"question": {"9"}})
	assert.Contains(t, body, "No results found for the selected query.")
	assert.NotContains(t, body, `id="query-result"`)
}

func TestQueriesRejectUnknownQuestion(t *testing.T) {
	env := newTestEnv(t, testStops(), true)

	_, body := env.postForm(t, "/queries/run", url.Values{"question": {"42"}})
	assert.Contains(t, body, "unknown question")

	_, body = env.postForm(t, "/queries/select", url.Values{"question": {"two"}})
	assert.Contains(t, body, "invalid question")
}

func TestQueriesShowEngineErrors(t *testing.T) {
	env := newTestEnv(t, nil, false)

	_, body := env.postForm(t, "/queries/run", url.Values{"question": {"3"}})
	assert.Contains(t, body, "Error running query: question 4:")
	assert.Contains(t, body, "no such table")
	assert.NotContains(t, body, `id="query-result"`)
}

func TestAPIMetrics(t *testing.T) {
	env := newTestEnv(t, testStops(), true)
	status, body := env.get(t, "/api/metrics")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"empty":false,"total_stops":2,"total_arrests":1,"total_warnings":1}`, body)

	empty := newTestEnv(t, nil, true)
	_, body = empty.get(t, "/api/metrics")
	assert.JSONEq(t, `{"empty":true}`, body)
}

func TestAPIQuestions(t *testing.T) {
	env := newTestEnv(t, nil, true)

	status, body := env.get(t, "/api/questions")
	require.Equal(t, http.StatusOK, status)
	var questions []questionResponse
	require.NoError(t, json.Unmarshal([]byte(body), &questions))
	require.Len(t, questions, catalog.Len())
	assert.Equal(t, 20, questions[19].Number)
	assert.Equal(t, "Top 5 Violations with Highest Arrest Rates?", questions[19].Label)
}

func TestAPISummary(t *testing.T) {
	env := newTestEnv(t, testStops(), true)

	status, got := env.postJSON(t, "/api/summary", map[string]string{
		"country": "IN", "gender": "M", "age": "30", "date": "2020-01-01", "time": "00:01:00",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, got["found"])
	assert.Equal(t, speedingSentence, got["summary"])

	status, got = env.postJSON(t, "/api/summary", map[string]string{
		"country": "IN", "gender": "M", "age": "31", "date": "2020-01-01", "time": "00:01:00",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, got["found"])

	status, got = env.postJSON(t, "/api/summary", map[string]string{
		"country": "IN", "gender": "M", "age": "abc", "date": "2020-01-01", "time": "00:01:00",
	})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, got["error"], "age")
}

func TestAPIQuery(t *testing.T) {
	env := newTestEnv(t, testStops(), true)

	status, got := env.postJSON(t, "/api/queries/3", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Which driver age group had the highest arrest rate?", got["question"])
	assert.Equal(t, []any{"driver_age", "arrest_rate"}, got["columns"])
	rows, ok := got["rows"].([]any)
	require.True(t, ok)
	require.Len(t, rows, 1)
	assert.Equal(t, map[string]any{"driver_age": float64(41), "arrest_rate": float64(100)}, rows[0])

	status, got = env.postJSON(t, "/api/queries/21", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, catalog.ErrUnknownQuestion.Error(), got["error"])

	status, _ = env.postJSON(t, "/api/queries/x", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestOperationalEndpoints(t *testing.T) {
	env := newTestEnv(t, testStops(), true)

	status, body := env.get(t, "/healthz")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body)

	env.postJSON(t, "/api/queries/1", nil)
	status, body = env.get(t, "/metrics")
	require.Equal(t, http.StatusOK, status)
	assert.True(t, strings.Contains(body, `trafficledger_query_runs_total{outcome="ok",question="1"} 1`), body)
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "None"},
		{"IN", "IN"},
		{int64(12), "12"},
		{33.33, "33.33"},
		{float64(7), "7"},
		{true, "true"},
		{[]byte("V1"), "V1"},
		{json.Number("9007199254740993"), "9007199254740993"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.in))
	}
}
