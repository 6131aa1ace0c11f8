package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/roomfit/internal/model"
)

const kitchenJSON = `{
  "boundary": [[0, 0], [4000, 0], [4000, 3000], [0, 3000]],
  "door": [[1500, 0], [2300, 0]],
  "isOpenInward": true,
  "algoToPlace": {
    "shelf1": [500, 300],
    "fridge1": [800, 700],
    "overShelf1": [600, 300],
    "iceMaker1": [400, 400]
  }
}`

const tooBigJSON = `{
  "boundary": [[0, 0], [4000, 0], [4000, 3000], [0, 3000]],
  "algoToPlace": {"fridge1": [800, 700], "shelfHuge": [9000, 300]}
}`

func newTestServer() *Server {
	return New(model.DefaultSettings(), nil)
}

func do(t *testing.T, s *Server, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

// solveResponse mirrors SolveResponse with placements left raw, since a
// decoded placement only carries the item name.
type solveResponse struct {
	RunID    string `json:"runId"`
	Scenario string `json:"scenario"`
	Result   struct {
		Feasible   bool              `json:"feasible"`
		Placements []json.RawMessage `json:"placements"`
		Message    string            `json:"message"`
		FailedItem string            `json:"failedItem"`
	} `json:"result"`
}

// ─── Health & Metrics Tests ────────────────────────────────

func TestHealthz(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer()
	do(t, s, http.MethodPost, "/v1/solve", strings.NewReader(kitchenJSON))

	rec := do(t, s, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "roomfit_solves_total")
	assert.Contains(t, rec.Body.String(), "roomfit_items_placed_total 4")
}

// ─── Solve Tests ───────────────────────────────────────────

func TestSolve_Feasible(t *testing.T) {
	s := newTestServer()
	rec := do(t, s, http.MethodPost, "/v1/solve?name=kitchen", strings.NewReader(kitchenJSON))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp solveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.RunID, 8)
	assert.Equal(t, "kitchen", resp.Scenario)
	assert.True(t, resp.Result.Feasible)
	assert.Len(t, resp.Result.Placements, 4)
	assert.Empty(t, resp.Result.Message)

	var first struct {
		Item     string     `json:"item"`
		Center   [2]float64 `json:"center"`
		Rotation int        `json:"rotation"`
	}
	require.NoError(t, json.Unmarshal(resp.Result.Placements[0], &first))
	assert.Equal(t, "fridge1", first.Item)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.solves.WithLabelValues(endpointSolve, outcomeFeasible)))
	assert.Equal(t, 4.0, testutil.ToFloat64(s.metrics.itemsPlaced))
}

func TestSolve_InfeasibleIsOK(t *testing.T) {
	s := newTestServer()
	rec := do(t, s, http.MethodPost, "/v1/solve", strings.NewReader(tooBigJSON))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp solveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Result.Feasible)
	assert.Equal(t, "cannot place item: shelfHuge", resp.Result.Message)
	assert.Equal(t, "shelfHuge", resp.Result.FailedItem)
	assert.Len(t, resp.Result.Placements, 1)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.solves.WithLabelValues(endpointSolve, outcomeInfeasible)))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.itemsFailed.WithLabelValues("shelf")))
}

func TestSolve_InvalidScenario(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed", "{"},
		{"short boundary", `{"boundary": [[0,0],[1,0]], "algoToPlace": {}}`},
		{"bad dimension", `{"boundary": [[0,0],[1,0],[1,1]], "algoToPlace": {"shelf1": [0, 1]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			rec := do(t, s, http.MethodPost, "/v1/solve", strings.NewReader(tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "invalid scenario")
			assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.solves.WithLabelValues(endpointSolve, outcomeInvalid)))
		})
	}
}

func TestSolve_RoomTooLarge(t *testing.T) {
	body := `{"boundary": [[0,0],[1e8,0],[1e8,1e8],[0,1e8]], "algoToPlace": {"shelf1": [500, 300]}}`
	for _, endpoint := range []string{endpointSolve, endpointCompare} {
		s := newTestServer()
		rec := do(t, s, http.MethodPost, "/v1/"+endpoint, strings.NewReader(body))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, endpoint)
		assert.Contains(t, rec.Body.String(), "room too large")
		assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.solves.WithLabelValues(endpoint, outcomeInvalid)), endpoint)
	}
}

func TestSolve_BodyTooLarge(t *testing.T) {
	body := bytes.Repeat([]byte(" "), MaxBodyBytes+1)
	rec := do(t, newTestServer(), http.MethodPost, "/v1/solve", bytes.NewReader(body))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestSolve_GeoJSON(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodPost, "/v1/solve?format=geojson", strings.NewReader(kitchenJSON))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))

	fc, err := geojson.UnmarshalFeatureCollection(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Len(t, fc.Features, 8)
}

func TestSolve_UnknownFormat(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodPost, "/v1/solve?format=svg", strings.NewReader(kitchenJSON))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSolve_CancelledRequest(t *testing.T) {
	s := newTestServer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodPost, "/v1/solve", strings.NewReader(kitchenJSON)).WithContext(ctx)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.solves.WithLabelValues(endpointSolve, outcomeCancelled)))
}

// ─── Compare Tests ─────────────────────────────────────────

func TestCompare(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodPost, "/v1/compare", strings.NewReader(kitchenJSON))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CompareResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Variants, 4)
	assert.Equal(t, "Current Settings", resp.Variants[0].Name)
	assert.True(t, resp.Variants[0].Feasible)
	assert.Equal(t, 4, resp.Variants[0].Placed)
	assert.Equal(t, "Opposite Door Swing", resp.Variants[1].Name)
}

// ─── Run Tests ─────────────────────────────────────────────

func TestRun_ShutsDownOnCancel(t *testing.T) {
	s := newTestServer()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
