package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/mapserver/internal/mapstore"
)

// newTestServer loads tests/testdata/maps/warehouse.db into a Server.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "runtime.Caller failed to return file info")
	path := filepath.Join(filepath.Dir(filename), "..", "..", "tests", "testdata", "maps", "warehouse.db")

	m, _, err := mapstore.Load(path)
	require.NoError(t, err)
	return New(m, nil)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHandleMarking(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		target string
		status int
		want   MarkingResponse
	}{
		{name: "found", target: "/markings/2", status: http.StatusOK, want: MarkingResponse{ID: 2, X: 12, Y: 8, Found: true}},
		{name: "not found", target: "/markings/7", status: http.StatusNotFound, want: MarkingResponse{ID: 7, X: -1, Y: -1}},
		{name: "sentinel id", target: "/markings/-1", status: http.StatusNotFound, want: MarkingResponse{ID: -1, X: -1, Y: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, s, tt.target)
			require.Equal(t, tt.status, w.Code)

			var got MarkingResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandleMarking_InvalidID(t *testing.T) {
	w := get(t, newTestServer(t), "/markings/abc")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var got ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "invalid_parameter", got.Error)
}

func TestHandleForbidden(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name      string
		x, y      int
		forbidden bool
		polygon   *int
	}{
		{name: "open floor", x: 5, y: 5},
		{name: "outside hall", x: 50, y: 50, forbidden: true, polygon: intPtr(0)},
		{name: "loading dock", x: 33, y: 23, forbidden: true, polygon: intPtr(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, s, fmt.Sprintf("/forbidden?x=%d&y=%d", tt.x, tt.y))
			require.Equal(t, http.StatusOK, w.Code)

			var got ForbiddenResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, ForbiddenResponse{X: tt.x, Y: tt.y, Forbidden: tt.forbidden, Polygon: tt.polygon}, got)
		})
	}
}

func TestHandleForbidden_NullPolygon(t *testing.T) {
	w := get(t, newTestServer(t), "/forbidden?x=5&y=5")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"x":5,"y":5,"forbidden":false,"polygon":null}`, w.Body.String())
}

func TestHandleForbidden_BadParams(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		target string
		code   string
	}{
		{target: "/forbidden", code: "missing_parameter"},
		{target: "/forbidden?x=1", code: "missing_parameter"},
		{target: "/forbidden?x=&y=2", code: "missing_parameter"},
		{target: "/forbidden?x=1.5&y=2", code: "invalid_parameter"},
		{target: "/forbidden?x=1&y=north", code: "invalid_parameter"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := get(t, s, tt.target)
			require.Equal(t, http.StatusBadRequest, w.Code)

			var got ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, tt.code, got.Error)
		})
	}
}

func TestHandleMap(t *testing.T) {
	w := get(t, newTestServer(t), "/map")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/geo+json", w.Header().Get("Content-Type"))

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 4)
	assert.Equal(t, "allowed-inside", fc.Features[0].Properties["policy"])
	assert.Equal(t, "marking", fc.Features[3].Properties["kind"])
}

func TestHandleHealth(t *testing.T) {
	w := get(t, newTestServer(t), "/healthz")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","polygons":2,"invalidPolygons":0,"markings":2,"invalidMarkings":0}`, w.Body.String())
}

func TestMetricsRoute(t *testing.T) {
	s := newTestServer(t)
	get(t, s, "/markings/1")

	w := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `mapserver_queries_total{query="marking",result="found"}`)
}

func TestUnknownRoute(t *testing.T) {
	w := get(t, newTestServer(t), "/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestServe_GracefulShutdown starts a real listener, answers one request,
// then cancels the context and expects a clean return.
func TestServe_GracefulShutdown(t *testing.T) {
	s := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, ln, s, nil) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout):
		t.Fatal("server did not shut down")
	}
}

func TestRun_ListenError(t *testing.T) {
	err := Run(context.Background(), "not-an-address", http.NotFoundHandler(), nil)
	assert.Error(t, err)
}

func intPtr(v int) *int { return &v }
