package mapstore

import (
	"errors"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/mapserver/internal/mapfile"
	"github.com/mmr-tortoise/mapserver/internal/model"
)

// fixturePath returns the absolute path to a map fixture in
// tests/testdata/maps, located relative to this test file.
func fixturePath(t *testing.T, name string) string {
	t.Helper()

	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "runtime.Caller failed to return file info")

	return filepath.Join(filepath.Dir(filename), "..", "..", "tests", "testdata", "maps", name)
}

func loadFixture(t *testing.T, name string) *Map {
	t.Helper()
	m, _, err := Load(fixturePath(t, name))
	require.NoError(t, err)
	return m
}

func square(allowedInside bool, x0, y0, size int) model.Polygon {
	return model.Polygon{
		Nodes: []model.Node{
			{ID: 0, X: x0, Y: y0},
			{ID: 1, X: x0 + size, Y: y0},
			{ID: 2, X: x0 + size, Y: y0 + size},
			{ID: 3, X: x0, Y: y0 + size},
		},
		NodeCount:     4,
		AllowedInside: allowedInside,
		Status:        model.StatusValid,
	}
}

// --- Marking lookup ---

func TestMarkingPosition_Fixtures(t *testing.T) {
	tests := []struct {
		name    string
		fixture string
		id      int
		wantX   int
		wantY   int
	}{
		{name: "good marking", fixture: "marking.db", id: 1, wantX: 5, wantY: 5},
		{name: "unknown id", fixture: "marking.db", id: 2, wantX: -1, wantY: -1},
		{name: "bad terminator is never found", fixture: "badMarking.db", id: 1, wantX: -1, wantY: -1},
		{name: "second of two", fixture: "twoDifferent.db", id: 2, wantX: 10, wantY: 10},
		{name: "first of two", fixture: "twoDifferent.db", id: 1, wantX: 5, wantY: 5},
		{name: "identical pair", fixture: "twoIdentical.db", id: 1, wantX: 5, wantY: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := loadFixture(t, tt.fixture)
			x, y := m.MarkingPosition(tt.id)
			assert.Equal(t, tt.wantX, x)
			assert.Equal(t, tt.wantY, y)
		})
	}
}

func TestLookupMarking(t *testing.T) {
	m := New(nil, []model.Marking{
		model.InvalidMarking(),
		{ID: 1, X: 5, Y: 5, Status: model.StatusValid},
		{ID: 1, X: 9, Y: 9, Status: model.StatusValid},
		{ID: 0, X: 0, Y: 0, Status: model.StatusValid},
	})

	p, ok := m.LookupMarking(1)
	require.True(t, ok)
	assert.Equal(t, model.Point{X: 5, Y: 5}, p, "first match wins")

	p, ok = m.LookupMarking(0)
	require.True(t, ok)
	assert.Equal(t, model.Point{}, p, "id 0 at the origin is a real marking")

	_, ok = m.LookupMarking(-1)
	assert.False(t, ok, "the sentinel never matches")

	_, ok = m.LookupMarking(42)
	assert.False(t, ok)
}

// --- Forbidden-zone resolution ---

func TestIsForbidden_Warehouse(t *testing.T) {
	m := loadFixture(t, "warehouse.db")

	tests := []struct {
		name      string
		x, y      int
		forbidden bool
		polygon   int
	}{
		{name: "open floor", x: 5, y: 5, forbidden: false, polygon: -1},
		{name: "outside the hall", x: 50, y: 50, forbidden: true, polygon: 0},
		{name: "inside the dock", x: 33, y: 23, forbidden: true, polygon: 1},
		{name: "hall corner", x: 40, y: 30, forbidden: false, polygon: -1},
		{name: "hall right wall", x: 40, y: 15, forbidden: true, polygon: 0},
		{name: "dock corner", x: 30, y: 20, forbidden: true, polygon: 1},
		{name: "next to the dock", x: 29, y: 23, forbidden: false, polygon: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.forbidden, m.IsForbidden(tt.x, tt.y))
			idx, ok := m.ForbiddingPolygon(tt.x, tt.y)
			assert.Equal(t, tt.forbidden, ok)
			assert.Equal(t, tt.polygon, idx)
		})
	}
}

func TestIsForbidden_Policies(t *testing.T) {
	allowedInside := New([]model.Polygon{square(true, 0, 0, 4)}, nil)
	assert.False(t, allowedInside.IsForbidden(2, 2))
	assert.True(t, allowedInside.IsForbidden(6, 6))

	forbiddenZone := New([]model.Polygon{square(false, 0, 0, 4)}, nil)
	assert.True(t, forbiddenZone.IsForbidden(2, 2))
	assert.False(t, forbiddenZone.IsForbidden(6, 6))
}

func TestIsForbidden_EmptyAndInvalid(t *testing.T) {
	assert.False(t, New(nil, nil).IsForbidden(0, 0), "no polygons, nothing forbidden")

	m := New([]model.Polygon{model.InvalidPolygon()}, nil)
	assert.False(t, m.IsForbidden(0, 0))
	assert.False(t, m.IsForbidden(-1, -1))
}

// TestForbiddingPolygon_FirstMatch verifies that the first rejecting polygon
// in file order is reported.
func TestForbiddingPolygon_FirstMatch(t *testing.T) {
	zone := square(false, 0, 0, 4)
	elsewhere := square(true, 100, 100, 4)

	idx, ok := New([]model.Polygon{zone, elsewhere}, nil).ForbiddingPolygon(2, 2)
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = New([]model.Polygon{elsewhere, zone}, nil).ForbiddingPolygon(2, 2)
	require.True(t, ok)
	assert.Equal(t, 0, idx, "the allowed-inside polygon now rejects first")
}

// --- Construction and accessors ---

func TestNew_CopiesInput(t *testing.T) {
	polys := []model.Polygon{square(false, 0, 0, 4)}
	marks := []model.Marking{{ID: 1, X: 5, Y: 5, Status: model.StatusValid}}

	m := New(polys, marks)
	polys[0].Nodes[0].X = 99
	polys[0].AllowedInside = true
	marks[0].X = 99

	assert.True(t, m.IsForbidden(1, 1))
	x, _ := m.MarkingPosition(1)
	assert.Equal(t, 5, x)

	got := m.Polygons()
	got[0].Nodes[0].X = 77
	p, ok := m.Polygon(0)
	require.True(t, ok)
	assert.Equal(t, 0, p.Nodes[0].X, "accessors return copies")

	_, ok = m.Polygon(1)
	assert.False(t, ok)
}

func TestStats(t *testing.T) {
	m := loadFixture(t, "broken.db")
	assert.Equal(t, Stats{Polygons: 2, InvalidPolygons: 1, Markings: 3, InvalidMarkings: 2}, m.Stats())
}

func TestLoad_NotFound(t *testing.T) {
	m, res, err := Load(filepath.Join(t.TempDir(), "none.db"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, mapfile.ErrMapNotFound))
	assert.Nil(t, m)
	assert.Nil(t, res)
}

func TestFromResult_Nil(t *testing.T) {
	m := FromResult(nil)
	assert.Equal(t, Stats{}, m.Stats())
}

// TestConcurrentQueries runs queries from many goroutines against one Map.
// Run with -race to check that queries never write shared state.
func TestConcurrentQueries(t *testing.T) {
	m := loadFixture(t, "warehouse.db")

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				assert.False(t, m.IsForbidden(5, 5))
				assert.True(t, m.IsForbidden(33, 23))
				x, y := m.MarkingPosition(2)
				assert.Equal(t, 12, x)
				assert.Equal(t, 8, y)
			}
		}()
	}
	wg.Wait()
}
