package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mmr-tortoise/mapserver/internal/geometry"
	"github.com/mmr-tortoise/mapserver/internal/mapstore"
	"github.com/mmr-tortoise/mapserver/internal/metrics"
	"github.com/mmr-tortoise/mapserver/internal/model"
)

// MarkingResponse is the body of GET /markings/:id. X and Y are -1 when
// Found is false.
type MarkingResponse struct {
	ID    int  `json:"id"`
	X     int  `json:"x"`
	Y     int  `json:"y"`
	Found bool `json:"found"`
}

// ForbiddenResponse is the body of GET /forbidden. Polygon is the index of
// the first polygon that forbids the position, or null.
type ForbiddenResponse struct {
	X         int  `json:"x"`
	Y         int  `json:"y"`
	Forbidden bool `json:"forbidden"`
	Polygon   *int `json:"polygon"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	mapstore.Stats
}

// ErrorResponse is the body of every 4xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) handleMarking(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_parameter",
			Message: "marking id must be an integer",
		})
		return
	}

	start := time.Now()
	pos, found := s.store.LookupMarking(id)
	metrics.ObserveMarkingLookup(found, time.Since(start))

	if !found {
		c.JSON(http.StatusNotFound, MarkingResponse{ID: id, X: model.NotFound.X, Y: model.NotFound.Y})
		return
	}
	c.JSON(http.StatusOK, MarkingResponse{ID: id, X: pos.X, Y: pos.Y, Found: true})
}

func (s *Server) handleForbidden(c *gin.Context) {
	x, ok := intQuery(c, "x")
	if !ok {
		return
	}
	y, ok := intQuery(c, "y")
	if !ok {
		return
	}

	start := time.Now()
	idx, forbidden := s.store.ForbiddingPolygon(x, y)
	metrics.ObserveForbidden(forbidden, time.Since(start))

	resp := ForbiddenResponse{X: x, Y: y, Forbidden: forbidden}
	if forbidden {
		resp.Polygon = &idx
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleMap(c *gin.Context) {
	fc := geometry.FeatureCollection(s.store.Polygons(), s.store.Markings())
	data, err := fc.MarshalJSON()
	if err != nil {
		s.log.Error("geojson_encode_failed", "err", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "failed to encode map",
		})
		return
	}
	c.Data(http.StatusOK, "application/geo+json", data)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Stats: s.store.Stats()})
}

// intQuery reads a required integer query parameter, writing a 400
// response and returning false when it is missing or malformed.
func intQuery(c *gin.Context, name string) (int, bool) {
	raw, present := c.GetQuery(name)
	if !present || raw == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_parameter",
			Message: name + " parameter is required",
		})
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_parameter",
			Message: name + " must be an integer",
		})
		return 0, false
	}
	return v, true
}
