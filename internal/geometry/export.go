package geometry

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"

	"github.com/mmr-tortoise/mapserver/internal/model"
)

// Feature kinds set in the "kind" property of exported features.
const (
	KindPolygon = "polygon"
	KindMarking = "marking"
)

// FeatureCollection converts the valid entities of a map into GeoJSON.
//
// Polygons carry the properties kind, index (position in the map file) and
// policy; markings carry kind and id. Invalid entities are left out because
// they have no geometry. Grid coordinates are written as-is; they are not
// longitudes and latitudes.
func FeatureCollection(polys []model.Polygon, marks []model.Marking) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for i, poly := range polys {
		ring := Ring(poly)
		if !poly.Valid() || ring == nil {
			continue
		}
		f := geojson.NewFeature(orb.Polygon{ring})
		f.Properties["kind"] = KindPolygon
		f.Properties["index"] = i
		f.Properties["policy"] = poly.Policy()
		f.Properties["allowedInside"] = poly.AllowedInside
		fc.Append(f)
	}

	for _, m := range marks {
		if !m.Valid() {
			continue
		}
		f := geojson.NewFeature(toOrb(m.Position()))
		f.ID = m.ID
		f.Properties["kind"] = KindMarking
		f.Properties["id"] = m.ID
		fc.Append(f)
	}

	return fc
}

// WKT renders the valid entities as one well-known-text line each, prefixed
// with a label: "polygon[<index>] <policy>" or "marking <id>".
func WKT(polys []model.Polygon, marks []model.Marking) []string {
	var lines []string

	for i, poly := range polys {
		ring := Ring(poly)
		if !poly.Valid() || ring == nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("polygon[%d] %s\t%s", i, poly.Policy(), wkt.MarshalString(orb.Polygon{ring})))
	}
	for _, m := range marks {
		if !m.Valid() {
			continue
		}
		lines = append(lines, fmt.Sprintf("marking %d\t%s", m.ID, wkt.MarshalString(toOrb(m.Position()))))
	}
	return lines
}
