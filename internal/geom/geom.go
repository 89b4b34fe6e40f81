// Package geom converts chart geometries to orb geometries and implements the
// spatial SQL functions of the native engine: validity repair, topology
// preserving simplification and WKT with fixed precision.
package geom

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/planar"

	"github.com/beetlebugorg/s57extract/pkg/s57"
)

// FromS57 converts a chart geometry to 2D orb geometry. Depth values are
// dropped. It returns nil for features without a location.
//
// Polygon rings arrive exterior first. A later ring starts a new polygon
// unless it lies inside the current exterior ring, in which case it is a hole.
func FromS57(g s57.Geometry) orb.Geometry {
	switch g.Type {
	case s57.GeometryTypePoint:
		switch len(g.Coordinates) {
		case 0:
			return nil
		case 1:
			return toPoint(g.Coordinates[0])
		}
		mp := make(orb.MultiPoint, 0, len(g.Coordinates))
		for _, c := range g.Coordinates {
			mp = append(mp, toPoint(c))
		}
		return mp

	case s57.GeometryTypeLineString:
		lines := make(orb.MultiLineString, 0, len(g.Parts))
		for _, part := range g.Parts {
			lines = append(lines, orb.LineString(toPoints(part)))
		}
		switch len(lines) {
		case 0:
			return nil
		case 1:
			return lines[0]
		}
		return lines

	case s57.GeometryTypePolygon:
		var polys orb.MultiPolygon
		for _, part := range g.Parts {
			ring := orb.Ring(toPoints(part))
			if len(ring) == 0 {
				continue
			}
			if n := len(polys); n > 0 && planar.RingContains(polys[n-1][0], ring[0]) {
				polys[n-1] = append(polys[n-1], ring)
				continue
			}
			polys = append(polys, orb.Polygon{ring})
		}
		switch len(polys) {
		case 0:
			return nil
		case 1:
			return polys[0]
		}
		return polys
	}
	return nil
}

func toPoint(c []float64) orb.Point {
	if len(c) < 2 {
		return orb.Point{}
	}
	return orb.Point{c[0], c[1]}
}

func toPoints(coords [][]float64) []orb.Point {
	points := make([]orb.Point, 0, len(coords))
	for _, c := range coords {
		points = append(points, toPoint(c))
	}
	return points
}

// Marshal encodes g as WKT at full precision. A nil geometry encodes as "".
func Marshal(g orb.Geometry) string {
	if g == nil {
		return ""
	}
	return wkt.MarshalString(g)
}

// Parse decodes WKT.
func Parse(s string) (orb.Geometry, error) {
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return nil, fmt.Errorf("parse wkt: %w", err)
	}
	return g, nil
}

// Format encodes g as WKT with coordinates rounded to the given number of
// decimals. g is not modified.
func Format(g orb.Geometry, decimals int) string {
	if g == nil {
		return ""
	}
	factor := math.Pow10(decimals)
	round := func(v float64) float64 {
		r := math.Round(v*factor) / factor
		if r == 0 {
			return 0 // no "-0"
		}
		return r
	}

	if p, ok := g.(orb.Point); ok {
		return wkt.MarshalString(orb.Point{round(p[0]), round(p[1])})
	}

	rounded := orb.Clone(g)
	forEachPoint(rounded, func(p *orb.Point) {
		p[0] = round(p[0])
		p[1] = round(p[1])
	})
	return wkt.MarshalString(rounded)
}

// forEachPoint visits every position of g in place.
func forEachPoint(g orb.Geometry, fn func(*orb.Point)) {
	switch g := g.(type) {
	case orb.MultiPoint:
		for i := range g {
			fn(&g[i])
		}
	case orb.LineString:
		for i := range g {
			fn(&g[i])
		}
	case orb.MultiLineString:
		for _, ls := range g {
			forEachPoint(ls, fn)
		}
	case orb.Ring:
		for i := range g {
			fn(&g[i])
		}
	case orb.Polygon:
		for _, r := range g {
			forEachPoint(r, fn)
		}
	case orb.MultiPolygon:
		for _, p := range g {
			forEachPoint(p, fn)
		}
	case orb.Collection:
		for i := range g {
			if p, ok := g[i].(orb.Point); ok {
				fn(&p)
				g[i] = p
				continue
			}
			forEachPoint(g[i], fn)
		}
	}
}

// IsEmpty reports whether g has no positions.
func IsEmpty(g orb.Geometry) bool {
	if g == nil {
		return true
	}
	switch g := g.(type) {
	case orb.Point:
		return false
	case orb.MultiPoint:
		return len(g) == 0
	case orb.LineString:
		return len(g) == 0
	case orb.MultiLineString:
		for _, ls := range g {
			if len(ls) > 0 {
				return false
			}
		}
		return true
	case orb.Ring:
		return len(g) == 0
	case orb.Polygon:
		return len(g) == 0 || len(g[0]) == 0
	case orb.MultiPolygon:
		for _, p := range g {
			if !IsEmpty(p) {
				return false
			}
		}
		return true
	case orb.Collection:
		for _, c := range g {
			if !IsEmpty(c) {
				return false
			}
		}
		return true
	}
	return true
}
