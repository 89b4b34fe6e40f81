package geom

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
)

// MakeValid returns a repaired copy of g, or nil when nothing valid is left.
//
// Repair removes non-finite and repeated consecutive positions, closes open
// rings, drops rings with fewer than four positions or no area, and orients
// exterior rings counter-clockwise and holes clockwise. Polygons whose
// exterior ring is dropped are removed. Self-intersections are not split.
func MakeValid(g orb.Geometry) orb.Geometry {
	switch g := g.(type) {
	case orb.Point:
		if !finite(g) {
			return nil
		}
		return g

	case orb.MultiPoint:
		out := make(orb.MultiPoint, 0, len(g))
		for _, p := range g {
			if finite(p) {
				out = append(out, p)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out

	case orb.LineString:
		if ls := repairLine(g); ls != nil {
			return ls
		}
		return nil

	case orb.MultiLineString:
		out := make(orb.MultiLineString, 0, len(g))
		for _, ls := range g {
			if r := repairLine(ls); r != nil {
				out = append(out, r)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out

	case orb.Ring:
		if r := repairRing(g, orb.CCW); r != nil {
			return orb.Polygon{r}
		}
		return nil

	case orb.Polygon:
		if p := repairPolygon(g); p != nil {
			return p
		}
		return nil

	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, 0, len(g))
		for _, p := range g {
			if r := repairPolygon(p); r != nil {
				out = append(out, r)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out

	case orb.Collection:
		out := make(orb.Collection, 0, len(g))
		for _, c := range g {
			if r := MakeValid(c); r != nil {
				out = append(out, r)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}
	return nil
}

func finite(p orb.Point) bool {
	return !math.IsNaN(p[0]) && !math.IsNaN(p[1]) && !math.IsInf(p[0], 0) && !math.IsInf(p[1], 0)
}

// dedupe copies pts without non-finite or repeated consecutive positions.
func dedupe(pts []orb.Point) []orb.Point {
	out := make([]orb.Point, 0, len(pts))
	for _, p := range pts {
		if !finite(p) {
			continue
		}
		if n := len(out); n > 0 && out[n-1] == p {
			continue
		}
		out = append(out, p)
	}
	return out
}

func repairLine(ls orb.LineString) orb.LineString {
	out := orb.LineString(dedupe(ls))
	if len(out) < 2 {
		return nil
	}
	return out
}

func repairRing(r orb.Ring, want orb.Orientation) orb.Ring {
	out := orb.Ring(dedupe(r))
	if len(out) > 0 && out[0] != out[len(out)-1] {
		out = append(out, out[0])
	}
	if len(out) < 4 || math.Abs(planar.Area(out)) == 0 {
		return nil
	}
	if out.Orientation() != want {
		out.Reverse()
	}
	return out
}

func repairPolygon(p orb.Polygon) orb.Polygon {
	if len(p) == 0 {
		return nil
	}
	exterior := repairRing(p[0], orb.CCW)
	if exterior == nil {
		return nil
	}

	out := orb.Polygon{exterior}
	for _, hole := range p[1:] {
		if r := repairRing(hole, orb.CW); r != nil {
			out = append(out, r)
		}
	}
	return out
}

// Simplify reduces vertices with Douglas-Peucker at the given tolerance and
// returns a new geometry. Lines keep at least two positions and rings keep at
// least four with non-zero area; a part that would collapse is kept as it was.
// Points are returned unchanged.
func Simplify(g orb.Geometry, tolerance float64) orb.Geometry {
	dp := simplify.DouglasPeucker(tolerance)

	line := func(ls orb.LineString) orb.LineString {
		s := dp.LineString(ls.Clone())
		if len(s) < 2 {
			return ls.Clone()
		}
		return s
	}
	ring := func(r orb.Ring) orb.Ring {
		s := orb.Ring(dp.LineString(orb.LineString(r.Clone())))
		if len(s) < 4 || planar.Area(s) == 0 {
			return r.Clone()
		}
		return s
	}
	polygon := func(p orb.Polygon) orb.Polygon {
		out := make(orb.Polygon, 0, len(p))
		for _, r := range p {
			out = append(out, ring(r))
		}
		return out
	}

	switch g := g.(type) {
	case orb.LineString:
		return line(g)
	case orb.MultiLineString:
		out := make(orb.MultiLineString, 0, len(g))
		for _, ls := range g {
			out = append(out, line(ls))
		}
		return out
	case orb.Ring:
		return ring(g)
	case orb.Polygon:
		return polygon(g)
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, 0, len(g))
		for _, p := range g {
			out = append(out, polygon(p))
		}
		return out
	case orb.Collection:
		out := make(orb.Collection, 0, len(g))
		for _, c := range g {
			out = append(out, Simplify(c, tolerance))
		}
		return out
	}
	return g
}
