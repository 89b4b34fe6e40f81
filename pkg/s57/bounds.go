package s57

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dhconnelly/rtreego"
)

// Bounds is a geographic bounding box in decimal degrees.
type Bounds struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// ParseBounds reads "minlon,minlat,maxlon,maxlat".
func ParseBounds(s string) (Bounds, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 4 {
		return Bounds{}, fmt.Errorf("bounds %q: expected minlon,minlat,maxlon,maxlat", s)
	}

	var v [4]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Bounds{}, fmt.Errorf("bounds %q: %w", s, err)
		}
		v[i] = n
	}

	b := Bounds{MinLon: v[0], MinLat: v[1], MaxLon: v[2], MaxLat: v[3]}
	if b.MinLon > b.MaxLon || b.MinLat > b.MaxLat {
		return Bounds{}, fmt.Errorf("bounds %q: minimum exceeds maximum", s)
	}
	return b, nil
}

// String renders the bounds in the same order ParseBounds reads them.
func (b Bounds) String() string {
	return fmt.Sprintf("%g,%g,%g,%g", b.MinLon, b.MinLat, b.MaxLon, b.MaxLat)
}

// Intersects reports whether the two boxes overlap, edges included.
func (b Bounds) Intersects(other Bounds) bool {
	return b.MinLon <= other.MaxLon && other.MinLon <= b.MaxLon &&
		b.MinLat <= other.MaxLat && other.MinLat <= b.MaxLat
}

// Contains reports whether the position lies inside the box.
func (b Bounds) Contains(lon, lat float64) bool {
	return lon >= b.MinLon && lon <= b.MaxLon && lat >= b.MinLat && lat <= b.MaxLat
}

// Extend grows b to cover other.
func (b Bounds) Extend(other Bounds) Bounds {
	return Bounds{
		MinLon: math.Min(b.MinLon, other.MinLon),
		MinLat: math.Min(b.MinLat, other.MinLat),
		MaxLon: math.Max(b.MaxLon, other.MaxLon),
		MaxLat: math.Max(b.MaxLat, other.MaxLat),
	}
}

// rect converts the box to an R-tree rectangle. R-tree rectangles need
// non-zero sides, so points get a small extent (about 11 m at the equator).
func (b Bounds) rect() rtreego.Rect {
	const epsilon = 0.0001

	lonLength := b.MaxLon - b.MinLon
	latLength := b.MaxLat - b.MinLat
	if lonLength < epsilon {
		lonLength = epsilon
	}
	if latLength < epsilon {
		latLength = epsilon
	}

	rect, _ := rtreego.NewRect(rtreego.Point{b.MinLon, b.MinLat}, []float64{lonLength, latLength})
	return rect
}

// featureBounds returns the box around every position of the feature. The
// second result is false when the feature has no geometry.
func featureBounds(f Feature) (Bounds, bool) {
	b := Bounds{
		MinLon: math.Inf(1), MinLat: math.Inf(1),
		MaxLon: math.Inf(-1), MaxLat: math.Inf(-1),
	}
	found := false

	add := func(coord []float64) {
		if len(coord) < 2 {
			return
		}
		found = true
		b.MinLon = math.Min(b.MinLon, coord[0])
		b.MaxLon = math.Max(b.MaxLon, coord[0])
		b.MinLat = math.Min(b.MinLat, coord[1])
		b.MaxLat = math.Max(b.MaxLat, coord[1])
	}

	for _, coord := range f.geometry.Coordinates {
		add(coord)
	}
	for _, part := range f.geometry.Parts {
		for _, coord := range part {
			add(coord)
		}
	}

	if !found {
		return Bounds{}, false
	}
	return b, true
}
