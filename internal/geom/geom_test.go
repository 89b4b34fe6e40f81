package geom

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beetlebugorg/s57extract/pkg/s57"
)

func TestFromS57(t *testing.T) {
	square := [][]float64{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}
	hole := [][]float64{{1, 1}, {1, 2}, {2, 2}, {2, 1}, {1, 1}}
	island := [][]float64{{10, 10}, {11, 10}, {11, 11}, {10, 10}}

	tests := []struct {
		name string
		in   s57.Geometry
		want orb.Geometry
	}{
		{"no geometry", s57.Geometry{Type: s57.GeometryTypeNone}, nil},
		{"empty point", s57.Geometry{Type: s57.GeometryTypePoint}, nil},
		{"point drops depth", s57.Geometry{Type: s57.GeometryTypePoint, Coordinates: [][]float64{{1, 2, 9.5}}}, orb.Point{1, 2}},
		{
			"multipoint",
			s57.Geometry{Type: s57.GeometryTypePoint, Coordinates: [][]float64{{1, 2, 3}, {4, 5, 6}}},
			orb.MultiPoint{{1, 2}, {4, 5}},
		},
		{
			"line",
			s57.Geometry{Type: s57.GeometryTypeLineString, Parts: [][][]float64{{{0, 0}, {1, 1}}}},
			orb.LineString{{0, 0}, {1, 1}},
		},
		{
			"multiline",
			s57.Geometry{Type: s57.GeometryTypeLineString, Parts: [][][]float64{{{0, 0}, {1, 1}}, {{5, 5}, {6, 6}}}},
			orb.MultiLineString{{{0, 0}, {1, 1}}, {{5, 5}, {6, 6}}},
		},
		{
			"polygon with hole",
			s57.Geometry{Type: s57.GeometryTypePolygon, Parts: [][][]float64{square, hole}},
			orb.Polygon{toPoints(square), toPoints(hole)},
		},
		{
			"two exteriors",
			s57.Geometry{Type: s57.GeometryTypePolygon, Parts: [][][]float64{square, island}},
			orb.MultiPolygon{{toPoints(square)}, {toPoints(island)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromS57(tt.in))
		})
	}
}

func TestMarshalParseRoundTrip(t *testing.T) {
	g := orb.Polygon{{{0, 0}, {4, 0}, {4, 4}, {0, 0}}}

	s := Marshal(g)
	require.NotEmpty(t, s)
	back, err := Parse(s)
	require.NoError(t, err)
	assert.Equal(t, g, back)

	assert.Equal(t, "", Marshal(nil))

	_, err = Parse("POLYGON((0 0, 1")
	assert.Error(t, err)
}

func TestFormatRoundsCoordinates(t *testing.T) {
	g := orb.LineString{{-70.123456789, 41.000000004}, {-70.5, 41.25}}

	out, err := Parse(Format(g, 8))
	require.NoError(t, err)
	ls, ok := out.(orb.LineString)
	require.True(t, ok)
	assert.Equal(t, orb.Point{-70.12345679, 41}, ls[0])
	assert.Equal(t, orb.Point{-70.5, 41.25}, ls[1])

	// The input is untouched.
	assert.Equal(t, -70.123456789, g[0][0])

	pt, err := Parse(Format(orb.Point{1.123456789, -0.000000001}, 8))
	require.NoError(t, err)
	assert.Equal(t, orb.Point{1.12345679, 0}, pt)

	assert.Equal(t, "", Format(nil, 8))
}

func TestMakeValid(t *testing.T) {
	t.Run("closes and orients exterior", func(t *testing.T) {
		cw := orb.Polygon{{{0, 0}, {0, 4}, {4, 4}, {4, 0}}}
		got, ok := MakeValid(cw).(orb.Polygon)
		require.True(t, ok)
		require.Len(t, got, 1)
		assert.Equal(t, got[0][0], got[0][len(got[0])-1])
		assert.Equal(t, orb.CCW, got[0].Orientation())
	})

	t.Run("holes are clockwise", func(t *testing.T) {
		p := orb.Polygon{
			{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}},
			{{1, 1}, {2, 1}, {2, 2}, {1, 2}, {1, 1}},
		}
		got := MakeValid(p).(orb.Polygon)
		require.Len(t, got, 2)
		assert.Equal(t, orb.CW, got[1].Orientation())
	})

	t.Run("degenerate rings dropped", func(t *testing.T) {
		flat := orb.Polygon{{{0, 0}, {1, 1}, {2, 2}, {0, 0}}}
		assert.Nil(t, MakeValid(flat))

		withSpike := orb.Polygon{
			{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}},
			{{1, 1}, {1, 1}, {2, 2}, {1, 1}},
		}
		assert.Len(t, MakeValid(withSpike).(orb.Polygon), 1)
	})

	t.Run("repeated positions removed", func(t *testing.T) {
		ls := orb.LineString{{0, 0}, {0, 0}, {1, 1}, {1, 1}}
		assert.Equal(t, orb.LineString{{0, 0}, {1, 1}}, MakeValid(ls))
		assert.Nil(t, MakeValid(orb.LineString{{3, 3}, {3, 3}}))
	})

	t.Run("multipolygon keeps valid parts", func(t *testing.T) {
		mp := orb.MultiPolygon{
			{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}},
			{{{5, 5}, {5, 5}, {5, 5}, {5, 5}}},
		}
		got := MakeValid(mp).(orb.MultiPolygon)
		assert.Len(t, got, 1)
	})

	t.Run("points pass through", func(t *testing.T) {
		assert.Equal(t, orb.Point{1, 2}, MakeValid(orb.Point{1, 2}))
		assert.Equal(t, orb.MultiPoint{{1, 2}}, MakeValid(orb.MultiPoint{{1, 2}}))
	})
}

func TestSimplify(t *testing.T) {
	t.Run("removes points within tolerance", func(t *testing.T) {
		ls := orb.LineString{{0, 0}, {1, 0.0001}, {2, 0}}
		got := Simplify(ls, 0.00025)
		assert.Equal(t, orb.LineString{{0, 0}, {2, 0}}, got)
		assert.Len(t, ls, 3, "input must not be modified")
	})

	t.Run("keeps detail above tolerance", func(t *testing.T) {
		ls := orb.LineString{{0, 0}, {1, 0.5}, {2, 0}}
		assert.Equal(t, ls, Simplify(ls, 0.00025))
	})

	t.Run("small ring is preserved", func(t *testing.T) {
		ring := orb.Ring{{0, 0}, {0.0001, 0}, {0.0001, 0.0001}, {0, 0}}
		p := orb.Polygon{ring}
		got := Simplify(p, 0.00025).(orb.Polygon)
		assert.Equal(t, p, got)
		assert.Greater(t, planar.Area(got[0]), 0.0)
	})

	t.Run("points unchanged", func(t *testing.T) {
		assert.Equal(t, orb.Point{1, 1}, Simplify(orb.Point{1, 1}, 1))
	})
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(nil))
	assert.True(t, IsEmpty(orb.MultiPoint{}))
	assert.True(t, IsEmpty(orb.Polygon{}))
	assert.True(t, IsEmpty(orb.MultiPolygon{orb.Polygon{}}))
	assert.False(t, IsEmpty(orb.Point{0, 0}))
	assert.False(t, IsEmpty(orb.LineString{{0, 0}, {1, 1}}))
}
