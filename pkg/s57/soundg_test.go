package s57

import (
	"testing"

	"github.com/beetlebugorg/s57extract/internal/parser"
)

func soundingChart() *parser.Chart {
	return parser.NewChart("US5TEST1", []parser.Feature{
		{
			ID:          7,
			ObjectClass: "SOUNDG",
			Primitive:   1,
			Geometry: parser.Geometry{
				Type: parser.GeometryTypePoint,
				Coordinates: [][]float64{
					{-70.1, 41.1, 3.5},
					{-70.2, 41.2, 12},
					{-70.3, 41.3, 0.4},
				},
			},
			Attributes: map[string]interface{}{"QUASOU": "6"},
		},
		{
			ID:          8,
			ObjectClass: "UWTROC",
			Primitive:   1,
			Geometry: parser.Geometry{
				Type:        parser.GeometryTypePoint,
				Coordinates: [][]float64{{-70.4, 41.4}},
			},
			Attributes: map[string]interface{}{"VALSOU": "1.2"},
		},
	})
}

func TestSoundingsKeptAsMultipoint(t *testing.T) {
	chart := convertChart(soundingChart(), DefaultParseOptions())

	if chart.FeatureCount() != 2 {
		t.Fatalf("Expected 2 features, got %d", chart.FeatureCount())
	}
	soundg := chart.Features()[0]
	if len(soundg.Geometry().Coordinates) != 3 {
		t.Errorf("Expected 3 soundings in one feature, got %d", len(soundg.Geometry().Coordinates))
	}
	if _, ok := soundg.Attribute("DEPTH"); ok {
		t.Error("DEPTH should not be added without SplitMultipoint")
	}
}

func TestSplitSoundings(t *testing.T) {
	tests := []struct {
		name      string
		addDepth  bool
		wantDepth []interface{}
	}{
		{"split only", false, []interface{}{nil, nil, nil}},
		{"split with depth", true, []interface{}{3.5, 12.0, 0.4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultParseOptions()
			opts.SplitMultipoint = true
			opts.AddSoundingDepth = tt.addDepth

			chart := convertChart(soundingChart(), opts)
			if chart.FeatureCount() != 4 {
				t.Fatalf("Expected 3 soundings plus 1 rock, got %d", chart.FeatureCount())
			}

			for i, want := range tt.wantDepth {
				f := chart.Features()[i]
				if f.ObjectClass() != "SOUNDG" || f.ID() != 7 {
					t.Errorf("Feature %d: expected SOUNDG 7, got %s %d", i, f.ObjectClass(), f.ID())
				}
				if n := len(f.Geometry().Coordinates); n != 1 {
					t.Errorf("Feature %d: expected a single point, got %d", i, n)
				}
				if q, _ := f.Attribute("QUASOU"); q != "6" {
					t.Errorf("Feature %d: expected QUASOU copied, got %v", i, q)
				}
				depth, ok := f.Attribute("DEPTH")
				if want == nil {
					if ok {
						t.Errorf("Feature %d: unexpected DEPTH %v", i, depth)
					}
					continue
				}
				if depth != want {
					t.Errorf("Feature %d: expected DEPTH %v, got %v", i, want, depth)
				}
			}

			if rock := chart.Features()[3]; rock.ObjectClass() != "UWTROC" {
				t.Errorf("Expected UWTROC last, got %s", rock.ObjectClass())
			}
		})
	}
}
