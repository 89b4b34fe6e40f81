package native

import (
	"sort"

	"github.com/beetlebugorg/s57extract/internal/engine"
	"github.com/beetlebugorg/s57extract/pkg/s57"
)

// Dataset is a parsed chart cell. Every object class present in the cell is
// one layer.
type Dataset struct {
	path   string
	chart  *s57.Chart
	layers []*layer
	byName map[string]*layer
}

type layer struct {
	name     string
	fields   []string
	features []s57.Feature
}

func (l *layer) Name() string         { return l.name }
func (l *layer) FieldNames() []string { return l.fields }
func (l *layer) FeatureCount() int    { return len(l.features) }

// FromChart exposes an already parsed chart as a dataset. Layers appear in the
// order their first feature appears in the chart. A layer's fields are the
// attributes carried by any of its features, sorted by name.
func FromChart(path string, chart *s57.Chart) *Dataset {
	ds := &Dataset{
		path:   path,
		chart:  chart,
		byName: make(map[string]*layer),
	}

	fieldSets := make(map[string]map[string]struct{})
	features := chart.Features()
	for i := range features {
		f := &features[i]
		l, ok := ds.byName[f.ObjectClass()]
		if !ok {
			l = &layer{name: f.ObjectClass()}
			ds.byName[l.name] = l
			ds.layers = append(ds.layers, l)
			fieldSets[l.name] = make(map[string]struct{})
		}
		l.features = append(l.features, *f)
		for k := range f.Attributes() {
			fieldSets[l.name][k] = struct{}{}
		}
	}

	for _, l := range ds.layers {
		for k := range fieldSets[l.name] {
			l.fields = append(l.fields, k)
		}
		sort.Strings(l.fields)
	}
	return ds
}

func (d *Dataset) Path() string { return d.path }

// Chart returns the parsed cell.
func (d *Dataset) Chart() *s57.Chart { return d.chart }

func (d *Dataset) Layer(name string) (engine.Layer, bool) {
	l, ok := d.byName[name]
	if !ok {
		return nil, false
	}
	return l, true
}

func (d *Dataset) LayerNames() []string {
	names := make([]string, 0, len(d.layers))
	for _, l := range d.layers {
		names = append(names, l.name)
	}
	return names
}

// Close releases the parsed chart. The dataset must not be used afterwards.
func (d *Dataset) Close() error {
	d.chart = nil
	d.layers = nil
	d.byName = nil
	return nil
}

// featuresByLayer returns the features to load per layer, restricted to the
// given box when it is not nil.
func (d *Dataset) featuresByLayer(filter *s57.Bounds) map[string][]s57.Feature {
	out := make(map[string][]s57.Feature, len(d.layers))
	if filter == nil {
		for _, l := range d.layers {
			out[l.name] = l.features
		}
		return out
	}
	for _, f := range d.chart.FeaturesInBounds(*filter) {
		out[f.ObjectClass()] = append(out[f.ObjectClass()], f)
	}
	return out
}
