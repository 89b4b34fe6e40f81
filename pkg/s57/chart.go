// Package s57 provides the public API for reading IHO S-57 Electronic
// Navigational Charts as layers of features.
package s57

import (
	"sort"

	"github.com/beetlebugorg/s57extract/internal/parser"
	"github.com/dhconnelly/rtreego"
)

// Chart represents a parsed S-57 Electronic Navigational Chart.
//
// A chart contains metadata (cell name, edition, dates, etc.) and a collection
// of navigational features. Features are indexed in an R-tree for bounding box
// queries.
type Chart struct {
	features     []Feature
	spatialIndex *rtreego.Rtree
	bounds       Bounds

	datasetName      string
	edition          string
	updateNumber     string
	updateDate       string
	issueDate        string
	producingAgency  int
	usageBand        UsageBand
	compilationScale int32
	updatesApplied   int
}

// UsageBand defines the ENC usage band (navigational purpose) of the chart.
//
// Reference: S-57 Part 3 §7.3.1.1 (INTU field)
type UsageBand int

const (
	UsageBandUnknown  UsageBand = 0
	UsageBandOverview UsageBand = 1
	UsageBandGeneral  UsageBand = 2
	UsageBandCoastal  UsageBand = 3
	UsageBandApproach UsageBand = 4
	UsageBandHarbour  UsageBand = 5
	UsageBandBerthing UsageBand = 6
)

// String returns the human-readable name of the usage band.
func (ub UsageBand) String() string {
	switch ub {
	case UsageBandOverview:
		return "Overview"
	case UsageBandGeneral:
		return "General"
	case UsageBandCoastal:
		return "Coastal"
	case UsageBandApproach:
		return "Approach"
	case UsageBandHarbour:
		return "Harbour"
	case UsageBandBerthing:
		return "Berthing"
	default:
		return "Unknown"
	}
}

// indexedFeature wraps a feature for R-tree storage. seq keeps query results
// in chart order.
type indexedFeature struct {
	seq    int
	bounds Bounds
}

// Bounds implements rtreego.Spatial.
func (f *indexedFeature) Bounds() rtreego.Rect {
	return f.bounds.rect()
}

// NewChart assembles a chart from features that were built in memory.
func NewChart(datasetName string, features []Feature) *Chart {
	chart := &Chart{
		features:    features,
		datasetName: datasetName,
	}
	chart.buildSpatialIndex()
	return chart
}

// Features returns all features in the chart.
func (c *Chart) Features() []Feature {
	return c.features
}

// FeatureCount returns the number of features in the chart.
func (c *Chart) FeatureCount() int {
	return len(c.features)
}

// Bounds returns the box around every located feature of the chart.
func (c *Chart) Bounds() Bounds {
	return c.bounds
}

// FeaturesInBounds returns the features whose bounding box intersects the
// given box, in chart order. Features without geometry never match.
//
// Example:
//
//	area := s57.Bounds{MinLon: -71.5, MaxLon: -71.0, MinLat: 42.0, MaxLat: 42.5}
//	for _, feature := range chart.FeaturesInBounds(area) {
//	    fmt.Println(feature.ObjectClass())
//	}
func (c *Chart) FeaturesInBounds(bounds Bounds) []Feature {
	if c.spatialIndex == nil {
		return nil
	}

	// R-tree intersection excludes shared edges, so the query is padded and
	// the real boxes are checked afterwards.
	const pad = 1e-9
	query := Bounds{
		MinLon: bounds.MinLon - pad,
		MinLat: bounds.MinLat - pad,
		MaxLon: bounds.MaxLon + pad,
		MaxLat: bounds.MaxLat + pad,
	}
	spatials := c.spatialIndex.SearchIntersect(query.rect())

	seqs := make([]int, 0, len(spatials))
	for _, spatial := range spatials {
		indexed := spatial.(*indexedFeature)
		if bounds.Intersects(indexed.bounds) {
			seqs = append(seqs, indexed.seq)
		}
	}
	sort.Ints(seqs)

	result := make([]Feature, 0, len(seqs))
	for _, seq := range seqs {
		result = append(result, c.features[seq])
	}
	return result
}

// DatasetName returns the chart's dataset name (cell identifier).
//
// Example: "US5MA22M", "GB5X01NE"
func (c *Chart) DatasetName() string { return c.datasetName }

// Edition returns the chart's edition number.
func (c *Chart) Edition() string { return c.edition }

// UpdateNumber returns the chart's update number.
//
// "0" indicates a base cell, higher numbers indicate applied updates.
func (c *Chart) UpdateNumber() string { return c.updateNumber }

// UpdateDate returns the update application date in YYYYMMDD format.
func (c *Chart) UpdateDate() string { return c.updateDate }

// IssueDate returns the chart issue date in YYYYMMDD format.
func (c *Chart) IssueDate() string { return c.issueDate }

// ProducingAgency returns the producing agency code, e.g. 550 for NOAA.
func (c *Chart) ProducingAgency() int { return c.producingAgency }

// UsageBand returns the ENC usage band of this chart.
func (c *Chart) UsageBand() UsageBand { return c.usageBand }

// CompilationScale returns the compilation scale denominator, or 0.
func (c *Chart) CompilationScale() int32 { return c.compilationScale }

// UpdatesApplied returns how many update files were merged into the base cell.
func (c *Chart) UpdatesApplied() int { return c.updatesApplied }

// convertChart converts internal chart to public API chart
func convertChart(internal *parser.Chart, opts ParseOptions) *Chart {
	features := make([]Feature, 0, len(internal.Features))
	for _, f := range internal.Features {
		feature := NewFeature(f.ID, f.ObjectClass, Geometry{
			Type:        GeometryType(f.Geometry.Type),
			Coordinates: f.Geometry.Coordinates,
			Parts:       f.Geometry.Parts,
		}, f.Attributes)

		if f.ObjectClass == "SOUNDG" && opts.SplitMultipoint {
			features = append(features, splitSoundings(feature, opts.AddSoundingDepth)...)
			continue
		}
		features = append(features, feature)
	}

	chart := &Chart{
		features:         features,
		datasetName:      internal.DatasetName(),
		edition:          internal.Edition(),
		updateNumber:     internal.UpdateNumber(),
		updateDate:       internal.UpdateDate(),
		issueDate:        internal.IssueDate(),
		producingAgency:  internal.ProducingAgency(),
		usageBand:        UsageBand(internal.IntendedUsage()),
		compilationScale: internal.CompilationScale(),
		updatesApplied:   internal.UpdatesApplied(),
	}
	chart.buildSpatialIndex()

	return chart
}

// splitSoundings turns a SOUNDG multipoint into one point feature per
// sounding, all sharing the original ID and attributes. With addDepth each
// point carries its Z value as DEPTH.
func splitSoundings(f Feature, addDepth bool) []Feature {
	coords := f.geometry.Coordinates
	if len(coords) == 0 {
		return []Feature{f}
	}

	points := make([]Feature, 0, len(coords))
	for _, coord := range coords {
		attrs := make(map[string]interface{}, len(f.attributes)+1)
		for k, v := range f.attributes {
			attrs[k] = v
		}
		if addDepth && len(coord) >= 3 {
			attrs["DEPTH"] = coord[2]
		}

		points = append(points, NewFeature(f.id, f.objectClass, Geometry{
			Type:        GeometryTypePoint,
			Coordinates: [][]float64{coord},
		}, attrs))
	}
	return points
}

// buildSpatialIndex creates an R-tree over the located features and computes
// the chart bounds.
func (c *Chart) buildSpatialIndex() {
	// 2D, min=25 children, max=50 children
	rtree := rtreego.NewTree(2, 25, 50)

	var chartBounds *Bounds
	for i, feature := range c.features {
		fb, ok := featureBounds(feature)
		if !ok {
			continue
		}
		rtree.Insert(&indexedFeature{seq: i, bounds: fb})

		if chartBounds == nil {
			chartBounds = &fb
		} else {
			extended := chartBounds.Extend(fb)
			chartBounds = &extended
		}
	}

	c.spatialIndex = rtree
	if chartBounds != nil {
		c.bounds = *chartBounds
	}
}
