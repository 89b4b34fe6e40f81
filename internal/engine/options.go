package engine

import (
	"sort"
	"strconv"

	"github.com/beetlebugorg/s57extract/pkg/s57"
)

// Format is an output driver name.
type Format string

// FormatCSV writes delimited text.
const FormatCSV Format = "CSV"

// Dialect is the SQL dialect of TranslateOptions.SQL.
type Dialect string

// DialectSQLite enables the SQLite dialect with spatial functions
// (ST_MakeValid, ST_SimplifyPreserveTopology, ...).
const DialectSQLite Dialect = "SQLite"

// GeometryLayout controls how geometry is stored in delimited output.
type GeometryLayout string

const (
	// GeometryNone leaves the layout to the driver default.
	GeometryNone GeometryLayout = ""
	// GeometryAsWKT writes geometry as a leading WKT column.
	GeometryAsWKT GeometryLayout = "AS_WKT"
)

// WKTPrecisionKey is the configuration option holding the number of decimals
// written for WKT coordinates.
const WKTPrecisionKey = "OGR_WKT_PRECISION"

// OpenOptions are dataset options applied when a cell is opened.
type OpenOptions struct {
	// SplitMultipoint emits one point feature per sounding.
	SplitMultipoint bool
	// AddSoundingDepth adds a DEPTH field to split soundings.
	AddSoundingDepth bool
	// IgnoreUpdates reads the base cell only, without .001… update files.
	IgnoreUpdates bool
}

// Strings renders the options as KEY=VALUE pairs.
func (o OpenOptions) Strings() []string {
	var out []string
	if o.SplitMultipoint {
		out = append(out, "SPLIT_MULTIPOINT=ON")
	}
	if o.AddSoundingDepth {
		out = append(out, "ADD_SOUNDG_DEPTH=ON")
	}
	if o.IgnoreUpdates {
		out = append(out, "UPDATES=IGNORE")
	}
	return out
}

// TranslateOptions is the full set of options for one Translate call.
type TranslateOptions struct {
	Format         Format
	Dialect        Dialect
	Append         bool
	SQL            string
	LayerName      string
	GeometryLayout GeometryLayout
	// Dimension forces the output coordinate dimension; 0 keeps the source's.
	Dimension     int
	OpenOptions   OpenOptions
	SpatialFilter *s57.Bounds
	Config        map[string]string
}

// WKTPrecision returns the configured WKT precision, or def.
func (o TranslateOptions) WKTPrecision(def int) int {
	if v, ok := o.Config[WKTPrecisionKey]; ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

// Args renders the options as an ogr2ogr argument list, without the
// destination and source operands.
func (o TranslateOptions) Args() []string {
	args := []string{"-f", string(o.Format)}
	if o.Dialect != "" {
		args = append(args, "-dialect", string(o.Dialect))
	}
	if o.Append {
		args = append(args, "-append")
	}
	if o.SQL != "" {
		args = append(args, "-sql", o.SQL)
	}
	if o.LayerName != "" {
		args = append(args, "-nln", o.LayerName)
	}
	if o.GeometryLayout != GeometryNone {
		args = append(args, "-lco", "GEOMETRY="+string(o.GeometryLayout))
	}
	if o.Dimension > 0 {
		args = append(args, "-dim", strconv.Itoa(o.Dimension))
	}
	for _, kv := range o.OpenOptions.Strings() {
		args = append(args, "-oo", kv)
	}
	if f := o.SpatialFilter; f != nil {
		args = append(args, "-spat",
			formatFloat(f.MinLon), formatFloat(f.MinLat),
			formatFloat(f.MaxLon), formatFloat(f.MaxLat))
	}

	keys := make([]string, 0, len(o.Config))
	for k := range o.Config {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "--config", k, o.Config[k])
	}

	return args
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
