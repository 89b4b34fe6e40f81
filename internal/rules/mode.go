package rules

import (
	"errors"
	"fmt"

	"github.com/beetlebugorg/s57extract/internal/engine"
)

// ValueType is the SQL type of a mode's value column. Every sub-query of a
// unified query yields the value column with this type.
type ValueType int

const (
	Text ValueType = iota
	Real
)

func (v ValueType) String() string {
	switch v {
	case Text:
		return "TEXT"
	case Real:
		return "REAL"
	default:
		return fmt.Sprintf("ValueType(%d)", int(v))
	}
}

// Mode names.
const (
	NamesModeName = "names"
	DepthModeName = "depth"
)

// Names mode defaults.
const (
	DefaultNamesField  = "NOBJNM"
	DefaultNamesOutput = "nobjnm"
)

// DefaultNamesLayers are the layers searched for names by default.
var DefaultNamesLayers = []string{"LNDARE", "DEPARE", "SEAARE", "HRBFAC", "BRIDGE"}

// Depth mode defaults.
const (
	LandLayer          = "LNDARE"
	DepthColumn        = "DEPTH"
	DefaultLandValue   = -1.0
	DefaultDepthOutput = "depth"
)

// depthFields maps each depth-bearing layer to the field holding its depth,
// in output order. SOUNDG's DEPTH only exists on split soundings.
var depthFields = []struct {
	layer string
	field string
}{
	{"DEPARE", "DRVAL1"},
	{"DEPCNT", "VALDCO"},
	{"DRGARE", "DRVAL1"},
	{"OBSTRN", "VALSOU"},
	{"SOUNDG", "DEPTH"},
	{"UWTROC", "VALSOU"},
	{"WRECKS", "VALSOU"},
}

// Mode is one way of running the pipeline: which layers to read, how to
// shape the output columns and how cells are opened.
type Mode struct {
	Name  string
	Table *Table
	// ValueColumn names the value column of every sub-query.
	ValueColumn string
	ValueType   ValueType
	// LevelColumn adds the chart-level code as column LEVEL.
	LevelColumn bool
	// OutputName is the default destination table name.
	OutputName  string
	OpenOptions engine.OpenOptions
	// Dimension forces the output dimension; 0 leaves it to the engine.
	Dimension int
}

// NamesMode extracts the text field from each of layers, in the given order.
func NamesMode(layers []string, field string) (Mode, error) {
	if len(layers) == 0 {
		return Mode{}, errors.New("names mode: no layers")
	}
	if field == "" {
		return Mode{}, errors.New("names mode: empty field name")
	}

	rs := make([]Rule, 0, len(layers))
	for _, l := range layers {
		rs = append(rs, FilteredField{Layer: l, Field: field})
	}
	table, err := NewTable(rs...)
	if err != nil {
		return Mode{}, fmt.Errorf("names mode: %w", err)
	}

	return Mode{
		Name:        NamesModeName,
		Table:       table,
		ValueColumn: field,
		ValueType:   Text,
		LevelColumn: true,
		OutputName:  DefaultNamesOutput,
	}, nil
}

// DepthMode extracts depths: land areas get landValue, every other depth
// layer its mapped field as a real number. Soundings are split into points
// carrying their depth.
func DepthMode(landValue float64) (Mode, error) {
	rs := []Rule{ConstantValue{Layer: LandLayer, Value: landValue}}
	for _, df := range depthFields {
		rs = append(rs, MappedValue{Layer: df.layer, Field: df.field})
	}
	table, err := NewTable(rs...)
	if err != nil {
		return Mode{}, fmt.Errorf("depth mode: %w", err)
	}

	return Mode{
		Name:        DepthModeName,
		Table:       table,
		ValueColumn: DepthColumn,
		ValueType:   Real,
		OutputName:  DefaultDepthOutput,
		OpenOptions: engine.OpenOptions{
			SplitMultipoint:  true,
			AddSoundingDepth: true,
		},
		Dimension: 2,
	}, nil
}
