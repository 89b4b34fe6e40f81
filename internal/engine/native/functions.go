package native

import (
	"database/sql/driver"
	"fmt"

	"github.com/paulmach/orb"
	"modernc.org/sqlite"

	"github.com/beetlebugorg/s57extract/internal/geom"
)

// Geometry travels through SQL as WKT text. NULL in gives NULL out.
func init() {
	sqlite.MustRegisterDeterministicScalarFunction("ST_MakeValid", 1, stMakeValid)
	sqlite.MustRegisterDeterministicScalarFunction("ST_SimplifyPreserveTopology", 2, stSimplifyPreserveTopology)
	sqlite.MustRegisterDeterministicScalarFunction("ST_AsText", 1, stAsText)
	sqlite.MustRegisterDeterministicScalarFunction("ST_IsEmpty", 1, stIsEmpty)
}

func stMakeValid(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	g, ok, err := geometryArg("ST_MakeValid", args[0])
	if err != nil || !ok {
		return nil, err
	}
	return geometryValue(geom.MakeValid(g)), nil
}

func stSimplifyPreserveTopology(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	g, ok, err := geometryArg("ST_SimplifyPreserveTopology", args[0])
	if err != nil || !ok {
		return nil, err
	}

	var tolerance float64
	switch v := args[1].(type) {
	case float64:
		tolerance = v
	case int64:
		tolerance = float64(v)
	default:
		return nil, fmt.Errorf("ST_SimplifyPreserveTopology: tolerance must be numeric, got %T", args[1])
	}
	if tolerance < 0 {
		return nil, fmt.Errorf("ST_SimplifyPreserveTopology: negative tolerance %v", tolerance)
	}

	return geometryValue(geom.Simplify(g, tolerance)), nil
}

func stAsText(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	g, ok, err := geometryArg("ST_AsText", args[0])
	if err != nil || !ok {
		return nil, err
	}
	return geometryValue(g), nil
}

func stIsEmpty(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	g, ok, err := geometryArg("ST_IsEmpty", args[0])
	if err != nil || !ok {
		return nil, err
	}
	if geom.IsEmpty(g) {
		return int64(1), nil
	}
	return int64(0), nil
}

// geometryArg decodes a WKT argument. ok is false for NULL and empty text.
func geometryArg(fn string, v driver.Value) (g orb.Geometry, ok bool, err error) {
	var text string
	switch s := v.(type) {
	case nil:
		return nil, false, nil
	case string:
		text = s
	case []byte:
		text = string(s)
	default:
		return nil, false, fmt.Errorf("%s: geometry must be WKT text, got %T", fn, v)
	}
	if text == "" {
		return nil, false, nil
	}

	g, err = geom.Parse(text)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", fn, err)
	}
	return g, true, nil
}

func geometryValue(g orb.Geometry) driver.Value {
	if g == nil {
		return nil
	}
	return geom.Marshal(g)
}
