// Package query decides which layers of a cell can be extracted and builds
// the unified SQL query over them.
package query

import (
	"fmt"

	"github.com/beetlebugorg/s57extract/internal/engine"
)

// Eligibility is the result of probing one layer of a cell.
type Eligibility struct {
	Layer string
	// Field is the required field; empty when the rule needs none.
	Field        string
	LayerPresent bool
	FieldPresent bool
}

// Eligible reports whether the layer can be extracted.
func (e Eligibility) Eligible() bool {
	return e.LayerPresent && (e.Field == "" || e.FieldPresent)
}

// Reason describes why the layer is not eligible. It is empty for eligible
// layers.
func (e Eligibility) Reason() string {
	switch {
	case !e.LayerPresent:
		return "layer not present"
	case e.Field != "" && !e.FieldPresent:
		return fmt.Sprintf("field %s not present", e.Field)
	default:
		return ""
	}
}

// Probe looks up layer on the cell and, when field is not empty, the field
// on the layer's schema. Names match exactly. A layer without features is
// still eligible.
func Probe(ds engine.Dataset, layer, field string) Eligibility {
	e := Eligibility{Layer: layer, Field: field}

	l, ok := ds.Layer(layer)
	if !ok {
		return e
	}
	e.LayerPresent = true
	if field != "" {
		e.FieldPresent = engine.HasField(l, field)
	}
	return e
}
