// Package engine defines the vector geodata engine the extraction pipeline
// runs against: opening chart cells, inspecting layer schemas, and translating
// a SQL query over a cell into a delimited-text table.
package engine

import (
	"context"
	"fmt"
)

// Engine opens chart cells and translates queries over them.
type Engine interface {
	// Open opens a chart cell read-only. Failures are reported as *OpenError.
	Open(ctx context.Context, path string, opts OpenOptions) (Dataset, error)

	// Translate runs opts.SQL against src and writes the result as table
	// opts.LayerName under dest, creating or appending per opts.Append.
	// Failures are reported as *TranslateError and leave dest unchanged.
	Translate(ctx context.Context, dest string, src Dataset, opts TranslateOptions) (Result, error)
}

// Dataset is an opened chart cell. Close must be called exactly once.
type Dataset interface {
	Path() string
	// Layer returns the named layer; names match exactly.
	Layer(name string) (Layer, bool)
	LayerNames() []string
	Close() error
}

// Layer is one feature class of a dataset.
type Layer interface {
	Name() string
	FieldNames() []string
	FeatureCount() int
}

// Result describes a successful Translate call. Rows is -1 when the engine
// cannot tell how many rows it wrote.
type Result struct {
	Path string
	Rows int
}

// HasField reports whether the layer schema carries the named field.
func HasField(l Layer, field string) bool {
	for _, name := range l.FieldNames() {
		if name == field {
			return true
		}
	}
	return false
}

// OpenError reports a cell that the engine could not open.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// TranslateError reports a query or write the engine rejected.
type TranslateError struct {
	Dest   string
	Layer  string
	Err    error
	Stderr string
}

func (e *TranslateError) Error() string {
	msg := fmt.Sprintf("translate %s into %s: %v", e.Layer, e.Dest, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *TranslateError) Unwrap() error { return e.Err }
