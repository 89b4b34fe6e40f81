// Package sink writes unified queries into the run's single output table,
// creating it on the first successful write and appending afterwards.
package sink

import (
	"context"
	"fmt"
	"strconv"

	"github.com/beetlebugorg/s57extract/internal/engine"
	"github.com/beetlebugorg/s57extract/internal/query"
	"github.com/beetlebugorg/s57extract/internal/rules"
	"github.com/beetlebugorg/s57extract/pkg/s57"
)

// Target is where rows are written: a directory and a table name in it.
type Target struct {
	Dir   string
	Table string
}

// WriteError reports a failed write for one cell.
type WriteError struct {
	Cell string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Cell, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Settings are the translate settings shared by every write of a run.
type Settings struct {
	OpenOptions   engine.OpenOptions
	Dimension     int
	WKTPrecision  int
	SpatialFilter *s57.Bounds
}

// SettingsFor derives the write settings of a mode.
func SettingsFor(mode rules.Mode, precision int, filter *s57.Bounds) Settings {
	return Settings{
		OpenOptions:   mode.OpenOptions,
		Dimension:     mode.Dimension,
		WKTPrecision:  precision,
		SpatialFilter: filter,
	}
}

// Sink tracks whether the output table exists. A Sink belongs to one run and
// is not safe for concurrent use.
type Sink struct {
	engine      engine.Engine
	settings    Settings
	initialized bool
}

// New returns a sink whose table has not been written yet.
func New(e engine.Engine, settings Settings) *Sink {
	return &Sink{engine: e, settings: settings}
}

// Initialized reports whether a write has succeeded during this run.
func (s *Sink) Initialized() bool { return s.initialized }

// Options returns the translate options of the next write of q.
func (s *Sink) Options(q *query.UnifiedQuery, table string) engine.TranslateOptions {
	opts := engine.TranslateOptions{
		Format:         engine.FormatCSV,
		Dialect:        engine.DialectSQLite,
		Append:         s.initialized,
		SQL:            q.SQL,
		LayerName:      table,
		GeometryLayout: engine.GeometryAsWKT,
		Dimension:      s.settings.Dimension,
		OpenOptions:    s.settings.OpenOptions,
		SpatialFilter:  s.settings.SpatialFilter,
	}
	if s.settings.WKTPrecision > 0 {
		opts.Config = map[string]string{
			engine.WKTPrecisionKey: strconv.Itoa(s.settings.WKTPrecision),
		}
	}
	return opts
}

// Write runs q against the cell and writes the rows to target. The first
// successful write creates the table; later writes append to it. A failed
// write leaves the sink's state as it was.
func (s *Sink) Write(ctx context.Context, src engine.Dataset, q *query.UnifiedQuery, target Target) (engine.Result, error) {
	opts := s.Options(q, target.Table)

	res, err := s.engine.Translate(ctx, target.Dir, src, opts)
	if err != nil {
		return engine.Result{}, &WriteError{Cell: src.Path(), Err: err}
	}

	s.initialized = true
	return res, nil
}
