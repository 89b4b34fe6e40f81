// Package pipeline runs chart cells through probe, query construction and
// the aggregation sink, one cell at a time, and summarises the run.
package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/beetlebugorg/s57extract/internal/engine"
	"github.com/beetlebugorg/s57extract/internal/logger"
	"github.com/beetlebugorg/s57extract/internal/metrics"
	"github.com/beetlebugorg/s57extract/internal/query"
	"github.com/beetlebugorg/s57extract/internal/rules"
	"github.com/beetlebugorg/s57extract/internal/sink"
)

// LevelSpec locates the chart-level code in a cell filename.
type LevelSpec struct {
	Offset   int
	Sentinel byte
}

// DefaultLevel takes the third character of the filename, or '0'.
var DefaultLevel = LevelSpec{Offset: 2, Sentinel: '0'}

// CellResult is the outcome of one cell.
type CellResult struct {
	Path  string `json:"path"`
	Level string `json:"level"`
	State State  `json:"state"`
	// Layers lists the layers included in the cell's query.
	Layers []string `json:"layers,omitempty"`
	// Rows is the number of rows written, -1 when the engine does not say.
	Rows     int           `json:"rows"`
	Reason   string        `json:"reason,omitempty"`
	Duration time.Duration `json:"duration_ns"`
	Err      error         `json:"-"`
}

// Pipeline processes single cells against a shared sink.
type Pipeline struct {
	Engine  engine.Engine
	Mode    rules.Mode
	Builder query.Builder
	Sink    *sink.Sink
	Target  sink.Target
	Level   LevelSpec
	// IgnoreUpdates opens base cells without their update files.
	IgnoreUpdates bool
}

// Process opens the cell, builds its unified query and writes it. The cell
// is closed on every path. Failures are reported in the result; they never
// stop the caller from processing the next cell.
func (p *Pipeline) Process(ctx context.Context, path string) (res CellResult) {
	start := time.Now()
	log := logger.FromContext(ctx).With("cell", path)
	res = CellResult{Path: path}

	defer func() {
		res.Duration = time.Since(start)
		metrics.RecordCell(p.Mode.Name, res.State.String(), res.Duration)
	}()

	openOpts := p.Mode.OpenOptions
	openOpts.IgnoreUpdates = p.IgnoreUpdates

	stepStart := time.Now()
	ds, err := p.Engine.Open(ctx, path, openOpts)
	metrics.RecordStep(p.Mode.Name, "open", err, time.Since(stepStart))
	if err != nil {
		log.Warn("cannot open", "error", err)
		return fail(res, err)
	}
	res.State = StateOpened
	defer func() {
		if err := ds.Close(); err != nil {
			log.Warn("close failed", "error", err)
		}
	}()

	level := LevelCode(filepath.Base(path), p.Level.Offset, p.Level.Sentinel)
	res.Level = string(level)

	q, verdicts := p.Builder.Build(ds, level, p.Mode.Table)
	res.State = StateProbed
	for _, v := range verdicts {
		if !v.Eligible() {
			log.Debug("layer not eligible", "layer", v.Layer, "reason", v.Reason())
		}
	}
	if q == nil {
		res.State = StateSkipped
		res.Reason = "no eligible layers"
		log.Info("skipped", "reason", res.Reason)
		return res
	}
	res.State = StateQueryBuilt
	res.Layers = q.Layers
	log.Debug("query built", "layers", q.Layers, "sql", q.SQL)

	stepStart = time.Now()
	wr, err := p.Sink.Write(ctx, ds, q, p.Target)
	metrics.RecordStep(p.Mode.Name, "write", err, time.Since(stepStart))
	if err != nil {
		log.Error("write failed", "error", err)
		return fail(res, err)
	}

	res.State = StateWritten
	res.Rows = wr.Rows
	if wr.Rows > 0 {
		metrics.RecordRows(p.Mode.Name, int64(wr.Rows))
	}
	log.Info("written", "layers", q.Layers, "rows", wr.Rows)
	return res
}

func fail(res CellResult, err error) CellResult {
	res.State = StateFailed
	res.Err = err
	res.Reason = err.Error()
	return res
}
