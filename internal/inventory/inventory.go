// Package inventory surveys a cell tree without writing anything: which
// layers each cell carries and which of them every extraction mode would
// pick up.
package inventory

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"github.com/beetlebugorg/s57extract/internal/engine"
	"github.com/beetlebugorg/s57extract/internal/logger"
	"github.com/beetlebugorg/s57extract/internal/pipeline"
	"github.com/beetlebugorg/s57extract/internal/query"
	"github.com/beetlebugorg/s57extract/internal/rules"
	"github.com/beetlebugorg/s57extract/pkg/s57"
)

// Options controls a survey.
type Options struct {
	Root      string
	Extension string
	// Workers bounds the number of cells opened at once. Zero means
	// GOMAXPROCS.
	Workers int
	Level   pipeline.LevelSpec
	Modes   []rules.Mode
	// IgnoreUpdates opens base cells without their update files.
	IgnoreUpdates bool
}

// CellInfo describes one surveyed cell.
type CellInfo struct {
	Path    string `json:"path"`
	Name    string `json:"name"`
	Level   string `json:"level"`
	Updates int    `json:"updates"`
	// Digest is the xxh3 hash of the base cell followed by its update files.
	Digest   string `json:"digest"`
	Layers   int    `json:"layers"`
	Features int    `json:"features"`
	// Eligible maps each mode name to the layers its query would include.
	Eligible map[string][]string `json:"eligible,omitempty"`
	Error    string              `json:"error,omitempty"`
}

// Survey opens every cell under opts.Root concurrently and reports on each,
// in discovery order. A cell that cannot be read is reported with Error
// set; only a failure to walk the tree is returned as an error.
func Survey(ctx context.Context, eng engine.Engine, opts Options) ([]CellInfo, error) {
	var paths []string
	for path, err := range pipeline.Discover(opts.Root, opts.Extension) {
		if err != nil {
			return nil, &pipeline.TraversalError{Root: opts.Root, Err: err}
		}
		paths = append(paths, path)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]CellInfo, len(paths))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = surveyCell(gCtx, eng, path, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func surveyCell(ctx context.Context, eng engine.Engine, path string, opts Options) CellInfo {
	log := logger.FromContext(ctx).With("cell", path)
	name := filepath.Base(path)
	info := CellInfo{
		Path:     path,
		Name:     name,
		Level:    string(pipeline.LevelCode(name, opts.Level.Offset, opts.Level.Sentinel)),
		Eligible: make(map[string][]string, len(opts.Modes)),
	}

	files := []string{path}
	if !opts.IgnoreUpdates {
		updates, err := s57.UpdateFiles(path)
		if err != nil {
			info.Error = err.Error()
			return info
		}
		info.Updates = len(updates)
		files = append(files, updates...)
	}

	digest, err := Digest(files...)
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.Digest = fmt.Sprintf("%016x", digest)

	// Modes open cells differently (split soundings), so each gets its own
	// dataset.
	for _, mode := range opts.Modes {
		if err := surveyMode(ctx, eng, path, mode, opts.IgnoreUpdates, &info); err != nil {
			log.Warn("cannot open", "mode", mode.Name, "error", err)
			info.Error = err.Error()
			return info
		}
	}

	return info
}

// surveyMode opens the cell the way mode does and records its layer counts
// and eligible rules in info. The dataset is closed before it returns.
func surveyMode(ctx context.Context, eng engine.Engine, path string, mode rules.Mode, ignoreUpdates bool, info *CellInfo) error {
	openOpts := mode.OpenOptions
	openOpts.IgnoreUpdates = ignoreUpdates

	ds, err := eng.Open(ctx, path, openOpts)
	if err != nil {
		return err
	}
	defer func() {
		if err := ds.Close(); err != nil {
			logger.FromContext(ctx).Warn("close failed", "cell", path, "mode", mode.Name, "error", err)
		}
	}()

	names := ds.LayerNames()
	info.Layers = len(names)
	info.Features = 0
	for _, n := range names {
		if l, ok := ds.Layer(n); ok {
			info.Features += l.FeatureCount()
		}
	}

	eligible := []string{}
	for _, rule := range mode.Table.Rules() {
		field, _ := rule.RequiredField()
		if query.Probe(ds, rule.LayerName(), field).Eligible() {
			eligible = append(eligible, rule.LayerName())
		}
	}
	info.Eligible[mode.Name] = eligible
	return nil
}

// Digest hashes the files in order with xxh3.
func Digest(files ...string) (uint64, error) {
	h := xxh3.New()
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			return 0, fmt.Errorf("digest: %w", err)
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return 0, fmt.Errorf("digest %s: %w", name, err)
		}
	}
	return h.Sum64(), nil
}
