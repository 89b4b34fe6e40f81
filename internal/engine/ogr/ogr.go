// Package ogr implements the geodata engine on top of the GDAL command line
// tools. Schemas come from ogrinfo -json and queries run through ogr2ogr.
package ogr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/beetlebugorg/s57extract/internal/engine"
)

// Runner executes a command and returns its output streams.
type Runner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Engine drives ogrinfo and ogr2ogr.
type Engine struct {
	OGRInfo string
	OGR2OGR string
	Run     Runner
}

var _ engine.Engine = (*Engine)(nil)

// New returns an engine using the given binaries, looked up on PATH when
// they are bare names. Empty names default to ogrinfo and ogr2ogr.
func New(ogrinfo, ogr2ogr string) *Engine {
	if ogrinfo == "" {
		ogrinfo = "ogrinfo"
	}
	if ogr2ogr == "" {
		ogr2ogr = "ogr2ogr"
	}
	return &Engine{OGRInfo: ogrinfo, OGR2OGR: ogr2ogr, Run: ExecRunner}
}

type infoDoc struct {
	Layers []struct {
		Name         string `json:"name"`
		FeatureCount int    `json:"featureCount"`
		Fields       []struct {
			Name string `json:"name"`
		} `json:"fields"`
	} `json:"layers"`
}

// Open reads the cell's layer schemas. ogr2ogr reopens the cell on every
// Translate call with TranslateOptions.OpenOptions.
func (e *Engine) Open(ctx context.Context, path string, opts engine.OpenOptions) (engine.Dataset, error) {
	args := []string{"-json", "-so", "-ro"}
	for _, kv := range opts.Strings() {
		args = append(args, "-oo", kv)
	}
	args = append(args, path)

	stdout, stderr, err := e.Run(ctx, e.OGRInfo, args...)
	if err != nil {
		return nil, &engine.OpenError{Path: path, Err: commandError(err, stderr)}
	}

	var doc infoDoc
	if err := json.Unmarshal(stdout, &doc); err != nil {
		return nil, &engine.OpenError{Path: path, Err: fmt.Errorf("decode ogrinfo output: %w", err)}
	}

	ds := &dataset{path: path, byName: make(map[string]*layer)}
	for _, l := range doc.Layers {
		lyr := &layer{name: l.Name, count: l.FeatureCount}
		for _, f := range l.Fields {
			lyr.fields = append(lyr.fields, f.Name)
		}
		ds.layers = append(ds.layers, lyr)
		ds.byName[lyr.name] = lyr
	}
	return ds, nil
}

// Translate runs ogr2ogr. The number of rows written is not reported.
func (e *Engine) Translate(ctx context.Context, dest string, src engine.Dataset, opts engine.TranslateOptions) (engine.Result, error) {
	args := append(opts.Args(), dest, src.Path())

	_, stderr, err := e.Run(ctx, e.OGR2OGR, args...)
	if err != nil {
		return engine.Result{}, &engine.TranslateError{
			Dest:   dest,
			Layer:  opts.LayerName,
			Err:    err,
			Stderr: strings.TrimSpace(string(stderr)),
		}
	}
	return engine.Result{Path: dest, Rows: -1}, nil
}

func commandError(err error, stderr []byte) error {
	msg := strings.TrimSpace(string(stderr))
	var exitErr *exec.ExitError
	if msg != "" && errors.As(err, &exitErr) {
		return fmt.Errorf("%w: %s", err, msg)
	}
	return err
}

type dataset struct {
	path   string
	layers []*layer
	byName map[string]*layer
}

func (d *dataset) Path() string { return d.path }

func (d *dataset) Layer(name string) (engine.Layer, bool) {
	l, ok := d.byName[name]
	if !ok {
		return nil, false
	}
	return l, true
}

func (d *dataset) LayerNames() []string {
	names := make([]string, 0, len(d.layers))
	for _, l := range d.layers {
		names = append(names, l.name)
	}
	return names
}

func (d *dataset) Close() error { return nil }

type layer struct {
	name   string
	count  int
	fields []string
}

func (l *layer) Name() string         { return l.name }
func (l *layer) FieldNames() []string { return l.fields }
func (l *layer) FeatureCount() int    { return l.count }
