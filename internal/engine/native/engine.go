// Package native implements the geodata engine in process. Cells are read
// with the s57 reader, the unified query runs on an in-memory SQLite database
// holding one table per object class, and results are written as CSV with a
// leading WKT column.
package native

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/beetlebugorg/s57extract/internal/engine"
	"github.com/beetlebugorg/s57extract/internal/geom"
	"github.com/beetlebugorg/s57extract/pkg/s57"
)

// geometryColumn is the column holding feature geometry as WKT in every
// layer table.
const geometryColumn = "geometry"

// DefaultPrecision is the number of WKT decimals written when the translate
// options do not set OGR_WKT_PRECISION.
const DefaultPrecision = 15

// Option configures an Engine.
type Option func(*Engine)

// WithPrecision sets the default WKT precision.
func WithPrecision(decimals int) Option {
	return func(e *Engine) { e.precision = decimals }
}

// WithParser replaces the chart reader.
func WithParser(p s57.Parser) Option {
	return func(e *Engine) { e.parser = p }
}

// Engine is the in-process engine.
type Engine struct {
	parser    s57.Parser
	precision int
}

var _ engine.Engine = (*Engine)(nil)

// New returns an engine with the default chart reader.
func New(opts ...Option) *Engine {
	e := &Engine{
		parser:    s57.NewParser(),
		precision: DefaultPrecision,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Open parses the cell, applying its update files unless opts.IgnoreUpdates
// is set.
func (e *Engine) Open(ctx context.Context, path string, opts engine.OpenOptions) (engine.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, &engine.OpenError{Path: path, Err: err}
	}

	parseOpts := s57.DefaultParseOptions()
	parseOpts.ApplyUpdates = !opts.IgnoreUpdates
	parseOpts.SplitMultipoint = opts.SplitMultipoint
	parseOpts.AddSoundingDepth = opts.AddSoundingDepth

	chart, err := e.parser.ParseWithOptions(path, parseOpts)
	if err != nil {
		return nil, &engine.OpenError{Path: path, Err: err}
	}
	return FromChart(path, chart), nil
}

// Translate runs opts.SQL over src and writes the result to
// <dest>/<opts.LayerName>.csv. The open options of a native dataset are fixed
// when it is opened, so opts.OpenOptions is not consulted here.
func (e *Engine) Translate(ctx context.Context, dest string, src engine.Dataset, opts engine.TranslateOptions) (engine.Result, error) {
	fail := func(err error) (engine.Result, error) {
		return engine.Result{}, &engine.TranslateError{Dest: dest, Layer: opts.LayerName, Err: err}
	}

	if err := validate(opts); err != nil {
		return fail(err)
	}
	ds, ok := src.(*Dataset)
	if !ok {
		return fail(fmt.Errorf("source %s was not opened by the native engine", src.Path()))
	}
	if ds.chart == nil {
		return fail(fmt.Errorf("source %s is closed", ds.path))
	}

	columns, rows, err := e.query(ctx, ds, opts)
	if err != nil {
		return fail(err)
	}

	header, records, err := encodeRows(columns, rows, opts.GeometryLayout, opts.WKTPrecision(e.precision))
	if err != nil {
		return fail(err)
	}

	path := filepath.Join(dest, opts.LayerName+".csv")
	if opts.Append {
		err = appendTable(path, header, records)
	} else {
		err = createTable(path, header, records)
	}
	if err != nil {
		return fail(err)
	}

	return engine.Result{Path: path, Rows: len(records)}, nil
}

func validate(opts engine.TranslateOptions) error {
	if opts.Format != engine.FormatCSV {
		return fmt.Errorf("unsupported output format %q", opts.Format)
	}
	if opts.Dialect != engine.DialectSQLite {
		return fmt.Errorf("unsupported SQL dialect %q", opts.Dialect)
	}
	if opts.Dimension != 0 && opts.Dimension != 2 {
		return fmt.Errorf("unsupported output dimension %d", opts.Dimension)
	}
	if strings.TrimSpace(opts.SQL) == "" {
		return errors.New("empty SQL statement")
	}
	if opts.LayerName == "" {
		return errors.New("empty destination layer name")
	}
	return nil
}

// query loads the dataset into a fresh in-memory database and runs the
// statement against it.
func (e *Engine) query(ctx context.Context, ds *Dataset, opts engine.TranslateOptions) ([]string, [][]any, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}
	defer db.Close()
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	features := ds.featuresByLayer(opts.SpatialFilter)
	for _, l := range ds.layers {
		if err := loadLayer(ctx, db, l, features[l.name]); err != nil {
			return nil, nil, err
		}
	}

	rs, err := db.QueryContext(ctx, opts.SQL)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: query: %w", err)
	}
	defer rs.Close()

	columns, err := rs.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: columns: %w", err)
	}

	var rows [][]any
	for rs.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rs.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("sqlite: scan: %w", err)
		}
		rows = append(rows, values)
	}
	if err := rs.Err(); err != nil {
		return nil, nil, fmt.Errorf("sqlite: query: %w", err)
	}
	return columns, rows, nil
}

// loadLayer creates the layer's table and inserts its features in one
// transaction. Attribute columns are untyped so values keep the type the
// reader gave them.
func loadLayer(ctx context.Context, db *sql.DB, l *layer, features []s57.Feature) error {
	columns := make([]string, 0, len(l.fields)+1)
	columns = append(columns, quoteIdent(geometryColumn))
	for _, f := range l.fields {
		columns = append(columns, quoteIdent(f))
	}

	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(l.name), strings.Join(columns, ", "))
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("sqlite: create %s: %w", l.name, err)
	}
	if len(features) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	insert := fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(l.name), placeholders)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlite: prepare insert into %s: %w", l.name, err)
	}
	defer stmt.Close()

	args := make([]any, len(columns))
	for i := range features {
		f := &features[i]
		args[0] = nil
		if g := geom.FromS57(f.Geometry()); g != nil {
			args[0] = geom.Marshal(g)
		}
		for j, field := range l.fields {
			v, _ := f.Attribute(field)
			args[j+1] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("sqlite: insert into %s: %w", l.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit %s: %w", l.name, err)
	}
	return nil
}

// encodeRows renders query results as CSV records. With the AS_WKT layout
// the geometry column (named WKT or GEOMETRY) is written first under the
// header WKT; otherwise it is dropped.
func encodeRows(columns []string, rows [][]any, layout engine.GeometryLayout, precision int) ([]string, [][]string, error) {
	geomIdx := -1
	for i, c := range columns {
		if strings.EqualFold(c, "WKT") || strings.EqualFold(c, geometryColumn) {
			geomIdx = i
			break
		}
	}

	var header []string
	if geomIdx >= 0 && layout == engine.GeometryAsWKT {
		header = append(header, "WKT")
	}
	for i, c := range columns {
		if i != geomIdx {
			header = append(header, c)
		}
	}

	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		record := make([]string, 0, len(header))
		if geomIdx >= 0 && layout == engine.GeometryAsWKT {
			text, err := formatGeometry(row[geomIdx], precision)
			if err != nil {
				return nil, nil, err
			}
			record = append(record, text)
		}
		for i, v := range row {
			if i != geomIdx {
				record = append(record, formatValue(v))
			}
		}
		records = append(records, record)
	}
	return header, records, nil
}

func formatGeometry(v any, precision int) (string, error) {
	text := formatValue(v)
	if text == "" {
		return "", nil
	}
	g, err := geom.Parse(text)
	if err != nil {
		return "", err
	}
	return geom.Format(g, precision), nil
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		if v {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(v)
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
