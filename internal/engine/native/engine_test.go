package native

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beetlebugorg/s57extract/internal/engine"
	"github.com/beetlebugorg/s57extract/pkg/s57"
)

func square(lon, lat, size float64) s57.Geometry {
	return s57.Geometry{
		Type: s57.GeometryTypePolygon,
		Parts: [][][]float64{{
			{lon, lat}, {lon + size, lat}, {lon + size, lat + size}, {lon, lat + size}, {lon, lat},
		}},
	}
}

func testDataset(t *testing.T) *Dataset {
	t.Helper()
	chart := s57.NewChart("US5MA22M", []s57.Feature{
		s57.NewFeature(1, "LNDARE", square(-70, 41, 0.5), map[string]interface{}{"NOBJNM": "Nantucket", "OBJNAM": "Nantucket"}),
		s57.NewFeature(2, "DEPARE", square(-70.5, 41, 0.5), map[string]interface{}{"DRVAL1": "12.5", "DRVAL2": "20"}),
		s57.NewFeature(3, "DEPARE", square(-71, 41, 0.5), map[string]interface{}{"DRVAL1": ""}),
		s57.NewFeature(4, "LNDARE", square(-60, 41, 0.5), nil),
		s57.NewFeature(5, "SOUNDG", s57.Geometry{
			Type:        s57.GeometryTypePoint,
			Coordinates: [][]float64{{-70.25, 41.25, 3.2}},
		}, map[string]interface{}{"DEPTH": 3.2}),
	})
	return FromChart("testdata/US5MA22M.000", chart)
}

func baseOptions(sql string) engine.TranslateOptions {
	return engine.TranslateOptions{
		Format:         engine.FormatCSV,
		Dialect:        engine.DialectSQLite,
		SQL:            sql,
		LayerName:      "out",
		GeometryLayout: engine.GeometryAsWKT,
		Config:         map[string]string{engine.WKTPrecisionKey: "8"},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

const namesSQL = `SELECT ST_MakeValid(ST_SimplifyPreserveTopology(geometry, 0.00025)) AS WKT, '5' AS LEVEL, 'LNDARE' AS LAYERS, "NOBJNM" FROM "LNDARE" WHERE "NOBJNM" IS NOT NULL AND "NOBJNM" != ''`

const depthSQL = `SELECT ST_MakeValid(ST_SimplifyPreserveTopology(geometry, 0.00025)) AS WKT, 'LNDARE' AS LAYERS, CAST(-1 AS REAL) AS DEPTH FROM "LNDARE"` +
	` UNION ALL ` +
	`SELECT ST_MakeValid(ST_SimplifyPreserveTopology(geometry, 0.00025)) AS WKT, 'DEPARE' AS LAYERS, CAST("DRVAL1" AS REAL) AS DEPTH FROM "DEPARE" WHERE "DRVAL1" IS NOT NULL AND "DRVAL1" != ''`

func TestFromChart(t *testing.T) {
	ds := testDataset(t)

	assert.Equal(t, []string{"LNDARE", "DEPARE", "SOUNDG"}, ds.LayerNames())

	land, ok := ds.Layer("LNDARE")
	require.True(t, ok)
	assert.Equal(t, 2, land.FeatureCount())
	assert.Equal(t, []string{"NOBJNM", "OBJNAM"}, land.FieldNames())

	depare, ok := ds.Layer("DEPARE")
	require.True(t, ok)
	assert.Equal(t, []string{"DRVAL1", "DRVAL2"}, depare.FieldNames())

	_, ok = ds.Layer("lndare")
	assert.False(t, ok, "layer names match exactly")

	require.NoError(t, ds.Close())
}

func TestTranslateCreatesTable(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "nobjnm")
	e := New()

	res, err := e.Translate(context.Background(), dest, testDataset(t), baseOptions(namesSQL))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rows)
	assert.Equal(t, filepath.Join(dest, "out.csv"), res.Path)

	records := readCSV(t, res.Path)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"WKT", "LEVEL", "LAYERS", "NOBJNM"}, records[0])
	assert.True(t, strings.HasPrefix(records[1][0], "POLYGON"), records[1][0])
	assert.Contains(t, records[1][0], "-69.5 41.5")
	assert.Equal(t, []string{"5", "LNDARE", "Nantucket"}, records[1][1:])

	// No temp files are left next to the table.
	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestTranslateDepthValues(t *testing.T) {
	dest := t.TempDir()
	opts := baseOptions(depthSQL)
	opts.Dimension = 2

	res, err := New().Translate(context.Background(), dest, testDataset(t), opts)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Rows)

	records := readCSV(t, res.Path)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"WKT", "LAYERS", "DEPTH"}, records[0])
	assert.Equal(t, []string{"LNDARE", "-1"}, records[1][1:])
	assert.Equal(t, []string{"LNDARE", "-1"}, records[2][1:])
	assert.Equal(t, []string{"DEPARE", "12.5"}, records[3][1:])
}

func TestTranslateAppends(t *testing.T) {
	dest := t.TempDir()
	e := New()
	ds := testDataset(t)

	_, err := e.Translate(context.Background(), dest, ds, baseOptions(namesSQL))
	require.NoError(t, err)

	opts := baseOptions(namesSQL)
	opts.Append = true
	res, err := e.Translate(context.Background(), dest, ds, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rows)

	records := readCSV(t, res.Path)
	require.Len(t, records, 3)
	assert.Equal(t, "WKT", records[0][0])
	assert.Equal(t, records[1], records[2])
}

func TestTranslateAppendCreatesMissingTable(t *testing.T) {
	opts := baseOptions(namesSQL)
	opts.Append = true

	res, err := New().Translate(context.Background(), t.TempDir(), testDataset(t), opts)
	require.NoError(t, err)
	assert.Len(t, readCSV(t, res.Path), 2)
}

func TestTranslateSpatialFilter(t *testing.T) {
	opts := baseOptions(`SELECT geometry AS WKT, 'SOUNDG' AS LAYERS, CAST("DEPTH" AS REAL) AS DEPTH FROM "SOUNDG"`)
	opts.SpatialFilter = &s57.Bounds{MinLon: -70.3, MinLat: 41.2, MaxLon: -70.2, MaxLat: 41.3}

	res, err := New().Translate(context.Background(), t.TempDir(), testDataset(t), opts)
	require.NoError(t, err)
	records := readCSV(t, res.Path)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"POINT(-70.25 41.25)", "SOUNDG", "3.2"}, records[1])

	opts.SpatialFilter = &s57.Bounds{MinLon: 10, MinLat: 10, MaxLon: 11, MaxLat: 11}
	res, err = New().Translate(context.Background(), t.TempDir(), testDataset(t), opts)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Rows)
	assert.Len(t, readCSV(t, res.Path), 1)
}

func TestTranslateWithoutGeometryLayoutDropsGeometry(t *testing.T) {
	opts := baseOptions(namesSQL)
	opts.GeometryLayout = engine.GeometryNone

	res, err := New().Translate(context.Background(), t.TempDir(), testDataset(t), opts)
	require.NoError(t, err)
	records := readCSV(t, res.Path)
	assert.Equal(t, []string{"LEVEL", "LAYERS", "NOBJNM"}, records[0])
}

func TestTranslateErrors(t *testing.T) {
	ds := testDataset(t)

	tests := []struct {
		name   string
		mutate func(*engine.TranslateOptions)
		setup  func(t *testing.T, dest string)
		errMsg string
	}{
		{
			name:   "unsupported format",
			mutate: func(o *engine.TranslateOptions) { o.Format = "GPKG" },
			errMsg: "unsupported output format",
		},
		{
			name:   "three dimensions",
			mutate: func(o *engine.TranslateOptions) { o.Dimension = 3 },
			errMsg: "unsupported output dimension 3",
		},
		{
			name:   "bad sql",
			mutate: func(o *engine.TranslateOptions) { o.SQL = `SELECT * FROM "NOPE"` },
			errMsg: "sqlite: query",
		},
		{
			name:   "table exists on create",
			setup:  func(t *testing.T, dest string) { writeFile(t, filepath.Join(dest, "out.csv"), "WKT,LEVEL\n") },
			errMsg: "already exists",
		},
		{
			name:   "append header mismatch",
			mutate: func(o *engine.TranslateOptions) { o.Append = true },
			setup:  func(t *testing.T, dest string) { writeFile(t, filepath.Join(dest, "out.csv"), "WKT,LAYERS,DEPTH\n") },
			errMsg: "do not match",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := t.TempDir()
			opts := baseOptions(namesSQL)
			if tt.mutate != nil {
				tt.mutate(&opts)
			}
			if tt.setup != nil {
				tt.setup(t, dest)
			}

			_, err := New().Translate(context.Background(), dest, ds, opts)
			require.Error(t, err)

			var te *engine.TranslateError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, dest, te.Dest)
			assert.Equal(t, "out", te.Layer)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestTranslateFailureLeavesTableUnchanged(t *testing.T) {
	dest := t.TempDir()
	path := filepath.Join(dest, "out.csv")
	writeFile(t, path, "WKT,LEVEL,LAYERS,NOBJNM\n")

	opts := baseOptions(`SELECT geometry AS WKT, 1 AS LEVEL FROM "LNDARE" WHERE ST_MakeValid(42)`)
	opts.Append = true
	_, err := New().Translate(context.Background(), dest, testDataset(t), opts)
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "WKT,LEVEL,LAYERS,NOBJNM\n", string(data))
}

// failingAppender writes through to the table, then fails.
type failingAppender struct {
	f         *os.File
	partial   bool
	failClose bool
}

func (w *failingAppender) Write(p []byte) (int, error) {
	if w.partial {
		n, _ := w.f.Write(p[:len(p)/2])
		return n, errors.New("disk full")
	}
	return w.f.Write(p)
}

func (w *failingAppender) Close() error {
	if err := w.f.Close(); err != nil {
		return err
	}
	if w.failClose {
		return errors.New("flush failed")
	}
	return nil
}

func TestTranslateAppendFailureRestoresTable(t *testing.T) {
	tests := []struct {
		name   string
		writer failingAppender
		errMsg string
	}{
		{name: "write fails midway", writer: failingAppender{partial: true}, errMsg: "disk full"},
		{name: "close fails after write", writer: failingAppender{failClose: true}, errMsg: "flush failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := t.TempDir()
			path := filepath.Join(dest, "out.csv")

			_, err := New().Translate(context.Background(), dest, testDataset(t), baseOptions(namesSQL))
			require.NoError(t, err)
			before, err := os.ReadFile(path)
			require.NoError(t, err)

			orig := openForAppend
			t.Cleanup(func() { openForAppend = orig })
			openForAppend = func(path string) (io.WriteCloser, error) {
				f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
				if err != nil {
					return nil, err
				}
				w := tt.writer
				w.f = f
				return &w, nil
			}

			opts := baseOptions(namesSQL)
			opts.Append = true
			_, err = New().Translate(context.Background(), dest, testDataset(t), opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)

			after, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, string(before), string(after))
		})
	}
}

func TestTranslateRejectsForeignDataset(t *testing.T) {
	_, err := New().Translate(context.Background(), t.TempDir(), fakeDataset{}, baseOptions(namesSQL))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not opened by the native engine")
}

func TestTranslateClosedDataset(t *testing.T) {
	ds := testDataset(t)
	require.NoError(t, ds.Close())

	_, err := New().Translate(context.Background(), t.TempDir(), ds, baseOptions(namesSQL))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")
}

func TestOpenMissingCell(t *testing.T) {
	path := filepath.Join(t.TempDir(), "US5XX01M.000")

	_, err := New().Open(context.Background(), path, engine.OpenOptions{})
	require.Error(t, err)

	var oe *engine.OpenError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, path, oe.Path)
}

type stubParser struct {
	got s57.ParseOptions
}

func (p *stubParser) Parse(filename string) (*s57.Chart, error) {
	return p.ParseWithOptions(filename, s57.DefaultParseOptions())
}

func (p *stubParser) ParseWithOptions(filename string, opts s57.ParseOptions) (*s57.Chart, error) {
	p.got = opts
	return s57.NewChart("US5MA22M", nil), nil
}

func TestOpenPassesOptionsToReader(t *testing.T) {
	p := &stubParser{}
	e := New(WithParser(p))

	ds, err := e.Open(context.Background(), "US5MA22M.000", engine.OpenOptions{
		SplitMultipoint:  true,
		AddSoundingDepth: true,
		IgnoreUpdates:    true,
	})
	require.NoError(t, err)
	defer ds.Close()

	assert.True(t, p.got.SplitMultipoint)
	assert.True(t, p.got.AddSoundingDepth)
	assert.False(t, p.got.ApplyUpdates)
	assert.Equal(t, "US5MA22M.000", ds.Path())
	assert.Empty(t, ds.LayerNames())
}

type fakeDataset struct{}

func (fakeDataset) Path() string                      { return "fake.000" }
func (fakeDataset) Layer(string) (engine.Layer, bool) { return nil, false }
func (fakeDataset) LayerNames() []string              { return nil }
func (fakeDataset) Close() error                      { return nil }

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
