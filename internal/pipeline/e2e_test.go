package pipeline

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beetlebugorg/s57extract/internal/engine"
	"github.com/beetlebugorg/s57extract/internal/engine/native"
	"github.com/beetlebugorg/s57extract/internal/rules"
	"github.com/beetlebugorg/s57extract/pkg/s57"
)

// chartSet stands in for the chart reader, serving in-memory charts by
// file base name.
type chartSet map[string]*s57.Chart

func (c chartSet) Parse(filename string) (*s57.Chart, error) {
	return c.ParseWithOptions(filename, s57.DefaultParseOptions())
}

func (c chartSet) ParseWithOptions(filename string, _ s57.ParseOptions) (*s57.Chart, error) {
	chart, ok := c[filepath.Base(filename)]
	if !ok {
		return nil, fmt.Errorf("%s: not an S-57 cell", filename)
	}
	return chart, nil
}

// appendSpy records the append flag of every translate call.
type appendSpy struct {
	engine.Engine
	appends []bool
}

func (s *appendSpy) Translate(ctx context.Context, dest string, src engine.Dataset, opts engine.TranslateOptions) (engine.Result, error) {
	s.appends = append(s.appends, opts.Append)
	return s.Engine.Translate(ctx, dest, src, opts)
}

func area(lon, lat float64) s57.Geometry {
	return s57.Geometry{
		Type: s57.GeometryTypePolygon,
		Parts: [][][]float64{{
			{lon, lat}, {lon + 0.1, lat}, {lon + 0.1, lat + 0.1}, {lon, lat + 0.1}, {lon, lat},
		}},
	}
}

func attrs(kv ...string) map[string]interface{} {
	m := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	return m
}

func runCells(t *testing.T, mode rules.Mode, charts chartSet) (*Summary, *appendSpy, string) {
	t.Helper()
	in := t.TempDir()
	for name := range charts {
		touch(t, filepath.Join(in, name[:8], name))
	}
	out := filepath.Join(t.TempDir(), "out")

	spy := &appendSpy{Engine: native.New(native.WithParser(charts))}
	r := &Runner{
		Pipeline:  newPipeline(t, spy, mode, out),
		InputDir:  in,
		Extension: ".000",
		OutputDir: out,
	}
	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	return summary, spy, filepath.Join(out, mode.OutputName+".csv")
}

func readTable(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestNamesSingleCell(t *testing.T) {
	charts := chartSet{
		"US5MA22M.000": s57.NewChart("US5MA22M", []s57.Feature{
			s57.NewFeature(1, "LNDARE", area(-70.1, 41.2), attrs("NOBJNM", "Nantucket", "OBJNAM", "Nantucket")),
			s57.NewFeature(2, "LNDARE", area(-70.3, 41.2), attrs("OBJNAM", "Tuckernuck")),
			s57.NewFeature(3, "DEPARE", area(-70.2, 41.1), attrs("DRVAL1", "5", "DRVAL2", "10")),
		}),
	}

	summary, spy, table := runCells(t, namesMode(t), charts)
	assert.Equal(t, 1, summary.Written)
	assert.Equal(t, []string{"LNDARE"}, summary.Cells[0].Layers)
	assert.Equal(t, 1, summary.Cells[0].Rows)
	assert.Equal(t, []bool{false}, spy.appends)

	records := readTable(t, table)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"WKT", "LEVEL", "LAYERS", "NOBJNM"}, records[0])
	assert.Equal(t, []string{"5", "LNDARE", "Nantucket"}, records[1][1:])
}

func TestNamesTwoCellsAppend(t *testing.T) {
	charts := chartSet{
		"US5MA22M.000": s57.NewChart("US5MA22M", []s57.Feature{
			s57.NewFeature(1, "LNDARE", area(-70.1, 41.2), attrs("NOBJNM", "Nantucket")),
		}),
		"US4MA23M.000": s57.NewChart("US4MA23M", []s57.Feature{
			s57.NewFeature(1, "SEAARE", area(-70.5, 41.5), attrs("NOBJNM", "Nantucket Sound")),
			s57.NewFeature(2, "BRIDGE", area(-70.6, 41.6), attrs("NOBJNM", "")),
		}),
	}

	summary, spy, table := runCells(t, namesMode(t), charts)
	assert.Equal(t, 2, summary.Written)
	assert.Equal(t, []bool{false, true}, spy.appends)

	records := readTable(t, table)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"WKT", "LEVEL", "LAYERS", "NOBJNM"}, records[0])

	var rows []string
	for _, r := range records[1:] {
		rows = append(rows, r[1]+" "+r[2]+" "+r[3])
	}
	assert.ElementsMatch(t, []string{"5 LNDARE Nantucket", "4 SEAARE Nantucket Sound"}, rows)
}

func TestDepthCell(t *testing.T) {
	charts := chartSet{
		"US5MA22M.000": s57.NewChart("US5MA22M", []s57.Feature{
			s57.NewFeature(1, "DEPARE", area(-70.2, 41.1), attrs("DRVAL1", "12.5", "DRVAL2", "20")),
			s57.NewFeature(2, "DEPARE", area(-70.3, 41.1), attrs("DRVAL1", "", "DRVAL2", "5")),
			s57.NewFeature(3, "LNDARE", area(-70.1, 41.2), nil),
		}),
	}

	summary, _, table := runCells(t, depthMode(t), charts)
	assert.Equal(t, 1, summary.Written)
	assert.Equal(t, []string{"LNDARE", "DEPARE"}, summary.Cells[0].Layers)

	records := readTable(t, table)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"WKT", "LAYERS", "DEPTH"}, records[0])
	assert.Equal(t, []string{"LNDARE", "-1"}, records[1][1:])
	assert.Equal(t, []string{"DEPARE", "12.5"}, records[2][1:])
	assert.Contains(t, records[1][0], "POLYGON")
}

func TestDepthSoundings(t *testing.T) {
	charts := chartSet{
		"US5MA22M.000": s57.NewChart("US5MA22M", []s57.Feature{
			s57.NewFeature(1, "SOUNDG", s57.Geometry{Type: s57.GeometryTypePoint, Coordinates: [][]float64{{-70.123456789, 41.5, 7.3}}},
				map[string]interface{}{"DEPTH": 7.3}),
			s57.NewFeature(2, "SOUNDG", s57.Geometry{Type: s57.GeometryTypePoint, Coordinates: [][]float64{{-70.2, 41.6, 12}}},
				map[string]interface{}{"DEPTH": 12.0}),
		}),
	}

	_, _, table := runCells(t, depthMode(t), charts)
	records := readTable(t, table)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"POINT(-70.12345679 41.5)", "SOUNDG", "7.3"}, records[1])
	assert.Equal(t, []string{"POINT(-70.2 41.6)", "SOUNDG", "12"}, records[2])
}

func TestUnreadableCellIsSkippedByRun(t *testing.T) {
	charts := chartSet{
		"US5MA22M.000": s57.NewChart("US5MA22M", []s57.Feature{
			s57.NewFeature(1, "LNDARE", area(-70.1, 41.2), attrs("NOBJNM", "Nantucket")),
		}),
	}
	in := t.TempDir()
	touch(t, filepath.Join(in, "US5MA22M", "US5MA22M.000"))
	touch(t, filepath.Join(in, "BROKEN00", "BROKEN00.000"))
	out := filepath.Join(t.TempDir(), "out")

	r := &Runner{
		Pipeline:  newPipeline(t, native.New(native.WithParser(charts)), namesMode(t), out),
		InputDir:  in,
		Extension: ".000",
		OutputDir: out,
	}
	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Written)
	assert.Equal(t, 1, summary.Failed)
	assert.Contains(t, summary.Failures()[0].Reason, "not an S-57 cell")
	assert.Len(t, readTable(t, filepath.Join(out, "nobjnm.csv")), 2)
}
