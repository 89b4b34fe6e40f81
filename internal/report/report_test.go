package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beetlebugorg/s57extract/internal/pipeline"
)

func testSummary() *pipeline.Summary {
	return &pipeline.Summary{
		RunID:           "3f1c9a52-7c1e-4f7a-9d0b-6c1f2e3d4a5b",
		Mode:            "depth",
		InputDir:        "/charts",
		Output:          "/tmp/out/depth.csv",
		Started:         time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Duration:        1500 * time.Millisecond,
		DurationSeconds: 1.5,
		Written:         1,
		Skipped:         1,
		Failed:          1,
		Cells: []pipeline.CellResult{
			{Path: "/charts/US5MA22M.000", Level: "5", State: pipeline.StateWritten, Layers: []string{"LNDARE", "DEPARE"}, Rows: 12},
			{Path: "/charts/US4MA23M.000", Level: "4", State: pipeline.StateSkipped, Rows: 0, Reason: "no eligible layers"},
			{Path: "/charts/BROKEN.000", State: pipeline.StateFailed, Reason: "open /charts/BROKEN.000: bad leader", Err: errors.New("bad leader")},
		},
	}
}

func TestPrintSummary(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	PrintSummary(&buf, testSummary())
	out := buf.String()

	assert.Contains(t, out, "3f1c9a52-7c1e-4f7a-9d0b-6c1f2e3d4a5b")
	assert.Contains(t, out, "written 1")
	assert.Contains(t, out, "skipped 1")
	assert.Contains(t, out, "failed 1")
	assert.Contains(t, out, "3 cells in 1.5s")
	assert.Contains(t, out, "FAILED CELLS")
	assert.Contains(t, out, "/charts/BROKEN.000: open /charts/BROKEN.000: bad leader")
}

func TestPrintSummaryWithoutFailures(t *testing.T) {
	color.NoColor = true

	s := testSummary()
	s.Cells = s.Cells[:2]
	s.Failed = 0

	var buf bytes.Buffer
	PrintSummary(&buf, s)
	assert.NotContains(t, buf.String(), "FAILED CELLS")
}

func TestWriteSummaryJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "run.json")
	require.NoError(t, WriteSummaryJSON(path, testSummary()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "depth", doc["mode"])
	assert.Equal(t, 1.5, doc["duration_seconds"])
	assert.Equal(t, float64(1), doc["failed"])

	cells := doc["cells"].([]any)
	require.Len(t, cells, 3)
	first := cells[0].(map[string]any)
	assert.Equal(t, "written", first["state"])
	assert.Equal(t, []any{"LNDARE", "DEPARE"}, first["layers"])
	third := cells[2].(map[string]any)
	assert.Equal(t, "failed", third["state"])
	assert.NotContains(t, third, "Err")

	var back pipeline.Summary
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, pipeline.StateSkipped, back.Cells[1].State)
}

func TestPrintMessages(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	PrintSuccess(&buf, "wrote %d rows", 3)
	PrintError(&buf, "cannot open %s", "x.000")
	assert.Equal(t, "✓ wrote 3 rows\n✗ cannot open x.000\n", buf.String())
}
