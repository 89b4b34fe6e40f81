package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/beetlebugorg/s57extract/internal/logger"
	"github.com/beetlebugorg/s57extract/internal/metrics"
)

// TraversalError reports an input tree that cannot be listed. It aborts the
// run.
type TraversalError struct {
	Root string
	Err  error
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("list input directory %s: %v", e.Root, e.Err)
}

func (e *TraversalError) Unwrap() error { return e.Err }

// Summary is the outcome of a run.
type Summary struct {
	RunID           string        `json:"run_id"`
	Mode            string        `json:"mode"`
	InputDir        string        `json:"input_dir"`
	Output          string        `json:"output"`
	Started         time.Time     `json:"started"`
	Duration        time.Duration `json:"-"`
	DurationSeconds float64       `json:"duration_seconds"`
	Written         int           `json:"written"`
	Skipped         int           `json:"skipped"`
	Failed          int           `json:"failed"`
	Cells           []CellResult  `json:"cells"`
}

func (s *Summary) add(res CellResult) {
	switch res.State {
	case StateWritten:
		s.Written++
	case StateSkipped:
		s.Skipped++
	case StateFailed:
		s.Failed++
	}
	s.Cells = append(s.Cells, res)
}

// Failures returns the failed cells in processing order.
func (s *Summary) Failures() []CellResult {
	var out []CellResult
	for _, c := range s.Cells {
		if c.State == StateFailed {
			out = append(out, c)
		}
	}
	return out
}

// Total returns the number of cells processed.
func (s *Summary) Total() int { return len(s.Cells) }

// Runner drives the pipeline over every cell under InputDir.
type Runner struct {
	Pipeline  *Pipeline
	InputDir  string
	Extension string
	// OutputDir is removed once, before the first cell is opened.
	OutputDir string
	// RunID identifies the run in logs and the summary; generated when empty.
	RunID string
}

// Run checks that the input directory can be listed, clears the output
// directory and processes the discovered cells one by one. Cell failures
// are recorded in the summary. A *TraversalError, a failure to clear the
// output or a cancelled context ends the run early; the summary of the
// cells processed so far is returned with it.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	if r.RunID == "" {
		r.RunID = uuid.NewString()
	}
	mode := r.Pipeline.Mode.Name
	log := logger.WithRun(logger.FromContext(ctx), r.RunID, mode)
	ctx = logger.WithContext(ctx, log)

	summary := &Summary{
		RunID:    r.RunID,
		Mode:     mode,
		InputDir: r.InputDir,
		Output:   filepath.Join(r.OutputDir, r.Pipeline.Target.Table+".csv"),
		Started:  time.Now(),
	}
	defer func() {
		summary.Duration = time.Since(summary.Started)
		summary.DurationSeconds = summary.Duration.Seconds()
	}()

	if _, err := os.ReadDir(r.InputDir); err != nil {
		return nil, &TraversalError{Root: r.InputDir, Err: err}
	}
	if err := checkDirs(r.InputDir, r.OutputDir); err != nil {
		return nil, err
	}

	stepStart := time.Now()
	err := os.RemoveAll(r.OutputDir)
	metrics.RecordStep(mode, "clear_output", err, time.Since(stepStart))
	if err != nil {
		return nil, fmt.Errorf("remove output directory %s: %w", r.OutputDir, err)
	}
	log.Info("run started", "input", r.InputDir, "output", r.OutputDir)

	for path, err := range Discover(r.InputDir, r.Extension) {
		if err != nil {
			log.Error("traversal failed", "error", err)
			return summary, &TraversalError{Root: r.InputDir, Err: err}
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.add(r.Pipeline.Process(ctx, path))
	}

	log.Info("run finished",
		"written", summary.Written,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	return summary, nil
}

// checkDirs refuses output directories that would take the input with them
// when removed.
func checkDirs(input, output string) error {
	if output == "" {
		return fmt.Errorf("output directory is required")
	}
	in, err := filepath.Abs(input)
	if err != nil {
		return err
	}
	out, err := filepath.Abs(output)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(out, in)
	if err != nil {
		return nil
	}
	if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("output directory %s contains the input directory %s", output, input)
	}
	return nil
}
