package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/beetlebugorg/s57extract/internal/logger"
	"github.com/beetlebugorg/s57extract/internal/pipeline"
	"github.com/beetlebugorg/s57extract/internal/query"
	"github.com/beetlebugorg/s57extract/internal/report"
	"github.com/beetlebugorg/s57extract/internal/rules"
	"github.com/beetlebugorg/s57extract/internal/sink"
)

func (a *app) namesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "names",
		Short: "extract feature names into one table",
		Long: `Extract the national name (NOBJNM) of land, depth, sea, harbour and bridge
areas from every cell into a single table. Each row carries the simplified
geometry as WKT, the chart-level code taken from the cell filename, the
source layer and the name.`,
		Example: `  # Extract names from every cell under ENC_ROOT into out/nobjnm.csv
  $ s57extract names -i ENC_ROOT -o out

  # Only land and sea areas, using OBJNAM instead
  $ s57extract names -i ENC_ROOT -o out -l LNDARE -l SEAARE -f OBJNAM`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := rules.NamesMode(a.cfg.Names.Layers, a.cfg.Names.Field)
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return a.run(cmd, mode)
		},
	}

	fs := cmd.Flags()
	runFlags(fs, rules.DefaultNamesOutput)
	fs.StringSliceP("layer", "l", nil, "layer to search for names, repeatable (default LNDARE,DEPARE,SEAARE,HRBFAC,BRIDGE)")
	annotate(fs, "layer", "names.layers")
	fs.StringP("field", "f", "", "field holding the name (default NOBJNM)")
	annotate(fs, "field", "names.field")
	return cmd
}

func (a *app) depthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "depth",
		Short: "extract depth values into one table",
		Long: `Extract depth values from every cell into a single table. Land areas get a
constant value; depth areas, contours, dredged areas, obstructions,
soundings, rocks and wrecks carry the depth from their own field. Soundings
are split into one point per sounding.`,
		Example: `  # Extract depths from every cell under ENC_ROOT into out/depth.csv
  $ s57extract depth -i ENC_ROOT -o out

  # Mark land with -10 instead of -1
  $ s57extract depth -i ENC_ROOT -o out --land-value -10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := rules.DepthMode(a.cfg.Depth.LandValue)
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return a.run(cmd, mode)
		},
	}

	fs := cmd.Flags()
	runFlags(fs, rules.DefaultDepthOutput)
	fs.Float64("land-value", rules.DefaultLandValue, "value written for land areas")
	annotate(fs, "land-value", "depth.land_value")
	return cmd
}

// runFlags registers the flags shared by the extraction commands.
func runFlags(fs *pflag.FlagSet, defaultName string) {
	fs.StringP("input", "i", "", "directory tree holding the chart cells")
	annotate(fs, "input", "input.dir")
	fs.StringP("output", "o", "", "output directory, removed before the run")
	annotate(fs, "output", "output.dir")
	fs.StringP("name", "n", "", fmt.Sprintf("output table name (default %s)", defaultName))
	annotate(fs, "name", "output.name")
	fs.String("extension", "", "cell file extension (default .000)")
	annotate(fs, "extension", "input.extension")
	fs.String("bbox", "", "only extract features within minlon,minlat,maxlon,maxlat")
	annotate(fs, "bbox", "filter.bbox")
	fs.String("summary", "", "write the run summary as JSON to this file")
	annotate(fs, "summary", "output.summary_path")
	fs.Bool("apply-updates", true, "apply .001, .002, ... update files to their base cell")
	annotate(fs, "apply-updates", "engine.apply_updates")
}

// run processes every cell under the input directory with mode and reports
// the outcome. Cell failures are reported, not returned: only configuration
// and traversal errors fail the command.
func (a *app) run(cmd *cobra.Command, mode rules.Mode) error {
	cfg := a.cfg
	if err := cfg.ValidateRun(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	bbox, err := cfg.BBox()
	if err != nil {
		return err
	}

	table := cfg.Output.Name
	if table == "" {
		table = mode.OutputName
	}

	eng := a.newEngine()
	runner := &pipeline.Runner{
		Pipeline: &pipeline.Pipeline{
			Engine:        eng,
			Mode:          mode,
			Builder:       query.NewBuilder(mode, cfg.Engine.Tolerance),
			Sink:          sink.New(eng, sink.SettingsFor(mode, cfg.Engine.WKTPrecision, bbox)),
			Target:        sink.Target{Dir: cfg.Output.Dir, Table: table},
			Level:         pipeline.LevelSpec{Offset: cfg.Level.Offset, Sentinel: cfg.Sentinel()},
			IgnoreUpdates: !cfg.Engine.ApplyUpdates,
		},
		InputDir:  cfg.Input.Dir,
		Extension: cfg.Input.Extension,
		OutputDir: cfg.Output.Dir,
	}

	ctx := cmd.Context()
	summary, runErr := runner.Run(ctx)
	a.flushMetrics(ctx)

	if summary != nil {
		report.PrintSummary(a.out, summary)
		if runErr == nil && summary.Written > 0 {
			report.PrintSuccess(a.out, "table written to %s", summary.Output)
		}
		if cfg.Output.SummaryPath != "" {
			if err := report.WriteSummaryJSON(cfg.Output.SummaryPath, summary); err != nil {
				logger.FromContext(ctx).Error("cannot write run summary", "path", cfg.Output.SummaryPath, "error", err)
			}
		}
	}

	return runErr
}
