// Package cli wires configuration, logging, metrics and the extraction
// pipeline into the s57extract command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/beetlebugorg/s57extract/internal/config"
	"github.com/beetlebugorg/s57extract/internal/engine"
	"github.com/beetlebugorg/s57extract/internal/engine/native"
	"github.com/beetlebugorg/s57extract/internal/engine/ogr"
	"github.com/beetlebugorg/s57extract/internal/logger"
	"github.com/beetlebugorg/s57extract/internal/metrics"
	"github.com/beetlebugorg/s57extract/internal/metrics/prompush"
	"github.com/beetlebugorg/s57extract/internal/report"
)

const version = "0.1.0"

// configKeyAnnotation marks a flag with the config key it overrides.
const configKeyAnnotation = "s57extract_config_key"

// app holds the state shared by the commands of one invocation.
type app struct {
	v          *viper.Viper
	cfg        *config.Config
	configPath string
	out        io.Writer
	errOut     io.Writer
	logCloser  io.Closer
}

func newApp(out, errOut io.Writer) *app {
	return &app{
		v:      config.NewViper(),
		out:    out,
		errOut: errOut,
	}
}

// Execute runs the command line and reports the error, if any, on stderr.
func Execute(ctx context.Context) error {
	a := newApp(os.Stdout, os.Stderr)
	err := a.rootCmd().ExecuteContext(ctx)
	a.close()
	if err != nil {
		report.PrintError(a.errOut, "%v", err)
	}
	return err
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "s57extract",
		Short:   "Extract names and depths from S-57 chart cells",
		Version: version,
		Long: `Walks a tree of S-57 electronic navigational chart cells and extracts one
aggregated delimited-text table: feature names (names mode) or depth values
(depth mode), with geometry as simplified WKT.`,
		Example: `  # Extract national names from every cell under ENC_ROOT
  $ s57extract names -i ENC_ROOT -o out

  # Extract depths with GDAL instead of the built-in engine
  $ s57extract depth -i ENC_ROOT -o out --engine ogr

  # Survey the cells without writing anything
  $ s57extract inventory -i ENC_ROOT`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "path to config file (default ./s57extract.yaml)")
	bindString(pf, "log-level", "log.level", "log level: debug, info, warn or error")
	bindString(pf, "log-format", "log.format", "log format: text or json")
	bindString(pf, "log-output", "log.output", "log output: stdout, stderr or file")
	bindString(pf, "log-file", "log.file_path", "log file path when --log-output=file")
	bindString(pf, "engine", "engine.kind", "geodata engine: native or ogr")
	bindString(pf, "metrics", "metrics.backend", "metrics backend: none or pushgateway")
	bindString(pf, "pushgateway-url", "metrics.pushgateway_url", "Prometheus Pushgateway URL")

	root.AddCommand(a.namesCmd())
	root.AddCommand(a.depthCmd())
	root.AddCommand(a.inventoryCmd())
	root.AddCommand(a.layersCmd())
	root.AddCommand(a.configCmd())

	root.SetOut(a.out)
	root.SetErr(a.errOut)
	root.SetUsageTemplate(usageTemplate())
	root.SetHelpTemplate(usageTemplate())
	root.SetVersionTemplate(fmt.Sprintf("s57extract version %s\n", version))
	return root
}

// setup binds the flags of the command being run, loads and validates the
// configuration, and sets up logging and metrics.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		keys := f.Annotations[configKeyAnnotation]
		if len(keys) == 0 || bindErr != nil {
			return
		}
		bindErr = a.v.BindPFlag(keys[0], f)
	})
	if bindErr != nil {
		return bindErr
	}

	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	closer, err := logger.Setup(cfg.Log)
	if err != nil {
		return err
	}
	a.logCloser = closer
	cmd.SetContext(logger.WithContext(cmd.Context(), slog.Default()))

	if cfg.Metrics.Backend == config.MetricsPushgateway {
		backend, err := prompush.NewBackend(cfg.Metrics.Job, cfg.Metrics.PushgatewayURL)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		metrics.SetBackend(backend)
	}
	return nil
}

func (a *app) close() {
	if a.logCloser != nil {
		a.logCloser.Close()
	}
	metrics.Reset()
}

// flushMetrics pushes whatever the run recorded. A push failure is logged,
// never fatal.
func (a *app) flushMetrics(ctx context.Context) {
	if err := metrics.Flush(); err != nil {
		logger.FromContext(ctx).Warn("metrics push failed", "error", err)
	}
}

func (a *app) newEngine() engine.Engine {
	if a.cfg.Engine.Kind == config.EngineOGR {
		return ogr.New(a.cfg.Engine.OGRInfo, a.cfg.Engine.OGR2OGR)
	}
	return native.New()
}

func bindString(fs *pflag.FlagSet, name, key, usage string) {
	fs.String(name, "", usage)
	annotate(fs, name, key)
}

func annotate(fs *pflag.FlagSet, name, key string) {
	if err := fs.SetAnnotation(name, configKeyAnnotation, []string{key}); err != nil {
		panic(err)
	}
}

// ExitCode maps an error returned by Execute to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	default:
		return 1
	}
}

func usageTemplate() string {
	return `{{if .Long}}{{.Long}}

{{end}}` + report.Styles.Bold.Render("USAGE") + `
  {{.UseLine}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}

{{if .HasExample}}` + report.Styles.Bold.Render("EXAMPLES") + `
{{.Example}}

{{end}}{{if .HasAvailableSubCommands}}` + report.Styles.Bold.Render("COMMANDS") + `{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableLocalFlags}}` + report.Styles.Bold.Render("OPTIONS") + `
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableInheritedFlags}}` + report.Styles.Bold.Render("GLOBAL OPTIONS") + `
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
}
