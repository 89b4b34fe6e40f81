package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/beetlebugorg/s57extract/internal/engine"
)

func (a *app) layersCmd() *cobra.Command {
	var split bool

	cmd := &cobra.Command{
		Use:   "layers CELL",
		Short: "list the layers of one cell",
		Long: `Open one cell and list its layers with their feature counts and fields, as
the extraction commands see them.`,
		Example: `  $ s57extract layers ENC_ROOT/US5MA22M/US5MA22M.000

  # As depth mode sees soundings
  $ s57extract layers --split-soundings US5MA22M.000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := engine.OpenOptions{
				SplitMultipoint:  split,
				AddSoundingDepth: split,
				IgnoreUpdates:    !a.cfg.Engine.ApplyUpdates,
			}
			ds, err := a.newEngine().Open(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			defer ds.Close()

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("LAYER", "FEATURES", "FIELDS")
			for _, name := range ds.LayerNames() {
				l, ok := ds.Layer(name)
				if !ok {
					continue
				}
				t.Row(name, strconv.Itoa(l.FeatureCount()), strings.Join(l.FieldNames(), " "))
			}
			fmt.Fprintln(a.out, t.Render())
			return nil
		},
	}

	cmd.Flags().BoolVar(&split, "split-soundings", false, "split soundings into points with a DEPTH field")
	return cmd
}

func (a *app) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration",
		Long: `Print the configuration after defaults, the config file, S57X_ environment
variables and flags have been applied, as YAML.`,
		Example: `  $ S57X_ENGINE_KIND=ogr s57extract config`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := yaml.Marshal(a.cfg)
			if err != nil {
				return fmt.Errorf("encode configuration: %w", err)
			}
			_, err = a.out.Write(data)
			return err
		},
	}
}
