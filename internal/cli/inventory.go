package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/beetlebugorg/s57extract/internal/inventory"
	"github.com/beetlebugorg/s57extract/internal/pipeline"
	"github.com/beetlebugorg/s57extract/internal/rules"
)

func (a *app) inventoryCmd() *cobra.Command {
	var (
		workers int
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "survey the cells without extracting anything",
		Long: `Open every cell under the input directory and report its chart level, update
count, content digest, layer and feature counts, and the layers each
extraction mode would include. Nothing is written.`,
		Example: `  # Survey with eight workers
  $ s57extract inventory -i ENC_ROOT -w 8

  # Machine-readable output
  $ s57extract inventory -i ENC_ROOT --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			if cfg.Input.Dir == "" {
				return fmt.Errorf("invalid configuration: input.dir is required")
			}
			names, err := rules.NamesMode(cfg.Names.Layers, cfg.Names.Field)
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			depth, err := rules.DepthMode(cfg.Depth.LandValue)
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			cells, err := inventory.Survey(cmd.Context(), a.newEngine(), inventory.Options{
				Root:          cfg.Input.Dir,
				Extension:     cfg.Input.Extension,
				Workers:       workers,
				Level:         pipeline.LevelSpec{Offset: cfg.Level.Offset, Sentinel: cfg.Sentinel()},
				Modes:         []rules.Mode{names, depth},
				IgnoreUpdates: !cfg.Engine.ApplyUpdates,
			})
			if err != nil {
				return err
			}

			if asJSON {
				data, err := json.MarshalIndent(cells, "", "  ")
				if err != nil {
					return fmt.Errorf("encode inventory: %w", err)
				}
				fmt.Fprintln(a.out, string(data))
				return nil
			}
			fmt.Fprintln(a.out, inventoryTable(cells))
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringP("input", "i", "", "directory tree holding the chart cells")
	annotate(fs, "input", "input.dir")
	fs.String("extension", "", "cell file extension (default .000)")
	annotate(fs, "extension", "input.extension")
	fs.IntVarP(&workers, "workers", "w", 0, "cells opened at once (default number of CPUs)")
	fs.BoolVar(&asJSON, "json", false, "print the inventory as JSON")
	return cmd
}

func inventoryTable(cells []inventory.CellInfo) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("CELL", "LEVEL", "UPDATES", "LAYERS", "FEATURES", "NAMES", "DEPTH", "DIGEST", "ERROR")
	for _, c := range cells {
		t.Row(
			c.Name,
			c.Level,
			strconv.Itoa(c.Updates),
			strconv.Itoa(c.Layers),
			strconv.Itoa(c.Features),
			strings.Join(c.Eligible[rules.NamesModeName], ","),
			strings.Join(c.Eligible[rules.DepthModeName], ","),
			c.Digest,
			c.Error,
		)
	}
	return t.Render()
}
