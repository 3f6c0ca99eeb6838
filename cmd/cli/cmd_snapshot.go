package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cropwatch/plantmonitor/pkg/aggregator"
	"github.com/cropwatch/plantmonitor/pkg/api"
	"github.com/cropwatch/plantmonitor/pkg/models"
	"github.com/cropwatch/plantmonitor/pkg/normalizer"
	"github.com/cropwatch/plantmonitor/pkg/render"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Run one poll cycle and print the series",
	Long:  `Fetch the telemetry once, normalize, group and color it, and print one line per plant.`,
	RunE:  runSnapshot,
}

func init() {
	snapshotCmd.Flags().String("telemetry", "", "telemetry base URL (overrides config)")
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("telemetry"); v != "" {
		cfg.Telemetry.BaseURL = v
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Telemetry.Timeout)
	defer cancel()

	client := api.NewClient(cfg.Telemetry.BaseURL, api.WithTimeout(cfg.Telemetry.Timeout))
	readings, err := client.GetPlantData(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch plant data: %w", err)
	}

	normalized, err := normalizer.New(loc).Normalize(readings)
	if err != nil {
		return err
	}

	series := render.Render(aggregator.Group(normalized), render.NewPalette(nil))
	printSeries(cmd.OutOrStdout(), cfg.Telemetry.BaseURL, series, term.IsTerminal(int(os.Stdout.Fd())))
	return nil
}

// printSeries writes one block per plant. swatches adds a 24-bit ANSI color
// sample next to each label.
func printSeries(w io.Writer, source string, series []models.Series, swatches bool) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 80))
	fmt.Fprintf(w, "Plant Monitor - %s\n", source)
	fmt.Fprintln(w, strings.Repeat("=", 80))

	for i, s := range series {
		label := s.Label
		if swatches {
			label = swatch(s.Color) + " " + label
		}
		fmt.Fprintf(w, "\n[%d] %s\n", i+1, label)
		fmt.Fprintf(w, "    Color: %s\n", s.Color)
		fmt.Fprintf(w, "    Readings: %d\n", len(s.Data))
		if len(s.Data) > 0 {
			first, last := s.Data[0], s.Data[len(s.Data)-1]
			fmt.Fprintf(w, "    From: %s\n", first.LogTime)
			fmt.Fprintf(w, "    To: %s\n", last.LogTime)
			fmt.Fprintf(w, "    Latest Greenness: %.3f\n", last.Greenness)
		}
	}

	if len(series) == 0 {
		fmt.Fprintln(w, "No plant data yet.")
	}

	fmt.Fprintln(w, "\n"+strings.Repeat("=", 80)+"\n")
}

func swatch(hex string) string {
	v, err := strconv.ParseUint(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil {
		return "  "
	}
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm  \x1b[0m", v>>16&0xFF, v>>8&0xFF, v&0xFF)
}
