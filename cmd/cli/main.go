package main

import (
	"fmt"
	"os"

	"github.com/cropwatch/plantmonitor/pkg/config"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "plantmonitor",
	Short: "PlantMonitor - live greenness dashboard",
	Long: `PlantMonitor polls the crop-manager telemetry endpoint and serves a live
chart of per-plant greenness next to the camera feed.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("PLANTMONITOR_CONFIG"), "path to YAML config file")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
