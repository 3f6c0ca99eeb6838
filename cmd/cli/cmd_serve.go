package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cropwatch/plantmonitor/pkg/api"
	"github.com/cropwatch/plantmonitor/pkg/config"
	"github.com/cropwatch/plantmonitor/pkg/dashboard"
	"github.com/cropwatch/plantmonitor/pkg/metrics"
	"github.com/cropwatch/plantmonitor/pkg/normalizer"
	"github.com/cropwatch/plantmonitor/pkg/puller"
	"github.com/cropwatch/plantmonitor/pkg/render"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the PlantMonitor server",
	Long:  `Start polling the telemetry endpoint and serve the Plant Monitor dashboard.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("telemetry", "", "telemetry base URL (overrides config)")
	serveCmd.Flags().String("port", "", "HTTP port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

// Pipeline bundles everything one dashboard view needs
type Pipeline struct {
	Client  *api.Client
	Poller  *puller.Poller
	View    *dashboard.View
	Metrics *metrics.Collector
}

// NewPipeline wires client, poller and view from the configuration
func NewPipeline(cfg *config.Config, pollerOpts ...puller.Option) (*Pipeline, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	collector := metrics.New()
	client := api.NewClient(cfg.Telemetry.BaseURL, api.WithTimeout(cfg.Telemetry.Timeout))

	opts := append([]puller.Option{
		puller.WithTimeout(cfg.Telemetry.Timeout),
		puller.WithObserver(collector),
	}, pollerOpts...)
	poller := puller.NewPoller(client, normalizer.New(loc), opts...)

	var colors render.Colorer = render.NewPalette(nil)
	if !*cfg.Dashboard.StableColors {
		colors = render.NewPerPassColors(nil)
	}

	view := dashboard.NewView(poller, colors,
		dashboard.WithMetrics(collector),
		dashboard.WithDiscardStale(*cfg.Dashboard.DiscardStale),
	)

	return &Pipeline{
		Client:  client,
		Poller:  poller,
		View:    view,
		Metrics: collector,
	}, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("telemetry"); v != "" {
		cfg.Telemetry.BaseURL = v
	}
	if v, _ := cmd.Flags().GetString("port"); v != "" {
		cfg.Server.Port = v
	}

	pipeline, err := NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	if err := pipeline.View.Mount(); err != nil {
		return fmt.Errorf("failed to start polling: %w", err)
	}

	// Setup Router
	routeManager := NewRouteManager(cfg, pipeline)
	routeManager.Setup()

	server := &http.Server{
		Handler:     routeManager.Handler(),
		Addr:        cfg.Addr(),
		ReadTimeout: 5 * time.Second,
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Shutdown signal received")

		pipeline.View.Unmount()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Starting PlantMonitor on %s (telemetry %s)...", cfg.Addr(), cfg.Telemetry.BaseURL)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		pipeline.View.Unmount()
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
