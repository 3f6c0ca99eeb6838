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

	"github.com/cropwatch/plantmonitor/pkg/simulator"
	"github.com/gorilla/handlers"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Serve simulated plant telemetry",
	Long: `Serve a stand-in for the crop-manager /api/plant-data endpoint with
random-walk greenness readings, for running the dashboard without hardware.`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().String("port", "5000", "HTTP port")
	simulateCmd.Flags().Int("plants", 3, "number of simulated plants")
	simulateCmd.Flags().Duration("step", 5*time.Second, "time between readings")
	simulateCmd.Flags().Int("history", 500, "readings kept and served")
	simulateCmd.Flags().Uint64("seed", 0, "random seed (0 picks one)")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	port, _ := cmd.Flags().GetString("port")
	plants, _ := cmd.Flags().GetInt("plants")
	step, _ := cmd.Flags().GetDuration("step")
	history, _ := cmd.Flags().GetInt("history")
	seed, _ := cmd.Flags().GetUint64("seed")

	sim := simulator.New(simulator.Config{
		Plants:  plants,
		Step:    step,
		History: history,
		Seed:    seed,
	})

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go sim.Run(ctx)

	server := &http.Server{
		Handler:      handlers.LoggingHandler(os.Stdout, sim.Router()),
		Addr:         ":" + port,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Starting telemetry simulator on %s...", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start simulator: %w", err)
	}

	return nil
}
