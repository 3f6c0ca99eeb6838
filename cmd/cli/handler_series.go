package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/cropwatch/plantmonitor/pkg/dashboard"
)

const streamKeepAlive = 15 * time.Second

// getSeriesHandler returns the current draw-ready series
func (rm *RouteManager) getSeriesHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	if err := json.NewEncoder(w).Encode(rm.pipeline.View.Snapshot()); err != nil {
		log.Printf("❌ Failed to encode series: %v", err)
	}
}

// streamSeriesHandler pushes a snapshot as a server-sent event after every
// change, starting with the current one.
func (rm *RouteManager) streamSeriesHandler(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")

	updates, cancel := rm.pipeline.View.Subscribe()
	defer cancel()

	if err := writeSeriesEvent(w, rm.pipeline.View.Snapshot()); err != nil {
		return
	}
	flusher.Flush()

	keepAlive := time.NewTicker(streamKeepAlive)
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if err := writeSeriesEvent(w, snap); err != nil {
				log.Printf("❌ Failed to write series event: %v", err)
				return
			}
			flusher.Flush()
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeSeriesEvent(w http.ResponseWriter, snap dashboard.Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	_, err = fmt.Fprintf(w, "event: series\ndata: %s\n\n", b)
	return err
}
