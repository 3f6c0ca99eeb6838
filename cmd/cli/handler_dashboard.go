package main

import (
	"embed"
	"html/template"
	"log"
	"net/http"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTemplate = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

type dashboardPage struct {
	Title        string
	VideoFeedURL string
	ViewID       string
}

// dashboardHandler renders the Plant Monitor page. The camera feed is
// embedded by URL and never proxied.
func (rm *RouteManager) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	page := dashboardPage{
		Title:        "Plant Monitor",
		VideoFeedURL: rm.pipeline.Client.VideoFeedURL(),
		ViewID:       rm.pipeline.View.ID().String(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTemplate.Execute(w, page); err != nil {
		log.Printf("❌ Failed to render dashboard: %v", err)
	}
}
