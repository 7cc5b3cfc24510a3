package handler

import (
	"net/http"
	"time"

	"penta-xml-feed/pkg/response"
)

// StartTime tracks when the server started for uptime calculation
var StartTime = time.Now()

// Handler contains shared HTTP handlers and their dependencies.
type Handler struct {
	feed    FeedService
	version string
}

// New creates a new handler.
func New(feed FeedService, version string) *Handler {
	return &Handler{feed: feed, version: version}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	Version       string    `json:"version"`
	UptimeSeconds int64     `json:"uptime_seconds"`
}

// Health handles GET /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:        "healthy",
		Timestamp:     time.Now().UTC(),
		Version:       h.version,
		UptimeSeconds: int64(time.Since(StartTime).Seconds()),
	}
	response.OK(w, resp)
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Ready     bool      `json:"ready"`
	Timestamp time.Time `json:"timestamp"`
	Checks    []Check   `json:"checks"`
}

// Check represents an individual readiness check.
type Check struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Ready handles GET /api/v1/ready. The service is ready once a successful
// document is being served.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	feedStatus := "ok"
	if !h.feed.Ready() {
		feedStatus = "pending"
	}

	checks := []Check{
		{Name: "api", Status: "ok"},
		{Name: "feed", Status: feedStatus},
	}

	allReady := true
	for _, check := range checks {
		if check.Status != "ok" {
			allReady = false
			break
		}
	}

	resp := ReadyResponse{
		Ready:     allReady,
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	}

	status := http.StatusOK
	if !allReady {
		status = http.StatusServiceUnavailable
	}

	response.JSON(w, status, resp)
}
