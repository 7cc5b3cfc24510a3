package handler

import (
	"net/http"
	"runtime"
	"time"

	"penta-xml-feed/pkg/response"
)

// AdminHandler serves operational statistics.
type AdminHandler struct {
	feed      FeedService
	notifier  string
	startTime time.Time
}

// NewAdminHandler creates a new admin handler. notifier names the configured
// refresh event sink.
func NewAdminHandler(feed FeedService, notifier string) *AdminHandler {
	return &AdminHandler{
		feed:      feed,
		notifier:  notifier,
		startTime: time.Now(),
	}
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := make(map[string]interface{})

	// System info
	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().Format(time.RFC3339)

	// Memory stats
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]interface{}{
		"alloc_mb":      float64(memStats.Alloc) / 1024 / 1024,
		"sys_mb":        float64(memStats.Sys) / 1024 / 1024,
		"heap_inuse_mb": float64(memStats.HeapInuse) / 1024 / 1024,
		"num_gc":        memStats.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}

	// Feed stats
	st := h.feed.Status()
	feed := map[string]interface{}{
		"schema":         st.Schema,
		"stock_policy":   st.StockPolicy,
		"items":          st.Items,
		"document_bytes": st.DocumentBytes,
		"ready":          !st.LastSuccessAt.IsZero(),
		"last_success":   isoOrNil(st.LastSuccessAt),
		"next_scheduled": isoOrNil(st.NextScheduledAt),
		"notifier":       h.notifier,
	}
	if last := st.LastOutcome; last != nil {
		run := map[string]interface{}{
			"run_id":      last.RunID,
			"success":     last.Success,
			"started_at":  last.StartedAt.UTC().Format(time.RFC3339),
			"duration_ms": last.FinishedAt.Sub(last.StartedAt).Milliseconds(),
		}
		if last.Err != nil {
			run["error"] = last.Err.Error()
		}
		feed["last_run"] = run
	}
	stats["feed"] = feed

	// Runtime info
	stats["runtime"] = map[string]interface{}{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"cpus":       runtime.NumCPU(),
	}

	response.OK(w, stats)
}
