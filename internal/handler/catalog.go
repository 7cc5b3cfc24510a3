package handler

import (
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"penta-xml-feed/pkg/apierror"
	"penta-xml-feed/pkg/response"
)

// CatalogHandler serves the feed document and its refresh controls.
type CatalogHandler struct {
	feed     FeedService
	interval time.Duration
	logger   *slog.Logger
}

// NewCatalogHandler creates a catalog handler. interval is the scheduled
// refresh period reported by /status.
func NewCatalogHandler(feed FeedService, interval time.Duration, logger *slog.Logger) *CatalogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogHandler{
		feed:     feed,
		interval: interval,
		logger:   logger.With("component", "catalog_handler"),
	}
}

// Products handles GET /products.xml. It always answers 200 with an XML
// body: the last good feed, or an error document when none exists yet.
func (h *CatalogHandler) Products(w http.ResponseWriter, r *http.Request) {
	doc := h.feed.CurrentDocument()

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if !doc.GeneratedAt.IsZero() {
		w.Header().Set("Last-Modified", doc.GeneratedAt.UTC().Format(http.TimeFormat))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Body)
}

// StatusConfig is the configuration block of the status response.
type StatusConfig struct {
	UpdateIntervalMinutes int    `json:"updateIntervalMinutes"`
	ProductType           int    `json:"productType"`
	Categories            string `json:"categories"`
	Schema                string `json:"schema"`
	StockPolicy           string `json:"stockPolicy"`
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Status     string       `json:"status"`
	LastUpdate *string      `json:"lastUpdate"`
	NextUpdate *string      `json:"nextUpdate"`
	Config     StatusConfig `json:"config"`
}

// Status handles GET /status
func (h *CatalogHandler) Status(w http.ResponseWriter, r *http.Request) {
	st := h.feed.Status()

	categories := st.ActiveQuery.Category
	if categories == "" {
		categories = "all"
	}

	resp := StatusResponse{
		Status:     "running",
		LastUpdate: isoOrNil(st.LastSuccessAt),
		NextUpdate: isoOrNil(st.NextScheduledAt),
		Config: StatusConfig{
			UpdateIntervalMinutes: int(h.interval / time.Minute),
			ProductType:           st.ActiveQuery.ProductType,
			Categories:            categories,
			Schema:                st.Schema,
			StockPolicy:           st.StockPolicy,
		},
	}

	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	response.Raw(w, http.StatusOK, resp)
}

// RefreshResponse is the body of a successful POST /refresh.
type RefreshResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	UpdatedAt time.Time `json:"updatedAt"`
	RunID     string    `json:"runId"`
	Items     int       `json:"items"`
}

// Refresh handles POST /refresh. It runs a refresh, or joins the one in
// flight, and reports its result.
func (h *CatalogHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	out := h.feed.Refresh(r.Context())

	if !out.Success {
		msg := "refresh failed"
		if out.Err != nil {
			msg = out.Err.Error()
		}
		h.logger.Warn("on-demand refresh failed", "run_id", out.RunID, "preserved", out.PreviousPreserved)
		response.Error(w, apierror.UpstreamFailure(msg))
		return
	}

	response.Raw(w, http.StatusOK, RefreshResponse{
		Success:   true,
		Message:   "feed refreshed",
		UpdatedAt: out.UpdatedAt.UTC(),
		RunID:     out.RunID,
		Items:     out.Items,
	})
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Catalog XML Feed</title></head>
<body style="font-family: Arial, sans-serif; max-width: 800px; margin: 50px auto; padding: 20px;">
  <h1>Catalog XML Feed</h1>
  <p>Products fetched from the catalog API, served as XML.</p>
  <h2>Endpoints</h2>
  <ul>
    <li><a href="/products.xml">/products.xml</a> - product feed</li>
    <li><a href="/status">/status</a> - service status (JSON)</li>
    <li><strong>POST /refresh</strong> - refresh the feed now</li>
    <li><a href="/metrics">/metrics</a> - Prometheus metrics</li>
  </ul>
  <h2>Status</h2>
  <p>Last update: {{if .LastUpdate}}{{.LastUpdate}}{{else}}not updated yet{{end}}</p>
  <p>Update interval: {{.IntervalMinutes}} minutes</p>
  <p>Schema: {{.Schema}}</p>
</body>
</html>
`))

type indexData struct {
	LastUpdate      string
	IntervalMinutes int
	Schema          string
}

// Index handles GET /
func (h *CatalogHandler) Index(w http.ResponseWriter, r *http.Request) {
	st := h.feed.Status()

	data := indexData{
		IntervalMinutes: int(h.interval / time.Minute),
		Schema:          st.Schema,
	}
	if !st.LastSuccessAt.IsZero() {
		data.LastUpdate = st.LastSuccessAt.UTC().Format(time.RFC1123)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		h.logger.Error("failed to render index page", "error", err)
	}
}

func isoOrNil(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
