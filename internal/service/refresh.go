package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"penta-xml-feed/internal/cache"
	"penta-xml-feed/internal/catalog"
	"penta-xml-feed/internal/metrics"
	"penta-xml-feed/internal/normalize"
	"penta-xml-feed/internal/notify"
	"penta-xml-feed/internal/render"
)

// PlaceholderMessage is served until the first refresh has finished.
const PlaceholderMessage = "feed has not been generated yet, please retry shortly"

// DefaultRefreshTimeout bounds one refresh cycle.
const DefaultRefreshTimeout = 10 * time.Minute

const notifyTimeout = 10 * time.Second

// Fetcher retrieves the raw catalog.
type Fetcher interface {
	FetchAll(ctx context.Context, q catalog.Query) ([]catalog.RawItem, error)
}

// NextRunner reports when the next scheduled refresh is due.
type NextRunner interface {
	NextRunAt() time.Time
}

// Outcome is the result of one refresh. Exactly one of Success,
// PreviousPreserved and FirstFailureNoFallback is set.
type Outcome struct {
	RunID                  string
	Success                bool
	PreviousPreserved      bool
	FirstFailureNoFallback bool
	Items                  int
	// UpdatedAt is the time of the document now served as the last success,
	// zero when none exists.
	UpdatedAt  time.Time
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
}

// Status describes the served document and the refresh schedule.
type Status struct {
	LastSuccessAt   time.Time
	NextScheduledAt time.Time
	ActiveQuery     catalog.Query
	Schema          string
	StockPolicy     string
	Items           int
	DocumentBytes   int
	LastOutcome     *Outcome
}

// RefreshConfig holds the optional collaborators of a RefreshService.
type RefreshConfig struct {
	Query    catalog.Query
	Timeout  time.Duration
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Notifier notify.Notifier
}

// RefreshService runs the fetch, normalize, render and publish pipeline and
// owns the served document.
type RefreshService struct {
	fetcher    Fetcher
	normalizer *normalize.Normalizer
	renderer   render.Renderer
	cache      *cache.DocumentCache

	query    catalog.Query
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	notifier notify.Notifier

	group singleflight.Group
	last  atomic.Pointer[Outcome]
	now   func() time.Time

	mu       sync.RWMutex
	schedule NextRunner
}

// NewRefreshService creates the service. The cache starts with a
// placeholder error document.
func NewRefreshService(fetcher Fetcher, normalizer *normalize.Normalizer, renderer render.Renderer, cfg RefreshConfig) *RefreshService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultRefreshTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notify.Noop{}
	}

	return &RefreshService{
		fetcher:    fetcher,
		normalizer: normalizer,
		renderer:   renderer,
		cache:      cache.NewDocumentCache(renderer.RenderError(PlaceholderMessage)),
		query:      cfg.Query,
		timeout:    cfg.Timeout,
		logger:     cfg.Logger.With("component", "refresh"),
		metrics:    cfg.Metrics,
		notifier:   cfg.Notifier,
		now:        time.Now,
	}
}

// AttachSchedule sets the source of Status().NextScheduledAt.
func (s *RefreshService) AttachSchedule(r NextRunner) {
	s.mu.Lock()
	s.schedule = r
	s.mu.Unlock()
}

// Refresh runs one refresh cycle. A call made while another is in flight
// waits for that cycle and returns its outcome instead of starting a new
// one. Cancelling ctx does not abort the cycle; it is bounded only by the
// configured timeout.
func (s *RefreshService) Refresh(ctx context.Context) Outcome {
	v, _, _ := s.group.Do("refresh", func() (interface{}, error) {
		return s.run(context.WithoutCancel(ctx)), nil
	})
	return v.(Outcome)
}

func (s *RefreshService) run(ctx context.Context) Outcome {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out := Outcome{RunID: uuid.NewString(), StartedAt: s.now()}
	log := s.logger.With("run_id", out.RunID)
	log.Info("refresh started", "categories", s.query.Category)

	doc, err := s.build(ctx)
	out.FinishedAt = s.now()
	took := out.FinishedAt.Sub(out.StartedAt)

	if err != nil {
		out.Err = err
		s.logFailure(log, err)

		if s.cache.PublishFallback(s.renderer.RenderError(err.Error())) {
			out.FirstFailureNoFallback = true
			s.metrics.ObserveRefresh(metrics.OutcomeFallback, took)
			log.Warn("no successful document yet, serving error document")
		} else {
			out.PreviousPreserved = true
			out.UpdatedAt = s.cache.Load().LastSuccessAt
			s.metrics.ObserveRefresh(metrics.OutcomePreserved, took)
			log.Warn("keeping previous document", "last_success_at", out.UpdatedAt)
		}
		s.last.Store(&out)
		return out
	}

	snap := s.cache.Publish(doc)
	out.Success = true
	out.Items = doc.Items
	out.UpdatedAt = snap.LastSuccessAt
	s.metrics.ObserveRefresh(metrics.OutcomeSuccess, took)
	s.metrics.ObservePublished(doc.Items, doc.Size(), snap.LastSuccessAt)
	s.last.Store(&out)

	log.Info("refresh completed",
		"items", doc.Items,
		"bytes", doc.Size(),
		"duration", took,
	)

	s.announce(ctx, log, out, doc)
	return out
}

func (s *RefreshService) build(ctx context.Context) (render.Document, error) {
	items, err := s.fetcher.FetchAll(ctx, s.query)
	if err != nil {
		return render.Document{}, err
	}
	records := s.normalizer.NormalizeAll(items)
	return s.renderer.Render(records)
}

func (s *RefreshService) logFailure(log *slog.Logger, err error) {
	var upstream *catalog.UpstreamError
	if errors.As(err, &upstream) {
		log.Error("refresh failed",
			"error", err,
			"status", upstream.StatusCode,
			"body", upstream.Body,
			"params", upstream.Params.Encode(),
		)
		return
	}
	log.Error("refresh failed", "error", err)
}

func (s *RefreshService) announce(ctx context.Context, log *slog.Logger, out Outcome, doc render.Document) {
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	err := s.notifier.Notify(ctx, notify.Event{
		Event:       notify.EventRefreshed,
		RunID:       out.RunID,
		Items:       doc.Items,
		Bytes:       doc.Size(),
		Schema:      s.renderer.Schema(),
		GeneratedAt: doc.GeneratedAt,
	})
	if err != nil {
		log.Warn("refresh notification failed", "notifier", s.notifier.Name(), "error", err)
	}
}

// CurrentDocument returns the served document. It never blocks and never
// returns an empty body.
func (s *RefreshService) CurrentDocument() render.Document {
	return s.cache.Load().Document
}

// Ready reports whether a successful document is being served.
func (s *RefreshService) Ready() bool {
	return s.cache.Load().HasSuccess()
}

// Status returns the schedule and served document metadata.
func (s *RefreshService) Status() Status {
	snap := s.cache.Load()
	st := Status{
		LastSuccessAt: snap.LastSuccessAt,
		ActiveQuery:   s.query,
		Schema:        s.renderer.Schema(),
		StockPolicy:   s.normalizer.StockPolicy().Name(),
		DocumentBytes: snap.Document.Size(),
		LastOutcome:   s.last.Load(),
	}
	if snap.HasSuccess() {
		st.Items = snap.Document.Items
	}
	s.mu.RLock()
	schedule := s.schedule
	s.mu.RUnlock()
	if schedule != nil {
		st.NextScheduledAt = schedule.NextRunAt()
	}
	return st
}
