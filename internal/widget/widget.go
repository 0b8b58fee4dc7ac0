// Package widget implements the reconciling unread-messages widget: one
// live HTML subtree per container, kept fresh by a merged trigger stream
// (server push plus a fallback timer) with switch-latest fetch semantics
// and a new-vs-seen diff driving the reveal animation.
package widget

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mailpane/mailpane/internal/dom"
	"github.com/mailpane/mailpane/internal/logging"
	"github.com/mailpane/mailpane/internal/metrics"
	"github.com/mailpane/mailpane/internal/model"
	"github.com/mailpane/mailpane/internal/push"
	"github.com/mailpane/mailpane/internal/upstream"
)

// DefaultEventName is the push event type that triggers a refresh.
const DefaultEventName = "unread-updates"

// defaultRefreshInterval is the fallback timer period. The timer also
// fires once immediately so the first paint never waits for it.
const defaultRefreshInterval = 30 * time.Second

// Widget is one mounted widget instance. It exclusively owns the DOM
// subtree under its container; no other code may mutate the list or
// counter nodes while the widget is live.
type Widget struct {
	log       zerolog.Logger
	fetcher   upstream.Fetcher
	source    push.Source
	eventName string
	refresh   time.Duration
	metrics   *metrics.Collector

	// mu guards the element tree and the reconciliation state.
	mu          sync.RWMutex
	container   *dom.Element
	counter     *dom.Element
	list        *dom.Element
	seen        map[string]struct{}
	initialLoad bool

	// runMu guards the active pipeline handle. At most one pipeline is
	// ever active: starting a load cycle cancels the prior handle.
	runMu  sync.Mutex
	cancel context.CancelFunc

	snapshots chan Snapshot
}

// Option configures a Widget at mount time.
type Option func(*Widget)

// WithFetcher injects the message-fetch collaborator.
func WithFetcher(f upstream.Fetcher) Option {
	return func(w *Widget) { w.fetcher = f }
}

// WithPushSource injects the push-event collaborator.
func WithPushSource(s push.Source) Option {
	return func(w *Widget) { w.source = s }
}

// WithEventName overrides the push event type.
func WithEventName(name string) Option {
	return func(w *Widget) { w.eventName = name }
}

// WithRefreshInterval overrides the fallback timer period.
func WithRefreshInterval(d time.Duration) Option {
	return func(w *Widget) { w.refresh = d }
}

// WithMetrics attaches a metrics collector.
func WithMetrics(c *metrics.Collector) Option {
	return func(w *Widget) { w.metrics = c }
}

// Mount binds a widget to the first element of doc carrying the
// selector class, builds the title/counter/list structure and starts
// the load cycle. When the selector resolves to nothing the returned
// widget is silently inert: no DOM is created, no pipeline starts and
// no error is reported. Mount never panics and never throws.
func Mount(doc *dom.Element, selector string, baseURL string, opts ...Option) *Widget {
	w := &Widget{
		log:         logging.WithWidget(selector),
		eventName:   DefaultEventName,
		refresh:     defaultRefreshInterval,
		seen:        make(map[string]struct{}),
		initialLoad: true,
		snapshots:   make(chan Snapshot, 8),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.fetcher == nil {
		w.fetcher = upstream.NewClient(baseURL, 0)
	}
	if w.source == nil {
		w.source = push.NewSSESource(baseURL)
	}

	var container *dom.Element
	if doc != nil {
		container = doc.FindByClass(selector)
	}
	if container == nil {
		// Degrade-to-inert policy: a missing container is not an error.
		w.log.Debug().Msg("container not found, widget stays inert")
		close(w.snapshots)
		return w
	}
	w.container = container

	w.buildChrome()
	w.loadMessages()
	return w
}

// Mounted reports whether the widget found its container.
func (w *Widget) Mounted() bool {
	return w.container != nil
}

// buildChrome creates the title (with its live counter node) and the
// empty list, and appends both to the container.
func (w *Widget) buildChrome() {
	w.mu.Lock()
	defer w.mu.Unlock()

	title := dom.New(dom.Spec{
		Tag:       "div",
		ClassName: classTitle,
		Text:      titleText,
		Parent:    w.container,
	})
	w.counter = dom.New(dom.Spec{
		Tag:       "span",
		ClassName: classCounter,
		Text:      "0",
		Parent:    title,
	})
	w.list = dom.New(dom.Spec{
		Tag:       "ul",
		ClassName: classList,
		Parent:    w.container,
	})
}

// loadMessages starts (or restarts) the load cycle. Any prior pipeline
// is cancelled first so at most one is ever active.
func (w *Widget) loadMessages() {
	if !w.Mounted() {
		return
	}

	w.runMu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.runMu.Unlock()

	// First paint: show the loading placeholder until data arrives.
	w.mu.Lock()
	if len(w.list.Children()) == 0 {
		w.renderPlaceholderLocked(placeholderLoading, loadingText)
	}
	w.mu.Unlock()
	w.emit(Snapshot{State: StateLoading})

	go w.run(ctx)
}

// Destroy cancels the active pipeline and releases the push connection.
// It is idempotent and leaves the rendered DOM in place; removing the
// container is the embedder's concern.
func (w *Widget) Destroy() {
	w.runMu.Lock()
	defer w.runMu.Unlock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}

// HTML returns the current serialized widget subtree, or "" for an
// inert widget. Safe to call concurrently with the pipeline.
func (w *Widget) HTML() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.container == nil {
		return ""
	}
	return w.container.Render()
}

// tickOutcome carries one fetch outcome tagged with the tick generation
// that started it.
type tickOutcome struct {
	gen  uint64
	msgs []model.Message
	err  error
}

// run is the merged trigger pipeline: push events and the fallback
// timer both produce refresh ticks, each tick supersedes any in-flight
// fetch, and only the most recent fetch's outcome reaches the render
// step. Tick-level fetch errors self-heal on the next tick; a failure
// of the pipeline machinery itself renders the unavailable state and
// ends the session until Destroy/re-Mount.
func (w *Widget) run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error().Interface("panic", r).Msg("widget pipeline failed")
			w.applyUnavailable()
		}
	}()

	sub, err := w.source.Subscribe(ctx, w.eventName)
	if err != nil {
		w.log.Error().Err(err).Msg("push subscription failed, widget unavailable")
		w.applyUnavailable()
		return
	}
	defer sub.Close()

	ticker := time.NewTicker(w.refresh)
	defer ticker.Stop()

	results := make(chan tickOutcome, 1)
	var gen uint64
	var fetchCancel context.CancelFunc
	defer func() {
		if fetchCancel != nil {
			fetchCancel()
		}
	}()

	startFetch := func(trigger string) {
		gen++
		// Switch-latest: a new tick withdraws interest in the old fetch.
		if fetchCancel != nil {
			fetchCancel()
		}
		fctx, cancel := context.WithCancel(ctx)
		fetchCancel = cancel
		if w.metrics != nil {
			w.metrics.RecordTick(trigger)
		}

		g := gen
		go func() {
			msgs, err := w.fetcher.UnreadMessages(fctx)
			select {
			case results <- tickOutcome{gen: g, msgs: msgs, err: err}:
			case <-ctx.Done():
			}
		}()
	}

	// The fallback timer fires immediately once, then on the interval.
	startFetch(triggerTimer)

	events := sub.Events()
	for {
		select {
		case <-ctx.Done():
			return

		case _, ok := <-events:
			if !ok {
				events = nil // stream gone; the timer keeps us fresh
				continue
			}
			startFetch(triggerPush)

		case <-ticker.C:
			startFetch(triggerTimer)

		case res := <-results:
			if res.gen != gen {
				// A newer tick superseded this fetch; never render it.
				if w.metrics != nil {
					w.metrics.RecordStaleDrop()
				}
				continue
			}
			w.apply(res)
		}
	}
}

// Trigger source labels used for logging and metrics.
const (
	triggerPush  = "push"
	triggerTimer = "timer"
)

// apply renders the outcome of the current tick.
func (w *Widget) apply(res tickOutcome) {
	if res.err != nil {
		// Tick-level failure: warn, render the retry-pending state with
		// a zero counter, and keep the pipeline alive.
		w.log.Warn().Err(res.err).Msg("unread fetch failed, retrying on the next tick")
		if w.metrics != nil {
			w.metrics.RecordFetchFailure()
		}
		w.mu.Lock()
		w.renderPlaceholderLocked(placeholderRetry, retryText)
		w.setCounterLocked(0)
		w.mu.Unlock()
		w.emit(Snapshot{State: StateRetrying})
		return
	}

	w.mu.Lock()
	items := w.renderLocked(res.msgs)
	w.setCounterLocked(len(res.msgs))
	w.mu.Unlock()

	if w.metrics != nil {
		w.metrics.SetUnreadCount(len(res.msgs))
	}

	state := StateOK
	if len(res.msgs) == 0 {
		state = StateEmpty
	}
	w.emit(Snapshot{State: state, Items: items, Count: len(res.msgs)})
}

// applyUnavailable renders the terminal pipeline-failure state.
func (w *Widget) applyUnavailable() {
	w.mu.Lock()
	w.renderPlaceholderLocked(placeholderUnavailable, unavailableText)
	w.setCounterLocked(0)
	w.mu.Unlock()
	if w.metrics != nil {
		w.metrics.SetUnreadCount(0)
	}
	w.emit(Snapshot{State: StateUnavailable})
}
