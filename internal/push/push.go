// Package push implements cancelable subscriptions to the upstream's
// server-push channel. A subscription is a lazy stream of raw push
// events scoped to one event name; connection errors are logged and the
// stream keeps going, while closing the subscription releases the
// underlying network connection.
package push

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mailpane/mailpane/internal/logging"
	"github.com/mailpane/mailpane/internal/model"
)

// EventsPath is the SSE endpoint under the base URL.
const EventsPath = "/events/unread-updates"

// defaultReconnectInterval is the pause between connection attempts
// after the push channel drops.
const defaultReconnectInterval = 2 * time.Second

// subscriptionBuffer bounds how many undelivered events a subscription
// holds before the reader goroutine starts dropping them.
const subscriptionBuffer = 16

// Source produces cancelable push subscriptions.
type Source interface {
	// Subscribe opens the push channel and streams events matching
	// eventName until the context is cancelled or Close is called.
	Subscribe(ctx context.Context, eventName string) (*Subscription, error)
}

// Subscription is one live push stream. Close cancels the reader and
// closes the network connection; it is safe to call more than once.
type Subscription struct {
	events chan model.Event
	cancel context.CancelFunc
	once   sync.Once
}

// NewSubscription wraps an existing event channel and cancel function
// in a Subscription. Alternative sources and tests build on it.
func NewSubscription(events chan model.Event, cancel context.CancelFunc) *Subscription {
	return &Subscription{events: events, cancel: cancel}
}

// Events returns the event stream. The channel is closed after Close or
// when the parent context is cancelled.
func (s *Subscription) Events() <-chan model.Event {
	return s.events
}

// Close tears the subscription down and releases the transport.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// deliver hands an event to the subscriber unless the stream is done.
// A full buffer drops the event: push payloads only signal "refresh
// now", so losing one under backpressure is harmless.
func deliver(ctx context.Context, out chan<- model.Event, ev model.Event) {
	select {
	case out <- ev:
	case <-ctx.Done():
	default:
	}
}

// SSESource subscribes over Server-Sent Events.
type SSESource struct {
	baseURL   string
	http      *http.Client
	reconnect time.Duration
	log       zerolog.Logger
}

// NewSSESource creates an SSE push source for the given API base URL.
func NewSSESource(baseURL string) *SSESource {
	return &SSESource{
		baseURL: strings.TrimRight(baseURL, "/"),
		// No overall timeout: the connection is intentionally long-lived.
		http:      &http.Client{},
		reconnect: defaultReconnectInterval,
		log:       logging.Component("push-sse"),
	}
}

// Subscribe opens the event stream. The connection itself is
// established lazily by the reader goroutine; Subscribe never blocks on
// the network.
func (s *SSESource) Subscribe(ctx context.Context, eventName string) (*Subscription, error) {
	if eventName == "" {
		return nil, fmt.Errorf("subscribe: event name is required")
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		events: make(chan model.Event, subscriptionBuffer),
		cancel: cancel,
	}

	go s.run(ctx, eventName, sub.events)
	return sub, nil
}

// run connects, reads and reconnects until the context is cancelled.
func (s *SSESource) run(ctx context.Context, eventName string, out chan<- model.Event) {
	defer close(out)

	url := s.baseURL + EventsPath
	for {
		if ctx.Err() != nil {
			return
		}

		if err := s.readOnce(ctx, url, eventName, out); err != nil && ctx.Err() == nil {
			// Connection errors do not terminate the stream.
			s.log.Warn().Err(err).Str("url", url).Msg("push connection dropped, reconnecting")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.reconnect):
		}
	}
}

// readOnce holds one SSE connection open and dispatches its events.
func (s *SSESource) readOnce(ctx context.Context, url, eventName string, out chan<- model.Event) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("connect stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("connect stream: unexpected status %d", resp.StatusCode)
	}

	s.log.Debug().Str("url", url).Msg("push channel connected")
	return scanStream(ctx, resp.Body, eventName, out)
}

// scanStream parses the SSE wire format: "event:"/"data:" field lines,
// a blank line dispatches, ":" lines are comments.
func scanStream(ctx context.Context, r io.Reader, eventName string, out chan<- model.Event) error {
	scanner := bufio.NewScanner(r)

	var name string
	var data []string
	dispatch := func() {
		if name == eventName {
			var raw json.RawMessage
			if len(data) > 0 {
				raw = json.RawMessage(strings.Join(data, "\n"))
			}
			deliver(ctx, out, model.Event{Name: name, Data: raw})
		}
		name = ""
		data = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			dispatch()
		case strings.HasPrefix(line, ":"):
			// comment / keep-alive
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return io.EOF
}
