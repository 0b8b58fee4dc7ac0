package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mailpane/mailpane/internal/logging"
	"github.com/mailpane/mailpane/internal/model"
)

// WSPath is the WebSocket endpoint under the base URL.
const WSPath = "/ws"

// wsFrame is the JSON shape of one pushed WebSocket message.
type wsFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// WebSocketSource subscribes over a WebSocket connection. It satisfies
// the same contract as SSESource: connection errors are logged and
// retried, closing the subscription closes the socket.
type WebSocketSource struct {
	wsURL     string
	reconnect time.Duration
}

// NewWebSocketSource creates a WebSocket push source for the given API
// base URL (http/https schemes are rewritten to ws/wss).
func NewWebSocketSource(baseURL string) (*WebSocketSource, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + WSPath

	return &WebSocketSource{
		wsURL:     u.String(),
		reconnect: defaultReconnectInterval,
	}, nil
}

// Subscribe opens the socket stream lazily, mirroring SSESource.
func (s *WebSocketSource) Subscribe(ctx context.Context, eventName string) (*Subscription, error) {
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

func (s *WebSocketSource) run(ctx context.Context, eventName string, out chan<- model.Event) {
	defer close(out)

	log := logging.Component("push-ws")
	for {
		if ctx.Err() != nil {
			return
		}

		if err := s.readOnce(ctx, eventName, out); err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Str("url", s.wsURL).Msg("push connection dropped, reconnecting")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.reconnect):
		}
	}
}

func (s *WebSocketSource) readOnce(ctx context.Context, eventName string, out chan<- model.Event) error {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, s.wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial socket: %w", err)
	}
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	defer conn.Close()

	// Close the socket as soon as the subscription is cancelled so the
	// blocked ReadJSON below returns.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		var frame wsFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return fmt.Errorf("read socket: %w", err)
		}
		if frame.Event == eventName {
			deliver(ctx, out, model.Event{Name: frame.Event, Data: frame.Data})
		}
	}
}
