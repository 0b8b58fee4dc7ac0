// Package upstream implements the client for the unread-messages API the
// widget consumes.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mailpane/mailpane/internal/logging"
	"github.com/mailpane/mailpane/internal/model"
)

// UnreadPath is the fixed unread-messages endpoint under the base URL.
const UnreadPath = "/messages/unread"

// maxResponseBytes bounds how much of a response body is read. Unread
// snapshots are small; anything larger is a misbehaving upstream.
const maxResponseBytes = 4 << 20

// Fetcher is the collaborator contract the widget depends on. A call
// either yields the current unread set (possibly empty) or a single
// error covering transport, status and parse failures alike.
type Fetcher interface {
	UnreadMessages(ctx context.Context) ([]model.Message, error)
}

// Client fetches unread messages over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates a client for the given API base URL. A zero timeout
// leaves the transport's default behavior in place.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     logging.Component("upstream"),
	}
}

// UnreadMessages performs one request to the unread endpoint, validates
// the response and extracts the message array. An empty array is a valid
// result and is distinct from any failure.
func (c *Client) UnreadMessages(ctx context.Context) ([]model.Message, error) {
	url := c.baseURL + UnreadPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build unread request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch unread messages: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 1024)
		return nil, fmt.Errorf("fetch unread messages: unexpected status %d", resp.StatusCode)
	}

	var envelope model.UnreadEnvelope
	decoder := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes))
	if err := decoder.Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode unread envelope: %w", err)
	}
	if envelope.Status != model.EnvelopeStatusOK {
		return nil, fmt.Errorf("unread envelope status %q", envelope.Status)
	}

	c.log.Debug().
		Int("count", len(envelope.Messages)).
		Int64("server_time", envelope.Timestamp).
		Msg("fetched unread snapshot")

	return envelope.Messages, nil
}
