// Package model defines the wire-level data types shared by the widget,
// the upstream client and the development stub.
package model

import "encoding/json"

// Message is one unread message as delivered by the upstream API.
// Messages are immutable once fetched; every fetch produces a fresh
// snapshot and never mutates a previously returned value.
type Message struct {
	// ID uniquely identifies the message within one unread snapshot.
	ID string `json:"id"`

	// From is the sender's display name.
	From string `json:"from"`

	// Subject is the subject line.
	Subject string `json:"subject"`

	// Body is the message body. The widget does not render it.
	Body string `json:"body,omitempty"`

	// Avatar is the URL of the sender's avatar image.
	Avatar string `json:"avatar,omitempty"`

	// Received is the receive time in integer seconds since the epoch.
	Received int64 `json:"received"`
}

// EnvelopeStatusOK is the status tag of a successful unread response.
const EnvelopeStatusOK = "ok"

// UnreadEnvelope is the payload of GET /messages/unread.
type UnreadEnvelope struct {
	// Status is the server-side status tag ("ok" on success).
	Status string `json:"status"`

	// Timestamp is the server time the snapshot was taken, in seconds.
	Timestamp int64 `json:"timestamp"`

	// Messages is the ordered unread set for this snapshot.
	Messages []Message `json:"messages"`
}

// Event is one raw push notification. The widget only cares about its
// arrival; the payload is carried along for logging and future use.
type Event struct {
	// Name is the event type the subscriber asked for.
	Name string `json:"name"`

	// Data is the raw event payload, if any.
	Data json.RawMessage `json:"data,omitempty"`
}
