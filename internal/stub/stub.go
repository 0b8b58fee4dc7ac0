// Package stub implements a self-contained development upstream: an
// in-memory mailbox exposing the unread-messages endpoint, mutation
// endpoints for demos and push channels over both SSE and WebSocket.
package stub

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mailpane/mailpane/internal/logging"
	"github.com/mailpane/mailpane/internal/model"
	"github.com/mailpane/mailpane/internal/push"
	"github.com/mailpane/mailpane/internal/upstream"
)

// keepAliveInterval paces SSE comment lines so idle connections are not
// reaped by intermediaries.
const keepAliveInterval = 15 * time.Second

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The stub is a dev tool; cross-origin demo pages are expected.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Server is the in-memory upstream. All state lives in the store; the
// hub relays change notifications to the push handlers.
type Server struct {
	log   zerolog.Logger
	hub   *Hub
	store *Store
}

// NewServer creates a stub upstream pre-seeded with a few messages.
func NewServer() *Server {
	s := &Server{
		log:   logging.Component("stub"),
		hub:   NewHub(),
		store: NewStore(),
	}
	s.seed()
	return s
}

func (s *Server) seed() {
	for _, m := range []struct{ from, subject, body string }{
		{"Анна Смирнова", "Отчёт за квартал готов", "Документ во вложении."},
		{"Pavel K.", "Re: стендап в пятницу", "Перенесём на 11:00?"},
		{"noreply@ci.example.com", "build #482 passed", "All 164 tests green."},
	} {
		s.store.Add(m.from, m.subject, m.body)
	}
}

// Router builds the stub's HTTP surface.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc(upstream.UnreadPath, s.handleUnread).Methods(http.MethodGet)
	r.HandleFunc("/messages", s.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/messages/{id}", s.handleDelete).Methods(http.MethodDelete)
	r.HandleFunc(push.EventsPath, s.handleSSE).Methods(http.MethodGet)
	r.HandleFunc(push.WSPath, s.handleWS).Methods(http.MethodGet)
	return r
}

// notify publishes one refresh hint to every connected push client.
func (s *Server) notify() {
	payload, _ := json.Marshal(map[string]int{"unread": s.store.Len()})
	s.hub.Publish(model.Event{
		Name: "unread-updates",
		Data: payload,
	})
}

func (s *Server) handleUnread(w http.ResponseWriter, r *http.Request) {
	env := model.UnreadEnvelope{
		Status:    model.EnvelopeStatusOK,
		Timestamp: time.Now().Unix(),
		Messages:  s.store.Unread(),
	}
	writeJSON(w, http.StatusOK, env)
}

// createRequest is the demo mutation payload.
type createRequest struct {
	From    string `json:"from"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode message: %w", err))
		return
	}
	if req.From == "" || req.Subject == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("from and subject are required"))
		return
	}

	msg := s.store.Add(req.From, req.Subject, req.Body)
	s.log.Info().Str("id", msg.ID).Str("from", msg.From).Msg("message created")
	s.notify()
	writeJSON(w, http.StatusCreated, msg)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.store.Remove(id) {
		writeError(w, http.StatusNotFound, fmt.Errorf("message %s not found", id))
		return
	}
	s.log.Info().Str("id", id).Msg("message read")
	s.notify()
	w.WriteHeader(http.StatusNoContent)
}

// handleSSE streams hub events in the SSE wire format until the client
// goes away.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	events, cancel := s.hub.Subscribe()
	defer cancel()
	s.log.Debug().Str("remote", r.RemoteAddr).Msg("sse client connected")

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case ev, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\n", ev.Name)
			if len(ev.Data) > 0 {
				fmt.Fprintf(w, "data: %s\n", ev.Data)
			}
			fmt.Fprint(w, "\n")
			flusher.Flush()
		}
	}
}

// handleWS streams hub events as JSON frames over a WebSocket.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	events, cancel := s.hub.Subscribe()
	defer cancel()
	s.log.Debug().Str("remote", r.RemoteAddr).Msg("websocket client connected")

	// Drain the read side so close frames and pings are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			frame := map[string]any{"event": ev.Name, "data": ev.Data}
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// newID mints message identifiers.
func newID() string {
	return uuid.NewString()
}
