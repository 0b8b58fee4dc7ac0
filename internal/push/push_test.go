package push

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sseHandler writes n events of the given name and then blocks until the
// client goes away.
func sseHandler(t *testing.T, name string, n int) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)

		for i := 0; i < n; i++ {
			fmt.Fprintf(w, "event: %s\ndata: {\"seq\": %d}\n\n", name, i)
		}
		flusher.Flush()
		<-r.Context().Done()
	}
}

func TestSSESource_DeliversNamedEvents(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t, "unread-updates", 3))
	defer srv.Close()

	src := NewSSESource(srv.URL)
	sub, err := src.Subscribe(context.Background(), "unread-updates")
	require.NoError(t, err)
	defer sub.Close()

	for i := 0; i < 3; i++ {
		select {
		case ev := <-sub.Events():
			assert.Equal(t, "unread-updates", ev.Name)
			assert.JSONEq(t, fmt.Sprintf(`{"seq": %d}`, i), string(ev.Data))
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
}

func TestSSESource_FiltersOtherEventNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, ": keep-alive\n\n")
		fmt.Fprint(w, "event: other\ndata: {}\n\n")
		fmt.Fprint(w, "event: unread-updates\ndata: {\"want\": true}\n\n")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	sub, err := NewSSESource(srv.URL).Subscribe(context.Background(), "unread-updates")
	require.NoError(t, err)
	defer sub.Close()

	select {
	case ev := <-sub.Events():
		assert.JSONEq(t, `{"want": true}`, string(ev.Data))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the matching event")
	}

	// Nothing else should arrive.
	select {
	case ev, open := <-sub.Events():
		if open {
			t.Fatalf("unexpected extra event: %+v", ev)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSSESource_SurvivesConnectionDrop(t *testing.T) {
	var conns atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := conns.Add(1)
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintf(w, "event: unread-updates\ndata: {\"conn\": %d}\n\n", n)
		w.(http.Flusher).Flush()
		if n == 1 {
			return // server closes the first connection after one event
		}
		<-r.Context().Done()
	}))
	defer srv.Close()

	src := NewSSESource(srv.URL)
	src.reconnect = 20 * time.Millisecond

	sub, err := src.Subscribe(context.Background(), "unread-updates")
	require.NoError(t, err)
	defer sub.Close()

	// The stream must keep delivering across the drop.
	for i := 0; i < 2; i++ {
		select {
		case ev := <-sub.Events():
			assert.Equal(t, "unread-updates", ev.Name)
		case <-time.After(2 * time.Second):
			t.Fatalf("stream did not survive the connection drop (event %d)", i)
		}
	}
	assert.GreaterOrEqual(t, conns.Load(), int32(2))
}

func TestSubscription_CloseReleasesConnection(t *testing.T) {
	released := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
		close(released)
	}))
	defer srv.Close()

	sub, err := NewSSESource(srv.URL).Subscribe(context.Background(), "unread-updates")
	require.NoError(t, err)

	// Give the lazy connect a moment to happen.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close()) // idempotent

	select {
	case <-released:
	case <-time.After(2 * time.Second):
		t.Fatal("closing the subscription did not close the connection")
	}

	// The events channel drains closed.
	select {
	case _, open := <-sub.Events():
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("events channel was not closed")
	}
}

func TestSSESource_RequiresEventName(t *testing.T) {
	_, err := NewSSESource("http://localhost:1").Subscribe(context.Background(), "")
	assert.Error(t, err)
}

func TestNewWebSocketSource_SchemeRewrite(t *testing.T) {
	tests := []struct {
		base    string
		want    string
		wantErr bool
	}{
		{base: "http://host:8080/api", want: "ws://host:8080/api/ws"},
		{base: "https://host/api/", want: "wss://host/api/ws"},
		{base: "ws://host", want: "ws://host/ws"},
		{base: "ftp://host", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			src, err := NewWebSocketSource(tt.base)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, src.wsURL)
		})
	}
}
