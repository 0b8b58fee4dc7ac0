package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_UnreadMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, UnreadPath, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"timestamp": 1700000100,
			"messages": [
				{"id": "1", "from": "Anna", "subject": "hello", "received": 1700000000},
				{"id": "2", "from": "Boris", "subject": "re: hello", "received": 1700000050}
			]
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0)
	msgs, err := client.UnreadMessages(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "1", msgs[0].ID)
	assert.Equal(t, "Boris", msgs[1].From)
	assert.Equal(t, int64(1700000000), msgs[0].Received)
}

func TestClient_EmptyIsValid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","timestamp":1,"messages":[]}`))
	}))
	defer srv.Close()

	msgs, err := NewClient(srv.URL, 0).UnreadMessages(context.Background())
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestClient_ErrorPaths(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name: "non-2xx status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantErr: "unexpected status 502",
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"status": "ok", "messages": [`))
			},
			wantErr: "decode unread envelope",
		},
		{
			name: "bad envelope status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"status":"degraded","timestamp":1,"messages":[]}`))
			},
			wantErr: `unread envelope status "degraded"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewClient(srv.URL, 0).UnreadMessages(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := NewClient(srv.URL, 0).UnreadMessages(context.Background())
	assert.Error(t, err)
}

func TestClient_ContextCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(srv.URL, 0).UnreadMessages(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
