package ollama

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "formbricks-seeder/internal/common/errors"
	"formbricks-seeder/internal/common/logger"
)

// newTestClient returns a client whose backoff sleeps are recorded instead of slept.
func newTestClient(t *testing.T, baseURL string) (*Client, *[]time.Duration) {
	t.Helper()
	waits := &[]time.Duration{}
	p := DefaultRetryPolicy(3)
	p.Sleep = func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	}
	return NewClient(Config{BaseURL: baseURL, Model: "llama2", Temperature: 0.7}, p, logger.NewTestLogger(t)), waits
}

// ==========================
// Chat
// ==========================

func TestChat_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama2", req.Model)
		assert.False(t, req.Stream)
		assert.Equal(t, 0.7, req.Options.Temperature)
		assert.Equal(t, 2000, req.Options.NumPredict)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"model":   "llama2",
			"message": map[string]string{"role": "assistant", "content": `{"name":"CSAT"}`},
			"done":    true,
		})
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL)
	out, err := client.Chat(context.Background(), "be terse", "make a survey")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"CSAT"}`, out)
}

func TestChat_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"ok"},"done":true}`))
	}))
	defer server.Close()

	client, waits := newTestClient(t, server.URL)
	out, err := client.Chat(context.Background(), "", "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, *waits)
}

func TestChat_ModelNotFoundIsTerminal(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model 'llama2' not found"}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL)
	_, err := client.Chat(context.Background(), "", "hi")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, apperrors.ErrAPINoResult))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestChat_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, waits := newTestClient(t, url)
	_, err := client.Chat(context.Background(), "", "hi")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, apperrors.ErrServiceUnavailable))
	assert.Len(t, *waits, 2)
}

// ==========================
// Models
// ==========================

func tagsServer(t *testing.T, names ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		models := make([]map[string]string, 0, len(names))
		for _, n := range names {
			models = append(models, map[string]string{"name": n})
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"models": models})
	}))
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		name      string
		available []string
		want      string
		wantErr   bool
	}{
		{name: "substring match", available: []string{"mistral:7b", "llama2:latest"}, want: "llama2:latest"},
		{name: "first available", available: []string{"mistral:7b", "phi3:mini"}, want: "mistral:7b"},
		{name: "no models", available: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := tagsServer(t, tt.available...)
			defer server.Close()

			client, _ := newTestClient(t, server.URL)
			got, err := client.ResolveModel(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, "llama2", client.Model())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, client.Model())
		})
	}
}

func TestPing(t *testing.T) {
	server := tagsServer(t, "llama2:latest")
	client, _ := newTestClient(t, server.URL)
	assert.NoError(t, client.Ping(context.Background()))

	server.Close()
	assert.True(t, stderrors.Is(client.Ping(context.Background()), apperrors.ErrServiceUnavailable))
}
