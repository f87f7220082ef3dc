package workspace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

func TestWatchJob(t *testing.T) {
	events := []JobEvent{
		{JobID: "job-1", Status: JobStatusExecuting, Timestamp: time.Now().UTC().Truncate(time.Second)},
		{JobID: "job-1", Status: JobStatusSucceeded, Timestamp: time.Now().UTC().Truncate(time.Second)},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/workspaces/ws-test/jobs/job-1/events", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		conn, err := websocket.Accept(w, r, nil)
		require.NoError(t, err)

		ctx := r.Context()
		for _, event := range events {
			data, err := json.Marshal(event)
			require.NoError(t, err)
			require.NoError(t, conn.Write(ctx, websocket.MessageText, data))
		}
		conn.Close(websocket.StatusNormalClosure, "done")
	}))
	t.Cleanup(server.Close)

	log := zerologDisabled()
	client, err := NewClient(context.Background(), Config{
		WorkspaceName: "ws-test",
		Endpoint:      server.URL,
	}, &StaticTokenCredential{Token: "test-token"}, log)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := client.WatchJob(ctx, "job-1")
	require.NoError(t, err)
	defer stream.Close()

	var received []JobEvent
	for event := range stream.Events() {
		received = append(received, event)
	}

	require.Len(t, received, 2)
	assert.Equal(t, JobStatusExecuting, received[0].Status)
	assert.Equal(t, JobStatusSucceeded, received[1].Status)
	assert.Equal(t, "job-1", received[0].JobID)
}

func TestWebsocketEndpoint(t *testing.T) {
	assert.Equal(t, "wss://quantum.example.com", websocketEndpoint("https://quantum.example.com"))
	assert.Equal(t, "ws://127.0.0.1:8080", websocketEndpoint("http://127.0.0.1:8080"))
}
