package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
)

const eventDialTimeout = 30 * time.Second

// JobEventStream delivers live status transitions for one job over a
// websocket. It supplements polling: Results still polls, the stream is
// for callers that want push updates.
type JobEventStream struct {
	conn   *websocket.Conn
	events chan JobEvent
	cancel context.CancelFunc
	log    zerolog.Logger
}

// WatchJob opens an event stream for the given job. The stream stays
// open until Close is called, the context is cancelled, or the service
// closes it after the job reaches a terminal state.
func (c *Client) WatchJob(ctx context.Context, jobID string) (*JobEventStream, error) {
	wsURL := websocketEndpoint(c.endpoint) + c.workspacePath("jobs", jobID, "events")

	dialCtx, dialCancel := context.WithTimeout(ctx, eventDialTimeout)
	defer dialCancel()

	// The handshake carries the same auth headers as REST requests
	header := http.Header{}
	authReq := &http.Request{Header: header}
	if err := c.credential.Authorize(ctx, authReq); err != nil {
		return nil, err
	}

	conn, _, err := websocket.Dial(dialCtx, wsURL, &websocket.DialOptions{
		HTTPHeader: header,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to job event stream: %w", err)
	}

	streamCtx, cancel := context.WithCancel(ctx)
	stream := &JobEventStream{
		conn:   conn,
		events: make(chan JobEvent, 16),
		cancel: cancel,
		log:    c.log.With().Str("component", "job_events").Str("job_id", jobID).Logger(),
	}
	go stream.readLoop(streamCtx)

	return stream, nil
}

// Events returns the channel of status events. It is closed when the
// stream ends.
func (s *JobEventStream) Events() <-chan JobEvent {
	return s.events
}

// Close shuts the stream down.
func (s *JobEventStream) Close() error {
	s.cancel()
	return s.conn.Close(websocket.StatusNormalClosure, "client closing")
}

func (s *JobEventStream) readLoop(ctx context.Context) {
	defer close(s.events)

	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || ctx.Err() != nil {
				s.log.Debug().Msg("Job event stream closed")
			} else {
				s.log.Warn().Err(err).Msg("Job event stream read failed")
			}
			return
		}

		var event JobEvent
		if err := json.Unmarshal(data, &event); err != nil {
			s.log.Warn().Err(err).Msg("Failed to parse job event")
			continue
		}

		select {
		case s.events <- event:
		case <-ctx.Done():
			return
		}
	}
}

func websocketEndpoint(endpoint string) string {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return "wss://" + strings.TrimPrefix(endpoint, "https://")
	case strings.HasPrefix(endpoint, "http://"):
		return "ws://" + strings.TrimPrefix(endpoint, "http://")
	}
	return endpoint
}
