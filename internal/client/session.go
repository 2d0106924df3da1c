package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"minesite/internal/web"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Session is one WebSocket connection to /ws. Each Predict call is one
// request/reply exchange; a Session is not safe for concurrent use.
type Session struct {
	conn    *websocket.Conn
	timeout time.Duration
}

// DialSession opens a predict session against the server at base.
func DialSession(ctx context.Context, base string, timeout time.Duration) (*Session, error) {
	u, err := url.Parse(strings.TrimRight(base, "/") + "/ws")
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	log.Debug().Str("url", u.String()).Msg("Establishing WebSocket connection")
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}
	conn.SetReadLimit(512 * 1024)

	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Session{conn: conn, timeout: timeout}, nil
}

// Predict sends one feature set and waits for its reply.
func (s *Session) Predict(values map[string]float64) (*web.Result, error) {
	s.conn.SetWriteDeadline(time.Now().Add(s.timeout))
	if err := s.conn.WriteJSON(web.PredictRequest{Features: values}); err != nil {
		return nil, fmt.Errorf("send failed: %w", err)
	}

	s.conn.SetReadDeadline(time.Now().Add(s.timeout))
	var reply web.WSReply
	if err := s.conn.ReadJSON(&reply); err != nil {
		return nil, fmt.Errorf("receive failed: %w", err)
	}
	if reply.Error != nil {
		return nil, &APIError{
			StatusCode: replyStatus(reply.Error),
			Message:    reply.Error.Error,
			Missing:    reply.Error.Missing,
			Expected:   reply.Error.Expected,
		}
	}
	if reply.Result == nil {
		return nil, fmt.Errorf("empty reply")
	}
	return reply.Result, nil
}

// Close sends a normal closure and closes the connection.
func (s *Session) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return s.conn.Close()
}

// WebSocket replies carry no status, so mismatch replies are mapped to 422
// to keep errors.Is(err, ml.ErrFeatureMismatch) working.
func replyStatus(e *web.ErrorResponse) int {
	if len(e.Expected) > 0 {
		return http.StatusUnprocessableEntity
	}
	return 0
}
