package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/coder/websocket"

	"github.com/getvisid/visid/pkg/logging"
)

// consentEventName is the feed event type carrying a consent change.
const consentEventName = "consent.changed"

// consentEvent is one JSON frame on the CMP feed. Categories stays nil
// when the frame carried no payload, which downstream handlers ignore.
type consentEvent struct {
	Event      string   `json:"event"`
	Categories []string `json:"categories"`
}

// WSSource delivers CMP consent-change events read from a websocket feed.
type WSSource struct {
	url         string
	log         *slog.Logger
	dialTimeout time.Duration

	conn *websocket.Conn
}

// WSOption configures a WSSource.
type WSOption func(*WSSource)

// WithWSLogger sets the operational logger.
func WithWSLogger(log *slog.Logger) WSOption {
	return func(s *WSSource) { s.log = log }
}

// WithDialTimeout bounds the websocket dial. Default 5s.
func WithDialTimeout(d time.Duration) WSOption {
	return func(s *WSSource) { s.dialTimeout = d }
}

// NewWSSource builds a feed client for the given websocket URL. No
// connection is made until Subscribe.
func NewWSSource(url string, opts ...WSOption) *WSSource {
	s := &WSSource{
		url:         url,
		log:         logging.Nop(),
		dialTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Probe returns a Probe suited to Discovery: available once the feed
// endpoint accepts a websocket connection.
func (s *WSSource) Probe() Probe {
	return func() (Source, bool) {
		ctx, cancel := context.WithTimeout(context.Background(), s.dialTimeout)
		defer cancel()
		conn, resp, err := websocket.Dial(ctx, s.url, nil)
		if resp != nil && resp.Body != nil {
			defer func() { _ = resp.Body.Close() }()
		}
		if err != nil {
			return nil, false
		}
		s.conn = conn
		return s, true
	}
}

// Subscribe implements Source. It dials the feed if Probe has not already
// done so, then pumps consent events to handler from a background
// goroutine until the connection drops.
func (s *WSSource) Subscribe(handler func(categories []string)) error {
	if s.conn == nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.dialTimeout)
		defer cancel()
		conn, resp, err := websocket.Dial(ctx, s.url, nil)
		if resp != nil && resp.Body != nil {
			defer func() { _ = resp.Body.Close() }()
		}
		if err != nil {
			return fmt.Errorf("failed to connect to consent feed: %w", err)
		}
		s.conn = conn
	}
	go s.readPump(handler)
	return nil
}

func (s *WSSource) readPump(handler func([]string)) {
	defer func() { _ = s.conn.Close(websocket.StatusNormalClosure, "done") }()
	for {
		_, data, err := s.conn.Read(context.Background())
		if err != nil {
			s.log.Debug("consent feed closed", "error", err)
			return
		}
		var ev consentEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			s.log.Debug("discarding malformed consent event", "error", err)
			continue
		}
		if ev.Event != "" && ev.Event != consentEventName {
			continue
		}
		handler(ev.Categories)
	}
}

// Close tears down the feed connection if one is open.
func (s *WSSource) Close() {
	if s.conn != nil {
		_ = s.conn.Close(websocket.StatusNormalClosure, "shutdown")
		s.conn = nil
	}
}
