package hostedapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
	domainauth "github.com/fixify/ui-core/internal/domain/auth"
	"github.com/fixify/ui-core/internal/ports"
	"golang.org/x/net/websocket"
)

// EventStream subscribes to the backend's auth event push channel over a
// websocket and fans events out to local subscribers. The payloads are
// loosely shaped JSON owned by the backend; field extraction goes through
// JMESPath expressions so shape drift degrades to "no session payload"
// instead of a decode failure.
type EventStream struct {
	wsURL  string
	origin string
	apiKey string
	log    *slog.Logger

	dial func() (eventConn, error)

	mu      sync.Mutex
	nextID  int
	subs    map[int]func(ports.AuthEvent)
	started bool
	closing chan struct{}
}

var _ ports.AuthEvents = (*EventStream)(nil)

// eventConn abstracts the websocket for tests.
type eventConn interface {
	Receive(v *map[string]any) error
	Close() error
}

type wsConn struct{ conn *websocket.Conn }

func (w wsConn) Receive(v *map[string]any) error { return websocket.JSON.Receive(w.conn, v) }
func (w wsConn) Close() error                    { return w.conn.Close() }

// JMESPath expressions for the payload fields this core consumes.
const (
	exprEvent       = "event"
	exprUserID      = "session.user.id"
	exprUserEmail   = "session.user.email"
	exprExpiresAt   = "session.expires_at"
	exprAccessToken = "session.access_token"
)

// EventStreamConfig configures the stream.
type EventStreamConfig struct {
	// BaseURL is the project root; the stream lives at /auth/v1/events.
	BaseURL string
	APIKey  string
	Logger  *slog.Logger
}

// NewEventStream builds the stream. The connection is established lazily on
// the first Subscribe and re-dialed with backoff when dropped.
func NewEventStream(cfg EventStreamConfig) (*EventStream, error) {
	base := strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("event stream base URL is required")
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	wsURL := "wss" + strings.TrimPrefix(base, "https") + "/auth/v1/events"
	if strings.HasPrefix(base, "http://") {
		wsURL = "ws" + strings.TrimPrefix(base, "http") + "/auth/v1/events"
	}

	s := &EventStream{
		wsURL:   wsURL,
		origin:  base,
		apiKey:  cfg.APIKey,
		log:     log,
		subs:    make(map[int]func(ports.AuthEvent)),
		closing: make(chan struct{}),
	}
	s.dial = s.dialWebsocket
	return s, nil
}

func (s *EventStream) dialWebsocket() (eventConn, error) {
	cfg, err := websocket.NewConfig(s.wsURL+"?apikey="+s.apiKey, s.origin)
	if err != nil {
		return nil, fmt.Errorf("websocket config: %w", err)
	}
	conn, err := websocket.DialConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}
	return wsConn{conn: conn}, nil
}

// Subscribe registers cb for subsequent auth events and starts the receive
// loop on first use.
func (s *EventStream) Subscribe(cb func(ports.AuthEvent)) (ports.Unsubscribe, error) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = cb
	if !s.started {
		s.started = true
		go s.receiveLoop()
	}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}, nil
}

// Close stops the receive loop. Registered callbacks are not invoked after
// Close returns the loop to idle.
func (s *EventStream) Close() {
	s.mu.Lock()
	select {
	case <-s.closing:
	default:
		close(s.closing)
	}
	s.mu.Unlock()
}

// receiveLoop dials, receives, and re-dials with linear backoff. A dropped
// stream is not an auth decision: state convergence is the reconciliation
// passes' job, the stream is only a hint channel.
func (s *EventStream) receiveLoop() {
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		select {
		case <-s.closing:
			return
		default:
		}

		conn, err := s.dial()
		if err != nil {
			s.log.Warn("hostedapi: event stream dial failed", "error", err, "retry_in", backoff)
			select {
			case <-s.closing:
				return
			case <-time.After(backoff):
			}
			if backoff < maxBackoff {
				backoff += time.Second
			}
			continue
		}
		backoff = time.Second

		s.receiveUntilClosed(conn)
		_ = conn.Close()
	}
}

func (s *EventStream) receiveUntilClosed(conn eventConn) {
	for {
		select {
		case <-s.closing:
			return
		default:
		}

		var payload map[string]any
		if err := conn.Receive(&payload); err != nil {
			s.log.Debug("hostedapi: event stream receive ended", "error", err)
			return
		}

		event, ok := parseEvent(payload)
		if !ok {
			continue
		}
		s.deliver(event)
	}
}

func (s *EventStream) deliver(e ports.AuthEvent) {
	s.mu.Lock()
	cbs := make([]func(ports.AuthEvent), 0, len(s.subs))
	for _, cb := range s.subs {
		cbs = append(cbs, cb)
	}
	s.mu.Unlock()
	for _, cb := range cbs {
		cb(e)
	}
}

// parseEvent maps one raw payload to an AuthEvent. Unknown event names are
// dropped; a session block missing a user id counts as "no session payload".
func parseEvent(payload map[string]any) (ports.AuthEvent, bool) {
	name, _ := searchString(exprEvent, payload)

	var kind ports.AuthEventKind
	switch strings.ToUpper(name) {
	case "SIGNED_IN":
		kind = ports.AuthEventSignedIn
	case "SIGNED_OUT":
		kind = ports.AuthEventSignedOut
	case "TOKEN_REFRESHED":
		kind = ports.AuthEventTokenRefreshed
	case "USER_UPDATED":
		kind = ports.AuthEventUserUpdated
	default:
		return ports.AuthEvent{}, false
	}

	event := ports.AuthEvent{Kind: kind}
	if id, ok := searchString(exprUserID, payload); ok && id != "" {
		identity := domainauth.Identity{ID: id}
		if email, ok := searchString(exprUserEmail, payload); ok {
			identity.Email = email
		}
		if exp, ok := searchNumber(exprExpiresAt, payload); ok {
			identity.ExpiresAt = time.Unix(int64(exp), 0)
		}
		event.Session = &identity
	}
	return event, true
}

// AccessTokenOf extracts the session's access token from a raw event
// payload, for callers that install refreshed tokens into a TokenHolder.
func AccessTokenOf(payload map[string]any) (string, bool) {
	return searchString(exprAccessToken, payload)
}

func searchString(expr string, data any) (string, bool) {
	v, err := jmespath.Search(expr, data)
	if err != nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func searchNumber(expr string, data any) (float64, bool) {
	v, err := jmespath.Search(expr, data)
	if err != nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
