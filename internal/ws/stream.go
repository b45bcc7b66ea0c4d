// Package ws maintains a subscription to the controller's event websocket.
//
// The connection cycles Connecting -> Open -> Closed -> Connecting for the
// lifetime of the stream: every close or error schedules a redial after a
// fixed delay, and the subscription handshake is resent on every successful
// reopen. The only terminal state is Stop, which closes the socket and
// cancels the pending redial.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ReconnectDelay is the fixed pause between a connection loss and the next
// dial attempt. There is deliberately no backoff growth: the original
// behavior reconnects every second forever. That is arguably a thundering
// herd risk on server restart, but flattening it is a server-side decision,
// so it is kept as-is here.
const ReconnectDelay = time.Second

// Groups maps a subscription topic to the event names subscribed within it.
type Groups map[string][]any

// DefaultGroups is the subscription set for watching the job list.
func DefaultGroups() Groups {
	return Groups{
		"jobs":      {"status_changed"},
		"schedules": {"changed"},
		"control":   {"limit_reached_1"},
	}
}

// JobEventGroups is the subscription set for tailing a single job's output.
func JobEventGroups(jobID int) Groups {
	return Groups{
		"jobs":       {"status_changed"},
		"job_events": {jobID},
	}
}

// handshake is the subscription message sent after every successful dial.
type handshake struct {
	XRFToken string `json:"xrftoken"`
	Groups   Groups `json:"groups"`
}

// Message is a single decoded event from the socket. Fields not present in a
// given message are left at their zero value; consumers must treat a zero
// UnifiedJobID as "not a job status message".
type Message struct {
	GroupName    string     `json:"group_name"`
	UnifiedJobID int        `json:"unified_job_id"`
	Status       string     `json:"status"`
	Finished     *time.Time `json:"finished"`

	// Per-job output event fields (job_events group).
	Counter      int    `json:"counter"`
	StartLine    int    `json:"start_line"`
	EndLine      int    `json:"end_line"`
	Stdout       string `json:"stdout"`
	FinalCounter int    `json:"final_counter"`
}

// Conn is the minimal connection surface the stream needs. gorilla/websocket
// connections satisfy it via gorillaConn; tests substitute fakes.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteJSON(v any) error
	Close() error
}

// DialFunc opens one connection attempt.
type DialFunc func(ctx context.Context, url string) (Conn, error)

// Options configures a Stream.
type Options struct {
	// URL of the websocket endpoint.
	URL string
	// Token is read fresh before every handshake.
	Token func() string
	// Groups to subscribe to. Defaults to DefaultGroups().
	Groups Groups
	// Dial overrides the connection factory. Defaults to gorilla/websocket.
	Dial DialFunc
	// Delay between reconnect attempts. Defaults to ReconnectDelay.
	Delay time.Duration
	// Logger for diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Stream owns one auto-reconnecting subscription. Decoded messages are
// delivered on Messages(); the channel is closed after Stop.
type Stream struct {
	opts Options

	msgs chan Message
	done chan struct{}

	stopOnce sync.Once

	mu   sync.Mutex
	conn Conn
}

// New creates a stream. Call Start to connect.
func New(opts Options) *Stream {
	if opts.Groups == nil {
		opts.Groups = DefaultGroups()
	}
	if opts.Dial == nil {
		opts.Dial = gorillaDial
	}
	if opts.Delay <= 0 {
		opts.Delay = ReconnectDelay
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Token == nil {
		opts.Token = func() string { return "" }
	}
	return &Stream{
		opts: opts,
		msgs: make(chan Message, 64),
		done: make(chan struct{}),
	}
}

// Messages returns the channel of decoded events. Closed after Stop.
func (s *Stream) Messages() <-chan Message {
	return s.msgs
}

// Start begins the connect/read/reconnect loop. It returns immediately; the
// loop runs until Stop is called or ctx is cancelled.
func (s *Stream) Start(ctx context.Context) {
	go s.run(ctx)
}

// Stop closes the connection and cancels any pending reconnect. Idempotent.
func (s *Stream) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.mu.Lock()
		if s.conn != nil {
			s.conn.Close()
		}
		s.mu.Unlock()
	})
}

func (s *Stream) run(ctx context.Context) {
	defer close(s.msgs)

	for {
		if s.stopped(ctx) {
			return
		}

		conn, err := s.opts.Dial(ctx, s.opts.URL)
		if err != nil {
			s.opts.Logger.Warn("websocket dial failed", "url", s.opts.URL, "error", err)
			if !s.sleep(ctx) {
				return
			}
			continue
		}

		// Stop may have run while the dial was in flight. Storing the conn
		// then would leave readLoop blocked on a socket nothing will close,
		// so re-check under the same lock Stop closes the conn under.
		s.mu.Lock()
		if s.stopped(ctx) {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.conn = conn
		s.mu.Unlock()

		// Resend the identical subscription handshake on every reopen.
		hs := handshake{XRFToken: s.opts.Token(), Groups: s.opts.Groups}
		if err := conn.WriteJSON(hs); err != nil {
			s.opts.Logger.Warn("websocket handshake failed", "error", err)
			conn.Close()
			if !s.sleep(ctx) {
				return
			}
			continue
		}

		s.readLoop(ctx, conn)

		conn.Close()
		s.mu.Lock()
		s.conn = nil
		s.mu.Unlock()

		if !s.sleep(ctx) {
			return
		}
	}
}

// readLoop delivers messages until the connection errors or the stream stops.
func (s *Stream) readLoop(ctx context.Context, conn Conn) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			if !s.stopped(ctx) {
				s.opts.Logger.Warn("websocket read failed", "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			// Malformed payloads are dropped, never fatal.
			s.opts.Logger.Debug("dropping malformed websocket payload", "error", err)
			continue
		}

		select {
		case s.msgs <- msg:
		case <-s.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Stream) stopped(ctx context.Context) bool {
	select {
	case <-s.done:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// sleep waits out the reconnect delay. Returns false if the stream stopped.
func (s *Stream) sleep(ctx context.Context) bool {
	timer := time.NewTimer(s.opts.Delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-s.done:
		return false
	case <-ctx.Done():
		return false
	}
}

// gorillaConn adapts *websocket.Conn to Conn.
type gorillaConn struct {
	conn *websocket.Conn
}

func (g *gorillaConn) ReadMessage() ([]byte, error) {
	_, data, err := g.conn.ReadMessage()
	return data, err
}

func (g *gorillaConn) WriteJSON(v any) error {
	return g.conn.WriteJSON(v)
}

func (g *gorillaConn) Close() error {
	return g.conn.Close()
}

func gorillaDial(ctx context.Context, url string) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return &gorillaConn{conn: conn}, nil
}
