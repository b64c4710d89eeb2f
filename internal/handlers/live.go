package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"rawda/internal/contextutil"
	"rawda/internal/paginate"
	"rawda/internal/query"
	"rawda/internal/search"
	"rawda/internal/service"
)

const (
	liveWriteWait  = 10 * time.Second
	livePongWait   = 60 * time.Second
	livePingPeriod = (livePongWait * 9) / 10
	liveReadLimit  = 4096
)

// Live message types.
const (
	LiveTypeHello     = "hello"
	LiveTypeSnapshot  = "snapshot"
	LiveTypeUserCount = "user_count"
	LiveTypeError     = "error"
)

// LiveRequest is a keystroke sent by the client.
type LiveRequest struct {
	Query string `json:"query"`
}

// LiveMessage is pushed to the client on every state change.
type LiveMessage struct {
	Type       string                 `json:"type"`
	SessionID  string                 `json:"session_id,omitempty"`
	State      string                 `json:"state,omitempty"`
	Query      string                 `json:"query,omitempty"`
	Generation uint64                 `json:"generation,omitempty"`
	Results    []service.SearchResult `json:"results,omitempty"`
	Total      int                    `json:"total,omitempty"`
	UserCount  int                    `json:"user_count,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

// LiveOptions configures live search sessions.
type LiveOptions struct {
	Debounce    time.Duration
	Timeout     time.Duration
	MessageRate float64 // keystrokes per second per connection
	Burst       int
	MaxResults  int // results included in a snapshot
}

// LiveSearchHandler runs one query lifecycle per websocket connection.
type LiveSearchHandler struct {
	searcher search.Searcher
	presence *Presence
	opts     LiveOptions
	upgrader websocket.Upgrader
}

// NewLiveSearchHandler creates a new LiveSearchHandler.
func NewLiveSearchHandler(searcher search.Searcher, presence *Presence, opts LiveOptions) *LiveSearchHandler {
	if opts.MessageRate <= 0 {
		opts.MessageRate = 10
	}
	if opts.Burst <= 0 {
		opts.Burst = 20
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = paginate.DefaultPageSize
	}
	if presence == nil {
		presence = NewPresence()
	}
	return &LiveSearchHandler{
		searcher: searcher,
		presence: presence,
		opts:     opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ServeHTTP upgrades the connection and serves the session until the client
// disconnects.
func (h *LiveSearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := uuid.New().String()
	logger := contextutil.LoggerFromContext(r.Context()).With("session_id", sessionID)
	ctx, cancel := context.WithCancel(contextutil.WithLogger(r.Context(), logger))
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WarnContext(ctx, "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctrl := query.NewController(ctx, h.searcher,
		query.WithDebounce(h.opts.Debounce),
		query.WithTimeout(h.opts.Timeout),
	)
	defer ctrl.Close()

	changes, unsubscribe := ctrl.Subscribe()
	defer unsubscribe()
	counts, leave := h.presence.Join(sessionID)
	defer leave()

	logger.InfoContext(ctx, "live search session started", "user_count", h.presence.Count())

	notices := make(chan LiveMessage, 4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer conn.Close() // unblocks readLoop after a failed write
		defer cancel()
		h.writeLoop(ctx, conn, sessionID, ctrl, changes, counts, notices)
	}()

	h.readLoop(ctx, conn, ctrl, notices)
	cancel()
	<-done

	logger.InfoContext(ctx, "live search session ended")
}

// readLoop feeds keystrokes into the controller until the connection fails.
func (h *LiveSearchHandler) readLoop(ctx context.Context, conn *websocket.Conn, ctrl *query.Controller, notices chan<- LiveMessage) {
	logger := contextutil.LoggerFromContext(ctx)
	limiter := rate.NewLimiter(rate.Limit(h.opts.MessageRate), h.opts.Burst)

	conn.SetReadLimit(liveReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(livePongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(livePongWait))
	})

	for {
		var req LiveRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.DebugContext(ctx, "websocket read failed", "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(livePongWait))

		if !limiter.Allow() {
			select {
			case notices <- LiveMessage{Type: LiveTypeError, Error: "rate limit exceeded"}:
			default:
			}
			continue
		}
		ctrl.SetQuery(req.Query)
	}
}

// writeLoop is the only writer of conn.
func (h *LiveSearchHandler) writeLoop(
	ctx context.Context,
	conn *websocket.Conn,
	sessionID string,
	ctrl *query.Controller,
	changes <-chan struct{},
	counts <-chan int,
	notices <-chan LiveMessage,
) {
	logger := contextutil.LoggerFromContext(ctx)
	ticker := time.NewTicker(livePingPeriod)
	defer ticker.Stop()

	write := func(msg LiveMessage) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
		if err := conn.WriteJSON(msg); err != nil {
			logger.DebugContext(ctx, "websocket write failed", "error", err)
			return false
		}
		return true
	}

	if !write(LiveMessage{Type: LiveTypeHello, SessionID: sessionID, UserCount: h.presence.Count()}) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(liveWriteWait))
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			if !write(h.snapshotMessage(ctrl.Snapshot())) {
				return
			}
		case n := <-counts:
			if !write(LiveMessage{Type: LiveTypeUserCount, UserCount: n}) {
				return
			}
		case msg := <-notices:
			if !write(msg) {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *LiveSearchHandler) snapshotMessage(s query.Snapshot) LiveMessage {
	hits := s.Hits
	if len(hits) > h.opts.MaxResults {
		hits = hits[:h.opts.MaxResults]
	}
	results := make([]service.SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = service.PresentHit(hit, s.Query)
	}
	return LiveMessage{
		Type:       LiveTypeSnapshot,
		State:      s.State.String(),
		Query:      s.Query,
		Generation: s.Generation,
		Results:    results,
		Total:      len(s.Hits),
		Error:      s.Err,
	}
}

// Presence counts connected live sessions and tells each of them when the
// count changes.
type Presence struct {
	mu       sync.Mutex
	sessions map[string]chan int
}

// NewPresence creates an empty Presence.
func NewPresence() *Presence {
	return &Presence{sessions: make(map[string]chan int)}
}

// Count returns the number of connected sessions.
func (p *Presence) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

// Join registers a session. The returned channel receives the latest count
// after every change; the leave func unregisters the session.
func (p *Presence) Join(id string) (<-chan int, func()) {
	ch := make(chan int, 1)

	p.mu.Lock()
	p.sessions[id] = ch
	p.broadcast()
	p.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.sessions, id)
			p.broadcast()
		})
	}
}

// broadcast must be called with mu held. Each channel keeps only the newest count.
func (p *Presence) broadcast() {
	n := len(p.sessions)
	for _, ch := range p.sessions {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- n:
		default:
		}
	}
}
