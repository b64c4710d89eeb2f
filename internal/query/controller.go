// Package query drives a Searcher from a stream of keystrokes: it debounces
// input, cancels superseded fetches, and discards results that arrive for a
// query the user has already replaced.
package query

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"rawda/internal/contextutil"
	"rawda/internal/search"
)

const (
	// DefaultDebounce is the quiet period after the last keystroke before a fetch starts.
	DefaultDebounce = 300 * time.Millisecond
	// DefaultTimeout bounds a single fetch; a fetch that runs past it settles as Failed.
	DefaultTimeout = 10 * time.Second
)

// State is the lifecycle position of the current query.
type State int

const (
	Idle State = iota
	Debouncing
	Fetching
	Settled
	Failed
)

var stateNames = [...]string{"idle", "debouncing", "fetching", "settled", "failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot is a consistent copy of the controller's observable state.
type Snapshot struct {
	State      State        `json:"state"`
	Query      string       `json:"query"`
	Hits       []search.Hit `json:"hits"`
	Err        string       `json:"error,omitempty"`
	Generation uint64       `json:"generation"`
}

// stopper is the part of *time.Timer the controller needs.
type stopper interface {
	Stop() bool
}

type afterFunc func(time.Duration, func()) stopper

func timeAfterFunc(d time.Duration, f func()) stopper {
	return time.AfterFunc(d, f)
}

// Controller owns the debounce timer, the in-flight fetch and the latest
// result set for one query input.
type Controller struct {
	searcher search.Searcher
	debounce time.Duration
	timeout  time.Duration
	after    afterFunc

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	state       State
	query       string
	hits        []search.Hit
	err         error
	gen         uint64
	timer       stopper
	cancelFetch context.CancelFunc
	subs        map[int]chan struct{}
	nextSub     int
	closed      bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithDebounce sets the quiet period before a query is fetched.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithTimeout bounds each fetch.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func withAfterFunc(f afterFunc) Option {
	return func(c *Controller) {
		c.after = f
	}
}

// NewController creates a controller in the Idle state. Fetches run under
// contexts derived from ctx; cancelling ctx cancels all of them.
func NewController(ctx context.Context, searcher search.Searcher, opts ...Option) *Controller {
	c := &Controller{
		searcher: searcher,
		debounce: DefaultDebounce,
		timeout:  DefaultTimeout,
		after:    timeAfterFunc,
		subs:     make(map[int]chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	return c
}

// SetQuery records a keystroke. A trimmed query shorter than
// search.MinQueryLength returns the controller to Idle immediately and clears
// the results; anything longer restarts the debounce timer.
func (c *Controller) SetQuery(q string) {
	q = strings.TrimSpace(q)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.stopTimer()
	c.cancelInFlight()
	c.gen++
	c.query = q

	if utf8.RuneCountInString(q) < search.MinQueryLength {
		c.state = Idle
		c.hits = nil
		c.err = nil
		c.notify()
		return
	}

	gen := c.gen
	c.state = Debouncing
	c.timer = c.after(c.debounce, func() { c.fire(gen) })
	c.notify()
}

// fire runs the fetch for generation gen if it is still current.
func (c *Controller) fire(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	c.cancelFetch = cancel
	c.state = Fetching
	q := c.query
	c.notify()
	c.mu.Unlock()

	hits, err := c.searcher.Search(ctx, q)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen {
		contextutil.LoggerFromContext(c.ctx).DebugContext(c.ctx, "discarding superseded search result", "query", q, "generation", gen)
		return
	}
	c.cancelFetch = nil
	if err != nil {
		c.state = Failed
		c.hits = nil
		c.err = err
	} else {
		c.state = Settled
		c.hits = hits
		c.err = nil
	}
	c.notify()
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		State:      c.state,
		Query:      c.query,
		Hits:       make([]search.Hit, len(c.hits)),
		Generation: c.gen,
	}
	copy(s.Hits, c.hits)
	if c.err != nil {
		s.Err = c.err.Error()
	}
	return s
}

// Subscribe returns a channel that receives a value after every state change.
// Signals coalesce: a slow reader sees at least one signal per burst and
// should read Snapshot for the latest state. The channel is closed by the
// returned cancel func or by Close.
func (c *Controller) Subscribe() (<-chan struct{}, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan struct{}, 1)
	if c.closed {
		close(ch)
		return ch, func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
}

// Close stops the timer, cancels any in-flight fetch and closes subscriber
// channels. Later calls to SetQuery are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.stopTimer()
	c.cancelInFlight()
	c.cancel()
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
}

func (c *Controller) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) cancelInFlight() {
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
	}
}

// notify must be called with mu held.
func (c *Controller) notify() {
	for _, ch := range c.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
