package query

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"rawda/internal/corpus"
	"rawda/internal/search"
	"rawda/internal/search/mocks"
)

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

// fakeClock records scheduled callbacks; tests fire them explicitly.
type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func (c *fakeClock) timer(i int) *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timers[i]
}

func hit(doc string) search.Hit {
	return search.Hit{Document: doc, Record: corpus.Record{Type: corpus.TypeSection, Content: doc}}
}

func newTestController(t *testing.T) (*Controller, *mocks.MockSearcher, *fakeClock) {
	t.Helper()
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	clock := &fakeClock{}
	c := NewController(context.Background(), searcher, withAfterFunc(clock.AfterFunc))
	t.Cleanup(c.Close)
	return c, searcher, clock
}

func waitForState(t *testing.T, c *Controller, want State) Snapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if s := c.Snapshot(); s.State == want {
			return s
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("state never reached %v, last = %+v", want, c.Snapshot())
	return Snapshot{}
}

func TestController_ShortQueryStaysIdle(t *testing.T) {
	c, _, clock := newTestController(t)

	for _, q := range []string{"", "a", "  ب ", "   "} {
		c.SetQuery(q)
		s := c.Snapshot()
		if s.State != Idle {
			t.Errorf("SetQuery(%q) state = %v, want idle", q, s.State)
		}
		if len(s.Hits) != 0 {
			t.Errorf("SetQuery(%q) hits = %v, want none", q, s.Hits)
		}
	}
	if n := clock.count(); n != 0 {
		t.Errorf("timers scheduled = %d, want 0", n)
	}
}

func TestController_DebounceResetsOnKeystroke(t *testing.T) {
	c, searcher, clock := newTestController(t)

	c.SetQuery("صل")
	if s := c.Snapshot(); s.State != Debouncing || s.Query != "صل" {
		t.Fatalf("snapshot = %+v, want debouncing on صل", s)
	}
	c.SetQuery(" صلا ")

	if n := clock.count(); n != 2 {
		t.Fatalf("timers scheduled = %d, want 2", n)
	}
	first, second := clock.timer(0), clock.timer(1)
	if !first.stopped {
		t.Error("first timer was not stopped by the second keystroke")
	}
	if second.d != DefaultDebounce {
		t.Errorf("debounce = %v, want %v", second.d, DefaultDebounce)
	}

	// A stale timer that fires anyway must not fetch.
	first.f()
	if s := c.Snapshot(); s.State != Debouncing {
		t.Fatalf("state after stale timer = %v, want debouncing", s.State)
	}

	searcher.EXPECT().Search(gomock.Any(), "صلا").Return([]search.Hit{hit("a.json")}, nil)
	second.f()

	s := c.Snapshot()
	if s.State != Settled || len(s.Hits) != 1 || s.Hits[0].Document != "a.json" {
		t.Errorf("snapshot = %+v, want settled with a.json", s)
	}
	if s.Generation != 2 {
		t.Errorf("Generation = %d, want 2", s.Generation)
	}
}

func TestController_Failure(t *testing.T) {
	c, searcher, clock := newTestController(t)

	c.SetQuery("query")
	searcher.EXPECT().Search(gomock.Any(), "query").Return(nil, errors.New("backend down"))
	clock.timer(0).f()

	s := c.Snapshot()
	if s.State != Failed || s.Err != "backend down" || len(s.Hits) != 0 {
		t.Errorf("snapshot = %+v, want failed with message", s)
	}
}

func TestController_DiscardsSupersededResult(t *testing.T) {
	c, searcher, clock := newTestController(t)

	release := make(chan struct{})
	var staleCtx context.Context
	searcher.EXPECT().Search(gomock.Any(), "old").
		DoAndReturn(func(ctx context.Context, _ string) ([]search.Hit, error) {
			staleCtx = ctx
			<-release
			return []search.Hit{hit("old.json")}, nil
		})

	c.SetQuery("old")
	done := make(chan struct{})
	go func() {
		defer close(done)
		clock.timer(0).f()
	}()
	waitForState(t, c, Fetching)

	c.SetQuery("new")
	close(release)
	<-done

	s := c.Snapshot()
	if s.State != Debouncing || s.Query != "new" || len(s.Hits) != 0 {
		t.Fatalf("snapshot = %+v, want debouncing on new without stale hits", s)
	}
	if staleCtx.Err() == nil {
		t.Error("superseded fetch context was not cancelled")
	}

	searcher.EXPECT().Search(gomock.Any(), "new").Return([]search.Hit{hit("new.json")}, nil)
	clock.timer(1).f()

	s = c.Snapshot()
	if s.State != Settled || len(s.Hits) != 1 || s.Hits[0].Document != "new.json" {
		t.Errorf("snapshot = %+v, want settled with new.json", s)
	}
}

func TestController_ClearDuringFetch(t *testing.T) {
	c, searcher, clock := newTestController(t)

	release := make(chan struct{})
	searcher.EXPECT().Search(gomock.Any(), "slow").
		DoAndReturn(func(context.Context, string) ([]search.Hit, error) {
			<-release
			return []search.Hit{hit("late.json")}, nil
		})

	c.SetQuery("slow")
	done := make(chan struct{})
	go func() {
		defer close(done)
		clock.timer(0).f()
	}()
	waitForState(t, c, Fetching)

	c.SetQuery("")
	if s := c.Snapshot(); s.State != Idle {
		t.Fatalf("state = %v, want idle immediately after clearing", s.State)
	}

	close(release)
	<-done
	if s := c.Snapshot(); s.State != Idle || len(s.Hits) != 0 {
		t.Errorf("snapshot = %+v, want idle with no hits after late result", s)
	}
}

func TestController_SubscribeAndClose(t *testing.T) {
	c, _, _ := newTestController(t)

	ch, unsubscribe := c.Subscribe()
	c.SetQuery("abc")
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no change signal after SetQuery")
	}

	other, _ := c.Subscribe()
	unsubscribe()
	if _, ok := <-ch; ok {
		t.Error("channel still open after unsubscribe")
	}
	unsubscribe()

	c.Close()
	for {
		if _, ok := <-other; !ok {
			break
		}
	}

	c.SetQuery("ignored")
	if s := c.Snapshot(); s.Query != "abc" {
		t.Errorf("Query after Close = %q, want abc", s.Query)
	}

	late, _ := c.Subscribe()
	if _, ok := <-late; ok {
		t.Error("Subscribe after Close returned an open channel")
	}
}

func TestController_RealTimer(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	searcher.EXPECT().Search(gomock.Any(), "الصلاة").Return([]search.Hit{hit("x.json")}, nil)

	c := NewController(context.Background(), searcher, WithDebounce(5*time.Millisecond), WithTimeout(time.Second))
	defer c.Close()

	c.SetQuery("الصلاة")
	s := waitForState(t, c, Settled)
	if len(s.Hits) != 1 {
		t.Errorf("hits = %v, want 1", s.Hits)
	}
}

func TestState_JSON(t *testing.T) {
	data, err := json.Marshal(Snapshot{State: Fetching, Query: "q", Hits: []search.Hit{}})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"state":"fetching","query":"q","hits":[],"generation":0}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
	if got := State(42).String(); got != "unknown" {
		t.Errorf("String() = %q, want unknown", got)
	}
}
