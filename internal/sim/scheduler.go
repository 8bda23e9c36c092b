package sim

import (
	"sync"
	"sync/atomic"
	"time"
)

// Timer is a handle to a recurring callback.
type Timer interface {
	Stop()
}

// Scheduler is the host's timer service. The engine arms at most one
// recurring tick through it at a time.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Timer
}

// --- ManualScheduler ---

// ManualScheduler runs timers against a virtual clock that only moves when
// Advance is called. Callbacks run synchronously on the caller's goroutine.
type ManualScheduler struct {
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	seq      int
	interval time.Duration
	next     time.Duration
	fn       func()
	stopped  bool
}

func (t *manualTimer) Stop() { t.stopped = true }

// NewManualScheduler returns a scheduler with its clock at zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Every registers fn to fire every interval of virtual time, first at
// now+interval.
func (s *ManualScheduler) Every(interval time.Duration, fn func()) Timer {
	if interval <= 0 {
		panic("sim: timer interval must be positive")
	}
	s.seq++
	t := &manualTimer{seq: s.seq, interval: interval, next: s.now + interval, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock forward by d, firing due callbacks in time order
// (creation order on ties). Timers stopped or created by a callback take
// effect immediately. It returns how many callbacks fired.
func (s *ManualScheduler) Advance(d time.Duration) int {
	target := s.now + d
	fired := 0
	for {
		t := s.nextDue(target)
		if t == nil {
			break
		}
		s.now = t.next
		t.next += t.interval
		t.fn()
		fired++
	}
	s.now = target
	s.compact()
	return fired
}

// Now returns the virtual clock.
func (s *ManualScheduler) Now() time.Duration { return s.now }

// Live returns the number of timers that have not been stopped.
func (s *ManualScheduler) Live() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

func (s *ManualScheduler) nextDue(target time.Duration) *manualTimer {
	var best *manualTimer
	for _, t := range s.timers {
		if t.stopped || t.next > target {
			continue
		}
		if best == nil || t.next < best.next || (t.next == best.next && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (s *ManualScheduler) compact() {
	kept := s.timers[:0]
	for _, t := range s.timers {
		if !t.stopped {
			kept = append(kept, t)
		}
	}
	for i := len(kept); i < len(s.timers); i++ {
		s.timers[i] = nil
	}
	s.timers = kept
}

// --- TickerScheduler ---

// TickerScheduler drives timers from wall-clock tickers but never runs a
// callback itself: each firing is posted to Calls and the host loop executes
// it, so ticks stay on the host goroutine. A call that was posted before its
// timer stopped is dropped when run.
type TickerScheduler struct {
	calls chan func()
}

// NewTickerScheduler returns a scheduler whose Calls channel holds up to
// buffer pending callbacks.
func NewTickerScheduler(buffer int) *TickerScheduler {
	return &TickerScheduler{calls: make(chan func(), buffer)}
}

// Calls delivers due callbacks to the host loop.
func (s *TickerScheduler) Calls() <-chan func() { return s.calls }

// Every starts a ticker goroutine for fn.
func (s *TickerScheduler) Every(interval time.Duration, fn func()) Timer {
	t := &tickerTimer{ticker: time.NewTicker(interval), done: make(chan struct{})}
	call := func() {
		if t.stopped.Load() {
			return
		}
		fn()
	}
	go func() {
		for {
			select {
			case <-t.ticker.C:
				select {
				case s.calls <- call:
				case <-t.done:
					return
				}
			case <-t.done:
				return
			}
		}
	}()
	return t
}

type tickerTimer struct {
	ticker  *time.Ticker
	done    chan struct{}
	stopped atomic.Bool
	once    sync.Once
}

func (t *tickerTimer) Stop() {
	t.once.Do(func() {
		t.stopped.Store(true)
		t.ticker.Stop()
		close(t.done)
	})
}
