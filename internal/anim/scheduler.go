package anim

import (
	"context"
	"sync"
	"time"
)

// DefaultFPS matches the framebuffer refresh loop.
const DefaultFPS = 30

// TickerScheduler fires pending requests on a fixed-rate ticker. Callbacks
// are not run on the ticker goroutine; they are handed to post, which is
// expected to queue them on the event loop.
type TickerScheduler struct {
	interval time.Duration
	post     func(fn func())

	mu      sync.Mutex
	nextID  FrameID
	pending map[FrameID]func()
}

func NewTickerScheduler(fps int, post func(fn func())) *TickerScheduler {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &TickerScheduler{
		interval: time.Second / time.Duration(fps),
		post:     post,
		pending:  make(map[FrameID]func()),
	}
}

func (s *TickerScheduler) Interval() time.Duration { return s.interval }

func (s *TickerScheduler) RequestFrame(fn func()) FrameID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.pending[s.nextID] = fn
	return s.nextID
}

func (s *TickerScheduler) CancelFrame(id FrameID) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}

// Run ticks until ctx is done.
func (s *TickerScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick fires every request pending at this moment. Requests made by the
// fired callbacks wait for the next tick.
func (s *TickerScheduler) Tick() {
	s.mu.Lock()
	due := s.pending
	s.pending = make(map[FrameID]func(), len(due))
	s.mu.Unlock()
	for _, fn := range due {
		s.post(fn)
	}
}

// ManualScheduler fires requests only when Fire is called.
type ManualScheduler struct {
	nextID  FrameID
	pending map[FrameID]func()
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{pending: make(map[FrameID]func())}
}

func (s *ManualScheduler) RequestFrame(fn func()) FrameID {
	s.nextID++
	s.pending[s.nextID] = fn
	return s.nextID
}

func (s *ManualScheduler) CancelFrame(id FrameID) { delete(s.pending, id) }

// Pending reports how many requests wait for the next refresh.
func (s *ManualScheduler) Pending() int { return len(s.pending) }

// Fire runs every pending request once and returns how many ran.
func (s *ManualScheduler) Fire() int {
	due := s.pending
	s.pending = make(map[FrameID]func())
	for _, fn := range due {
		fn()
	}
	return len(due)
}
