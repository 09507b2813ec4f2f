package ratelimit

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Action is the kind of operation being limited. Each action is counted in
// its own independent fixed window.
type Action string

const (
	ActionCreatePoll Action = "create_poll"
	ActionVote       Action = "vote"
	ActionUpdatePoll Action = "update_poll"
	ActionDeletePoll Action = "delete_poll"
	ActionGeneral    Action = "general"
)

// Key identifies one counter: an authenticated user id or a client IP,
// combined with the action kind.
type Key struct {
	Subject string
	Action  Action
}

// Decision is the outcome of a single Allow call. RetryAfter is the
// remaining window time on rejection; it is advisory, not binding.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Config contains the limiter's ceilings and maintenance settings.
type Config struct {
	Window      time.Duration
	SweepPeriod time.Duration
	MaxEntries  int
	Limits      map[Action]int
}

// DefaultConfig returns the stock ceilings: per rolling 60-second window,
// create-poll 5, vote 10, update-poll 10, delete-poll 3, general 100.
func DefaultConfig() Config {
	return Config{
		Window:      60 * time.Second,
		SweepPeriod: 60 * time.Second,
		MaxEntries:  10000,
		Limits: map[Action]int{
			ActionCreatePoll: 5,
			ActionVote:       10,
			ActionUpdatePoll: 10,
			ActionDeletePoll: 3,
			ActionGeneral:    100,
		},
	}
}

type entry struct {
	count   int
	resetAt time.Time
}

// Limiter is a fixed-window request counter. It is an explicitly owned
// component: construct it, Start the sweep loop, Stop it on shutdown. The
// clock is injectable so window expiry and sweeping are testable without
// wall-clock sleeps.
type Limiter struct {
	mu      sync.Mutex
	entries map[Key]*entry

	config Config
	now    func() time.Time

	started  bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces the limiter's time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New creates a limiter. Call Start to run the periodic sweep.
func New(cfg Config, opts ...Option) *Limiter {
	if cfg.Window <= 0 {
		cfg.Window = 60 * time.Second
	}
	if cfg.SweepPeriod <= 0 {
		cfg.SweepPeriod = cfg.Window
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 10000
	}
	l := &Limiter{
		entries: make(map[Key]*entry),
		config:  cfg,
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Limit returns the configured ceiling for an action. Actions without an
// explicit ceiling fall back to the general one.
func (l *Limiter) Limit(action Action) int {
	if limit, ok := l.config.Limits[action]; ok {
		return limit
	}
	return l.config.Limits[ActionGeneral]
}

// Allow records one request against key's window and decides whether it may
// proceed. The check and the increment happen under one lock, so concurrent
// requests on the same key never observe a stale count.
func (l *Limiter) Allow(key Key) Decision {
	limit := l.Limit(key.Action)
	if limit <= 0 {
		return Decision{Allowed: true, Limit: limit}
	}

	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok || !e.resetAt.After(now) {
		// New key or elapsed window: start a fresh window at count 1.
		l.entries[key] = &entry{count: 1, resetAt: now.Add(l.config.Window)}
		return Decision{Allowed: true, Limit: limit, Remaining: limit - 1}
	}

	if e.count >= limit {
		return Decision{
			Allowed:    false,
			Limit:      limit,
			Remaining:  0,
			RetryAfter: e.resetAt.Sub(now),
		}
	}

	e.count++
	return Decision{Allowed: true, Limit: limit, Remaining: limit - e.count}
}

// Start runs the periodic sweep until ctx is canceled or Stop is called.
func (l *Limiter) Start(ctx context.Context) {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		return
	}
	l.started = true
	l.mu.Unlock()

	go func() {
		defer close(l.done)
		ticker := time.NewTicker(l.config.SweepPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-l.stop:
				return
			case <-ticker.C:
				l.Sweep()
			}
		}
	}()
}

// Stop terminates the sweep loop. Safe to call more than once, and a no-op
// when the limiter was never started.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		close(l.stop)
	})
	l.mu.Lock()
	started := l.started
	l.mu.Unlock()
	if started {
		<-l.done
	}
}

// Sweep removes expired entries. If the map still exceeds the configured
// maximum size, the oldest-resetting entries are evicted first.
func (l *Limiter) Sweep() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, e := range l.entries {
		if !e.resetAt.After(now) {
			delete(l.entries, key)
		}
	}

	excess := len(l.entries) - l.config.MaxEntries
	if excess <= 0 {
		return
	}

	type keyed struct {
		key Key
		at  time.Time
	}
	remaining := make([]keyed, 0, len(l.entries))
	for key, e := range l.entries {
		remaining = append(remaining, keyed{key: key, at: e.resetAt})
	}
	sort.Slice(remaining, func(i, j int) bool {
		return remaining[i].at.Before(remaining[j].at)
	})
	for i := 0; i < excess; i++ {
		delete(l.entries, remaining[i].key)
	}
}

// Len reports the number of live counters.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
