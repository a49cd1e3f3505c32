package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/msomdec/praylude/internal/domain"
)

// PlaybackService owns one Player per device and drives it from a ticker
// goroutine while it runs. Ticks for a device are serialised by the device's
// mutex, so at most one is ever in flight. Only Load registers a device;
// idle, stopped players are dropped by Sweep.
//
// Lock order is s.mu before d.mu.
type PlaybackService struct {
	recorder domain.CompletionRecorder
	interval time.Duration
	now      func() time.Time
	closed   atomic.Bool

	mu      sync.Mutex
	devices map[string]*devicePlayback
}

type devicePlayback struct {
	mu       sync.Mutex
	player   *Player
	cancel   context.CancelFunc
	gen      uint64
	subs     map[chan domain.PlaybackState]struct{}
	lastUsed time.Time
	evicted  bool
}

// NewPlaybackService creates a PlaybackService ticking at the given interval.
// Completed sessions are handed to recorder.
func NewPlaybackService(recorder domain.CompletionRecorder, interval time.Duration) *PlaybackService {
	if interval <= 0 {
		interval = time.Second
	}
	return &PlaybackService{
		recorder: recorder,
		interval: interval,
		now:      time.Now,
		devices:  make(map[string]*devicePlayback),
	}
}

// lookup returns the device's entry locked, or ErrNotFound when no plan has
// been loaded for it. The caller unlocks d.mu.
func (s *PlaybackService) lookup(deviceID string) (*devicePlayback, error) {
	s.mu.Lock()
	d, ok := s.devices[deviceID]
	s.mu.Unlock()
	if !ok {
		return nil, domain.ErrNotFound
	}

	d.mu.Lock()
	if d.evicted || d.player == nil {
		d.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	return d, nil
}

// Load replaces the device's player with a fresh one for plan. Any running
// ticker is stopped; the previous position is discarded.
func (s *PlaybackService) Load(deviceID string, plan domain.SessionPlan) (domain.PlaybackState, error) {
	if err := plan.Validate(); err != nil {
		return domain.PlaybackState{}, err
	}

	for {
		s.mu.Lock()
		d, ok := s.devices[deviceID]
		if !ok {
			d = &devicePlayback{subs: make(map[chan domain.PlaybackState]struct{})}
			s.devices[deviceID] = d
		}
		s.mu.Unlock()

		d.mu.Lock()
		if d.evicted {
			// Swept between the map read and the lock; register afresh.
			d.mu.Unlock()
			continue
		}
		d.stop()
		d.player = NewPlayer(plan)
		d.lastUsed = s.now()
		state := d.player.State()
		d.publish(state)
		d.mu.Unlock()
		return state, nil
	}
}

// Plan returns the plan loaded for the device.
func (s *PlaybackService) Plan(deviceID string) (domain.SessionPlan, error) {
	d, err := s.lookup(deviceID)
	if err != nil {
		return domain.SessionPlan{}, err
	}
	defer d.mu.Unlock()
	return d.player.Plan(), nil
}

// State returns the current playback state of the device.
func (s *PlaybackService) State(deviceID string) (domain.PlaybackState, error) {
	d, err := s.lookup(deviceID)
	if err != nil {
		return domain.PlaybackState{}, err
	}
	defer d.mu.Unlock()
	return d.player.State(), nil
}

// Start resumes playback and starts the ticker.
func (s *PlaybackService) Start(deviceID string) (domain.PlaybackState, error) {
	return s.control(deviceID, func(p *Player) error { return p.Start() })
}

// Pause stops the ticker, keeping the position.
func (s *PlaybackService) Pause(deviceID string) (domain.PlaybackState, error) {
	return s.control(deviceID, func(p *Player) error { p.Pause(); return nil })
}

// Toggle flips between running and paused.
func (s *PlaybackService) Toggle(deviceID string) (domain.PlaybackState, error) {
	return s.control(deviceID, func(p *Player) error { return p.Toggle() })
}

// Reset stops the ticker and rewinds to the first step.
func (s *PlaybackService) Reset(deviceID string) (domain.PlaybackState, error) {
	return s.control(deviceID, func(p *Player) error { p.Reset(); return nil })
}

func (s *PlaybackService) control(deviceID string, op func(*Player) error) (domain.PlaybackState, error) {
	d, err := s.lookup(deviceID)
	if err != nil {
		return domain.PlaybackState{}, err
	}
	defer d.mu.Unlock()

	d.lastUsed = s.now()
	if err := op(d.player); err != nil {
		return d.player.State(), err
	}

	state := d.player.State()
	switch {
	case state.IsRunning && d.cancel == nil:
		s.startTicker(deviceID, d)
	case !state.IsRunning:
		d.stop()
	}
	d.publish(state)
	return state, nil
}

// startTicker launches the tick loop. d.mu must be held.
func (s *PlaybackService) startTicker(deviceID string, d *devicePlayback) {
	if s.closed.Load() {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.gen++
	go s.run(ctx, deviceID, d, d.gen)
}

func (s *PlaybackService) run(ctx context.Context, deviceID string, d *devicePlayback, gen uint64) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if done := s.tick(ctx, deviceID, d, gen); done {
				return
			}
		}
	}
}

// tick applies one second of playback. It reports whether the loop should exit.
func (s *PlaybackService) tick(ctx context.Context, deviceID string, d *devicePlayback, gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	// A stop may have raced with the ticker firing.
	if ctx.Err() != nil || d.gen != gen || d.player == nil {
		return true
	}

	completion := d.player.Tick()
	state := d.player.State()

	if completion != nil {
		d.stop()
		slog.Info("session completed", "device", deviceID, "session", completion.SessionName, "duration", completion.Total)
		if s.recorder != nil {
			s.recorder.RecordCompletion(context.WithoutCancel(ctx), deviceID, completion.SessionName, completion.Total, "")
		}
	}
	d.publish(state)
	return !state.IsRunning
}

// Subscribe returns a channel receiving the device's state after every change.
// Slow readers only see the latest state. The returned func unsubscribes.
// It returns ErrNotFound when no plan is loaded for the device.
func (s *PlaybackService) Subscribe(deviceID string) (<-chan domain.PlaybackState, func(), error) {
	d, err := s.lookup(deviceID)
	if err != nil {
		return nil, nil, err
	}
	ch := make(chan domain.PlaybackState, 1)
	d.subs[ch] = struct{}{}
	d.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.subs, ch)
			d.lastUsed = s.now()
			d.mu.Unlock()
		})
	}, nil
}

// Sweep drops players that are stopped, have no subscribers and have not
// been used for idle. It returns how many devices remain.
func (s *PlaybackService) Sweep(idle time.Duration) int {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, d := range s.devices {
		d.mu.Lock()
		if d.cancel == nil && len(d.subs) == 0 && !d.lastUsed.After(cutoff) {
			d.evicted = true
			delete(s.devices, id)
		}
		d.mu.Unlock()
	}
	return len(s.devices)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *PlaybackService) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if remaining := s.Sweep(idle); remaining > 0 {
				slog.Debug("playback sweep", "devices", remaining)
			}
		}
	}
}

// Close stops every ticker. Further starts do not tick.
func (s *PlaybackService) Close() {
	s.closed.Store(true)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.devices {
		d.mu.Lock()
		d.stop()
		d.mu.Unlock()
	}
}

// stop cancels the tick loop. d.mu must be held.
func (d *devicePlayback) stop() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

// publish delivers state to every subscriber, replacing any unread state.
// d.mu must be held.
func (d *devicePlayback) publish(state domain.PlaybackState) {
	for ch := range d.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- state:
		default:
		}
	}
}
