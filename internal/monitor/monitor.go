// Package monitor polls tracked characters for situation changes and asks
// for a population-wide update when one is found.
package monitor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"wardrobe/internal/host"
	"wardrobe/internal/situation"
)

const (
	DefaultTick     = 100 * time.Millisecond
	DefaultInterval = 3 * time.Second
)

// Subject is the outfit system as seen by the monitor. Every method is
// called on the apply context.
type Subject interface {
	Enabled() bool
	Tracked() []host.CharacterID
	InScene(c host.CharacterID) bool
	UpdateAll(reason string)
}

// Poster hands work to the apply context.
type Poster interface {
	Post(task func()) bool
}

type Options struct {
	Tick     time.Duration
	Interval time.Duration
}

type Monitor struct {
	world   host.World
	subject Subject
	poster  Poster
	logger  *zap.Logger
	tick    time.Duration
	every   time.Duration

	running  atomic.Bool
	pending  atomic.Bool
	updating atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	// apply context only
	order    []host.CharacterID
	trackers map[host.CharacterID]*tracker
}

func New(world host.World, subject Subject, poster Poster, opts Options, logger *zap.Logger) *Monitor {
	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		world:    world,
		subject:  subject,
		poster:   poster,
		logger:   logger,
		tick:     opts.Tick,
		every:    opts.Interval,
		trackers: make(map[host.CharacterID]*tracker),
	}
}

// Start launches the poll loop. Calling it while running does nothing.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	m.cancel, m.done = cancel, done
	m.running.Store(true)
	m.logger.Info("starting monitor", zap.Duration("interval", m.every))
	go m.loop(ctx, done)
}

// Stop halts the poll loop and waits for it to exit.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.running.Store(false)
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	m.logger.Info("monitor stopped")
}

// Restart stops the loop and posts a reset followed by a fresh start to the
// apply context. It reports whether the follow-up was queued.
func (m *Monitor) Restart() bool {
	m.Stop()
	return m.poster.Post(func() {
		m.ResetState()
		m.Start()
	})
}

func (m *Monitor) Running() bool {
	return m.running.Load()
}

func (m *Monitor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()

	var elapsed time.Duration
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		elapsed += m.tick
		if elapsed < m.every {
			continue
		}
		elapsed = 0
		m.requestCheck()
	}
}

// requestCheck posts a change check unless one is already queued.
func (m *Monitor) requestCheck() {
	if !m.pending.CompareAndSwap(false, true) {
		return
	}
	ok := m.poster.Post(func() {
		m.pending.Store(false)
		m.CheckForChanges()
	})
	if !ok {
		m.pending.Store(false)
	}
}

// ResetState rebuilds every tracker from the current tracked list. Loaded
// characters are snapshotted, but each still counts as newly seen on the
// next check.
func (m *Monitor) ResetState() {
	m.order = m.subject.Tracked()
	m.trackers = make(map[host.CharacterID]*tracker, len(m.order))
	for _, c := range m.order {
		t := &tracker{}
		if m.world.Loaded(c) {
			m.snapshot(c, t)
		}
		m.trackers[c] = t
	}
	m.logger.Info("monitor state reset", zap.Int("characters", len(m.order)))
}

func (m *Monitor) snapshot(c host.CharacterID, t *tracker) {
	t.loaded = true
	if loc, ok := m.world.Location(c); ok {
		t.location = loc.ID
	}
	t.weather = m.world.Weather().ID
	t.dayPart = situation.DayPartAt(m.world.Hour())
	t.hasDayPart = true
	act := m.world.Activity(c)
	t.combat = act.InCombat
	t.inWater = act.InWater
	t.swimming = act.Swimming
	t.sleeping = act.Sleeping
	t.mounted = act.Mounted
	t.scene = m.subject.InScene(c)
}

// CheckForChanges looks for the first delta across tracked characters and,
// when one is found, runs a single update. It must run on the apply context.
func (m *Monitor) CheckForChanges() (Change, bool) {
	if !m.Running() {
		m.logger.Debug("not monitoring")
		return Change{}, false
	}
	if m.updating.Load() {
		m.logger.Debug("update in progress, skipping check")
		return Change{}, false
	}
	if !m.subject.Enabled() {
		m.logger.Debug("outfit system disabled, skipping check")
		return Change{}, false
	}

	for _, c := range m.order {
		t, ok := m.trackers[c]
		if !ok {
			continue
		}
		if !m.world.Loaded(c) {
			t.loaded = false
			continue
		}
		change, found := m.detect(c, t)
		if !found {
			continue
		}
		m.logger.Info("change detected", zap.String("character", c.String()), zap.String("reason", change.String()))
		m.update(change.String())
		return change, true
	}
	return Change{}, false
}

func (m *Monitor) update(reason string) {
	m.updating.Store(true)
	defer m.updating.Store(false)
	m.subject.UpdateAll(reason)
}

// detect compares c's live signals against its tracker in priority order,
// records the first difference and reports it.
func (m *Monitor) detect(c host.CharacterID, t *tracker) (Change, bool) {
	change := Change{Character: c, Name: m.world.Name(c)}

	if !t.initialized {
		t.initialized = true
		change.Signal = SignalInitial
		return change, true
	}
	if !t.loaded {
		t.loaded = true
		change.Signal = SignalLoaded
		return change, true
	}

	location := ""
	locationName := "unknown location"
	if loc, ok := m.world.Location(c); ok {
		location = loc.ID
		if loc.Name != "" {
			locationName = loc.Name
		}
	}
	if location != t.location {
		t.location = location
		change.Signal, change.Detail = SignalLocation, locationName
		return change, true
	}

	if weather := m.world.Weather(); weather.ID != "" && weather.ID != t.weather {
		t.weather = weather.ID
		change.Signal, change.Detail = SignalWeather, weather.ID
		return change, true
	}

	dayPart := situation.DayPartAt(m.world.Hour())
	if !t.hasDayPart || dayPart != t.dayPart {
		t.dayPart, t.hasDayPart = dayPart, true
		change.Signal, change.Detail = SignalDayPart, dayPart.String()
		return change, true
	}

	act := m.world.Activity(c)
	toggles := []struct {
		signal  Signal
		last    *bool
		current bool
	}{
		{SignalCombat, &t.combat, act.InCombat},
		{SignalInWater, &t.inWater, act.InWater},
		{SignalSwimming, &t.swimming, act.Swimming},
		{SignalSleeping, &t.sleeping, act.Sleeping},
		{SignalMounted, &t.mounted, act.Mounted},
		{SignalScene, &t.scene, m.subject.InScene(c)},
	}
	for _, tg := range toggles {
		if tg.current == *tg.last {
			continue
		}
		*tg.last = tg.current
		change.Signal, change.Detail = tg.signal, onOff(tg.current, "on", "off")
		return change, true
	}
	return Change{}, false
}
