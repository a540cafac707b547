package player

import (
	"context"
	"sync"
	"time"
)

// Simulator is a [Media] whose position advances with a clock instead of a decoder.
type Simulator struct {
	mu       sync.Mutex
	duration float64
	position float64
	volume   float64
	rate     float64
	playing  bool
	muted    bool
	onStatus func(Status)
}

// NewSimulator creates a paused simulator for a video of duration seconds.
func NewSimulator(duration float64) *Simulator {
	return &Simulator{duration: duration, volume: 1, rate: 1}
}

// Attach registers fn for status callbacks and immediately reports the loaded state.
func (m *Simulator) Attach(fn func(Status)) {
	m.mu.Lock()
	m.onStatus = fn
	m.mu.Unlock()
	m.emit(false)
}

// Status returns the current status without emitting it.
func (m *Simulator) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusLocked(false)
}

func (m *Simulator) statusLocked(finished bool) Status {
	return Status{
		Loaded:        true,
		Playing:       m.playing,
		Muted:         m.muted,
		Volume:        m.volume,
		Position:      m.position,
		Duration:      m.duration,
		DidJustFinish: finished,
	}
}

func (m *Simulator) emit(finished bool) {
	m.mu.Lock()
	st := m.statusLocked(finished)
	fn := m.onStatus
	m.mu.Unlock()

	if fn != nil {
		fn(st)
	}
}

func (m *Simulator) Play(context.Context) error {
	m.mu.Lock()
	if m.position >= m.duration {
		m.position = 0
	}
	m.playing = true
	m.mu.Unlock()
	m.emit(false)
	return nil
}

func (m *Simulator) Pause(context.Context) error {
	m.mu.Lock()
	m.playing = false
	m.mu.Unlock()
	m.emit(false)
	return nil
}

func (m *Simulator) SetMuted(_ context.Context, muted bool) error {
	m.mu.Lock()
	m.muted = muted
	m.mu.Unlock()
	m.emit(false)
	return nil
}

func (m *Simulator) SetVolume(_ context.Context, volume float64) error {
	m.mu.Lock()
	m.volume = volume
	m.mu.Unlock()
	m.emit(false)
	return nil
}

func (m *Simulator) SetPosition(_ context.Context, seconds float64) error {
	m.mu.Lock()
	m.position = min(max(seconds, 0), m.duration)
	m.mu.Unlock()
	m.emit(false)
	return nil
}

func (m *Simulator) SetRate(_ context.Context, rate float64) error {
	m.mu.Lock()
	m.rate = rate
	m.mu.Unlock()
	m.emit(false)
	return nil
}

// Advance moves the position forward by elapsed wall time scaled by the playback rate.
// Reaching the end stops playback and emits a status with DidJustFinish set.
func (m *Simulator) Advance(elapsed time.Duration) {
	m.mu.Lock()
	if !m.playing {
		m.mu.Unlock()
		return
	}

	m.position += elapsed.Seconds() * m.rate
	finished := false
	if m.position >= m.duration {
		m.position = m.duration
		m.playing = false
		finished = true
	}
	m.mu.Unlock()

	m.emit(finished)
}

// Run advances the simulator every tick by tick*scale until ctx is done or playback ends.
func (m *Simulator) Run(ctx context.Context, tick time.Duration, scale float64) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	step := time.Duration(float64(tick) * scale)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Advance(step)
			m.mu.Lock()
			done := !m.playing && m.position >= m.duration
			m.mu.Unlock()
			if done {
				return
			}
		}
	}
}
