package player

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/moviebox/internal/models"
	"github.com/desertthunder/moviebox/internal/shared"
)

type update struct {
	movieID  int
	progress float64
	duration float64
}

type fakeRecorder struct {
	mu      sync.Mutex
	updates []update
	saved   *models.WatchProgress
	err     error
}

func (r *fakeRecorder) UpdateWatchProgress(_ context.Context, movieID int, progress, duration float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, update{movieID, progress, duration})
	return r.err
}

func (r *fakeRecorder) GetMovieProgress(context.Context, int) *models.WatchProgress {
	return r.saved
}

func (r *fakeRecorder) last() (update, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.updates) == 0 {
		return update{}, false
	}
	return r.updates[len(r.updates)-1], true
}

func (r *fakeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.updates)
}

type failingMedia struct{ Simulator }

func (*failingMedia) Play(context.Context) error { return errors.New("decoder error") }

func newTestSession(t *testing.T, duration float64) (*Session, *Simulator, *fakeRecorder) {
	t.Helper()
	ctx := context.Background()

	sim := NewSimulator(duration)
	rec := &fakeRecorder{}
	s := NewSession(603, sim, rec, shared.NewLogger(&bytes.Buffer{}))
	sim.Attach(func(st Status) { s.HandleStatus(ctx, st) })
	return s, sim, rec
}

func TestSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Initial State", func(t *testing.T) {
		s := NewSession(1, NewSimulator(100), &fakeRecorder{}, shared.NewLogger(&bytes.Buffer{}))
		st := s.State()
		if !st.Loading || st.Playing || st.Volume != 1 || st.Speed != 1 || st.Quality != QualityAuto {
			t.Errorf("unexpected initial state %+v", st)
		}
	})

	t.Run("Attach Loads Duration", func(t *testing.T) {
		s, _, _ := newTestSession(t, 7200)
		st := s.State()
		if st.Loading || st.Duration != 7200 {
			t.Errorf("expected loaded state with duration, got %+v", st)
		}
	})

	t.Run("TogglePlay", func(t *testing.T) {
		s, _, _ := newTestSession(t, 100)

		if err := s.TogglePlay(ctx); err != nil {
			t.Fatalf("failed to play: %v", err)
		}
		if !s.State().Playing {
			t.Error("expected playing")
		}
		if err := s.TogglePlay(ctx); err != nil {
			t.Fatalf("failed to pause: %v", err)
		}
		if s.State().Playing {
			t.Error("expected paused")
		}
	})

	t.Run("TogglePlay Media Error", func(t *testing.T) {
		s := NewSession(1, &failingMedia{}, &fakeRecorder{}, shared.NewLogger(&bytes.Buffer{}))
		if err := s.TogglePlay(ctx); err == nil {
			t.Fatal("expected media error")
		}
		if s.State().Playing {
			t.Error("state must not change when the media call fails")
		}
	})

	t.Run("ToggleMute", func(t *testing.T) {
		s, _, _ := newTestSession(t, 100)
		s.ToggleMute(ctx)
		if !s.State().Muted {
			t.Error("expected muted")
		}
		s.ToggleMute(ctx)
		if s.State().Muted {
			t.Error("expected unmuted")
		}
	})

	t.Run("Volume", func(t *testing.T) {
		tests := []struct {
			name string
			set  func(s *Session) error
			want float64
		}{
			{"Set", func(s *Session) error { return s.SetVolume(ctx, 0.4) }, 0.4},
			{"Clamp High", func(s *Session) error { return s.SetVolume(ctx, 1.7) }, 1},
			{"Clamp Low", func(s *Session) error { return s.SetVolume(ctx, -0.2) }, 0},
			{"Drag Down", func(s *Session) error { return s.DragVolume(ctx, 100) }, 0.5},
			{"Drag Up Clamped", func(s *Session) error { return s.DragVolume(ctx, -100) }, 1},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				s, _, _ := newTestSession(t, 100)
				if err := tt.set(s); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got := s.State().Volume; got != tt.want {
					t.Errorf("expected volume %v, got %v", tt.want, got)
				}
			})
		}
	})

	t.Run("Seek", func(t *testing.T) {
		s, sim, _ := newTestSession(t, 200)

		if err := s.SeekFraction(ctx, 0.25); err != nil {
			t.Fatalf("failed to seek: %v", err)
		}
		if got := s.State().CurrentTime; got != 50 {
			t.Errorf("expected 50s, got %v", got)
		}

		s.Skip(ctx, 10)
		if got := s.State().CurrentTime; got != 60 {
			t.Errorf("expected 60s after skipping forward, got %v", got)
		}

		s.Skip(ctx, -100)
		if got := s.State().CurrentTime; got != 0 {
			t.Errorf("expected skip back to clamp at 0, got %v", got)
		}

		s.Skip(ctx, 1000)
		if got := s.State().CurrentTime; got != 200 {
			t.Errorf("expected skip forward to clamp at duration, got %v", got)
		}

		if sim.Status().Position != 200 {
			t.Errorf("expected media position 200, got %v", sim.Status().Position)
		}
	})

	t.Run("SetSpeed", func(t *testing.T) {
		s, _, _ := newTestSession(t, 100)

		if err := s.SetSpeed(ctx, 1.5); err != nil {
			t.Fatalf("failed to set speed: %v", err)
		}
		if s.State().Speed != 1.5 {
			t.Errorf("expected speed 1.5, got %v", s.State().Speed)
		}

		if err := s.SetSpeed(ctx, 3); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if s.State().Speed != 1.5 {
			t.Error("rejected speed must not change state")
		}
	})

	t.Run("SetQuality", func(t *testing.T) {
		s, _, _ := newTestSession(t, 100)

		if err := s.SetQuality(Quality1080p); err != nil {
			t.Fatalf("failed to set quality: %v", err)
		}
		if err := s.SetQuality("8k"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if s.State().Quality != Quality1080p {
			t.Errorf("expected 1080p, got %s", s.State().Quality)
		}
	})

	t.Run("Status Error", func(t *testing.T) {
		s := NewSession(1, NewSimulator(10), &fakeRecorder{}, shared.NewLogger(&bytes.Buffer{}))
		s.HandleStatus(ctx, Status{Error: "network unreachable"})

		st := s.State()
		if st.Err != "network unreachable" || st.Loading {
			t.Errorf("expected error state, got %+v", st)
		}
	})
}

func TestProgress(t *testing.T) {
	ctx := context.Background()

	t.Run("Tick Only While Playing", func(t *testing.T) {
		s, sim, rec := newTestSession(t, 200)

		if err := s.Tick(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.count() != 0 {
			t.Fatal("paused session must not write progress")
		}

		s.TogglePlay(ctx)
		sim.Advance(50 * time.Second)
		if err := s.Tick(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		u, ok := rec.last()
		if !ok || u.movieID != 603 || u.progress != 25 || u.duration != 200 {
			t.Errorf("expected 25%% of 200s for 603, got %+v", u)
		}
	})

	t.Run("Tick Unknown Duration", func(t *testing.T) {
		rec := &fakeRecorder{}
		s := NewSession(1, NewSimulator(0), rec, shared.NewLogger(&bytes.Buffer{}))
		s.update(func(st *State) { st.Playing = true })

		s.Tick(ctx)
		if rec.count() != 0 {
			t.Error("expected no write without a duration")
		}
	})

	t.Run("Speed Scales Advance", func(t *testing.T) {
		s, sim, _ := newTestSession(t, 200)
		s.TogglePlay(ctx)
		s.SetSpeed(ctx, 2)
		sim.Advance(10 * time.Second)

		if got := s.State().CurrentTime; got != 20 {
			t.Errorf("expected 20s at 2x, got %v", got)
		}
	})

	t.Run("End Of Video", func(t *testing.T) {
		s, sim, rec := newTestSession(t, 100)

		prompted := 0
		s.OnComplete = func(_ context.Context, movieID int) {
			if movieID != 603 {
				t.Errorf("expected prompt for 603, got %d", movieID)
			}
			prompted++
		}

		s.TogglePlay(ctx)
		sim.Advance(150 * time.Second)

		u, ok := rec.last()
		if !ok || u.progress != 100 || u.duration != 100 {
			t.Errorf("expected 100%% recorded, got %+v", u)
		}
		if prompted != 1 {
			t.Errorf("expected one rating prompt, got %d", prompted)
		}
		if st := s.State(); st.Playing || !st.Finished {
			t.Errorf("expected finished, stopped session, got %+v", st)
		}

		n := rec.count()
		if err := s.Close(ctx); err != nil {
			t.Fatalf("failed to close: %v", err)
		}
		if rec.count() != n {
			t.Error("closing a finished session must not overwrite the completion")
		}
	})

	t.Run("Close Flushes", func(t *testing.T) {
		s, sim, rec := newTestSession(t, 400)
		s.TogglePlay(ctx)
		sim.Advance(100 * time.Second)
		s.TogglePlay(ctx)

		if err := s.Close(ctx); err != nil {
			t.Fatalf("failed to close: %v", err)
		}
		u, ok := rec.last()
		if !ok || u.progress != 25 {
			t.Errorf("expected 25%% flushed on close, got %+v", u)
		}
	})

	t.Run("Close Propagates Error", func(t *testing.T) {
		s, _, rec := newTestSession(t, 100)
		rec.err = shared.ErrStorage

		if err := s.Close(ctx); !errors.Is(err, shared.ErrStorage) {
			t.Errorf("expected ErrStorage, got %v", err)
		}
	})

	t.Run("Run Stops With Context", func(t *testing.T) {
		s, _, rec := newTestSession(t, 100)
		s.TogglePlay(ctx)

		cctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		done := make(chan struct{})
		go func() {
			s.Run(cctx, 5*time.Millisecond)
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Run did not return after context was cancelled")
		}
		if rec.count() == 0 {
			t.Error("expected at least one periodic write")
		}
	})
}

func TestResume(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		saved  *models.WatchProgress
		wantOK bool
		want   float64
	}{
		{"No Progress", nil, false, 0},
		{"Below Threshold", &models.WatchProgress{Progress: 5, Duration: 1000}, false, 0},
		{"Resumes", &models.WatchProgress{Progress: 40, Duration: 1000}, true, 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, sim, rec := newTestSession(t, 1000)
			rec.saved = tt.saved

			pos, ok := s.ResumePosition(ctx)
			if ok != tt.wantOK || pos != tt.want {
				t.Errorf("expected (%v, %v), got (%v, %v)", tt.want, tt.wantOK, pos, ok)
			}

			resumed, err := s.Resume(ctx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resumed != tt.wantOK || sim.Status().Position != tt.want {
				t.Errorf("expected media at %v, got %v", tt.want, sim.Status().Position)
			}
		})
	}
}

func TestParseQuality(t *testing.T) {
	tests := []struct {
		in      string
		want    Quality
		wantErr bool
	}{
		{"", QualityAuto, false},
		{"4K", Quality4K, false},
		{" 720P ", Quality720p, false},
		{"8k", "", true},
	}

	for _, tt := range tests {
		got, err := ParseQuality(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseQuality(%q) = %q, %v", tt.in, got, err)
		}
	}

	if Quality4K.Height() != 2160 || QualityAuto.Height() != 0 {
		t.Error("unexpected quality heights")
	}
}
