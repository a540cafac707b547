package player

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moviebox/internal/models"
	"github.com/desertthunder/moviebox/internal/shared"
)

// ResumeThreshold is the saved progress percentage above which playback offers to resume.
const ResumeThreshold = 5.0

// volumeDragScale is the vertical drag distance (points) that spans the full volume range.
const volumeDragScale = -200.0

// Speeds are the playback rates offered in the speed menu.
var Speeds = []float64{0.5, 0.75, 1.0, 1.25, 1.5, 2.0}

// Quality is a selectable stream quality.
type Quality string

const (
	QualityAuto  Quality = "auto"
	Quality480p  Quality = "480p"
	Quality720p  Quality = "720p"
	Quality1080p Quality = "1080p"
	Quality4K    Quality = "4k"
)

// Qualities lists every [Quality] in menu order.
var Qualities = []Quality{QualityAuto, Quality480p, Quality720p, Quality1080p, Quality4K}

// Height returns the vertical resolution, or 0 for auto.
func (q Quality) Height() int {
	switch q {
	case Quality480p:
		return 480
	case Quality720p:
		return 720
	case Quality1080p:
		return 1080
	case Quality4K:
		return 2160
	}
	return 0
}

// ParseQuality converts user input such as "4K" or "1080P" to a [Quality].
func ParseQuality(s string) (Quality, error) {
	q := Quality(strings.ToLower(strings.TrimSpace(s)))
	if q == "" {
		return QualityAuto, nil
	}
	if slices.Contains(Qualities, q) {
		return q, nil
	}
	return "", fmt.Errorf("%w: unknown quality %q", shared.ErrInvalidArgument, s)
}

// Media is the underlying video element. Implementations report state changes by calling
// [Session.HandleStatus], possibly from another goroutine.
type Media interface {
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	SetMuted(ctx context.Context, muted bool) error
	SetVolume(ctx context.Context, volume float64) error
	SetPosition(ctx context.Context, seconds float64) error
	SetRate(ctx context.Context, rate float64) error
}

// Status is a playback status callback from a [Media] element. Times are in seconds.
type Status struct {
	Loaded        bool
	Playing       bool
	Muted         bool
	Buffering     bool
	Volume        float64
	Position      float64
	Duration      float64
	DidJustFinish bool
	Error         string
}

// ProgressRecorder stores watch progress. [library.Library] implements it.
type ProgressRecorder interface {
	UpdateWatchProgress(ctx context.Context, movieID int, progress, duration float64) error
	GetMovieProgress(ctx context.Context, movieID int) *models.WatchProgress
}

// State is a copy of the session's on-screen state.
type State struct {
	Loading     bool
	Buffering   bool
	Playing     bool
	Muted       bool
	Finished    bool
	Volume      float64
	CurrentTime float64
	Duration    float64
	Speed       float64
	Quality     Quality
	Err         string
}

// Progress returns CurrentTime as a percentage of Duration.
func (s State) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return s.CurrentTime / s.Duration * 100
}

func (s State) String() string {
	icon := "||"
	if s.Playing {
		icon = "|>"
	}
	mute := ""
	if s.Muted {
		mute = " muted"
	}
	return fmt.Sprintf("%s %s / %s (%.0f%%) vol %.0f%%%s %gx %s",
		icon, shared.FormatDuration(s.CurrentTime), shared.FormatDuration(s.Duration),
		s.Progress(), s.Volume*100, mute, s.Speed, s.Quality)
}

// Session is one playback of one movie.
type Session struct {
	movieID  int
	media    Media
	recorder ProgressRecorder
	logger   *log.Logger

	// OnComplete is called after the end of video has been recorded, to prompt for a rating.
	OnComplete func(ctx context.Context, movieID int)

	mu    sync.Mutex
	state State
}

// NewSession creates a paused session at full volume and normal speed.
func NewSession(movieID int, media Media, recorder ProgressRecorder, logger *log.Logger) *Session {
	return &Session{
		movieID:  movieID,
		media:    media,
		recorder: recorder,
		logger:   shared.WithLogger(logger, "movie_id", movieID),
		state: State{
			Loading: true,
			Volume:  1.0,
			Speed:   1.0,
			Quality: QualityAuto,
		},
	}
}

// MovieID returns the movie being played.
func (s *Session) MovieID() int { return s.movieID }

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) update(fn func(st *State)) {
	s.mu.Lock()
	fn(&s.state)
	s.mu.Unlock()
}

// ResumePosition returns the saved playback offset when saved progress exceeds [ResumeThreshold].
func (s *Session) ResumePosition(ctx context.Context) (float64, bool) {
	p := s.recorder.GetMovieProgress(ctx, s.movieID)
	if p == nil || p.Progress <= ResumeThreshold {
		return 0, false
	}
	return p.Position(), true
}

// Resume seeks to [Session.ResumePosition] if there is one and reports whether it did.
func (s *Session) Resume(ctx context.Context) (bool, error) {
	pos, ok := s.ResumePosition(ctx)
	if !ok {
		return false, nil
	}
	return true, s.SeekTo(ctx, pos)
}

// HandleStatus folds a media status callback into the session state.
func (s *Session) HandleStatus(ctx context.Context, st Status) {
	if !st.Loaded {
		if st.Error != "" {
			s.update(func(state *State) {
				state.Err = st.Error
				state.Loading = false
			})
			s.logger.Error("playback failed", "err", st.Error)
		}
		return
	}

	s.update(func(state *State) {
		state.Loading = false
		state.Playing = st.Playing
		state.Muted = st.Muted
		state.Volume = st.Volume
		state.CurrentTime = st.Position
		state.Duration = st.Duration
		state.Buffering = st.Buffering
	})

	if st.DidJustFinish {
		s.finish(ctx)
	}
}

func (s *Session) finish(ctx context.Context) {
	var duration float64
	s.update(func(state *State) {
		state.Playing = false
		state.Finished = true
		duration = state.Duration
	})

	if err := s.recorder.UpdateWatchProgress(ctx, s.movieID, 100, duration); err != nil {
		s.logger.Warn("failed to record completion", "err", err)
	}

	if s.OnComplete != nil {
		s.OnComplete(ctx, s.movieID)
	}
}

// Tick writes the current progress when playing and the duration is known.
func (s *Session) Tick(ctx context.Context) error {
	st := s.State()
	if !st.Playing || st.Duration <= 0 {
		return nil
	}
	return s.recorder.UpdateWatchProgress(ctx, s.movieID, st.Progress(), st.Duration)
}

// Run calls [Session.Tick] every interval until ctx is done. Tick failures are logged.
func (s *Session) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Tick(ctx); err != nil {
				s.logger.Warn("failed to save progress", "err", err)
			}
		}
	}
}

// Close flushes the current progress. A finished session has already been recorded.
func (s *Session) Close(ctx context.Context) error {
	st := s.State()
	if st.Finished || st.Duration <= 0 {
		return nil
	}
	return s.recorder.UpdateWatchProgress(ctx, s.movieID, st.Progress(), st.Duration)
}

// TogglePlay pauses a playing session or plays a paused one.
func (s *Session) TogglePlay(ctx context.Context) error {
	playing := s.State().Playing

	var err error
	if playing {
		err = s.media.Pause(ctx)
	} else {
		err = s.media.Play(ctx)
	}
	if err != nil {
		return err
	}

	s.update(func(st *State) {
		st.Playing = !playing
		if st.Playing {
			st.Finished = false
		}
	})
	return nil
}

// ToggleMute flips the muted flag.
func (s *Session) ToggleMute(ctx context.Context) error {
	muted := !s.State().Muted
	if err := s.media.SetMuted(ctx, muted); err != nil {
		return err
	}
	s.update(func(st *State) { st.Muted = muted })
	return nil
}

// SetVolume sets the volume, clamped to [0, 1].
func (s *Session) SetVolume(ctx context.Context, volume float64) error {
	volume = shared.Clamp(volume, 0, 1)
	if err := s.media.SetVolume(ctx, volume); err != nil {
		return err
	}
	s.update(func(st *State) { st.Volume = volume })
	return nil
}

// DragVolume applies a vertical drag of dy points; dragging up (negative dy) raises the volume.
func (s *Session) DragVolume(ctx context.Context, dy float64) error {
	return s.SetVolume(ctx, s.State().Volume+dy/volumeDragScale)
}

// SeekTo moves playback to seconds, clamped to [0, duration] once the duration is known.
func (s *Session) SeekTo(ctx context.Context, seconds float64) error {
	if d := s.State().Duration; d > 0 {
		seconds = shared.Clamp(seconds, 0, d)
	} else if seconds < 0 {
		seconds = 0
	}

	if err := s.media.SetPosition(ctx, seconds); err != nil {
		return err
	}
	s.update(func(st *State) { st.CurrentTime = seconds })
	return nil
}

// SeekFraction seeks to a fraction of the duration, as on release of a progress-bar drag.
func (s *Session) SeekFraction(ctx context.Context, fraction float64) error {
	return s.SeekTo(ctx, shared.Clamp(fraction, 0, 1)*s.State().Duration)
}

// Skip moves playback by delta seconds.
func (s *Session) Skip(ctx context.Context, delta float64) error {
	st := s.State()
	return s.SeekTo(ctx, shared.Clamp(st.CurrentTime+delta, 0, st.Duration))
}

// SetSpeed changes the playback rate. Only values in [Speeds] are accepted.
func (s *Session) SetSpeed(ctx context.Context, speed float64) error {
	if !slices.Contains(Speeds, speed) {
		return fmt.Errorf("%w: unsupported speed %v", shared.ErrInvalidArgument, speed)
	}
	if err := s.media.SetRate(ctx, speed); err != nil {
		return err
	}
	s.update(func(st *State) { st.Speed = speed })
	return nil
}

// SetQuality records the selected quality. Stream switching is up to the caller.
func (s *Session) SetQuality(q Quality) error {
	if !slices.Contains(Qualities, q) {
		return fmt.Errorf("%w: unknown quality %q", shared.ErrInvalidArgument, q)
	}
	s.update(func(st *State) { st.Quality = q })
	return nil
}
