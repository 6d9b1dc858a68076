package sim

import (
	"errors"
	"sync"
	"time"

	"github.com/vplayer/vplayer/native"
)

// Session implements native.Session.
type Session struct {
	*recorder
	media Media
	auto  bool
	tick  time.Duration

	mu          sync.Mutex
	state       native.SessionState
	uri         string
	appID       string
	window      native.WindowID
	display     native.Geometry
	displayMode native.DisplayMode
	roi         native.Geometry
	rate        float64
	position    int64
	listener    native.Listener
	seeks       int
	stop        chan struct{}
}

func (s *Session) reject(op string) error {
	if err := s.call(op); err != nil {
		var typed *native.SessionError
		if errors.As(err, &typed) {
			return err
		}
		return &native.SessionError{Op: op, Type: native.ErrorInvalidOperation}
	}
	return nil
}

func (s *Session) SetAppID(id string) error {
	if err := s.reject(OpSetAppID); err != nil {
		return err
	}
	s.mu.Lock()
	s.appID = id
	s.mu.Unlock()
	return nil
}

func (s *Session) Open(uri string) error {
	if err := s.reject(OpOpen); err != nil {
		return err
	}
	s.mu.Lock()
	s.uri = uri
	s.state = native.SessionIdle
	s.mu.Unlock()
	return nil
}

func (s *Session) Close() error {
	if err := s.reject(OpClose); err != nil {
		return err
	}
	s.mu.Lock()
	stopLoop(&s.stop)
	s.state = native.SessionNone
	s.mu.Unlock()
	return nil
}

func (s *Session) Stop() error {
	if err := s.reject(OpStop); err != nil {
		return err
	}
	s.mu.Lock()
	stopLoop(&s.stop)
	if s.state != native.SessionNone {
		s.state = native.SessionIdle
	}
	s.mu.Unlock()
	return nil
}

func (s *Session) RegisterListener(l native.Listener) error {
	if err := s.reject(OpRegister); err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
	return nil
}

func (s *Session) UnregisterListener() error {
	if err := s.reject(OpUnregister); err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = nil
	s.mu.Unlock()
	return nil
}

func (s *Session) SetDisplay(_ native.DisplayType, window native.WindowID, g native.Geometry) error {
	if err := s.reject(OpSetDisplay); err != nil {
		return err
	}
	s.mu.Lock()
	s.window = window
	s.display = g
	s.mu.Unlock()
	return nil
}

func (s *Session) SetDisplayMode(m native.DisplayMode) error {
	if err := s.reject(OpSetDisplayMode); err != nil {
		return err
	}
	s.mu.Lock()
	s.displayMode = m
	s.mu.Unlock()
	return nil
}

func (s *Session) SetDisplayROI(g native.Geometry) error {
	if err := s.reject(OpSetDisplayROI); err != nil {
		return err
	}
	s.mu.Lock()
	s.roi = g
	s.mu.Unlock()
	return nil
}

func (s *Session) PrepareAsync() error {
	if err := s.reject(OpPrepare); err != nil {
		return err
	}

	if s.auto {
		go func() {
			time.Sleep(s.tick)
			s.FirePrepareDone(true)
		}()
	}
	return nil
}

func (s *Session) State() native.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Start() error {
	return s.play(OpStart, native.SessionReady)
}

func (s *Session) Resume() error {
	return s.play(OpResume, native.SessionPaused)
}

func (s *Session) play(op string, from native.SessionState) error {
	if err := s.reject(op); err != nil {
		return err
	}

	s.mu.Lock()
	if s.state != from {
		s.mu.Unlock()
		return &native.SessionError{Op: op, Type: native.ErrorInvalidState}
	}
	if s.position >= s.media.DurationMillis {
		s.position = 0
	}
	s.state = native.SessionPlaying
	if s.auto && s.stop == nil {
		s.stop = make(chan struct{})
		go ticker(s.tick, s.stop, s.advance)
	}
	s.mu.Unlock()

	if s.auto && op == OpStart {
		go func() {
			s.FireBuffering(50)
			s.FireBuffering(100)
		}()
	}
	return nil
}

func (s *Session) Pause() error {
	if err := s.reject(OpPause); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != native.SessionPlaying {
		return &native.SessionError{Op: OpPause, Type: native.ErrorInvalidState}
	}
	s.state = native.SessionPaused
	stopLoop(&s.stop)
	return nil
}

func (s *Session) SetPlayingTime(millis int64) error {
	if err := s.reject(OpSeek); err != nil {
		return err
	}

	s.mu.Lock()
	if s.state < native.SessionReady {
		s.mu.Unlock()
		return &native.SessionError{Op: OpSeek, Type: native.ErrorInvalidState}
	}
	s.position = min(millis, s.media.DurationMillis)
	s.seeks++
	if s.auto && s.state == native.SessionPlaying && s.stop == nil {
		s.stop = make(chan struct{})
		go ticker(s.tick, s.stop, s.advance)
	}
	s.mu.Unlock()

	if s.auto {
		go func() {
			time.Sleep(s.tick)
			s.CompleteSeeks()
		}()
	}
	return nil
}

func (s *Session) PlayingTime() (int64, error) {
	if err := s.reject(OpPosition); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position, nil
}

func (s *Session) SetPlaybackRate(rate float64) error {
	if err := s.reject(OpSetPlaybackRate); err != nil {
		return err
	}
	s.mu.Lock()
	s.rate = rate
	s.mu.Unlock()
	return nil
}

func (s *Session) Duration() (int64, error) {
	if err := s.reject(OpDuration); err != nil {
		return 0, err
	}
	return s.media.DurationMillis, nil
}

func (s *Session) VideoSize() (int, int, error) {
	if err := s.reject(OpVideoSize); err != nil {
		return 0, 0, err
	}
	return s.media.Width, s.media.Height, nil
}

func (s *Session) DisplayRotation() (native.Rotation, error) {
	if err := s.reject(OpRotation); err != nil {
		return native.Rotation0, err
	}
	return s.media.Rotation, nil
}

// advance moves auto playback one tick forward.
func (s *Session) advance() bool {
	s.mu.Lock()
	if s.state != native.SessionPlaying {
		s.mu.Unlock()
		return false
	}
	s.position += int64(float64(s.tick.Milliseconds()) * s.rate)
	ended := s.position >= s.media.DurationMillis
	if ended {
		s.position = s.media.DurationMillis
		stopLoop(&s.stop)
	}
	s.mu.Unlock()

	if ended {
		s.FireEndOfStream()
	}
	return !ended
}

func (s *Session) notify(fn func(native.Listener)) {
	s.mu.Lock()
	l := s.listener
	s.mu.Unlock()
	if l != nil {
		fn(l)
	}
}

// FirePrepareDone completes the pending prepare.
func (s *Session) FirePrepareDone(ok bool) {
	if ok {
		s.mu.Lock()
		if s.state == native.SessionIdle {
			s.state = native.SessionReady
		}
		s.mu.Unlock()
	}
	s.notify(func(l native.Listener) { l.OnPrepareDone(ok) })
}

// FireEndOfStream signals end of stream.
func (s *Session) FireEndOfStream() {
	s.notify(func(l native.Listener) { l.OnEndOfStream() })
}

// FireError signals an asynchronous session error.
func (s *Session) FireError(t native.ErrorType, message string) {
	s.notify(func(l native.Listener) { l.OnError(t, message) })
}

// FireResourceConflicted signals that another client took the decoding resources.
func (s *Session) FireResourceConflicted() {
	s.notify(func(l native.Listener) { l.OnResourceConflicted() })
}

// FireBuffering reports a buffering percentage.
func (s *Session) FireBuffering(percent int) {
	s.notify(func(l native.Listener) { l.OnBufferingStatus(percent) })
}

// CompleteSeeks reports one completion per requested seek.
func (s *Session) CompleteSeeks() {
	s.mu.Lock()
	n := s.seeks
	s.seeks = 0
	s.mu.Unlock()

	for i := 0; i < n; i++ {
		s.notify(func(l native.Listener) { l.OnSeekDone() })
	}
}

func (s *Session) URI() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uri
}

func (s *Session) AppID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appID
}

func (s *Session) Window() native.WindowID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window
}

func (s *Session) Display() native.Geometry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.display
}

func (s *Session) ROI() native.Geometry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roi
}

func (s *Session) Rate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rate
}
