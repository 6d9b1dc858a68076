package player

import (
	"errors"
	"fmt"

	"github.com/vplayer/vplayer/native"
	"github.com/vplayer/vplayer/reason"
	"github.com/vplayer/vplayer/util"
)

// StreamingEngine plays remote and protected sources through a streaming session.
//
// The session presents into the host window as an overlay, so no frames reach the frame
// sink. Looping and volume have no native counterpart.
type StreamingEngine struct {
	*machine
	session native.Session
}

// NewStreamingEngine opens a session for uri and issues the asynchronous prepare.
func NewStreamingEngine(uri string, opts Options, env Env) (*StreamingEngine, error) {
	if err := validateEnv(env); err != nil {
		return nil, err
	}

	e := &StreamingEngine{}
	e.machine = newMachine(VariantStreaming, CapabilitiesOf(VariantStreaming), env)
	e.machine.be = e

	var undo util.Stack[func() error]
	fail := func(step string, err error) (*StreamingEngine, error) {
		e.abort(&undo)
		e.log.Errorf("create: %s: %v", step, err)
		return nil, fmt.Errorf("%w: %s: %w", ErrEngineCreateFailed, step, err)
	}

	sink, err := env.Frames.Register(int64(e.handle))
	if err != nil {
		return fail("register frame sink", err)
	}
	e.sink = sink
	undo.Push(sink.Close)

	session, err := env.Platform.NewSession()
	if err != nil {
		return fail("create session", err)
	}
	e.session, e.probe = session, session
	undo.Push(session.Close)
	e.attach()

	e.identify(env)

	if err := session.Open(uri); err != nil {
		return fail("open", err)
	}
	undo.Push(session.Stop)

	if err := session.RegisterListener(&sessionListener{handle: e.handle, arena: e.arena}); err != nil {
		return fail("register listener", err)
	}
	undo.Push(session.UnregisterListener)

	if err := session.SetDisplay(native.DisplayOverlay, env.Window, e.settings.Display); err != nil {
		e.log.Warnf("set display %s on window %d: %v", e.settings.Display, env.Window, err)
	}
	if err := session.SetDisplayMode(native.DisplayModeDstROI); err != nil {
		e.log.Warnf("set display mode: %v", err)
	}

	if opts.MixWithOthers {
		e.log.Debug("mix with others is not supported by the streaming engine, ignored")
	}

	e.setState(Preparing)
	if err := session.PrepareAsync(); err != nil {
		return fail("prepare", err)
	}

	e.log.Infof("created for %s", uri)
	return e, nil
}

// identify hands the application identity to the session. Failures only cost entitlement
// checks further down, so they are logged and playback proceeds.
func (e *StreamingEngine) identify(env Env) {
	if env.Identity == nil {
		e.log.Debug("no identity resolver configured")
		return
	}

	id, err := env.Identity.Resolve()
	if err != nil {
		e.log.Warnf("resolve application identity: %v", err)
		return
	}

	if err := e.session.SetAppID(id); err != nil {
		e.log.Warnf("set application identity %q: %v", id, err)
	}
}

func (e *StreamingEngine) start(State) error {
	switch st := e.session.State(); st {
	case native.SessionReady:
		return e.session.Start()
	case native.SessionPaused:
		return e.session.Resume()
	case native.SessionPlaying:
		return nil
	default:
		return fmt.Errorf("session not ready (%s)", st)
	}
}

func (e *StreamingEngine) pause() error {
	if st := e.session.State(); st != native.SessionPlaying {
		e.log.Debugf("pause skipped in session state %s", st)
		return nil
	}
	return e.session.Pause()
}

func (e *StreamingEngine) setLooping(bool) error {
	if e.settings.EmulateLooping {
		return nil
	}
	return ErrUnsupportedOperation
}

func (e *StreamingEngine) setVolume(float64) error {
	return ErrUnsupportedOperation
}

func (e *StreamingEngine) setPlaybackRate(rate float64) error {
	return e.session.SetPlaybackRate(rate)
}

func (e *StreamingEngine) seek(millis int64, _ uint64) error {
	return e.session.SetPlayingTime(millis)
}

func (e *StreamingEngine) position() (int64, error) {
	return e.session.PlayingTime()
}

func (e *StreamingEngine) positionValid(s State) bool {
	return s == Playing || s == Paused
}

func (e *StreamingEngine) setDisplayRegion(g native.Geometry) error {
	return e.session.SetDisplayROI(g)
}

func (e *StreamingEngine) unbind() error {
	return e.session.UnregisterListener()
}

func (e *StreamingEngine) release() error {
	var errs []error
	if err := e.session.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stop: %w", err))
	}
	if err := e.session.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close: %w", err))
	}
	return errors.Join(errs...)
}

// sessionListener routes session notifications to the engine registered under handle.
type sessionListener struct {
	handle Handle
	arena  *Arena
}

func (l *sessionListener) with(fn func(*machine)) {
	if m, ok := l.arena.lookup(l.handle); ok {
		fn(m)
	}
}

func (l *sessionListener) OnError(t native.ErrorType, message string) {
	l.with(func(m *machine) { m.onNativeError(reason.FromSession(t), message) })
}

func (l *sessionListener) OnResourceConflicted() {
	l.with(func(m *machine) { m.onNativeError(reason.ResourceConflicted, "resource conflicted") })
}

func (l *sessionListener) OnEndOfStream() {
	l.with((*machine).onEndOfStream)
}

func (l *sessionListener) OnPrepareDone(ok bool) {
	l.with(func(m *machine) {
		if !ok {
			m.onNativeError(reason.PrepareFailed, "prepare failed")
			return
		}
		m.onPrepared()
	})
}

func (l *sessionListener) OnSeekDone() {
	l.with((*machine).onSeekDoneNext)
}

func (l *sessionListener) OnBufferingStatus(percent int) {
	l.with(func(m *machine) { m.onBuffering(percent) })
}
