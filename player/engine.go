// Package player implements the playback engine: one lifecycle and one asynchronous event
// protocol over two structurally different native media engines.
//
// The state machine lives in a single shared core. DecoderEngine and StreamingEngine only
// supply the native call bodies.
package player

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/sirupsen/logrus"
	"github.com/vplayer/vplayer/constant"
	"github.com/vplayer/vplayer/event"
	"github.com/vplayer/vplayer/frame"
	"github.com/vplayer/vplayer/log"
	"github.com/vplayer/vplayer/native"
	"github.com/vplayer/vplayer/reason"
	"github.com/vplayer/vplayer/util"
)

// Engine is the public contract shared by every variant.
type Engine interface {
	// Handle returns the identifier the engine was registered under.
	Handle() Handle

	// Variant reports which native engine family backs this engine.
	Variant() Variant

	// State returns the current lifecycle state.
	State() State

	// Media returns the presentation info once it has been computed.
	Media() mo.Option[MediaInfo]

	// Capabilities reports what the native engine supports.
	Capabilities() Capabilities

	// Events returns the engine's event channel.
	Events() *event.Channel

	// Play starts or resumes playback. It is a no-op unless the engine is Ready or Paused.
	Play() error

	// Pause suspends playback. It is a no-op unless the engine is Playing.
	Pause() error

	// SetLooping records the loop flag and applies it natively where supported.
	SetLooping(enabled bool) error

	// SetVolume sets the output level in [0, 1].
	SetVolume(level float64) error

	// SetPlaybackSpeed sets the playback rate; rate must be positive.
	SetPlaybackSpeed(rate float64) error

	// SeekTo requests a seek. done is invoked once the position lands, unless another
	// seek supersedes this one or the engine is disposed first.
	SeekTo(positionMillis int64, done func()) error

	// Position returns the current playback position in milliseconds.
	Position() (int64, error)

	// SetDisplayRegion moves the output rectangle where supported.
	SetDisplayRegion(x, y, width, height int) error

	// Dispose releases everything the engine holds. It is idempotent.
	Dispose() error
}

// backend is the variant specific half of an engine. Its methods are only called
// with nativeMu held and while the engine is live.
type backend interface {
	start(from State) error
	pause() error
	setLooping(enabled bool) error
	setVolume(level float64) error
	setPlaybackRate(rate float64) error
	seek(millis int64, gen uint64) error
	position() (int64, error)
	positionValid(s State) bool
	setDisplayRegion(g native.Geometry) error
	unbind() error
	release() error
}

// machine is the shared state machine.
//
// Locking: mu guards the fields below it and is never held across a native call, a publish
// or a continuation. nativeMu serializes native calls against disposal so a callback cannot
// touch a released native handle.
type machine struct {
	handle   Handle
	variant  Variant
	caps     Capabilities
	settings Settings
	arena    *Arena
	be       backend
	probe    native.Prober
	events   *event.Channel
	sink     frame.Sink
	log      *logrus.Entry

	live     atomic.Bool
	nativeMu sync.Mutex
	seeks    pendingSeek

	mu        sync.Mutex
	state     State
	media     mo.Option[MediaInfo]
	looping   bool
	initSent  bool
	buffering bool
	// hold suppresses buffering reports between end of stream and the next play.
	hold bool
}

func newMachine(variant Variant, caps Capabilities, env Env) *machine {
	arena := env.Arena
	if arena == nil {
		arena = DefaultArena
	}

	h := arena.Reserve()
	m := &machine{
		handle:   h,
		variant:  variant,
		caps:     caps,
		settings: env.Settings,
		arena:    arena,
		events:   event.New(fmt.Sprintf("%s%d", constant.EventChannelPrefix, h)),
		log:      log.WithField("player", int64(h)).WithField("variant", variant.String()),
	}
	m.events.OnListen(m.initialize)
	return m
}

func validateEnv(env Env) error {
	switch {
	case env.Platform == nil:
		return fmt.Errorf("%w: %w: no native platform", ErrEngineCreateFailed, ErrInvalidArgument)
	case env.Frames == nil:
		return fmt.Errorf("%w: %w: no frame registrar", ErrEngineCreateFailed, ErrInvalidArgument)
	default:
		return nil
	}
}

// attach makes the engine reachable from native callbacks.
func (m *machine) attach() {
	m.live.Store(true)
	m.arena.bind(m.handle, m)
}

// abort unwinds a failed creation in reverse acquisition order.
func (m *machine) abort(undo *util.Stack[func() error]) {
	m.live.Store(false)
	m.arena.Release(m.handle)

	m.nativeMu.Lock()
	undo.Drain(func(release func() error) {
		if err := release(); err != nil {
			m.log.Warnf("create rollback: %v", err)
		}
	})
	m.nativeMu.Unlock()

	m.setState(Disposed)
	m.events.Detach()
}

func (m *machine) Handle() Handle {
	return m.handle
}

func (m *machine) Variant() Variant {
	return m.variant
}

func (m *machine) Capabilities() Capabilities {
	return m.caps
}

func (m *machine) Events() *event.Channel {
	return m.events
}

func (m *machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *machine) Media() mo.Option[MediaInfo] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.media
}

// Looping returns the recorded loop flag.
func (m *machine) Looping() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.looping
}

func (m *machine) setState(s State) {
	m.mu.Lock()
	from := m.state
	m.state = s
	m.mu.Unlock()

	if from != s {
		m.log.Debugf("state %s -> %s", from, s)
	}
}

// transition moves from -> to only if the engine is still in from.
func (m *machine) transition(from, to State) bool {
	m.mu.Lock()
	ok := m.state == from
	if ok {
		m.state = to
	}
	m.mu.Unlock()

	if ok {
		m.log.Debugf("state %s -> %s", from, to)
	}
	return ok
}

func (m *machine) withNative(fn func() error) error {
	m.nativeMu.Lock()
	defer m.nativeMu.Unlock()

	if !m.live.Load() {
		return errDisposed
	}
	return fn()
}

// settle maps the result of a parity-sensitive control call onto the public error kinds.
func (m *machine) settle(op string, err error) error {
	switch {
	case err == nil, errors.Is(err, errDisposed):
		return nil
	case errors.Is(err, ErrUnsupportedOperation):
		if m.settings.StrictCapabilities {
			return fmt.Errorf("%s: %w on %s engine", op, ErrUnsupportedOperation, m.variant)
		}
		m.log.Infof("%s is not supported by the %s engine, ignored", op, m.variant)
		return nil
	default:
		return fmt.Errorf("%w: %s: %w", ErrPlaybackRequestFailed, op, err)
	}
}

func (m *machine) Play() error {
	from := m.State()
	if from != Ready && from != Paused {
		m.log.Debugf("play ignored in state %s", from)
		return nil
	}

	if err := m.withNative(func() error { return m.be.start(from) }); err != nil {
		if errors.Is(err, errDisposed) {
			return nil
		}
		return fmt.Errorf("%w: play: %w", ErrPlaybackRequestFailed, err)
	}

	m.mu.Lock()
	m.hold = false
	m.mu.Unlock()
	m.transition(from, Playing)
	return nil
}

func (m *machine) Pause() error {
	if from := m.State(); from != Playing {
		m.log.Debugf("pause ignored in state %s", from)
		return nil
	}

	if err := m.withNative(m.be.pause); err != nil {
		if errors.Is(err, errDisposed) {
			return nil
		}
		return fmt.Errorf("%w: pause: %w", ErrPlaybackRequestFailed, err)
	}

	m.transition(Playing, Paused)
	return nil
}

func (m *machine) SetLooping(enabled bool) error {
	if m.State().terminal() {
		return nil
	}

	m.mu.Lock()
	m.looping = enabled
	m.mu.Unlock()

	return m.settle("set looping", m.withNative(func() error { return m.be.setLooping(enabled) }))
}

func (m *machine) SetVolume(level float64) error {
	if level < 0 || level > 1 {
		return fmt.Errorf("%w: volume %v outside [0, 1]", ErrInvalidArgument, level)
	}
	if m.State().terminal() {
		return nil
	}

	return m.settle("set volume", m.withNative(func() error { return m.be.setVolume(level) }))
}

func (m *machine) SetPlaybackSpeed(rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("%w: playback speed %v must be positive", ErrInvalidArgument, rate)
	}
	if m.State().terminal() {
		return nil
	}

	return m.settle("set playback speed", m.withNative(func() error { return m.be.setPlaybackRate(rate) }))
}

func (m *machine) SetDisplayRegion(x, y, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: display region %dx%d", ErrInvalidArgument, width, height)
	}
	if m.State().terminal() {
		return nil
	}

	g := native.Geometry{X: x, Y: y, Width: width, Height: height}
	return m.settle("set display region", m.withNative(func() error { return m.be.setDisplayRegion(g) }))
}

func (m *machine) SeekTo(positionMillis int64, done func()) error {
	if positionMillis < 0 {
		return fmt.Errorf("%w: seek position %d", ErrInvalidArgument, positionMillis)
	}
	if m.State().terminal() {
		return nil
	}

	gen := m.seeks.arm(positionMillis, done)
	err := m.withNative(func() error { return m.be.seek(positionMillis, gen) })
	if err != nil {
		m.seeks.abort(gen)
		if errors.Is(err, errDisposed) {
			return nil
		}
		return fmt.Errorf("%w: %dms: %w", ErrSeekRequestFailed, positionMillis, err)
	}

	m.log.Debugf("seek to %dms requested", positionMillis)
	return nil
}

func (m *machine) Position() (int64, error) {
	st := m.State()
	if !m.be.positionValid(st) {
		return 0, fmt.Errorf("%w: position in state %s", ErrInvalidStateForQuery, st)
	}

	var pos int64
	err := m.withNative(func() (err error) {
		pos, err = m.be.position()
		return err
	})

	switch {
	case err == nil:
		return pos, nil
	case errors.Is(err, errDisposed):
		return 0, fmt.Errorf("%w: position in state %s", ErrInvalidStateForQuery, Disposed)
	default:
		return 0, fmt.Errorf("%w: position: %w", ErrPlaybackRequestFailed, err)
	}
}

// Dispose unregisters native callbacks, releases the native engine, closes the frame sink
// and detaches the event subscriber, in that order. Later calls are no-ops.
func (m *machine) Dispose() error {
	if !m.live.CompareAndSwap(true, false) {
		return nil
	}

	m.setState(Disposed)
	m.seeks.clear()
	m.arena.Release(m.handle)

	var errs []error

	m.nativeMu.Lock()
	if err := m.be.unbind(); err != nil {
		errs = append(errs, fmt.Errorf("unregister callbacks: %w", err))
	}
	if err := m.be.release(); err != nil {
		errs = append(errs, fmt.Errorf("release native engine: %w", err))
	}
	m.nativeMu.Unlock()

	if err := m.sink.Close(); err != nil && !errors.Is(err, frame.ErrClosed) {
		errs = append(errs, fmt.Errorf("unregister frame sink: %w", err))
	}
	m.events.Detach()

	m.log.Info("disposed")
	return errors.Join(errs...)
}

// initialize publishes the initialized event once the engine is prepared and someone listens.
// It runs after preparation and again on every subscription, and sends at most once.
// MediaInfo is normally cached by then; a failed derivation is retried and reported here.
func (m *machine) initialize() {
	if !m.events.Subscribed() {
		return
	}

	m.mu.Lock()
	eligible := m.state.prepared() && !m.initSent
	if eligible {
		m.initSent = true
	}
	m.mu.Unlock()

	if !eligible {
		return
	}

	info, err := m.mediaInfo()
	if err != nil {
		m.releaseInitialized()
		if errors.Is(err, errDisposed) {
			return
		}
		m.log.Errorf("initialize: %v", err)
		m.events.Publish(event.NewError(reason.Of(err).String(), err.Error()))
		return
	}

	if !m.events.Publish(event.NewInitialized(info.DurationMillis, info.Width, info.Height)) {
		m.releaseInitialized()
		return
	}
	m.log.Infof("initialized: %s", info)
}

func (m *machine) releaseInitialized() {
	m.mu.Lock()
	m.initSent = false
	m.mu.Unlock()
}

// mediaInfo computes MediaInfo on first use and caches it.
func (m *machine) mediaInfo() (MediaInfo, error) {
	if info, ok := m.Media().Get(); ok {
		return info, nil
	}

	var info MediaInfo
	err := m.withNative(func() error {
		duration, err := m.probe.Duration()
		if err != nil {
			return fmt.Errorf("query duration: %w", err)
		}

		width, height, err := m.probe.VideoSize()
		if err != nil {
			return fmt.Errorf("query video size: %w", err)
		}

		rotation, err := m.probe.DisplayRotation()
		if err != nil {
			m.log.Warnf("query display rotation: %v, using decoded size", err)
			rotation = native.Rotation0
		}

		info = NewMediaInfo(duration, width, height, rotation)
		return nil
	})
	if err != nil {
		return MediaInfo{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if cached, ok := m.media.Get(); ok {
		return cached, nil
	}
	m.media = mo.Some(info)
	return info, nil
}

func (m *machine) onPrepared() {
	if !m.transition(Preparing, Ready) {
		m.log.Debugf("prepared ignored in state %s", m.State())
		return
	}
	m.log.Info("prepared")

	// MediaInfo is derived on preparation whether or not anyone listens; initialize reports failures.
	if _, err := m.mediaInfo(); err != nil && !errors.Is(err, errDisposed) {
		m.log.Warnf("media info: %v", err)
	}
	m.initialize()
}

// onEndOfStream publishes completed and parks the engine in Paused, so a later play restarts it.
func (m *machine) onEndOfStream() {
	m.mu.Lock()
	from := m.state
	if from != Playing && from != Paused {
		m.mu.Unlock()
		m.log.Debugf("end of stream ignored in state %s", from)
		return
	}

	if m.looping && m.settings.EmulateLooping && !m.caps.NativeLooping {
		m.mu.Unlock()
		m.rewind()
		return
	}

	m.state = Completed
	m.hold = true
	m.buffering = false
	m.mu.Unlock()

	m.log.Info("end of stream")
	m.events.Publish(event.NewCompleted())

	if err := m.withNative(m.be.pause); err != nil && !errors.Is(err, errDisposed) {
		m.log.Warnf("pause after end of stream: %v", err)
	}
	m.transition(Completed, Paused)
}

// rewind restarts playback from zero for emulated looping.
func (m *machine) rewind() {
	gen := m.seeks.arm(0, nil)
	if err := m.withNative(func() error { return m.be.seek(0, gen) }); err != nil {
		m.seeks.abort(gen)
		if !errors.Is(err, errDisposed) {
			m.log.Warnf("loop restart: %v", err)
		}
		return
	}
	m.log.Debug("looping: restarted from the beginning")
}

// onNativeError moves the engine to Interrupted and reports through the event stream.
func (m *machine) onNativeError(r reason.Reason, message string) {
	m.mu.Lock()
	if m.state == Disposed {
		m.mu.Unlock()
		return
	}
	from := m.state
	m.state = Interrupted
	m.buffering = false
	m.mu.Unlock()

	m.seeks.clear()
	m.log.Errorf("native error in state %s: %s: %s", from, r, message)
	m.events.Publish(event.NewError(r.String(), message))
}

func (m *machine) onBuffering(percent int) {
	percent = lo.Clamp(percent, 0, 100)

	m.mu.Lock()
	if m.hold || m.state.terminal() {
		m.mu.Unlock()
		return
	}

	var started, ended bool
	switch {
	case percent < 100 && !m.buffering:
		m.buffering, started = true, true
	case percent == 100 && m.buffering:
		m.buffering, ended = false, true
	}
	duration := m.media.OrEmpty().DurationMillis
	m.mu.Unlock()

	if started {
		m.events.Publish(event.NewBufferingStart())
	}
	m.events.Publish(event.NewBufferingUpdate(0, duration*int64(percent)/100))
	if ended {
		m.events.Publish(event.NewBufferingEnd())
	}
}

func (m *machine) onSeekDone(gen uint64) {
	m.complete(m.seeks.resolve(gen))
}

func (m *machine) onSeekDoneNext() {
	m.complete(m.seeks.resolveNext())
}

func (m *machine) complete(done func(), ok bool) {
	if !ok {
		m.log.Debug("seek completion for a superseded request dropped")
		return
	}
	m.log.Debug("seek completed")
	if done != nil {
		done()
	}
}

// pushFrame forwards a decoded surface. The caller owns the packet.
func (m *machine) pushFrame(p native.Packet) {
	surface, err := p.Surface()
	if err != nil {
		m.log.Warnf("frame surface: %v", err)
		return
	}

	if err := m.sink.Push(surface); err != nil && !errors.Is(err, frame.ErrClosed) {
		m.log.Warnf("frame push: %v", err)
	}
}
