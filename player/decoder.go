package player

import (
	"errors"
	"fmt"

	"github.com/vplayer/vplayer/log"
	"github.com/vplayer/vplayer/native"
	"github.com/vplayer/vplayer/reason"
	"github.com/vplayer/vplayer/util"
)

// DecoderEngine plays local sources through the general purpose decode API.
// Frames are pushed to the frame sink; looping and volume are native.
type DecoderEngine struct {
	*machine
	dec   native.Decoder
	slots []native.Slot
}

// NewDecoderEngine opens a decoder for uri and issues the asynchronous prepare.
// It returns once prepare has been requested; readiness is reported through the event channel.
func NewDecoderEngine(uri string, opts Options, env Env) (*DecoderEngine, error) {
	if err := validateEnv(env); err != nil {
		return nil, err
	}

	e := &DecoderEngine{}
	e.machine = newMachine(VariantDecoder, CapabilitiesOf(VariantDecoder), env)
	e.machine.be = e

	var undo util.Stack[func() error]
	fail := func(step string, err error) (*DecoderEngine, error) {
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

	dec, err := env.Platform.NewDecoder()
	if err != nil {
		return fail("create decoder", err)
	}
	e.dec, e.probe = dec, dec
	undo.Push(dec.Destroy)
	e.attach()

	if err := dec.SetURI(uri); err != nil {
		return fail("set uri", err)
	}

	h, arena := e.handle, e.arena
	with := func(fn func(*machine)) {
		if m, ok := arena.lookup(h); ok {
			fn(m)
		}
	}

	registrations := []struct {
		slot     native.Slot
		optional bool
		set      func() error
	}{
		{native.SlotFrameDecoded, false, func() error {
			return dec.SetFrameDecodedCallback(func(p native.Packet) {
				defer releasePacket(p)
				with(func(m *machine) { m.pushFrame(p) })
			})
		}},
		{native.SlotCompleted, false, func() error {
			return dec.SetCompletedCallback(func() {
				with((*machine).onEndOfStream)
			})
		}},
		{native.SlotInterrupted, false, func() error {
			return dec.SetInterruptedCallback(func(code native.DecoderCode) {
				with(func(m *machine) {
					m.onNativeError(reason.Interrupted, fmt.Sprintf("playback interrupted (%s)", reason.FromDecoder(code)))
				})
			})
		}},
		{native.SlotError, false, func() error {
			return dec.SetErrorCallback(func(code native.DecoderCode) {
				with(func(m *machine) {
					r := reason.FromDecoder(code)
					m.onNativeError(r, fmt.Sprintf("decoder error: %s", r))
				})
			})
		}},
		{native.SlotBuffering, true, func() error {
			return dec.SetBufferingCallback(func(percent int) {
				with(func(m *machine) { m.onBuffering(percent) })
			})
		}},
	}

	for _, r := range registrations {
		if err := r.set(); err != nil {
			if r.optional && errors.Is(err, native.ErrNotSupported) {
				e.log.Debugf("%s callback not available", r.slot)
				continue
			}
			return fail(fmt.Sprintf("register %s callback", r.slot), err)
		}
		slot := r.slot
		e.slots = append(e.slots, slot)
		undo.Push(func() error { return dec.UnsetCallback(slot) })
	}

	if opts.MixWithOthers {
		if err := dec.SetSoundStreamMixing(true); err != nil {
			e.log.Warnf("mix with others: %v", err)
		}
	}

	e.setState(Preparing)
	if err := dec.PrepareAsync(func() { with((*machine).onPrepared) }); err != nil {
		return fail("prepare", err)
	}

	e.log.Infof("created for %s", uri)
	return e, nil
}

func releasePacket(p native.Packet) {
	if err := p.Destroy(); err != nil {
		log.Warnf("release frame packet: %v", err)
	}
}

func (e *DecoderEngine) start(State) error {
	st, err := e.dec.State()
	if err != nil {
		return err
	}

	switch st {
	case native.DecoderReady, native.DecoderPaused:
		return e.dec.Start()
	default:
		e.log.Debugf("start skipped in decoder state %s", st)
		return nil
	}
}

func (e *DecoderEngine) pause() error {
	st, err := e.dec.State()
	if err != nil {
		return err
	}
	if st != native.DecoderPlaying {
		e.log.Debugf("pause skipped in decoder state %s", st)
		return nil
	}
	return e.dec.Pause()
}

func (e *DecoderEngine) setLooping(enabled bool) error {
	return e.dec.SetLooping(enabled)
}

func (e *DecoderEngine) setVolume(level float64) error {
	return e.dec.SetVolume(level, level)
}

func (e *DecoderEngine) setPlaybackRate(rate float64) error {
	return e.dec.SetPlaybackRate(rate)
}

func (e *DecoderEngine) seek(millis int64, gen uint64) error {
	h, arena := e.handle, e.arena
	return e.dec.SetPlayPosition(millis, e.settings.AccurateSeek, func() {
		if m, ok := arena.lookup(h); ok {
			m.onSeekDone(gen)
		}
	})
}

func (e *DecoderEngine) position() (int64, error) {
	return e.dec.PlayPosition()
}

func (e *DecoderEngine) positionValid(s State) bool {
	return s.prepared()
}

func (e *DecoderEngine) setDisplayRegion(native.Geometry) error {
	return ErrUnsupportedOperation
}

func (e *DecoderEngine) unbind() error {
	var errs []error
	for _, slot := range e.slots {
		if err := e.dec.UnsetCallback(slot); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", slot, err))
		}
	}
	e.slots = nil
	return errors.Join(errs...)
}

func (e *DecoderEngine) release() error {
	if err := e.dec.Unprepare(); err != nil {
		e.log.Warnf("unprepare: %v", err)
	}
	return e.dec.Destroy()
}
