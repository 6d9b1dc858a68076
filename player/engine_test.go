package player

import (
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vplayer/vplayer/event"
	"github.com/vplayer/vplayer/frame"
	"github.com/vplayer/vplayer/native"
	"github.com/vplayer/vplayer/native/sim"
	"github.com/vplayer/vplayer/reason"
)

var clip = sim.Media{DurationMillis: 10_000, Width: 1920, Height: 1080}

func testEnv(p *sim.Platform) (Env, *frame.Memory) {
	frames := frame.NewMemory()
	return Env{
		Platform: p,
		Frames:   frames,
		Settings: DefaultSettings(),
		Arena:    NewArena(),
	}, frames
}

func receive(ch <-chan event.Message) (event.Message, bool) {
	select {
	case m, ok := <-ch:
		return m, ok
	case <-time.After(time.Second):
		return event.Message{}, false
	}
}

// quiet reports whether nothing arrives on ch for a short while.
func quiet(ch <-chan event.Message) bool {
	select {
	case <-ch:
		return false
	case <-time.After(100 * time.Millisecond):
		return true
	}
}

func newDecoder(env Env) (*DecoderEngine, *sim.Decoder) {
	e, err := NewDecoderEngine("file:///media/clip.mp4", Options{}, env)
	So(err, ShouldBeNil)
	decoders := env.Platform.(*sim.Platform).Decoders()
	return e, decoders[len(decoders)-1]
}

func TestDecoderEngineLifecycle(t *testing.T) {
	Convey("Given a decoder engine", t, func() {
		env, _ := testEnv(sim.NewPlatform(clip))
		e, dec := newDecoder(env)
		defer e.Dispose()

		So(e.Handle(), ShouldEqual, Handle(1))
		So(e.Variant(), ShouldEqual, VariantDecoder)
		So(e.State(), ShouldEqual, Preparing)
		So(e.Events().Name(), ShouldEqual, "vplayer/videoEvents1")
		So(dec.URI(), ShouldEqual, "file:///media/clip.mp4")
		So(e.Media().IsPresent(), ShouldBeFalse)

		Convey("Play and pause are ignored before preparation", func() {
			So(e.Play(), ShouldBeNil)
			So(e.Pause(), ShouldBeNil)
			So(e.State(), ShouldEqual, Preparing)
			So(dec.Calls(sim.OpStart), ShouldEqual, 0)
			So(dec.Calls(sim.OpPause), ShouldEqual, 0)
		})

		Convey("Position is rejected before preparation", func() {
			_, err := e.Position()
			So(errors.Is(err, ErrInvalidStateForQuery), ShouldBeTrue)
		})

		Convey("Media info is derived on preparation even without a subscriber", func() {
			dec.FirePrepared()
			So(e.Events().Subscribed(), ShouldBeFalse)

			info, ok := e.Media().Get()
			So(ok, ShouldBeTrue)
			So(info.DurationMillis, ShouldEqual, 10_000)
			So(info.Width, ShouldEqual, 1920)
			So(info.Height, ShouldEqual, 1080)
			So(dec.Calls(sim.OpDuration), ShouldEqual, 1)
		})

		Convey("A subscriber attached before preparation gets initialized once", func() {
			ch, err := e.Events().Listen()
			So(err, ShouldBeNil)
			So(quiet(ch), ShouldBeTrue)

			dec.FirePrepared()
			So(e.State(), ShouldEqual, Ready)

			m, ok := receive(ch)
			So(ok, ShouldBeTrue)
			So(m, ShouldResemble, event.NewInitialized(10_000, 1920, 1080))

			Convey("and never again on a later subscription", func() {
				e.Events().Cancel()
				ch, err := e.Events().Listen()
				So(err, ShouldBeNil)
				So(quiet(ch), ShouldBeTrue)
			})
		})

		Convey("A subscriber attached after preparation gets initialized on listen", func() {
			dec.FirePrepared()
			So(e.Media().MustGet().DurationMillis, ShouldEqual, 10_000)

			ch, err := e.Events().Listen()
			So(err, ShouldBeNil)

			m, ok := receive(ch)
			So(ok, ShouldBeTrue)
			So(m.Event, ShouldEqual, event.Initialized)
		})

		Convey("When prepared and subscribed", func() {
			ch, _ := e.Events().Listen()
			dec.FirePrepared()
			_, _ = receive(ch)

			Convey("Pause is ignored while not playing", func() {
				So(e.Pause(), ShouldBeNil)
				So(e.State(), ShouldEqual, Ready)
				So(dec.Calls(sim.OpPause), ShouldEqual, 0)
			})

			Convey("Play, completion and replay follow the lifecycle", func() {
				So(e.Play(), ShouldBeNil)
				So(e.State(), ShouldEqual, Playing)
				So(dec.Calls(sim.OpStart), ShouldEqual, 1)

				pos, err := e.Position()
				So(err, ShouldBeNil)
				So(pos, ShouldEqual, 0)

				dec.FireCompleted()
				m, ok := receive(ch)
				So(ok, ShouldBeTrue)
				So(m.Event, ShouldEqual, event.Completed)
				So(e.State(), ShouldEqual, Paused)
				So(dec.Calls(sim.OpPause), ShouldEqual, 1)

				So(e.Play(), ShouldBeNil)
				So(e.State(), ShouldEqual, Playing)
				So(dec.Calls(sim.OpStart), ShouldEqual, 2)
			})

			Convey("Play is ignored while already playing", func() {
				So(e.Play(), ShouldBeNil)
				So(e.Play(), ShouldBeNil)
				So(dec.Calls(sim.OpStart), ShouldEqual, 1)
			})

			Convey("A rejected start surfaces as a playback request failure", func() {
				dec.Fail(sim.OpStart, sim.ErrInjected)
				err := e.Play()
				So(errors.Is(err, ErrPlaybackRequestFailed), ShouldBeTrue)
				So(e.State(), ShouldEqual, Ready)
			})

			Convey("Native controls reach the decoder", func() {
				So(e.SetLooping(true), ShouldBeNil)
				So(dec.Looping(), ShouldBeTrue)
				So(e.Looping(), ShouldBeTrue)

				So(e.SetVolume(0.25), ShouldBeNil)
				So(dec.Volume(), ShouldEqual, 0.25)

				So(e.SetPlaybackSpeed(1.5), ShouldBeNil)
				So(dec.Rate(), ShouldEqual, 1.5)
			})

			Convey("Out of range arguments are rejected", func() {
				So(errors.Is(e.SetVolume(1.5), ErrInvalidArgument), ShouldBeTrue)
				So(errors.Is(e.SetPlaybackSpeed(0), ErrInvalidArgument), ShouldBeTrue)
				So(errors.Is(e.SeekTo(-1, nil), ErrInvalidArgument), ShouldBeTrue)
				So(errors.Is(e.SetDisplayRegion(0, 0, 0, 10), ErrInvalidArgument), ShouldBeTrue)
			})

			Convey("An interruption ends in Interrupted with an error event", func() {
				dec.FireInterrupted(native.DecoderErrResourceLimit)
				m, ok := receive(ch)
				So(ok, ShouldBeTrue)
				So(m.Event, ShouldEqual, event.Error)
				So(m.Code, ShouldEqual, reason.Interrupted.String())
				So(e.State(), ShouldEqual, Interrupted)

				So(e.Play(), ShouldBeNil)
				So(dec.Calls(sim.OpStart), ShouldEqual, 0)
			})

			Convey("A decoder error carries the mapped reason", func() {
				dec.FireError(native.DecoderErrNotSupportedFile)
				m, ok := receive(ch)
				So(ok, ShouldBeTrue)
				So(m.Code, ShouldEqual, reason.FromDecoder(native.DecoderErrNotSupportedFile).String())
				So(e.State(), ShouldEqual, Interrupted)
			})
		})
	})
}

func TestDecoderEngineMediaInfo(t *testing.T) {
	Convey("Given a rotated source", t, func() {
		rotated := clip
		rotated.Rotation = native.Rotation90

		Convey("Width and height are exchanged", func() {
			env, _ := testEnv(sim.NewPlatform(rotated))
			e, dec := newDecoder(env)
			defer e.Dispose()

			ch, _ := e.Events().Listen()
			dec.FirePrepared()
			m, ok := receive(ch)
			So(ok, ShouldBeTrue)
			So(m.Width, ShouldEqual, 1080)
			So(m.Height, ShouldEqual, 1920)
			So(e.Media().MustGet().Rotation, ShouldEqual, native.Rotation90)
		})

		Convey("A failed rotation query still initializes with the decoded size", func() {
			env, _ := testEnv(sim.NewPlatform(rotated, sim.WithFault(sim.OpRotation, sim.ErrInjected)))
			e, dec := newDecoder(env)
			defer e.Dispose()

			ch, _ := e.Events().Listen()
			dec.FirePrepared()
			m, ok := receive(ch)
			So(ok, ShouldBeTrue)
			So(m, ShouldResemble, event.NewInitialized(10_000, 1920, 1080))
		})

		Convey("A failed duration query is reported as an error", func() {
			env, _ := testEnv(sim.NewPlatform(rotated, sim.WithFault(sim.OpDuration, sim.ErrInjected)))
			e, dec := newDecoder(env)
			defer e.Dispose()

			ch, _ := e.Events().Listen()
			dec.FirePrepared()
			m, ok := receive(ch)
			So(ok, ShouldBeTrue)
			So(m.Event, ShouldEqual, event.Error)
			So(m.Code, ShouldEqual, reason.InvalidOperation.String())
			So(e.Media().IsPresent(), ShouldBeFalse)
		})
	})
}

func TestDecoderEngineSeek(t *testing.T) {
	Convey("Given a prepared decoder engine", t, func() {
		env, _ := testEnv(sim.NewPlatform(clip))
		e, dec := newDecoder(env)
		defer e.Dispose()
		dec.FirePrepared()

		Convey("Only the latest seek continuation runs", func() {
			var first, second int
			So(e.SeekTo(1_000, func() { first++ }), ShouldBeNil)
			So(e.SeekTo(2_000, func() { second++ }), ShouldBeNil)

			dec.CompleteSeeks()
			So(first, ShouldEqual, 0)
			So(second, ShouldEqual, 1)

			pos, err := e.Position()
			So(err, ShouldBeNil)
			So(pos, ShouldEqual, 2_000)
		})

		Convey("A rejected seek is reported and leaves nothing pending", func() {
			dec.Fail(sim.OpSeek, sim.ErrInjected)
			called := false
			err := e.SeekTo(1_000, func() { called = true })
			So(errors.Is(err, ErrSeekRequestFailed), ShouldBeTrue)

			_, armed := e.seeks.pending()
			So(armed, ShouldBeFalse)
			dec.CompleteSeeks()
			So(called, ShouldBeFalse)
		})

		Convey("Dispose drops the pending continuation", func() {
			called := false
			So(e.SeekTo(1_000, func() { called = true }), ShouldBeNil)
			So(e.Dispose(), ShouldBeNil)
			dec.CompleteSeeks()
			So(called, ShouldBeFalse)
		})
	})
}

func TestDecoderEngineFrames(t *testing.T) {
	Convey("Given a playing decoder engine", t, func() {
		env, frames := testEnv(sim.NewPlatform(clip))
		e, dec := newDecoder(env)
		defer e.Dispose()
		dec.FirePrepared()
		So(e.Play(), ShouldBeNil)

		texture, ok := frames.Texture(int64(e.Handle()))
		So(ok, ShouldBeTrue)

		Convey("Decoded frames reach the texture and packets are released", func() {
			for i := 0; i < 3; i++ {
				So(dec.FireFrame(), ShouldBeTrue)
			}
			So(texture.Frames(), ShouldEqual, 3)
			latest, ok := texture.Latest()
			So(ok, ShouldBeTrue)
			So(latest, ShouldEqual, native.Surface(3))
			So(dec.LivePackets(), ShouldEqual, 0)
		})

		Convey("A packet without a surface is still released", func() {
			So(dec.FireBrokenFrame(), ShouldBeTrue)
			So(texture.Frames(), ShouldEqual, 0)
			So(dec.LivePackets(), ShouldEqual, 0)
		})
	})
}

func TestDecoderEngineDispose(t *testing.T) {
	Convey("Given a decoder engine", t, func() {
		env, frames := testEnv(sim.NewPlatform(clip))
		e, dec := newDecoder(env)
		dec.FirePrepared()

		Convey("Dispose releases everything exactly once", func() {
			So(e.Dispose(), ShouldBeNil)
			So(e.Dispose(), ShouldBeNil)

			So(e.State(), ShouldEqual, Disposed)
			So(dec.Calls(sim.OpDestroy), ShouldEqual, 1)
			So(dec.Calls(sim.OpUnregister), ShouldEqual, 5)
			So(dec.Destroyed(), ShouldBeTrue)
			So(frames.Len(), ShouldEqual, 0)
			So(env.Arena.Live(), ShouldEqual, 0)

			_, err := e.Events().Listen()
			So(errors.Is(err, event.ErrDetached), ShouldBeTrue)
		})

		Convey("Calls after dispose are no-ops", func() {
			So(e.Dispose(), ShouldBeNil)
			So(e.Play(), ShouldBeNil)
			So(e.SetVolume(0.5), ShouldBeNil)
			So(e.SeekTo(100, nil), ShouldBeNil)
			So(dec.Calls(sim.OpStart), ShouldEqual, 0)
			So(dec.Calls(sim.OpSeek), ShouldEqual, 0)

			_, err := e.Position()
			So(errors.Is(err, ErrInvalidStateForQuery), ShouldBeTrue)
		})

		Convey("Callbacks arriving after dispose are dropped", func() {
			dec.Fail(sim.OpUnregister, sim.ErrInjected)
			So(e.Dispose(), ShouldNotBeNil)
			So(dec.Calls(sim.OpDestroy), ShouldEqual, 1)

			dec.FireCompleted()
			dec.FireError(native.DecoderErrInvalidOperation)
			So(e.State(), ShouldEqual, Disposed)

			So(dec.FireFrame(), ShouldBeTrue)
			So(dec.LivePackets(), ShouldEqual, 0)
		})
	})
}

func TestDecoderEngineCreateFailure(t *testing.T) {
	Convey("Given a platform that fails", t, func() {
		Convey("to create the decoder, nothing is left registered", func() {
			env, frames := testEnv(sim.NewPlatform(clip, sim.WithFault(sim.OpCreate, sim.ErrInjected)))
			_, err := NewDecoderEngine("file:///media/clip.mp4", Options{}, env)
			So(errors.Is(err, ErrEngineCreateFailed), ShouldBeTrue)
			So(frames.Len(), ShouldEqual, 0)
			So(env.Arena.Live(), ShouldEqual, 0)
		})

		Convey("to prepare, the decoder is unwound", func() {
			p := sim.NewPlatform(clip, sim.WithFault(sim.OpPrepare, sim.ErrInjected))
			env, frames := testEnv(p)
			_, err := NewDecoderEngine("file:///media/clip.mp4", Options{}, env)
			So(errors.Is(err, ErrEngineCreateFailed), ShouldBeTrue)

			dec := p.Decoders()[0]
			So(dec.Calls(sim.OpUnregister), ShouldEqual, 5)
			So(dec.Calls(sim.OpDestroy), ShouldEqual, 1)
			So(frames.Len(), ShouldEqual, 0)
			So(env.Arena.Live(), ShouldEqual, 0)
		})

		Convey("to register the optional buffering callback, creation proceeds", func() {
			p := sim.NewPlatform(clip, sim.WithFault(sim.OpBufferingCB, native.ErrNotSupported))
			env, _ := testEnv(p)
			e, err := NewDecoderEngine("file:///media/clip.mp4", Options{MixWithOthers: true}, env)
			So(err, ShouldBeNil)
			defer e.Dispose()
			So(p.Decoders()[0].Mixing(), ShouldBeTrue)
		})

		Convey("without a frame registrar, creation is refused", func() {
			env, _ := testEnv(sim.NewPlatform(clip))
			env.Frames = nil
			_, err := NewDecoderEngine("file:///media/clip.mp4", Options{}, env)
			So(errors.Is(err, ErrInvalidArgument), ShouldBeTrue)
		})
	})
}

func TestUnsupportedOperations(t *testing.T) {
	Convey("Given a decoder engine without display region support", t, func() {
		env, _ := testEnv(sim.NewPlatform(clip))

		Convey("The call is ignored by default", func() {
			e, _ := newDecoder(env)
			defer e.Dispose()
			So(e.Capabilities().DisplayRegion, ShouldBeFalse)
			So(e.SetDisplayRegion(0, 0, 640, 360), ShouldBeNil)
		})

		Convey("Strict capabilities report it", func() {
			env.Settings.StrictCapabilities = true
			e, _ := newDecoder(env)
			defer e.Dispose()
			err := e.SetDisplayRegion(0, 0, 640, 360)
			So(errors.Is(err, ErrUnsupportedOperation), ShouldBeTrue)
		})
	})
}
