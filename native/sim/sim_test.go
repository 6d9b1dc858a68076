package sim

import (
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vplayer/vplayer/native"
)

var media = Media{DurationMillis: 1_000, Width: 640, Height: 360}

type listener struct {
	prepared []bool
	seeks    int
	ended    int
}

func (l *listener) OnError(native.ErrorType, string) {}
func (l *listener) OnResourceConflicted()            {}
func (l *listener) OnEndOfStream()                   { l.ended++ }
func (l *listener) OnPrepareDone(ok bool)            { l.prepared = append(l.prepared, ok) }
func (l *listener) OnSeekDone()                      { l.seeks++ }
func (l *listener) OnBufferingStatus(int)            {}

func TestDecoder(t *testing.T) {
	Convey("Given a manual decoder", t, func() {
		platform := NewPlatform(media)
		created, err := platform.NewDecoder()
		So(err, ShouldBeNil)
		d := created.(*Decoder)

		Convey("Start is rejected before prepare completes", func() {
			So(d.PrepareAsync(func() {}), ShouldBeNil)
			err := d.Start()

			var decoderErr *native.DecoderError
			So(errors.As(err, &decoderErr), ShouldBeTrue)
			So(decoderErr.Code, ShouldEqual, native.DecoderErrInvalidState)
		})

		Convey("FirePrepared moves it to ready once", func() {
			calls := 0
			So(d.PrepareAsync(func() { calls++ }), ShouldBeNil)
			d.FirePrepared()
			d.FirePrepared()

			state, _ := d.State()
			So(state, ShouldEqual, native.DecoderReady)
			So(calls, ShouldEqual, 1)
		})

		Convey("Frames without a callback are released", func() {
			So(d.FireFrame(), ShouldBeFalse)
			So(d.LivePackets(), ShouldEqual, 0)
		})

		Convey("Frames handed to a callback stay live until destroyed", func() {
			var packets []native.Packet
			So(d.SetFrameDecodedCallback(func(p native.Packet) { packets = append(packets, p) }), ShouldBeNil)
			So(d.FireFrame(), ShouldBeTrue)
			So(d.LivePackets(), ShouldEqual, 1)

			So(packets[0].Destroy(), ShouldBeNil)
			So(d.LivePackets(), ShouldEqual, 0)
			So(packets[0].Destroy(), ShouldNotBeNil)
		})

		Convey("Seeks complete in request order", func() {
			So(d.PrepareAsync(func() {}), ShouldBeNil)
			d.FirePrepared()

			var order []int
			So(d.SetPlayPosition(100, true, func() { order = append(order, 1) }), ShouldBeNil)
			So(d.SetPlayPosition(5_000, true, func() { order = append(order, 2) }), ShouldBeNil)
			d.CompleteSeeks()

			So(order, ShouldResemble, []int{1, 2})
			position, _ := d.PlayPosition()
			So(position, ShouldEqual, media.DurationMillis)
		})

		Convey("Injected faults surface as decoder errors", func() {
			d.Fail(OpSetVolume, ErrInjected)
			So(d.SetVolume(0.5, 0.5), ShouldNotBeNil)
			So(d.Calls(OpSetVolume), ShouldEqual, 1)

			d.Fail(OpSetVolume, nil)
			So(d.SetVolume(0.2, 0.4), ShouldBeNil)
			So(d.Volume(), ShouldAlmostEqual, 0.3, 0.0001)
		})
	})

	Convey("Given an auto decoder", t, func() {
		platform := NewPlatform(media, WithAuto(5*time.Millisecond))
		created, _ := platform.NewDecoder()
		d := created.(*Decoder)

		done := make(chan struct{})
		So(d.SetCompletedCallback(func() { close(done) }), ShouldBeNil)

		ready := make(chan struct{})
		So(d.PrepareAsync(func() { close(ready) }), ShouldBeNil)
		<-ready
		So(d.Start(), ShouldBeNil)

		Convey("It plays to the end and completes", func() {
			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("decoder never completed")
			}
			position, _ := d.PlayPosition()
			So(position, ShouldEqual, media.DurationMillis)
		})
	})

	Convey("A create fault fails the platform", t, func() {
		platform := NewPlatform(media, WithFault(OpCreate, ErrInjected))
		_, err := platform.NewDecoder()
		So(errors.Is(err, ErrInjected), ShouldBeTrue)
		So(platform.Decoders(), ShouldBeEmpty)
	})
}

func TestSession(t *testing.T) {
	Convey("Given a manual session", t, func() {
		platform := NewPlatform(media)
		created, err := platform.NewSession()
		So(err, ShouldBeNil)
		s := created.(*Session)
		l := &listener{}

		So(s.Open("https://example.com/live.m3u8"), ShouldBeNil)
		So(s.RegisterListener(l), ShouldBeNil)
		So(s.State(), ShouldEqual, native.SessionIdle)

		Convey("A failed prepare leaves it idle", func() {
			So(s.PrepareAsync(), ShouldBeNil)
			s.FirePrepareDone(false)
			So(l.prepared, ShouldResemble, []bool{false})
			So(s.State(), ShouldEqual, native.SessionIdle)
		})

		Convey("Resume is only valid from paused", func() {
			s.FirePrepareDone(true)
			So(s.Resume(), ShouldNotBeNil)
			So(s.Start(), ShouldBeNil)
			So(s.Pause(), ShouldBeNil)
			So(s.Resume(), ShouldBeNil)
			So(s.State(), ShouldEqual, native.SessionPlaying)
		})

		Convey("Each seek gets one completion", func() {
			s.FirePrepareDone(true)
			So(s.SetPlayingTime(200), ShouldBeNil)
			So(s.SetPlayingTime(400), ShouldBeNil)
			s.CompleteSeeks()
			So(l.seeks, ShouldEqual, 2)

			position, _ := s.PlayingTime()
			So(position, ShouldEqual, 400)
		})

		Convey("Errors carry the session error type", func() {
			s.Fail(OpPause, ErrInjected)
			err := s.Pause()

			var sessionErr *native.SessionError
			So(errors.As(err, &sessionErr), ShouldBeTrue)
			So(sessionErr.Type, ShouldEqual, native.ErrorInvalidOperation)
		})

		Convey("Listeners stop hearing after unregistering", func() {
			So(s.UnregisterListener(), ShouldBeNil)
			s.FireEndOfStream()
			So(l.ended, ShouldEqual, 0)
		})
	})
}
