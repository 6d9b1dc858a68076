package event

import (
	"encoding/json"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func receive(ch <-chan Message) (Message, bool) {
	select {
	case m, ok := <-ch:
		return m, ok
	case <-time.After(time.Second):
		return Message{}, false
	}
}

func TestChannel(t *testing.T) {
	Convey("Given a fresh channel", t, func() {
		c := New("vplayer/videoEvents1")

		Convey("Publishing without a subscriber drops the message", func() {
			So(c.Publish(NewCompleted()), ShouldBeFalse)
		})

		Convey("When a subscriber listens", func() {
			ch, err := c.Listen()
			So(err, ShouldBeNil)
			So(c.Subscribed(), ShouldBeTrue)

			Convey("Messages arrive in publish order", func() {
				So(c.Publish(NewBufferingStart()), ShouldBeTrue)
				So(c.Publish(NewBufferingUpdate(0, 500)), ShouldBeTrue)
				So(c.Publish(NewBufferingEnd()), ShouldBeTrue)

				for _, want := range []Type{BufferingStart, BufferingUpdate, BufferingEnd} {
					m, ok := receive(ch)
					So(ok, ShouldBeTrue)
					So(m.Event, ShouldEqual, want)
				}
			})

			Convey("Publishing does not block on a slow subscriber", func() {
				done := make(chan struct{})
				go func() {
					for i := 0; i < 1000; i++ {
						c.Publish(NewBufferingUpdate(0, int64(i)))
					}
					close(done)
				}()

				finished := false
				select {
				case <-done:
					finished = true
				case <-time.After(time.Second):
				}
				So(finished, ShouldBeTrue)
			})

			Convey("A second subscriber is rejected", func() {
				_, err := c.Listen()
				So(err, ShouldEqual, ErrAlreadySubscribed)
			})

			Convey("Cancel closes the stream and allows a new subscriber", func() {
				c.Cancel()
				_, ok := receive(ch)
				So(ok, ShouldBeFalse)
				So(c.Publish(NewCompleted()), ShouldBeFalse)

				again, err := c.Listen()
				So(err, ShouldBeNil)
				So(c.Publish(NewCompleted()), ShouldBeTrue)
				m, ok := receive(again)
				So(ok, ShouldBeTrue)
				So(m.Event, ShouldEqual, Completed)
			})

			Convey("Detach closes the stream and refuses new subscribers", func() {
				c.Detach()
				_, ok := receive(ch)
				So(ok, ShouldBeFalse)

				_, err := c.Listen()
				So(err, ShouldEqual, ErrDetached)
				So(c.Publish(NewError("Unknown", "late")), ShouldBeFalse)
			})
		})

		Convey("The listen hook runs on every attach", func() {
			calls := 0
			c.OnListen(func() { calls++ })

			_, err := c.Listen()
			So(err, ShouldBeNil)
			c.Cancel()
			_, err = c.Listen()
			So(err, ShouldBeNil)

			So(calls, ShouldEqual, 2)
		})

		Convey("The listen hook may publish", func() {
			c.OnListen(func() { c.Publish(NewInitialized(1000, 640, 360)) })

			ch, err := c.Listen()
			So(err, ShouldBeNil)
			m, ok := receive(ch)
			So(ok, ShouldBeTrue)
			So(m, ShouldResemble, NewInitialized(1000, 640, 360))
		})
	})
}

func TestMessage(t *testing.T) {
	Convey("Given messages", t, func() {
		Convey("bufferingUpdate encodes ranges as pairs", func() {
			raw, err := json.Marshal(NewBufferingUpdate(0, 1500))
			So(err, ShouldBeNil)
			So(string(raw), ShouldEqual, `{"event":"bufferingUpdate","values":[[0,1500]]}`)
		})

		Convey("initialized keeps zero sized fields", func() {
			raw, err := json.Marshal(NewInitialized(4_000, 0, 0))
			So(err, ShouldBeNil)
			So(string(raw), ShouldEqual, `{"event":"initialized","duration":4000,"width":0,"height":0}`)

			var decoded Message
			So(json.Unmarshal(raw, &decoded), ShouldBeNil)
			So(decoded, ShouldResemble, NewInitialized(4_000, 0, 0))
		})

		Convey("Events without a payload encode the event name only", func() {
			raw, err := json.Marshal(NewCompleted())
			So(err, ShouldBeNil)
			So(string(raw), ShouldEqual, `{"event":"completed"}`)
		})

		Convey("Errors carry code and message", func() {
			m := NewError("VideoInterrupted", "Interrupted error")
			So(m.IsError(), ShouldBeTrue)
			So(m.String(), ShouldContainSubstring, "VideoInterrupted")
		})
	})
}
