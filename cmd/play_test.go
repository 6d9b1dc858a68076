package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vplayer/vplayer/filesystem"
	"github.com/vplayer/vplayer/frame"
	"github.com/vplayer/vplayer/native/sim"
	"github.com/vplayer/vplayer/player"
	"github.com/vplayer/vplayer/registry"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestPlay(t *testing.T) {
	Convey("Given a simulated decoder source", t, func() {
		media := sim.Media{DurationMillis: 200, Width: 320, Height: 240}
		frames := frame.NewMemory()
		reg := registry.New(player.Env{
			Platform: sim.NewPlatform(media, sim.WithAuto(2*time.Millisecond)),
			Frames:   frames,
			Settings: player.DefaultSettings(),
			Arena:    player.NewArena(),
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		Convey("Playing from a start position prints the seek before completion", func() {
			var buf bytes.Buffer
			opts := playOptions{speed: 1, volume: 1, seek: 100 * time.Millisecond}

			err := play(ctx, newPrinter(&buf, false), reg, frames, registry.Source{URI: "file:///media/clip.mp4"}, opts)
			So(err, ShouldBeNil)
			So(reg.Len(), ShouldEqual, 0)

			out := buf.String()
			So(out, ShouldContainSubstring, "initialized duration=200ms size=320x240")
			So(out, ShouldContainSubstring, "seeked to 100ms")
			So(out, ShouldContainSubstring, "completed")
			So(strings.Index(out, "seeked to 100ms"), ShouldBeLessThan, strings.Index(out, "completed"))
		})

		Convey("JSON output carries events only", func() {
			var buf bytes.Buffer
			opts := playOptions{speed: 1, volume: 1, seek: 100 * time.Millisecond, asJSON: true}

			err := play(ctx, newPrinter(&buf, true), reg, frames, registry.Source{URI: "file:///media/clip.mp4"}, opts)
			So(err, ShouldBeNil)

			out := buf.String()
			So(out, ShouldStartWith, `{"event":"initialized","duration":200,"width":320,"height":240}`)
			So(out, ShouldNotContainSubstring, "seeked")
		})
	})
}
