package log

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/vplayer/vplayer/filesystem"
	"github.com/vplayer/vplayer/key"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Given logging is disabled", t, func() {
		viper.Set(key.LogsWrite, false)
		So(Setup(), ShouldBeNil)

		Convey("WithField should hand out a silent entry", func() {
			entry := WithField("player", 1)
			So(entry, ShouldNotBeNil)
			So(entry.Data["player"], ShouldEqual, 1)
			So(func() { entry.Infof("dropped %d", 1) }, ShouldNotPanic)
		})
	})

	Convey("Given logging is enabled", t, func() {
		viper.Set(key.LogsWrite, true)
		viper.Set(key.LogsLevel, "debug")
		defer viper.Set(key.LogsWrite, false)

		So(Setup(), ShouldBeNil)

		Convey("WithField should carry the field", func() {
			entry := WithField("player", 7)
			So(entry.Data["player"], ShouldEqual, 7)
		})
	})
}
