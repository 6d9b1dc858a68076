package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vplayer/vplayer/constant"
)

func TestVersion(t *testing.T) {
	Convey("Given the version information", t, func() {
		info := currentVersion()

		Convey("It lists both engines with their capabilities", func() {
			So(info.Version, ShouldEqual, constant.Version)
			So(info.Engines, ShouldHaveLength, 2)
			So(info.Engines[0].Variant, ShouldEqual, "decoder")
			So(info.Engines[0].Capabilities.NativeLooping, ShouldBeTrue)
			So(info.Engines[1].Variant, ShouldEqual, "streaming")
			So(info.Engines[1].Capabilities.Volume, ShouldBeFalse)
		})

		Convey("It renders as text", func() {
			var buf bytes.Buffer
			So(versionTemplate.Execute(&buf, info), ShouldBeNil)
			So(buf.String(), ShouldContainSubstring, "streaming")
			So(buf.String(), ShouldContainSubstring, "display region")
		})

		Convey("It encodes as JSON", func() {
			raw, err := json.Marshal(info)
			So(err, ShouldBeNil)

			var decoded map[string]any
			So(json.Unmarshal(raw, &decoded), ShouldBeNil)
			So(decoded["app"], ShouldEqual, constant.App)
			So(decoded["engines"], ShouldHaveLength, 2)
		})
	})
}
