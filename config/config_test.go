package config

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
	Convey("Config Setup", t, func() {
		Convey("Should initialize without a config file", func() {
			So(Setup(), ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
			So(viper.GetBool(key.PlayerAccurateSeek), ShouldBeTrue)
			So(viper.GetInt(key.PlayerDisplayWidth), ShouldEqual, 1920)
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			result := EnvKeyReplacer.Replace("player.emulate_looping")
			So(result, ShouldEqual, "player_emulate_looping")
		})
	})
}

func TestField(t *testing.T) {
	Convey("Given a registered field", t, func() {
		field := Default[key.PlayerStrictCapabilities]

		Convey("Its environment variable carries the application prefix", func() {
			So(field.Env(), ShouldEqual, "VPLAYER_PLAYER_STRICT_CAPABILITIES")
		})

		Convey("Its type follows the default value", func() {
			So(field.Type(), ShouldEqual, "bool")
		})

		Convey("It renders for display", func() {
			So(field.Pretty(), ShouldContainSubstring, key.PlayerStrictCapabilities)
		})
	})
}
