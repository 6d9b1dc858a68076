package player

import (
	"github.com/spf13/viper"
	"github.com/vplayer/vplayer/frame"
	"github.com/vplayer/vplayer/identity"
	"github.com/vplayer/vplayer/key"
	"github.com/vplayer/vplayer/native"
)

// Settings carries the policy knobs engines read at creation.
type Settings struct {
	// StrictCapabilities turns capability gaps into ErrUnsupportedOperation.
	StrictCapabilities bool
	// EmulateLooping restarts from zero on end of stream when looping is requested
	// from an engine without native looping.
	EmulateLooping bool
	AccurateSeek   bool
	// Display is the initial overlay geometry for engines that present through a window.
	Display native.Geometry
}

// DefaultSettings mirrors the registered configuration defaults.
func DefaultSettings() Settings {
	return Settings{
		AccurateSeek: true,
		Display:      native.Geometry{Width: 1920, Height: 1080},
	}
}

// SettingsFromConfig reads Settings from the player.* configuration keys.
func SettingsFromConfig() Settings {
	return Settings{
		StrictCapabilities: viper.GetBool(key.PlayerStrictCapabilities),
		EmulateLooping:     viper.GetBool(key.PlayerEmulateLooping),
		AccurateSeek:       viper.GetBool(key.PlayerAccurateSeek),
		Display: native.Geometry{
			Width:  viper.GetInt(key.PlayerDisplayWidth),
			Height: viper.GetInt(key.PlayerDisplayHeight),
		},
	}
}

// Env bundles the collaborators an engine binds to at creation.
type Env struct {
	Platform native.Platform
	Frames   frame.Registrar
	// Identity is consulted by the streaming engine; nil means no identity.
	Identity identity.Resolver
	// Window is the hosting window surface the streaming engine presents into.
	Window   native.WindowID
	Settings Settings
	// Arena defaults to DefaultArena.
	Arena *Arena
}

// Options are the per-player creation options.
type Options struct {
	MixWithOthers bool `json:"mixWithOthers"`
}
