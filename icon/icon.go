// Package icon renders the status symbols printed next to player events.
//
// Icons can be displayed as emoji, nerd-font glyphs, plain Unicode, kaomoji,
// or squares depending on the icons.variant setting.
package icon

import (
	"github.com/spf13/viper"
	"github.com/vplayer/vplayer/key"
)

// Visual Variant Constants - these define the supported aesthetic styles for icon rendering.
const (
	emoji   = "emoji"
	nerd    = "nerd"
	plain   = "plain"
	kaomoji = "kaomoji"
	squares = "squares"
)

// AvailableVariants returns a slice of all registered icon style identifiers.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain, kaomoji, squares}
}

// iconDef encapsulates the visual representations of a single UI symbol across all supported variants.
type iconDef struct {
	emoji   string
	nerd    string
	plain   string
	kaomoji string
	squares string
}

// Get returns the symbol for the configured variant. Unknown variants fall back to plain.
func (d *iconDef) Get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case kaomoji:
		return d.kaomoji
	case squares:
		return d.squares
	default:
		return d.plain
	}
}

// Get renders i.
func Get(i Icon) string {
	return icons[i].Get()
}
