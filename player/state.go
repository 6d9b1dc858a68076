package player

import (
	"fmt"
	"strconv"
)

// State is the lifecycle position of an engine.
type State int

const (
	Uninitialized State = iota
	Preparing
	Ready
	Playing
	Paused
	Completed
	Interrupted
	Disposed
)

var stateNames = map[State]string{
	Uninitialized: "uninitialized",
	Preparing:     "preparing",
	Ready:         "ready",
	Playing:       "playing",
	Paused:        "paused",
	Completed:     "completed",
	Interrupted:   "interrupted",
	Disposed:      "disposed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// prepared reports whether native preparation has finished and media can be queried.
func (s State) prepared() bool {
	switch s {
	case Ready, Playing, Paused, Completed:
		return true
	default:
		return false
	}
}

// terminal reports whether only dispose is still meaningful.
func (s State) terminal() bool {
	return s == Interrupted || s == Disposed
}

// Variant names the native engine family behind an Engine.
type Variant int

const (
	VariantDecoder Variant = iota
	VariantStreaming
)

func (v Variant) String() string {
	switch v {
	case VariantDecoder:
		return "decoder"
	case VariantStreaming:
		return "streaming"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// Handle identifies a player for its whole lifetime. Handles start at 1 and are never reused.
type Handle int64

func (h Handle) String() string {
	return strconv.FormatInt(int64(h), 10)
}

// Capabilities describes what the native engine behind a variant can do.
type Capabilities struct {
	NativeLooping bool `json:"native_looping"`
	Volume        bool `json:"volume"`
	DisplayRegion bool `json:"display_region"`
}

// Variants lists every engine family in selection order.
var Variants = []Variant{VariantDecoder, VariantStreaming}

// CapabilitiesOf returns what the native engine behind v supports.
func CapabilitiesOf(v Variant) Capabilities {
	switch v {
	case VariantDecoder:
		return Capabilities{NativeLooping: true, Volume: true}
	case VariantStreaming:
		return Capabilities{DisplayRegion: true}
	default:
		return Capabilities{}
	}
}
