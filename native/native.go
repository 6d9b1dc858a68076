// Package native describes the call and callback contracts of the platform media engines a player
// binds to. Two engines exist: a general purpose decoder driven through per-slot function callbacks,
// and a session oriented streaming engine that reports through a registered listener object.
//
// Nothing in this package talks to real hardware; implementations live elsewhere (see native/sim).
package native

import (
	"errors"
	"fmt"
)

// ErrNotSupported is returned by optional native calls the engine does not implement.
var ErrNotSupported = errors.New("not supported by native engine")

// Platform opens native engine instances.
type Platform interface {
	NewDecoder() (Decoder, error)
	NewSession() (Session, error)
}

// Prober answers the media queries needed to publish presentation info.
type Prober interface {
	Duration() (int64, error)
	VideoSize() (width, height int, err error)
	DisplayRotation() (Rotation, error)
}

// Rotation is the display rotation reported for a stream, in degrees.
type Rotation int

const (
	Rotation0   Rotation = 0
	Rotation90  Rotation = 90
	Rotation180 Rotation = 180
	Rotation270 Rotation = 270
)

// Transposed reports whether the rotation exchanges width and height.
func (r Rotation) Transposed() bool {
	return r == Rotation90 || r == Rotation270
}

// Surface is an opaque handle to a decoded, renderable frame surface.
type Surface uintptr

// Packet is a decoded frame packet. Destroy must be called exactly once per packet
// regardless of whether the surface could be extracted.
type Packet interface {
	Surface() (Surface, error)
	Destroy() error
}

// WindowID identifies a hosting window surface for overlay output.
type WindowID uint32

// Geometry is a rectangle in window coordinates.
type Geometry struct {
	X, Y, Width, Height int
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", g.Width, g.Height, g.X, g.Y)
}
