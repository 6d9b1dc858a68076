package player

import (
	"fmt"

	"github.com/vplayer/vplayer/native"
)

// MediaInfo is the orientation normalized presentation info of a prepared source.
type MediaInfo struct {
	DurationMillis int64           `json:"duration"`
	Width          int             `json:"width"`
	Height         int             `json:"height"`
	Rotation       native.Rotation `json:"rotation"`
}

// NewMediaInfo builds MediaInfo from decoder reported values; width and height are
// exchanged for 90 and 270 degree rotations.
func NewMediaInfo(durationMillis int64, width, height int, rotation native.Rotation) MediaInfo {
	if rotation.Transposed() {
		width, height = height, width
	}
	return MediaInfo{
		DurationMillis: durationMillis,
		Width:          width,
		Height:         height,
		Rotation:       rotation,
	}
}

func (m MediaInfo) String() string {
	return fmt.Sprintf("%dms %dx%d (rotation %d)", m.DurationMillis, m.Width, m.Height, m.Rotation)
}
