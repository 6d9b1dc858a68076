package history

import (
	"fmt"
	"time"
)

// Entry is the resume record of one source.
type Entry struct {
	Source         string    `json:"source"`
	Variant        string    `json:"variant"`
	PositionMillis int64     `json:"position"`
	DurationMillis int64     `json:"duration"`
	SavedAt        time.Time `json:"saved_at"`
}

// Progress returns the played fraction in [0, 1]; zero when the duration is unknown.
func (e *Entry) Progress() float64 {
	if e.DurationMillis <= 0 {
		return 0
	}
	return min(float64(e.PositionMillis)/float64(e.DurationMillis), 1)
}

// Finished reports whether playback reached the end.
func (e *Entry) Finished() bool {
	return e.DurationMillis > 0 && e.PositionMillis >= e.DurationMillis
}

func (e *Entry) String() string {
	return fmt.Sprintf("%s : %s / %s", e.Source, clock(e.PositionMillis), clock(e.DurationMillis))
}

func clock(millis int64) string {
	d := time.Duration(millis) * time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
}
