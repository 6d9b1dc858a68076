// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// App is the canonical application identifier used for filesystem paths and CLI branding.
	App = "vplayer"

	// Version is the current application semantic version string.
	Version = "0.3.0"

	// EventChannelPrefix prefixes the per-player event channel name; the player handle is appended.
	EventChannelPrefix = "vplayer/videoEvents"
)

// Build metadata, overridden at link time with -ldflags "-X".
var (
	BuiltAt  = "unknown"
	Revision = "unknown"
)
