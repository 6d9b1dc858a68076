// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Playback Engine Policy - these keys decide how capability gaps between engine variants surface to callers.
const (
	PlayerStrictCapabilities = "player.strict_capabilities"
	PlayerEmulateLooping     = "player.emulate_looping"
	PlayerAccurateSeek       = "player.accurate_seek"
)

// Display Surface - initial overlay geometry handed to the streaming engine at creation.
const (
	PlayerDisplayWidth  = "player.display_width"
	PlayerDisplayHeight = "player.display_height"
)

// Application Identity - these keys control how the streaming path identifies the host application.
const (
	IdentityAppID   = "identity.app_id"
	IdentityKeyring = "identity.keyring"
)

// Assets
const (
	AssetsDir = "assets.dir"
)

// History Tracking - these keys configure the persistence of resume positions.
const (
	HistorySaveOnDispose = "history.save_on_dispose"
	HistoryMaxAgeDays    = "history.max_age_days"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern terminal output.
const (
	CliColored = "cli.colored"
)
