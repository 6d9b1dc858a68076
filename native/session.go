package native

import "fmt"

// SessionState mirrors the streaming session's own lifecycle.
type SessionState int

const (
	SessionNone SessionState = iota
	SessionIdle
	SessionTypeFinderReady
	SessionTrackSourceReady
	SessionReady
	SessionPlaying
	SessionPaused
)

func (s SessionState) String() string {
	switch s {
	case SessionNone:
		return "none"
	case SessionIdle:
		return "idle"
	case SessionTypeFinderReady:
		return "type-finder-ready"
	case SessionTrackSourceReady:
		return "track-source-ready"
	case SessionReady:
		return "ready"
	case SessionPlaying:
		return "playing"
	case SessionPaused:
		return "paused"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

// ErrorType enumerates errors reported by the streaming session.
type ErrorType int

const (
	ErrorNone ErrorType = iota
	ErrorOutOfMemory
	ErrorInvalidParameter
	ErrorNoSuchFile
	ErrorInvalidOperation
	ErrorFileNoSpaceOnDevice
	ErrorFeatureNotSupportedOnDevice
	ErrorSeekFailed
	ErrorInvalidState
	ErrorNotSupportedFile
	ErrorInvalidURI
	ErrorSoundPolicy
	ErrorConnectionFailed
	ErrorVideoCaptureFailed
	ErrorDRMExpired
	ErrorDRMNoLicense
	ErrorDRMFutureUse
	ErrorDRMNotPermitted
	ErrorResourceLimit
	ErrorPermissionDenied
	ErrorServiceDisconnected
	ErrorBufferSpace
	ErrorNotSupportedAudioCodec
	ErrorNotSupportedVideoCodec
	ErrorNotSupportedSubtitle
)

// SessionError is returned by rejected session calls.
type SessionError struct {
	Op   string
	Type ErrorType
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session %s: error type %d", e.Op, int(e.Type))
}

// DisplayType selects how the session presents video.
type DisplayType int

const (
	DisplayNone DisplayType = iota
	DisplayOverlay
)

// DisplayMode selects how video is fitted into the display.
type DisplayMode int

const (
	DisplayModeLetterBox DisplayMode = iota
	DisplayModeFullScreen
	DisplayModeDstROI
)

// Listener receives session notifications. Methods may be called from native threads.
// OnSeekDone fires once per accepted SetPlayingTime, in request order.
type Listener interface {
	OnError(t ErrorType, message string)
	OnResourceConflicted()
	OnEndOfStream()
	OnPrepareDone(ok bool)
	OnSeekDone()
	OnBufferingStatus(percent int)
}

// Session is the streaming engine API.
type Session interface {
	Prober

	// SetAppID identifies the calling application for entitlement checks; call before Open.
	SetAppID(id string) error
	Open(uri string) error
	Close() error
	Stop() error

	// RegisterListener binds the single listener; UnregisterListener guarantees no new
	// notification begins after it returns.
	RegisterListener(l Listener) error
	UnregisterListener() error

	// SetDisplay binds the output window once; there is no rebinding.
	SetDisplay(t DisplayType, window WindowID, g Geometry) error
	SetDisplayMode(m DisplayMode) error
	SetDisplayROI(g Geometry) error

	PrepareAsync() error
	State() SessionState
	Start() error
	Resume() error
	Pause() error
	SetPlayingTime(millis int64) error
	PlayingTime() (int64, error)
	SetPlaybackRate(rate float64) error
}
