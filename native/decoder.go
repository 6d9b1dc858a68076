package native

import "fmt"

// DecoderState mirrors the decoder's own lifecycle.
type DecoderState int

const (
	DecoderNone DecoderState = iota
	DecoderIdle
	DecoderReady
	DecoderPlaying
	DecoderPaused
)

var decoderStateNames = map[DecoderState]string{
	DecoderNone:    "none",
	DecoderIdle:    "idle",
	DecoderReady:   "ready",
	DecoderPlaying: "playing",
	DecoderPaused:  "paused",
}

func (s DecoderState) String() string {
	if name, ok := decoderStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("DecoderState(%d)", int(s))
}

// DecoderCode is a numeric error code reported by the decoder.
type DecoderCode int

const (
	DecoderErrNone DecoderCode = iota
	DecoderErrInvalidParameter
	DecoderErrOutOfMemory
	DecoderErrInvalidOperation
	DecoderErrResourceLimit
	DecoderErrFileNoSpaceOnDevice
	DecoderErrInvalidState
	DecoderErrInvalidURI
	DecoderErrNoSuchFile
	DecoderErrNotSupportedFile
	DecoderErrConnectionFailed
	DecoderErrSeekFailed
	DecoderErrFeatureNotSupportedOnDevice
	DecoderErrDRMNotPermitted
	DecoderErrServiceDisconnected
	DecoderErrNotSupportedSubtitle
	DecoderErrNotSupportedAudioCodec
	DecoderErrNotSupportedVideoCodec
)

// DecoderError is returned by rejected decoder calls.
type DecoderError struct {
	Op   string
	Code DecoderCode
}

func (e *DecoderError) Error() string {
	return fmt.Sprintf("decoder %s: code %d", e.Op, int(e.Code))
}

// Slot names a decoder callback registration.
type Slot int

const (
	SlotFrameDecoded Slot = iota
	SlotCompleted
	SlotInterrupted
	SlotError
	SlotBuffering
)

func (s Slot) String() string {
	switch s {
	case SlotFrameDecoded:
		return "frame-decoded"
	case SlotCompleted:
		return "completed"
	case SlotInterrupted:
		return "interrupted"
	case SlotError:
		return "error"
	case SlotBuffering:
		return "buffering"
	default:
		return fmt.Sprintf("Slot(%d)", int(s))
	}
}

// Decoder is the general purpose decode API. Callbacks may be invoked from native threads.
// After UnsetCallback returns for a slot no new invocation of that slot begins.
type Decoder interface {
	Prober

	SetURI(uri string) error
	SetSoundStreamMixing(mix bool) error

	SetFrameDecodedCallback(fn func(Packet)) error
	SetCompletedCallback(fn func()) error
	SetInterruptedCallback(fn func(DecoderCode)) error
	SetErrorCallback(fn func(DecoderCode)) error
	// SetBufferingCallback may return ErrNotSupported.
	SetBufferingCallback(fn func(percent int)) error
	UnsetCallback(slot Slot) error

	// PrepareAsync returns immediately; prepared fires once the decoder reaches DecoderReady.
	PrepareAsync(prepared func()) error
	Unprepare() error
	Destroy() error

	State() (DecoderState, error)
	Start() error
	Pause() error
	SetLooping(enabled bool) error
	SetVolume(left, right float64) error
	SetPlaybackRate(rate float64) error
	// SetPlayPosition requests a seek; done fires once the position lands.
	SetPlayPosition(millis int64, accurate bool, done func()) error
	PlayPosition() (int64, error)
}
