// Package reason maps native engine error codes onto stable symbolic reasons.
//
// Both engines report errors in their own numbering; callers only ever see a Reason.
package reason

import (
	"errors"

	"github.com/vplayer/vplayer/native"
)

// Reason is a stable, engine independent error identifier.
type Reason string

const (
	None                        Reason = "None"
	Unknown                     Reason = "Unknown"
	InvalidParameter            Reason = "InvalidParameter"
	OutOfMemory                 Reason = "OutOfMemory"
	InvalidOperation            Reason = "InvalidOperation"
	ResourceLimit               Reason = "ResourceLimit"
	FileNoSpaceOnDevice         Reason = "FileNoSpaceOnDevice"
	InvalidState                Reason = "InvalidState"
	InvalidURI                  Reason = "InvalidUri"
	NoSuchFile                  Reason = "NoSuchFile"
	NotSupportedFile            Reason = "NotSupportedFile"
	ConnectionFailed            Reason = "ConnectionFailed"
	SeekFailed                  Reason = "SeekFailed"
	FeatureNotSupportedOnDevice Reason = "FeatureNotSupportedOnDevice"
	SoundPolicy                 Reason = "SoundPolicy"
	VideoCaptureFailed          Reason = "VideoCaptureFailed"
	DRMExpired                  Reason = "DrmExpired"
	DRMNoLicense                Reason = "DrmNoLicense"
	DRMFutureUse                Reason = "DrmFutureUse"
	DRMNotPermitted             Reason = "DrmNotPermitted"
	PermissionDenied            Reason = "PermissionDenied"
	ServiceDisconnected         Reason = "ServiceDisconnected"
	BufferSpace                 Reason = "BufferSpace"
	NotSupportedAudioCodec      Reason = "NotSupportedAudioCodec"
	NotSupportedVideoCodec      Reason = "NotSupportedVideoCodec"
	NotSupportedSubtitle        Reason = "NotSupportedSubtitle"

	// Reasons with no native code behind them.
	Interrupted        Reason = "VideoInterrupted"
	ResourceConflicted Reason = "ResourceConflicted"
	PrepareFailed      Reason = "PrepareFailed"
)

func (r Reason) String() string {
	return string(r)
}

var decoderReasons = map[native.DecoderCode]Reason{
	native.DecoderErrNone:                        None,
	native.DecoderErrInvalidParameter:            InvalidParameter,
	native.DecoderErrOutOfMemory:                 OutOfMemory,
	native.DecoderErrInvalidOperation:            InvalidOperation,
	native.DecoderErrResourceLimit:               ResourceLimit,
	native.DecoderErrFileNoSpaceOnDevice:         FileNoSpaceOnDevice,
	native.DecoderErrInvalidState:                InvalidState,
	native.DecoderErrInvalidURI:                  InvalidURI,
	native.DecoderErrNoSuchFile:                  NoSuchFile,
	native.DecoderErrNotSupportedFile:            NotSupportedFile,
	native.DecoderErrConnectionFailed:            ConnectionFailed,
	native.DecoderErrSeekFailed:                  SeekFailed,
	native.DecoderErrFeatureNotSupportedOnDevice: FeatureNotSupportedOnDevice,
	native.DecoderErrDRMNotPermitted:             DRMNotPermitted,
	native.DecoderErrServiceDisconnected:         ServiceDisconnected,
	native.DecoderErrNotSupportedSubtitle:        NotSupportedSubtitle,
	native.DecoderErrNotSupportedAudioCodec:      NotSupportedAudioCodec,
	native.DecoderErrNotSupportedVideoCodec:      NotSupportedVideoCodec,
}

var sessionReasons = map[native.ErrorType]Reason{
	native.ErrorNone:                        None,
	native.ErrorOutOfMemory:                 OutOfMemory,
	native.ErrorInvalidParameter:            InvalidParameter,
	native.ErrorNoSuchFile:                  NoSuchFile,
	native.ErrorInvalidOperation:            InvalidOperation,
	native.ErrorFileNoSpaceOnDevice:         FileNoSpaceOnDevice,
	native.ErrorFeatureNotSupportedOnDevice: FeatureNotSupportedOnDevice,
	native.ErrorSeekFailed:                  SeekFailed,
	native.ErrorInvalidState:                InvalidState,
	native.ErrorNotSupportedFile:            NotSupportedFile,
	native.ErrorInvalidURI:                  InvalidURI,
	native.ErrorSoundPolicy:                 SoundPolicy,
	native.ErrorConnectionFailed:            ConnectionFailed,
	native.ErrorVideoCaptureFailed:          VideoCaptureFailed,
	native.ErrorDRMExpired:                  DRMExpired,
	native.ErrorDRMNoLicense:                DRMNoLicense,
	native.ErrorDRMFutureUse:                DRMFutureUse,
	native.ErrorDRMNotPermitted:             DRMNotPermitted,
	native.ErrorResourceLimit:               ResourceLimit,
	native.ErrorPermissionDenied:            PermissionDenied,
	native.ErrorServiceDisconnected:         ServiceDisconnected,
	native.ErrorBufferSpace:                 BufferSpace,
	native.ErrorNotSupportedAudioCodec:      NotSupportedAudioCodec,
	native.ErrorNotSupportedVideoCodec:      NotSupportedVideoCodec,
	native.ErrorNotSupportedSubtitle:        NotSupportedSubtitle,
}

// FromDecoder returns the reason for a decoder error code, Unknown when unmapped.
func FromDecoder(code native.DecoderCode) Reason {
	if r, ok := decoderReasons[code]; ok {
		return r
	}
	return Unknown
}

// FromSession returns the reason for a streaming session error type, Unknown when unmapped.
func FromSession(t native.ErrorType) Reason {
	if r, ok := sessionReasons[t]; ok {
		return r
	}
	return Unknown
}

// Of extracts the reason carried by a native error anywhere in err's chain.
func Of(err error) Reason {
	var (
		decoderErr *native.DecoderError
		sessionErr *native.SessionError
	)

	switch {
	case err == nil:
		return None
	case errors.As(err, &decoderErr):
		return FromDecoder(decoderErr.Code)
	case errors.As(err, &sessionErr):
		return FromSession(sessionErr.Type)
	default:
		return Unknown
	}
}
