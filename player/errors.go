package player

import "errors"

var (
	// ErrEngineCreateFailed reports that native construction, source binding or callback
	// registration was rejected. Everything acquired before the failure has been released.
	ErrEngineCreateFailed = errors.New("engine create failed")

	// ErrPlaybackRequestFailed reports a native rejection of a control call made in an eligible state.
	ErrPlaybackRequestFailed = errors.New("playback request failed")

	// ErrSeekRequestFailed reports a native rejection of a seek.
	ErrSeekRequestFailed = errors.New("seek request failed")

	// ErrInvalidStateForQuery reports a query made before it is meaningful. No native call was made.
	ErrInvalidStateForQuery = errors.New("invalid state for query")

	// ErrUnsupportedOperation reports a capability the active variant lacks. Only surfaced
	// when strict capabilities are enabled; otherwise such calls are logged no-ops.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrInvalidArgument reports an out-of-range argument.
	ErrInvalidArgument = errors.New("invalid argument")

	// errDisposed is returned internally by native calls attempted after disposal began.
	errDisposed = errors.New("player disposed")
)
