// Package sim provides in-process stand-ins for the native media engines.
//
// In manual mode nothing happens on its own: tests fire prepared, end of stream, error,
// frame and seek completions explicitly. In auto mode goroutines drive the lifecycle in
// real time, which is what the CLI uses.
package sim

import (
	"errors"
	"sync"
	"time"

	"github.com/vplayer/vplayer/native"
)

// Operation names accepted by Fail and Calls.
const (
	OpCreate          = "create"
	OpSetURI          = "set_uri"
	OpOpen            = "open"
	OpSetAppID        = "set_app_id"
	OpRegister        = "register_callback"
	OpBufferingCB     = "buffering_callback"
	OpUnregister      = "unregister_callback"
	OpSetDisplay      = "set_display"
	OpSetDisplayMode  = "set_display_mode"
	OpSetDisplayROI   = "set_display_roi"
	OpMixing          = "set_mixing"
	OpPrepare         = "prepare"
	OpUnprepare       = "unprepare"
	OpStart           = "start"
	OpResume          = "resume"
	OpPause           = "pause"
	OpStop            = "stop"
	OpClose           = "close"
	OpDestroy         = "destroy"
	OpSeek            = "seek"
	OpPosition        = "position"
	OpDuration        = "duration"
	OpVideoSize       = "video_size"
	OpRotation        = "rotation"
	OpSetLooping      = "set_looping"
	OpSetVolume       = "set_volume"
	OpSetPlaybackRate = "set_playback_rate"
)

// ErrInjected is a convenience error for fault injection.
var ErrInjected = errors.New("injected fault")

// Media describes the simulated stream.
type Media struct {
	DurationMillis int64
	Width, Height  int
	Rotation       native.Rotation
}

// Option configures a Platform.
type Option func(*Platform)

// WithAuto makes engines drive themselves, advancing playback every tick.
func WithAuto(tick time.Duration) Option {
	return func(p *Platform) {
		p.auto = true
		p.tick = tick
	}
}

// WithFault makes op fail with err on every engine the platform creates.
func WithFault(op string, err error) Option {
	return func(p *Platform) {
		p.faults[op] = err
	}
}

// Platform implements native.Platform.
type Platform struct {
	media  Media
	auto   bool
	tick   time.Duration
	faults map[string]error

	mu       sync.Mutex
	decoders []*Decoder
	sessions []*Session
}

func NewPlatform(media Media, options ...Option) *Platform {
	p := &Platform{media: media, tick: 40 * time.Millisecond, faults: make(map[string]error)}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *Platform) NewDecoder() (native.Decoder, error) {
	if err := p.faults[OpCreate]; err != nil {
		return nil, err
	}

	d := &Decoder{recorder: newRecorder(p.faults), media: p.media, auto: p.auto, tick: p.tick, state: native.DecoderIdle, rate: 1, volume: 1}
	p.mu.Lock()
	p.decoders = append(p.decoders, d)
	p.mu.Unlock()
	return d, nil
}

func (p *Platform) NewSession() (native.Session, error) {
	if err := p.faults[OpCreate]; err != nil {
		return nil, err
	}

	s := &Session{recorder: newRecorder(p.faults), media: p.media, auto: p.auto, tick: p.tick, rate: 1}
	p.mu.Lock()
	p.sessions = append(p.sessions, s)
	p.mu.Unlock()
	return s, nil
}

// Decoders returns every decoder created so far.
func (p *Platform) Decoders() []*Decoder {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Decoder(nil), p.decoders...)
}

// Sessions returns every session created so far.
func (p *Platform) Sessions() []*Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Session(nil), p.sessions...)
}

// recorder counts calls and serves injected faults.
type recorder struct {
	mu     sync.Mutex
	calls  map[string]int
	faults map[string]error
}

func newRecorder(faults map[string]error) *recorder {
	r := &recorder{calls: make(map[string]int), faults: make(map[string]error, len(faults))}
	for op, err := range faults {
		r.faults[op] = err
	}
	return r
}

func (r *recorder) call(op string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[op]++
	return r.faults[op]
}

// Calls returns how many times op was invoked.
func (r *recorder) Calls(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[op]
}

// Fail makes op fail with err from now on; a nil err clears the fault.
func (r *recorder) Fail(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.faults, op)
		return
	}
	r.faults[op] = err
}

// ticker runs step every tick until step reports false or stop is closed.
func ticker(tick time.Duration, stop <-chan struct{}, step func() bool) {
	t := time.NewTicker(tick)
	defer t.Stop()

	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if !step() {
				return
			}
		}
	}
}

func stopLoop(stop *chan struct{}) {
	if *stop != nil {
		close(*stop)
		*stop = nil
	}
}
