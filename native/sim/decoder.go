package sim

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vplayer/vplayer/native"
)

// Decoder implements native.Decoder.
type Decoder struct {
	*recorder
	media Media
	auto  bool
	tick  time.Duration

	mu          sync.Mutex
	state       native.DecoderState
	uri         string
	looping     bool
	volume      float64
	rate        float64
	mixing      bool
	position    int64
	destroyed   bool
	prepared    func()
	frame       func(native.Packet)
	completed   func()
	interrupted func(native.DecoderCode)
	errored     func(native.DecoderCode)
	buffering   func(int)
	seeks       []func()
	stop        chan struct{}

	surfaces atomic.Uint64
	packets  atomic.Int64
}

func (d *Decoder) reject(op string) error {
	if err := d.call(op); err != nil {
		var code *native.DecoderError
		if errors.As(err, &code) {
			return err
		}
		return &native.DecoderError{Op: op, Code: native.DecoderErrInvalidOperation}
	}
	return nil
}

func (d *Decoder) SetURI(uri string) error {
	if err := d.reject(OpSetURI); err != nil {
		return err
	}
	d.mu.Lock()
	d.uri = uri
	d.mu.Unlock()
	return nil
}

func (d *Decoder) SetSoundStreamMixing(mix bool) error {
	if err := d.reject(OpMixing); err != nil {
		return err
	}
	d.mu.Lock()
	d.mixing = mix
	d.mu.Unlock()
	return nil
}

func (d *Decoder) SetFrameDecodedCallback(fn func(native.Packet)) error {
	return d.register(func() { d.frame = fn })
}

func (d *Decoder) SetCompletedCallback(fn func()) error {
	return d.register(func() { d.completed = fn })
}

func (d *Decoder) SetInterruptedCallback(fn func(native.DecoderCode)) error {
	return d.register(func() { d.interrupted = fn })
}

func (d *Decoder) SetErrorCallback(fn func(native.DecoderCode)) error {
	return d.register(func() { d.errored = fn })
}

func (d *Decoder) SetBufferingCallback(fn func(int)) error {
	if err := d.call(OpBufferingCB); err != nil {
		return err
	}
	d.mu.Lock()
	d.buffering = fn
	d.mu.Unlock()
	return nil
}

func (d *Decoder) register(set func()) error {
	if err := d.reject(OpRegister); err != nil {
		return err
	}
	d.mu.Lock()
	set()
	d.mu.Unlock()
	return nil
}

func (d *Decoder) UnsetCallback(slot native.Slot) error {
	if err := d.reject(OpUnregister); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	switch slot {
	case native.SlotFrameDecoded:
		d.frame = nil
	case native.SlotCompleted:
		d.completed = nil
	case native.SlotInterrupted:
		d.interrupted = nil
	case native.SlotError:
		d.errored = nil
	case native.SlotBuffering:
		d.buffering = nil
	}
	return nil
}

func (d *Decoder) PrepareAsync(prepared func()) error {
	if err := d.reject(OpPrepare); err != nil {
		return err
	}

	d.mu.Lock()
	d.prepared = prepared
	d.mu.Unlock()

	if d.auto {
		go func() {
			time.Sleep(d.tick)
			d.FirePrepared()
		}()
	}
	return nil
}

func (d *Decoder) Unprepare() error {
	if err := d.reject(OpUnprepare); err != nil {
		return err
	}
	d.mu.Lock()
	stopLoop(&d.stop)
	d.state = native.DecoderIdle
	d.prepared = nil
	d.mu.Unlock()
	return nil
}

func (d *Decoder) Destroy() error {
	if err := d.reject(OpDestroy); err != nil {
		return err
	}
	d.mu.Lock()
	stopLoop(&d.stop)
	d.state = native.DecoderNone
	d.destroyed = true
	d.mu.Unlock()
	return nil
}

func (d *Decoder) State() (native.DecoderState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state, nil
}

func (d *Decoder) Start() error {
	if err := d.reject(OpStart); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != native.DecoderReady && d.state != native.DecoderPaused {
		return &native.DecoderError{Op: OpStart, Code: native.DecoderErrInvalidState}
	}
	if d.position >= d.media.DurationMillis {
		d.position = 0
	}
	d.state = native.DecoderPlaying
	if d.auto && d.stop == nil {
		d.stop = make(chan struct{})
		go ticker(d.tick, d.stop, d.advance)
	}
	return nil
}

func (d *Decoder) Pause() error {
	if err := d.reject(OpPause); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != native.DecoderPlaying {
		return &native.DecoderError{Op: OpPause, Code: native.DecoderErrInvalidState}
	}
	d.state = native.DecoderPaused
	stopLoop(&d.stop)
	return nil
}

func (d *Decoder) SetLooping(enabled bool) error {
	if err := d.reject(OpSetLooping); err != nil {
		return err
	}
	d.mu.Lock()
	d.looping = enabled
	d.mu.Unlock()
	return nil
}

func (d *Decoder) SetVolume(left, right float64) error {
	if err := d.reject(OpSetVolume); err != nil {
		return err
	}
	d.mu.Lock()
	d.volume = (left + right) / 2
	d.mu.Unlock()
	return nil
}

func (d *Decoder) SetPlaybackRate(rate float64) error {
	if err := d.reject(OpSetPlaybackRate); err != nil {
		return err
	}
	d.mu.Lock()
	d.rate = rate
	d.mu.Unlock()
	return nil
}

func (d *Decoder) SetPlayPosition(millis int64, _ bool, done func()) error {
	if err := d.reject(OpSeek); err != nil {
		return err
	}

	d.mu.Lock()
	if d.state < native.DecoderReady {
		d.mu.Unlock()
		return &native.DecoderError{Op: OpSeek, Code: native.DecoderErrInvalidState}
	}
	d.position = min(millis, d.media.DurationMillis)
	d.seeks = append(d.seeks, done)
	d.mu.Unlock()

	if d.auto {
		go func() {
			time.Sleep(d.tick)
			d.CompleteSeeks()
		}()
	}
	return nil
}

func (d *Decoder) PlayPosition() (int64, error) {
	if err := d.reject(OpPosition); err != nil {
		return 0, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.position, nil
}

func (d *Decoder) Duration() (int64, error) {
	if err := d.reject(OpDuration); err != nil {
		return 0, err
	}
	return d.media.DurationMillis, nil
}

func (d *Decoder) VideoSize() (int, int, error) {
	if err := d.reject(OpVideoSize); err != nil {
		return 0, 0, err
	}
	return d.media.Width, d.media.Height, nil
}

func (d *Decoder) DisplayRotation() (native.Rotation, error) {
	if err := d.reject(OpRotation); err != nil {
		return native.Rotation0, err
	}
	return d.media.Rotation, nil
}

// advance moves auto playback one tick forward.
func (d *Decoder) advance() bool {
	d.mu.Lock()
	if d.state != native.DecoderPlaying {
		d.mu.Unlock()
		return false
	}
	d.position += int64(float64(d.tick.Milliseconds()) * d.rate)
	ended := false
	if d.position >= d.media.DurationMillis {
		if d.looping {
			d.position = 0
		} else {
			d.position = d.media.DurationMillis
			ended = true
			stopLoop(&d.stop)
		}
	}
	d.mu.Unlock()

	d.FireFrame()
	if ended {
		d.FireCompleted()
	}
	return !ended
}

// FirePrepared completes a pending prepare.
func (d *Decoder) FirePrepared() {
	d.mu.Lock()
	fn := d.prepared
	d.prepared = nil
	if fn != nil {
		d.state = native.DecoderReady
	}
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// FireFrame decodes one frame and hands its packet to the frame callback.
// It reports whether a callback received the packet; otherwise the packet is released here.
func (d *Decoder) FireFrame() bool {
	return d.deliver(&Packet{surface: native.Surface(d.surfaces.Add(1)), owner: d})
}

// FireBrokenFrame delivers a packet whose surface cannot be extracted.
func (d *Decoder) FireBrokenFrame() bool {
	return d.deliver(&Packet{broken: true, owner: d})
}

func (d *Decoder) deliver(p *Packet) bool {
	d.packets.Add(1)

	d.mu.Lock()
	fn := d.frame
	d.mu.Unlock()

	if fn == nil {
		_ = p.Destroy()
		return false
	}
	fn(p)
	return true
}

// FireCompleted signals end of stream.
func (d *Decoder) FireCompleted() {
	d.mu.Lock()
	fn := d.completed
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// FireInterrupted signals that playback was taken away.
func (d *Decoder) FireInterrupted(code native.DecoderCode) {
	d.mu.Lock()
	fn := d.interrupted
	d.mu.Unlock()
	if fn != nil {
		fn(code)
	}
}

// FireError signals an asynchronous decoder error.
func (d *Decoder) FireError(code native.DecoderCode) {
	d.mu.Lock()
	fn := d.errored
	d.mu.Unlock()
	if fn != nil {
		fn(code)
	}
}

// FireBuffering reports a buffering percentage.
func (d *Decoder) FireBuffering(percent int) {
	d.mu.Lock()
	fn := d.buffering
	d.mu.Unlock()
	if fn != nil {
		fn(percent)
	}
}

// CompleteSeeks lands every requested seek, oldest first.
func (d *Decoder) CompleteSeeks() {
	d.mu.Lock()
	pending := d.seeks
	d.seeks = nil
	d.mu.Unlock()

	for _, done := range pending {
		if done != nil {
			done()
		}
	}
}

// LivePackets returns the number of packets handed out and not yet destroyed.
func (d *Decoder) LivePackets() int64 {
	return d.packets.Load()
}

func (d *Decoder) URI() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.uri
}

func (d *Decoder) Looping() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.looping
}

func (d *Decoder) Volume() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.volume
}

func (d *Decoder) Rate() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rate
}

func (d *Decoder) Mixing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mixing
}

func (d *Decoder) Destroyed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.destroyed
}

// Packet implements native.Packet.
type Packet struct {
	surface   native.Surface
	broken    bool
	owner     *Decoder
	destroyed atomic.Bool
}

var errNoSurface = errors.New("packet carries no surface")

func (p *Packet) Surface() (native.Surface, error) {
	if p.broken {
		return 0, errNoSurface
	}
	return p.surface, nil
}

func (p *Packet) Destroy() error {
	if !p.destroyed.CompareAndSwap(false, true) {
		return errors.New("packet already destroyed")
	}
	p.owner.packets.Add(-1)
	return nil
}
