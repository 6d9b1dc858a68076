// Package frame hands decoded frame surfaces from a player to whatever renders them.
//
// A player registers one Sink at creation, pushes surfaces while decoding and closes the
// sink exactly once on disposal. Pushing never blocks.
package frame

import (
	"errors"
	"fmt"
	"sync"

	"github.com/vplayer/vplayer/log"
	"github.com/vplayer/vplayer/native"
)

var (
	// ErrClosed is returned by a sink that has already been closed.
	ErrClosed = errors.New("frame sink closed")

	// ErrRegistered is returned when an id already has a live sink.
	ErrRegistered = errors.New("frame sink already registered")
)

// Sink receives decoded surfaces for one player.
type Sink interface {
	Push(s native.Surface) error
	Close() error
}

// Registrar creates sinks.
type Registrar interface {
	Register(id int64) (Sink, error)
}

// Memory is an in-process Registrar. Its textures keep only the latest surface, so a renderer
// that falls behind observes the newest frame instead of a backlog.
type Memory struct {
	mu       sync.Mutex
	textures map[int64]*Texture
}

func NewMemory() *Memory {
	return &Memory{textures: make(map[int64]*Texture)}
}

// Register creates the texture for id.
func (m *Memory) Register(id int64) (Sink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.textures[id]; exists {
		return nil, fmt.Errorf("%w: %d", ErrRegistered, id)
	}

	t := &Texture{id: id, owner: m, ready: make(chan struct{}, 1)}
	m.textures[id] = t
	log.Debugf("frame: registered texture %d", id)
	return t, nil
}

// Texture returns the live texture registered for id.
func (m *Memory) Texture(id int64) (*Texture, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.textures[id]
	return t, ok
}

// Len returns the number of live textures.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.textures)
}

func (m *Memory) unregister(id int64) {
	m.mu.Lock()
	delete(m.textures, id)
	m.mu.Unlock()
	log.Debugf("frame: unregistered texture %d", id)
}

// Texture is the Memory registrar's Sink.
type Texture struct {
	id    int64
	owner *Memory

	mu     sync.Mutex
	latest native.Surface
	frames uint64
	closed bool
	ready  chan struct{}
}

// ID returns the registration id.
func (t *Texture) ID() int64 {
	return t.id
}

// Push replaces the latest surface and signals Ready.
func (t *Texture) Push(s native.Surface) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	t.latest = s
	t.frames++
	t.mu.Unlock()

	select {
	case t.ready <- struct{}{}:
	default:
	}
	return nil
}

// Close unregisters the texture. Only the first call succeeds.
func (t *Texture) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	t.closed = true
	t.mu.Unlock()

	t.owner.unregister(t.id)
	return nil
}

// Latest returns the most recently pushed surface.
func (t *Texture) Latest() (native.Surface, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest, t.frames > 0
}

// Frames returns how many surfaces were pushed.
func (t *Texture) Frames() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frames
}

// Closed reports whether Close has been called.
func (t *Texture) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// Ready is signaled after pushes; several pushes may collapse into one signal.
func (t *Texture) Ready() <-chan struct{} {
	return t.ready
}
