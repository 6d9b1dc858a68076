package player

import "sync"

// Arena hands out handles and resolves them back to live engines for native callbacks.
// Callbacks hold a handle, never an engine pointer, so a callback arriving after
// disposal finds nothing instead of a torn-down engine.
type Arena struct {
	mu   sync.RWMutex
	last int64
	live map[Handle]*machine
}

// DefaultArena is the process-wide arena used when an Env does not name one.
var DefaultArena = NewArena()

func NewArena() *Arena {
	return &Arena{live: make(map[Handle]*machine)}
}

// Reserve returns the next handle. The first handle is 1.
func (a *Arena) Reserve() Handle {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.last++
	return Handle(a.last)
}

// Release forgets h; later lookups fail.
func (a *Arena) Release(h Handle) {
	a.mu.Lock()
	delete(a.live, h)
	a.mu.Unlock()
}

// Live returns the number of engines currently reachable from callbacks.
func (a *Arena) Live() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.live)
}

func (a *Arena) bind(h Handle, m *machine) {
	a.mu.Lock()
	a.live[h] = m
	a.mu.Unlock()
}

func (a *Arena) lookup(h Handle) (*machine, bool) {
	a.mu.RLock()
	m, ok := a.live[h]
	a.mu.RUnlock()

	if !ok || !m.live.Load() {
		return nil, false
	}
	return m, true
}
