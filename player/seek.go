package player

import "sync"

// pendingSeek tracks the single outstanding seek of an engine.
//
// Every native request gets a generation. Arming a new seek supersedes the previous
// continuation, which is then never invoked. Completions either name their generation
// or, for engines that only signal "a seek finished", arrive in request order.
type pendingSeek struct {
	mu       sync.Mutex
	gen      uint64
	armed    bool
	target   int64
	done     func()
	inflight []uint64
}

func (p *pendingSeek) arm(target int64, done func()) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.gen++
	p.armed = true
	p.target = target
	p.done = done
	p.inflight = append(p.inflight, p.gen)
	return p.gen
}

// abort withdraws a request the native layer rejected.
func (p *pendingSeek) abort(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.forget(gen)
	if gen == p.gen {
		p.armed = false
		p.done = nil
	}
}

// resolve completes the request with the given generation.
func (p *pendingSeek) resolve(gen uint64) (func(), bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.forget(gen) {
		return nil, false
	}
	return p.fire(gen)
}

// resolveNext completes the oldest request still in flight.
func (p *pendingSeek) resolveNext() (func(), bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.inflight) == 0 {
		return nil, false
	}
	gen := p.inflight[0]
	p.inflight = p.inflight[1:]
	return p.fire(gen)
}

// pending returns the target of the armed seek.
func (p *pendingSeek) pending() (int64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.target, p.armed
}

func (p *pendingSeek) clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.armed = false
	p.done = nil
	p.inflight = nil
}

func (p *pendingSeek) fire(gen uint64) (func(), bool) {
	if gen != p.gen || !p.armed {
		return nil, false
	}
	done := p.done
	p.armed = false
	p.done = nil
	return done, true
}

func (p *pendingSeek) forget(gen uint64) bool {
	for i, g := range p.inflight {
		if g == gen {
			p.inflight = append(p.inflight[:i], p.inflight[i+1:]...)
			return true
		}
	}
	return false
}
