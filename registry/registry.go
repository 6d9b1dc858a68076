// Package registry owns every live player and is the only way the host reaches one.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/vplayer/vplayer/event"
	"github.com/vplayer/vplayer/history"
	"github.com/vplayer/vplayer/key"
	"github.com/vplayer/vplayer/log"
	"github.com/vplayer/vplayer/player"
)

var (
	// ErrUnknownHandle is returned for handles that were never created or are already disposed.
	ErrUnknownHandle = errors.New("unknown player handle")

	// ErrAssetNotFound is returned when an asset does not exist under the assets directory.
	ErrAssetNotFound = errors.New("asset not found")
)

type entry struct {
	engine player.Engine
	source Source
	uri    string
}

// Registry maps handles to engines.
type Registry struct {
	env player.Env

	mu      sync.Mutex
	entries map[player.Handle]*entry
}

// New creates a registry whose engines bind to env.
func New(env player.Env) *Registry {
	return &Registry{env: env, entries: make(map[player.Handle]*entry)}
}

// Create opens a player for src and returns its handle.
// The engine variant follows from the source; see Source.
func (r *Registry) Create(src Source, opts player.Options) (player.Handle, error) {
	uri, variant, err := src.resolve()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", player.ErrEngineCreateFailed, err)
	}

	if src.FormatHint != "" {
		log.Debugf("registry: %s format hint %q", src, src.FormatHint)
	}

	var engine player.Engine
	switch variant {
	case player.VariantDecoder:
		engine, err = player.NewDecoderEngine(uri, opts, r.env)
	default:
		engine, err = player.NewStreamingEngine(uri, opts, r.env)
	}
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	r.entries[engine.Handle()] = &entry{engine: engine, source: src, uri: uri}
	r.mu.Unlock()

	log.Infof("registry: player %s created for %s (%s)", engine.Handle(), src, variant)
	return engine.Handle(), nil
}

// Get returns the engine registered under h.
func (r *Registry) Get(h player.Handle) (player.Engine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[h]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	return e.engine, nil
}

// Location returns the resolved location the engine under h was opened with.
// History records are keyed by it.
func (r *Registry) Location(h player.Handle) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[h]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	return e.uri, nil
}

// Events returns the event channel of the engine registered under h.
func (r *Registry) Events(h player.Handle) (*event.Channel, error) {
	engine, err := r.Get(h)
	if err != nil {
		return nil, err
	}
	return engine.Events(), nil
}

// Dispose releases the engine registered under h and forgets the handle.
// With history.save_on_dispose set, the reached position is recorded first.
func (r *Registry) Dispose(h player.Handle) error {
	r.mu.Lock()
	e, ok := r.entries[h]
	delete(r.entries, h)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}

	if viper.GetBool(key.HistorySaveOnDispose) {
		remember(e)
	}
	return e.engine.Dispose()
}

// DisposeAll disposes every registered engine.
func (r *Registry) DisposeAll() error {
	var errs []error
	for _, h := range r.Handles() {
		if err := r.Dispose(h); err != nil && !errors.Is(err, ErrUnknownHandle) {
			errs = append(errs, fmt.Errorf("player %s: %w", h, err))
		}
	}
	return errors.Join(errs...)
}

// Handles returns the live handles in creation order.
func (r *Registry) Handles() []player.Handle {
	r.mu.Lock()
	handles := lo.Keys(r.entries)
	r.mu.Unlock()

	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	return handles
}

// Len returns the number of live players.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// remember saves the resume position of e. Failures are logged.
func remember(e *entry) {
	info, ok := e.engine.Media().Get()
	if !ok {
		return
	}

	position, err := e.engine.Position()
	if err != nil {
		log.Debugf("registry: no resume position for %s: %v", e.source, err)
		return
	}

	err = history.Save(&history.Entry{
		Source:         e.uri,
		Variant:        e.engine.Variant().String(),
		PositionMillis: position,
		DurationMillis: info.DurationMillis,
	})
	if err != nil {
		log.Warnf("registry: save history for %s: %v", e.source, err)
	}
}
