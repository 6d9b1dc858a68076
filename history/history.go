// Package history persists resume positions of played sources.
package history

import (
	"sort"
	"sync"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/vplayer/vplayer/filesystem"
	"github.com/vplayer/vplayer/where"
)

// cacher is the disk-backed store of resume positions, keyed by source.
// It is opened on first use so the path resolves against the active filesystem.
var cacher = sync.OnceValue(func() *gache.Cache[map[string]*Entry] {
	return gache.New[map[string]*Entry](
		&gache.Options{
			Path:       where.History(),
			FileSystem: &filesystem.GacheFs{},
		},
	)
})

// Get returns every saved entry.
func Get() (map[string]*Entry, error) {
	cached, expired, err := cacher().Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*Entry), nil
	}
	return cached, nil
}

// Save records the position reached for entry.Source.
// A playback that reached the end clears the record so the next run starts over.
func Save(entry *Entry) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	if entry.Finished() {
		delete(saved, entry.Source)
		return cacher().Set(saved)
	}

	if entry.SavedAt.IsZero() {
		entry.SavedAt = time.Now()
	}
	saved[entry.Source] = entry
	return cacher().Set(saved)
}

// Lookup returns the saved entry for source, if any.
func Lookup(source string) (mo.Option[*Entry], error) {
	saved, err := Get()
	if err != nil {
		return mo.None[*Entry](), err
	}

	if entry, ok := saved[source]; ok {
		return mo.Some(entry), nil
	}
	return mo.None[*Entry](), nil
}

// Remove deletes the record for source.
func Remove(source string) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, source)
	return cacher().Set(saved)
}

// Clear deletes every record.
func Clear() error {
	return cacher().Set(make(map[string]*Entry))
}

// List returns all entries, most recently saved first.
func List() ([]*Entry, error) {
	saved, err := Get()
	if err != nil {
		return nil, err
	}

	entries := lo.Values(saved)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].SavedAt.After(entries[j].SavedAt)
	})
	return entries, nil
}

// CollectGarbage forgets entries saved longer than maxAge ago and returns how many were dropped.
// A non-positive maxAge keeps everything.
func CollectGarbage(maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}

	saved, err := Get()
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	stale := lo.Filter(lo.Values(saved), func(e *Entry, _ int) bool {
		return e.SavedAt.Before(cutoff)
	})
	if len(stale) == 0 {
		return 0, nil
	}

	for _, e := range stale {
		delete(saved, e.Source)
	}
	return len(stale), cacher().Set(saved)
}

// Filter returns the entries whose source fuzzily matches query, best match first.
func Filter(query string) ([]*Entry, error) {
	saved, err := Get()
	if err != nil {
		return nil, err
	}

	ranks := fuzzy.RankFindNormalizedFold(query, lo.Keys(saved))
	sort.Sort(ranks)

	return lo.Map(ranks, func(r fuzzy.Rank, _ int) *Entry {
		return saved[r.Target]
	}), nil
}
