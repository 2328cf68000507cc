// Package facet implements the engine facade that ties the facet index,
// the filter matrix, the bucket aggregator and the full-text collaborator
// together.
//
// HOW IT WORKS:
// The engine owns an immutable snapshot: id-stamped copies of the items, the
// base facet index, the external id lookup table and the full-text index.
// Every request reads one snapshot from start to end. Reindex builds a brand
// new snapshot (facet index and full text in parallel) and publishes it with
// an atomic pointer swap, so a concurrent search sees either the old or the
// new snapshot and never a half-built one.
//
// ENTRY POINTS:
//   - Search: filtered, paginated items plus facet buckets
//   - Aggregation: every bucket of a single facet, paginated
//   - Similar: items ranked by how many values of a field they share
//   - Reindex: replace the whole collection
package facet

import (
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

type options struct {
	logger   *Logger
	fullText FullTextFactory
}

// Option configures an Engine.
type Option func(*options)

// WithLogger sets the engine logger. The default discards everything.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithFullText replaces the default BM25 full-text collaborator.
func WithFullText(factory FullTextFactory) Option {
	return func(o *options) {
		if factory != nil {
			o.fullText = factory
		}
	}
}

// snapshot is one immutable generation of the indexed collection.
type snapshot struct {
	items    []Item
	byID     map[uint32]Item
	idMap    map[string]uint32
	index    *FacetIndex
	fullText FullText
}

// Engine answers faceted search requests over an in-memory collection.
//
// Thread-safety: all methods are safe for concurrent use. Reindex may run
// while searches are in flight.
type Engine struct {
	cfg  *Config
	opts options
	snap atomic.Pointer[snapshot]
}

// New indexes items according to cfg and returns a ready engine. A nil cfg
// is an empty configuration.
//
// Example:
//
//	cfg := NewConfig().
//		WithAggregation("tags", nil).
//		WithAggregation("genre", &Aggregation{Conjunction: Bool(false)})
//	engine, err := New(items, cfg, WithLogger(NewTextLogger(slog.LevelDebug)))
func New(items []Item, cfg *Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	if cfg.Aggregations == nil {
		cfg.Aggregations = NewAggregationMap()
	}
	o := options{logger: NoopLogger(), fullText: NewBM25FullText}
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine{cfg: cfg, opts: o}
	if err := e.Reindex(items); err != nil {
		return nil, err
	}
	return e, nil
}

// Reindex replaces the indexed collection. Internal ids are assigned afresh
// from item positions, 1 for the first item, ignoring any "_id" the items
// carry; ids returned before the call belong to the previous generation.
func (e *Engine) Reindex(items []Item) error {
	start := time.Now()
	fields, sources := e.cfg.fields()

	snap, err := e.build(items, fields, sources)
	e.opts.logger.LogReindex(len(items), len(fields), time.Since(start), err)
	if err != nil {
		return err
	}
	e.snap.Store(snap)
	return nil
}

func (e *Engine) build(items []Item, fields []string, sources map[string]string) (*snapshot, error) {
	snap := &snapshot{
		items: make([]Item, len(items)),
		byID:  make(map[uint32]Item, len(items)),
		idMap: make(map[string]uint32, len(items)),
	}
	idField := e.cfg.idField()
	for i, item := range items {
		// ids follow item positions; an incoming "_id" is overwritten
		id := uint32(i + 1)
		stamped := item.clone()
		stamped[InternalIDField] = id
		snap.items[i] = stamped
		snap.byID[id] = stamped
		if ext, ok := item[idField]; ok && ext != nil {
			if key := valueKey(ext); key != "" {
				snap.idMap[key] = id
			}
		}
	}

	var g errgroup.Group
	g.Go(func() error {
		index, err := BuildIndexWithSources(snap.items, fields, sources)
		if err != nil {
			return fmt.Errorf("build facet index: %w", err)
		}
		snap.index = index
		return nil
	})
	if e.cfg.nativeSearch() {
		g.Go(func() error {
			ft, err := e.opts.fullText(snap.items, e.cfg)
			if err != nil {
				return fmt.Errorf("build full-text index: %w", err)
			}
			snap.fullText = ft
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() *Config {
	return e.cfg
}

// Index returns the current base facet index.
func (e *Engine) Index() *FacetIndex {
	return e.snap.Load().index
}

// Items returns copies of every indexed item, each carrying its "_id".
func (e *Engine) Items() []Item {
	snap := e.snap.Load()
	out := make([]Item, len(snap.items))
	for i, it := range snap.items {
		out[i] = it.clone()
	}
	return out
}

// Item returns a copy of the item with the given internal id.
func (e *Engine) Item(id uint32) (Item, bool) {
	it, ok := e.snap.Load().byID[id]
	if !ok {
		return nil, false
	}
	return it.clone(), true
}

// InternalIDs translates external ids (values of the custom id field) into
// internal ids. Unknown ids are skipped.
func (e *Engine) InternalIDs(ids ...any) []uint32 {
	return e.snap.Load().internalIDs(ids)
}

func (s *snapshot) internalIDs(ids []any) []uint32 {
	out := make([]uint32, 0, len(ids))
	for _, id := range ids {
		if id == nil {
			continue
		}
		if internal, ok := s.idMap[valueKey(id)]; ok {
			out = append(out, internal)
		}
	}
	return out
}

func (s *snapshot) materialize(ids []uint32) []Item {
	out := make([]Item, 0, len(ids))
	for _, id := range ids {
		if it, ok := s.byID[id]; ok {
			out = append(out, it.clone())
		}
	}
	return out
}
