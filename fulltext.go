package facet

import (
	"sort"
	"strings"
)

// FullText is the free-text collaborator of the engine. It shares the
// engine's internal ids: items handed to a FullTextFactory already carry
// their "_id".
type FullText interface {
	// Search returns the ids of items matching query and accepted by
	// predicate, best match first. Both are optional; with neither, every
	// id is returned in index order. A nil predicate accepts every item.
	Search(query string, predicate func(Item) bool) ([]uint32, error)
}

// FullTextFactory builds a FullText over id-stamped items.
type FullTextFactory func(items []Item, cfg *Config) (FullText, error)

// nameBoost weighs matches in the "name" field against other searchable
// fields.
const nameBoost = 10.0

// Compile-time check to ensure BM25FullText implements FullText
var _ FullText = (*BM25FullText)(nil)

// BM25FullText searches the "name" field plus the configured searchable
// fields, one BM25 index per field. Scores are summed across fields with
// "name" weighted by nameBoost.
//
// Thread-safety: read-only after construction.
type BM25FullText struct {
	fields  []string
	indexes map[string]*BM25Index
	ids     []uint32
	items   map[uint32]Item
}

// NewBM25FullText indexes items for full-text search. It is the default
// FullTextFactory.
func NewBM25FullText(items []Item, cfg *Config) (FullText, error) {
	fields := []string{defaultFullTextNameField}
	if cfg != nil {
		for _, f := range cfg.SearchableFields {
			if f != defaultFullTextNameField && !containsString(fields, f) {
				fields = append(fields, f)
			}
		}
	}

	ft := &BM25FullText{
		fields:  fields,
		indexes: make(map[string]*BM25Index, len(fields)),
		ids:     make([]uint32, 0, len(items)),
		items:   make(map[uint32]Item, len(items)),
	}
	for _, f := range fields {
		ft.indexes[f] = NewBM25Index()
	}

	for _, item := range items {
		id, ok := item.internalID()
		if !ok {
			return nil, dataErrorf("item without internal id passed to full-text index")
		}
		ft.ids = append(ft.ids, id)
		ft.items[id] = item
		for _, f := range fields {
			if text := strings.Join(item.fieldKeys(f), " "); text != "" {
				ft.indexes[f].Add(id, text)
			}
		}
	}
	for _, idx := range ft.indexes {
		idx.Compact()
	}
	return ft, nil
}

// Search implements FullText.
func (ft *BM25FullText) Search(query string, predicate func(Item) bool) ([]uint32, error) {
	var eligible []uint32
	if predicate != nil {
		eligible = make([]uint32, 0, len(ft.ids))
		for _, id := range ft.ids {
			if predicate(ft.items[id]) {
				eligible = append(eligible, id)
			}
		}
	}

	if strings.TrimSpace(query) == "" {
		if predicate == nil {
			return append([]uint32(nil), ft.ids...), nil
		}
		return eligible, nil
	}
	if predicate != nil && len(eligible) == 0 {
		return []uint32{}, nil
	}

	scores := make(map[uint32]float64)
	for _, f := range ft.fields {
		search := ft.indexes[f].NewSearch().WithQuery(query)
		if predicate != nil {
			search = search.WithDocumentIDs(eligible...)
		}
		boost := 1.0
		if f == defaultFullTextNameField {
			boost = nameBoost
		}
		for _, hit := range search.Execute() {
			scores[hit.DocID] += boost * hit.Score
		}
	}

	hits := make([]ScoredDoc, 0, len(scores))
	for id, score := range scores {
		hits = append(hits, ScoredDoc{DocID: id, Score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].DocID < hits[j].DocID
	})

	ids := make([]uint32, len(hits))
	for i, h := range hits {
		ids[i] = h.DocID
	}
	return ids, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
