package facet

import (
	"container/heap"
	"math"
)

// TextSearch is a configurable full-text search request.
type TextSearch interface {
	// WithQuery sets the query text.
	WithQuery(query string) TextSearch
	// WithK limits the number of hits; 0 or less returns every hit.
	WithK(k int) TextSearch
	// WithDocumentIDs restricts the candidates to the given ids.
	WithDocumentIDs(ids ...uint32) TextSearch
	// Execute runs the search and returns hits by descending score.
	Execute() []ScoredDoc
}

// Compile-time checks to ensure bm25TextSearch implements TextSearch
var _ TextSearch = (*bm25TextSearch)(nil)

type bm25TextSearch struct {
	index       *BM25Index
	query       string
	documentIDs []uint32
	restricted  bool
	k           int
}

// NewSearch creates a new search builder for this index.
//
// Example:
//
//	hits := idx.NewSearch().
//		WithQuery("quick brown").
//		WithK(5).
//		Execute()
func (ix *BM25Index) NewSearch() TextSearch {
	return &bm25TextSearch{index: ix}
}

func (s *bm25TextSearch) WithQuery(query string) TextSearch {
	s.query = query
	return s
}

func (s *bm25TextSearch) WithK(k int) TextSearch {
	s.k = k
	return s
}

// WithDocumentIDs restricts the search to the given ids. Calling it with no
// ids leaves no eligible candidate.
func (s *bm25TextSearch) WithDocumentIDs(ids ...uint32) TextSearch {
	s.documentIDs = ids
	s.restricted = true
	return s
}

// Execute performs the BM25 search.
//
// BM25 SEARCH ALGORITHM:
//  1. Tokenize and normalize the query
//  2. For each query term, look up its postings and add
//     IDF × TF / (TF + K1 × norm) to every eligible document
//  3. Keep the top k hits in a min-heap (or all hits when k <= 0)
//
// Hits with equal scores are ordered by ascending id.
//
// Time Complexity: O(q × d + r × log(k))
func (s *bm25TextSearch) Execute() []ScoredDoc {
	qtokens := tokenize(normalize(s.query))
	if len(qtokens) == 0 {
		return nil
	}
	if s.restricted && len(s.documentIDs) == 0 {
		return nil
	}

	s.index.mu.RLock()
	defer s.index.mu.RUnlock()

	N := float64(s.index.numDocs.Load())
	if N == 0 {
		return nil
	}

	docFilter := NewDocumentFilter(s.documentIDs)
	defer ReturnDocumentFilter(docFilter)

	scores := make(map[uint32]float64)
	seen := make(map[string]bool, len(qtokens))
	for _, t := range qtokens {
		if seen[t] {
			continue
		}
		seen[t] = true

		bitmap := s.index.postings[t]
		if bitmap == nil {
			continue
		}
		df := float64(bitmap.GetCardinality())
		idf := math.Log((N-df+0.5)/(df+0.5) + 1.0)

		for iter := bitmap.Iterator(); iter.HasNext(); {
			docID := iter.Next()
			if docFilter.ShouldSkip(docID) {
				continue
			}
			tfVal := float64(s.index.tf[t][docID])
			scores[docID] += idf * (tfVal * (K1 + 1)) / (tfVal + K1*s.index.norm(docID))
		}
	}

	k := s.k
	if k <= 0 || k > len(scores) {
		k = len(scores)
	}

	h := heapPool.Get().(*resultHeap)
	*h = (*h)[:0]
	defer func() {
		*h = (*h)[:0]
		heapPool.Put(h)
	}()

	for docID, score := range scores {
		hit := ScoredDoc{DocID: docID, Score: score}
		if h.Len() < k {
			heap.Push(h, hit)
		} else if k > 0 && (resultHeap{(*h)[0], hit}).Less(0, 1) {
			heap.Pop(h)
			heap.Push(h, hit)
		}
	}

	results := make([]ScoredDoc, h.Len())
	for i := len(results) - 1; i >= 0; i-- {
		results[i] = heap.Pop(h).(ScoredDoc)
	}
	return results
}
