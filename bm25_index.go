// Package facet implements a BM25-based full-text index used to restrict
// searches by a free-text query.
//
// HOW BM25 WORKS:
// For a query Q with terms {t1, ..., tn} and a document D:
//  1. Query and document are NFKC-normalized, lowercased and split into
//     words with UAX#29 segmentation
//  2. For each query term:
//     - IDF: log((N - df + 0.5) / (df + 0.5) + 1) where N is the number of
//     documents and df the number containing the term
//     - TF component: (tf * (k1 + 1)) / (tf + k1 * (1 - b + b * (docLen / avgDocLen)))
//  3. The score is the sum of IDF × TF over the query terms
//
// LENGTH NORMS:
// The denominator's length factor (1 - b + b * docLen/avgDocLen) only changes
// when documents are added or removed. Compact freezes it per document as a
// half-precision float, halving the per-document memory of the norm table and
// sparing the division at query time. Any later Add or Remove drops the
// frozen norms again.
//
// KEY PARAMETERS:
//   - K1 (1.2): term frequency saturation
//   - B (0.75): document length normalization
package facet

import (
	"container/heap"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"

	"github.com/RoaringBitmap/roaring"
	"github.com/clipperhouse/uax29/v2/words"
	"github.com/x448/float16"
	"golang.org/x/text/unicode/norm"
)

// BM25 parameters for ranking
const (
	// K1 controls term frequency saturation (typical range: 1.2-2.0)
	K1 = 1.2
	// B controls document length normalization (0 = no normalization, 1 = full normalization)
	B = 0.75
)

// heapPool is a sync.Pool for resultHeap to reduce allocations during search operations
var heapPool = sync.Pool{
	New: func() interface{} {
		h := &resultHeap{}
		heap.Init(h)
		return h
	},
}

// BM25Index is an inverted index over item text ranked with BM25.
// All methods are safe for concurrent use by multiple goroutines.
//
// The index keeps tokens, not text: callers keep their own item store and
// resolve the returned ids.
type BM25Index struct {
	mu sync.RWMutex // protects all fields except numDocs

	// inverted index: term -> docIDs
	postings map[string]*roaring.Bitmap
	// term frequencies: term -> docID -> tf
	tf map[string]map[uint32]int
	// docID -> number of tokens
	docLengths map[uint32]int
	// total number of docs (uses atomic operations for lock-free reads)
	numDocs atomic.Uint32
	// running total of all token counts for O(1) average calculation
	totalTokens int
	// average doc length
	avgDocLen float64
	// store tokens per document for removal
	docTokens map[uint32][]string
	// frozen length factors as float16 bits; nil until Compact
	norms map[uint32]uint16
}

// ScoredDoc is a single ranked hit.
type ScoredDoc struct {
	DocID uint32  // Document ID
	Score float64 // BM25 relevance score
}

// NewBM25Index creates and returns a new empty BM25Index.
//
// Example:
//
//	idx := NewBM25Index()
//	idx.Add(1, "the quick brown fox")
//	hits := idx.NewSearch().WithQuery("fox").WithK(10).Execute()
func NewBM25Index() *BM25Index {
	return &BM25Index{
		postings:   make(map[string]*roaring.Bitmap),
		tf:         make(map[string]map[uint32]int),
		docLengths: make(map[uint32]int),
		docTokens:  make(map[uint32][]string),
	}
}

// normalize applies Unicode normalization (NFKC) and converts to lowercase.
func normalize(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}

// tokenize splits text into word tokens using UAX#29 word segmentation.
// Segments made only of spaces or punctuation are dropped.
func tokenize(s string) []string {
	toks := words.FromString(s)
	var tokens []string
	for toks.Next() {
		tok := toks.Value()
		if isWordToken(tok) {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

func isWordToken(tok string) bool {
	for _, r := range tok {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// Add indexes a document with the given docID and text. A document with the
// same ID is replaced.
//
// Time Complexity: O(m) where m is the number of tokens in the text
//
// Thread-safety: Acquires exclusive lock
func (ix *BM25Index) Add(id uint32, text string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, exists := ix.docTokens[id]; exists {
		ix.removeInternal(id)
	}

	tokens := tokenize(normalize(text))
	docLen := len(tokens)

	ix.docTokens[id] = tokens
	ix.docLengths[id] = docLen
	ix.numDocs.Add(1)
	ix.totalTokens += docLen

	for _, t := range tokens {
		if ix.postings[t] == nil {
			ix.postings[t] = roaring.New()
		}
		ix.postings[t].Add(id)
		if ix.tf[t] == nil {
			ix.tf[t] = make(map[uint32]int)
		}
		ix.tf[t][id]++
	}

	ix.updateAvgDocLen()
	ix.norms = nil
}

// Remove removes a document from the index.
//
// Thread-safety: Acquires exclusive lock
func (ix *BM25Index) Remove(id uint32) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.removeInternal(id) {
		ix.norms = nil
	}
}

// removeInternal removes a document without acquiring the lock.
// Must be called with ix.mu held.
func (ix *BM25Index) removeInternal(id uint32) bool {
	tokens, exists := ix.docTokens[id]
	if !exists {
		return false
	}

	docLen := ix.docLengths[id]

	for _, t := range tokens {
		if bitmap := ix.postings[t]; bitmap != nil {
			bitmap.Remove(id)
			if bitmap.IsEmpty() {
				delete(ix.postings, t)
			}
		}
		if tfMap := ix.tf[t]; tfMap != nil {
			delete(tfMap, id)
			if len(tfMap) == 0 {
				delete(ix.tf, t)
			}
		}
	}

	delete(ix.docTokens, id)
	delete(ix.docLengths, id)
	ix.numDocs.Add(^uint32(0)) // Atomic decrement (add -1)
	ix.totalTokens -= docLen

	if ix.numDocs.Load() > 0 {
		ix.updateAvgDocLen()
	} else {
		ix.avgDocLen = 0
		ix.totalTokens = 0
	}
	return true
}

// updateAvgDocLen recalculates the average document length.
// Must be called with ix.mu held.
func (ix *BM25Index) updateAvgDocLen() {
	numDocs := ix.numDocs.Load()
	if numDocs == 0 {
		ix.avgDocLen = 0
		return
	}
	ix.avgDocLen = float64(ix.totalTokens) / float64(numDocs)
}

// Compact freezes the per-document length factors as float16 values. Call
// it once all documents are added.
//
// Thread-safety: Acquires exclusive lock
func (ix *BM25Index) Compact() {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	norms := make(map[uint32]uint16, len(ix.docLengths))
	for id := range ix.docLengths {
		norms[id] = float16.Fromfloat32(float32(ix.lengthFactor(id))).Bits()
	}
	ix.norms = norms
}

// lengthFactor returns 1 - b + b * docLen/avgDocLen for a document.
// Must be called with ix.mu held.
func (ix *BM25Index) lengthFactor(id uint32) float64 {
	if ix.avgDocLen == 0 {
		return 1
	}
	return 1 - B + B*(float64(ix.docLengths[id])/ix.avgDocLen)
}

// norm returns the frozen length factor when available, the exact one
// otherwise.
// Must be called with ix.mu held.
func (ix *BM25Index) norm(id uint32) float64 {
	if bits, ok := ix.norms[id]; ok {
		return float64(float16.Frombits(bits).Float32())
	}
	return ix.lengthFactor(id)
}

// Len returns the number of indexed documents.
func (ix *BM25Index) Len() int {
	return int(ix.numDocs.Load())
}

// resultHeap is a min-heap of ScoredDocs for efficient top-K retrieval.
// The root is the weakest hit: lowest score, then highest id.
type resultHeap []ScoredDoc

func (h resultHeap) Len() int { return len(h) }
func (h resultHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[i].DocID > h[j].DocID
}
func (h resultHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *resultHeap) Push(x interface{}) {
	*h = append(*h, x.(ScoredDoc))
}

func (h *resultHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}
