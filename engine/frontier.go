package engine

import (
	"container/heap"
	"strings"
	"sync"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
	"github.com/bits-and-blooms/bloom/v3"
)

// Frontier is the traversal queue: a priority heap with Bloom-filter URL
// deduplication. Child-category links outrank deep-discovery links, so
// related/accessory pages never block the primary walk.
//
// The Bloom filter may produce false positives, which only means a URL
// is occasionally skipped; product-level deduplication uses exact
// normalization keys and is unaffected.
//
// Frontier is safe for concurrent use.
type Frontier struct {
	mu    sync.Mutex
	seen  *bloom.BloomFilter
	queue *linkHeap
}

// NewFrontier creates a Frontier sized for n expected URLs with the
// given false positive rate.
func NewFrontier(n uint, fpRate float64) *Frontier {
	h := &linkHeap{}
	heap.Init(h)
	return &Frontier{
		seen:  bloom.NewWithEstimates(n, fpRate),
		queue: h,
	}
}

// Push adds a link to the frontier. Returns false if the URL has already
// been seen. Fragments are stripped before deduplication.
func (f *Frontier) Push(link scrapsae.DiscoveredLink) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	url := stripFragment(link.URL)
	if f.seen.TestString(url) {
		return false
	}
	f.seen.AddString(url)

	link.URL = url
	heap.Push(f.queue, link)
	return true
}

// Pop returns the next link by priority.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (scrapsae.DiscoveredLink, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.queue.Len() == 0 {
		return scrapsae.DiscoveredLink{}, false
	}
	link, _ := heap.Pop(f.queue).(scrapsae.DiscoveredLink)
	return link, true
}

// Len returns the number of queued links.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queue.Len()
}

// Seen returns true if the URL has been queued or visited.
func (f *Frontier) Seen(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.TestString(stripFragment(rawURL))
}

// MarkSeen records a URL as visited without queuing it.
func (f *Frontier) MarkSeen(rawURL string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen.AddString(stripFragment(rawURL))
}

func stripFragment(url string) string {
	if idx := strings.Index(url, "#"); idx != -1 {
		return url[:idx]
	}
	return url
}

// linkHeap implements heap.Interface for a DiscoveredLink max-heap.
type linkHeap []scrapsae.DiscoveredLink

func (h linkHeap) Len() int { return len(h) }

// Less returns true if i has higher priority than j; ties prefer the
// shallower link so the primary walk stays breadth-leaning.
func (h linkHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority > h[j].Priority
	}
	return h[i].Depth < h[j].Depth
}

func (h linkHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *linkHeap) Push(x any) {
	link, _ := x.(scrapsae.DiscoveredLink)
	*h = append(*h, link)
}

func (h *linkHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}
