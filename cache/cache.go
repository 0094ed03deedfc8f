// Package cache implements the two measurement-cache tiers: a process-wide
// shape cache holding shaped-run sequences keyed by span content and style,
// and a per-layout-pass cache of derived measurements (paragraph line sets,
// table column solutions) keyed by node identity and rounded width. Neither
// tier is load-bearing for correctness; both may be cleared at any time.
package cache

import (
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/foliopress/paginator/shaping"
	"github.com/foliopress/paginator/style"
)

// Span pairs one run of source text with its resolved style, the unit of
// shape-cache keying.
type Span struct {
	Text  string
	Style *style.ComputedStyle
}

// SpanKey derives the shape-cache key for a span sequence. Styles are
// fingerprinted by value, so two distinct pointers to equal styles share a
// key.
func SpanKey(spans []Span) string {
	h := fnv.New64a()
	for _, s := range spans {
		fmt.Fprintf(h, "%d:%s|", len(s.Text), s.Text)
		if s.Style != nil {
			fmt.Fprintf(h, "%v|", *s.Style)
		}
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// ShapeCache is the process-global cache of shaped runs, shared across
// records and workers behind a single lock. Writers typically insert once
// per distinct (text, style) pair, so contention stays low.
type ShapeCache struct {
	mu      sync.Mutex
	entries map[string][]shaping.ShapedRun
}

// NewShapeCache constructs an empty shape cache.
func NewShapeCache() *ShapeCache {
	return &ShapeCache{entries: map[string][]shaping.ShapedRun{}}
}

// Get returns the cached runs for key, if present.
func (c *ShapeCache) Get(key string) ([]shaping.ShapedRun, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	runs, ok := c.entries[key]
	return runs, ok
}

// Put stores runs under key. Existing entries are overwritten; shaping is
// deterministic so the value is identical either way.
func (c *ShapeCache) Put(key string, runs []shaping.ShapedRun) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = runs
}

// Clear drops every entry.
func (c *ShapeCache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string][]shaping.ShapedRun{}
}

// Domain tags a layout-cache entry's payload kind, so a node can cache
// several derived measurements under one identity without collisions.
type Domain uint8

const (
	DomainShape     Domain = 1
	DomainParagraph Domain = 2
	DomainTable     Domain = 3
)

// perNodeCap bounds entries kept per (node, domain); beyond it the oldest
// entry is evicted FIFO. Break/resume cycles re-measure at the same one or
// two widths, so a small cap captures nearly all hits.
const perNodeCap = 4

type layoutKey struct {
	node   uint64
	domain Domain
	width  int
}

// LayoutCache is the per-layout-pass measurement cache held in the layout
// context. Keys combine a node identity, a Domain tag, and a width rounded
// to whole points.
type LayoutCache struct {
	mu      sync.Mutex
	entries map[layoutKey]any
	order   map[uint64][]layoutKey // insertion order per (node, domain) pair
}

// NewLayoutCache constructs an empty layout cache.
func NewLayoutCache() *LayoutCache {
	return &LayoutCache{
		entries: map[layoutKey]any{},
		order:   map[uint64][]layoutKey{},
	}
}

func fifoKey(node uint64, domain Domain) uint64 {
	return node<<8 | uint64(domain)
}

// RoundWidth quantizes a width to the cache's key granularity.
func RoundWidth(w float64) int {
	return int(w + 0.5)
}

// Get returns the payload cached for (node, domain, width), if any.
func (c *LayoutCache) Get(node uint64, domain Domain, width int) (any, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[layoutKey{node, domain, width}]
	return v, ok
}

// Put stores a payload for (node, domain, width), evicting the oldest entry
// for that node/domain pair once the per-node cap is exceeded.
func (c *LayoutCache) Put(node uint64, domain Domain, width int, payload any) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	key := layoutKey{node, domain, width}
	if _, exists := c.entries[key]; exists {
		c.entries[key] = payload
		return
	}
	fk := fifoKey(node, domain)
	queue := c.order[fk]
	if len(queue) >= perNodeCap {
		oldest := queue[0]
		queue = queue[1:]
		delete(c.entries, oldest)
	}
	c.order[fk] = append(queue, key)
	c.entries[key] = payload
}

// Clear drops every entry.
func (c *LayoutCache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[layoutKey]any{}
	c.order = map[uint64][]layoutKey{}
}
