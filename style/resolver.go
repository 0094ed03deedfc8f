package style

import "fmt"

// Stylesheet holds the named style sets a document's nodes reference by
// name.
type Stylesheet struct {
	sets map[string]*Props
}

// NewStylesheet builds a Stylesheet from named sets.
func NewStylesheet(sets map[string]*Props) *Stylesheet {
	if sets == nil {
		sets = map[string]*Props{}
	}
	return &Stylesheet{sets: sets}
}

// Set returns the named style set, if registered.
func (s *Stylesheet) Set(name string) (*Props, bool) {
	p, ok := s.sets[name]
	return p, ok
}

// Validate walks every name referenced and reports every unknown set in
// one pass rather than failing on the first, so front ends can surface all
// problems before a full render. Resolve itself still fails fast per-node.
func (s *Stylesheet) Validate(referencedNames [][]string) error {
	var unknown []string
	seen := map[string]bool{}
	for _, refs := range referencedNames {
		for _, name := range refs {
			if _, ok := s.sets[name]; !ok && !seen[name] {
				seen[name] = true
				unknown = append(unknown, name)
			}
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%w: %v", ErrUnknownStyleSet, unknown)
	}
	return nil
}

// Cache deduplicates ComputedStyle values so that nodes with identical
// resolved styles share one *ComputedStyle. ComputedStyle is a plain
// comparable struct, so the struct value itself serves as the map key.
type Cache struct {
	entries map[ComputedStyle]*ComputedStyle
}

// NewCache constructs an empty dedup cache. The cache is never required
// for correctness, only to avoid re-allocating identical styles.
func NewCache() *Cache {
	return &Cache{entries: map[ComputedStyle]*ComputedStyle{}}
}

func (c *Cache) intern(cs ComputedStyle) *ComputedStyle {
	if c == nil {
		v := cs
		return &v
	}
	if existing, ok := c.entries[cs]; ok {
		return existing
	}
	v := cs
	c.entries[cs] = &v
	return &v
}

// Resolver merges a Stylesheet's named sets, in order, then an inline
// override, onto a parent's inherited properties.
type Resolver struct {
	sheet *Stylesheet
	cache *Cache
}

// NewResolver constructs a Resolver over the given stylesheet. cache may be
// nil to disable deduplication.
func NewResolver(sheet *Stylesheet, cache *Cache) *Resolver {
	if sheet == nil {
		sheet = NewStylesheet(nil)
	}
	return &Resolver{sheet: sheet, cache: cache}
}

// Resolve computes the ComputedStyle for a node: parent-inherited fields,
// then each named style set in order (later wins), then the inline
// override, then line-height finalization. Each layer expands its own
// border shorthand before applying its own per-side borders.
func (r *Resolver) Resolve(parent *ComputedStyle, styleRefs []string, inline *Props) (*ComputedStyle, error) {
	cs := inheritedFrom(parent)

	for _, name := range styleRefs {
		set, ok := r.sheet.sets[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStyleSet, name)
		}
		set.apply(&cs)
	}
	inline.apply(&cs)

	if !cs.lineHeightSet {
		cs.LineHeight = cs.FontSize * 1.2
	}

	return r.cache.intern(cs), nil
}
