// Package anchor records where id-bearing nodes and index terms land
// during layout, so cross-references (ToC entries, page-number links,
// back-of-book indexes) can be resolved after pagination.
package anchor

import "sort"

// Location is the position an id-bearing node's layout began at: the local
// page index within its record plus the y offset on that page.
type Location struct {
	PageIndex int
	Y         float64
}

// IndexEntry is one occurrence of an index term.
type IndexEntry struct {
	PageIndex int
	Y         float64
}

// TocEntry is one heading observed during layout, in document order.
type TocEntry struct {
	Level     int
	Text      string
	ID        string
	PageIndex int
}

// LinkRegion is a hyperlink rectangle emitted during layout whose target is
// an internal anchor, resolved by the consumer once all anchors are known.
type LinkRegion struct {
	PageIndex  int
	X, Y, W, H float64
	TargetID   string
}

// Registry accumulates anchors, index entries, headings, and link regions
// for one record (or, after merging, for the whole document). It is not
// safe for concurrent use; each record's layout owns its own Registry.
type Registry struct {
	anchors  map[string]Location
	index    map[string][]IndexEntry
	headings []TocEntry
	links    []LinkRegion
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		anchors: map[string]Location{},
		index:   map[string][]IndexEntry{},
	}
}

// DefineAnchor records the location of an id. Duplicate ids are permitted;
// only the first definition is used for resolution.
func (r *Registry) DefineAnchor(id string, loc Location) {
	if id == "" {
		return
	}
	if _, exists := r.anchors[id]; exists {
		return
	}
	r.anchors[id] = loc
}

// Anchor looks up the recorded location of an id.
func (r *Registry) Anchor(id string) (Location, bool) {
	loc, ok := r.anchors[id]
	return loc, ok
}

// AddIndexEntry records one occurrence of term.
func (r *Registry) AddIndexEntry(term string, e IndexEntry) {
	if term == "" {
		return
	}
	r.index[term] = append(r.index[term], e)
}

// AddHeading records a heading in flow order for ToC generation.
func (r *Registry) AddHeading(e TocEntry) {
	r.headings = append(r.headings, e)
}

// AddLink records an internal hyperlink rectangle for later resolution.
func (r *Registry) AddLink(l LinkRegion) {
	r.links = append(r.links, l)
}

// Headings returns the recorded headings in flow order.
func (r *Registry) Headings() []TocEntry { return r.headings }

// Links returns the recorded internal link regions.
func (r *Registry) Links() []LinkRegion { return r.links }

// IndexTerms returns the index map. Call Finalize first to sort entries.
func (r *Registry) IndexTerms() map[string][]IndexEntry { return r.index }

// Merge folds other into r, shifting other's page indices by pageOffset.
// The consumer calls this per record in record order, so first-definition
// semantics for duplicate anchors hold document-wide.
func (r *Registry) Merge(other *Registry, pageOffset int) {
	for id, loc := range other.anchors {
		r.DefineAnchor(id, Location{PageIndex: loc.PageIndex + pageOffset, Y: loc.Y})
	}
	for term, entries := range other.index {
		for _, e := range entries {
			r.AddIndexEntry(term, IndexEntry{PageIndex: e.PageIndex + pageOffset, Y: e.Y})
		}
	}
	for _, h := range other.headings {
		h.PageIndex += pageOffset
		r.headings = append(r.headings, h)
	}
	for _, l := range other.links {
		l.PageIndex += pageOffset
		r.links = append(r.links, l)
	}
}

// Finalize sorts index entries by page then y, the order a rendered index
// lists occurrences in.
func (r *Registry) Finalize() {
	for _, entries := range r.index {
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].PageIndex != entries[j].PageIndex {
				return entries[i].PageIndex < entries[j].PageIndex
			}
			return entries[i].Y < entries[j].Y
		})
	}
}
