// Package fonts maps (family, weight, style) triples to raw TrueType or
// OpenType font bytes for the shaper. Faces come from a resources.Provider
// or are registered directly; lookup falls back to the nearest registered
// weight within a family, then to the family's any-style face, so a
// document never fails outright over a missing bold or italic variant.
package fonts

import (
	"errors"
	"fmt"
	"sync"

	"github.com/foliopress/paginator/resources"
	"github.com/foliopress/paginator/shaping"
	"github.com/foliopress/paginator/style"
)

// ErrNoFont is returned when no registered face can serve a request.
var ErrNoFont = errors.New("fonts: no registered face")

type faceKey struct {
	family string
	weight uint16
	italic bool
}

// Registry implements shaping.FontSource over registered font files.
type Registry struct {
	mu            sync.RWMutex
	faces         map[faceKey][]byte
	defaultFamily string
}

var _ shaping.FontSource = (*Registry)(nil)

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{faces: map[faceKey][]byte{}}
}

// Register adds one face. The first registered family becomes the default
// fallback for unknown families unless SetDefaultFamily overrides it.
func (r *Registry) Register(family string, weight style.FontWeight, fs style.FontStyle, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.defaultFamily == "" {
		r.defaultFamily = family
	}
	r.faces[faceKey{family, weight.Value(), fs != style.FontNormal}] = data
}

// RegisterFromProvider loads path through the provider and registers it.
func (r *Registry) RegisterFromProvider(p resources.Provider, path, family string, weight style.FontWeight, fs style.FontStyle) error {
	data, err := p.Load(path)
	if err != nil {
		return fmt.Errorf("fonts: register %q from %s: %w", path, p.Name(), err)
	}
	r.Register(family, weight, fs, data)
	return nil
}

// SetDefaultFamily names the family used when a requested family has no
// registered faces at all.
func (r *Registry) SetDefaultFamily(family string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultFamily = family
}

// Font resolves a shaping.FontKey to font bytes: exact match first, then
// the nearest weight in the family at the requested slant, then the
// nearest weight ignoring slant, then the same walk over the default
// family.
func (r *Registry) Font(key shaping.FontKey) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	italic := key.Style != style.FontNormal
	want := key.Weight.Value()

	if data, ok := r.faces[faceKey{key.Family, want, italic}]; ok {
		return data, nil
	}
	if data := r.nearest(key.Family, want, italic); data != nil {
		return data, nil
	}
	if r.defaultFamily != "" && r.defaultFamily != key.Family {
		if data := r.nearest(r.defaultFamily, want, italic); data != nil {
			return data, nil
		}
	}
	return nil, fmt.Errorf("%w: family %q weight %d", ErrNoFont, key.Family, want)
}

// nearest picks the face whose weight is closest to want, preferring the
// requested slant. Caller holds the lock.
func (r *Registry) nearest(family string, want uint16, italic bool) []byte {
	var best []byte
	bestDist := -1
	bestSlantMatch := false
	for k, data := range r.faces {
		if k.family != family {
			continue
		}
		dist := int(k.weight) - int(want)
		if dist < 0 {
			dist = -dist
		}
		slantMatch := k.italic == italic
		better := best == nil ||
			(slantMatch && !bestSlantMatch) ||
			(slantMatch == bestSlantMatch && dist < bestDist)
		if better {
			best, bestDist, bestSlantMatch = data, dist, slantMatch
		}
	}
	return best
}
