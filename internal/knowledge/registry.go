package knowledge

import (
	"sort"
	"strings"
)

// buildRegistry unions the evidence herb keys, the interaction profile
// keys, and the supplemental registry list into one scannable set.
func (b *Base) buildRegistry(extra []string) {
	b.registry = make(map[string]struct{})
	for k := range b.evidence {
		b.registry[k.herb] = struct{}{}
	}
	for h := range b.interactions {
		b.registry[h] = struct{}{}
	}
	for _, h := range extra {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			b.registry[h] = struct{}{}
		}
	}
	b.herbNames = make([]string, 0, len(b.registry))
	for h := range b.registry {
		b.herbNames = append(b.herbNames, h)
	}
	sort.Strings(b.herbNames)
}

// IsKnownHerb reports whether name is in the herb registry
func (b *Base) IsKnownHerb(name string) bool {
	_, ok := b.registry[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// KnownHerbs returns every registry name in sorted order
func (b *Base) KnownHerbs() []string {
	out := make([]string, len(b.herbNames))
	copy(out, b.herbNames)
	return out
}
