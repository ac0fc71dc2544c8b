package extension

import (
	"fmt"
	"sort"

	"launcher/internal/manifest"
)

// Registry maps extension names to extensions.
type Registry map[string]Extension

// Names returns the registered names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup finds an extension by name, suggesting a close match when there is none.
func (r Registry) Lookup(name string) (Extension, error) {
	ext, ok := r[name]
	if !ok {
		if s := manifest.Suggest(name, r.Names()); s != "" {
			return Extension{}, fmt.Errorf("unknown extension %q, did you mean %q?", name, s)
		}
		return Extension{}, fmt.Errorf("unknown extension %q", name)
	}
	ext.Name = name
	return ext, nil
}

// All returns every extension with its Name set, sorted by name.
func (r Registry) All() []Extension {
	exts := make([]Extension, 0, len(r))
	for _, name := range r.Names() {
		ext := r[name]
		ext.Name = name
		exts = append(exts, ext)
	}
	return exts
}
