// Package iconset holds the icon library: vector icons grouped into
// sub-packages ("bi", "fa", ...) that are loaded as whole modules.
package iconset

import (
	"sort"
	"strings"
)

// Icon is one exported vector icon.
type Icon struct {
	Name   string
	Markup []byte
}

// Module is a loaded sub-package. Named holds direct named exports; Default
// holds the properties of the module's default export, which some bundles
// use instead of (or next to) named exports.
type Module struct {
	Path    string
	Named   map[string]Icon
	Default map[string]Icon
}

// NewModule returns an empty module for path.
func NewModule(path string) *Module {
	return &Module{
		Path:  path,
		Named: make(map[string]Icon),
	}
}

// Lookup searches the named exports first, then the default export.
func (m *Module) Lookup(symbol string) (Icon, bool) {
	if m == nil {
		return Icon{}, false
	}
	if icon, ok := m.Named[symbol]; ok {
		return icon, true
	}
	if icon, ok := m.Default[symbol]; ok {
		return icon, true
	}
	return Icon{}, false
}

// Symbols returns every symbol the module can resolve, sorted.
func (m *Module) Symbols() []string {
	if m == nil {
		return nil
	}
	seen := make(map[string]bool, len(m.Named)+len(m.Default))
	var out []string
	for _, set := range []map[string]Icon{m.Named, m.Default} {
		for name := range set {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Len reports the number of distinct symbols.
func (m *Module) Len() int {
	return len(m.Symbols())
}

// merge copies src's exports into m; existing names win.
func (m *Module) merge(src *Module) {
	for name, icon := range src.Named {
		if _, ok := m.Named[name]; !ok {
			m.Named[name] = icon
		}
	}
	for name, icon := range src.Default {
		if _, ok := m.Named[name]; !ok {
			m.Named[name] = icon
		}
	}
}

// symbolFromFile turns "BiHome.svg" into "BiHome".
func symbolFromFile(name string) (string, bool) {
	if !strings.HasSuffix(strings.ToLower(name), ".svg") {
		return "", false
	}
	symbol := name[:len(name)-len(".svg")]
	if symbol == "" {
		return "", false
	}
	return symbol, true
}
