package iconset

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
)

//go:embed packs
var packsFS embed.FS

// Root is the name of the bundled icon library.
const Root = "react-icons"

// Keys lists the sub-packages compiled into the binary.
func Keys() []string {
	entries, err := fs.ReadDir(packsFS, "packs")
	if err != nil {
		return nil
	}
	var keys []string
	for _, e := range entries {
		if e.IsDir() {
			keys = append(keys, e.Name())
		}
	}
	sort.Strings(keys)
	return keys
}

// LoadEmbedded loads one compiled-in sub-package by key.
func LoadEmbedded(key string) (*Module, error) {
	mod, err := ReadDir(packsFS, path.Join("packs", key), Root+"/"+key)
	if err != nil {
		return nil, fmt.Errorf("embedded pack %q: %w", key, err)
	}
	return mod, nil
}

// Aggregate merges every compiled-in sub-package into one module, the
// equivalent of importing the library root.
func Aggregate() (*Module, error) {
	agg := NewModule(Root)
	for _, key := range Keys() {
		mod, err := LoadEmbedded(key)
		if err != nil {
			return nil, err
		}
		agg.merge(mod)
	}
	if len(agg.Named) == 0 {
		return nil, fmt.Errorf("no embedded packs")
	}
	return agg, nil
}
