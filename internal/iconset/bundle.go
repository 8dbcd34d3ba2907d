package iconset

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// bundle is the on-disk form of a single-file sub-package:
//
//	exports:
//	  BiHome: "<svg ...>...</svg>"
//	default:
//	  BiStar: "<svg ...>...</svg>"
type bundle struct {
	Exports map[string]string `json:"exports" yaml:"exports"`
	Default map[string]string `json:"default" yaml:"default"`
}

// BundleExts are the file extensions accepted for single-file bundles, in
// lookup order.
var BundleExts = []string{".json", ".yaml", ".yml"}

// DecodeBundle parses a .json/.yaml/.yml bundle into a module.
func DecodeBundle(modPath, filename string, data []byte) (*Module, error) {
	var b bundle
	switch strings.ToLower(path.Ext(filename)) {
	case ".json":
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("parse bundle %s: %w", filename, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("parse bundle %s: %w", filename, err)
		}
	default:
		return nil, fmt.Errorf("unsupported bundle format %q", filename)
	}

	mod := NewModule(modPath)
	for name, markup := range b.Exports {
		mod.Named[name] = Icon{Name: name, Markup: []byte(markup)}
	}
	if len(b.Default) > 0 {
		mod.Default = make(map[string]Icon, len(b.Default))
		for name, markup := range b.Default {
			mod.Default[name] = Icon{Name: name, Markup: []byte(markup)}
		}
	}
	if mod.Len() == 0 {
		return nil, fmt.Errorf("bundle %s exports no icons", filename)
	}
	return mod, nil
}

// ReadDir loads a directory of <Symbol>.svg files as a module.
func ReadDir(fsys fs.FS, dir, modPath string) (*Module, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	mod := NewModule(modPath)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		symbol, ok := symbolFromFile(e.Name())
		if !ok {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		mod.Named[symbol] = Icon{Name: symbol, Markup: data}
	}
	if len(mod.Named) == 0 {
		return nil, fmt.Errorf("%s contains no .svg icons", dir)
	}
	return mod, nil
}
