package resolve

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"iconpng/internal/iconset"
)

// DirLoader is the best-effort dynamic tier: it loads a sub-package from a
// directory tree laid out by package path, e.g.
//
//	<root>/react-icons/bi/BiHome.svg
//	<root>/react-icons/pi.json
//	<root>/react-icons/tabler.yaml
//
// A directory of .svg files wins over a bundle file with the same path.
type DirLoader struct {
	fsys fs.FS
	desc string
}

// NewDirLoader returns a loader rooted at dir, or nil when dir is empty or
// does not exist; a nil loader simply skips the dynamic tier.
func NewDirLoader(dir string) *DirLoader {
	if dir == "" {
		return nil
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil
	}
	return &DirLoader{fsys: os.DirFS(dir), desc: dir}
}

// NewFSLoader returns a loader over an arbitrary filesystem.
func NewFSLoader(fsys fs.FS) *DirLoader {
	return &DirLoader{fsys: fsys, desc: "fs"}
}

// Load reads the module for packagePath.
func (l *DirLoader) Load(ctx context.Context, packagePath string) (*iconset.Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel := path.Clean(strings.TrimPrefix(strings.TrimSpace(packagePath), "/"))
	if !fs.ValidPath(rel) || rel == "." {
		return nil, fmt.Errorf("invalid package path %q", packagePath)
	}

	if info, err := fs.Stat(l.fsys, rel); err == nil && info.IsDir() {
		return iconset.ReadDir(l.fsys, rel, packagePath)
	}

	for _, ext := range iconset.BundleExts {
		data, err := fs.ReadFile(l.fsys, rel+ext)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		return iconset.DecodeBundle(packagePath, rel+ext, data)
	}
	return nil, fmt.Errorf("%s: no icons at %s: %w", l.desc, rel, fs.ErrNotExist)
}
