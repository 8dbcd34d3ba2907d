package resolve

import (
	"strings"
)

// Library defines the naming convention of an icon library.
type Library interface {
	// Root is the package name of the library itself, e.g. "react-icons".
	Root() string
	// Prefixes are the short collection names a bare sub-package path may
	// start with ("fa", "md", ...).
	Prefixes() []string
	Name() string
}

// ReactIcons implements Library for react-icons.
type ReactIcons struct{}

func (l *ReactIcons) Root() string {
	return "react-icons"
}

func (l *ReactIcons) Prefixes() []string {
	return []string{"fa", "ai", "md", "ri", "hi", "bi", "bs", "cg", "gi"}
}

func (l *ReactIcons) Name() string {
	return "react-icons"
}

// DefaultLibrary returns the library iconpng ships with.
func DefaultLibrary() Library {
	return &ReactIcons{}
}

// containsRoot reports whether path mentions the library root, ignoring case.
func containsRoot(lib Library, path string) bool {
	return strings.Contains(strings.ToLower(path), strings.ToLower(lib.Root()))
}

// MatchesConvention reports whether a default-import path looks like one of
// the library's packages: it names the root or starts with a known prefix.
func MatchesConvention(lib Library, path string) bool {
	if containsRoot(lib, path) {
		return true
	}
	lower := strings.ToLower(strings.TrimSpace(path))
	for _, prefix := range lib.Prefixes() {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// Normalize returns the canonical "<root>/<subpackage>" form of path. A path
// that already names the root is returned unchanged.
func Normalize(lib Library, path string) string {
	path = strings.TrimSpace(path)
	if containsRoot(lib, path) {
		return path
	}
	return lib.Root() + "/" + strings.TrimPrefix(path, "/")
}

// Key derives the lookup key of a package path: its last segment, lowercased,
// keeping only letters, digits, '-' and '_'.
func Key(packagePath string) string {
	seg := packagePath
	if i := strings.LastIndex(seg, "/"); i >= 0 {
		seg = seg[i+1:]
	}
	var b strings.Builder
	for _, r := range strings.ToLower(seg) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
