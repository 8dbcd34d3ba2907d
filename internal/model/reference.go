package model

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Size bounds for exported rasters.
const (
	MinSizePx     = 8
	MaxSizePx     = 4096
	DefaultSizePx = 1080
	PreviewSizePx = 160
)

// DefaultFillColor is used when no colour has been picked yet.
const DefaultFillColor = "#000000"

// Reference identifies one icon: the normalized package path
// ("react-icons/bi") and the exported symbol ("BiAddToQueue").
type Reference struct {
	PackagePath string `json:"packagePath"`
	SymbolName  string `json:"symbolName"`
}

// Complete reports whether both halves of the reference are set.
func (r Reference) Complete() bool {
	return strings.TrimSpace(r.PackagePath) != "" && strings.TrimSpace(r.SymbolName) != ""
}

func (r Reference) String() string {
	return r.PackagePath + "#" + r.SymbolName
}

// ExportRequest carries the user-configurable render parameters.
type ExportRequest struct {
	SizePx    int    `json:"size"`
	FillColor string `json:"color,omitempty"`
}

// Normalize clamps the size into [MinSizePx, MaxSizePx] and rewrites the
// colour as lowercase #rrggbb. An empty colour stays empty.
func (r ExportRequest) Normalize() (ExportRequest, error) {
	out := r
	out.SizePx = ClampSize(r.SizePx)
	if strings.TrimSpace(r.FillColor) == "" {
		out.FillColor = ""
		return out, nil
	}
	c, err := NormalizeColor(r.FillColor)
	if err != nil {
		return r, err
	}
	out.FillColor = c
	return out, nil
}

// ClampSize forces size into the supported range.
func ClampSize(size int) int {
	if size < MinSizePx {
		return MinSizePx
	}
	if size > MaxSizePx {
		return MaxSizePx
	}
	return size
}

// NormalizeColor accepts #rgb or #rrggbb (with or without the leading #)
// and returns lowercase #rrggbb.
func NormalizeColor(value string) (string, error) {
	v := strings.TrimSpace(value)
	if !strings.HasPrefix(v, "#") {
		v = "#" + v
	}
	c, err := colorful.Hex(strings.ToLower(v))
	if err != nil {
		return "", fmt.Errorf("invalid colour %q: %w", value, err)
	}
	return c.Hex(), nil
}

// Prefs are the user's last-used field values. They are stored as plain
// strings and restored once at startup.
type Prefs struct {
	ImportLine  string
	PackagePath string
	SymbolName  string
	FillColor   string
}
