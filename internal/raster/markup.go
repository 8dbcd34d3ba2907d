// Package raster turns a resolved icon into a square PNG: it rewrites the
// icon's markup for the requested size and colour, rasterizes it with oksvg
// and hands the encoded file to a Sink.
package raster

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"iconpng/internal/model"
)

const svgNamespace = "http://www.w3.org/2000/svg"

// fallbackViewBox is used when the root has neither a viewBox nor numeric
// width and height. Every bundled pack draws on a 24 unit grid.
const fallbackViewBox = "0 0 24 24"

// FillMode selects how the fill colour is applied.
type FillMode string

const (
	// FillUniform sets fill on every element below the root.
	FillUniform FillMode = "uniform"
	// FillNative keeps the icon's own fills.
	FillNative FillMode = "native"
)

var currentColorRe = regexp.MustCompile(`(?i)currentcolor`)

// Style is what Rewrite applies to a copy of the markup.
type Style struct {
	SizePx int
	Color  string
	Mode   FillMode
}

// Rewrite locates the first <svg> element in markup and returns a rewritten
// copy of that element: explicit width and height, a viewBox, the fill
// colour and the SVG namespace. markup itself is not modified.
func Rewrite(markup []byte, st Style) ([]byte, error) {
	d := xml.NewDecoder(bytes.NewReader(markup))
	var out bytes.Buffer
	depth := 0
	found := false

	for {
		tok, err := d.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if !found {
				return nil, model.Wrap(model.KindExport, err, "no SVG found")
			}
			return nil, model.Wrap(model.KindExport, err, "failed to load SVG as image")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !found {
				if t.Name.Local != "svg" {
					continue
				}
				found = true
				t = sizeRoot(t, st.SizePx)
			} else if st.Mode == FillUniform {
				t = setAttr(t, "fill", st.Color)
			}
			depth++
			writeStart(&out, replaceCurrentColor(t, st.Color))
		case xml.EndElement:
			if !found {
				continue
			}
			depth--
			writeEnd(&out, t)
		case xml.CharData:
			if found {
				if err := xml.EscapeText(&out, t); err != nil {
					return nil, model.Wrap(model.KindExport, err, "failed to load SVG as image")
				}
			}
		case xml.Comment:
			if found {
				out.WriteString("<!--")
				out.Write(t)
				out.WriteString("-->")
			}
		}

		if found && depth == 0 {
			break
		}
	}

	if !found {
		return nil, model.Errorf(model.KindExport, "no SVG found")
	}
	if depth != 0 {
		return nil, model.Errorf(model.KindExport, "failed to load SVG as image")
	}
	return EnsureNamespace(out.Bytes()), nil
}

// EnsureNamespace injects the SVG namespace into the opening <svg> tag of a
// serialized document that does not declare it.
func EnsureNamespace(markup []byte) []byte {
	start := bytes.Index(markup, []byte("<svg"))
	if start < 0 {
		return markup
	}
	end := bytes.IndexByte(markup[start:], '>')
	if end < 0 {
		return markup
	}
	if bytes.Contains(markup[start:start+end], []byte("xmlns=")) {
		return markup
	}
	insert := []byte(` xmlns="` + svgNamespace + `"`)
	at := start + len("<svg")
	out := make([]byte, 0, len(markup)+len(insert))
	out = append(out, markup[:at]...)
	out = append(out, insert...)
	return append(out, markup[at:]...)
}

// sizeRoot sets width and height to size and makes sure a viewBox exists so
// the icon scales instead of being cropped.
func sizeRoot(t xml.StartElement, size int) xml.StartElement {
	if v, ok := getAttr(t, "viewBox"); !ok || strings.TrimSpace(v) == "" {
		vb := fallbackViewBox
		w, okW := parseLength(attrValue(t, "width"))
		h, okH := parseLength(attrValue(t, "height"))
		if okW && okH {
			vb = "0 0 " + formatNum(w) + " " + formatNum(h)
		}
		t = setAttr(t, "viewBox", vb)
	}
	px := strconv.Itoa(size)
	t = setAttr(t, "width", px)
	return setAttr(t, "height", px)
}

func replaceCurrentColor(t xml.StartElement, color string) xml.StartElement {
	if color == "" {
		return t
	}
	for i, a := range t.Attr {
		if currentColorRe.MatchString(a.Value) {
			t.Attr[i].Value = currentColorRe.ReplaceAllLiteralString(a.Value, color)
		}
	}
	return t
}

// getAttr matches unprefixed attribute names; viewBox is matched without
// regard to case since hand-written markup often gets it wrong.
func getAttr(t xml.StartElement, name string) (string, bool) {
	for _, a := range t.Attr {
		if a.Name.Space == "" && strings.EqualFold(a.Name.Local, name) {
			return a.Value, true
		}
	}
	return "", false
}

func attrValue(t xml.StartElement, name string) string {
	v, _ := getAttr(t, name)
	return v
}

// setAttr returns t with name set to value. The attribute slice is copied so
// tokens never share backing arrays.
func setAttr(t xml.StartElement, name, value string) xml.StartElement {
	attrs := make([]xml.Attr, 0, len(t.Attr)+1)
	replaced := false
	for _, a := range t.Attr {
		if a.Name.Space == "" && strings.EqualFold(a.Name.Local, name) {
			if replaced {
				continue
			}
			a = xml.Attr{Name: xml.Name{Local: name}, Value: value}
			replaced = true
		}
		attrs = append(attrs, a)
	}
	if !replaced {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
	}
	t.Attr = attrs
	return t
}

func parseLength(v string) (float64, bool) {
	v = strings.TrimSuffix(strings.TrimSpace(v), "px")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return 0, false
	}
	return f, true
}

func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func writeStart(w *bytes.Buffer, t xml.StartElement) {
	w.WriteByte('<')
	w.WriteString(qualified(t.Name))
	for _, a := range t.Attr {
		fmt.Fprintf(w, ` %s="`, qualified(a.Name))
		_ = xml.EscapeText(w, []byte(a.Value))
		w.WriteByte('"')
	}
	w.WriteByte('>')
}

func writeEnd(w *bytes.Buffer, t xml.EndElement) {
	w.WriteString("</")
	w.WriteString(qualified(t.Name))
	w.WriteByte('>')
}
