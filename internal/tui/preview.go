package tui

import (
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
)

// halfBlocks renders img as cols x cols/2 terminal cells. Each cell shows
// two vertically stacked pixels using the upper half block glyph, with the
// foreground as the top pixel and the background as the bottom one.
func halfBlocks(img image.Image, cols int) string {
	if img == nil || cols <= 0 {
		return ""
	}
	rows := cols
	if rows%2 == 1 {
		rows++
	}
	dst := image.NewRGBA(image.Rect(0, 0, cols, rows))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

	var b strings.Builder
	for y := 0; y < rows; y += 2 {
		for x := 0; x < cols; x++ {
			b.WriteString(cell(dst.RGBAAt(x, y), dst.RGBAAt(x, y+1)))
		}
		if y+2 < rows {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func cell(top, bottom color.RGBA) string {
	topHex, topOK := hexOf(top)
	bottomHex, bottomOK := hexOf(bottom)
	switch {
	case topOK && bottomOK:
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color(topHex)).
			Background(lipgloss.Color(bottomHex)).
			Render("▀")
	case topOK:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(topHex)).Render("▀")
	case bottomOK:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(bottomHex)).Render("▄")
	default:
		return " "
	}
}

// hexOf reports the colour of a mostly opaque pixel. Faint pixels count as
// transparent so antialiased edges do not smear the terminal background.
func hexOf(c color.RGBA) (string, bool) {
	if c.A < 96 {
		return "", false
	}
	// Undo premultiplication before converting.
	un := color.NRGBAModel.Convert(c).(color.NRGBA)
	un.A = 255
	cf, ok := colorful.MakeColor(un)
	if !ok {
		return "", false
	}
	return cf.Hex(), true
}
