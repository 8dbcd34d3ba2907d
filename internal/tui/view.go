package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"iconpng/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Width(11).
			Foreground(lipgloss.Color("240")) // Grey

	activeLabelStyle = lipgloss.NewStyle().
				Width(11).
				Foreground(lipgloss.Color("205")). // Pinkish
				Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208")) // Orange

	okStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")). // Sky Blue/Cyan
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("63"))
)

func (m AppModel) View() string {
	if m.ShowHelp {
		return m.renderHelpDialog()
	}

	var form strings.Builder
	form.WriteString(titleStyle.Render("Icon → PNG"))
	form.WriteString("\n\n")
	for f := Field(0); f < fieldCount; f++ {
		label := labelStyle
		marker := "  "
		if f == m.Focus {
			label = activeLabelStyle
			marker = "> "
		}
		form.WriteString(marker + label.Render(fieldLabels[f]) + m.Inputs[f].View())
		form.WriteString("\n")
		if f == FieldImport {
			form.WriteString("\n")
		}
	}
	form.WriteString("\n")
	form.WriteString(m.statusLine())

	left := panelStyle.Width(66).Render(form.String())
	right := panelStyle.Render(m.previewPanel())

	help := "Tab/↑/↓: Move • Enter: Parse import • Ctrl+S: Export PNG • F1: Help • Esc: Quit"
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right) + "\n" + dimStyle.Render(help)
}

func (m AppModel) previewPanel() string {
	blank := strings.Repeat(strings.Repeat(" ", previewCols)+"\n", previewCols/2-1) + strings.Repeat(" ", previewCols)
	switch {
	case m.PreviewArt != "":
		return m.PreviewArt
	case m.Resolving:
		return placeholder(blank, "resolving…")
	default:
		return placeholder(blank, "no icon")
	}
}

// placeholder writes text into the middle row of an empty preview.
func placeholder(blank, text string) string {
	lines := strings.Split(blank, "\n")
	mid := len(lines) / 2
	pad := (previewCols - lipgloss.Width(text)) / 2
	if pad < 0 {
		pad = 0
	}
	lines[mid] = dimStyle.Render(strings.Repeat(" ", pad) + text)
	return strings.Join(lines, "\n")
}

// statusLine shows the state of the current icon and the last export.
func (m AppModel) statusLine() string {
	switch {
	case m.Downloading:
		return model.IconPending + " Exporting…"
	case m.Err != nil:
		icon := model.IconFailed
		if model.KindOf(m.Err) == model.KindUnsupported {
			icon = model.IconUnsupported
		}
		return errorStyle.Render(fmt.Sprintf("%s %s", icon, model.Message(m.Err)))
	case m.LastSaved != "":
		return okStyle.Render(fmt.Sprintf("%s Saved %s", model.IconSaved, m.LastSaved))
	case m.Resolving:
		return model.IconPending + " Resolving " + m.session.Ref().String()
	case m.Handle != nil:
		req, _ := m.request().Normalize()
		return okStyle.Render(fmt.Sprintf("%s %s from %s", model.IconReady, m.Handle.Ref.SymbolName, m.Handle.Ref.PackagePath)) +
			dimStyle.Render(fmt.Sprintf("  %dx%d px, %s", req.SizePx, req.SizePx, m.Handle.Tier))
	default:
		return model.IconIdle + " Paste an import line like: import { BiAddToQueue } from 'react-icons/bi';"
	}
}

func (m AppModel) renderHelpDialog() string {
	w, h := m.WindowSize.Width, m.WindowSize.Height
	if w < 20 || h < 10 {
		return "Window too small"
	}

	content := strings.Join([]string{
		titleStyle.Render("Help"),
		"",
		"Paste an import statement into the first field. After a short pause",
		"it is parsed and the package and icon fields are filled in. You can",
		"also type the package path and icon name directly.",
		"",
		"Accepted forms:",
		"  import { BiAddToQueue } from 'react-icons/bi';",
		"  import BiAddToQueue from 'react-icons/bi';",
		"  const { BiAddToQueue } = require('react-icons/bi');",
		"",
		fmt.Sprintf("Ctrl+S writes <Icon>.png to %s.", m.deps.Config.OutputDir),
		fmt.Sprintf("Sizes are clamped to %d-%d px.", model.MinSizePx, model.MaxSizePx),
		"",
		dimStyle.Render("Press Esc, Enter or F1 to close"),
	}, "\n")

	dialog := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Padding(0, 1).
		Render(content)

	return lipgloss.Place(w, h,
		lipgloss.Center, lipgloss.Center,
		dialog,
	)
}
