package tui

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"pkt.systems/pslog"

	"iconpng/internal/config"
	"iconpng/internal/logx"
	"iconpng/internal/model"
	"iconpng/internal/prefs"
	"iconpng/internal/raster"
	"iconpng/internal/resolve"
	"iconpng/internal/schedule"
)

// Field indexes the form inputs.
type Field int

const (
	FieldImport Field = iota
	FieldPackage
	FieldSymbol
	FieldSize
	FieldColor
	fieldCount
)

var fieldLabels = [fieldCount]string{
	FieldImport:  "Import",
	FieldPackage: "Package",
	FieldSymbol:  "Icon",
	FieldSize:    "Size (px)",
	FieldColor:   "Colour",
}

// Debounce keys.
const (
	keyParse = "parse"
	keyPrefs = "prefs"
)

// previewCols is the width of the half-block preview in terminal cells.
const previewCols = 32

// Deps are the services the form drives.
type Deps struct {
	Ctx      context.Context
	Config   config.Config
	Parser   *resolve.Parser
	Registry *resolve.Registry
	Exporter *raster.Exporter
	Sink     raster.Sink
	Store    prefs.Store
}

// AppModel holds the TUI state.
type AppModel struct {
	deps    Deps
	session *resolve.Session
	tracker *schedule.Tracker
	budget  raster.PollBudget

	// Form
	Inputs []textinput.Model
	Focus  Field

	// Resolution
	Handle    *resolve.Handle
	Resolving bool
	Err       error

	// Preview
	PreviewArt string

	// Export
	Downloading bool
	LastSaved   string

	// UI State
	WindowSize tea.WindowSizeMsg
	ShowHelp   bool
}

// InitialModel builds the form and restores the last-used values from the
// prefs store.
func InitialModel(deps Deps) AppModel {
	if deps.Ctx == nil {
		deps.Ctx = context.Background()
	}
	if deps.Parser == nil {
		deps.Parser = resolve.NewParser(resolve.DefaultLibrary())
	}
	if deps.Registry == nil {
		deps.Registry = resolve.NewRegistry(resolve.DefaultLibrary())
	}
	if deps.Exporter == nil {
		deps.Exporter = raster.NewExporter(raster.FillMode(deps.Config.Export.FillMode))
	}
	if deps.Sink == nil {
		deps.Sink = raster.FileSink{Dir: deps.Config.OutputDir}
	}

	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 512
		ti.Width = 48
		inputs[i] = ti
	}
	inputs[FieldImport].Placeholder = "import { BiAddToQueue } from 'react-icons/bi';"
	inputs[FieldPackage].Placeholder = "react-icons/bi"
	inputs[FieldSymbol].Placeholder = "BiAddToQueue"
	inputs[FieldSize].Placeholder = strconv.Itoa(model.DefaultSizePx)
	inputs[FieldSize].CharLimit = 4
	inputs[FieldSize].Width = 6
	inputs[FieldColor].Placeholder = model.DefaultFillColor
	inputs[FieldColor].CharLimit = 7
	inputs[FieldColor].Width = 8

	size := deps.Config.Export.SizePx
	if size == 0 {
		size = model.DefaultSizePx
	}
	inputs[FieldSize].SetValue(strconv.Itoa(size))
	inputs[FieldColor].SetValue(deps.Config.Export.FillColor)

	saved := prefs.Load(deps.Store)
	inputs[FieldImport].SetValue(saved.ImportLine)
	inputs[FieldPackage].SetValue(saved.PackagePath)
	inputs[FieldSymbol].SetValue(saved.SymbolName)
	if saved.FillColor != "" {
		inputs[FieldColor].SetValue(saved.FillColor)
	}
	inputs[FieldImport].Focus()

	budget := raster.PollBudget{
		Timeout:  deps.Config.Export.WaitTimeout(),
		Interval: deps.Config.Export.WaitInterval(),
	}
	if budget.Interval <= 0 {
		budget = raster.DefaultPollBudget()
	}

	return AppModel{
		deps:    deps,
		session: resolve.NewSession(deps.Registry),
		tracker: schedule.NewTracker(),
		budget:  budget,
		Inputs:  inputs,
		Focus:   FieldImport,
	}
}

func (m AppModel) log() pslog.Logger {
	return logx.Ctx(m.deps.Ctx)
}

// Value returns the trimmed text of a field.
func (m AppModel) Value(f Field) string {
	return strings.TrimSpace(m.Inputs[f].Value())
}

// fieldRef builds the reference the package and icon fields describe. An
// incomplete reference is returned as typed so the handle still clears.
func (m AppModel) fieldRef() model.Reference {
	ref, err := m.deps.Parser.FromFields(m.Value(FieldPackage), m.Value(FieldSymbol))
	if err != nil {
		return model.Reference{PackagePath: m.Value(FieldPackage), SymbolName: m.Value(FieldSymbol)}
	}
	return ref
}

// request builds the export parameters from the size and colour fields.
// A size that is not a number falls back to the configured default.
func (m AppModel) request() model.ExportRequest {
	size, err := strconv.Atoi(m.Value(FieldSize))
	if err != nil {
		size = m.deps.Config.Export.SizePx
	}
	return model.ExportRequest{SizePx: size, FillColor: m.Value(FieldColor)}
}

// previewRequest is request at preview size; an invalid colour previews
// with the default so typing a colour does not blank the preview.
func (m AppModel) previewRequest() model.ExportRequest {
	color := m.Value(FieldColor)
	if _, err := model.NormalizeColor(color); err != nil {
		color = model.DefaultFillColor
	}
	return model.ExportRequest{SizePx: model.PreviewSizePx, FillColor: color}
}

func (m AppModel) prefsSnapshot() model.Prefs {
	return model.Prefs{
		ImportLine:  m.Inputs[FieldImport].Value(),
		PackagePath: m.Value(FieldPackage),
		SymbolName:  m.Value(FieldSymbol),
		FillColor:   m.Value(FieldColor),
	}
}
