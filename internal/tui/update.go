package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"iconpng/internal/logx"
	"iconpng/internal/model"
	"iconpng/internal/prefs"
	"iconpng/internal/raster"
	"iconpng/internal/resolve"
	"iconpng/internal/schedule"
)

// MsgParseDue fires when the import field has been quiet for the parse
// debounce.
type MsgParseDue struct{ Token schedule.Token }

// MsgPrefsDue fires when the tracked fields have been quiet for the prefs
// debounce.
type MsgPrefsDue struct{ Token schedule.Token }

// MsgResolved carries the outcome of a session lookup.
type MsgResolved struct{ Result resolve.Result }

// MsgPreview carries a rendered preview for ref.
type MsgPreview struct {
	Ref model.Reference
	Art string
	Err error
}

// MsgExportPoll is one step of the bounded wait before an export.
type MsgExportPoll struct{ Attempt int }

// MsgExported reports the end of an export, successful or not.
type MsgExported struct {
	Path string
	Err  error
}

// MsgPrefsSaved reports a finished best-effort prefs write.
type MsgPrefsSaved struct{ OK bool }

// Update handles events.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.WindowSize = msg
		return m, nil

	case MsgParseDue:
		if !m.tracker.Due(msg.Token) {
			return m, nil
		}
		return m.parseImport()

	case MsgPrefsDue:
		if !m.tracker.Due(msg.Token) {
			return m, nil
		}
		return m, m.savePrefsCmd()

	case MsgPrefsSaved:
		return m, nil

	case MsgResolved:
		if !msg.Result.Committed || !m.session.Current(msg.Result.Ticket) {
			return m, nil
		}
		m.Resolving = false
		m.Handle = msg.Result.Handle
		m.Err = msg.Result.Err
		if m.Handle == nil {
			m.PreviewArt = ""
			return m, nil
		}
		return m, m.previewCmd()

	case MsgPreview:
		if m.Handle == nil || m.Handle.Ref != msg.Ref {
			return m, nil
		}
		if msg.Err != nil {
			m.Err = msg.Err
			m.PreviewArt = ""
			return m, nil
		}
		m.PreviewArt = msg.Art
		return m, nil

	case MsgExportPoll:
		if !m.Downloading {
			return m, nil
		}
		if m.session.Handle() != nil {
			return m, m.exportCmd()
		}
		if msg.Attempt >= m.budget.Steps() {
			m.Downloading = false
			m.Err = raster.ErrNotReady()
			logx.WithKind(m.log(), m.Err).Warn("export aborted")
			return m, nil
		}
		return m, m.pollCmd(msg.Attempt + 1)

	case MsgExported:
		m.Downloading = false
		if msg.Err != nil {
			m.Err = msg.Err
			return m, nil
		}
		m.Err = nil
		m.LastSaved = msg.Path
		return m, nil

	case tea.KeyMsg:
		if m.ShowHelp {
			switch msg.String() {
			case "ctrl+c":
				return m, m.quit()
			case "esc", "f1", "q", "enter":
				m.ShowHelp = false
			}
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c", "esc":
			return m, m.quit()
		case "tab", "down":
			cmd := m.focus((m.Focus + 1) % fieldCount)
			return m, cmd
		case "shift+tab", "up":
			cmd := m.focus((m.Focus + fieldCount - 1) % fieldCount)
			return m, cmd
		case "enter":
			if m.Focus == FieldImport {
				m.tracker.Cancel(keyParse)
				return m.parseImport()
			}
			cmd := m.focus((m.Focus + 1) % fieldCount)
			return m, cmd
		case "ctrl+s":
			return m.startExport()
		case "f1":
			m.ShowHelp = true
			return m, nil
		}
		return m.updateInput(msg)
	}

	// Cursor blink and other input messages.
	var cmd tea.Cmd
	m.Inputs[m.Focus], cmd = m.Inputs[m.Focus].Update(msg)
	return m, cmd
}

// updateInput forwards a key to the focused field and reacts to any change.
func (m AppModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	before := m.Inputs[m.Focus].Value()
	var cmd tea.Cmd
	m.Inputs[m.Focus], cmd = m.Inputs[m.Focus].Update(msg)
	if m.Inputs[m.Focus].Value() == before {
		return m, cmd
	}

	cmds := []tea.Cmd{cmd}
	switch m.Focus {
	case FieldImport:
		if m.Value(FieldImport) != "" {
			cmds = append(cmds, m.debounce(keyParse, m.deps.Config.Form.ParseDebounce(), func(t schedule.Token) tea.Msg {
				return MsgParseDue{Token: t}
			}))
		}
	case FieldPackage, FieldSymbol:
		var resolveCmd tea.Cmd
		m, resolveCmd = m.resolve(m.fieldRef())
		cmds = append(cmds, resolveCmd)
	case FieldColor:
		if m.Handle != nil {
			cmds = append(cmds, m.previewCmd())
		}
	}
	if m.Focus != FieldSize {
		cmds = append(cmds, m.schedulePrefs())
	}
	return m, tea.Batch(cmds...)
}

// parseImport parses the import field. On success the package and icon
// fields are overwritten and a lookup starts; on failure the fields keep
// their values so the user can correct them by hand.
func (m AppModel) parseImport() (tea.Model, tea.Cmd) {
	ref, err := m.deps.Parser.Parse(m.Inputs[FieldImport].Value())
	if err != nil {
		m.Err = err
		logx.WithKind(m.log(), err).Debug("import not parsed")
		return m, nil
	}
	m.Inputs[FieldPackage].SetValue(ref.PackagePath)
	m.Inputs[FieldSymbol].SetValue(ref.SymbolName)
	m, cmd := m.resolve(ref)
	return m, tea.Batch(cmd, m.schedulePrefs())
}

// resolve invalidates the current handle and starts a lookup for ref.
func (m AppModel) resolve(ref model.Reference) (AppModel, tea.Cmd) {
	ticket := m.session.Update(ref)
	m.Handle = nil
	m.PreviewArt = ""
	m.Err = nil
	m.Resolving = ref.Complete()
	session, ctx := m.session, m.deps.Ctx
	return m, func() tea.Msg {
		return MsgResolved{Result: session.Resolve(ctx, ticket)}
	}
}

func (m AppModel) previewCmd() tea.Cmd {
	h, req, exp := m.Handle, m.previewRequest(), m.deps.Exporter
	return func() tea.Msg {
		img, err := exp.Rasterize(h, req)
		if err != nil {
			return MsgPreview{Ref: h.Ref, Err: err}
		}
		return MsgPreview{Ref: h.Ref, Art: halfBlocks(img.RGBA, previewCols)}
	}
}

// startExport begins the bounded wait for a handle. A second request while
// one is running is ignored.
func (m AppModel) startExport() (tea.Model, tea.Cmd) {
	if m.Downloading {
		return m, nil
	}
	m.Downloading = true
	m.LastSaved = ""
	m.Err = nil
	if m.session.Handle() != nil {
		return m, m.exportCmd()
	}
	return m, m.pollCmd(1)
}

func (m AppModel) pollCmd(attempt int) tea.Cmd {
	return tea.Tick(m.budget.Tick(), func(time.Time) tea.Msg {
		return MsgExportPoll{Attempt: attempt}
	})
}

func (m AppModel) exportCmd() tea.Cmd {
	h, req := m.session.Handle(), m.request()
	exp, sink, ctx := m.deps.Exporter, m.deps.Sink, m.deps.Ctx
	return func() tea.Msg {
		path, err := exp.Export(ctx, h, req, sink)
		return MsgExported{Path: path, Err: err}
	}
}

func (m AppModel) schedulePrefs() tea.Cmd {
	if m.deps.Store == nil {
		return nil
	}
	return m.debounce(keyPrefs, m.deps.Config.Form.PrefsDebounce(), func(t schedule.Token) tea.Msg {
		return MsgPrefsDue{Token: t}
	})
}

func (m AppModel) savePrefsCmd() tea.Cmd {
	store, snapshot, log := m.deps.Store, m.prefsSnapshot(), m.log()
	return func() tea.Msg {
		return MsgPrefsSaved{OK: prefs.Save(store, snapshot, log)}
	}
}

func (m AppModel) debounce(key string, d time.Duration, msg func(schedule.Token) tea.Msg) tea.Cmd {
	tok := m.tracker.Schedule(key)
	if d <= 0 {
		return func() tea.Msg { return msg(tok) }
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return msg(tok) })
}

func (m *AppModel) focus(f Field) tea.Cmd {
	m.Inputs[m.Focus].Blur()
	m.Focus = f
	return m.Inputs[f].Focus()
}

// quit writes pending prefs before leaving.
func (m AppModel) quit() tea.Cmd {
	if m.tracker.Pending(keyPrefs) {
		m.tracker.Cancel(keyPrefs)
		prefs.Save(m.deps.Store, m.prefsSnapshot(), m.log())
	}
	return tea.Quit
}

// Init restores the last session's icon and starts the cursor blinking.
func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if ref := m.fieldRef(); ref.Complete() {
		ticket := m.session.Update(ref)
		session, ctx := m.session, m.deps.Ctx
		cmds = append(cmds, func() tea.Msg {
			return MsgResolved{Result: session.Resolve(ctx, ticket)}
		})
	}
	return tea.Batch(cmds...)
}
