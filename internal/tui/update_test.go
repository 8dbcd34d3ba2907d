package tui

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iconpng/internal/config"
	"iconpng/internal/model"
	"iconpng/internal/prefs"
	"iconpng/internal/resolve"
)

type countingSink struct {
	calls atomic.Int32
}

func (s *countingSink) Save(_ context.Context, name string, _ []byte) (string, error) {
	s.calls.Add(1)
	return name, nil
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.OutputDir = t.TempDir()
	cfg.Export.SizePx = 64
	cfg.Export.WaitTimeoutMs = 30
	cfg.Export.WaitIntervalMs = 5
	cfg.Form.ParseDebounceMs = 0
	cfg.Form.PrefsDebounceMs = 0
	return cfg
}

func newTestModel(t *testing.T, deps Deps) AppModel {
	t.Helper()
	if deps.Config.Web.Addr == "" {
		deps.Config = testConfig(t)
	}
	m := InitialModel(deps)
	for i := range m.Inputs {
		m.Inputs[i].Cursor.SetMode(cursor.CursorStatic)
	}
	return m
}

// drain runs cmd and feeds every form message it produces back into Update
// until nothing is left. Commands that block (cursor blinks) are dropped.
func drain(t *testing.T, m AppModel, cmd tea.Cmd) AppModel {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg, ok := runCmd(c)
		if !ok {
			continue
		}
		switch msg := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case MsgParseDue, MsgPrefsDue, MsgPrefsSaved, MsgResolved, MsgPreview, MsgExportPoll, MsgExported:
			next, c := m.Update(msg)
			m = next.(AppModel)
			queue = append(queue, c)
		}
	}
	return m
}

func runCmd(c tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- c() }()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(2 * time.Second):
		return nil, false
	}
}

func send(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(AppModel), cmd
}

func typeText(text string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)}
}

func resolved(t *testing.T, deps Deps) AppModel {
	t.Helper()
	m := newTestModel(t, deps)
	m, cmd := send(t, m, typeText(`import { BiAddToQueue } from "react-icons/bi";`))
	m = drain(t, m, cmd)
	require.NotNil(t, m.Handle)
	return m
}

func TestPasteImportResolvesAndPreviews(t *testing.T) {
	m := resolved(t, Deps{})

	assert.Equal(t, "react-icons/bi", m.Value(FieldPackage))
	assert.Equal(t, "BiAddToQueue", m.Value(FieldSymbol))
	assert.NoError(t, m.Err)
	assert.False(t, m.Resolving)
	assert.NotEmpty(t, m.PreviewArt)
	assert.Contains(t, m.View(), "BiAddToQueue")
}

func TestUnsupportedImportKeepsFields(t *testing.T) {
	m := resolved(t, Deps{})

	m.Inputs[FieldImport].SetValue("")
	m, cmd := send(t, m, typeText(`import * as Bi from "react-icons/bi"`))
	m = drain(t, m, cmd)

	require.Error(t, m.Err)
	assert.Equal(t, model.KindUnsupported, model.KindOf(m.Err))
	assert.Equal(t, "BiAddToQueue", m.Value(FieldSymbol))
	assert.NotNil(t, m.Handle)
	assert.Contains(t, m.View(), model.IconUnsupported)
}

func TestEditingSymbolInvalidatesHandleImmediately(t *testing.T) {
	m := resolved(t, Deps{})
	m.Inputs[FieldImport].Blur()
	m.Focus = FieldSymbol
	m.Inputs[FieldSymbol].Focus()

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Nil(t, m.Handle, "handle must clear before the lookup completes")
	assert.Empty(t, m.PreviewArt)
	assert.True(t, m.Resolving)

	m = drain(t, m, cmd)
	assert.Nil(t, m.Handle)
	assert.Equal(t, model.KindSymbolNotFound, model.KindOf(m.Err))
	assert.Equal(t, "icon 'BiAddToQueu' not found in 'react-icons/bi'", model.Message(m.Err))
}

func TestStaleResolutionIsIgnored(t *testing.T) {
	m := newTestModel(t, Deps{})

	stale := m.session.Update(model.Reference{PackagePath: "react-icons/bi", SymbolName: "BiHome"})
	staleRes := m.session.Resolve(context.Background(), stale)
	require.True(t, staleRes.Committed)

	m, cmd := m.resolve(model.Reference{PackagePath: "react-icons/fa", SymbolName: "FaBeer"})
	m, _ = send(t, m, MsgResolved{Result: staleRes})
	assert.Nil(t, m.Handle)
	assert.True(t, m.Resolving)

	m = drain(t, m, cmd)
	require.NotNil(t, m.Handle)
	assert.Equal(t, "FaBeer", m.Handle.Ref.SymbolName)
}

func TestExportWritesPNG(t *testing.T) {
	m := resolved(t, Deps{})

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.True(t, m.Downloading)
	assert.Contains(t, m.View(), "Exporting")

	m = drain(t, m, cmd)
	assert.False(t, m.Downloading)
	require.NoError(t, m.Err)
	assert.Equal(t, filepath.Join(m.deps.Config.OutputDir, "BiAddToQueue.png"), m.LastSaved)
	_, err := os.Stat(m.LastSaved)
	assert.NoError(t, err)
}

func TestExportWithoutIconTimesOut(t *testing.T) {
	sink := &countingSink{}
	m := newTestModel(t, Deps{Sink: sink})

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.True(t, m.Downloading)

	// A second request while waiting is ignored.
	m, second := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, second)

	m = drain(t, m, cmd)
	assert.False(t, m.Downloading)
	require.Error(t, m.Err)
	assert.Equal(t, "icon failed to load", model.Message(m.Err))
	assert.Zero(t, sink.calls.Load())
}

func TestExportWaitsForPendingLookup(t *testing.T) {
	sink := &countingSink{}
	m := newTestModel(t, Deps{Sink: sink})

	m, resolveCmd := m.resolve(model.Reference{PackagePath: "react-icons/md", SymbolName: "MdAdd"})
	m, exportCmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.True(t, m.Downloading)

	// Let the lookup land while the export is polling.
	m = drain(t, m, resolveCmd)
	m = drain(t, m, exportCmd)

	assert.False(t, m.Downloading)
	assert.NoError(t, m.Err)
	assert.Equal(t, "MdAdd.png", m.LastSaved)
	assert.Equal(t, int32(1), sink.calls.Load())
}

func TestPrefsRestoredAndSaved(t *testing.T) {
	store := prefs.NewMemoryStore()
	require.NoError(t, store.Set(prefs.KeyPackagePath, "react-icons/fa"))
	require.NoError(t, store.Set(prefs.KeySymbolName, "FaBeer"))
	require.NoError(t, store.Set(prefs.KeyFillColor, "#ff0000"))

	m := newTestModel(t, Deps{Store: store})
	assert.Equal(t, "FaBeer", m.Value(FieldSymbol))
	assert.Equal(t, "#ff0000", m.Value(FieldColor))

	m = drain(t, m, m.Init())
	require.NotNil(t, m.Handle)
	assert.Equal(t, resolve.TierStatic, m.Handle.Tier)

	m.Inputs[FieldImport].Blur()
	m.Focus = FieldColor
	m.Inputs[FieldColor].Focus()
	m.Inputs[FieldColor].SetValue("")
	m, cmd := send(t, m, typeText("#00ff00"))
	drain(t, m, cmd)

	v, ok := store.Get(prefs.KeyFillColor)
	require.True(t, ok)
	assert.Equal(t, "#00ff00", v)
	assert.GreaterOrEqual(t, store.Flushes(), 1)
}

func TestFocusCycles(t *testing.T) {
	m := newTestModel(t, Deps{})

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, FieldColor, m.Focus)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, FieldImport, m.Focus)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, FieldPackage, m.Focus)
	assert.True(t, m.Inputs[FieldPackage].Focused())
	assert.False(t, m.Inputs[FieldImport].Focused())
}

func TestHalfBlocks(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, A: 255})
		}
	}

	art := halfBlocks(img, 8)
	lines := strings.Split(art, "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[0], "▀")
	assert.Equal(t, strings.Repeat(" ", 8), lines[3])
	assert.Empty(t, halfBlocks(nil, 8))
}
