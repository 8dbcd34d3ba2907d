package resolve

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24"><path d="M2 2h20v20H2z"/></svg>`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"react-icons/pi/PiStar.svg":   {Data: []byte(testSVG)},
		"react-icons/pi/PiHeart.svg":  {Data: []byte(testSVG)},
		"react-icons/pi/readme.txt":   {Data: []byte("not an icon")},
		"react-icons/gr.json":         {Data: []byte(`{"exports":{"GrAdd":"<svg/>"}}`)},
		"react-icons/wi.yaml":         {Data: []byte("default:\n  WiDay: \"<svg/>\"\n")},
		"react-icons/broken.json":     {Data: []byte(`{`)},
		"react-icons/both/BoDir.svg":  {Data: []byte(testSVG)},
		"react-icons/both.json":       {Data: []byte(`{"exports":{"BoFile":"<svg/>"}}`)},
		"react-icons/empty/notes.txt": {Data: []byte("x")},
	}
}

func TestDirLoaderLoadsDirectory(t *testing.T) {
	l := NewFSLoader(testFS())

	mod, err := l.Load(context.Background(), "react-icons/pi")
	require.NoError(t, err)
	assert.Equal(t, []string{"PiHeart", "PiStar"}, mod.Symbols())
}

func TestDirLoaderLoadsBundles(t *testing.T) {
	l := NewFSLoader(testFS())
	ctx := context.Background()

	mod, err := l.Load(ctx, "react-icons/gr")
	require.NoError(t, err)
	_, ok := mod.Lookup("GrAdd")
	assert.True(t, ok)

	mod, err = l.Load(ctx, "react-icons/wi")
	require.NoError(t, err)
	_, ok = mod.Lookup("WiDay")
	assert.True(t, ok)

	_, err = l.Load(ctx, "react-icons/broken")
	require.Error(t, err)
}

func TestDirLoaderPrefersDirectory(t *testing.T) {
	mod, err := NewFSLoader(testFS()).Load(context.Background(), "react-icons/both")
	require.NoError(t, err)
	assert.Equal(t, []string{"BoDir"}, mod.Symbols())
}

func TestDirLoaderMissingAndInvalid(t *testing.T) {
	l := NewFSLoader(testFS())
	ctx := context.Background()

	_, err := l.Load(ctx, "react-icons/zz")
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = l.Load(ctx, "react-icons/empty")
	require.Error(t, err)

	_, err = l.Load(ctx, "../etc")
	require.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = l.Load(cancelled, "react-icons/pi")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewDirLoader(t *testing.T) {
	assert.Nil(t, NewDirLoader(""))
	assert.Nil(t, NewDirLoader(filepath.Join(t.TempDir(), "missing")))

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "react-icons", "pi"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "react-icons", "pi", "PiStar.svg"), []byte(testSVG), 0o644))

	l := NewDirLoader(dir)
	require.NotNil(t, l)
	mod, err := l.Load(context.Background(), "react-icons/pi")
	require.NoError(t, err)
	assert.Equal(t, []string{"PiStar"}, mod.Symbols())
}
