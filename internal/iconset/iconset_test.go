package iconset

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeysListsEmbeddedPacks(t *testing.T) {
	keys := Keys()
	assert.Contains(t, keys, "bi")
	assert.Contains(t, keys, "fa")
	assert.IsIncreasing(t, keys)
}

func TestLoadEmbedded(t *testing.T) {
	mod, err := LoadEmbedded("bi")
	require.NoError(t, err)
	assert.Equal(t, "react-icons/bi", mod.Path)

	icon, ok := mod.Lookup("BiAddToQueue")
	require.True(t, ok)
	assert.Contains(t, string(icon.Markup), "<svg")

	_, err = LoadEmbedded("zz")
	require.Error(t, err)
}

func TestAggregateMergesPacks(t *testing.T) {
	agg, err := Aggregate()
	require.NoError(t, err)

	for _, name := range []string{"BiAddToQueue", "FaBeer", "MdClose"} {
		_, ok := agg.Lookup(name)
		assert.True(t, ok, name)
	}
}

func TestLookupFallsBackToDefaultExport(t *testing.T) {
	mod := NewModule("react-icons/x")
	mod.Default = map[string]Icon{"XOnlyDefault": {Name: "XOnlyDefault", Markup: []byte("<svg/>")}}
	mod.Named["XNamed"] = Icon{Name: "XNamed", Markup: []byte("<svg/>")}

	_, ok := mod.Lookup("XOnlyDefault")
	assert.True(t, ok)
	_, ok = mod.Lookup("XNamed")
	assert.True(t, ok)
	_, ok = mod.Lookup("Missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"XNamed", "XOnlyDefault"}, mod.Symbols())

	var nilMod *Module
	_, ok = nilMod.Lookup("X")
	assert.False(t, ok)
}

func TestDecodeBundleFormats(t *testing.T) {
	jsonData := []byte(`{"exports":{"ZzA":"<svg/>"},"default":{"ZzB":"<svg/>"}}`)
	mod, err := DecodeBundle("react-icons/zz", "zz.json", jsonData)
	require.NoError(t, err)
	assert.Equal(t, []string{"ZzA", "ZzB"}, mod.Symbols())

	yamlData := []byte("exports:\n  ZzC: \"<svg/>\"\n")
	mod, err = DecodeBundle("react-icons/zz", "zz.yaml", yamlData)
	require.NoError(t, err)
	_, ok := mod.Lookup("ZzC")
	assert.True(t, ok)

	_, err = DecodeBundle("react-icons/zz", "zz.json", []byte(`{"exports":{}}`))
	require.Error(t, err)

	_, err = DecodeBundle("react-icons/zz", "zz.toml", jsonData)
	require.Error(t, err)
}

func TestReadDirSkipsNonSVG(t *testing.T) {
	fsys := fstest.MapFS{
		"pk/PkOne.svg":    {Data: []byte("<svg/>")},
		"pk/README.md":    {Data: []byte("notes")},
		"pk/nested/x.svg": {Data: []byte("<svg/>")},
	}
	mod, err := ReadDir(fsys, "pk", "react-icons/pk")
	require.NoError(t, err)
	assert.Equal(t, []string{"PkOne"}, mod.Symbols())

	_, err = ReadDir(fstest.MapFS{"empty/a.txt": {}}, "empty", "react-icons/empty")
	require.Error(t, err)
}
