package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceComplete(t *testing.T) {
	assert.True(t, Reference{PackagePath: "react-icons/bi", SymbolName: "BiAddToQueue"}.Complete())
	assert.False(t, Reference{PackagePath: "react-icons/bi"}.Complete())
	assert.False(t, Reference{SymbolName: "BiAddToQueue"}.Complete())
	assert.False(t, Reference{PackagePath: " ", SymbolName: "X"}.Complete())
}

func TestClampSize(t *testing.T) {
	assert.Equal(t, MinSizePx, ClampSize(0))
	assert.Equal(t, MinSizePx, ClampSize(-40))
	assert.Equal(t, 512, ClampSize(512))
	assert.Equal(t, MaxSizePx, ClampSize(MaxSizePx+1))
}

func TestExportRequestNormalize(t *testing.T) {
	req, err := ExportRequest{SizePx: 2, FillColor: "#F0A"}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, MinSizePx, req.SizePx)
	assert.Equal(t, "#ff00aa", req.FillColor)

	req, err = ExportRequest{SizePx: 64, FillColor: "336699"}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "#336699", req.FillColor)

	req, err = ExportRequest{SizePx: 64}.Normalize()
	require.NoError(t, err)
	assert.Empty(t, req.FillColor)

	_, err = ExportRequest{SizePx: 64, FillColor: "not-a-colour"}.Normalize()
	require.Error(t, err)
}

func TestErrorKindSurvivesWrapping(t *testing.T) {
	base := Errorf(KindSymbolNotFound, "icon '%s' not found in '%s'", "X", "react-icons/bi")
	wrapped := fmt.Errorf("lookup: %w", base)

	assert.Equal(t, KindSymbolNotFound, KindOf(wrapped))
	assert.Equal(t, "icon 'X' not found in 'react-icons/bi'", Message(wrapped))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, "", Message(nil))
}

func TestPNGFilename(t *testing.T) {
	name, err := PNGFilename("BiAddToQueue")
	require.NoError(t, err)
	assert.Equal(t, "BiAddToQueue.png", name)

	for _, bad := range []string{"", "../x", `a\b`, ".."} {
		_, err := PNGFilename(bad)
		assert.Error(t, err, bad)
	}
}
