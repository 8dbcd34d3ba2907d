package prefs

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iconpng/internal/logx"
	"iconpng/internal/model"
)

var sample = model.Prefs{
	ImportLine:  `import { BiAddToQueue } from "react-icons/bi"`,
	PackagePath: "react-icons/bi",
	SymbolName:  "BiAddToQueue",
	FillColor:   "#336699",
}

func TestMemoryRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	var buf bytes.Buffer

	require.True(t, Save(store, sample, logx.Structured(&buf, false)))
	assert.Equal(t, sample, Load(store))
	assert.Equal(t, 1, store.Flushes())
	assert.Zero(t, buf.Len())
}

func TestSaveSwallowsFailures(t *testing.T) {
	store := NewMemoryStore()
	store.FailWith = errors.New("quota exceeded")
	var buf bytes.Buffer

	assert.False(t, Save(store, sample, logx.Structured(&buf, false)))
	assert.Contains(t, buf.String(), "quota exceeded")
	assert.Equal(t, model.Prefs{}, Load(store))
}

func TestNilStore(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, model.Prefs{}, Load(nil))
	assert.False(t, Save(nil, sample, logx.Structured(&buf, false)))
}

func TestFileStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.toml")
	var buf bytes.Buffer

	store, err := OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, model.Prefs{}, Load(store))
	require.True(t, Save(store, sample, logx.Structured(&buf, false)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "symbol_name")

	reopened, err := OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, sample, Load(reopened))
}

func TestFileStoreFlushSkipsCleanStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	store, err := OpenFile(path)
	require.NoError(t, err)

	require.NoError(t, store.Flush())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	require.NoError(t, os.WriteFile(path, []byte("this is = = not toml"), 0o644))

	store, err := OpenFile(path)
	require.Error(t, err)
	require.NotNil(t, store)
	assert.Equal(t, model.Prefs{}, Load(store))

	require.NoError(t, store.Set(KeySymbolName, "BiHome"))
	require.NoError(t, store.Flush())
	reopened, err := OpenFile(path)
	require.NoError(t, err)
	v, ok := reopened.Get(KeySymbolName)
	assert.True(t, ok)
	assert.Equal(t, "BiHome", v)
}
