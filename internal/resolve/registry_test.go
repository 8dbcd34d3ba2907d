package resolve

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iconpng/internal/iconset"
	"iconpng/internal/model"
)

func ref(path, symbol string) model.Reference {
	return model.Reference{PackagePath: path, SymbolName: symbol}
}

func TestLookupStaticTier(t *testing.T) {
	reg := NewRegistry(DefaultLibrary())

	h, err := reg.Lookup(context.Background(), ref("react-icons/bi", "BiAddToQueue"))
	require.NoError(t, err)
	assert.Equal(t, TierStatic, h.Tier)
	assert.Equal(t, "BiAddToQueue", h.Icon.Name)
	markup, ok := h.Markup()
	require.True(t, ok)
	assert.Contains(t, string(markup), "<svg")
	require.Len(t, h.Attempts, 1)
}

func TestLookupFallsBackToDynamicThenRoot(t *testing.T) {
	reg := NewRegistry(DefaultLibrary(), WithDynamic(NewFSLoader(testFS())))
	ctx := context.Background()

	h, err := reg.Lookup(ctx, ref("react-icons/pi", "PiStar"))
	require.NoError(t, err)
	assert.Equal(t, TierDynamic, h.Tier)

	h, err = reg.Lookup(ctx, ref("react-icons/unknown", "FaBeer"))
	require.NoError(t, err)
	assert.Equal(t, TierRoot, h.Tier)
	require.Len(t, h.Attempts, 2)
	assert.Equal(t, TierDynamic, h.Attempts[0].Tier)
	assert.False(t, h.Attempts[0].Loaded)
	assert.NotEmpty(t, h.Attempts[0].Error)
}

func TestLookupSearchesFirstLoadedModuleOnly(t *testing.T) {
	reg := NewRegistry(DefaultLibrary())

	// FaBeer exists in the root aggregate, but "bi" loads first and lacks it.
	_, err := reg.Lookup(context.Background(), ref("react-icons/bi", "FaBeer"))
	require.Error(t, err)
	assert.Equal(t, model.KindSymbolNotFound, model.KindOf(err))
	assert.Equal(t, "icon 'FaBeer' not found in 'react-icons/bi'", err.Error())
}

func TestLookupResolutionFailure(t *testing.T) {
	reg := NewRegistry(DefaultLibrary(),
		WithStatic(map[string]ModuleLoader{}),
		WithDynamic((*DirLoader)(nil)),
		WithRoot(func(context.Context) (*iconset.Module, error) {
			return nil, errors.New("root unavailable")
		}),
	)

	_, err := reg.Lookup(context.Background(), ref("react-icons/bi", "BiHome"))
	require.Error(t, err)
	assert.Equal(t, model.KindResolution, model.KindOf(err))
	assert.Equal(t, "could not load icons for 'react-icons/bi'", err.Error())

	_, err = reg.Lookup(context.Background(), ref("", "BiHome"))
	assert.Equal(t, model.KindResolution, model.KindOf(err))
}

func TestLookupCachesModules(t *testing.T) {
	var calls atomic.Int32
	reg := NewRegistry(DefaultLibrary(), WithStatic(map[string]ModuleLoader{
		"bi": func(context.Context) (*iconset.Module, error) {
			calls.Add(1)
			return iconset.LoadEmbedded("bi")
		},
	}))
	ctx := context.Background()

	_, err := reg.Lookup(ctx, ref("react-icons/bi", "BiHome"))
	require.NoError(t, err)
	h, err := reg.Lookup(ctx, ref("react-icons/bi", "BiStar"))
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, h.Attempts[0].Cached)
	assert.Contains(t, h.Attempts.Summary(), "ok (cached)")
}

func TestLookupDoesNotCacheFailures(t *testing.T) {
	var calls atomic.Int32
	reg := NewRegistry(DefaultLibrary(),
		WithRoot(nil),
		WithStatic(map[string]ModuleLoader{
			"bi": func(context.Context) (*iconset.Module, error) {
				if calls.Add(1) == 1 {
					return nil, errors.New("transient")
				}
				return iconset.LoadEmbedded("bi")
			},
		}),
	)
	ctx := context.Background()

	_, err := reg.Lookup(ctx, ref("react-icons/bi", "BiHome"))
	require.Error(t, err)
	_, err = reg.Lookup(ctx, ref("react-icons/bi", "BiHome"))
	require.NoError(t, err)
}

func TestLookupHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRegistry(DefaultLibrary()).Lookup(ctx, ref("react-icons/bi", "BiHome"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPacksAndSymbols(t *testing.T) {
	reg := NewRegistry(DefaultLibrary())

	packs := reg.Packs()
	assert.Contains(t, packs, "bi")
	assert.Contains(t, packs, "io5")
	assert.IsIncreasing(t, packs)

	symbols, err := reg.Symbols(context.Background(), "bi")
	require.NoError(t, err)
	assert.Contains(t, symbols, "BiAddToQueue")
}

func TestExplain(t *testing.T) {
	p := NewParser(DefaultLibrary())
	reg := NewRegistry(DefaultLibrary())
	ctx := context.Background()

	rep := Explain(ctx, p, reg, `import { BiAddToQueue } from "react-icons/bi"`)
	assert.True(t, rep.Resolved)
	assert.Equal(t, TierStatic, rep.Tier)
	assert.Equal(t, "react-icons/bi", rep.Reference.PackagePath)
	assert.Positive(t, rep.Symbols)
	assert.Empty(t, rep.Error)

	rep = Explain(ctx, p, reg, `import * as Bi from "react-icons/bi"`)
	assert.False(t, rep.Resolved)
	assert.Equal(t, "unsupported", rep.ErrorKind)

	rep = Explain(ctx, p, reg, `import { BiNope } from "react-icons/bi"`)
	assert.False(t, rep.Resolved)
	assert.Equal(t, "symbol_not_found", rep.ErrorKind)

	rep = ExplainFields(ctx, p, reg, "fa", "FaBeer")
	assert.True(t, rep.Resolved)
	assert.Equal(t, "react-icons/fa", rep.Reference.PackagePath)
}
