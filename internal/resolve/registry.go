package resolve

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"iconpng/internal/iconset"
	"iconpng/internal/logx"
	"iconpng/internal/model"
)

// ModuleLoader loads one known sub-package.
type ModuleLoader func(ctx context.Context) (*iconset.Module, error)

// ModuleSource loads a sub-package by package path at runtime.
type ModuleSource interface {
	Load(ctx context.Context, packagePath string) (*iconset.Module, error)
}

// Handle is a resolved icon, ready to preview or export.
type Handle struct {
	Ref      model.Reference
	Icon     iconset.Icon
	Tier     Tier
	Attempts Attempts
}

// Markup returns the icon's vector markup. A nil handle has none.
func (h *Handle) Markup() ([]byte, bool) {
	if h == nil || len(h.Icon.Markup) == 0 {
		return nil, false
	}
	return h.Icon.Markup, true
}

// Registry resolves references through three tiers: a static table of
// compiled-in packs, a runtime source, and the library root aggregate.
// Loaded modules are cached for the life of the registry.
type Registry struct {
	lib     Library
	static  map[string]ModuleLoader
	dynamic ModuleSource
	root    ModuleLoader

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]*iconset.Module
}

// Option configures a Registry.
type Option func(*Registry)

// WithStatic replaces the static table.
func WithStatic(table map[string]ModuleLoader) Option {
	return func(r *Registry) { r.static = table }
}

// WithDynamic sets the runtime tier. A nil source disables it.
func WithDynamic(src ModuleSource) Option {
	return func(r *Registry) {
		if dl, ok := src.(*DirLoader); ok && dl == nil {
			r.dynamic = nil
			return
		}
		r.dynamic = src
	}
}

// WithRoot replaces the last-resort root loader.
func WithRoot(loader ModuleLoader) Option {
	return func(r *Registry) { r.root = loader }
}

// NewRegistry returns a registry over the compiled-in packs.
func NewRegistry(lib Library, opts ...Option) *Registry {
	r := &Registry{
		lib:    lib,
		static: StaticTable(),
		root: func(context.Context) (*iconset.Module, error) {
			return iconset.Aggregate()
		},
		cache: make(map[string]*iconset.Module),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// StaticTable maps every compiled-in pack key to its loader. Go cannot load
// a package by interpolated path, so this table is the complete list of
// packs the binary carries.
func StaticTable() map[string]ModuleLoader {
	embedded := func(key string) ModuleLoader {
		return func(context.Context) (*iconset.Module, error) {
			return iconset.LoadEmbedded(key)
		}
	}
	return map[string]ModuleLoader{
		"ai":  embedded("ai"),
		"bi":  embedded("bi"),
		"bs":  embedded("bs"),
		"fa":  embedded("fa"),
		"fi":  embedded("fi"),
		"hi":  embedded("hi"),
		"io5": embedded("io5"),
		"lu":  embedded("lu"),
		"md":  embedded("md"),
		"ri":  embedded("ri"),
		"tb":  embedded("tb"),
	}
}

// Library returns the naming convention the registry normalizes with.
func (r *Registry) Library() Library {
	return r.lib
}

// Packs lists the keys of the static table.
func (r *Registry) Packs() []string {
	keys := make([]string, 0, len(r.static))
	for k := range r.static {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lookup resolves ref to a handle. Errors are *model.Error of kind
// KindResolution or KindSymbolNotFound, or the context's error.
func (r *Registry) Lookup(ctx context.Context, ref model.Reference) (*Handle, error) {
	if !ref.Complete() {
		return nil, model.Errorf(model.KindResolution, "both a package path and an icon name are required")
	}
	log := logx.WithRef(logx.Ctx(ctx), ref)

	mod, attempts, err := r.Module(ctx, ref.PackagePath)
	log.Debug("icon lookup", "attempts", attempts.Summary())
	if err != nil {
		return nil, err
	}

	icon, ok := mod.Lookup(ref.SymbolName)
	if !ok {
		return nil, model.Errorf(model.KindSymbolNotFound, "icon '%s' not found in '%s'", ref.SymbolName, ref.PackagePath)
	}
	winner, _ := attempts.Winner()
	return &Handle{Ref: ref, Icon: icon, Tier: winner.Tier, Attempts: attempts}, nil
}

// Symbols lists the exports of the module packagePath resolves to.
func (r *Registry) Symbols(ctx context.Context, packagePath string) ([]string, error) {
	mod, _, err := r.Module(ctx, Normalize(r.lib, packagePath))
	if err != nil {
		return nil, err
	}
	return mod.Symbols(), nil
}

// Module walks the tiers and returns the first module that loads.
func (r *Registry) Module(ctx context.Context, packagePath string) (*iconset.Module, Attempts, error) {
	key := Key(packagePath)
	var attempts Attempts

	type tier struct {
		tier   Tier
		target string
		load   ModuleLoader
	}
	var tiers []tier
	if loader, ok := r.static[key]; ok {
		tiers = append(tiers, tier{TierStatic, key, loader})
	}
	if r.dynamic != nil {
		tiers = append(tiers, tier{TierDynamic, packagePath, func(ctx context.Context) (*iconset.Module, error) {
			return r.dynamic.Load(ctx, packagePath)
		}})
	}
	if r.root != nil {
		tiers = append(tiers, tier{TierRoot, r.lib.Root(), r.root})
	}

	for _, t := range tiers {
		if err := ctx.Err(); err != nil {
			return nil, attempts, err
		}
		mod, cached, err := r.load(ctx, string(t.tier)+":"+t.target, t.load)
		at := Attempt{Tier: t.tier, Target: t.target, Loaded: err == nil, Cached: cached}
		if err != nil {
			at.Error = err.Error()
		}
		attempts = append(attempts, at)
		if err == nil {
			return mod, attempts, nil
		}
	}
	return nil, attempts, model.Errorf(model.KindResolution, "could not load icons for '%s'", packagePath)
}

// load runs loader once per cache key; concurrent callers share the result.
// Failures are not cached so a later lookup may succeed.
func (r *Registry) load(ctx context.Context, cacheKey string, loader ModuleLoader) (*iconset.Module, bool, error) {
	r.mu.RLock()
	mod, ok := r.cache[cacheKey]
	r.mu.RUnlock()
	if ok {
		return mod, true, nil
	}

	v, err, _ := r.group.Do(cacheKey, func() (any, error) {
		mod, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		if mod == nil {
			return nil, fmt.Errorf("loader returned no module")
		}
		r.mu.Lock()
		r.cache[cacheKey] = mod
		r.mu.Unlock()
		return mod, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*iconset.Module), false, nil
}
