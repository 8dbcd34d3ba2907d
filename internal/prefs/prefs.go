// Package prefs persists the user's last-used form values. Every read and
// write is best-effort: failures are logged and otherwise ignored.
package prefs

import (
	"pkt.systems/pslog"

	"iconpng/internal/model"
)

// Keys of the persisted values.
const (
	KeyImportLine  = "import_line"
	KeyPackagePath = "package_path"
	KeySymbolName  = "symbol_name"
	KeyFillColor   = "fill_color"
)

// Store is a flat string key-value store.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Flush() error
}

// Load reads the four form values from store. Missing keys stay empty.
func Load(store Store) model.Prefs {
	if store == nil {
		return model.Prefs{}
	}
	get := func(key string) string {
		v, _ := store.Get(key)
		return v
	}
	return model.Prefs{
		ImportLine:  get(KeyImportLine),
		PackagePath: get(KeyPackagePath),
		SymbolName:  get(KeySymbolName),
		FillColor:   get(KeyFillColor),
	}
}

// Save writes p to store and flushes it. It reports whether everything was
// stored; failures are only logged.
func Save(store Store, p model.Prefs, log pslog.Logger) bool {
	if store == nil {
		return false
	}
	ok := true
	for _, kv := range [][2]string{
		{KeyImportLine, p.ImportLine},
		{KeyPackagePath, p.PackagePath},
		{KeySymbolName, p.SymbolName},
		{KeyFillColor, p.FillColor},
	} {
		if err := store.Set(kv[0], kv[1]); err != nil {
			log.Warn("prefs write failed", "key", kv[0], "err", err)
			ok = false
		}
	}
	if err := store.Flush(); err != nil {
		log.Warn("prefs flush failed", "err", err)
		ok = false
	}
	return ok
}
