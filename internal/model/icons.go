package model

// Status glyphs for the terminal form.
// Using simple single-width characters for consistent terminal rendering
const (
	IconReady       = "●" // handle resolved
	IconPending     = "○" // lookup in flight
	IconFailed      = "✗" // last lookup or export failed
	IconUnsupported = "≈" // recognized syntax, no single symbol
	IconSaved       = "↓" // file written
	IconIdle        = " " // nothing to report
)
