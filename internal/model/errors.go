package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies user-facing failures. Every kind is recoverable: the
// surfaces keep running and keep the last valid state.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindParse means the text matched no recognized import syntax.
	KindParse
	// KindUnsupported means the syntax was recognized but names no single symbol.
	KindUnsupported
	// KindResolution means no module could be loaded for the package path.
	KindResolution
	// KindSymbolNotFound means a module loaded but lacks the requested export.
	KindSymbolNotFound
	// KindExport covers every step of the raster pipeline.
	KindExport
)

func (k ErrorKind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindUnsupported:
		return "unsupported"
	case KindResolution:
		return "resolution"
	case KindSymbolNotFound:
		return "symbol_not_found"
	case KindExport:
		return "export"
	default:
		return "unknown"
	}
}

// Error is a classified failure carrying the message shown to the user.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds a classified error.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under kind with a user-facing message.
func Wrap(kind ErrorKind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message returns the user-facing text of err without wrapped causes.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
