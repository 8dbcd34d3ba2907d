package logx

import (
	"context"
	"io"
	"log"
	"os"

	"pkt.systems/pslog"

	"iconpng/internal/model"
)

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// Console builds the stderr logger used by the CLI and web modes. Without
// verbose the logger is configured from the environment.
func Console(verbose bool) pslog.Logger {
	if verbose {
		return pslog.NewWithOptions(os.Stderr, pslog.Options{
			Mode:     pslog.ModeConsole,
			MinLevel: pslog.DebugLevel,
		})
	}
	return pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
}

// Structured builds a JSON logger writing to w. The terminal form uses it
// with a log file since bubbletea owns the screen.
func Structured(w io.Writer, verbose bool) pslog.Logger {
	level := pslog.InfoLevel
	if verbose {
		level = pslog.DebugLevel
	}
	return pslog.NewWithOptions(w, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		MinLevel:      level,
		VerboseFields: true,
	})
}

// Install attaches logger to ctx and routes the stdlib log package through it.
func Install(ctx context.Context, logger pslog.Logger) context.Context {
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)
	return pslog.ContextWithLogger(ctx, logger)
}

// WithRef annotates the logger with an icon reference when available.
func WithRef(log pslog.Logger, ref model.Reference) pslog.Logger {
	if ref.PackagePath != "" {
		log = log.With("package", ref.PackagePath)
	}
	if ref.SymbolName != "" {
		log = log.With("symbol", ref.SymbolName)
	}
	return log
}

// WithKind annotates the logger with the classified kind of err.
func WithKind(log pslog.Logger, err error) pslog.Logger {
	if err == nil {
		return log
	}
	return log.With("kind", model.KindOf(err).String(), "err", err)
}
