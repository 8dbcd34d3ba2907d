package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"github.com/tcnksm/go-latest"
	"pkt.systems/psi"

	"iconpng/internal/config"
	"iconpng/internal/logx"
	"iconpng/internal/model"
	"iconpng/internal/prefs"
	"iconpng/internal/raster"
	"iconpng/internal/resolve"
	"iconpng/internal/tui"
	"iconpng/internal/web"
)

const (
	updateOwner = "iconpng"
	updateRepo  = "iconpng"
)

func checkUpdate(currentVer string) {
	githubTag := &latest.GithubTag{
		Owner:      updateOwner,
		Repository: updateRepo,
	}

	res, err := latest.Check(githubTag, currentVer)
	if err != nil {
		return // Silently fail
	}

	if res.Outdated {
		fmt.Printf("\n✨ A new version is available: %s (you have %s)\n", res.Current, currentVer)
		fmt.Printf("👉 Download it from https://github.com/%s/%s/releases\n", updateOwner, updateRepo)
	} else if pflag.Lookup("update").Changed {
		fmt.Printf("✅ You are using the latest version: %s\n", currentVer)
	}
}

func main() {
	psi.Run(submain)
}

// services are shared by every mode.
type services struct {
	cfg      config.Config
	parser   *resolve.Parser
	registry *resolve.Registry
	exporter *raster.Exporter
}

func newServices(cfg config.Config) services {
	lib := resolve.DefaultLibrary()
	return services{
		cfg:      cfg,
		parser:   resolve.NewParser(lib),
		registry: resolve.NewRegistry(lib, resolve.WithDynamic(resolve.NewDirLoader(cfg.IconsDir))),
		exporter: raster.NewExporter(raster.FillMode(cfg.Export.FillMode)),
	}
}

func submain(ctx context.Context) int {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: iconpng [options]\n\n")
		fmt.Fprintf(os.Stderr, "iconpng turns a react-icons import line into a PNG file.\n")
		fmt.Fprintf(os.Stderr, "Paste the import, pick a size and colour, and export <Icon>.png.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  iconpng                                            # Start TUI mode\n")
		fmt.Fprintf(os.Stderr, "  iconpng -r \"import { BiHome } from 'react-icons/bi'\"  # Explain a resolution as JSON\n")
		fmt.Fprintf(os.Stderr, "  iconpng -e \"import { BiHome } from 'react-icons/bi'\" -s 256 -c '#ff0000'\n")
		fmt.Fprintf(os.Stderr, "  iconpng --from bi --icon BiHome -e '' -o icons     # Export from fields\n")
		fmt.Fprintf(os.Stderr, "  iconpng -l bi                                      # List the icons of a pack\n")
		fmt.Fprintf(os.Stderr, "  iconpng -w --addr :9000                            # Start Web Mode\n")
	}

	resolveFlag := pflag.StringP("resolve", "r", "", "Resolve an import line and print the report as JSON")
	exportFlag := pflag.StringP("export", "e", "", "Export the icon named by an import line to <Icon>.png")
	pflag.IntP("size", "s", 0, fmt.Sprintf("PNG size in pixels, %d-%d (default %d)", model.MinSizePx, model.MaxSizePx, model.DefaultSizePx))
	pflag.StringP("color", "c", "", "Fill colour as #rgb or #rrggbb (default "+model.DefaultFillColor+")")
	pflag.StringP("out", "o", "", "Directory exported PNGs are written to (default .)")
	fromFlag := pflag.String("from", "", "Package path, used with --icon instead of an import line")
	iconFlag := pflag.String("icon", "", "Icon name, used with --from")
	pflag.String("fill-mode", "", "uniform paints every shape with the colour, native keeps per-shape fills")
	listFlag := pflag.BoolP("list", "l", false, "List bundled packs, or the icons of the pack given as argument")
	pflag.String("icons-dir", "", "Directory searched for icon packs that are not bundled")
	pflag.String("addr", "", "Listen address for Web Mode (default :8080)")
	configFlag := pflag.String("config", "", "Config file (default "+config.DefaultConfigPath()+")")
	writeConfigFlag := pflag.Bool("write-config", false, "Write the default config file and exit")
	verboseFlag := pflag.BoolP("verbose", "v", false, "Log debug details, including resolution attempts")
	webFlag := pflag.BoolP("web", "w", false, "Start Web Mode on http://localhost:8080")
	versionFlag := pflag.BoolP("version", "V", false, "Print version information")
	updateFlag := pflag.BoolP("update", "u", false, "Check for latest version")
	helpFlag := pflag.BoolP("help", "h", false, "Show this help message")
	pflag.Parse()

	if *helpFlag {
		pflag.Usage()
		return 0
	}

	if *versionFlag {
		fmt.Printf("iconpng version %s\n", model.Version)
		return 0
	}

	if *updateFlag {
		checkUpdate(model.Version)
		return 0
	}

	if *writeConfigFlag {
		path, err := config.WriteDefault(*configFlag, false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
			return 1
		}
		fmt.Printf("Config written to %s\n", path)
		return 0
	}

	cfg, err := config.Load(*configFlag, pflag.CommandLine)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}
	svc := newServices(cfg)

	interactive := !*webFlag && !*listFlag && *resolveFlag == "" && !pflag.CommandLine.Changed("export")
	if interactive {
		return runTuiMode(ctx, svc, *verboseFlag)
	}

	ctx = logx.Install(ctx, logx.Console(*verboseFlag))

	switch {
	case *webFlag:
		return runWebMode(ctx, svc)
	case *listFlag:
		return runListMode(ctx, svc, pflag.Arg(0))
	case *resolveFlag != "":
		return runResolveMode(ctx, svc, *resolveFlag)
	default:
		return runExportMode(ctx, svc, *exportFlag, *fromFlag, *iconFlag)
	}
}

func runResolveMode(ctx context.Context, svc services, text string) int {
	rep := resolve.Explain(ctx, svc.parser, svc.registry, text)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
		return 1
	}
	if !rep.Resolved {
		return 2
	}
	return 0
}

// runExportMode exports the icon named by text, or by --from/--icon when
// text is empty.
func runExportMode(ctx context.Context, svc services, text, from, icon string) int {
	var (
		ref model.Reference
		err error
	)
	if text != "" {
		ref, err = svc.parser.Parse(text)
	} else {
		ref, err = svc.parser.FromFields(from, icon)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", model.IconFailed, model.Message(err))
		return 2
	}

	// The lookup runs beside the bounded wait; a failed lookup ends it.
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	session := resolve.NewSession(svc.registry)
	session.OnCommit = func(res resolve.Result) {
		if res.Err != nil {
			cancel(res.Err)
		}
	}
	go session.Resolve(ctx, session.Update(ref))

	budget := raster.PollBudget{Timeout: svc.cfg.Export.WaitTimeout(), Interval: svc.cfg.Export.WaitInterval()}
	req := model.ExportRequest{SizePx: svc.cfg.Export.SizePx, FillColor: svc.cfg.Export.FillColor}
	path, err := svc.exporter.ExportWhenReady(ctx, session.Handle, budget, req, raster.FileSink{Dir: svc.cfg.OutputDir})
	if err != nil {
		if cause := context.Cause(ctx); ctx.Err() != nil && cause != nil {
			err = cause
		}
		fmt.Fprintf(os.Stderr, "%s %s\n", model.IconFailed, model.Message(err))
		switch model.KindOf(err) {
		case model.KindResolution, model.KindSymbolNotFound:
			return 2
		}
		return 1
	}
	fmt.Printf("%s Saved %s\n", model.IconSaved, path)
	return 0
}

func runListMode(ctx context.Context, svc services, packagePath string) int {
	if packagePath == "" {
		for _, key := range svc.registry.Packs() {
			fmt.Println(resolve.Normalize(svc.registry.Library(), key))
		}
		return 0
	}

	symbols, err := svc.registry.Symbols(ctx, packagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", model.IconFailed, model.Message(err))
		return 2
	}
	for _, s := range symbols {
		fmt.Println(s)
	}
	return 0
}

func runWebMode(ctx context.Context, svc services) int {
	srv := web.NewServer(svc.cfg, svc.parser, svc.registry, svc.exporter)
	fmt.Printf("Starting iconpng web server at %s\n", svc.cfg.Web.Addr)
	if err := srv.Serve(ctx); err != nil {
		logx.Ctx(ctx).With("err", err).Error("web server failed")
		return 1
	}
	return 0
}

func runTuiMode(ctx context.Context, svc services, verbose bool) int {
	// bubbletea owns the terminal, so logs go to a file.
	if err := os.MkdirAll(filepath.Dir(svc.cfg.LogFile), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating log dir: %v\n", err)
		return 1
	}
	logFile, err := os.OpenFile(svc.cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		return 1
	}
	defer logFile.Close()
	ctx = logx.Install(ctx, logx.Structured(logFile, verbose))
	log := logx.Ctx(ctx)

	store, err := prefs.OpenFile(svc.cfg.PrefsFile)
	if err != nil {
		log.Warn("preferences unreadable, starting fresh", "file", svc.cfg.PrefsFile, "err", err)
	}

	m := tui.InitialModel(tui.Deps{
		Ctx:      ctx,
		Config:   svc.cfg,
		Parser:   svc.parser,
		Registry: svc.registry,
		Exporter: svc.exporter,
		Sink:     raster.FileSink{Dir: svc.cfg.OutputDir},
		Store:    store,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Printf("Alas, there's been an error: %v", err)
		return 1
	}
	return 0
}
