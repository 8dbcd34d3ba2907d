package web

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"pkt.systems/pslog"

	"iconpng/internal/config"
	"iconpng/internal/logx"
	"iconpng/internal/model"
	"iconpng/internal/raster"
	"iconpng/internal/resolve"
)

//go:embed static/*
var staticFS embed.FS

//go:embed help.md
var helpMD string

//go:embed sw.js
var swJS string

const shutdownTimeout = 5 * time.Second

// faviconRef is the icon rendered for /favicon.ico.
var faviconRef = model.Reference{PackagePath: "react-icons/bi", SymbolName: "BiAddToQueue"}

// precache lists the paths the service worker stores on install.
var precache = []string{"/", "/manifest.json", "/favicon.ico"}

// Server is the browser mode: an embedded page plus a small JSON API over
// the resolver and the export pipeline.
type Server struct {
	cfg      config.Config
	parser   *resolve.Parser
	registry *resolve.Registry
	exporter *raster.Exporter
	static   fs.FS

	faviconOnce sync.Once
	favicon     []byte
	faviconErr  error
}

// NewServer wires the handlers to the shared resolver and exporter.
func NewServer(cfg config.Config, parser *resolve.Parser, registry *resolve.Registry, exporter *raster.Exporter) *Server {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		sub = staticFS
	}
	return &Server{
		cfg:      cfg,
		parser:   parser,
		registry: registry,
		exporter: exporter,
		static:   sub,
	}
}

// Handler returns the routed and logged handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/{$}", s.handleIndex)
	mux.Handle("/", s.versioned(http.FileServer(http.FS(s.static))))
	mux.HandleFunc("/favicon.ico", s.handleFavicon)
	mux.HandleFunc("/manifest.json", s.handleManifest)
	mux.HandleFunc("/sw.js", s.handleServiceWorker)

	// API Endpoints
	mux.HandleFunc("GET /api/resolve", s.handleResolve)
	mux.HandleFunc("GET /api/icon", s.handleIcon)
	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("GET /api/packs", s.handlePacks)
	mux.HandleFunc("GET /api/version", s.handleVersion)
	mux.HandleFunc("GET /api/help", s.handleHelp)

	return withRequestLogging(mux)
}

// Serve listens on the configured address until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	logger := logx.Ctx(ctx)
	server := &http.Server{
		Addr:     s.cfg.Web.Addr,
		Handler:  s.Handler(),
		ErrorLog: pslog.LogLoggerWithLevel(logger, pslog.ErrorLevel),
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	logger.Info("web server listening", "addr", s.cfg.Web.Addr, "url", localURL(s.cfg.Web.Addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func localURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

func (s *Server) cacheVersion() string {
	return s.cfg.Web.CacheVersion
}

// versioned marks responses for ?v=<cache version> URLs as immutable. Any
// other static request must be revalidated.
func (s *Server) versioned(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCaching(w, r.URL.Query().Get("v") == s.cacheVersion())
		next.ServeHTTP(w, r)
	})
}

func setCaching(w http.ResponseWriter, immutable bool) {
	if immutable {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := fs.ReadFile(s.static, "index.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	page = bytes.ReplaceAll(page, []byte("{{CACHE_VERSION}}"), []byte(s.cacheVersion()))
	page = bytes.ReplaceAll(page, []byte("{{VERSION}}"), []byte(model.Version))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	setCaching(w, false)
	_, _ = w.Write(page)
}

func (s *Server) handleServiceWorker(w http.ResponseWriter, r *http.Request) {
	urls, _ := json.Marshal(precache)
	script := strings.NewReplacer(
		"{{CACHE_NAME}}", s.cacheVersion(),
		"{{PRECACHE_URLS}}", string(urls),
	).Replace(swJS)

	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	setCaching(w, false)
	_, _ = w.Write([]byte(script))
}

type manifestIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

type manifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	StartURL        string         `json:"start_url"`
	Display         string         `json:"display"`
	BackgroundColor string         `json:"background_color"`
	ThemeColor      string         `json:"theme_color"`
	Icons           []manifestIcon `json:"icons"`
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	setCaching(w, r.URL.Query().Get("v") == s.cacheVersion())
	w.Header().Set("Content-Type", "application/manifest+json")
	_ = json.NewEncoder(w).Encode(manifest{
		Name:            "Icon Downloader",
		ShortName:       "Icons",
		StartURL:        "/",
		Display:         "standalone",
		BackgroundColor: "#ffffff",
		ThemeColor:      "#7d56f4",
		Icons: []manifestIcon{
			{Src: "/favicon.ico", Sizes: "64x64", Type: "image/png"},
		},
	})
}

func (s *Server) handleFavicon(w http.ResponseWriter, r *http.Request) {
	s.faviconOnce.Do(func() {
		ctx := context.WithoutCancel(r.Context())
		h, err := s.registry.Lookup(ctx, faviconRef)
		if err != nil {
			s.faviconErr = err
			return
		}
		img, err := s.exporter.Render(h, model.ExportRequest{SizePx: 64, FillColor: "#7d56f4"})
		if err != nil {
			s.faviconErr = err
			return
		}
		s.favicon = img.PNG
	})
	if s.faviconErr != nil {
		logx.WithKind(logx.Ctx(r.Context()), s.faviconErr).Warn("favicon unavailable")
		http.NotFound(w, r)
		return
	}
	setCaching(w, r.URL.Query().Get("v") == s.cacheVersion())
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(s.favicon)
}

// handleResolve explains either ?text=<import line> or ?path=&icon=.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var rep resolve.Report
	if text := q.Get("text"); text != "" {
		rep = resolve.Explain(r.Context(), s.parser, s.registry, text)
	} else {
		rep = resolve.ExplainFields(r.Context(), s.parser, s.registry, q.Get("path"), q.Get("icon"))
	}
	writeJSON(w, http.StatusOK, rep)
}

// handleIcon returns the rewritten SVG the download would rasterize.
func (s *Server) handleIcon(w http.ResponseWriter, r *http.Request) {
	h, req, err := s.lookup(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if r.URL.Query().Get("size") == "" {
		req.SizePx = model.PreviewSizePx
	}
	markup, _, err := s.exporter.Prepare(h, req)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(markup)
}

// handleExport streams <symbol>.png as an attachment.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	h, req, err := s.lookup(r)
	if err != nil {
		writeError(w, err)
		return
	}
	sink := &attachmentSink{w: w}
	if _, err := s.exporter.Export(r.Context(), h, req, sink); err != nil && !sink.started {
		writeError(w, err)
	}
}

type packsResponse struct {
	Packs   []string `json:"packs,omitempty"`
	Path    string   `json:"path,omitempty"`
	Symbols []string `json:"symbols,omitempty"`
}

func (s *Server) handlePacks(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusOK, packsResponse{Packs: s.registry.Packs()})
		return
	}
	symbols, err := s.registry.Symbols(r.Context(), path)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, packsResponse{
		Path:    resolve.Normalize(s.registry.Library(), path),
		Symbols: symbols,
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version":      model.Version,
		"cacheVersion": s.cacheVersion(),
		"fillMode":     string(s.exporter.Mode()),
	})
}

func (s *Server) handleHelp(w http.ResponseWriter, r *http.Request) {
	text := strings.ReplaceAll(helpMD, "{{VERSION}}", model.Version)

	w.Header().Set("Content-Type", "text/markdown")
	_, _ = w.Write([]byte(text))
}

// lookup resolves the ?path=&icon= pair and reads ?size= and ?color=.
func (s *Server) lookup(r *http.Request) (*resolve.Handle, model.ExportRequest, error) {
	q := r.URL.Query()
	req := model.ExportRequest{SizePx: s.cfg.Export.SizePx, FillColor: q.Get("color")}
	if req.FillColor == "" {
		req.FillColor = s.cfg.Export.FillColor
	}
	if v := q.Get("size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return nil, req, model.Errorf(model.KindExport, "size must be a number")
		}
		req.SizePx = size
	}

	ref, err := s.parser.FromFields(q.Get("path"), q.Get("icon"))
	if err != nil {
		return nil, req, err
	}
	h, err := s.registry.Lookup(r.Context(), ref)
	if err != nil {
		return nil, req, err
	}
	return h, req, nil
}

type errorResponse struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusOf(err), errorResponse{
		Kind:  model.KindOf(err).String(),
		Error: model.Message(err),
	})
}

func statusOf(err error) int {
	switch model.KindOf(err) {
	case model.KindParse, model.KindUnsupported:
		return http.StatusBadRequest
	case model.KindResolution, model.KindSymbolNotFound:
		return http.StatusNotFound
	case model.KindExport:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
