package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"iconpng/internal/logx"
	"iconpng/internal/model"
	"iconpng/internal/resolve"
)

// Image is one rendered icon.
type Image struct {
	Name   string
	SizePx int
	Markup []byte
	RGBA   *image.RGBA
	PNG    []byte
}

// Exporter runs the export pipeline.
type Exporter struct {
	mode      FillMode
	rasterize func(markup []byte, size int) (*image.RGBA, error)
}

// NewExporter returns an exporter using the given fill mode. Unknown modes
// fall back to FillUniform.
func NewExporter(mode FillMode) *Exporter {
	if mode != FillNative {
		mode = FillUniform
	}
	return &Exporter{mode: mode, rasterize: rasterize}
}

// Mode reports the active fill mode.
func (e *Exporter) Mode() FillMode {
	return e.mode
}

// Prepare returns the rewritten markup for h and the normalized request.
func (e *Exporter) Prepare(h *resolve.Handle, req model.ExportRequest) ([]byte, model.ExportRequest, error) {
	req, err := req.Normalize()
	if err != nil {
		return nil, req, model.Wrap(model.KindExport, err, "invalid colour")
	}
	if req.FillColor == "" {
		req.FillColor = model.DefaultFillColor
	}
	markup, ok := h.Markup()
	if !ok {
		return nil, req, model.Errorf(model.KindExport, "no preview element")
	}
	out, err := Rewrite(markup, Style{SizePx: req.SizePx, Color: req.FillColor, Mode: e.mode})
	if err != nil {
		return nil, req, err
	}
	return out, req, nil
}

// Rasterize draws h onto a square canvas without encoding it.
func (e *Exporter) Rasterize(h *resolve.Handle, req model.ExportRequest) (*Image, error) {
	markup, req, err := e.Prepare(h, req)
	if err != nil {
		return nil, err
	}
	img, err := e.rasterize(markup, req.SizePx)
	if err != nil {
		return nil, err
	}
	return &Image{Name: h.Ref.SymbolName, SizePx: req.SizePx, Markup: markup, RGBA: img}, nil
}

// Render runs the pipeline up to an encoded PNG named <symbol>.png.
func (e *Exporter) Render(h *resolve.Handle, req model.ExportRequest) (*Image, error) {
	var symbol string
	if h != nil {
		symbol = h.Ref.SymbolName
	}
	img, err := e.Rasterize(h, req)
	if err != nil {
		return nil, err
	}
	name, err := model.PNGFilename(symbol)
	if err != nil {
		return nil, model.Wrap(model.KindExport, err, "failed to create PNG")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img.RGBA); err != nil {
		return nil, model.Wrap(model.KindExport, err, "failed to create PNG")
	}
	if buf.Len() == 0 {
		return nil, model.Errorf(model.KindExport, "failed to create PNG")
	}
	img.Name = name
	img.PNG = buf.Bytes()
	return img, nil
}

// Export renders h and delivers the PNG through sink.
func (e *Exporter) Export(ctx context.Context, h *resolve.Handle, req model.ExportRequest, sink Sink) (string, error) {
	log := logx.Ctx(ctx)
	if h != nil {
		log = logx.WithRef(log, h.Ref)
	}
	img, err := e.Render(h, req)
	if err != nil {
		logx.WithKind(log, err).Warn("export failed")
		return "", err
	}
	where, err := sink.Save(ctx, img.Name, img.PNG)
	if err != nil {
		err = model.Wrap(model.KindExport, err, "failed to save PNG")
		logx.WithKind(log, err).Warn("export failed")
		return "", err
	}
	log.Info("icon exported", "file", where, "size", img.SizePx, "bytes", len(img.PNG))
	return where, nil
}

// ExportWhenReady waits for ready to yield a handle within budget and then
// exports it. When the budget runs out nothing is rendered.
func (e *Exporter) ExportWhenReady(ctx context.Context, ready func() *resolve.Handle, budget PollBudget, req model.ExportRequest, sink Sink) (string, error) {
	h, err := AwaitHandle(ctx, ready, budget)
	if err != nil {
		logx.WithKind(logx.Ctx(ctx), err).Warn("export aborted")
		return "", err
	}
	return e.Export(ctx, h, req, sink)
}

func rasterize(markup []byte, size int) (img *image.RGBA, err error) {
	data, err := DecodeDataURI(EncodeDataURI(markup))
	if err != nil {
		return nil, model.Wrap(model.KindExport, err, "failed to load SVG as image")
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.WarnErrorMode)
	if err != nil {
		return nil, model.Wrap(model.KindExport, err, "failed to load SVG as image")
	}
	if size < model.MinSizePx || size > model.MaxSizePx {
		return nil, model.Errorf(model.KindExport, "canvas error")
	}

	defer func() {
		if r := recover(); r != nil {
			img = nil
			err = model.Wrap(model.KindExport, fmt.Errorf("%v", r), "canvas error")
		}
	}()

	w, h := icon.ViewBox.W, icon.ViewBox.H
	if w <= 0 || h <= 0 {
		w, h = float64(size), float64(size)
	}
	scale := float64(size) / max(w, h)
	outW, outH := w*scale, h*scale
	icon.SetTarget((float64(size)-outW)/2, (float64(size)-outH)/2, outW, outH)

	img = image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1.0)
	return img, nil
}
