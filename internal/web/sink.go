package web

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"strconv"
)

// attachmentSink delivers an exported PNG as the HTTP response body. Once
// started is set the headers are gone and errors can no longer be reported
// to the client.
type attachmentSink struct {
	w       http.ResponseWriter
	started bool
}

func (s *attachmentSink) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	h := s.w.Header()
	h.Set("Content-Type", "image/png")
	h.Set("Content-Length", strconv.Itoa(len(data)))
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	h.Set("Cache-Control", "no-store")
	s.started = true
	s.w.WriteHeader(http.StatusOK)
	if _, err := s.w.Write(data); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return name, nil
}
