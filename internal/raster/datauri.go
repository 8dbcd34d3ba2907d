package raster

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

const svgDataPrefix = "data:image/svg+xml;charset=utf-8,"

// EncodeDataURI percent-encodes markup into an SVG data URI.
func EncodeDataURI(markup []byte) string {
	return svgDataPrefix + strings.ReplaceAll(url.QueryEscape(string(markup)), "+", "%20")
}

// DecodeDataURI returns the payload of a data URI, percent-encoded or base64.
func DecodeDataURI(uri string) ([]byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, fmt.Errorf("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("data URI has no payload")
	}
	if strings.HasSuffix(meta, ";base64") {
		return base64.StdEncoding.DecodeString(payload)
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("decode data URI: %w", err)
	}
	return []byte(s), nil
}
