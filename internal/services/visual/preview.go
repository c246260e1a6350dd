// Package visual builds the placeholder artwork shown by the visual studio.
package visual

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"github.com/socialchef/cocktail-studio/internal/validation"
)

// DataURIPrefix is prepended to every encoded preview.
const DataURIPrefix = "data:image/svg+xml;utf8,"

const (
	Width  = 1200
	Height = 800

	backgroundColor = "#FAF5FF"
	titleColor      = "#5B2C6F"
	subtitleColor   = "#A2193B"
	fontFamily      = "Segoe UI, Arial"
	subtitle        = "— Cocktail Studio"
)

// BuildPreview renders a 1200x800 SVG card titled with the sanitized prompt
// and returns it as a data URI. An empty prompt yields "".
func BuildPreview(prompt string) string {
	safe := validation.Sanitize(prompt)
	if safe == "" {
		return ""
	}
	return DataURIPrefix + EncodeURIComponent(RenderSVG(safe))
}

// RenderSVG returns the raw SVG document for an already sanitized title.
func RenderSVG(title string) string {
	var escaped bytes.Buffer
	// EscapeText only fails on writer errors, which bytes.Buffer never returns.
	_ = xml.EscapeText(&escaped, []byte(title))

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	fmt.Fprintf(&b, "<svg xmlns='http://www.w3.org/2000/svg' width='%d' height='%d'>\n", Width, Height)
	fmt.Fprintf(&b, "  <rect width='100%%' height='100%%' fill='%s'/>\n", backgroundColor)
	fmt.Fprintf(&b, "  <text x='50%%' y='45%%' text-anchor='middle' font-family='%s' font-size='48' fill='%s'>%s</text>\n",
		fontFamily, titleColor, escaped.String())
	fmt.Fprintf(&b, "  <text x='50%%' y='60%%' text-anchor='middle' font-family='%s' font-size='28' fill='%s'>%s</text>\n",
		fontFamily, subtitleColor, subtitle)
	b.WriteString("</svg>")
	return b.String()
}

// EncodeURIComponent percent-encodes s the way browsers do for URI
// components: everything except A-Z a-z 0-9 - _ . ! ~ * ' ( ) is escaped.
func EncodeURIComponent(s string) string {
	escaped := url.QueryEscape(s)
	return componentReplacer.Replace(escaped)
}

var componentReplacer = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// DecodePreview returns the SVG document carried by a data URI produced by
// BuildPreview.
func DecodePreview(dataURI string) (string, error) {
	if !strings.HasPrefix(dataURI, DataURIPrefix) {
		return "", fmt.Errorf("not an svg data uri")
	}
	svg, err := url.PathUnescape(strings.TrimPrefix(dataURI, DataURIPrefix))
	if err != nil {
		return "", fmt.Errorf("failed to decode preview: %w", err)
	}
	return svg, nil
}
