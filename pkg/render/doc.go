// Package render turns org chart snapshots into images.
//
// The [nodelink] subpackage lays the chart out with Graphviz and renders
// DOT, SVG, and PNG. This package holds what is shared between output
// formats: the list of supported formats and SVG to PDF conversion through
// the external rsvg-convert tool (from librsvg).
//
//	dot := nodelink.ToDOT(records, nodelink.Options{Template: tpl})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//
// [nodelink]: github.com/matzehuels/orgchart/pkg/render/nodelink
package render

import (
	"slices"
	"strings"

	"github.com/matzehuels/orgchart/pkg/errors"
)

// Format is an output format.
type Format string

const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// Formats lists the supported output formats.
var Formats = []Format{FormatDOT, FormatSVG, FormatPNG, FormatPDF}

// ParseFormat accepts a format name in any case.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(s, ".")))
	if !slices.Contains(Formats, f) {
		return "", errors.New(errors.ErrCodeUnsupported, "unsupported format %q (use dot, svg, png or pdf)", s)
	}
	return f, nil
}
