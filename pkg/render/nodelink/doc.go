// Package nodelink renders an org chart as a node-link tree diagram.
//
// # Overview
//
// Each record becomes a rounded card showing its name and title. Unless the
// card is collapsed, an info panel below lists "Head of: X" and
// "Reporting to: Y". Links join every record to the record it reports to.
// Graphviz does the layout, so the template's layout parameters are mapped
// onto DOT graph attributes:
//
//   - angle selects rankdir (90 is top to bottom, 0 left to right)
//   - layer_spacing and node_spacing become ranksep and nodesep
//   - last_parents stacks the leaf reports of a parent in one column
//
// # Usage
//
// Convert records to DOT, then render:
//
//	dot := nodelink.ToDOT(records, nodelink.Options{Template: tpl})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// [Render] dispatches on a [render.Format]. PDF output converts the SVG with
// rsvg-convert and requires librsvg.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG and
// PNG rendering.
package nodelink
