package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/config"
	"github.com/matzehuels/orgchart/pkg/observability"
	"github.com/matzehuels/orgchart/pkg/render"
)

// Options configures org chart rendering.
type Options struct {
	// Template supplies attribute bindings and layout. Nil means
	// config.Default().
	Template *config.Template

	// Detailed lists every attribute not bound by the template in the info
	// panel.
	Detailed bool

	// Collapsed holds the keys whose info panel is hidden. Info panels are
	// shown by default.
	Collapsed map[chart.Key]bool

	// Selected is drawn with the selection outline. The zero key selects
	// nothing.
	Selected chart.Key
}

const (
	selectionColor = "#7986cb"
	highlightFill  = "#e8eaf6"
	linkColor      = "#424242"
)

// ToDOT converts records to Graphviz DOT for an org chart. Every record becomes
// a node card; a link joins each record to the record it reports to. Records
// whose parent does not resolve are drawn as roots.
//
// With Layout.LastParents set, the reports of a parent whose reports are all
// leaves are stacked in one column instead of spreading across the layer.
func ToDOT(records []chart.Record, opts Options) string {
	tpl := opts.Template
	if tpl == nil {
		tpl = config.Default()
	}
	tree := chart.NewTree(records)
	l := tpl.Layout

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankDir(l.Angle))
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=ortho;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, color=\"#e0e0e0\", fontname=\"Roboto, sans-serif\", fontsize=12, margin=\"0.15,0.1\"];\n")
	fmt.Fprintf(&buf, "  edge [color=%q, penwidth=2, arrowhead=none];\n", linkColor)
	fmt.Fprintf(&buf, "  ranksep=%s;\n", inches(l.LayerSpacing))
	fmt.Fprintf(&buf, "  nodesep=%s;\n", inches(l.NodeSpacing))
	buf.WriteString("\n")

	for _, r := range records {
		label := fmtLabel(r, tree, tpl, !opts.Collapsed[r.Key], opts.Detailed)
		attrs := fmtAttrs(r, label, tpl, !opts.Selected.IsZero() && r.Key == opts.Selected)
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(r.Key), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, r := range records {
		if p, ok := tree.Parent(r.Key); ok {
			fmt.Fprintf(&buf, "  %q -> %q;\n", nodeID(p.Key), nodeID(r.Key))
		}
	}

	if l.LastParents && l.AlternateAngle%180 != l.Angle%180 {
		writeLastParents(&buf, records, tree)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// writeLastParents chains the leaf-only reports of each parent with invisible
// edges so that they stack along the alternate direction.
func writeLastParents(buf *bytes.Buffer, records []chart.Record, tree *chart.Tree) {
	for _, r := range records {
		kids := tree.Children(r.Key)
		if len(kids) < 2 {
			continue
		}
		leaves := true
		for _, k := range kids {
			if !tree.IsLeaf(k.Key) {
				leaves = false
				break
			}
		}
		if !leaves {
			continue
		}
		fmt.Fprintf(buf, "\n  // last parent %s\n", nodeID(r.Key))
		for i := 1; i < len(kids); i++ {
			fmt.Fprintf(buf, "  %q -> %q [style=invis];\n", nodeID(kids[i-1].Key), nodeID(kids[i].Key))
		}
	}
}

// nodeID keeps numeric and string keys with the same text apart.
func nodeID(k chart.Key) string {
	if k.IsNumeric() {
		return "n" + k.String()
	}
	return "s" + k.String()
}

func rankDir(angle int) string {
	switch angle {
	case 0:
		return "LR"
	case 180:
		return "RL"
	case 270:
		return "BT"
	}
	return "TB"
}

// inches converts layout points to the inches Graphviz expects.
func inches(points float64) string {
	return strconv.FormatFloat(points/72, 'f', 2, 64)
}

func fmtLabel(r chart.Record, tree *chart.Tree, tpl *config.Template, expanded, detailed bool) string {
	b := tpl.Bindings
	name := r.Value(b.Name)
	if name == "" {
		name = r.Key.String()
	}
	lines := []string{name}
	if title, ok := r.Get(b.Title); ok {
		lines = append(lines, title)
	}
	if !expanded {
		return strings.Join(lines, "\n")
	}

	var info []string
	if head, ok := r.Get(b.HeadOf); ok {
		info = append(info, "Head of: "+head)
	}
	if boss, ok := tree.Parent(r.Key); ok {
		info = append(info, "Reporting to: "+boss.Value(b.Name))
	}
	if detailed {
		bound := map[string]bool{b.Name: true, b.Title: true, b.HeadOf: true, b.Nation: true}
		for _, name := range r.Attrs.Names() {
			if !bound[name] {
				info = append(info, fmt.Sprintf("%s: %s", name, r.Attrs[name]))
			}
		}
	}
	if len(info) > 0 {
		lines = append(lines, "")
		lines = append(lines, info...)
	}
	return strings.Join(lines, "\n")
}

func fmtAttrs(r chart.Record, label string, tpl *config.Template, selected bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if nation := r.Value(tpl.Bindings.Nation); nation != "" {
		attrs = append(attrs, fmt.Sprintf("tooltip=%q", nation))
		if u := tpl.FlagURLFor(nation); u != "" {
			attrs = append(attrs, fmt.Sprintf("URL=%q", u))
		}
	}
	if selected {
		attrs = append(attrs, fmt.Sprintf("color=%q", selectionColor), "penwidth=3", fmt.Sprintf("fillcolor=%q", highlightFill))
	}
	return attrs
}

// Render renders DOT source in the given format. DOT is returned unchanged;
// SVG and PNG are rendered in-process; PDF is converted from SVG.
func Render(ctx context.Context, dot string, format render.Format) ([]byte, error) {
	switch format {
	case render.FormatDOT:
		return []byte(dot), nil
	case render.FormatSVG:
		return RenderSVG(ctx, dot)
	case render.FormatPNG:
		return RenderPNG(ctx, dot)
	case render.FormatPDF:
		return RenderPDF(ctx, dot)
	}
	_, err := render.ParseFormat(string(format))
	return nil, err
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := renderGraphviz(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderGraphviz(ctx, dot, graphviz.PNG)
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

func renderGraphviz(ctx context.Context, dot string, format graphviz.Format) (out []byte, err error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	hooks := observability.Render()
	hooks.OnRenderStart(ctx, string(format), strings.Count(dot, " [label="))
	start := time.Now()
	defer func() {
		hooks.OnRenderComplete(ctx, string(format), len(out), time.Since(start), err)
	}()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
