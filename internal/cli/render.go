package cli

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orgchart/pkg/buildinfo"
	"github.com/matzehuels/orgchart/pkg/cache"
	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/config"
	"github.com/matzehuels/orgchart/pkg/render"
	"github.com/matzehuels/orgchart/pkg/render/nodelink"
)

// artifactTTL is how long rendered diagrams stay in the cache.
const artifactTTL = 7 * 24 * time.Hour

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string          // output file (single format) or base path (multiple)
	formats   []render.Format // output formats
	detailed  bool            // list unbound attributes in the info panel
	collapsed []string        // keys whose info panel is hidden
	selected  string          // key drawn with the selection outline
	noCache   bool            // bypass the render cache
}

// renderCommand creates the render command for generating diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [dataset]",
		Short: "Render an org chart to SVG, PNG, PDF, or DOT",
		Long: `Render lays out a dataset as a top-down org chart using Graphviz.

Each record becomes a card with its name and title, an info panel listing
"Head of" and "Reporting to", and a link to the flag of its nation. Rendered
output is cached by dataset, template, and options.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDataset,
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := parseFormats(formatsStr)
			if err != nil {
				return err
			}
			opts.formats = formats
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "list every attribute in the info panel")
	cmd.Flags().StringSliceVar(&opts.collapsed, "collapse", nil, "keys whose info panel is collapsed")
	cmd.Flags().StringVar(&opts.selected, "select", "", "key to highlight as selected")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to [svg].
func parseFormats(s string) ([]render.Format, error) {
	if s == "" {
		return []render.Format{render.FormatSVG}, nil
	}
	var out []render.Format
	for _, part := range strings.Split(s, ",") {
		f, err := render.ParseFormat(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out, nil
}

func isFormat(ext string) bool {
	return slices.Contains(render.Formats, render.Format(ext))
}

// runRender loads the dataset and template, then renders every requested
// format, reusing cached artifacts where possible.
func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	tpl, err := c.template()
	if err != nil {
		return err
	}
	records, err := c.loadDataset(input, tpl)
	if err != nil {
		return err
	}
	artifacts, err := newCache(logger, opts.noCache)
	if err != nil {
		return err
	}
	defer artifacts.Close()

	job := renderJob{
		records:      records,
		tpl:          tpl,
		opts:         opts,
		datasetHash:  cache.DatasetHash(records),
		templateHash: templateHash(tpl),
		keyer:        cache.NewVersionedKeyer(cache.NewDefaultKeyer(), buildinfo.Short()),
	}
	dot := job.dot()

	base := basePath(opts.output, input, isFormat)
	single := len(opts.formats) == 1 && opts.output != ""
	for _, format := range opts.formats {
		data, cached, err := job.render(ctx, artifacts, dot, format)
		if err != nil {
			return fmt.Errorf("%s: %w", format, err)
		}

		path := fmt.Sprintf("%s.%s", base, format)
		if single {
			path = opts.output
		}
		if err := writeFile(path, data); err != nil {
			return err
		}
		if path != "-" {
			printFile(path)
			printStats(chart.NewTree(records), cached)
		}
	}

	prog.done(fmt.Sprintf("Rendered %s", input), "records", len(records), "formats", len(opts.formats))
	return nil
}

// renderJob carries everything needed to render and cache one dataset.
type renderJob struct {
	records      []chart.Record
	tpl          *config.Template
	opts         *renderOpts
	datasetHash  string
	templateHash string
	keyer        cache.Keyer
}

func (j renderJob) dot() string {
	collapsed := make(map[chart.Key]bool, len(j.opts.collapsed))
	for _, k := range j.opts.collapsed {
		collapsed[j.resolve(k)] = true
	}
	return nodelink.ToDOT(j.records, nodelink.Options{
		Template:  j.tpl,
		Detailed:  j.opts.detailed,
		Collapsed: collapsed,
		Selected:  j.resolve(j.opts.selected),
	})
}

// resolve maps a key given on the command line to the record key it names.
// Numeric and string keys are distinct, so "3" names record 3 when there is
// one and record "3" otherwise.
func (j renderJob) resolve(s string) chart.Key {
	if s == "" {
		return chart.Key{}
	}
	idx := chart.BuildIndex(j.records)
	if k := chart.ParseKey(s); idx.Contains(k) {
		return k
	}
	return chart.StringKey(s)
}

func (j renderJob) render(ctx context.Context, c cache.Cache, dot string, format render.Format) ([]byte, bool, error) {
	if format == render.FormatDOT {
		return []byte(dot), false, nil
	}
	key := j.keyer.ArtifactKey(j.datasetHash, j.templateHash, cache.ArtifactKeyOpts{
		Format:    string(format),
		Detailed:  j.opts.detailed,
		Selected:  j.opts.selected,
		Collapsed: j.opts.collapsed,
	})
	return cache.GetOrCompute(ctx, c, key, "artifact", artifactTTL, func() ([]byte, error) {
		spin := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", format))
		spin.Start()
		defer spin.Stop()
		return nodelink.Render(ctx, dot, format)
	})
}

// templateHash hashes the effective template so cached artifacts are
// invalidated when the configuration changes.
func templateHash(tpl *config.Template) string {
	var buf bytes.Buffer
	if err := tpl.Encode(&buf); err != nil {
		return ""
	}
	return cache.Hash(buf.Bytes())
}

func writeFile(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = out.Write(data)
	return err
}
