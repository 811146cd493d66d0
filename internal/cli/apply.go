package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orgchart/pkg/chart"
	orgio "github.com/matzehuels/orgchart/pkg/io"
	"github.com/matzehuels/orgchart/pkg/store"
)

// applyCommand creates the apply command.
func (c *CLI) applyCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "apply [dataset] [batch...]",
		Short: "Fold change batches into a dataset",
		Long: `Apply reads one or more change batches, each a JSON or YAML document with
insertedNodeKeys, modifiedNodeData, and removedNodeKeys, and folds them into
the dataset in order, exactly as a diagram's model changes are reconciled.

The result is written to --output ("-" for stdout). Without --output only a
summary is printed.`,
		Args:              cobra.MinimumNArgs(2),
		ValidArgsFunction: completeBatches,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runApply(cmd.Context(), args[0], args[1:], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the resulting dataset here")
	return cmd
}

func (c *CLI) runApply(ctx context.Context, input string, batches []string, output string) error {
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
	props := orgio.PropertiesOf(tpl)

	st, err := store.New(records, store.WithLogger(logger), store.WithReservedFields(tpl.Reserved()...))
	if err != nil {
		return err
	}

	var total store.Result
	for _, path := range batches {
		b, err := orgio.ImportBatch(path, props)
		if err != nil {
			return err
		}
		res := st.Apply(b)
		logger.Debug("batch applied", "path", path, "modified", res.Modified, "inserted", res.Inserted, "removed", res.Removed)
		total = addResult(total, res)
	}

	snap := st.Snapshot()
	if err := snap.Verify(); err != nil {
		return err
	}
	// The store folds batches without cycle checks.
	if err := chart.Validate(snap.Records()); err != nil {
		printWarning("result is not a forest: %v", err)
	}

	if output != "" {
		format := orgio.FormatJSON
		if output != "-" {
			if format, err = orgio.DetectFormat(output); err != nil {
				return err
			}
		}
		out, err := openOutput(output)
		if err != nil {
			return err
		}
		defer out.Close()
		if err := orgio.Write(out, format, snap.Records(), props); err != nil {
			return err
		}
	}

	if output != "-" {
		printSuccess("Applied %d batch(es) to %s", len(batches), input)
		printBatchTotals(total, snap.Len())
		if output != "" {
			printFile(output)
		}
	}
	prog.done(fmt.Sprintf("Applied %d batch(es)", len(batches)), "records", snap.Len(), "ignored", len(total.Ignored))
	return nil
}

func addResult(total, r store.Result) store.Result {
	total.Modified += r.Modified
	total.Inserted += r.Inserted
	total.Removed += r.Removed
	total.Ignored = append(total.Ignored, r.Ignored...)
	total.Version = r.Version
	return total
}
