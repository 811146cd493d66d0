package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/errors"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate [dataset]",
		Short: "Check that a dataset is a well-formed org chart",
		Long: `Validate loads a dataset and checks that keys are present and unique and
that reporting lines contain no cycles. Records whose boss does not exist are
reported; they are drawn as roots. Use --strict to treat them as errors.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDataset,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd.Context(), args[0], strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail when a parent key does not resolve")
	return cmd
}

func (c *CLI) runValidate(ctx context.Context, input string, strict bool) error {
	logger := loggerFromContext(ctx)

	tpl, err := c.template()
	if err != nil {
		return err
	}
	records, err := c.loadDataset(input, tpl)
	if err != nil {
		printError("%s", errors.UserMessage(err))
		return err
	}

	tree := chart.NewTree(records)
	dangling := tree.Dangling()
	logger.Debug("dataset checked", "records", tree.Len(), "dangling", len(dangling))

	for _, r := range dangling {
		printWarning("record %#v reports to missing %s %#v", r.Key, tpl.ParentProperty, r.Parent)
	}
	if strict && len(dangling) > 0 {
		return errors.New(errors.ErrCodeInvalidInput, "%d records report to missing parents", len(dangling))
	}

	printSuccess("%s is a valid org chart", input)
	printChartSummary(tree)
	printNextStep("Render it", fmt.Sprintf("%s render %s", appName, input))
	return nil
}
