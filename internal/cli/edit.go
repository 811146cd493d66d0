package cli

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	orgio "github.com/matzehuels/orgchart/pkg/io"
)

// editCommand creates the interactive edit command.
func (c *CLI) editCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "edit [dataset]",
		Short: "Edit an org chart interactively",
		Long: `Edit opens the dataset in a terminal editor: the chart as an indented tree
on the left and the fields of the selected person on the right.

Typing into a field updates the side panel immediately; the diagram is updated
when the field is committed with enter. Press w to save to --output, which
defaults to the dataset itself.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDataset,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd.Context(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "save to this file instead of the dataset")
	return cmd
}

func (c *CLI) runEdit(ctx context.Context, input, output string) error {
	logger := loggerFromContext(ctx)

	if output == "" {
		output = input
	}
	if _, err := orgio.DetectFormat(output); err != nil {
		return err
	}

	tpl, err := c.template()
	if err != nil {
		return err
	}
	records, err := c.loadDataset(input, tpl)
	if err != nil {
		return err
	}

	// The terminal belongs to the editor while it runs.
	session, err := newEditSession(output, tpl, records, log.New(io.Discard))
	if err != nil {
		return err
	}
	defer session.close()

	p := tea.NewProgram(newEditorModel(session), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	logger.Debug("editor closed", "saves", session.saves, "dirty", session.dirty)

	if session.saves > 0 {
		printSuccess("Saved %d time(s)", session.saves)
		printFile(output)
	}
	if session.dirty {
		printWarning("Unsaved changes were discarded")
	}
	return nil
}
