package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/store"
)

// =============================================================================
// Palette
// =============================================================================

var (
	colorTeal  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorAmber = lipgloss.Color("220")
	colorRed   = lipgloss.Color("167")
	colorBlue  = lipgloss.Color("75")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	// StyleDim renders labels, separators and paths around chart output.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue renders counts and file names.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning renders chart problems that do not stop a command.
	StyleWarning = lipgloss.NewStyle().Foreground(colorAmber)

	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorTeal)
	styleOK      = lipgloss.NewStyle().Foreground(colorGreen)
	styleFailed  = lipgloss.NewStyle().Foreground(colorRed)
	styleNote    = lipgloss.NewStyle().Foreground(colorGray)
	styleSpinner = lipgloss.NewStyle().Foreground(colorTeal)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleLabel   = lipgloss.NewStyle().Foreground(colorGray).Width(10)
)

const (
	markOK      = "✓"
	markFailed  = "✗"
	markWarning = "!"
	markNote    = "›"
	markFile    = "→"
)

// =============================================================================
// Status lines
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleOK.Render(markOK) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleFailed.Render(markFailed) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(StyleWarning.Render(markWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleNote.Render(markNote) + " " + fmt.Sprintf(format, args...))
}

func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a path a command wrote a dataset or diagram to.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(markFile) + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleLabel.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep suggests the command that usually follows.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Chart summaries
// =============================================================================

// printChartSummary prints the shape of a chart as labeled rows.
func printChartSummary(tree *chart.Tree) {
	printKeyValue("records", fmt.Sprint(tree.Len()))
	printKeyValue("roots", rootList(tree, 3))
	printKeyValue("depth", fmt.Sprint(tree.Depth()))
	if n := len(tree.Dangling()); n > 0 {
		printKeyValue("dangling", fmt.Sprint(n))
	}
}

// printBatchTotals prints what a run of change batches did to a collection
// that ended up holding records entries.
func printBatchTotals(total store.Result, records int) {
	printKeyValue("modified", fmt.Sprint(total.Modified))
	printKeyValue("inserted", fmt.Sprint(total.Inserted))
	printKeyValue("removed", fmt.Sprint(total.Removed))
	printKeyValue("records", fmt.Sprint(records))
	if len(total.Ignored) > 0 {
		printWarning("%d entries did not resolve: %s", len(total.Ignored), keyList(total.Ignored, 5))
	}
}

// printStats prints a one-line summary below a rendered file.
func printStats(tree *chart.Tree, cached bool) {
	fmt.Println(statsLine(tree, cached))
}

func statsLine(tree *chart.Tree, cached bool) string {
	parts := []string{fmt.Sprintf("%d records", tree.Len())}
	if roots := len(tree.Roots()); roots > 1 {
		parts = append(parts, fmt.Sprintf("%d roots", roots))
	}
	if tree.Len() > 0 {
		parts = append(parts, fmt.Sprintf("depth %d", tree.Depth()))
	}
	for i, p := range parts {
		parts[i] = StyleDim.Render(p)
	}
	if cached {
		parts = append(parts, styleOK.Render("cached"))
	} else {
		parts = append(parts, styleNote.Render("fresh"))
	}
	return "  " + strings.Join(parts, StyleDim.Render(" · "))
}

// rootList names up to limit root keys, e.g. "2 (0, 7)".
func rootList(tree *chart.Tree, limit int) string {
	roots := tree.Roots()
	keys := make([]chart.Key, len(roots))
	for i, r := range roots {
		keys[i] = r.Key
	}
	if len(keys) == 0 {
		return "0"
	}
	return fmt.Sprintf("%d (%s)", len(keys), keyList(keys, limit))
}

// keyList joins keys, eliding all but the first limit.
func keyList(keys []chart.Key, limit int) string {
	var b strings.Builder
	for i, k := range keys {
		if i == limit {
			fmt.Fprintf(&b, ", +%d more", len(keys)-limit)
			break
		}
		if i > 0 {
			b.WriteString(", ")
		}
		if k.IsZero() {
			b.WriteString(`""`)
			continue
		}
		b.WriteString(k.String())
	}
	return b.String()
}
