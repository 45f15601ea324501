package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/orgtower/pkg/dag"
	"github.com/matzehuels/orgtower/pkg/dag/build"
	"github.com/matzehuels/orgtower/pkg/render"
)

// uiOut receives all human-readable command output. Logs go to stderr.
var uiOut io.Writer = os.Stdout

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleLink    = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleKey      = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconKind    = "●"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

func printLine(icon, msg string) { fmt.Fprintln(uiOut, icon+" "+msg) }

func printSuccess(format string, args ...any) {
	printLine(styleIconSuccess.Render(iconSuccess), fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	printLine(styleIconError.Render(iconError), fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	printLine(styleIconWarning.Render(iconWarning), StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	printLine(styleIconInfo.Render(iconInfo), fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(uiOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Fprintln(uiOut, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(uiOut, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// =============================================================================
// Graph Summary
// =============================================================================

// printStats prints node and edge counts and whether they came from cache.
func printStats(nodeCount, edgeCount int, cached bool) {
	var parts []string
	if nodeCount > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d nodes", nodeCount)))
	}
	if edgeCount > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d edges", edgeCount)))
	}
	if cached {
		parts = append(parts, styleCached.Render(iconCached))
	} else {
		parts = append(parts, styleComputed.Render(iconFresh))
	}
	fmt.Fprintln(uiOut, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

// kindOrder lists kinds from the root down.
var kindOrder = []dag.Kind{dag.KindCouncil, dag.KindCommittee, dag.KindInterestGroup, dag.KindWorkingGroup, dag.KindUnknown}

// printKinds prints one colored count per node kind present in g.
func printKinds(g *dag.DAG) {
	counts := make(map[dag.Kind]int)
	for _, n := range g.Nodes() {
		counts[n.Kind]++
	}
	var parts []string
	for _, k := range kindOrder {
		if counts[k] == 0 {
			continue
		}
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(render.KindColor(k))).Render(iconKind)
		parts = append(parts, dot+" "+StyleDim.Render(fmt.Sprintf("%d %s", counts[k], k)))
	}
	if len(parts) > 0 {
		fmt.Fprintln(uiOut, "  "+strings.Join(parts, "  "))
	}
}

// =============================================================================
// Build Report
// =============================================================================

// maxReportLines caps the detail lines printed per fallback category.
const maxReportLines = 5

// printReport prints the data-quality fallbacks of a build. Clean reports
// print nothing.
func printReport(r build.Report) {
	if r.Clean() {
		return
	}
	if n := len(r.Skipped); n > 0 {
		printWarning("Skipped %d malformed rows", n)
		for i, s := range r.Skipped {
			if i == maxReportLines {
				printDetail("... and %d more", n-i)
				break
			}
			printDetail("row %d %q: %s", s.Index, s.Name, s.Reason)
		}
	}
	if n := len(r.UnknownParents); n > 0 {
		printWarning("Dropped %d links to unknown parents", n)
		for i, d := range r.UnknownParents {
			if i == maxReportLines {
				printDetail("... and %d more", n-i)
				break
			}
			printDetail("%s %s %s", d.NodeID, iconArrow, d.Parent)
		}
	}
	if n := len(r.Orphans); n > 0 {
		printWarning("%d groups have no parent", n)
		for i, id := range r.Orphans {
			if i == maxReportLines {
				printDetail("... and %d more", n-i)
				break
			}
			printDetail("%s", id)
		}
	}
}

// =============================================================================
// Commands & Next Steps
// =============================================================================

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	line := StyleDim.Render(description+":") + " " + styleCommand.Render(cmd)
	fmt.Fprintln(uiOut, line)
}

// =============================================================================
// Utilities
// =============================================================================

// printNewline prints an empty line.
func printNewline() {
	fmt.Fprintln(uiOut)
}
