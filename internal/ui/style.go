package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	Magenta     = color.New(color.FgMagenta).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
	BoldWhite   = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// PrintLogo renders the colored plumbline logo to stderr.
func PrintLogo() {
	w := os.Stderr
	anchor := color.New(color.FgCyan)
	cord := color.New(color.FgCyan, color.Faint)
	bob := color.New(color.FgYellow)
	brand := color.New(color.Bold, color.FgMagenta)
	tag := color.New(color.Faint)

	fmt.Fprintln(w)
	anchor.Fprintln(w, "      .___.")
	cord.Fprintln(w, "        |")
	cord.Fprintln(w, "        |")
	bob.Fprintln(w, "       /^\\")
	bob.Fprintln(w, "      / | \\")
	bob.Fprintln(w, "      \\ | /")
	bob.Fprintln(w, "       \\|/")
	bob.Fprintln(w, "        V")
	brand.Fprintln(w, "   P L U M B L I N E")
	tag.Fprintf(w, "   %s Schedule risk intelligence\n", Dim("📐"))
	fmt.Fprintln(w)
}

// taskColors is a palette of distinct bold colors for differentiating tasks.
var taskColors = []func(a ...interface{}) string{
	BoldMagenta,
	BoldCyan,
	BoldYellow,
	BoldGreen,
	color.New(color.Bold, color.FgHiBlue).SprintFunc(),
	color.New(color.Bold, color.FgHiRed).SprintFunc(),
}

// taskColorIndex hashes a task ID to a palette index.
func taskColorIndex(taskID string) int {
	var h uint32
	for _, c := range taskID {
		h = h*31 + uint32(c)
	}
	return int(h % uint32(len(taskColors)))
}

// TaskPrefix returns a colored [task-id] prefix string.
// Each task ID gets a distinct color from the palette.
func TaskPrefix(taskID string) string {
	c := taskColors[taskColorIndex(taskID)]
	return Dim("[") + c(taskID) + Dim("]")
}

// StatusIcon returns a colored status icon for compact table display.
func StatusIcon(status string) string {
	switch status {
	case "completed":
		return Green("✓")
	case "in-progress":
		return Cyan("●")
	case "delayed":
		return Red("!")
	default:
		return Dim("◌")
	}
}

// RiskLevel renders a delay probability as a colored percentage.
func RiskLevel(p float64) string {
	pct := fmt.Sprintf("%.0f%%", p*100)
	switch {
	case p >= 0.6:
		return BoldRed(pct)
	case p >= 0.3:
		return Yellow(pct)
	default:
		return Green(pct)
	}
}
