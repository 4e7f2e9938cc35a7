package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/AstridBonoan/plumbline/internal/cascade"
	"github.com/AstridBonoan/plumbline/internal/intel"
	"github.com/AstridBonoan/plumbline/internal/resilience"
	"github.com/AstridBonoan/plumbline/internal/risk"
	"github.com/AstridBonoan/plumbline/internal/schedule"
	"github.com/AstridBonoan/plumbline/internal/ui"
)

// Reporter renders a schedule intelligence report.
type Reporter struct {
	Intel *intel.Intelligence
	Graph *schedule.Graph
}

// New creates a new Reporter. The graph supplies task names and statuses
// that the intelligence record does not carry.
func New(in *intel.Intelligence, g *schedule.Graph) *Reporter {
	return &Reporter{Intel: in, Graph: g}
}

// PrintReport writes a terminal-friendly analysis report.
func (r *Reporter) PrintReport(w io.Writer) {
	in := r.Intel

	fmt.Fprintf(w, "\n📋 %s\n", ui.BoldCyan("Schedule Intelligence Report"))
	fmt.Fprintf(w, "%s\n", ui.Cyan("════════════════════════════════"))
	fmt.Fprintf(w, "Analysis:  %s\n", ui.Dim(in.AnalysisID))
	fmt.Fprintf(w, "Generated: %s\n", ui.Dim(in.GeneratedAt.Format(time.RFC3339)))
	fmt.Fprintf(w, "Tasks:     %d\n", in.TaskCount)
	fmt.Fprintf(w, "Duration:  %s\n", ui.Bold(fmt.Sprintf("%d days", in.ProjectDurationDays)))

	if len(in.CriticalPath) > 0 {
		fmt.Fprintf(w, "Critical:  %s\n", ui.BoldYellow("⚡ "+strings.Join(in.CriticalPath, " → ")))
	}
	fmt.Fprintln(w)

	// --- Scores ---
	fmt.Fprintf(w, "  Resilience:        %s\n", scoreColor(in.ResilienceScore))
	fmt.Fprintf(w, "  Integration risk:  %s\n", ui.RiskLevel(in.IntegrationRiskScore))
	fmt.Fprintf(w, "  Buffer:            %s\n", ui.Bold(fmt.Sprintf("%d days", in.RecommendedBufferDays)))
	fmt.Fprintf(w, "  %s\n\n", ui.Dim(fmt.Sprintf("slack concentration %.2f, mean critical risk %.2f, bottleneck density %.2f",
		in.Scores.SlackConcentration, in.Scores.MeanCriticalRisk, in.Scores.BottleneckDensity)))

	// --- Per-task risk, riskiest first ---
	fmt.Fprintf(w, "  %s\n", ui.BoldWhite("Risk by task"))
	critical := make(map[string]bool, len(in.CriticalPath))
	for _, id := range in.CriticalPath {
		critical[id] = true
	}
	for _, f := range r.riskRows() {
		r.printRiskRow(w, f, critical[f.TaskID])
	}
	fmt.Fprintln(w)

	if len(in.Bottlenecks) > 0 {
		parts := make([]string, len(in.Bottlenecks))
		for i, id := range in.Bottlenecks {
			parts[i] = fmt.Sprintf("%s (%dd float)", id, in.SlackByTask[id])
		}
		fmt.Fprintf(w, "  %s %s\n\n", ui.BoldYellow("Bottlenecks:"), strings.Join(parts, ", "))
	}

	// --- Delay scenarios ---
	if len(in.PropagationScenarios) > 0 {
		fmt.Fprintf(w, "  %s\n", ui.BoldWhite("Delay scenarios"))
		for _, sc := range in.PropagationScenarios {
			r.printScenario(w, sc)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%s\n", ui.Cyan("────────────────────────────────"))
	fmt.Fprintf(w, "%s\n", ui.Dim(fmt.Sprintf("Contributes to overall project risk at suggested weight %.2f", resilience.SuggestedBlendWeight)))
}

// riskRows returns the risk factors sorted riskiest first, ties by id.
func (r *Reporter) riskRows() []risk.Factors {
	rows := make([]risk.Factors, 0, len(r.Intel.RiskFactors))
	for _, f := range r.Intel.RiskFactors {
		rows = append(rows, f)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].DelayProbability != rows[j].DelayProbability {
			return rows[i].DelayProbability > rows[j].DelayProbability
		}
		return rows[i].TaskID < rows[j].TaskID
	})
	return rows
}

func (r *Reporter) printRiskRow(w io.Writer, f risk.Factors, isCritical bool) {
	task, _ := r.Graph.Task(f.TaskID)

	name := task.Name
	if name == "" {
		name = f.TaskID
	}
	if len(name) > 28 {
		name = name[:25] + "..."
	}

	marker := " "
	if isCritical {
		marker = ui.BoldYellow("⚡")
	}

	fmt.Fprintf(w, "    %s %-14s %-28s %s  %s  %s\n",
		ui.StatusIcon(string(task.Status)),
		ui.BoldMagenta(f.TaskID),
		name,
		ui.RiskLevel(f.DelayProbability),
		ui.Dim(fmt.Sprintf("exp %.1fd worst %.1fd slack %dd", f.ExpectedDelayDays, f.WorstCaseDelayDays, f.SlackDays)),
		marker)
}

func (r *Reporter) printScenario(w io.Writer, sc *cascade.Propagation) {
	conf := ui.Dim(fmt.Sprintf("(confidence %.0f%%)", sc.Confidence*100))

	if !sc.DownstreamImpact {
		fmt.Fprintf(w, "    %s %s  %s  %s\n",
			ui.TaskPrefix(sc.TriggerID),
			ui.Bold(fmt.Sprintf("+%dd", sc.DelayDays)),
			ui.Green("fully absorbed by lag buffers"),
			conf)
		return
	}

	worst := 0
	for _, im := range sc.Affected {
		if im.DelayDays > worst {
			worst = im.DelayDays
		}
	}
	fmt.Fprintf(w, "    %s %s  %d affected, worst %s  %s\n",
		ui.TaskPrefix(sc.TriggerID),
		ui.Bold(fmt.Sprintf("+%dd", sc.DelayDays)),
		len(sc.Affected),
		ui.Red(fmt.Sprintf("+%dd", worst)),
		conf)
}

// JSON returns the machine-readable report.
func (r *Reporter) JSON() ([]byte, error) {
	return json.MarshalIndent(r.Intel, "", "  ")
}

// scoreColor renders a resilience score, where higher is better.
func scoreColor(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	switch {
	case v >= 0.7:
		return ui.BoldGreen(s)
	case v >= 0.4:
		return ui.Yellow(s)
	default:
		return ui.BoldRed(s)
	}
}
