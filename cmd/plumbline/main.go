package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/AstridBonoan/plumbline/internal/cascade"
	"github.com/AstridBonoan/plumbline/internal/config"
	"github.com/AstridBonoan/plumbline/internal/cpm"
	"github.com/AstridBonoan/plumbline/internal/intel"
	"github.com/AstridBonoan/plumbline/internal/loader"
	"github.com/AstridBonoan/plumbline/internal/reporter"
	"github.com/AstridBonoan/plumbline/internal/schedule"
	"github.com/AstridBonoan/plumbline/internal/ui"
	"github.com/AstridBonoan/plumbline/internal/viewer"
)

var (
	flagConfig       string
	flagJSON         bool
	flagOutput       string
	flagThreshold    int
	flagBaseline     int
	flagMaxScenarios int
	flagWorkers      int
	flagTask         string
	flagDelay        int
	flagFormat       string
	flagPort         int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "plumbline",
		Short: "Construction schedule risk analysis from the command line",
		Long: `Plumbline reads a construction schedule as a task graph, computes the
critical path, scores each task's delay risk, simulates cascading delays
through lag buffers, and condenses the findings into resilience and
integration risk scores.`,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default ~/.plumbline/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(critpathCmd())
	rootCmd.AddCommand(simulateCmd())
	rootCmd.AddCommand(vizCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadOptions merges the config file with any explicit flag overrides.
func loadOptions(cmd *cobra.Command) (intel.Options, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return intel.Options{}, err
	}

	opts := intel.Options{
		BottleneckThresholdDays: cfg.Analysis.BottleneckThresholdDays,
		PathLengthBaseline:      cfg.Scoring.PathLengthBaseline,
		MaxScenarios:            cfg.Simulation.MaxScenarios,
		Workers:                 cfg.Simulation.Workers,
	}

	if cmd.Flags().Changed("threshold") {
		opts.BottleneckThresholdDays = flagThreshold
	}
	if cmd.Flags().Changed("baseline") {
		opts.PathLengthBaseline = flagBaseline
	}
	if cmd.Flags().Changed("max-scenarios") {
		opts.MaxScenarios = flagMaxScenarios
	}
	if cmd.Flags().Changed("workers") {
		opts.Workers = flagWorkers
	}

	return opts, nil
}

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <schedule.json>",
		Short: "Run the full schedule risk analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, _, err := loader.Load(args[0])
			if err != nil {
				return err
			}

			opts, err := loadOptions(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			in, err := intel.Analyze(ctx, g, opts)
			if err != nil {
				return err
			}

			rpt := reporter.New(in, g)

			if flagOutput != "" {
				data, err := rpt.JSON()
				if err != nil {
					return err
				}
				if err := os.WriteFile(flagOutput, data, 0644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				fmt.Printf("✏️  Wrote %s\n", ui.Bold(flagOutput))
				return nil
			}

			if flagJSON {
				data, err := rpt.JSON()
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			ui.PrintLogo()
			rpt.PrintReport(os.Stdout)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Write the JSON report to a file")
	cmd.Flags().IntVar(&flagThreshold, "threshold", 1, "Bottleneck slack threshold in days")
	cmd.Flags().IntVar(&flagBaseline, "baseline", 50, "Critical path length baseline")
	cmd.Flags().IntVar(&flagMaxScenarios, "max-scenarios", 8, "Max delay scenarios to simulate")
	cmd.Flags().IntVar(&flagWorkers, "workers", 4, "Concurrent scenario workers")

	return cmd
}

func critpathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "critpath <schedule.json>",
		Short: "Compute the critical path and slack table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, _, err := loader.Load(args[0])
			if err != nil {
				return err
			}

			opts, err := loadOptions(cmd)
			if err != nil {
				return err
			}

			result, err := cpm.Analyze(g, cpm.Config{BottleneckThresholdDays: opts.BottleneckThresholdDays})
			if err != nil {
				return err
			}

			if flagJSON {
				return outputJSON(result)
			}

			printCritPath(g, result)
			return nil
		},
	}

	cmd.Flags().IntVar(&flagThreshold, "threshold", 1, "Bottleneck slack threshold in days")

	return cmd
}

func simulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate <schedule.json>",
		Short: "Simulate one delayed task cascading through the schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagTask == "" {
				return fmt.Errorf("--task is required")
			}

			g, _, err := loader.Load(args[0])
			if err != nil {
				return err
			}

			result, err := cpm.Analyze(g, cpm.Config{})
			if err != nil {
				return err
			}

			p, err := cascade.Simulate(g, result, flagTask, flagDelay)
			if err != nil {
				return err
			}

			if flagJSON {
				return outputJSON(p)
			}

			printCascade(g, p)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagTask, "task", "", "Task to delay")
	cmd.Flags().IntVar(&flagDelay, "delay", 1, "Delay in days")

	return cmd
}

func vizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viz <schedule.json>",
		Short: "Print the dependency graph as ASCII or DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, _, err := loader.Load(args[0])
			if err != nil {
				return err
			}

			result, err := cpm.Analyze(g, cpm.Config{})
			if err != nil {
				return err
			}

			if flagFormat == "dot" {
				return printDOT(g, result)
			}

			printASCIIDAG(g, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagFormat, "format", "ascii", "Output format (ascii, dot)")

	return cmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <schedule.json>",
		Short: "Serve the analyzed graph over local HTTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := loader.Read(args[0])
			if err != nil {
				return err
			}

			// A viewer may already be running; just push the schedule to it.
			hostPort := fmt.Sprintf("localhost:%d", flagPort)
			if viewer.IsPortOpen(hostPort) {
				if err := viewer.PostDocument("http://"+hostPort, data); err != nil {
					return err
				}
				fmt.Printf("♻️  Updated viewer at %s\n", ui.BoldCyan("http://"+hostPort))
				return nil
			}

			opts, err := loadOptions(cmd)
			if err != nil {
				return err
			}

			base, err := viewer.Start(flagPort, opts)
			if err != nil {
				return err
			}
			if err := viewer.PostDocument(base, data); err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			fmt.Printf("🌐 Viewer running at %s\n", ui.BoldCyan(base))
			fmt.Printf("   %s\n", ui.Dim("/graph  /report  /metrics  /health"))
			fmt.Printf("   %s\n", ui.Dim("Ctrl-C to stop"))

			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().IntVar(&flagPort, "port", 7171, "Port to listen on")
	cmd.Flags().IntVar(&flagThreshold, "threshold", 1, "Bottleneck slack threshold in days")
	cmd.Flags().IntVar(&flagBaseline, "baseline", 50, "Critical path length baseline")
	cmd.Flags().IntVar(&flagMaxScenarios, "max-scenarios", 8, "Max delay scenarios to simulate")
	cmd.Flags().IntVar(&flagWorkers, "workers", 4, "Concurrent scenario workers")

	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage plumbline configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := flagConfig
			if path == "" {
				path = filepath.Join(config.Home(), "config.toml")
			}
			if err := config.Save(config.Default(), path); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			fmt.Printf("✏️  Wrote %s\n", ui.Bold(path))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(cfg)
			}
			return toml.NewEncoder(os.Stdout).Encode(cfg)
		},
	})

	return cmd
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintf(os.Stderr, "\n🛑 %s\n", ui.Yellow("Received interrupt, cancelling..."))
		cancel()
	}()

	return ctx, cancel
}

// --- Output helpers ---

func outputJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func taskName(g *schedule.Graph, id string) string {
	task, ok := g.Task(id)
	if !ok || task.Name == "" {
		return id
	}
	return task.Name
}

func printCritPath(g *schedule.Graph, result *cpm.Result) {
	fmt.Printf("🎯 %s\n", ui.BoldCyan("Critical Path Analysis"))
	fmt.Println(ui.Cyan("═══════════════════════════"))
	fmt.Println()
	fmt.Printf("Duration:  %s\n", ui.Bold(fmt.Sprintf("%d days", result.TotalDuration)))
	if len(result.CriticalPath) > 0 {
		fmt.Printf("⚡ Critical path: %s (%d tasks)\n",
			ui.BoldYellow(strings.Join(result.CriticalPath, " → ")), len(result.CriticalPath))
	}
	fmt.Println()

	fmt.Printf("   %-14s %-24s %5s %5s %5s %5s %6s\n", "TASK", "NAME", "ES", "EF", "LS", "LF", "SLACK")
	for _, id := range result.TopoOrder {
		tm := result.Tasks[id]

		crit := " "
		if tm.IsCritical {
			crit = ui.BoldYellow("⚡")
		}

		name := taskName(g, id)
		if len(name) > 24 {
			name = name[:21] + "..."
		}

		fmt.Printf(" %s %-14s %-24s %5d %5d %5d %5d %6d\n",
			crit, ui.BoldMagenta(id), name, tm.ES, tm.EF, tm.LS, tm.LF, tm.Slack)
	}

	if len(result.Bottlenecks) > 0 {
		fmt.Printf("\n%s %s\n", ui.BoldYellow("Bottlenecks:"), strings.Join(result.Bottlenecks, ", "))
	}
}

func printCascade(g *schedule.Graph, p *cascade.Propagation) {
	fmt.Printf("💥 %s\n", ui.BoldCyan("Delay Simulation"))
	fmt.Println(ui.Cyan("═══════════════════"))
	fmt.Println()
	fmt.Printf("Trigger:    %s %s\n", ui.TaskPrefix(p.TriggerID), ui.Bold(fmt.Sprintf("+%d days", p.DelayDays)))
	fmt.Printf("Confidence: %.0f%%\n", p.Confidence*100)
	fmt.Println()

	if !p.DownstreamImpact {
		fmt.Printf("  %s\n", ui.Green("Delay fully absorbed by lag buffers. No downstream impact."))
		return
	}

	for _, im := range p.Affected {
		note := ""
		if im.LagAbsorbedDays > 0 {
			note = ui.Dim(fmt.Sprintf(" (%dd soaked into lag)", im.LagAbsorbedDays))
		}
		fmt.Printf("  %s %-24s %s%s\n",
			ui.TaskPrefix(im.TaskID), taskName(g, im.TaskID),
			ui.Red(fmt.Sprintf("+%dd", im.DelayDays)), note)
	}
	fmt.Printf("\n%d downstream tasks affected\n", len(p.Affected))
}

func printASCIIDAG(g *schedule.Graph, result *cpm.Result) {
	fmt.Printf("🔗 %s\n", ui.BoldCyan("Task Dependency Graph"))
	fmt.Println(ui.Cyan("═══════════════════════"))
	fmt.Println()

	for _, id := range result.TopoOrder {
		tm := result.Tasks[id]

		crit := " "
		if tm.IsCritical {
			crit = ui.BoldYellow("⚡")
		}
		fmt.Printf("  %s [%s] %s\n", crit, ui.BoldMagenta(id), taskName(g, id))

		for _, e := range g.Successors(id) {
			note := ""
			if e.Type != schedule.FinishToStart && e.Lag > 0 {
				note = ui.Dim(fmt.Sprintf(" (%s, lag %dd)", e.Type, e.Lag))
			} else if e.Type != schedule.FinishToStart {
				note = ui.Dim(fmt.Sprintf(" (%s)", e.Type))
			} else if e.Lag > 0 {
				note = ui.Dim(fmt.Sprintf(" (lag %dd)", e.Lag))
			}
			fmt.Printf("      %s %s%s\n", ui.Dim("└──→"), ui.Magenta(e.To), note)
		}
	}
	fmt.Println()
}

func printDOT(g *schedule.Graph, result *cpm.Result) error {
	fmt.Println("digraph plumbline {")
	fmt.Println("  rankdir=LR;")
	fmt.Println("  node [shape=box, style=rounded];")
	fmt.Println()

	for _, id := range g.TaskIDs() {
		task, _ := g.Task(id)
		label := fmt.Sprintf("%s\\n%dd", id, task.DurationDays)
		if task.Name != "" {
			label = fmt.Sprintf("%s\\n%s (%dd)", id, task.Name, task.DurationDays)
		}
		attrs := fmt.Sprintf(`label="%s"`, label)
		if tm, ok := result.Tasks[id]; ok && tm.IsCritical {
			attrs += `, style="rounded,bold", color=red`
		}
		fmt.Printf("  %q [%s];\n", id, attrs)
	}

	fmt.Println()

	for _, from := range g.TaskIDs() {
		for _, e := range g.Successors(from) {
			var attrs []string

			var parts []string
			if e.Type != schedule.FinishToStart {
				parts = append(parts, string(e.Type))
			}
			if e.Lag > 0 {
				parts = append(parts, fmt.Sprintf("+%dd", e.Lag))
			}
			if len(parts) > 0 {
				attrs = append(attrs, fmt.Sprintf(`label="%s"`, strings.Join(parts, " ")))
			}

			if result.Tasks[from] != nil && result.Tasks[from].IsCritical &&
				result.Tasks[e.To] != nil && result.Tasks[e.To].IsCritical {
				attrs = append(attrs, "color=red", "penwidth=2")
			}

			suffix := ""
			if len(attrs) > 0 {
				suffix = " [" + strings.Join(attrs, ", ") + "]"
			}
			fmt.Printf("  %q -> %q%s;\n", from, e.To, suffix)
		}
	}

	fmt.Println("}")
	return nil
}
