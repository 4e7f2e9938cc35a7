package intel

import (
	"context"
	"errors"
	"testing"

	"github.com/AstridBonoan/plumbline/internal/schedule"
)

func buildTestGraph(t *testing.T, tasks []schedule.Task, deps []schedule.Dependency) *schedule.Graph {
	t.Helper()
	g := schedule.NewGraph()
	for _, task := range tasks {
		if err := g.AddTask(task); err != nil {
			t.Fatalf("add task %s: %v", task.ID, err)
		}
	}
	for _, d := range deps {
		if err := g.AddDependency(d); err != nil {
			t.Fatalf("add dependency %s -> %s: %v", d.PredecessorID, d.SuccessorID, err)
		}
	}
	return g
}

func parallelGraph(t *testing.T) *schedule.Graph {
	t.Helper()
	return buildTestGraph(t,
		[]schedule.Task{
			{ID: "a", Name: "Groundwork", DurationDays: 5},
			{ID: "b", Name: "Frame", DurationDays: 10},
			{ID: "c", Name: "Drainage", DurationDays: 3},
			{ID: "d", Name: "Handover", DurationDays: 2},
		},
		[]schedule.Dependency{
			{PredecessorID: "a", SuccessorID: "b"},
			{PredecessorID: "a", SuccessorID: "c"},
			{PredecessorID: "b", SuccessorID: "d"},
			{PredecessorID: "c", SuccessorID: "d"},
		})
}

func TestAnalyze_EndToEnd(t *testing.T) {
	g := parallelGraph(t)

	in, err := Analyze(context.Background(), g, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if in.AnalysisID == "" {
		t.Error("expected a non-empty analysis id")
	}
	if in.GeneratedAt.IsZero() {
		t.Error("expected a timestamp")
	}

	want := []string{"a", "b", "d"}
	if len(in.CriticalPath) != len(want) {
		t.Fatalf("expected critical path %v, got %v", want, in.CriticalPath)
	}
	for i, id := range want {
		if in.CriticalPath[i] != id {
			t.Fatalf("expected critical path %v, got %v", want, in.CriticalPath)
		}
	}

	if in.ProjectDurationDays != 17 {
		t.Errorf("expected duration 17, got %d", in.ProjectDurationDays)
	}
	if in.TaskCount != 4 {
		t.Errorf("expected 4 tasks, got %d", in.TaskCount)
	}
	if len(in.RiskFactors) != 4 {
		t.Errorf("expected 4 risk entries, got %d", len(in.RiskFactors))
	}
	if in.SlackByTask["c"] != 7 {
		t.Errorf("expected c slack 7, got %d", in.SlackByTask["c"])
	}

	// Critical-path tasks each get a scenario
	if len(in.PropagationScenarios) != 3 {
		t.Fatalf("expected 3 scenarios, got %d", len(in.PropagationScenarios))
	}
	for _, sc := range in.PropagationScenarios {
		if sc == nil {
			t.Fatal("expected every scenario slot filled")
		}
		if sc.DelayDays < 1 {
			t.Errorf("scenario %s: expected delay >= 1, got %d", sc.TriggerID, sc.DelayDays)
		}
	}

	if in.ResilienceScore < 0 || in.ResilienceScore > 1 {
		t.Errorf("resilience out of range: %.4f", in.ResilienceScore)
	}
	if in.IntegrationRiskScore < 0 || in.IntegrationRiskScore > 1 {
		t.Errorf("integration risk out of range: %.4f", in.IntegrationRiskScore)
	}
	if in.RecommendedBufferDays < 0 {
		t.Errorf("negative buffer: %d", in.RecommendedBufferDays)
	}
}

func TestAnalyze_ScenarioRanking(t *testing.T) {
	// Weather exposure pushes the first task's probability well above the rest
	g := buildTestGraph(t,
		[]schedule.Task{
			{ID: "a", DurationDays: 5, WeatherDependent: true},
			{ID: "b", DurationDays: 10},
			{ID: "c", DurationDays: 7},
		},
		[]schedule.Dependency{
			{PredecessorID: "a", SuccessorID: "b"},
			{PredecessorID: "b", SuccessorID: "c"},
		})

	in, err := Analyze(context.Background(), g, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(in.PropagationScenarios) != 3 {
		t.Fatalf("expected 3 scenarios, got %d", len(in.PropagationScenarios))
	}
	if in.PropagationScenarios[0].TriggerID != "a" {
		t.Errorf("expected riskiest task first, got %s", in.PropagationScenarios[0].TriggerID)
	}
}

func TestAnalyze_RankingTieBreaksByID(t *testing.T) {
	// b and c are interchangeable, so they sort by id
	g := buildTestGraph(t,
		[]schedule.Task{
			{ID: "a", DurationDays: 5},
			{ID: "c", DurationDays: 10},
			{ID: "b", DurationDays: 10},
			{ID: "d", DurationDays: 2},
		},
		[]schedule.Dependency{
			{PredecessorID: "a", SuccessorID: "c"},
			{PredecessorID: "a", SuccessorID: "b"},
			{PredecessorID: "b", SuccessorID: "d"},
			{PredecessorID: "c", SuccessorID: "d"},
		})

	in, err := Analyze(context.Background(), g, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := make([]string, len(in.PropagationScenarios))
	for i, sc := range in.PropagationScenarios {
		got[i] = sc.TriggerID
	}
	want := []string{"a", "b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("expected scenario order %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected scenario order %v, got %v", want, got)
		}
	}
}

func TestAnalyze_MaxScenariosCap(t *testing.T) {
	g := buildTestGraph(t,
		[]schedule.Task{
			{ID: "a", DurationDays: 1},
			{ID: "b", DurationDays: 1},
			{ID: "c", DurationDays: 1},
			{ID: "d", DurationDays: 1},
			{ID: "e", DurationDays: 1},
		},
		[]schedule.Dependency{
			{PredecessorID: "a", SuccessorID: "b"},
			{PredecessorID: "b", SuccessorID: "c"},
			{PredecessorID: "c", SuccessorID: "d"},
			{PredecessorID: "d", SuccessorID: "e"},
		})

	in, err := Analyze(context.Background(), g, Options{MaxScenarios: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(in.PropagationScenarios) != 2 {
		t.Errorf("expected 2 scenarios, got %d", len(in.PropagationScenarios))
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	g := parallelGraph(t)

	first, err := Analyze(context.Background(), g, Options{Workers: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 5; i++ {
		again, err := Analyze(context.Background(), g, Options{Workers: 2})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if again.AnalysisID == first.AnalysisID {
			t.Error("expected a fresh analysis id per run")
		}
		if again.ResilienceScore != first.ResilienceScore {
			t.Errorf("resilience changed between runs: %.6f vs %.6f", first.ResilienceScore, again.ResilienceScore)
		}
		if len(again.PropagationScenarios) != len(first.PropagationScenarios) {
			t.Fatalf("scenario count changed between runs")
		}
		for j := range first.PropagationScenarios {
			if again.PropagationScenarios[j].TriggerID != first.PropagationScenarios[j].TriggerID {
				t.Fatalf("scenario order changed between runs")
			}
		}
	}
}

func TestAnalyze_EmptyGraph(t *testing.T) {
	in, err := Analyze(context.Background(), schedule.NewGraph(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if in.TaskCount != 0 {
		t.Errorf("expected 0 tasks, got %d", in.TaskCount)
	}
	if len(in.PropagationScenarios) != 0 {
		t.Errorf("expected no scenarios, got %d", len(in.PropagationScenarios))
	}
	if in.ResilienceScore != 1.0 {
		t.Errorf("expected resilience 1.0, got %.4f", in.ResilienceScore)
	}
}

func TestAnalyze_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Analyze(ctx, parallelGraph(t), Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
