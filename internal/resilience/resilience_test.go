package resilience

import (
	"math"
	"testing"

	"github.com/AstridBonoan/plumbline/internal/cpm"
	"github.com/AstridBonoan/plumbline/internal/risk"
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

func analyze(t *testing.T, g *schedule.Graph) *cpm.Result {
	t.Helper()
	res, err := cpm.Analyze(g, cpm.Config{})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	return res
}

func assertNear(t *testing.T, label string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s: expected %.4f, got %.4f", label, want, got)
	}
}

func chainResult(t *testing.T) *cpm.Result {
	t.Helper()
	g := buildTestGraph(t,
		[]schedule.Task{
			{ID: "a", DurationDays: 5},
			{ID: "b", DurationDays: 10},
			{ID: "c", DurationDays: 7},
		},
		[]schedule.Dependency{
			{PredecessorID: "a", SuccessorID: "b"},
			{PredecessorID: "b", SuccessorID: "c"},
		})
	return analyze(t, g)
}

func TestCompute_EmptySchedule(t *testing.T) {
	res := analyze(t, schedule.NewGraph())

	s := Compute(res, nil, Config{})

	if s.Resilience != 1.0 {
		t.Errorf("expected resilience 1.0, got %.4f", s.Resilience)
	}
	if s.IntegrationRisk != 0 {
		t.Errorf("expected integration risk 0, got %.4f", s.IntegrationRisk)
	}
	if s.RecommendedBufferDays != 0 {
		t.Errorf("expected buffer 0, got %d", s.RecommendedBufferDays)
	}
}

func TestCompute_AllCriticalChain(t *testing.T) {
	res := chainResult(t)

	// Hand-built factors keep the expected numbers round
	factors := map[string]risk.Factors{
		"a": {TaskID: "a", DelayProbability: 0.1, ExpectedDelayDays: 1.2},
		"b": {TaskID: "b", DelayProbability: 0.2, ExpectedDelayDays: 2.0},
		"c": {TaskID: "c", DelayProbability: 0.3, ExpectedDelayDays: 1.5},
	}

	s := Compute(res, factors, Config{})

	// No slack anywhere, no bottlenecks, mean critical risk 0.2
	assertNear(t, "slack concentration", s.SlackConcentration, 0)
	assertNear(t, "bottleneck density", s.BottleneckDensity, 0)
	assertNear(t, "mean critical risk", s.MeanCriticalRisk, 0.2)
	assertNear(t, "resilience", s.Resilience, 0.92)

	// 0.4*(1-0.92) + 0.3*(3/50) + 0.3*0.2
	assertNear(t, "integration risk", s.IntegrationRisk, 0.11)

	// ceil(1.2 + 2.0 + 1.5)
	if s.RecommendedBufferDays != 5 {
		t.Errorf("expected buffer 5, got %d", s.RecommendedBufferDays)
	}
}

func TestCompute_SlackConcentration(t *testing.T) {
	// All of the project's float belongs to c
	g := buildTestGraph(t,
		[]schedule.Task{
			{ID: "a", DurationDays: 5},
			{ID: "b", DurationDays: 10},
			{ID: "c", DurationDays: 3},
			{ID: "d", DurationDays: 2},
		},
		[]schedule.Dependency{
			{PredecessorID: "a", SuccessorID: "b"},
			{PredecessorID: "a", SuccessorID: "c"},
			{PredecessorID: "b", SuccessorID: "d"},
			{PredecessorID: "c", SuccessorID: "d"},
		})
	res := analyze(t, g)

	s := Compute(res, map[string]risk.Factors{}, Config{})

	// Top ceil(20% of 4) = 1 task holds 7 of 7 slack days
	assertNear(t, "slack concentration", s.SlackConcentration, 1.0)
	assertNear(t, "resilience", s.Resilience, 0.6)
}

func TestCompute_BottleneckDensity(t *testing.T) {
	// c misses the critical path by a single day
	g := buildTestGraph(t,
		[]schedule.Task{
			{ID: "a", DurationDays: 5},
			{ID: "b", DurationDays: 10},
			{ID: "c", DurationDays: 9},
			{ID: "e", DurationDays: 3},
			{ID: "d", DurationDays: 2},
		},
		[]schedule.Dependency{
			{PredecessorID: "a", SuccessorID: "b"},
			{PredecessorID: "a", SuccessorID: "c"},
			{PredecessorID: "a", SuccessorID: "e"},
			{PredecessorID: "b", SuccessorID: "d"},
			{PredecessorID: "c", SuccessorID: "d"},
			{PredecessorID: "e", SuccessorID: "d"},
		})
	res := analyze(t, g)

	s := Compute(res, map[string]risk.Factors{}, Config{})

	assertNear(t, "bottleneck density", s.BottleneckDensity, 0.2)
}

func TestCompute_IntegrationRiskClamped(t *testing.T) {
	res := chainResult(t)

	factors := map[string]risk.Factors{
		"a": {DelayProbability: 0.95},
		"b": {DelayProbability: 0.95},
		"c": {DelayProbability: 0.95},
	}

	// A 3-task critical path against a 1-task baseline blows past 1.0
	s := Compute(res, factors, Config{PathLengthBaseline: 1})

	if s.IntegrationRisk != 1.0 {
		t.Errorf("expected integration risk clamped to 1.0, got %.4f", s.IntegrationRisk)
	}
}

func TestCompute_BaselineDefault(t *testing.T) {
	res := chainResult(t)
	factors := map[string]risk.Factors{}

	def := Compute(res, factors, Config{})
	explicit := Compute(res, factors, Config{PathLengthBaseline: 50})

	assertNear(t, "integration risk", def.IntegrationRisk, explicit.IntegrationRisk)

	// A tighter baseline raises the path-length share
	tight := Compute(res, factors, Config{PathLengthBaseline: 10})
	if tight.IntegrationRisk <= def.IntegrationRisk {
		t.Errorf("expected tighter baseline to raise integration risk: %.4f vs %.4f",
			tight.IntegrationRisk, def.IntegrationRisk)
	}
}
