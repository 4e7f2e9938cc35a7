// Package risk scores how likely each task is to slip and by how much.
//
// The probabilities are heuristic. They combine task complexity, exposure
// to weather, resource contention, and how many downstream tasks hang off
// the task. The output feeds cascade simulation and resilience scoring.
package risk

import (
	"math"

	"github.com/AstridBonoan/plumbline/internal/cpm"
	"github.com/AstridBonoan/plumbline/internal/schedule"
)

// Weights for the delay probability model. The base rate scales with the
// task's complexity multiplier and the penalties layer on top additively.
const (
	complexityWeight = 0.05
	weatherPenalty   = 0.15
	resourcePenalty  = 0.10
	fanOutPenalty    = 0.02

	// Fan-out stops adding risk beyond this many direct successors.
	maxFanOutCredit = 5

	// Caps keep the model from ever claiming a certain delay.
	baseCap        = 0.90
	probabilityCap = 0.95

	// A slip is assumed to consume about half the task on average.
	expectedDelayShare = 0.5
)

// Breakdown itemizes the additive terms behind a delay probability.
type Breakdown struct {
	ComplexityBase  float64 `json:"complexity_base"`
	WeatherPenalty  float64 `json:"weather_penalty"`
	ResourcePenalty float64 `json:"resource_penalty"`
	FanOutPenalty   float64 `json:"fan_out_penalty"`
}

// Factors is the risk profile of a single task.
type Factors struct {
	TaskID             string    `json:"task_id"`
	DelayProbability   float64   `json:"delay_probability"`
	ExpectedDelayDays  float64   `json:"expected_delay_days"`
	WorstCaseDelayDays float64   `json:"worst_case_delay_days"`
	SlackDays          int       `json:"slack_days"`
	Breakdown          Breakdown `json:"breakdown"`
}

// Compute scores one task given its slack and direct successor count.
func Compute(task schedule.Task, slackDays, successorCount int) Factors {
	b := Breakdown{
		ComplexityBase: math.Min(complexityWeight*task.ComplexityMultiplier, baseCap),
	}
	if task.WeatherDependent {
		b.WeatherPenalty = weatherPenalty
	}
	if task.ResourceConstrained {
		b.ResourcePenalty = resourcePenalty
	}
	fanOut := successorCount
	if fanOut > maxFanOutCredit {
		fanOut = maxFanOutCredit
	}
	b.FanOutPenalty = fanOutPenalty * float64(fanOut)

	p := b.ComplexityBase + b.WeatherPenalty + b.ResourcePenalty + b.FanOutPenalty
	if p > probabilityCap {
		p = probabilityCap
	}

	dur := float64(task.DurationDays)
	return Factors{
		TaskID:             task.ID,
		DelayProbability:   p,
		ExpectedDelayDays:  dur * p * expectedDelayShare,
		WorstCaseDelayDays: dur * p,
		SlackDays:          slackDays,
		Breakdown:          b,
	}
}

// ComputeAll scores every task in the graph, keyed by task ID. Timings come
// from a prior critical path analysis of the same graph.
func ComputeAll(g *schedule.Graph, res *cpm.Result) map[string]Factors {
	out := make(map[string]Factors, len(res.TopoOrder))
	for _, id := range res.TopoOrder {
		task, ok := g.Task(id)
		if !ok {
			continue
		}
		out[id] = Compute(task, res.Tasks[id].Slack, g.OutDegree(id))
	}
	return out
}
