// Package resilience condenses a schedule analysis into bounded scores that
// a portfolio layer can blend with other risk sources.
package resilience

import (
	"math"
	"sort"

	"github.com/AstridBonoan/plumbline/internal/cpm"
	"github.com/AstridBonoan/plumbline/internal/risk"
)

// SuggestedBlendWeight is the advisory share of an overall project risk
// number that schedule findings should contribute when combined with other
// sources such as cost or safety.
const SuggestedBlendWeight = 0.30

const (
	concentrationWeight = 0.4
	criticalRiskWeight  = 0.4
	densityWeight       = 0.2

	integrationResilienceWeight = 0.4
	integrationPathWeight       = 0.3
	integrationRiskWeight       = 0.3

	// Critical path length is normalized against a reference project of
	// this many tasks.
	defaultPathLengthBaseline = 50

	// Share of tasks counted as the top slack holders.
	topSlackShare = 0.2
)

// Config adjusts scoring. The zero value uses defaults.
type Config struct {
	// PathLengthBaseline normalizes critical path length across projects
	// of different sizes. Zero or negative means the default of 50.
	PathLengthBaseline int
}

// Scores summarizes how well a schedule tolerates slips.
type Scores struct {
	Resilience            float64 `json:"resilience"`
	IntegrationRisk       float64 `json:"integration_risk"`
	RecommendedBufferDays int     `json:"recommended_buffer_days"`
	SlackConcentration    float64 `json:"slack_concentration"`
	MeanCriticalRisk      float64 `json:"mean_critical_risk"`
	BottleneckDensity     float64 `json:"bottleneck_density"`
}

// Compute derives the scores from a critical path result and per-task risk
// factors for the same graph.
func Compute(res *cpm.Result, factors map[string]risk.Factors, cfg Config) Scores {
	baseline := cfg.PathLengthBaseline
	if baseline <= 0 {
		baseline = defaultPathLengthBaseline
	}

	total := len(res.TopoOrder)
	if total == 0 {
		// An empty schedule has nothing to slip.
		return Scores{Resilience: 1.0}
	}

	conc := slackConcentration(res)
	meanRisk := meanCriticalRisk(res, factors)
	density := float64(len(res.Bottlenecks)) / float64(total)

	resilience := clamp01(1.0 - (concentrationWeight*conc + criticalRiskWeight*meanRisk + densityWeight*density))

	pathShare := float64(len(res.CriticalPath)) / float64(baseline)
	integration := clamp01(integrationResilienceWeight*(1.0-resilience) +
		integrationPathWeight*pathShare +
		integrationRiskWeight*meanRisk)

	return Scores{
		Resilience:            resilience,
		IntegrationRisk:       integration,
		RecommendedBufferDays: bufferDays(res, factors),
		SlackConcentration:    conc,
		MeanCriticalRisk:      meanRisk,
		BottleneckDensity:     density,
	}
}

// slackConcentration measures how unevenly float is spread. A schedule whose
// slack sits in a handful of tasks is fragile: everything else is near
// critical.
func slackConcentration(res *cpm.Result) float64 {
	slacks := make([]int, 0, len(res.Tasks))
	total := 0
	for _, tm := range res.Tasks {
		slacks = append(slacks, tm.Slack)
		total += tm.Slack
	}
	if total == 0 {
		return 0
	}
	sort.Sort(sort.Reverse(sort.IntSlice(slacks)))
	top := int(math.Ceil(topSlackShare * float64(len(slacks))))
	sum := 0
	for _, s := range slacks[:top] {
		sum += s
	}
	return float64(sum) / float64(total)
}

func meanCriticalRisk(res *cpm.Result, factors map[string]risk.Factors) float64 {
	if len(res.CriticalPath) == 0 {
		return 0
	}
	sum := 0.0
	for _, id := range res.CriticalPath {
		sum += factors[id].DelayProbability
	}
	return sum / float64(len(res.CriticalPath))
}

func bufferDays(res *cpm.Result, factors map[string]risk.Factors) int {
	sum := 0.0
	for _, id := range res.CriticalPath {
		sum += factors[id].ExpectedDelayDays
	}
	return int(math.Ceil(sum))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
