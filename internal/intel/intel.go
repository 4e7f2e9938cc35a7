// Package intel runs the full analysis pipeline over a task graph and
// assembles the schedule intelligence report: critical path, per-task risk,
// representative delay scenarios, and resilience scoring.
package intel

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AstridBonoan/plumbline/internal/cascade"
	"github.com/AstridBonoan/plumbline/internal/cpm"
	"github.com/AstridBonoan/plumbline/internal/metrics"
	"github.com/AstridBonoan/plumbline/internal/resilience"
	"github.com/AstridBonoan/plumbline/internal/risk"
	"github.com/AstridBonoan/plumbline/internal/schedule"
)

// Analyze computes the intelligence report for g. The analytic content is
// deterministic for a given graph; only the envelope (id, timestamp) varies.
func Analyze(ctx context.Context, g *schedule.Graph, opts Options) (*Intelligence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.MaxScenarios == 0 {
		opts.MaxScenarios = defaultMaxScenarios
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}

	start := time.Now()

	res, err := cpm.Analyze(g, cpm.Config{BottleneckThresholdDays: opts.BottleneckThresholdDays})
	if err != nil {
		return nil, err
	}

	factors := risk.ComputeAll(g, res)

	scenarios, err := runScenarios(ctx, g, res, factors, opts)
	if err != nil {
		return nil, err
	}

	scores := resilience.Compute(res, factors, resilience.Config{
		PathLengthBaseline: opts.PathLengthBaseline,
	})

	slackByTask := make(map[string]int, len(res.Tasks))
	for id, tm := range res.Tasks {
		slackByTask[id] = tm.Slack
	}

	metrics.AnalysesTotal.Inc()
	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	metrics.ScheduleTasks.Set(float64(g.TaskCount()))

	return &Intelligence{
		AnalysisID:            uuid.NewString(),
		GeneratedAt:           time.Now().UTC(),
		CriticalPath:          res.CriticalPath,
		ProjectDurationDays:   res.TotalDuration,
		RiskFactors:           factors,
		PropagationScenarios:  scenarios,
		ResilienceScore:       scores.Resilience,
		IntegrationRiskScore:  scores.IntegrationRisk,
		RecommendedBufferDays: scores.RecommendedBufferDays,
		Bottlenecks:           res.Bottlenecks,
		SlackByTask:           slackByTask,
		TaskCount:             g.TaskCount(),
		Scores:                scores,
	}, nil
}

// selectTriggers picks the tasks whose slip matters most: everything on the
// critical path plus the near-critical bottlenecks, ranked by delay
// probability and capped at max.
func selectTriggers(res *cpm.Result, factors map[string]risk.Factors, max int) []scenarioTrigger {
	seen := make(map[string]bool)
	ids := make([]string, 0, len(res.CriticalPath)+len(res.Bottlenecks))
	for _, id := range res.CriticalPath {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, id := range res.Bottlenecks {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	sort.SliceStable(ids, func(i, j int) bool {
		pi, pj := factors[ids[i]].DelayProbability, factors[ids[j]].DelayProbability
		if pi != pj {
			return pi > pj
		}
		return ids[i] < ids[j]
	})

	if max > 0 && len(ids) > max {
		ids = ids[:max]
	}

	triggers := make([]scenarioTrigger, len(ids))
	for i, id := range ids {
		delay := int(math.Ceil(factors[id].ExpectedDelayDays))
		if delay < 1 {
			delay = 1
		}
		triggers[i] = scenarioTrigger{taskID: id, delay: delay}
	}
	return triggers
}

// runScenarios fans the simulations out across a bounded worker pool. Every
// worker reads the same immutable graph and timing result and writes only to
// its own slot, so the batch needs no locking and the output order matches
// the trigger ranking.
func runScenarios(ctx context.Context, g *schedule.Graph, res *cpm.Result, factors map[string]risk.Factors, opts Options) ([]*cascade.Propagation, error) {
	triggers := selectTriggers(res, factors, opts.MaxScenarios)

	slots := make([]*cascade.Propagation, len(triggers))
	errs := make([]error, len(triggers))
	sem := make(chan struct{}, opts.Workers)

	var wg sync.WaitGroup
	for i, tr := range triggers {
		wg.Add(1)
		go func(i int, tr scenarioTrigger) {
			defer wg.Done()
			select {
			case sem <- struct{}{}: // acquire semaphore
			case <-ctx.Done():
				errs[i] = ctx.Err()
				return
			}
			defer func() { <-sem }() // release semaphore

			p, err := cascade.Simulate(g, res, tr.taskID, tr.delay)
			if err != nil {
				errs[i] = err
				return
			}
			slots[i] = p
		}(i, tr)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("simulate scenario: %w", err)
		}
	}

	metrics.ScenariosSimulated.Add(float64(len(triggers)))
	return slots, nil
}
