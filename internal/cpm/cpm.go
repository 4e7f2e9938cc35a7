// Package cpm computes critical path schedules over a task graph.
package cpm

import (
	"fmt"
	"sort"

	"github.com/AstridBonoan/plumbline/internal/schedule"
)

// Analyze performs critical path method analysis on a schedule graph.
// The earliest and latest windows honor the dependency type and lag of
// every edge; slack falls out as LS - ES.
func Analyze(g *schedule.Graph, cfg Config) (*Result, error) {
	threshold := cfg.BottleneckThresholdDays
	if threshold <= 0 {
		threshold = defaultBottleneckThreshold
	}

	order, err := topoSort(g)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Tasks:     make(map[string]*Timing, len(order)),
		TopoOrder: order,
	}

	durations := make(map[string]int, len(order))
	for _, id := range order {
		t, _ := g.Task(id)
		durations[id] = t.DurationDays
		result.Tasks[id] = &Timing{TaskID: id}
	}

	// Forward pass: earliest windows in topological order. Each edge
	// type constrains a different corner of the successor's window:
	//   finish-to-start   ES(s) >= EF(p) + lag
	//   start-to-start    ES(s) >= ES(p) + lag
	//   finish-to-finish  EF(s) >= EF(p) + lag
	//   start-to-finish   EF(s) >= ES(p) + lag
	// EF-side constraints are folded into ES bounds via the duration.
	// Starts never go negative.
	for _, id := range order {
		tm := result.Tasks[id]
		es := 0
		for _, e := range g.Predecessors(id) {
			pred := result.Tasks[e.From]
			var bound int
			switch e.Type {
			case schedule.FinishToStart:
				bound = pred.EF + e.Lag
			case schedule.StartToStart:
				bound = pred.ES + e.Lag
			case schedule.FinishToFinish:
				bound = pred.EF + e.Lag - durations[id]
			case schedule.StartToFinish:
				bound = pred.ES + e.Lag - durations[id]
			}
			if bound > es {
				es = bound
			}
		}
		tm.ES = es
		tm.EF = es + durations[id]
	}

	// Project duration is the latest finish anywhere in the graph.
	for _, tm := range result.Tasks {
		if tm.EF > result.TotalDuration {
			result.TotalDuration = tm.EF
		}
	}

	// Backward pass in reverse topological order. Sinks pin to the
	// project duration; everything else takes the tightest successor
	// constraint, mirroring the forward table.
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		tm := result.Tasks[id]
		lf := result.TotalDuration
		for _, e := range g.Successors(id) {
			succ := result.Tasks[e.To]
			var bound int
			switch e.Type {
			case schedule.FinishToStart:
				bound = succ.LS - e.Lag
			case schedule.StartToStart:
				bound = succ.LS - e.Lag + durations[id]
			case schedule.FinishToFinish:
				bound = succ.LF - e.Lag
			case schedule.StartToFinish:
				bound = succ.LF - e.Lag + durations[id]
			}
			if bound < lf {
				lf = bound
			}
		}
		tm.LF = lf
		tm.LS = lf - durations[id]
		tm.Slack = tm.LS - tm.ES
		tm.IsCritical = tm.Slack == 0
	}

	result.CriticalPath = criticalPath(result, order)
	result.Bottlenecks = bottlenecks(result, threshold)

	return result, nil
}

// topoSort performs Kahn's algorithm over the graph. A leftover node
// after the queue drains means a cycle slipped past graph construction,
// which is an engine defect rather than an input problem.
func topoSort(g *schedule.Graph) ([]string, error) {
	ids := g.TaskIDs()
	inDegree := make(map[string]int, len(ids))
	for _, id := range ids {
		inDegree[id] = g.InDegree(id)
	}

	// Start with sources (in-degree 0), sorted for determinism
	var queue []string
	for _, id := range ids {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	order := make([]string, 0, len(ids))
	for len(queue) > 0 {
		// Pop front
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		// Reduce in-degree of successors
		var newReady []string
		for _, succ := range g.SuccessorsOf(node) {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				newReady = append(newReady, succ)
			}
		}
		sort.Strings(newReady)
		queue = append(queue, newReady...)
	}

	if len(order) != len(ids) {
		return nil, &schedule.InvariantError{
			Op:     "topological sort",
			Detail: fmt.Sprintf("%d of %d tasks sorted, graph must contain a cycle", len(order), len(ids)),
		}
	}

	return order, nil
}

// criticalPath orders the zero-slack tasks by earliest start. The
// initial collection follows topo order, so a stable sort keeps
// parallel critical branches in a reproducible order.
func criticalPath(result *Result, order []string) []string {
	var path []string
	for _, id := range order {
		if result.Tasks[id].IsCritical {
			path = append(path, id)
		}
	}
	sort.SliceStable(path, func(a, b int) bool {
		return result.Tasks[path[a]].ES < result.Tasks[path[b]].ES
	})
	return path
}

// bottlenecks flags near-critical tasks: positive slack no larger than
// the threshold.
func bottlenecks(result *Result, threshold int) []string {
	var ids []string
	for id, tm := range result.Tasks {
		if tm.Slack > 0 && tm.Slack <= threshold {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(a, b int) bool {
		sa, sb := result.Tasks[ids[a]].Slack, result.Tasks[ids[b]].Slack
		if sa != sb {
			return sa < sb
		}
		return ids[a] < ids[b]
	})
	return ids
}
