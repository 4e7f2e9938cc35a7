// Package cascade simulates how a delay on one task ripples through its
// downstream dependents.
//
// Propagation follows dependency edges breadth first. Each edge's lag acts
// as a buffer: the delay first soaks into the lag and only the remainder
// carries over to the successor. A task reachable over several paths records
// the worst delay among them.
package cascade

import (
	"github.com/AstridBonoan/plumbline/internal/cpm"
	"github.com/AstridBonoan/plumbline/internal/schedule"
)

const (
	confidenceFloor  = 0.3
	confidenceWeight = 0.7
)

// Impact records the delay that reaches one downstream task.
type Impact struct {
	TaskID          string `json:"task_id"`
	DelayDays       int    `json:"delay_days"`
	LagAbsorbedDays int    `json:"lag_absorbed_days"`
}

// Propagation is the outcome of delaying a single trigger task.
type Propagation struct {
	TriggerID        string   `json:"trigger_id"`
	DelayDays        int      `json:"delay_days"`
	Affected         []Impact `json:"affected"`
	DownstreamImpact bool     `json:"downstream_impact"`
	Confidence       float64  `json:"confidence"`
}

// Simulate delays taskID by delayDays and reports every downstream task the
// delay still reaches after lag buffers soak up what they can. The graph is
// only read; res must come from a critical path analysis of the same graph.
func Simulate(g *schedule.Graph, res *cpm.Result, taskID string, delayDays int) (*Propagation, error) {
	if _, ok := g.Task(taskID); !ok {
		return nil, &schedule.UnknownTaskError{ID: taskID}
	}
	if delayDays < 0 {
		return nil, &schedule.ValidationError{ID: taskID, Field: "delay_days", Reason: "must not be negative"}
	}

	p := &Propagation{
		TriggerID:  taskID,
		DelayDays:  delayDays,
		Affected:   []Impact{},
		Confidence: confidence(res, taskID),
	}
	if delayDays == 0 {
		return p, nil
	}

	// delay[v] is the worst delay known to reach v, absorbed[v] the lag
	// soaked up along the path that produced it.
	delay := map[string]int{taskID: delayDays}
	absorbed := map[string]int{taskID: 0}

	queue := []string{taskID}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, e := range g.Successors(u) {
			soaked := e.Lag
			if soaked > delay[u] {
				soaked = delay[u]
			}
			carried := delay[u] - soaked
			if carried == 0 {
				// Fully absorbed by the lag buffer.
				continue
			}
			if carried > delay[e.To] {
				delay[e.To] = carried
				absorbed[e.To] = absorbed[u] + soaked
				queue = append(queue, e.To)
			}
		}
	}

	// Report in topological order so output is stable across runs.
	for _, id := range res.TopoOrder {
		if id == taskID {
			continue
		}
		if d, ok := delay[id]; ok {
			p.Affected = append(p.Affected, Impact{
				TaskID:          id,
				DelayDays:       d,
				LagAbsorbedDays: absorbed[id],
			})
		}
	}
	p.DownstreamImpact = len(p.Affected) > 0
	return p, nil
}

// confidence reflects how certain the simulated impact is. Delaying a
// critical task moves the finish date one for one; a task with plenty of
// slack may slip without consequence, so its scenarios count for less.
func confidence(res *cpm.Result, taskID string) float64 {
	tm, ok := res.Tasks[taskID]
	if !ok {
		return confidenceFloor
	}
	if tm.IsCritical {
		return 1.0
	}
	if res.TotalDuration == 0 {
		return confidenceWeight
	}
	c := confidenceWeight * (1.0 - float64(tm.Slack)/float64(res.TotalDuration))
	if c < confidenceFloor {
		c = confidenceFloor
	}
	return c
}
