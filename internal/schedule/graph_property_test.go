//go:build property
// +build property

// Package schedule_test contains property-based tests for graph construction.
package schedule_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/AstridBonoan/plumbline/internal/schedule"
)

// seedGraph creates n tasks and returns their ids.
func seedGraph(r *rand.Rand) (*schedule.Graph, []string) {
	g := schedule.NewGraph()
	n := 2 + r.Intn(12)
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("t%02d", i)
		_ = g.AddTask(schedule.Task{ID: ids[i], DurationDays: r.Intn(10)})
	}
	return g, ids
}

// TestAcceptedGraphsStayAcyclic verifies the incremental reachability check
// against an independent DFS oracle. Property: whatever mix of dependencies
// AddDependency accepts or rejects, the graph never contains a cycle.
func TestAcceptedGraphsStayAcyclic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("accepted dependencies never form a cycle", prop.ForAll(
		func(seed int64) bool {
			r := rand.New(rand.NewSource(seed))
			g, ids := seedGraph(r)

			for attempt := 0; attempt < 4*len(ids); attempt++ {
				_ = g.AddDependency(schedule.Dependency{
					PredecessorID: ids[r.Intn(len(ids))],
					SuccessorID:   ids[r.Intn(len(ids))],
					LagDays:       r.Intn(3),
				})
			}

			return g.Verify() == nil
		},
		gen.Int64(),
	))

	properties.TestingRun(t)
}

// TestRejectedEdgesChangeNothing verifies rejection is side-effect free.
// Property: an accepted dependency grows the edge count by exactly one and a
// rejected one leaves it untouched.
func TestRejectedEdgesChangeNothing(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("a rejected dependency leaves the graph as it was", prop.ForAll(
		func(seed int64) bool {
			r := rand.New(rand.NewSource(seed))
			g, ids := seedGraph(r)

			for attempt := 0; attempt < 4*len(ids); attempt++ {
				before := g.EdgeCount()
				err := g.AddDependency(schedule.Dependency{
					PredecessorID: ids[r.Intn(len(ids))],
					SuccessorID:   ids[r.Intn(len(ids))],
					LagDays:       r.Intn(3),
				})
				after := g.EdgeCount()

				if err != nil && after != before {
					return false
				}
				if err == nil && after != before+1 {
					return false
				}
			}
			return true
		},
		gen.Int64(),
	))

	properties.TestingRun(t)
}
