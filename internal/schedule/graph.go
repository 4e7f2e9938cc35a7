// Package schedule models a construction project as a directed acyclic
// graph of tasks joined by typed dependencies.
package schedule

import "fmt"

// Graph is the task dependency graph. Tasks and edges are stored in
// insertion order so every traversal downstream is deterministic.
type Graph struct {
	tasks []Task
	index map[string]int // task ID -> position in tasks
	out   [][]halfEdge   // successors by task position
	in    [][]halfEdge   // predecessors by task position
}

// halfEdge is one directed dependency endpoint plus its type and lag.
type halfEdge struct {
	node int
	typ  DepType
	lag  int
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{index: make(map[string]int)}
}

// AddTask validates and inserts a task. An empty status defaults to
// not-started and a zero complexity multiplier defaults to 1.0.
func (g *Graph) AddTask(t Task) error {
	if t.ID == "" {
		return &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if _, ok := g.index[t.ID]; ok {
		return &DuplicateTaskError{ID: t.ID}
	}
	if t.DurationDays < 0 {
		return &ValidationError{ID: t.ID, Field: "duration_days", Reason: "must be >= 0"}
	}
	if t.ComplexityMultiplier == 0 {
		t.ComplexityMultiplier = 1.0
	}
	if t.ComplexityMultiplier < 1.0 {
		return &ValidationError{ID: t.ID, Field: "complexity_multiplier", Reason: "must be >= 1.0"}
	}
	if t.Status == "" {
		t.Status = StatusNotStarted
	}
	if !t.Status.Valid() {
		return &ValidationError{ID: t.ID, Field: "status", Reason: fmt.Sprintf("unknown status %q", t.Status)}
	}

	g.index[t.ID] = len(g.tasks)
	g.tasks = append(g.tasks, t)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	return nil
}

// AddDependency validates and inserts a typed edge. An empty type
// defaults to finish-to-start. The graph is checked for a cycle before
// anything is mutated, so a rejected edge leaves it exactly as it was.
func (g *Graph) AddDependency(d Dependency) error {
	from, ok := g.index[d.PredecessorID]
	if !ok {
		return &UnknownTaskError{ID: d.PredecessorID}
	}
	to, ok := g.index[d.SuccessorID]
	if !ok {
		return &UnknownTaskError{ID: d.SuccessorID}
	}
	if d.Type == "" {
		d.Type = FinishToStart
	}
	if !d.Type.Valid() {
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown dependency type %q", d.Type)}
	}
	if d.LagDays < 0 {
		return &ValidationError{Field: "lag_days", Reason: "must be >= 0"}
	}
	if from == to {
		return &CycleError{From: d.PredecessorID, To: d.SuccessorID}
	}

	// The new edge closes a cycle exactly when the successor can
	// already reach the predecessor.
	if g.reaches(to, from) {
		return &CycleError{From: d.PredecessorID, To: d.SuccessorID}
	}

	g.out[from] = append(g.out[from], halfEdge{node: to, typ: d.Type, lag: d.LagDays})
	g.in[to] = append(g.in[to], halfEdge{node: from, typ: d.Type, lag: d.LagDays})
	return nil
}

// reaches reports whether target is reachable from start over forward edges.
func (g *Graph) reaches(start, target int) bool {
	seen := make([]bool, len(g.tasks))
	stack := []int{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == target {
			return true
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		for _, e := range g.out[n] {
			if !seen[e.node] {
				stack = append(stack, e.node)
			}
		}
	}
	return false
}

// TaskCount returns the number of tasks in the graph.
func (g *Graph) TaskCount() int {
	return len(g.tasks)
}

// EdgeCount returns the number of dependencies in the graph.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, edges := range g.out {
		n += len(edges)
	}
	return n
}

// TaskIDs returns all task IDs in insertion order.
func (g *Graph) TaskIDs() []string {
	ids := make([]string, len(g.tasks))
	for i, t := range g.tasks {
		ids[i] = t.ID
	}
	return ids
}

// Task returns a copy of the task with the given ID.
func (g *Graph) Task(id string) (Task, bool) {
	i, ok := g.index[id]
	if !ok {
		return Task{}, false
	}
	return g.tasks[i], true
}

// SuccessorsOf returns the IDs of the direct successors of a task in
// insertion order. The order is stable across calls.
func (g *Graph) SuccessorsOf(id string) []string {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	ids := make([]string, len(g.out[i]))
	for j, e := range g.out[i] {
		ids[j] = g.tasks[e.node].ID
	}
	return ids
}

// PredecessorsOf returns the IDs of the direct predecessors of a task in
// insertion order. The order is stable across calls.
func (g *Graph) PredecessorsOf(id string) []string {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	ids := make([]string, len(g.in[i]))
	for j, e := range g.in[i] {
		ids[j] = g.tasks[e.node].ID
	}
	return ids
}

// Successors returns the outgoing edges of a task in insertion order.
func (g *Graph) Successors(id string) []Edge {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	edges := make([]Edge, 0, len(g.out[i]))
	for _, e := range g.out[i] {
		edges = append(edges, Edge{From: id, To: g.tasks[e.node].ID, Type: e.typ, Lag: e.lag})
	}
	return edges
}

// Predecessors returns the incoming edges of a task in insertion order.
func (g *Graph) Predecessors(id string) []Edge {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	edges := make([]Edge, 0, len(g.in[i]))
	for _, e := range g.in[i] {
		edges = append(edges, Edge{From: g.tasks[e.node].ID, To: id, Type: e.typ, Lag: e.lag})
	}
	return edges
}

// InDegree returns the number of incoming dependencies for a task.
func (g *Graph) InDegree(id string) int {
	i, ok := g.index[id]
	if !ok {
		return 0
	}
	return len(g.in[i])
}

// OutDegree returns the number of outgoing dependencies for a task.
func (g *Graph) OutDegree(id string) int {
	i, ok := g.index[id]
	if !ok {
		return 0
	}
	return len(g.out[i])
}

// Verify re-checks acyclicity with a DFS coloring sweep, independent of
// the incremental check AddDependency performs. It returns the cycle as
// an ordered ID slice, or nil for a healthy graph.
// Uses DFS with coloring: white (unvisited), gray (in progress), black (done).
func (g *Graph) Verify() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make([]int, len(g.tasks))
	parent := make([]int, len(g.tasks))
	for i := range parent {
		parent[i] = -1
	}

	var dfs func(node int) []int
	dfs = func(node int) []int {
		color[node] = gray
		for _, e := range g.out[node] {
			next := e.node
			if color[next] == gray {
				// Found a cycle, reconstruct it
				cycle := []int{next, node}
				cur := node
				for cur != next {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				// Reverse to get forward order
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			}
			if color[next] == white {
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	for i := range g.tasks {
		if color[i] == white {
			if cycle := dfs(i); cycle != nil {
				ids := make([]string, len(cycle))
				for j, n := range cycle {
					ids[j] = g.tasks[n].ID
				}
				return ids
			}
		}
	}
	return nil
}
