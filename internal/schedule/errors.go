package schedule

import "fmt"

// DuplicateTaskError reports an AddTask call reusing an existing ID.
type DuplicateTaskError struct {
	ID string
}

func (e *DuplicateTaskError) Error() string {
	return fmt.Sprintf("task %q already exists", e.ID)
}

// UnknownTaskError reports a reference to a task ID not in the graph.
type UnknownTaskError struct {
	ID string
}

func (e *UnknownTaskError) Error() string {
	return fmt.Sprintf("unknown task %q", e.ID)
}

// CycleError reports a dependency that would make the graph cyclic.
type CycleError struct {
	From string
	To   string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency %s -> %s would create a cycle", e.From, e.To)
}

// ValidationError reports a field-level problem on a task or dependency.
type ValidationError struct {
	ID     string // offending task ID, when there is one
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("task %q: invalid %s: %s", e.ID, e.Field, e.Reason)
}

// InvariantError marks an internal analyzer defect, as opposed to bad
// input. Seeing one means a bug in this module, not in the schedule.
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated in %s: %s", e.Op, e.Detail)
}
