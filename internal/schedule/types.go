package schedule

// TaskStatus tracks where a task stands in the field.
type TaskStatus string

const (
	StatusNotStarted TaskStatus = "not-started"
	StatusInProgress TaskStatus = "in-progress"
	StatusDelayed    TaskStatus = "delayed"
	StatusCompleted  TaskStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusDelayed, StatusCompleted:
		return true
	}
	return false
}

// DepType is the scheduling relationship carried by a dependency.
type DepType string

const (
	FinishToStart  DepType = "finish-to-start"
	StartToStart   DepType = "start-to-start"
	FinishToFinish DepType = "finish-to-finish"
	StartToFinish  DepType = "start-to-finish"
)

// Valid reports whether d is one of the four known dependency types.
func (d DepType) Valid() bool {
	switch d {
	case FinishToStart, StartToStart, FinishToFinish, StartToFinish:
		return true
	}
	return false
}

// Task is a single schedule activity. All analysis output lives in
// analyzer result records keyed by ID; the task itself never changes
// once added.
type Task struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	DurationDays         int        `json:"duration_days"`
	ComplexityMultiplier float64    `json:"complexity_multiplier"`
	WeatherDependent     bool       `json:"weather_dependent"`
	ResourceConstrained  bool       `json:"resource_constrained"`
	Status               TaskStatus `json:"status"`
}

// Dependency is a typed edge between two tasks with an optional lag
// buffer in days.
type Dependency struct {
	PredecessorID string  `json:"predecessor_id"`
	SuccessorID   string  `json:"successor_id"`
	Type          DepType `json:"type"`
	LagDays       int     `json:"lag_days"`
}

// Edge is a resolved dependency as seen from one endpoint.
type Edge struct {
	From string
	To   string
	Type DepType
	Lag  int
}
