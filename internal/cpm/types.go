package cpm

// Config controls the analysis knobs.
type Config struct {
	// BottleneckThresholdDays is the slack ceiling (in days) for
	// flagging a non-critical task as a bottleneck. Zero or negative
	// means the default of 1.
	BottleneckThresholdDays int
}

const defaultBottleneckThreshold = 1

// Result holds the complete critical path analysis.
type Result struct {
	Tasks         map[string]*Timing `json:"tasks"`
	CriticalPath  []string           `json:"critical_path"` // ordered task IDs on critical path
	TotalDuration int                `json:"total_duration_days"`
	Bottlenecks   []string           `json:"bottlenecks"` // near-critical tasks, sorted by (slack, ID)
	TopoOrder     []string           `json:"topo_order"`
}

// Timing holds the scheduling window for a single task.
type Timing struct {
	TaskID     string `json:"task_id"`
	ES         int    `json:"es"` // earliest start
	EF         int    `json:"ef"` // earliest finish
	LS         int    `json:"ls"` // latest start
	LF         int    `json:"lf"` // latest finish
	Slack      int    `json:"slack"`
	IsCritical bool   `json:"is_critical"`
}
