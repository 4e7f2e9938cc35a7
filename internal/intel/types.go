package intel

import (
	"time"

	"github.com/AstridBonoan/plumbline/internal/cascade"
	"github.com/AstridBonoan/plumbline/internal/resilience"
	"github.com/AstridBonoan/plumbline/internal/risk"
)

// Options holds analysis configuration. Zero values use defaults.
type Options struct {
	BottleneckThresholdDays int
	PathLengthBaseline      int
	MaxScenarios            int
	Workers                 int
}

const (
	defaultMaxScenarios = 8
	defaultWorkers      = 4
)

// Intelligence is the complete analysis of one schedule, shaped for JSON
// consumers. Scores carries the full scoring breakdown for terminal reports
// and is not serialized.
type Intelligence struct {
	AnalysisID            string                  `json:"analysis_id"`
	GeneratedAt           time.Time               `json:"generated_at"`
	CriticalPath          []string                `json:"critical_path"`
	ProjectDurationDays   int                     `json:"project_duration_days"`
	RiskFactors           map[string]risk.Factors `json:"risk_factors"`
	PropagationScenarios  []*cascade.Propagation  `json:"propagation_scenarios"`
	ResilienceScore       float64                 `json:"resilience_score"`
	IntegrationRiskScore  float64                 `json:"integration_risk_score"`
	RecommendedBufferDays int                     `json:"recommended_buffer_days"`
	Bottlenecks           []string                `json:"bottlenecks"`
	SlackByTask           map[string]int          `json:"slack_by_task"`
	TaskCount             int                     `json:"task_count"`

	Scores resilience.Scores `json:"-"`
}

// scenarioTrigger pairs a task with the delay its simulation injects.
type scenarioTrigger struct {
	taskID string
	delay  int
}
