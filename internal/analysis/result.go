package analysis

// Provenance values attached to degraded results.
const (
	ModeMockFallback = "mock-fallback"
	ModeRealLLM      = "real-llm"
	ModeMock         = "mock"
)

// WorkItem is one extracted requirement. Estimate fields are level specific
// and omitted when unset.
type WorkItem struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Category           string   `json:"category"`
	Priority           string   `json:"priority"`
	AcceptanceCriteria []string `json:"acceptanceCriteria"`
	BusinessValue      string   `json:"businessValue"`
	WorkflowLevel      string   `json:"workflowLevel"`
	StoryPoints        int      `json:"storyPoints,omitempty"`
	Labels             []string `json:"labels,omitempty"`
	EstimatedEffort    string   `json:"estimatedEffort,omitempty"`
	SprintEstimate     int      `json:"sprintEstimate,omitempty"`
	TargetRelease      string   `json:"targetRelease,omitempty"`
	StrategicAlignment string   `json:"strategicAlignment,omitempty"`
}

// BusinessBrief is the top-level strategic summary.
type BusinessBrief struct {
	ID                           string   `json:"id"`
	Title                        string   `json:"title"`
	Description                  string   `json:"description"`
	BusinessObjective            string   `json:"businessObjective"`
	QuantifiableBusinessOutcomes []string `json:"quantifiableBusinessOutcomes"`
}

// Result is the analysis returned to callers. Levels above the requested one
// are absent; provenance fields are set only on fallback.
type Result struct {
	AnalysisDepth         string         `json:"analysisDepth"`
	ExtractedInsights     string         `json:"extractedInsights"`
	DesignAnalysis        string         `json:"designAnalysis"`
	UserFlows             []string       `json:"userFlows"`
	AccessibilityInsights []string       `json:"accessibilityInsights"`
	BusinessBrief         *BusinessBrief `json:"businessBrief,omitempty"`
	Initiatives           []WorkItem     `json:"initiatives,omitempty"`
	Features              []WorkItem     `json:"features,omitempty"`
	Epics                 []WorkItem     `json:"epics,omitempty"`
	Stories               []WorkItem     `json:"stories"`

	AnalysisMode   string `json:"analysisMode,omitempty"`
	RequestedMode  string `json:"requestedMode,omitempty"`
	FallbackReason string `json:"fallbackReason,omitempty"`
}

// Degraded reports whether the result came from the fallback path.
func (r Result) Degraded() bool {
	return r.AnalysisMode == ModeMockFallback
}
