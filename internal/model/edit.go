package model

// Publish decisions
const (
	DecisionPublish = "publish"
	DecisionDraft   = "draft"
)

// ScoreBreakdown holds the editor's five scoring axes, each 0-20
type ScoreBreakdown struct {
	MedicalAccuracy     int `json:"medical_accuracy"`
	StructureCompliance int `json:"structure_compliance"`
	EEATSignals         int `json:"eeat_signals"`
	Readability         int `json:"readability"`
	SEOOptimization     int `json:"seo_optimization"`
}

// Sum returns the total across all five axes. The editor's stated
// confidence score is always discarded in favor of this recomputation.
func (b ScoreBreakdown) Sum() int {
	return b.MedicalAccuracy + b.StructureCompliance + b.EEATSignals + b.Readability + b.SEOOptimization
}

// EditResult is the editor agent's output
type EditResult struct {
	FinalMarkdown   string         `json:"final_markdown"`
	ConfidenceScore int            `json:"confidence_score"`
	PublishDecision string         `json:"publish_decision"`
	ScoreBreakdown  ScoreBreakdown `json:"score_breakdown"`
	IssuesFound     []string       `json:"issues_found"`
	CorrectionsMade []string       `json:"corrections_made"`
	TokensUsed      int            `json:"tokens_used"`
}
