package domain

// Agent type tags.
const (
	AgentLegal      = "legal"
	AgentUrban      = "urban"
	AgentConceptual = "conceptual"
	AgentCounting   = "counting"
	AgentValidator  = "validator"
)

// AgentResult is the typed, confidence-scored output of one agent invocation.
type AgentResult struct {
	Type       string
	Confidence float64
	Data       []Record
	Summary    string
	Metadata   map[string]string
}

// Degraded reports whether the result is a failure stub.
func (r AgentResult) Degraded() bool { return r.Confidence == 0 }

// DegradedResult builds a confidence-zero stub for a failed agent.
func DegradedResult(agentType, reason string) AgentResult {
	return AgentResult{
		Type:       agentType,
		Confidence: 0,
		Metadata:   map[string]string{"degraded": "true", "reason": reason},
	}
}

// ValidationResult is the outcome of the validation stage.
type ValidationResult struct {
	IsValid            bool
	Confidence         float64
	Issues             []string
	RequiresRefinement bool
}
