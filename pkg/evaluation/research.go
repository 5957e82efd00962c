package evaluation

import "context"

// Finding is one research result feeding a refinement decision
type Finding struct {
	Area           string `json:"area"`
	Finding        string `json:"finding"`
	Source         string `json:"source"`
	Applicability  string `json:"applicability"`
	Implementation string `json:"implementation"`
}

// ResearchSource gathers best-practice input for prompt refinement. Web
// search or documentation tools can implement it; CuratedResearch is the
// built-in offline implementation.
type ResearchSource interface {
	Search(ctx context.Context, topics []string) ([]Finding, error)
}

// DefaultResearchTopics are searched when a caller supplies none
var DefaultResearchTopics = []string{"prompt_engineering", "error_handling", "agent_coordination"}

// curatedFindings is a fixed library of agent-design best practices, keyed by
// topic.
var curatedFindings = map[string][]Finding{
	"prompt_engineering": {
		{
			Area:           "prompt_engineering",
			Finding:        "Chain-of-thought prompting significantly improves reasoning tasks",
			Source:         "Wei et al. 2022",
			Applicability:  "high",
			Implementation: "Add step-by-step reasoning instructions to complex tasks",
		},
	},
	"error_handling": {
		{
			Area:           "error_handling",
			Finding:        "Explicit error state definitions improve agent reliability",
			Source:         "Pondhouse Data 2024",
			Applicability:  "high",
			Implementation: "Define clear error types and recovery actions",
		},
	},
	"agent_coordination": {
		{
			Area:           "agent_coordination",
			Finding:        "Hierarchical oversight prevents task derailment",
			Source:         "Pondhouse Data 2024",
			Applicability:  "medium",
			Implementation: "Implement supervisor-worker agent patterns",
		},
	},
}

// CuratedResearch serves findings from the built-in library. Topics with no
// curated entry are skipped.
type CuratedResearch struct{}

// NewCuratedResearch creates the offline research source
func NewCuratedResearch() *CuratedResearch {
	return &CuratedResearch{}
}

// Search returns curated findings for the given topics, in topic order
func (c *CuratedResearch) Search(_ context.Context, topics []string) ([]Finding, error) {
	if len(topics) == 0 {
		topics = DefaultResearchTopics
	}

	var findings []Finding
	for _, topic := range topics {
		findings = append(findings, curatedFindings[topic]...)
	}
	return findings, nil
}
