package evaluation

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Improvement is a recognized prompt-improvement tag
type Improvement string

const (
	ImprovementClarity       Improvement = "clarity"
	ImprovementErrorHandling Improvement = "error_handling"
	ImprovementReasoning     Improvement = "reasoning"
)

// instructionFragment is the canned instruction block appended for one
// improvement tag, plus its change description for the summary.
type instructionFragment struct {
	change   string
	addition string
}

// improvementInstructions maps each recognized tag to its fragment. Tags are
// applied in caller-supplied order; unrecognized tags are skipped, not errors.
var improvementInstructions = map[Improvement]instructionFragment{
	ImprovementClarity: {
		change:   "Add explicit instruction for concise, structured responses",
		addition: "Provide clear, concise responses with structured formatting when appropriate.",
	},
	ImprovementErrorHandling: {
		change:   "Add error state definitions and recovery instructions",
		addition: "When encountering errors, clearly state the issue and suggest recovery actions.",
	},
	ImprovementReasoning: {
		change:   "Add chain-of-thought reasoning instructions",
		addition: "For complex tasks, break down your reasoning into clear steps.",
	},
}

// clarificationAddition is appended when the analyzed overall score falls
// below lowScoreCutoff, independent of the requested tags.
const clarificationAddition = "Focus on task completion and accuracy. If uncertain, ask for clarification rather than proceeding with incomplete information."

const lowScoreCutoff = 0.9

// AppliedChange records one appended instruction block
type AppliedChange struct {
	Type     Improvement `json:"type"`
	Change   string      `json:"change"`
	Addition string      `json:"addition"`
}

// ChangeSummary makes a refinement diffable for audit
type ChangeSummary struct {
	OriginalLength      int             `json:"original_length"`
	ImprovedLength      int             `json:"improved_length"`
	OriginalTokens      int             `json:"original_tokens"`
	ImprovedTokens      int             `json:"improved_tokens"`
	ImprovementsApplied int             `json:"improvements_applied"`
	Changes             []AppliedChange `json:"changes"`
	PerformanceTargets  []Improvement   `json:"performance_targets"`
}

// RefineResult is the outcome of one prompt refinement
type RefineResult struct {
	ImprovedPrompt string        `json:"improved_prompt"`
	ChangeSummary  ChangeSummary `json:"change_summary"`
}

// Refine synthesizes an improved prompt from the current prompt, a
// performance analysis, research findings and a target-improvement list. It
// is deterministic: identical inputs always produce the identical result, so
// persistence stays a separate explicit step. Research findings inform the
// caller's choice of targets; the appended instruction blocks themselves are
// fixed per tag.
func Refine(currentPrompt string, analysis *EvaluationResult, findings []Finding, targets []Improvement) RefineResult {
	improved := currentPrompt
	var changes []AppliedChange

	for _, target := range targets {
		fragment, ok := improvementInstructions[target]
		if !ok {
			continue
		}
		improved += "\n\n" + fragment.addition
		changes = append(changes, AppliedChange{
			Type:     target,
			Change:   fragment.change,
			Addition: fragment.addition,
		})
	}

	if analysis != nil && analysis.OverallScore < lowScoreCutoff {
		improved += "\n\n" + clarificationAddition
	}

	return RefineResult{
		ImprovedPrompt: improved,
		ChangeSummary: ChangeSummary{
			OriginalLength:      len(currentPrompt),
			ImprovedLength:      len(improved),
			OriginalTokens:      tokenCount(currentPrompt),
			ImprovedTokens:      tokenCount(improved),
			ImprovementsApplied: len(changes),
			Changes:             changes,
			PerformanceTargets:  targets,
		},
	}
}

var (
	encoderOnce sync.Once
	encoder     *tiktoken.Tiktoken
)

// tokenCount measures a prompt in cl100k tokens. Token counts are best
// effort: when the encoding is unavailable they stay zero and the character
// lengths remain the authoritative size measure.
func tokenCount(text string) int {
	encoderOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			encoder = enc
		}
	})
	if encoder == nil {
		return 0
	}
	return len(encoder.Encode(text, nil, nil))
}
