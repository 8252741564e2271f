package assessment

import (
	"github.com/segmentio/encoding/json"

	"github.com/spigell/o1-assessor/internal/criteria"
)

// SuperCriteriaKey is the reserved results key for the super-criterion outcome.
const SuperCriteriaKey = criteria.ReservedName

// Eligibility is the three-tier summary of a run.
type Eligibility string

const (
	EligibilityLow    Eligibility = "low"
	EligibilityMedium Eligibility = "medium"
	EligibilityHigh   Eligibility = "high"
)

// CriterionResult is the structured answer of one model call.
type CriterionResult struct {
	Rating         int      `json:"rating"`
	ChainOfThought string   `json:"chain_of_thought,omitempty"`
	EvidenceList   []string `json:"evidence_list"`
}

// ErrorResult records why a criterion could not be rated.
type ErrorResult struct {
	Error       string `json:"error"`
	RawResponse string `json:"raw_response,omitempty"`
}

// Outcome holds exactly one of Result or Failure.
type Outcome struct {
	Result  *CriterionResult
	Failure *ErrorResult
}

// Succeeded wraps a parsed result.
func Succeeded(result *CriterionResult) Outcome {
	return Outcome{Result: result}
}

// Failed builds an outcome for a criterion that produced no usable rating.
func Failed(message string) Outcome {
	return Outcome{Failure: &ErrorResult{Error: message}}
}

// Rating returns the criterion rating and whether one is available.
func (o Outcome) Rating() (int, bool) {
	if o.Result == nil {
		return 0, false
	}
	return o.Result.Rating, true
}

// MarshalJSON encodes whichever member is set, so failures carry no rating key.
func (o Outcome) MarshalJSON() ([]byte, error) {
	if o.Result != nil {
		return json.Marshal(o.Result)
	}
	if o.Failure != nil {
		return json.Marshal(o.Failure)
	}
	return json.Marshal(ErrorResult{Error: "no result"})
}

// Run is the output of one assessment.
type Run struct {
	CriteriaResults   map[string]Outcome `json:"criteria_results"`
	EligibilityRating Eligibility        `json:"eligibility_rating"`
}

// Redacted returns a copy of the run without chain-of-thought reasoning.
func (r *Run) Redacted() *Run {
	out := &Run{
		CriteriaResults:   make(map[string]Outcome, len(r.CriteriaResults)),
		EligibilityRating: r.EligibilityRating,
	}

	for name, outcome := range r.CriteriaResults {
		if outcome.Result != nil {
			stripped := *outcome.Result
			stripped.ChainOfThought = ""
			outcome = Succeeded(&stripped)
		}
		out.CriteriaResults[name] = outcome
	}

	return out
}
