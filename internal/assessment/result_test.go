package assessment

import (
	"strings"
	"testing"

	"github.com/segmentio/encoding/json"
)

func TestOutcomeMarshalJSON(t *testing.T) {
	run := &Run{
		CriteriaResults: map[string]Outcome{
			"Awards":  Succeeded(&CriterionResult{Rating: 8, ChainOfThought: "solid", EvidenceList: []string{"ACM"}}),
			"Judging": {Failure: &ErrorResult{Error: "could not parse response: invalid JSON", RawResponse: "nope"}},
		},
		EligibilityRating: EligibilityLow,
	}

	data, err := json.Marshal(run)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded struct {
		CriteriaResults   map[string]map[string]any `json:"criteria_results"`
		EligibilityRating string                    `json:"eligibility_rating"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if decoded.EligibilityRating != "low" {
		t.Fatalf("unexpected eligibility: %s", decoded.EligibilityRating)
	}
	if decoded.CriteriaResults["Awards"]["rating"] != float64(8) {
		t.Fatalf("expected rating 8, got %v", decoded.CriteriaResults["Awards"])
	}
	judging := decoded.CriteriaResults["Judging"]
	if _, ok := judging["rating"]; ok {
		t.Fatalf("failed outcome must not carry a rating: %v", judging)
	}
	if judging["raw_response"] != "nope" {
		t.Fatalf("expected raw response, got %v", judging)
	}
}

func TestRunRedacted(t *testing.T) {
	original := Succeeded(&CriterionResult{Rating: 7, ChainOfThought: "private reasoning", EvidenceList: []string{"paper"}})
	run := &Run{
		CriteriaResults: map[string]Outcome{
			"Scholarly articles": original,
			"Judging":            Failed("timeout"),
		},
		EligibilityRating: EligibilityMedium,
	}

	redacted := run.Redacted()

	data, err := json.Marshal(redacted)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "chain_of_thought") {
		t.Fatalf("expected chain of thought to be removed: %s", data)
	}
	if original.Result.ChainOfThought != "private reasoning" {
		t.Fatalf("redaction must not mutate the original run")
	}
	if rating, _ := redacted.CriteriaResults["Scholarly articles"].Rating(); rating != 7 {
		t.Fatalf("expected rating to survive redaction, got %d", rating)
	}
	if redacted.EligibilityRating != EligibilityMedium {
		t.Fatalf("expected eligibility to be kept")
	}
}
