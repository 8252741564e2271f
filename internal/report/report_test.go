package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/segmentio/encoding/json"

	"github.com/spigell/o1-assessor/internal/assessment"
)

func sampleRun() *assessment.Run {
	return &assessment.Run{
		CriteriaResults: map[string]assessment.Outcome{
			"Awards": assessment.Succeeded(&assessment.CriterionResult{
				Rating:         8,
				ChainOfThought: "Two national prizes.",
				EvidenceList:   []string{"ACM Prize 2021", "IEEE Medal\n2019"},
			}),
			"Judging": {Failure: &assessment.ErrorResult{Error: "could not parse response: invalid JSON", RawResponse: "{"}},
			assessment.SuperCriteriaKey: assessment.Succeeded(&assessment.CriterionResult{
				Rating:       9,
				EvidenceList: []string{"Nobel Prize in Physics"},
			}),
		},
		EligibilityRating: assessment.EligibilityHigh,
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleRun()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if decoded["eligibility_rating"] != "high" {
		t.Fatalf("unexpected eligibility: %v", decoded["eligibility_rating"])
	}
	results, _ := decoded["criteria_results"].(map[string]any)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %v", results)
	}
	if !strings.Contains(buf.String(), "\n  \"criteria_results\"") {
		t.Fatalf("expected indented output:\n%s", buf.String())
	}
}

func TestMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := Markdown(&buf, sampleRun()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"**Eligibility rating:** high",
		"Criterion",
		"Awards",
		"could not parse response: invalid JSON",
		"## Awards",
		"Two national prizes.",
		"- IEEE Medal 2019",
		"- Nobel Prize in Physics",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	if strings.Index(out, assessment.SuperCriteriaKey) > strings.Index(out, "Awards") {
		t.Fatalf("expected super criteria to be listed first:\n%s", out)
	}
	if strings.Contains(out, "## Judging") {
		t.Fatalf("failed criteria have no evidence section:\n%s", out)
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"json":     FormatJSON,
		" JSON ":   FormatJSON,
		"markdown": FormatMarkdown,
		"md":       FormatMarkdown,
	}
	for input, want := range tests {
		got, err := ParseFormat(input)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v; want %q", input, got, err, want)
		}
	}

	if _, err := ParseFormat("xml"); err == nil {
		t.Fatalf("expected unknown format to be rejected")
	}
}

func TestWriteDispatches(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatMarkdown, sampleRun()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "# O-1A assessment") {
		t.Fatalf("expected markdown output, got:\n%s", buf.String())
	}

	if err := Write(&buf, Format("xml"), sampleRun()); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
