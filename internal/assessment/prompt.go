package assessment

import (
	_ "embed"
	"strings"
)

var (
	//go:embed prompts/criterion.md
	criterionTemplate string

	//go:embed prompts/super_criterion.md
	superCriterionTemplate string
)

// SuperAwardExamples is the fixed catalog of major international awards used
// to ground the super-criterion check.
var SuperAwardExamples = []string{
	"Nobel Prize",
	"Fields Medal",
	"Turing Award",
	"Abel Prize",
	"Breakthrough Prize",
	"Lasker Award",
	"Kavli Prize",
	"Shaw Prize",
	"Wolf Prize",
	"Kyoto Prize",
}

// sectionMarkers keeps inputs from opening or closing a tagged prompt section.
var sectionMarkers = strings.NewReplacer("<start_", "(start_", "<end_", "(end_")

// BuildCriterionPrompt renders the prompt for a single criterion.
func BuildCriterionPrompt(criterionText, documentText, generalInstructions, comparableEvidence string) string {
	return strings.NewReplacer(
		"{{CRITERION}}", sanitizeSection(criterionText),
		"{{RESUME}}", sanitizeSection(documentText),
		"{{GENERAL_INSTRUCTIONS}}", sanitizeSection(generalInstructions),
		"{{COMPARABLE_EVIDENCE}}", sanitizeSection(comparableEvidence),
	).Replace(criterionTemplate)
}

// BuildSuperCriterionPrompt renders the prompt that checks for a major
// internationally recognized award.
func BuildSuperCriterionPrompt(documentText, generalInstructions, awardExamples string) string {
	return strings.NewReplacer(
		"{{SUPER_EXAMPLES}}", sanitizeSection(awardExamples),
		"{{RESUME}}", sanitizeSection(documentText),
		"{{GENERAL_INSTRUCTIONS}}", sanitizeSection(generalInstructions),
	).Replace(superCriterionTemplate)
}

// FormatAwardExamples renders award names as the bullet list used in prompts.
func FormatAwardExamples(awards []string) string {
	var b strings.Builder
	b.WriteString("Examples of major internationally recognized awards include:")
	for _, award := range awards {
		b.WriteString("\n- ")
		b.WriteString(award)
	}
	return b.String()
}

func joinInstructions(instructions []string) string {
	return strings.Join(instructions, " ")
}

func sanitizeSection(s string) string {
	return sectionMarkers.Replace(strings.TrimSpace(s))
}
