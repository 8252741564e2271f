package assessment

import (
	"bytes"
	_ "embed"
	"fmt"
	"math"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/segmentio/encoding/json"
)

const criterionResultSchemaURL = "https://o1-assessor.local/schemas/criterion_result.schema.json"

//go:embed criterion_result.schema.json
var criterionResultSchemaJSON []byte

var criterionResultSchema = compileSchema()

// ParseError reports a model response that does not match the result shape.
type ParseError struct {
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return "could not parse response: " + e.Reason
}

func compileSchema() *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(criterionResultSchemaJSON))
	if err != nil {
		panic(fmt.Sprintf("criterion result schema: %v", err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(criterionResultSchemaURL, doc); err != nil {
		panic(fmt.Sprintf("criterion result schema: %v", err))
	}

	return compiler.MustCompile(criterionResultSchemaURL)
}

type rawCriterionResult struct {
	Rating         float64           `json:"rating"`
	ChainOfThought string            `json:"chain_of_thought"`
	EvidenceList   []json.RawMessage `json:"evidence_list"`
}

// ParseResponse turns raw model text into a CriterionResult. Any failure is
// returned as *ParseError carrying the original text.
func ParseResponse(raw string) (*CriterionResult, error) {
	fail := func(format string, args ...any) (*CriterionResult, error) {
		return nil, &ParseError{Reason: fmt.Sprintf(format, args...), Raw: raw}
	}

	payload := extractJSON(raw)
	if payload == "" {
		return fail("no JSON object found")
	}

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(payload))
	if err != nil {
		return fail("invalid JSON: %v", err)
	}

	if _, ok := doc.(map[string]any); !ok {
		return fail("expected a JSON object")
	}

	if err := criterionResultSchema.Validate(doc); err != nil {
		return fail("%s", flattenValidationError(err))
	}

	var decoded rawCriterionResult
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		return fail("decode: %v", err)
	}

	if decoded.Rating != math.Trunc(decoded.Rating) {
		return fail("rating must be an integer")
	}

	evidence := make([]string, 0, len(decoded.EvidenceList))
	for _, item := range decoded.EvidenceList {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			evidence = append(evidence, s)
			continue
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, item); err != nil {
			return fail("evidence_list: %v", err)
		}
		evidence = append(evidence, compact.String())
	}

	return &CriterionResult{
		Rating:         int(decoded.Rating),
		ChainOfThought: decoded.ChainOfThought,
		EvidenceList:   evidence,
	}, nil
}

func flattenValidationError(err error) string {
	return strings.Join(strings.Fields(err.Error()), " ")
}

// extractJSON strips markdown fences and surrounding prose around a JSON object.
func extractJSON(s string) string {
	trimmed := strings.TrimSpace(s)

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```JSON")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}

	return trimmed[start : end+1]
}
