package criteria

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ReservedName is the result key reserved for the super-criterion; no
// catalog criterion may use it.
const ReservedName = "super_criteria"

// ErrInvalidCatalog is returned when a criteria catalog cannot be used.
var ErrInvalidCatalog = errors.New("invalid criteria catalog")

//go:embed o1a.yaml
var defaultCatalog []byte

// Criterion is one named, evaluable dimension of the eligibility standard.
type Criterion struct {
	Name        string `mapstructure:"name" json:"name"`
	FullText    string `mapstructure:"full_text" json:"full_text"`
	Description string `mapstructure:"description" json:"description,omitempty"`
}

// VisaInfo is the evaluation context shared by every criterion in a run.
type VisaInfo struct {
	VisaType            string      `mapstructure:"visa_type" json:"visa_type,omitempty"`
	Criteria            []Criterion `mapstructure:"criteria" json:"criteria"`
	GeneralInstructions []string    `mapstructure:"general_instructions" json:"general_instructions"`
	ComparableEvidence  string      `mapstructure:"comparable_evidence" json:"comparable_evidence"`
	// SuperCriteria is an optional descriptor; any non-empty value enables the
	// super-criterion check.
	SuperCriteria any `mapstructure:"super_criteria" json:"super_criteria,omitempty"`
}

// Default returns the embedded O-1A catalog.
func Default() (*VisaInfo, error) {
	return Parse(defaultCatalog)
}

// Load reads a YAML or JSON catalog from path.
func Load(path string) (*VisaInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %q: %w", ErrInvalidCatalog, path, err)
	}

	info, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return info, nil
}

// Parse decodes and validates a catalog document. JSON is accepted as a YAML subset.
func Parse(data []byte) (*VisaInfo, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: document is empty", ErrInvalidCatalog)
	}

	var info VisaInfo
	if err := mapstructure.Decode(raw, &info); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	if err := info.Validate(); err != nil {
		return nil, err
	}

	return &info, nil
}

// Validate checks the invariants the assessment relies on.
func (v *VisaInfo) Validate() error {
	if len(v.Criteria) == 0 {
		return fmt.Errorf("%w: no criteria defined", ErrInvalidCatalog)
	}

	seen := make(map[string]struct{}, len(v.Criteria))
	for i, c := range v.Criteria {
		name := strings.TrimSpace(c.Name)
		switch {
		case name == "":
			return fmt.Errorf("%w: criterion #%d has no name", ErrInvalidCatalog, i+1)
		case name == ReservedName:
			return fmt.Errorf("%w: criterion name %q is reserved", ErrInvalidCatalog, ReservedName)
		case strings.TrimSpace(c.FullText) == "":
			return fmt.Errorf("%w: criterion %q has no full_text", ErrInvalidCatalog, name)
		}

		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: duplicate criterion %q", ErrInvalidCatalog, name)
		}
		seen[name] = struct{}{}
		v.Criteria[i].Name = name
	}

	return nil
}

// HasSuperCriteria reports whether the super-criterion check is enabled.
func (v *VisaInfo) HasSuperCriteria() bool {
	switch val := v.SuperCriteria.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return strings.TrimSpace(val) != ""
	case map[string]any:
		return len(val) > 0
	case []any:
		return len(val) > 0
	default:
		return true
	}
}

// Names returns the criterion names in catalog order.
func (v *VisaInfo) Names() []string {
	names := make([]string, 0, len(v.Criteria))
	for _, c := range v.Criteria {
		names = append(names, c.Name)
	}
	return names
}
