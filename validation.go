package advisorflow

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ValidateWorkflow checks a definition's structure and returns every violation found.
// An empty result means the definition may be loaded.
func ValidateWorkflow(def *WorkflowDefinition) []string {
	if def == nil {
		return []string{"workflow definition is empty"}
	}

	var errs []string

	if def.ID == "" {
		errs = append(errs, "Missing required key: id")
	}
	if def.Name == "" {
		errs = append(errs, "Missing required key: name")
	}
	if def.Steps == nil {
		errs = append(errs, "Missing required key: steps")
	}
	if def.Completion == "" {
		errs = append(errs, "Missing required key: completion")
	}

	if def.Steps != nil && len(def.Steps) == 0 {
		errs = append(errs, "'steps' must be a non-empty list")
	}

	seen := make(map[string]bool, len(def.Steps))
	for i, step := range def.Steps {
		if step.ID == "" {
			errs = append(errs, fmt.Sprintf("Step %d: missing 'id'", i))
		}
		if step.Title == "" {
			errs = append(errs, fmt.Sprintf("Step %d: missing 'title'", i))
		}
		if step.Objective == "" {
			errs = append(errs, fmt.Sprintf("Step %d: missing 'objective'", i))
		}
		if step.ID != "" {
			if seen[step.ID] {
				errs = append(errs, fmt.Sprintf("Step %d: duplicate id '%s'", i, step.ID))
			}
			seen[step.ID] = true
		}
	}

	return errs
}

// DecodeDefinition parses a raw blob into a definition without validating it
func DecodeDefinition(raw RawDefinition) (*WorkflowDefinition, error) {
	var def WorkflowDefinition

	switch raw.Format {
	case FormatYAML:
		if err := yaml.Unmarshal(raw.Data, &def); err != nil {
			return nil, WrapWorkflowError(ErrCodeDecode, fmt.Sprintf("failed to parse %s", raw.Name), err)
		}
	case FormatJSON, "":
		dec := json.NewDecoder(bytes.NewReader(raw.Data))
		if err := dec.Decode(&def); err != nil {
			return nil, WrapWorkflowError(ErrCodeDecode, fmt.Sprintf("failed to parse %s", raw.Name), err)
		}
	default:
		return nil, NewWorkflowError(ErrCodeDecode, fmt.Sprintf("unsupported definition format %q", raw.Format))
	}

	return &def, nil
}

// ValidateRaw decodes and validates a raw blob. A decode failure is reported as
// a single error string.
func ValidateRaw(raw RawDefinition) (*WorkflowDefinition, []string) {
	def, err := DecodeDefinition(raw)
	if err != nil {
		return nil, []string{err.Error()}
	}
	return def, ValidateWorkflow(def)
}

// LoadDefinition decodes and validates a raw blob, failing closed with a ValidationError
func LoadDefinition(raw RawDefinition) (*WorkflowDefinition, error) {
	def, err := DecodeDefinition(raw)
	if err != nil {
		return nil, err
	}
	if errs := ValidateWorkflow(def); len(errs) > 0 {
		return nil, &ValidationError{WorkflowID: def.ID, Errors: errs}
	}
	return def, nil
}
