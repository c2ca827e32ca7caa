package builder

import (
	"fmt"
	"strings"

	"github.com/norcalsbdc/advisorflow"
)

// ValidateDefinition performs structural and command validation on a definition
func ValidateDefinition(def *advisorflow.WorkflowDefinition) error {
	errs := advisorflow.ValidateWorkflow(def)
	if def != nil {
		errs = append(errs, ValidateCommands(def)...)
	}

	if len(errs) > 0 {
		id := ""
		if def != nil {
			id = def.ID
		}
		return &advisorflow.ValidationError{WorkflowID: id, Errors: errs}
	}
	return nil
}

// ValidateCommands checks that the effective command tokens are distinct and
// single words. A token shadowed by a higher-priority one could never fire.
func ValidateCommands(def *advisorflow.WorkflowDefinition) []string {
	tokens := []struct {
		key   string
		value string
	}{
		{"trigger", effective(def.Trigger, advisorflow.DefaultTrigger)},
		{"advance_command", effective(def.AdvanceCommand, advisorflow.DefaultAdvanceCommand)},
		{"cancel_command", effective(def.CancelCommand, advisorflow.DefaultCancelCommand)},
		{"skip", advisorflow.SkipCommand},
	}

	var errs []string
	seen := make(map[string]string, len(tokens))
	for _, token := range tokens {
		if strings.ContainsAny(token.value, " \t\n") {
			errs = append(errs, fmt.Sprintf("Command '%s' must be a single word, got %q", token.key, token.value))
		}
		if other, ok := seen[token.value]; ok {
			errs = append(errs, fmt.Sprintf("Command '%s' duplicates '%s' (%q)", token.key, other, token.value))
			continue
		}
		seen[token.value] = token.key
	}
	return errs
}

func effective(value, fallback string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return fallback
	}
	return value
}
