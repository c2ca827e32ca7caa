package builder

import (
	"encoding/json"
	"fmt"

	"github.com/norcalsbdc/advisorflow"
	"gopkg.in/yaml.v3"
)

// Encode serializes a definition in the given format, ready for a workflows directory
func Encode(def *advisorflow.WorkflowDefinition, format advisorflow.DefinitionFormat) ([]byte, error) {
	switch format {
	case advisorflow.FormatJSON:
		data, err := json.MarshalIndent(def, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode workflow as json: %w", err)
		}
		return append(data, '\n'), nil
	case advisorflow.FormatYAML:
		data, err := yaml.Marshal(def)
		if err != nil {
			return nil, fmt.Errorf("failed to encode workflow as yaml: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported definition format %q", format)
	}
}
