package jsonutil

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// FlexibleStringValue converts a json.RawMessage to a string, handling hand-edited
// config files where numbers or booleans appear in place of strings (a bare lat_lon
// or batch size typed without quotes). Returns empty string for null/empty.
func FlexibleStringValue(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	// Try string first
	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		return strVal
	}

	// Try number
	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		if numVal == float64(int64(numVal)) {
			return fmt.Sprintf("%d", int64(numVal))
		}
		return fmt.Sprintf("%g", numVal)
	}

	// Try boolean
	var boolVal bool
	if err := json.Unmarshal(raw, &boolVal); err == nil {
		return fmt.Sprintf("%t", boolVal)
	}

	// Fallback: return raw string representation
	return string(raw)
}

// FlexibleStringMap is a string-to-string map that tolerates non-string scalar
// values when decoded from JSON or YAML. Submission configs are routinely edited
// by hand, so `"batch_size": 100` and `"batch_size": "100"` both decode to "100".
type FlexibleStringMap map[string]string

func (m *FlexibleStringMap) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(FlexibleStringMap, len(raw))
	for k, v := range raw {
		out[k] = FlexibleStringValue(v)
	}
	*m = out
	return nil
}

func (m *FlexibleStringMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping node, got kind %d", value.Kind)
	}
	out := make(FlexibleStringMap, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		key := value.Content[i]
		val := value.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return fmt.Errorf("expected scalar value for key %q", key.Value)
		}
		if val.Tag == "!!null" {
			out[key.Value] = ""
			continue
		}
		out[key.Value] = val.Value
	}
	*m = out
	return nil
}
