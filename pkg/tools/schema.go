package tools

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// toolSchema derives the JSON-schema parameter map for a tool from its typed
// argument struct, so tool definitions and handler decoding cannot drift
// apart.
func toolSchema(args interface{}) map[string]interface{} {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}

	schema := reflector.Reflect(args)
	data, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("failed to marshal tool schema: %v", err))
	}

	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		panic(fmt.Sprintf("failed to unmarshal tool schema: %v", err))
	}
	delete(result, "$schema")
	return result
}

// decodeArgs binds a raw argument map onto a typed argument struct
func decodeArgs(args map[string]interface{}, target interface{}) error {
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to marshal tool arguments: %w", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to decode tool arguments: %w", err)
	}
	return nil
}

// jsonResult renders a tool response the way agents expect: indented JSON
func jsonResult(payload interface{}) (string, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return string(data), nil
}
