package mcp

import (
	"context"
	"encoding/json"
)

// Tool represents a capability exposed over the MCP tool surface.
// Arguments arrive as the raw JSON object from a tools/call request and
// results are serialized back to the client as a JSON text block.
type Tool interface {
	// Name returns the unique identifier for this tool (e.g., "close_browser")
	Name() string

	// Description returns a human-readable description of what this tool does
	Description() string

	// Schema returns the JSON schema for this tool's input parameters
	Schema() map[string]interface{}

	// Execute runs the tool with the given JSON arguments and returns a
	// serializable result. A returned error becomes an isError tool result,
	// not a protocol-level failure.
	Execute(ctx context.Context, args json.RawMessage) (interface{}, error)
}

// BaseSchema creates a common JSON schema structure for a tool
// with the given properties and required fields
func BaseSchema(properties map[string]interface{}, required []string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// StringProperty is a shorthand for a string-typed schema property.
func StringProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}
